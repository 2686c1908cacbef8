package chess

import "strings"

// EmitSAN renders m in short algebraic notation for human-readable logging
// only (protocol driver debug lines, cego-bench output). It is never
// part of the wire protocol, which uses EmitLAN exclusively.
func (b *Board) EmitSAN(m Move) string {
	mover, ok := b.PieceAt(m.From)
	if !ok {
		return m.String()
	}

	if mover.Piece == King && m.From.File()-m.To.File() == -2 {
		return withCheckSuffix(b, m, "O-O")
	}
	if mover.Piece == King && m.From.File()-m.To.File() == 2 {
		return withCheckSuffix(b, m, "O-O-O")
	}

	_, isCapture := b.PieceAt(m.To)
	isEnPassant := mover.Piece == Pawn && m.To == b.EnPassant
	isCapture = isCapture || isEnPassant

	var sb strings.Builder
	if mover.Piece == Pawn {
		if isCapture {
			sb.WriteByte(byte('a' + m.From.File()))
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
		if m.Promotion != NoPiece {
			sb.WriteByte('=')
			sb.WriteByte(upperLetter(m.Promotion))
		}
	} else {
		sb.WriteByte(upperLetter(mover.Piece))
		sb.WriteString(b.disambiguation(mover.Piece, m))
		if isCapture {
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
	}
	return withCheckSuffix(b, m, sb.String())
}

func upperLetter(p Piece) byte { return p.letter() }

// disambiguation returns the minimal file/rank/square qualifier needed to
// distinguish m.From from any other same-piece-kind move landing on m.To.
func (b *Board) disambiguation(piece Piece, m Move) string {
	var sameFile, sameRank, ambiguous bool
	for _, other := range b.LegalMoves() {
		if other.To != m.To || other.From == m.From {
			continue
		}
		op, ok := b.PieceAt(other.From)
		if !ok || op.Piece != piece {
			continue
		}
		ambiguous = true
		if other.From.File() == m.From.File() {
			sameFile = true
		}
		if other.From.Rank() == m.From.Rank() {
			sameRank = true
		}
	}
	if !ambiguous {
		return ""
	}
	switch {
	case !sameFile:
		return string([]byte{byte('a' + m.From.File())})
	case !sameRank:
		return string([]byte{byte('1' + m.From.Rank())})
	default:
		return m.From.String()
	}
}

func withCheckSuffix(b *Board, m Move, san string) string {
	next := b.Make(m)
	if next.InCheck(next.SideToMove) {
		if len(next.LegalMoves()) == 0 {
			return san + "#"
		}
		return san + "+"
	}
	return san
}
