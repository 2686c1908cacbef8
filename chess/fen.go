package chess

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/veles-dev/cego/bitboard"
)

// InvalidFEN is returned by ParseFEN for any structurally or semantically
// malformed FEN string, per spec.md §4.2/§7.
type InvalidFEN struct {
	Reason string
}

func (e *InvalidFEN) Error() string { return "invalid fen: " + e.Reason }

func invalidFEN(format string, args ...interface{}) error {
	return &InvalidFEN{Reason: fmt.Sprintf(format, args...)}
}

// ParseFEN parses a standard six-field FEN string into a Board, validating
// the structural and semantic invariants of spec.md §3/§4.2: exactly one
// king per side, no pawns on the back ranks, the side not to move must not
// be in check, castling rights must be consistent with king/rook placement,
// and the en-passant field must be well-formed.
func ParseFEN(text string) (*Board, error) {
	fields := strings.Split(strings.TrimSpace(text), " ")
	if len(fields) != 6 {
		return nil, invalidFEN("expected 6 space-separated fields, got %d", len(fields))
	}
	b := &Board{}
	if err := parsePlacement(b, fields[0]); err != nil {
		return nil, err
	}
	switch fields[1] {
	case "w":
		b.SideToMove = White
	case "b":
		b.SideToMove = Black
	default:
		return nil, invalidFEN("bad side to move %q", fields[1])
	}
	if err := parseCastling(b, fields[2]); err != nil {
		return nil, err
	}
	if err := parseEnPassant(b, fields[3]); err != nil {
		return nil, err
	}
	hm, err := strconv.Atoi(fields[4])
	if err != nil || hm < 0 {
		return nil, invalidFEN("bad halfmove clock %q", fields[4])
	}
	b.HalfmoveClock = hm
	fm, err := strconv.Atoi(fields[5])
	if err != nil || fm < 1 {
		return nil, invalidFEN("bad fullmove number %q", fields[5])
	}
	b.FullmoveNum = fm

	if err := validateSemantics(b); err != nil {
		return nil, err
	}
	b.Hash = computeHash(b)
	return b, nil
}

func parsePlacement(b *Board, field string) error {
	rows := strings.Split(field, "/")
	if len(rows) != 8 {
		return invalidFEN("expected 8 ranks, got %d", len(rows))
	}
	for i, row := range rows {
		rank := 7 - i
		file := 0
		for _, ch := range []byte(row) {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			piece, color, ok := pieceFromLetter(ch)
			if !ok {
				return invalidFEN("bad placement character %q", ch)
			}
			if file > 7 {
				return invalidFEN("rank %d overflows", rank+1)
			}
			sq := bitboard.FromFileRank(file, rank)
			bb := b.Bitboard(piece, color)
			b.setBitboard(piece, color, bb|sq.Bit())
			file++
		}
		if file != 8 {
			return invalidFEN("rank %d has %d files, want 8", rank+1, file)
		}
	}
	return nil
}

func parseCastling(b *Board, field string) error {
	if field == "-" {
		return nil
	}
	seen := map[byte]bool{}
	for _, ch := range []byte(field) {
		if seen[ch] {
			return invalidFEN("duplicate castling flag %q", ch)
		}
		seen[ch] = true
		switch ch {
		case 'K':
			b.Castle.WhiteKingside = true
		case 'Q':
			b.Castle.WhiteQueenside = true
		case 'k':
			b.Castle.BlackKingside = true
		case 'q':
			b.Castle.BlackQueenside = true
		default:
			return invalidFEN("bad castling flag %q", ch)
		}
	}
	return nil
}

func parseEnPassant(b *Board, field string) error {
	if field == "-" {
		b.EnPassant = NoSquare
		return nil
	}
	if len(field) != 2 {
		return invalidFEN("bad en-passant square %q", field)
	}
	file := field[0]
	rank := field[1]
	if file < 'a' || file > 'h' {
		return invalidFEN("bad en-passant file %q", field)
	}
	if rank != '3' && rank != '6' {
		return invalidFEN("en-passant rank must be 3 or 6, got %q", field)
	}
	b.EnPassant = bitboard.FromFileRank(int(file-'a'), int(rank-'1'))
	return nil
}

func validateSemantics(b *Board) error {
	for _, c := range []Color{White, Black} {
		if b.Bitboard(King, c).Popcount() != 1 {
			return invalidFEN("%s must have exactly one king", c)
		}
	}
	if (b.Bitboard(Pawn, White)|b.Bitboard(Pawn, Black))&(bitboard.Rank1|bitboard.Rank8) != 0 {
		return invalidFEN("pawns cannot occupy rank 1 or 8")
	}
	// No two colored-piece bitboards may overlap.
	for i := 0; i < 12; i++ {
		for j := i + 1; j < 12; j++ {
			if b.pieces[i]&b.pieces[j] != 0 {
				return invalidFEN("overlapping piece placement")
			}
		}
	}
	if err := validateCastlingConsistency(b); err != nil {
		return err
	}
	// The side NOT to move must not be in check (it would mean the side
	// to move's previous move left its own king in check).
	if b.InCheck(b.SideToMove.Other()) {
		return invalidFEN("side not to move is in check")
	}
	return nil
}

func validateCastlingConsistency(b *Board) error {
	check := func(right bool, kingSq, rookSq Square, color Color) error {
		if !right {
			return nil
		}
		if !b.Bitboard(King, color).Has(kingSq) {
			return invalidFEN("castling right set without king on home square")
		}
		if !b.Bitboard(Rook, color).Has(rookSq) {
			return invalidFEN("castling right set without rook on home square")
		}
		return nil
	}
	if err := check(b.Castle.WhiteKingside, bitboard.E1, bitboard.H1, White); err != nil {
		return err
	}
	if err := check(b.Castle.WhiteQueenside, bitboard.E1, bitboard.A1, White); err != nil {
		return err
	}
	if err := check(b.Castle.BlackKingside, bitboard.E8, bitboard.H8, Black); err != nil {
		return err
	}
	if err := check(b.Castle.BlackQueenside, bitboard.E8, bitboard.A8, Black); err != nil {
		return err
	}
	return nil
}

// EmitFEN renders b as a standard six-field FEN string. ParseFEN(EmitFEN(b))
// round-trips exactly, per spec.md §8.
func (b *Board) EmitFEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := bitboard.FromFileRank(file, rank)
			cp, ok := b.PieceAt(sq)
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			l := cp.Piece.letter()
			if cp.Color == Black {
				l = l - 'A' + 'a'
			}
			sb.WriteByte(l)
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	if b.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	sb.WriteString(castlingFEN(b.Castle))
	sb.WriteByte(' ')
	if b.EnPassant == NoSquare {
		sb.WriteByte('-')
	} else {
		sb.WriteString(b.EnPassant.String())
	}
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.HalfmoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.FullmoveNum))
	return sb.String()
}

func castlingFEN(c CastleRights) string {
	s := ""
	if c.WhiteKingside {
		s += "K"
	}
	if c.WhiteQueenside {
		s += "Q"
	}
	if c.BlackKingside {
		s += "k"
	}
	if c.BlackQueenside {
		s += "q"
	}
	if s == "" {
		return "-"
	}
	return s
}
