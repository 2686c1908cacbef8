// Package bitboard implements 64-bit square sets in little-endian
// rank-file (LERF) order, and the precomputed attack tables the board
// package builds legal moves on top of.
//
// Square numbering: a1=0, b1=1, ..., h1=7, a2=8, ..., h8=63. Bit i of a
// Bitboard is set iff square i is a member of the set.
package bitboard

import "math/bits"

// Bitboard is a 64-bit square set, one bit per square, LERF-ordered.
type Bitboard uint64

// Square is a board square in [0, 64).
type Square int

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// File and Rank are 0-indexed, file varies fastest in LERF ordering.
func (s Square) File() int { return int(s) & 7 }
func (s Square) Rank() int { return int(s) >> 3 }

// FromFileRank builds a Square from a 0-indexed file and rank.
func FromFileRank(file, rank int) Square { return Square(rank*8 + file) }

// Bit returns the singleton bitboard containing only s.
func (s Square) Bit() Bitboard { return Bitboard(1) << uint(s) }

const (
	FileA Bitboard = 0x0101010101010101
	FileH          = FileA << 7
	Rank1 Bitboard = 0xff
	Rank8          = Rank1 << 56

	NotFileA = ^FileA
	NotFileH = ^FileH

	Full  Bitboard = ^Bitboard(0)
	Empty Bitboard = 0
)

// FileMask and RankMask return the full file/rank bitboard containing s.
func FileMask(file int) Bitboard { return FileA << uint(file) }
func RankMask(rank int) Bitboard { return Rank1 << uint(8*rank) }

// Union, Intersect, and Complement are the three set operations spec.md
// §4.1 names explicitly; most call sites just use Go's bitwise operators,
// but these read better at call sites that mirror the spec's vocabulary.
func Union(a, b Bitboard) Bitboard      { return a | b }
func Intersect(a, b Bitboard) Bitboard  { return a & b }
func Complement(a Bitboard) Bitboard    { return ^a }
func Difference(a, b Bitboard) Bitboard { return a &^ b }

// Popcount returns the number of set bits.
func (b Bitboard) Popcount() int { return bits.OnesCount64(uint64(b)) }

// LSB returns the lowest-numbered set square, or NoSquare if b is empty.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB clears and returns the lowest-numbered set square.
func (b *Bitboard) PopLSB() Square {
	s := b.LSB()
	*b &= *b - 1
	return s
}

// Has reports whether s is a member of b.
func (b Bitboard) Has(s Square) bool { return b&s.Bit() != 0 }

// ShiftNorth/South/East/West shift the whole set by one square in the given
// direction, masking off wraparound across board edges.
func (b Bitboard) ShiftNorth() Bitboard { return b << 8 }
func (b Bitboard) ShiftSouth() Bitboard { return b >> 8 }
func (b Bitboard) ShiftEast() Bitboard  { return (b &^ FileH) << 1 }
func (b Bitboard) ShiftWest() Bitboard  { return (b &^ FileA) >> 1 }

func (b Bitboard) ShiftNorthEast() Bitboard { return b.ShiftNorth().ShiftEast() }
func (b Bitboard) ShiftNorthWest() Bitboard { return b.ShiftNorth().ShiftWest() }
func (b Bitboard) ShiftSouthEast() Bitboard { return b.ShiftSouth().ShiftEast() }
func (b Bitboard) ShiftSouthWest() Bitboard { return b.ShiftSouth().ShiftWest() }

// Squares returns the set bits as a slice of Squares, lowest first. Mostly
// useful in tests and debug printing; hot paths use PopLSB loops instead.
func (b Bitboard) Squares() []Square {
	out := make([]Square, 0, b.Popcount())
	for bb := b; bb != 0; {
		out = append(out, bb.PopLSB())
	}
	return out
}

// String renders the square in algebraic notation, e.g. "e4".
func (s Square) String() string {
	if s < 0 || s > 63 {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}
