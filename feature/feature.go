// Package feature encodes a position history into the 20×8×8×7-history
// tensor the evaluator consumes, per spec.md §4.3. The encoding follows the
// teacher's BuildMLVector pattern in game/mlhelper.go: a single flat float32
// buffer drawn from a sync.Pool, sliced into per-plane regions instead of
// allocating a nested structure, then wrapped in a gorgonia.org/tensor.Dense
// for the evaluator backends that need a typed tensor view.
package feature

import (
	"sync"

	"gorgonia.org/tensor"

	"github.com/veles-dev/cego/chess"
)

const (
	// PlanesPerPosition is the per-position channel count of spec.md §4.3:
	// 12 piece planes, 1 en-passant, 4 castling, 1 side-to-move, 1 halfmove
	// clock, 1 presence mask.
	PlanesPerPosition = 20
	// History is the number of position slots concatenated along the
	// channel axis, current position last.
	History = 7
	// Dim is the board's spatial extent in both axes.
	Dim = 8

	TotalChannels = PlanesPerPosition * History
	planeSize     = Dim * Dim
	TotalFloats   = TotalChannels * planeSize
)

// HalfmoveClockScale controls plane 19's normalization. spec.md §9(b) notes
// the source leaves this unnormalized, a property of the trained weight
// file rather than of the encoding itself; 1.0 reproduces the source's raw
// halfmove-clock broadcast, and deployments with differently trained
// weights may override it.
var HalfmoveClockScale = 1.0

var bufferPool = sync.Pool{
	New: func() interface{} {
		v := make([]float32, TotalFloats)
		return &v
	},
}

// Buffer is a pooled flat feature vector. Release returns it to the pool;
// callers must not use buf after calling Release.
type Buffer struct {
	vec *[]float32
}

// Acquire returns a zeroed Buffer from the pool.
func Acquire() *Buffer {
	p := bufferPool.Get().(*[]float32)
	v := *p
	for i := range v {
		v[i] = 0
	}
	return &Buffer{vec: p}
}

// Release returns buf to the pool.
func (buf *Buffer) Release() { bufferPool.Put(buf.vec) }

// Floats exposes the flat backing slice, oldest position first.
func (buf *Buffer) Floats() []float32 { return *buf.vec }

// Tensor wraps the buffer in a (20*7, 8, 8) gorgonia.org/tensor.Dense view,
// channels-first, matching the evaluator backends' expected input shape.
func (buf *Buffer) Tensor() *tensor.Dense {
	return tensor.New(tensor.WithShape(TotalChannels, Dim, Dim), tensor.WithBacking(buf.Floats()))
}

// Encode fills buf from positions, oldest first and current position last
// (as returned by history.History.Slice). Slots beyond len(positions) are
// left zeroed, including their presence-mask plane, per spec.md §4.3's
// padding rule for games younger than seven plies. Encode writes only the
// nonzero entries, so buf must be zeroed, as Acquire returns it.
func Encode(buf *Buffer, positions []chess.Board) {
	vec := buf.Floats()
	n := len(positions)
	pad := History - n
	for slot := 0; slot < n; slot++ {
		encodeOne(vec, pad+slot, &positions[slot])
	}
}

func encodeOne(vec []float32, slot int, b *chess.Board) {
	base := slot * PlanesPerPosition * planeSize
	plane := func(i int) []float32 { return vec[base+i*planeSize : base+(i+1)*planeSize] }

	idx := 0
	for _, c := range []chess.Color{chess.White, chess.Black} {
		for p := chess.Pawn; p <= chess.King; p++ {
			writeBitboard(plane(idx), b.Bitboard(p, c))
			idx++
		}
	}
	// idx == 12 now.
	if b.EnPassant != chess.NoSquare {
		plane(12)[int(b.EnPassant)] = 1.0
	}
	fillIf(plane(13), b.Castle.WhiteKingside)
	fillIf(plane(14), b.Castle.WhiteQueenside)
	fillIf(plane(15), b.Castle.BlackKingside)
	fillIf(plane(16), b.Castle.BlackQueenside)
	fillIf(plane(17), b.SideToMove == chess.White)
	fillConst(plane(18), float32(float64(b.HalfmoveClock)*HalfmoveClockScale))
	fillIf(plane(19), true) // presence mask: this slot holds a real position.
}

func writeBitboard(p []float32, bb chess.Bitboard) {
	for sq := 0; sq < 64; sq++ {
		if bb.Has(chess.Square(sq)) {
			p[sq] = 1.0
		}
	}
}

func fillIf(p []float32, cond bool) {
	if cond {
		fillConst(p, 1.0)
	}
}

func fillConst(p []float32, v float32) {
	for i := range p {
		p[i] = v
	}
}
