package history

import (
	"testing"

	"github.com/matryer/is"

	"github.com/veles-dev/cego/chess"
)

func mustFEN(is *is.I, fen string) *chess.Board {
	b, err := chess.ParseFEN(fen)
	is.NoErr(err)
	return b
}

func TestSliceCapsAtWindow(t *testing.T) {
	is := is.New(t)
	b := mustFEN(is, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	h := New(b)
	for i := 0; i < 10; i++ {
		h.Push(b)
	}
	is.Equal(h.Len(), 11)
	is.Equal(len(h.Slice()), Window)
}

func TestRepetitionCount(t *testing.T) {
	is := is.New(t)
	b := mustFEN(is, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	h := New(b)
	is.Equal(h.RepetitionCount(), 1)
	h.Push(b)
	h.Push(b)
	is.Equal(h.RepetitionCount(), 3)
}
