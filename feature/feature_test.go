package feature

import (
	"testing"

	"github.com/matryer/is"

	"github.com/veles-dev/cego/chess"
)

func TestEncodePadsShortHistory(t *testing.T) {
	is := is.New(t)
	b, err := chess.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	is.NoErr(err)

	buf := Acquire()
	defer buf.Release()
	Encode(buf, []chess.Board{*b})

	vec := buf.Floats()
	// Every slot before the last should be entirely zero, including its
	// presence-mask plane.
	lastSlotStart := (History - 1) * PlanesPerPosition * planeSize
	for i := 0; i < lastSlotStart; i++ {
		if vec[i] != 0 {
			t.Fatalf("expected zero padding at index %d, got %v", i, vec[i])
		}
	}
	presenceMaskPlane := vec[lastSlotStart+19*planeSize : lastSlotStart+20*planeSize]
	for _, v := range presenceMaskPlane {
		is.Equal(v, float32(1.0))
	}
}

func TestEncodeSideToMovePlane(t *testing.T) {
	is := is.New(t)
	white, err := chess.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	is.NoErr(err)
	black, err := chess.ParseFEN("4k3/8/8/8/8/8/8/4K3 b - - 0 1")
	is.NoErr(err)

	buf := Acquire()
	defer buf.Release()
	Encode(buf, []chess.Board{*white})
	vec := buf.Floats()
	lastSlotStart := (History - 1) * PlanesPerPosition * planeSize
	is.Equal(vec[lastSlotStart+17*planeSize], float32(1.0))

	buf2 := Acquire()
	defer buf2.Release()
	Encode(buf2, []chess.Board{*black})
	vec = buf2.Floats()
	is.Equal(vec[lastSlotStart+17*planeSize], float32(0.0))
}

func TestTensorShape(t *testing.T) {
	is := is.New(t)
	b, err := chess.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	is.NoErr(err)
	buf := Acquire()
	defer buf.Release()
	Encode(buf, []chess.Board{*b})
	ten := buf.Tensor()
	is.Equal(ten.Shape()[0], TotalChannels)
	is.Equal(ten.Shape()[1], Dim)
	is.Equal(ten.Shape()[2], Dim)
}
