package protocol

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/veles-dev/cego/evaluator"
	"github.com/veles-dev/cego/mcts"
)

func newTestDriver(input string) (*Driver, *bytes.Buffer) {
	cfg := mcts.DefaultConfig()
	cfg.Workers = 1
	cfg.SafetyMargin = 0
	eng := mcts.New(evaluator.Stub{Value: 0}, cfg)
	var out bytes.Buffer
	d := New(eng, cfg, strings.NewReader(input), &out, zerolog.Nop())
	return d, &out
}

func readLines(buf *bytes.Buffer) []string {
	var lines []string
	s := bufio.NewScanner(buf)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	return lines
}

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func firstLine(yourTime, yourInc, oppTime, oppInc time.Duration, fen string) string {
	return fmt.Sprintf("%d %d %d %d %s", yourTime.Nanoseconds(), yourInc.Nanoseconds(), oppTime.Nanoseconds(), oppInc.Nanoseconds(), fen)
}

func nextLine(yourTime, oppTime time.Duration, oppMove string) string {
	return fmt.Sprintf("%d %d %s", yourTime.Nanoseconds(), oppTime.Nanoseconds(), oppMove)
}

func TestDriverEmitsReadyThenMoveOnStartup(t *testing.T) {
	is := is.New(t)
	line := firstLine(5*time.Second, 0, 5*time.Second, 0, startFEN)

	d, out := newTestDriver(line + "\n")
	err := d.Run(context.Background())
	is.NoErr(err)

	lines := readLines(out)
	is.True(len(lines) >= 2)
	is.Equal(lines[0], "ready")
	is.True(lines[1] != "forfeit")
}

func TestDriverForfeitsOnAlreadyCheckmatedRoot(t *testing.T) {
	is := is.New(t)
	// Black has been checkmated: no legal black response exists.
	fen := "k1K5/1Q6/8/8/8/8/8/8 b - - 0 1"
	line := firstLine(5*time.Second, 0, 5*time.Second, 0, fen)

	d, out := newTestDriver(line + "\n")
	err := d.Run(context.Background())
	is.NoErr(err)

	lines := readLines(out)
	is.Equal(lines[0], "ready")
	is.Equal(lines[len(lines)-1], "forfeit")
}

type failingEvaluator struct{}

func (failingEvaluator) EvaluateBatch(ctx context.Context, reqs []evaluator.Request) ([]evaluator.Result, error) {
	return nil, errors.New("evaluator unavailable")
}

func TestDriverForfeitsWithNonNilErrorOnFatalEvaluatorFailure(t *testing.T) {
	is := is.New(t)
	cfg := mcts.DefaultConfig()
	cfg.Workers = 1
	cfg.SafetyMargin = 0
	eng := mcts.New(failingEvaluator{}, cfg)

	line := firstLine(5*time.Second, 0, 5*time.Second, 0, startFEN)
	var out bytes.Buffer
	d := New(eng, cfg, strings.NewReader(line+"\n"), &out, zerolog.Nop())
	err := d.Run(context.Background())

	is.True(err != nil)
	var evalErr *mcts.EvaluatorFailure
	is.True(errors.As(err, &evalErr))

	lines := readLines(&out)
	is.Equal(lines[len(lines)-1], "forfeit")
}

func TestDriverRejectsMalformedFirstLine(t *testing.T) {
	is := is.New(t)
	d, out := newTestDriver("not-enough-fields\n")
	err := d.Run(context.Background())
	is.True(err != nil)
	var violation *ProtocolViolation
	is.True(errorsAsViolation(err, &violation))

	lines := readLines(out)
	is.Equal(lines[0], "ready")
	is.True(lines[len(lines)-1] != "forfeit")
}

func TestDriverHandlesSecondMoveAfterFirst(t *testing.T) {
	is := is.New(t)
	first := firstLine(5*time.Second, 0, 5*time.Second, 0, startFEN)
	// e7e5 is legal from the starting position regardless of what the
	// engine itself chose as white's first move.
	second := nextLine(5*time.Second, 5*time.Second, "e7e5")

	d, out := newTestDriver(first + "\n" + second + "\n")
	err := d.Run(context.Background())
	is.NoErr(err)

	lines := readLines(out)
	is.True(len(lines) >= 3)
	is.Equal(lines[0], "ready")
}

func TestDriverRejectsRepeatedSeparatorOnNextLine(t *testing.T) {
	is := is.New(t)
	first := firstLine(5*time.Second, 0, 5*time.Second, 0, startFEN)
	second := "5000000000  5000000000 e7e5"

	d, out := newTestDriver(first + "\n" + second + "\n")
	err := d.Run(context.Background())
	is.True(err != nil)

	lines := readLines(out)
	is.True(lines[len(lines)-1] != "forfeit")
}

func errorsAsViolation(err error, target **ProtocolViolation) bool {
	v, ok := err.(*ProtocolViolation)
	if ok {
		*target = v
	}
	return ok
}
