// Package protocol implements the CEGO line-oriented stdin/stdout state
// machine of spec.md §4.6/§6: Start -> AwaitingFirst -> AwaitingNext,
// strict ASCII single-space-separated lines, hard-fail on any parse or
// protocol error, and forfeit as the only well-formed early termination.
// Grounded on the teacher's shell/ucgi.go (bufio.Scanner loop, switch
// dispatch on the parsed line) generalized from UCGI's permissive
// multi-command shell into CEGO's rigid two-state, hard-fail,
// one-command-per-prompt machine.
package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/veles-dev/cego/chess"
	"github.com/veles-dev/cego/history"
	"github.com/veles-dev/cego/mcts"
)

type state int

const (
	stateStart state = iota
	stateAwaitingFirst
	stateAwaitingNext
)

// Driver runs the CEGO protocol loop against an Engine, reading lines from
// in and writing protocol output lines to out.
type Driver struct {
	engine *mcts.Engine
	cfg    mcts.Config
	log    zerolog.Logger

	in  *bufio.Scanner
	out io.Writer

	state   state
	hist    *history.History
	yourInc time.Duration
	oppInc  time.Duration
}

// New builds a Driver that runs search through engine using cfg for each
// move's time-budget formula, reading CEGO lines from in and writing CEGO
// lines to out.
func New(engine *mcts.Engine, cfg mcts.Config, in io.Reader, out io.Writer, log zerolog.Logger) *Driver {
	return &Driver{
		engine: engine,
		cfg:    cfg,
		log:    log,
		in:     bufio.NewScanner(in),
		out:    out,
		state:  stateStart,
	}
}

// Run drives the protocol loop to completion: emits ready, then processes
// lines from in until a forfeit is emitted, the input stream ends, or a
// hard-fail condition is hit. A non-nil error from a non-forfeit condition
// means spec.md §7's "hard fail" applies; the caller should exit the
// process with a nonzero status. A forfeit caused by a fatal evaluator
// failure (*mcts.EvaluatorFailure) also returns non-nil, per spec.md §8
// scenario 6's "non-zero status" requirement for that case. Every other
// forfeit (an already-terminal root, no legal moves) is a clean,
// spec-sanctioned way to end the game and returns nil so the caller exits
// 0, as does a forfeit-free end of the input stream.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.writeLine("ready"); err != nil {
		return err
	}
	d.state = stateAwaitingFirst

	for d.in.Scan() {
		line := d.in.Text()
		if err := d.handleLine(ctx, line); err != nil {
			if cause, ok := asForfeit(err); ok {
				_ = d.writeLine("forfeit")
				var evalErr *mcts.EvaluatorFailure
				if errors.As(cause, &evalErr) {
					return cause
				}
				return nil
			}
			return err
		}
	}
	return d.in.Err()
}

// forfeitSignal marks a condition spec.md says must end with forfeit\n
// rather than a silent hard-fail: an evaluator that cannot produce a root
// value, or a search asked to move from an already-terminal position.
type forfeitSignal struct{ cause error }

func (f *forfeitSignal) Error() string { return "forfeit: " + f.cause.Error() }
func (f *forfeitSignal) Unwrap() error { return f.cause }

func asForfeit(err error) (error, bool) {
	if fs, ok := err.(*forfeitSignal); ok {
		return fs.cause, true
	}
	return nil, false
}

func (d *Driver) handleLine(ctx context.Context, line string) error {
	switch d.state {
	case stateAwaitingFirst:
		return d.handleFirst(ctx, line)
	case stateAwaitingNext:
		return d.handleNext(ctx, line)
	default:
		return &ProtocolViolation{Reason: "line received outside any awaiting state"}
	}
}

// handleFirst parses "<your_time> <your_inc> <opp_time> <opp_inc> <fen>".
// The fen field is itself six space-separated tokens; SplitN's final
// element preserves them joined by single spaces rather than re-splitting.
func (d *Driver) handleFirst(ctx context.Context, line string) error {
	fields := strings.SplitN(line, " ", 5)
	if len(fields) != 5 {
		return &ProtocolViolation{Reason: "expected 5 fields on first move line"}
	}
	yourTime, err := parseDuration(fields[0])
	if err != nil {
		return &ProtocolViolation{Reason: "bad your_time: " + err.Error()}
	}
	yourInc, err := parseDuration(fields[1])
	if err != nil {
		return &ProtocolViolation{Reason: "bad your_inc: " + err.Error()}
	}
	if _, err := parseDuration(fields[2]); err != nil {
		return &ProtocolViolation{Reason: "bad opp_time: " + err.Error()}
	}
	oppInc, err := parseDuration(fields[3])
	if err != nil {
		return &ProtocolViolation{Reason: "bad opp_inc: " + err.Error()}
	}
	board, err := chess.ParseFEN(fields[4])
	if err != nil {
		return err
	}

	d.yourInc = yourInc
	d.oppInc = oppInc
	d.hist = history.New(board)

	move, err := d.search(ctx, yourTime)
	if err != nil {
		return err
	}
	if err := d.writeLine(chess.EmitLAN(move)); err != nil {
		return err
	}
	d.hist.Push(ptr(d.hist.Current().Make(move)))
	d.state = stateAwaitingNext
	return nil
}

// handleNext parses "<your_time> <opp_time> <opp_move>". Increments were
// fixed at the first move and are not resent.
func (d *Driver) handleNext(ctx context.Context, line string) error {
	fields := strings.Split(line, " ")
	if len(fields) != 3 {
		return &ProtocolViolation{Reason: "expected 3 fields on subsequent move line"}
	}
	for _, f := range fields {
		if f == "" {
			return &ProtocolViolation{Reason: "empty field (repeated separator)"}
		}
	}
	yourTime, err := parseDuration(fields[0])
	if err != nil {
		return &ProtocolViolation{Reason: "bad your_time: " + err.Error()}
	}
	if _, err := parseDuration(fields[1]); err != nil {
		return &ProtocolViolation{Reason: "bad opp_time: " + err.Error()}
	}

	oppMove, err := chess.ParseLAN(d.hist.Current(), fields[2])
	if err != nil {
		return err
	}
	d.hist.Push(ptr(d.hist.Current().Make(oppMove)))

	move, err := d.search(ctx, yourTime)
	if err != nil {
		return err
	}
	if err := d.writeLine(chess.EmitLAN(move)); err != nil {
		return err
	}
	d.hist.Push(ptr(d.hist.Current().Make(move)))
	return nil
}

// search runs the engine against the stored increments, translating
// mcts's root-terminal/no-legal-moves/evaluator-failure outcomes into the
// protocol's forfeit signal rather than a hard-fail, per spec.md §7's
// "instead of a move the engine may emit forfeit" carve-out.
func (d *Driver) search(ctx context.Context, yourTime time.Duration) (chess.Move, error) {
	budget := mcts.TimeBudget(yourTime, d.yourInc, d.cfg)
	deadline := time.Now().Add(budget)

	move, stats, err := d.engine.Search(ctx, d.hist, deadline)
	if err != nil {
		d.log.Error().Err(err).Msg("search did not produce a move")
		return chess.Move{}, &forfeitSignal{cause: err}
	}
	d.log.Debug().
		Int64("simulations", stats.Simulations).
		Dur("budget", budget).
		Str("move", chess.EmitLAN(move)).
		Str("san", d.hist.Current().EmitSAN(move)).
		Msg("move selected")
	return move, nil
}

func (d *Driver) writeLine(s string) error {
	_, err := fmt.Fprintf(d.out, "%s\n", s)
	return err
}

func parseDuration(field string) (time.Duration, error) {
	ns, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, err
	}
	if ns < 0 {
		return 0, fmt.Errorf("negative duration %q", field)
	}
	return time.Duration(ns), nil
}

func ptr(b chess.Board) *chess.Board { return &b }
