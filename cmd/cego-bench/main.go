// Command cego-bench times a fixed-budget search against the stub
// evaluator, reporting simulations per second: the cheapest way to
// regression-test the selection/expansion/backup hot path without needing
// real network weights, grounded on the teacher's cmd/eval flag-based CLI
// shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/veles-dev/cego/chess"
	"github.com/veles-dev/cego/evaluator"
	"github.com/veles-dev/cego/history"
	"github.com/veles-dev/cego/mcts"
)

func main() {
	fen := flag.String("fen", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "FEN of the position to search from")
	budget := flag.Duration("time", 5*time.Second, "search time budget")
	workers := flag.Int("workers", 0, "worker goroutines (0 uses the default)")
	flag.Parse()

	board, err := chess.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cego-bench:", err)
		os.Exit(1)
	}

	cfg := mcts.DefaultConfig()
	if *workers > 0 {
		cfg.Workers = *workers
	}
	engine := mcts.New(evaluator.Stub{Value: 0}, cfg)

	h := history.New(board)
	start := time.Now()
	move, stats, err := engine.Search(context.Background(), h, start.Add(*budget))
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cego-bench:", err)
		os.Exit(1)
	}

	fmt.Printf("best move: %s (%s)\n", chess.EmitLAN(move), board.EmitSAN(move))
	fmt.Printf("simulations: %d\n", stats.Simulations)
	fmt.Printf("elapsed: %s\n", elapsed)
	fmt.Printf("sims/sec: %.0f\n", float64(stats.Simulations)/elapsed.Seconds())
}
