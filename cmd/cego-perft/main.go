// Command cego-perft counts move-generator leaf nodes at a fixed depth
// from a given position, and optionally divides that count by root move to
// localize a discrepancy. Grounded on the teacher's cmd/eval flag-based
// CLI shape; the counting itself is chess.Perft/PerftDivide.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/veles-dev/cego/chess"
)

func main() {
	fen := flag.String("fen", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "FEN of the position to count from")
	depth := flag.Int("depth", 5, "perft depth")
	divide := flag.Bool("divide", false, "break the count down by root move")
	flag.Parse()

	board, err := chess.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cego-perft:", err)
		os.Exit(1)
	}

	if *divide {
		counts := chess.PerftDivide(board, *depth)
		moves := make([]string, 0, len(counts))
		for m := range counts {
			moves = append(moves, m)
		}
		sort.Strings(moves)

		var total uint64
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, counts[m])
			total += counts[m]
		}
		fmt.Printf("total: %d\n", total)
		return
	}

	fmt.Println(chess.Perft(board, *depth))
}
