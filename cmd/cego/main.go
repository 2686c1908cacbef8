// Command cego runs the CEGO chess engine as a stdin/stdout line-protocol
// process. Grounded on the teacher's cmd/ucgi_cli/main.go: load config,
// set up a zerolog console logger keyed off the configured level, then
// hand the process over to a protocol loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/veles-dev/cego/config"
	"github.com/veles-dev/cego/evaluator"
	"github.com/veles-dev/cego/mcts"
	"github.com/veles-dev/cego/protocol"
)

func main() {
	cfg, err := config.Load(os.Getenv("CEGO_CONFIG"), os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "cego: config error:", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	eval, err := buildEvaluator(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build evaluator backend")
		os.Exit(1)
	}

	engine := mcts.New(eval, cfg.Search)
	driver := protocol.New(engine, cfg.Search, os.Stdin, os.Stdout, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := driver.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("protocol driver terminated with an error")
		os.Exit(1)
	}
	logger.Info().Msg("session ended")
}

func buildEvaluator(cfg config.Config, logger zerolog.Logger) (evaluator.Evaluator, error) {
	switch cfg.Backend {
	case "", "stub":
		logger.Warn().Msg("running with the stub evaluator; moves will not reflect any learned policy")
		return evaluator.Stub{Value: 0}, nil

	case "onnx":
		modelBytes, err := os.ReadFile(cfg.WeightsPath)
		if err != nil {
			return nil, fmt.Errorf("reading onnx weights: %w", err)
		}
		backend, err := evaluator.NewONNXBackend(modelBytes)
		if err != nil {
			return nil, fmt.Errorf("loading onnx model: %w", err)
		}
		return withCache(evaluator.New(backend), cfg, logger), nil

	case "nats":
		conn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to nats: %w", err)
		}
		backend := evaluator.NewNATSBackend(conn, cfg.NATSSubject, 2*time.Second)
		return withCache(evaluator.New(backend), cfg, logger), nil

	default:
		return nil, fmt.Errorf("unknown evaluator backend %q", cfg.Backend)
	}
}

// withCache wraps eval in evaluator.CachingEvaluator when the config
// allocates it a nonzero share of system RAM. The stub backend is never
// wrapped: it has no transposition cost worth amortizing.
func withCache(eval evaluator.Evaluator, cfg config.Config, logger zerolog.Logger) evaluator.Evaluator {
	if cfg.CacheMemoryFraction <= 0 {
		return eval
	}
	logger.Info().Float64("fraction", cfg.CacheMemoryFraction).Msg("wrapping evaluator with a result cache")
	return evaluator.NewCachingEvaluator(eval, cfg.CacheMemoryFraction)
}
