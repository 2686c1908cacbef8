// Package config loads the CEGO engine's tunable constants: the MCTS
// search parameters spec.md §4.5/§9 leaves as "recommended defaults, to be
// tuned empirically," plus evaluator backend selection and the weight-file
// path. Grounded on the teacher's config.Config (a flat struct with a
// Load(args) method), generalized from namsral/flag's plain CLI-flag
// parsing to spf13/viper's layered file/env/flag resolution, since
// SPEC_FULL.md's ambient configuration needs a YAML file as the base layer
// with CLI and environment overrides on top.
package config

import (
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/veles-dev/cego/mcts"
)

// Config holds every tunable the engine needs at startup, resolved from (in
// ascending priority) a YAML file, CEGO_* environment variables, and CLI
// flags.
type Config struct {
	// Search carries the MCTS tuning constants straight through to
	// mcts.New/mcts.Engine.Search.
	Search mcts.Config

	// Backend selects which evaluator.Evaluator implementation to
	// construct: "stub", "onnx", or "nats".
	Backend string

	// WeightsPath is the ONNX model file the onnx backend loads.
	WeightsPath string

	// NATSURL and NATSSubject address the nats backend's inference
	// service.
	NATSURL     string
	NATSSubject string

	// CacheMemoryFraction is the fraction of system RAM the evaluator
	// result cache (evaluator.CachingEvaluator) is allowed to occupy,
	// sized the way the teacher's transposition table sizes itself from
	// pbnjay/memory.TotalMemory. Zero disables the cache.
	CacheMemoryFraction float64

	// LogLevel is a zerolog level name: "debug", "info", "warn", "error".
	LogLevel string
}

// Load resolves a Config from defaults, an optional YAML file at path (if
// non-empty and present), CEGO_-prefixed environment variables, and args
// (CLI flags, typically os.Args[1:]).
func Load(path string, args []string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CEGO")
	v.AutomaticEnv()

	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, err
			}
		}
	}

	fs := pflag.NewFlagSet("cego", pflag.ContinueOnError)
	fs.Float64("cpuct", v.GetFloat64("search.cpuct"), "PUCT exploration constant")
	fs.Float64("virtual-loss", v.GetFloat64("search.virtual_loss"), "virtual loss magnitude")
	fs.Bool("root-noise", v.GetBool("search.root_noise"), "mix Dirichlet noise into root priors")
	fs.Float64("dirichlet-alpha", v.GetFloat64("search.dirichlet_alpha"), "Dirichlet noise concentration")
	fs.Float64("dirichlet-epsilon", v.GetFloat64("search.dirichlet_epsilon"), "Dirichlet noise mixing weight")
	fs.Int("workers", v.GetInt("search.workers"), "concurrent selection/expansion goroutines")
	fs.Int("batch-size", v.GetInt("search.batch_size"), "evaluator batch flush size")
	fs.Duration("batch-timeout", v.GetDuration("search.batch_timeout"), "evaluator batch flush timeout")
	fs.Float64("move-horizon", v.GetFloat64("search.move_horizon"), "time-management move horizon divisor")
	fs.Float64("time-factor", v.GetFloat64("search.time_factor"), "time-management increment factor")
	fs.Duration("safety-margin", v.GetDuration("search.safety_margin"), "time-management safety margin")
	fs.String("backend", v.GetString("backend"), "evaluator backend: stub, onnx, or nats")
	fs.String("weights", v.GetString("weights_path"), "ONNX model weights path")
	fs.String("nats-url", v.GetString("nats_url"), "NATS server URL for the nats backend")
	fs.String("nats-subject", v.GetString("nats_subject"), "NATS inference request subject")
	fs.Float64("cache-memory-fraction", v.GetFloat64("cache_memory_fraction"), "fraction of system RAM for the evaluator result cache, 0 to disable")
	fs.String("log-level", v.GetString("log_level"), "zerolog level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, err
	}

	return Config{
		Search: mcts.Config{
			CPuct:            v.GetFloat64("cpuct"),
			VirtualLoss:      v.GetFloat64("virtual-loss"),
			DirichletAlpha:   v.GetFloat64("dirichlet-alpha"),
			DirichletEpsilon: v.GetFloat64("dirichlet-epsilon"),
			RootNoise:        v.GetBool("root-noise"),
			Workers:          v.GetInt("workers"),
			BatchSize:        v.GetInt("batch-size"),
			BatchTimeout:     v.GetDuration("batch-timeout"),
			MoveHorizon:      v.GetFloat64("move-horizon"),
			TimeFactor:       v.GetFloat64("time-factor"),
			SafetyMargin:     v.GetDuration("safety-margin"),
		},
		Backend:             v.GetString("backend"),
		WeightsPath:         v.GetString("weights"),
		NATSURL:             v.GetString("nats-url"),
		NATSSubject:         v.GetString("nats-subject"),
		CacheMemoryFraction: v.GetFloat64("cache-memory-fraction"),
		LogLevel:            v.GetString("log-level"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	d := mcts.DefaultConfig()
	v.SetDefault("search.cpuct", d.CPuct)
	v.SetDefault("search.virtual_loss", d.VirtualLoss)
	v.SetDefault("search.root_noise", d.RootNoise)
	v.SetDefault("search.dirichlet_alpha", d.DirichletAlpha)
	v.SetDefault("search.dirichlet_epsilon", d.DirichletEpsilon)
	v.SetDefault("search.workers", d.Workers)
	v.SetDefault("search.batch_size", d.BatchSize)
	v.SetDefault("search.batch_timeout", d.BatchTimeout)
	v.SetDefault("search.move_horizon", d.MoveHorizon)
	v.SetDefault("search.time_factor", d.TimeFactor)
	v.SetDefault("search.safety_margin", d.SafetyMargin)
	v.SetDefault("backend", "stub")
	v.SetDefault("weights_path", "")
	v.SetDefault("nats_url", "")
	v.SetDefault("nats_subject", "")
	v.SetDefault("cache_memory_fraction", 0.05)
	v.SetDefault("log_level", "info")
}
