package config

import (
	"testing"

	"github.com/matryer/is"

	"github.com/veles-dev/cego/mcts"
)

func TestLoadAppliesDefaultsWithNoFileOrArgs(t *testing.T) {
	is := is.New(t)
	cfg, err := Load("", nil)
	is.NoErr(err)
	is.Equal(cfg.Backend, "stub")
	is.Equal(cfg.Search.Workers, mcts.DefaultConfig().Workers)
	is.True(cfg.Search.CPuct > 0)
}

func TestLoadAppliesCLIFlagOverride(t *testing.T) {
	is := is.New(t)
	cfg, err := Load("", []string{"--workers", "8", "--backend", "onnx", "--weights", "net.onnx"})
	is.NoErr(err)
	is.Equal(cfg.Search.Workers, 8)
	is.Equal(cfg.Backend, "onnx")
	is.Equal(cfg.WeightsPath, "net.onnx")
}

func TestLoadRejectsUnknownFlag(t *testing.T) {
	is := is.New(t)
	_, err := Load("", []string{"--not-a-real-flag", "1"})
	is.True(err != nil)
}

func TestLoadToleratesMissingConfigFile(t *testing.T) {
	is := is.New(t)
	_, err := Load("/nonexistent/path/cego.yaml", nil)
	is.NoErr(err)
}
