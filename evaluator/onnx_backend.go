package evaluator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/owulveryck/onnx-go"
	"github.com/owulveryck/onnx-go/backend/x/gorgonnx"
	"github.com/rs/zerolog/log"
	"gorgonia.org/tensor"

	"github.com/veles-dev/cego/feature"
)

// ONNXBackend runs a locally loaded ONNX model, grounded on the teacher's
// mlevaluateMovesLocal (game/mlhelper.go): build one batched tensor.Dense
// from the pending leaves, feed it through a gorgonnx.Graph, and read back
// the policy/value outputs. The model graph is not safe for concurrent
// Run calls, so Infer serializes on a mutex — matching spec.md §4.5's
// "if [the evaluator] is not [thread-safe], a single evaluator-owner
// thread serves requests from a concurrent queue" fallback.
type ONNXBackend struct {
	mu      sync.Mutex
	backend *gorgonnx.Graph
	model   *onnx.Model
}

// NewONNXBackend loads the model bytes (an already-read ONNX weight file)
// into a fresh graph.
func NewONNXBackend(modelBytes []byte) (*ONNXBackend, error) {
	backend := gorgonnx.NewGraph()
	model := onnx.NewModel(backend)
	if err := model.UnmarshalBinary(modelBytes); err != nil {
		return nil, fmt.Errorf("evaluator: failed to unmarshal onnx model: %w", err)
	}
	return &ONNXBackend{backend: backend, model: model}, nil
}

func (o *ONNXBackend) Infer(ctx context.Context, tensors []*feature.Buffer) ([][]float32, []float32, error) {
	start := time.Now()
	o.mu.Lock()
	defer o.mu.Unlock()

	n := len(tensors)
	flat := make([]float32, 0, n*feature.TotalFloats)
	for _, buf := range tensors {
		flat = append(flat, buf.Floats()...)
	}
	input := tensor.New(
		tensor.WithShape(n, feature.TotalChannels, feature.Dim, feature.Dim),
		tensor.WithBacking(flat),
	)

	if err := o.model.SetInput(0, input); err != nil {
		return nil, nil, fmt.Errorf("evaluator: set onnx input: %w", err)
	}
	if err := o.backend.Run(); err != nil {
		return nil, nil, fmt.Errorf("evaluator: onnx run: %w", err)
	}
	outputs, err := o.model.GetOutputTensors()
	if err != nil {
		return nil, nil, fmt.Errorf("evaluator: onnx outputs: %w", err)
	}
	if len(outputs) < 2 {
		return nil, nil, fmt.Errorf("evaluator: expected policy and value outputs, got %d tensors", len(outputs))
	}

	policyFlat, err := asFloat32Slice(outputs[0].Data())
	if err != nil {
		return nil, nil, fmt.Errorf("evaluator: policy output: %w", err)
	}
	values, err := asFloat32Slice(outputs[1].Data())
	if err != nil {
		return nil, nil, fmt.Errorf("evaluator: value output: %w", err)
	}

	policies := make([][]float32, n)
	for i := 0; i < n; i++ {
		policies[i] = policyFlat[i*PolicySize : (i+1)*PolicySize]
	}

	log.Debug().Int("batch_size", n).Dur("elapsed", time.Since(start)).Msg("onnx evaluator batch")
	return policies, values, nil
}

func asFloat32Slice(data interface{}) ([]float32, error) {
	switch v := data.(type) {
	case []float32:
		return v, nil
	case float32:
		return []float32{v}, nil
	default:
		return nil, fmt.Errorf("unexpected tensor data type %T", v)
	}
}
