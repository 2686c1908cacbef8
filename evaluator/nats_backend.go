package evaluator

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/veles-dev/cego/feature"
)

// NATSBackend sends a batch of feature tensors to a remote evaluator
// process over NATS request/reply and decodes the policy/value response,
// grounded on the teacher's bot/client.go RequestMove (nc.Request with a
// deadline) and cmd/lambda/main.go's retry.Do-wrapped NATS send for
// transient delivery failures. Macondo's wire format is protobuf generated
// from its own schema; since that generated code isn't available here, the
// wire format is a plain encoding/gob of natsRequest/natsResponse — gob is
// the standard-library answer to exactly this "serialize a private wire
// struct between two processes I control" case in the absence of the
// teacher's protobuf toolchain.
type NATSBackend struct {
	Conn    *nats.Conn
	Subject string
	Timeout time.Duration
}

type natsRequest struct {
	Tensors [][]float32
	Shape   [3]int
}

type natsResponse struct {
	Policies [][]float32
	Values   []float32
	Error    string
}

// NewNATSBackend returns a backend that requests evaluations on subject
// over conn, retrying transient send failures with the teacher's
// exponential backoff policy.
func NewNATSBackend(conn *nats.Conn, subject string, timeout time.Duration) *NATSBackend {
	return &NATSBackend{Conn: conn, Subject: subject, Timeout: timeout}
}

func (n *NATSBackend) Infer(ctx context.Context, tensors []*feature.Buffer) ([][]float32, []float32, error) {
	req := natsRequest{
		Tensors: make([][]float32, len(tensors)),
		Shape:   [3]int{feature.TotalChannels, feature.Dim, feature.Dim},
	}
	for i, buf := range tensors {
		req.Tensors[i] = buf.Floats()
	}

	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(req); err != nil {
		return nil, nil, fmt.Errorf("evaluator: encode nats request: %w", err)
	}

	var msg *nats.Msg
	err := retry.Do(
		func() error {
			var requestErr error
			msg, requestErr = n.Conn.RequestWithContext(ctx, n.Subject, body.Bytes())
			return requestErr
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.DelayType(func(attempt uint, err error, cfg *retry.Config) time.Duration {
			log.Warn().Err(err).Uint("attempt", attempt).Str("subject", n.Subject).
				Msg("evaluator request did not complete, retrying")
			return retry.BackOffDelay(attempt, err, cfg)
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("evaluator: nats request failed: %w", err)
	}

	var resp natsResponse
	if err := gob.NewDecoder(bytes.NewReader(msg.Data)).Decode(&resp); err != nil {
		return nil, nil, fmt.Errorf("evaluator: decode nats response: %w", err)
	}
	if resp.Error != "" {
		return nil, nil, fmt.Errorf("evaluator: remote error: %s", resp.Error)
	}
	return resp.Policies, resp.Values, nil
}
