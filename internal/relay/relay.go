// Package relay forwards one user prompt to the model and returns its reply.
package relay

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/gemini-relay/internal/models"
	"github.com/example/gemini-relay/internal/providers/llm"
)

type Relay struct {
	client  llm.Client
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

type Option func(*Relay)

// WithTimeout bounds each remote call. Zero means no deadline beyond the caller's context.
func WithTimeout(d time.Duration) Option { return func(r *Relay) { r.timeout = d } }

func WithLogger(l zerolog.Logger) Option { return func(r *Relay) { r.log = l } }

func New(client llm.Client, opts ...Option) *Relay {
	r := &Relay{client: client, log: zerolog.Nop()}
	if m, ok := client.(llm.Model); ok {
		r.model = m.ModelName()
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Submit sends input to the model unless it is blank, in which case it returns
// (nil, nil) without any remote call. On failure the returned Exchange carries
// the user-visible message and the error is the classified *llm.Error.
func (r *Relay) Submit(ctx context.Context, input string) (*models.Exchange, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	ex := models.NewExchange(input, r.model)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := r.client.GenerateText(ctx, input)
	ex.Latency = time.Since(start)

	if err != nil {
		kind := llm.KindOf(err)
		if kind == "" {
			kind = llm.KindService
		}
		ex.ErrorKind = string(kind)
		ex.Error = llm.Message(kind)
		level := zerolog.ErrorLevel
		if errors.Is(err, context.Canceled) {
			// client disconnected
			level = zerolog.DebugLevel
		}
		r.log.WithLevel(level).Err(err).
			Str("exchange_id", ex.ID).
			Str("model", ex.Model).
			Str("kind", ex.ErrorKind).
			Dur("latency", ex.Latency).
			Msg("generate failed")
		return ex, err
	}

	ex.Output = out
	r.log.Info().
		Str("exchange_id", ex.ID).
		Str("model", ex.Model).
		Int("input_len", len(input)).
		Int("output_len", len(out)).
		Dur("latency", ex.Latency).
		Msg("exchange complete")
	return ex, nil
}
