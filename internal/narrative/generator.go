// File path: internal/narrative/generator.go
package narrative

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/nicodishanthj/spinyleaf/internal/common"
	"github.com/nicodishanthj/spinyleaf/internal/common/telemetry"
	"github.com/nicodishanthj/spinyleaf/internal/llm"
	"github.com/nicodishanthj/spinyleaf/internal/llm/providers"
)

// Options bound the external call.
type Options struct {
	// Timeout applies to each attempt.
	Timeout    time.Duration
	MaxRetries int
	// Backoff is the first retry delay; later delays grow exponentially.
	Backoff       time.Duration
	MaxBackoff    time.Duration
	RatePerMinute float64
	// TripAfter consecutive failures opens the breaker.
	TripAfter    uint32
	BreakerReset time.Duration
}

func DefaultOptions() Options {
	return Options{
		Timeout:      60 * time.Second,
		MaxRetries:   3,
		Backoff:      2 * time.Second,
		MaxBackoff:   30 * time.Second,
		TripAfter:    5,
		BreakerReset: time.Minute,
	}
}

// Generator requests one single-turn completion per descriptor.
type Generator struct {
	provider llm.Provider
	opts     Options
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	logger   *slog.Logger
}

func NewGenerator(provider llm.Provider, opts Options) *Generator {
	defaults := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaults.Backoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaults.MaxBackoff
	}
	if opts.TripAfter == 0 {
		opts.TripAfter = defaults.TripAfter
	}
	if opts.BreakerReset <= 0 {
		opts.BreakerReset = defaults.BreakerReset
	}
	limit := rate.Inf
	if opts.RatePerMinute > 0 {
		limit = rate.Limit(opts.RatePerMinute / 60)
	}
	logger := common.Logger()
	tripAfter := opts.TripAfter
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Timeout:     opts.BreakerReset,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("narrative: circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &Generator{
		provider: provider,
		opts:     opts,
		limiter:  rate.NewLimiter(limit, 1),
		breaker:  breaker,
		logger:   logger,
	}
}

// ProviderName reports which backend answers requests.
func (g *Generator) ProviderName() string {
	if g.provider == nil {
		return ""
	}
	return g.provider.Name()
}

// Generate renders the descriptor's prompt and returns the completion text.
// Template problems are returned as plain errors; failures of the external
// call become a *GenerationError.
func (g *Generator) Generate(ctx context.Context, d Descriptor, values map[string]any) (string, error) {
	prompt, err := d.Render(values)
	if err != nil {
		return "", err
	}
	return g.Complete(ctx, d.Dimension, prompt)
}

// Complete sends an already rendered prompt as a single user message.
func (g *Generator) Complete(ctx context.Context, dimension, prompt string) (string, error) {
	if g.provider == nil {
		return "", &GenerationError{Dimension: dimension, Err: errors.New("no provider configured")}
	}
	ctx, end := telemetry.StartSpan(ctx, "narrative."+dimension)
	attempts := 0
	var text string
	op := func() error {
		attempts++
		if err := g.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		started := time.Now()
		result, err := g.breaker.Execute(func() (interface{}, error) {
			callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
			defer cancel()
			return g.provider.Chat(callCtx, []llm.Message{{Role: "user", Content: prompt}})
		})
		telemetry.RecordGenerationAttempt(dimension, time.Since(started))
		if err != nil {
			reason := failureReason(ctx, err)
			telemetry.RecordGenerationFailure(dimension, reason)
			g.logger.Warn("narrative: attempt failed", "dimension", dimension, "attempt", attempts, "reason", reason, "error", err)
			if reason == "permanent" || reason == "breaker_open" || reason == "canceled" {
				return backoff.Permanent(err)
			}
			return err
		}
		out, _ := result.(string)
		out = strings.TrimSpace(out)
		if out == "" {
			telemetry.RecordGenerationFailure(dimension, "empty")
			return providers.ErrEmptyCompletion
		}
		text = out
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = g.opts.Backoff
	expo.MaxInterval = g.opts.MaxBackoff
	expo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(g.opts.MaxRetries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		end("failed", false)
		return "", &GenerationError{Dimension: dimension, Attempts: attempts, Err: err}
	}
	end("ok", true)
	g.logger.Info("narrative: generated", "dimension", dimension, "attempts", attempts, "chars", len(text))
	return text, nil
}

func failureReason(ctx context.Context, err error) string {
	switch {
	case ctx.Err() != nil:
		return "canceled"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case llm.IsPermanent(err):
		return "permanent"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, providers.ErrEmptyCompletion):
		return "empty"
	default:
		return "transient"
	}
}
