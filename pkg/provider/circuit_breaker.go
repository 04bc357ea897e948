package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/vocabscope/pkg/config"
	"github.com/soundprediction/vocabscope/pkg/types"
)

// BreakerProvider wraps a Provider with circuit breaking logic so a failing
// remote endpoint stops a vocabulary batch run early instead of timing out
// request after request.
type BreakerProvider struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker
	log      *slog.Logger
}

// WithBreaker wraps a provider according to the circuit breaker config.
func WithBreaker(p Provider, cfg config.CircuitBreakerConfig, log *slog.Logger) *BreakerProvider {
	st := gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen && log != nil {
				log.Error("circuit breaker tripped", "provider", name, "from", from.String(), "to", to.String())
			}
		},
	}

	return &BreakerProvider{
		provider: p,
		cb:       gobreaker.NewCircuitBreaker(st),
		log:      log,
	}
}

// Name implements Provider.
func (b *BreakerProvider) Name() string { return b.provider.Name() }

// Vocabulary implements Provider. Vocabulary loads are local and cheap, so
// they bypass the breaker.
func (b *BreakerProvider) Vocabulary(ctx context.Context) ([]types.Token, error) {
	return b.provider.Vocabulary(ctx)
}

// Embeddings implements Provider.
func (b *BreakerProvider) Embeddings(ctx context.Context, tokens []types.Token, etype types.EmbeddingType) ([][]float32, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.provider.Embeddings(ctx, tokens, etype)
	})
	if err != nil {
		return nil, err
	}
	return result.([][]float32), nil
}

// Close implements Provider.
func (b *BreakerProvider) Close() error { return b.provider.Close() }
