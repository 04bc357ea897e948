package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soundprediction/vocabscope/pkg/config"
	"github.com/soundprediction/vocabscope/pkg/types"
)

// Provider errors
var (
	// ErrUnsupportedEmbeddingType indicates the provider cannot produce the
	// requested embedding layer (e.g. input embeddings of a remote API).
	ErrUnsupportedEmbeddingType = errors.New("embedding type not supported by this provider")

	// ErrEmptyVocabulary indicates the provider has no vocabulary to analyze.
	ErrEmptyVocabulary = errors.New("provider returned an empty vocabulary")
)

// Provider produces the vocabulary and embedding matrix of one model.
type Provider interface {
	// Name identifies the model for logging and output file naming.
	Name() string

	// Vocabulary returns the model's tokens ordered by id.
	Vocabulary(ctx context.Context) ([]types.Token, error)

	// Embeddings returns one vector per token, row i pairing with tokens[i].
	Embeddings(ctx context.Context, tokens []types.Token, etype types.EmbeddingType) ([][]float32, error)

	// Close releases provider resources.
	Close() error
}

// New builds the provider selected by cfg for the given model, wrapping it
// in a circuit breaker when enabled.
func New(cfg config.EmbeddingConfig, cb config.CircuitBreakerConfig, model string, log *slog.Logger) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case "openai":
		p, err = NewOpenAIProvider(model, cfg)
	case "embedeverything":
		p, err = NewEmbedEverythingProvider(model, cfg)
	case "static":
		p, err = LoadStatic(model)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cb.Enabled {
		p = WithBreaker(p, cb, log)
	}
	return p, nil
}
