package vocabscope

import (
	"context"

	"github.com/soundprediction/vocabscope/pkg/provider"
	"github.com/soundprediction/vocabscope/pkg/types"
)

// This file defines focused interfaces for the two halves of the model
// provider contract. Consumers should depend on the smallest interface that
// meets their needs; provider.Provider composes both.

// VocabularySource yields a model's tokens ordered by id.
type VocabularySource interface {
	Vocabulary(ctx context.Context) ([]types.Token, error)
}

// EmbeddingSource yields one embedding vector per requested token.
type EmbeddingSource interface {
	Embeddings(ctx context.Context, tokens []types.Token, etype types.EmbeddingType) ([][]float32, error)
}

// Ensure the provider contract composes both focused interfaces.
// This compile-time check keeps the pipeline decoupled from providers.
var _ interface {
	VocabularySource
	EmbeddingSource
} = (provider.Provider)(nil)
