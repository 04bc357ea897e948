package provider

import (
	"context"
	"fmt"

	"github.com/soundprediction/go-embedeverything/pkg/embedder"

	"github.com/soundprediction/vocabscope/pkg/config"
	"github.com/soundprediction/vocabscope/pkg/types"
)

// EmbedEverythingProvider embeds the vocabulary with a local
// sentence-embedding model. Each token is embedded as a short sentence, so
// like the remote providers it serves output embeddings only.
type EmbedEverythingProvider struct {
	client    *embedder.Embedder
	model     string
	vocabFile string
	batchSize int
}

// NewEmbedEverythingProvider creates a local provider for the given model.
func NewEmbedEverythingProvider(model string, cfg config.EmbeddingConfig) (*EmbedEverythingProvider, error) {
	client, err := embedder.NewEmbedder(model)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	vf, err := vocabPath(cfg.VocabDir, model)
	if err != nil {
		client.Close()
		return nil, err
	}

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 256
	}

	return &EmbedEverythingProvider{
		client:    client,
		model:     model,
		vocabFile: vf,
		batchSize: batch,
	}, nil
}

// Name implements Provider.
func (p *EmbedEverythingProvider) Name() string { return p.model }

// Vocabulary implements Provider.
func (p *EmbedEverythingProvider) Vocabulary(ctx context.Context) ([]types.Token, error) {
	tokens, err := LoadVocabulary(p.vocabFile)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return tokens, nil
}

// Embeddings implements Provider.
func (p *EmbedEverythingProvider) Embeddings(ctx context.Context, tokens []types.Token, etype types.EmbeddingType) ([][]float32, error) {
	if etype != types.EmbeddingOutput {
		return nil, fmt.Errorf("%w: embedeverything provider cannot read %s embeddings", ErrUnsupportedEmbeddingType, etype)
	}

	out := make([][]float32, 0, len(tokens))
	for start := 0; start < len(tokens); start += p.batchSize {
		end := start + p.batchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		texts := make([]string, 0, end-start)
		for _, t := range tokens[start:end] {
			texts = append(texts, t.Text)
		}

		// go-embedeverything does not support context yet
		vectors, err := p.client.Embed(texts)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings for batch at %d: %w", start, err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// Close implements Provider.
func (p *EmbedEverythingProvider) Close() error {
	p.client.Close()
	return nil
}
