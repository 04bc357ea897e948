package provider

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/soundprediction/vocabscope/pkg/config"
	"github.com/soundprediction/vocabscope/pkg/types"
)

const defaultOpenAIBatch = 2000

// OpenAIProvider embeds the vocabulary with OpenAI's embeddings API.
// Supports OpenAI-compatible services through custom BaseURL configuration.
// Only output embeddings are available; the API exposes no token embedding
// table.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	vocabFile string
	batchSize int
}

// NewOpenAIProvider creates a provider for the given embedding model.
func NewOpenAIProvider(model string, cfg config.EmbeddingConfig) (*OpenAIProvider, error) {
	var client *openai.Client
	apiKey := cfg.APIKey

	if cfg.BaseURL != "" {
		// Use dummy API key if none provided (some services don't require authentication)
		if apiKey == "" {
			apiKey = "dummy-key"
		}
		clientConfig := openai.DefaultConfig(apiKey)
		clientConfig.BaseURL = cfg.BaseURL
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		client = openai.NewClient(apiKey)
	}

	vf, err := vocabPath(cfg.VocabDir, model)
	if err != nil {
		return nil, err
	}

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultOpenAIBatch
	}

	return &OpenAIProvider{
		client:    client,
		model:     model,
		vocabFile: vf,
		batchSize: batch,
	}, nil
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return p.model }

// Vocabulary implements Provider.
func (p *OpenAIProvider) Vocabulary(ctx context.Context) ([]types.Token, error) {
	tokens, err := LoadVocabulary(p.vocabFile)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return tokens, nil
}

// Embeddings implements Provider, batching requests against the API.
func (p *OpenAIProvider) Embeddings(ctx context.Context, tokens []types.Token, etype types.EmbeddingType) ([][]float32, error) {
	if etype != types.EmbeddingOutput {
		return nil, fmt.Errorf("%w: openai provider cannot read %s embeddings", ErrUnsupportedEmbeddingType, etype)
	}

	out := make([][]float32, 0, len(tokens))
	for start := 0; start < len(tokens); start += p.batchSize {
		end := start + p.batchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		texts := make([]string, 0, end-start)
		for _, t := range tokens[start:end] {
			text := t.Text
			if text == "" {
				// The API rejects empty strings; a lone space keeps row alignment.
				text = " "
			}
			texts = append(texts, text)
		}

		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(p.model),
		})
		if err != nil {
			return nil, fmt.Errorf("openai embeddings batch at %d failed: %w", start, err)
		}
		if len(resp.Data) != len(texts) {
			return nil, fmt.Errorf("openai embeddings batch at %d returned %d vectors for %d inputs", start, len(resp.Data), len(texts))
		}
		for _, d := range resp.Data {
			out = append(out, d.Embedding)
		}
	}
	return out, nil
}

// Close implements Provider.
func (p *OpenAIProvider) Close() error { return nil }
