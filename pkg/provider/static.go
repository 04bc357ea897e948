package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/soundprediction/vocabscope/pkg/types"
)

// StaticProvider serves a fixed in-memory vocabulary and embedding matrix.
// It backs tests and the "static" provider mode, which analyzes embedding
// tables exported from a model by an external dump tool.
type StaticProvider struct {
	name   string
	tokens []types.Token
	input  [][]float32
	output [][]float32
}

// staticFile is the on-disk JSON layout of an exported matrix.
type staticFile struct {
	Model  string      `json:"model"`
	Vocab  []string    `json:"vocab"`
	Input  [][]float32 `json:"input,omitempty"`
	Output [][]float32 `json:"output,omitempty"`
}

// NewStatic creates a provider over in-memory data. Either matrix may be
// nil when that embedding type is unavailable.
func NewStatic(name string, tokens []types.Token, input, output [][]float32) *StaticProvider {
	return &StaticProvider{name: name, tokens: tokens, input: input, output: output}
}

// LoadStatic reads an exported matrix file. The path doubles as the model
// identifier in the "static" provider mode.
func LoadStatic(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read matrix file %s: %w", path, err)
	}
	var f staticFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse matrix file %s: %w", path, err)
	}

	tokens := make([]types.Token, len(f.Vocab))
	for i, text := range f.Vocab {
		tokens[i] = types.Token{ID: i, Text: text}
	}
	name := f.Model
	if name == "" {
		name = path
	}
	return NewStatic(name, tokens, f.Input, f.Output), nil
}

// Name implements Provider.
func (p *StaticProvider) Name() string { return p.name }

// Vocabulary implements Provider.
func (p *StaticProvider) Vocabulary(ctx context.Context) ([]types.Token, error) {
	if len(p.tokens) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return p.tokens, nil
}

// Embeddings implements Provider.
func (p *StaticProvider) Embeddings(ctx context.Context, tokens []types.Token, etype types.EmbeddingType) ([][]float32, error) {
	var matrix [][]float32
	switch etype {
	case types.EmbeddingInput:
		matrix = p.input
	case types.EmbeddingOutput:
		matrix = p.output
	}
	if matrix == nil {
		return nil, fmt.Errorf("%w: no %s matrix in static provider %s", ErrUnsupportedEmbeddingType, etype, p.name)
	}
	return matrix, nil
}

// Close implements Provider.
func (p *StaticProvider) Close() error { return nil }
