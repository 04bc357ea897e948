package types

import (
	"errors"
	"fmt"
)

// Validation errors
var (
	ErrUnknownEmbeddingType = errors.New("unknown embedding type")
)

// Token represents a single vocabulary entry of a tokenizer.
// Tokens are unique by ID and ordered by ID within a vocabulary.
type Token struct {
	ID   int    `json:"id" mapstructure:"id"`
	Text string `json:"text" mapstructure:"text"`
}

// String returns a compact representation for logs.
func (t Token) String() string {
	return fmt.Sprintf("[%d]%q", t.ID, t.Text)
}

// EmbeddingType selects which embedding layer of a model an analysis reads.
type EmbeddingType string

const (
	// EmbeddingInput is the model's input embedding table (one row per token id).
	EmbeddingInput EmbeddingType = "input"

	// EmbeddingOutput is the contextual embedding produced by a forward pass
	// over each token, averaged into a single vector per token.
	EmbeddingOutput EmbeddingType = "output"
)

// ParseEmbeddingType converts a config string into an EmbeddingType.
func ParseEmbeddingType(s string) (EmbeddingType, error) {
	switch EmbeddingType(s) {
	case EmbeddingInput:
		return EmbeddingInput, nil
	case EmbeddingOutput:
		return EmbeddingOutput, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEmbeddingType, s)
	}
}
