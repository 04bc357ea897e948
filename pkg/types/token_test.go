package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/vocabscope/pkg/types"
)

func TestParseEmbeddingType(t *testing.T) {
	tests := []struct {
		in      string
		want    types.EmbeddingType
		wantErr bool
	}{
		{in: "input", want: types.EmbeddingInput},
		{in: "output", want: types.EmbeddingOutput},
		{in: "", wantErr: true},
		{in: "Input", wantErr: true},
		{in: "weights", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := types.ParseEmbeddingType(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, types.ErrUnknownEmbeddingType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenString(t *testing.T) {
	tok := types.Token{ID: 42, Text: "中"}
	assert.Equal(t, `[42]"中"`, tok.String())
}
