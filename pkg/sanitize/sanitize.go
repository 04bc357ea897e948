// Package sanitize filters non-finite rows out of embedding matrices while
// keeping the parallel vocabulary aligned.
//
// Some models produce NaN or infinite vectors for individual tokens (padding
// ids, unreachable vocabulary slots, numerically unstable forward passes).
// Those rows cannot be reduced or drawn, so they are dropped together with
// their vocabulary entry before the pipeline continues. Sanitizing never
// fails; it degrades to fewer points and reports every drop.
package sanitize

import (
	"log/slog"
	"math"

	"github.com/soundprediction/vocabscope/pkg/types"
)

// Dropped records one removed row for diagnostics.
type Dropped struct {
	Index int
	Token types.Token
}

// Filter removes rows of matrix that contain NaN or infinite values and the
// vocabulary entries paired with them. The relative order of the surviving
// rows is preserved, and the returned matrix and vocabulary always have the
// same length. Each dropped row is logged with its index and token.
func Filter(matrix [][]float32, vocab []types.Token, log *slog.Logger) ([][]float32, []types.Token, []Dropped) {
	kept := make([][]float32, 0, len(matrix))
	keptVocab := make([]types.Token, 0, len(vocab))
	var dropped []Dropped

	for i, row := range matrix {
		if rowFinite(row) {
			kept = append(kept, row)
			if i < len(vocab) {
				keptVocab = append(keptVocab, vocab[i])
			}
			continue
		}

		d := Dropped{Index: i}
		if i < len(vocab) {
			d.Token = vocab[i]
		}
		dropped = append(dropped, d)
		if log != nil {
			log.Warn("dropping non-finite embedding row",
				"index", i, "token", d.Token.Text, "token_id", d.Token.ID)
		}
	}

	return kept, keptVocab, dropped
}

func rowFinite(row []float32) bool {
	for _, v := range row {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
