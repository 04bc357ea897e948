package provider

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/soundprediction/vocabscope/pkg/types"
)

// LoadVocabulary reads a vocabulary file. Two formats are supported:
//   - *.json: a HuggingFace-style {"token": id} mapping
//   - anything else: plain text, one token per line, ids assigned by line
//
// Tokens are returned ordered by id.
func LoadVocabulary(path string) ([]types.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var mapping map[string]int
		if err := json.Unmarshal(data, &mapping); err != nil {
			return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
		}
		tokens := make([]types.Token, 0, len(mapping))
		for text, id := range mapping {
			tokens = append(tokens, types.Token{ID: id, Text: text})
		}
		sort.Slice(tokens, func(i, j int) bool { return tokens[i].ID < tokens[j].ID })
		return tokens, nil
	}

	var tokens []types.Token
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		tokens = append(tokens, types.Token{ID: len(tokens), Text: scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan vocabulary %s: %w", path, err)
	}
	return tokens, nil
}

// vocabPath derives the vocabulary file location for a model, trying the
// JSON mapping first and falling back to the plain-text form.
func vocabPath(vocabDir, model string) (string, error) {
	base := strings.ReplaceAll(model, "/", "_")
	for _, name := range []string{base + ".vocab.json", base + ".vocab.txt"} {
		path := filepath.Join(vocabDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no vocabulary file for model %s under %s", model, vocabDir)
}
