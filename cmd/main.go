package main

import (
	"os"

	"github.com/soundprediction/vocabscope/cmd/vocabscope"
)

func main() {
	if err := vocabscope.Execute(); err != nil {
		os.Exit(1)
	}
}
