// Package vocabscope visualizes the token-embedding space of language models.
//
// For each configured model the Analyzer obtains the vocabulary and an
// embedding matrix from a pluggable provider, drops non-finite rows,
// projects the matrix to 2D (PCA or t-SNE), assigns each token a character
// class for color-coding, and renders a large labeled scatter image:
//
//	cfg, _ := config.Load()
//	log := logger.New(cfg.Log.Level, cfg.Log.Format)
//	analyzer, _ := vocabscope.New(cfg, log, func(model string) (provider.Provider, error) {
//	    return provider.New(cfg.Embedding, cfg.CircuitBreaker, model, log)
//	})
//	analyzer.AnalyzeBatch(ctx, cfg.Models)
//
// Analyses are independent: a failure in one (model, embedding type) pair
// is logged and never aborts the rest of the batch. Nothing is persisted
// between runs except the output images.
package vocabscope
