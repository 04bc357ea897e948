package vocabscope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/soundprediction/vocabscope/pkg/charclass"
	"github.com/soundprediction/vocabscope/pkg/config"
	"github.com/soundprediction/vocabscope/pkg/provider"
	"github.com/soundprediction/vocabscope/pkg/reduce"
	"github.com/soundprediction/vocabscope/pkg/render"
	"github.com/soundprediction/vocabscope/pkg/sanitize"
	"github.com/soundprediction/vocabscope/pkg/types"
	"github.com/soundprediction/vocabscope/pkg/utils"
)

// ProviderFactory builds the provider for one model. Injected so tests and
// alternative model sources can replace the real providers.
type ProviderFactory func(model string) (provider.Provider, error)

// Analyzer runs embedding-space analyses for a batch of models.
type Analyzer struct {
	cfg         *config.Config
	log         *slog.Logger
	classifier  *charclass.Classifier
	fonts       *render.FontStack
	etypes      []types.EmbeddingType
	newProvider ProviderFactory
}

// New creates an Analyzer. The classifier comes from the configured
// charsets file or the built-in defaults; fonts are loaded once and shared
// by every render.
func New(cfg *config.Config, log *slog.Logger, factory ProviderFactory) (*Analyzer, error) {
	if log == nil {
		log = slog.Default()
	}

	classifier := charclass.Default()
	if cfg.Charsets.Path != "" {
		var err error
		classifier, err = charclass.Load(cfg.Charsets.Path)
		if err != nil {
			return nil, fmt.Errorf("load character classes: %w", err)
		}
	}

	var fonts *render.FontStack
	if len(cfg.Render.Fonts) > 0 {
		var err error
		fonts, err = render.LoadFonts(cfg.Render.Fonts)
		if err != nil {
			return nil, fmt.Errorf("load fonts: %w", err)
		}
	}

	etypes := make([]types.EmbeddingType, 0, len(cfg.Embedding.Types))
	for _, s := range cfg.Embedding.Types {
		et, err := types.ParseEmbeddingType(s)
		if err != nil {
			return nil, err
		}
		etypes = append(etypes, et)
	}
	if len(etypes) == 0 {
		etypes = []types.EmbeddingType{types.EmbeddingInput}
	}

	return &Analyzer{
		cfg:         cfg,
		log:         log,
		classifier:  classifier,
		fonts:       fonts,
		etypes:      etypes,
		newProvider: factory,
	}, nil
}

// AnalyzeBatch analyzes every model sequentially. Failures are logged per
// (model, embedding type) pair and never abort the remaining work.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, models []string) {
	for _, model := range models {
		if err := a.Analyze(ctx, model); err != nil {
			a.log.Error("analysis failed", "model", model, "error", err)
		}
	}
}

// Analyze runs the configured embedding types for a single model. Large
// intermediates are released before returning so the next model starts from
// a clean heap.
func (a *Analyzer) Analyze(ctx context.Context, model string) error {
	p, err := a.newProvider(model)
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			a.log.Warn("provider close failed", "model", model, "error", cerr)
		}
		// Embedding matrices can be multi-gigabyte; reclaim them before the
		// next model loads.
		runtime.GC()
	}()

	for _, etype := range a.etypes {
		err := a.analyzeType(ctx, p, etype)
		switch {
		case err == nil:
		case errors.Is(err, ErrRenderSkipped):
			a.log.Info("render skipped", "model", p.Name(), "embedding_type", string(etype))
		case errors.Is(err, provider.ErrUnsupportedEmbeddingType):
			a.log.Warn("embedding type unavailable", "model", p.Name(), "embedding_type", string(etype))
		default:
			a.log.Error("analysis failed", "model", p.Name(), "embedding_type", string(etype), "error", err)
		}
	}
	return nil
}

// analyzeType runs the full pipeline for one (model, embedding type) pair.
// Panics (allocation failures on huge vocabularies included) are converted
// to errors so one pair cannot take down the batch.
func (a *Analyzer) analyzeType(ctx context.Context, p provider.Provider, etype types.EmbeddingType) (err error) {
	defer utils.RecoverAsError(&err)

	model := p.Name()
	outputPath := a.OutputPath(model, etype)
	if !a.cfg.Output.Overwrite {
		if _, statErr := os.Stat(outputPath); statErr == nil {
			a.log.Info("output exists, skipping", "model", model, "embedding_type", string(etype), "path", outputPath)
			return nil
		}
	}

	vocab, err := p.Vocabulary(ctx)
	if err != nil {
		return fmt.Errorf("load vocabulary: %w", err)
	}

	matrix, err := p.Embeddings(ctx, vocab, etype)
	if err != nil {
		return err
	}
	if len(matrix) != len(vocab) {
		return &ShapeError{Model: model, Vocab: len(vocab), Rows: len(matrix)}
	}

	matrix, vocab, dropped := sanitize.Filter(matrix, vocab, a.log.With("model", model))
	if len(dropped) > 0 {
		a.log.Warn("dropped non-finite rows", "model", model, "count", len(dropped))
	}
	if len(matrix) == 0 {
		return ErrRenderSkipped
	}

	opts := reduce.Options{
		Method:         reduce.Method(a.cfg.Reduce.Method),
		Seed:           a.cfg.Reduce.Seed,
		Perplexity:     a.cfg.Reduce.Perplexity,
		Iterations:     a.cfg.Reduce.Iterations,
		ExactThreshold: a.cfg.Reduce.ExactThreshold,
		Debug:          a.log.Enabled(ctx, slog.LevelDebug),
	}
	a.log.Info("reducing embeddings to 2D",
		"model", model, "embedding_type", string(etype),
		"points", len(matrix), "dims", len(matrix[0]), "method", a.cfg.Reduce.Method)
	coords, err := reduce.To2D(matrix, opts, a.log)
	if err != nil {
		return fmt.Errorf("reduce embeddings: %w", err)
	}
	// The high-dimensional matrix is no longer needed; let it go before
	// rendering allocates the canvas.
	matrix = nil

	points := make([]types.Point, len(coords))
	for i, c := range coords {
		points[i] = types.Point{
			X:     c[0],
			Y:     c[1],
			Token: vocab[i],
			Class: a.classifier.Classify(vocab[i].Text),
		}
	}

	background, err := charclass.ParseColor(a.cfg.Render.Background)
	if err != nil {
		return fmt.Errorf("render background: %w", err)
	}
	img := render.Render(points, a.classifier, render.Options{
		Width:      a.cfg.Render.Width,
		Height:     a.cfg.Render.Height,
		Margin:     a.cfg.Render.Margin,
		Detailed:   a.cfg.Render.Detailed,
		Background: background,
		Fonts:      a.fonts,
		Title:      fmt.Sprintf("%s · %s embeddings · %d tokens", model, etype, len(points)),
	})

	if err := render.SaveJPEG(img, outputPath, a.cfg.Output.Quality); err != nil {
		return err
	}
	a.log.Info("image written", "model", model, "embedding_type", string(etype), "path", outputPath, "points", len(points))
	return nil
}

// OutputFileName returns the deterministic image name for a model and
// embedding type: "<model with / -> _>.embeddings.<type>[.<postfix>].jpg".
func OutputFileName(model string, etype types.EmbeddingType, postfix string) string {
	name := strings.ReplaceAll(model, "/", "_") + ".embeddings." + string(etype)
	if postfix != "" {
		name += "." + postfix
	}
	return name + ".jpg"
}

// OutputPath returns the full image path under the configured output
// directory, using the assets/embeddings sub-layout unless flat output is
// requested.
func (a *Analyzer) OutputPath(model string, etype types.EmbeddingType) string {
	dir := a.cfg.Output.Dir
	if !a.cfg.Output.Flat {
		dir = filepath.Join(dir, "assets", "embeddings")
	}
	return filepath.Join(dir, OutputFileName(model, etype, a.cfg.Output.Postfix))
}
