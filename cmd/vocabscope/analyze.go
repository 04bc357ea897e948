package vocabscope

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	scope "github.com/soundprediction/vocabscope"
	"github.com/soundprediction/vocabscope/pkg/config"
	"github.com/soundprediction/vocabscope/pkg/logger"
	"github.com/soundprediction/vocabscope/pkg/provider"
	"github.com/soundprediction/vocabscope/pkg/telemetry"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [models...]",
	Short: "Render embedding-space images for one or more models",
	Long: `Analyze reduces each model's token embeddings to 2D and renders a
labeled scatter image per embedding type.

Models can be given as arguments or in the "models" list of the config
file. One image is written per (model, embedding type) pair; existing
images are skipped unless --overwrite is set. A failure in one model never
aborts the rest of the batch.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("method", "tsne", "Reduction method (linear, tsne)")
	analyzeCmd.Flags().Bool("detailed", false, "Draw token text labels next to markers")
	analyzeCmd.Flags().String("output-dir", "images", "Output directory for images")
	analyzeCmd.Flags().Bool("flat", false, "Write images directly into the output directory")
	analyzeCmd.Flags().Bool("overwrite", false, "Overwrite existing images")
	analyzeCmd.Flags().StringSlice("types", []string{"input", "output"}, "Embedding types to analyze")
	analyzeCmd.Flags().Int64("seed", 6, "Random seed for reductions")
	analyzeCmd.Flags().String("provider", "", "Embedding provider (openai, embedeverything, static)")

	viper.BindPFlag("reduce.method", analyzeCmd.Flags().Lookup("method"))
	viper.BindPFlag("render.detailed", analyzeCmd.Flags().Lookup("detailed"))
	viper.BindPFlag("output.dir", analyzeCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("output.flat", analyzeCmd.Flags().Lookup("flat"))
	viper.BindPFlag("output.overwrite", analyzeCmd.Flags().Lookup("overwrite"))
	viper.BindPFlag("embedding.types", analyzeCmd.Flags().Lookup("types"))
	viper.BindPFlag("reduce.seed", analyzeCmd.Flags().Lookup("seed"))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if p, _ := cmd.Flags().GetString("provider"); p != "" {
		cfg.Embedding.Provider = p
	}

	models := args
	if len(models) == 0 {
		models = cfg.Models
	}
	if len(models) == 0 {
		return fmt.Errorf("no models given; pass them as arguments or set \"models\" in the config")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	// Persist error logs for post-hoc inspection of long batch runs.
	var parquetHandler *telemetry.ParquetHandler
	if cfg.Telemetry.ParquetPath != "" {
		parquetHandler, err = telemetry.NewParquetHandler(log.Handler(), cfg.Telemetry.ParquetPath)
		if err != nil {
			log.Warn("telemetry disabled", "error", err)
		} else {
			log = slog.New(parquetHandler)
		}
	}

	analyzer, err := scope.New(cfg, log, func(model string) (provider.Provider, error) {
		return provider.New(cfg.Embedding, cfg.CircuitBreaker, model, log)
	})
	if err != nil {
		return err
	}

	analyzer.AnalyzeBatch(cmd.Context(), models)

	if parquetHandler != nil {
		if err := parquetHandler.Flush(); err != nil {
			log.Warn("telemetry flush failed", "error", err)
		}
	}
	return nil
}
