package vocabscope

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soundprediction/vocabscope/pkg/charclass"
	"github.com/soundprediction/vocabscope/pkg/config"
)

var charsetsCmd = &cobra.Command{
	Use:   "charsets [samples...]",
	Short: "Show the effective character classes",
	Long: `Charsets prints the character-class table the analyzer would use,
in priority order. Sample strings given as arguments are classified and
printed with their resulting class, which helps when tuning a custom
charsets file.`,
	RunE: runCharsets,
}

func init() {
	rootCmd.AddCommand(charsetsCmd)
}

func runCharsets(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	classifier := charclass.Default()
	source := "built-in"
	if cfg.Charsets.Path != "" {
		classifier, err = charclass.Load(cfg.Charsets.Path)
		if err != nil {
			return err
		}
		source = cfg.Charsets.Path
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "classes (%s, priority order):\n", source)
	for _, name := range classifier.Names() {
		c := classifier.Color(name)
		fmt.Fprintf(w, "  %s\t#%02X%02X%02X\n", name, c.R, c.G, c.B)
	}
	w.Flush()

	for _, sample := range args {
		fmt.Printf("%q -> %s\n", sample, classifier.Classify(sample))
	}
	return nil
}
