package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gumruklab/gtip/internal/pipeline"
	"github.com/gumruklab/gtip/internal/store"
)

var classifyTimeout time.Duration

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <file>...",
	Short: "Classify product datasheets with the configured LLM",
	Long: `Classify sends datasheet images to the configured vision LLM
together with relevant tariff lines and the closest precedents, and
stores accepted classifications as new precedent cases.

Example:
  gtip classify sds/rheobyk-431-p1.png sds/rheobyk-431-p2.png
  gtip classify sds/*.png --timeout 10m`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().DurationVar(&classifyTimeout, "timeout", 5*time.Minute, "overall batch timeout")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger()
	defer func() { _ = log.Sync() }()

	provider, err := buildProvider(cfg)
	if err != nil {
		return fmt.Errorf("LLM setup: %w", err)
	}
	if provider == nil {
		return fmt.Errorf("no LLM provider configured (set llm.provider in config)")
	}

	tariff := store.NewTariffStore(cfg.Storage.TariffFile, cfg.Storage.TariffMetaFile)
	cases := store.NewCaseStore(cfg.Storage.CasesFile)
	defer cases.Close()
	classLog := store.NewHistoryLog(cfg.Storage.ClassificationLogFile)
	defer classLog.Close()

	inputs := make([]pipeline.DocumentInput, 0, len(args))
	for _, path := range args {
		docs, err := pipeline.ReadDocuments([]string{path})
		if err != nil {
			return err
		}
		inputs = append(inputs, pipeline.DocumentInput{Path: path, Documents: docs})
	}

	fmt.Fprintf(os.Stderr, "⚙️  Classifying %d document(s) with %s (%d workers)...\n",
		len(inputs), provider.Name(), cfg.Concurrency.Workers)

	ctx, cancel := context.WithTimeout(context.Background(), classifyTimeout)
	defer cancel()

	classifier := pipeline.NewClassifier(cfg, provider, tariff, cases, classLog, log)
	outcomes := classifier.ClassifyBatch(ctx, inputs)

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", o.Input.Path, o.Err)
			continue
		}
		fmt.Printf("✓ %s\n", o.Input.Path)
		fmt.Printf("  %s => %s\n", o.Case.ProductName, o.Case.AssignedCode)
		if o.Case.ShortReason != "" {
			fmt.Printf("  %s\n", o.Case.ShortReason)
		}
	}

	fmt.Fprintf(os.Stderr, "\n%d classified, %d failed\n", len(outcomes)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(outcomes))
	}
	return nil
}
