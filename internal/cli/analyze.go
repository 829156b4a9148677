package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gumruklab/gtip/internal/pipeline"
	"github.com/gumruklab/gtip/internal/store"
)

var (
	analyzeOrders      string
	analyzeIngredients string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Check order ingredients against the tariff list",
	Long: `Analyze joins an orders workbook with its formulation workbook and
checks every declared ingredient (by CAS number, then by name) against
the loaded tariff list. The result is an xlsx report with match status,
tariff code, tax rate and validity warnings.

Example:
  gtip analyze --orders orders.xlsx --ingredients formulations.xlsx`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeOrders, "orders", "", "orders workbook (requires a Malzeme column)")
	analyzeCmd.Flags().StringVar(&analyzeIngredients, "ingredients", "", "formulation workbook (Product code, Type, CAS, Standard description, Percent)")
	_ = analyzeCmd.MarkFlagRequired("orders")
	_ = analyzeCmd.MarkFlagRequired("ingredients")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger()
	defer func() { _ = log.Sync() }()

	tariff := store.NewTariffStore(cfg.Storage.TariffFile, cfg.Storage.TariffMetaFile)
	if len(tariff.Load()) == 0 {
		return fmt.Errorf("tariff list is empty; upload one first with 'gtip tariff upload'")
	}

	fmt.Fprintf(os.Stderr, "⚙️  Analyzing %s against %s...\n", analyzeOrders, analyzeIngredients)

	analyzer := pipeline.NewAnalyzer(cfg, tariff, log)
	summary, err := analyzer.AnalyzeOrders(analyzeOrders, analyzeIngredients)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Printf("✓ %d products, %d ingredients checked, %d on the tariff list\n",
		summary.Products, summary.Ingredients, summary.Matched)
	fmt.Printf("✓ Report: %s\n", summary.ReportPath)
	return nil
}
