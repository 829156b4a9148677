package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/gumruklab/gtip/internal/ingest"
	"github.com/gumruklab/gtip/internal/match"
	"github.com/gumruklab/gtip/internal/model"
	"github.com/gumruklab/gtip/internal/pipeline"
	"github.com/gumruklab/gtip/internal/store"
)

var (
	lookupCAS  string
	lookupName string
)

// tariffCmd represents the tariff command group
var tariffCmd = &cobra.Command{
	Use:   "tariff",
	Short: "Manage and query the tariff list (List V)",
}

var tariffUploadCmd = &cobra.Command{
	Use:   "upload <xlsx>",
	Short: "Replace the tariff list from a List V workbook",
	Long: `Upload parses the government List V workbook (header row found by
its GTP / EŞYA TANIMI markers) and replaces the stored tariff table
wholesale.`,
	Args: cobra.ExactArgs(1),
	RunE: runTariffUpload,
}

var tariffStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show when the tariff list was last uploaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		tariff := store.NewTariffStore(cfg.Storage.TariffFile, cfg.Storage.TariffMetaFile)

		meta, ok := tariff.Meta()
		if !ok {
			fmt.Println("❌ No tariff list uploaded yet")
			return nil
		}
		fmt.Printf("✅ Current list: %s (uploaded %s, %d records)\n",
			meta.Filename, meta.UploadDate, meta.TotalRecords)
		return nil
	},
}

var tariffLookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Score one CAS/name pair against the tariff list",
	Long: `Lookup runs the scored search over the whole tariff table:
an exact CAS hit wins outright, a contained chemical name scores high,
and fuzzy name similarity fills in behind.

Example:
  gtip tariff lookup --cas 123-86-4
  gtip tariff lookup --name "butyl acetate"`,
	RunE: runTariffLookup,
}

func init() {
	rootCmd.AddCommand(tariffCmd)
	tariffCmd.AddCommand(tariffUploadCmd)
	tariffCmd.AddCommand(tariffStatusCmd)
	tariffCmd.AddCommand(tariffLookupCmd)

	tariffLookupCmd.Flags().StringVar(&lookupCAS, "cas", "", "CAS number")
	tariffLookupCmd.Flags().StringVar(&lookupName, "name", "", "chemical or product name")
}

func runTariffUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg := loadConfig()

	fmt.Fprintf(os.Stderr, "⚙️  Parsing %s...\n", path)

	records, err := ingest.ReadTariffXLSX(path)
	if err != nil {
		return fmt.Errorf("parse tariff workbook: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no tariff records found in %s", path)
	}

	tariff := store.NewTariffStore(cfg.Storage.TariffFile, cfg.Storage.TariffMetaFile)
	meta := model.TariffMeta{
		Filename:     filepath.Base(path),
		UploadDate:   time.Now().Format("02.01.2006 15:04"),
		TotalRecords: len(records),
	}
	if err := tariff.ReplaceAll(records, meta); err != nil {
		return fmt.Errorf("store tariff list: %w", err)
	}

	fmt.Printf("✅ Current list: %s (uploaded %s, %d records)\n",
		meta.Filename, meta.UploadDate, meta.TotalRecords)
	return nil
}

func runTariffLookup(cmd *cobra.Command, args []string) error {
	if lookupCAS == "" && lookupName == "" {
		return fmt.Errorf("provide --cas and/or --name")
	}

	cfg := loadConfig()
	log := newLogger()
	defer func() { _ = log.Sync() }()

	tariff := store.NewTariffStore(cfg.Storage.TariffFile, cfg.Storage.TariffMetaFile)
	analyzer := pipeline.NewAnalyzer(cfg, tariff, log)

	rec, score := analyzer.Lookup(lookupCAS, lookupName)
	if rec == nil {
		fmt.Println("No matching tariff record found.")
		return nil
	}

	fmt.Printf("Match (score %d):\n", score)
	fmt.Printf("  Code:        %s\n", rec.Code)
	fmt.Printf("  Description: %s\n", rec.Description)
	fmt.Printf("  Tax rate:    %%%s\n", rec.TaxRatePercent)
	if rec.Footnote != "" {
		fmt.Printf("  Footnote:    %s\n", rec.Footnote)
	}
	fmt.Printf("  Validity:    %s\n", match.AnnotateValidity(rec.ValidUntilRaw))
	return nil
}
