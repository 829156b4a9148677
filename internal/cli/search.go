package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gumruklab/gtip/internal/pipeline"
	"github.com/gumruklab/gtip/internal/store"
)

var (
	searchLimit int
	searchAsk   bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the precedent store for similar classified products",
	Long: `Search ranks stored classification cases against the query by
name overlap, code containment and fuzzy similarity.

Example:
  gtip search "rheobyk 431"
  gtip search disponil --limit 10
  gtip search "acrylic thickener" --ask`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 5, "maximum results to show")
	searchCmd.Flags().BoolVar(&searchAsk, "ask", false, "also ask the configured LLM for an opinion")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	cfg := loadConfig()
	log := newLogger()
	defer func() { _ = log.Sync() }()

	cases := store.NewCaseStore(cfg.Storage.CasesFile)
	defer cases.Close()
	tariff := store.NewTariffStore(cfg.Storage.TariffFile, cfg.Storage.TariffMetaFile)
	searchLog := store.NewHistoryLog(cfg.Storage.SearchLogFile)
	defer searchLog.Close()

	provider, err := buildProvider(cfg)
	if err != nil && searchAsk {
		return fmt.Errorf("LLM setup: %w", err)
	}

	searcher := pipeline.NewSearcher(cfg, cases, tariff, searchLog, provider, log)

	ranked, summary := searcher.Search(query, searchLimit)
	fmt.Println(summary)
	fmt.Println()

	for i, c := range ranked {
		fmt.Printf("%d. %s\n", i+1, c.ProductName)
		fmt.Printf("   Code: %s", c.AssignedCode)
		if c.AssignmentDate != "" {
			fmt.Printf("  (%s, %s)", c.AssignedBy, c.AssignmentDate)
		}
		fmt.Println()
		if c.ShortReason != "" {
			fmt.Printf("   Reason: %s\n", c.ShortReason)
		}
		fmt.Println()
	}

	if searchAsk {
		if provider == nil {
			return fmt.Errorf("no LLM provider configured (set llm.provider in config)")
		}
		fmt.Fprintf(os.Stderr, "⚙️  Asking %s...\n", provider.Name())

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.LLM.Timeout)*time.Second)
		defer cancel()

		advice, err := searcher.AskExpert(ctx, query, nil)
		if err != nil {
			return fmt.Errorf("expert opinion: %w", err)
		}
		fmt.Println("Expert opinion:")
		fmt.Println(advice.Text)
	}

	return nil
}
