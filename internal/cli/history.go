package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gumruklab/gtip/internal/model"
	"github.com/gumruklab/gtip/internal/store"
)

var (
	historyDelete []string
	historyClear  bool
)

// historyCmd represents the history command group
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and prune the activity logs",
	Long: `History lists the search and classification logs, newest first.
Entries delete by timestamp; the whole log clears with --clear.
Precedent cases are not part of history and are removed with
'gtip cases rm' instead.`,
}

var historySearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Show past precedent searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		log := store.NewHistoryLog(cfg.Storage.SearchLogFile)
		defer log.Close()

		if historyClear {
			if err := log.Clear(); err != nil {
				return fmt.Errorf("clear search history: %w", err)
			}
			fmt.Println("✓ Search history cleared")
			return nil
		}
		if len(historyDelete) > 0 {
			if err := log.RemoveByTimestamps(toSet(historyDelete)); err != nil {
				return fmt.Errorf("delete search history entries: %w", err)
			}
			fmt.Printf("✓ Removed %d entries\n", len(historyDelete))
			return nil
		}

		entries := log.SearchEntries()
		if len(entries) == 0 {
			fmt.Println("Search history is empty.")
			return nil
		}
		for _, e := range entries {
			fmt.Println(formatSearchEntry(e))
		}
		return nil
	},
}

var historyClassifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Show past LLM classifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		log := store.NewHistoryLog(cfg.Storage.ClassificationLogFile)
		defer log.Close()

		if historyClear {
			if err := log.Clear(); err != nil {
				return fmt.Errorf("clear classification history: %w", err)
			}
			fmt.Println("✓ Classification history cleared")
			return nil
		}
		if len(historyDelete) > 0 {
			if err := log.RemoveByTimestamps(toSet(historyDelete)); err != nil {
				return fmt.Errorf("delete classification history entries: %w", err)
			}
			fmt.Printf("✓ Removed %d entries\n", len(historyDelete))
			return nil
		}

		entries := log.ClassificationEntries()
		if len(entries) == 0 {
			fmt.Println("Classification history is empty.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("[%s] %s (%s)\n", e.Timestamp, e.ProductName, e.Filename)
		}
		return nil
	},
}

// casesCmd represents the cases command group
var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Inspect and prune the precedent store",
}

var casesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored precedent cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		cases := store.NewCaseStore(cfg.Storage.CasesFile)
		defer cases.Close()

		all := cases.LoadAll()
		if len(all) == 0 {
			fmt.Println("The precedent store is empty.")
			return nil
		}
		for _, c := range all {
			fmt.Printf("%s  %s => %s (%s)\n", c.ID, c.ProductName, c.AssignedCode, c.AssignmentDate)
		}
		return nil
	},
}

var casesRemoveCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Remove precedent cases by ID",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		cases := store.NewCaseStore(cfg.Storage.CasesFile)
		defer cases.Close()

		kept, err := cases.RemoveByIDs(toSet(args))
		if err != nil {
			return fmt.Errorf("remove cases: %w", err)
		}
		fmt.Printf("✓ Removed, %d case(s) remain\n", kept)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyClassifyCmd)
	historyCmd.PersistentFlags().StringSliceVar(&historyDelete, "delete", nil, "delete entries by timestamp")
	historyCmd.PersistentFlags().BoolVar(&historyClear, "clear", false, "clear the whole log")

	rootCmd.AddCommand(casesCmd)
	casesCmd.AddCommand(casesListCmd)
	casesCmd.AddCommand(casesRemoveCmd)
}

// formatSearchEntry renders one search log line. Plain ASCII so the
// output survives pipes and narrow terminals.
func formatSearchEntry(e model.SearchLogEntry) string {
	return fmt.Sprintf("[%s] %q: %s", e.Timestamp, e.Query, e.SummaryResults)
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
