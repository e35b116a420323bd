package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pcs-swap/config"
	"pcs-swap/pkg/history"
	"pcs-swap/pkg/types"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded swaps",
	Long: `List the swaps recorded by previous runs (HISTORY_FILE, by default
~/.pcs-swap-history.json). This does not connect to the node.

Examples:
  pcs-swap history
  pcs-swap history --limit 50`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of most recent swaps to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	storage, err := history.NewStorage(cfg.HistoryFile)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	records := storage.Last(historyLimit)

	if jsonOutput {
		printJSON(records)
		return
	}

	if len(records) == 0 {
		printSuccess(fmt.Sprintf("No swaps recorded in %s", storage.GetFilePath()))
		return
	}

	fmt.Printf("\nShowing %d of %d swaps from %s\n\n", len(records), storage.Count(), storage.GetFilePath())
	fmt.Printf("%-19s  %-4s  %-9s  %-24s  %-24s  %s\n", "TIME", "SIDE", "STATUS", "IN", "OUT", "TX")
	fmt.Println(strings.Repeat("-", 110))

	for _, r := range records {
		side := strings.ToUpper(string(r.Side))
		if r.Side == types.SideBuy {
			side = color.YellowString("%-4s", side)
		} else {
			side = color.CyanString("%-4s", side)
		}

		status := color.GreenString("%-9s", r.Status)
		out := r.AmountOut
		if r.Status == history.StatusFailed {
			status = color.RedString("%-9s", r.Status)
			out = r.Error
		}

		fmt.Printf("%-19s  %s  %s  %-24s  %-24s  %s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"), side, status, r.AmountIn, out, r.TxHash)
	}
	fmt.Println()
}
