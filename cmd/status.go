package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pcs-swap/pkg/pancake"
	"pcs-swap/pkg/units"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <tx-hash>",
	Short: "Check the status of a swap transaction",
	Long: `Check whether a swap transaction has been mined and what it transferred to
YOUR_ADDRESS (token) and to the router (WBNB).

Examples:
  pcs-swap status 0x5c50...e1a2
  pcs-swap status 0x5c50...e1a2 --watch
  pcs-swap status 0x5c50...e1a2 --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Poll until the transaction is mined")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 3, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	hashArg := strings.TrimSpace(args[0])
	if len(strings.TrimPrefix(hashArg, "0x")) != 2*common.HashLength {
		printError(fmt.Errorf("invalid transaction hash: %s", hashArg))
		os.Exit(1)
	}
	hash := common.HexToHash(hashArg)

	s := mustOpenSession(cmd)
	defer s.Close()

	if watchStatus {
		watchTxStatus(cmd.Context(), s.client, hash, jsonOutput)
	} else {
		checkTxStatus(cmd.Context(), s.client, hash, jsonOutput)
	}
}

func checkTxStatus(ctx context.Context, client *pancake.Client, hash common.Hash, jsonOutput bool) {
	sp := newSpinner("Checking transaction status...", jsonOutput)
	info, err := client.TransactionInfo(ctx, hash)
	sp.Stop()

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(info)
	} else {
		displayTxStatus(info)
	}
}

func watchTxStatus(ctx context.Context, client *pancake.Client, hash common.Hash, jsonOutput bool) {
	if watchInterval < 1 {
		watchInterval = 1
	}
	if !jsonOutput {
		fmt.Printf("\nWatching transaction %s\n", color.CyanString(hash.Hex()))
		fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n", watchInterval)
	}

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	for {
		info, err := client.TransactionInfo(ctx, hash)
		switch {
		case err != nil && ctx.Err() != nil:
			return
		case err != nil:
			if !jsonOutput {
				color.Red("Error: %v", err)
			}
		case info.Mined:
			if jsonOutput {
				printJSON(info)
			} else {
				displayTxStatus(info)
			}
			return
		case !jsonOutput:
			fmt.Printf("  %s pending...\n", time.Now().Format("15:04:05"))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func displayTxStatus(info *pancake.TxInfo) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                      TRANSACTION STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Hash:            %s\n", color.CyanString(info.Hash.Hex()))
	fmt.Printf("  Status:          %s\n", getColoredStatus(info))
	fmt.Printf("  Nonce:           %d\n", info.Nonce)
	if info.To != nil {
		fmt.Printf("  To:              %s\n", info.To.Hex())
	}
	fmt.Printf("  Value:           %s BNB\n", units.FormatEther(info.Value))
	fmt.Printf("  Gas Price:       %s gwei\n", units.FormatGwei(info.GasPrice))
	fmt.Printf("  Gas Limit:       %d\n", info.GasLimit)

	if info.Mined {
		fmt.Printf("  Block:           %d\n", info.BlockNumber)
		fmt.Printf("  Gas Used:        %d\n", info.GasUsed)
		if info.QuoteReceived != nil && info.QuoteReceived.Sign() > 0 {
			fmt.Printf("  Tokens Received: %s\n", info.QuoteReceived)
		}
		if info.BaseReceived != nil && info.BaseReceived.Sign() > 0 {
			fmt.Printf("  WBNB Received:   %s\n", units.FormatEther(info.BaseReceived))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func getColoredStatus(info *pancake.TxInfo) string {
	switch {
	case info.Pending:
		return color.YellowString("PENDING")
	case !info.Mined:
		return color.MagentaString("NOT MINED")
	case info.Success:
		return color.GreenString("SUCCESS")
	default:
		return color.RedString("REVERTED")
	}
}
