package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pcs-swap/pkg/units"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the wallet BNB and token balances",
	Long: `Show the BNB balance of the signing account and the configured token balance
of YOUR_ADDRESS, and whether the trade loop would start.

Examples:
  pcs-swap balance
  pcs-swap balance --json`,
	Args: cobra.NoArgs,
	Run:  runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	ctx := cmd.Context()

	s := mustOpenSession(cmd)
	defer s.Close()
	tc := &s.cfg.Trade

	sp := newSpinner("Fetching balances...", jsonOutput)
	native, err := s.client.Balance(ctx)
	if err != nil {
		sp.Stop()
		printError(err)
		os.Exit(1)
	}
	token, err := s.client.TokenInfo(ctx, tc.QuoteToken)
	if err != nil {
		sp.Stop()
		printError(err)
		os.Exit(1)
	}
	held, err := s.client.TokenBalance(ctx, tc.QuoteToken, tc.Recipient)
	sp.Stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	canTrade := native.Cmp(tc.WalletMinBalance) > 0

	if jsonOutput {
		printJSON(map[string]interface{}{
			"address":       s.client.Address().Hex(),
			"bnb":           units.FormatEther(native),
			"token":         token.Symbol,
			"token_address": token.Address.Hex(),
			"token_balance": units.FormatUnits(held, int32(token.Decimals)),
			"minimum_bnb":   units.FormatEther(tc.WalletMinBalance),
			"can_trade":     canTrade,
		})
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     BALANCES")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Address:           %s\n", color.CyanString(s.client.Address().Hex()))
	fmt.Printf("  BNB:               %s\n", units.FormatEther(native))
	fmt.Printf("  %-19s%s\n", token.Symbol+":", units.FormatUnits(held, int32(token.Decimals)))
	fmt.Printf("  Minimum BNB:       %s\n", units.FormatEther(tc.WalletMinBalance))
	if canTrade {
		fmt.Printf("  Can Trade:         %s\n", color.GreenString("yes"))
	} else {
		fmt.Printf("  Can Trade:         %s\n", color.RedString("no, balance at or below minimum"))
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
