package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pcs-swap/pkg/units"
)

var pairCmd = &cobra.Command{
	Use:     "pair",
	Aliases: []string{"liquidity"},
	Short:   "Show the PancakeSwap pair of the configured tokens",
	Long: `Look up the pair of BNB_CONTRACT and TO_PURCHASE on the factory (FACTORY, or
the router's own factory) and show the reserves it holds.

Examples:
  pcs-swap pair
  pcs-swap pair --json`,
	Args: cobra.NoArgs,
	Run:  runPair,
}

func init() {
	rootCmd.AddCommand(pairCmd)
}

func runPair(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	ctx := cmd.Context()

	s := mustOpenSession(cmd)
	defer s.Close()
	tc := &s.cfg.Trade

	sp := newSpinner("Fetching pair...", jsonOutput)
	info, err := s.client.Pair(ctx)
	if err != nil {
		sp.Stop()
		printError(err)
		os.Exit(1)
	}
	base, err := s.client.TokenInfo(ctx, tc.BaseToken)
	if err != nil {
		sp.Stop()
		printError(err)
		os.Exit(1)
	}
	quote, err := s.client.TokenInfo(ctx, tc.QuoteToken)
	sp.Stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	meetsMinimum := info.HasLiquidity(tc.MinLiquidity)

	if jsonOutput {
		printJSON(map[string]interface{}{
			"factory":       info.Factory.Hex(),
			"pair":          info.Pair.Hex(),
			"base":          base,
			"quote":         quote,
			"base_reserve":  units.FormatUnits(info.BaseReserve, int32(base.Decimals)),
			"quote_reserve": units.FormatUnits(info.QuoteReserve, int32(quote.Decimals)),
			"meets_minimum": meetsMinimum,
		})
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                          PAIR")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Factory:         %s\n", info.Factory.Hex())
	fmt.Printf("  Pair:            %s\n", color.CyanString(info.Pair.Hex()))
	fmt.Printf("  %-17s%s (%d decimals)\n", base.Symbol+":", base.Address.Hex(), base.Decimals)
	fmt.Printf("  %-17s%s (%d decimals)\n", quote.Symbol+":", quote.Address.Hex(), quote.Decimals)
	fmt.Printf("  Reserves:        %s %s / %s %s\n",
		units.FormatUnits(info.BaseReserve, int32(base.Decimals)), base.Symbol,
		units.FormatUnits(info.QuoteReserve, int32(quote.Decimals)), quote.Symbol)

	if tc.MinLiquidity != nil {
		status := color.GreenString("met")
		if !meetsMinimum {
			status = color.RedString("not met")
		}
		fmt.Printf("  Min Liquidity:   %s %s, %s\n", units.FormatEther(tc.MinLiquidity), base.Symbol, status)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}
