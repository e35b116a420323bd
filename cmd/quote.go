package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pcs-swap/pkg/parser"
	"pcs-swap/pkg/trade"
	"pcs-swap/pkg/types"
	"pcs-swap/pkg/units"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <buy|sell> <amount>",
	Short: "Show the slippage bound for a swap without sending it",
	Long: `Quote a swap against the current pair reserves and show the bound the trade
loop would send. Buy amounts are in BNB, sell amounts in the configured token.

Examples:
  pcs-swap quote buy 0.1
  pcs-swap quote sell 1500.25`,
	Args: cobra.MinimumNArgs(2),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	ctx := cmd.Context()

	// Parse the command
	req, err := parser.ParseQuoteCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := parser.ValidateQuoteRequest(req); err != nil {
		printError(err)
		os.Exit(1)
	}

	s := mustOpenSession(cmd)
	defer s.Close()
	tc := &s.cfg.Trade

	sp := newSpinner("Fetching quote...", jsonOutput)
	base, err := s.client.TokenInfo(ctx, tc.BaseToken)
	if err != nil {
		sp.Stop()
		printError(err)
		os.Exit(1)
	}
	quoteToken, err := s.client.TokenInfo(ctx, tc.QuoteToken)
	if err != nil {
		sp.Stop()
		printError(err)
		os.Exit(1)
	}

	// Amounts are entered in the input token of the swap
	in, out := base, quoteToken
	if req.Side == types.SideSell {
		in, out = quoteToken, base
	}

	amount, err := units.ParseUnits(req.Amount, int32(in.Decimals))
	if err != nil {
		sp.Stop()
		printError(err)
		os.Exit(1)
	}

	planner := trade.NewPlanner(s.client, tc)
	q, err := planner.Plan(ctx, req.Side, amount)
	sp.Stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"side":        q.Side,
			"amount_in":   units.FormatUnits(q.AmountIn, int32(in.Decimals)),
			"token_in":    in.Symbol,
			"token_out":   out.Symbol,
			"slippage":    q.Slippage,
			"limit":       q.Limit.String(),
			"min_receive": units.FormatUnits(q.MinReceive(), int32(out.Decimals)),
		}
		if q.Expected != nil {
			output["expected"] = q.Expected.String()
		}
		printJSON(output)
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Side:              %s\n", strings.ToUpper(string(q.Side)))
	fmt.Printf("  Amount In:         %s %s\n", units.FormatUnits(q.AmountIn, int32(in.Decimals)), color.YellowString(in.Symbol))
	fmt.Printf("  Slippage:          %s\n", describeSlippage(q.Slippage))
	if q.Bounded() {
		fmt.Printf("  Expected:          %s %s\n", units.FormatUnits(q.Expected, int32(out.Decimals)), out.Symbol)
		fmt.Printf("  Limit:             %s\n", q.Limit)
	}
	fmt.Printf("  Min Receive:       %s %s\n", units.FormatUnits(q.MinReceive(), int32(out.Decimals)), color.YellowString(out.Symbol))

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
