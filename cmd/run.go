package cmd

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pcs-swap/pkg/history"
	"pcs-swap/pkg/pancake"
	"pcs-swap/pkg/trade"
	"pcs-swap/pkg/types"
	"pcs-swap/pkg/units"
)

var (
	runMaxSwaps  int
	runNoConfirm bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the buy/sell trade loop",
	Long: `Buy the configured token with AMOUNT_OF_BNB, sell everything received, wait
TRADE_INTERVAL seconds and repeat. The loop stops when the BNB balance is at or
below WALLET_MIN_BNB, when a swap fails, or after --max-swaps completed swaps.

If FACTORY and MIN_LIQUIDITY_ADDED are set, the pair must hold at least that much
WBNB before the first swap is sent.

Examples:
  pcs-swap run
  pcs-swap run --max-swaps 10
  pcs-swap run --yes --verbose`,
	Args: cobra.NoArgs,
	Run:  runTrade,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runMaxSwaps, "max-swaps", 0, "Stop after this many completed swaps (overrides MAX_SWAPS)")
	runCmd.Flags().BoolVarP(&runNoConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runTrade(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	ctx := cmd.Context()

	s := mustOpenSession(cmd)
	defer s.Close()

	if cmd.Flags().Changed("max-swaps") {
		if runMaxSwaps < 0 {
			printError(fmt.Errorf("%w: --max-swaps must not be negative", types.ErrConfig))
			os.Exit(1)
		}
		s.cfg.Trade.MaxSwaps = runMaxSwaps
	}
	tc := &s.cfg.Trade

	if !jsonOutput {
		displayTradeConfig(s)
	}

	// The router swaps native BNB through its WETH, which must be the configured base token
	weth, err := s.client.WETH(ctx)
	if err != nil {
		printError(fmt.Errorf("failed to read router WETH: %w", err))
		os.Exit(1)
	}
	if weth != tc.BaseToken && !jsonOutput {
		color.Yellow("Warning: router WETH is %s, BNB_CONTRACT is %s", weth.Hex(), tc.BaseToken.Hex())
	}

	if tc.LiquidityCheckEnabled() {
		sp := newSpinner("Checking pair liquidity...", jsonOutput)
		info, err := s.client.CheckLiquidity(ctx)
		sp.Stop()
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		if !jsonOutput {
			fmt.Printf("  Pair %s holds %s WBNB\n", color.CyanString(info.Pair.Hex()), units.FormatEther(info.BaseReserve))
		}
	}

	if !runNoConfirm && !jsonOutput {
		if !confirm("Start trading?") {
			fmt.Println("\nCancelled.")
			os.Exit(0)
		}
	}

	journal, err := history.NewStorage(s.cfg.HistoryFile)
	if err != nil {
		s.log.WithError(err).Warn("swap history disabled")
	}

	obs := newConsoleObserver(ctx, s.client, tc, journal, s.log, jsonOutput)
	loop := trade.NewLoop(tc, s.client, s.client,
		trade.WithObserver(obs),
		trade.WithLogger(logrus.NewEntry(s.log)),
	)

	result, err := loop.Run(ctx)
	obs.stopSpinner()

	if jsonOutput {
		output := map[string]interface{}{
			"reason":       result.Reason,
			"swaps":        result.Swaps,
			"balance":      units.FormatEther(result.State.Balance),
			"pending_buy":  result.State.PendingBuy.String(),
			"pending_sell": result.State.PendingSell.String(),
		}
		if err != nil {
			output["error"] = err.Error()
		}
		printJSON(output)
	} else {
		displayResult(result)
	}

	if err != nil {
		os.Exit(1)
	}
}

func displayTradeConfig(s *session) {
	tc := &s.cfg.Trade

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                         TRADE LOOP")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Account:         %s\n", color.CyanString(s.client.Address().Hex()))
	fmt.Printf("  Chain ID:        %s\n", s.client.ChainID())
	fmt.Printf("  Router:          %s\n", tc.Router.Hex())
	fmt.Printf("  Buying:          %s\n", color.YellowString(tc.QuoteToken.Hex()))
	fmt.Printf("  Amount:          %s BNB\n", units.FormatEther(tc.Amount))
	fmt.Printf("  Slippage:        %s\n", describeSlippage(tc.Slippage))
	fmt.Printf("  Gas:             %s gwei, limit %d\n", units.FormatGwei(tc.GasPrice), tc.GasLimit)
	fmt.Printf("  Trade Interval:  %s\n", tc.TradeInterval)
	fmt.Printf("  Stop Below:      %s BNB\n", units.FormatEther(tc.WalletMinBalance))
	if tc.MaxSwaps > 0 {
		fmt.Printf("  Max Swaps:       %d\n", tc.MaxSwaps)
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
}

func describeSlippage(n int64) string {
	if n == 0 {
		return color.RedString("disabled (any price accepted)")
	}
	pct := new(big.Float).Quo(big.NewFloat(100), new(big.Float).SetInt64(n))
	return fmt.Sprintf("1/%d (%s%%)", n, pct.Text('f', 2))
}

func displayResult(result *trade.Result) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	if result.Err != nil {
		color.Red("                       TRADING STOPPED")
	} else {
		color.Green("                       TRADING STOPPED")
	}
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Reason:          %s\n", result.Reason)
	fmt.Printf("  Swaps:           %d\n", result.Swaps)
	if result.State.Balance != nil {
		fmt.Printf("  Balance:         %s BNB\n", units.FormatEther(result.State.Balance))
	}
	if result.Err != nil {
		fmt.Printf("  Error:           %s\n", color.RedString(result.Err.Error()))
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

// consoleObserver prints loop progress with colours and spinners and journals every swap
type consoleObserver struct {
	ctx     context.Context
	client  *pancake.Client
	cfg     *types.TradeConfig
	journal *history.Storage // nil when the history file cannot be opened
	log     *logrus.Logger
	quiet   bool

	spin    *spinner.Spinner
	lastTx  common.Hash
	symbols map[common.Address]string
}

func newConsoleObserver(ctx context.Context, client *pancake.Client, cfg *types.TradeConfig, journal *history.Storage, log *logrus.Logger, quiet bool) *consoleObserver {
	return &consoleObserver{
		ctx:     ctx,
		client:  client,
		cfg:     cfg,
		journal: journal,
		log:     log,
		quiet:   quiet,
		symbols: make(map[common.Address]string),
	}
}

func (o *consoleObserver) StateChanged(from, to trade.State) {
	o.stopSpinner()
	if to == trade.StateBuying || to == trade.StateSelling {
		o.lastTx = common.Hash{}
	}
	if o.quiet {
		return
	}

	switch to {
	case trade.StateBuying:
		color.Yellow("\n>>> BUY")
	case trade.StateSelling:
		color.Cyan("\n<<< SELL")
	}
}

func (o *consoleObserver) Balance(balance *big.Int) {
	if !o.quiet {
		fmt.Printf("  Balance:         %s BNB\n", units.FormatEther(balance))
	}
}

func (o *consoleObserver) Quoted(q *types.SwapQuote) {
	if o.quiet {
		return
	}

	in, out := o.cfg.BaseToken, o.cfg.QuoteToken
	if q.Side == types.SideSell {
		in, out = out, in
	}

	fmt.Printf("  Amount In:       %s %s\n", q.AmountIn, o.symbol(in))
	if q.Bounded() {
		fmt.Printf("  Expected:        %s\n", q.Expected)
		fmt.Printf("  Min Receive:     %s %s\n", q.MinReceive(), o.symbol(out))
	} else {
		fmt.Printf("  Min Receive:     %s\n", color.RedString("unbounded"))
	}
}

func (o *consoleObserver) Submitted(side types.Side, hash common.Hash) {
	o.lastTx = hash
	if o.quiet {
		return
	}
	fmt.Printf("  Tx:              %s\n", color.HiBlackString(hash.Hex()))
	o.startSpinner("Waiting for confirmation...")
}

func (o *consoleObserver) Confirmed(r *types.SwapReceipt) {
	o.stopSpinner()
	if o.journal != nil {
		o.record(o.journal.AddReceipt(r))
	}
	if o.quiet {
		return
	}
	color.Green("  ✓ Confirmed in block %d, received %s (gas used %d)", r.BlockNumber, r.AmountOut, r.GasUsed)
}

func (o *consoleObserver) Failed(side types.Side, err error) {
	o.stopSpinner()
	tx := ""
	if o.lastTx != (common.Hash{}) {
		tx = o.lastTx.Hex()
	}
	if o.journal != nil {
		o.record(o.journal.AddFailure(side, tx, err))
	}
	if o.quiet {
		return
	}
	color.Red("  ✗ %s failed: %v", side, err)
}

func (o *consoleObserver) CooldownTick(elapsed, total int) {
	if o.quiet {
		return
	}
	suffix := fmt.Sprintf("sleeping: %d/%d", elapsed, total)
	if o.spin == nil {
		o.startSpinner(suffix)
		return
	}
	o.spin.Lock()
	o.spin.Suffix = " " + suffix
	o.spin.Unlock()
}

func (o *consoleObserver) record(err error) {
	if err != nil {
		o.log.WithError(err).Warn("failed to write swap history")
	}
}

func (o *consoleObserver) startSpinner(suffix string) {
	if o.quiet {
		return
	}
	o.stopSpinner()
	o.spin = newSpinner(suffix, false)
}

func (o *consoleObserver) stopSpinner() {
	if o.spin != nil {
		o.spin.Stop()
		o.spin = nil
	}
}

// symbol returns the token symbol, falling back to the short address
func (o *consoleObserver) symbol(token common.Address) string {
	if sym, ok := o.symbols[token]; ok {
		return sym
	}

	sym := token.Hex()[:10]
	if info, err := o.client.TokenInfo(o.ctx, token); err == nil {
		sym = info.Symbol
	}
	o.symbols[token] = sym
	return sym
}
