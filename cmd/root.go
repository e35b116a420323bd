package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pcs-swap/config"
	"pcs-swap/pkg/logger"
	"pcs-swap/pkg/pancake"
	"pcs-swap/pkg/wallet"
)

var rootCmd = &cobra.Command{
	Use:   "pcs-swap",
	Short: "An automated buy/sell loop for a PancakeSwap token pair",
	Long: `pcs-swap buys a token with a fixed amount of BNB through the PancakeSwap router,
sells everything it received back, waits for the trade interval and repeats until
the wallet balance drops to the configured minimum.

Configuration is read from the environment (a .env file is loaded if present) and
from an optional .pcs-swap.yaml in the home or working directory.

Slippage is a divisor: SLIPPAGE=20 allows the price to move by 1/20 (5%).
SLIPPAGE=0 disables price protection.

Examples:
  pcs-swap run
  pcs-swap run --max-swaps 4 --yes
  pcs-swap quote buy 0.1
  pcs-swap balance
  pcs-swap pair
  pcs-swap status 0x5c50...e1a2 --watch
  pcs-swap history`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}

func printJSON(v interface{}) {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(jsonData))
}

func newSpinner(suffix string, jsonOutput bool) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + suffix
	s.Writer = os.Stderr
	if !jsonOutput {
		s.Start()
	}
	return s
}

func confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s (y/N): ", prompt)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// session is the configuration, logger and connected client shared by the commands
type session struct {
	cfg    *config.Config
	log    *logrus.Logger
	client *pancake.Client
}

// openSession loads the configuration, builds the logger, derives the signing
// account and connects to the node
func openSession(cmd *cobra.Command) (*session, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Log lines only reach the console with --verbose, the file always gets them
	var console io.Writer
	if verbose {
		console = os.Stderr
	}
	log, err := logger.New(cfg.Log, console)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	account, err := wallet.FromMnemonic(cfg.Mnemonic, cfg.DerivationPath)
	if err != nil {
		return nil, err
	}
	if account.Address != cfg.Trade.Recipient && !jsonOutput {
		color.Yellow("Warning: signing account %s differs from YOUR_ADDRESS %s", account.Address.Hex(), cfg.Trade.Recipient.Hex())
	}

	s := newSpinner("Connecting to node...", jsonOutput)
	client, err := pancake.Dial(cmd.Context(), cfg.NodeURL, account, &cfg.Trade, cfg.ChainID, logrus.NewEntry(log))
	s.Stop()
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"account":  account.Address.Hex(),
		"chain_id": client.ChainID().String(),
	}).Debug("connected")

	return &session{
		cfg:    cfg,
		log:    log,
		client: client,
	}, nil
}

func (s *session) Close() {
	s.client.Close()
}

func mustOpenSession(cmd *cobra.Command) *session {
	s, err := openSession(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	return s
}
