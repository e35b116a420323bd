package config

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"pcs-swap/pkg/logger"
	"pcs-swap/pkg/types"
	"pcs-swap/pkg/units"
	"pcs-swap/pkg/wallet"
)

// Config holds the application configuration
type Config struct {
	NodeURL        string
	Mnemonic       string
	DerivationPath string
	ChainID        int64 // 0 means ask the node
	HistoryFile    string

	Trade types.TradeConfig
	Log   logger.Config
}

// Load reads configuration from environment variables and the optional config file.
// Keys are the upper case environment names; the YAML file uses the lower case form.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".pcs-swap")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("%w: failed to read config file: %w", types.ErrConfig, err)
		}
	}

	return FromViper(v)
}

// FromViper builds the configuration from an existing viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	defaults := logger.DefaultConfig()

	// Set default values
	v.SetDefault("derivation_path", wallet.DefaultDerivationPath)
	v.SetDefault("chain_id", 0)
	v.SetDefault("log_level", defaults.Level)
	v.SetDefault("max_swaps", 0)

	// Read from environment variables
	v.AutomaticEnv()

	r := &reader{v: v}
	cfg := &Config{
		NodeURL:        r.required("bsc_node"),
		Mnemonic:       r.required("your_mnemonic"),
		DerivationPath: v.GetString("derivation_path"),
		ChainID:        r.int64("chain_id"),
		HistoryFile:    v.GetString("history_file"),
		Trade: types.TradeConfig{
			BaseToken:        r.address("bnb_contract", true),
			QuoteToken:       r.address("to_purchase", true),
			Router:           r.address("router", true),
			Factory:          r.address("factory", false),
			Recipient:        r.address("your_address", true),
			Amount:           r.ether("amount_of_bnb", true),
			Slippage:         r.int64("slippage"),
			GasPrice:         r.gwei("gwei"),
			GasLimit:         r.uint64("gas_limit"),
			WalletMinBalance: r.ether("wallet_min_bnb", true),
			MinLiquidity:     r.ether("min_liquidity_added", false),
			TradeInterval:    time.Duration(r.int64("trade_interval")) * time.Second,
			MaxSwaps:         int(r.int64("max_swaps")),
		},
		Log: defaults,
	}
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.OutputFile = v.GetString("log_file")

	for _, key := range []string{"slippage", "gwei", "gas_limit", "trade_interval"} {
		r.required(key)
	}

	if r.err != nil {
		return nil, r.err
	}

	if err := cfg.Trade.Validate(); err != nil {
		return nil, err
	}
	if cfg.ChainID < 0 {
		return nil, fmt.Errorf("%w: CHAIN_ID must not be negative", types.ErrConfig)
	}

	return cfg, nil
}

// reader collects the first parse error so every key can be read in one pass
type reader struct {
	v   *viper.Viper
	err error
}

func (r *reader) fail(key, format string, args ...interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s %s", types.ErrConfig, envName(key), fmt.Sprintf(format, args...))
	}
}

func (r *reader) required(key string) string {
	s := strings.TrimSpace(r.v.GetString(key))
	if s == "" {
		r.fail(key, "is required")
	}
	return s
}

func (r *reader) optional(key string, required bool) string {
	if required {
		return r.required(key)
	}
	return strings.TrimSpace(r.v.GetString(key))
}

func (r *reader) address(key string, required bool) common.Address {
	s := r.optional(key, required)
	if s == "" {
		return common.Address{}
	}
	if !common.IsHexAddress(s) {
		r.fail(key, "is not a valid address: %q", s)
		return common.Address{}
	}
	return common.HexToAddress(s)
}

func (r *reader) ether(key string, required bool) *big.Int {
	s := r.optional(key, required)
	if s == "" {
		return nil
	}
	wei, err := units.ParseEther(s)
	if err != nil {
		r.fail(key, "is not a valid amount: %v", err)
		return nil
	}
	return wei
}

func (r *reader) gwei(key string) *big.Int {
	s := r.v.GetString(key)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	wei, err := units.ParseGwei(s)
	if err != nil {
		r.fail(key, "is not a valid gas price: %v", err)
		return nil
	}
	return wei
}

func (r *reader) int64(key string) int64 {
	raw := r.v.Get(key)
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return 0
	}
	n, err := cast.ToInt64E(raw)
	if err != nil {
		r.fail(key, "is not an integer: %v", raw)
		return 0
	}
	return n
}

func (r *reader) uint64(key string) uint64 {
	n := r.int64(key)
	if n < 0 {
		r.fail(key, "must not be negative")
		return 0
	}
	return uint64(n)
}

func envName(key string) string {
	return strings.ToUpper(key)
}
