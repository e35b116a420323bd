package types

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *TradeConfig {
	return &TradeConfig{
		BaseToken:        common.HexToAddress("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"),
		QuoteToken:       common.HexToAddress("0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82"),
		Router:           common.HexToAddress("0x10ED43C718714eb63d5aA57B78B54704E256024E"),
		Recipient:        common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		Amount:           big.NewInt(1e16),
		Slippage:         20,
		GasPrice:         big.NewInt(5e9),
		GasLimit:         300000,
		WalletMinBalance: big.NewInt(1e16),
		TradeInterval:    30 * time.Second,
	}
}

func TestTradeConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *TradeConfig)
	}{
		{"missing base token", func(c *TradeConfig) { c.BaseToken = common.Address{} }},
		{"missing quote token", func(c *TradeConfig) { c.QuoteToken = common.Address{} }},
		{"same tokens", func(c *TradeConfig) { c.QuoteToken = c.BaseToken }},
		{"missing router", func(c *TradeConfig) { c.Router = common.Address{} }},
		{"missing recipient", func(c *TradeConfig) { c.Recipient = common.Address{} }},
		{"zero amount", func(c *TradeConfig) { c.Amount = big.NewInt(0) }},
		{"nil amount", func(c *TradeConfig) { c.Amount = nil }},
		{"negative slippage", func(c *TradeConfig) { c.Slippage = -1 }},
		{"zero gas price", func(c *TradeConfig) { c.GasPrice = new(big.Int) }},
		{"zero gas limit", func(c *TradeConfig) { c.GasLimit = 0 }},
		{"negative minimum balance", func(c *TradeConfig) { c.WalletMinBalance = big.NewInt(-1) }},
		{"negative interval", func(c *TradeConfig) { c.TradeInterval = -time.Second }},
		{"negative max swaps", func(c *TradeConfig) { c.MaxSwaps = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrConfig)
		})
	}
}

func TestTradeConfig_SwapPath(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, []common.Address{cfg.BaseToken, cfg.QuoteToken}, cfg.SwapPath(SideBuy))
	assert.Equal(t, []common.Address{cfg.QuoteToken, cfg.BaseToken}, cfg.SwapPath(SideSell))
}

func TestTradeConfig_LiquidityCheckEnabled(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.LiquidityCheckEnabled())

	cfg.Factory = common.HexToAddress("0xcA143Ce32Fe78f1f7019d7d551a6402fC5350c73")
	assert.False(t, cfg.LiquidityCheckEnabled())

	cfg.MinLiquidity = big.NewInt(1e18)
	assert.True(t, cfg.LiquidityCheckEnabled())
}

func TestTradeState_Apply(t *testing.T) {
	s := NewTradeState(big.NewInt(100))
	assert.True(t, s.Consistent())
	assert.True(t, s.HasPendingBuy())

	require.NoError(t, s.Apply(&SwapReceipt{Side: SideBuy, AmountOut: big.NewInt(4200)}))
	assert.True(t, s.Consistent())
	assert.Equal(t, big.NewInt(4200), s.PendingSell)
	assert.Equal(t, 0, s.PendingBuy.Sign())

	require.NoError(t, s.Apply(&SwapReceipt{Side: SideSell, AmountOut: big.NewInt(98)}))
	assert.True(t, s.Consistent())
	assert.Equal(t, big.NewInt(98), s.PendingBuy)
	assert.Equal(t, 0, s.PendingSell.Sign())
	assert.Equal(t, 2, s.Swaps)
}

func TestTradeState_ApplyRejectsEmptyOutput(t *testing.T) {
	s := NewTradeState(big.NewInt(100))

	assert.ErrorIs(t, s.Apply(nil), ErrConfirmation)
	assert.ErrorIs(t, s.Apply(&SwapReceipt{Side: SideBuy}), ErrConfirmation)
	assert.ErrorIs(t, s.Apply(&SwapReceipt{Side: SideBuy, AmountOut: new(big.Int)}), ErrConfirmation)

	assert.Equal(t, big.NewInt(100), s.PendingBuy)
	assert.Zero(t, s.Swaps)
}

func TestTradeState_ApplyCopiesAmount(t *testing.T) {
	s := NewTradeState(big.NewInt(1))
	out := big.NewInt(50)
	require.NoError(t, s.Apply(&SwapReceipt{Side: SideBuy, AmountOut: out}))

	out.SetInt64(0)
	assert.Equal(t, big.NewInt(50), s.PendingSell)
}

func TestTradeState_Consistent(t *testing.T) {
	assert.False(t, (&TradeState{}).Consistent())
	assert.False(t, (&TradeState{PendingBuy: big.NewInt(1), PendingSell: big.NewInt(1)}).Consistent())
	assert.True(t, (&TradeState{PendingSell: big.NewInt(1)}).Consistent())
}

func TestSwapQuote_MinReceive(t *testing.T) {
	buy := &SwapQuote{Side: SideBuy, Expected: big.NewInt(100), Limit: big.NewInt(95), Slippage: 20}
	assert.Equal(t, big.NewInt(95), buy.MinReceive())

	sell := &SwapQuote{Side: SideSell, Expected: big.NewInt(100), Limit: big.NewInt(105), Slippage: 20}
	assert.Equal(t, big.NewInt(95), sell.MinReceive())

	unbounded := &SwapQuote{Side: SideSell, Limit: big.NewInt(1)}
	assert.Equal(t, 0, unbounded.MinReceive().Sign())
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(ErrSubmission, nil))

	raw := errors.New("nonce too low")
	err := Classify(ErrSubmission, raw)
	assert.ErrorIs(t, err, ErrSubmission)
	assert.ErrorIs(t, err, raw)

	already := Classify(ErrQuoteUnavailable, err)
	assert.Equal(t, err, already)
	assert.False(t, errors.Is(already, ErrQuoteUnavailable))
}
