package types

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Side is the direction of a swap relative to the base asset
type Side string

const (
	SideBuy  Side = "buy"  // base asset -> quote asset
	SideSell Side = "sell" // quote asset -> base asset
)

// SwapDeadline is how long a submitted swap stays acceptable to the router
const SwapDeadline = 5 * time.Minute

// TradeConfig holds the trading parameters. It is built once at startup and never mutated.
type TradeConfig struct {
	BaseToken  common.Address // wrapped native coin, e.g. WBNB
	QuoteToken common.Address // token being accumulated
	Router     common.Address
	Factory    common.Address // optional, zero disables the liquidity precheck
	Recipient  common.Address

	Amount           *big.Int // initial buy amount in wei
	Slippage         int64    // tolerance divisor, 0 disables bounding
	GasPrice         *big.Int // wei
	GasLimit         uint64
	WalletMinBalance *big.Int // wei
	MinLiquidity     *big.Int // wei of base token the pair must hold, optional
	TradeInterval    time.Duration
	MaxSwaps         int // 0 means unbounded
}

// Validate checks that every required field is present
func (c *TradeConfig) Validate() error {
	if c.BaseToken == (common.Address{}) {
		return fmt.Errorf("%w: base token address is required", ErrConfig)
	}
	if c.QuoteToken == (common.Address{}) {
		return fmt.Errorf("%w: quote token address is required", ErrConfig)
	}
	if c.BaseToken == c.QuoteToken {
		return fmt.Errorf("%w: base and quote token must differ", ErrConfig)
	}
	if c.Router == (common.Address{}) {
		return fmt.Errorf("%w: router address is required", ErrConfig)
	}
	if c.Recipient == (common.Address{}) {
		return fmt.Errorf("%w: recipient address is required", ErrConfig)
	}
	if !isPositive(c.Amount) {
		return fmt.Errorf("%w: trade amount must be greater than 0", ErrConfig)
	}
	if c.Slippage < 0 {
		return fmt.Errorf("%w: slippage must not be negative", ErrConfig)
	}
	if !isPositive(c.GasPrice) {
		return fmt.Errorf("%w: gas price must be greater than 0", ErrConfig)
	}
	if c.GasLimit == 0 {
		return fmt.Errorf("%w: gas limit must be greater than 0", ErrConfig)
	}
	if c.WalletMinBalance == nil || c.WalletMinBalance.Sign() < 0 {
		return fmt.Errorf("%w: wallet minimum balance must not be negative", ErrConfig)
	}
	if c.TradeInterval < 0 {
		return fmt.Errorf("%w: trade interval must not be negative", ErrConfig)
	}
	if c.MaxSwaps < 0 {
		return fmt.Errorf("%w: max swaps must not be negative", ErrConfig)
	}
	return nil
}

// SwapPath returns the router path for a swap in the given direction
func (c *TradeConfig) SwapPath(side Side) []common.Address {
	if side == SideSell {
		return []common.Address{c.QuoteToken, c.BaseToken}
	}
	return []common.Address{c.BaseToken, c.QuoteToken}
}

// LiquidityCheckEnabled reports whether a pair liquidity precheck is configured
func (c *TradeConfig) LiquidityCheckEnabled() bool {
	return c.Factory != (common.Address{}) && isPositive(c.MinLiquidity)
}

// TradeState is the mutable run state of the trade loop
type TradeState struct {
	Balance     *big.Int // native balance in wei
	PendingBuy  *big.Int // base units to spend on the next buy
	PendingSell *big.Int // quote units to sell next
	Swaps       int      // completed swaps
}

// NewTradeState returns the entry state: holding base asset, wanting to buy amount
func NewTradeState(amount *big.Int) *TradeState {
	return &TradeState{
		Balance:     new(big.Int),
		PendingBuy:  new(big.Int).Set(amount),
		PendingSell: new(big.Int),
	}
}

// HasPendingBuy returns true if a buy is waiting
func (s *TradeState) HasPendingBuy() bool {
	return isPositive(s.PendingBuy)
}

// HasPendingSell returns true if a sell is waiting
func (s *TradeState) HasPendingSell() bool {
	return isPositive(s.PendingSell)
}

// Consistent reports whether exactly one of the pending amounts is nonzero
func (s *TradeState) Consistent() bool {
	return s.HasPendingBuy() != s.HasPendingSell()
}

// Apply records a confirmed swap and flips the trade direction
func (s *TradeState) Apply(r *SwapReceipt) error {
	if r == nil || !isPositive(r.AmountOut) {
		return fmt.Errorf("%w: swap produced no output", ErrConfirmation)
	}

	switch r.Side {
	case SideBuy:
		s.PendingSell = new(big.Int).Set(r.AmountOut)
		s.PendingBuy = new(big.Int)
	case SideSell:
		s.PendingBuy = new(big.Int).Set(r.AmountOut)
		s.PendingSell = new(big.Int)
	default:
		return fmt.Errorf("unknown swap side: %s", r.Side)
	}

	s.Swaps++
	return nil
}

// SwapQuote is the bounded plan for a single swap attempt
type SwapQuote struct {
	Side     Side
	AmountIn *big.Int         // exact amount sent to the router
	Expected *big.Int         // oracle-quoted counter amount, nil when slippage is disabled
	Limit    *big.Int         // minimum receive on buy, maximum pay on sell
	Slippage int64            // divisor the limit was derived from
	Path     []common.Address // router swap path
}

// Bounded reports whether the quote carries a slippage bound
func (q *SwapQuote) Bounded() bool {
	return q.Slippage > 0 && q.Expected != nil
}

// MinReceive returns the amountOutMin argument for the router call.
// Buys use the limit directly. Sells are exact-input swaps, so the router needs
// a floor rather than the pay ceiling: expected - expected/n.
func (q *SwapQuote) MinReceive() *big.Int {
	if q.Side == SideBuy {
		return new(big.Int).Set(q.Limit)
	}
	if !q.Bounded() {
		return new(big.Int)
	}
	dev := new(big.Int).Quo(q.Expected, big.NewInt(q.Slippage))
	return new(big.Int).Sub(q.Expected, dev)
}

// SwapReceipt is the result of a confirmed swap
type SwapReceipt struct {
	Side        Side
	TxHash      common.Hash
	AmountIn    *big.Int
	AmountOut   *big.Int // realized counter amount
	BlockNumber uint64
	GasUsed     uint64
}

// PendingSwap is a submitted swap transaction that has not been confirmed yet
type PendingSwap interface {
	Hash() common.Hash
	// Wait blocks until the transaction is mined and returns the realized result
	Wait(ctx context.Context) (*SwapReceipt, error)
}

// QuoteRequest represents a user's quote command
type QuoteRequest struct {
	Side   Side
	Amount string
}

func isPositive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}
