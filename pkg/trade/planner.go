package trade

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"pcs-swap/pkg/types"
)

// Quoter reads expected swap amounts at current pair reserves
type Quoter interface {
	GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error)
	GetAmountsIn(ctx context.Context, amountOut *big.Int, path []common.Address) ([]*big.Int, error)
}

// Planner bounds swaps by the configured slippage divisor.
//
// The divisor n means the counter amount may deviate by at most 1/n of the quoted
// amount: a slippage of 20 allows 5%, not 20%. A divisor of 0 disables the bound.
type Planner struct {
	quoter Quoter
	cfg    *types.TradeConfig
}

// NewPlanner creates a new planner instance
func NewPlanner(quoter Quoter, cfg *types.TradeConfig) *Planner {
	return &Planner{
		quoter: quoter,
		cfg:    cfg,
	}
}

// Plan dispatches to PlanBuy or PlanSell
func (p *Planner) Plan(ctx context.Context, side types.Side, amount *big.Int) (*types.SwapQuote, error) {
	switch side {
	case types.SideBuy:
		return p.PlanBuy(ctx, amount)
	case types.SideSell:
		return p.PlanSell(ctx, amount)
	default:
		return nil, fmt.Errorf("%w: unknown swap side %q", types.ErrQuoteUnavailable, side)
	}
}

// PlanBuy bounds a buy spending amountIn base units.
// The limit is the minimum quote amount to receive.
func (p *Planner) PlanBuy(ctx context.Context, amountIn *big.Int) (*types.SwapQuote, error) {
	quote, err := p.newQuote(types.SideBuy, amountIn)
	if err != nil {
		return nil, err
	}

	// No tolerance configured, accept any output
	if p.cfg.Slippage == 0 {
		quote.Limit = new(big.Int)
		return quote, nil
	}

	amounts, err := p.quoter.GetAmountsOut(ctx, amountIn, p.quotePath())
	if err != nil {
		return nil, fmt.Errorf("%w: getAmountsOut: %w", types.ErrQuoteUnavailable, err)
	}
	expected, err := pick(amounts, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: getAmountsOut: %w", types.ErrQuoteUnavailable, err)
	}

	quote.Expected = expected
	quote.Limit = new(big.Int).Sub(expected, p.deviation(expected))
	return quote, nil
}

// PlanSell bounds a sell of amount quote units.
// The limit is the maximum base amount the quoted exchange rate may cost.
func (p *Planner) PlanSell(ctx context.Context, amount *big.Int) (*types.SwapQuote, error) {
	quote, err := p.newQuote(types.SideSell, amount)
	if err != nil {
		return nil, err
	}

	if p.cfg.Slippage == 0 {
		quote.Limit = new(big.Int).Set(math.MaxBig256)
		return quote, nil
	}

	amounts, err := p.quoter.GetAmountsIn(ctx, amount, p.quotePath())
	if err != nil {
		return nil, fmt.Errorf("%w: getAmountsIn: %w", types.ErrQuoteUnavailable, err)
	}
	expected, err := pick(amounts, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: getAmountsIn: %w", types.ErrQuoteUnavailable, err)
	}

	quote.Expected = expected
	quote.Limit = new(big.Int).Add(expected, p.deviation(expected))
	return quote, nil
}

func (p *Planner) newQuote(side types.Side, amount *big.Int) (*types.SwapQuote, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s amount must be greater than 0", types.ErrQuoteUnavailable, side)
	}

	return &types.SwapQuote{
		Side:     side,
		AmountIn: new(big.Int).Set(amount),
		Slippage: p.cfg.Slippage,
		Path:     p.cfg.SwapPath(side),
	}, nil
}

// quotePath is the path both price reads are taken along
func (p *Planner) quotePath() []common.Address {
	return []common.Address{p.cfg.BaseToken, p.cfg.QuoteToken}
}

func (p *Planner) deviation(expected *big.Int) *big.Int {
	return new(big.Int).Quo(expected, big.NewInt(p.cfg.Slippage))
}

func pick(amounts []*big.Int, i int) (*big.Int, error) {
	if len(amounts) < 2 {
		return nil, fmt.Errorf("expected 2 amounts, got %d", len(amounts))
	}
	if amounts[i] == nil || amounts[i].Sign() < 0 {
		return nil, fmt.Errorf("invalid quoted amount %v", amounts[i])
	}
	return new(big.Int).Set(amounts[i]), nil
}
