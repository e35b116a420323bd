package pancake

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"pcs-swap/pkg/types"
)

// TokenInfo describes an ERC20 token
type TokenInfo struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
}

// PairInfo describes the liquidity pair of the configured tokens
type PairInfo struct {
	Factory      common.Address `json:"factory"`
	Pair         common.Address `json:"pair"`
	BaseReserve  *big.Int       `json:"base_reserve"`
	QuoteReserve *big.Int       `json:"quote_reserve"`
}

// HasLiquidity reports whether the pair holds at least threshold of the base token
func (p *PairInfo) HasLiquidity(threshold *big.Int) bool {
	if threshold == nil {
		return true
	}
	return p.BaseReserve != nil && p.BaseReserve.Cmp(threshold) >= 0
}

// WETH returns the wrapped native token the router swaps through
func (c *Client) WETH(ctx context.Context) (common.Address, error) {
	return c.addressCall(ctx, "WETH")
}

// FactoryAddress returns the configured factory, falling back to the router's own
func (c *Client) FactoryAddress(ctx context.Context) (common.Address, error) {
	if c.cfg.Factory != (common.Address{}) {
		return c.cfg.Factory, nil
	}
	return c.addressCall(ctx, "factory")
}

func (c *Client) addressCall(ctx context.Context, method string) (common.Address, error) {
	out, err := call(ctx, c.router, method)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return addr, nil
}

// Pair looks up the pair of the configured tokens.
// A missing pair is reported as ErrQuoteUnavailable.
func (c *Client) Pair(ctx context.Context) (*PairInfo, error) {
	factoryAddr, err := c.FactoryAddress(ctx)
	if err != nil {
		return nil, err
	}

	factory := bind.NewBoundContract(factoryAddr, factoryABI, c.backend, c.backend, c.backend)
	out, err := call(ctx, factory, "getPair", c.cfg.BaseToken, c.cfg.QuoteToken)
	if err != nil {
		return nil, err
	}
	pair, ok := out[0].(common.Address)
	if !ok {
		return nil, fmt.Errorf("getPair: unexpected result type %T", out[0])
	}
	if pair == (common.Address{}) {
		return nil, fmt.Errorf("%w: no pair for %s/%s", types.ErrQuoteUnavailable, c.cfg.BaseToken.Hex(), c.cfg.QuoteToken.Hex())
	}

	baseReserve, err := c.TokenBalance(ctx, c.cfg.BaseToken, pair)
	if err != nil {
		return nil, err
	}
	quoteReserve, err := c.TokenBalance(ctx, c.cfg.QuoteToken, pair)
	if err != nil {
		return nil, err
	}

	return &PairInfo{
		Factory:      factoryAddr,
		Pair:         pair,
		BaseReserve:  baseReserve,
		QuoteReserve: quoteReserve,
	}, nil
}

// CheckLiquidity fails with ErrQuoteUnavailable when the pair holds less base token than configured
func (c *Client) CheckLiquidity(ctx context.Context) (*PairInfo, error) {
	info, err := c.Pair(ctx)
	if err != nil {
		return nil, err
	}
	if !info.HasLiquidity(c.cfg.MinLiquidity) {
		return info, fmt.Errorf("%w: pair %s holds %s base units, need %s",
			types.ErrQuoteUnavailable, info.Pair.Hex(), info.BaseReserve, c.cfg.MinLiquidity)
	}
	return info, nil
}

// TokenBalance returns the ERC20 balance of owner
func (c *Client) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	out, err := call(ctx, c.erc20(token), "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf: unexpected result type %T", out[0])
	}
	return balance, nil
}

// TokenInfo reads the symbol and decimals of an ERC20 token
func (c *Client) TokenInfo(ctx context.Context, token common.Address) (*TokenInfo, error) {
	contract := c.erc20(token)

	out, err := call(ctx, contract, "decimals")
	if err != nil {
		return nil, err
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return nil, fmt.Errorf("decimals: unexpected result type %T", out[0])
	}

	out, err = call(ctx, contract, "symbol")
	if err != nil {
		return nil, err
	}
	symbol, ok := out[0].(string)
	if !ok {
		return nil, fmt.Errorf("symbol: unexpected result type %T", out[0])
	}

	return &TokenInfo{
		Address:  token,
		Symbol:   symbol,
		Decimals: decimals,
	}, nil
}
