package pancake

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	"pcs-swap/pkg/types"
	"pcs-swap/pkg/wallet"
)

// Backend is the subset of an Ethereum RPC client the router client needs.
// *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*ethtypes.Transaction, bool, error)
	Close()
}

// Client talks to a Uniswap-V2 style router, its factory and ERC20 tokens on behalf of one account
type Client struct {
	backend Backend
	cfg     *types.TradeConfig
	account *wallet.Account
	chainID *big.Int
	router  *bind.BoundContract
	log     *logrus.Entry
}

// Dial connects to the RPC endpoint and creates a client.
// A zero chainID is resolved from the node.
func Dial(ctx context.Context, rpcURL string, account *wallet.Account, cfg *types.TradeConfig, chainID int64, log *logrus.Entry) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	id := big.NewInt(chainID)
	if chainID == 0 {
		id, err = eth.ChainID(ctx)
		if err != nil {
			eth.Close()
			return nil, fmt.Errorf("failed to get chain id: %w", err)
		}
	}

	return New(eth, account, cfg, id, log), nil
}

// New creates a client over an existing backend
func New(backend Backend, account *wallet.Account, cfg *types.TradeConfig, chainID *big.Int, log *logrus.Entry) *Client {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Client{
		backend: backend,
		cfg:     cfg,
		account: account,
		chainID: chainID,
		router:  bind.NewBoundContract(cfg.Router, routerABI, backend, backend, backend),
		log:     log.WithField("component", "pancake"),
	}
}

// Address returns the signing account address
func (c *Client) Address() common.Address {
	return c.account.Address
}

// ChainID returns the chain id transactions are signed for
func (c *Client) ChainID() *big.Int {
	return c.chainID
}

// Close closes the backend connection
func (c *Client) Close() {
	if c.backend != nil {
		c.backend.Close()
	}
}

// Balance returns the native coin balance of the signing account
func (c *Client) Balance(ctx context.Context) (*big.Int, error) {
	balance, err := c.backend.BalanceAt(ctx, c.account.Address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// GetAmountsOut quotes the output amounts along path for an exact input
func (c *Client) GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	return c.amounts(ctx, "getAmountsOut", amountIn, path)
}

// GetAmountsIn quotes the input amounts along path for an exact output
func (c *Client) GetAmountsIn(ctx context.Context, amountOut *big.Int, path []common.Address) ([]*big.Int, error) {
	return c.amounts(ctx, "getAmountsIn", amountOut, path)
}

func (c *Client) amounts(ctx context.Context, method string, amount *big.Int, path []common.Address) ([]*big.Int, error) {
	out, err := call(ctx, c.router, method, amount, path)
	if err != nil {
		return nil, err
	}

	amounts, ok := out[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return amounts, nil
}

// SubmitBuy sends swapExactETHForTokens for the quote
func (c *Client) SubmitBuy(ctx context.Context, q *types.SwapQuote) (types.PendingSwap, error) {
	if q.Side != types.SideBuy {
		return nil, fmt.Errorf("%w: quote is a %s, not a buy", types.ErrSubmission, q.Side)
	}
	return c.submit(ctx, q)
}

// SubmitSell approves the router if needed and sends swapExactTokensForETH for the quote
func (c *Client) SubmitSell(ctx context.Context, q *types.SwapQuote) (types.PendingSwap, error) {
	if q.Side != types.SideSell {
		return nil, fmt.Errorf("%w: quote is a %s, not a sell", types.ErrSubmission, q.Side)
	}
	if err := c.ensureAllowance(ctx, c.cfg.QuoteToken, q.AmountIn); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrSubmission, err)
	}
	return c.submit(ctx, q)
}

func (c *Client) submit(ctx context.Context, q *types.SwapQuote) (types.PendingSwap, error) {
	method, params, value := c.swapCall(q, time.Now().Add(types.SwapDeadline))

	opts, err := c.transactOpts(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrSubmission, err)
	}

	tx, err := c.router.Transact(opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrSubmission, method, err)
	}

	c.log.WithFields(logrus.Fields{
		"side":   q.Side,
		"method": method,
		"tx":     tx.Hash().Hex(),
		"nonce":  tx.Nonce(),
	}).Info("swap submitted")

	return &pendingSwap{client: c, tx: tx, quote: q}, nil
}

// swapCall builds the router method, arguments and attached value for a quote
func (c *Client) swapCall(q *types.SwapQuote, deadline time.Time) (string, []interface{}, *big.Int) {
	dl := big.NewInt(deadline.Unix())

	if q.Side == types.SideSell {
		return "swapExactTokensForETH",
			[]interface{}{new(big.Int).Set(q.AmountIn), q.MinReceive(), q.Path, c.cfg.Recipient, dl},
			nil
	}

	return "swapExactETHForTokens",
		[]interface{}{q.MinReceive(), q.Path, c.cfg.Recipient, dl},
		new(big.Int).Set(q.AmountIn)
}

func (c *Client) transactOpts(ctx context.Context, value *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.account.PrivateKey, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	opts.Context = ctx
	opts.GasPrice = new(big.Int).Set(c.cfg.GasPrice)
	opts.GasLimit = c.cfg.GasLimit
	opts.Value = value
	return opts, nil
}

// ensureAllowance approves the router for an unlimited amount of token when the current allowance is short
func (c *Client) ensureAllowance(ctx context.Context, token common.Address, amount *big.Int) error {
	contract := c.erc20(token)

	out, err := call(ctx, contract, "allowance", c.account.Address, c.cfg.Router)
	if err != nil {
		return err
	}
	allowance, ok := out[0].(*big.Int)
	if !ok {
		return fmt.Errorf("allowance: unexpected result type %T", out[0])
	}
	if allowance.Cmp(amount) >= 0 {
		return nil
	}

	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return err
	}

	tx, err := contract.Transact(opts, "approve", c.cfg.Router, math.MaxBig256)
	if err != nil {
		return fmt.Errorf("failed to approve router: %w", err)
	}
	c.log.WithFields(logrus.Fields{
		"token": token.Hex(),
		"tx":    tx.Hash().Hex(),
	}).Info("router approval submitted")

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return fmt.Errorf("failed to wait for approval %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return fmt.Errorf("approval %s reverted", tx.Hash().Hex())
	}
	return nil
}

// settle turns a mined receipt into a swap receipt carrying the realized counter amount
func (c *Client) settle(q *types.SwapQuote, receipt *ethtypes.Receipt) (*types.SwapReceipt, error) {
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: transaction %s reverted", types.ErrSubmission, receipt.TxHash.Hex())
	}

	var out *big.Int
	switch q.Side {
	case types.SideBuy:
		out = TransferredTo(receipt, c.cfg.QuoteToken, c.cfg.Recipient)
	case types.SideSell:
		out = TransferredTo(receipt, c.cfg.BaseToken, c.cfg.Router)
	default:
		return nil, fmt.Errorf("%w: unknown swap side %q", types.ErrConfirmation, q.Side)
	}
	if out.Sign() == 0 {
		return nil, fmt.Errorf("%w: no counter asset transfer found in %s", types.ErrConfirmation, receipt.TxHash.Hex())
	}

	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}

	return &types.SwapReceipt{
		Side:        q.Side,
		TxHash:      receipt.TxHash,
		AmountIn:    new(big.Int).Set(q.AmountIn),
		AmountOut:   out,
		BlockNumber: block,
		GasUsed:     receipt.GasUsed,
	}, nil
}

func (c *Client) erc20(token common.Address) *bind.BoundContract {
	return bind.NewBoundContract(token, erc20ABI, c.backend, c.backend, c.backend)
}

// pendingSwap is a submitted swap waiting to be mined
type pendingSwap struct {
	client *Client
	tx     *ethtypes.Transaction
	quote  *types.SwapQuote
}

func (p *pendingSwap) Hash() common.Hash {
	return p.tx.Hash()
}

// Wait blocks until the transaction is mined. There is no client side timeout.
func (p *pendingSwap) Wait(ctx context.Context) (*types.SwapReceipt, error) {
	receipt, err := bind.WaitMined(ctx, p.client.backend, p.tx)
	if err != nil {
		return nil, fmt.Errorf("%w: waiting for %s: %w", types.ErrConfirmation, p.tx.Hash().Hex(), err)
	}

	result, err := p.client.settle(p.quote, receipt)
	if err != nil {
		return nil, err
	}

	p.client.log.WithFields(logrus.Fields{
		"side":       result.Side,
		"tx":         result.TxHash.Hex(),
		"block":      result.BlockNumber,
		"amount_out": result.AmountOut.String(),
	}).Info("swap confirmed")

	return result, nil
}

func call(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return out, nil
}
