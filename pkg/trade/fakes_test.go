package trade

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"pcs-swap/pkg/types"
)

var (
	wbnb   = common.HexToAddress("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c")
	cake   = common.HexToAddress("0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82")
	router = common.HexToAddress("0x10ED43C718714eb63d5aA57B78B54704E256024E")
	me     = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

func testConfig(slippage int64) *types.TradeConfig {
	return &types.TradeConfig{
		BaseToken:        wbnb,
		QuoteToken:       cake,
		Router:           router,
		Recipient:        me,
		Amount:           big.NewInt(1),
		Slippage:         slippage,
		GasPrice:         big.NewInt(5e9),
		GasLimit:         300000,
		WalletMinBalance: big.NewInt(1),
	}
}

// fakeExchange quotes from fixed arrays and settles every swap with a fixed output per side
type fakeExchange struct {
	amountsOut []*big.Int
	amountsIn  []*big.Int
	quoteErr   error
	submitErr  error
	waitErr    error

	buyOut  *big.Int
	sellOut *big.Int

	outCalls int
	inCalls  int
	paths    [][]common.Address
	buys     []*types.SwapQuote
	sells    []*types.SwapQuote
}

func (f *fakeExchange) GetAmountsOut(_ context.Context, _ *big.Int, path []common.Address) ([]*big.Int, error) {
	f.outCalls++
	f.paths = append(f.paths, path)
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return f.amountsOut, nil
}

func (f *fakeExchange) GetAmountsIn(_ context.Context, _ *big.Int, path []common.Address) ([]*big.Int, error) {
	f.inCalls++
	f.paths = append(f.paths, path)
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return f.amountsIn, nil
}

func (f *fakeExchange) SubmitBuy(_ context.Context, q *types.SwapQuote) (types.PendingSwap, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.buys = append(f.buys, q)
	return f.pending(q, f.buyOut), nil
}

func (f *fakeExchange) SubmitSell(_ context.Context, q *types.SwapQuote) (types.PendingSwap, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.sells = append(f.sells, q)
	return f.pending(q, f.sellOut), nil
}

func (f *fakeExchange) pending(q *types.SwapQuote, out *big.Int) *fakePending {
	n := len(f.buys) + len(f.sells)
	hash := common.BigToHash(big.NewInt(int64(n)))
	p := &fakePending{hash: hash, err: f.waitErr}
	if out != nil {
		p.receipt = &types.SwapReceipt{
			Side:        q.Side,
			TxHash:      hash,
			AmountIn:    new(big.Int).Set(q.AmountIn),
			AmountOut:   new(big.Int).Set(out),
			BlockNumber: uint64(100 + n),
		}
	}
	return p
}

type fakePending struct {
	hash    common.Hash
	receipt *types.SwapReceipt
	err     error
}

func (p *fakePending) Hash() common.Hash {
	return p.hash
}

func (p *fakePending) Wait(context.Context) (*types.SwapReceipt, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.receipt, nil
}

// fakeWallet returns balances in order and repeats the last one
type fakeWallet struct {
	balances []*big.Int
	err      error
	calls    int
}

func (w *fakeWallet) Balance(context.Context) (*big.Int, error) {
	if w.err != nil {
		return nil, w.err
	}
	i := w.calls
	if i >= len(w.balances) {
		i = len(w.balances) - 1
	}
	w.calls++
	return new(big.Int).Set(w.balances[i]), nil
}

func balances(vs ...int64) *fakeWallet {
	w := &fakeWallet{}
	for _, v := range vs {
		w.balances = append(w.balances, big.NewInt(v))
	}
	return w
}

// recorder captures observer events
type recorder struct {
	NopObserver

	transitions [][2]State
	quotes      []*types.SwapQuote
	confirmed   []*types.SwapReceipt
	failed      []error
	ticks       []int

	// checked on every confirmation when set
	state        *types.TradeState
	inconsistent int

	onConfirmed func()
}

func (r *recorder) StateChanged(from, to State) {
	r.transitions = append(r.transitions, [2]State{from, to})
}

func (r *recorder) Quoted(q *types.SwapQuote) {
	r.quotes = append(r.quotes, q)
}

func (r *recorder) Confirmed(receipt *types.SwapReceipt) {
	r.confirmed = append(r.confirmed, receipt)
	if r.state != nil && !r.state.Consistent() {
		r.inconsistent++
	}
	if r.onConfirmed != nil {
		r.onConfirmed()
	}
}

func (r *recorder) Failed(_ types.Side, err error) {
	r.failed = append(r.failed, err)
}

func (r *recorder) CooldownTick(elapsed, _ int) {
	r.ticks = append(r.ticks, elapsed)
}

func (r *recorder) visited() []State {
	var states []State
	for _, t := range r.transitions {
		states = append(states, t[1])
	}
	return states
}
