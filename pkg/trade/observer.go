package trade

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"pcs-swap/pkg/types"
)

// Observer receives progress events from the trade loop.
// All methods are called from the loop goroutine.
type Observer interface {
	StateChanged(from, to State)
	Balance(balance *big.Int)
	Quoted(quote *types.SwapQuote)
	Submitted(side types.Side, hash common.Hash)
	Confirmed(receipt *types.SwapReceipt)
	Failed(side types.Side, err error)
	// CooldownTick is called once per elapsed second of the trade interval
	CooldownTick(elapsed, total int)
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) StateChanged(State, State) {}
func (NopObserver) Balance(*big.Int) {}
func (NopObserver) Quoted(*types.SwapQuote) {}
func (NopObserver) Submitted(types.Side, common.Hash) {}
func (NopObserver) Confirmed(*types.SwapReceipt) {}
func (NopObserver) Failed(types.Side, error) {}
func (NopObserver) CooldownTick(int, int) {}
