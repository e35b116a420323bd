package trade

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"

	"pcs-swap/pkg/types"
)

// State is a trade loop state
type State string

const (
	StateIdle     State = "idle"     // Reading balance and picking the next direction
	StateBuying   State = "buying"   // Spending base asset for quote asset
	StateSelling  State = "selling"  // Spending quote asset for base asset
	StateCooldown State = "cooldown" // Waiting out the trade interval
	StateStopped  State = "stopped"  // Terminal
)

// StopReason explains why the loop reached StateStopped
type StopReason string

const (
	StopLowBalance         StopReason = "balance at or below minimum"
	StopNothingPending     StopReason = "nothing to buy or sell"
	StopSwapFailed         StopReason = "swap failed"
	StopBalanceUnavailable StopReason = "balance unavailable"
	StopMaxSwaps           StopReason = "max swaps reached"
	StopCancelled          StopReason = "cancelled"
)

// DefaultTick is the cooldown progress interval
const DefaultTick = time.Second

// Exchange quotes and submits swaps
type Exchange interface {
	Quoter
	SubmitBuy(ctx context.Context, quote *types.SwapQuote) (types.PendingSwap, error)
	SubmitSell(ctx context.Context, quote *types.SwapQuote) (types.PendingSwap, error)
}

// Wallet reports the native balance of the trading account
type Wallet interface {
	Balance(ctx context.Context) (*big.Int, error)
}

// Outcome is the result of one swap attempt: either Swapped or Failed
type Outcome struct {
	Receipt *types.SwapReceipt
	Err     error
}

// Swapped returns a successful outcome
func Swapped(receipt *types.SwapReceipt) Outcome {
	return Outcome{Receipt: receipt}
}

// Failed returns a failed outcome
func Failed(err error) Outcome {
	return Outcome{Err: err}
}

// OK returns true if the swap completed
func (o Outcome) OK() bool {
	return o.Err == nil && o.Receipt != nil
}

// Result summarizes a finished run
type Result struct {
	Reason StopReason
	Err    error // set when the loop stopped on a failure
	Swaps  int
	State  *types.TradeState
}

// Loop alternates buys and sells until the balance falls to the configured minimum
type Loop struct {
	cfg      *types.TradeConfig
	exchange Exchange
	wallet   Wallet
	planner  *Planner
	observer Observer
	log      *logrus.Entry
	tick     time.Duration

	state  *types.TradeState
	reason StopReason
	err    error
}

// Option configures a Loop
type Option func(*Loop)

// WithObserver sets the progress observer
func WithObserver(o Observer) Option {
	return func(l *Loop) {
		l.observer = o
	}
}

// WithLogger sets the logger entry
func WithLogger(log *logrus.Entry) Option {
	return func(l *Loop) {
		l.log = log
	}
}

// WithTick sets the cooldown progress interval
func WithTick(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.tick = d
		}
	}
}

// WithState starts the loop from a given trade state instead of a pending buy of the configured amount
func WithState(s *types.TradeState) Option {
	return func(l *Loop) {
		l.state = s
	}
}

// NewLoop creates a new trade loop
func NewLoop(cfg *types.TradeConfig, exchange Exchange, wallet Wallet, opts ...Option) *Loop {
	l := &Loop{
		cfg:      cfg,
		exchange: exchange,
		wallet:   wallet,
		planner:  NewPlanner(exchange, cfg),
		observer: NopObserver{},
		log:      logrus.NewEntry(logrus.StandardLogger()),
		tick:     DefaultTick,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.state == nil {
		l.state = types.NewTradeState(cfg.Amount)
	}
	l.log = l.log.WithField("component", "trade")
	return l
}

// Run drives the state machine until it stops. The returned error is the swap or
// balance failure that stopped the loop; a normal stop or a cancelled context returns nil.
func (l *Loop) Run(ctx context.Context) (*Result, error) {
	state := StateIdle
	for state != StateStopped {
		var next State
		switch state {
		case StateIdle:
			next = l.idle(ctx)
		case StateBuying:
			next = l.swap(ctx, types.SideBuy)
		case StateSelling:
			next = l.swap(ctx, types.SideSell)
		case StateCooldown:
			next = l.cooldown(ctx)
		default:
			next = l.stop(StopSwapFailed, fmt.Errorf("unknown state %q", state))
		}
		l.enter(state, next)
		state = next
	}

	entry := l.log.WithFields(logrus.Fields{
		"reason": l.reason,
		"swaps":  l.state.Swaps,
	})
	if l.err != nil {
		entry.WithError(l.err).Error("trade loop stopped")
	} else {
		entry.Info("trade loop stopped")
	}

	return &Result{
		Reason: l.reason,
		Err:    l.err,
		Swaps:  l.state.Swaps,
		State:  l.state,
	}, l.err
}

func (l *Loop) enter(from, to State) {
	if from == to {
		return
	}
	l.log.WithFields(logrus.Fields{"from": from, "to": to}).Debug("state changed")
	l.observer.StateChanged(from, to)
}

func (l *Loop) stop(reason StopReason, err error) State {
	l.reason = reason
	l.err = err
	return StateStopped
}

// idle reads the balance and picks the next direction. Sell wins when both are pending.
func (l *Loop) idle(ctx context.Context) State {
	if next, ok := l.refreshBalance(ctx); !ok {
		return next
	}

	if l.state.Balance.Cmp(l.cfg.WalletMinBalance) <= 0 {
		l.log.WithFields(logrus.Fields{
			"balance": l.state.Balance.String(),
			"minimum": l.cfg.WalletMinBalance.String(),
		}).Info("balance at or below minimum")
		return l.stop(StopLowBalance, nil)
	}

	switch {
	case l.state.HasPendingSell():
		return StateSelling
	case l.state.HasPendingBuy():
		return StateBuying
	default:
		return l.stop(StopNothingPending, nil)
	}
}

// swap runs one swap attempt and flips the direction on success
func (l *Loop) swap(ctx context.Context, side types.Side) State {
	outcome := l.execute(ctx, side)
	if !outcome.OK() {
		if ctx.Err() != nil {
			return l.stop(StopCancelled, nil)
		}
		l.log.WithError(outcome.Err).WithField("side", side).Error("swap failed")
		l.observer.Failed(side, outcome.Err)
		return l.stop(StopSwapFailed, outcome.Err)
	}

	if err := l.state.Apply(outcome.Receipt); err != nil {
		l.log.WithError(err).WithField("side", side).Error("swap failed")
		l.observer.Failed(side, err)
		return l.stop(StopSwapFailed, err)
	}

	l.log.WithFields(logrus.Fields{
		"side":       side,
		"tx":         outcome.Receipt.TxHash.Hex(),
		"amount_in":  outcome.Receipt.AmountIn.String(),
		"amount_out": outcome.Receipt.AmountOut.String(),
		"swaps":      l.state.Swaps,
	}).Info("swap completed")
	l.observer.Confirmed(outcome.Receipt)

	return StateCooldown
}

// execute plans, submits and waits for a single swap
func (l *Loop) execute(ctx context.Context, side types.Side) Outcome {
	amount := l.state.PendingBuy
	submit := l.exchange.SubmitBuy
	if side == types.SideSell {
		amount = l.state.PendingSell
		submit = l.exchange.SubmitSell
	}

	quote, err := l.planner.Plan(ctx, side, amount)
	if err != nil {
		return Failed(types.Classify(types.ErrQuoteUnavailable, err))
	}
	l.log.WithFields(logrus.Fields{
		"side":      side,
		"amount_in": quote.AmountIn.String(),
		"limit":     quote.Limit.String(),
	}).Debug("swap planned")
	l.observer.Quoted(quote)

	pending, err := submit(ctx, quote)
	if err != nil {
		return Failed(types.Classify(types.ErrSubmission, err))
	}
	l.observer.Submitted(side, pending.Hash())

	receipt, err := pending.Wait(ctx)
	if err != nil {
		return Failed(types.Classify(types.ErrConfirmation, err))
	}
	return Swapped(receipt)
}

// cooldown re-checks the balance and waits out the trade interval one tick at a time
func (l *Loop) cooldown(ctx context.Context) State {
	if next, ok := l.refreshBalance(ctx); !ok {
		return next
	}

	if l.cfg.MaxSwaps > 0 && l.state.Swaps >= l.cfg.MaxSwaps {
		return l.stop(StopMaxSwaps, nil)
	}

	total := int(l.cfg.TradeInterval / time.Second)
	if total == 0 {
		return StateIdle
	}

	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	for elapsed := 0; elapsed < total; {
		select {
		case <-ctx.Done():
			return l.stop(StopCancelled, nil)
		case <-ticker.C:
			elapsed++
			l.observer.CooldownTick(elapsed, total)
		}
	}

	return StateIdle
}

// refreshBalance stores the current balance. On failure it returns the stopped state and false.
func (l *Loop) refreshBalance(ctx context.Context) (State, bool) {
	balance, err := l.wallet.Balance(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return l.stop(StopCancelled, nil), false
		}
		return l.stop(StopBalanceUnavailable, fmt.Errorf("failed to read balance: %w", err)), false
	}

	l.state.Balance = balance
	l.observer.Balance(balance)
	return "", true
}
