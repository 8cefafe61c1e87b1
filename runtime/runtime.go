// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/auth"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/staking"
	"github.com/vechain/stakepool/staking/pool"
	"github.com/vechain/stakepool/staking/position"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/storage"
	"github.com/vechain/stakepool/token"
	"github.com/vechain/stakepool/transferlog"
)

var (
	logger = log.WithContext("pkg", "runtime")

	// ErrNotTreasury is returned when a treasury operation is called by anyone else.
	ErrNotTreasury = errors.New("caller is not the treasury")
	// ErrNativeOverflow is returned when funding would overflow a native balance.
	ErrNativeOverflow = errors.New("native balance overflow")
)

// Options of the runtime.
type Options struct {
	// Treasury is the only identity allowed to mint tokens and fund native balances.
	Treasury ledger.Address
	// DepositPerSlot is the native deposit charged per storage slot of a record.
	DepositPerSlot uint64
}

// Receipt is the outcome of an executed call.
type Receipt struct {
	Op        Op                      `json:"op"`
	Caller    ledger.Address          `json:"caller"`
	Nonce     uint64                  `json:"nonce"`
	Time      int64                   `json:"time"`
	Rewards   uint64                  `json:"rewards"`
	Transfers []*transferlog.Transfer `json:"transfers"`
}

// Runtime executes calls against the ledger state one at a time.
type Runtime struct {
	mu        sync.RWMutex
	stater    *state.Stater
	clock     clock.Clock
	transfers *transferlog.TransferLog
	options   Options

	feed      event.Feed
	scope     event.SubscriptionScope
	published chan []*transferlog.Transfer
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// publishQueueSize bounds the committed batches waiting for delivery to subscribers.
const publishQueueSize = 1024

// New create a new runtime.
func New(stater *state.Stater, clk clock.Clock, transfers *transferlog.TransferLog, options Options) *Runtime {
	r := &Runtime{
		stater:    stater,
		clock:     clk,
		transfers: transfers,
		options:   options,
		published: make(chan []*transferlog.Transfer, publishQueueSize),
		done:      make(chan struct{}),
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.publishLoop()
	}()
	return r
}

// Options returns the options the runtime was created with.
func (r *Runtime) Options() Options {
	return r.options
}

// Close ends all subscriptions and stops delivery.
func (r *Runtime) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
		// unblocks a Send stuck on a subscriber
		r.scope.Close()
	})
	r.wg.Wait()
}

// publishLoop delivers committed batches in commit order, so a slow subscriber
// delays deliveries but never the calls.
func (r *Runtime) publishLoop() {
	for {
		select {
		case transfers := <-r.published:
			r.feed.Send(transfers)
		case <-r.done:
			return
		}
	}
}

// publish queues transfers for delivery. It must be called under the write lock.
func (r *Runtime) publish(op Op, transfers []*transferlog.Transfer) {
	select {
	case r.published <- transfers:
	default:
		metricDroppedBatches().Add(1)
		logger.Warn("transfer subscribers lagging, batch dropped", "op", op, "count", len(transfers))
	}
}

// SubscribeTransfers delivers the transfers of every committed call to ch, in commit order.
func (r *Runtime) SubscribeTransfers(ch chan []*transferlog.Transfer) event.Subscription {
	return r.scope.Track(r.feed.Subscribe(ch))
}

// Execute authorizes and runs the call. The caller's nonce is consumed once the
// signature checks out, even if the operation itself fails; a failed operation
// leaves every other part of the state untouched.
// The context is only checked before execution starts.
func (r *Runtime) Execute(ctx context.Context, call *Call) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	r.mu.Lock()
	receipt, err := r.execute(call)
	r.mu.Unlock()

	result := "ok"
	if err != nil {
		result = "failed"
	}
	metricOpsCount().AddWithLabel(1, map[string]string{"op": string(call.Op), "result": result})
	metricOpDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": string(call.Op)})

	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (r *Runtime) execute(call *Call) (*Receipt, error) {
	signer, err := call.signer()
	if err != nil {
		return nil, err
	}
	if signer != call.Caller {
		return nil, errors.Wrapf(auth.ErrBadSignature, "signed by %v", signer)
	}

	now := r.clock.Now()
	st := r.stater.NewState()
	if err := auth.NewNonces(st).Consume(call.Caller, call.Nonce); err != nil {
		return nil, err
	}

	checkpoint := st.NewCheckpoint()
	tk := token.New(token.Address, st)
	rewards, err := r.apply(st, tk, call, now)
	if err != nil {
		st.RevertTo(checkpoint)
		if cerr := st.Stage().Commit(); cerr != nil {
			return nil, errors.WithMessagef(err, "commit nonce: %v", cerr)
		}
		logger.Debug("call failed", "op", call.Op, "caller", call.Caller, "nonce", call.Nonce, "err", err)
		return nil, err
	}
	if err := st.Stage().Commit(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}

	receipt := &Receipt{
		Op:      call.Op,
		Caller:  call.Caller,
		Nonce:   call.Nonce,
		Time:    now,
		Rewards: rewards,
	}
	for _, t := range tk.Transfers() {
		receipt.Transfers = append(receipt.Transfers, &transferlog.Transfer{
			Time:      now,
			Op:        string(call.Op),
			Caller:    call.Caller,
			Kind:      string(t.Kind),
			From:      t.From,
			To:        t.To,
			Authority: t.Authority,
			Amount:    t.Amount,
		})
	}
	if r.transfers != nil && len(receipt.Transfers) > 0 {
		// the state is already committed, a lost log entry must not fail the call
		if err := r.transfers.Insert(receipt.Transfers); err != nil {
			logger.Error("failed to log transfers", "op", call.Op, "count", len(receipt.Transfers), "err", err)
		}
	}
	if len(receipt.Transfers) > 0 {
		r.publish(call.Op, receipt.Transfers)
	}

	switch call.Op {
	case OpStake, OpUnstake:
		if p, err := staking.New(r.stater.NewState(), nil).Pool(); err == nil && p != nil {
			metricTotalStaked().Set(clampInt64(p.TotalStaked))
		}
	}
	logger.Debug("call executed", "op", call.Op, "caller", call.Caller, "nonce", call.Nonce, "transfers", len(receipt.Transfers))
	return receipt, nil
}

func (r *Runtime) apply(st *state.State, tk *token.Token, call *Call, now int64) (rewards uint64, err error) {
	stk := staking.New(st, tk, storage.WithDepositPerSlot(r.options.DepositPerSlot))

	switch call.Op {
	case OpInitialize:
		err = stk.InitializeStaking(call.Caller, call.RewardRate, call.LockPeriod, now)
	case OpStake:
		err = stk.Stake(call.Caller, call.Amount, now)
	case OpUnstake:
		rewards, err = stk.Unstake(call.Caller, now)
	case OpClaim:
		rewards, err = stk.ClaimRewards(call.Caller, now)
	case OpMint:
		if call.Caller != r.options.Treasury {
			return 0, ErrNotTreasury
		}
		err = tk.Mint(call.To, call.Amount)
	case OpFund:
		if call.Caller != r.options.Treasury {
			return 0, ErrNotTreasury
		}
		err = fund(st, call.To, call.Amount)
	default:
		err = errors.Wrapf(ErrUnknownOp, "%q", call.Op)
	}
	return
}

func fund(st *state.State, to ledger.Address, amount uint64) error {
	balance, err := st.GetBalance(to)
	if err != nil {
		return err
	}
	if balance > math.MaxUint64-amount {
		return ErrNativeOverflow
	}
	st.SetBalance(to, balance+amount)
	return nil
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

//
// Views, each over a fresh state of the last commit
//

func (r *Runtime) view() (*state.State, *token.Token) {
	st := r.stater.NewState()
	return st, token.New(token.Address, st)
}

// Pool returns the staking pool, nil if not initialized.
func (r *Runtime) Pool() (*pool.Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, tk := r.view()
	return staking.New(st, tk).Pool()
}

// Position returns the position of user, nil if there is none.
func (r *Runtime) Position(user ledger.Address) (*position.Position, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, tk := r.view()
	return staking.New(st, tk).Position(user)
}

// Now returns the current time of the runtime clock.
func (r *Runtime) Now() int64 {
	return r.clock.Now()
}

// PendingRewards returns the rewards user could claim now.
func (r *Runtime) PendingRewards(user ledger.Address) (uint64, error) {
	return r.PendingRewardsAt(user, r.clock.Now())
}

// PendingRewardsAt returns the rewards user could claim at now.
func (r *Runtime) PendingRewardsAt(user ledger.Address, now int64) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, tk := r.view()
	return staking.New(st, tk).PendingRewards(user, now)
}

// TokenBalance returns the token balance of addr.
func (r *Runtime) TokenBalance(addr ledger.Address) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, tk := r.view()
	return tk.Balance(addr)
}

// NativeBalance returns the native balance of addr.
func (r *Runtime) NativeBalance(addr ledger.Address) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, _ := r.view()
	return st.GetBalance(addr)
}

// Nonce returns the nonce the next call of addr must carry.
func (r *Runtime) Nonce(addr ledger.Address) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, _ := r.view()
	return auth.NewNonces(st).Next(addr)
}

// Transfers queries the transfer log.
func (r *Runtime) Transfers(filter *transferlog.Filter) ([]*transferlog.Transfer, error) {
	if r.transfers == nil {
		return nil, nil
	}
	return r.transfers.Filter(filter)
}
