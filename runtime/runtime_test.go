// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"context"
	"crypto/ecdsa"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/auth"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/staking"
	"github.com/vechain/stakepool/staking/reverts"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/storage"
	"github.com/vechain/stakepool/test/datagen"
	"github.com/vechain/stakepool/token"
	"github.com/vechain/stakepool/transferlog"
)

type testRuntime struct {
	*Runtime
	t        *testing.T
	clock    *clock.Manual
	treasury *ecdsa.PrivateKey
}

func newTestRuntime(t *testing.T) *testRuntime {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newTestRuntimeOn(t, db)
}

func newTestRuntimeOn(t *testing.T, db kv.Store) *testRuntime {
	stater, err := state.NewStater(db, 0)
	require.NoError(t, err)

	tlog, err := transferlog.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { tlog.Close() })

	key, addr := datagen.RandKey()
	clk := clock.NewManual(1000)
	rt := New(stater, clk, tlog, Options{Treasury: addr, DepositPerSlot: 10})
	t.Cleanup(rt.Close)

	return &testRuntime{Runtime: rt, t: t, clock: clk, treasury: key}
}

// exec signs call with key using the caller's next nonce and executes it.
func (tr *testRuntime) exec(key *ecdsa.PrivateKey, call *Call) (*Receipt, error) {
	call.Caller = auth.KeyAddress(key)
	nonce, err := tr.Nonce(call.Caller)
	require.NoError(tr.t, err)
	call.Nonce = nonce
	require.NoError(tr.t, call.Sign(key))
	return tr.Execute(context.Background(), call)
}

func (tr *testRuntime) mustExec(key *ecdsa.PrivateKey, call *Call) *Receipt {
	receipt, err := tr.exec(key, call)
	require.NoError(tr.t, err)
	return receipt
}

func (tr *testRuntime) tokenBalance(addr ledger.Address) uint64 {
	bal, err := tr.TokenBalance(addr)
	require.NoError(tr.t, err)
	return bal
}

func (tr *testRuntime) nativeBalance(addr ledger.Address) uint64 {
	bal, err := tr.NativeBalance(addr)
	require.NoError(tr.t, err)
	return bal
}

func (tr *testRuntime) nonce(addr ledger.Address) uint64 {
	n, err := tr.Nonce(addr)
	require.NoError(tr.t, err)
	return n
}

// setup funds an authority and a user and initializes the pool.
func (tr *testRuntime) setup(rate uint64, lock int64, userTokens uint64) (authority, user *ecdsa.PrivateKey) {
	authority, authorityAddr := datagen.RandKey()
	user, userAddr := datagen.RandKey()

	tr.mustExec(tr.treasury, &Call{Op: OpFund, To: authorityAddr, Amount: 100})
	tr.mustExec(tr.treasury, &Call{Op: OpFund, To: userAddr, Amount: 100})
	tr.mustExec(tr.treasury, &Call{Op: OpMint, To: userAddr, Amount: userTokens})
	tr.mustExec(tr.treasury, &Call{Op: OpMint, To: staking.PoolAddress, Amount: 1_000_000})
	tr.mustExec(authority, &Call{Op: OpInitialize, RewardRate: rate, LockPeriod: lock})
	return
}

func TestExecuteClaimThenUnstake(t *testing.T) {
	tr := newTestRuntime(t)
	_, user := tr.setup(1, 100, 1000)
	userAddr := auth.KeyAddress(user)

	receipt := tr.mustExec(user, &Call{Op: OpStake, Amount: 1000})
	assert.Equal(t, int64(1000), receipt.Time)
	require.Len(t, receipt.Transfers, 1)
	assert.Equal(t, string(token.KindStake), receipt.Transfers[0].Kind)
	assert.Equal(t, staking.PoolAddress, receipt.Transfers[0].To)

	p, err := tr.Pool()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), p.TotalStaked)

	tr.clock.Advance(50)
	pending, err := tr.PendingRewards(userAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(50_000), pending)

	receipt = tr.mustExec(user, &Call{Op: OpClaim})
	assert.Equal(t, uint64(50_000), receipt.Rewards)
	assert.Equal(t, uint64(50_000), tr.tokenBalance(userAddr))

	tr.clock.Advance(50)
	receipt = tr.mustExec(user, &Call{Op: OpUnstake})
	assert.Equal(t, uint64(50_000), receipt.Rewards)
	require.Len(t, receipt.Transfers, 2)
	assert.Equal(t, string(token.KindReward), receipt.Transfers[0].Kind)
	assert.Equal(t, string(token.KindPrincipal), receipt.Transfers[1].Kind)

	assert.Equal(t, uint64(101_000), tr.tokenBalance(userAddr))
	assert.Equal(t, uint64(100), tr.nativeBalance(userAddr))

	pos, err := tr.Position(userAddr)
	require.NoError(t, err)
	assert.Nil(t, pos)

	p, err = tr.Pool()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), p.TotalStaked)

	logged, err := tr.Transfers(&transferlog.Filter{Address: &userAddr, Order: transferlog.ASC})
	require.NoError(t, err)
	kinds := make([]string, 0, len(logged))
	for _, l := range logged {
		kinds = append(kinds, l.Kind)
	}
	assert.Equal(t, []string{"mint", "stake", "reward", "reward", "principal"}, kinds)
}

func TestExecuteFailedCallKeepsState(t *testing.T) {
	tr := newTestRuntime(t)
	_, user := tr.setup(1, 100, 1000)
	userAddr := auth.KeyAddress(user)

	tr.mustExec(user, &Call{Op: OpStake, Amount: 1000})
	tr.clock.Advance(99)

	tokens, native := tr.tokenBalance(userAddr), tr.nativeBalance(userAddr)
	posBefore, err := tr.Position(userAddr)
	require.NoError(t, err)
	nonce := tr.nonce(userAddr)

	_, err = tr.exec(user, &Call{Op: OpUnstake})
	assert.ErrorIs(t, err, reverts.ErrLockPeriodNotOver)

	assert.Equal(t, tokens, tr.tokenBalance(userAddr))
	assert.Equal(t, native, tr.nativeBalance(userAddr))
	posAfter, err := tr.Position(userAddr)
	require.NoError(t, err)
	assert.Equal(t, posBefore, posAfter)
	// the nonce is spent anyway
	assert.Equal(t, nonce+1, tr.nonce(userAddr))

	tr.clock.Advance(1)
	receipt := tr.mustExec(user, &Call{Op: OpUnstake})
	assert.Equal(t, uint64(100_000), receipt.Rewards)
}

func TestExecuteBadNonce(t *testing.T) {
	tr := newTestRuntime(t)
	addr := auth.KeyAddress(tr.treasury)
	to := datagen.RandAddress()

	call := &Call{Op: OpMint, Caller: addr, Nonce: 1, To: to, Amount: 10}
	require.NoError(t, call.Sign(tr.treasury))
	_, err := tr.Execute(context.Background(), call)
	assert.ErrorIs(t, err, auth.ErrBadNonce)
	assert.Equal(t, uint64(0), tr.nonce(addr))
	assert.Equal(t, uint64(0), tr.tokenBalance(to))

	// replay of an executed call
	call = &Call{Op: OpMint, Caller: addr, Nonce: 0, To: to, Amount: 10}
	require.NoError(t, call.Sign(tr.treasury))
	_, err = tr.Execute(context.Background(), call)
	require.NoError(t, err)
	_, err = tr.Execute(context.Background(), call)
	assert.ErrorIs(t, err, auth.ErrBadNonce)
	assert.Equal(t, uint64(10), tr.tokenBalance(to))
}

func TestExecuteBadSignature(t *testing.T) {
	tr := newTestRuntime(t)
	addr := auth.KeyAddress(tr.treasury)
	other, _ := datagen.RandKey()

	call := &Call{Op: OpMint, Caller: addr, To: datagen.RandAddress(), Amount: 10}
	require.NoError(t, call.Sign(other))
	_, err := tr.Execute(context.Background(), call)
	assert.ErrorIs(t, err, auth.ErrBadSignature)

	call.Signature = []byte{1, 2, 3}
	_, err = tr.Execute(context.Background(), call)
	assert.ErrorIs(t, err, auth.ErrBadSignature)

	// arguments are covered by the signature
	require.NoError(t, call.Sign(tr.treasury))
	call.Amount = 1_000
	_, err = tr.Execute(context.Background(), call)
	assert.ErrorIs(t, err, auth.ErrBadSignature)

	assert.Equal(t, uint64(0), tr.nonce(addr))
}

func TestExecuteTreasuryOnly(t *testing.T) {
	tr := newTestRuntime(t)
	key, addr := datagen.RandKey()

	_, err := tr.exec(key, &Call{Op: OpMint, To: addr, Amount: 10})
	assert.ErrorIs(t, err, ErrNotTreasury)
	_, err = tr.exec(key, &Call{Op: OpFund, To: addr, Amount: 10})
	assert.ErrorIs(t, err, ErrNotTreasury)

	assert.Equal(t, uint64(0), tr.tokenBalance(addr))
	assert.Equal(t, uint64(0), tr.nativeBalance(addr))
	assert.Equal(t, uint64(2), tr.nonce(addr))
}

func TestExecuteFundOverflow(t *testing.T) {
	tr := newTestRuntime(t)
	to := datagen.RandAddress()

	tr.mustExec(tr.treasury, &Call{Op: OpFund, To: to, Amount: ^uint64(0)})
	_, err := tr.exec(tr.treasury, &Call{Op: OpFund, To: to, Amount: 1})
	assert.ErrorIs(t, err, ErrNativeOverflow)
	assert.Equal(t, ^uint64(0), tr.nativeBalance(to))
}

func TestExecuteUnknownOp(t *testing.T) {
	tr := newTestRuntime(t)

	call := &Call{Op: "burn"}
	assert.ErrorIs(t, call.Sign(tr.treasury), ErrUnknownOp)

	_, err := tr.Execute(context.Background(), &Call{Op: "burn", Caller: auth.KeyAddress(tr.treasury)})
	assert.ErrorIs(t, err, ErrUnknownOp)
}

func TestExecuteCanceled(t *testing.T) {
	tr := newTestRuntime(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	call := &Call{Op: OpMint, Caller: auth.KeyAddress(tr.treasury), To: datagen.RandAddress(), Amount: 1}
	require.NoError(t, call.Sign(tr.treasury))
	_, err := tr.Execute(ctx, call)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(0), tr.nonce(call.Caller))
}

func TestSubscribeTransfers(t *testing.T) {
	tr := newTestRuntime(t)

	ch := make(chan []*transferlog.Transfer, 4)
	sub := tr.SubscribeTransfers(ch)
	defer sub.Unsubscribe()

	to := datagen.RandAddress()
	tr.mustExec(tr.treasury, &Call{Op: OpMint, To: to, Amount: 42})
	// funding moves no tokens
	tr.mustExec(tr.treasury, &Call{Op: OpFund, To: to, Amount: 42})
	tr.mustExec(tr.treasury, &Call{Op: OpMint, To: to, Amount: 7})

	for _, amount := range []uint64{42, 7} {
		select {
		case transfers := <-ch:
			require.Len(t, transfers, 1)
			assert.Equal(t, "mint", transfers[0].Kind)
			assert.Equal(t, "mint", transfers[0].Op)
			assert.Equal(t, to, transfers[0].To)
			assert.Equal(t, amount, transfers[0].Amount)
			assert.NotZero(t, transfers[0].Seq)
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for transfers")
		}
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	tr := newTestRuntime(t)

	ch := make(chan []*transferlog.Transfer)
	sub := tr.SubscribeTransfers(ch)
	tr.Close()

	select {
	case _, ok := <-sub.Err():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}

func TestExecuteNotBlockedBySubscriber(t *testing.T) {
	tr := newTestRuntime(t)

	// never drained
	stalled := make(chan []*transferlog.Transfer)
	sub := tr.SubscribeTransfers(stalled)
	defer sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 3 {
			_, err := tr.exec(tr.treasury, &Call{Op: OpMint, To: datagen.RandAddress(), Amount: uint64(i + 1)})
			assert.NoError(t, err)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("execute blocked by a subscriber")
	}

	// delivery resumes in order once the subscriber reads
	for _, amount := range []uint64{1, 2, 3} {
		select {
		case transfers := <-stalled:
			require.Len(t, transfers, 1)
			assert.Equal(t, amount, transfers[0].Amount)
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for transfers")
		}
	}
}

func TestCloseWithStalledSubscriber(t *testing.T) {
	tr := newTestRuntime(t)

	stalled := make(chan []*transferlog.Transfer)
	tr.SubscribeTransfers(stalled)
	tr.mustExec(tr.treasury, &Call{Op: OpMint, To: datagen.RandAddress(), Amount: 1})

	closed := make(chan struct{})
	go func() {
		tr.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("close blocked by a subscriber")
	}
}

func TestSubscribeTransfersCommitOrder(t *testing.T) {
	tr := newTestRuntime(t)

	const workers, perWorker = 8, 5
	ch := make(chan []*transferlog.Transfer, workers*perWorker)
	sub := tr.SubscribeTransfers(ch)
	defer sub.Unsubscribe()

	treasury := auth.KeyAddress(tr.treasury)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sent := 0; sent < perWorker; {
				nonce, err := tr.Nonce(treasury)
				if !assert.NoError(t, err) {
					return
				}
				call := &Call{Op: OpMint, Caller: treasury, Nonce: nonce, To: datagen.RandAddress(), Amount: 1}
				if !assert.NoError(t, call.Sign(tr.treasury)) {
					return
				}
				// racing workers lose the nonce, which costs nothing
				if _, err := tr.Execute(context.Background(), call); errors.Is(err, auth.ErrBadNonce) {
					continue
				} else if !assert.NoError(t, err) {
					return
				}
				sent++
			}
		}()
	}
	wg.Wait()

	var last uint64
	for range workers * perWorker {
		select {
		case transfers := <-ch:
			require.Len(t, transfers, 1)
			assert.Greater(t, transfers[0].Seq, last)
			last = transfers[0].Seq
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for transfers")
		}
	}
}

// failingStore fails every bulk write once fail is set.
type failingStore struct {
	kv.Store
	fail atomic.Bool
}

func (s *failingStore) Bulk() kv.Bulk {
	bulk := s.Store.Bulk()
	if !s.fail.Load() {
		return bulk
	}
	return &struct {
		kv.PutFunc
		kv.DeleteFunc
		kv.LenFunc
		kv.WriteFunc
	}{
		bulk.Put,
		bulk.Delete,
		bulk.Len,
		func() error { return errors.New("disk full") },
	}
}

func TestExecuteFailedCommitKeepsCause(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	store := &failingStore{Store: db}
	tr := newTestRuntimeOn(t, store)
	store.fail.Store(true)

	_, err = tr.exec(tr.treasury, &Call{Op: OpClaim})
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
	assert.ErrorContains(t, err, "disk full")
}
