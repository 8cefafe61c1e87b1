// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/stakepool/ledger"
)

type TestFunc func(t *testing.T)

type TestSequence struct {
	ts *StakingTest

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(ts *StakingTest) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), ts: ts}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) Initialize(authority ledger.Address, rate uint64, lock int64, now int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.ts.Exec(func() error { return st.ts.InitializeStaking(authority, rate, lock, now) }); err != nil {
			t.Fatalf("failed to initialize staking: %v", err)
		}
		t.Logf("initialized pool rate=%d lock=%d", rate, lock)
	})
}

func (st *TestSequence) Stake(user ledger.Address, amount uint64, now int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.ts.Exec(func() error { return st.ts.Staking.Stake(user, amount, now) }); err != nil {
			t.Fatalf("failed to stake for %s: %v", user, err)
		}
		t.Logf("staked %d for %s", amount, user)
	})
}

func (st *TestSequence) Claim(user ledger.Address, now int64, expected uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		var rewards uint64
		err := st.ts.Exec(func() (err error) {
			rewards, err = st.ts.ClaimRewards(user, now)
			return
		})
		if err != nil {
			t.Fatalf("failed to claim for %s: %v", user, err)
		}
		assert.Equal(t, expected, rewards, "claimed rewards mismatch")
	})
}

func (st *TestSequence) Unstake(user ledger.Address, now int64, expectedRewards uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		var rewards uint64
		err := st.ts.Exec(func() (err error) {
			rewards, err = st.ts.Staking.Unstake(user, now)
			return
		})
		if err != nil {
			t.Fatalf("failed to unstake for %s: %v", user, err)
		}
		assert.Equal(t, expectedRewards, rewards, "unstake rewards mismatch")
	})
}

// Fails runs op and expects it to fail with target, leaving no change behind.
func (st *TestSequence) Fails(op func() error, target error) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		before := st.ts.Snapshot()
		err := st.ts.Exec(op)
		assert.ErrorIs(t, err, target)
		assert.Equal(t, before, st.ts.Snapshot(), "failed op changed state")
	})
}

func (st *TestSequence) AssertTotalStaked(expected uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.ts.AssertTotalStaked(expected)
	})
}

func (st *TestSequence) AssertTokenBalance(addr ledger.Address, expected uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		assert.Equal(t, expected, st.ts.TokenBalance(addr), "token balance mismatch for %s", addr)
	})
}

func (st *TestSequence) AssertNativeBalance(addr ledger.Address, expected uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		assert.Equal(t, expected, st.ts.NativeBalance(addr), "native balance mismatch for %s", addr)
	})
}

func (st *TestSequence) AssertPosition(user ledger.Address, exists bool) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		pos, err := st.ts.Position(user)
		assert.NoError(t, err)
		assert.Equal(t, exists, pos != nil, "position existence mismatch for %s", user)
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}
}
