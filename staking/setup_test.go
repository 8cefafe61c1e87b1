// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/storage"
	"github.com/vechain/stakepool/token"
)

const testDeposit = 10

type StakingTest struct {
	*Staking
	t     *testing.T
	state *state.State
	token *token.Token
	users []ledger.Address
}

func newTest(t *testing.T) *StakingTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stater, err := state.NewStater(db, 0)
	require.NoError(t, err)
	st := stater.NewState()

	tk := token.New(token.Address, st)
	return &StakingTest{
		Staking: New(st, tk, storage.WithDepositPerSlot(testDeposit)),
		t:       t,
		state:   st,
		token:   tk,
	}
}

// Fund gives addr tokens and native balance for record deposits.
func (ts *StakingTest) Fund(addr ledger.Address, tokens, native uint64) *StakingTest {
	require.NoError(ts.t, ts.token.Mint(addr, tokens))
	bal, err := ts.state.GetBalance(addr)
	require.NoError(ts.t, err)
	ts.state.SetBalance(addr, bal+native)
	ts.users = append(ts.users, addr)
	return ts
}

// Exec runs f atomically, reverting all changes if it fails.
func (ts *StakingTest) Exec(f func() error) error {
	chk := ts.state.NewCheckpoint()
	if err := f(); err != nil {
		ts.state.RevertTo(chk)
		return err
	}
	return nil
}

func (ts *StakingTest) TokenBalance(addr ledger.Address) uint64 {
	bal, err := ts.token.Balance(addr)
	require.NoError(ts.t, err)
	return bal
}

func (ts *StakingTest) NativeBalance(addr ledger.Address) uint64 {
	bal, err := ts.state.GetBalance(addr)
	require.NoError(ts.t, err)
	return bal
}

// Snapshot digests every change made so far.
func (ts *StakingTest) Snapshot() ledger.Bytes32 {
	return ts.state.Stage().Hash()
}

// AssertTotalStaked checks the pool total equals the sum of live positions.
func (ts *StakingTest) AssertTotalStaked(expected uint64) *StakingTest {
	p, err := ts.Pool()
	require.NoError(ts.t, err)
	require.NotNil(ts.t, p)

	var sum uint64
	for _, user := range ts.users {
		pos, err := ts.Position(user)
		require.NoError(ts.t, err)
		if pos != nil {
			sum += pos.Amount
		}
	}
	assert.Equal(ts.t, expected, p.TotalStaked, "pool total mismatch")
	assert.Equal(ts.t, sum, p.TotalStaked, "pool total differs from live positions")
	return ts
}
