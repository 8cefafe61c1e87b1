// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/test/datagen"
)

func newToken(t *testing.T) *Token {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stater, err := state.NewStater(db, 0)
	require.NoError(t, err)
	return New(Address, stater.NewState())
}

func balance(t *testing.T, tk *Token, addr ledger.Address) uint64 {
	bal, err := tk.Balance(addr)
	require.NoError(t, err)
	return bal
}

func TestMint(t *testing.T) {
	tk := newToken(t)
	a := datagen.RandAddress()

	require.NoError(t, tk.Mint(a, 100))
	require.NoError(t, tk.Mint(a, 50))
	assert.Equal(t, uint64(150), balance(t, tk, a))

	supply, err := tk.TotalSupply()
	assert.NoError(t, err)
	assert.Equal(t, uint64(150), supply)

	assert.ErrorIs(t, tk.Mint(a, math.MaxUint64), ErrBalanceOverflow)
	assert.Equal(t, uint64(150), balance(t, tk, a))

	assert.Len(t, tk.Transfers(), 2)
	assert.Equal(t, KindMint, tk.Transfers()[0].Kind)
	assert.True(t, tk.Transfers()[0].From.IsZero())
}

func TestTransfer(t *testing.T) {
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	tests := []struct {
		name      string
		from, to  ledger.Address
		authority ledger.Address
		amount    uint64
		wantErr   error
		wantAlice uint64
		wantBob   uint64
	}{
		{"ok", alice, bob, alice, 40, nil, 60, 40},
		{"zero", alice, bob, alice, 0, nil, 100, 0},
		{"self", alice, alice, alice, 100, nil, 100, 0},
		{"all", alice, bob, alice, 100, nil, 0, 100},
		{"unauthorized", alice, bob, bob, 1, ErrUnauthorized, 100, 0},
		{"insufficient", alice, bob, alice, 101, ErrInsufficientBalance, 100, 0},
		{"empty source", bob, alice, bob, 1, ErrInsufficientBalance, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := newToken(t)
			require.NoError(t, tk.Mint(alice, 100))

			err := tk.Transfer(KindStake, tt.from, tt.to, tt.authority, tt.amount)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Len(t, tk.Transfers(), 1)
			} else {
				assert.NoError(t, err)
				require.Len(t, tk.Transfers(), 2)
				assert.Equal(t, &Transfer{
					Kind:      KindStake,
					From:      tt.from,
					To:        tt.to,
					Authority: tt.authority,
					Amount:    tt.amount,
				}, tk.Transfers()[1])
			}
			assert.Equal(t, tt.wantAlice, balance(t, tk, alice))
			assert.Equal(t, tt.wantBob, balance(t, tk, bob))
		})
	}
}

func TestTransferOverflow(t *testing.T) {
	tk := newToken(t)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	// balances set directly, supply accounting is not involved
	require.NoError(t, tk.setUint64(accountKey(alice), 10))
	require.NoError(t, tk.setUint64(accountKey(bob), math.MaxUint64-5))

	assert.ErrorIs(t, tk.Transfer(KindReward, alice, bob, alice, 10), ErrBalanceOverflow)
	assert.Equal(t, uint64(10), balance(t, tk, alice))
}
