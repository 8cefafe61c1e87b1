// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vechain/stakepool/staking/reverts"
	"github.com/vechain/stakepool/test/datagen"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		amount    uint64
		lastClaim int64
		now       int64
		rate      uint64
		want      uint64
		wantErr   error
	}{
		{"half period", 1000, 0, 50, 1, 50_000, nil},
		{"full period", 1000, 50, 100, 1, 50_000, nil},
		{"no time", 1000, 100, 100, 5, 0, nil},
		{"zero amount", 0, 0, 1_000_000, 7, 0, nil},
		{"zero rate", 1000, 0, 1_000_000, 0, 0, nil},
		{"negative times", 10, -20, -10, 3, 300, nil},
		{"max fits", math.MaxUint64, 0, 1, 1, math.MaxUint64, nil},
		{"rate overflow", math.MaxUint64, 0, 1, 2, 0, reverts.ErrArithmeticOverflow},
		{"time overflow", math.MaxUint64 / 2, 0, 3, 1, 0, reverts.ErrArithmeticOverflow},
		{"clock went backwards", 1000, 100, 99, 1, 0, reverts.ErrArithmeticOverflow},
		{"elapsed overflow", 1, math.MinInt64, math.MaxInt64, 1, 0, reverts.ErrArithmeticOverflow},
		{"elapsed underflow", 1, math.MaxInt64, math.MinInt64, 1, 0, reverts.ErrArithmeticOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(tt.amount, tt.lastClaim, tt.now, tt.rate)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, reverts.IsRevertErr(err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateMatchesProduct(t *testing.T) {
	maxU64 := new(big.Int).SetUint64(math.MaxUint64)
	for range 1000 {
		amount := datagen.RandUint64N(1 << 40)
		rate := datagen.RandUint64N(1 << 16)
		t0 := int64(datagen.RandUint64N(1 << 32))
		t1 := t0 + int64(datagen.RandUint64N(1<<20))

		want := new(big.Int).SetUint64(amount)
		want.Mul(want, new(big.Int).SetUint64(rate))
		want.Mul(want, big.NewInt(t1-t0))

		got, err := Calculate(amount, t0, t1, rate)
		if want.Cmp(maxU64) > 0 {
			assert.ErrorIs(t, err, reverts.ErrArithmeticOverflow)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, want.Uint64(), got)
	}
}

func TestUnlockTime(t *testing.T) {
	tests := []struct {
		start, lock int64
		want        int64
		overflow    bool
	}{
		{0, 100, 100, false},
		{50, 0, 50, false},
		{100, -10, 90, false},
		{math.MaxInt64, 1, 0, true},
		{math.MaxInt64 - 1, 1, math.MaxInt64, false},
		{math.MinInt64, -1, 0, true},
	}
	for _, tt := range tests {
		got, err := UnlockTime(tt.start, tt.lock)
		if tt.overflow {
			assert.ErrorIs(t, err, reverts.ErrArithmeticOverflow)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
