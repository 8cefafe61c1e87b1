// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward computes linear, time-proportional staking rewards.
package reward

import (
	"math"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/vechain/stakepool/staking/reverts"
)

// Calculate returns amount * rewardRate * (currentTime - lastClaimTime).
// Every step is checked, any overflow yields reverts.ErrArithmeticOverflow.
func Calculate(amount uint64, lastClaimTime, currentTime int64, rewardRate uint64) (uint64, error) {
	elapsed, err := Elapsed(lastClaimTime, currentTime)
	if err != nil {
		return 0, err
	}

	reward, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(amount), uint256.NewInt(rewardRate))
	if overflow || !reward.IsUint64() {
		return 0, reverts.ErrArithmeticOverflow
	}
	reward, overflow = reward.MulOverflow(reward, uint256.NewInt(elapsed))
	if overflow || !reward.IsUint64() {
		return 0, reverts.ErrArithmeticOverflow
	}
	return reward.Uint64(), nil
}

// Elapsed returns the seconds from lastClaimTime to currentTime.
// A negative span means the clock went backwards.
func Elapsed(lastClaimTime, currentTime int64) (uint64, error) {
	if (lastClaimTime < 0 && currentTime > math.MaxInt64+lastClaimTime) ||
		(lastClaimTime > 0 && currentTime < math.MinInt64+lastClaimTime) {
		return 0, reverts.ErrArithmeticOverflow
	}
	elapsed := currentTime - lastClaimTime
	if elapsed < 0 {
		return 0, errors.Wrapf(reverts.ErrArithmeticOverflow, "clock went backwards by %ds", -elapsed)
	}
	return uint64(elapsed), nil
}

// UnlockTime returns startTime + lockPeriod, checked.
func UnlockTime(startTime, lockPeriod int64) (int64, error) {
	if (lockPeriod > 0 && startTime > math.MaxInt64-lockPeriod) ||
		(lockPeriod < 0 && startTime < math.MinInt64-lockPeriod) {
		return 0, reverts.ErrArithmeticOverflow
	}
	return startTime + lockPeriod, nil
}
