// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/staking/pool"
	"github.com/vechain/stakepool/staking/position"
)

type Pool struct {
	Authority      ledger.Address `json:"authority"`
	RewardRate     uint64         `json:"rewardRate"`
	LockPeriod     int64          `json:"lockPeriod"`
	TotalStaked    uint64         `json:"totalStaked"`
	LastUpdateTime int64          `json:"lastUpdateTime"`
}

// ConvertPool converts the stored pool for marshaling.
func ConvertPool(p *pool.Pool) *Pool {
	return &Pool{
		Authority:      p.Authority,
		RewardRate:     p.RewardRate,
		LockPeriod:     p.LockPeriod,
		TotalStaked:    p.TotalStaked,
		LastUpdateTime: p.LastUpdateTime,
	}
}

type Position struct {
	User          ledger.Address `json:"user"`
	Amount        uint64         `json:"amount"`
	StartTime     int64          `json:"startTime"`
	LastClaimTime int64          `json:"lastClaimTime"`
	// UnlockTime is nil when it can not be represented.
	UnlockTime *int64 `json:"unlockTime"`
}

// ConvertPosition converts a stored position, resolving its unlock time.
func ConvertPosition(p *position.Position, lockPeriod int64) *Position {
	pos := &Position{
		User:          p.User,
		Amount:        p.Amount,
		StartTime:     p.StartTime,
		LastClaimTime: p.LastClaimTime,
	}
	if unlock, err := p.UnlockTime(lockPeriod); err == nil {
		pos.UnlockTime = &unlock
	}
	return pos
}

type Rewards struct {
	User    ledger.Address `json:"user"`
	Time    int64          `json:"time"`
	Pending uint64         `json:"pending"`
}
