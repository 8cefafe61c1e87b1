// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/staking/reward"
)

// Position is the stake of a single user. It exists only while the user has tokens staked.
type Position struct {
	User          ledger.Address
	Amount        uint64
	StartTime     int64 // gates unlock
	LastClaimTime int64 // rewards accrue from here
}

type body struct {
	User          ledger.Address
	Amount        uint64
	StartTime     uint64
	LastClaimTime uint64
}

// EncodeRLP implements rlp.Encoder.
func (p *Position) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &body{
		User:          p.User,
		Amount:        p.Amount,
		StartTime:     uint64(p.StartTime),
		LastClaimTime: uint64(p.LastClaimTime),
	})
}

// DecodeRLP implements rlp.Decoder.
func (p *Position) DecodeRLP(s *rlp.Stream) error {
	var b body
	if err := s.Decode(&b); err != nil {
		return err
	}
	*p = Position{
		User:          b.User,
		Amount:        b.Amount,
		StartTime:     int64(b.StartTime),
		LastClaimTime: int64(b.LastClaimTime),
	}
	return nil
}

// UnlockTime returns the earliest time the position can be unstaked.
func (p *Position) UnlockTime(lockPeriod int64) (int64, error) {
	return reward.UnlockTime(p.StartTime, lockPeriod)
}

// Rewards returns the rewards accrued since the last claim.
func (p *Position) Rewards(now int64, rewardRate uint64) (uint64, error) {
	return reward.Calculate(p.Amount, p.LastClaimTime, now, rewardRate)
}
