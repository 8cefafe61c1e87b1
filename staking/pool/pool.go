// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakepool/ledger"
)

// Pool is the singleton staking pool record.
type Pool struct {
	Authority      ledger.Address // the pool creator
	RewardRate     uint64         // reward units per staked unit per second
	LockPeriod     int64          // seconds a position stays locked after staking
	TotalStaked    uint64         // sum of all live position amounts
	LastUpdateTime int64          // creation time, not updated afterwards
}

// body is the stored form, signed values kept in two's complement.
type body struct {
	Authority      ledger.Address
	RewardRate     uint64
	LockPeriod     uint64
	TotalStaked    uint64
	LastUpdateTime uint64
}

// EncodeRLP implements rlp.Encoder.
func (p *Pool) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &body{
		Authority:      p.Authority,
		RewardRate:     p.RewardRate,
		LockPeriod:     uint64(p.LockPeriod),
		TotalStaked:    p.TotalStaked,
		LastUpdateTime: uint64(p.LastUpdateTime),
	})
}

// DecodeRLP implements rlp.Decoder.
func (p *Pool) DecodeRLP(s *rlp.Stream) error {
	var b body
	if err := s.Decode(&b); err != nil {
		return err
	}
	*p = Pool{
		Authority:      b.Authority,
		RewardRate:     b.RewardRate,
		LockPeriod:     int64(b.LockPeriod),
		TotalStaked:    b.TotalStaked,
		LastUpdateTime: int64(b.LastUpdateTime),
	}
	return nil
}
