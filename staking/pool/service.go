// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/staking/reverts"
	"github.com/vechain/stakepool/storage"
)

var slotPool = ledger.Blake2b([]byte("staking_pool"))

// Service manages the pool record and its pool-wide total.
type Service struct {
	pool *storage.Raw[Pool]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		pool: storage.NewRaw[Pool](sctx, slotPool),
	}
}

// Get returns the pool, nil if it is not initialized.
func (s *Service) Get() (*Pool, error) {
	p, err := s.pool.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pool")
	}
	return p, nil
}

// GetExisting returns the pool, failing if it is not initialized.
func (s *Service) GetExisting() (*Pool, error) {
	p, err := s.Get()
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.Wrap(storage.ErrRecordNotFound, "staking pool")
	}
	return p, nil
}

// Create inserts the pool record, the deposit is paid by the authority.
func (s *Service) Create(authority ledger.Address, rewardRate uint64, lockPeriod int64, now int64) (*Pool, error) {
	p := &Pool{
		Authority:      authority,
		RewardRate:     rewardRate,
		LockPeriod:     lockPeriod,
		TotalStaked:    0,
		LastUpdateTime: now,
	}
	if err := s.pool.Insert(p, authority); err != nil {
		return nil, errors.Wrap(err, "failed to create pool")
	}
	return p, nil
}

// AddStake increases the pool total by amount.
func (s *Service) AddStake(p *Pool, amount uint64) error {
	total := p.TotalStaked + amount
	if total < p.TotalStaked {
		return reverts.ErrArithmeticOverflow
	}
	p.TotalStaked = total
	return s.pool.Update(p)
}

// SubStake decreases the pool total by amount.
func (s *Service) SubStake(p *Pool, amount uint64) error {
	if amount > p.TotalStaked {
		return reverts.ErrArithmeticOverflow
	}
	p.TotalStaked -= amount
	return s.pool.Update(p)
}
