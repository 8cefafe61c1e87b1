// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/storage"
)

var slotPositions = ledger.Blake2b([]byte("staking_info"))

// Service manages per-user positions, keyed by user address.
type Service struct {
	positions *storage.Mapping[ledger.Address, Position]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		positions: storage.NewMapping[ledger.Address, Position](sctx, slotPositions),
	}
}

// Get returns the position of user, nil if none.
func (s *Service) Get(user ledger.Address) (*Position, error) {
	p, err := s.positions.Get(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get position")
	}
	return p, nil
}

// GetExisting returns the position of user, failing if none.
func (s *Service) GetExisting(user ledger.Address) (*Position, error) {
	p, err := s.Get(user)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.Wrapf(storage.ErrRecordNotFound, "staking position of %v", user)
	}
	return p, nil
}

// Open creates the position of user, the deposit is paid by the user.
// Only one position per user can be live.
func (s *Service) Open(user ledger.Address, amount uint64, now int64) (*Position, error) {
	p := &Position{
		User:          user,
		Amount:        amount,
		StartTime:     now,
		LastClaimTime: now,
	}
	if err := s.positions.Insert(user, p, user); err != nil {
		return nil, errors.Wrap(err, "failed to open position")
	}
	return p, nil
}

// Claimed moves the claim time of the position forward to now.
func (s *Service) Claimed(p *Position, now int64) error {
	p.LastClaimTime = now
	return s.positions.Update(p.User, p)
}

// Close destroys the position, refunding its deposit to the user.
func (s *Service) Close(p *Position) error {
	if _, err := s.positions.Delete(p.User, p.User); err != nil {
		return errors.Wrap(err, "failed to close position")
	}
	return nil
}
