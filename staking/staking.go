// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/staking/pool"
	"github.com/vechain/stakepool/staking/position"
	"github.com/vechain/stakepool/staking/reverts"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/storage"
	"github.com/vechain/stakepool/token"
)

var (
	logger = log.WithContext("pkg", "staking")

	// Address is the namespace holding staking records and their deposits.
	Address = ledger.DeriveAddress([]byte("stakepool"))
	// PoolAddress is the pool's derived identity. It owns staked tokens and
	// authorizes transfers out of custody.
	PoolAddress = ledger.DeriveAddress([]byte("staking_pool"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// Staking implements the staking pool operations.
type Staking struct {
	token *token.Token

	poolService     *pool.Service
	positionService *position.Service
}

// New create a new instance. Record deposits follow opts.
func New(state *state.State, tk *token.Token, opts ...storage.Option) *Staking {
	sctx := storage.NewContext(Address, state, opts...)
	return &Staking{
		token:           tk,
		poolService:     pool.New(sctx),
		positionService: position.New(sctx),
	}
}

//
// Getters - no state change
//

// Pool returns the staking pool, nil if not initialized.
func (s *Staking) Pool() (*pool.Pool, error) {
	return s.poolService.Get()
}

// Position returns the position of user, nil if none.
func (s *Staking) Position(user ledger.Address) (*position.Position, error) {
	return s.positionService.Get(user)
}

// PendingRewards returns rewards claimable by user at now.
func (s *Staking) PendingRewards(user ledger.Address, now int64) (uint64, error) {
	p, err := s.poolService.GetExisting()
	if err != nil {
		return 0, err
	}
	pos, err := s.positionService.GetExisting(user)
	if err != nil {
		return 0, err
	}
	return pos.Rewards(now, p.RewardRate)
}

//
// Setters - state change
//

// InitializeStaking creates the pool. The authority pays the record deposit.
func (s *Staking) InitializeStaking(authority ledger.Address, rewardRate uint64, lockPeriod int64, now int64) error {
	logger.Debug("initializing staking pool", "authority", authority, "rewardRate", rewardRate, "lockPeriod", lockPeriod)

	if _, err := s.poolService.Create(authority, rewardRate, lockPeriod, now); err != nil {
		logger.Info("initialize staking failed", "authority", authority, "error", err)
		return err
	}

	logger.Info("initialized staking pool", "authority", authority, "rewardRate", rewardRate, "lockPeriod", lockPeriod)
	return nil
}

// Stake locks amount of user's tokens into the pool and opens the user's position.
func (s *Staking) Stake(user ledger.Address, amount uint64, now int64) error {
	logger.Debug("staking", "user", user, "amount", amount)

	if err := s.stake(user, amount, now); err != nil {
		logger.Info("stake failed", "user", user, "amount", amount, "error", err)
		return err
	}

	logger.Info("staked", "user", user, "amount", amount)
	return nil
}

func (s *Staking) stake(user ledger.Address, amount uint64, now int64) error {
	p, err := s.poolService.GetExisting()
	if err != nil {
		return err
	}
	if err := s.token.Transfer(token.KindStake, user, PoolAddress, user, amount); err != nil {
		return errors.Wrap(err, "failed to transfer stake")
	}
	if _, err := s.positionService.Open(user, amount, now); err != nil {
		return err
	}
	return s.poolService.AddStake(p, amount)
}

// Unstake pays the final rewards and returns the principal once the lock period is over.
// The position is closed and its deposit refunded to the user.
func (s *Staking) Unstake(user ledger.Address, now int64) (uint64, error) {
	logger.Debug("unstaking", "user", user)

	rewards, principal, err := s.unstake(user, now)
	if err != nil {
		logger.Info("unstake failed", "user", user, "error", err)
		return 0, err
	}

	logger.Info("unstaked", "user", user, "principal", principal, "rewards", rewards)
	return rewards, nil
}

func (s *Staking) unstake(user ledger.Address, now int64) (uint64, uint64, error) {
	p, err := s.poolService.GetExisting()
	if err != nil {
		return 0, 0, err
	}
	pos, err := s.positionService.GetExisting(user)
	if err != nil {
		return 0, 0, err
	}

	unlock, err := pos.UnlockTime(p.LockPeriod)
	if err != nil {
		return 0, 0, err
	}
	if now < unlock {
		return 0, 0, errors.Wrapf(reverts.ErrLockPeriodNotOver, "unlocks at %d", unlock)
	}

	rewards, err := pos.Rewards(now, p.RewardRate)
	if err != nil {
		return 0, 0, err
	}
	// rewards and principal are moved separately
	if err := s.token.Transfer(token.KindReward, PoolAddress, user, PoolAddress, rewards); err != nil {
		return 0, 0, errors.Wrap(err, "failed to transfer rewards")
	}
	if err := s.token.Transfer(token.KindPrincipal, PoolAddress, user, PoolAddress, pos.Amount); err != nil {
		return 0, 0, errors.Wrap(err, "failed to transfer principal")
	}
	if err := s.poolService.SubStake(p, pos.Amount); err != nil {
		return 0, 0, err
	}
	if err := s.positionService.Close(pos); err != nil {
		return 0, 0, err
	}
	return rewards, pos.Amount, nil
}

// ClaimRewards pays the rewards accrued since the last claim, keeping the position staked.
func (s *Staking) ClaimRewards(user ledger.Address, now int64) (uint64, error) {
	logger.Debug("claiming rewards", "user", user)

	rewards, err := s.claimRewards(user, now)
	if err != nil {
		logger.Info("claim rewards failed", "user", user, "error", err)
		return 0, err
	}

	logger.Info("claimed rewards", "user", user, "rewards", rewards)
	return rewards, nil
}

func (s *Staking) claimRewards(user ledger.Address, now int64) (uint64, error) {
	p, err := s.poolService.GetExisting()
	if err != nil {
		return 0, err
	}
	pos, err := s.positionService.GetExisting(user)
	if err != nil {
		return 0, err
	}

	rewards, err := pos.Rewards(now, p.RewardRate)
	if err != nil {
		return 0, err
	}
	if err := s.positionService.Claimed(pos, now); err != nil {
		return 0, err
	}
	if err := s.token.Transfer(token.KindReward, PoolAddress, user, PoolAddress, rewards); err != nil {
		return 0, errors.Wrap(err, "failed to transfer rewards")
	}
	return rewards, nil
}
