// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"crypto/ecdsa"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/auth"
	"github.com/vechain/stakepool/ledger"
)

// ErrUnknownOp is returned for calls naming no operation.
var ErrUnknownOp = errors.New("unknown operation")

// Op names an operation.
type Op string

const (
	OpInitialize Op = "initialize"
	OpStake      Op = "stake"
	OpUnstake    Op = "unstake"
	OpClaim      Op = "claim"
	OpMint       Op = "mint"
	OpFund       Op = "fund"
)

// Ops lists all operations.
var Ops = []Op{OpInitialize, OpStake, OpUnstake, OpClaim, OpMint, OpFund}

// Call is a signed request to run an operation. Arguments not used by Op are ignored.
type Call struct {
	Op        Op
	Caller    ledger.Address
	Nonce     uint64
	Signature []byte

	RewardRate uint64         // initialize
	LockPeriod int64          // initialize
	Amount     uint64         // stake, mint, fund
	To         ledger.Address // mint, fund
}

// SigningHash returns the digest the caller signs. It covers the caller, the nonce
// and the arguments used by Op.
func (c *Call) SigningHash() (ledger.Bytes32, error) {
	op := string(c.Op)
	switch c.Op {
	case OpInitialize:
		return auth.SigningHash(op, c.Nonce, c.Caller, c.RewardRate, uint64(c.LockPeriod))
	case OpStake:
		return auth.SigningHash(op, c.Nonce, c.Caller, c.Amount)
	case OpUnstake, OpClaim:
		return auth.SigningHash(op, c.Nonce, c.Caller)
	case OpMint, OpFund:
		return auth.SigningHash(op, c.Nonce, c.Caller, c.To, c.Amount)
	default:
		return ledger.Bytes32{}, errors.Wrapf(ErrUnknownOp, "%q", c.Op)
	}
}

// Sign sets the signature of the call with key.
func (c *Call) Sign(key *ecdsa.PrivateKey) error {
	hash, err := c.SigningHash()
	if err != nil {
		return err
	}
	sig, err := auth.Sign(hash, key)
	if err != nil {
		return err
	}
	c.Signature = sig
	return nil
}

// signer recovers the address that signed the call.
func (c *Call) signer() (ledger.Address, error) {
	hash, err := c.SigningHash()
	if err != nil {
		return ledger.Address{}, err
	}
	return auth.Recover(hash, c.Signature)
}
