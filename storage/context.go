// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/state"
)

// Context binds record storage to a program namespace.
// Deposits charged for records are held by the namespace address.
type Context struct {
	address        ledger.Address
	state          *state.State
	depositPerSlot uint64
}

// Option configures a Context.
type Option func(*Context)

// WithDepositPerSlot overrides the native amount locked per 32-byte slot.
func WithDepositPerSlot(deposit uint64) Option {
	return func(c *Context) {
		c.depositPerSlot = deposit
	}
}

func NewContext(address ledger.Address, state *state.State, opts ...Option) *Context {
	c := &Context{
		address:        address,
		state:          state,
		depositPerSlot: ledger.DefaultDepositPerSlot,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Context) Address() ledger.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// DepositOf returns the deposit required to hold size bytes.
// The second return value is false on overflow.
func (c *Context) DepositOf(size int) (uint64, bool) {
	deposit, overflow := math.SafeMul(ledger.SlotsOf(size), c.depositPerSlot)
	return deposit, !overflow
}
