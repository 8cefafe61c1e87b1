// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/vechain/stakepool/ledger"
)

var (
	ErrRecordExists        = errors.New("record already exists")
	ErrRecordNotFound      = errors.New("record not found")
	ErrInsufficientDeposit = errors.New("insufficient balance for storage deposit")
	ErrDepositOverflow     = errors.New("storage deposit overflow")
)

// entry is the stored form of a record, carrying the deposit it holds.
type entry struct {
	Deposit uint64
	Data    rlp.RawValue
}

// record is a single storage position inside a namespace.
type record struct {
	context *Context
	pos     ledger.Bytes32
}

func (r record) load() (*entry, error) {
	var e *entry
	err := r.context.state.DecodeStorage(r.context.address, r.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		e = &entry{}
		return rlp.DecodeBytes(raw, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r record) store(e *entry) error {
	return r.context.state.EncodeStorage(r.context.address, r.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(e)
	})
}

func (r record) get(value any) (bool, error) {
	e, err := r.load()
	if err != nil || e == nil {
		return false, err
	}
	if err := rlp.DecodeBytes(e.Data, value); err != nil {
		return false, errors.Wrap(err, "decode record")
	}
	return true, nil
}

func (r record) exists() (bool, error) {
	e, err := r.load()
	return e != nil, err
}

// insert creates the record, moving its deposit from payer to the namespace.
func (r record) insert(value any, payer ledger.Address) error {
	e, err := r.load()
	if err != nil {
		return err
	}
	if e != nil {
		return ErrRecordExists
	}
	data, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "encode record")
	}
	deposit, ok := r.context.DepositOf(len(data))
	if !ok {
		return ErrDepositOverflow
	}
	if err := r.moveDeposit(payer, r.context.address, deposit); err != nil {
		return err
	}
	return r.store(&entry{Deposit: deposit, Data: data})
}

func (r record) update(value any) error {
	e, err := r.load()
	if err != nil {
		return err
	}
	if e == nil {
		return ErrRecordNotFound
	}
	data, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "encode record")
	}
	e.Data = data
	return r.store(e)
}

// delete destroys the record, refunding its deposit to recipient.
func (r record) delete(recipient ledger.Address) (uint64, error) {
	e, err := r.load()
	if err != nil {
		return 0, err
	}
	if e == nil {
		return 0, ErrRecordNotFound
	}
	if err := r.moveDeposit(r.context.address, recipient, e.Deposit); err != nil {
		return 0, err
	}
	r.context.state.DeleteStorage(r.context.address, r.pos)
	return e.Deposit, nil
}

func (r record) moveDeposit(from, to ledger.Address, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	st := r.context.state
	fromBal, err := st.GetBalance(from)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return errors.Wrapf(ErrInsufficientDeposit, "need %d, have %d", amount, fromBal)
	}
	toBal, err := st.GetBalance(to)
	if err != nil {
		return err
	}
	if toBal+amount < toBal {
		return ErrDepositOverflow
	}
	st.SetBalance(from, fromBal-amount)
	st.SetBalance(to, toBal+amount)
	return nil
}
