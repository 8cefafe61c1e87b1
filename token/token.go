// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/state"
)

var (
	ErrUnauthorized        = errors.New("transfer not authorized by source owner")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrBalanceOverflow     = errors.New("token balance overflow")
)

// Address is the namespace holding token balances.
var Address = ledger.DeriveAddress([]byte("token"))

var totalSupplyKey = ledger.Blake2b([]byte("total-supply"))

func accountKey(addr ledger.Address) ledger.Bytes32 {
	return ledger.BytesToBytes32(append([]byte("a"), addr.Bytes()...))
}

// Kind labels the purpose of a transfer.
type Kind string

const (
	KindMint      Kind = "mint"
	KindStake     Kind = "stake"
	KindReward    Kind = "reward"
	KindPrincipal Kind = "principal"
)

// Transfer is a balance movement recorded by Token.
type Transfer struct {
	Kind      Kind
	From      ledger.Address // zero for mint
	To        ledger.Address
	Authority ledger.Address
	Amount    uint64
}

// Token is a fungible token ledger over state storage.
type Token struct {
	addr      ledger.Address
	state     *state.State
	transfers []*Transfer
}

func New(addr ledger.Address, state *state.State) *Token {
	return &Token{addr: addr, state: state}
}

func (t *Token) getUint64(key ledger.Bytes32) (v uint64, err error) {
	err = t.state.DecodeStorage(t.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	})
	return
}

func (t *Token) setUint64(key ledger.Bytes32, v uint64) error {
	if v == 0 {
		t.state.DeleteStorage(t.addr, key)
		return nil
	}
	return t.state.EncodeStorage(t.addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(v)
	})
}

// Balance returns token balance of addr.
func (t *Token) Balance(addr ledger.Address) (uint64, error) {
	return t.getUint64(accountKey(addr))
}

// TotalSupply returns the amount of tokens ever minted.
func (t *Token) TotalSupply() (uint64, error) {
	return t.getUint64(totalSupplyKey)
}

// Mint creates amount tokens to the given address.
func (t *Token) Mint(to ledger.Address, amount uint64) error {
	supply, err := t.TotalSupply()
	if err != nil {
		return err
	}
	if supply+amount < supply {
		return ErrBalanceOverflow
	}
	bal, err := t.Balance(to)
	if err != nil {
		return err
	}
	// balance can't exceed supply
	if err := t.setUint64(accountKey(to), bal+amount); err != nil {
		return err
	}
	if err := t.setUint64(totalSupplyKey, supply+amount); err != nil {
		return err
	}
	t.transfers = append(t.transfers, &Transfer{Kind: KindMint, To: to, Amount: amount})
	return nil
}

// Transfer moves amount from one owner to another. The authority must control the source,
// which for program custody is the program's derived address.
func (t *Token) Transfer(kind Kind, from, to, authority ledger.Address, amount uint64) error {
	if authority != from {
		return errors.Wrapf(ErrUnauthorized, "authority %v, owner %v", authority, from)
	}
	fromBal, err := t.Balance(from)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return errors.Wrapf(ErrInsufficientBalance, "need %d, have %d", amount, fromBal)
	}
	if from != to {
		toBal, err := t.Balance(to)
		if err != nil {
			return err
		}
		if toBal+amount < toBal {
			return ErrBalanceOverflow
		}
		if err := t.setUint64(accountKey(from), fromBal-amount); err != nil {
			return err
		}
		if err := t.setUint64(accountKey(to), toBal+amount); err != nil {
			return err
		}
	}
	t.transfers = append(t.transfers, &Transfer{
		Kind:      kind,
		From:      from,
		To:        to,
		Authority: authority,
		Amount:    amount,
	})
	return nil
}

// Transfers returns transfers made through this instance, in order.
func (t *Token) Transfers() []*Transfer {
	return t.transfers
}
