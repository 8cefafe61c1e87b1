// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/stackedmap"
)

const (
	spaceStorage byte = 's'
	spaceBalance byte = 'b'
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type stateKey struct {
	space byte
	addr  ledger.Address
	key   ledger.Bytes32
}

// dbKey is the key in kv store. Balance keys omit the storage key part.
func (k stateKey) dbKey() string {
	if k.space == spaceBalance {
		return string(append([]byte{k.space}, k.addr[:]...))
	}
	b := make([]byte, 0, 1+len(k.addr)+len(k.key))
	b = append(b, k.space)
	b = append(b, k.addr[:]...)
	b = append(b, k.key[:]...)
	return string(b)
}

// State manages record storage and native balances, with revisions.
type State struct {
	stater *Stater
	sm     *stackedmap.StackedMap[stateKey, []byte]
}

func newState(stater *Stater) *State {
	s := &State{stater: stater}
	s.sm = stackedmap.New(func(key stateKey) ([]byte, bool, error) {
		v, err := stater.get(key.dbKey())
		if err != nil {
			return nil, false, err
		}
		return v, len(v) > 0, nil
	})
	// the base level holds changes made outside any checkpoint
	s.sm.Push()
	return s
}

func (s *State) get(key stateKey) ([]byte, error) {
	v, _, err := s.sm.Get(key)
	if err != nil {
		return nil, &Error{err}
	}
	return v, nil
}

// GetBalance returns native balance for the given address.
func (s *State) GetBalance(addr ledger.Address) (uint64, error) {
	raw, err := s.get(stateKey{space: spaceBalance, addr: addr})
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	var bal uint64
	if err := rlp.DecodeBytes(raw, &bal); err != nil {
		return 0, &Error{err}
	}
	return bal, nil
}

// SetBalance set native balance for the given address.
func (s *State) SetBalance(addr ledger.Address, balance uint64) {
	var raw []byte
	if balance != 0 {
		raw, _ = rlp.EncodeToBytes(balance)
	}
	s.sm.Put(stateKey{space: spaceBalance, addr: addr}, raw)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
// An empty value means the key is absent.
func (s *State) GetRawStorage(addr ledger.Address, key ledger.Bytes32) (rlp.RawValue, error) {
	return s.get(stateKey{spaceStorage, addr, key})
}

// SetRawStorage set storage value in rlp raw. Empty raw deletes the key.
func (s *State) SetRawStorage(addr ledger.Address, key ledger.Bytes32, raw rlp.RawValue) {
	s.sm.Put(stateKey{spaceStorage, addr, key}, raw)
}

// DeleteStorage deletes the storage value of given address and key.
func (s *State) DeleteStorage(addr ledger.Address, key ledger.Bytes32) {
	s.SetRawStorage(addr, key, nil)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr ledger.Address, key ledger.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr ledger.Address, key ledger.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	if revision < 1 || revision > s.sm.Depth() {
		panic(fmt.Sprintf("invalid revision %d, depth %d", revision, s.sm.Depth()))
	}
	s.sm.PopTo(revision)
}

// Stage makes a stage object to commit all changes.
func (s *State) Stage() *Stage {
	changes := make(map[stateKey][]byte)
	var order []stateKey
	s.sm.Journal(func(k stateKey, v []byte) bool {
		if _, ok := changes[k]; !ok {
			order = append(order, k)
		}
		changes[k] = v
		return true
	})
	return &Stage{stater: s.stater, order: order, changes: changes}
}
