// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/vechain/stakepool/ledger"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a keyed record storage inside a namespace. Records are RLP encoded,
// each one holding a deposit proportional to its size.
type Mapping[K Key, V any] struct {
	context *Context
	basePos ledger.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos ledger.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) record(key K) record {
	return record{m.context, ledger.Blake2b(key.Bytes(), m.basePos.Bytes())}
}

// Get returns the record of key, nil if absent.
func (m *Mapping[K, V]) Get(key K) (*V, error) {
	value := new(V)
	found, err := m.record(key).get(value)
	if err != nil || !found {
		return nil, err
	}
	return value, nil
}

func (m *Mapping[K, V]) Exists(key K) (bool, error) {
	return m.record(key).exists()
}

// Insert creates the record of key, charging the deposit from payer.
// It fails with ErrRecordExists if the record is live.
func (m *Mapping[K, V]) Insert(key K, value *V, payer ledger.Address) error {
	return m.record(key).insert(value, payer)
}

// Update overwrites a live record, keeping its deposit.
func (m *Mapping[K, V]) Update(key K, value *V) error {
	return m.record(key).update(value)
}

// Delete destroys the record of key, refunding its deposit to recipient.
// It returns the refunded amount.
func (m *Mapping[K, V]) Delete(key K, recipient ledger.Address) (uint64, error) {
	return m.record(key).delete(recipient)
}

// Raw is a singleton record at a fixed position inside a namespace.
type Raw[V any] struct {
	record record
}

func NewRaw[V any](context *Context, pos ledger.Bytes32) *Raw[V] {
	return &Raw[V]{record{context, pos}}
}

// Get returns the record, nil if absent.
func (r *Raw[V]) Get() (*V, error) {
	value := new(V)
	found, err := r.record.get(value)
	if err != nil || !found {
		return nil, err
	}
	return value, nil
}

func (r *Raw[V]) Exists() (bool, error) {
	return r.record.exists()
}

func (r *Raw[V]) Insert(value *V, payer ledger.Address) error {
	return r.record.insert(value, payer)
}

func (r *Raw[V]) Update(value *V) error {
	return r.record.update(value)
}

func (r *Raw[V]) Delete(recipient ledger.Address) (uint64, error) {
	return r.record.delete(recipient)
}
