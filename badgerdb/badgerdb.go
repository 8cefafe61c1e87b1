// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package badgerdb provides a kv.Store backed by badger, an alternative to the
// default leveldb engine.
package badgerdb

import (
	"bytes"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/log"
)

var (
	_      kv.Store = (*BadgerDB)(nil)
	logger          = log.WithContext("pkg", "badgerdb")
)

// BadgerDB wraps a badger instance.
type BadgerDB struct {
	db *badger.DB
}

// New opens or creates a badger database in dir.
func New(dir string) (*BadgerDB, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(badgerLogger{}).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger db")
	}
	return &BadgerDB{db: db}, nil
}

// NewMem creates a badger database kept entirely in memory.
func NewMem() (*BadgerDB, error) {
	opts := badger.DefaultOptions("").
		WithLogger(badgerLogger{}).
		WithLoggingLevel(badger.WARNING).
		WithInMemory(true)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open in-memory badger db")
	}
	return &BadgerDB{db: db}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (b *BadgerDB) IsNotFound(err error) bool {
	return errors.Is(err, badger.ErrKeyNotFound)
}

// Get retrieve value for given key.
func (b *BadgerDB) Get(key []byte) (val []byte, err error) {
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	return
}

// Has returns whether a key exists.
func (b *BadgerDB) Has(key []byte) (bool, error) {
	_, err := b.Get(key)
	if err != nil {
		if b.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Put save value for given key.
func (b *BadgerDB) Put(key, val []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

// Delete deletes the given key.
func (b *BadgerDB) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Close closes the database.
func (b *BadgerDB) Close() error {
	return b.db.Close()
}

type op struct {
	key, val []byte
	del      bool
}

// Bulk collects ops and applies them in a single badger transaction on Write.
func (b *BadgerDB) Bulk() kv.Bulk {
	var ops []op
	return &struct {
		kv.PutFunc
		kv.DeleteFunc
		kv.LenFunc
		kv.WriteFunc
	}{
		func(key, val []byte) error {
			ops = append(ops, op{key: bytes.Clone(key), val: bytes.Clone(val)})
			return nil
		},
		func(key []byte) error {
			ops = append(ops, op{key: bytes.Clone(key), del: true})
			return nil
		},
		func() int { return len(ops) },
		func() error {
			return b.db.Update(func(txn *badger.Txn) error {
				for _, o := range ops {
					var err error
					if o.del {
						err = txn.Delete(o.key)
					} else {
						err = txn.Set(o.key, o.val)
					}
					if err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

// Iterate creates an iterator over the given range, backed by a read-only transaction
// that lives until Release.
func (b *BadgerDB) Iterate(r kv.Range) kv.Iterator {
	txn := b.db.NewTransaction(false)
	return &iterator{
		txn:  txn,
		iter: txn.NewIterator(badger.DefaultIteratorOptions),
		rng:  r,
	}
}

type iterator struct {
	txn     *badger.Txn
	iter    *badger.Iterator
	rng     kv.Range
	started bool
	err     error
}

func (i *iterator) Next() bool {
	if !i.started {
		i.iter.Seek(i.rng.Start)
		i.started = true
	} else {
		i.iter.Next()
	}
	if !i.iter.Valid() {
		return false
	}
	if len(i.rng.Limit) > 0 && bytes.Compare(i.iter.Item().Key(), i.rng.Limit) >= 0 {
		return false
	}
	return true
}

func (i *iterator) Key() []byte {
	return i.iter.Item().KeyCopy(nil)
}

func (i *iterator) Value() []byte {
	val, err := i.iter.Item().ValueCopy(nil)
	if err != nil {
		i.err = err
	}
	return val
}

func (i *iterator) Release() {
	i.iter.Close()
	i.txn.Discard()
}

func (i *iterator) Error() error {
	return i.err
}

// badgerLogger forwards badger's internal logs to the package logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	logger.Error(fmt.Sprintf(format, args...))
}

func (badgerLogger) Warningf(format string, args ...any) {
	logger.Warn(fmt.Sprintf(format, args...))
}

func (badgerLogger) Infof(format string, args ...any) {
	logger.Debug(fmt.Sprintf(format, args...))
}

func (badgerLogger) Debugf(format string, args ...any) {
	logger.Trace(fmt.Sprintf(format, args...))
}
