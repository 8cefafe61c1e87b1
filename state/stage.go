// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"io"

	"github.com/pkg/errors"
	"github.com/vechain/stakepool/ledger"
)

// Stage abstracts changes on the kv store.
type Stage struct {
	stater  *Stater
	order   []stateKey
	changes map[stateKey][]byte
}

// Len returns the number of changed keys.
func (s *Stage) Len() int {
	return len(s.order)
}

// Hash computes the digest of all changes, in the order keys were first touched.
func (s *Stage) Hash() ledger.Bytes32 {
	return ledger.Blake2bFn(func(w io.Writer) {
		for _, k := range s.order {
			w.Write([]byte(k.dbKey()))
			w.Write(s.changes[k])
		}
	})
}

// Commit writes all changes into the kv store in a single batch.
func (s *Stage) Commit() error {
	bulk := s.stater.db.Bulk()
	for _, k := range s.order {
		v := s.changes[k]
		key := []byte(k.dbKey())
		if len(v) == 0 {
			if err := bulk.Delete(key); err != nil {
				return errors.Wrap(err, "stage delete")
			}
		} else {
			if err := bulk.Put(key, v); err != nil {
				return errors.Wrap(err, "stage put")
			}
		}
	}
	if err := bulk.Write(); err != nil {
		// drop cached values, some might be written partially
		s.stater.cache.Purge()
		return errors.Wrap(err, "stage write")
	}
	for _, k := range s.order {
		s.stater.cache.Add(k.dbKey(), s.changes[k])
	}
	metricStageKeys().Add(int64(len(s.order)))
	return nil
}
