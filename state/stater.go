// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/pkg/errors"
	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/kv"
)

// DefaultCacheSize is the default number of committed values kept in memory.
const DefaultCacheSize = 4096

// Stater is the state creator. Committed values are read through an LRU cache.
type Stater struct {
	db    kv.Store
	cache *cache.LRU[string, []byte]
}

// NewStater create a new stater.
func NewStater(db kv.Store, cacheSize int) (*Stater, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	c, err := cache.NewLRU[string, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Stater{db: db, cache: c}, nil
}

// NewState create a new state object over the latest committed values.
func (s *Stater) NewState() *State {
	return newState(s)
}

// CacheStats returns hit and miss counts of the committed value cache.
func (s *Stater) CacheStats() (hit, miss int64) {
	return s.cache.Stats()
}

func (s *Stater) get(key string) ([]byte, error) {
	return s.cache.GetOrLoad(key, func(key string) ([]byte, error) {
		metricStateReads().AddWithLabel(1, map[string]string{"source": "db"})
		v, err := s.db.Get([]byte(key))
		if err != nil {
			if s.db.IsNotFound(err) {
				return nil, nil
			}
			return nil, errors.Wrap(err, "load")
		}
		return v, nil
	})
}
