// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"time"
)

type Status struct {
	Healthy bool `json:"healthy"`
	// ClockOffset is the last measured offset of the local clock, in milliseconds.
	ClockOffset int64  `json:"clockOffset"`
	ClockSynced bool   `json:"clockSynced"`
	Storage     bool   `json:"storage"`
	StorageErr  string `json:"storageError,omitempty"`
}

// Checks lists the services the api depends on.
type Checks struct {
	// Offset reports the clock offset, nil when the clock is not synced by ntp.
	Offset    func() time.Duration
	MaxOffset time.Duration
	// Storage reads something from the state, failing if the store is broken.
	Storage func() error
}

func (c *Checks) status() *Status {
	s := &Status{
		ClockSynced: true,
		Storage:     true,
	}
	if c.Offset != nil {
		offset := c.Offset()
		s.ClockOffset = offset.Milliseconds()
		s.ClockSynced = offset <= c.MaxOffset && offset >= -c.MaxOffset
	}
	if c.Storage != nil {
		if err := c.Storage(); err != nil {
			s.Storage = false
			s.StorageErr = err.Error()
		}
	}
	s.Healthy = s.ClockSynced && s.Storage
	return s
}
