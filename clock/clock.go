// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package clock provides the current time, in unix seconds, to staking operations.
package clock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/stakepool/log"
)

var logger = log.WithContext("pkg", "clock")

// MaxOffset is the local clock drift tolerated without a warning.
const MaxOffset = 5 * time.Second

// Clock returns the current time in unix seconds.
type Clock interface {
	Now() int64
}

// System is the local clock, optionally corrected by an offset measured via NTP.
type System struct {
	offset atomic.Int64
	query  func(host string) (*ntp.Response, error)
}

func NewSystem() *System {
	return &System{query: ntp.Query}
}

func (s *System) Now() int64 {
	return time.Now().Add(s.Offset()).Unix()
}

// Offset returns the applied correction.
func (s *System) Offset() time.Duration {
	return time.Duration(s.offset.Load())
}

// CheckOffset measures the local clock offset against the NTP server.
// The offset is applied to Now when correct is set.
func (s *System) CheckOffset(server string, correct bool) (time.Duration, error) {
	resp, err := s.query(server)
	if err != nil {
		logger.Debug("failed to access NTP", "server", server, "err", err)
		return 0, err
	}
	offset := resp.ClockOffset
	if offset > MaxOffset || offset < -MaxOffset {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(offset))
	}
	if correct {
		s.offset.Store(int64(offset))
	}
	return offset, nil
}

// Run checks the clock offset every interval until ctx is done.
func (s *System) Run(ctx context.Context, server string, interval time.Duration, correct bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.CheckOffset(server, correct)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Manual is a clock moved by hand, for tests and local development.
type Manual struct {
	mu  sync.Mutex
	now int64
}

func NewManual(now int64) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to now, backwards moves included.
func (m *Manual) Set(now int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Advance moves the clock forward by secs.
func (m *Manual) Advance(secs int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += secs
	return m.now
}
