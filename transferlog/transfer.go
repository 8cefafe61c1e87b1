// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transferlog

import (
	"fmt"

	"github.com/vechain/stakepool/ledger"
)

// Transfer is a committed token movement.
type Transfer struct {
	Seq       uint64         `json:"seq"`
	Time      int64          `json:"time"`
	Op        string         `json:"op"`
	Caller    ledger.Address `json:"caller"`
	Kind      string         `json:"kind"`
	From      ledger.Address `json:"from"`
	To        ledger.Address `json:"to"`
	Authority ledger.Address `json:"authority"`
	Amount    uint64         `json:"amount"`
}

func (t *Transfer) String() string {
	return fmt.Sprintf(`
		Transfer(
			seq:       %v,
			time:      %v,
			op:        %v,
			caller:    %v,
			kind:      %v,
			from:      %v,
			to:        %v,
			authority: %v,
			amount:    %v)`,
		t.Seq,
		t.Time,
		t.Op,
		t.Caller,
		t.Kind,
		t.From,
		t.To,
		t.Authority,
		t.Amount)
}

// Order is the order of results.
type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Filter selects transfers. A nil Address matches all.
type Filter struct {
	Address *ledger.Address // matches either side of a transfer
	Kind    string
	Offset  uint64
	Limit   uint64
	Order   Order
}
