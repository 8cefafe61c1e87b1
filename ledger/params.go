// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

// Storage deposit parameters. Every persistent record holds a deposit
// proportional to its encoded size, refunded when the record is destroyed.
const (
	SlotSize = 32

	// DefaultDepositPerSlot is the native amount locked per started 32-byte slot.
	DefaultDepositPerSlot uint64 = 1_000
)

// SlotsOf returns the number of 32-byte slots needed to hold size bytes.
func SlotsOf(size int) uint64 {
	return (uint64(size) + SlotSize - 1) / SlotSize
}
