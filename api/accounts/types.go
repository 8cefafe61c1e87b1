// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import "github.com/vechain/stakepool/ledger"

// Account for marshal account
type Account struct {
	Address       ledger.Address `json:"address"`
	TokenBalance  uint64         `json:"tokenBalance"`
	NativeBalance uint64         `json:"nativeBalance"`
	// Nonce is the nonce the next call of the account must carry.
	Nonce uint64 `json:"nonce"`
}
