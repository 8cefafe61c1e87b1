// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/ecdsa"
	"crypto/rand"
	mathrand "math/rand/v2"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/vechain/stakepool/ledger"
)

func RandAddress() (addr ledger.Address) {
	rand.Read(addr[:])
	return
}

func RandBytes32() (b ledger.Bytes32) {
	rand.Read(b[:])
	return
}

func RandUint64N(n uint64) uint64 {
	return mathrand.Uint64N(n) //#nosec G404
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

// RandKey generates a signing key and the address it controls.
func RandKey() (*ecdsa.PrivateKey, ledger.Address) {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return key, ledger.Address(crypto.PubkeyToAddress(key.PublicKey))
}
