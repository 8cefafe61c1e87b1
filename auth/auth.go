// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package auth proves a caller controls an identity, by secp256k1 signatures over
// request digests with per-caller nonces for replay protection.
package auth

import (
	"crypto/ecdsa"
	"io"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/state"
)

var (
	ErrBadSignature = errors.New("bad signature")
	ErrBadNonce     = errors.New("bad nonce")
)

// Address is the namespace holding nonces.
var Address = ledger.DeriveAddress([]byte("auth"))

// SigningHash returns the digest a caller signs to authorize op.
func SigningHash(op string, nonce uint64, args ...any) (hash ledger.Bytes32, err error) {
	hash = ledger.Blake2bFn(func(w io.Writer) {
		err = rlp.Encode(w, append([]any{op, nonce}, args...))
	})
	if err != nil {
		return ledger.Bytes32{}, errors.Wrap(err, "encode signing args")
	}
	return hash, nil
}

// Sign signs hash with key, returning a 65-byte [R || S || V] signature.
func Sign(hash ledger.Bytes32, key *ecdsa.PrivateKey) ([]byte, error) {
	return crypto.Sign(hash[:], key)
}

// Recover returns the address controlled by the key that signed hash.
func Recover(hash ledger.Bytes32, sig []byte) (ledger.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return ledger.Address{}, errors.Wrapf(ErrBadSignature, "length %d", len(sig))
	}
	pub, err := crypto.SigToPub(hash[:], sig)
	if err != nil {
		return ledger.Address{}, errors.Wrap(ErrBadSignature, err.Error())
	}
	return ledger.Address(crypto.PubkeyToAddress(*pub)), nil
}

// KeyAddress returns the address controlled by key.
func KeyAddress(key *ecdsa.PrivateKey) ledger.Address {
	return ledger.Address(crypto.PubkeyToAddress(key.PublicKey))
}

// Nonces tracks the next expected nonce of every caller.
type Nonces struct {
	state *state.State
}

func NewNonces(state *state.State) *Nonces {
	return &Nonces{state}
}

func nonceKey(addr ledger.Address) ledger.Bytes32 {
	return ledger.BytesToBytes32(append([]byte("n"), addr.Bytes()...))
}

// Next returns the nonce the next request of addr must carry.
func (n *Nonces) Next(addr ledger.Address) (nonce uint64, err error) {
	err = n.state.DecodeStorage(Address, nonceKey(addr), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &nonce)
	})
	return
}

// Consume checks nonce is the next one of addr and moves past it.
func (n *Nonces) Consume(addr ledger.Address, nonce uint64) error {
	next, err := n.Next(addr)
	if err != nil {
		return err
	}
	if nonce != next {
		return errors.Wrapf(ErrBadNonce, "expected %d, got %d", next, nonce)
	}
	return n.state.EncodeStorage(Address, nonceKey(addr), func() ([]byte, error) {
		return rlp.EncodeToBytes(next + 1)
	})
}
