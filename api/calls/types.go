// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/runtime"
)

// Request is the body of a signed call. Arguments not used by the operation are ignored.
type Request struct {
	Caller     string `json:"caller" validate:"required,address"`
	Nonce      uint64 `json:"nonce"`
	Signature  string `json:"signature" validate:"required"`
	RewardRate uint64 `json:"rewardRate,omitempty"`
	LockPeriod int64  `json:"lockPeriod,omitempty"`
	Amount     uint64 `json:"amount,omitempty"`
	To         string `json:"to,omitempty" validate:"omitempty,address"`
}

// NewRequest converts a signed call into its request body.
func NewRequest(call *runtime.Call) *Request {
	req := &Request{
		Caller:     call.Caller.String(),
		Nonce:      call.Nonce,
		Signature:  hexutil.Encode(call.Signature),
		RewardRate: call.RewardRate,
		LockPeriod: call.LockPeriod,
		Amount:     call.Amount,
	}
	if !call.To.IsZero() {
		req.To = call.To.String()
	}
	return req
}

// Call converts the request into a call of op.
func (r *Request) Call(op runtime.Op) (*runtime.Call, error) {
	caller, err := ledger.ParseAddress(r.Caller)
	if err != nil {
		return nil, errors.WithMessage(err, "caller")
	}
	sig, err := hexutil.Decode(r.Signature)
	if err != nil {
		return nil, errors.WithMessage(err, "signature")
	}
	call := &runtime.Call{
		Op:         op,
		Caller:     caller,
		Nonce:      r.Nonce,
		Signature:  sig,
		RewardRate: r.RewardRate,
		LockPeriod: r.LockPeriod,
		Amount:     r.Amount,
	}
	if r.To != "" {
		if call.To, err = ledger.ParseAddress(r.To); err != nil {
			return nil, errors.WithMessage(err, "to")
		}
	}
	return call, nil
}
