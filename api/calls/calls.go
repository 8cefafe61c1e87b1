// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/restutil"
	"github.com/vechain/stakepool/auth"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/staking/reverts"
	"github.com/vechain/stakepool/storage"
	"github.com/vechain/stakepool/token"
)

// Calls serves signed calls of a set of operations.
type Calls struct {
	rt  *runtime.Runtime
	ops []runtime.Op
}

func New(rt *runtime.Runtime, ops ...runtime.Op) *Calls {
	return &Calls{rt, ops}
}

func (c *Calls) handle(op runtime.Op) restutil.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var body Request
		if err := restutil.ParseValidJSON(req.Body, &body); err != nil {
			return err
		}
		call, err := body.Call(op)
		if err != nil {
			return restutil.BadRequest(err)
		}
		receipt, err := c.rt.Execute(req.Context(), call)
		if err != nil {
			return Classify(err)
		}
		return restutil.WriteJSON(w, receipt)
	}
}

// Classify attaches the http status of a failed call to err.
func Classify(err error) error {
	switch {
	case errors.Is(err, auth.ErrBadSignature), errors.Is(err, runtime.ErrNotTreasury):
		return restutil.Forbidden(err)
	case errors.Is(err, runtime.ErrUnknownOp):
		return restutil.BadRequest(err)
	case errors.Is(err, storage.ErrRecordNotFound):
		return restutil.NotFound(err)
	case reverts.IsRevertErr(err),
		errors.Is(err, auth.ErrBadNonce),
		errors.Is(err, storage.ErrRecordExists),
		errors.Is(err, storage.ErrInsufficientDeposit),
		errors.Is(err, storage.ErrDepositOverflow),
		errors.Is(err, token.ErrInsufficientBalance),
		errors.Is(err, token.ErrBalanceOverflow),
		errors.Is(err, token.ErrUnauthorized),
		errors.Is(err, runtime.ErrNativeOverflow):
		return restutil.Conflict(err)
	}
	return err
}

func (c *Calls) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	for _, op := range c.ops {
		sub.Path("/" + string(op)).
			Methods(http.MethodPost).
			Name("POST " + pathPrefix + "/" + string(op)).
			HandlerFunc(restutil.WrapHandlerFunc(c.handle(op)))
	}
}
