// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/restutil"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/runtime"
)

type Accounts struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Accounts {
	return &Accounts{rt}
}

func (a *Accounts) getAccount(addr ledger.Address) (*Account, error) {
	tokens, err := a.rt.TokenBalance(addr)
	if err != nil {
		return nil, err
	}
	native, err := a.rt.NativeBalance(addr)
	if err != nil {
		return nil, err
	}
	nonce, err := a.rt.Nonce(addr)
	if err != nil {
		return nil, err
	}
	return &Account{
		Address:       addr,
		TokenBalance:  tokens,
		NativeBalance: native,
		Nonce:         nonce,
	}, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := ledger.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	acc, err := a.getAccount(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, acc)
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetAccount))
}
