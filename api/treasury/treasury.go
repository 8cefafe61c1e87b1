// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasury

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/calls"
	"github.com/vechain/stakepool/api/restutil"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/runtime"
)

type Treasury struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Treasury {
	return &Treasury{rt}
}

func (t *Treasury) handleGetTreasury(w http.ResponseWriter, _ *http.Request) error {
	addr := t.rt.Options().Treasury
	return restutil.WriteJSON(w, &struct {
		Address ledger.Address `json:"address"`
	}{addr})
}

func (t *Treasury) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /treasury").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetTreasury))

	calls.New(t.rt, runtime.OpMint, runtime.OpFund).
		Mount(root, pathPrefix)
}
