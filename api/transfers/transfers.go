// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transfers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/restutil"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/transferlog"
)

type Transfers struct {
	rt    *runtime.Runtime
	limit uint64
}

func New(rt *runtime.Runtime, limit uint64) *Transfers {
	if limit == 0 || limit > transferlog.DefaultLimit {
		limit = transferlog.DefaultLimit
	}
	return &Transfers{rt, limit}
}

func parseUint(query map[string][]string, name string) (uint64, error) {
	vals := query[name]
	if len(vals) == 0 || vals[0] == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(vals[0], 10, 64)
	if err != nil {
		return 0, restutil.BadRequest(errors.WithMessage(err, name))
	}
	return v, nil
}

func (t *Transfers) handleFilterTransfers(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()

	filter := &transferlog.Filter{Kind: query.Get("kind")}
	if v := query.Get("address"); v != "" {
		addr, err := ledger.ParseAddress(v)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "address"))
		}
		filter.Address = &addr
	}
	switch query.Get("order") {
	case "", "asc":
		filter.Order = transferlog.ASC
	case "desc":
		filter.Order = transferlog.DESC
	default:
		return restutil.BadRequest(errors.New("order: must be asc or desc"))
	}

	var err error
	if filter.Offset, err = parseUint(query, "offset"); err != nil {
		return err
	}
	if filter.Limit, err = parseUint(query, "limit"); err != nil {
		return err
	}
	if filter.Limit > t.limit {
		return restutil.Forbidden(fmt.Errorf("limit exceeds the maximum allowed value of %d", t.limit))
	}
	if filter.Limit == 0 {
		filter.Limit = t.limit
	}

	transfers, err := t.rt.Transfers(filter)
	if err != nil {
		return err
	}
	if transfers == nil {
		transfers = []*transferlog.Transfer{}
	}
	return restutil.WriteJSON(w, transfers)
}

func (t *Transfers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /transfers").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleFilterTransfers))
}
