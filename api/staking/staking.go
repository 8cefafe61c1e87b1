// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/calls"
	"github.com/vechain/stakepool/api/restutil"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/runtime"
)

var errNoPool = errors.New("staking pool not initialized")

type Staking struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Staking {
	return &Staking{rt}
}

func (s *Staking) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	p, err := s.rt.Pool()
	if err != nil {
		return err
	}
	if p == nil {
		return restutil.NotFound(errNoPool)
	}
	return restutil.WriteJSON(w, ConvertPool(p))
}

func (s *Staking) handleGetPosition(w http.ResponseWriter, req *http.Request) error {
	user, err := ledger.ParseAddress(mux.Vars(req)["user"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "user"))
	}
	p, err := s.rt.Pool()
	if err != nil {
		return err
	}
	if p == nil {
		return restutil.NotFound(errNoPool)
	}
	pos, err := s.rt.Position(user)
	if err != nil {
		return err
	}
	if pos == nil {
		return restutil.NotFound(errors.New("position not found"))
	}
	return restutil.WriteJSON(w, ConvertPosition(pos, p.LockPeriod))
}

func (s *Staking) handleGetRewards(w http.ResponseWriter, req *http.Request) error {
	user, err := ledger.ParseAddress(mux.Vars(req)["user"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "user"))
	}
	now := s.rt.Now()
	pending, err := s.rt.PendingRewardsAt(user, now)
	if err != nil {
		return calls.Classify(err)
	}
	return restutil.WriteJSON(w, &Rewards{
		User:    user,
		Time:    now,
		Pending: pending,
	})
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/pool").
		Methods(http.MethodGet).
		Name("GET /staking/pool").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetPool))
	sub.Path("/positions/{user}").
		Methods(http.MethodGet).
		Name("GET /staking/positions/{user}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetPosition))
	sub.Path("/positions/{user}/rewards").
		Methods(http.MethodGet).
		Name("GET /staking/positions/{user}/rewards").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetRewards))

	calls.New(s.rt, runtime.OpInitialize, runtime.OpStake, runtime.OpUnstake, runtime.OpClaim).
		Mount(root, pathPrefix)
}
