// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/restutil"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/runtime"
	"github.com/vechain/stakepool/transferlog"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
	// Batches a client may fall behind before it is disconnected.
	backlogLimit = 64
)

type Subscriptions struct {
	rt       *runtime.Runtime
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
}

func New(rt *runtime.Runtime, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		rt: rt,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// matches reports whether t involves addr. A nil addr matches all.
func matches(t *transferlog.Transfer, addr *ledger.Address) bool {
	return addr == nil || t.From == *addr || t.To == *addr
}

func (s *Subscriptions) handleSubjectTransfers(w http.ResponseWriter, req *http.Request) error {
	var addr *ledger.Address
	if v := req.URL.Query().Get("address"); v != "" {
		a, err := ledger.ParseAddress(v)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "address"))
		}
		addr = &a
	}

	if !s.track() {
		return restutil.HTTPError(errors.New("service closed"), http.StatusServiceUnavailable)
	}
	defer s.wg.Done()

	// subscribe before the handshake completes, so no transfer committed after it is missed
	ch := make(chan []*transferlog.Transfer, 16)
	sub := s.rt.SubscribeTransfers(ch)
	defer sub.Unsubscribe()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}
	defer conn.Close()

	if err := s.pipe(conn, ch, sub, addr); err != nil {
		logger.Debug("websocket pipe", "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, ch <-chan []*transferlog.Transfer, sub event.Subscription, addr *ledger.Address) error {
	// the read loop only serves control frames and detects a closed peer
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// relay keeps the feed moving while conn writes block
	backlog := make(chan []*transferlog.Transfer, backlogLimit)
	lagging := make(chan struct{})
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case transfers := <-ch:
				select {
				case backlog <- transfers:
				default:
					close(lagging)
					return
				}
			case <-stop:
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case transfers := <-backlog:
			for _, t := range transfers {
				if !matches(t, addr) {
					continue
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(t); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case err := <-sub.Err():
			return err
		case <-closed:
			return nil
		case <-lagging:
			return conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "subscriber lagging"),
				time.Now().Add(writeWait))
		case <-s.done:
			return conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "service closed"),
				time.Now().Add(writeWait))
		}
	}
}

// track registers a handler, failing once Close has begun.
func (s *Subscriptions) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

// Close disconnects all subscribers and waits for their handlers to return.
// Later subscriptions are refused.
func (s *Subscriptions) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/transfers").
		Methods(http.MethodGet).
		Name("WS /subscriptions/transfers").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubjectTransfers))
}
