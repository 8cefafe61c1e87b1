// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapHandlerFunc(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"bad request", BadRequest(cause), http.StatusBadRequest, "boom\n"},
		{"forbidden", Forbidden(cause), http.StatusForbidden, "boom\n"},
		{"not found", NotFound(cause), http.StatusNotFound, "boom\n"},
		{"conflict wrapped", errors.Wrap(Conflict(cause), "op"), http.StatusConflict, "boom\n"},
		{"no cause", HTTPError(nil, http.StatusTeapot), http.StatusTeapot, ""},
		{"internal", cause, http.StatusInternalServerError, "boom\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
				return tt.err
			})(rr, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.body, rr.Body.String())
		})
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, StatusOf(Forbidden(nil)))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("x")))
}

func TestParseValidJSON(t *testing.T) {
	type request struct {
		Addr   string `json:"addr" validate:"required,address"`
		Amount uint64 `json:"amount" validate:"gt=0"`
	}

	var req request
	require.NoError(t, ParseValidJSON(strings.NewReader(`{"addr":"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed","amount":1}`), &req))
	assert.Equal(t, uint64(1), req.Amount)

	for _, body := range []string{
		`{"addr":"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed","amount":1,"extra":1}`,
		`{"addr":"0x1234","amount":1}`,
		`{"addr":"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed","amount":0}`,
		`{"amount":1}`,
		`not json`,
	} {
		err := ParseValidJSON(strings.NewReader(body), &request{})
		assert.Equal(t, http.StatusBadRequest, StatusOf(err), body)
	}
}
