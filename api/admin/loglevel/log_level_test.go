// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package loglevel

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/log"
)

type TestCase struct {
	name             string
	method           string
	body             any
	expectedStatus   int
	expectedLevel    string
	expectedErrorMsg string
}

func TestLogLevelHandler(t *testing.T) {
	tests := []TestCase{
		{
			name:           "set level to debug",
			method:         http.MethodPost,
			body:           map[string]string{"level": "debug"},
			expectedStatus: http.StatusOK,
			expectedLevel:  "debug",
		},
		{
			name:           "set level to trace",
			method:         http.MethodPost,
			body:           map[string]string{"level": "trace"},
			expectedStatus: http.StatusOK,
			expectedLevel:  "trace",
		},
		{
			name:             "invalid level",
			method:           http.MethodPost,
			body:             map[string]string{"level": "invalid_body"},
			expectedStatus:   http.StatusBadRequest,
			expectedErrorMsg: "Invalid verbosity level",
		},
		{
			name:           "missing level",
			method:         http.MethodPost,
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "get current level",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectedLevel:  "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logLevel slog.LevelVar
			logLevel.Set(log.LevelInfo)

			var reqBody []byte
			if tt.body != nil {
				var err error
				reqBody, err = json.Marshal(tt.body)
				require.NoError(t, err)
			}
			req := httptest.NewRequest(tt.method, "/admin/loglevel", bytes.NewReader(reqBody))

			rr := httptest.NewRecorder()
			router := mux.NewRouter()
			New(&logLevel).Mount(router, "/admin/loglevel")
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedLevel != "" {
				var res Response
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
				assert.Equal(t, tt.expectedLevel, res.CurrentLevel)
				assert.Equal(t, tt.expectedLevel, log.LevelString(logLevel.Level()))
			}
			if tt.expectedErrorMsg != "" {
				assert.Equal(t, tt.expectedErrorMsg, strings.TrimSpace(rr.Body.String()))
			}
		})
	}
}
