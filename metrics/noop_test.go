// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	metrics = defaultNoopMetrics()

	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	Counter("ops").Add(1)
	for i := range rand.N(100) + 1 { // #nosec G404
		HistogramVec("latencyVec", []string{"op"}, nil).ObserveWithLabels(int64(i), map[string]string{"nonsense": "ignored"})
		CounterVec("opsVec", []string{"op"}).AddWithLabel(int64(i), map[string]string{"nonsense": "ignored"})
		GaugeVec("staked", []string{"op"}).SetWithLabel(int64(i), map[string]string{"nonsense": "ignored"})
		Gauge("total").Set(int64(i))
	}

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
