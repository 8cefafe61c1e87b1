// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/vechain/stakepool/metrics"

var (
	metricOpsCount    = metrics.LazyLoadCounterVec("ops_count", []string{"op", "result"})
	metricOpDuration  = metrics.LazyLoadHistogramVec("op_duration_ms", []string{"op"}, metrics.BucketOps)
	metricTotalStaked = metrics.LazyLoadGauge("total_staked")

	metricDroppedBatches = metrics.LazyLoadCounter("subscription_dropped_batches_count")
)
