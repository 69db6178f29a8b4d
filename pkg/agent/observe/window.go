/*
 * Copyright (C) 2025 Payops Labs.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package observe

import (
	"sort"
	"time"

	"github.com/payops-labs/payment-sentinel/pkg/models"
)

// bucket keeps incremental counts for one dimension value. Latency
// percentiles are computed at snapshot time from the retained transactions,
// only the cheap aggregates are maintained here.
type bucket struct {
	total      int
	success    int
	latencySum float64
}

func (b *bucket) add(t *models.Transaction) {
	b.total++
	if t.Succeeded() {
		b.success++
	}
	b.latencySum += t.LatencyMS
}

func (b *bucket) remove(t *models.Transaction) {
	b.total--
	if t.Succeeded() {
		b.success--
	}
	b.latencySum -= t.LatencyMS
}

// window is a time-bounded store of transactions. Entries are kept sorted
// by event timestamp and evicted strictly by timestamp age.
type window struct {
	duration time.Duration

	entries      []models.Transaction
	issuers      map[string]*bucket
	methods      map[string]*bucket
	regions      map[string]*bucket
	merchants    map[string]*bucket
	errorCodes   map[string]int
	retryCount   int
	retrySuccess int
}

func newWindow(duration time.Duration) *window {
	return &window{
		duration:   duration,
		issuers:    map[string]*bucket{},
		methods:    map[string]*bucket{},
		regions:    map[string]*bucket{},
		merchants:  map[string]*bucket{},
		errorCodes: map[string]int{},
	}
}

// add inserts t at its timestamp-ordered position. Arrival order is usually
// timestamp order, so the insertion point is found scanning from the back.
func (w *window) add(t models.Transaction) {
	i := len(w.entries)
	for i > 0 && w.entries[i-1].Timestamp.After(t.Timestamp) {
		i--
	}
	w.entries = append(w.entries, models.Transaction{})
	copy(w.entries[i+1:], w.entries[i:])
	w.entries[i] = t
	w.apply(&t, 1)
}

func (w *window) apply(t *models.Transaction, sign int) {
	applyDim(w.issuers, t.Issuer, t, sign)
	applyDim(w.methods, t.Method, t, sign)
	applyDim(w.regions, t.Region, t, sign)
	applyDim(w.merchants, t.Merchant, t, sign)
	if !t.Succeeded() && t.ErrorCode != "" {
		w.errorCodes[t.ErrorCode] += sign
		if w.errorCodes[t.ErrorCode] == 0 {
			delete(w.errorCodes, t.ErrorCode)
		}
	}
	if t.IsRetry() {
		w.retryCount += sign
		if t.Succeeded() {
			w.retrySuccess += sign
		}
	}
}

func applyDim(dim map[string]*bucket, key string, t *models.Transaction, sign int) {
	b, ok := dim[key]
	if !ok {
		b = &bucket{}
		dim[key] = b
	}
	if sign > 0 {
		b.add(t)
	} else {
		b.remove(t)
		if b.total == 0 {
			delete(dim, key)
		}
	}
}

// evict drops entries older than now minus the window duration. Entries are
// kept sorted by timestamp on insert, so popping from the front is exact.
func (w *window) evict(now time.Time) {
	cutoff := now.Add(-w.duration)
	i := 0
	for i < len(w.entries) && w.entries[i].Timestamp.Before(cutoff) {
		w.apply(&w.entries[i], -1)
		i++
	}
	if i > 0 {
		w.entries = append(w.entries[:0], w.entries[i:]...)
	}
}

func (w *window) size() int {
	return len(w.entries)
}

// latencyStats computes percentile statistics with the nearest-rank method
// over a sorted copy.
func latencyStats(latencies []float64) models.LatencyStats {
	if len(latencies) == 0 {
		return models.LatencyStats{}
	}
	sorted := make([]float64, len(latencies))
	copy(sorted, latencies)
	sort.Float64s(sorted)
	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	return models.LatencyStats{
		P50:  percentile(sorted, 0.50),
		P95:  percentile(sorted, 0.95),
		P99:  percentile(sorted, 0.99),
		Mean: sum / float64(len(sorted)),
		Max:  sorted[len(sorted)-1],
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(p*float64(len(sorted))+0.5) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

func (w *window) snapshot(now time.Time) models.WindowSnapshot {
	snap := models.WindowSnapshot{
		Start:        now.Add(-w.duration),
		End:          now,
		Issuers:      map[string]models.DimensionStats{},
		Methods:      map[string]models.DimensionStats{},
		Regions:      map[string]models.DimensionStats{},
		Merchants:    map[string]models.DimensionStats{},
		ErrorCodes:   map[string]int{},
		RetryCount:   w.retryCount,
		RetrySuccess: w.retrySuccess,
	}
	for code, n := range w.errorCodes {
		snap.ErrorCodes[code] = n
	}
	if w.retryCount > 0 {
		snap.RetryEfficiency = float64(w.retrySuccess) / float64(w.retryCount)
	}

	// one pass to group latencies, then per-group percentile computation
	all := make([]float64, 0, len(w.entries))
	grouped := map[string]map[string][]float64{
		"issuer":   {},
		"method":   {},
		"region":   {},
		"merchant": {},
	}
	for i := range w.entries {
		t := &w.entries[i]
		all = append(all, t.LatencyMS)
		grouped["issuer"][t.Issuer] = append(grouped["issuer"][t.Issuer], t.LatencyMS)
		grouped["method"][t.Method] = append(grouped["method"][t.Method], t.LatencyMS)
		grouped["region"][t.Region] = append(grouped["region"][t.Region], t.LatencyMS)
		grouped["merchant"][t.Merchant] = append(grouped["merchant"][t.Merchant], t.LatencyMS)
	}

	fill := func(out map[string]models.DimensionStats, buckets map[string]*bucket, lats map[string][]float64) {
		for key, b := range buckets {
			stats := models.DimensionStats{
				Total:   b.total,
				Success: b.success,
				Failure: b.total - b.success,
				Latency: latencyStats(lats[key]),
			}
			if b.total > 0 {
				stats.SuccessRate = float64(b.success) / float64(b.total)
			}
			out[key] = stats
		}
	}
	fill(snap.Issuers, w.issuers, grouped["issuer"])
	fill(snap.Methods, w.methods, grouped["method"])
	fill(snap.Regions, w.regions, grouped["region"])
	fill(snap.Merchants, w.merchants, grouped["merchant"])

	total, success := 0, 0
	for _, b := range w.issuers {
		total += b.total
		success += b.success
	}
	snap.Overall = models.DimensionStats{
		Total:   total,
		Success: success,
		Failure: total - success,
		Latency: latencyStats(all),
	}
	if total > 0 {
		snap.Overall.SuccessRate = float64(success) / float64(total)
	}
	return snap
}
