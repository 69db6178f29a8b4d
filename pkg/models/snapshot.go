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

package models

import "time"

// LatencyStats holds latency percentiles over a window, in milliseconds.
type LatencyStats struct {
	P50  float64 `json:"p50"`
	P95  float64 `json:"p95"`
	P99  float64 `json:"p99"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

// DimensionStats aggregates one dimension value (an issuer, a method, ...)
// over the window.
type DimensionStats struct {
	Total       int          `json:"total"`
	Success     int          `json:"success"`
	Failure     int          `json:"failure"`
	SuccessRate float64      `json:"success_rate"`
	Latency     LatencyStats `json:"latency"`
}

func (d DimensionStats) FailureRate() float64 {
	return 1.0 - d.SuccessRate
}

// WindowSnapshot is a point-in-time, immutable view of the sliding window.
// It is regenerated whole each cycle and never partially updated.
type WindowSnapshot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Overall   DimensionStats            `json:"overall"`
	Issuers   map[string]DimensionStats `json:"issuers"`
	Methods   map[string]DimensionStats `json:"methods"`
	Regions   map[string]DimensionStats `json:"regions"`
	Merchants map[string]DimensionStats `json:"merchants"`

	ErrorCodes map[string]int `json:"error_codes"`

	RetryCount      int     `json:"retry_count"`
	RetrySuccess    int     `json:"retry_success"`
	RetryEfficiency float64 `json:"retry_efficiency"`

	Malformed int `json:"malformed"`
}

// MetricsSummary is the reduced form used for baseline/post comparison on
// interventions.
type MetricsSummary struct {
	SuccessRate  float64 `json:"success_rate"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
	ErrorRate    float64 `json:"error_rate"`
	Volume       int     `json:"volume"`
}

func (s *WindowSnapshot) Summary() MetricsSummary {
	return MetricsSummary{
		SuccessRate:  s.Overall.SuccessRate,
		AvgLatencyMS: s.Overall.Latency.Mean,
		ErrorRate:    s.Overall.FailureRate(),
		Volume:       s.Overall.Total,
	}
}
