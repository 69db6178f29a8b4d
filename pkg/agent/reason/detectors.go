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

package reason

import (
	"fmt"
	"sort"
	"time"

	"github.com/payops-labs/payment-sentinel/pkg/models"
)

// TargetRetryBehavior and TargetLatency are the fixed targets of the two
// detectors that observe the whole window rather than one dimension value.
const (
	TargetRetryBehavior = "retry_behavior"
	TargetLatency       = "latency"
)

// detector inspects one snapshot against the baseline and reports at most
// one pattern per (type, target) pair.
type detector func(r *Reasoner, snap *models.WindowSnapshot, base *models.Baseline, now time.Time) []models.Pattern

// detectors run in this fixed order every cycle.
var detectors = []detector{
	(*Reasoner).detectIssuerDegradation,
	(*Reasoner).detectRetryStorm,
	(*Reasoner).detectMethodFatigue,
	(*Reasoner).detectLatencySpike,
	(*Reasoner).detectErrorCluster,
	(*Reasoner).detectGeographicFailure,
}

func sortedKeys(m map[string]models.DimensionStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Reasoner) detectIssuerDegradation(snap *models.WindowSnapshot, base *models.Baseline, now time.Time) []models.Pattern {
	th := r.threshold(models.PatternIssuerDegradation)
	var out []models.Pattern
	for _, issuer := range sortedKeys(snap.Issuers) {
		st := snap.Issuers[issuer]
		if st.Total < r.cfg.MinSamples {
			continue
		}
		expected := base.IssuerRate(issuer)
		dev := expected - st.SuccessRate
		if dev < th.Warning {
			continue
		}
		out = append(out, r.newPattern(
			models.PatternIssuerDegradation, "issuer", issuer,
			dev, st.Total, th, now,
			fmt.Sprintf("issuer %s success rate %.1f%% vs baseline %.1f%%", issuer, st.SuccessRate*100, expected*100),
			map[string]float64{
				"current_success_rate":  st.SuccessRate,
				"baseline_success_rate": expected,
				"deviation":             dev,
				"sample_count":          float64(st.Total),
			},
			fmt.Sprintf("%d of %d transactions failed", st.Failure, st.Total),
		))
	}
	return out
}

func (r *Reasoner) detectRetryStorm(snap *models.WindowSnapshot, base *models.Baseline, now time.Time) []models.Pattern {
	th := r.threshold(models.PatternRetryStorm)
	if snap.Overall.Total < r.cfg.MinSamples || snap.RetryCount == 0 {
		return nil
	}
	retryShare := float64(snap.RetryCount) / float64(snap.Overall.Total)
	if retryShare < th.Warning {
		return nil
	}
	return []models.Pattern{r.newPattern(
		models.PatternRetryStorm, "retry", TargetRetryBehavior,
		retryShare, snap.RetryCount, th, now,
		fmt.Sprintf("%.1f%% of traffic is retries, retry efficiency %.1f%% vs baseline %.1f%%",
			retryShare*100, snap.RetryEfficiency*100, base.RetryEfficiency*100),
		map[string]float64{
			"retry_share":               retryShare,
			"retry_efficiency":          snap.RetryEfficiency,
			"baseline_retry_efficiency": base.RetryEfficiency,
			"sample_count":              float64(snap.RetryCount),
		},
		fmt.Sprintf("%d retries, %d of them succeeded", snap.RetryCount, snap.RetrySuccess),
	)}
}

func (r *Reasoner) detectMethodFatigue(snap *models.WindowSnapshot, base *models.Baseline, now time.Time) []models.Pattern {
	th := r.threshold(models.PatternMethodFatigue)
	var out []models.Pattern
	for _, method := range sortedKeys(snap.Methods) {
		st := snap.Methods[method]
		if st.Total < r.cfg.MinSamples {
			continue
		}
		expected := base.MethodRate(method)
		dev := expected - st.SuccessRate
		if dev < th.Warning {
			continue
		}
		out = append(out, r.newPattern(
			models.PatternMethodFatigue, "method", method,
			dev, st.Total, th, now,
			fmt.Sprintf("method %s success rate %.1f%% vs baseline %.1f%%", method, st.SuccessRate*100, expected*100),
			map[string]float64{
				"current_success_rate":  st.SuccessRate,
				"baseline_success_rate": expected,
				"deviation":             dev,
				"sample_count":          float64(st.Total),
			},
			fmt.Sprintf("%d of %d transactions failed", st.Failure, st.Total),
		))
	}
	return out
}

func (r *Reasoner) detectLatencySpike(snap *models.WindowSnapshot, base *models.Baseline, now time.Time) []models.Pattern {
	th := r.threshold(models.PatternLatencySpike)
	if snap.Overall.Total < r.cfg.MinSamples || base.AvgLatencyMS <= 0 {
		return nil
	}
	p95 := snap.Overall.Latency.P95
	dev := p95/base.AvgLatencyMS - 1.0
	if dev < th.Warning {
		return nil
	}
	return []models.Pattern{r.newPattern(
		models.PatternLatencySpike, "overall", TargetLatency,
		dev, snap.Overall.Total, th, now,
		fmt.Sprintf("p95 latency %.0fms is %.1fx the %.0fms baseline", p95, p95/base.AvgLatencyMS, base.AvgLatencyMS),
		map[string]float64{
			"p95_latency_ms":      p95,
			"p99_latency_ms":      snap.Overall.Latency.P99,
			"baseline_latency_ms": base.AvgLatencyMS,
			"deviation":           dev,
			"sample_count":        float64(snap.Overall.Total),
		},
		fmt.Sprintf("mean %.0fms, max %.0fms", snap.Overall.Latency.Mean, snap.Overall.Latency.Max),
	)}
}

func (r *Reasoner) detectErrorCluster(snap *models.WindowSnapshot, base *models.Baseline, now time.Time) []models.Pattern {
	th := r.threshold(models.PatternErrorCluster)
	if snap.Overall.Total < r.cfg.MinSamples {
		return nil
	}
	codes := make([]string, 0, len(snap.ErrorCodes))
	for code := range snap.ErrorCodes {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var out []models.Pattern
	for _, code := range codes {
		count := snap.ErrorCodes[code]
		if count < r.cfg.ErrorClusterMinCount {
			continue
		}
		rate := float64(count) / float64(snap.Overall.Total)
		if rate < th.Warning {
			continue
		}
		out = append(out, r.newPattern(
			models.PatternErrorCluster, "error_code", code,
			rate, count, th, now,
			fmt.Sprintf("error %s on %.1f%% of all transactions", code, rate*100),
			map[string]float64{
				"error_rate":   rate,
				"error_count":  float64(count),
				"sample_count": float64(count),
			},
			fmt.Sprintf("%d occurrences in a window of %d", count, snap.Overall.Total),
		))
	}
	return out
}

func (r *Reasoner) detectGeographicFailure(snap *models.WindowSnapshot, base *models.Baseline, now time.Time) []models.Pattern {
	th := r.threshold(models.PatternGeographicFailure)
	var out []models.Pattern
	for _, region := range sortedKeys(snap.Regions) {
		st := snap.Regions[region]
		if st.Total < r.cfg.MinSamples {
			continue
		}
		expected := base.RegionRate(region)
		dev := expected - st.SuccessRate
		if dev < th.Warning {
			continue
		}
		out = append(out, r.newPattern(
			models.PatternGeographicFailure, "region", region,
			dev, st.Total, th, now,
			fmt.Sprintf("region %s success rate %.1f%% vs baseline %.1f%%", region, st.SuccessRate*100, expected*100),
			map[string]float64{
				"current_success_rate":  st.SuccessRate,
				"baseline_success_rate": expected,
				"deviation":             dev,
				"sample_count":          float64(st.Total),
			},
			fmt.Sprintf("%d of %d transactions failed", st.Failure, st.Total),
		))
	}
	return out
}
