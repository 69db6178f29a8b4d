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

const (
	defaultBaselineSuccessRate = 0.95
	defaultBaselineLatencyMS   = 200.0
	defaultRetryEfficiency     = 0.60
)

// Baseline carries the slowly-updated long-run reference statistics that
// detectors compare the current window against. Per-dimension entries fall
// back to the overall default until enough healthy traffic has been seen.
type Baseline struct {
	OverallSuccessRate float64            `json:"overall_success_rate"`
	IssuerSuccessRates map[string]float64 `json:"issuer_success_rates"`
	MethodSuccessRates map[string]float64 `json:"method_success_rates"`
	RegionSuccessRates map[string]float64 `json:"region_success_rates"`
	AvgLatencyMS       float64            `json:"avg_latency_ms"`
	RetryEfficiency    float64            `json:"retry_efficiency"`
}

func NewBaseline() *Baseline {
	return &Baseline{
		OverallSuccessRate: defaultBaselineSuccessRate,
		IssuerSuccessRates: make(map[string]float64),
		MethodSuccessRates: make(map[string]float64),
		RegionSuccessRates: make(map[string]float64),
		AvgLatencyMS:       defaultBaselineLatencyMS,
		RetryEfficiency:    defaultRetryEfficiency,
	}
}

// Copy returns a deep copy, safe to hand out across goroutines.
func (b *Baseline) Copy() *Baseline {
	c := &Baseline{
		OverallSuccessRate: b.OverallSuccessRate,
		IssuerSuccessRates: make(map[string]float64, len(b.IssuerSuccessRates)),
		MethodSuccessRates: make(map[string]float64, len(b.MethodSuccessRates)),
		RegionSuccessRates: make(map[string]float64, len(b.RegionSuccessRates)),
		AvgLatencyMS:       b.AvgLatencyMS,
		RetryEfficiency:    b.RetryEfficiency,
	}
	for k, v := range b.IssuerSuccessRates {
		c.IssuerSuccessRates[k] = v
	}
	for k, v := range b.MethodSuccessRates {
		c.MethodSuccessRates[k] = v
	}
	for k, v := range b.RegionSuccessRates {
		c.RegionSuccessRates[k] = v
	}
	return c
}

func lookupRate(rates map[string]float64, key string) float64 {
	if r, ok := rates[key]; ok {
		return r
	}
	return defaultBaselineSuccessRate
}

func (b *Baseline) IssuerRate(issuer string) float64 {
	return lookupRate(b.IssuerSuccessRates, issuer)
}

func (b *Baseline) MethodRate(method string) float64 {
	return lookupRate(b.MethodSuccessRates, method)
}

func (b *Baseline) RegionRate(region string) float64 {
	return lookupRate(b.RegionSuccessRates, region)
}

// Update folds a snapshot into the baseline with EWMA factor alpha. Only
// healthy, sufficiently-sized slices move the baseline, so a degradation in
// progress does not drag the reference down with it.
func (b *Baseline) Update(snap *WindowSnapshot, alpha float64, minVolume int, healthyRate float64) {
	if snap == nil || alpha <= 0 {
		return
	}
	ewma := func(cur, obs float64) float64 {
		return (1-alpha)*cur + alpha*obs
	}
	if snap.Overall.Total >= minVolume && snap.Overall.SuccessRate >= healthyRate {
		b.OverallSuccessRate = ewma(b.OverallSuccessRate, snap.Overall.SuccessRate)
	}
	for issuer, st := range snap.Issuers {
		if st.Total >= minVolume && st.SuccessRate >= healthyRate {
			b.IssuerSuccessRates[issuer] = ewma(b.IssuerRate(issuer), st.SuccessRate)
		}
	}
	for method, st := range snap.Methods {
		if st.Total >= minVolume && st.SuccessRate >= healthyRate {
			b.MethodSuccessRates[method] = ewma(b.MethodRate(method), st.SuccessRate)
		}
	}
	for region, st := range snap.Regions {
		if st.Total >= minVolume && st.SuccessRate >= healthyRate {
			b.RegionSuccessRates[region] = ewma(b.RegionRate(region), st.SuccessRate)
		}
	}
	if snap.Overall.Latency.Mean > 0 {
		b.AvgLatencyMS = ewma(b.AvgLatencyMS, snap.Overall.Latency.Mean)
	}
	if snap.RetryCount > 0 {
		b.RetryEfficiency = ewma(b.RetryEfficiency, snap.RetryEfficiency)
	}
}
