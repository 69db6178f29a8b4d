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

type PatternType string

const (
	PatternIssuerDegradation PatternType = "issuer_degradation"
	PatternRetryStorm        PatternType = "retry_storm"
	PatternMethodFatigue     PatternType = "method_fatigue"
	PatternLatencySpike      PatternType = "latency_spike"
	PatternErrorCluster      PatternType = "error_cluster"
	PatternGeographicFailure PatternType = "geographic_failure"
)

// PatternTypes lists all pattern types in detector registration order.
var PatternTypes = []PatternType{
	PatternIssuerDegradation,
	PatternRetryStorm,
	PatternMethodFatigue,
	PatternLatencySpike,
	PatternErrorCluster,
	PatternGeographicFailure,
}

// Pattern is a detected, classified statistical anomaly. Created by the
// reasoner, consumed once per cycle, retained only in bounded history.
type Pattern struct {
	ID          string             `json:"id"`
	Type        PatternType        `json:"type"`
	Dimension   string             `json:"dimension"`
	Target      string             `json:"target"`
	Severity    float64            `json:"severity"`
	Confidence  float64            `json:"confidence"`
	Description string             `json:"description"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Evidence    []string           `json:"evidence,omitempty"`
	DetectedAt  time.Time          `json:"detected_at"`
}

// Rank orders competing patterns on the same target.
func (p *Pattern) Rank() float64 {
	return p.Severity * p.Confidence
}

// Hypothesis is one candidate root cause for a pattern. The probabilities of
// a pattern's hypothesis set sum to 1.
type Hypothesis struct {
	RootCause   string  `json:"root_cause"`
	Probability float64 `json:"probability"`
}
