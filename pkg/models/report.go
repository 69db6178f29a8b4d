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

// Alert is an operator notification produced by alert_ops actions and
// guardrail denials.
type Alert struct {
	PatternType PatternType `json:"pattern_type"`
	Target      string      `json:"target"`
	Severity    float64     `json:"severity"`
	Message     string      `json:"message"`
	Timestamp   time.Time   `json:"timestamp"`
}

// CycleReport is the audit record of one Observe→Reason→Decide→Act→Learn
// cycle.
type CycleReport struct {
	Cycle     int       `json:"cycle"`
	Timestamp time.Time `json:"timestamp"`

	WindowVolume int         `json:"window_volume"`
	SuccessRate  float64     `json:"success_rate"`
	Patterns     []Pattern   `json:"patterns"`
	Suppressed   []Pattern   `json:"suppressed,omitempty"`
	Decisions    []*Decision `json:"decisions"`

	Activated  []string `json:"activated"`
	Denied     []string `json:"denied"`
	RolledBack []string `json:"rolled_back"`
	Expired    []string `json:"expired"`

	Duration time.Duration `json:"duration"`
}

// TopDecision returns the highest-scoring decision of the cycle, or nil when
// the cycle produced none.
func (r *CycleReport) TopDecision() *Decision {
	var best *Decision
	for _, d := range r.Decisions {
		if best == nil || d.Chosen.Total > best.Chosen.Total {
			best = d
		}
	}
	return best
}

// StatusSummary is the read-only agent state exposed to the API layer.
type StatusSummary struct {
	Active       bool      `json:"active"`
	CycleCount   int       `json:"cycle_count"`
	LastCycle    time.Time `json:"last_cycle"`
	WindowVolume int       `json:"window_volume"`
	SuccessRate  float64   `json:"success_rate"`
	AvgLatencyMS float64   `json:"avg_latency_ms"`

	ActiveInterventions []Intervention `json:"active_interventions"`
	CircuitBreakers     []string       `json:"circuit_breakers"`
	SuppressedMethods   []string       `json:"suppressed_methods"`
	RouteOverrides      []string       `json:"route_overrides"`
	SuspendedTargets    []string       `json:"suspended_targets"`

	ActionsLastHour   int `json:"actions_last_hour"`
	RollbacksLastHour int `json:"rollbacks_last_hour"`

	Weights          Weights                    `json:"weights"`
	PatternPrecision map[PatternType]float64    `json:"pattern_precision"`
	ThresholdAdvice  map[PatternType]float64    `json:"threshold_advice,omitempty"`
	ActionScorecards map[string]ActionScorecard `json:"action_scorecards,omitempty"`

	RecentAlerts []Alert `json:"recent_alerts,omitempty"`
}

// ActionScorecard summarizes learned effectiveness for one action key.
type ActionScorecard struct {
	SampleSize            int     `json:"sample_size"`
	AvgSuccessImprovement float64 `json:"avg_success_improvement"`
	AvgLatencyImprovement float64 `json:"avg_latency_improvement"`
	PredictionAccuracy    float64 `json:"prediction_accuracy"`
}
