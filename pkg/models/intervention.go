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

type InterventionState string

const (
	StateProposed   InterventionState = "proposed"
	StateAuthorized InterventionState = "authorized"
	StateActive     InterventionState = "active"
	StateExpired    InterventionState = "expired"
	StateRolledBack InterventionState = "rolled_back"
)

// Terminal reports whether the state admits no further transitions.
func (s InterventionState) Terminal() bool {
	return s == StateExpired || s == StateRolledBack
}

// Intervention is a decision that passed authorization and was applied. It
// carries the lifecycle state machine and the pre-action baseline used by
// the rollback monitor.
type Intervention struct {
	ID       string            `json:"id"`
	Decision *Decision         `json:"decision"`
	Action   Action            `json:"action"`
	State    InterventionState `json:"state"`

	BaselineAtActivation MetricsSummary `json:"baseline_at_activation"`
	StartedAt            time.Time      `json:"started_at"`
	TTL                  time.Duration  `json:"ttl"`

	ResolvedAt       time.Time `json:"resolved_at,omitempty"`
	ResolutionReason string    `json:"resolution_reason,omitempty"`
}

// Age is the time the intervention has been active as of now.
func (iv *Intervention) Age(now time.Time) time.Duration {
	return now.Sub(iv.StartedAt)
}

// Expired reports whether the TTL has elapsed. A zero TTL never expires.
func (iv *Intervention) Expired(now time.Time) bool {
	return iv.TTL > 0 && iv.Age(now) >= iv.TTL
}

// Outcome is the resolution record of a terminal intervention, handed to the
// learner.
type Outcome struct {
	InterventionID  string            `json:"intervention_id"`
	ActionKey       string            `json:"action_key"`
	ActionType      ActionType        `json:"action_type"`
	PatternType     PatternType       `json:"pattern_type"`
	Target          string            `json:"target"`
	Resolution      InterventionState `json:"resolution"`
	Baseline        MetricsSummary    `json:"baseline"`
	Post            MetricsSummary    `json:"post"`
	EstimatedImpact Impact            `json:"estimated_impact"`
	ActualImpact    Impact            `json:"actual_impact"`
	PredictionError float64           `json:"prediction_error"`
	RecordedAt      time.Time         `json:"recorded_at"`
}
