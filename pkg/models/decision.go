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

// Objective names, in scoring order.
const (
	ObjectiveSuccessRate = "success_rate"
	ObjectiveLatency     = "latency"
	ObjectiveCost        = "cost"
	ObjectiveRisk        = "risk"
)

// Weights is the objective weight vector used to combine per-objective
// scores. It is kept normalized to sum to 1.
type Weights struct {
	SuccessRate float64 `json:"success_rate"`
	Latency     float64 `json:"latency"`
	Cost        float64 `json:"cost"`
	Risk        float64 `json:"risk"`
}

func (w Weights) Sum() float64 {
	return w.SuccessRate + w.Latency + w.Cost + w.Risk
}

// Normalized returns the vector scaled to sum to 1. A zero vector is
// returned unchanged.
func (w Weights) Normalized() Weights {
	total := w.Sum()
	if total == 0 {
		return w
	}
	return Weights{
		SuccessRate: w.SuccessRate / total,
		Latency:     w.Latency / total,
		Cost:        w.Cost / total,
		Risk:        w.Risk / total,
	}
}

// ObjectiveScores holds the per-objective component scores of one candidate,
// each on [0,1].
type ObjectiveScores struct {
	SuccessRate float64 `json:"success_rate"`
	Latency     float64 `json:"latency"`
	Cost        float64 `json:"cost"`
	Risk        float64 `json:"risk"`
}

// ScoredAction is one evaluated candidate in a decision's explainability
// record.
type ScoredAction struct {
	Action     Action          `json:"action"`
	Objectives ObjectiveScores `json:"objectives"`
	Total      float64         `json:"total"`
}

// Decision is the immutable audit record of one action selection. It is
// produced whether or not the chosen action was ultimately authorized.
type Decision struct {
	ID           string         `json:"id"`
	Pattern      Pattern        `json:"pattern"`
	Hypotheses   []Hypothesis   `json:"hypotheses"`
	Chosen       ScoredAction   `json:"chosen_action"`
	Alternatives []ScoredAction `json:"alternatives"`
	Weights      Weights        `json:"weights"`
	Timestamp    time.Time      `json:"timestamp"`

	// Filled by the executor when authorization or guardrails refuse the
	// chosen action.
	Denied       bool   `json:"denied,omitempty"`
	DenialReason string `json:"denial_reason,omitempty"`
}
