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

type ActionType string

const (
	ActionCircuitBreaker ActionType = "circuit_breaker"
	ActionRouteChange    ActionType = "route_change"
	ActionAdjustRetry    ActionType = "adjust_retry"
	ActionMethodSuppress ActionType = "method_suppress"
	ActionAlertOps       ActionType = "alert_ops"
	ActionNoAction       ActionType = "no_action"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type AuthorizationLevel string

const (
	AuthAutomatic     AuthorizationLevel = "automatic"
	AuthSemiAutomatic AuthorizationLevel = "semi_automatic"
	AuthManual        AuthorizationLevel = "manual"
)

// Impact is the estimated (or, after resolution, measured) effect of an
// action on the traffic it touches.
type Impact struct {
	SuccessRateDelta   float64 `json:"success_rate_delta"`
	LatencyDeltaMS     float64 `json:"latency_delta_ms"`
	CostDeltaPerTxn    float64 `json:"cost_delta_per_txn"`
	TrafficAffectedPct float64 `json:"traffic_affected_pct"`
}

// Action is a candidate or chosen mitigation.
type Action struct {
	Type            ActionType             `json:"type"`
	Target          string                 `json:"target"`
	Parameters      map[string]interface{} `json:"parameters,omitempty"`
	RiskLevel       RiskLevel              `json:"risk_level"`
	Authorization   AuthorizationLevel     `json:"authorization_level"`
	EstimatedImpact Impact                 `json:"estimated_impact"`
	Confidence      float64                `json:"confidence"`
	TTL             time.Duration          `json:"ttl"`
}

// Key identifies the (type, target) pair an intervention occupies; at most
// one active intervention may hold a given key.
func (a *Action) Key() string {
	return string(a.Type) + "|" + a.Target
}
