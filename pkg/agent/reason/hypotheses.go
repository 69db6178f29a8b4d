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

import "github.com/payops-labs/payment-sentinel/pkg/models"

// hypothesisTable maps each pattern type to its candidate root causes. The
// probabilities of each set sum to 1 and are intentionally static: they rank
// causes for the explanation surface, they are not posterior estimates.
var hypothesisTable = map[models.PatternType][]models.Hypothesis{
	models.PatternIssuerDegradation: {
		{RootCause: "issuer_outage", Probability: 0.40},
		{RootCause: "issuer_capacity_exhaustion", Probability: 0.30},
		{RootCause: "network_path_degradation", Probability: 0.20},
		{RootCause: "unknown", Probability: 0.10},
	},
	models.PatternRetryStorm: {
		{RootCause: "aggressive_client_retries", Probability: 0.45},
		{RootCause: "upstream_flakiness", Probability: 0.35},
		{RootCause: "misconfigured_retry_policy", Probability: 0.20},
	},
	models.PatternMethodFatigue: {
		{RootCause: "rail_provider_incident", Probability: 0.45},
		{RootCause: "gateway_integration_fault", Probability: 0.30},
		{RootCause: "scheduled_rail_maintenance", Probability: 0.15},
		{RootCause: "unknown", Probability: 0.10},
	},
	models.PatternLatencySpike: {
		{RootCause: "downstream_congestion", Probability: 0.40},
		{RootCause: "database_slowdown", Probability: 0.30},
		{RootCause: "network_saturation", Probability: 0.20},
		{RootCause: "unknown", Probability: 0.10},
	},
	models.PatternErrorCluster: {
		{RootCause: "systematic_upstream_fault", Probability: 0.50},
		{RootCause: "client_integration_bug", Probability: 0.30},
		{RootCause: "fraud_rule_misfire", Probability: 0.20},
	},
	models.PatternGeographicFailure: {
		{RootCause: "regional_network_outage", Probability: 0.45},
		{RootCause: "regional_datacenter_incident", Probability: 0.35},
		{RootCause: "regional_issuer_concentration", Probability: 0.20},
	},
}

// Hypothesize returns the ranked root-cause candidates for a pattern.
func (r *Reasoner) Hypothesize(p *models.Pattern) []models.Hypothesis {
	hyps, ok := hypothesisTable[p.Type]
	if !ok {
		return []models.Hypothesis{{RootCause: "unknown", Probability: 1.0}}
	}
	out := make([]models.Hypothesis, len(hyps))
	copy(out, hyps)
	return out
}
