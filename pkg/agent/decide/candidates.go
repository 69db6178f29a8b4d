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

package decide

import (
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

// trafficShare estimates the fraction of window traffic a pattern's target
// carries, from the sample count the detector recorded.
func trafficShare(p *models.Pattern, volume int) float64 {
	if volume <= 0 {
		return 0
	}
	share := p.Metrics["sample_count"] / float64(volume)
	if share > 1 {
		share = 1
	}
	return share
}

// candidates builds the candidate action set for one pattern. The set always
// ends with alert_ops and no_action, so the decision stage can prefer doing
// nothing over a bad intervention. Order is fixed: ties are resolved by
// position.
func (d *DecisionMaker) candidates(p *models.Pattern, volume int) []models.Action {
	share := trafficShare(p, volume)
	var out []models.Action

	switch p.Type {
	case models.PatternIssuerDegradation:
		out = append(out,
			d.action(models.ActionCircuitBreaker, p.Target, p.Confidence, models.RiskMedium,
				models.Impact{SuccessRateDelta: 0.15, LatencyDeltaMS: -200, CostDeltaPerTxn: 0.02, TrafficAffectedPct: share},
				map[string]interface{}{"failure_threshold": 0.5, "half_open_probes": 5}),
			d.action(models.ActionRouteChange, p.Target, p.Confidence*0.9, models.RiskMedium,
				models.Impact{SuccessRateDelta: 0.08, LatencyDeltaMS: 20, CostDeltaPerTxn: 0.01, TrafficAffectedPct: share * 0.8},
				map[string]interface{}{"route": "secondary_acquirer"}),
			d.action(models.ActionAdjustRetry, p.Target, p.Confidence*0.8, models.RiskLow,
				models.Impact{SuccessRateDelta: 0.05, LatencyDeltaMS: -50, TrafficAffectedPct: share},
				map[string]interface{}{"max_retries": 1, "backoff": "exponential"}),
		)
	case models.PatternRetryStorm:
		out = append(out,
			d.action(models.ActionAdjustRetry, p.Target, p.Confidence, models.RiskLow,
				models.Impact{SuccessRateDelta: 0.05, LatencyDeltaMS: -100, CostDeltaPerTxn: -0.01, TrafficAffectedPct: share},
				map[string]interface{}{"max_retries": 1, "backoff": "exponential", "jitter": true}),
		)
	case models.PatternMethodFatigue:
		out = append(out,
			d.action(models.ActionRouteChange, p.Target, p.Confidence*0.9, models.RiskMedium,
				models.Impact{SuccessRateDelta: 0.06, LatencyDeltaMS: 30, CostDeltaPerTxn: 0.01, TrafficAffectedPct: share * 0.8},
				map[string]interface{}{"route": "alternate_rail"}),
			d.action(models.ActionMethodSuppress, p.Target, p.Confidence*0.85, models.RiskHigh,
				models.Impact{SuccessRateDelta: 0.10, CostDeltaPerTxn: 0.03, TrafficAffectedPct: share},
				map[string]interface{}{"suggest_alternatives": true}),
		)
	case models.PatternLatencySpike:
		out = append(out,
			d.action(models.ActionRouteChange, p.Target, p.Confidence*0.9, models.RiskMedium,
				models.Impact{SuccessRateDelta: 0.02, LatencyDeltaMS: -150, CostDeltaPerTxn: 0.015, TrafficAffectedPct: share},
				map[string]interface{}{"route": "low_latency_path"}),
			d.action(models.ActionAdjustRetry, p.Target, p.Confidence*0.8, models.RiskLow,
				models.Impact{SuccessRateDelta: 0.02, LatencyDeltaMS: -80, TrafficAffectedPct: share},
				map[string]interface{}{"timeout_ms": 2000, "max_retries": 1}),
		)
	case models.PatternErrorCluster:
		if p.Target == "TIMEOUT" || p.Target == "NETWORK_ERROR" {
			out = append(out,
				d.action(models.ActionAdjustRetry, p.Target, p.Confidence*0.9, models.RiskLow,
					models.Impact{SuccessRateDelta: 0.04, LatencyDeltaMS: -60, TrafficAffectedPct: share},
					map[string]interface{}{"timeout_ms": 3000, "backoff": "exponential"}),
			)
		}
	case models.PatternGeographicFailure:
		out = append(out,
			d.action(models.ActionRouteChange, p.Target, p.Confidence*0.9, models.RiskMedium,
				models.Impact{SuccessRateDelta: 0.07, LatencyDeltaMS: 40, CostDeltaPerTxn: 0.02, TrafficAffectedPct: share},
				map[string]interface{}{"route": "cross_region_gateway"}),
		)
	}

	out = append(out,
		d.action(models.ActionAlertOps, p.Target, 1.0, models.RiskLow, models.Impact{}, nil),
		d.action(models.ActionNoAction, p.Target, 1.0, models.RiskLow, models.Impact{}, nil),
	)
	return out
}

func (d *DecisionMaker) action(at models.ActionType, target string, conf float64,
	risk models.RiskLevel, impact models.Impact, params map[string]interface{}) models.Action {
	return models.Action{
		Type:            at,
		Target:          target,
		Parameters:      params,
		RiskLevel:       risk,
		Authorization:   d.authLevel(at),
		EstimatedImpact: impact,
		Confidence:      conf,
		TTL:             d.cfg.Rollback.DefaultTTL.Duration,
	}
}

func (d *DecisionMaker) authLevel(at models.ActionType) models.AuthorizationLevel {
	if lvl, ok := d.cfg.Authorization[string(at)]; ok {
		return models.AuthorizationLevel(lvl)
	}
	return models.AuthManual
}
