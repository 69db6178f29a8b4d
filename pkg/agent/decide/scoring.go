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

import "github.com/payops-labs/payment-sentinel/pkg/models"

// Component scores live on [0,1] with 0.5 meaning "no change". no_action is
// pinned to 0.5 on every objective, so an intervention is only chosen when
// its weighted score beats doing nothing.

func successScore(delta float64) float64 {
	return clampScore(0.5 + delta/0.4)
}

func latencyScore(deltaMS float64) float64 {
	return clampScore(0.5 - deltaMS/400.0)
}

func costScore(delta float64) float64 {
	switch {
	case delta <= 0:
		return 1.0
	case delta <= 0.02:
		return 0.8
	case delta <= 0.05:
		return 0.5
	default:
		return 0.2
	}
}

var riskBase = map[models.RiskLevel]float64{
	models.RiskLow:      1.0,
	models.RiskMedium:   0.7,
	models.RiskHigh:     0.4,
	models.RiskCritical: 0.1,
}

func riskScore(a *models.Action, recentRollbacks int) float64 {
	score := riskBase[a.RiskLevel]
	// recent rollbacks mean recent wrong guesses: discount anything that is
	// not low risk
	if recentRollbacks > 0 && a.RiskLevel != models.RiskLow {
		score *= 0.8
	}
	return score
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// score evaluates one candidate against the weight vector. The weighted sum
// is scaled by the action's confidence, so uncertain candidates shrink
// toward zero while no_action keeps its full neutral score.
func score(a models.Action, w models.Weights, recentRollbacks int) models.ScoredAction {
	var obj models.ObjectiveScores
	if a.Type == models.ActionNoAction {
		obj = models.ObjectiveScores{SuccessRate: 0.5, Latency: 0.5, Cost: 0.5, Risk: 0.5}
	} else {
		obj = models.ObjectiveScores{
			SuccessRate: successScore(a.EstimatedImpact.SuccessRateDelta),
			Latency:     latencyScore(a.EstimatedImpact.LatencyDeltaMS),
			Cost:        costScore(a.EstimatedImpact.CostDeltaPerTxn),
			Risk:        riskScore(&a, recentRollbacks),
		}
	}
	total := w.SuccessRate*obj.SuccessRate +
		w.Latency*obj.Latency +
		w.Cost*obj.Cost +
		w.Risk*obj.Risk
	return models.ScoredAction{
		Action:     a,
		Objectives: obj,
		Total:      total * a.Confidence,
	}
}
