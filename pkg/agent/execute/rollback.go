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

package execute

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/payops-labs/payment-sentinel/pkg/models"
)

// Rollback triggers, used as resolution reason prefixes and metric labels.
const (
	TriggerSuccessDrop     = "success_rate_drop"
	TriggerLatencyIncrease = "latency_increase"
	TriggerErrorIncrease   = "error_rate_increase"
	TriggerForced          = "forced"
	TriggerRollbackFailed  = "rollback_failed"
)

// CheckRollbacks compares current conditions against each active
// intervention's activation baseline and rolls back the ones that made
// things worse. Returns the outcomes of the rolled back interventions.
func (e *Executor) CheckRollbacks(post models.MetricsSummary) []models.Outcome {
	now := e.clk.Now()
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []models.Outcome
	for _, key := range e.sortedActiveKeys() {
		iv := e.active[key]
		trigger := e.rollbackTrigger(iv, post)
		if trigger == "" {
			continue
		}
		oc, _ := e.resolve(iv, models.StateRolledBack, trigger, post, now)
		out = append(out, oc)
	}
	return out
}

func (e *Executor) rollbackTrigger(iv *models.Intervention, post models.MetricsSummary) string {
	base := iv.BaselineAtActivation
	cfg := e.cfg.Rollback

	// a drained window is absence of evidence, not deterioration
	if post.Volume == 0 {
		return ""
	}
	if drop := base.SuccessRate - post.SuccessRate; drop >= cfg.SuccessRateDrop {
		return fmt.Sprintf("%s: %.1f%% -> %.1f%%", TriggerSuccessDrop, base.SuccessRate*100, post.SuccessRate*100)
	}
	if base.AvgLatencyMS > 0 && post.AvgLatencyMS >= base.AvgLatencyMS*(1+cfg.LatencyIncrease) {
		return fmt.Sprintf("%s: %.0fms -> %.0fms", TriggerLatencyIncrease, base.AvgLatencyMS, post.AvgLatencyMS)
	}
	if rise := post.ErrorRate - base.ErrorRate; rise >= cfg.ErrorRateIncrease {
		return fmt.Sprintf("%s: %.1f%% -> %.1f%%", TriggerErrorIncrease, base.ErrorRate*100, post.ErrorRate*100)
	}
	return ""
}

// buildOutcome compares post-resolution conditions with the activation
// baseline. PredictionError is the gap between the estimated and measured
// success-rate effect.
func buildOutcome(iv *models.Intervention, post models.MetricsSummary, now time.Time) models.Outcome {
	actual := models.Impact{
		SuccessRateDelta:   post.SuccessRate - iv.BaselineAtActivation.SuccessRate,
		LatencyDeltaMS:     post.AvgLatencyMS - iv.BaselineAtActivation.AvgLatencyMS,
		TrafficAffectedPct: iv.Action.EstimatedImpact.TrafficAffectedPct,
	}
	oc := models.Outcome{
		InterventionID:  iv.ID,
		ActionKey:       iv.Action.Key(),
		ActionType:      iv.Action.Type,
		Target:          iv.Action.Target,
		Resolution:      iv.State,
		Baseline:        iv.BaselineAtActivation,
		Post:            post,
		EstimatedImpact: iv.Action.EstimatedImpact,
		ActualImpact:    actual,
		PredictionError: math.Abs(iv.Action.EstimatedImpact.SuccessRateDelta - actual.SuccessRateDelta),
		RecordedAt:      now,
	}
	if iv.Decision != nil {
		oc.PatternType = iv.Decision.Pattern.Type
	}
	return oc
}

// reasonLabel reduces a resolution reason to its trigger for metric labels.
func reasonLabel(reason string) string {
	if idx := strings.IndexByte(reason, ':'); idx > 0 {
		return reason[:idx]
	}
	return reason
}
