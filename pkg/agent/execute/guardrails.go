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
	"time"

	"github.com/payops-labs/payment-sentinel/pkg/models"
)

// guardrailCheck enforces the hard limits no decision score can override.
// Returns a denial reason, or empty when the action may proceed. Caller
// holds the lock.
func (e *Executor) guardrailCheck(a *models.Action, now time.Time) string {
	if _, exists := e.active[a.Key()]; exists {
		return DenialConflict
	}

	e.actionTimes = pruneOlder(e.actionTimes, now.Add(-time.Hour))
	if len(e.actionTimes) >= e.cfg.Guardrails.MaxActionsPerHour {
		return DenialActionBudget
	}

	// a burst of rollbacks means the agent is guessing wrong; stop acting
	// until the hour rolls over
	e.rollbackTimes = pruneOlder(e.rollbackTimes, now.Add(-time.Hour))
	if len(e.rollbackTimes) >= e.cfg.Guardrails.MaxRollbacksPerHour {
		return DenialRollbackBudget
	}

	ceiling, ok := e.cfg.Guardrails.TrafficCeilings[string(a.RiskLevel)]
	if !ok {
		ceiling = 0
	}
	cumulative := a.EstimatedImpact.TrafficAffectedPct
	for _, iv := range e.active {
		cumulative += iv.Action.EstimatedImpact.TrafficAffectedPct
	}
	if cumulative > ceiling {
		return DenialTrafficCeiling
	}
	return ""
}
