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
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/payops-labs/payment-sentinel/pkg/api"
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

var elog = logrus.WithField("component", "execute.Executor")

// Executor owns the intervention lifecycle: authorization, guardrails,
// activation, TTL expiry and rollback. All methods are safe for concurrent
// use.
type Executor struct {
	mu      sync.Mutex
	clk     clock.Clock
	cfg     api.AgentConfig
	applier Applier

	active    map[string]*models.Intervention // by action key
	suspended map[string]time.Time            // target -> when
	approvals map[string]time.Time            // armed semi-automatic approvals, by target

	actionTimes   []time.Time
	rollbackTimes []time.Time
}

func NewExecutor(cfg api.AgentConfig, clk clock.Clock, applier Applier) *Executor {
	if applier == nil {
		applier = NewLogApplier()
	}
	elog.Infof("NewExecutor maxActionsPerHour=%d maxRollbacksPerHour=%d",
		cfg.Guardrails.MaxActionsPerHour, cfg.Guardrails.MaxRollbacksPerHour)
	return &Executor{
		clk:       clk,
		cfg:       cfg,
		applier:   applier,
		active:    map[string]*models.Intervention{},
		suspended: map[string]time.Time{},
		approvals: map[string]time.Time{},
	}
}

// Approve arms a one-shot approval for semi-automatic actions on a target.
// The next Execute consuming it proceeds as if automatic.
func (e *Executor) Approve(target string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.approvals[target] = e.clk.Now()
	elog.WithField("target", target).Info("approval armed")
}

// ClearSuspension lifts the suspension placed on a target after a rollback
// failure.
func (e *Executor) ClearSuspension(target string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.suspended, target)
	elog.WithField("target", target).Info("suspension cleared")
}

// Execute runs a decision's chosen action through authorization and
// guardrails, activating it when all gates pass. no_action and alert_ops
// never become interventions: they return (nil, nil) and the caller handles
// any alerting. A denial returns (nil, *DeniedError) and marks the decision.
func (e *Executor) Execute(dec *models.Decision, baseline models.MetricsSummary) (*models.Intervention, error) {
	action := dec.Chosen.Action
	if action.Type == models.ActionNoAction || action.Type == models.ActionAlertOps {
		return nil, nil
	}
	now := e.clk.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if reason := e.authorize(&action, now); reason != "" {
		return nil, e.deny(dec, &action, reason)
	}
	if reason := e.guardrailCheck(&action, now); reason != "" {
		return nil, e.deny(dec, &action, reason)
	}

	iv := &models.Intervention{
		ID:       uuid.NewString(),
		Decision: dec,
		Action:   action,
		State:    models.StateProposed,
	}
	iv.State = models.StateAuthorized

	if err := e.applier.Apply(&action); err != nil {
		return nil, e.deny(dec, &action, "apply_failed: "+err.Error())
	}
	// only applied actions consume the hourly budget
	e.actionTimes = append(e.actionTimes, now)
	ttl := action.TTL
	if ttl <= 0 {
		ttl = e.cfg.Rollback.DefaultTTL.Duration
	}
	iv.State = models.StateActive
	iv.BaselineAtActivation = baseline
	iv.StartedAt = now
	iv.TTL = ttl
	e.active[action.Key()] = iv

	executionsTotal.WithLabelValues(string(action.Type), "activated").Inc()
	interventionsActive.Set(float64(len(e.active)))
	elog.WithFields(logrus.Fields{
		"action": action.Type,
		"target": action.Target,
	}).Infof("intervention %s active, ttl=%s", iv.ID, ttl)
	return iv, nil
}

func (e *Executor) authorize(a *models.Action, now time.Time) string {
	if _, bad := e.suspended[a.Target]; bad {
		return DenialTargetSuspended
	}
	switch a.Authorization {
	case models.AuthAutomatic:
		return ""
	case models.AuthSemiAutomatic:
		if armedAt, armed := e.approvals[a.Target]; armed {
			delete(e.approvals, a.Target)
			if now.Sub(armedAt) <= e.cfg.Guardrails.ApprovalTTL.Duration {
				return ""
			}
			elog.WithField("target", a.Target).Info("approval expired unused")
		}
		return DenialPendingApproval
	case models.AuthManual:
		return DenialManualApproval
	default:
		return DenialUnknownAuthLevel
	}
}

func (e *Executor) deny(dec *models.Decision, a *models.Action, reason string) error {
	dec.Denied = true
	dec.DenialReason = reason
	executionsTotal.WithLabelValues(string(a.Type), "denied").Inc()
	elog.WithFields(logrus.Fields{
		"action": a.Type,
		"target": a.Target,
	}).Infof("denied: %s", reason)
	return &DeniedError{Reason: reason}
}

// PollExpiry resolves interventions whose TTL elapsed. Called at the start
// of every cycle; there are no background timers.
func (e *Executor) PollExpiry(post models.MetricsSummary) []models.Outcome {
	now := e.clk.Now()
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []models.Outcome
	for _, key := range e.sortedActiveKeys() {
		iv := e.active[key]
		if !iv.Expired(now) {
			continue
		}
		oc, _ := e.resolve(iv, models.StateExpired, "ttl_elapsed", post, now)
		out = append(out, oc)
	}
	return out
}

// ForceRollback rolls back the active intervention with the given ID
// immediately, bypassing rollback-condition checks but not bookkeeping.
func (e *Executor) ForceRollback(id, reason string, post models.MetricsSummary) (*models.Outcome, error) {
	now := e.clk.Now()
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, iv := range e.active {
		if iv.ID == id {
			oc, err := e.resolve(iv, models.StateRolledBack, TriggerForced+": "+reason, post, now)
			return &oc, err
		}
	}
	return nil, &NotActiveError{ID: id}
}

// resolve reverts (for rollbacks and expiries alike), moves the intervention
// to its terminal state and builds the outcome record. A failed revert
// suspends the target; the intervention still terminates so it cannot wedge
// the registry.
func (e *Executor) resolve(iv *models.Intervention, state models.InterventionState,
	reason string, post models.MetricsSummary, now time.Time) (models.Outcome, error) {
	var failure *RollbackFailureError
	if err := e.applier.Revert(&iv.Action); err != nil {
		failure = &RollbackFailureError{Target: iv.Action.Target, Cause: err}
		e.suspended[iv.Action.Target] = now
		rollbackFailures.Inc()
		reason = TriggerRollbackFailed + ": " + err.Error()
		state = models.StateRolledBack
	}
	iv.State = state
	iv.ResolvedAt = now
	iv.ResolutionReason = reason
	delete(e.active, iv.Action.Key())
	interventionsActive.Set(float64(len(e.active)))

	if state == models.StateRolledBack {
		e.rollbackTimes = append(e.rollbackTimes, now)
		rollbacksTotal.WithLabelValues(reasonLabel(reason)).Inc()
	}
	elog.WithFields(logrus.Fields{
		"action": iv.Action.Type,
		"target": iv.Action.Target,
	}).Infof("intervention %s resolved as %s: %s", iv.ID, state, reason)
	if failure != nil {
		return buildOutcome(iv, post, now), failure
	}
	return buildOutcome(iv, post, now), nil
}

func (e *Executor) sortedActiveKeys() []string {
	keys := make([]string, 0, len(e.active))
	for k := range e.active {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Active returns copies of the active interventions, ordered by action key.
func (e *Executor) Active() []models.Intervention {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Intervention, 0, len(e.active))
	for _, key := range e.sortedActiveKeys() {
		out = append(out, *e.active[key])
	}
	return out
}

// Suspended returns the currently suspended targets, sorted.
func (e *Executor) Suspended() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.suspended))
	for target := range e.suspended {
		out = append(out, target)
	}
	sort.Strings(out)
	return out
}

// ActionsLastHour and RollbacksLastHour expose the rolling guardrail
// counters.
func (e *Executor) ActionsLastHour() int {
	now := e.clk.Now()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actionTimes = pruneOlder(e.actionTimes, now.Add(-time.Hour))
	return len(e.actionTimes)
}

func (e *Executor) RollbacksLastHour() int {
	now := e.clk.Now()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rollbackTimes = pruneOlder(e.rollbackTimes, now.Add(-time.Hour))
	return len(e.rollbackTimes)
}

func pruneOlder(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && times[i].Before(cutoff) {
		i++
	}
	return times[i:]
}

// NotActiveError reports a rollback request for an unknown or already
// resolved intervention.
type NotActiveError struct {
	ID string
}

func (e *NotActiveError) Error() string {
	return "no active intervention with id " + e.ID
}
