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

package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/payops-labs/payment-sentinel/pkg/agent/decide"
	"github.com/payops-labs/payment-sentinel/pkg/agent/execute"
	"github.com/payops-labs/payment-sentinel/pkg/agent/learn"
	"github.com/payops-labs/payment-sentinel/pkg/agent/observe"
	"github.com/payops-labs/payment-sentinel/pkg/agent/reason"
	"github.com/payops-labs/payment-sentinel/pkg/api"
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

var alog = logrus.WithField("component", "agent.Agent")

// Agent wires the observe, reason, decide, execute and learn stages into
// one control loop over payment transaction telemetry.
type Agent struct {
	cfg api.AgentConfig
	clk clock.Clock

	observer *observe.Observer
	reasoner *reason.Reasoner
	decider  *decide.DecisionMaker
	executor *execute.Executor
	learner  *learn.Learner

	// serializes cycles and forced rollbacks; reads go through the
	// component locks
	mu sync.Mutex

	st      *state
	running atomic.Bool
}

// NewAgent builds an agent from a complete configuration. A nil applier
// means actions are logged, not enforced.
func NewAgent(cfg api.AgentConfig, clk clock.Clock, applier execute.Applier) *Agent {
	initial := models.Weights{
		SuccessRate: cfg.Objectives.SuccessRate,
		Latency:     cfg.Objectives.Latency,
		Cost:        cfg.Objectives.Cost,
		Risk:        cfg.Objectives.Risk,
	}
	return &Agent{
		cfg:      cfg,
		clk:      clk,
		observer: observe.NewObserver(cfg, clk),
		reasoner: reason.NewReasoner(cfg.Reasoner),
		decider:  decide.NewDecisionMaker(cfg),
		executor: execute.NewExecutor(cfg, clk, applier),
		learner:  learn.NewLearner(cfg.Learning, initial),
		st:       newState(cfg.CycleHistoryLimit, cfg.AlertHistoryLimit),
	}
}

// Submit ingests a batch of transactions into the sliding window. Returns
// the number accepted; malformed transactions are reported one error each.
func (a *Agent) Submit(txns []models.Transaction) (int, []error) {
	return a.observer.Submit(txns)
}

// RunCycle executes one full observe-reason-decide-act-learn pass and
// returns its report. Expired interventions are resolved at the start of the
// cycle; there are no background timers.
func (a *Agent) RunCycle() *models.CycleReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	started := a.clk.Now()
	cycle := a.st.nextCycle(started)
	report := &models.CycleReport{Cycle: cycle, Timestamp: started}

	snap := a.observer.Snapshot()
	summary := snap.Summary()
	report.WindowVolume = summary.Volume
	report.SuccessRate = summary.SuccessRate

	// resolve finished interventions first so their slots free up before
	// new decisions are taken
	for _, oc := range a.executor.PollExpiry(summary) {
		a.learner.RecordOutcome(oc)
		report.Expired = append(report.Expired, oc.InterventionID)
	}
	for _, oc := range a.executor.CheckRollbacks(summary) {
		a.learner.RecordOutcome(oc)
		report.RolledBack = append(report.RolledBack, oc.InterventionID)
		a.alert(oc.PatternType, oc.Target, 1.0, "intervention rolled back: "+oc.ActionKey, started)
	}

	baseline := a.observer.Baseline()
	patterns, suppressed := a.reasoner.Analyze(&snap, baseline, started)
	report.Patterns = patterns
	report.Suppressed = suppressed

	for _, p := range a.actionable(patterns) {
		dec := a.decider.Decide(decide.Input{
			Pattern:         p,
			Hypotheses:      a.reasoner.Hypothesize(&p),
			WindowVolume:    summary.Volume,
			Weights:         a.learner.Weights(),
			RecentRollbacks: a.executor.RollbacksLastHour(),
		}, started)
		decision := dec
		a.st.addDecision(&decision)
		report.Decisions = append(report.Decisions, &decision)

		if decision.Chosen.Action.Type == models.ActionAlertOps {
			a.alert(p.Type, p.Target, p.Severity, p.Description, started)
			continue
		}
		iv, err := a.executor.Execute(&decision, summary)
		switch {
		case err != nil:
			var denied *execute.DeniedError
			if errors.As(err, &denied) {
				report.Denied = append(report.Denied, decision.ID)
				a.alert(p.Type, p.Target, p.Severity,
					fmt.Sprintf("action %s denied: %s", decision.Chosen.Action.Type, denied.Reason), started)
			}
		case iv != nil:
			report.Activated = append(report.Activated, iv.ID)
		}
	}

	a.observer.UpdateBaseline(&snap)

	if a.learner.OnCycleEnd() && a.cfg.Learning.SelfTune {
		for pt, factor := range a.learner.ThresholdAdvice() {
			a.reasoner.ScaleThreshold(pt, factor)
		}
	}

	report.Duration = a.clk.Now().Sub(started)
	a.st.addReport(report)
	cyclesTotal.Inc()
	cycleDuration.Observe(report.Duration.Seconds())
	alog.Debugf("cycle %d: volume=%d success=%.3f patterns=%d activated=%d denied=%d",
		cycle, report.WindowVolume, report.SuccessRate, len(patterns), len(report.Activated), len(report.Denied))
	return report
}

// actionable filters out patterns below the severity floor and orders the
// rest by rank, so the strongest signal claims guardrail budget first.
func (a *Agent) actionable(patterns []models.Pattern) []models.Pattern {
	out := make([]models.Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Severity >= a.cfg.MinSeverityToAct {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank() > out[j].Rank()
	})
	return out
}

func (a *Agent) alert(pt models.PatternType, target string, severity float64, msg string, now time.Time) {
	a.st.addAlert(models.Alert{
		PatternType: pt,
		Target:      target,
		Severity:    severity,
		Message:     msg,
		Timestamp:   now,
	})
	alertsTotal.Inc()
	alog.WithField("target", target).Warn(msg)
}

// Run drives RunCycle on a fixed interval until the context is canceled.
func (a *Agent) Run(ctx context.Context, interval time.Duration) {
	a.running.Store(true)
	defer a.running.Store(false)
	ticker := a.clk.Ticker(interval)
	defer ticker.Stop()
	alog.Infof("control loop started, interval=%s", interval)
	for {
		select {
		case <-ctx.Done():
			alog.Info("control loop stopped")
			return
		case <-ticker.C:
			a.RunCycle()
		}
	}
}

// ForceRollback rolls back an active intervention by ID and feeds the
// outcome to the learner.
func (a *Agent) ForceRollback(id, reason string) (*models.Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := a.observer.Snapshot()
	oc, err := a.executor.ForceRollback(id, reason, snap.Summary())
	if oc != nil {
		a.learner.RecordOutcome(*oc)
	}
	return oc, err
}

// Approve arms a one-shot approval for semi-automatic actions on a target.
func (a *Agent) Approve(target string) {
	a.executor.Approve(target)
}

// ClearSuspension lifts a rollback-failure suspension from a target.
func (a *Agent) ClearSuspension(target string) {
	a.executor.ClearSuspension(target)
}

// Status assembles the read-only view of the whole agent.
func (a *Agent) Status() models.StatusSummary {
	snap := a.observer.Snapshot()
	cycle, last := a.st.cycleInfo()
	active := a.executor.Active()

	var breakers, suppressed, rerouted []string
	for _, iv := range active {
		switch iv.Action.Type {
		case models.ActionCircuitBreaker:
			breakers = append(breakers, iv.Action.Target)
		case models.ActionMethodSuppress:
			suppressed = append(suppressed, iv.Action.Target)
		case models.ActionRouteChange:
			rerouted = append(rerouted, iv.Action.Target)
		}
	}

	return models.StatusSummary{
		Active:              a.running.Load(),
		CycleCount:          cycle,
		LastCycle:           last,
		WindowVolume:        snap.Overall.Total,
		SuccessRate:         snap.Overall.SuccessRate,
		AvgLatencyMS:        snap.Overall.Latency.Mean,
		ActiveInterventions: active,
		CircuitBreakers:     breakers,
		SuppressedMethods:   suppressed,
		RouteOverrides:      rerouted,
		SuspendedTargets:    a.executor.Suspended(),
		ActionsLastHour:     a.executor.ActionsLastHour(),
		RollbacksLastHour:   a.executor.RollbacksLastHour(),
		Weights:             a.learner.Weights(),
		PatternPrecision:    a.learner.PatternPrecision(),
		ThresholdAdvice:     a.learner.ThresholdAdvice(),
		ActionScorecards:    a.learner.Scorecards(),
		RecentAlerts:        a.st.recentAlerts(10),
	}
}

// Snapshot exposes the current window statistics.
func (a *Agent) Snapshot() models.WindowSnapshot {
	return a.observer.Snapshot()
}

// Decisions returns the most recent n decision records, oldest first.
func (a *Agent) Decisions(n int) []*models.Decision {
	return a.st.recentDecisions(n)
}

// Decision looks up one decision by ID for the explanation surface.
func (a *Agent) Decision(id string) *models.Decision {
	return a.st.findDecision(id)
}

// Reports returns the most recent n cycle reports, oldest first.
func (a *Agent) Reports(n int) []*models.CycleReport {
	return a.st.recentReports(n)
}

// Alerts returns the most recent n alerts, oldest first.
func (a *Agent) Alerts(n int) []models.Alert {
	return a.st.recentAlerts(n)
}

// Active returns copies of the active interventions.
func (a *Agent) Active() []models.Intervention {
	return a.executor.Active()
}

// IsAlive and IsReady back the health endpoints.
func (a *Agent) IsAlive() error {
	return nil
}

func (a *Agent) IsReady() error {
	if cycle, _ := a.st.cycleInfo(); cycle == 0 && !a.running.Load() {
		return errors.New("control loop has not run yet")
	}
	return nil
}
