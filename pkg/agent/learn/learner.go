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

package learn

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/payops-labs/payment-sentinel/pkg/api"
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

var llog = logrus.WithField("component", "learn.Learner")

type patternStats struct {
	truePositives  int
	falsePositives int
}

func (ps *patternStats) precision() float64 {
	total := ps.truePositives + ps.falsePositives
	if total == 0 {
		return 0
	}
	return float64(ps.truePositives) / float64(total)
}

// Learner accumulates intervention outcomes and adapts the objective
// weights and detector-threshold advice from them.
type Learner struct {
	mu  sync.Mutex
	cfg api.LearningConfig

	weights  models.Weights
	outcomes map[string][]models.Outcome // by action key, bounded
	patterns map[models.PatternType]*patternStats

	cyclesSinceAdapt int
	adaptations      int
}

func NewLearner(cfg api.LearningConfig, initial models.Weights) *Learner {
	llog.Infof("NewLearner rate=%v adaptEvery=%d bounds=[%v,%v]", cfg.LearningRate, cfg.AdaptEvery, cfg.MinWeight, cfg.MaxWeight)
	return &Learner{
		cfg:      cfg,
		weights:  initial.Normalized(),
		outcomes: map[string][]models.Outcome{},
		patterns: map[models.PatternType]*patternStats{},
	}
}

// Weights returns the current normalized objective weights.
func (l *Learner) Weights() models.Weights {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.weights
}

// RecordOutcome folds one resolved intervention into the per-action history
// and the per-pattern precision ledger. A detection counts as a true
// positive only when the measured success-rate improvement clears the
// epsilon, so interventions that merely did no harm do not inflate
// precision.
func (l *Learner) RecordOutcome(oc models.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	hist := append(l.outcomes[oc.ActionKey], oc)
	if limit := l.cfg.HistoryLimit; limit > 0 && len(hist) > limit {
		hist = hist[len(hist)-limit:]
	}
	l.outcomes[oc.ActionKey] = hist

	if oc.PatternType != "" {
		ps, ok := l.patterns[oc.PatternType]
		if !ok {
			ps = &patternStats{}
			l.patterns[oc.PatternType] = ps
		}
		improved := oc.Resolution == models.StateExpired &&
			oc.ActualImpact.SuccessRateDelta > l.cfg.ImpactEpsilon
		if improved {
			ps.truePositives++
		} else {
			ps.falsePositives++
		}
	}
	outcomesRecorded.WithLabelValues(string(oc.Resolution)).Inc()
}

// OnCycleEnd advances the adaptation counter and, every AdaptEvery cycles,
// nudges each objective weight toward the objectives that recent outcomes
// actually delivered on. Weights are clamped and renormalized; returns true
// when an adaptation ran.
func (l *Learner) OnCycleEnd() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cyclesSinceAdapt++
	if l.cfg.AdaptEvery <= 0 || l.cyclesSinceAdapt < l.cfg.AdaptEvery {
		return false
	}
	l.cyclesSinceAdapt = 0

	perf, n := l.objectivePerformance()
	if n == 0 {
		return false
	}
	lr := l.cfg.LearningRate
	w := l.weights
	w.SuccessRate = l.clampWeight(w.SuccessRate + lr*(perf.SuccessRate-0.5))
	w.Latency = l.clampWeight(w.Latency + lr*(perf.Latency-0.5))
	w.Cost = l.clampWeight(w.Cost + lr*(perf.Cost-0.5))
	w.Risk = l.clampWeight(w.Risk + lr*(perf.Risk-0.5))
	l.weights = w.Normalized()
	l.adaptations++
	weightAdaptations.Inc()
	llog.Infof("weights adapted from %d outcomes: success=%.3f latency=%.3f cost=%.3f risk=%.3f",
		n, l.weights.SuccessRate, l.weights.Latency, l.weights.Cost, l.weights.Risk)
	return true
}

// objectivePerformance averages, over all retained outcomes, how well each
// objective came out. Scores live on [0,1] with 0.5 neutral, mirroring the
// decision stage's scale.
func (l *Learner) objectivePerformance() (models.ObjectiveScores, int) {
	var sum models.ObjectiveScores
	n := 0
	for _, hist := range l.outcomes {
		for _, oc := range hist {
			sum.SuccessRate += clampScore(0.5 + oc.ActualImpact.SuccessRateDelta/0.4)
			sum.Latency += clampScore(0.5 - oc.ActualImpact.LatencyDeltaMS/400.0)
			if oc.EstimatedImpact.CostDeltaPerTxn <= 0 {
				sum.Cost += 1.0
			} else {
				sum.Cost += clampScore(0.5 - oc.EstimatedImpact.CostDeltaPerTxn*10)
			}
			if oc.Resolution == models.StateRolledBack {
				// the risk materialized
				sum.Risk += 0.0
			} else {
				sum.Risk += 1.0
			}
			n++
		}
	}
	if n == 0 {
		return sum, 0
	}
	inv := 1.0 / float64(n)
	return models.ObjectiveScores{
		SuccessRate: sum.SuccessRate * inv,
		Latency:     sum.Latency * inv,
		Cost:        sum.Cost * inv,
		Risk:        sum.Risk * inv,
	}, n
}

func (l *Learner) clampWeight(w float64) float64 {
	if w < l.cfg.MinWeight {
		return l.cfg.MinWeight
	}
	if w > l.cfg.MaxWeight {
		return l.cfg.MaxWeight
	}
	return w
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

// PatternPrecision returns the observed precision per pattern type.
func (l *Learner) PatternPrecision() map[models.PatternType]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[models.PatternType]float64, len(l.patterns))
	for pt, ps := range l.patterns {
		out[pt] = ps.precision()
	}
	return out
}

// ThresholdAdvice recommends a scaling factor per pattern type: above 1 to
// raise thresholds when precision is poor (too many useless detections),
// below 1 to lower them when precision is near perfect (room to catch
// fainter signals). Types without enough signal get no entry.
func (l *Learner) ThresholdAdvice() map[models.PatternType]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := map[models.PatternType]float64{}
	for pt, ps := range l.patterns {
		if ps.truePositives+ps.falsePositives < 3 {
			continue
		}
		p := ps.precision()
		switch {
		case p < l.cfg.LowPrecision:
			out[pt] = l.cfg.ThresholdUp
		case p > l.cfg.HighPrecision:
			out[pt] = l.cfg.ThresholdDown
		}
	}
	return out
}

// Scorecards summarizes the retained outcomes per action key.
func (l *Learner) Scorecards() map[string]models.ActionScorecard {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]models.ActionScorecard, len(l.outcomes))
	for key, hist := range l.outcomes {
		if len(hist) == 0 {
			continue
		}
		var successSum, latencySum, errSum float64
		for _, oc := range hist {
			successSum += oc.ActualImpact.SuccessRateDelta
			latencySum += -oc.ActualImpact.LatencyDeltaMS
			errSum += oc.PredictionError
		}
		n := float64(len(hist))
		out[key] = models.ActionScorecard{
			SampleSize:            len(hist),
			AvgSuccessImprovement: successSum / n,
			AvgLatencyImprovement: latencySum / n,
			PredictionAccuracy:    clampScore(1.0 - errSum/n/0.2),
		}
	}
	return out
}

// Adaptations returns how many weight adaptations have run.
func (l *Learner) Adaptations() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.adaptations
}
