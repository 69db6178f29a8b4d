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

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/payops-labs/payment-sentinel/pkg/api"
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

var rlog = logrus.WithField("component", "reason.Reasoner")

// Reasoner runs the pattern detectors over a snapshot. It is stateless
// between cycles except for the tunable thresholds, which the learner may
// adjust when self-tuning is enabled.
type Reasoner struct {
	cfg        api.ReasonerConfig
	thresholds map[models.PatternType]api.Threshold
}

func NewReasoner(cfg api.ReasonerConfig) *Reasoner {
	thresholds := make(map[models.PatternType]api.Threshold, len(cfg.Thresholds))
	for name, th := range cfg.Thresholds {
		thresholds[models.PatternType(name)] = th
	}
	rlog.Infof("NewReasoner minSamples=%d sizeMidpoint=%v detectors=%d", cfg.MinSamples, cfg.SizeMidpoint, len(detectors))
	return &Reasoner{cfg: cfg, thresholds: thresholds}
}

func (r *Reasoner) threshold(pt models.PatternType) api.Threshold {
	return r.thresholds[pt]
}

// Threshold exposes the current threshold for one pattern type.
func (r *Reasoner) Threshold(pt models.PatternType) api.Threshold {
	return r.threshold(pt)
}

// ScaleThreshold multiplies both bounds of one pattern type's threshold.
// Used by the learner when self-tuning is enabled.
func (r *Reasoner) ScaleThreshold(pt models.PatternType, factor float64) {
	th := r.thresholds[pt]
	th.Warning *= factor
	th.Critical *= factor
	r.thresholds[pt] = th
	rlog.WithField("pattern", pt).Infof("threshold scaled by %.2f to warning=%.3f critical=%.3f", factor, th.Warning, th.Critical)
}

func (r *Reasoner) newPattern(pt models.PatternType, dimension, target string,
	deviation float64, samples int, th api.Threshold, now time.Time,
	description string, metrics map[string]float64, evidence ...string) models.Pattern {
	return models.Pattern{
		ID:          uuid.NewString(),
		Type:        pt,
		Dimension:   dimension,
		Target:      target,
		Severity:    severity(deviation, th),
		Confidence:  confidence(samples, deviation, th, &r.cfg),
		Description: description,
		Metrics:     metrics,
		Evidence:    evidence,
		DetectedAt:  now,
	}
}

// Analyze runs all detectors in their fixed order. When several patterns
// share a target, only the highest ranked one is forwarded, so the decision
// stage never weighs two explanations of the same slice of traffic against
// each other. The losers come back as suppressed, kept for the record but
// never acted on.
func (r *Reasoner) Analyze(snap *models.WindowSnapshot, base *models.Baseline, now time.Time) (patterns, suppressed []models.Pattern) {
	var all []models.Pattern
	for _, detect := range detectors {
		all = append(all, detect(r, snap, base, now)...)
	}

	byTarget := map[string]int{}
	var out []models.Pattern
	for _, p := range all {
		if idx, seen := byTarget[p.Target]; seen {
			if p.Rank() > out[idx].Rank() {
				suppressed = append(suppressed, out[idx])
				out[idx] = p
			} else {
				suppressed = append(suppressed, p)
			}
			continue
		}
		byTarget[p.Target] = len(out)
		out = append(out, p)
	}

	for i := range out {
		patternsDetected.WithLabelValues(string(out[i].Type)).Inc()
		rlog.WithField("pattern", out[i].Type).Debugf("detected %s severity=%.2f confidence=%.2f", out[i].Target, out[i].Severity, out[i].Confidence)
	}
	for i := range suppressed {
		rlog.WithField("pattern", suppressed[i].Type).Debugf("suppressed for %s, outranked", suppressed[i].Target)
	}
	return out, suppressed
}
