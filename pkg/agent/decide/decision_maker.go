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
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/payops-labs/payment-sentinel/pkg/api"
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

var dlog = logrus.WithField("component", "decide.DecisionMaker")

// Input carries everything a decision depends on. Decide reads nothing else,
// so the same input always yields the same chosen action.
type Input struct {
	Pattern         models.Pattern
	Hypotheses      []models.Hypothesis
	WindowVolume    int
	Weights         models.Weights
	RecentRollbacks int
}

// DecisionMaker turns one pattern into one decision by scoring a fixed
// candidate set against the objective weights.
type DecisionMaker struct {
	cfg api.AgentConfig
}

func NewDecisionMaker(cfg api.AgentConfig) *DecisionMaker {
	return &DecisionMaker{cfg: cfg}
}

// Decide scores all candidates for the pattern and returns the full audit
// record. Ties keep the earlier candidate, candidate order is fixed.
func (d *DecisionMaker) Decide(in Input, now time.Time) models.Decision {
	weights := in.Weights.Normalized()
	cands := d.candidates(&in.Pattern, in.WindowVolume)

	scored := make([]models.ScoredAction, 0, len(cands))
	best := 0
	for i, a := range cands {
		sa := score(a, weights, in.RecentRollbacks)
		scored = append(scored, sa)
		if sa.Total > scored[best].Total {
			best = i
		}
	}

	chosen := scored[best]
	alternatives := make([]models.ScoredAction, 0, len(scored)-1)
	for i, sa := range scored {
		if i != best {
			alternatives = append(alternatives, sa)
		}
	}

	decisionsTotal.WithLabelValues(string(chosen.Action.Type)).Inc()
	dlog.WithField("pattern", in.Pattern.Type).Debugf("chose %s on %s total=%.3f over %d alternatives",
		chosen.Action.Type, chosen.Action.Target, chosen.Total, len(alternatives))

	return models.Decision{
		ID:           uuid.NewString(),
		Pattern:      in.Pattern,
		Hypotheses:   in.Hypotheses,
		Chosen:       chosen,
		Alternatives: alternatives,
		Weights:      weights,
		Timestamp:    now,
	}
}
