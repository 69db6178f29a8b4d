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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payops-labs/payment-sentinel/pkg/api"
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

func initLearner(t *testing.T) *Learner {
	cfg := api.DefaultAgentConfig()
	l := NewLearner(cfg.Learning, models.Weights{
		SuccessRate: cfg.Objectives.SuccessRate,
		Latency:     cfg.Objectives.Latency,
		Cost:        cfg.Objectives.Cost,
		Risk:        cfg.Objectives.Risk,
	})
	require.NotNil(t, l)
	return l
}

func goodOutcome(key string, pt models.PatternType) models.Outcome {
	return models.Outcome{
		InterventionID:  "iv-1",
		ActionKey:       key,
		PatternType:     pt,
		Resolution:      models.StateExpired,
		EstimatedImpact: models.Impact{SuccessRateDelta: 0.10, CostDeltaPerTxn: 0.01},
		ActualImpact:    models.Impact{SuccessRateDelta: 0.08, LatencyDeltaMS: -60},
		PredictionError: 0.02,
	}
}

func badOutcome(key string, pt models.PatternType) models.Outcome {
	return models.Outcome{
		InterventionID:  "iv-2",
		ActionKey:       key,
		PatternType:     pt,
		Resolution:      models.StateRolledBack,
		EstimatedImpact: models.Impact{SuccessRateDelta: 0.10, CostDeltaPerTxn: 0.01},
		ActualImpact:    models.Impact{SuccessRateDelta: -0.06, LatencyDeltaMS: 120},
		PredictionError: 0.16,
	}
}

func TestInitialWeightsNormalized(t *testing.T) {
	l := initLearner(t)
	w := l.Weights()
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
	assert.InDelta(t, 0.40, w.SuccessRate, 1e-9)
}

func TestPatternPrecision(t *testing.T) {
	l := initLearner(t)

	l.RecordOutcome(goodOutcome("circuit_breaker|HDFC_BANK", models.PatternIssuerDegradation))
	l.RecordOutcome(goodOutcome("circuit_breaker|ICICI_BANK", models.PatternIssuerDegradation))
	l.RecordOutcome(badOutcome("circuit_breaker|SBI", models.PatternIssuerDegradation))

	prec := l.PatternPrecision()
	assert.InDelta(t, 2.0/3.0, prec[models.PatternIssuerDegradation], 1e-9)
}

func TestExpiredWithoutImprovementIsFalsePositive(t *testing.T) {
	l := initLearner(t)
	oc := goodOutcome("adjust_retry|retry_behavior", models.PatternRetryStorm)
	oc.ActualImpact.SuccessRateDelta = 0.001 // below epsilon
	l.RecordOutcome(oc)

	prec := l.PatternPrecision()
	assert.Equal(t, 0.0, prec[models.PatternRetryStorm])
}

func TestWeightAdaptationRunsOnSchedule(t *testing.T) {
	l := initLearner(t)
	for i := 0; i < 6; i++ {
		l.RecordOutcome(goodOutcome("circuit_breaker|HDFC_BANK", models.PatternIssuerDegradation))
	}

	for i := 0; i < 9; i++ {
		assert.False(t, l.OnCycleEnd())
	}
	assert.True(t, l.OnCycleEnd())
	assert.Equal(t, 1, l.Adaptations())

	w := l.Weights()
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
	// all outcomes were clean expiries, so risk performance was perfect and
	// the risk weight grew
	assert.Greater(t, w.Risk, 0.15)
}

func TestWeightsStayWithinBounds(t *testing.T) {
	cfg := api.DefaultAgentConfig()
	l := NewLearner(cfg.Learning, models.Weights{SuccessRate: 0.40, Latency: 0.25, Cost: 0.20, Risk: 0.15})

	for round := 0; round < 30; round++ {
		for i := 0; i < 5; i++ {
			l.RecordOutcome(badOutcome("route_change|NORTH", models.PatternGeographicFailure))
		}
		for i := 0; i < cfg.Learning.AdaptEvery; i++ {
			l.OnCycleEnd()
		}
	}

	w := l.Weights()
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
	for _, v := range []float64{w.SuccessRate, w.Latency, w.Cost, w.Risk} {
		// renormalization may stretch the raw clamp, but no weight collapses
		// to zero or takes over the whole vector
		assert.Greater(t, v, 0.01)
		assert.Less(t, v, 0.75)
	}
}

func TestThresholdAdvice(t *testing.T) {
	cfg := api.DefaultAgentConfig()
	l := initLearner(t)

	// poor precision: 1 of 4 → raise
	l.RecordOutcome(goodOutcome("circuit_breaker|A", models.PatternIssuerDegradation))
	for i := 0; i < 3; i++ {
		l.RecordOutcome(badOutcome("circuit_breaker|B", models.PatternIssuerDegradation))
	}
	// perfect precision on enough samples → lower
	for i := 0; i < 4; i++ {
		l.RecordOutcome(goodOutcome("adjust_retry|retry_behavior", models.PatternRetryStorm))
	}
	// too few samples → no advice
	l.RecordOutcome(goodOutcome("route_change|EAST", models.PatternGeographicFailure))

	advice := l.ThresholdAdvice()
	assert.Equal(t, cfg.Learning.ThresholdUp, advice[models.PatternIssuerDegradation])
	assert.Equal(t, cfg.Learning.ThresholdDown, advice[models.PatternRetryStorm])
	_, ok := advice[models.PatternGeographicFailure]
	assert.False(t, ok)
}

func TestScorecards(t *testing.T) {
	l := initLearner(t)
	key := "circuit_breaker|HDFC_BANK"
	l.RecordOutcome(goodOutcome(key, models.PatternIssuerDegradation))
	l.RecordOutcome(goodOutcome(key, models.PatternIssuerDegradation))

	cards := l.Scorecards()
	card, ok := cards[key]
	require.True(t, ok)
	assert.Equal(t, 2, card.SampleSize)
	assert.InDelta(t, 0.08, card.AvgSuccessImprovement, 1e-9)
	assert.InDelta(t, 60.0, card.AvgLatencyImprovement, 1e-9)
	assert.InDelta(t, 0.9, card.PredictionAccuracy, 1e-9)
}

func TestOutcomeHistoryBounded(t *testing.T) {
	cfg := api.DefaultAgentConfig()
	cfg.Learning.HistoryLimit = 5
	l := NewLearner(cfg.Learning, models.Weights{SuccessRate: 1})

	key := "circuit_breaker|HDFC_BANK"
	for i := 0; i < 20; i++ {
		l.RecordOutcome(goodOutcome(key, models.PatternIssuerDegradation))
	}
	assert.Equal(t, 5, l.Scorecards()[key].SampleSize)
}
