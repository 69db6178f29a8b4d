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

package api

import "time"

// Threshold is a warning/critical pair for one pattern detector. The
// detector triggers at warning; effect confidence ramps linearly from 0 at
// warning to 1 at critical.
type Threshold struct {
	Warning  float64 `yaml:"warning" json:"warning" doc:"deviation at which the detector starts reporting"`
	Critical float64 `yaml:"critical" json:"critical" doc:"deviation treated as a fully developed effect"`
}

// AgentConfig is the immutable configuration handed to the core at
// construction.
type AgentConfig struct {
	WindowDuration    Duration `yaml:"windowDuration" json:"windowDuration" doc:"sliding window retention, eviction is strictly by elapsed time"`
	FutureTolerance   Duration `yaml:"futureTolerance" json:"futureTolerance" doc:"max accepted clock skew on transaction timestamps"`
	MinSeverityToAct  float64  `yaml:"minSeverityToAct" json:"minSeverityToAct" doc:"patterns below this severity are recorded but not acted on"`
	CycleHistoryLimit int      `yaml:"cycleHistoryLimit" json:"cycleHistoryLimit" doc:"bounded length of the decision/outcome history"`
	AlertHistoryLimit int      `yaml:"alertHistoryLimit" json:"alertHistoryLimit" doc:"bounded length of the operator alert log"`

	Baseline      BaselineConfig    `yaml:"baseline" json:"baseline"`
	Reasoner      ReasonerConfig    `yaml:"reasoner" json:"reasoner"`
	Objectives    ObjectivesConfig  `yaml:"objectives" json:"objectives"`
	Guardrails    GuardrailsConfig  `yaml:"guardrails" json:"guardrails"`
	Rollback      RollbackConfig    `yaml:"rollback" json:"rollback"`
	Learning      LearningConfig    `yaml:"learning" json:"learning"`
	Authorization map[string]string `yaml:"authorization" json:"authorization" doc:"action type to required authorization level (automatic, semi_automatic, manual)"`
}

type BaselineConfig struct {
	Alpha       float64 `yaml:"alpha" json:"alpha" doc:"EWMA factor for baseline updates"`
	MinVolume   int     `yaml:"minVolume" json:"minVolume" doc:"minimum slice volume for a baseline update"`
	HealthyRate float64 `yaml:"healthyRate" json:"healthyRate" doc:"success rate below which a slice is not folded into the baseline"`
}

type ReasonerConfig struct {
	MinSamples           int                  `yaml:"minSamples" json:"minSamples" doc:"sample count below which detectors abstain"`
	ErrorClusterMinCount int                  `yaml:"errorClusterMinCount" json:"errorClusterMinCount" doc:"occurrences of one error code required to form a cluster"`
	SizeMidpoint         float64              `yaml:"sizeMidpoint" json:"sizeMidpoint" doc:"sample count at which size confidence reaches 0.5"`
	SizeSteepness        float64              `yaml:"sizeSteepness" json:"sizeSteepness" doc:"steepness of the logistic size-confidence curve"`
	Thresholds           map[string]Threshold `yaml:"thresholds" json:"thresholds" doc:"per pattern type warning/critical thresholds"`
}

type ObjectivesConfig struct {
	SuccessRate float64 `yaml:"successRate" json:"successRate" doc:"initial weight on success-rate improvement"`
	Latency     float64 `yaml:"latency" json:"latency" doc:"initial weight on latency improvement"`
	Cost        float64 `yaml:"cost" json:"cost" doc:"initial weight on inverse cost"`
	Risk        float64 `yaml:"risk" json:"risk" doc:"initial weight on inverse risk"`
}

type GuardrailsConfig struct {
	MaxActionsPerHour   int                `yaml:"maxActionsPerHour" json:"maxActionsPerHour" doc:"hard limit on authorized actions per rolling hour"`
	MaxRollbacksPerHour int                `yaml:"maxRollbacksPerHour" json:"maxRollbacksPerHour" doc:"hard limit on rollbacks per rolling hour"`
	TrafficCeilings     map[string]float64 `yaml:"trafficCeilings" json:"trafficCeilings" doc:"per risk tier ceiling on cumulative traffic impact of active interventions"`
	ApprovalTTL         Duration           `yaml:"approvalTTL" json:"approvalTTL" doc:"how long an armed semi-automatic approval stays valid"`
}

type RollbackConfig struct {
	SuccessRateDrop   float64  `yaml:"successRateDrop" json:"successRateDrop" doc:"absolute success-rate drop vs activation baseline that triggers rollback"`
	LatencyIncrease   float64  `yaml:"latencyIncrease" json:"latencyIncrease" doc:"fractional latency increase vs activation baseline that triggers rollback"`
	ErrorRateIncrease float64  `yaml:"errorRateIncrease" json:"errorRateIncrease" doc:"absolute error-rate increase vs activation baseline that triggers rollback"`
	DefaultTTL        Duration `yaml:"defaultTTL" json:"defaultTTL" doc:"intervention TTL when the action does not set one"`
}

type LearningConfig struct {
	LearningRate  float64 `yaml:"learningRate" json:"learningRate" doc:"step size of weight nudges"`
	AdaptEvery    int     `yaml:"adaptEvery" json:"adaptEvery" doc:"cycles between weight adaptations"`
	MinWeight     float64 `yaml:"minWeight" json:"minWeight" doc:"lower clamp on each objective weight"`
	MaxWeight     float64 `yaml:"maxWeight" json:"maxWeight" doc:"upper clamp on each objective weight"`
	ImpactEpsilon float64 `yaml:"impactEpsilon" json:"impactEpsilon" doc:"actual success-rate improvement above which a detection counts as a true positive"`
	LowPrecision  float64 `yaml:"lowPrecision" json:"lowPrecision" doc:"precision below which raising the detector threshold is recommended"`
	HighPrecision float64 `yaml:"highPrecision" json:"highPrecision" doc:"precision above which lowering the detector threshold is recommended"`
	ThresholdUp   float64 `yaml:"thresholdUp" json:"thresholdUp" doc:"multiplier applied when raising a threshold"`
	ThresholdDown float64 `yaml:"thresholdDown" json:"thresholdDown" doc:"multiplier applied when lowering a threshold"`
	SelfTune      bool    `yaml:"selfTune" json:"selfTune" doc:"apply threshold recommendations instead of only exposing them"`
	HistoryLimit  int     `yaml:"historyLimit" json:"historyLimit" doc:"outcomes retained per action key"`
}

// DefaultAgentConfig returns the fully populated default configuration.
// Callers overriding single values should start from here; the core assumes
// a complete configuration.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		WindowDuration:    Duration{10 * time.Minute},
		FutureTolerance:   Duration{5 * time.Second},
		MinSeverityToAct:  0.3,
		CycleHistoryLimit: 200,
		AlertHistoryLimit: 100,
		Baseline: BaselineConfig{
			Alpha:       0.1,
			MinVolume:   20,
			HealthyRate: 0.90,
		},
		Reasoner: ReasonerConfig{
			MinSamples:           10,
			ErrorClusterMinCount: 10,
			SizeMidpoint:         50,
			SizeSteepness:        0.05,
			Thresholds: map[string]Threshold{
				"issuer_degradation": {Warning: 0.15, Critical: 0.30},
				"retry_storm":        {Warning: 0.40, Critical: 0.60},
				"method_fatigue":     {Warning: 0.20, Critical: 0.40},
				"latency_spike":      {Warning: 0.50, Critical: 2.00},
				"error_cluster":      {Warning: 0.05, Critical: 0.10},
				"geographic_failure": {Warning: 0.20, Critical: 0.40},
			},
		},
		Objectives: ObjectivesConfig{
			SuccessRate: 0.40,
			Latency:     0.25,
			Cost:        0.20,
			Risk:        0.15,
		},
		Guardrails: GuardrailsConfig{
			MaxActionsPerHour:   10,
			MaxRollbacksPerHour: 3,
			TrafficCeilings: map[string]float64{
				"low":      0.60,
				"medium":   0.50,
				"high":     0.30,
				"critical": 0.10,
			},
			ApprovalTTL: Duration{30 * time.Minute},
		},
		Rollback: RollbackConfig{
			SuccessRateDrop:   0.05,
			LatencyIncrease:   0.50,
			ErrorRateIncrease: 0.10,
			DefaultTTL:        Duration{10 * time.Minute},
		},
		Learning: LearningConfig{
			LearningRate:  0.1,
			AdaptEvery:    10,
			MinWeight:     0.05,
			MaxWeight:     0.60,
			ImpactEpsilon: 0.005,
			LowPrecision:  0.70,
			HighPrecision: 0.95,
			ThresholdUp:   1.2,
			ThresholdDown: 0.9,
			HistoryLimit:  50,
		},
		Authorization: map[string]string{
			"circuit_breaker": "automatic",
			"adjust_retry":    "automatic",
			"route_change":    "semi_automatic",
			"method_suppress": "manual",
			"alert_ops":       "automatic",
			"no_action":       "automatic",
		},
	}
}
