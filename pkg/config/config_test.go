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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(&Options{})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Agent.WindowDuration.Duration)
	assert.Equal(t, 0.3, cfg.Agent.MinSeverityToAct)
	assert.Equal(t, 30*time.Second, cfg.CycleInterval)
	assert.Empty(t, cfg.Ingest.Type)
}

func TestParseConfigPartialAgentOverride(t *testing.T) {
	cfg, err := ParseConfig(&Options{
		Agent: `{"minSeverityToAct":0.5,"rollback":{"defaultTTL":"20m"},"guardrails":{"maxActionsPerHour":5}}`,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Agent.MinSeverityToAct)
	assert.Equal(t, 20*time.Minute, cfg.Agent.Rollback.DefaultTTL.Duration)
	assert.Equal(t, 5, cfg.Agent.Guardrails.MaxActionsPerHour)
	// untouched sections keep their defaults
	assert.Equal(t, 10*time.Minute, cfg.Agent.WindowDuration.Duration)
	assert.Equal(t, 0.05, cfg.Agent.Rollback.SuccessRateDrop)
	assert.Equal(t, 0.40, cfg.Agent.Objectives.SuccessRate)
}

func TestParseConfigIngest(t *testing.T) {
	cfg, err := ParseConfig(&Options{
		Ingest: `{"type":"kafka","kafka":{"brokers":["broker-1:9092"],"topic":"transactions","groupID":"sentinel"}}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "kafka", cfg.Ingest.Type)
	assert.Equal(t, []string{"broker-1:9092"}, cfg.Ingest.Kafka.Brokers)
	assert.Equal(t, "transactions", cfg.Ingest.Kafka.Topic)
}

func TestParseConfigSyntheticScenario(t *testing.T) {
	cfg, err := ParseConfig(&Options{
		Ingest: `{"type":"synthetic","synthetic":{"rate":100,"seed":7,"scenario":"issuer_outage","scenarioAfter":"2m"}}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "synthetic", cfg.Ingest.Type)
	assert.Equal(t, 100.0, cfg.Ingest.Synthetic.Rate)
	assert.Equal(t, 2*time.Minute, cfg.Ingest.Synthetic.ScenarioAfter.Duration)
}

func TestParseConfigCycleInterval(t *testing.T) {
	cfg, err := ParseConfig(&Options{CycleInterval: "10s"})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.CycleInterval)

	_, err = ParseConfig(&Options{CycleInterval: "often"})
	require.Error(t, err)
}

func TestParseConfigRejectsBadJSON(t *testing.T) {
	_, err := ParseConfig(&Options{Agent: `{"minSeverityToAct":`})
	require.Error(t, err)

	_, err = ParseConfig(&Options{Ingest: `[]`})
	require.Error(t, err)
}
