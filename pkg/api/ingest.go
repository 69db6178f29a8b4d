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

type IngestFile struct {
	Filename string `yaml:"filename" json:"filename" doc:"path to a file of JSON transactions, one per line"`
	Loop     bool   `yaml:"loop" json:"loop" doc:"replay the file in a loop instead of stopping at EOF"`
	Chunks   int    `yaml:"chunks" json:"chunks" doc:"transactions submitted per batch"`
}

type IngestKafka struct {
	Brokers     []string `yaml:"brokers" json:"brokers" doc:"list of Kafka broker addresses"`
	Topic       string   `yaml:"topic" json:"topic" doc:"topic carrying transaction events"`
	GroupID     string   `yaml:"groupID" json:"groupID" doc:"consumer group; offsets are committed after submission"`
	StartOffset string   `yaml:"startOffset" json:"startOffset" doc:"FirstOffset (oldest) or LastOffset (newest), defaults to FirstOffset"`
	BatchMaxLen int      `yaml:"batchMaxLen" json:"batchMaxLen" doc:"maximum batch length submitted to the agent at once"`
}

type IngestSynthetic struct {
	Rate            float64 `yaml:"rate" json:"rate" doc:"transactions generated per second"`
	Seed            int64   `yaml:"seed" json:"seed" doc:"PRNG seed, fixed seeds give reproducible streams"`
	BaseSuccessRate float64 `yaml:"baseSuccessRate" json:"baseSuccessRate" doc:"success rate of healthy traffic"`
	Scenario        string  `yaml:"scenario" json:"scenario" doc:"optional fault to inject: issuer_outage, retry_storm, latency_spike, regional_failure"`
	ScenarioTarget  string  `yaml:"scenarioTarget" json:"scenarioTarget" doc:"issuer or region the scenario degrades, defaults per scenario"`
	ScenarioAfter   Duration `yaml:"scenarioAfter" json:"scenarioAfter" doc:"healthy warm-up period before the scenario starts"`
}
