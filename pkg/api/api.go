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

const TagYaml = "yaml"
const TagDoc = "doc"

// API is the full configuration surface of the agent. The core never reads
// configuration files; the owning process builds these structs (see
// pkg/config) and passes them in at construction.
type API struct {
	Agent           AgentConfig     `yaml:"agent" doc:"## Agent API\nCore control-loop configuration:\n"`
	IngestFile      IngestFile      `yaml:"file" doc:"## File ingest API\nJSON-lines transaction file ingest:\n"`
	IngestKafka     IngestKafka     `yaml:"kafka" doc:"## Kafka ingest API\nKafka transaction topic ingest:\n"`
	IngestSynthetic IngestSynthetic `yaml:"synthetic" doc:"## Synthetic ingest API\nScenario-driven transaction generator:\n"`
}
