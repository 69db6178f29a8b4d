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
	"encoding/json"
	"reflect"
	"time"

	ms "github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/payops-labs/payment-sentinel/pkg/api"
)

// Options holds the raw command-line/env values. Agent and Ingest carry JSON
// documents so a whole section can be passed through one flag or variable.
type Options struct {
	Agent         string
	Ingest        string
	CycleInterval string
	Server        Server
	Health        Health
	Profile       Profile
}

type Server struct {
	Address string
	Port    string
}

type Health struct {
	Address string
	Port    string
}

type Profile struct {
	Port int
}

// Ingest selects the transaction source. Only the section matching Type is
// read.
type Ingest struct {
	Type      string              `json:"type"`
	File      api.IngestFile      `json:"file"`
	Kafka     api.IngestKafka     `json:"kafka"`
	Synthetic api.IngestSynthetic `json:"synthetic"`
}

// Config is the parsed, validated configuration handed to the run loop.
type Config struct {
	Agent         api.AgentConfig
	Ingest        Ingest
	CycleInterval time.Duration
}

const defaultCycleInterval = 30 * time.Second

// ParseConfig builds the runtime configuration from the raw options. Agent
// overrides are applied on top of the defaults, so a partial document only
// changes the fields it names.
func ParseConfig(opts *Options) (*Config, error) {
	cfg := &Config{
		Agent:         api.DefaultAgentConfig(),
		CycleInterval: defaultCycleInterval,
	}
	if opts.Agent != "" {
		if err := decodeJSON(opts.Agent, &cfg.Agent); err != nil {
			return nil, errors.Wrap(err, "parsing agent config")
		}
	}
	if opts.Ingest != "" {
		if err := decodeJSON(opts.Ingest, &cfg.Ingest); err != nil {
			return nil, errors.Wrap(err, "parsing ingest config")
		}
	}
	if opts.CycleInterval != "" {
		interval, err := time.ParseDuration(opts.CycleInterval)
		if err != nil {
			return nil, errors.Wrap(err, "parsing cycle interval")
		}
		cfg.CycleInterval = interval
	}
	return cfg, nil
}

// decodeJSON unmarshals to a generic map first and decodes that onto the
// (pre-populated) target, so absent keys keep their default values.
func decodeJSON(raw string, out interface{}) error {
	var generic map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return err
	}
	decoder, err := ms.NewDecoder(&ms.DecoderConfig{
		DecodeHook: durationHook,
		TagName:    "json",
		Result:     out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(generic)
}

// durationHook lets duration fields be written as "10m" in JSON documents.
func durationHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(api.Duration{}) {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, err
		}
		return api.Duration{Duration: parsed}, nil
	case float64:
		return api.Duration{Duration: time.Duration(v)}, nil
	default:
		return data, nil
	}
}
