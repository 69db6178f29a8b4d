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

package main

import (
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payops-labs/payment-sentinel/pkg/config"
)

func TestBuildIngester(t *testing.T) {
	clk := clock.NewMock()

	cfg, err := config.ParseConfig(&config.Options{})
	require.NoError(t, err)
	ing, err := buildIngester(cfg, clk)
	require.NoError(t, err)
	assert.Nil(t, ing)

	cfg, err = config.ParseConfig(&config.Options{
		Ingest: `{"type":"synthetic","synthetic":{"rate":10,"seed":1}}`,
	})
	require.NoError(t, err)
	ing, err = buildIngester(cfg, clk)
	require.NoError(t, err)
	assert.NotNil(t, ing)

	cfg.Ingest.Type = "carrier_pigeon"
	_, err = buildIngester(cfg, clk)
	require.Error(t, err)
}

func TestInitFlags(t *testing.T) {
	initFlags()
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("agent"))
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("ingest"))
	assert.Equal(t, "8090", rootCmd.PersistentFlags().Lookup("server.port").DefValue)
	assert.Equal(t, "8080", rootCmd.PersistentFlags().Lookup("health.port").DefValue)
}
