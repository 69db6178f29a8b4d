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

package observe

import (
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payops-labs/payment-sentinel/pkg/api"
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

func initObserver(t *testing.T) (*Observer, *clock.Mock) {
	mck := clock.NewMock()
	mck.Set(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cfg := api.DefaultAgentConfig()
	obs := NewObserver(cfg, mck)
	require.NotNil(t, obs)
	return obs, mck
}

func testTxn(now time.Time, id int, issuer string, status models.TransactionStatus, latency float64) models.Transaction {
	txn := models.Transaction{
		ID:        fmt.Sprintf("txn-%d", id),
		Timestamp: now,
		Issuer:    issuer,
		Method:    "upi",
		Region:    "NORTH",
		Merchant:  "merchant-1",
		Amount:    499.0,
		Status:    status,
		LatencyMS: latency,
	}
	if status == models.StatusFailure {
		txn.ErrorCode = "TIMEOUT"
	}
	return txn
}

func TestObserverRejectsMalformed(t *testing.T) {
	obs, mck := initObserver(t)
	now := mck.Now()

	bad := []models.Transaction{
		{Timestamp: now, Issuer: "HDFC_BANK", Method: "upi", Region: "NORTH", Status: models.StatusSuccess},
		{ID: "t1", Issuer: "HDFC_BANK", Method: "upi", Region: "NORTH", Status: models.StatusSuccess},
		testTxn(now.Add(time.Minute), 2, "HDFC_BANK", models.StatusSuccess, 100),
		{ID: "t3", Timestamp: now, Method: "upi", Region: "NORTH", Status: models.StatusSuccess},
		{ID: "t4", Timestamp: now, Issuer: "HDFC_BANK", Method: "upi", Region: "NORTH", Status: "pending"},
	}
	for _, txn := range bad {
		err := obs.Ingest(txn)
		require.Error(t, err)
		var malformed *MalformedTransactionError
		require.ErrorAs(t, err, &malformed)
	}

	require.NoError(t, obs.Ingest(testTxn(now, 10, "HDFC_BANK", models.StatusSuccess, 120)))

	snap := obs.Snapshot()
	assert.Equal(t, 1, snap.Overall.Total)
	assert.Equal(t, len(bad), snap.Malformed)
}

func TestObserverFutureTolerance(t *testing.T) {
	obs, mck := initObserver(t)
	now := mck.Now()

	// within tolerance
	require.NoError(t, obs.Ingest(testTxn(now.Add(2*time.Second), 1, "SBI", models.StatusSuccess, 90)))
	// beyond tolerance
	err := obs.Ingest(testTxn(now.Add(time.Minute), 2, "SBI", models.StatusSuccess, 90))
	require.Error(t, err)
}

func TestWindowEviction(t *testing.T) {
	obs, mck := initObserver(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, obs.Ingest(testTxn(mck.Now(), i, "ICICI_BANK", models.StatusSuccess, 100)))
		mck.Add(time.Minute)
	}
	// mock is now 5 minutes past the first transaction; all 5 still inside
	// the 10 minute window
	require.Equal(t, 5, obs.WindowSize())

	mck.Add(7 * time.Minute)
	// first two transactions are now older than 10 minutes
	require.Equal(t, 3, obs.WindowSize())

	mck.Add(time.Hour)
	require.Equal(t, 0, obs.WindowSize())
	snap := obs.Snapshot()
	assert.Equal(t, 0, snap.Overall.Total)
	assert.Empty(t, snap.Issuers)
}

func TestStaleTransactionRejected(t *testing.T) {
	obs, mck := initObserver(t)
	now := mck.Now()

	require.NoError(t, obs.Ingest(testTxn(now, 1, "SBI", models.StatusSuccess, 100)))

	// stamped well before the 10 minute window bound, arriving late
	err := obs.Ingest(testTxn(now.Add(-30*time.Minute), 2, "HDFC_BANK", models.StatusFailure, 900))
	require.Error(t, err)
	var malformed *MalformedTransactionError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "stale_timestamp", malformed.Reason)

	snap := obs.Snapshot()
	assert.Equal(t, 1, snap.Overall.Total)
	assert.NotContains(t, snap.Issuers, "HDFC_BANK")
}

func TestOutOfOrderEviction(t *testing.T) {
	obs, mck := initObserver(t)
	now := mck.Now()

	// newer transaction arrives before an older in-window one
	require.NoError(t, obs.Ingest(testTxn(now, 1, "ICICI_BANK", models.StatusSuccess, 100)))
	require.NoError(t, obs.Ingest(testTxn(now.Add(-9*time.Minute), 2, "AXIS_BANK", models.StatusFailure, 400)))
	require.Equal(t, 2, obs.WindowSize())

	// the older one crosses the window bound first despite arriving second
	mck.Add(2 * time.Minute)
	snap := obs.Snapshot()
	assert.Equal(t, 1, snap.Overall.Total)
	assert.NotContains(t, snap.Issuers, "AXIS_BANK")
	assert.Contains(t, snap.Issuers, "ICICI_BANK")
}

func TestSnapshotAggregates(t *testing.T) {
	obs, mck := initObserver(t)
	now := mck.Now()

	for i := 0; i < 8; i++ {
		require.NoError(t, obs.Ingest(testTxn(now, i, "HDFC_BANK", models.StatusSuccess, float64(100+i*10))))
	}
	for i := 8; i < 10; i++ {
		require.NoError(t, obs.Ingest(testTxn(now, i, "HDFC_BANK", models.StatusFailure, 800)))
	}
	retry := testTxn(now, 100, "AXIS_BANK", models.StatusSuccess, 150)
	retry.RetryCount = 2
	require.NoError(t, obs.Ingest(retry))

	snap := obs.Snapshot()
	require.Equal(t, 11, snap.Overall.Total)

	hdfc := snap.Issuers["HDFC_BANK"]
	assert.Equal(t, 10, hdfc.Total)
	assert.InDelta(t, 0.8, hdfc.SuccessRate, 1e-9)
	assert.Equal(t, 2, hdfc.Failure)
	assert.Equal(t, 800.0, hdfc.Latency.Max)
	assert.Greater(t, hdfc.Latency.P95, hdfc.Latency.P50)

	assert.Equal(t, 2, snap.ErrorCodes["TIMEOUT"])
	assert.Equal(t, 1, snap.RetryCount)
	assert.InDelta(t, 1.0, snap.RetryEfficiency, 1e-9)
	assert.InDelta(t, 1.0, snap.Issuers["AXIS_BANK"].SuccessRate, 1e-9)
	assert.Equal(t, 11, snap.Methods["upi"].Total)
	assert.Equal(t, 11, snap.Regions["NORTH"].Total)
}

func TestPercentileNearestRank(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	assert.Equal(t, 50.0, percentile(sorted, 0.50))
	assert.Equal(t, 100.0, percentile(sorted, 0.95))
	assert.Equal(t, 100.0, percentile(sorted, 0.99))
	assert.Equal(t, 10.0, percentile(sorted, 0.0))
	assert.Equal(t, 0.0, percentile(nil, 0.5))
}

func TestBaselineUpdateSkipsUnhealthySlices(t *testing.T) {
	obs, mck := initObserver(t)
	now := mck.Now()

	// healthy issuer, enough volume
	for i := 0; i < 30; i++ {
		require.NoError(t, obs.Ingest(testTxn(now, i, "SBI", models.StatusSuccess, 100)))
	}
	// degraded issuer, enough volume
	for i := 30; i < 60; i++ {
		require.NoError(t, obs.Ingest(testTxn(now, i, "YES_BANK", models.StatusFailure, 500)))
	}

	before := obs.Baseline()
	snap := obs.Snapshot()
	obs.UpdateBaseline(&snap)
	after := obs.Baseline()

	// SBI moved toward its observed 1.0 rate
	assert.Greater(t, after.IssuerRate("SBI"), before.IssuerRate("SBI"))
	// YES_BANK is below the healthy threshold, its baseline stays at default
	assert.Equal(t, before.IssuerRate("YES_BANK"), after.IssuerRate("YES_BANK"))
}
