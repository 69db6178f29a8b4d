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

package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payops-labs/payment-sentinel/pkg/agent"
	"github.com/payops-labs/payment-sentinel/pkg/api"
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

var testJSON = jsoniter.ConfigCompatibleWithStandardLibrary

func initServer(t *testing.T) (*httptest.Server, *agent.Agent, *clock.Mock) {
	mck := clock.NewMock()
	mck.Set(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ag := agent.NewAgent(api.DefaultAgentConfig(), mck, nil)
	ts := httptest.NewServer(New("127.0.0.1:0", ag).Handler())
	t.Cleanup(ts.Close)
	return ts, ag, mck
}

func makeTxns(now time.Time, n int, issuer string, failPerTen int, code string) []models.Transaction {
	methods := []string{"credit_card", "debit_card", "upi", "net_banking", "wallet"}
	regions := []string{"NORTH", "SOUTH", "EAST", "WEST", "CENTRAL"}
	out := make([]models.Transaction, 0, n)
	for i := 0; i < n; i++ {
		txn := models.Transaction{
			ID:        fmt.Sprintf("%s-%04d", issuer, i),
			Timestamp: now,
			Issuer:    issuer,
			Method:    methods[i%len(methods)],
			Region:    regions[i%len(regions)],
			Amount:    500,
			Status:    models.StatusSuccess,
			LatencyMS: float64(180 + i%40),
		}
		if failPerTen > 0 && i%10 < failPerTen {
			txn.Status = models.StatusFailure
			txn.ErrorCode = code
			txn.LatencyMS = 260
		}
		out = append(out, txn)
	}
	return out
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	raw, err := testJSON.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	defer resp.Body.Close()
	require.NoError(t, testJSON.NewDecoder(resp.Body).Decode(out))
}

func TestSubmitAndStatus(t *testing.T) {
	ts, ag, mck := initServer(t)

	batch := append(makeTxns(mck.Now(), 250, "ICICI_BANK", 1, "TIMEOUT"),
		makeTxns(mck.Now(), 250, "SBI", 1, "TIMEOUT")...)
	resp := postJSON(t, ts.URL+"/api/v1/transactions", batch)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sr submitResponse
	decodeBody(t, resp, &sr)
	assert.Equal(t, 500, sr.Accepted)
	assert.Empty(t, sr.Rejected)

	ag.RunCycle()

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status models.StatusSummary
	decodeBody(t, resp, &status)
	assert.Equal(t, 1, status.CycleCount)
	assert.Equal(t, 500, status.WindowVolume)
	assert.InDelta(t, 0.9, status.SuccessRate, 0.01)
}

func TestSubmitReportsMalformed(t *testing.T) {
	ts, _, mck := initServer(t)

	batch := makeTxns(mck.Now(), 2, "SBI", 0, "")
	batch[1].ID = ""
	resp := postJSON(t, ts.URL+"/api/v1/transactions", batch)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sr submitResponse
	decodeBody(t, resp, &sr)
	assert.Equal(t, 1, sr.Accepted)
	require.Len(t, sr.Rejected, 1)
	assert.Contains(t, sr.Rejected[0], "missing_id")
}

func TestSubmitRejectsBadJSON(t *testing.T) {
	ts, _, _ := initServer(t)
	resp, err := http.Post(ts.URL+"/api/v1/transactions", "application/json",
		bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExplainabilityAndRollback(t *testing.T) {
	ts, ag, mck := initServer(t)

	healthy := append(makeTxns(mck.Now(), 250, "ICICI_BANK", 1, "TIMEOUT"),
		makeTxns(mck.Now(), 250, "SBI", 1, "TIMEOUT")...)
	_, errs := ag.Submit(healthy)
	require.Empty(t, errs)
	ag.Submit(makeTxns(mck.Now(), 200, "HDFC_BANK", 6, "ISSUER_DOWN"))
	ag.RunCycle()

	var decisions []*models.Decision
	resp, err := http.Get(ts.URL + "/api/v1/decisions")
	require.NoError(t, err)
	decodeBody(t, resp, &decisions)
	require.NotEmpty(t, decisions)

	resp, err = http.Get(ts.URL + "/api/v1/decisions/" + decisions[0].ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dec models.Decision
	decodeBody(t, resp, &dec)
	assert.Equal(t, decisions[0].ID, dec.ID)
	assert.NotEmpty(t, dec.Alternatives)

	resp, err = http.Get(ts.URL + "/api/v1/decisions/no-such-id")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var active []models.Intervention
	resp, err = http.Get(ts.URL + "/api/v1/interventions")
	require.NoError(t, err)
	decodeBody(t, resp, &active)
	require.NotEmpty(t, active)

	resp = postJSON(t, ts.URL+"/api/v1/interventions/"+active[0].ID+"/rollback",
		rollbackRequest{Reason: "post-incident cleanup"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var oc models.Outcome
	decodeBody(t, resp, &oc)
	assert.Equal(t, models.StateRolledBack, oc.Resolution)

	resp = postJSON(t, ts.URL+"/api/v1/interventions/unknown/rollback", rollbackRequest{})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApprovalsAndSuspensions(t *testing.T) {
	ts, _, _ := initServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/approvals", approvalRequest{Target: "HDFC_BANK"})
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/v1/approvals", approvalRequest{})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/suspensions/HDFC_BANK", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHistoryLimit(t *testing.T) {
	ts, ag, mck := initServer(t)

	for i := 0; i < 3; i++ {
		ag.Submit(makeTxns(mck.Now(), 100, "SBI", 1, "TIMEOUT"))
		ag.RunCycle()
		mck.Add(time.Minute)
	}
	var reports []*models.CycleReport
	resp, err := http.Get(ts.URL + "/api/v1/reports?limit=2")
	require.NoError(t, err)
	decodeBody(t, resp, &reports)
	assert.Len(t, reports, 2)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _, _ := initServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
