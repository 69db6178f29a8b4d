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

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	jsoniter "github.com/json-iterator/go"
	kafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payops-labs/payment-sentinel/pkg/api"
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

type collectorSubmitter struct {
	txns []models.Transaction
}

func (c *collectorSubmitter) Submit(batch []models.Transaction) (int, []error) {
	c.txns = append(c.txns, batch...)
	return len(batch), nil
}

func TestFileReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "txns.jsonl")
	content := `{"id":"t1","timestamp":"2025-06-01T11:59:00Z","issuer":"SBI","method":"upi","region":"NORTH","amount":100,"status":"success","latency_ms":120}
{"id":"t2","issuer":"HDFC_BANK","method":"credit_card","region":"SOUTH","amount":250,"status":"failure","latency_ms":300,"error_code":"TIMEOUT"}
not json at all
{"id":"t3","timestamp":"2025-06-01T11:59:30Z","issuer":"ICICI_BANK","method":"wallet","region":"WEST","amount":75,"status":"success","latency_ms":90}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	mck := clock.NewMock()
	mck.Set(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ing, err := NewIngestFile(api.IngestFile{Filename: path, Chunks: 2}, mck)
	require.NoError(t, err)

	sub := &collectorSubmitter{}
	require.NoError(t, ing.Ingest(context.Background(), sub))

	require.Len(t, sub.txns, 3)
	assert.Equal(t, "t1", sub.txns[0].ID)
	// t2 has no timestamp in the file and gets stamped at ingest time
	assert.Equal(t, mck.Now(), sub.txns[1].Timestamp)
	assert.Equal(t, "t3", sub.txns[2].ID)
}

func TestFileRequiresFilename(t *testing.T) {
	_, err := NewIngestFile(api.IngestFile{}, clock.NewMock())
	require.Error(t, err)
}

func TestSyntheticDeterminism(t *testing.T) {
	mck := clock.NewMock()
	mck.Set(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	a, err := NewIngestSynthetic(api.IngestSynthetic{Seed: 42}, mck)
	require.NoError(t, err)
	b, err := NewIngestSynthetic(api.IngestSynthetic{Seed: 42}, mck)
	require.NoError(t, err)
	c, err := NewIngestSynthetic(api.IngestSynthetic{Seed: 7}, mck)
	require.NoError(t, err)

	batchA := a.Generate(200)
	batchB := b.Generate(200)
	assert.Equal(t, batchA, batchB)
	assert.NotEqual(t, batchA, c.Generate(200))
}

func TestSyntheticHealthyRate(t *testing.T) {
	mck := clock.NewMock()
	mck.Set(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ing, err := NewIngestSynthetic(api.IngestSynthetic{Seed: 1, BaseSuccessRate: 0.95}, mck)
	require.NoError(t, err)

	var success int
	batch := ing.Generate(5000)
	for i := range batch {
		require.NotEmpty(t, batch[i].Issuer)
		require.NotEmpty(t, batch[i].Method)
		require.Positive(t, batch[i].Amount)
		if batch[i].Succeeded() {
			success++
		} else {
			require.NotEmpty(t, batch[i].ErrorCode)
		}
	}
	assert.InDelta(t, 0.95, float64(success)/float64(len(batch)), 0.02)
}

func TestSyntheticIssuerOutage(t *testing.T) {
	mck := clock.NewMock()
	mck.Set(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ing, err := NewIngestSynthetic(api.IngestSynthetic{
		Seed:            3,
		BaseSuccessRate: 0.95,
		Scenario:        "issuer_outage",
		ScenarioTarget:  "HDFC_BANK",
	}, mck)
	require.NoError(t, err)

	failures := map[string]int{}
	totals := map[string]int{}
	for _, txn := range ing.Generate(5000) {
		totals[txn.Issuer]++
		if !txn.Succeeded() {
			failures[txn.Issuer]++
		}
	}
	degraded := float64(failures["HDFC_BANK"]) / float64(totals["HDFC_BANK"])
	healthy := float64(failures["SBI"]) / float64(totals["SBI"])
	assert.Greater(t, degraded, 0.5)
	assert.Less(t, healthy, 0.15)
}

func TestSyntheticScenarioWarmup(t *testing.T) {
	mck := clock.NewMock()
	mck.Set(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ing, err := NewIngestSynthetic(api.IngestSynthetic{
		Seed:            3,
		BaseSuccessRate: 1.0,
		Scenario:        "latency_spike",
		ScenarioAfter:   api.Duration{Duration: 5 * time.Minute},
	}, mck)
	require.NoError(t, err)

	before := ing.Generate(100)
	mck.Add(6 * time.Minute)
	after := ing.Generate(100)

	var beforeSum, afterSum float64
	for i := range before {
		beforeSum += before[i].LatencyMS
	}
	for i := range after {
		afterSum += after[i].LatencyMS
	}
	assert.Greater(t, afterSum/100, 2*(beforeSum/100))
}

func TestSyntheticUnknownScenario(t *testing.T) {
	_, err := NewIngestSynthetic(api.IngestSynthetic{Scenario: "meteor_strike"}, clock.NewMock())
	require.Error(t, err)
}

type fakeKafkaReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (f *fakeKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.msgs) == 0 {
		f.mu.Unlock()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	f.mu.Unlock()
	return m, nil
}

func (f *fakeKafkaReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeKafkaReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeKafkaReader) committedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.committed)
}

func TestKafkaIngest(t *testing.T) {
	reader := &fakeKafkaReader{msgs: []kafka.Message{
		{Value: []byte(`{"id":"k1","issuer":"SBI","method":"upi","region":"EAST","amount":50,"status":"success","latency_ms":110}`)},
		{Value: []byte(`garbage`)},
		{Value: []byte(`{"id":"k2","issuer":"AXIS_BANK","method":"debit_card","region":"WEST","amount":900,"status":"failure","latency_ms":400,"error_code":"TIMEOUT"}`)},
	}}
	ing := &ingestKafka{
		params: api.IngestKafka{BatchMaxLen: 10},
		reader: reader,
		json:   jsoniter.ConfigCompatibleWithStandardLibrary,
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &collectorSubmitter{}
	done := make(chan error, 1)
	go func() {
		done <- ing.Ingest(ctx, sub)
	}()
	require.Eventually(t, func() bool {
		return reader.committedCount() == 3
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	require.Len(t, sub.txns, 2)
	assert.Equal(t, "k1", sub.txns[0].ID)
	assert.Equal(t, "k2", sub.txns[1].ID)
	assert.True(t, reader.closed)
}

func TestKafkaRequiresBrokers(t *testing.T) {
	_, err := NewIngestKafka(api.IngestKafka{})
	require.Error(t, err)
}
