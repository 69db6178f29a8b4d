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
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/payops-labs/payment-sentinel/pkg/api"
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

var olog = logrus.WithField("component", "observe.Observer")

// MalformedTransactionError reports a transaction rejected by validation.
// Rejected transactions are counted but never stored.
type MalformedTransactionError struct {
	ID     string
	Reason string
}

func (e *MalformedTransactionError) Error() string {
	return fmt.Sprintf("malformed transaction %q: %s", e.ID, e.Reason)
}

// Observer maintains the sliding window of recent transactions and the
// long-term health baseline. All methods are safe for concurrent use.
type Observer struct {
	mu        sync.Mutex
	clk       clock.Clock
	cfg       api.AgentConfig
	win       *window
	baseline  *models.Baseline
	malformed int
}

func NewObserver(cfg api.AgentConfig, clk clock.Clock) *Observer {
	olog.Infof("NewObserver window=%s baselineAlpha=%v", cfg.WindowDuration.Duration, cfg.Baseline.Alpha)
	return &Observer{
		clk:      clk,
		cfg:      cfg,
		win:      newWindow(cfg.WindowDuration.Duration),
		baseline: models.NewBaseline(),
	}
}

// Ingest validates one transaction and adds it to the window. Malformed
// transactions return a *MalformedTransactionError and are only counted.
func (o *Observer) Ingest(t models.Transaction) error {
	now := o.clk.Now()
	if reason := o.validate(&t, now); reason != "" {
		o.mu.Lock()
		o.malformed++
		o.mu.Unlock()
		transactionsMalformed.WithLabelValues(reason).Inc()
		return &MalformedTransactionError{ID: t.ID, Reason: reason}
	}

	o.mu.Lock()
	o.win.evict(now)
	o.win.add(t)
	size := o.win.size()
	o.mu.Unlock()

	transactionsProcessed.WithLabelValues(string(t.Status)).Inc()
	windowSize.Set(float64(size))
	return nil
}

// Submit ingests a batch, returning the number accepted and one error per
// rejected transaction.
func (o *Observer) Submit(txns []models.Transaction) (int, []error) {
	accepted := 0
	var errs []error
	for i := range txns {
		if err := o.Ingest(txns[i]); err != nil {
			errs = append(errs, err)
		} else {
			accepted++
		}
	}
	return accepted, errs
}

func (o *Observer) validate(t *models.Transaction, now time.Time) string {
	switch {
	case t.ID == "":
		return "missing_id"
	case t.Timestamp.IsZero():
		return "missing_timestamp"
	case t.Timestamp.After(now.Add(o.cfg.FutureTolerance.Duration)):
		return "future_timestamp"
	case t.Timestamp.Before(now.Add(-o.cfg.WindowDuration.Duration)):
		return "stale_timestamp"
	case t.Issuer == "":
		return "missing_issuer"
	case t.Method == "":
		return "missing_method"
	case t.Region == "":
		return "missing_region"
	case t.Amount < 0:
		return "negative_amount"
	case t.LatencyMS < 0:
		return "negative_latency"
	case t.Status != models.StatusSuccess && t.Status != models.StatusFailure:
		return "invalid_status"
	case t.RetryCount < 0:
		return "negative_retry_count"
	}
	return ""
}

// Snapshot evicts expired entries and returns aggregated statistics for the
// current window.
func (o *Observer) Snapshot() models.WindowSnapshot {
	now := o.clk.Now()
	o.mu.Lock()
	defer o.mu.Unlock()
	o.win.evict(now)
	snap := o.win.snapshot(now)
	snap.Malformed = o.malformed
	windowSize.Set(float64(o.win.size()))
	return snap
}

// Baseline returns a copy of the current health baseline.
func (o *Observer) Baseline() *models.Baseline {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.baseline.Copy()
}

// UpdateBaseline folds a snapshot into the baseline. Only healthy,
// sufficiently large slices move the baseline, so it keeps describing
// normal operation during an incident.
func (o *Observer) UpdateBaseline(snap *models.WindowSnapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.baseline.Update(snap, o.cfg.Baseline.Alpha, o.cfg.Baseline.MinVolume, o.cfg.Baseline.HealthyRate)
	baselineSuccessRate.Set(o.baseline.OverallSuccessRate)
}

// WindowSize returns the number of retained transactions after eviction.
func (o *Observer) WindowSize() int {
	now := o.clk.Now()
	o.mu.Lock()
	defer o.mu.Unlock()
	o.win.evict(now)
	return o.win.size()
}
