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
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/payops-labs/payment-sentinel/pkg/api"
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

var slog = logrus.WithField("component", "ingest.Synthetic")

var (
	synthIssuers = []string{
		"HDFC_BANK", "ICICI_BANK", "SBI", "AXIS_BANK",
		"KOTAK_BANK", "YES_BANK", "PAYTM_BANK", "RAZORPAY",
	}
	synthMethods   = []string{"credit_card", "debit_card", "upi", "net_banking", "wallet"}
	synthRegions   = []string{"NORTH", "SOUTH", "EAST", "WEST", "CENTRAL"}
	synthMerchants = []string{"FLIPSHOP", "QUICKMART", "TRAVELKART", "FOODDASH", "GAMEHUB"}
	// failure codes with relative weights for healthy traffic
	synthErrorCodes = []struct {
		code   string
		weight float64
	}{
		{"INSUFFICIENT_FUNDS", 0.35},
		{"TIMEOUT", 0.20},
		{"ISSUER_DECLINED", 0.20},
		{"NETWORK_ERROR", 0.15},
		{"INVALID_CARD", 0.10},
	}
)

const (
	defaultSynthRate    = 50.0
	defaultSynthSuccess = 0.94
)

// IngestSynthetic generates a randomized transaction stream, optionally
// degrading one slice of it after a warm-up period. Fixed seeds give
// byte-for-byte reproducible streams.
type IngestSynthetic struct {
	params  api.IngestSynthetic
	clk     clock.Clock
	rnd     *rand.Rand
	start   time.Time
	seq     int
	target  string
	degrade func(*models.Transaction)
}

// NewIngestSynthetic validates the scenario name and seeds the generator.
func NewIngestSynthetic(params api.IngestSynthetic, clk clock.Clock) (*IngestSynthetic, error) {
	if params.Rate <= 0 {
		params.Rate = defaultSynthRate
	}
	if params.BaseSuccessRate <= 0 || params.BaseSuccessRate > 1 {
		params.BaseSuccessRate = defaultSynthSuccess
	}
	ing := &IngestSynthetic{
		params: params,
		clk:    clk,
		rnd:    rand.New(rand.NewSource(params.Seed)),
		target: params.ScenarioTarget,
	}
	switch params.Scenario {
	case "":
	case "issuer_outage":
		if ing.target == "" {
			ing.target = "HDFC_BANK"
		}
		ing.degrade = ing.issuerOutage
	case "retry_storm":
		ing.degrade = ing.retryStorm
	case "latency_spike":
		ing.degrade = ing.latencySpike
	case "regional_failure":
		if ing.target == "" {
			ing.target = "NORTH"
		}
		ing.degrade = ing.regionalFailure
	default:
		return nil, fmt.Errorf("unknown scenario %q", params.Scenario)
	}
	return ing, nil
}

// Ingest generates transactions at the configured rate until the context is
// canceled.
func (s *IngestSynthetic) Ingest(ctx context.Context, sub Submitter) error {
	s.start = s.clk.Now()
	interval := time.Duration(float64(time.Second) / s.params.Rate)
	ticker := s.clk.Ticker(interval)
	defer ticker.Stop()
	slog.Infof("generating %.0f txn/s, scenario=%q", s.params.Rate, s.params.Scenario)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			txn := s.next()
			accepted, _ := sub.Submit([]models.Transaction{txn})
			ingestedTotal.WithLabelValues("synthetic").Add(float64(accepted))
		}
	}
}

// Generate returns a batch of n transactions without pacing. Used by replay
// tooling and tests.
func (s *IngestSynthetic) Generate(n int) []models.Transaction {
	if s.start.IsZero() {
		s.start = s.clk.Now()
	}
	out := make([]models.Transaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.next())
	}
	return out
}

func (s *IngestSynthetic) next() models.Transaction {
	s.seq++
	txn := models.Transaction{
		ID:        fmt.Sprintf("syn-%08d", s.seq),
		Timestamp: s.clk.Now(),
		Issuer:    synthIssuers[s.rnd.Intn(len(synthIssuers))],
		Method:    synthMethods[s.rnd.Intn(len(synthMethods))],
		Region:    synthRegions[s.rnd.Intn(len(synthRegions))],
		Merchant:  synthMerchants[s.rnd.Intn(len(synthMerchants))],
		Amount:    s.amount(),
		LatencyMS: s.latency(),
	}
	if s.rnd.Float64() < s.params.BaseSuccessRate {
		txn.Status = models.StatusSuccess
	} else {
		txn.Status = models.StatusFailure
		txn.ErrorCode = s.errorCode()
		txn.LatencyMS *= 1.3
	}
	if s.rnd.Float64() < 0.08 {
		txn.RetryCount = 1 + s.rnd.Intn(2)
	}
	if s.degrade != nil && s.clk.Now().Sub(s.start) >= s.params.ScenarioAfter.Duration {
		s.degrade(&txn)
	}
	return txn
}

// amount draws from a lognormal distribution, roughly INR 400 median with a
// long tail.
func (s *IngestSynthetic) amount() float64 {
	v := math.Exp(6 + 1.5*s.rnd.NormFloat64())
	return math.Round(v*100) / 100
}

func (s *IngestSynthetic) latency() float64 {
	v := 180 + 60*s.rnd.NormFloat64()
	if v < 20 {
		v = 20
	}
	return math.Round(v)
}

func (s *IngestSynthetic) errorCode() string {
	roll := s.rnd.Float64()
	for _, ec := range synthErrorCodes {
		if roll < ec.weight {
			return ec.code
		}
		roll -= ec.weight
	}
	return synthErrorCodes[0].code
}

func (s *IngestSynthetic) issuerOutage(txn *models.Transaction) {
	if txn.Issuer != s.target {
		return
	}
	if s.rnd.Float64() < 0.70 {
		txn.Status = models.StatusFailure
		txn.ErrorCode = "ISSUER_DOWN"
		txn.LatencyMS *= 2
	}
}

func (s *IngestSynthetic) retryStorm(txn *models.Transaction) {
	if s.rnd.Float64() < 0.45 {
		txn.RetryCount = 1 + s.rnd.Intn(3)
		if s.rnd.Float64() < 0.75 {
			txn.Status = models.StatusFailure
			txn.ErrorCode = "TIMEOUT"
		}
	}
}

func (s *IngestSynthetic) latencySpike(txn *models.Transaction) {
	txn.LatencyMS *= 2.5
	if s.rnd.Float64() < 0.10 {
		txn.Status = models.StatusFailure
		txn.ErrorCode = "TIMEOUT"
	}
}

func (s *IngestSynthetic) regionalFailure(txn *models.Transaction) {
	if txn.Region != s.target {
		return
	}
	if s.rnd.Float64() < 0.55 {
		txn.Status = models.StatusFailure
		txn.ErrorCode = "NETWORK_ERROR"
	}
}
