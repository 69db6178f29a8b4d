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
	operationalMetrics "github.com/payops-labs/payment-sentinel/pkg/operational/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	transactionsProcessed = operationalMetrics.NewCounterVec(prometheus.CounterOpts{
		Name: "observer_transactions_processed_total",
		Help: "Transactions accepted into the sliding window, by status",
	}, []string{"status"})
	transactionsMalformed = operationalMetrics.NewCounterVec(prometheus.CounterOpts{
		Name: "observer_transactions_malformed_total",
		Help: "Transactions rejected by validation, by reason",
	}, []string{"reason"})
	windowSize = operationalMetrics.NewGauge(prometheus.GaugeOpts{
		Name: "observer_window_size",
		Help: "Transactions currently retained in the sliding window",
	})
	baselineSuccessRate = operationalMetrics.NewGauge(prometheus.GaugeOpts{
		Name: "observer_baseline_success_rate",
		Help: "Overall success rate of the long-term health baseline",
	})
)
