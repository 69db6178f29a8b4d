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

package agent

import (
	operationalMetrics "github.com/payops-labs/payment-sentinel/pkg/operational/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cyclesTotal = operationalMetrics.NewCounter(prometheus.CounterOpts{
		Name: "agent_cycles_total",
		Help: "Control loop cycles completed",
	})
	cycleDuration = operationalMetrics.NewHistogram(prometheus.HistogramOpts{
		Name:    "agent_cycle_duration_seconds",
		Help:    "Duration of one full control loop cycle",
		Buckets: prometheus.DefBuckets,
	})
	alertsTotal = operationalMetrics.NewCounter(prometheus.CounterOpts{
		Name: "agent_alerts_total",
		Help: "Operator alerts raised",
	})
)
