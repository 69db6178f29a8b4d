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

package execute

import (
	operationalMetrics "github.com/payops-labs/payment-sentinel/pkg/operational/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	executionsTotal = operationalMetrics.NewCounterVec(prometheus.CounterOpts{
		Name: "executor_executions_total",
		Help: "Execution attempts, by action type and result",
	}, []string{"action_type", "result"})
	interventionsActive = operationalMetrics.NewGauge(prometheus.GaugeOpts{
		Name: "executor_interventions_active",
		Help: "Currently active interventions",
	})
	rollbacksTotal = operationalMetrics.NewCounterVec(prometheus.CounterOpts{
		Name: "executor_rollbacks_total",
		Help: "Rollbacks, by trigger",
	}, []string{"trigger"})
	rollbackFailures = operationalMetrics.NewCounter(prometheus.CounterOpts{
		Name: "executor_rollback_failures_total",
		Help: "Reverts that failed and suspended their target",
	})
)
