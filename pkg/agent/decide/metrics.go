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

package decide

import (
	operationalMetrics "github.com/payops-labs/payment-sentinel/pkg/operational/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

var decisionsTotal = operationalMetrics.NewCounterVec(prometheus.CounterOpts{
	Name: "decision_maker_decisions_total",
	Help: "Decisions made, by chosen action type",
}, []string{"action_type"})
