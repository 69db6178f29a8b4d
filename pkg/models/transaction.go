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

package models

import "time"

type TransactionStatus string

const (
	StatusSuccess TransactionStatus = "success"
	StatusFailure TransactionStatus = "failure"
)

// Transaction is a single payment event as delivered by a producer.
// Immutable once created.
type Transaction struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Issuer     string            `json:"issuer"`
	Method     string            `json:"method"`
	Region     string            `json:"region"`
	Merchant   string            `json:"merchant"`
	Amount     float64           `json:"amount"`
	Status     TransactionStatus `json:"status"`
	LatencyMS  float64           `json:"latency_ms"`
	ErrorCode  string            `json:"error_code,omitempty"`
	RetryCount int               `json:"retry_count"`
}

func (t *Transaction) Succeeded() bool {
	return t.Status == StatusSuccess
}

// IsRetry reports whether this transaction is a re-attempt of an earlier one.
func (t *Transaction) IsRetry() bool {
	return t.RetryCount > 0
}
