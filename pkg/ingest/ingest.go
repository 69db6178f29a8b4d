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

	"github.com/payops-labs/payment-sentinel/pkg/models"
)

// Submitter receives transaction batches. Malformed entries come back as
// errors; ingesters count them and move on.
type Submitter interface {
	Submit(txns []models.Transaction) (int, []error)
}

// Ingester feeds transactions into a Submitter until its source runs dry or
// the context is canceled.
type Ingester interface {
	Ingest(ctx context.Context, sub Submitter) error
}
