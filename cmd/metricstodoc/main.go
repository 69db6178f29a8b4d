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

package main

import (
	"fmt"

	operationalMetrics "github.com/payops-labs/payment-sentinel/pkg/operational/metrics"

	// imported so package init registers every metric definition
	_ "github.com/payops-labs/payment-sentinel/pkg/ingest"
	_ "github.com/payops-labs/payment-sentinel/pkg/server"
)

func main() {
	header := `
> Note: this file was automatically generated, to update execute "make docs"

# payment-sentinel Operational Metrics

Each table below provides documentation for an exported payment-sentinel operational metric.

	`
	doc := operationalMetrics.GetDocumentation()
	data := fmt.Sprintf("%s\n%s\n", header, doc)
	fmt.Printf("%s", data)
}
