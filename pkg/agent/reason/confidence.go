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

package reason

import (
	"math"

	"github.com/payops-labs/payment-sentinel/pkg/api"
)

// sizeConfidence maps a sample count onto (0,1) with a logistic curve
// centered at the configured midpoint. Small samples are heavily discounted,
// large samples saturate toward 1.
func sizeConfidence(n int, cfg *api.ReasonerConfig) float64 {
	return 1.0 / (1.0 + math.Exp(-cfg.SizeSteepness*(float64(n)-cfg.SizeMidpoint)))
}

// effectConfidence ramps linearly from 0 at the warning threshold to 1 at
// the critical threshold.
func effectConfidence(deviation float64, th api.Threshold) float64 {
	if th.Critical <= th.Warning {
		return clamp01(deviation / math.Max(th.Critical, 1e-9))
	}
	return clamp01((deviation - th.Warning) / (th.Critical - th.Warning))
}

// confidence combines sample size and effect strength as a geometric mean,
// so a weak effect on a huge sample stays moderate instead of extreme, and
// vice versa.
func confidence(n int, deviation float64, th api.Threshold, cfg *api.ReasonerConfig) float64 {
	return math.Sqrt(sizeConfidence(n, cfg) * effectConfidence(deviation, th))
}

// severity scales the deviation against the critical threshold.
func severity(deviation float64, th api.Threshold) float64 {
	if th.Critical <= 0 {
		return 0
	}
	return clamp01(deviation / th.Critical)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
