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

import "fmt"

// Denial reasons, also used as metric label values.
const (
	DenialManualApproval   = "manual_approval_required"
	DenialPendingApproval  = "approval_not_armed"
	DenialTargetSuspended  = "target_suspended"
	DenialConflict         = "conflicting_intervention"
	DenialActionBudget     = "hourly_action_budget_exhausted"
	DenialRollbackBudget   = "hourly_rollback_budget_exhausted"
	DenialTrafficCeiling   = "traffic_ceiling_exceeded"
	DenialUnknownAuthLevel = "unknown_authorization_level"
)

// DeniedError reports an action refused by authorization or guardrails. The
// decision record is still kept, marked denied.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("action denied: %s", e.Reason)
}

// RollbackFailureError reports a revert that did not take effect. The target
// is suspended from further automatic actions until an operator clears it.
type RollbackFailureError struct {
	Target string
	Cause  error
}

func (e *RollbackFailureError) Error() string {
	return fmt.Sprintf("rollback failed on target %q, target suspended: %v", e.Target, e.Cause)
}

func (e *RollbackFailureError) Unwrap() error {
	return e.Cause
}
