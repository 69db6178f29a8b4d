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
	"github.com/sirupsen/logrus"

	"github.com/payops-labs/payment-sentinel/pkg/models"
)

// Applier pushes an action to the control surface of the payment stack and
// reverts it again. Implementations must be idempotent on Revert.
type Applier interface {
	Apply(a *models.Action) error
	Revert(a *models.Action) error
}

// LogApplier applies actions by recording them. It backs simulation and
// shadow deployments where decisions should be observable but not enforced.
type LogApplier struct {
	log *logrus.Entry
}

func NewLogApplier() *LogApplier {
	return &LogApplier{log: logrus.WithField("component", "execute.LogApplier")}
}

func (la *LogApplier) Apply(a *models.Action) error {
	la.log.WithFields(logrus.Fields{
		"action": a.Type,
		"target": a.Target,
	}).Infof("apply params=%v ttl=%s", a.Parameters, a.TTL)
	return nil
}

func (la *LogApplier) Revert(a *models.Action) error {
	la.log.WithFields(logrus.Fields{
		"action": a.Type,
		"target": a.Target,
	}).Info("revert")
	return nil
}
