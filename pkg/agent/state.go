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
	"sync"
	"time"

	"github.com/payops-labs/payment-sentinel/pkg/models"
)

// state holds the agent's bounded audit histories. Everything here is
// explanation surface: losing the oldest entries never changes behavior.
type state struct {
	mu sync.Mutex

	cycle     int
	lastCycle time.Time

	decisions []*models.Decision
	reports   []*models.CycleReport
	alerts    []models.Alert

	decisionLimit int
	alertLimit    int
}

func newState(decisionLimit, alertLimit int) *state {
	return &state{decisionLimit: decisionLimit, alertLimit: alertLimit}
}

func (s *state) nextCycle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycle++
	s.lastCycle = now
	return s.cycle
}

func (s *state) addDecision(d *models.Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, d)
	if s.decisionLimit > 0 && len(s.decisions) > s.decisionLimit {
		s.decisions = s.decisions[len(s.decisions)-s.decisionLimit:]
	}
}

func (s *state) addReport(r *models.CycleReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	if s.decisionLimit > 0 && len(s.reports) > s.decisionLimit {
		s.reports = s.reports[len(s.reports)-s.decisionLimit:]
	}
}

func (s *state) addAlert(a models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	if s.alertLimit > 0 && len(s.alerts) > s.alertLimit {
		s.alerts = s.alerts[len(s.alerts)-s.alertLimit:]
	}
}

func (s *state) recentDecisions(n int) []*models.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.decisions) {
		n = len(s.decisions)
	}
	out := make([]*models.Decision, n)
	copy(out, s.decisions[len(s.decisions)-n:])
	return out
}

func (s *state) findDecision(id string) *models.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.decisions) - 1; i >= 0; i-- {
		if s.decisions[i].ID == id {
			return s.decisions[i]
		}
	}
	return nil
}

func (s *state) recentReports(n int) []*models.CycleReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.reports) {
		n = len(s.reports)
	}
	out := make([]*models.CycleReport, n)
	copy(out, s.reports[len(s.reports)-n:])
	return out
}

func (s *state) recentAlerts(n int) []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.alerts) {
		n = len(s.alerts)
	}
	out := make([]models.Alert, n)
	copy(out, s.alerts[len(s.alerts)-n:])
	return out
}

func (s *state) cycleInfo() (int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycle, s.lastCycle
}
