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

package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/payops-labs/payment-sentinel/pkg/agent"
	"github.com/payops-labs/payment-sentinel/pkg/agent/execute"
	"github.com/payops-labs/payment-sentinel/pkg/models"
)

var slog = logrus.WithField("component", "server.Server")

const defaultHistoryLimit = 20

// Server exposes the agent's control operations over HTTP. Every handler is
// a thin JSON mapping of an agent method; the agent does its own locking.
type Server struct {
	agent   *agent.Agent
	address string
	json    jsoniter.API
}

func New(address string, ag *agent.Agent) *Server {
	return &Server{
		agent:   ag,
		address: address,
		json:    jsoniter.ConfigCompatibleWithStandardLibrary,
	}
}

// Serve blocks, retrying on listener errors the way the health server does.
func (s *Server) Serve() {
	for {
		err := http.ListenAndServe(s.address, s.Handler())
		slog.Errorf("http.ListenAndServe error %v", err)
		time.Sleep(60 * time.Second)
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
	mux.HandleFunc("GET /api/v1/snapshot", s.getSnapshot)
	mux.HandleFunc("GET /api/v1/decisions", s.getDecisions)
	mux.HandleFunc("GET /api/v1/decisions/{id}", s.getDecision)
	mux.HandleFunc("GET /api/v1/reports", s.getReports)
	mux.HandleFunc("GET /api/v1/alerts", s.getAlerts)
	mux.HandleFunc("GET /api/v1/interventions", s.getInterventions)
	mux.HandleFunc("POST /api/v1/transactions", s.postTransactions)
	mux.HandleFunc("POST /api/v1/approvals", s.postApproval)
	mux.HandleFunc("POST /api/v1/interventions/{id}/rollback", s.postRollback)
	mux.HandleFunc("DELETE /api/v1/suspensions/{target}", s.deleteSuspension)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.agent.Status())
}

func (s *Server) getSnapshot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.agent.Snapshot())
}

func (s *Server) getDecisions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.agent.Decisions(limitParam(r)))
}

// getDecision is the explainability endpoint: the full decision record with
// pattern, hypotheses, scored alternatives and denial reason if any.
func (s *Server) getDecision(w http.ResponseWriter, r *http.Request) {
	dec := s.agent.Decision(r.PathValue("id"))
	if dec == nil {
		s.writeError(w, http.StatusNotFound, "no such decision")
		return
	}
	s.writeJSON(w, http.StatusOK, dec)
}

func (s *Server) getReports(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.agent.Reports(limitParam(r)))
}

func (s *Server) getAlerts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.agent.Alerts(limitParam(r)))
}

func (s *Server) getInterventions(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.agent.Active())
}

type submitResponse struct {
	Accepted int      `json:"accepted"`
	Rejected []string `json:"rejected,omitempty"`
}

func (s *Server) postTransactions(w http.ResponseWriter, r *http.Request) {
	var txns []models.Transaction
	if err := s.json.NewDecoder(r.Body).Decode(&txns); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid transaction batch: "+err.Error())
		return
	}
	accepted, errs := s.agent.Submit(txns)
	resp := submitResponse{Accepted: accepted}
	for _, err := range errs {
		resp.Rejected = append(resp.Rejected, err.Error())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type approvalRequest struct {
	Target string `json:"target"`
}

func (s *Server) postApproval(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if err := s.json.NewDecoder(r.Body).Decode(&req); err != nil || req.Target == "" {
		s.writeError(w, http.StatusBadRequest, "approval target required")
		return
	}
	s.agent.Approve(req.Target)
	slog.Infof("approval armed for target %s", req.Target)
	w.WriteHeader(http.StatusNoContent)
}

type rollbackRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) postRollback(w http.ResponseWriter, r *http.Request) {
	var req rollbackRequest
	_ = s.json.NewDecoder(r.Body).Decode(&req)
	if req.Reason == "" {
		req.Reason = "operator request"
	}
	oc, err := s.agent.ForceRollback(r.PathValue("id"), req.Reason)
	if err != nil {
		status := http.StatusInternalServerError
		var notActive *execute.NotActiveError
		if errors.As(err, &notActive) {
			status = http.StatusNotFound
		}
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, oc)
}

func (s *Server) deleteSuspension(w http.ResponseWriter, r *http.Request) {
	s.agent.ClearSuspension(r.PathValue("target"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := s.json.NewEncoder(w).Encode(v); err != nil {
		slog.Errorf("encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultHistoryLimit
	}
	return n
}
