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
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	log "github.com/sirupsen/logrus"

	"github.com/payops-labs/payment-sentinel/pkg/agent"
)

type HealthServer struct {
	handler healthcheck.Handler
	address string
}

func (hs *HealthServer) Serve() {
	for {
		err := http.ListenAndServe(hs.address, hs.handler)
		log.Errorf("http.ListenAndServe error %v", err)
		time.Sleep(60 * time.Second)
	}
}

// NewHealthServer starts liveness and readiness endpoints tied to the agent
// control loop. Readiness fails until the first cycle has run.
func NewHealthServer(address string, ag *agent.Agent) *HealthServer {
	handler := healthcheck.NewHandler()
	handler.AddLivenessCheck("AgentCheck", ag.IsAlive)
	handler.AddReadinessCheck("AgentCheck", ag.IsReady)

	server := &HealthServer{
		handler: handler,
		address: address,
	}

	go server.Serve()

	return server
}
