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

package utils

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetupElegantExit(t *testing.T) {
	SetupElegantExit()
	require.Empty(t, registeredChannels)

	ch1 := make(chan struct{})
	ch2 := make(chan struct{})
	RegisterExitChannel(ch1)
	RegisterExitChannel(ch2)
	require.Len(t, registeredChannels, 2)

	select {
	case <-ch1:
		t.Fatal("channel closed before any signal")
	default:
	}

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	closed := func(ch chan struct{}) func() bool {
		return func() bool {
			select {
			case <-ch:
				return true
			default:
				return false
			}
		}
	}
	require.Eventually(t, closed(ch1), time.Second, 5*time.Millisecond)
	require.Eventually(t, closed(ch2), time.Second, 5*time.Millisecond)
}
