/*
 * Copyright 2026 The Workpad Authors. All rights reserved.
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
 */

package rpc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workpad-team/workpad/server/rpc"
)

func TestConfig(t *testing.T) {
	scenarios := []*struct {
		config   *rpc.Config
		expected error
	}{
		{config: &rpc.Config{Port: -1, PingInterval: "10s"}, expected: rpc.ErrInvalidRPCPort},
		{config: &rpc.Config{Port: 0, PingInterval: "10s"}, expected: rpc.ErrInvalidRPCPort},
		{config: &rpc.Config{Port: 8080, PingInterval: "10"}, expected: rpc.ErrInvalidPingInterval},
		{config: &rpc.Config{Port: 8080, PingInterval: "10s"}, expected: nil},
	}
	for _, scenario := range scenarios {
		assert.ErrorIs(t, scenario.config.Validate(), scenario.expected, "provided config: %#v", scenario.config)
	}
}
