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

package rpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnection(t *testing.T) {
	t.Run("close while enqueue is parked test", func(t *testing.T) {
		conn := newConnection(nil, time.Second)

		// Fill the queue without a writer draining it, as happens when a
		// client dies mid-broadcast.
		for i := 0; i < sendChanSize; i++ {
			assert.True(t, conn.enqueue(ServerFrame{Type: FrameSnapshot}))
		}

		accepted := make(chan bool)
		go func() {
			accepted <- conn.enqueue(ServerFrame{Type: FrameSnapshot})
		}()

		// The parked enqueue must wake up on close and report rejection
		// instead of panicking.
		time.Sleep(10 * time.Millisecond)
		conn.close()
		assert.False(t, <-accepted)
	})

	t.Run("enqueue after close test", func(t *testing.T) {
		conn := newConnection(nil, time.Second)
		conn.close()
		assert.False(t, conn.enqueue(ServerFrame{Type: FrameAck}))
	})

	t.Run("close is idempotent test", func(t *testing.T) {
		conn := newConnection(nil, time.Second)
		conn.close()
		conn.close()
	})
}
