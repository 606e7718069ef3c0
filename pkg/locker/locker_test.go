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

package locker_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/workpad-team/workpad/pkg/locker"
)

func TestLocker(t *testing.T) {
	t.Run("lock unlock test", func(t *testing.T) {
		locks := locker.New()
		locks.Lock("doc-a")
		assert.NoError(t, locks.Unlock("doc-a"))
		assert.ErrorIs(t, locks.Unlock("doc-a"), locker.ErrNoSuchLock)
	})

	t.Run("try lock test", func(t *testing.T) {
		locks := locker.New()
		assert.True(t, locks.TryLock("doc-a"))
		assert.False(t, locks.TryLock("doc-a"))
		assert.True(t, locks.TryLock("doc-b"))
		assert.NoError(t, locks.Unlock("doc-a"))
		assert.NoError(t, locks.Unlock("doc-b"))
	})

	t.Run("lock with timeout test", func(t *testing.T) {
		locks := locker.New()
		locks.Lock("doc-a")

		start := time.Now()
		assert.False(t, locks.LockWithTimeout("doc-a", 50*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

		assert.NoError(t, locks.Unlock("doc-a"))
		assert.True(t, locks.LockWithTimeout("doc-a", 50*time.Millisecond))
		assert.NoError(t, locks.Unlock("doc-a"))
	})

	t.Run("mutual exclusion test", func(t *testing.T) {
		locks := locker.New()
		counter := 0

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				locks.Lock("counter")
				counter++
				assert.NoError(t, locks.Unlock("counter"))
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, counter)
	})

	t.Run("independent keys test", func(t *testing.T) {
		locks := locker.New()
		locks.Lock("doc-a")

		done := make(chan struct{})
		go func() {
			locks.Lock("doc-b")
			assert.NoError(t, locks.Unlock("doc-b"))
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock of independent key blocked")
		}
		assert.NoError(t, locks.Unlock("doc-a"))
	})
}
