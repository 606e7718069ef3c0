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

package documents_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/workpad-team/workpad/api/types"
	"github.com/workpad-team/workpad/server/backend"
	"github.com/workpad-team/workpad/server/backend/database"
	"github.com/workpad-team/workpad/server/documents"
	"github.com/workpad-team/workpad/server/profiling/prometheus"
)

var userA = types.Participant{UserID: "user-a", DisplayName: "A"}
var userB = types.Participant{UserID: "user-b", DisplayName: "B"}

func setUpBackend(t *testing.T) *backend.Backend {
	t.Helper()

	metrics, err := prometheus.NewMetrics()
	assert.NoError(t, err)

	be, err := backend.New(&backend.Config{
		DocLockTimeout:  "1s",
		MaxDocumentSize: 1024 * 1024,
		Hostname:        "test",
	}, nil, metrics)
	assert.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, be.Shutdown())
	})
	return be
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("create document test", func(t *testing.T) {
		be := setUpBackend(t)

		info, err := documents.Create(ctx, be, userA)
		assert.NoError(t, err)
		assert.NoError(t, info.ID.Validate())
		assert.Equal(t, "", info.Content)
		assert.Equal(t, int64(0), info.Revision)
		assert.Equal(t, userA.UserID, info.CreatedBy)
		assert.Len(t, info.ActiveUsers, 1)
		assert.Equal(t, userA.UserID, info.ActiveUsers[0].UserID)
		assert.False(t, info.ActiveUsers[0].JoinedAt.IsZero())
	})

	t.Run("created ids are unique test", func(t *testing.T) {
		be := setUpBackend(t)

		seen := map[types.ID]bool{}
		for i := 0; i < 100; i++ {
			info, err := documents.Create(ctx, be, userA)
			assert.NoError(t, err)
			assert.False(t, seen[info.ID])
			seen[info.ID] = true
		}
	})
}

func TestJoinLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("join unknown document test", func(t *testing.T) {
		be := setUpBackend(t)

		_, err := documents.Join(ctx, be, types.NewID(), userB)
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
	})

	t.Run("join is idempotent test", func(t *testing.T) {
		be := setUpBackend(t)
		info, err := documents.Create(ctx, be, userA)
		assert.NoError(t, err)

		sub, _, err := documents.Watch(ctx, be, info.ID, userA)
		assert.NoError(t, err)
		defer func() { assert.NoError(t, documents.Unwatch(ctx, be, info.ID, sub)) }()

		snapshot, err := documents.Join(ctx, be, info.ID, userB)
		assert.NoError(t, err)
		assert.Len(t, snapshot.ActiveUsers, 2)
		assert.Equal(t, types.DocWatchedEvent, (<-sub.Events()).Type)

		// The second join must not change the set and must not emit a
		// duplicate broadcast.
		snapshot, err = documents.Join(ctx, be, info.ID, userB)
		assert.NoError(t, err)
		assert.Len(t, snapshot.ActiveUsers, 2)
		select {
		case event := <-sub.Events():
			t.Fatalf("unexpected broadcast: %v", event)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("leave of absent user is no-op test", func(t *testing.T) {
		be := setUpBackend(t)
		info, err := documents.Create(ctx, be, userA)
		assert.NoError(t, err)

		sub, _, err := documents.Watch(ctx, be, info.ID, userA)
		assert.NoError(t, err)
		defer func() { assert.NoError(t, documents.Unwatch(ctx, be, info.ID, sub)) }()

		assert.NoError(t, documents.Leave(ctx, be, info.ID, "stranger"))
		select {
		case event := <-sub.Events():
			t.Fatalf("unexpected broadcast: %v", event)
		case <-time.After(50 * time.Millisecond):
		}

		// An actual removal is broadcast exactly once.
		assert.NoError(t, documents.Leave(ctx, be, info.ID, userA.UserID))
		event := <-sub.Events()
		assert.Equal(t, types.DocUnwatchedEvent, event.Type)
		assert.Empty(t, event.Snapshot.ActiveUsers)
	})

	t.Run("leave of unknown document is no-op test", func(t *testing.T) {
		be := setUpBackend(t)
		assert.NoError(t, documents.Leave(ctx, be, types.NewID(), userA.UserID))
	})

	t.Run("presence does not advance revision test", func(t *testing.T) {
		be := setUpBackend(t)
		info, err := documents.Create(ctx, be, userA)
		assert.NoError(t, err)

		snapshot, err := documents.Join(ctx, be, info.ID, userB)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), snapshot.Revision)

		assert.NoError(t, documents.Leave(ctx, be, info.ID, userB.UserID))
		found, err := be.DB.FindDocInfoByID(ctx, info.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), found.Revision)
	})
}

func TestApplyEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("apply edit test", func(t *testing.T) {
		be := setUpBackend(t)
		info, err := documents.Create(ctx, be, userA)
		assert.NoError(t, err)

		snapshot, err := documents.ApplyEdit(ctx, be, documents.EditIntent{
			DocID:           info.ID,
			UserID:          userA.UserID,
			Content:         "hello",
			BasedOnRevision: 0,
		})
		assert.NoError(t, err)
		assert.Equal(t, "hello", snapshot.Content)
		assert.Equal(t, int64(1), snapshot.Revision)
		assert.Equal(t, userA.UserID, snapshot.UpdatedBy)
	})

	t.Run("apply to unknown document test", func(t *testing.T) {
		be := setUpBackend(t)

		_, err := documents.ApplyEdit(ctx, be, documents.EditIntent{
			DocID:   types.NewID(),
			UserID:  userA.UserID,
			Content: "hello",
		})
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
	})

	t.Run("content size cap test", func(t *testing.T) {
		be := setUpBackend(t)
		info, err := documents.Create(ctx, be, userA)
		assert.NoError(t, err)

		big := make([]byte, be.Config.MaxDocumentSize+1)
		_, err = documents.ApplyEdit(ctx, be, documents.EditIntent{
			DocID:   info.ID,
			UserID:  userA.UserID,
			Content: string(big),
		})
		assert.ErrorIs(t, err, documents.ErrDocumentTooLarge)
	})

	t.Run("stale base still wins test", func(t *testing.T) {
		be := setUpBackend(t)
		info, err := documents.Create(ctx, be, userA)
		assert.NoError(t, err)

		_, err = documents.ApplyEdit(ctx, be, documents.EditIntent{
			DocID: info.ID, UserID: userA.UserID, Content: "foo", BasedOnRevision: 0,
		})
		assert.NoError(t, err)

		// The based-on revision is observability only; a write based on
		// revision 0 still replaces revision 1 content.
		snapshot, err := documents.ApplyEdit(ctx, be, documents.EditIntent{
			DocID: info.ID, UserID: userB.UserID, Content: "bar", BasedOnRevision: 0,
		})
		assert.NoError(t, err)
		assert.Equal(t, "bar", snapshot.Content)
		assert.Equal(t, int64(2), snapshot.Revision)
	})

	t.Run("final revision equals accepted applies test", func(t *testing.T) {
		be := setUpBackend(t)
		info, err := documents.Create(ctx, be, userA)
		assert.NoError(t, err)

		const applies = 10
		for i := 0; i < applies; i++ {
			_, err := documents.ApplyEdit(ctx, be, documents.EditIntent{
				DocID:   info.ID,
				UserID:  userA.UserID,
				Content: fmt.Sprintf("content-%d", i),
			})
			assert.NoError(t, err)
		}

		found, err := be.DB.FindDocInfoByID(ctx, info.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(applies), found.Revision)
	})

	t.Run("concurrent applies realize one ordering test", func(t *testing.T) {
		be := setUpBackend(t)
		info, err := documents.Create(ctx, be, userA)
		assert.NoError(t, err)

		sub, _, err := documents.Watch(ctx, be, info.ID, userB)
		assert.NoError(t, err)

		// Drain the subscriber and check that its stream is
		// revision-monotonic.
		var streamMu sync.Mutex
		var revisions []int64
		drained := make(chan struct{})
		go func() {
			defer close(drained)
			for event := range sub.Events() {
				streamMu.Lock()
				revisions = append(revisions, event.Snapshot.Revision)
				streamMu.Unlock()
			}
		}()

		const writers = 10
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, err := documents.ApplyEdit(ctx, be, documents.EditIntent{
					DocID:   info.ID,
					UserID:  fmt.Sprintf("writer-%d", n),
					Content: fmt.Sprintf("content-%d", n),
				})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		found, err := be.DB.FindDocInfoByID(ctx, info.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(writers), found.Revision)

		// The winner is whichever writer reached the lock last; the
		// stored content must match the writer stamped on the document.
		assert.Equal(t, fmt.Sprintf("content-%s", found.UpdatedBy[len("writer-"):]), found.Content)

		assert.NoError(t, documents.Unwatch(ctx, be, info.ID, sub))
		<-drained

		streamMu.Lock()
		defer streamMu.Unlock()
		assert.Len(t, revisions, writers)
		for i := 1; i < len(revisions); i++ {
			assert.Less(t, revisions[i-1], revisions[i])
		}
	})
}

func TestWatch(t *testing.T) {
	ctx := context.Background()

	t.Run("initial snapshot matches state at watch time test", func(t *testing.T) {
		be := setUpBackend(t)
		info, err := documents.Create(ctx, be, userA)
		assert.NoError(t, err)

		_, err = documents.ApplyEdit(ctx, be, documents.EditIntent{
			DocID: info.ID, UserID: userA.UserID, Content: "hello",
		})
		assert.NoError(t, err)

		// No mutation happens afterwards; the snapshot must still carry
		// the current state.
		sub, snapshot, err := documents.Watch(ctx, be, info.ID, userB)
		assert.NoError(t, err)
		assert.Equal(t, "hello", snapshot.Content)
		assert.Equal(t, int64(1), snapshot.Revision)
		assert.NoError(t, documents.Unwatch(ctx, be, info.ID, sub))
	})

	t.Run("watch unknown document test", func(t *testing.T) {
		be := setUpBackend(t)

		_, _, err := documents.Watch(ctx, be, types.NewID(), userA)
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
	})

	t.Run("unwatch leaves only after last connection test", func(t *testing.T) {
		be := setUpBackend(t)
		info, err := documents.Create(ctx, be, userA)
		assert.NoError(t, err)

		// User B opens two tabs.
		_, err = documents.Join(ctx, be, info.ID, userB)
		assert.NoError(t, err)
		tab1, _, err := documents.Watch(ctx, be, info.ID, userB)
		assert.NoError(t, err)
		tab2, _, err := documents.Watch(ctx, be, info.ID, userB)
		assert.NoError(t, err)

		assert.NoError(t, documents.Unwatch(ctx, be, info.ID, tab1))
		found, err := be.DB.FindDocInfoByID(ctx, info.ID)
		assert.NoError(t, err)
		assert.Len(t, found.ActiveUsers, 2)

		assert.NoError(t, documents.Unwatch(ctx, be, info.ID, tab2))
		found, err = be.DB.FindDocInfoByID(ctx, info.ID)
		assert.NoError(t, err)
		assert.Len(t, found.ActiveUsers, 1)
		assert.Equal(t, userA.UserID, found.ActiveUsers[0].UserID)
	})
}

func TestScenario(t *testing.T) {
	ctx := context.Background()

	t.Run("two user collaboration test", func(t *testing.T) {
		be := setUpBackend(t)

		// User A creates a document and watches it.
		info, err := documents.Create(ctx, be, userA)
		assert.NoError(t, err)
		subA, snapshot, err := documents.Watch(ctx, be, info.ID, userA)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), snapshot.Revision)

		// A submits "hello".
		_, err = documents.ApplyEdit(ctx, be, documents.EditIntent{
			DocID: info.ID, UserID: userA.UserID, Content: "hello", BasedOnRevision: 0,
		})
		assert.NoError(t, err)

		event := <-subA.Events()
		assert.Equal(t, types.DocChangedEvent, event.Type)
		assert.Equal(t, "hello", event.Snapshot.Content)
		assert.Equal(t, int64(1), event.Snapshot.Revision)
		assert.Len(t, event.Snapshot.ActiveUsers, 1)

		// B joins via the shared id; both receive the presence snapshot.
		snapshotB, err := documents.Join(ctx, be, info.ID, userB)
		assert.NoError(t, err)
		subB, _, err := documents.Watch(ctx, be, info.ID, userB)
		assert.NoError(t, err)
		assert.Len(t, snapshotB.ActiveUsers, 2)

		event = <-subA.Events()
		assert.Equal(t, types.DocWatchedEvent, event.Type)
		assert.Len(t, event.Snapshot.ActiveUsers, 2)

		// A and B submit concurrently; the one reaching the lock second
		// wins and both subscribers converge on the same final content.
		var wg sync.WaitGroup
		for _, edit := range []documents.EditIntent{
			{DocID: info.ID, UserID: userA.UserID, Content: "foo", BasedOnRevision: 1},
			{DocID: info.ID, UserID: userB.UserID, Content: "bar", BasedOnRevision: 1},
		} {
			wg.Add(1)
			go func(intent documents.EditIntent) {
				defer wg.Done()
				_, err := documents.ApplyEdit(ctx, be, intent)
				assert.NoError(t, err)
			}(edit)
		}
		wg.Wait()

		found, err := be.DB.FindDocInfoByID(ctx, info.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), found.Revision)
		assert.Contains(t, []string{"foo", "bar"}, found.Content)

		var lastA, lastB types.Snapshot
		for i := 0; i < 2; i++ {
			lastA = (<-subA.Events()).Snapshot
			lastB = (<-subB.Events()).Snapshot
		}
		assert.Equal(t, found.Content, lastA.Content)
		assert.Equal(t, lastA.Content, lastB.Content)
		assert.Equal(t, lastA.Revision, lastB.Revision)

		assert.NoError(t, documents.Unwatch(ctx, be, info.ID, subA))
		assert.NoError(t, documents.Unwatch(ctx, be, info.ID, subB))
	})
}
