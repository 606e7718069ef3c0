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

// Package documents serializes concurrent edits of one document into a
// single timeline and turns presence transitions into active-set
// updates, emitting a snapshot after every accepted change.
//
// All mutations of one document run under that document's lock, so
// "arrival order" is well defined. The conflict policy is
// last-write-wins by arrival order at the lock: an accepted edit fully
// replaces the content. The intent's based-on revision never gates or
// merges a write; it is recorded for observability only. Publishing a
// snapshot only enqueues it into the subscribers' buffered channels,
// so it stays on the fast path inside the lock while the socket writes
// happen elsewhere; enqueuing under the lock is what keeps every
// subscriber's stream revision-monotonic.
package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/workpad-team/workpad/api/types"
	pkgerrors "github.com/workpad-team/workpad/pkg/errors"
	"github.com/workpad-team/workpad/server/backend"
	"github.com/workpad-team/workpad/server/backend/database"
	"github.com/workpad-team/workpad/server/backend/pubsub"
	"github.com/workpad-team/workpad/server/logging"
	"github.com/workpad-team/workpad/server/presence"
)

const (
	// maxCreateRetries bounds identifier generation on collision.
	maxCreateRetries = 3

	// maxUpdateRetries bounds the internal compare-and-set retry loop.
	// Conflicts can only come from other server instances sharing the
	// store; hitting the bound means pathological contention.
	maxUpdateRetries = 32
)

var (
	// ErrDocumentLockTimeout is returned when a document's serialization
	// point could not be acquired within the configured bound. Callers
	// may retry with backoff.
	ErrDocumentLockTimeout = pkgerrors.DeadlineExceeded("timeout waiting for document lock").WithCode("ErrDocumentLockTimeout")

	// ErrDocumentIDExhausted is returned when identifier generation kept
	// colliding. This should be unreachable in practice.
	ErrDocumentIDExhausted = pkgerrors.Internal("document id generation exhausted").WithCode("ErrDocumentIDExhausted")

	// ErrDocumentTooLarge is returned when the proposed content exceeds
	// the configured size cap.
	ErrDocumentTooLarge = pkgerrors.InvalidArgument("document content exceeds size limit").WithCode("ErrDocumentTooLarge")

	// ErrTooManyConflicts is returned when the internal compare-and-set
	// retries were exhausted.
	ErrTooManyConflicts = pkgerrors.Unavailable("too much contention on document").WithCode("ErrTooManyConflicts")
)

// EditIntent is a client's request to replace a document's content. It
// exists only for the duration of one ApplyEdit call.
type EditIntent struct {
	DocID           types.ID
	UserID          string
	Content         string
	BasedOnRevision int64
}

// docLockKey returns the lock key of the given document.
func docLockKey(docID types.ID) string {
	return fmt.Sprintf("doc-%s", docID)
}

// Create allocates a fresh document owned by the given participant:
// empty content, revision 0 and an active set containing the owner.
func Create(
	ctx context.Context,
	be *backend.Backend,
	owner types.Participant,
) (*database.DocInfo, error) {
	now := time.Now()
	if owner.JoinedAt.IsZero() {
		owner.JoinedAt = now
	}

	for i := 0; i < maxCreateRetries; i++ {
		info := &database.DocInfo{
			ID:          types.NewID(),
			Content:     "",
			Revision:    0,
			CreatedBy:   owner.UserID,
			UpdatedBy:   owner.UserID,
			CreatedAt:   now,
			UpdatedAt:   now,
			ActiveUsers: []types.Participant{owner},
		}

		err := be.DB.CreateDocInfo(ctx, info)
		if errors.Is(err, database.ErrDocumentAlreadyExists) {
			logging.From(ctx).Warnf("document id collision: %s", info.ID)
			continue
		}
		if err != nil {
			return nil, err
		}

		logging.From(ctx).Infof("document created: %s by %s", info.ID, owner.UserID)
		return info, nil
	}

	return nil, ErrDocumentIDExhausted
}

// FindDocInfo returns the document of the given id.
func FindDocInfo(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
) (*database.DocInfo, error) {
	return be.DB.FindDocInfoByID(ctx, docID)
}

// Join adds the participant to the document's active set and returns
// the current snapshot. Re-joining an already-active participant is a
// no-op that still returns the snapshot, so duplicate-entry races from
// multiple tabs or reconnects are harmless. A snapshot is broadcast
// only when the active set actually changed.
func Join(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	participant types.Participant,
) (*types.Snapshot, error) {
	if participant.JoinedAt.IsZero() {
		participant.JoinedAt = time.Now()
	}

	key := docLockKey(docID)
	if !be.Lockers.LockWithTimeout(key, be.Config.ParseDocLockTimeout()) {
		return nil, fmt.Errorf("join %s: %w", docID, ErrDocumentLockTimeout)
	}
	defer func() {
		if err := be.Lockers.Unlock(key); err != nil {
			logging.From(ctx).Error(err)
		}
	}()

	for i := 0; i < maxUpdateRetries; i++ {
		info, err := be.DB.FindDocInfoByID(ctx, docID)
		if err != nil {
			return nil, err
		}

		users, changed := presence.AddIfAbsent(info.ActiveUsers, participant)
		if !changed {
			return info.Snapshot(), nil
		}

		// Presence transitions do not advance the revision; it counts
		// accepted content mutations only. The compare-and-set still
		// guards against a concurrent edit moving the revision.
		info.ActiveUsers = users

		if err := be.DB.UpdateDocInfo(ctx, info.Revision, info); err != nil {
			if errors.Is(err, database.ErrConflictOnUpdate) {
				be.Metrics.AddCASRetries(1)
				continue
			}
			return nil, err
		}

		snapshot := info.Snapshot()
		be.PubSub.Publish(ctx, types.DocEvent{
			Type:     types.DocWatchedEvent,
			DocID:    docID,
			Snapshot: *snapshot,
		})
		be.Metrics.AddJoins(1)
		be.Metrics.AddSnapshotsPublished(1)
		return snapshot, nil
	}

	return nil, fmt.Errorf("join %s: %w", docID, ErrTooManyConflicts)
}

// Leave removes the user from the document's active set. Leaving a
// document the user is not attached to, or one that no longer resolves,
// is a no-op since disconnects race with explicit leaves. A snapshot is
// broadcast only on actual removal.
func Leave(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	userID string,
) error {
	key := docLockKey(docID)
	if !be.Lockers.LockWithTimeout(key, be.Config.ParseDocLockTimeout()) {
		return fmt.Errorf("leave %s: %w", docID, ErrDocumentLockTimeout)
	}
	defer func() {
		if err := be.Lockers.Unlock(key); err != nil {
			logging.From(ctx).Error(err)
		}
	}()

	for i := 0; i < maxUpdateRetries; i++ {
		info, err := be.DB.FindDocInfoByID(ctx, docID)
		if errors.Is(err, database.ErrDocumentNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		users, changed := presence.Remove(info.ActiveUsers, userID)
		if !changed {
			return nil
		}

		info.ActiveUsers = users

		if err := be.DB.UpdateDocInfo(ctx, info.Revision, info); err != nil {
			if errors.Is(err, database.ErrConflictOnUpdate) {
				be.Metrics.AddCASRetries(1)
				continue
			}
			return err
		}

		be.PubSub.Publish(ctx, types.DocEvent{
			Type:     types.DocUnwatchedEvent,
			DocID:    docID,
			Snapshot: *info.Snapshot(),
		})
		be.Metrics.AddLeaves(1)
		be.Metrics.AddSnapshotsPublished(1)
		return nil
	}

	return fmt.Errorf("leave %s: %w", docID, ErrTooManyConflicts)
}

// ApplyEdit applies the given intent to its document: the content is
// unconditionally replaced, the revision incremented, and the new
// snapshot emitted to all subscribers. The write that arrives at the
// document lock second wins, regardless of the client's based-on
// revision; a stale base is only counted and logged. Store-level
// conflicts are retried here and never surfaced to the client.
func ApplyEdit(
	ctx context.Context,
	be *backend.Backend,
	intent EditIntent,
) (*types.Snapshot, error) {
	start := time.Now()
	defer func() {
		be.Metrics.ObserveApplySeconds(time.Since(start).Seconds())
	}()

	if len(intent.Content) > be.Config.MaxDocumentSize {
		return nil, fmt.Errorf("apply edit to %s: %w", intent.DocID, ErrDocumentTooLarge)
	}

	key := docLockKey(intent.DocID)
	if !be.Lockers.LockWithTimeout(key, be.Config.ParseDocLockTimeout()) {
		return nil, fmt.Errorf("apply edit to %s: %w", intent.DocID, ErrDocumentLockTimeout)
	}
	defer func() {
		if err := be.Lockers.Unlock(key); err != nil {
			logging.From(ctx).Error(err)
		}
	}()

	for i := 0; i < maxUpdateRetries; i++ {
		info, err := be.DB.FindDocInfoByID(ctx, intent.DocID)
		if err != nil {
			return nil, err
		}

		if intent.BasedOnRevision < info.Revision {
			be.Metrics.AddStaleBaseEdits(1)
			if logging.Enabled(zap.DebugLevel) {
				logging.From(ctx).Debugf(
					"stale base edit on %s: based on %d, at %d",
					intent.DocID,
					intent.BasedOnRevision,
					info.Revision,
				)
			}
		}

		expected := info.Revision
		info.Content = intent.Content
		info.Revision++
		info.UpdatedBy = intent.UserID
		info.UpdatedAt = time.Now()

		if err := be.DB.UpdateDocInfo(ctx, expected, info); err != nil {
			if errors.Is(err, database.ErrConflictOnUpdate) {
				be.Metrics.AddCASRetries(1)
				continue
			}
			return nil, err
		}

		snapshot := info.Snapshot()
		be.PubSub.Publish(ctx, types.DocEvent{
			Type:     types.DocChangedEvent,
			DocID:    intent.DocID,
			Snapshot: *snapshot,
		})
		be.Metrics.AddEdits(1)
		be.Metrics.AddSnapshotsPublished(1)
		return snapshot, nil
	}

	return nil, fmt.Errorf("apply edit to %s: %w", intent.DocID, ErrTooManyConflicts)
}

// Watch subscribes the participant to the document's snapshot stream
// and returns the current snapshot. The subscription is registered
// before the read, so a subscriber can never miss the state between
// "subscribe" and the next change event.
func Watch(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	subscriber types.Participant,
) (*pubsub.Subscription, *types.Snapshot, error) {
	sub := be.PubSub.Subscribe(ctx, subscriber, docID)

	info, err := be.DB.FindDocInfoByID(ctx, docID)
	if err != nil {
		be.PubSub.Unsubscribe(ctx, docID, sub)
		return nil, nil, err
	}

	be.Metrics.AddWatchConnections(1)
	return sub, info.Snapshot(), nil
}

// Unwatch removes the subscription. When it was the user's last live
// subscription to the document, the user leaves the active set as well.
func Unwatch(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	sub *pubsub.Subscription,
) error {
	lastOfUser := be.PubSub.Unsubscribe(ctx, docID, sub)
	be.Metrics.AddWatchConnections(-1)

	if !lastOfUser {
		return nil
	}
	return Leave(ctx, be, docID, sub.Subscriber().UserID)
}
