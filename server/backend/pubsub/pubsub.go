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

// Package pubsub maps each document to its live set of subscribers and
// delivers every snapshot the engine emits to all of them, in emission
// order. Delivery failure to one endpoint drops that endpoint; it is
// never surfaced to the publisher.
package pubsub

import (
	"context"

	"go.uber.org/zap"

	"github.com/workpad-team/workpad/api/types"
	"github.com/workpad-team/workpad/pkg/cmap"
	"github.com/workpad-team/workpad/server/logging"
)

// Subscriptions is the set of subscriptions of one document.
type Subscriptions struct {
	docID       types.ID
	internalMap *cmap.Map[string, *Subscription]
}

func newSubscriptions(docID types.ID) *Subscriptions {
	return &Subscriptions{
		docID:       docID,
		internalMap: cmap.New[string, *Subscription](),
	}
}

// Set adds the given subscription.
func (s *Subscriptions) Set(sub *Subscription) {
	s.internalMap.Set(sub.ID(), sub)
}

// Values returns the subscriptions of this document.
func (s *Subscriptions) Values() []*Subscription {
	return s.internalMap.Values()
}

// Publish delivers the given event to every subscription. A
// subscription that does not accept the event in time is closed and
// removed.
func (s *Subscriptions) Publish(ctx context.Context, event types.DocEvent) {
	for _, sub := range s.internalMap.Values() {
		if ok := sub.Publish(event); !ok {
			logging.From(ctx).Infof(
				"Publish(%s,%s) to %s timeout or closed",
				event.Type,
				s.docID,
				sub.Subscriber().UserID,
			)
			s.Delete(sub.ID())
		}
	}
}

// Delete removes the subscription of the given id.
func (s *Subscriptions) Delete(id string) bool {
	return s.internalMap.Delete(id, func(sub *Subscription, exists bool) bool {
		if exists {
			sub.Close()
		}
		return exists
	})
}

// Len returns the number of subscriptions of this document.
func (s *Subscriptions) Len() int {
	return s.internalMap.Len()
}

// PubSub routes document events to subscribers, for a single server.
type PubSub struct {
	subscriptionsMap *cmap.Map[types.ID, *Subscriptions]
}

// New creates an instance of PubSub.
func New() *PubSub {
	return &PubSub{
		subscriptionsMap: cmap.New[types.ID, *Subscriptions](),
	}
}

// Subscribe subscribes the given participant to the given document.
func (m *PubSub) Subscribe(
	ctx context.Context,
	subscriber types.Participant,
	docID types.ID,
) *Subscription {
	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf("Subscribe(%s,%s)", docID, subscriber.UserID)
	}

	// The subscription is set inside the Upsert callback. Setting it
	// after the callback returns would race a concurrent Unsubscribe of
	// the document's last other endpoint, which deletes the entry and
	// orphans the new subscription.
	sub := NewSubscription(subscriber)
	_ = m.subscriptionsMap.Upsert(docID, func(subs *Subscriptions, exists bool) *Subscriptions {
		if !exists {
			subs = newSubscriptions(docID)
		}

		subs.Set(sub)
		return subs
	})

	return sub
}

// Unsubscribe removes the given subscription from the document. It is
// idempotent and reports whether the subscriber's user holds no other
// live subscription to the document, so the caller knows when the user
// actually left (multi-tab support).
func (m *PubSub) Unsubscribe(
	ctx context.Context,
	docID types.ID,
	sub *Subscription,
) bool {
	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf("Unsubscribe(%s,%s)", docID, sub.Subscriber().UserID)
	}

	sub.Close()

	subs, ok := m.subscriptionsMap.Get(docID)
	if !ok {
		return false
	}

	if removed := subs.Delete(sub.ID()); !removed {
		// Already unsubscribed; the leave was or will be handled by the
		// call that removed it.
		return false
	}

	lastOfUser := true
	for _, other := range subs.Values() {
		if other.Subscriber().UserID == sub.Subscriber().UserID {
			lastOfUser = false
			break
		}
	}

	m.subscriptionsMap.Delete(docID, func(subs *Subscriptions, exists bool) bool {
		return exists && subs.Len() == 0
	})

	return lastOfUser
}

// Publish delivers the given event to every subscriber of the event's
// document, in emission order.
func (m *PubSub) Publish(ctx context.Context, event types.DocEvent) {
	if subs, ok := m.subscriptionsMap.Get(event.DocID); ok {
		subs.Publish(ctx, event)
	}
}

// UserIDs returns the user ids subscribed to the given document.
func (m *PubSub) UserIDs(docID types.ID) []string {
	subs, ok := m.subscriptionsMap.Get(docID)
	if !ok {
		return nil
	}

	var ids []string
	for _, sub := range subs.Values() {
		ids = append(ids, sub.Subscriber().UserID)
	}
	return ids
}
