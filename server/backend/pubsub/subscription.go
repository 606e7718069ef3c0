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

package pubsub

import (
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/workpad-team/workpad/api/types"
)

const (
	// publishTimeout bounds the enqueue of one event to one subscriber.
	// A subscriber that cannot accept an event within this window is
	// treated as dead and dropped.
	publishTimeout = 100 * time.Millisecond

	// eventChanSize is the buffer of a subscription's event channel.
	eventChanSize = 16
)

// Subscription represents one endpoint subscribed to a document. A
// user may hold several subscriptions to the same document, one per
// open connection.
type Subscription struct {
	id         string
	subscriber types.Participant

	mu     sync.Mutex
	closed bool
	events chan types.DocEvent
}

// NewSubscription creates a new instance of Subscription.
func NewSubscription(subscriber types.Participant) *Subscription {
	return &Subscription{
		id:         xid.New().String(),
		subscriber: subscriber,
		events:     make(chan types.DocEvent, eventChanSize),
	}
}

// ID returns the id of this subscription.
func (s *Subscription) ID() string {
	return s.id
}

// Subscriber returns the participant behind this subscription.
func (s *Subscription) Subscriber() types.Participant {
	return s.subscriber
}

// Events returns the event channel of this subscription. The channel
// is closed when the subscription is closed.
func (s *Subscription) Events() <-chan types.DocEvent {
	return s.events
}

// Close closes this subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// Publish delivers the given event to this subscription. It reports
// whether the event was accepted; a false return means the
// subscription is closed or its consumer stopped draining.
func (s *Subscription) Publish(event types.DocEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.events <- event:
		return true
	case <-time.After(publishTimeout):
		return false
	}
}
