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

package types

import "time"

// Snapshot is the broadcastable view of a document at a point in time.
// It is immutable once constructed. Snapshot.Revision always matches
// the document revision that produced it, so a client can detect
// staleness by comparing its last-seen revision.
type Snapshot struct {
	// DocID is the identifier of the document this snapshot belongs to.
	DocID ID `json:"doc_id"`

	// Content is the full text of the document.
	Content string `json:"content"`

	// Revision increases by one with every accepted mutation.
	Revision int64 `json:"revision"`

	// UpdatedBy is the user that produced the latest accepted mutation.
	UpdatedBy string `json:"updated_by,omitempty"`

	// UpdatedAt is the time of the latest accepted mutation.
	UpdatedAt time.Time `json:"updated_at"`

	// ActiveUsers is the set of participants currently attached to the
	// document. A user appears at most once regardless of how many
	// connections they hold.
	ActiveUsers []Participant `json:"active_users"`
}
