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

// Participant is a user currently attached to a document. It records
// presence only; the user's identity and credentials are owned by the
// gateway.
type Participant struct {
	// UserID is the authenticated user identifier, stable across a session.
	UserID string `json:"user_id" bson:"user_id"`

	// DisplayName is the label shown to other participants. The gateway
	// falls back to the user's email when no name is set.
	DisplayName string `json:"display_name" bson:"display_name"`

	// JoinedAt is the time the user joined the document.
	JoinedAt time.Time `json:"joined_at" bson:"joined_at"`
}
