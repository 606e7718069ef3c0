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

package database

import (
	"time"

	"github.com/workpad-team/workpad/api/types"
)

// DocInfo is the stored representation of a document: its content,
// revision metadata and the active participant set. Presence lives in
// the document record so join/leave and edits share one
// compare-and-set path.
type DocInfo struct {
	// ID is the unique identifier of the document.
	ID types.ID `json:"id" bson:"_id"`

	// Content is the full text of the document.
	Content string `json:"content" bson:"content"`

	// Revision increases by one with every accepted mutation.
	Revision int64 `json:"revision" bson:"revision"`

	// CreatedBy is the user that created the document.
	CreatedBy string `json:"created_by" bson:"created_by"`

	// UpdatedBy is the user that produced the latest accepted mutation.
	UpdatedBy string `json:"updated_by" bson:"updated_by"`

	// CreatedAt is the creation time of the document.
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// UpdatedAt is the time of the latest accepted mutation.
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	// ActiveUsers is the set of participants currently attached to the
	// document. No duplicate user identifiers.
	ActiveUsers []types.Participant `json:"active_users" bson:"active_users"`
}

// DeepCopy returns a deep copy of this DocInfo.
func (info *DocInfo) DeepCopy() *DocInfo {
	if info == nil {
		return nil
	}

	copied := *info
	copied.ActiveUsers = make([]types.Participant, len(info.ActiveUsers))
	copy(copied.ActiveUsers, info.ActiveUsers)
	return &copied
}

// Snapshot returns the broadcastable view of this DocInfo.
func (info *DocInfo) Snapshot() *types.Snapshot {
	users := make([]types.Participant, len(info.ActiveUsers))
	copy(users, info.ActiveUsers)

	return &types.Snapshot{
		DocID:       info.ID,
		Content:     info.Content,
		Revision:    info.Revision,
		UpdatedBy:   info.UpdatedBy,
		UpdatedAt:   info.UpdatedAt,
		ActiveUsers: users,
	}
}
