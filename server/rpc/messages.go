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

import "github.com/workpad-team/workpad/api/types"

// Frame types of the watch stream. A client sends edit and leave
// frames; the server answers with snapshot, ack and error frames.
const (
	// FrameEdit is a client's request to replace the document content.
	FrameEdit = "edit"

	// FrameLeave is a client's request to close the stream gracefully.
	FrameLeave = "leave"

	// FrameSnapshot carries a document snapshot: the initial state on
	// open and every broadcast state afterwards.
	FrameSnapshot = "snapshot"

	// FrameAck confirms the sender's own accepted edit.
	FrameAck = "ack"

	// FrameError reports a rejected frame. The stream stays open.
	FrameError = "error"
)

// ClientFrame is a message read from a watch connection.
type ClientFrame struct {
	Type            string `json:"type"`
	Content         string `json:"content"`
	BasedOnRevision int64  `json:"based_on_revision"`
}

// ServerFrame is a message written to a watch connection. Event is set
// on snapshot frames to tell content changes from presence changes
// apart; it is empty on the initial snapshot.
type ServerFrame struct {
	Type     string             `json:"type"`
	Event    types.DocEventType `json:"event,omitempty"`
	Snapshot *types.Snapshot    `json:"snapshot,omitempty"`
	Code     string             `json:"code,omitempty"`
	Message  string             `json:"message,omitempty"`
}

// CreateDocumentResponse is the body of a successful document creation.
type CreateDocumentResponse struct {
	ID        types.ID `json:"id"`
	SharePath string   `json:"share_path"`
}

// ErrorResponse is the body of a failed HTTP request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
