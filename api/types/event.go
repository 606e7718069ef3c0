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

// DocEventType represents the kind of event the server delivers to
// subscribers of a document.
type DocEventType string

const (
	// DocChangedEvent indicates that the document content was replaced
	// by an accepted edit.
	DocChangedEvent DocEventType = "doc-changed"

	// DocWatchedEvent indicates that a participant joined the document.
	DocWatchedEvent DocEventType = "doc-watched"

	// DocUnwatchedEvent indicates that a participant left the document.
	DocUnwatchedEvent DocEventType = "doc-unwatched"
)

// DocEvent is an event delivered to every subscriber of a document.
// Events of one document are delivered in emission order.
type DocEvent struct {
	Type     DocEventType `json:"type"`
	DocID    ID           `json:"doc_id"`
	Snapshot Snapshot     `json:"snapshot"`
}
