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

// Package types provides the types shared between the server and its
// clients. The JSON form of these types is the durable wire schema;
// additions must be new optional fields only.
package types

import (
	"errors"
	"fmt"

	"github.com/rs/xid"
)

// ErrInvalidID is returned when the given ID is not a valid document ID.
var ErrInvalidID = errors.New("invalid ID")

// ID represents an opaque identifier of a document. IDs are generated
// at creation time and are globally unique.
type ID string

// NewID generates a fresh ID.
func NewID() ID {
	return ID(xid.New().String())
}

// String returns a string representation of this ID.
func (id ID) String() string {
	return string(id)
}

// Validate returns an error if this ID is not a well-formed identifier.
func (id ID) Validate() error {
	if _, err := xid.FromString(id.String()); err != nil {
		return fmt.Errorf("%s: %w", id, ErrInvalidID)
	}
	return nil
}
