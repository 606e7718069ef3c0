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

// Package database provides the storage contract for documents. The
// engine mutates documents only through this contract; the update is a
// compare-and-set so last-write-wins stays intact even when several
// server instances share one durable store.
package database

import (
	"context"

	"github.com/workpad-team/workpad/api/types"
	"github.com/workpad-team/workpad/pkg/errors"
)

var (
	// ErrDocumentNotFound is returned when the document could not be found.
	ErrDocumentNotFound = errors.NotFound("document not found").WithCode("ErrDocumentNotFound")

	// ErrDocumentAlreadyExists is returned when a document with the given
	// ID already exists.
	ErrDocumentAlreadyExists = errors.AlreadyExists("document already exists").WithCode("ErrDocumentAlreadyExists")

	// ErrConflictOnUpdate is returned when the compare-and-set failed
	// because the stored revision moved. It is absorbed by the engine's
	// retry loop and never surfaced to clients.
	ErrConflictOnUpdate = errors.FailedPrecond("conflict on update").WithCode("ErrConflictOnUpdate")
)

// Database reads and saves document records.
type Database interface {
	// Close closes all resources of this database.
	Close() error

	// CreateDocInfo stores the given document. It fails with
	// ErrDocumentAlreadyExists when the ID is taken.
	CreateDocInfo(ctx context.Context, info *DocInfo) error

	// FindDocInfoByID returns the document of the given ID. It fails
	// with ErrDocumentNotFound when the ID does not resolve.
	FindDocInfoByID(ctx context.Context, id types.ID) (*DocInfo, error)

	// UpdateDocInfo replaces the stored document only when its revision
	// still equals expectedRevision. It fails with ErrConflictOnUpdate
	// when the revision moved and ErrDocumentNotFound when the document
	// is gone.
	UpdateDocInfo(ctx context.Context, expectedRevision int64, info *DocInfo) error
}
