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

// Package memory implements the database interface using an in-memory
// database. It is the default store for a single-instance deployment
// and the store used by the tests.
package memory

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"

	"github.com/workpad-team/workpad/api/types"
	"github.com/workpad-team/workpad/server/backend/database"
)

// DB is an in-memory database backed by go-memdb.
type DB struct {
	db *memdb.MemDB
}

// New returns a new in-memory database.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db: memDB,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return nil
}

// CreateDocInfo stores the given document.
func (d *DB) CreateDocInfo(
	_ context.Context,
	info *database.DocInfo,
) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", info.ID.String())
	if err != nil {
		return fmt.Errorf("create document of %s: %w", info.ID, err)
	}
	if raw != nil {
		return fmt.Errorf("create document of %s: %w", info.ID, database.ErrDocumentAlreadyExists)
	}

	if err := txn.Insert(tblDocuments, info.DeepCopy()); err != nil {
		return fmt.Errorf("create document of %s: %w", info.ID, err)
	}
	txn.Commit()
	return nil
}

// FindDocInfoByID finds the document of the given ID.
func (d *DB) FindDocInfoByID(
	_ context.Context,
	id types.ID,
) (*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find document of %s: %w", id, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("find document of %s: %w", id, database.ErrDocumentNotFound)
	}

	return raw.(*database.DocInfo).DeepCopy(), nil
}

// UpdateDocInfo replaces the stored document only when its revision
// still equals expectedRevision.
func (d *DB) UpdateDocInfo(
	_ context.Context,
	expectedRevision int64,
	info *database.DocInfo,
) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", info.ID.String())
	if err != nil {
		return fmt.Errorf("update document of %s: %w", info.ID, err)
	}
	if raw == nil {
		return fmt.Errorf("update document of %s: %w", info.ID, database.ErrDocumentNotFound)
	}

	loaded := raw.(*database.DocInfo)
	if loaded.Revision != expectedRevision {
		return fmt.Errorf("update document of %s: %w", info.ID, database.ErrConflictOnUpdate)
	}

	if err := txn.Insert(tblDocuments, info.DeepCopy()); err != nil {
		return fmt.Errorf("update document of %s: %w", info.ID, err)
	}
	txn.Commit()
	return nil
}
