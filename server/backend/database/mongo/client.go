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

// Package mongo implements the database interface using MongoDB. The
// compare-and-set update is a filtered UpdateOne on {_id, revision},
// which keeps last-write-wins intact when multiple server instances
// share the store.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/workpad-team/workpad/api/types"
	"github.com/workpad-team/workpad/server/backend/database"
	"github.com/workpad-team/workpad/server/logging"
)

// ColDocuments is the name of the documents collection.
const ColDocuments = "documents"

// Client is a client that connects to MongoDB and reads or saves
// document records.
type Client struct {
	config *Config
	client *mongo.Client
}

// Dial creates an instance of Client and dials the given MongoDB.
func Dial(conf *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.ParseConnectionTimeout())
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(conf.ConnectionURI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, conf.ParsePingTimeout())
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logging.DefaultLogger().Infof("MongoDB connected, URI: %s, DB: %s", conf.ConnectionURI, conf.Database)

	return &Client{
		config: conf,
		client: client,
	}, nil
}

// Close all resources of this client.
func (c *Client) Close() error {
	if err := c.client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("close mongo client: %w", err)
	}
	return nil
}

func (c *Client) collection(name string) *mongo.Collection {
	return c.client.Database(c.config.Database).Collection(name)
}

// CreateDocInfo stores the given document.
func (c *Client) CreateDocInfo(
	ctx context.Context,
	info *database.DocInfo,
) error {
	if _, err := c.collection(ColDocuments).InsertOne(ctx, info); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create document of %s: %w", info.ID, database.ErrDocumentAlreadyExists)
		}
		return fmt.Errorf("create document of %s: %w", info.ID, err)
	}
	return nil
}

// FindDocInfoByID finds the document of the given ID.
func (c *Client) FindDocInfoByID(
	ctx context.Context,
	id types.ID,
) (*database.DocInfo, error) {
	result := c.collection(ColDocuments).FindOne(ctx, bson.M{
		"_id": id.String(),
	})

	info := &database.DocInfo{}
	if err := result.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("find document of %s: %w", id, database.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("find document of %s: %w", id, err)
	}

	return info, nil
}

// UpdateDocInfo replaces the stored document only when its revision
// still equals expectedRevision.
func (c *Client) UpdateDocInfo(
	ctx context.Context,
	expectedRevision int64,
	info *database.DocInfo,
) error {
	result, err := c.collection(ColDocuments).UpdateOne(ctx, bson.M{
		"_id":      info.ID.String(),
		"revision": expectedRevision,
	}, bson.M{
		"$set": bson.M{
			"content":      info.Content,
			"revision":     info.Revision,
			"updated_by":   info.UpdatedBy,
			"updated_at":   info.UpdatedAt,
			"active_users": info.ActiveUsers,
		},
	})
	if err != nil {
		return fmt.Errorf("update document of %s: %w", info.ID, err)
	}

	if result.MatchedCount == 0 {
		// Either the document is gone or another writer moved the
		// revision between our read and this write.
		if _, err := c.FindDocInfoByID(ctx, info.ID); err != nil {
			return err
		}
		return fmt.Errorf("update document of %s: %w", info.ID, database.ErrConflictOnUpdate)
	}

	return nil
}
