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

// Package backend bundles the resources the engine operates on: the
// document store, the per-document lockers, the subscription hub and
// the metrics.
package backend

import (
	"fmt"
	"os"

	"github.com/workpad-team/workpad/pkg/locker"
	"github.com/workpad-team/workpad/server/backend/database"
	memdb "github.com/workpad-team/workpad/server/backend/database/memory"
	"github.com/workpad-team/workpad/server/backend/database/mongo"
	"github.com/workpad-team/workpad/server/backend/pubsub"
	"github.com/workpad-team/workpad/server/logging"
	"github.com/workpad-team/workpad/server/profiling/prometheus"
)

// Backend manages the server's resources such as the database, the
// lockers and the pubsub hub.
type Backend struct {
	Config *Config

	// DB is the document store instance.
	DB database.Database
	// Lockers provides the per-document serialization points.
	Lockers *locker.Locker
	// PubSub is used to deliver snapshots to subscribers.
	PubSub *pubsub.PubSub
	// Metrics is used to expose metrics.
	Metrics *prometheus.Metrics
}

// New creates a new instance of Backend. The mongo configuration
// selects the durable store; the in-memory store is used when it is
// absent.
func New(
	conf *Config,
	mongoConf *mongo.Config,
	metrics *prometheus.Metrics,
) (*Backend, error) {
	hostname := conf.Hostname
	if hostname == "" {
		machine, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("os.Hostname: %w", err)
		}
		conf.Hostname = machine
		hostname = machine
	}

	var db database.Database
	var err error
	if mongoConf != nil {
		db, err = mongo.Dial(mongoConf)
		if err != nil {
			return nil, err
		}
	} else {
		db, err = memdb.New()
		if err != nil {
			return nil, err
		}
	}

	dbInfo := "memory"
	if mongoConf != nil {
		dbInfo = mongoConf.ConnectionURI
	}
	logging.DefaultLogger().Infof(
		"backend created: hostname: %s, db: %s",
		hostname,
		dbInfo,
	)

	return &Backend{
		Config:  conf,
		DB:      db,
		Lockers: locker.New(),
		PubSub:  pubsub.New(),
		Metrics: metrics,
	}, nil
}

// Shutdown closes all resources of this backend.
func (b *Backend) Shutdown() error {
	logging.DefaultLogger().Info("backend stopped")
	if err := b.DB.Close(); err != nil {
		return err
	}
	return nil
}
