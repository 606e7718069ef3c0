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

package server_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/workpad-team/workpad/server"
)

func TestNewConfigFromFile(t *testing.T) {
	t.Run("fail read config file test", func(t *testing.T) {
		conf := server.NewConfig()
		assert.Equal(t, conf.RPCAddr(), "localhost:"+strconv.Itoa(server.DefaultRPCPort))
		_, err := server.NewConfigFromFile("nowhere.yml")
		assert.Error(t, err)
		assert.Equal(t, conf.RPC.Port, server.DefaultRPCPort)
		assert.Equal(t, conf.Backend.MaxDocumentSize, server.DefaultMaxDocumentSize)
	})

	t.Run("read config file test", func(t *testing.T) {
		conf, err := server.NewConfigFromFile("config.sample.yml")
		assert.NoError(t, err)
		assert.NoError(t, conf.Validate())

		assert.Equal(t, conf.RPC.Port, server.DefaultRPCPort)
		assert.Equal(t, conf.RPC.MaxRequestBytes, uint64(server.DefaultRPCMaxRequestBytes))
		assert.Equal(t, conf.Profiling.Port, server.DefaultProfilingPort)

		lockTimeout, err := time.ParseDuration(conf.Backend.DocLockTimeout)
		assert.NoError(t, err)
		assert.Equal(t, lockTimeout, server.DefaultDocLockTimeout)
		assert.Equal(t, conf.Backend.MaxDocumentSize, server.DefaultMaxDocumentSize)

		connTimeout, err := time.ParseDuration(conf.Mongo.ConnectionTimeout)
		assert.NoError(t, err)
		assert.Equal(t, connTimeout, server.DefaultMongoConnectionTimeout)
		assert.Equal(t, conf.Mongo.ConnectionURI, server.DefaultMongoConnectionURI)
		assert.Equal(t, conf.Mongo.Database, server.DefaultMongoDatabase)

		pingTimeout, err := time.ParseDuration(conf.Mongo.PingTimeout)
		assert.NoError(t, err)
		assert.Equal(t, pingTimeout, server.DefaultMongoPingTimeout)
	})

	t.Run("defaults filled in for partial file test", func(t *testing.T) {
		conf := &server.Config{}
		assert.Nil(t, conf.RPC)

		conf = server.NewConfig()
		assert.Equal(t, conf.RPC.PingInterval, server.DefaultRPCPingInterval.String())
		assert.Equal(t, conf.Backend.DocLockTimeout, server.DefaultDocLockTimeout.String())
		assert.Nil(t, conf.Mongo)
	})
}
