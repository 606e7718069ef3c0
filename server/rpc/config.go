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

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidRPCPort occurs when the port in the config is invalid.
	ErrInvalidRPCPort = errors.New("invalid port number for RPC server")

	// ErrInvalidPingInterval occurs when the ping interval is invalid.
	ErrInvalidPingInterval = errors.New("invalid ping interval for RPC server")
)

// Config is the configuration for creating a Server instance.
type Config struct {
	// Port is the port number for the RPC server.
	Port int `yaml:"Port"`

	// MaxRequestBytes is the maximum client request size in bytes the server will accept.
	MaxRequestBytes uint64 `yaml:"MaxRequestBytes"`

	// PingInterval is the interval between pings sent on watch connections.
	// A connection that misses two consecutive pings is closed.
	PingInterval string `yaml:"PingInterval"`
}

// Validate validates the port number and the ping interval.
func (c *Config) Validate() error {
	if c.Port < 1 || 65535 < c.Port {
		return fmt.Errorf("must be between 1 and 65535, given %d: %w", c.Port, ErrInvalidRPCPort)
	}

	if _, err := time.ParseDuration(c.PingInterval); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--rpc-ping-interval" flag: %w`,
			c.PingInterval,
			ErrInvalidPingInterval,
		)
	}

	return nil
}

// ParsePingInterval returns the ping interval as a time.Duration. It
// panics when the configuration was not validated before.
func (c *Config) ParsePingInterval() time.Duration {
	result, err := time.ParseDuration(c.PingInterval)
	if err != nil {
		panic(ErrInvalidPingInterval)
	}

	return result
}
