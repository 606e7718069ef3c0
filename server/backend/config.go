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

package backend

import (
	"fmt"
	"os"
	"time"
)

// Config is the configuration for creating a Backend instance.
type Config struct {
	// DocLockTimeout is the upper bound for waiting on a document's
	// serialization point. A join or edit that cannot acquire it within
	// this window fails instead of blocking indefinitely.
	DocLockTimeout string `yaml:"DocLockTimeout"`

	// MaxDocumentSize is the maximum accepted content length in bytes.
	MaxDocumentSize int `yaml:"MaxDocumentSize"`

	// Hostname is the name of this server. The machine hostname is used
	// when empty.
	Hostname string `yaml:"Hostname"`
}

// Validate returns an error if the provided Config is invalid.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.DocLockTimeout); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--doc-lock-timeout" flag: %w`,
			c.DocLockTimeout,
			err,
		)
	}

	if c.MaxDocumentSize <= 0 {
		return fmt.Errorf(
			`invalid argument %d for "--max-document-size" flag: must be positive`,
			c.MaxDocumentSize,
		)
	}

	return nil
}

// ParseDocLockTimeout returns the document lock timeout duration.
func (c *Config) ParseDocLockTimeout() time.Duration {
	result, err := time.ParseDuration(c.DocLockTimeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse doc lock timeout:", err)
		os.Exit(1)
	}

	return result
}
