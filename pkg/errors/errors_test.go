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

package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workpad-team/workpad/pkg/errors"
)

func TestStatusError(t *testing.T) {
	t.Run("status and code extraction test", func(t *testing.T) {
		err := errors.NotFound("document not found").WithCode("ErrDocumentNotFound")
		assert.Equal(t, errors.ErrCodeNotFound, errors.StatusOf(err))
		assert.Equal(t, "ErrDocumentNotFound", errors.CodeOf(err))
		assert.Equal(t, "document not found", err.Error())
	})

	t.Run("wrapped error keeps status test", func(t *testing.T) {
		base := errors.FailedPrecond("conflict on update").WithCode("ErrConflictOnUpdate")
		wrapped := fmt.Errorf("update document of abc: %w", base)
		assert.Equal(t, errors.ErrCodeFailedPrecondition, errors.StatusOf(wrapped))
		assert.Equal(t, "ErrConflictOnUpdate", errors.CodeOf(wrapped))
	})

	t.Run("plain error has no status test", func(t *testing.T) {
		assert.Equal(t, errors.StatusCode(0), errors.StatusOf(fmt.Errorf("plain")))
		assert.Equal(t, "", errors.CodeOf(nil))
	})

	t.Run("status string test", func(t *testing.T) {
		assert.Equal(t, "deadline_exceeded", errors.ErrCodeDeadlineExceeded.String())
		assert.Equal(t, "unknown", errors.StatusCode(99).String())
	})
}
