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

// Package presence provides pure functions over a document's active
// participant set. They are evaluated only inside the document's
// serialization point, so the read-modify-write of presence can never
// race. The returned flag tells the caller whether a broadcast is
// warranted, avoiding redundant fan-out.
package presence

import "github.com/workpad-team/workpad/api/types"

// AddIfAbsent returns the active set with the given participant added,
// unless a participant with the same user ID is already present. The
// input slice is not mutated.
func AddIfAbsent(
	set []types.Participant,
	participant types.Participant,
) ([]types.Participant, bool) {
	for _, p := range set {
		if p.UserID == participant.UserID {
			return set, false
		}
	}

	added := make([]types.Participant, 0, len(set)+1)
	added = append(added, set...)
	added = append(added, participant)
	return added, true
}

// Remove returns the active set without the participant of the given
// user ID. Removing an absent user is a no-op, since disconnects can
// race with explicit leaves. The input slice is not mutated.
func Remove(
	set []types.Participant,
	userID string,
) ([]types.Participant, bool) {
	idx := -1
	for i, p := range set {
		if p.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return set, false
	}

	removed := make([]types.Participant, 0, len(set)-1)
	removed = append(removed, set[:idx]...)
	removed = append(removed, set[idx+1:]...)
	return removed, true
}
