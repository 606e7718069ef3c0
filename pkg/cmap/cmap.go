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

// Package cmap provides a sharded concurrent map.
package cmap

import (
	"fmt"
	"hash/fnv"
	"sync"
)

// numShards is the number of shards. Sharding reduces lock contention
// when many goroutines touch distinct keys.
const numShards = 16

type shard[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// Map is a concurrent map that is safe for use from multiple
// goroutines.
type Map[K comparable, V any] struct {
	shards [numShards]shard[K, V]
}

// New creates a new Map.
func New[K comparable, V any]() *Map[K, V] {
	m := &Map[K, V]{}
	for i := range m.shards {
		m.shards[i].items = make(map[K]V)
	}
	return m
}

func (m *Map[K, V]) shardFor(key K) *shard[K, V] {
	h := fnv.New32a()
	switch k := any(key).(type) {
	case string:
		_, _ = h.Write([]byte(k))
	default:
		_, _ = fmt.Fprintf(h, "%v", key)
	}
	return &m.shards[h.Sum32()%numShards]
}

// Set stores a key-value pair.
func (m *Map[K, V]) Set(key K, value V) {
	s := m.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = value
}

// Get retrieves the value stored under the given key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	s := m.shardFor(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.items[key]
	return value, exists
}

// UpsertFunc computes the value to store given the current value, if any.
type UpsertFunc[K comparable, V any] func(value V, exists bool) V

// Upsert atomically inserts or updates the value under the given key.
func (m *Map[K, V]) Upsert(key K, fn UpsertFunc[K, V]) V {
	s := m.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.items[key]
	res := fn(v, exists)
	s.items[key] = res
	return res
}

// DeleteFunc reports whether the value under the key should be removed.
type DeleteFunc[K comparable, V any] func(value V, exists bool) bool

// Delete removes the value under the given key when fn approves. It
// returns fn's decision.
func (m *Map[K, V]) Delete(key K, fn DeleteFunc[K, V]) bool {
	s := m.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	value, exists := s.items[key]
	del := fn(value, exists)
	if del && exists {
		delete(s.items, key)
	}
	return del
}

// Len returns the number of items in the map.
func (m *Map[K, V]) Len() int {
	count := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		count += len(s.items)
		s.mu.RUnlock()
	}
	return count
}

// Values returns a slice of all values in the map.
func (m *Map[K, V]) Values() []V {
	var values []V
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		for _, v := range s.items {
			values = append(values, v)
		}
		s.mu.RUnlock()
	}
	return values
}
