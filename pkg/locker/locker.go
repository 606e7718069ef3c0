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
 *
 * This file was written with reference to moby/locker.
 *   https://github.com/moby/locker
 */

// Package locker provides named locks. A lock is identified by an
// arbitrary string key; locks for distinct keys are independent.
// Lock entries are created on first use and cleaned up once nothing
// holds or waits for them.
//
// Unlike a plain sync.Mutex, acquisition can be bounded in time so a
// stuck holder cannot starve every caller of one key.
package locker

import (
	"errors"
	"sync"
	"time"
)

// ErrNoSuchLock is returned when unlocking a key that has no lock entry.
var ErrNoSuchLock = errors.New("no such lock")

// Locker provides a locking mechanism based on the passed in reference
// name.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockCtr
}

// lockCtr represents a single named lock. The channel holds one token
// when the lock is held; waiters counts goroutines waiting to acquire,
// so entries are not removed from under them.
type lockCtr struct {
	ch      chan struct{}
	waiters int32
}

// New creates a new Locker.
func New() *Locker {
	return &Locker{
		locks: make(map[string]*lockCtr),
	}
}

func (l *Locker) ctr(name string) *lockCtr {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctr, exists := l.locks[name]
	if !exists {
		ctr = &lockCtr{ch: make(chan struct{}, 1)}
		l.locks[name] = ctr
	}
	ctr.waiters++
	return ctr
}

func (l *Locker) release(name string, ctr *lockCtr) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctr.waiters--
	if ctr.waiters == 0 && len(ctr.ch) == 0 {
		delete(l.locks, name)
	}
}

// Lock locks the lock with the given name. If it doesn't exist, one is
// created.
func (l *Locker) Lock(name string) {
	ctr := l.ctr(name)
	ctr.ch <- struct{}{}
	l.release(name, ctr)
}

// TryLock acquires the lock with the given name only if it is free.
func (l *Locker) TryLock(name string) bool {
	ctr := l.ctr(name)
	select {
	case ctr.ch <- struct{}{}:
		l.release(name, ctr)
		return true
	default:
		l.release(name, ctr)
		return false
	}
}

// LockWithTimeout acquires the lock with the given name, giving up
// after the given duration. It reports whether the lock was acquired.
func (l *Locker) LockWithTimeout(name string, timeout time.Duration) bool {
	ctr := l.ctr(name)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ctr.ch <- struct{}{}:
		l.release(name, ctr)
		return true
	case <-timer.C:
		l.release(name, ctr)
		return false
	}
}

// Unlock unlocks the lock with the given name. It returns ErrNoSuchLock
// when the name was never locked or already fully released.
func (l *Locker) Unlock(name string) error {
	l.mu.Lock()
	ctr, exists := l.locks[name]
	if !exists {
		l.mu.Unlock()
		return ErrNoSuchLock
	}
	if ctr.waiters == 0 && len(ctr.ch) > 0 {
		delete(l.locks, name)
	}
	l.mu.Unlock()

	<-ctr.ch
	return nil
}
