// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package testsupport

import (
	"context"
	"sync"
)

// MemoryLock is a process-local lock.DistributedLock. Instances created
// with [MemoryLock.Peer] share state, like two hosts on one database.
type MemoryLock struct {
	state *lockState
	held  bool
}

type lockState struct {
	mu       sync.Mutex
	held     bool
	acquires int
	releases int
	err      error
}

// NewMemoryLock creates a free lock.
func NewMemoryLock() *MemoryLock {
	return &MemoryLock{state: &lockState{}}
}

// Peer returns another handle on the same lock.
func (l *MemoryLock) Peer() *MemoryLock {
	return &MemoryLock{state: l.state}
}

// FailWith makes TryAcquire return err.
func (l *MemoryLock) FailWith(err error) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.err = err
}

// Held reports whether any handle holds the lock.
func (l *MemoryLock) Held() bool {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return l.state.held
}

// Counts returns successful acquisitions and releases.
func (l *MemoryLock) Counts() (acquires, releases int) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return l.state.acquires, l.state.releases
}

func (l *MemoryLock) TryAcquire(ctx context.Context) (bool, error) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()

	if l.state.err != nil {
		return false, l.state.err
	}
	if l.state.held {
		return false, nil
	}
	l.state.held = true
	l.held = true
	l.state.acquires++
	return true, nil
}

func (l *MemoryLock) Release(ctx context.Context) error {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()

	if !l.held {
		return nil
	}
	l.held = false
	l.state.held = false
	l.state.releases++
	return nil
}
