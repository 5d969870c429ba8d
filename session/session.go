// Copyright 2023 Michael J. Fromberger. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package session implements the shared state of a running CachewDB server:
// the store, the configured password, the table of authenticated sessions,
// and the shutdown broadcast.
//
// A [Manager] is the single exclusive owner of the store. Connection
// handlers hold a reference to the manager, never to the store directly, and
// every command acquires the manager's lock for its full duration. Commands
// from all connections are therefore totally ordered.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/creachadair/cachewdb/casp"
	"github.com/creachadair/cachewdb/store"
	"github.com/creachadair/cachewdb/value"
	"github.com/creachadair/mds/mapset"
	"github.com/creachadair/msync/trigger"
)

// Authentication errors. Their strings are part of the wire contract.
var (
	// ErrNotAuthenticated is reported for any data command on a session that
	// has not successfully authenticated.
	ErrNotAuthenticated = errors.New("AuthenticationError 'notAuthenticated': Please authenticate before executing queries.")

	// ErrAuthenticationFailed is reported for an AUTH command whose password
	// does not match the configured one.
	ErrAuthenticationFailed = errors.New("AuthenticationError 'authenticationFailed': Wrong password.")
)

// shutdownDrain is how long SignalShutdown waits after broadcasting, so that
// connection handlers can flush their notices before the process exits.
const shutdownDrain = 500 * time.Millisecond

// A Manager owns the store of a running server and the per-connection
// authentication state, and serializes all access to them. It is safe for
// concurrent use by multiple goroutines.
type Manager struct {
	μ        sync.Mutex
	db       *store.Store
	password string
	sessions mapset.Set[string] // remote addresses with a valid AUTH
	shutdown *trigger.Cond
	down     bool // shutdown has been signaled
}

var closedSignal = func() chan struct{} { c := make(chan struct{}); close(c); return c }()

// NewManager constructs a manager owning a new empty store of type dtype,
// guarded by the given shared password.
func NewManager(dtype value.Type, password string) *Manager {
	return &Manager{
		db:       store.New(dtype),
		password: password,
		sessions: mapset.New[string](),
		shutdown: trigger.New(),
	}
}

// Type reports the configured value type of the managed store.
func (m *Manager) Type() value.Type { return m.db.Type() }

// Execute runs one parsed query on behalf of the session identified by addr
// and returns the reply to send. A session that has not authenticated may
// only issue AUTH; anything else reports [ErrNotAuthenticated] without
// touching the store. AUTH on an authenticated session re-runs
// authentication.
func (m *Manager) Execute(addr string, q casp.Query) (casp.Reply, error) {
	m.μ.Lock()
	defer m.μ.Unlock()

	if !m.sessions.Has(addr) {
		if a, ok := q.(casp.Auth); ok {
			return m.authenticate(addr, a.Password)
		}
		return casp.Reply{}, ErrNotAuthenticated
	}

	switch q := q.(type) {
	case casp.Auth:
		return m.authenticate(addr, q.Password)
	case casp.Get:
		v, err := m.db.Get(q.Key)
		if err != nil {
			return casp.Reply{}, err
		}
		return casp.ValuesOK(m.db.Type(), q.Command(), []value.Value{v}), nil
	case casp.GetRange:
		vs, err := m.db.GetRange(q.Lo, q.Hi)
		if err != nil {
			return casp.Reply{}, err
		}
		return casp.ValuesOK(m.db.Type(), q.Command(), vs), nil
	case casp.GetMany:
		vs, err := m.db.GetMany(q.Keys)
		if err != nil {
			return casp.Reply{}, err
		}
		return casp.ValuesOK(m.db.Type(), q.Command(), vs), nil
	case casp.Del:
		m.db.Del(q.Key)
		return casp.OK(q.Command()), nil
	case casp.DelRange:
		if err := m.db.DelRange(q.Lo, q.Hi); err != nil {
			return casp.Reply{}, err
		}
		return casp.OK(q.Command()), nil
	case casp.DelMany:
		m.db.DelMany(q.Keys)
		return casp.OK(q.Command()), nil
	case casp.Set:
		if err := m.db.Set(q.Key, q.Value); err != nil {
			return casp.Reply{}, err
		}
		return casp.OK(q.Command()), nil
	case casp.SetMany:
		if err := m.db.SetMany(q.Pairs); err != nil {
			return casp.Reply{}, err
		}
		return casp.OK(q.Command()), nil
	case casp.Ping:
		return casp.PingOK(), nil
	case casp.Len:
		return casp.LenOK(m.db.Len()), nil
	case casp.Clear:
		m.db.Clear()
		return casp.OK(q.Command()), nil
	case casp.Exists:
		return casp.ExistsOK(m.db.Exists(q.Key)), nil
	case casp.Shutdown:
		// The broadcast itself is the caller's concern; by the time the
		// handler sees this reply it knows the request was authorized.
		return casp.OK(q.Command()), nil
	}
	return casp.Reply{}, fmt.Errorf("unexpected query type %T", q)
}

// authenticate must be called with m.μ held.
func (m *Manager) authenticate(addr, password string) (casp.Reply, error) {
	if password != m.password {
		return casp.Reply{}, ErrAuthenticationFailed
	}
	m.sessions.Add(addr)
	return casp.OK("AUTH"), nil
}

// Authenticated reports whether the session identified by addr has
// authenticated since it connected.
func (m *Manager) Authenticated(addr string) bool {
	m.μ.Lock()
	defer m.μ.Unlock()
	return m.sessions.Has(addr)
}

// Deauthenticate removes the session entry for addr, if any. Connection
// handlers call this on every exit path.
func (m *Manager) Deauthenticate(addr string) {
	m.μ.Lock()
	defer m.μ.Unlock()
	m.sessions.Remove(addr)
}

// SignalShutdown publishes the one-shot shutdown signal to all subscribers,
// then pauses briefly so in-flight notices can drain. Repeated calls after
// the first are no-ops.
func (m *Manager) SignalShutdown() {
	m.μ.Lock()
	if m.down {
		m.μ.Unlock()
		return
	}
	m.down = true
	m.μ.Unlock()

	m.shutdown.Signal()
	time.Sleep(shutdownDrain)
}

// ShutdownSignal returns a channel that is closed when shutdown is
// signaled. Subscribers that arrive after the signal receive a channel that
// is already closed.
func (m *Manager) ShutdownSignal() <-chan struct{} {
	m.μ.Lock()
	defer m.μ.Unlock()
	if m.down {
		return closedSignal
	}
	return m.shutdown.Ready()
}
