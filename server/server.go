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

// Package server implements the TCP front end of CachewDB: the listener,
// the per-connection handlers, and graceful shutdown.
//
// Each accepted connection is served by its own goroutine, which reads CASP
// frames, dispatches them through a [session.Manager], and writes reply
// frames. A shutdown (an interrupt, or an authorized SHUTDOWN command) is
// broadcast to every handler, which notifies its client with a warning frame
// and exits; the listener stops accepting and Serve returns.
package server

import (
	"context"
	"net"

	"github.com/creachadair/cachewdb/session"
	"github.com/creachadair/taskgroup"
)

// Config carries the settings for a [Server]. The Address and Manager
// fields are required.
type Config struct {
	// Address is the host:port the server listens on. This must be non-empty.
	Address string

	// Manager owns the store and session state. This must be non-nil.
	Manager *session.Manager

	// Logf, if set, is used to write text logs. If nil, logs are discarded.
	Logf func(string, ...any)
}

// A Server accepts CASP connections and serves them against a session
// manager. The caller must call [Server.Listen] before [Server.Serve].
type Server struct {
	addr string
	mgr  *session.Manager
	logf func(string, ...any)
	lst  net.Listener
}

// New creates a new, unstarted server for the specified config.
// It will panic if any required config field is missing.
func New(config Config) *Server {
	switch {
	case config.Address == "":
		panic("missing required listen address")
	case config.Manager == nil:
		panic("missing required session manager")
	}
	logf := config.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Server{addr: config.Address, mgr: config.Manager, logf: logf}
}

// Listen binds the server's TCP listener and returns its address. It does
// not accept connections; call [Server.Serve] to do that.
func (s *Server) Listen(ctx context.Context) (net.Addr, error) {
	lst, err := new(net.ListenConfig).Listen(ctx, "tcp", s.addr)
	if err != nil {
		return nil, err
	}
	s.lst = lst
	return lst.Addr(), nil
}

// Serve accepts connections until shutdown is signaled on the manager or
// ctx ends, then waits for the connection handlers to finish. It reports
// nil on a graceful stop. Listen must have been called first.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := s.mgr.ShutdownSignal()

	// Close the listener when shutdown arrives, unblocking Accept.
	closer := taskgroup.Go(func() error {
		select {
		case <-done:
		case <-ctx.Done():
		}
		return s.lst.Close()
	})

	g := taskgroup.New(nil)
	var aerr error
	for {
		conn, err := s.lst.Accept()
		if err != nil {
			select {
			case <-done:
			case <-ctx.Done():
			default:
				aerr = err // a real accept failure, not a shutdown
			}
			break
		}
		s.logf("[cachewdb] client connected: %v", conn.RemoteAddr())
		g.Go(func() error {
			s.handle(ctx, conn)
			return nil
		})
	}
	if aerr != nil {
		cancel() // the listener failed; tear the handlers down too
	}
	g.Wait()
	cancel()
	closer.Wait()
	s.logf("[cachewdb] server stopped")
	return aerr
}
