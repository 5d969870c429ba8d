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

package server

import (
	"bufio"
	"context"
	"io"
	"net"

	"github.com/creachadair/cachewdb/casp"
)

// handle serves a single client connection until the peer disconnects, a
// protocol violation occurs, or shutdown is broadcast. It owns the
// connection and releases it on every exit path.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	addr := conn.RemoteAddr().String()
	defer func() {
		// A panic in one handler must not take down the server.
		if x := recover(); x != nil {
			s.logf("[cachewdb] handler for %s panicked: %v", addr, x)
		}
	}()
	defer conn.Close()
	defer s.mgr.Deauthenticate(addr)
	defer s.logf("[cachewdb] client disconnected: %s", addr)

	done := s.mgr.ShutdownSignal()

	// Reads happen on a separate goroutine so the loop below can race each
	// read against the shutdown signal. The goroutine exits when the
	// connection is closed or stop is closed.
	lines := make(chan string)
	rerr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		rd := bufio.NewReader(conn)
		for {
			line, err := rd.ReadString('\n')
			if err != nil {
				rerr <- err
				return
			}
			select {
			case lines <- line:
			case <-stop:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			io.WriteString(conn, casp.ShutdownWarning().Encode())
			return
		case <-rerr:
			// The peer closed its end (or the read failed); tear the session
			// down without a further response.
			return
		case line := <-lines:
			if err := casp.CheckFrame(line); err != nil {
				// Envelope violations are fatal: report and resynchronize by
				// dropping the connection.
				io.WriteString(conn, casp.ErrorReply(err).Encode())
				return
			}
			q, err := casp.ParseQuery(casp.Body(line), s.mgr.Type())
			if err != nil {
				io.WriteString(conn, casp.ErrorReply(err).Encode())
				continue
			}
			reply, err := s.mgr.Execute(addr, q)
			if err != nil {
				io.WriteString(conn, casp.ErrorReply(err).Encode())
				continue
			}
			if _, ok := q.(casp.Shutdown); ok {
				s.logf("[cachewdb] shutdown requested by %s", addr)
				s.mgr.SignalShutdown()
				io.WriteString(conn, reply.Encode())
				return
			}
			if _, err := io.WriteString(conn, reply.Encode()); err != nil {
				return
			}
		}
	}
}
