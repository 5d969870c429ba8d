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

// Program cachewdb runs a CachewDB server: a single-node, in-memory,
// authenticated key/value store with ordered-key operations, speaking the
// CASP text protocol over TCP.
//
// Each option may be set by flag or by environment variable; the flag wins
// when both are present:
//
//	-t, --db-type    CACHEW_DB_TYPE       value type (STR, INT, FLOAT, BOOL, JSON)
//	-p, --password   CACHEW_DB_PASSWORD   shared password (8+ chars, mixed classes)
//	    --host       CACHEW_DB_HOST       bind host (default 127.0.0.1)
//	    --port       CACHEW_DB_PORT       bind port (default 8080)
//
// The store is volatile; nothing is persisted across restarts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/creachadair/cachewdb/server"
	"github.com/creachadair/cachewdb/session"
	"github.com/creachadair/ctrl"
)

var (
	dbType   = newFlag("db-type", "t", "Database value type (required)")
	password = newFlag("password", "p", "Shared client password (required)")
	bindHost = newFlag("host", "", "Bind host")
	bindPort = newFlag("port", "", "Bind port")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %[1]s -t <type> -p <password> [--host h] [--port p]

Start a CachewDB server storing values of the given type. Clients connect
over TCP and speak CASP; every client must authenticate with the shared
password before issuing queries.

Options:
`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctrl.Run(func() error {
		cfg, err := loadSettings()
		if err != nil {
			ctrl.Exitf(1, "Invalid configuration: %v", err)
		}

		mgr := session.NewManager(cfg.Type, cfg.Password)
		srv := server.New(server.Config{
			Address: net.JoinHostPort(cfg.Host, cfg.Port),
			Manager: mgr,
			Logf:    log.Printf,
		})

		ctx := context.Background()
		addr, err := srv.Listen(ctx)
		if err != nil {
			ctrl.Exitf(1, "Listen: %v", err)
		}
		log.Printf("[cachewdb] serving %v values at %v", cfg.Type, addr)

		sig := make(chan os.Signal, 2)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s, ok := <-sig
			if ok {
				log.Printf("[cachewdb] received signal: %v, shutting down", s)
				mgr.SignalShutdown()
				signal.Reset(syscall.SIGINT, syscall.SIGTERM)
			}
		}()
		return srv.Serve(ctx)
	})
}
