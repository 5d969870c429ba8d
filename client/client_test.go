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

package client_test

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/creachadair/cachewdb/client"
	"github.com/creachadair/cachewdb/server"
	"github.com/creachadair/cachewdb/session"
	"github.com/creachadair/cachewdb/value"
	gocmp "github.com/google/go-cmp/cmp"
)

const testPassword = "Testpw9!"

// startServer runs a server for one test and returns its address.
func startServer(t *testing.T, dtype value.Type) string {
	t.Helper()
	mgr := session.NewManager(dtype, testPassword)
	srv := server.New(server.Config{
		Address: "127.0.0.1:0",
		Manager: mgr,
		Logf:    t.Logf,
	})
	ctx, cancel := context.WithCancel(context.Background())
	addr, err := srv.Listen(ctx)
	if err != nil {
		t.Fatalf("Listen: unexpected error: %v", err)
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx) }()
	t.Cleanup(func() { cancel(); <-errc })
	return addr.String()
}

func dialAuthed(t *testing.T, addr string) *client.Client {
	t.Helper()
	c, err := client.Dial(addr)
	if err != nil {
		t.Fatalf("Dial %v: unexpected error: %v", addr, err)
	}
	t.Cleanup(func() { c.Close() })
	if err := c.Auth(testPassword); err != nil {
		t.Fatalf("Auth: unexpected error: %v", err)
	}
	return c
}

func TestAuthErrors(t *testing.T) {
	addr := startServer(t, value.String)
	c, err := client.Dial(addr)
	if err != nil {
		t.Fatalf("Dial: unexpected error: %v", err)
	}
	defer c.Close()

	err = c.Auth("wrongpass")
	var serr *client.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("Auth with bad password: got %v, want a ServerError", err)
	}
	if !strings.Contains(serr.Message, "authenticationFailed") {
		t.Errorf("Auth error %q does not mention authenticationFailed", serr.Message)
	}

	if err := c.Ping(); err == nil {
		t.Error("Ping without auth: got nil, want error")
	}
	if err := c.Auth(testPassword); err != nil {
		t.Errorf("Auth with correct password: unexpected error: %v", err)
	}
	if err := c.Ping(); err != nil {
		t.Errorf("Ping after auth: unexpected error: %v", err)
	}
}

func TestStringOps(t *testing.T) {
	addr := startServer(t, value.String)
	c := dialAuthed(t, addr)

	if err := c.Set("greeting", value.StringOf("hello world")); err != nil {
		t.Fatalf("Set: unexpected error: %v", err)
	}
	got, err := c.Get("greeting")
	if err != nil {
		t.Fatalf("Get: unexpected error: %v", err)
	}
	if got != value.StringOf("hello world") {
		t.Errorf("Get greeting: got %v, want \"hello world\"", got)
	}

	// Keys with spaces and slashes must survive quoting.
	if err := c.Set("a/b c", value.StringOf("x")); err != nil {
		t.Fatalf("Set quoted key: unexpected error: %v", err)
	}
	ok, err := c.Exists("a/b c")
	if err != nil || !ok {
		t.Errorf("Exists 'a/b c': got %v, %v; want true, nil", ok, err)
	}

	if err := c.Del("a/b c"); err != nil {
		t.Fatalf("Del: unexpected error: %v", err)
	}
	if n, err := c.Len(); err != nil || n != 1 {
		t.Errorf("Len: got %d, %v; want 1, nil", n, err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: unexpected error: %v", err)
	}
	if n, err := c.Len(); err != nil || n != 0 {
		t.Errorf("Len after Clear: got %d, %v; want 0, nil", n, err)
	}
}

func TestIntOps(t *testing.T) {
	addr := startServer(t, value.Int)
	c := dialAuthed(t, addr)

	err := c.SetMany(
		value.Pair{Key: "a", Value: value.IntOf(1)},
		value.Pair{Key: "b", Value: value.IntOf(-2)},
		value.Pair{Key: "c", Value: value.IntOf(3)},
	)
	if err != nil {
		t.Fatalf("SetMany: unexpected error: %v", err)
	}

	got, err := c.GetRange("a", "c")
	if err != nil {
		t.Fatalf("GetRange: unexpected error: %v", err)
	}
	want := []value.Value{value.IntOf(1), value.IntOf(-2), value.IntOf(3)}
	if diff := gocmp.Diff(got, want); diff != "" {
		t.Errorf("GetRange (-got, +want):\n%s", diff)
	}

	got, err = c.GetMany("c", "a")
	if err != nil {
		t.Fatalf("GetMany: unexpected error: %v", err)
	}
	want = []value.Value{value.IntOf(3), value.IntOf(1)}
	if diff := gocmp.Diff(got, want); diff != "" {
		t.Errorf("GetMany (-got, +want):\n%s", diff)
	}

	if err := c.DelMany("a", "c"); err != nil {
		t.Fatalf("DelMany: unexpected error: %v", err)
	}
	if err := c.DelRange("a", "z"); err != nil {
		t.Fatalf("DelRange: unexpected error: %v", err)
	}
	if n, err := c.Len(); err != nil || n != 0 {
		t.Errorf("Len: got %d, %v; want 0, nil", n, err)
	}

	_, err = c.Get("nonesuch")
	var serr *client.ServerError
	if !errors.As(err, &serr) || !strings.Contains(serr.Message, "keyNotFound") {
		t.Errorf("Get nonesuch: got %v, want a keyNotFound ServerError", err)
	}
}

func TestJSONOps(t *testing.T) {
	addr := startServer(t, value.JSON)
	c := dialAuthed(t, addr)

	// JSON values must survive a full write/read cycle through the client,
	// including texts with commas inside the object.
	cfg := value.JSONOf("{key1: 10, key2: 20}")
	if err := c.Set("cfg", cfg); err != nil {
		t.Fatalf("Set: unexpected error: %v", err)
	}
	got, err := c.Get("cfg")
	if err != nil {
		t.Fatalf("Get: unexpected error: %v", err)
	}
	if got != cfg {
		t.Errorf("Get cfg: got %v, want %v", got, cfg)
	}

	err = c.SetMany(
		value.Pair{Key: "a", Value: value.JSONOf("{a: 1}")},
		value.Pair{Key: "b", Value: value.JSONOf("{b: 2}")},
	)
	if err != nil {
		t.Fatalf("SetMany: unexpected error: %v", err)
	}
	vs, err := c.GetRange("a", "b")
	if err != nil {
		t.Fatalf("GetRange: unexpected error: %v", err)
	}
	want := []value.Value{value.JSONOf("{a: 1}"), value.JSONOf("{b: 2}")}
	if diff := gocmp.Diff(vs, want); diff != "" {
		t.Errorf("GetRange (-got, +want):\n%s", diff)
	}

	vs, err = c.GetMany("b", "a")
	if err != nil {
		t.Fatalf("GetMany: unexpected error: %v", err)
	}
	want = []value.Value{value.JSONOf("{b: 2}"), value.JSONOf("{a: 1}")}
	if diff := gocmp.Diff(vs, want); diff != "" {
		t.Errorf("GetMany (-got, +want):\n%s", diff)
	}

	if ok, err := c.Exists("cfg"); err != nil || !ok {
		t.Errorf("Exists cfg: got %v, %v; want true, nil", ok, err)
	}
}

func TestShutdown(t *testing.T) {
	addr := startServer(t, value.String)
	c := dialAuthed(t, addr)
	if err := c.Shutdown(); err != nil {
		t.Errorf("Shutdown: unexpected error: %v", err)
	}
}

func TestServerShutdownNotice(t *testing.T) {
	// A WARN frame delivered in response to a request surfaces as
	// ErrServerShutdown.
	here, there := net.Pipe()
	go func() {
		rd := bufio.NewReader(there)
		if _, err := rd.ReadString('\n'); err != nil {
			return
		}
		io.WriteString(there, "CASP/WARN/SHUTDOWN/\n")
		there.Close()
	}()

	c := client.New(here)
	defer c.Close()
	if err := c.Ping(); !errors.Is(err, client.ErrServerShutdown) {
		t.Errorf("Ping: got error %v, want %v", err, client.ErrServerShutdown)
	}
}
