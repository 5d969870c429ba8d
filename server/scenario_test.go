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

package server_test

import (
	"testing"

	"github.com/creachadair/cachewdb/value"
)

func TestBoolSessions(t *testing.T) {
	ts := startServer(t, value.Bool)
	c := dial(t, ts)
	c.auth(t)

	c.check(t, "SET MANY on true, off false", "CASP/OK/SET MANY/\n")
	c.check(t, "GET on", "CASP/OK/BOOL/GET/true/\n")
	c.check(t, "GET MANY off on", "CASP/OK/BOOL/GET MANY/false,true/\n")

	// Only the exact true/false forms are accepted.
	c.check(t, "SET maybe TRUE",
		"CASP/ERROR/ParserError 'wrongValueType': The value doesn't match the database type 'BOOL'./\n")
	c.check(t, "SET maybe 1",
		"CASP/ERROR/ParserError 'wrongValueType': The value doesn't match the database type 'BOOL'./\n")
}

func TestJSONSessions(t *testing.T) {
	ts := startServer(t, value.JSON)
	c := dial(t, ts)
	c.auth(t)

	// JSON text rides in quotes on the way in and is rendered verbatim,
	// without quotes, on the way out.
	c.check(t, `SET cfg "{key1: 10, key2: 20}"`, "CASP/OK/SET/\n")
	c.check(t, "GET cfg", "CASP/OK/JSON/GET/{key1: 10, key2: 20}/\n")

	c.check(t, "SET cfg {bare}",
		"CASP/ERROR/ParserError 'stringQuotesNotFound': Expected double quotes around strings./\n")
}

func TestStringEscapes(t *testing.T) {
	ts := startServer(t, value.String)
	c := dial(t, ts)
	c.auth(t)

	// Escaped quotes are stored as written, and come back as written.
	c.check(t, `SET k "say \"hi\" twice"`, "CASP/OK/SET/\n")
	c.check(t, "GET k", `CASP/OK/STR/GET/"say \"hi\" twice"/`+"\n")

	// An unescaped interior quote is rejected.
	c.check(t, `SET k "say "hi""`,
		"CASP/ERROR/ParserError 'unescapedDoubleQuote': Double quotes must be escaped./\n")
}

func TestSetManyAtomicity(t *testing.T) {
	ts := startServer(t, value.Int)
	c := dial(t, ts)
	c.auth(t)

	// A batch with one malformed value is rejected during parsing and
	// nothing lands.
	c.check(t, "SET MANY a 1, b zwei, c 3",
		"CASP/ERROR/ParserError 'wrongValueType': The value doesn't match the database type 'INT'./\n")
	c.check(t, "LEN", "CASP/OK/LEN/0/\n")
	c.check(t, "EXISTS a", "CASP/OK/EXISTS/false/\n")
}

func TestDelIdempotence(t *testing.T) {
	ts := startServer(t, value.Int)
	c := dial(t, ts)
	c.auth(t)

	c.check(t, "SET k 1", "CASP/OK/SET/\n")
	c.check(t, "DEL k", "CASP/OK/DEL/\n")
	c.check(t, "DEL k", "CASP/OK/DEL/\n")
	c.check(t, "DEL nonesuch", "CASP/OK/DEL/\n")
	c.check(t, "LEN", "CASP/OK/LEN/0/\n")
}

func TestGetManyMissingKey(t *testing.T) {
	ts := startServer(t, value.Int)
	c := dial(t, ts)
	c.auth(t)

	c.check(t, "SET MANY a 1, b 2", "CASP/OK/SET MANY/\n")
	c.check(t, "GET MANY a b zzz",
		"CASP/ERROR/DatabaseError 'keyNotFound': The key 'zzz' doesn't exist./\n")
}

func TestInterleavedClients(t *testing.T) {
	// Writes from one client are visible to reads from another: there is a
	// single shared store behind every connection.
	ts := startServer(t, value.Int)
	a := dial(t, ts)
	b := dial(t, ts)
	a.auth(t)
	b.auth(t)

	a.check(t, "SET shared 42", "CASP/OK/SET/\n")
	b.check(t, "GET shared", "CASP/OK/INT/GET/42/\n")
	b.check(t, "DEL shared", "CASP/OK/DEL/\n")
	a.check(t, "EXISTS shared", "CASP/OK/EXISTS/false/\n")
}
