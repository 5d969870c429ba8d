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

package casp

import "github.com/creachadair/cachewdb/value"

// A Query is one parsed client request. The concrete types below are the
// only implementations; a dispatcher is a type switch over them.
type Query interface {
	// Command returns the command token of the query as it appears in OK
	// replies, for example "GET RANGE".
	Command() string
}

// Get requests the value stored under Key.
type Get struct{ Key string }

// GetRange requests the values of all keys in the inclusive range [Lo, Hi].
type GetRange struct{ Lo, Hi string }

// GetMany requests the values of each of Keys, in order.
type GetMany struct{ Keys []string }

// Del requests removal of Key.
type Del struct{ Key string }

// DelRange requests removal of all keys in the inclusive range [Lo, Hi].
type DelRange struct{ Lo, Hi string }

// DelMany requests removal of each of Keys.
type DelMany struct{ Keys []string }

// Set requests that Value be stored under Key.
type Set struct {
	Key   string
	Value value.Value
}

// SetMany requests that each pair be stored, all or none.
type SetMany struct{ Pairs []value.Pair }

// Auth presents the shared password to authenticate the session.
type Auth struct{ Password string }

// Ping requests a liveness reply.
type Ping struct{}

// Len requests the number of stored keys.
type Len struct{}

// Clear requests removal of all stored keys.
type Clear struct{}

// Exists asks whether Key is present.
type Exists struct{ Key string }

// Shutdown requests a graceful server shutdown.
type Shutdown struct{}

func (Get) Command() string      { return "GET" }
func (GetRange) Command() string { return "GET RANGE" }
func (GetMany) Command() string  { return "GET MANY" }
func (Del) Command() string      { return "DEL" }
func (DelRange) Command() string { return "DEL RANGE" }
func (DelMany) Command() string  { return "DEL MANY" }
func (Set) Command() string      { return "SET" }
func (SetMany) Command() string  { return "SET MANY" }
func (Auth) Command() string     { return "AUTH" }
func (Ping) Command() string     { return "PING" }
func (Len) Command() string      { return "LEN" }
func (Clear) Command() string    { return "CLEAR" }
func (Exists) Command() string   { return "EXISTS" }
func (Shutdown) Command() string { return "SHUTDOWN" }
