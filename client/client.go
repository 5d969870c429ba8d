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

// Package client implements a CASP client for a CachewDB server.
//
// A [Client] issues one request at a time over a single TCP connection and
// is not safe for concurrent use without external synchronization. The
// session must authenticate with [Client.Auth] before any data operation.
package client

import (
	"bufio"
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/creachadair/cachewdb/casp"
	"github.com/creachadair/cachewdb/value"
)

// ErrServerShutdown is reported when the server announces that it is
// shutting down. No further use of the client is possible.
var ErrServerShutdown = errors.New("server is shutting down")

// A ServerError is an error frame delivered by the server in response to a
// request. Its message includes the server's category and kind tokens.
type ServerError struct {
	Message string
}

func (s *ServerError) Error() string { return s.Message }

// A Client is a CASP connection to a CachewDB server.
type Client struct {
	conn net.Conn
	rd   *bufio.Reader
}

// Dial connects to a CachewDB server at addr ("host:port").
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// New returns a client that speaks CASP over conn. The client takes
// ownership of the connection.
func New(conn net.Conn) *Client {
	return &Client{conn: conn, rd: bufio.NewReader(conn)}
}

// Close closes the connection to the server.
func (c *Client) Close() error { return c.conn.Close() }

// roundTrip frames and sends one request body and reads back one reply.
// Error and warning frames are converted to Go errors.
func (c *Client) roundTrip(body string) (casp.Reply, error) {
	if _, err := c.conn.Write([]byte(casp.FrameStart + body + casp.FrameEnd)); err != nil {
		return casp.Reply{}, err
	}
	line, err := c.rd.ReadString('\n')
	if err != nil {
		return casp.Reply{}, err
	}
	reply, err := casp.ParseReply(line)
	if err != nil {
		return casp.Reply{}, err
	}
	switch reply.Status {
	case casp.StatusError:
		return casp.Reply{}, &ServerError{Message: reply.Body}
	case casp.StatusWarn:
		return casp.Reply{}, ErrServerShutdown
	}
	return reply, nil
}

// quoteKey renders a key for transmission, quoting it when it contains a
// character that is not allowed in a bare key.
func quoteKey(key string) string {
	if strings.ContainsAny(key, ` ,/`) {
		return `"` + key + `"`
	}
	return key
}

// renderValue renders v as a request value token. The request grammar wants
// STR and JSON values wrapped in double quotes, while replies carry JSON
// without them, so the reply rendering of [value.Value.Render] is not
// reusable here.
func renderValue(v value.Value) string {
	if v.Type() == value.JSON {
		return `"` + v.Text() + `"`
	}
	return v.Render()
}

// Auth authenticates the session with the shared password.
func (c *Client) Auth(password string) error {
	_, err := c.roundTrip("AUTH " + password)
	return err
}

// Ping checks that the server is responsive.
func (c *Client) Ping() error {
	_, err := c.roundTrip("PING")
	return err
}

// Len reports the number of keys stored by the server.
func (c *Client) Len() (int, error) {
	reply, err := c.roundTrip("LEN")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(reply.Body)
}

// Exists reports whether key is present.
func (c *Client) Exists(key string) (bool, error) {
	reply, err := c.roundTrip("EXISTS " + quoteKey(key))
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(reply.Body)
}

// Get returns the value stored under key.
func (c *Client) Get(key string) (value.Value, error) {
	reply, err := c.roundTrip("GET " + quoteKey(key))
	if err != nil {
		return value.Value{}, err
	}
	if reply.Type == value.JSON {
		// The whole body is one JSON text, which may itself contain commas.
		return value.JSONOf(reply.Body), nil
	}
	vs, err := casp.DecodeValues(reply.Type, reply.Body)
	if err != nil {
		return value.Value{}, err
	} else if len(vs) != 1 {
		return value.Value{}, errors.New("malformed GET reply body")
	}
	return vs[0], nil
}

// GetRange returns the values of all keys in the inclusive range [lo, hi],
// in ascending key order.
func (c *Client) GetRange(lo, hi string) ([]value.Value, error) {
	reply, err := c.roundTrip("GET RANGE " + quoteKey(lo) + " " + quoteKey(hi))
	if err != nil {
		return nil, err
	}
	return casp.DecodeValues(reply.Type, reply.Body)
}

// GetMany returns the values of each named key, in the given order.
func (c *Client) GetMany(keys ...string) ([]value.Value, error) {
	reply, err := c.roundTrip("GET MANY " + joinKeys(keys, " "))
	if err != nil {
		return nil, err
	}
	return casp.DecodeValues(reply.Type, reply.Body)
}

// Set stores v under key, replacing any existing value.
func (c *Client) Set(key string, v value.Value) error {
	_, err := c.roundTrip("SET " + quoteKey(key) + " " + renderValue(v))
	return err
}

// SetMany stores each pair; the server applies all of them or none.
func (c *Client) SetMany(pairs ...value.Pair) error {
	rendered := make([]string, len(pairs))
	for i, p := range pairs {
		rendered[i] = quoteKey(p.Key) + " " + renderValue(p.Value)
	}
	_, err := c.roundTrip("SET MANY " + strings.Join(rendered, ", "))
	return err
}

// Del removes key. Deleting an absent key is not an error.
func (c *Client) Del(key string) error {
	_, err := c.roundTrip("DEL " + quoteKey(key))
	return err
}

// DelRange removes all keys in the inclusive range [lo, hi].
func (c *Client) DelRange(lo, hi string) error {
	_, err := c.roundTrip("DEL RANGE " + quoteKey(lo) + " " + quoteKey(hi))
	return err
}

// DelMany removes each named key.
func (c *Client) DelMany(keys ...string) error {
	_, err := c.roundTrip("DEL MANY " + joinKeys(keys, " "))
	return err
}

// Clear removes every key from the store.
func (c *Client) Clear() error {
	_, err := c.roundTrip("CLEAR")
	return err
}

// Shutdown asks the server to shut down gracefully. On success the server
// acknowledges and then stops; the connection is no longer usable.
func (c *Client) Shutdown() error {
	_, err := c.roundTrip("SHUTDOWN")
	return err
}

func joinKeys(keys []string, sep string) string {
	quoted := make([]string, len(keys))
	for i, key := range keys {
		quoted[i] = quoteKey(key)
	}
	return strings.Join(quoted, sep)
}
