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

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/creachadair/cachewdb/value"
)

// A Status classifies a server reply.
type Status int

// The reply statuses.
const (
	StatusOK    Status = 1 + iota // the request succeeded
	StatusWarn                    // a server-originated notice
	StatusError                   // the request failed
)

var statusNames = map[Status]string{
	StatusOK:    "OK",
	StatusWarn:  "WARN",
	StatusError: "ERROR",
}

func (s Status) String() string { return statusNames[s] }

// A Reply is one server response, encoded on the wire as a single CASP
// frame. For OK and WARN replies Cmd is the command token; for ERROR
// replies Body is the error message and Cmd is empty. Type is set only on
// the GET family of replies, whose bodies carry rendered values.
//
// The bodies of GET RANGE and GET MANY replies are comma-joined rendered
// values with no escaping of commas; a consumer must honor quoted-string
// boundaries rather than splitting naively (see [DecodeValues]).
type Reply struct {
	Status Status
	Cmd    string
	Type   value.Type // value.Invalid when the reply carries no type tag
	Body   string
}

// hasBody reports whether the frame for r includes a body part. The slot is
// present even when the body itself is empty, as for a GET RANGE over an
// empty range.
func (r Reply) hasBody() bool {
	switch r.Status {
	case StatusWarn:
		return false
	case StatusError:
		return true
	}
	switch r.Cmd {
	case "GET", "GET RANGE", "GET MANY", "LEN", "PING", "EXISTS":
		return true
	}
	return false
}

// Encode returns the wire frame for r, including the trailing newline.
func (r Reply) Encode() string {
	parts := []string{"CASP", r.Status.String()}
	switch r.Status {
	case StatusError:
		parts = append(parts, r.Body)
	case StatusWarn:
		parts = append(parts, r.Cmd)
	default:
		if r.Type != value.Invalid {
			parts = append(parts, r.Type.String())
		}
		parts = append(parts, r.Cmd)
		if r.hasBody() {
			parts = append(parts, r.Body)
		}
	}
	return strings.Join(parts, "/") + FrameEnd
}

// OK returns a plain success reply for the named command.
func OK(cmd string) Reply { return Reply{Status: StatusOK, Cmd: cmd} }

// ValuesOK returns a typed success reply for cmd whose body is the rendered
// values joined with commas.
func ValuesOK(t value.Type, cmd string, vals []value.Value) Reply {
	rendered := make([]string, len(vals))
	for i, v := range vals {
		rendered[i] = v.Render()
	}
	return Reply{Status: StatusOK, Cmd: cmd, Type: t, Body: strings.Join(rendered, ",")}
}

// LenOK returns the success reply for LEN.
func LenOK(n int) Reply {
	return Reply{Status: StatusOK, Cmd: "LEN", Body: strconv.Itoa(n)}
}

// PingOK returns the success reply for PING.
func PingOK() Reply { return Reply{Status: StatusOK, Cmd: "PING", Body: "PONG"} }

// ExistsOK returns the success reply for EXISTS.
func ExistsOK(present bool) Reply {
	return Reply{Status: StatusOK, Cmd: "EXISTS", Body: strconv.FormatBool(present)}
}

// ErrorReply returns the error reply carrying the message of err.
func ErrorReply(err error) Reply { return Reply{Status: StatusError, Body: err.Error()} }

// ShutdownWarning returns the notice written to every connection other than
// the initiator when the server shuts down.
func ShutdownWarning() Reply { return Reply{Status: StatusWarn, Cmd: "SHUTDOWN"} }

// ParseReply parses a wire frame back into a [Reply]. It is the inverse of
// [Reply.Encode] and is intended for clients, which should not trust the
// server's output to be well formed.
func ParseReply(frame string) (Reply, error) {
	if frame == "" {
		return Reply{}, errors.New("empty reply")
	}
	if !strings.HasPrefix(frame, FrameStart) {
		return Reply{}, errors.New("reply start marker not found")
	}
	if !strings.HasSuffix(frame, FrameEnd) || len(frame) <= len(FrameStart)+len(FrameEnd) {
		return Reply{}, errors.New("reply end marker not found")
	}
	inner := frame[len(FrameStart) : len(frame)-len(FrameEnd)]

	statusName, rest, hasRest := strings.Cut(inner, "/")
	var status Status
	switch statusName {
	case "OK":
		status = StatusOK
	case "WARN":
		status = StatusWarn
	case "ERROR":
		status = StatusError
	default:
		return Reply{}, fmt.Errorf("unknown reply status %q", statusName)
	}
	if !hasRest {
		return Reply{}, fmt.Errorf("truncated %s reply", statusName)
	}

	switch status {
	case StatusError:
		// The message is everything after the status, slashes included.
		return Reply{Status: StatusError, Body: rest}, nil
	case StatusWarn:
		if strings.Contains(rest, "/") {
			return Reply{}, errors.New("malformed WARN reply")
		}
		return Reply{Status: StatusWarn, Cmd: rest}, nil
	}

	// OK replies: an optional type tag, then the command token, then a body
	// for the commands that have one. A body is taken verbatim, so rendered
	// values containing slashes survive the trip.
	r := Reply{Status: StatusOK}
	head, rest, hasRest := strings.Cut(rest, "/")
	if t, ok := value.ParseType(head); ok {
		r.Type = t
		if !hasRest {
			return Reply{}, errors.New("typed reply without a command")
		}
		head, rest, hasRest = strings.Cut(rest, "/")
	}
	r.Cmd = head
	if r.hasBody() {
		if !hasRest {
			return Reply{}, fmt.Errorf("%s reply without a body", r.Cmd)
		}
		r.Body = rest
	} else if hasRest {
		return Reply{}, fmt.Errorf("unexpected body in %s reply", r.Cmd)
	}
	if r.Type != value.Invalid {
		switch r.Cmd {
		case "GET", "GET RANGE", "GET MANY":
		default:
			return Reply{}, fmt.Errorf("unexpected type tag in %s reply", r.Cmd)
		}
	}
	return r, nil
}

// DecodeValues splits the comma-joined body of a GET family reply into its
// rendered value tokens, honoring quoted substrings, and parses each token
// as a value of type t. An empty body yields no values.
//
// Reply bodies render JSON values verbatim, without the quoting the request
// grammar demands, so JSON tokens are taken as they stand rather than
// through [parseValue]. A JSON text containing a comma outside a quoted
// substring, nested or not, is split at that comma and cannot be recovered
// from a multi-value body; see the note on [Reply].
func DecodeValues(t value.Type, body string) ([]value.Value, error) {
	if body == "" {
		return nil, nil
	}
	var vals []value.Value
	for _, tok := range splitQuoted(body, ',', true) {
		if t == value.JSON {
			vals = append(vals, value.JSONOf(tok))
			continue
		}
		v, err := parseValue(tok, t)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}
