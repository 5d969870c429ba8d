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

package casp_test

import (
	"testing"

	"github.com/creachadair/cachewdb/casp"
)

func TestCheckFrame(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"CASP/PING/\n", nil},
		{"CASP/GET key/\n", nil},
		{`CASP/SET k "hello world"/` + "\n", nil},

		{"", casp.ErrEmptyRequest},
		{"\n", casp.ErrEmptyRequest},
		{"GET key/\n", casp.ErrStartMarkerNotFound},
		{"casp/GET key/\n", casp.ErrStartMarkerNotFound},
		{"CA", casp.ErrStartMarkerNotFound},
		{"CASP/GET key\n", casp.ErrEndMarkerNotFound},
		{"CASP/GET key/", casp.ErrEndMarkerNotFound},
		{"CASP//\n", casp.ErrEndMarkerNotFound}, // empty body
	}
	for _, test := range tests {
		if got := casp.CheckFrame(test.line); got != test.want {
			t.Errorf("CheckFrame(%q): got %v, want %v", test.line, got, test.want)
		}
	}
}

func TestCheckFrameMessages(t *testing.T) {
	// The protocol error strings are part of the wire contract.
	tests := []struct {
		err  error
		want string
	}{
		{casp.ErrEmptyRequest, `ProtocolError 'emptyRequest': Can't process empty request.`},
		{casp.ErrStartMarkerNotFound, `ProtocolError 'startMarkerNotFound': Expected request to start with 'CASP/'.`},
		{casp.ErrEndMarkerNotFound, `ProtocolError 'endMarkerNotFound': Expected request to end with '/\n'.`},
	}
	for _, test := range tests {
		if got := test.err.Error(); got != test.want {
			t.Errorf("error message: got %q, want %q", got, test.want)
		}
	}
}

func TestBody(t *testing.T) {
	tests := []struct {
		line, want string
	}{
		{"CASP/GET key/\n", "GET key"},
		{"CASP/  GET key  /\n", "GET key"},
		{"CASP/PING/\n", "PING"},
	}
	for _, test := range tests {
		if got := casp.Body(test.line); got != test.want {
			t.Errorf("Body(%q): got %q, want %q", test.line, got, test.want)
		}
	}
}
