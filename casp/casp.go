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

// Package casp implements the CachewDB socket protocol (CASP), the
// line-oriented text protocol spoken between a CachewDB server and its
// clients.
//
// A CASP frame is a single line of the form
//
//	CASP/<parts-with-slash-separators>/\n
//
// where the trailing newline is part of the frame. Frame parts may contain
// double-quoted substrings; within quotes a `\"` escapes an embedded quote,
// and spaces, commas, and slashes are ordinary content.
//
// The package provides the frame envelope check ([CheckFrame], [Body]), the
// request grammar ([ParseQuery] and the [Query] variants), and the reply
// encoder and decoder ([Reply], [ParseReply]).
package casp

import "strings"

// The frame envelope markers. Every request frame must begin with
// FrameStart and end with FrameEnd.
const (
	FrameStart = "CASP/"
	FrameEnd   = "/\n"
)

// CheckFrame validates the CASP envelope of one raw input line, including
// its terminating newline. A violation is reported as one of the protocol
// errors, all of which are fatal to the connection that produced them.
func CheckFrame(line string) error {
	if line == "" || line == "\n" {
		return ErrEmptyRequest
	}
	if !strings.HasPrefix(line, FrameStart) {
		return ErrStartMarkerNotFound
	}
	if !strings.HasSuffix(line, FrameEnd) || len(line) <= len(FrameStart)+len(FrameEnd) {
		return ErrEndMarkerNotFound
	}
	return nil
}

// Body strips the envelope markers from a frame previously validated by
// [CheckFrame] and returns the request body with surrounding whitespace
// removed.
func Body(line string) string {
	return strings.TrimSpace(line[len(FrameStart) : len(line)-len(FrameEnd)])
}
