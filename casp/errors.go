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
)

// Protocol errors report a malformed frame envelope. They close the
// connection that produced them so the stream can resynchronize; their
// strings are part of the wire contract.
var (
	ErrEmptyRequest        = errors.New("ProtocolError 'emptyRequest': Can't process empty request.")
	ErrStartMarkerNotFound = errors.New("ProtocolError 'startMarkerNotFound': Expected request to start with 'CASP/'.")
	ErrEndMarkerNotFound   = errors.New(`ProtocolError 'endMarkerNotFound': Expected request to end with '/\n'.`)
)

// Stable parse error kinds. The kind token appears in the wire message as
// ParserError '<kind>': <detail>.
const (
	KindInvalidRange        = "invalidRange"
	KindUnexpectedCharacter = "unexpectedCharacter"
	KindInvalidKeyValuePair = "invalidKeyValuePair"
	KindUnknownQuery        = "unknownQueryOperation"
	KindWrongValueType      = "wrongValueType"
	KindWrongAuthentication = "wrongAuthentication"
	KindStringQuotes        = "stringQuotesNotFound"
	KindUnexpectedParams    = "unexpectedParameters"
	KindUnescapedQuote      = "unescapedDoubleQuote"
)

// A ParseError reports that a request body could not be parsed. Parse errors
// are not fatal to the connection. The caller may use errors.As to recover
// the kind token.
type ParseError struct {
	Kind   string // the stable kind token, e.g. "invalidRange"
	Detail string // the human-oriented remainder of the message
}

// Error implements the error interface for ParseError.
func (p *ParseError) Error() string {
	return fmt.Sprintf("ParserError '%s': %s", p.Kind, p.Detail)
}

func parseErrorf(kind, format string, args ...any) error {
	return &ParseError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func errInvalidRange(n int) error {
	return parseErrorf(KindInvalidRange, "Expected two keys got %d.", n)
}

func errUnexpectedCharacter() error {
	return parseErrorf(KindUnexpectedCharacter,
		"Spaces, commata and slashes are not allowed in keys unless it is in quotes.")
}

func errInvalidKeyValuePair(n int) error {
	return parseErrorf(KindInvalidKeyValuePair, "Expected two parameters (key and value), found %d.", n)
}

func errUnknownQuery(query string) error {
	return parseErrorf(KindUnknownQuery, "Query '%s' not recognized.", query)
}

func errWrongValueType(typeName string) error {
	return parseErrorf(KindWrongValueType, "The value doesn't match the database type '%s'.", typeName)
}

func errWrongAuthentication() error {
	return parseErrorf(KindWrongAuthentication, "Couldn't read password. Expected: 'AUTH <password>'.")
}

func errStringQuotesNotFound() error {
	return parseErrorf(KindStringQuotes, "Expected double quotes around strings.")
}

func errUnexpectedParameters(cmd string) error {
	return parseErrorf(KindUnexpectedParams, "The command '%s' doesn't take any parameters.", cmd)
}

func errUnescapedDoubleQuote() error {
	return parseErrorf(KindUnescapedQuote, "Double quotes must be escaped.")
}
