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
	"strings"

	"github.com/creachadair/cachewdb/value"
)

// splitQuoted splits s on sep, except where sep occurs inside a
// double-quoted substring. A quote toggles string mode unless the
// immediately preceding byte is a backslash. Each token is trimmed of
// surrounding spaces; empty tokens are dropped unless keepEmpty is set.
func splitQuoted(s string, sep byte, keepEmpty bool) []string {
	var out []string
	emit := func(tok string) {
		tok = strings.TrimSpace(tok)
		if tok != "" || keepEmpty {
			out = append(out, tok)
		}
	}

	var cur strings.Builder
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' && (i == 0 || s[i-1] != '\\') {
			inString = !inString
		}
		if c == sep && !inString {
			emit(cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	emit(cur.String())
	return out
}

// splitFields splits s at spaces outside quoted substrings, dropping the
// empty tokens produced by runs of spaces.
func splitFields(s string) []string { return splitQuoted(s, ' ', false) }

// splitPairs splits s at commas outside quoted substrings. Empty pieces are
// kept so that a dangling comma is diagnosed as a malformed pair rather than
// silently dropped.
func splitPairs(s string) []string { return splitQuoted(s, ',', true) }

// parseKey validates a single key token. A bare key may not contain a
// space, comma, or slash; a quoted key may contain anything, and is returned
// with the surrounding quotes stripped but its contents otherwise verbatim.
func parseKey(tok string) (string, error) {
	if len(tok) >= 2 && strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`) {
		key := tok[1 : len(tok)-1]
		if key == "" {
			return "", errUnexpectedCharacter()
		}
		return key, nil
	}
	if tok == "" || strings.ContainsAny(tok, ` ,/`) {
		return "", errUnexpectedCharacter()
	}
	return tok, nil
}

// parseValue interprets a value token according to the database type. STR
// and JSON values must be wrapped in double quotes, and any interior quote
// must be escaped with a backslash; the stored text is the substring between
// the outer quotes, verbatim. The other types use their natural textual
// form.
func parseValue(tok string, dtype value.Type) (value.Value, error) {
	switch dtype {
	case value.String, value.JSON:
		if len(tok) < 2 || !strings.HasPrefix(tok, `"`) || !strings.HasSuffix(tok, `"`) {
			return value.Value{}, errStringQuotesNotFound()
		}
		text := tok[1 : len(tok)-1]
		for i := 0; i < len(text); i++ {
			if text[i] == '"' && (i == 0 || text[i-1] != '\\') {
				return value.Value{}, errUnescapedDoubleQuote()
			}
		}
		v, _ := value.Parse(dtype, text)
		return v, nil
	default:
		v, err := value.Parse(dtype, tok)
		if err != nil {
			return value.Value{}, errWrongValueType(dtype.String())
		}
		return v, nil
	}
}
