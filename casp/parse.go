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

// ParseQuery parses one request body (the frame contents with the envelope
// already stripped) into a [Query]. Value tokens are interpreted according
// to dtype, the configured type of the database; the parser never consults
// the store itself.
func ParseQuery(body string, dtype value.Type) (Query, error) {
	switch {
	case strings.HasPrefix(body, "GET "):
		return parseGet(strings.TrimPrefix(body, "GET "))
	case strings.HasPrefix(body, "DEL "):
		return parseDel(strings.TrimPrefix(body, "DEL "))
	case strings.HasPrefix(body, "SET "):
		return parseSet(strings.TrimPrefix(body, "SET "), dtype)
	case strings.HasPrefix(body, "AUTH "):
		return parseAuth(strings.TrimPrefix(body, "AUTH "))
	case strings.HasPrefix(body, "EXISTS "):
		key, err := parseOneKey(strings.TrimPrefix(body, "EXISTS "))
		if err != nil {
			return nil, err
		}
		return Exists{Key: key}, nil
	case strings.HasPrefix(body, "PING"):
		return parseBare(body, Ping{})
	case strings.HasPrefix(body, "LEN"):
		return parseBare(body, Len{})
	case strings.HasPrefix(body, "CLEAR"):
		return parseBare(body, Clear{})
	case strings.HasPrefix(body, "SHUTDOWN"):
		return parseBare(body, Shutdown{})
	}
	return nil, errUnknownQuery(body)
}

// parseGet parses the remainder of a GET query after the "GET " prefix,
// distinguishing the RANGE and MANY forms from a plain point lookup.
func parseGet(rest string) (Query, error) {
	if strings.HasPrefix(rest, "RANGE ") {
		lo, hi, err := parseRangeKeys(strings.TrimPrefix(rest, "RANGE "))
		if err != nil {
			return nil, err
		}
		return GetRange{Lo: lo, Hi: hi}, nil
	}
	if strings.HasPrefix(rest, "MANY ") {
		keys, err := parseManyKeys(strings.TrimPrefix(rest, "MANY "))
		if err != nil {
			return nil, err
		}
		return GetMany{Keys: keys}, nil
	}
	key, err := parseOneKey(rest)
	if err != nil {
		return nil, err
	}
	return Get{Key: key}, nil
}

// parseDel parses the remainder of a DEL query after the "DEL " prefix.
func parseDel(rest string) (Query, error) {
	if strings.HasPrefix(rest, "RANGE ") {
		lo, hi, err := parseRangeKeys(strings.TrimPrefix(rest, "RANGE "))
		if err != nil {
			return nil, err
		}
		return DelRange{Lo: lo, Hi: hi}, nil
	}
	if strings.HasPrefix(rest, "MANY ") {
		keys, err := parseManyKeys(strings.TrimPrefix(rest, "MANY "))
		if err != nil {
			return nil, err
		}
		return DelMany{Keys: keys}, nil
	}
	key, err := parseOneKey(rest)
	if err != nil {
		return nil, err
	}
	return Del{Key: key}, nil
}

// parseSet parses the remainder of a SET query after the "SET " prefix.
// The MANY form is a comma-separated list of "key value" pairs; commas
// inside quoted substrings are content, not separators.
func parseSet(rest string, dtype value.Type) (Query, error) {
	if strings.HasPrefix(rest, "MANY ") {
		var pairs []value.Pair
		for _, piece := range splitPairs(strings.TrimPrefix(rest, "MANY ")) {
			p, err := parsePair(piece, dtype)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, p)
		}
		return SetMany{Pairs: pairs}, nil
	}
	p, err := parsePair(rest, dtype)
	if err != nil {
		return nil, err
	}
	return Set{Key: p.Key, Value: p.Value}, nil
}

// parsePair parses a single "key value" pair.
func parsePair(s string, dtype value.Type) (value.Pair, error) {
	toks := splitFields(s)
	if len(toks) != 2 {
		return value.Pair{}, errInvalidKeyValuePair(len(toks))
	}
	key, err := parseKey(toks[0])
	if err != nil {
		return value.Pair{}, err
	}
	val, err := parseValue(toks[1], dtype)
	if err != nil {
		return value.Pair{}, err
	}
	return value.Pair{Key: key, Value: val}, nil
}

// parseAuth parses the password of an AUTH query. The password is a single
// token; an embedded space means the request cannot be read as intended.
func parseAuth(rest string) (Query, error) {
	if strings.Contains(rest, " ") {
		return nil, errWrongAuthentication()
	}
	return Auth{Password: rest}, nil
}

// parseBare handles the commands that take no arguments. Anything beyond
// the command word is an error.
func parseBare(body string, q Query) (Query, error) {
	if len(body) > len(q.Command()) {
		return nil, errUnexpectedParameters(q.Command())
	}
	return q, nil
}

// parseOneKey parses a query remainder that must be exactly one key.
func parseOneKey(rest string) (string, error) {
	toks := splitFields(rest)
	if len(toks) != 1 {
		return "", errUnexpectedCharacter()
	}
	return parseKey(toks[0])
}

// parseRangeKeys parses the two bounds of a RANGE query.
func parseRangeKeys(rest string) (lo, hi string, _ error) {
	toks := splitFields(rest)
	if len(toks) != 2 {
		return "", "", errInvalidRange(len(toks))
	}
	lo, err := parseKey(toks[0])
	if err != nil {
		return "", "", err
	}
	hi, err = parseKey(toks[1])
	if err != nil {
		return "", "", err
	}
	return lo, hi, nil
}

// parseManyKeys parses the key list of a MANY query.
func parseManyKeys(rest string) ([]string, error) {
	toks := splitFields(rest)
	keys := make([]string, 0, len(toks))
	for _, tok := range toks {
		key, err := parseKey(tok)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
