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

// Package value defines the typed values stored by a CachewDB database.
//
// A database is configured at startup with a single [Type], and every value
// it accepts must carry that type. A [Value] is a closed tagged variant over
// the supported types; dispatch on a value is a switch on its tag, there is
// no open hierarchy.
package value

import (
	"errors"
	"strconv"
)

// A Type identifies one of the value types a database can be configured to
// store. The zero value is not a valid type.
type Type int

// The supported database value types.
const (
	Invalid Type = iota // not a valid type

	String // text, rendered in double quotes on the wire
	Int    // 32-bit signed integer
	Float  // 32-bit floating point
	Bool   // true or false
	JSON   // JSON text, stored and rendered verbatim
)

var typeNames = [...]string{
	Invalid: "INVALID",
	String:  "STR",
	Int:     "INT",
	Float:   "FLOAT",
	Bool:    "BOOL",
	JSON:    "JSON",
}

func (t Type) String() string {
	if t < Invalid || int(t) >= len(typeNames) {
		return "INVALID"
	}
	return typeNames[t]
}

// ParseType reports the type named by s, one of "STR", "INT", "FLOAT",
// "BOOL", or "JSON". It reports false if s does not name a type.
func ParseType(s string) (Type, bool) {
	for t, name := range typeNames {
		if Type(t) != Invalid && s == name {
			return Type(t), true
		}
	}
	return Invalid, false
}

// A Value is a single database value tagged with its type. The zero Value is
// invalid. Values are comparable and are rendered on the wire by [Value.Render].
type Value struct {
	t Type
	s string  // contents for String and JSON
	z int32   // contents for Int
	f float32 // contents for Float
	b bool    // contents for Bool
}

// StringOf returns a STR value holding s.
func StringOf(s string) Value { return Value{t: String, s: s} }

// IntOf returns an INT value holding z.
func IntOf(z int32) Value { return Value{t: Int, z: z} }

// FloatOf returns a FLOAT value holding f.
func FloatOf(f float32) Value { return Value{t: Float, f: f} }

// BoolOf returns a BOOL value holding b.
func BoolOf(b bool) Value { return Value{t: Bool, b: b} }

// JSONOf returns a JSON value holding the text s. The text is not validated;
// the database treats JSON as opaque.
func JSONOf(s string) Value { return Value{t: JSON, s: s} }

// Type reports the type tag of v.
func (v Value) Type() Type { return v.t }

// Text returns the text contents of a STR or JSON value, or "" for other types.
func (v Value) Text() string { return v.s }

// Int returns the contents of an INT value, or 0 for other types.
func (v Value) Int() int32 { return v.z }

// Float returns the contents of a FLOAT value, or 0 for other types.
func (v Value) Float() float32 { return v.f }

// Bool returns the contents of a BOOL value, or false for other types.
func (v Value) Bool() bool { return v.b }

// Render returns the wire rendering of v: STR contents in double quotes,
// INT and FLOAT in decimal, BOOL as "true" or "false", and JSON contents
// verbatim without quotes.
func (v Value) Render() string {
	switch v.t {
	case String:
		return `"` + v.s + `"`
	case Int:
		return strconv.FormatInt(int64(v.z), 10)
	case Float:
		return strconv.FormatFloat(float64(v.f), 'f', -1, 32)
	case Bool:
		return strconv.FormatBool(v.b)
	case JSON:
		return v.s
	}
	return ""
}

func (v Value) String() string { return v.Render() }

// Equal reports whether v and w have the same type tag and contents.
func (v Value) Equal(w Value) bool { return v == w }

// ErrBadValue is reported by Parse when text cannot be interpreted as a
// value of the requested type.
var ErrBadValue = errors.New("malformed value text")

// Parse interprets text as a value of type t. For String and JSON the text
// is taken verbatim (quote handling is the concern of the wire parser); for
// the other types the natural textual form is required.
func Parse(t Type, text string) (Value, error) {
	switch t {
	case String:
		return StringOf(text), nil
	case JSON:
		return JSONOf(text), nil
	case Int:
		z, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return Value{}, ErrBadValue
		}
		return IntOf(int32(z)), nil
	case Float:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return Value{}, ErrBadValue
		}
		return FloatOf(float32(f)), nil
	case Bool:
		// Exactly "true" or "false"; the laxer forms accepted by
		// strconv.ParseBool are not part of the wire contract.
		switch text {
		case "true":
			return BoolOf(true), nil
		case "false":
			return BoolOf(false), nil
		}
		return Value{}, ErrBadValue
	}
	return Value{}, ErrBadValue
}

// A Pair is a key together with the value stored under it.
type Pair struct {
	Key   string
	Value Value
}
