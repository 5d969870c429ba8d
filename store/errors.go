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

package store

import (
	"errors"
	"fmt"
)

// The error strings of ErrInvalidRangeOrder and ErrWrongValueType are part of
// the wire contract: they are delivered to clients verbatim inside CASP error
// frames. A missing key is delivered as the message of a [*KeyError].
var (
	// ErrKeyNotFound is reported by Get and GetMany, wrapped in a [*KeyError],
	// for a key that is not present in the store. Its own text is not sent to
	// clients.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidRangeOrder is reported by the range operations when the lower
	// bound sorts after the upper bound.
	ErrInvalidRangeOrder = errors.New("DatabaseError 'invalidRangeOrder': The lower key is bigger than the upper key.")

	// ErrWrongValueType is reported by Set and SetMany for a value whose type
	// tag differs from the store's configured type.
	ErrWrongValueType = errors.New("DatabaseError 'wrongValueType': The value doesn't match the database type.")
)

// KeyError is the concrete type of lookup errors involving a key. The caller
// may type-assert to [*KeyError] to recover the key.
type KeyError struct {
	Err error  // the underlying error
	Key string // the key implicated by the error
}

// Error implements the error interface for KeyError.
func (k *KeyError) Error() string {
	return fmt.Sprintf("DatabaseError 'keyNotFound': The key '%s' doesn't exist.", k.Key)
}

// Unwrap returns the underlying error from k, to support error wrapping.
func (k *KeyError) Unwrap() error { return k.Err }

// KeyNotFound returns an ErrKeyNotFound error reporting that key was not
// found. The concrete type is [*KeyError].
func KeyNotFound(key string) error { return &KeyError{Key: key, Err: ErrKeyNotFound} }

// IsKeyNotFound reports whether err is or wraps ErrKeyNotFound.
// It is false if err == nil.
func IsKeyNotFound(err error) bool { return err != nil && errors.Is(err, ErrKeyNotFound) }
