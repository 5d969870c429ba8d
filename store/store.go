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

// Package store implements the ordered typed key/value store backing a
// CachewDB database.
//
// A Store maps string keys to values of a single configured [value.Type],
// kept in lexicographic key order so that inclusive range queries and range
// deletions touch only the keys they cover. A Store is not safe for
// concurrent use; the session manager that owns it provides exclusion.
package store

import (
	"strings"

	"github.com/creachadair/cachewdb/value"
	"github.com/creachadair/mds/stree"
)

// A Store is an in-memory ordered map from string keys to values of a fixed
// type. The contents of a Store are not persisted.
type Store struct {
	dtype value.Type
	db    *stree.Tree[entry]
}

// An entry is a pair of a string key and value. The value is not part of
// the comparison key.
type entry struct {
	key string
	val value.Value
}

func compareEntries(a, b entry) int { return strings.Compare(a.key, b.key) }

// New constructs a new empty store holding values of type dtype.
func New(dtype value.Type) *Store {
	return &Store{dtype: dtype, db: stree.New(300, compareEntries)}
}

// Type reports the configured value type of s.
func (s *Store) Type() value.Type { return s.dtype }

// Get returns the value stored under key, or [ErrKeyNotFound].
func (s *Store) Get(key string) (value.Value, error) {
	if e, ok := s.db.Get(entry{key: key}); ok {
		return e.val, nil
	}
	return value.Value{}, KeyNotFound(key)
}

// GetRange returns the values for all keys k with lo ≤ k ≤ hi in ascending
// key order. An empty range is not an error; lo > hi reports
// [ErrInvalidRangeOrder].
func (s *Store) GetRange(lo, hi string) ([]value.Value, error) {
	if lo > hi {
		return nil, ErrInvalidRangeOrder
	}
	var vals []value.Value
	for e := range s.db.InorderAfter(entry{key: lo}) {
		if e.key > hi {
			break
		}
		vals = append(vals, e.val)
	}
	return vals, nil
}

// GetMany returns the values for keys in the same order as given. It stops
// at the first missing key and reports [ErrKeyNotFound] for it, returning no
// partial result.
func (s *Store) GetMany(keys []string) ([]value.Value, error) {
	vals := make([]value.Value, 0, len(keys))
	for _, key := range keys {
		e, ok := s.db.Get(entry{key: key})
		if !ok {
			return nil, KeyNotFound(key)
		}
		vals = append(vals, e.val)
	}
	return vals, nil
}

// Del removes key from the store. Deleting an absent key is not an error.
func (s *Store) Del(key string) { s.db.Remove(entry{key: key}) }

// DelRange removes all keys k with lo ≤ k ≤ hi. lo > hi reports
// [ErrInvalidRangeOrder].
func (s *Store) DelRange(lo, hi string) error {
	if lo > hi {
		return ErrInvalidRangeOrder
	}

	// Snapshot the matching keys before removal so deletion does not mutate
	// the sequence being iterated.
	var doomed []string
	for e := range s.db.InorderAfter(entry{key: lo}) {
		if e.key > hi {
			break
		}
		doomed = append(doomed, e.key)
	}
	for _, key := range doomed {
		s.db.Remove(entry{key: key})
	}
	return nil
}

// DelMany removes each of keys. Absent keys are skipped without error.
func (s *Store) DelMany(keys []string) {
	for _, key := range keys {
		s.db.Remove(entry{key: key})
	}
}

// Set stores v under key, replacing any existing value. It reports
// [ErrWrongValueType] if the type tag of v does not match the store type.
func (s *Store) Set(key string, v value.Value) error {
	if v.Type() != s.dtype {
		return ErrWrongValueType
	}
	s.db.Replace(entry{key: key, val: v})
	return nil
}

// SetMany stores each pair in order. If any value's type does not match the
// store type, SetMany reports [ErrWrongValueType] without storing any of the
// pairs.
func (s *Store) SetMany(pairs []value.Pair) error {
	for _, p := range pairs {
		if p.Value.Type() != s.dtype {
			return ErrWrongValueType
		}
	}
	for _, p := range pairs {
		s.db.Replace(entry{key: p.Key, val: p.Value})
	}
	return nil
}

// Clear removes all keys and values from s.
func (s *Store) Clear() { s.db.Clear() }

// Len reports the number of keys currently stored.
func (s *Store) Len() int { return s.db.Len() }

// Exists reports whether key is present in the store.
func (s *Store) Exists(key string) bool {
	_, ok := s.db.Get(entry{key: key})
	return ok
}
