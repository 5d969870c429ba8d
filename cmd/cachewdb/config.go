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

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"unicode"

	"github.com/creachadair/cachewdb/value"
)

// Defaults for the optional settings.
const (
	defaultHost = "127.0.0.1"
	defaultPort = "8080"
)

// newFlag registers a string flag under its long name and, if short != "",
// a short alias sharing the same value.
func newFlag(long, short, usage string) *string {
	s := flag.String(long, "", usage)
	if short != "" {
		flag.StringVar(s, short, "", usage)
	}
	return s
}

// settings is the validated startup configuration of the server.
type settings struct {
	Type     value.Type
	Password string
	Host     string
	Port     string
}

// loadSettings resolves and validates the server configuration from flags
// and environment variables.
func loadSettings() (settings, error) {
	typeName := argOrEnv(*dbType, "CACHEW_DB_TYPE", "")
	if typeName == "" {
		return settings{}, errors.New("no database type (set --db-type or CACHEW_DB_TYPE)")
	}
	dtype, ok := value.ParseType(typeName)
	if !ok {
		return settings{}, fmt.Errorf("invalid database type %q, choose one of: STR, INT, FLOAT, BOOL or JSON", typeName)
	}

	pw := argOrEnv(*password, "CACHEW_DB_PASSWORD", "")
	if pw == "" {
		return settings{}, errors.New("no password (set --password or CACHEW_DB_PASSWORD)")
	}
	if err := checkPassword(pw); err != nil {
		return settings{}, err
	}

	return settings{
		Type:     dtype,
		Password: pw,
		Host:     argOrEnv(*bindHost, "CACHEW_DB_HOST", defaultHost),
		Port:     argOrEnv(*bindPort, "CACHEW_DB_PORT", defaultPort),
	}, nil
}

// argOrEnv returns flagValue if set, otherwise the named environment
// variable, otherwise fallback.
func argOrEnv(flagValue, envName, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(envName); env != "" {
		return env
	}
	return fallback
}

// checkPassword enforces the password strength rule: at least 8 characters
// with at least one uppercase letter, one lowercase letter, one digit, and
// one non-alphanumeric character.
func checkPassword(pw string) error {
	var hasUpper, hasLower, hasDigit, hasOther bool
	var n int // characters, not bytes
	for _, c := range pw {
		n++
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		default:
			hasOther = true
		}
	}
	if n < 8 || !hasUpper || !hasLower || !hasDigit || !hasOther {
		return errors.New("password too weak: need 8+ characters with upper, lower, digit, and a special character")
	}
	return nil
}
