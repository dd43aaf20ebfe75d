// Copyright 2026 The OpenTrusty Authors
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

package rbac

import "fmt"

// AccessLevel is the capability a role holds on a feature, ordered
// AccessNone < AccessRead < AccessFull. The zero value marks an unset cell.
type AccessLevel uint8

const (
	levelUnset AccessLevel = iota
	AccessNone
	AccessRead
	AccessFull
	levelEnd
)

// DefaultLevel is the level requested when a caller does not name one:
// "may I see it", not "may I change it".
const DefaultLevel = AccessRead

var levelNames = [...]string{
	AccessNone: "NONE",
	AccessRead: "READ",
	AccessFull: "FULL",
}

// Levels returns the access levels in ascending order.
func Levels() []AccessLevel {
	return []AccessLevel{AccessNone, AccessRead, AccessFull}
}

// Valid reports whether l is NONE, READ or FULL.
func (l AccessLevel) Valid() bool {
	return l > levelUnset && l < levelEnd
}

func (l AccessLevel) String() string {
	if !l.Valid() {
		return fmt.Sprintf("AccessLevel(%d)", uint8(l))
	}
	return levelNames[l]
}

// ParseLevel resolves "NONE", "READ" or "FULL".
func ParseLevel(s string) (AccessLevel, error) {
	for l := AccessNone; l < levelEnd; l++ {
		if levelNames[l] == s {
			return l, nil
		}
	}
	return levelUnset, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// MarshalText implements encoding.TextMarshaler.
func (l AccessLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, uint8(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *AccessLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Satisfies reports whether a grant of actual meets a request for requested.
//
// Requesting FULL needs FULL, requesting READ needs READ or FULL, and
// requesting NONE asks whether there is any access at all, so it is met by
// every grant except NONE.
func Satisfies(actual, requested AccessLevel) bool {
	if !actual.Valid() {
		panic(&MisuseError{Op: "satisfies", Value: actual.String()})
	}
	switch requested {
	case AccessFull:
		return actual == AccessFull
	case AccessRead:
		return actual == AccessFull || actual == AccessRead
	case AccessNone:
		return actual != AccessNone
	default:
		panic(&MisuseError{Op: "satisfies", Value: requested.String()})
	}
}
