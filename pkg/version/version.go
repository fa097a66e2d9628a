// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package version parses and compares processor version strings.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrNegativeComponent = errors.New("version component cannot be negative")
)

// Version represents a processor version with Major, Minor, and Patch
// components. Build metadata (e.g., "-rc1", "+nightly") is preserved in
// the Extras field but ignored for comparisons.
type Version struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor,omitempty" yaml:"minor,omitempty"`
	Patch int `json:"patch,omitempty" yaml:"patch,omitempty"`

	// Extras stores additional version metadata like "-rc1" or "+nightly.3"
	Extras string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// String returns the "Major.Minor.Patch" form of the version.
// Extras are not included.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Parse parses a version string into a Version struct.
// Supported formats: "1", "1.2", "1.2.3", "v1.2.3", "1.2.3-suffix", "1.2.3+metadata".
// The "v" prefix is optional and stripped if present. Omitted components
// default to zero. Metadata after '-' or '+' is preserved in Extras.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}

	s = strings.TrimPrefix(s, "v")
	var v Version

	// Split off extras first so suffixes containing dots (e.g. "+nightly.3")
	// do not confuse component parsing. A '-' only starts an extras section
	// when it follows a digit, so "-1" is still treated as a component.
	mainPart := s
	for i, ch := range s {
		if (ch == '-' || ch == '+') && i > 0 {
			prev := s[i-1]
			if prev >= '0' && prev <= '9' {
				mainPart = s[:i]
				v.Extras = s[i:]
				break
			}
		}
	}

	parts := strings.Split(mainPart, ".")
	if len(parts) > 3 {
		return Version{}, ErrTooManyComponents
	}

	for i, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("%w: empty component", ErrNonNumeric)
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		if num < 0 {
			return Version{}, fmt.Errorf("%w: %d", ErrNegativeComponent, num)
		}
		switch i {
		case 0:
			v.Major = num
		case 1:
			v.Minor = num
		case 2:
			v.Patch = num
		}
	}

	return v, nil
}

// MustParse parses a version string and panics on failure.
// Use only with trusted, compile-time constant inputs.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("version.MustParse: %v", err))
	}
	return v
}

// Compare returns an integer comparing two versions:
// -1 if v < other, 0 if v == other, 1 if v > other.
// Extras are ignored.
func (v Version) Compare(other Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	return compareInt(v.Patch, other.Patch)
}

// AtLeast reports whether v is equal to or newer than other.
func (v Version) AtLeast(other Version) bool {
	return v.Compare(other) >= 0
}

// IsZero reports whether the version is entirely unset.
func (v Version) IsZero() bool {
	return v.Major == 0 && v.Minor == 0 && v.Patch == 0 && v.Extras == ""
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
