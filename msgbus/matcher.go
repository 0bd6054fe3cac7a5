// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package msgbus

import "unicode"

// IsMatching reports whether the topic matches the pattern, where `*`
// matches zero or more characters and `?` matches exactly one. Matching is
// char-by-char with backtracking on `*`.
func IsMatching(topic, pattern string) bool {
	ti, pi := 0, 0
	star, anchor := -1, 0
	for ti < len(topic) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == topic[ti]):
			ti++
			pi++
		case pi < len(pattern) && pattern[pi] == '*':
			// remember the star so we can widen its span on mismatch
			star, anchor = pi, ti
			pi++
		case star != -1:
			pi = star + 1
			anchor++
			ti = anchor
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}

func validChars(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// ValidateTopic checks a concrete topic or endpoint name: non-empty, no
// wildcards, no whitespace or control characters.
func ValidateTopic(topic string) error {
	if topic == "" || !validChars(topic) {
		return ErrInvalidTopic
	}
	for i := 0; i < len(topic); i++ {
		if topic[i] == '*' || topic[i] == '?' {
			return ErrInvalidTopic
		}
	}
	return nil
}

// ValidatePattern checks a subscription pattern: non-empty, no whitespace
// or control characters.
func ValidatePattern(pattern string) error {
	if pattern == "" || !validChars(pattern) {
		return ErrInvalidPattern
	}
	return nil
}
