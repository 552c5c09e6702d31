package types

import (
	"strings"
	"unicode"
)

// String is the FHIRPath String primitive.
type String struct {
	value string
}

// NewString wraps a Go string as a String value.
func NewString(v string) String {
	return String{value: v}
}

// Value unwraps the underlying Go string.
func (s String) Value() string {
	return s.value
}

// Type returns "String".
func (s String) Type() string {
	return "String"
}

// Equal reports whether other is a String carrying the exact same bytes.
func (s String) Equal(other Value) bool {
	o, ok := other.(String)
	return ok && s.value == o.value
}

// Equivalent implements the ~ operator: case-insensitive and with internal
// whitespace runs collapsed to a single space, unlike Equal's exact match.
func (s String) Equivalent(other Value) bool {
	o, ok := other.(String)
	return ok && normalizeString(s.value) == normalizeString(o.value)
}

// normalizeString trims, lowercases, and collapses interior whitespace runs
// to a single space, for use by Equivalent.
func normalizeString(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteRune(' ')
				prevSpace = true
			}
			continue
		}
		b.WriteRune(r)
		prevSpace = false
	}
	return b.String()
}

// String renders the receiver's own value.
func (s String) String() string {
	return s.value
}

// IsEmpty reports whether the underlying string has zero length; an empty
// Go string is still a present (non-collection-empty) String value in
// FHIRPath terms, this only describes the string's own content.
func (s String) IsEmpty() bool {
	return s.value == ""
}

// Length returns the number of Unicode code points, not bytes, so a
// multi-byte character still counts as one.
func (s String) Length() int {
	return len([]rune(s.value))
}

// Contains reports whether substr occurs anywhere in s.
func (s String) Contains(substr string) bool {
	return strings.Contains(s.value, substr)
}

// StartsWith reports whether s begins with prefix.
func (s String) StartsWith(prefix string) bool {
	return strings.HasPrefix(s.value, prefix)
}

// EndsWith reports whether s ends with suffix.
func (s String) EndsWith(suffix string) bool {
	return strings.HasSuffix(s.value, suffix)
}

// Upper returns a new String with every character uppercased.
func (s String) Upper() String {
	return NewString(strings.ToUpper(s.value))
}

// Lower returns a new String with every character lowercased.
func (s String) Lower() String {
	return NewString(strings.ToLower(s.value))
}

// Compare orders two strings lexicographically by Unicode code point.
func (s String) Compare(other Value) (int, error) {
	o, ok := other.(String)
	if !ok {
		return 0, NewTypeError("String", other.Type(), "comparison")
	}
	return strings.Compare(s.value, o.value), nil
}

// IndexOf returns the rune offset of the first occurrence of substr, or -1
// if it doesn't occur.
func (s String) IndexOf(substr string) int {
	prefix := s.value
	if idx := strings.Index(s.value, substr); idx >= 0 {
		return len([]rune(prefix[:idx]))
	}
	return -1
}

// Substring returns the length-rune window starting at the start'th rune.
// A start outside [0, Length()) yields the empty string; length is clamped
// to however many runes remain.
func (s String) Substring(start, length int) String {
	runes := []rune(s.value)
	if start < 0 || start >= len(runes) {
		return NewString("")
	}
	end := start + length
	if end > len(runes) || length < 0 {
		end = len(runes)
	}
	if end < start {
		end = start
	}
	return NewString(string(runes[start:end]))
}

// Replace returns a new String with every occurrence of old substituted by
// replacement.
func (s String) Replace(old, replacement string) String {
	return NewString(strings.ReplaceAll(s.value, old, replacement))
}

// ToChars splits s into a Collection of single-rune Strings, in order.
func (s String) ToChars() Collection {
	runes := []rune(s.value)
	result := make(Collection, len(runes))
	for i, r := range runes {
		result[i] = NewString(string(r))
	}
	return result
}
