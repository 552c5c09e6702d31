package types

import (
	"fmt"
	"strings"
)

// Collection is the ordered sequence of Values that every FHIRPath
// expression evaluates to. There is no bare-scalar result type: a single
// integer literal evaluates to a one-element Collection just like a path
// that resolves to many nodes.
type Collection []Value

// Empty reports whether the collection carries no elements.
func (c Collection) Empty() bool {
	return len(c) == 0
}

// Count returns the number of elements.
func (c Collection) Count() int {
	return len(c)
}

// First returns the first element, or ok=false on an empty collection.
func (c Collection) First() (v Value, ok bool) {
	if len(c) == 0 {
		return nil, false
	}
	return c[0], true
}

// Last returns the last element, or ok=false on an empty collection.
func (c Collection) Last() (v Value, ok bool) {
	if len(c) == 0 {
		return nil, false
	}
	return c[len(c)-1], true
}

// Single returns the sole element, or an error if the collection is empty
// or holds more than one element.
func (c Collection) Single() (Value, error) {
	switch len(c) {
	case 0:
		return nil, fmt.Errorf("expected single value, got empty collection")
	case 1:
		return c[0], nil
	default:
		return nil, fmt.Errorf("expected single value, got %d elements", len(c))
	}
}

// Tail returns every element after the first.
func (c Collection) Tail() Collection {
	if len(c) <= 1 {
		return Collection{}
	}
	return c[1:]
}

// Skip drops the first n elements (n<=0 is a no-op, n>=len empties it).
func (c Collection) Skip(n int) Collection {
	switch {
	case n >= len(c):
		return Collection{}
	case n <= 0:
		return c
	default:
		return c[n:]
	}
}

// Take keeps at most the first n elements.
func (c Collection) Take(n int) Collection {
	switch {
	case n <= 0:
		return Collection{}
	case n >= len(c):
		return c
	default:
		return c[:n]
	}
}

// Contains reports whether any element is Equal to v.
func (c Collection) Contains(v Value) bool {
	for _, item := range c {
		if item.Equal(v) {
			return true
		}
	}
	return false
}

// Distinct returns a new collection with duplicates removed, keeping the
// order of first occurrence.
func (c Collection) Distinct() Collection {
	if len(c) <= 1 {
		return c
	}
	result := make(Collection, 0, len(c))
	for _, item := range c {
		if !result.Contains(item) {
			result = append(result, item)
		}
	}
	return result
}

// IsDistinct reports whether every element is already unique.
func (c Collection) IsDistinct() bool {
	return len(c) == len(c.Distinct())
}

// Union appends other to c, dropping anything already present (in c or
// already appended from other).
func (c Collection) Union(other Collection) Collection {
	result := make(Collection, 0, len(c)+len(other))
	result = append(result, c...)
	for _, item := range other {
		if !result.Contains(item) {
			result = append(result, item)
		}
	}
	return result
}

// Combine concatenates c and other verbatim, duplicates included —
// the ordered counterpart to Union's set semantics.
func (c Collection) Combine(other Collection) Collection {
	result := make(Collection, 0, len(c)+len(other))
	result = append(result, c...)
	result = append(result, other...)
	return result
}

// Intersect returns the elements of c that also occur in other, each at
// most once.
func (c Collection) Intersect(other Collection) Collection {
	result := make(Collection, 0)
	for _, item := range c {
		if other.Contains(item) && !result.Contains(item) {
			result = append(result, item)
		}
	}
	return result
}

// Exclude returns the elements of c that do not occur in other.
func (c Collection) Exclude(other Collection) Collection {
	result := make(Collection, 0)
	for _, item := range c {
		if !other.Contains(item) {
			result = append(result, item)
		}
	}
	return result
}

// String renders the collection as a FHIRPath-ish bracketed, comma-joined
// list of its elements' own String() forms.
func (c Collection) String() string {
	if len(c) == 0 {
		return "[]"
	}
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ToBoolean unwraps a singleton Boolean collection, erroring on anything
// else (empty, multi-element, or non-Boolean).
func (c Collection) ToBoolean() (bool, error) {
	if len(c) == 0 {
		return false, fmt.Errorf("cannot convert empty collection to boolean")
	}
	if len(c) > 1 {
		return false, fmt.Errorf("cannot convert collection with %d elements to boolean", len(c))
	}
	if b, ok := c[0].(Boolean); ok {
		return b.Bool(), nil
	}
	return false, fmt.Errorf("cannot convert %s to boolean", c[0].Type())
}

// boolMatch reports whether any (want=true) or every (want=false) element
// is a Boolean equal to target; a non-Boolean element only breaks an
// "every" check, never an "any" one. AllTrue/AnyTrue/AllFalse/AnyFalse are
// all this same predicate over the two (target, every) combinations.
func (c Collection) boolMatch(target, every bool) bool {
	for _, item := range c {
		b, ok := item.(Boolean)
		matched := ok && b.Bool() == target
		if every && !matched {
			return false
		}
		if !every && matched {
			return true
		}
	}
	return every
}

// AllTrue reports whether every element is the boolean true.
func (c Collection) AllTrue() bool { return c.boolMatch(true, true) }

// AnyTrue reports whether at least one element is the boolean true.
func (c Collection) AnyTrue() bool { return c.boolMatch(true, false) }

// AllFalse reports whether every element is the boolean false.
func (c Collection) AllFalse() bool { return c.boolMatch(false, true) }

// AnyFalse reports whether at least one element is the boolean false.
func (c Collection) AnyFalse() bool { return c.boolMatch(false, false) }
