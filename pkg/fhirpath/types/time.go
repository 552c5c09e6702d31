package types

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	gotime "time"
)

// Time is the FHIRPath Time primitive, precise down to whichever of
// hour/minute/second/millisecond the source literal actually specified.
type Time struct {
	hour      int
	minute    int
	second    int
	millis    int
	precision TimePrecision
}

// TimePrecision indicates how much of a Time was actually specified.
type TimePrecision int

const (
	HourPrecision TimePrecision = iota
	MinutePrecision
	SecondPrecision
	MillisPrecision
)

var timePattern = regexp.MustCompile(
	`^T?(\d{2})(?::(\d{2})(?::(\d{2})(?:\.(\d+))?)?)?$`,
)

// NewTime parses a partial-ISO-8601 time literal such as "14", "14:30", or
// "14:30:00.123", widening a short fractional-seconds capture to exactly
// three digits and truncating a long one.
func NewTime(s string) (Time, error) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return Time{}, fmt.Errorf("invalid time format: %s", s)
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return Time{}, fmt.Errorf("invalid hour in time: %s", s)
	}
	t := Time{hour: hour, precision: HourPrecision}

	if m[2] != "" {
		minute, err := strconv.Atoi(m[2])
		if err != nil {
			return Time{}, fmt.Errorf("invalid minute in time: %s", s)
		}
		t.minute = minute
		t.precision = MinutePrecision
	}

	if m[3] != "" {
		second, err := strconv.Atoi(m[3])
		if err != nil {
			return Time{}, fmt.Errorf("invalid second in time: %s", s)
		}
		t.second = second
		t.precision = SecondPrecision
	}

	if m[4] != "" {
		ms := m[4]
		for len(ms) < 3 {
			ms += "0"
		}
		millis, err := strconv.Atoi(ms[:3])
		if err != nil {
			return Time{}, fmt.Errorf("invalid milliseconds in time: %s", s)
		}
		t.millis = millis
		t.precision = MillisPrecision
	}

	return t, nil
}

// NewTimeFromGoTime takes the hour/minute/second/millisecond out of t at
// full MillisPrecision.
func NewTimeFromGoTime(t gotime.Time) Time {
	return Time{
		hour:      t.Hour(),
		minute:    t.Minute(),
		second:    t.Second(),
		millis:    t.Nanosecond() / 1_000_000,
		precision: MillisPrecision,
	}
}

// Type returns "Time".
func (t Time) Type() string {
	return "Time"
}

// Equal reports whether other is a Time with the same precision and the
// same value in every component that precision specifies.
func (t Time) Equal(other Value) bool {
	o, ok := other.(Time)
	if !ok || t.precision != o.precision || t.hour != o.hour {
		return false
	}
	if t.precision >= MinutePrecision && t.minute != o.minute {
		return false
	}
	if t.precision >= SecondPrecision && t.second != o.second {
		return false
	}
	if t.precision >= MillisPrecision && t.millis != o.millis {
		return false
	}
	return true
}

// Equivalent is identical to Equal for Time.
func (t Time) Equivalent(other Value) bool {
	return t.Equal(other)
}

// String renders only the components the Time's precision actually carries.
func (t Time) String() string {
	result := fmt.Sprintf("%02d", t.hour)
	if t.precision >= MinutePrecision {
		result += fmt.Sprintf(":%02d", t.minute)
	}
	if t.precision >= SecondPrecision {
		result += fmt.Sprintf(":%02d", t.second)
	}
	if t.precision >= MillisPrecision {
		result += fmt.Sprintf(".%03d", t.millis)
	}
	return result
}

// IsEmpty is always false for a well-formed Time value.
func (t Time) IsEmpty() bool {
	return false
}

func (t Time) Hour() int        { return t.hour }
func (t Time) Minute() int      { return t.minute }
func (t Time) Second() int      { return t.second }
func (t Time) Millisecond() int { return t.millis }

var errAmbiguousTimeComparison = fmt.Errorf("ambiguous comparison between times with different precisions")

// Compare orders t against another Time. Equal precisions compare
// component by component; across differing precisions a difference in a
// shared component is still decisive, but once the shared components
// agree the result is ambiguous (14:30 can't be ordered against
// 14:30:05 once hour and minute agree) and Compare reports an error
// rather than guessing.
func (t Time) Compare(other Value) (int, error) {
	o, ok := other.(Time)
	if !ok {
		return 0, NewTypeError("Time", other.Type(), "comparison")
	}

	if t.precision == o.precision {
		if c := cmp.Compare(t.hour, o.hour); c != 0 {
			return c, nil
		}
		if t.precision >= MinutePrecision {
			if c := cmp.Compare(t.minute, o.minute); c != 0 {
				return c, nil
			}
		}
		if t.precision >= SecondPrecision {
			if c := cmp.Compare(t.second, o.second); c != 0 {
				return c, nil
			}
		}
		if t.precision >= MillisPrecision {
			return cmp.Compare(t.millis, o.millis), nil
		}
		return 0, nil
	}

	if c := cmp.Compare(t.hour, o.hour); c != 0 {
		return c, nil
	}
	minPrecision := min(t.precision, o.precision)
	if minPrecision < MinutePrecision {
		return 0, errAmbiguousTimeComparison
	}
	if c := cmp.Compare(t.minute, o.minute); c != 0 {
		return c, nil
	}
	if minPrecision < SecondPrecision {
		return 0, errAmbiguousTimeComparison
	}
	if c := cmp.Compare(t.second, o.second); c != 0 {
		return c, nil
	}
	return 0, errAmbiguousTimeComparison
}
