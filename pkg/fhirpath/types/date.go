package types

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Date is the FHIRPath Date primitive. It carries whichever of
// year/month/day precisions the source literal specified — "2020",
// "2020-05", and "2020-05-17" are all valid Dates, not just the last one.
type Date struct {
	year      int
	month     int // 0 if not specified
	day       int // 0 if not specified
	precision DatePrecision
}

// DatePrecision indicates how much of a Date was actually specified.
type DatePrecision int

const (
	YearPrecision DatePrecision = iota
	MonthPrecision
	DayPrecision
)

var (
	dateYearPattern  = regexp.MustCompile(`^(\d{4})$`)
	dateMonthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	dateDayPattern   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
)

// NewDate parses a partial-ISO-8601 date literal, trying the most precise
// pattern first.
func NewDate(s string) (Date, error) {
	if m := dateDayPattern.FindStringSubmatch(s); m != nil {
		year, month, day, err := parseYMD(m[1], m[2], m[3], s)
		if err != nil {
			return Date{}, err
		}
		return Date{year: year, month: month, day: day, precision: DayPrecision}, nil
	}
	if m := dateMonthPattern.FindStringSubmatch(s); m != nil {
		year, month, _, err := parseYMD(m[1], m[2], "", s)
		if err != nil {
			return Date{}, err
		}
		return Date{year: year, month: month, precision: MonthPrecision}, nil
	}
	if m := dateYearPattern.FindStringSubmatch(s); m != nil {
		year, _, _, err := parseYMD(m[1], "", "", s)
		if err != nil {
			return Date{}, err
		}
		return Date{year: year, precision: YearPrecision}, nil
	}
	return Date{}, fmt.Errorf("invalid date format: %s", s)
}

// parseYMD converts the regex capture groups to integers, leaving month/day
// at 0 when their capture string is empty. original is the full literal,
// used only to build a useful error message.
func parseYMD(yearStr, monthStr, dayStr, original string) (year, month, day int, err error) {
	year, err = strconv.Atoi(yearStr)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in date: %s", original)
	}
	if monthStr != "" {
		month, err = strconv.Atoi(monthStr)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid month in date: %s", original)
		}
	}
	if dayStr != "" {
		day, err = strconv.Atoi(dayStr)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid day in date: %s", original)
		}
	}
	return year, month, day, nil
}

// NewDateFromTime takes the year/month/day out of t at full DayPrecision.
func NewDateFromTime(t time.Time) Date {
	return Date{
		year:      t.Year(),
		month:     int(t.Month()),
		day:       t.Day(),
		precision: DayPrecision,
	}
}

// Type returns "Date".
func (d Date) Type() string {
	return "Date"
}

// Equal reports whether other is a Date with the same precision and the
// same value in every component that precision specifies.
func (d Date) Equal(other Value) bool {
	o, ok := other.(Date)
	if !ok || d.precision != o.precision || d.year != o.year {
		return false
	}
	if d.precision >= MonthPrecision && d.month != o.month {
		return false
	}
	if d.precision >= DayPrecision && d.day != o.day {
		return false
	}
	return true
}

// Equivalent is identical to Equal for Date.
func (d Date) Equivalent(other Value) bool {
	return d.Equal(other)
}

// String renders only the components the Date's precision actually carries.
func (d Date) String() string {
	switch d.precision {
	case YearPrecision:
		return fmt.Sprintf("%04d", d.year)
	case MonthPrecision:
		return fmt.Sprintf("%04d-%02d", d.year, d.month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
	}
}

// IsEmpty is always false for a well-formed Date value.
func (d Date) IsEmpty() bool {
	return false
}

// Year returns the year component.
func (d Date) Year() int {
	return d.year
}

// Month returns the month component, or 0 if the Date's precision doesn't
// specify one.
func (d Date) Month() int {
	return d.month
}

// Day returns the day component, or 0 if the Date's precision doesn't
// specify one.
func (d Date) Day() int {
	return d.day
}

// Precision reports how much of the Date was actually specified.
func (d Date) Precision() DatePrecision {
	return d.precision
}

// ToTime widens d to a time.Time at midnight UTC, defaulting any
// unspecified month/day to 1.
func (d Date) ToTime() time.Time {
	month := d.month
	if month == 0 {
		month = 1
	}
	day := d.day
	if day == 0 {
		day = 1
	}
	return time.Date(d.year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

var errAmbiguousDateComparison = fmt.Errorf("ambiguous comparison between dates with different precisions")

// Compare orders d against another Date. Two dates of equal precision
// compare component by component; across differing precisions, a
// difference in a component both share is still decisive, but once the
// shared components match the result is ambiguous (2020-05 can't be
// ordered against 2020-05-17 once the year and month agree) and Compare
// reports an error rather than guessing.
func (d Date) Compare(other Value) (int, error) {
	o, ok := other.(Date)
	if !ok {
		return 0, NewTypeError("Date", other.Type(), "comparison")
	}

	if d.precision == o.precision {
		if c := cmp.Compare(d.year, o.year); c != 0 {
			return c, nil
		}
		if d.precision >= MonthPrecision {
			if c := cmp.Compare(d.month, o.month); c != 0 {
				return c, nil
			}
		}
		if d.precision >= DayPrecision {
			return cmp.Compare(d.day, o.day), nil
		}
		return 0, nil
	}

	if c := cmp.Compare(d.year, o.year); c != 0 {
		return c, nil
	}
	minPrecision := min(d.precision, o.precision)
	if minPrecision == YearPrecision {
		return 0, errAmbiguousDateComparison
	}
	if c := cmp.Compare(d.month, o.month); c != 0 {
		return c, nil
	}
	return 0, errAmbiguousDateComparison
}

// dateUnitAliases maps every FHIRPath calendar-duration spelling accepted
// by AddDuration/SubtractDuration to the time.Time.AddDate argument it
// feeds (years, months, days-per-unit).
var dateUnitAliases = map[string][3]int{
	"year": {1, 0, 0}, "years": {1, 0, 0}, "'year'": {1, 0, 0}, "'years'": {1, 0, 0},
	"month": {0, 1, 0}, "months": {0, 1, 0}, "'month'": {0, 1, 0}, "'months'": {0, 1, 0},
	"week": {0, 0, 7}, "weeks": {0, 0, 7}, "'week'": {0, 0, 7}, "'weeks'": {0, 0, 7},
	"day": {0, 0, 1}, "days": {0, 0, 1}, "'day'": {0, 0, 1}, "'days'": {0, 0, 1},
}

// AddDuration shifts d by value of the given calendar unit (year(s),
// month(s), week(s), day(s)); an unrecognized unit leaves d unchanged.
func (d Date) AddDuration(value int, unit string) Date {
	factors, ok := dateUnitAliases[unit]
	if !ok {
		return d
	}
	t := d.ToTime().AddDate(factors[0]*value, factors[1]*value, factors[2]*value)

	result := Date{year: t.Year(), month: int(t.Month()), day: t.Day(), precision: d.precision}
	if d.precision < MonthPrecision {
		result.month = 0
	}
	if d.precision < DayPrecision {
		result.day = 0
	}
	return result
}

// SubtractDuration is AddDuration with value negated.
func (d Date) SubtractDuration(value int, unit string) Date {
	return d.AddDuration(-value, unit)
}
