package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateParsing(t *testing.T) {
	cases := []struct {
		name          string
		literal       string
		wantYear      int
		wantMonth     int
		wantDay       int
		wantPrecision DatePrecision
	}{
		{"year only", "2020", 2020, 0, 0, YearPrecision},
		{"year-month", "2020-05", 2020, 5, 0, MonthPrecision},
		{"full date", "2020-05-17", 2020, 5, 17, DayPrecision},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d, err := NewDate(c.literal)
			require.NoError(t, err)
			assert.Equal(t, c.wantYear, d.Year())
			assert.Equal(t, c.wantMonth, d.Month())
			assert.Equal(t, c.wantDay, d.Day())
			assert.Equal(t, c.wantPrecision, d.Precision())
			assert.Equal(t, c.literal, d.String())
			assert.Equal(t, "Date", d.Type())
		})
	}
}

func TestDateParsingRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "not-a-date", "2020-13"} {
		_, err := NewDate(s)
		assert.Errorf(t, err, "expected %q to be rejected", s)
	}
}

func TestDateFromTimeAndToTime(t *testing.T) {
	tm := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	d := NewDateFromTime(tm)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, 3, d.Month())
	assert.Equal(t, 15, d.Day())

	back := d.ToTime()
	assert.Equal(t, 2024, back.Year())
	assert.Equal(t, time.Month(3), back.Month())
	assert.Equal(t, 15, back.Day())
}

func TestDateEqualRequiresMatchingPrecision(t *testing.T) {
	full, _ := NewDate("2020-05-17")
	sameFull, _ := NewDate("2020-05-17")
	different, _ := NewDate("2020-05-18")
	month, _ := NewDate("2020-05")

	assert.True(t, full.Equal(sameFull))
	assert.False(t, full.Equal(different))
	assert.False(t, full.Equal(month), "different precisions are never Equal, even when the shared components agree")
}

func TestDateCompareSamePrecision(t *testing.T) {
	earlier, _ := NewDate("2020-05-17")
	later, _ := NewDate("2020-06-01")

	cmp, err := earlier.Compare(later)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = later.Compare(earlier)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)

	cmp, err = earlier.Compare(earlier)
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	y1, _ := NewDate("2024")
	y2, _ := NewDate("2025")
	cmp, err = y1.Compare(y2)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	m1, _ := NewDate("2024-01")
	m2, _ := NewDate("2024-06")
	cmp, err = m1.Compare(m2)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)
}

func TestDateCompareCrossPrecision(t *testing.T) {
	t.Run("decisive year difference", func(t *testing.T) {
		y2020, _ := NewDate("2024")
		full, _ := NewDate("2025-06-15")
		cmp, err := y2020.Compare(full)
		require.NoError(t, err)
		assert.Equal(t, -1, cmp)
	})

	t.Run("decisive month difference", func(t *testing.T) {
		ym, _ := NewDate("2024-05")
		full, _ := NewDate("2024-06-15")
		cmp, err := ym.Compare(full)
		require.NoError(t, err)
		assert.Equal(t, -1, cmp)
	})

	t.Run("ambiguous at year precision", func(t *testing.T) {
		year, _ := NewDate("2024")
		full, _ := NewDate("2024-06-15")
		_, err := year.Compare(full)
		assert.Error(t, err)
	})

	t.Run("ambiguous once year and month agree", func(t *testing.T) {
		ym, _ := NewDate("2024-06")
		full, _ := NewDate("2024-06-15")
		_, err := ym.Compare(full)
		assert.Error(t, err)
	})
}

func TestDateCompareRejectsNonDate(t *testing.T) {
	d, _ := NewDate("2024-01-15")
	_, err := d.Compare(NewInteger(42))
	assert.Error(t, err)
}

func TestDateAddDuration(t *testing.T) {
	d, _ := NewDate("2020-05-17")

	cases := []struct {
		name  string
		value int
		unit  string
		want  string
	}{
		{"add years", 1, "year", "2021-05-17"},
		{"add months", 2, "months", "2020-07-17"},
		{"add weeks", 1, "'week'", "2020-05-24"},
		{"add days", 10, "days", "2020-05-27"},
		{"unrecognized unit is a no-op", 5, "fortnights", "2020-05-17"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, d.AddDuration(c.value, c.unit).String())
		})
	}
}

func TestDateAddDurationPreservesPrecision(t *testing.T) {
	ym, _ := NewDate("2020-05")
	shifted := ym.AddDuration(1, "year")
	assert.Equal(t, MonthPrecision, shifted.Precision())
	assert.Equal(t, 0, shifted.Day())
}

func TestDateSubtractDuration(t *testing.T) {
	d, _ := NewDate("2020-05-17")
	assert.Equal(t, "2020-05-07", d.SubtractDuration(10, "days").String())
}

func TestTimeParsing(t *testing.T) {
	cases := []struct {
		name          string
		literal       string
		wantPrecision TimePrecision
		wantString    string
	}{
		{"hour only", "10", HourPrecision, "10"},
		{"with T prefix", "T14", HourPrecision, "14"},
		{"hour-minute", "10:30", MinutePrecision, "10:30"},
		{"hour-minute-second", "10:30:45", SecondPrecision, "10:30:45"},
		{"with millis", "10:30:45.123", MillisPrecision, "10:30:45.123"},
		{"short millis get padded", "10:30:45.1", MillisPrecision, "10:30:45.100"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tm, err := NewTime(c.literal)
			require.NoError(t, err)
			assert.Equal(t, c.wantPrecision, tm.precision)
			assert.Equal(t, c.wantString, tm.String())
			assert.Equal(t, "Time", tm.Type())
		})
	}
}

func TestTimeParsingRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "invalid"} {
		_, err := NewTime(s)
		assert.Errorf(t, err, "expected %q to be rejected", s)
	}
}

func TestTimeFromGoTime(t *testing.T) {
	tm := time.Date(2024, 1, 1, 10, 30, 45, 123000000, time.UTC)
	ft := NewTimeFromGoTime(tm)
	assert.Equal(t, 10, ft.Hour())
	assert.Equal(t, 30, ft.Minute())
	assert.Equal(t, 45, ft.Second())
	assert.Equal(t, 123, ft.Millisecond())
}

func TestTimeEquality(t *testing.T) {
	t1, _ := NewTime("10:30:45")
	t2, _ := NewTime("10:30:45")
	t3, _ := NewTime("10:30:46")

	assert.True(t, t1.Equal(t2))
	assert.False(t, t1.Equal(t3))
}

func TestTimeCompareSamePrecision(t *testing.T) {
	earlier, _ := NewTime("09:00:00")
	later, _ := NewTime("17:30:00")

	cmp, err := earlier.Compare(later)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = later.Compare(earlier)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)

	copyOfEarlier, _ := NewTime("09:00:00")
	cmp, err = earlier.Compare(copyOfEarlier)
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	millisA, _ := NewTime("10:30:45.100")
	millisB, _ := NewTime("10:30:45.200")
	cmp, err = millisA.Compare(millisB)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)
}

func TestTimeCompareCrossPrecision(t *testing.T) {
	t.Run("decisive hour difference", func(t *testing.T) {
		hour, _ := NewTime("10")
		full, _ := NewTime("14:30:45")
		cmp, err := hour.Compare(full)
		require.NoError(t, err)
		assert.Equal(t, -1, cmp)
	})

	t.Run("ambiguous at hour precision", func(t *testing.T) {
		hour, _ := NewTime("10")
		full, _ := NewTime("10:30:45")
		_, err := hour.Compare(full)
		assert.Error(t, err)
	})

	t.Run("decisive minute difference once both carry it", func(t *testing.T) {
		hm, _ := NewTime("10:30")
		full, _ := NewTime("10:45:30")
		cmp, err := hm.Compare(full)
		require.NoError(t, err)
		assert.Equal(t, -1, cmp)
	})

	t.Run("ambiguous once hour and minute agree", func(t *testing.T) {
		hm, _ := NewTime("10:30")
		full, _ := NewTime("10:30:45")
		_, err := hm.Compare(full)
		assert.Error(t, err)
	})

	t.Run("ambiguous once hour, minute, second all agree", func(t *testing.T) {
		hms, _ := NewTime("10:30:45")
		full, _ := NewTime("10:30:45.100")
		_, err := hms.Compare(full)
		assert.Error(t, err)
	})
}

func TestTimeCompareRejectsNonTime(t *testing.T) {
	tm, _ := NewTime("10:30:00")
	_, err := tm.Compare(NewInteger(42))
	assert.Error(t, err)
}

func TestDateTimeParsing(t *testing.T) {
	dt, err := NewDateTime("2024-01-15T10:30:45.123Z")
	require.NoError(t, err)
	assert.Equal(t, 2024, dt.Year())
	assert.Equal(t, 1, dt.Month())
	assert.Equal(t, 15, dt.Day())
	assert.Equal(t, 10, dt.Hour())
	assert.Equal(t, 30, dt.Minute())
	assert.Equal(t, 45, dt.Second())
	assert.Equal(t, 123, dt.Millisecond())
	assert.Equal(t, "DateTime", dt.Type())
	assert.Equal(t, "2024-01-15T10:30:45.123Z", dt.String())
}

func TestDateTimeWithOffset(t *testing.T) {
	dt, err := NewDateTime("2024-01-15T10:30:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, 10, dt.Hour())
	assert.Equal(t, 30, dt.Minute())
	assert.Equal(t, "2024-01-15T10:30:00+05:30", dt.String())
}

func TestDateTimeDateOnly(t *testing.T) {
	dt, err := NewDateTime("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, 2024, dt.Year())
	assert.Equal(t, 1, dt.Month())
	assert.Equal(t, 15, dt.Day())
}

func TestDateTimeTrailingTIsDayPrecision(t *testing.T) {
	withT, err := NewDateTime("2015-02-04T")
	require.NoError(t, err)
	withoutT, err := NewDateTime("2015-02-04")
	require.NoError(t, err)
	assert.Equal(t, withoutT, withT)
}

func TestDateTimeParsingRejectsGarbage(t *testing.T) {
	_, err := NewDateTime("invalid")
	assert.Error(t, err)
}

func TestDateTimeEquality(t *testing.T) {
	dt1, _ := NewDateTime("2024-01-15T10:30:00Z")
	dt2, _ := NewDateTime("2024-01-15T10:30:00Z")
	dt3, _ := NewDateTime("2024-01-15T10:31:00Z")

	assert.True(t, dt1.Equal(dt2))
	assert.False(t, dt1.Equal(dt3))
}

func TestDateTimeEqualityAcrossTimezones(t *testing.T) {
	utc, err := NewDateTime("2024-01-15T10:00:00Z")
	require.NoError(t, err)
	plusFive, err := NewDateTime("2024-01-15T15:00:00+05:00")
	require.NoError(t, err)
	assert.True(t, utc.Equal(plusFive), "same instant in different zones must be Equal")
}

func TestDateTimeFromGoTime(t *testing.T) {
	tm := time.Date(2024, 3, 15, 10, 30, 45, 123000000, time.UTC)
	dt := NewDateTimeFromTime(tm)
	assert.Equal(t, 2024, dt.Year())
	assert.Equal(t, 10, dt.Hour())
	assert.Equal(t, 123, dt.Millisecond())
}

func TestDateTimeCompareSamePrecision(t *testing.T) {
	dt1, _ := NewDateTime("2024-01-15T10:30:00Z")
	dt2, _ := NewDateTime("2024-01-15T10:31:00Z")

	cmp, err := dt1.Compare(dt2)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = dt2.Compare(dt1)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)

	dt1Copy, _ := NewDateTime("2024-01-15T10:30:00Z")
	cmp, err = dt1.Compare(dt1Copy)
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	y1, _ := NewDateTime("2024")
	y2, _ := NewDateTime("2025")
	cmp, err = y1.Compare(y2)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	ms1, _ := NewDateTime("2024-01-15T10:30:45.100Z")
	ms2, _ := NewDateTime("2024-01-15T10:30:45.200Z")
	cmp, err = ms1.Compare(ms2)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)
}

func TestDateTimeCompareCrossPrecision(t *testing.T) {
	cases := []struct {
		name      string
		a, b      string
		wantCmp   int
		wantError bool
	}{
		{"different years decisive", "2024", "2025-06-15T10:30:00Z", -1, false},
		{"same year ambiguous", "2024", "2024-06-15T10:30:00Z", 0, true},
		{"different months decisive", "2024-05", "2024-06-15T10:30:00Z", -1, false},
		{"same month ambiguous", "2024-06", "2024-06-15T10:30:00Z", 0, true},
		{"different days decisive", "2024-06-10", "2024-06-15T10:30:00Z", -1, false},
		{"same day ambiguous", "2024-06-15", "2024-06-15T10:30:00Z", 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := NewDateTime(c.a)
			require.NoError(t, err)
			b, err := NewDateTime(c.b)
			require.NoError(t, err)

			cmp, err := a.Compare(b)
			if c.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.wantCmp, cmp)
		})
	}
}

func TestDateTimeCompareRejectsNonDateTime(t *testing.T) {
	dt, _ := NewDateTime("2024-01-15T10:30:00Z")
	_, err := dt.Compare(NewInteger(42))
	assert.Error(t, err)
}

func TestDateTimeCompareAcrossTimezones(t *testing.T) {
	utc, _ := NewDateTime("2024-01-15T10:00:00Z")
	plusFive, _ := NewDateTime("2024-01-15T15:00:00+05:00")

	cmp, err := utc.Compare(plusFive)
	require.NoError(t, err)
	assert.Equal(t, 0, cmp, "same instant in different zones compares equal")
}

func TestDateTimeAddDuration(t *testing.T) {
	dt, err := NewDateTime("2020-05-17T14:30:00Z")
	require.NoError(t, err)

	assert.Equal(t, 16, dt.AddDuration(2, "hours").Hour())
	assert.Equal(t, 18, dt.AddDuration(1, "day").Day())
	assert.Equal(t, 6, dt.AddDuration(1, "month").Month())
	assert.Equal(t, dt, dt.AddDuration(1, "fortnights"), "unrecognized unit is a no-op")
}

func TestQuantityParsing(t *testing.T) {
	cases := []struct {
		name     string
		literal  string
		wantVal  string
		wantUnit string
	}{
		{"plain unquoted unit", "10 kg", "10", "kg"},
		{"quoted unit", "5.5 'kg/m2'", "5.5", "kg/m2"},
		{"no unit", "42", "42", ""},
		{"decimal value", "3.14159 rad", "3.14159", "rad"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q, err := NewQuantity(c.literal)
			require.NoError(t, err)
			assert.Equal(t, c.wantVal, q.Value().String())
			assert.Equal(t, c.wantUnit, q.Unit())
			assert.Equal(t, "Quantity", q.Type())
		})
	}
}

func TestQuantityParsingRejectsGarbage(t *testing.T) {
	_, err := NewQuantity("invalid")
	assert.Error(t, err)
}

func TestQuantityEqualSameUnit(t *testing.T) {
	q1, _ := NewQuantity("10 kg")
	q2, _ := NewQuantity("10 kg")
	q3, _ := NewQuantity("10 lb")

	assert.True(t, q1.Equal(q2))
	assert.False(t, q1.Equal(q3))
}

func TestQuantityEqualAcrossUCUMUnits(t *testing.T) {
	grams, _ := NewQuantity("1000 mg")
	kilo, _ := NewQuantity("1 g")
	assert.True(t, grams.Equal(kilo), "1000mg and 1g normalize to the same canonical value")
}

func TestQuantityEquivalence(t *testing.T) {
	q1, _ := NewQuantity("10 kg")
	q2, _ := NewQuantity("10 KG")
	q3, _ := NewQuantity("10")

	assert.True(t, q1.Equivalent(q2), "unit comparison is case-insensitive")
	assert.True(t, q1.Equivalent(q3), "an empty unit is compatible with anything")
}

func TestQuantityArithmetic(t *testing.T) {
	q1, _ := NewQuantity("10 kg")
	q2, _ := NewQuantity("5 kg")

	sum, err := q1.Add(q2)
	require.NoError(t, err)
	assert.Equal(t, "15", sum.Value().String())

	diff, err := q1.Subtract(q2)
	require.NoError(t, err)
	assert.Equal(t, "5", diff.Value().String())
}

func TestQuantityIncompatibleUnits(t *testing.T) {
	q1, _ := NewQuantity("10 kg")
	q2, _ := NewQuantity("5 m")

	_, err := q1.Add(q2)
	assert.Error(t, err)

	_, err = q1.Subtract(q2)
	assert.Error(t, err)

	_, err = q1.Compare(q2)
	assert.Error(t, err)
}

func TestQuantityCompareAcrossUCUMUnits(t *testing.T) {
	a, _ := NewQuantity("1 g")
	b, _ := NewQuantity("500 mg")
	cmp, err := a.Compare(b)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp, "1g is greater than 500mg")
}

func TestQuantityCompare(t *testing.T) {
	q1, _ := NewQuantity("10 kg")
	q2, _ := NewQuantity("20 kg")

	cmp, err := q1.Compare(q2)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)
}

func TestQuantityDivideByZero(t *testing.T) {
	q, _ := NewQuantity("10 mg")
	zero := q.Value().Sub(q.Value())
	_, err := q.Divide(zero)
	assert.Error(t, err)
}

func TestQuantityString(t *testing.T) {
	q1, _ := NewQuantity("10 kg")
	assert.Equal(t, "10 kg", q1.String())

	q2, _ := NewQuantity("5")
	assert.Equal(t, "5", q2.String())
}

func TestQuantityStringQuotesUnitWithSpaces(t *testing.T) {
	q := NewQuantityFromDecimal(MustDecimal("5").Value(), "heartbeats per minute")
	assert.Contains(t, q.String(), "'heartbeats per minute'")
}
