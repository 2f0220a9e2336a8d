// Package mpctime converts between the Minor Planet Center date format
// "YYYY MM DD.ffffff" and Julian Day values. The count of fractional-day
// digits seen on input is captured so that re-rendering reproduces the
// original text exactly.
package mpctime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MaxPrecision is the most fractional-day digits the 17-column MPC date
// field can hold ("YYYY MM DD." leaves six columns).
const MaxPrecision = 6

// sortKeyScale converts a Julian Day to an integer micro-day key, so the
// writer can order and deduplicate without comparing floats.
const sortKeyScale = 1e6

// Time is an MPC timestamp: a Julian Day plus the fractional-digit
// precision captured from (or intended for) its text form.
type Time struct {
	JD        float64 `json:"jd"`
	Precision int     `json:"precision"`
}

// Precision returns the number of digits after the last '.' in s, or
// zero when s carries no decimal point.
func Precision(s string) int {
	s = strings.TrimSpace(s)
	idx := strings.LastIndex(s, ".")
	if idx < 0 {
		return 0
	}
	return len(s) - idx - 1
}

// Parse reads an MPC date string ("2013 10 05.412683") into a Time.
func Parse(s string) (Time, error) {
	trimmed := strings.TrimSpace(s)
	prec := Precision(trimmed)
	if prec > MaxPrecision {
		prec = MaxPrecision
	}

	frac := 0.0
	datePart := trimmed
	if idx := strings.LastIndex(trimmed, "."); idx >= 0 {
		var err error
		frac, err = strconv.ParseFloat("0"+trimmed[idx:], 64)
		if err != nil {
			return Time{}, fmt.Errorf("parse day fraction %q: %w", trimmed[idx:], err)
		}
		datePart = trimmed[:idx]
	}

	fields := strings.Fields(datePart)
	if len(fields) != 3 {
		return Time{}, fmt.Errorf("date %q: want \"YYYY MM DD\"", s)
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return Time{}, fmt.Errorf("date %q: bad year: %w", s, err)
	}
	month, err := strconv.Atoi(fields[1])
	if err != nil {
		return Time{}, fmt.Errorf("date %q: bad month: %w", s, err)
	}
	day, err := strconv.Atoi(fields[2])
	if err != nil {
		return Time{}, fmt.Errorf("date %q: bad day: %w", s, err)
	}
	if month < 1 || month > 12 {
		return Time{}, fmt.Errorf("date %q: month out of range", s)
	}
	if day < 1 || day > 31 {
		return Time{}, fmt.Errorf("date %q: day out of range", s)
	}

	return Time{
		JD:        float64(julianDayNumber(year, month, day)) - 0.5 + frac,
		Precision: prec,
	}, nil
}

// FromJD wraps a Julian Day with an output precision.
func FromJD(jd float64, precision int) Time {
	if precision > MaxPrecision {
		precision = MaxPrecision
	}
	if precision < 0 {
		precision = 0
	}
	return Time{JD: jd, Precision: precision}
}

// julianDayNumber is the Julian Day Number at noon of the given
// Gregorian calendar date (Fliegel & Van Flandern).
func julianDayNumber(year, month, day int) int64 {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	return int64(day) +
		int64((153*m+2)/5) +
		365*int64(y) +
		int64(y/4) - int64(y/100) + int64(y/400) -
		32045
}

// civilFromJDN inverts julianDayNumber.
func civilFromJDN(jdn int64) (year, month, day int) {
	a := jdn + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	d := (4*c + 3) / 1461
	e := c - 1461*d/4
	m := (5*e + 2) / 153

	day = int(e - (153*m+2)/5 + 1)
	month = int(m + 3 - 12*(m/10))
	year = int(100*b + d - 4800 + m/10)
	return year, month, day
}

// Civil returns the calendar date and day fraction of t, with the
// fraction rounded at the captured precision (carrying into the day
// when rounding crosses midnight).
func (t Time) Civil() (year, month, day int, frac float64) {
	a := t.JD + 0.5
	jdn := int64(math.Floor(a))
	f := a - math.Floor(a)

	scale := math.Pow(10, float64(t.Precision))
	n := math.Round(f * scale)
	if n >= scale {
		n = 0
		jdn++
	}
	year, month, day = civilFromJDN(jdn)
	return year, month, day, n / scale
}

// String renders t in the MPC date format at the captured precision.
func (t Time) String() string {
	year, month, day, frac := t.Civil()
	s := fmt.Sprintf("%04d %02d %02d", year, month, day)
	if t.Precision > 0 {
		digits := int64(math.Round(frac * math.Pow(10, float64(t.Precision))))
		s += fmt.Sprintf(".%0*d", t.Precision, digits)
	}
	return s
}

// ISO renders the date part as "YYYYMMDD", the form used by TNOdb run
// headers.
func (t Time) ISO() string {
	year, month, day, _ := t.Civil()
	return fmt.Sprintf("%04d%02d%02d", year, month, day)
}

// Time returns t as a UTC wall-clock time.
func (t Time) Time() time.Time {
	const unixEpochJD = 2440587.5
	sec := (t.JD - unixEpochJD) * 86400
	return time.Unix(0, int64(math.Round(sec*1e9))).UTC()
}

// MJD is the Modified Julian Day of t.
func (t Time) MJD() float64 {
	return t.JD - 2400000.5
}

// SortKey is t's Julian Day scaled to an integer micro-day. Two
// observations closer than ~86 ms share a key and are treated as the
// same instant by the writer.
func (t Time) SortKey() int64 {
	return int64(math.Round(t.JD * sortKeyScale))
}
