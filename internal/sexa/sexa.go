// Package sexa converts between decimal degrees and the sexagesimal
// coordinate strings used on MPC observation lines: "HH MM SS.ddd" for
// right ascension and "sDD MM SS.dd" for declination. Formatting works
// in scaled integers so that rounding carries propagate through
// seconds, minutes and hours instead of printing "60.000".
package sexa

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Precision returns the number of digits after the last '.' in s.
func Precision(s string) int {
	s = strings.TrimSpace(s)
	idx := strings.LastIndex(s, ".")
	if idx < 0 {
		return 0
	}
	return len(s) - idx - 1
}

// ParseRA reads "HH MM SS.ddd" (hours) and returns degrees plus the
// captured seconds precision.
func ParseRA(s string) (deg float64, precision int, err error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return 0, 0, fmt.Errorf("RA %q: want \"HH MM SS.ddd\"", s)
	}
	hh, err := strconv.Atoi(fields[0])
	if err != nil || hh < 0 || hh > 23 {
		return 0, 0, fmt.Errorf("RA %q: bad hours", s)
	}
	mm, err := strconv.Atoi(fields[1])
	if err != nil || mm < 0 || mm > 59 {
		return 0, 0, fmt.Errorf("RA %q: bad minutes", s)
	}
	ss, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || ss < 0 || ss >= 60 {
		return 0, 0, fmt.Errorf("RA %q: bad seconds", s)
	}
	deg = (float64(hh) + float64(mm)/60 + ss/3600) * 15
	return deg, Precision(fields[2]), nil
}

// ParseDec reads "sDD MM SS.dd" and returns degrees plus the captured
// seconds precision. The sign is optional on input.
func ParseDec(s string) (deg float64, precision int, err error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return 0, 0, fmt.Errorf("DEC %q: want \"sDD MM SS.dd\"", s)
	}
	sign := 1.0
	dd := fields[0]
	switch {
	case strings.HasPrefix(dd, "-"):
		sign = -1.0
		dd = dd[1:]
	case strings.HasPrefix(dd, "+"):
		dd = dd[1:]
	}
	d, err := strconv.Atoi(dd)
	if err != nil || d < 0 || d > 90 {
		return 0, 0, fmt.Errorf("DEC %q: bad degrees", s)
	}
	mm, err := strconv.Atoi(fields[1])
	if err != nil || mm < 0 || mm > 59 {
		return 0, 0, fmt.Errorf("DEC %q: bad minutes", s)
	}
	ss, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || ss < 0 || ss >= 60 {
		return 0, 0, fmt.Errorf("DEC %q: bad seconds", s)
	}
	deg = sign * (float64(d) + float64(mm)/60 + ss/3600)
	return deg, Precision(fields[2]), nil
}

// split breaks an absolute value given in units (hours or degrees) into
// zero-padded sexagesimal parts, rounding the seconds at precision.
func split(units float64, precision int) (whole, min int64, sec string) {
	scale := int64(1)
	for i := 0; i < precision; i++ {
		scale *= 10
	}
	n := int64(math.Round(units * 3600 * float64(scale)))

	whole = n / (3600 * scale)
	rem := n % (3600 * scale)
	min = rem / (60 * scale)
	rem = rem % (60 * scale)
	if precision > 0 {
		sec = fmt.Sprintf("%02d.%0*d", rem/scale, precision, rem%scale)
	} else {
		sec = fmt.Sprintf("%02d", rem/scale)
	}
	return whole, min, sec
}

// FormatRA renders degrees as "HH MM SS.ddd" with the given seconds
// precision, wrapping at 24 hours.
func FormatRA(deg float64, precision int) string {
	hours := math.Mod(deg/15, 24)
	if hours < 0 {
		hours += 24
	}
	hh, mm, ss := split(hours, precision)
	hh %= 24
	return fmt.Sprintf("%02d %02d %s", hh, mm, ss)
}

// FormatDec renders degrees as "sDD MM SS.dd" with an explicit sign and
// the given seconds precision.
func FormatDec(deg float64, precision int) string {
	sign := "+"
	if deg < 0 {
		sign = "-"
		deg = -deg
	}
	dd, mm, ss := split(deg, precision)
	return fmt.Sprintf("%s%02d %02d %s", sign, dd, mm, ss)
}
