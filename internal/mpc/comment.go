package mpc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Comment versions. The version letter tags which historical layout a
// comment line was written in; an empty version is the opaque
// passthrough for strings no structured decoder accepted.
const (
	VersionOSSOS = "O" // survey-standard layout
	VersionCFEPS = "L" // legacy-survey layout
	VersionTNOdb = "T" // database-internal line whose tail stayed opaque
	VersionRaw   = ""  // unrecognized, stored verbatim
)

// Comment is the metadata line attached to an observation. The variants
// share a field set; the TNOdb variant adds an index, a date and a flag
// string in front of an embedded survey comment.
type Comment struct {
	Version        string   `json:"version"`
	Frame          string   `json:"frame,omitempty"`
	SourceName     string   `json:"source_name,omitempty"`
	PhotometryNote string   `json:"photometry_note,omitempty"`
	MPCNote        string   `json:"mpc_note,omitempty"`
	X              *float64 `json:"x,omitempty"`
	Y              *float64 `json:"y,omitempty"`

	// PlateUncertainty is the astrometric uncertainty in arc-seconds.
	// It always carries a value; 0.2 is the survey default.
	PlateUncertainty float64 `json:"plate_uncertainty"`
	// AstrometricLevel is the measurement quality tier, 0-9.
	AstrometricLevel int      `json:"astrometric_level"`
	Mag              *float64 `json:"mag,omitempty"`
	MagUncertainty   *float64 `json:"mag_uncertainty,omitempty"`

	// Comment is the free text after the '%' marker; for raw and
	// opaque-TNOdb comments it holds the whole payload.
	Comment string `json:"comment,omitempty"`

	// TNOdb-only fields.
	Index string `json:"index,omitempty"`
	Date  string `json:"date,omitempty"`
	Flags Flags  `json:"flags,omitempty"`
}

// IsTNOdb reports whether the comment carried the database-internal
// index/date/flags prefix.
func (c *Comment) IsTNOdb() bool { return c.Index != "" }

func newOSSOSComment(version, frame, source, photometryNote, mpcNote string) *Comment {
	return &Comment{
		Version:          version,
		Frame:            strings.TrimSpace(frame),
		SourceName:       strings.TrimSpace(source),
		PhotometryNote:   photometryNote,
		MPCNote:          mpcNote,
		PlateUncertainty: 0.2,
	}
}

// SetMag stores a magnitude and rederives the photometry note: a value
// in the plausible survey range (15, 30) means photometry succeeded
// ('Y'); anything else, or no value, records a failure ('Z') and leaves
// the magnitude unset.
func (c *Comment) SetMag(mag *float64) {
	if mag == nil || !(15 < *mag && *mag < 30) {
		c.PhotometryNote = "Z"
		c.Mag = nil
		return
	}
	v := *mag
	c.Mag = &v
	c.PhotometryNote = "Y"
}

func (c *Comment) setMagToken(tok string) {
	v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
	if err != nil {
		c.SetMag(nil)
		return
	}
	c.SetMag(&v)
}

// SetMagUncertainty stores a magnitude uncertainty, which must fall in
// (0, 1).
func (c *Comment) SetMagUncertainty(u float64) error {
	if !(0 < u && u < 1) {
		return fieldErr("mag_uncertainty", "must be in range (0, 1)",
			strconv.FormatFloat(u, 'f', -1, 64))
	}
	c.MagUncertainty = &u
	return nil
}

// setMagErrToken handles the wire token: an unparseable token (the '-'
// fill of an unset field) clears the uncertainty and downgrades the
// photometry note, 'L' when a magnitude exists without an uncertainty,
// 'Z' when there is no magnitude either.
func (c *Comment) setMagErrToken(tok string) error {
	u, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
	if err != nil {
		c.MagUncertainty = nil
		if c.Mag != nil {
			c.PhotometryNote = "L"
		} else {
			c.PhotometryNote = "Z"
		}
		return nil
	}
	return c.SetMagUncertainty(u)
}

// SetPlateUncertainty stores the astrometric uncertainty in
// arc-seconds, which must fall in (0, 100).
func (c *Comment) SetPlateUncertainty(u float64) error {
	if !(0 < u && u < 100) {
		return fieldErr("plate_uncertainty", "must be between 0 and 100 arc-seconds",
			strconv.FormatFloat(u, 'f', -1, 64))
	}
	c.PlateUncertainty = u
	return nil
}

func (c *Comment) setPlateToken(tok string) error {
	u, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
	if err != nil {
		c.PlateUncertainty = 0.2
		return nil
	}
	return c.SetPlateUncertainty(u)
}

// SetAstrometricLevel stores the quality tier, which must be 0-9.
func (c *Comment) SetAstrometricLevel(level int) error {
	if level < 0 || level > 9 {
		return fieldErr("astrometric_level", "must be an integer between 0 and 9",
			strconv.Itoa(level))
	}
	c.AstrometricLevel = level
	return nil
}

func (c *Comment) setLevelToken(tok string) error {
	level, err := strconv.Atoi(strings.TrimSpace(tok))
	if err != nil {
		return fieldErr("astrometric_level", "must be an integer between 0 and 9", tok)
	}
	return c.SetAstrometricLevel(level)
}

func (c *Comment) setXToken(tok string) {
	if v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64); err == nil {
		c.X = &v
	} else {
		c.X = nil
	}
}

func (c *Comment) setYToken(tok string) {
	if v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64); err == nil {
		c.Y = &v
	} else {
		c.Y = nil
	}
}

// ParseComment tries each structural decoder in a fixed priority order
// and keeps the first that accepts the string. The formats overlap
// visually and carry no explicit tag, so only structural checks
// disambiguate them; when every decoder refuses, the string is kept
// verbatim rather than dropped.
func ParseComment(s string) *Comment {
	s = strings.TrimPrefix(s, "#")
	if s == "" {
		return nil
	}
	for _, decode := range commentDecoders {
		if c, err := decode(s); err == nil {
			return c
		}
	}
	return &Comment{Version: VersionRaw, Comment: s}
}

// commentDecoders is the trial order: database-internal first (its
// index pattern is the most selective), then the survey-standard fixed
// and split layouts, then the unversioned survey form, then the legacy
// survey form.
var commentDecoders = []func(string) (*Comment, error){
	decodeTNOdb,
	decodeOSSOS,
	decodeUnversionedOSSOS,
	decodeCFEPS,
}

var tnodbIndexPattern = regexp.MustCompile(`^\d{8}_\S{3}_\S`)

// decodeTNOdb reads the database-internal layout: a 14-column index, a
// date, a flag string, 22 columns of padding, then an embedded survey
// comment (or free text).
func decodeTNOdb(line string) (*Comment, error) {
	if len(line) < 56 {
		return nil, fmt.Errorf("line too short for a TNOdb comment: %q", line)
	}
	index := strings.TrimSpace(line[0:14])
	if !tnodbIndexPattern.MatchString(index) {
		return nil, fmt.Errorf("no valid index, not a TNOdb comment: %q", line)
	}
	date := strings.TrimSpace(line[15:23])
	flags := strings.TrimSpace(line[24:34])
	embedded := strings.TrimSpace(line[56:])

	// The wire column keeps the leading ten bits of the twelve-bit
	// database flag field; validate the zero-extended form.
	if flags != "" {
		if _, err := NewFlags(flags + strings.Repeat("0", 12-len(flags))); err != nil {
			return nil, err
		}
	}

	var c *Comment
	if embedded != "" {
		if inner, err := decodeOSSOS(embedded); err == nil {
			c = inner
		} else if inner, err := decodeCFEPS(embedded); err == nil {
			c = inner
		}
	}
	if c == nil {
		c = newOSSOSComment(VersionTNOdb, " ", "", " ", " ")
		c.SourceName = ""
		c.Comment = embedded
	}
	c.Index = index
	c.Date = date
	c.Flags = Flags(flags)
	return c, nil
}

// OSSOS fixed-layout offsets, equivalent to the field slicing
// 1s1x10s1x11s1x1s1s1x7s1x7s1x4s1x1s1x5s1x4s1x.
const ossosFixedWidth = 62

// decodeOSSOS reads the survey-standard layout, first as the fixed
// 62-column form, then as the whitespace-separated fallback. Free text
// follows a '%' marker in both.
func decodeOSSOS(s string) (*Comment, error) {
	s = strings.TrimPrefix(s, "#")
	parts := strings.SplitN(s, "%", 2)
	text := ""
	if len(parts) > 1 {
		text = strings.TrimSpace(parts[1])
	}
	if c, err := decodeOSSOSFixed(parts[0], text); err == nil {
		return c, nil
	}
	return decodeOSSOSSplit(parts[0], text)
}

func decodeOSSOSFixed(fixed, text string) (*Comment, error) {
	if len(fixed) != ossosFixedWidth {
		return nil, fmt.Errorf("fixed OSSOS comment must be %d columns, got %d",
			ossosFixedWidth, len(fixed))
	}
	c := newOSSOSComment(fixed[0:1], fixed[2:12], fixed[13:24], fixed[25:26], fixed[26:27])
	c.setXToken(fixed[28:35])
	c.setYToken(fixed[36:43])
	c.setMagToken(fixed[51:56])
	if err := c.setMagErrToken(fixed[57:61]); err != nil {
		return nil, err
	}
	if err := c.setPlateToken(fixed[44:48]); err != nil {
		return nil, err
	}
	if err := c.setLevelToken(fixed[49:50]); err != nil {
		return nil, err
	}
	c.Comment = text
	return c, nil
}

// decodeOSSOSSplit reads the whitespace-separated survey form. The
// first six tokens (version, frame, source, notes, x, y) are required;
// the tail evolved during the survey and is recognized by token count.
func decodeOSSOSSplit(fixed, text string) (*Comment, error) {
	fields := strings.Fields(fixed)
	if len(fields) < 6 || fields[0] != "O" {
		return nil, fmt.Errorf("not an OSSOS style comment: %q", fixed)
	}
	notes := fields[3]
	c := newOSSOSComment(fields[0], fields[1], fields[2], notes[0:1], notes[1:])
	c.setXToken(fields[4])
	c.setYToken(fields[5])
	c.Comment = text

	var err error
	switch len(fields) {
	case 7:
		err = c.setPlateToken(fields[6])
	case 8:
		if err = c.setPlateToken(fields[6]); err == nil {
			err = c.setLevelToken(fields[7])
		}
	case 9:
		// Oldest tail: magnitude sat between y and the uncertainty.
		c.setMagToken(fields[6])
		if err = c.setMagErrToken(fields[7]); err == nil {
			err = c.setPlateToken(fields[8])
		}
	case 10:
		c.setMagToken(fields[6])
		if err = c.setMagErrToken(fields[7]); err == nil {
			if err = c.setPlateToken(fields[8]); err == nil {
				err = c.setLevelToken(fields[9])
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// decodeUnversionedOSSOS accepts survey comments whose leading version
// token was dropped by some historical export paths.
func decodeUnversionedOSSOS(s string) (*Comment, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, fmt.Errorf("empty comment")
	}
	if trimmed[0] != 'O' {
		s = "O " + s
	}
	return decodeOSSOS(s)
}

// decodeCFEPS reads the legacy-survey layout: "L <frame> <free text>".
// Pixel coordinates only exist when the free text carries the
// "measured inside confirm @ x y" phrase.
func decodeCFEPS(s string) (*Comment, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 || fields[0] != "L" {
		return nil, fmt.Errorf("not a CFEPS style comment: %q", s)
	}
	c := newOSSOSComment(VersionCFEPS, fields[1], "", " ", " ")
	c.SetMag(nil)
	c.Comment = strings.Join(fields[2:], " ")

	if strings.Contains(c.Comment, "measured inside confirm @") {
		after := strings.SplitN(c.Comment, "@", 2)[1]
		vals := strings.Fields(after)
		if len(vals) >= 2 {
			c.setXToken(vals[0])
			c.setYToken(vals[1])
		}
	}
	return c, nil
}

// optString renders " " + value in format, or the dash fill when the
// value is absent.
func optString(format, value, fill string) string {
	if value == "" {
		return " " + fill
	}
	return " " + fmt.Sprintf(format, value)
}

func optFloat(format string, value *float64, fill string) string {
	if value == nil {
		return " " + fill
	}
	return " " + fmt.Sprintf(format, *value)
}

// String renders the comment body deterministically. Unset numeric
// fields render as dash runs of the field width so fixed-offset
// re-reading stays valid downstream.
func (c *Comment) String() string {
	switch c.Version {
	case VersionRaw, VersionTNOdb:
		return c.Comment
	case VersionCFEPS:
		return fmt.Sprintf("%1s %-10s %s", c.Version, c.Frame, c.Comment)
	}

	notes := c.PhotometryNote + c.MPCNote
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%1s", c.Version))
	sb.WriteString(optString("%10.10s", c.Frame, strings.Repeat("-", 10)))
	sb.WriteString(optString("%-11.11s", c.SourceName, strings.Repeat("-", 11)))
	sb.WriteString(optString("%-2.2s", notes, "--"))
	sb.WriteString(optFloat("%7.2f", c.X, strings.Repeat("-", 7)))
	sb.WriteString(optFloat("%7.2f", c.Y, strings.Repeat("-", 7)))
	sb.WriteString(" " + fmt.Sprintf("%4.2f", c.PlateUncertainty))
	sb.WriteString(" " + fmt.Sprintf("%1d", c.AstrometricLevel))
	sb.WriteString(optFloat("%5.2f", c.Mag, strings.Repeat("-", 5)))
	sb.WriteString(optFloat("%4.2f", c.MagUncertainty, strings.Repeat("-", 4)))
	sb.WriteString(fmt.Sprintf(" %% %s", c.Comment))
	return sb.String()
}

// TNOdbString renders the database-internal form: the index, date and
// flag fields, the 22-column pad, then the comment body.
func (c *Comment) TNOdbString() string {
	return fmt.Sprintf("%s %s %s%s%s",
		c.Index, c.Date, c.Flags, strings.Repeat(" ", 22), c.String())
}
