package mpc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ijiraq/MainBeltComets/internal/mpctime"
	"github.com/ijiraq/MainBeltComets/internal/sexa"
)

// Column widths of the 80-column optical observation line, per
// http://www.minorplanetcenter.net/iau/info/OpticalObs.html. The name
// field is allowed to spill across the minor-planet-number columns, so
// marker plus name form one 12-column region.
const lineWidth = 80

// Observation is one record of the fixed-width astrometric format plus
// its attached comment. Date, coordinates and magnitude are held behind
// setters because each carries a precision inferred from the text it
// was parsed from; mutating the value recomputes the precision so the
// two can never disagree.
type Observation struct {
	Null            NullObservation
	ProvisionalName string
	Discovery       Discovery
	Note1           Note
	Note2           Note
	Band            string
	ObservatoryCode string
	Comment         *Comment

	date         mpctime.Time
	ra, dec      float64
	raPrecision  int
	decPrecision int
	mag          *float64
	magPrecision int
}

// NewObservation builds a record from field strings, running the same
// validation as the line parser.
func NewObservation(provisionalName string, discovery bool, note1, note2, date, ra, dec, mag, band, observatoryCode string) (*Observation, error) {
	obs := &Observation{
		ProvisionalName: strings.TrimSpace(provisionalName),
		Discovery:       NewDiscovery(discovery),
	}
	var err error
	if obs.Note1, err = NewNote(note1, Note1); err != nil {
		return nil, err
	}
	if obs.Note2, err = NewNote(note2, Note2); err != nil {
		return nil, err
	}
	if err = obs.SetDate(date); err != nil {
		return nil, err
	}
	if err = obs.SetCoordinate(ra, dec); err != nil {
		return nil, err
	}
	if err = obs.SetMag(mag); err != nil {
		return nil, err
	}
	obs.SetBand(band)
	if err = obs.SetObservatoryCode(observatoryCode); err != nil {
		return nil, err
	}
	return obs, nil
}

// ParseObservation reads one line of a record stream. Three outcomes:
// a comment-marker line ('#') yields only a comment, to be attached to
// the record that follows; a line whose first 80 columns do not form a
// complete record yields neither value and no error, so batch readers
// can skip it; otherwise the record is returned with any trailing
// comment already attached.
func ParseObservation(line string) (*Observation, *Comment, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.HasPrefix(line, "#") {
		return nil, ParseComment(line[1:]), nil
	}
	var comment *Comment
	if len(line) > 81 {
		comment = ParseComment(line[81:])
	}
	if len(line) > lineWidth {
		line = line[:lineWidth]
	}
	if len(line) != lineWidth {
		return nil, nil, nil
	}

	obs := &Observation{
		Null:            NullFromMarker(line[0:1]),
		ProvisionalName: strings.TrimSpace(line[1:12]),
		Comment:         comment,
	}
	var err error
	if obs.Discovery, err = DiscoveryFromMarker(line[12:13]); err != nil {
		return nil, nil, err
	}
	if obs.Note1, err = NewNote(line[13:14], Note1); err != nil {
		return nil, nil, err
	}
	if obs.Note2, err = NewNote(line[14:15], Note2); err != nil {
		return nil, nil, err
	}
	if err = obs.SetDate(line[15:32]); err != nil {
		return nil, nil, err
	}
	if err = obs.SetCoordinate(line[32:44], line[44:56]); err != nil {
		return nil, nil, err
	}
	if err = obs.SetMag(line[65:70]); err != nil {
		return nil, nil, err
	}
	obs.SetBand(line[70:71])
	if err = obs.SetObservatoryCode(line[77:80]); err != nil {
		return nil, nil, err
	}

	if comment != nil {
		switch comment.Version {
		case VersionOSSOS, VersionCFEPS:
			if comment.SourceName == "" {
				comment.SourceName = obs.ProvisionalName
			}
		}
		if comment.IsTNOdb() && comment.Flags.IsDiscovery() {
			obs.Discovery.IsDiscovery = true
		}
	}
	return obs, nil, nil
}

// SetDate parses an MPC date string, capturing its fractional-day
// precision.
func (o *Observation) SetDate(s string) error {
	t, err := mpctime.Parse(s)
	if err != nil {
		return fieldErr("observation date", "does not match expected format", strings.TrimSpace(s))
	}
	o.date = t
	return nil
}

// Date returns the observation timestamp.
func (o *Observation) Date() mpctime.Time { return o.date }

// SetCoordinate accepts either a decimal-degree pair or a sexagesimal
// pair. Decimal degrees get the fixed output precision (3, 2);
// sexagesimal strings keep the precision they were written with.
func (o *Observation) SetCoordinate(ra, dec string) error {
	raDeg, errRA := strconv.ParseFloat(strings.TrimSpace(ra), 64)
	decDeg, errDec := strconv.ParseFloat(strings.TrimSpace(dec), 64)
	if errRA == nil && errDec == nil {
		o.ra, o.dec = raDeg, decDeg
		o.raPrecision, o.decPrecision = 3, 2
		return nil
	}

	raDeg, raPrec, errRA := sexa.ParseRA(ra)
	decDeg, decPrec, errDec := sexa.ParseDec(dec)
	if errRA != nil || errDec != nil {
		return fieldErr("coordinates",
			"must be [ra_deg, dec_deg] or HH MM SS.S / sDD MM SS.S",
			ra+" "+dec)
	}
	o.ra, o.dec = raDeg, decDeg
	o.raPrecision, o.decPrecision = raPrec, decPrec
	return nil
}

// RA is the right ascension in degrees.
func (o *Observation) RA() float64 { return o.ra }

// Dec is the declination in degrees.
func (o *Observation) Dec() float64 { return o.dec }

// RAString renders the right ascension in the captured precision.
func (o *Observation) RAString() string { return sexa.FormatRA(o.ra, o.raPrecision) }

// DecString renders the declination in the captured precision.
func (o *Observation) DecString() string { return sexa.FormatDec(o.dec, o.decPrecision) }

// SetMag parses the magnitude field. A blank, unparseable or negative
// value means no photometry: the magnitude is cleared. The precision of
// a valid value is capped at one decimal, which is as much as the
// photometric calibration supports.
func (o *Observation) SetMag(s string) error {
	trimmed := strings.TrimSpace(s)
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || v < 0 {
		o.mag = nil
		o.magPrecision = 0
		return nil
	}
	prec := sexa.Precision(trimmed)
	if prec > 1 {
		prec = 1
	}
	if len(fmt.Sprintf("%-5.*f", prec, v)) > 5 {
		return fieldErr("mag", "must fit in 5 columns", trimmed)
	}
	o.mag = &v
	o.magPrecision = prec
	return nil
}

// Mag returns the magnitude, or nil when photometry failed.
func (o *Observation) Mag() *float64 { return o.mag }

// ClearMag drops the magnitude, as when demoting a record to the
// no-photometry form.
func (o *Observation) ClearMag() {
	o.mag = nil
	o.magPrecision = 0
}

// SetBand keeps the first non-blank character of the filter band.
func (o *Observation) SetBand(band string) {
	band = strings.TrimSpace(band)
	if band == "" {
		o.Band = ""
		return
	}
	o.Band = band[0:1]
}

// SetObservatoryCode validates the 3-column observatory code.
func (o *Observation) SetObservatoryCode(code string) error {
	code = strings.TrimSpace(code)
	if len(code) > 3 {
		return fieldErr("observatory code", "must be 3 characters or less", code)
	}
	o.ObservatoryCode = code
	return nil
}

// String renders the 80-column observation line. Names of up to seven
// characters are pushed four columns right so they sit in the
// provisional-designation field; longer survey names claim the whole
// 11-column region.
func (o *Observation) String() string {
	padding := ""
	if len(o.ProvisionalName) <= 7 {
		padding = "    "
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-12s", o.Null.String()+padding+o.ProvisionalName))
	sb.WriteString(o.Discovery.String())
	sb.WriteString(fmt.Sprintf("%1s%1s", o.Note1.String(), o.Note2.String()))
	sb.WriteString(fmt.Sprintf("%-17s", o.date.String()))
	sb.WriteString(fmt.Sprintf("%-12s%-12s", o.RAString(), o.DecString()))
	sb.WriteString(strings.Repeat(" ", 9))
	if o.mag == nil {
		sb.WriteString(strings.Repeat(" ", 6))
	} else {
		sb.WriteString(fmt.Sprintf("%-5.*f%1s", o.magPrecision, *o.mag, o.Band))
	}
	sb.WriteString(strings.Repeat(" ", 6))
	sb.WriteString(fmt.Sprintf("%3s", o.ObservatoryCode))
	return sb.String()
}

// ToString renders the line plus its comment, separated by one column.
func (o *Observation) ToString() string {
	s := o.String()
	if o.Comment != nil {
		if c := o.Comment.String(); c != "" {
			s += " " + c
		}
	}
	return s
}

// ToTNOdb renders the database-input form: the comment on its own
// marker line, then the observation line with the database null
// sentinel and the magnitude precision forced to one decimal.
func (o *Observation) ToTNOdb() string {
	commentLine := "#"
	if o.Comment != nil {
		commentLine += strings.TrimRight(o.Comment.String(), "\n")
	}
	if o.mag != nil {
		o.magPrecision = 1
	}
	o.Null.Sentinel = NullSentinelTNOdb
	return commentLine + "\n" + o.String()
}

// ToMPC renders the submission form, which marks null observations
// with '#'.
func (o *Observation) ToMPC() string {
	o.Null.Sentinel = NullSentinelMPC
	return o.String()
}
