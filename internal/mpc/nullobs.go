package mpc

import "strings"

// Sentinel characters that mark a null observation in the formats this
// codec has had to ingest over the years. The first is the default
// on-write sentinel; TNOdb output uses '-' and MPC submission uses '#'.
const (
	NullSentinelDefault = '!'
	NullSentinelTNOdb   = '-'
	NullSentinelMPC     = '#'
)

var nullSentinels = "!-#"

// NullObservation records that a line exists structurally but carries
// no valid astrometric measurement. Which sentinel it renders with is
// selected by the output path, independent of what was read.
type NullObservation struct {
	IsNull   bool
	Sentinel byte
}

// NullFromMarker interprets the first character of an observation line.
// Any of the legacy sentinel characters means null; anything else,
// including an empty string, does not.
func NullFromMarker(marker string) NullObservation {
	n := NullObservation{Sentinel: NullSentinelDefault}
	if marker != "" && strings.IndexByte(nullSentinels, marker[0]) >= 0 {
		n.IsNull = true
	}
	return n
}

// NewNullObservation builds the flag directly with the default
// sentinel.
func NewNullObservation(isNull bool) NullObservation {
	return NullObservation{IsNull: isNull, Sentinel: NullSentinelDefault}
}

func (n NullObservation) String() string {
	if n.IsNull {
		s := n.Sentinel
		if s == 0 {
			s = NullSentinelDefault
		}
		return string(s)
	}
	return " "
}
