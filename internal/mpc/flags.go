package mpc

import (
	"regexp"
)

var flagsPattern = regexp.MustCompile(`^[01]{12}$`)

// Flags is the twelve-bit survey flag string attached to records in the
// TNOdb database. Bit 0 marks discovery-triplet membership, bit 1 marks
// an embargoed (secret) observation.
type Flags string

// NewFlags validates the flag string. A non-binary or wrongly sized
// string is a hard error: database flags are expected to be well formed.
func NewFlags(s string) (Flags, error) {
	if !flagsPattern.MatchString(s) {
		return "", fieldErr("flags", "must match 12 binary digits", s)
	}
	return Flags(s), nil
}

// IsDiscovery reports whether the observation is part of the discovery
// triplet.
func (f Flags) IsDiscovery() bool {
	return len(f) > 0 && f[0] == '1'
}

// IsSecret reports whether the observation is embargoed.
func (f Flags) IsSecret() bool {
	return len(f) > 1 && f[1] == '1'
}

func (f Flags) String() string { return string(f) }
