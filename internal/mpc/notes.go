package mpc

import (
	"fmt"
	"strconv"
	"strings"
)

// NoteType selects which code vocabulary a Note is validated against.
type NoteType string

const (
	// Note1 describes the circumstances of the observation.
	Note1 NoteType = "Note1"
	// Note2 describes the detector or observation method.
	Note2 NoteType = "Note2"
	// PhotometryNote describes the outcome of the photometric
	// measurement attached to a comment line.
	PhotometryNote NoteType = "PhotometryNote"
)

// note1Codes are the observation-circumstance codes from the MPC
// optical observation format. Note1 additionally accepts the digits
// 1-9, which differentiate programs sharing an observatory code.
var note1Codes = map[string]string{
	" ": " ",
	"*": "*",
	"A": "earlier approximate position inferior",
	"a": "sense of motion ambiguous",
	"B": "bright sky/black or dark plate",
	"b": "bad seeing",
	"c": "crowded star field",
	"D": "declination uncertain",
	"d": "diffuse image",
	"E": "at or near edge of plate",
	"F": "faint image",
	"f": "involved with emulsion or plate flaw",
	"G": "poor guiding",
	"g": "no guiding",
	"H": "hand measurement of CCD image",
	"I": "involved with star",
	"i": "inkdot measured",
	"J": "J2000.0 rereduction of previously-reported position",
	"K": "stacked image",
	"k": "stare-mode observation by scanning system",
	"M": "measurement difficult",
	"m": "image tracked on object motion",
	"N": "near edge of plate, measurement uncertain",
	"O": "image out of focus",
	"o": "plate measured in one direction only",
	"P": "position uncertain",
	"p": "poor image",
	"R": "right ascension uncertain",
	"r": "poor distribution of reference stars",
	"S": "poor sky",
	"s": "streaked image",
	"T": "time uncertain",
	"t": "trailed image",
	"U": "uncertain image",
	"u": "unconfirmed image",
	"V": "very faint image",
	"W": "weak image",
	"w": "weak solution",
}

var note2Codes = map[string]string{
	" ": " ",
	"P": "Photographic",
	"e": "Encoder",
	"C": "CCD",
	"T": "Meridian or transit circle",
	"M": "Micrometer",
	"V": "'Roving Observer' observation",
	"R": "Radar observation",
	"S": "Satellite observation",
	"c": "Corrected-without-republication CCD observation",
	"E": "Occultation-derived observations",
	"O": "Offset observations (used only for observations of natural satellites)",
	"H": "Hipparcos geocentric observations",
	"N": "Normal place",
	"n": "Mini-normal place derived from averaging observations from video frames",
}

var photometryCodes = map[string]string{
	" ": " ",
	"L": "Photometry uncertainty lacking",
	"Y": "Photometry measured successfully",
	"Z": "Photometry measurement failed.",
}

func vocabulary(t NoteType) map[string]string {
	switch t {
	case Note1:
		return note1Codes
	case Note2:
		return note2Codes
	case PhotometryNote:
		return photometryCodes
	}
	return nil
}

// Note is a validated single-character observation code.
type Note struct {
	Type NoteType
	Code string
}

// NewNote validates code against the vocabulary for noteType. An empty
// code is stored as a single space.
func NewNote(code string, noteType NoteType) (Note, error) {
	vocab := vocabulary(noteType)
	if vocab == nil {
		return Note{}, fmt.Errorf("invalid note type %q", noteType)
	}

	c := strings.TrimSpace(code)
	if c == "" {
		c = " "
	}

	if len(c) == 1 && c[0] >= '0' && c[0] <= '9' {
		if noteType != Note1 {
			return Note{}, fieldErr(string(noteType), "must be a character", c)
		}
		n, _ := strconv.Atoi(c)
		if n < 1 || n > 9 {
			return Note{}, fieldErr(string(noteType), "numeric value must be between 1 and 9", c)
		}
		return Note{Type: noteType, Code: c}, nil
	}

	if len(c) > 1 {
		return Note{}, fieldErr(string(noteType), "must be 0 or 1 characters", c)
	}
	if _, ok := vocab[c]; !ok {
		return Note{}, fieldErr(string(noteType), "must be a known code", c)
	}
	return Note{Type: noteType, Code: c}, nil
}

// String renders the code as the single character written on the wire.
func (n Note) String() string {
	if n.Code == "" {
		return " "
	}
	return n.Code
}

// Long returns the human-readable meaning of the code, or the code
// itself for the numeric program codes.
func (n Note) Long() string {
	if meaning, ok := vocabulary(n.Type)[n.Code]; ok {
		return meaning
	}
	return n.Code
}
