package mpc

import (
	"fmt"
	"strings"
)

// Survey defaults for TNOdb run headers.
var DefaultObservers = []string{"M. T. Bannister", "J. J. Kavelaars"}

const (
	DefaultTelescope          = "CFHT 3.6m + CCD"
	DefaultAstrometricNetwork = "UCAC4"
)

// TNOdbHeader describes one observing run for a TNOdb input file. Zero
// fields fall back to the survey defaults; the observatory code falls
// back to the first observation's.
type TNOdbHeader struct {
	ObservatoryCode    string
	Observers          []string
	Telescope          string
	AstrometricNetwork string
}

// Render writes the header block for a batch of observations: COD, OBS,
// TEL and NET lines followed by the STD/END date range of the batch.
func (h TNOdbHeader) Render(observations []*Observation) (string, error) {
	if len(observations) == 0 {
		return "", fmt.Errorf("cannot build a header for an empty observation list")
	}

	code := h.ObservatoryCode
	if code == "" {
		code = observations[0].ObservatoryCode
	}
	observers := h.Observers
	if len(observers) == 0 {
		observers = DefaultObservers
	}
	telescope := h.Telescope
	if telescope == "" {
		telescope = DefaultTelescope
	}
	network := h.AstrometricNetwork
	if network == "" {
		network = DefaultAstrometricNetwork
	}

	minDate := observations[0].Date()
	maxDate := minDate
	for _, obs := range observations[1:] {
		if obs.Date().JD < minDate.JD {
			minDate = obs.Date()
		}
		if obs.Date().JD > maxDate.JD {
			maxDate = obs.Date()
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "COD %s\n", code)
	sb.WriteString("OBS " + joinObservers(observers) + "\n")
	fmt.Fprintf(&sb, "TEL %s\n", telescope)
	fmt.Fprintf(&sb, "NET %s\n", network)
	fmt.Fprintf(&sb, "STD %s\n", minDate.ISO())
	fmt.Fprintf(&sb, "END %s\n", maxDate.ISO())
	return sb.String(), nil
}

// joinObservers renders the observer list with the final name joined by
// "and": "A, B and C".
func joinObservers(observers []string) string {
	if len(observers) == 1 {
		return observers[0]
	}
	return strings.Join(observers[:len(observers)-1], ", ") +
		" and " + observers[len(observers)-1]
}
