package mpc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Reader streams observation records from a line-oriented source.
// Standalone comment lines are held and attached to the next record
// that does not already carry its own comment. Lines with malformed
// fields are counted and skipped so one bad record cannot fail a whole
// batch.
type Reader struct {
	// ReplaceProvisional, when non-empty, overrides the provisional
	// name of every record read. Used when the filename carries the
	// survey designation and the lines hold a temporary one.
	ReplaceProvisional string

	scanner *bufio.Scanner
	held    *Comment
	skipped int
}

// NewReader wraps r for record streaming.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next record, or io.EOF when the input is exhausted.
func (r *Reader) Next() (*Observation, error) {
	for r.scanner.Scan() {
		obs, comment, err := ParseObservation(r.scanner.Text())
		if err != nil {
			r.skipped++
			continue
		}
		if comment != nil {
			r.held = comment
			continue
		}
		if obs == nil {
			continue
		}
		if r.held != nil {
			if obs.Comment == nil {
				obs.Comment = r.held
			}
			r.held = nil
		}
		if r.ReplaceProvisional != "" {
			obs.ProvisionalName = r.ReplaceProvisional
		}
		return obs, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// ReadAll drains the stream.
func (r *Reader) ReadAll() ([]*Observation, error) {
	var observations []*Observation
	for {
		obs, err := r.Next()
		if err == io.EOF {
			return observations, nil
		}
		if err != nil {
			return observations, err
		}
		observations = append(observations, obs)
	}
}

// Skipped reports how many lines were dropped for malformed fields.
func (r *Reader) Skipped() int { return r.skipped }

// ReadFile reads every record in an observation file.
func ReadFile(path string) ([]*Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return NewReader(f).ReadAll()
}

// ProvisionalNameFromPath derives the survey designation tracking files
// are named after.
func ProvisionalNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, ".ast")
}
