package mpc

import (
	"fmt"
	"io"
	"sort"
)

// Writer assembles a chronologically ordered, deduplicated observation
// stream. Records are buffered keyed by their micro-day time key;
// writing a second record with the same key before a flush replaces the
// first, and a key that has already been flushed is never emitted
// again. The writer also owns the discovery bookkeeping: exactly one
// emitted record carries the initial-discovery asterisk.
type Writer struct {
	// AutoFlush drains the buffer on every Write.
	AutoFlush bool
	// AutoDiscovery promotes the first flushed non-null record to a
	// discovery when none was marked upstream.
	AutoDiscovery bool
	// IncludeComments selects the default formatter: the full line
	// with its trailing comment, or the bare 80 columns.
	IncludeComments bool
	// Formatter, when set, overrides the default rendering.
	Formatter func(*Observation) string

	w                io.Writer
	buffer           map[int64]*Observation
	written          map[int64]bool
	discoveryWritten bool
}

// NewWriter builds a writer with auto-flush, auto-discovery and
// comments enabled.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		AutoFlush:       true,
		AutoDiscovery:   true,
		IncludeComments: true,
		w:               w,
		buffer:          make(map[int64]*Observation),
		written:         make(map[int64]bool),
	}
}

func (w *Writer) formatter() func(*Observation) string {
	if w.Formatter != nil {
		return w.Formatter
	}
	if w.IncludeComments {
		return (*Observation).ToString
	}
	return (*Observation).String
}

// Write buffers one record under its time key.
func (w *Writer) Write(obs *Observation) error {
	w.buffer[obs.Date().SortKey()] = obs
	if w.AutoFlush {
		return w.Flush()
	}
	return nil
}

// Flush emits the buffered records in chronological order, skipping
// time keys that were emitted by an earlier flush.
func (w *Writer) Flush() error {
	keys := make([]int64, 0, len(w.buffer))
	for key := range w.buffer {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, key := range keys {
		obs := w.buffer[key]
		delete(w.buffer, key)
		if err := w.flushObservation(key, obs); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) flushObservation(key int64, obs *Observation) error {
	if w.AutoDiscovery && !obs.Null.IsNull && !w.discoveryWritten {
		obs.Discovery = NewDiscovery(true)
	}
	if obs.Discovery.IsDiscovery {
		if w.discoveryWritten {
			// Only the chronologically first line keeps the asterisk.
			obs.Discovery.IsInitialDiscovery = false
		} else {
			w.discoveryWritten = true
		}
	}

	if w.written[key] {
		return nil
	}
	w.written[key] = true
	_, err := fmt.Fprintln(w.w, w.formatter()(obs))
	return err
}

// Close flushes and, when the underlying writer is a Closer, closes it.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if c, ok := w.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
