// Package convert turns files of MPC formatted observation lines into
// TNOdb input files: one run header, then each record in the
// database-input rendering.
package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ijiraq/MainBeltComets/internal/mpc"
)

// trackingExtensions are the file kinds an observing run leaves behind,
// all holding MPC lines.
var trackingExtensions = []string{".mpc", ".track", ".checkup", ".nailing"}

// Converter writes TNOdb files. The zero value uses the survey header
// defaults.
type Converter struct {
	Header mpc.TNOdbHeader
}

// ConvertFile converts one MPC file. When outputPath is empty the
// input's extension is replaced with .tnodb.
func (c Converter) ConvertFile(inputPath, outputPath string) error {
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".tnodb"
	}

	observations, err := mpc.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inputPath, err)
	}
	if len(observations) == 0 {
		return fmt.Errorf("%s: no observations to convert", inputPath)
	}

	header, err := c.Header.Render(observations)
	if err != nil {
		return fmt.Errorf("header for %s: %w", inputPath, err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}

	w := mpc.NewWriter(out)
	w.AutoFlush = false
	// Discovery flags come from the input records; converting a
	// follow-up file must not invent a discovery triplet.
	w.AutoDiscovery = false
	w.Formatter = (*mpc.Observation).ToTNOdb

	if _, err := out.WriteString(header); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	for _, obs := range observations {
		if err := w.Write(obs); err != nil {
			out.Close()
			return fmt.Errorf("write %s: %w", outputPath, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}

// HasTrackingExtension reports whether path names a file kind the batch
// converter picks up.
func HasTrackingExtension(path string) bool {
	for _, ext := range trackingExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// BatchConvert converts every tracking file in dir, continuing past
// per-file failures. It returns the number of files converted and the
// joined failures, if any.
func (c Converter) BatchConvert(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read dir %s: %w", dir, err)
	}

	converted := 0
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !HasTrackingExtension(entry.Name()) {
			continue
		}
		if err := c.ConvertFile(filepath.Join(dir, entry.Name()), ""); err != nil {
			errs = append(errs, err)
			continue
		}
		converted++
	}
	return converted, errors.Join(errs...)
}
