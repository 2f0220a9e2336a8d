package convert

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	line1 = "     K13T01 *AC2013 10 05.412683" +
		"12 34 45.671-20 28 15.90         20.6 R      568"
	line2 = "     K13T01  AC2013 10 06.412683" +
		"12 34 46.671-20 28 16.90         20.6 R      568"
)

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvertFile(t *testing.T) {
	if len(line1) != 80 || len(line2) != 80 {
		t.Fatalf("fixture lines are %d and %d columns, want 80", len(line1), len(line2))
	}
	dir := t.TempDir()
	// Later observation first: the writer reorders chronologically.
	input := writeInput(t, dir, "K13T01.mpc", line2+"\n"+line1+"\n")

	if err := (Converter{}).ConvertFile(input, ""); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "K13T01.tnodb"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	wantHeader := []string{
		"COD 568",
		"OBS M. T. Bannister and J. J. Kavelaars",
		"TEL CFHT 3.6m + CCD",
		"NET UCAC4",
		"STD 20131005",
		"END 20131006",
	}
	if len(lines) != len(wantHeader)+4 {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(wantHeader)+4, data)
	}
	for i, want := range wantHeader {
		if lines[i] != want {
			t.Errorf("header line %d = %q, want %q", i, lines[i], want)
		}
	}

	// Each record becomes a comment line plus an observation line, in
	// date order.
	if !strings.HasPrefix(lines[6], "#") {
		t.Errorf("line 6 = %q, want comment marker", lines[6])
	}
	if !strings.Contains(lines[7], "2013 10 05") {
		t.Errorf("line 7 = %q, want the October 5 record first", lines[7])
	}
	if !strings.Contains(lines[9], "2013 10 06") {
		t.Errorf("line 9 = %q, want the October 6 record second", lines[9])
	}
}

func TestConvertFileEmpty(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "empty.mpc", "not an observation\n")
	if err := (Converter{}).ConvertFile(input, ""); err == nil {
		t.Fatal("expected error for file with no records")
	}
}

func TestBatchConvert(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "a.mpc", line1+"\n")
	writeInput(t, dir, "b.track", line2+"\n")
	writeInput(t, dir, "c.checkup", line1+"\n")
	writeInput(t, dir, "d.nailing", line2+"\n")
	writeInput(t, dir, "ignored.txt", line1+"\n")
	writeInput(t, dir, "broken.mpc", "nothing useful\n")

	converted, err := Converter{}.BatchConvert(dir)
	if converted != 4 {
		t.Errorf("converted = %d, want 4", converted)
	}
	if err == nil {
		t.Error("expected joined error for broken.mpc")
	}

	for _, name := range []string{"a.tnodb", "b.tnodb", "c.tnodb", "d.tnodb"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "ignored.tnodb")); err == nil {
		t.Error("ignored.txt should not be converted")
	}
}

func TestHasTrackingExtension(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"obj.mpc", true},
		{"obj.track", true},
		{"obj.checkup", true},
		{"obj.nailing", true},
		{"obj.tnodb", false},
		{"obj.ast", false},
	}
	for _, tt := range tests {
		if got := HasTrackingExtension(tt.path); got != tt.want {
			t.Errorf("HasTrackingExtension(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
