package mpc

import (
	"errors"
	"testing"
)

func TestNewNote(t *testing.T) {
	tests := []struct {
		code     string
		noteType NoteType
		want     string
		wantErr  bool
	}{
		{"C", Note2, "C", false},
		{"H", Note1, "H", false},
		{"", Note1, " ", false},
		{" ", Note2, " ", false},
		{"3", Note1, "3", false},
		{"0", Note1, "", true},
		{"3", Note2, "", true},
		{"q", Note2, "", true},
		{"CC", Note2, "", true},
		{"Y", PhotometryNote, "Y", false},
	}

	for _, tt := range tests {
		note, err := NewNote(tt.code, tt.noteType)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewNote(%q, %s): expected error", tt.code, tt.noteType)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewNote(%q, %s): %v", tt.code, tt.noteType, err)
			continue
		}
		if note.String() != tt.want {
			t.Errorf("NewNote(%q, %s) = %q, want %q", tt.code, tt.noteType, note.String(), tt.want)
		}
	}
}

func TestNoteLong(t *testing.T) {
	note, err := NewNote("C", Note2)
	if err != nil {
		t.Fatal(err)
	}
	if note.Long() != "CCD" {
		t.Errorf("Long() = %q, want %q", note.Long(), "CCD")
	}
}

func TestNoteFieldError(t *testing.T) {
	_, err := NewNote("q", Note2)
	var ferr *FieldError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *FieldError, got %T", err)
	}
	if ferr.Field != "Note2" {
		t.Errorf("Field = %q, want %q", ferr.Field, "Note2")
	}
}

func TestDiscoveryFromMarker(t *testing.T) {
	tests := []struct {
		marker      string
		isDiscovery bool
		isInitial   bool
		wantErr     bool
	}{
		{"*", true, true, false},
		{"&", true, false, false},
		{" ", false, false, false},
		{"", false, false, false},
		{"x", false, false, true},
	}

	for _, tt := range tests {
		d, err := DiscoveryFromMarker(tt.marker)
		if tt.wantErr {
			if err == nil {
				t.Errorf("DiscoveryFromMarker(%q): expected error", tt.marker)
			}
			continue
		}
		if err != nil {
			t.Errorf("DiscoveryFromMarker(%q): %v", tt.marker, err)
			continue
		}
		if d.IsDiscovery != tt.isDiscovery || d.IsInitialDiscovery != tt.isInitial {
			t.Errorf("DiscoveryFromMarker(%q) = %+v", tt.marker, d)
		}
	}
}

func TestDiscoveryString(t *testing.T) {
	if got := NewDiscovery(true).String(); got != "*" {
		t.Errorf("initial discovery = %q, want %q", got, "*")
	}
	d := NewDiscovery(true)
	d.IsInitialDiscovery = false
	if got := d.String(); got != "&" {
		t.Errorf("demoted discovery = %q, want %q", got, "&")
	}
	if got := NewDiscovery(false).String(); got != " " {
		t.Errorf("non-discovery = %q, want %q", got, " ")
	}
}

func TestNullFromMarker(t *testing.T) {
	for _, marker := range []string{"!", "-", "#"} {
		if n := NullFromMarker(marker); !n.IsNull {
			t.Errorf("NullFromMarker(%q).IsNull = false, want true", marker)
		}
	}
	if n := NullFromMarker(" "); n.IsNull {
		t.Error("NullFromMarker(\" \").IsNull = true, want false")
	}

	// On re-render the default sentinel is used regardless of which
	// one was read.
	n := NullFromMarker("-")
	if got := n.String(); got != "!" {
		t.Errorf("String() = %q, want %q", got, "!")
	}
	n.Sentinel = NullSentinelMPC
	if got := n.String(); got != "#" {
		t.Errorf("String() = %q, want %q", got, "#")
	}
}

func TestNewFlags(t *testing.T) {
	f, err := NewFlags("110000000000")
	if err != nil {
		t.Fatal(err)
	}
	if !f.IsDiscovery() {
		t.Error("IsDiscovery() = false, want true")
	}
	if !f.IsSecret() {
		t.Error("IsSecret() = false, want true")
	}

	for _, bad := range []string{"", "1100", "1100000000001", "10000000000x"} {
		_, err := NewFlags(bad)
		if err == nil {
			t.Errorf("NewFlags(%q): expected error", bad)
			continue
		}
		var ferr *FieldError
		if !errors.As(err, &ferr) {
			t.Errorf("NewFlags(%q): expected *FieldError, got %T", bad, err)
		}
	}
}
