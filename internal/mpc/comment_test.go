package mpc

import (
	"strings"
	"testing"
)

const ossosFixedComment = "O 1631355p21 O13AE2O     Z  1632.20 1102.70 0.21 3 ----- ---- % Apcor failure."

func TestParseCommentFixedOSSOS(t *testing.T) {
	c := ParseComment(ossosFixedComment)
	if c == nil {
		t.Fatal("expected comment, got nil")
	}
	if c.Version != VersionOSSOS {
		t.Fatalf("Version = %q, want %q", c.Version, VersionOSSOS)
	}
	if c.Frame != "1631355p21" {
		t.Errorf("Frame = %q, want %q", c.Frame, "1631355p21")
	}
	if c.SourceName != "O13AE2O" {
		t.Errorf("SourceName = %q, want %q", c.SourceName, "O13AE2O")
	}
	if c.X == nil || *c.X != 1632.20 {
		t.Errorf("X = %v, want 1632.20", c.X)
	}
	if c.Y == nil || *c.Y != 1102.70 {
		t.Errorf("Y = %v, want 1102.70", c.Y)
	}
	if c.PlateUncertainty != 0.21 {
		t.Errorf("PlateUncertainty = %v, want 0.21", c.PlateUncertainty)
	}
	if c.AstrometricLevel != 3 {
		t.Errorf("AstrometricLevel = %v, want 3", c.AstrometricLevel)
	}
	if c.Mag != nil {
		t.Errorf("Mag = %v, want nil", *c.Mag)
	}
	if c.PhotometryNote != "Z" {
		t.Errorf("PhotometryNote = %q, want %q", c.PhotometryNote, "Z")
	}
	if c.Comment != "Apcor failure." {
		t.Errorf("Comment = %q, want %q", c.Comment, "Apcor failure.")
	}
}

func TestCommentFixedRoundTrip(t *testing.T) {
	c := ParseComment(ossosFixedComment)
	if c == nil {
		t.Fatal("expected comment, got nil")
	}
	if got := c.String(); got != ossosFixedComment {
		t.Errorf("String() = %q, want %q", got, ossosFixedComment)
	}
}

func TestParseCommentSplitOSSOS(t *testing.T) {
	c := ParseComment("O 1645236p28 O13AE3O YH 123.45 678.90 20.50 0.15 0.20 4 % hand measured")
	if c == nil {
		t.Fatal("expected comment, got nil")
	}
	if c.Version != VersionOSSOS {
		t.Fatalf("Version = %q, want %q", c.Version, VersionOSSOS)
	}
	if c.Mag == nil || *c.Mag != 20.50 {
		t.Errorf("Mag = %v, want 20.50", c.Mag)
	}
	if c.MagUncertainty == nil || *c.MagUncertainty != 0.15 {
		t.Errorf("MagUncertainty = %v, want 0.15", c.MagUncertainty)
	}
	if c.PhotometryNote != "Y" {
		t.Errorf("PhotometryNote = %q, want %q", c.PhotometryNote, "Y")
	}
	if c.MPCNote != "H" {
		t.Errorf("MPCNote = %q, want %q", c.MPCNote, "H")
	}
	if c.PlateUncertainty != 0.20 {
		t.Errorf("PlateUncertainty = %v, want 0.20", c.PlateUncertainty)
	}
	if c.AstrometricLevel != 4 {
		t.Errorf("AstrometricLevel = %v, want 4", c.AstrometricLevel)
	}
	if c.Comment != "hand measured" {
		t.Errorf("Comment = %q, want %q", c.Comment, "hand measured")
	}
}

func TestParseCommentCFEPS(t *testing.T) {
	c := ParseComment("L 1234567p measured inside confirm @ 123.4 567.8")
	if c == nil {
		t.Fatal("expected comment, got nil")
	}
	if c.Version != VersionCFEPS {
		t.Fatalf("Version = %q, want %q", c.Version, VersionCFEPS)
	}
	if c.Frame != "1234567p" {
		t.Errorf("Frame = %q, want %q", c.Frame, "1234567p")
	}
	if c.X == nil || *c.X != 123.4 {
		t.Errorf("X = %v, want 123.4", c.X)
	}
	if c.Y == nil || *c.Y != 567.8 {
		t.Errorf("Y = %v, want 567.8", c.Y)
	}
	// The frame pads to ten columns, so two pad spaces precede the
	// separator before the free text.
	want := "L 1234567p   measured inside confirm @ 123.4 567.8"
	if got := c.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseCommentTNOdb(t *testing.T) {
	line := "20130805_568_1 20130805 1000000000" + strings.Repeat(" ", 22) + ossosFixedComment
	c := ParseComment(line)
	if c == nil {
		t.Fatal("expected comment, got nil")
	}
	if !c.IsTNOdb() {
		t.Fatal("IsTNOdb() = false, want true")
	}
	if c.Index != "20130805_568_1" {
		t.Errorf("Index = %q, want %q", c.Index, "20130805_568_1")
	}
	if c.Date != "20130805" {
		t.Errorf("Date = %q, want %q", c.Date, "20130805")
	}
	if c.Flags != "1000000000" {
		t.Errorf("Flags = %q, want %q", c.Flags, "1000000000")
	}
	// The embedded survey comment keeps its own version.
	if c.Version != VersionOSSOS {
		t.Errorf("Version = %q, want %q", c.Version, VersionOSSOS)
	}
	if c.Frame != "1631355p21" {
		t.Errorf("Frame = %q, want %q", c.Frame, "1631355p21")
	}
	if got := c.TNOdbString(); got != line {
		t.Errorf("TNOdbString() = %q, want %q", got, line)
	}
}

func TestParseCommentTNOdbOpaque(t *testing.T) {
	line := "20130805_568_1 20130805 0000000000" + strings.Repeat(" ", 22) + "three observations"
	c := ParseComment(line)
	if c == nil {
		t.Fatal("expected comment, got nil")
	}
	if c.Version != VersionTNOdb {
		t.Fatalf("Version = %q, want %q", c.Version, VersionTNOdb)
	}
	if c.Comment != "three observations" {
		t.Errorf("Comment = %q, want %q", c.Comment, "three observations")
	}
	if got := c.String(); got != "three observations" {
		t.Errorf("String() = %q, want %q", got, "three observations")
	}
}

func TestParseCommentTNOdbBadFlags(t *testing.T) {
	// A non-binary flag field disqualifies the database-internal
	// decode even when the index column matches.
	line := "20130805_568_1 20130805 10x0000000" + strings.Repeat(" ", 22) + "three observations"
	c := ParseComment(line)
	if c == nil {
		t.Fatal("expected comment, got nil")
	}
	if c.IsTNOdb() {
		t.Errorf("IsTNOdb() = true for flag field %q, want false", "10x0000000")
	}
}

func TestParseCommentUnversioned(t *testing.T) {
	// Some export paths dropped the leading version token.
	c := ParseComment("1631355p21 O13AE2O YH 1632.20 1102.70 0.21 3")
	if c == nil {
		t.Fatal("expected comment, got nil")
	}
	if c.Version != VersionOSSOS {
		t.Fatalf("Version = %q, want %q", c.Version, VersionOSSOS)
	}
	if c.Frame != "1631355p21" {
		t.Errorf("Frame = %q, want %q", c.Frame, "1631355p21")
	}
	if c.PlateUncertainty != 0.21 {
		t.Errorf("PlateUncertainty = %v, want 0.21", c.PlateUncertainty)
	}
	if c.AstrometricLevel != 3 {
		t.Errorf("AstrometricLevel = %v, want 3", c.AstrometricLevel)
	}
}

func TestParseCommentRaw(t *testing.T) {
	c := ParseComment("hand adjusted")
	if c == nil {
		t.Fatal("expected comment, got nil")
	}
	if c.Version != VersionRaw {
		t.Fatalf("Version = %q, want %q", c.Version, VersionRaw)
	}
	if got := c.String(); got != "hand adjusted" {
		t.Errorf("String() = %q, want %q", got, "hand adjusted")
	}
}

func TestParseCommentEmpty(t *testing.T) {
	if c := ParseComment(""); c != nil {
		t.Errorf("ParseComment(\"\") = %+v, want nil", c)
	}
	if c := ParseComment("#"); c != nil {
		t.Errorf("ParseComment(\"#\") = %+v, want nil", c)
	}
}

func TestParseCommentDeterministic(t *testing.T) {
	line := "20130805_568_1 20130805 1000000000" + strings.Repeat(" ", 22) + ossosFixedComment
	first := ParseComment(line)
	for i := 0; i < 5; i++ {
		c := ParseComment(line)
		if c.Version != first.Version || c.Index != first.Index {
			t.Fatalf("parse %d differed: %+v vs %+v", i, c, first)
		}
	}
}

func TestCommentSetMagOutOfRange(t *testing.T) {
	c := newOSSOSComment(VersionOSSOS, "frame", "name", " ", " ")
	v := 35.0
	c.SetMag(&v)
	if c.Mag != nil {
		t.Errorf("Mag = %v, want nil", *c.Mag)
	}
	if c.PhotometryNote != "Z" {
		t.Errorf("PhotometryNote = %q, want %q", c.PhotometryNote, "Z")
	}
}

func TestCommentMagUncertaintyLacking(t *testing.T) {
	c := newOSSOSComment(VersionOSSOS, "frame", "name", " ", " ")
	c.setMagToken("20.5")
	if c.PhotometryNote != "Y" {
		t.Fatalf("PhotometryNote = %q, want %q", c.PhotometryNote, "Y")
	}
	if err := c.setMagErrToken("----"); err != nil {
		t.Fatal(err)
	}
	if c.PhotometryNote != "L" {
		t.Errorf("PhotometryNote = %q, want %q", c.PhotometryNote, "L")
	}
	if c.MagUncertainty != nil {
		t.Errorf("MagUncertainty = %v, want nil", *c.MagUncertainty)
	}
}

func TestCommentMagUncertaintyOutOfRange(t *testing.T) {
	c := newOSSOSComment(VersionOSSOS, "frame", "name", " ", " ")
	if err := c.SetMagUncertainty(1.5); err == nil {
		t.Error("SetMagUncertainty(1.5): expected error")
	}
	if err := c.SetPlateUncertainty(200); err == nil {
		t.Error("SetPlateUncertainty(200): expected error")
	}
	if err := c.SetAstrometricLevel(12); err == nil {
		t.Error("SetAstrometricLevel(12): expected error")
	}
}
