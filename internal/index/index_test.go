package index

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleTable = "O13AE2O   K13T01    2013 TA1  \n" +
	"O13BL3Q   K13U77    \n"

func mustParse(t *testing.T) *Index {
	t.Helper()
	ix, err := Parse(sampleTable)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return ix
}

func TestAliases(t *testing.T) {
	ix := mustParse(t)

	got := ix.Aliases("K13T01")
	want := []string{"O13AE2O", "K13T01", "2013 TA1"}
	if len(got) != len(want) {
		t.Fatalf("Aliases = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Aliases[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Unknown names are their own group.
	got = ix.Aliases("K99X99")
	if len(got) != 1 || got[0] != "K99X99" {
		t.Errorf("Aliases(unknown) = %v, want [K99X99]", got)
	}
}

func TestCanonical(t *testing.T) {
	ix := mustParse(t)
	if got := ix.Canonical("2013 TA1"); got != "O13AE2O" {
		t.Errorf("Canonical = %q, want %q", got, "O13AE2O")
	}
	if got := ix.Canonical("K99X99"); got != "K99X99" {
		t.Errorf("Canonical(unknown) = %q, want itself", got)
	}
}

func TestIsSameSymmetry(t *testing.T) {
	ix := mustParse(t)
	group := []string{"O13AE2O", "K13T01", "2013 TA1"}
	for _, a := range group {
		for _, b := range group {
			if !ix.IsSame(a, b) {
				t.Errorf("IsSame(%q, %q) = false, want true", a, b)
			}
			if ix.IsSame(a, b) != ix.IsSame(b, a) {
				t.Errorf("IsSame(%q, %q) not symmetric", a, b)
			}
		}
	}
	if ix.IsSame("K13T01", "K13U77") {
		t.Error("IsSame across groups = true, want false")
	}
	if !ix.IsSame("K99X99", "K99X99") {
		t.Error("IsSame(unknown, itself) = false, want true")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.idx")
	if err := os.WriteFile(path, []byte(sampleTable), 0o644); err != nil {
		t.Fatal(err)
	}
	ix, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ix.IsSame("O13BL3Q", "K13U77") {
		t.Error("loaded index missing alias group")
	}

	if _, err := Load(filepath.Join(dir, "missing.idx")); err == nil {
		t.Error("Load(missing): want error")
	}

	empty := filepath.Join(dir, "empty.idx")
	if err := os.WriteFile(empty, []byte("\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(empty); err == nil {
		t.Error("Load(empty): want error")
	}
}

func TestGroups(t *testing.T) {
	ix := mustParse(t)
	groups := ix.Groups()
	if len(groups) != 2 {
		t.Fatalf("Groups: %d groups, want 2", len(groups))
	}
	group, ok := groups["O13AE2O"]
	if !ok {
		t.Fatal("Groups missing master O13AE2O")
	}
	if len(group) != 3 || group[0] != "O13AE2O" {
		t.Errorf("Groups[O13AE2O] = %v, want master first with 3 names", group)
	}
}

func TestStringRoundTrip(t *testing.T) {
	ix := mustParse(t)
	again, err := Parse(ix.String())
	if err != nil {
		t.Fatalf("Parse(String()): %v", err)
	}
	if !again.IsSame("K13T01", "2013 TA1") {
		t.Error("round-tripped index lost alias group")
	}
}
