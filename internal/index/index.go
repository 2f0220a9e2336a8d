// Package index maps every known alternate designation of a moving
// object to its canonical master name. The side table is plain text:
// fixed-width columns of ten characters, the first holding the master
// name and the rest its aliases.
package index

import (
	"fmt"
	"os"
	"strings"
)

// MaxNameLength is the fixed column width of the alias table.
const MaxNameLength = 10

// Index holds the bidirectional name mapping built from an alias table.
type Index struct {
	// names maps every known name (master or alias) to its master name.
	names map[string]string
	// groups maps a master name to its full alias group, master first.
	groups map[string][]string
	// order preserves the master names in file order for String.
	order []string
}

// Load reads an alias table from path. A missing or empty table is an
// error: no partial index is usable.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias table: %w", err)
	}
	ix, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("alias table %s: %w", path, err)
	}
	return ix, nil
}

// Parse builds an Index from the raw contents of an alias table.
func Parse(table string) (*Index, error) {
	ix := &Index{
		names:  make(map[string]string),
		groups: make(map[string][]string),
	}

	for _, line := range strings.Split(table, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		end := MaxNameLength
		if end > len(line) {
			end = len(line)
		}
		master := strings.TrimSpace(line[:end])
		if master == "" {
			continue
		}
		ix.names[master] = master
		ix.groups[master] = []string{master}
		ix.order = append(ix.order, master)

		for i := MaxNameLength; i < len(line); i += MaxNameLength {
			end := i + MaxNameLength
			if end > len(line) {
				end = len(line)
			}
			alias := strings.TrimSpace(line[i:end])
			if alias == "" {
				continue
			}
			ix.groups[master] = append(ix.groups[master], alias)
			ix.names[alias] = master
		}
	}

	if len(ix.groups) == 0 {
		return nil, fmt.Errorf("no alias entries found")
	}
	return ix, nil
}

// Canonical returns the master name for name, or name itself when the
// index does not know it.
func (ix *Index) Canonical(name string) string {
	if master, ok := ix.names[name]; ok {
		return master
	}
	return name
}

// Aliases returns the full alias group for name with the canonical name
// first. An unknown name is its own single-member group.
func (ix *Index) Aliases(name string) []string {
	master, ok := ix.names[name]
	if !ok {
		return []string{name}
	}
	return ix.groups[master]
}

// IsSame reports whether a and b designate the same object. Membership
// is symmetric: every name in a group maps to the same group.
func (ix *Index) IsSame(a, b string) bool {
	for _, alias := range ix.Aliases(a) {
		if alias == b {
			return true
		}
	}
	return false
}

// Groups returns every alias group keyed by master name. The returned
// map shares the index's backing slices and must not be mutated.
func (ix *Index) Groups() map[string][]string {
	return ix.groups
}

// String re-renders the index in the fixed-width table format.
func (ix *Index) String() string {
	var sb strings.Builder
	for _, master := range ix.order {
		for _, name := range ix.groups[master] {
			fmt.Fprintf(&sb, "%-*s", MaxNameLength, name)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
