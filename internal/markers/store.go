// Package markers holds the read-only site catalog the map renders.
package markers

import (
	"github.com/ecomap/wastemap/pkg/core"
)

// Store returns the ordered marker collection for each category.
// A Store is immutable once built.
type Store struct {
	records map[core.Category][]core.MarkerRecord
}

// New builds a store from already-decoded records. Categories missing from
// the map get an empty collection.
func New(records map[core.Category][]core.MarkerRecord) *Store {
	s := &Store{records: make(map[core.Category][]core.MarkerRecord, len(core.Categories()))}
	for _, c := range core.Categories() {
		src := records[c]
		dst := make([]core.MarkerRecord, len(src))
		copy(dst, src)
		s.records[c] = dst
	}
	return s
}

// Markers returns the full collection for c in catalog order.
// The returned slice is a copy.
func (s *Store) Markers(c core.Category) []core.MarkerRecord {
	src := s.records[c]
	out := make([]core.MarkerRecord, len(src))
	copy(out, src)
	return out
}

// Len returns the number of records in c.
func (s *Store) Len(c core.Category) int {
	return len(s.records[c])
}
