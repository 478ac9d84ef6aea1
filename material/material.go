// Package material defines the opaque material references assigned to
// height-field cells.
//
// The height field never inspects a material's contents; materials are
// compared only by identity (interface equality), so implementations are
// expected to be shared pointers. Two materials with the same name are still
// distinct if they are distinct objects.
package material

// Material is an opaque material reference identified by pointer equality.
type Material interface {
	// MaterialName returns a human-readable name for diagnostics.
	MaterialName() string
}

// Simple is a minimal named material implementation, used by tests and
// tooling that has no richer material system of its own.
type Simple struct {
	Name string
}

// NewSimple creates a named material. Each call returns a distinct identity.
func NewSimple(name string) *Simple {
	return &Simple{Name: name}
}

// MaterialName implements Material.
func (s *Simple) MaterialName() string {
	return s.Name
}

// Default is the material reported for cells of a store that was built
// without a material list.
var Default Material = NewSimple("default")

// List is an ordered set of materials referenced by index from grid cells.
type List []Material

// IndexOf returns the slot holding m (by identity), or -1.
func (l List) IndexOf(m Material) int {
	for i, v := range l {
		if v == m {
			return i
		}
	}

	return -1
}

// Dedup returns a copy of l with duplicate identities removed, preserving
// first-occurrence order, together with a remap from old index to new index.
func (l List) Dedup() (List, []int) {
	out := make(List, 0, len(l))
	remap := make([]int, len(l))
	for i, m := range l {
		slot := out.IndexOf(m)
		if slot < 0 {
			slot = len(out)
			out = append(out, m)
		}
		remap[i] = slot
	}

	return out, remap
}
