// Package clonemap holds the three mappings that give cloned entities
// stable identity across a whole import session: source type full name
// -> cloned type, source method identity -> cloned method, and the set
// of types known to belong to the target.
package clonemap

import "github.com/cilgraft/cilgraft/internal/cilmeta"

// Maps tracks every clone made within one import session. A single Maps
// value is shared by every cloner/rewriter call of every top-level entry
// call made against that session.
type Maps struct {
	typesByFullName   map[string]*cilmeta.TypeDef
	methodsByIdentity map[string]*cilmeta.MethodDef
	targetOwned       map[*cilmeta.TypeDef]struct{}

	// importOrder lists the source full names of top-level types in
	// first-insertion order; ImportedTypes uses it to pick out the
	// top-level entries.
	importOrder []string
}

// New builds an empty set of clone maps, created once per import
// session.
func New() *Maps {
	return &Maps{
		typesByFullName:   make(map[string]*cilmeta.TypeDef),
		methodsByIdentity: make(map[string]*cilmeta.MethodDef),
		targetOwned:       make(map[*cilmeta.TypeDef]struct{}),
	}
}

// LookupType returns the clone already mapped for a source type full
// name, if any. The Type Cloner consults this before creating a shell,
// so the map from source full name to target type is a function: the
// same source type always resolves to the same clone.
func (m *Maps) LookupType(sourceFullName string) (*cilmeta.TypeDef, bool) {
	t, ok := m.typesByFullName[sourceFullName]
	return t, ok
}

// InsertType records the mapping from a source type's full name to its
// shell clone. Called immediately after shell creation so a cycle back
// to the same source type resolves to the same clone instead of
// recursing forever.
func (m *Maps) InsertType(sourceFullName string, clone *cilmeta.TypeDef) {
	if _, exists := m.typesByFullName[sourceFullName]; exists {
		return
	}
	m.typesByFullName[sourceFullName] = clone
	if !clone.IsNested() {
		m.importOrder = append(m.importOrder, sourceFullName)
	}
}

// LookupMethod returns the clone already mapped for a source method
// identity, if any.
func (m *Maps) LookupMethod(identity string) (*cilmeta.MethodDef, bool) {
	md, ok := m.methodsByIdentity[identity]
	return md, ok
}

// InsertMethod records the mapping from a source method identity to its
// shell clone, inserted before anything else is cloned about that
// method, breaking method<->type cycles.
func (m *Maps) InsertMethod(identity string, clone *cilmeta.MethodDef) {
	if _, exists := m.methodsByIdentity[identity]; exists {
		return
	}
	m.methodsByIdentity[identity] = clone
}

// MarkTargetOwned records that t belongs to the target module. The Type
// Cloner marks every type it clones; types that pre-existed the import
// are not marked, and the Merge Driver sweeps Target.Types without
// consulting this set.
func (m *Maps) MarkTargetOwned(t *cilmeta.TypeDef) {
	m.targetOwned[t] = struct{}{}
}

// IsTargetOwned reports whether t is known to belong to the target.
func (m *Maps) IsTargetOwned(t *cilmeta.TypeDef) bool {
	_, ok := m.targetOwned[t]
	return ok
}

// ImportedTypes returns the mapping from source full name to cloned
// top-level type; nested types are left out. The result is a Go map, so
// iterating it follows no particular order.
func (m *Maps) ImportedTypes() map[string]*cilmeta.TypeDef {
	out := make(map[string]*cilmeta.TypeDef, len(m.importOrder))
	for _, full := range m.importOrder {
		out[full] = m.typesByFullName[full]
	}
	return out
}
