// Package cilmeta is the abstract schema of assemblies, modules, types,
// members, signatures, instructions and debug info that the rest of
// cilgraft is written against. It has no behavior of its own: reading and
// writing real PE bytes is the job of a metadata I/O library, represented
// here only by the internal/pe façade.
package cilmeta

import "fmt"

// AssemblyName identifies an assembly the way a CLR binder does: by name,
// version and public key token.
type AssemblyName struct {
	Name           string
	Version        string
	PublicKeyToken string
}

// FullName renders the assembly name the way it appears in a reference
// scope row, e.g. "Acme.Core, Version=1.0.0.0, PublicKeyToken=null".
func (a AssemblyName) FullName() string {
	token := a.PublicKeyToken
	if token == "" {
		token = "null"
	}
	return fmt.Sprintf("%s, Version=%s, PublicKeyToken=%s", a.Name, a.Version, token)
}

// Assembly owns one or more modules and the manifest metadata identifying
// them as a unit.
type Assembly struct {
	Name    AssemblyName
	Modules []*Module
}

// Module is a container within an assembly holding types, instructions and
// references to other assemblies/modules.
type Module struct {
	Assembly     *Assembly
	Name         string
	Types        []*TypeDef     // top-level types only
	AssemblyRefs []AssemblyName // assemblies referenced by this module
	ModuleRefs   []string       // unmanaged module names (P/Invoke targets)
}

// FullName is the owning assembly's full name, or "" for a module with no
// assembly (should not occur outside of malformed fixtures).
func (m *Module) FullName() string {
	if m == nil || m.Assembly == nil {
		return ""
	}
	return m.Assembly.Name.FullName()
}

// AddType appends a top-level type, enforcing the module-containment
// invariant that a type is listed exactly once.
func (m *Module) AddType(t *TypeDef) {
	for _, existing := range m.Types {
		if existing == t {
			return
		}
	}
	m.Types = append(m.Types, t)
	t.Module = m
	t.DeclaringType = nil
}

// RemoveAssemblyRef drops an assembly reference by full name; used by the
// merge driver once an assembly has been fully absorbed.
func (m *Module) RemoveAssemblyRef(fullName string) {
	kept := m.AssemblyRefs[:0]
	for _, ref := range m.AssemblyRefs {
		if ref.FullName() != fullName {
			kept = append(kept, ref)
		}
	}
	m.AssemblyRefs = kept
}

// FindOrAddModuleRef returns the existing unmanaged module reference with
// the given name, or appends and returns a new one. Used when cloning
// P/Invoke info.
func (m *Module) FindOrAddModuleRef(name string) string {
	for _, ref := range m.ModuleRefs {
		if ref == name {
			return ref
		}
	}
	m.ModuleRefs = append(m.ModuleRefs, name)
	return name
}
