package pe

import (
	"fmt"

	"github.com/cilgraft/cilgraft/internal/cilmeta"
)

// InMemoryAssemblies is a test double for AssemblyOpener/SymbolReader/
// Importer: a fixed set of in-memory modules with no disk I/O at all. It
// lets the cloner/resolver/registry test suites exercise "open a source
// module", "read symbols" and "import an external reference" without a
// real metadata library.
type InMemoryAssemblies struct {
	byFullName map[string]*cilmeta.Module
	// SymbolsFor, when set, marks which assemblies "have symbols"; reading
	// symbols for any other assembly fails (exercising the best-effort
	// swallow-and-continue path).
	SymbolsFor map[string]bool
}

// NewInMemoryAssemblies builds a fake populated with the given modules,
// keyed by their owning assembly's full name.
func NewInMemoryAssemblies(modules ...*cilmeta.Module) *InMemoryAssemblies {
	f := &InMemoryAssemblies{byFullName: make(map[string]*cilmeta.Module), SymbolsFor: make(map[string]bool)}
	for _, m := range modules {
		f.byFullName[m.FullName()] = m
	}
	return f
}

// OpenByFullName implements AssemblyOpener.
func (f *InMemoryAssemblies) OpenByFullName(fullName string) (*cilmeta.Module, error) {
	mod, ok := f.byFullName[fullName]
	if !ok {
		return nil, fmt.Errorf("no such in-memory assembly: %s", fullName)
	}
	return mod, nil
}

// ReadSymbols implements SymbolReader. It succeeds only for assemblies
// listed in SymbolsFor; every other module reports an error, which
// callers (internal/registry) are required to swallow.
func (f *InMemoryAssemblies) ReadSymbols(mod *cilmeta.Module) error {
	if f.SymbolsFor[mod.FullName()] {
		return nil
	}
	return fmt.Errorf("no symbols available for %s", mod.FullName())
}

// ImportType implements Importer with a trivial pass-through: an imported
// reference is just the Reference itself, since in-memory fixtures never
// need a richer import-table row.
func (f *InMemoryAssemblies) ImportType(ref *cilmeta.Reference, target *cilmeta.Module) cilmeta.TypeRef {
	imported := *ref
	return &imported
}

// ImportMethod implements Importer with a pass-through copy.
func (f *InMemoryAssemblies) ImportMethod(ref *cilmeta.MethodRef, target *cilmeta.Module) *cilmeta.MethodRef {
	imported := *ref
	return &imported
}

// ImportField implements Importer with a pass-through copy.
func (f *InMemoryAssemblies) ImportField(ref *cilmeta.FieldRef, target *cilmeta.Module) *cilmeta.FieldRef {
	imported := *ref
	return &imported
}
