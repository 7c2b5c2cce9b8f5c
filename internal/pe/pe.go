// Package pe is the façade the core is implemented against for
// reading/writing PE files with optional debug symbols, and the
// "import external reference" primitive. Nothing in cilgraft parses
// real PE bytes — that is a metadata I/O library's job. This package
// only describes the contract and, for tests, a tiny in-memory fake.
package pe

import "github.com/cilgraft/cilgraft/internal/cilmeta"

// AssemblyOpener locates and reads an on-disk assembly by its full name,
// producing the in-memory cilmeta.Module the rest of the core operates on.
// Implemented by a real metadata library in production, and by
// InMemoryAssemblies in tests.
type AssemblyOpener interface {
	OpenByFullName(fullName string) (*cilmeta.Module, error)
}

// SymbolReader attempts to attach debug symbols (sequence points, local
// variable names) to an already-opened module. Best-effort: callers must
// swallow its errors and proceed without symbols.
type SymbolReader interface {
	ReadSymbols(mod *cilmeta.Module) error
}

// Importer is the metadata library's standard "import external reference"
// primitive: given a type/method/field reference whose definition lives
// in another assembly, produce a reference valid within target without
// cloning anything.
type Importer interface {
	ImportType(ref *cilmeta.Reference, target *cilmeta.Module) cilmeta.TypeRef
	ImportMethod(ref *cilmeta.MethodRef, target *cilmeta.Module) *cilmeta.MethodRef
	ImportField(ref *cilmeta.FieldRef, target *cilmeta.Module) *cilmeta.FieldRef
}

// Writer writes a completed target module back to disk, with optional
// debug symbols. Its binary layout is defined entirely by the metadata
// library, not by cilgraft.
type Writer interface {
	Write(mod *cilmeta.Module, path string, withSymbols bool) error
}
