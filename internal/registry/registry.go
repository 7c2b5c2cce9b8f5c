// Package registry owns the set of opened source modules for one import
// session, keyed by assembly full name: idempotent cache-by-identity,
// best-effort symbol reading that swallows its own errors, lazy open on
// first reference.
package registry

import (
	"github.com/cilgraft/cilgraft/internal/cilmeta"
	"github.com/cilgraft/cilgraft/internal/errs"
	"github.com/cilgraft/cilgraft/internal/pe"
)

// Registry tracks every source module opened during an import session.
// It lives as long as that session and carries no lock: concurrent use
// is not a supported mode.
type Registry struct {
	modules map[string]*cilmeta.Module
	order   []string // registration order, for List()
	opener  pe.AssemblyOpener
	symbols pe.SymbolReader
}

// New builds an empty registry. opener resolves an assembly full name to
// its on-disk module; symbols is best-effort and may be nil.
func New(opener pe.AssemblyOpener, symbols pe.SymbolReader) *Registry {
	return &Registry{
		modules: make(map[string]*cilmeta.Module),
		opener:  opener,
		symbols: symbols,
	}
}

// Register is idempotent on assembly full name: registering the same
// module twice leaves the registry unchanged from the first call's
// result, and returns that first result. Attempts a best-effort symbol
// read and continues on failure.
func (r *Registry) Register(mod *cilmeta.Module) *cilmeta.Module {
	full := mod.FullName()
	if existing, ok := r.modules[full]; ok {
		return existing
	}
	r.modules[full] = mod
	r.order = append(r.order, full)
	if r.symbols != nil {
		_ = r.symbols.ReadSymbols(mod) // best-effort; error intentionally discarded
	}
	return mod
}

// RegisterByAssembly opens the module from the assembly's on-disk
// location (via the configured AssemblyOpener) and registers it. Fails
// with RES001 if the opener cannot locate or read the assembly.
func (r *Registry) RegisterByAssembly(assemblyFullName string) (*cilmeta.Module, error) {
	if existing, ok := r.modules[assemblyFullName]; ok {
		return existing, nil
	}
	if r.opener == nil {
		return nil, errs.ResolutionFailed(assemblyFullName, "no assembly opener configured")
	}
	mod, err := r.opener.OpenByFullName(assemblyFullName)
	if err != nil {
		return nil, errs.ResolutionFailed(assemblyFullName, err.Error())
	}
	return r.Register(mod), nil
}

// Locate implements resolve.ModuleLocator: look up an already-registered
// module, or open it lazily on first reference.
func (r *Registry) Locate(assemblyFullName string) (*cilmeta.Module, error) {
	return r.RegisterByAssembly(assemblyFullName)
}

// Lookup returns an already-registered module without attempting to open
// one, for callers (e.g. resolve.Classifier) that must distinguish "not yet
// registered" from "registered".
func (r *Registry) Lookup(assemblyFullName string) (*cilmeta.Module, bool) {
	mod, ok := r.modules[assemblyFullName]
	return mod, ok
}

// List returns every registered source module, in registration order.
func (r *Registry) List() []*cilmeta.Module {
	out := make([]*cilmeta.Module, 0, len(r.order))
	for _, full := range r.order {
		out = append(out, r.modules[full])
	}
	return out
}

// IsRegistered reports whether an assembly full name has already been
// registered, one leg of the classifier's external/mergeable test (an
// entity is external iff the resolver returns none, the assembly is
// not already registered, and it is not the target itself).
func (r *Registry) IsRegistered(assemblyFullName string) bool {
	_, ok := r.modules[assemblyFullName]
	return ok
}
