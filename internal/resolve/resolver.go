// Package resolve implements the resolver policy object: given a type
// reference and the full name of the assembly that owns it, decide
// whether that assembly is mergeable (its body will be cloned) or
// external (left as an import).
package resolve

import (
	"path/filepath"
	"strings"

	"github.com/cilgraft/cilgraft/internal/cilmeta"
)

// ModuleLocator opens or looks up the module owned by an assembly full
// name. internal/registry.Registry implements this so a Policy can ask
// for a module without importing the registry package directly.
type ModuleLocator interface {
	Locate(assemblyFullName string) (*cilmeta.Module, error)
}

// Policy is the resolver contract:
// resolve(typeReference, owningAssemblyFullName) -> Option<SourceModule>.
type Policy interface {
	Resolve(ref cilmeta.TypeRef, owningAssemblyFullName string) (*cilmeta.Module, bool)
}

// AssemblyListPolicy is constructed with a fixed set of assembly full
// names considered mergeable. Any other assembly is external.
type AssemblyListPolicy struct {
	allow   map[string]struct{}
	locator ModuleLocator
}

// NewAssemblyListPolicy builds a policy that treats exactly the named
// assemblies as mergeable.
func NewAssemblyListPolicy(assemblyFullNames []string, locator ModuleLocator) *AssemblyListPolicy {
	allow := make(map[string]struct{}, len(assemblyFullNames))
	for _, name := range assemblyFullNames {
		allow[name] = struct{}{}
	}
	return &AssemblyListPolicy{allow: allow, locator: locator}
}

// Resolve implements Policy.
func (p *AssemblyListPolicy) Resolve(_ cilmeta.TypeRef, owningAssemblyFullName string) (*cilmeta.Module, bool) {
	if _, ok := p.allow[owningAssemblyFullName]; !ok {
		return nil, false
	}
	mod, err := p.locator.Locate(owningAssemblyFullName)
	if err != nil {
		return nil, false
	}
	return mod, true
}

// LocalReferencePolicy returns the module of the resolved type iff its
// file lives in the target's own directory (a copy-local reference). It
// caches negative decisions per assembly the way internal/module.Loader
// caches a failed stdlib-path probe, so a framework assembly referenced
// by a thousand instructions is rejected by this policy exactly once.
type LocalReferencePolicy struct {
	targetDir     string
	locator       ModuleLocator
	pathOf        func(assemblyFullName string) (string, bool) // on-disk path of the referenced assembly, if known
	negativeCache map[string]bool
}

// NewLocalReferencePolicy builds a policy that accepts only assemblies
// whose on-disk path (as reported by pathOf) sits under targetDir.
func NewLocalReferencePolicy(targetDir string, locator ModuleLocator, pathOf func(string) (string, bool)) *LocalReferencePolicy {
	return &LocalReferencePolicy{
		targetDir:     targetDir,
		locator:       locator,
		pathOf:        pathOf,
		negativeCache: make(map[string]bool),
	}
}

// Resolve implements Policy.
func (p *LocalReferencePolicy) Resolve(_ cilmeta.TypeRef, owningAssemblyFullName string) (*cilmeta.Module, bool) {
	if p.negativeCache[owningAssemblyFullName] {
		return nil, false
	}
	path, known := p.pathOf(owningAssemblyFullName)
	if !known || !isUnder(p.targetDir, path) {
		p.negativeCache[owningAssemblyFullName] = true
		return nil, false
	}
	mod, err := p.locator.Locate(owningAssemblyFullName)
	if err != nil {
		p.negativeCache[owningAssemblyFullName] = true
		return nil, false
	}
	return mod, true
}

func isUnder(dir, path string) bool {
	if dir == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}
