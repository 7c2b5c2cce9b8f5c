package resolve

import "github.com/cilgraft/cilgraft/internal/cilmeta"

// RegistryView is the subset of internal/registry.Registry the Classifier
// needs: whether an assembly is already registered, and (if so) its
// module.
type RegistryView interface {
	IsRegistered(assemblyFullName string) bool
	Lookup(assemblyFullName string) (*cilmeta.Module, bool)
}

// Classifier composes a Policy with a RegistryView and the target's own
// assembly full name to implement the external/mergeable test: an
// entity is external iff the resolver returns none for its owning
// assembly, the assembly is not already registered, and the assembly
// is not the target itself.
type Classifier struct {
	Policy                  Policy
	Registry                RegistryView
	TargetAssemblyFullName  string
}

// IsExternal implements the three-part AND test above.
func (c *Classifier) IsExternal(ref cilmeta.TypeRef, owningAssemblyFullName string) bool {
	if owningAssemblyFullName == c.TargetAssemblyFullName {
		return false
	}
	if _, ok := c.Policy.Resolve(ref, owningAssemblyFullName); ok {
		return false
	}
	if c.Registry.IsRegistered(owningAssemblyFullName) {
		return false
	}
	return true
}

// ResolveModule returns the module an internal (non-external) reference's
// owning assembly resolves to — from the policy if it has an opinion,
// falling back to an already-registered module (e.g. the assembly was
// registered directly via Registry.Register rather than discovered
// through the policy).
func (c *Classifier) ResolveModule(ref cilmeta.TypeRef, owningAssemblyFullName string) (*cilmeta.Module, bool) {
	if mod, ok := c.Policy.Resolve(ref, owningAssemblyFullName); ok {
		return mod, true
	}
	return c.Registry.Lookup(owningAssemblyFullName)
}
