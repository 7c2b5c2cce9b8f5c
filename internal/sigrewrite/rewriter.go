// Package sigrewrite rewrites a type reference (typeRef, methodContext)
// -> typeRef, dispatching on the TypeRef variant so every reference
// ends up pointing at a cloned or externally-imported definition
// instead of the source module. Rewriting is purely structural — every
// returned node is fresh, no source-side node is mutated.
package sigrewrite

import (
	"fmt"
	"strings"

	"github.com/cilgraft/cilgraft/internal/cilmeta"
	"github.com/cilgraft/cilgraft/internal/errs"
)

// TypeCloner is the callback back into the Type Cloner for the
// "definition" and resolved-"plain reference" dispatch rows.
// internal/cloner.Cloner implements this; accepting the interface
// here (instead of importing internal/cloner directly) avoids a package
// cycle, since the Type Cloner itself calls through a Rewriter to rewrite
// base types, interfaces and constraints.
type TypeCloner interface {
	CloneType(t *cilmeta.TypeDef) (*cilmeta.TypeDef, error)
}

// ExternalResolver classifies a plain reference as external or mergeable
// and, for mergeable references, resolves the owning module. Implemented
// by internal/resolve.Classifier.
type ExternalResolver interface {
	IsExternal(ref cilmeta.TypeRef, owningAssemblyFullName string) bool
	ResolveModule(ref cilmeta.TypeRef, owningAssemblyFullName string) (*cilmeta.Module, bool)
}

// ExternalImporter is the metadata library's "import external reference"
// primitive (internal/pe.Importer restricted to the type side).
type ExternalImporter interface {
	ImportType(ref *cilmeta.Reference, target *cilmeta.Module) cilmeta.TypeRef
}

// Context carries the cloned owners a rewrite needs to resolve
// generic-parameter references by index: the cloned declaring type (for
// type-owned parameters) and, inside a method body or method-owned
// generic parameter list, the cloned method shell.
type Context struct {
	Type   *cilmeta.TypeDef
	Method *cilmeta.MethodDef
}

// Rewriter is the Signature Rewriter.
type Rewriter struct {
	Cloner     TypeCloner
	Classifier ExternalResolver
	Importer   ExternalImporter
	Target     *cilmeta.Module
}

// New builds a Rewriter.
func New(cloner TypeCloner, classifier ExternalResolver, importer ExternalImporter, target *cilmeta.Module) *Rewriter {
	return &Rewriter{Cloner: cloner, Classifier: classifier, Importer: importer, Target: target}
}

// Rewrite dispatches on ref's concrete variant and returns a fresh
// reference pointing into the target module.
func (r *Rewriter) Rewrite(ref cilmeta.TypeRef, ctx *Context) (cilmeta.TypeRef, error) {
	switch t := ref.(type) {
	case *cilmeta.Definition:
		cloned, err := r.Cloner.CloneType(t.Type)
		if err != nil {
			return nil, err
		}
		return &cilmeta.Definition{Type: cloned}, nil

	case *cilmeta.GenericParam:
		return r.rewriteGenericParam(t, ctx)

	case *cilmeta.GenericInstance:
		element, err := r.Rewrite(t.Element, ctx)
		if err != nil {
			return nil, err
		}
		args := make([]cilmeta.TypeRef, len(t.Arguments))
		for i, a := range t.Arguments {
			rewritten, err := r.Rewrite(a, ctx)
			if err != nil {
				return nil, err
			}
			args[i] = rewritten
		}
		return &cilmeta.GenericInstance{Element: element, Arguments: args}, nil

	case *cilmeta.ByRef:
		inner, err := r.Rewrite(t.Inner, ctx)
		if err != nil {
			return nil, err
		}
		return &cilmeta.ByRef{Inner: inner}, nil

	case *cilmeta.ArrayRef:
		inner, err := r.Rewrite(t.Inner, ctx)
		if err != nil {
			return nil, err
		}
		return &cilmeta.ArrayRef{Inner: inner, Rank: t.Rank}, nil

	case *cilmeta.RequiredModifier:
		// Each side is rewritten independently, so a modifier that
		// resolves external (Open Question #3 in DESIGN.md) is imported
		// via rewriteReference while Inner keeps rewriting normally.
		modifier, err := r.Rewrite(t.Modifier, ctx)
		if err != nil {
			return nil, err
		}
		inner, err := r.Rewrite(t.Inner, ctx)
		if err != nil {
			return nil, err
		}
		return &cilmeta.RequiredModifier{Modifier: modifier, Inner: inner}, nil

	case *cilmeta.Pointer:
		inner, err := r.Rewrite(t.Inner, ctx)
		if err != nil {
			return nil, err
		}
		return &cilmeta.Pointer{Inner: inner}, nil

	case *cilmeta.Reference:
		return r.rewriteReference(t)

	default:
		return nil, fmt.Errorf("sigrewrite: unhandled TypeRef variant %T", ref)
	}
}

func (r *Rewriter) rewriteGenericParam(p *cilmeta.GenericParam, ctx *Context) (cilmeta.TypeRef, error) {
	if p.Owner == cilmeta.OwnerMethod {
		if ctx == nil || ctx.Method == nil {
			return nil, errs.MissingContext(p.Index)
		}
		if p.Index < 0 || p.Index >= len(ctx.Method.GenericParams) {
			return nil, fmt.Errorf("sigrewrite: method generic parameter index %d out of range", p.Index)
		}
		return &cilmeta.GenericParam{Owner: cilmeta.OwnerMethod, Index: p.Index, Name: ctx.Method.GenericParams[p.Index].Name}, nil
	}
	if ctx == nil || ctx.Type == nil {
		return nil, fmt.Errorf("sigrewrite: type-owned generic parameter %d has no type context", p.Index)
	}
	if p.Index < 0 || p.Index >= len(ctx.Type.GenericParams) {
		return nil, fmt.Errorf("sigrewrite: type generic parameter index %d out of range", p.Index)
	}
	return &cilmeta.GenericParam{Owner: cilmeta.OwnerType, Index: p.Index, Name: ctx.Type.GenericParams[p.Index].Name}, nil
}

func (r *Rewriter) rewriteReference(ref *cilmeta.Reference) (cilmeta.TypeRef, error) {
	if r.Classifier.IsExternal(ref, ref.AssemblyFullName) {
		return r.Importer.ImportType(ref, r.Target), nil
	}
	mod, ok := r.Classifier.ResolveModule(ref, ref.AssemblyFullName)
	if !ok {
		return nil, errs.UnresolvableReference(ref.FullName())
	}
	def := findTypeDefinition(mod, ref.Namespace, ref.Name)
	if def == nil {
		return nil, errs.UnresolvableReference(ref.FullName())
	}
	cloned, err := r.Cloner.CloneType(def)
	if err != nil {
		return nil, err
	}
	return &cilmeta.Definition{Type: cloned}, nil
}

// findTypeDefinition locates a (possibly nested) type definition within a
// module by namespace and name. Nested types are addressed the same way
// cilmeta.TypeDef.FullName renders them: "Outer/Inner".
func findTypeDefinition(mod *cilmeta.Module, namespace, name string) *cilmeta.TypeDef {
	segments := strings.Split(name, "/")
	for _, top := range mod.Types {
		if top.Namespace != namespace || top.Name != segments[0] {
			continue
		}
		current := top
		for _, seg := range segments[1:] {
			next := findNested(current, seg)
			if next == nil {
				return nil
			}
			current = next
		}
		return current
	}
	return nil
}

func findNested(t *cilmeta.TypeDef, name string) *cilmeta.TypeDef {
	for _, n := range t.NestedTypes {
		if n.Name == name {
			return n
		}
	}
	return nil
}
