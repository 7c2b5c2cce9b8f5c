package cloner

import (
	"fmt"

	"github.com/cilgraft/cilgraft/internal/cilmeta"
	"github.com/cilgraft/cilgraft/internal/deferq"
	"github.com/cilgraft/cilgraft/internal/sigrewrite"
)

// CloneType is the Type Cloner entry point. The ten steps below are
// numbered for reference; do not reorder them, since the fixed order is
// what makes cycle-breaking and stable identity work.
func (c *Cloner) CloneType(source *cilmeta.TypeDef) (*cilmeta.TypeDef, error) {
	// 1. External? Return unchanged.
	owningAssembly := source.OwningAssemblyFullName()
	if c.Classifier.IsExternal(&cilmeta.Definition{Type: source}, owningAssembly) {
		return source, nil
	}

	// 2. Already cloned?
	fullName := source.FullName()
	if existing, ok := c.Maps.LookupType(fullName); ok {
		return existing, nil
	}

	// 3. Create shell, insert immediately (cycle-break).
	namespace := source.Namespace
	if !source.IsNested() && c.Config.NamespaceDecorator != nil {
		namespace = c.Config.NamespaceDecorator(namespace)
	}
	shell := &cilmeta.TypeDef{
		Namespace:  namespace,
		Name:       source.Name,
		Attributes: source.Attributes,
	}
	c.Maps.InsertType(fullName, shell)

	// 4. Declaring type (nested case).
	if source.IsNested() {
		declClone, err := c.CloneType(source.DeclaringType)
		if err != nil {
			return nil, err
		}
		declClone.AddNestedType(shell)
	}

	ctx := &sigrewrite.Context{Type: shell}

	// 5. Interfaces.
	for _, iface := range source.Interfaces {
		rewritten, err := c.rewriter.Rewrite(iface, ctx)
		if err != nil {
			return nil, err
		}
		shell.Interfaces = append(shell.Interfaces, rewritten)
	}

	// 6. Generic parameters (name/attrs first, constraints rewritten
	// against the shell so self-referential constraints resolve).
	for _, gp := range source.GenericParams {
		shell.GenericParams = append(shell.GenericParams, &cilmeta.GenericParameter{
			Name:       gp.Name,
			Attributes: gp.Attributes,
		})
	}
	for i, gp := range source.GenericParams {
		constraints := make([]cilmeta.TypeRef, len(gp.Constraints))
		for j, con := range gp.Constraints {
			rewritten, err := c.rewriter.Rewrite(con, ctx)
			if err != nil {
				return nil, err
			}
			constraints[j] = rewritten
		}
		shell.GenericParams[i].Constraints = constraints
	}

	// 7. Custom attributes.
	if err := c.cloneCustomAttributes(source.CustomAttrs, &shell.CustomAttrs, ctx); err != nil {
		return nil, err
	}

	// 8. Base type.
	if source.BaseType != nil {
		rewritten, err := c.rewriter.Rewrite(source.BaseType, ctx)
		if err != nil {
			return nil, err
		}
		shell.BaseType = rewritten
	}

	// 9. Add to target top-level list (if not nested); visibility.
	if !shell.IsNested() {
		c.Target.AddType(shell)
		if c.Config.HideImportedTypes {
			shell.DowngradeVisibility()
		}
	}
	c.Maps.MarkTargetOwned(shell)

	// 10. Fields, methods, properties, events, in that order.
	for _, f := range source.Fields {
		if err := c.cloneField(f, shell, ctx); err != nil {
			return nil, err
		}
	}
	for _, m := range source.Methods {
		if err := c.cloneMethod(m, shell); err != nil {
			return nil, err
		}
	}
	for _, p := range source.Properties {
		if err := c.cloneProperty(p, shell, ctx); err != nil {
			return nil, err
		}
	}
	for _, e := range source.Events {
		if err := c.cloneEvent(e, shell, ctx); err != nil {
			return nil, err
		}
	}

	// Nested types (compiler-generated helpers included) are cloned
	// eagerly with their declaring type; each attaches itself through
	// step 4 of its own clone.
	for _, n := range source.NestedTypes {
		if _, err := c.CloneType(n); err != nil {
			return nil, err
		}
	}

	return shell, nil
}

// cloneCustomAttributes clones every custom attribute on a provider,
// pairing a cloned constructor reference with the original, un-rewritten
// serialized argument blob. Constructor binding is deferred to the
// Operands phase: a custom attribute on a type may target a constructor
// of that very type, which is not guaranteed to exist yet when the
// attribute is cloned at step 7 (constructors are cloned at step 10,
// afterward); deferring resolves that without special-casing
// self-referencing attributes.
func (c *Cloner) cloneCustomAttributes(source []*cilmeta.CustomAttribute, dst *[]*cilmeta.CustomAttribute, ctx *sigrewrite.Context) error {
	for _, attr := range source {
		clone := &cilmeta.CustomAttribute{Blob: append([]byte(nil), attr.Blob...)}
		*dst = append(*dst, clone)
		original := attr.Constructor
		c.Queue.Enqueue(deferq.PriorityOperands, func() error {
			bound, err := c.bindAttributeConstructor(original, ctx)
			if err != nil {
				return err
			}
			clone.Constructor = bound
			return nil
		})
	}
	return nil
}

func (c *Cloner) bindAttributeConstructor(original cilmeta.MethodReferable, ctx *sigrewrite.Context) (cilmeta.MethodReferable, error) {
	switch ctor := original.(type) {
	case *cilmeta.MethodDef:
		declClone, err := c.CloneType(ctor.DeclaringType)
		if err != nil {
			return nil, err
		}
		found := findConstructor(declClone, len(ctor.Parameters))
		if found == nil {
			return nil, fmt.Errorf("cloner: no matching constructor on %s for custom attribute", declClone.FullName())
		}
		return found, nil
	default:
		return c.cloneMethodReferable(original, ctx)
	}
}

func findConstructor(t *cilmeta.TypeDef, paramCount int) *cilmeta.MethodDef {
	for _, m := range t.Methods {
		if m.Name == ".ctor" && len(m.Parameters) == paramCount {
			return m
		}
	}
	return nil
}
