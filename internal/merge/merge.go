// Package merge absorbs whole referenced assemblies into a target module:
// it sweeps every entity already in the target through the Signature
// Rewriter so each reference into an absorbed assembly is re-pointed at
// the newly-inlined definition, then drops the target's now-redundant
// references to those assemblies.
package merge

import (
	"github.com/cilgraft/cilgraft/internal/cilmeta"
	"github.com/cilgraft/cilgraft/internal/errs"
	"github.com/cilgraft/cilgraft/internal/registry"
	"github.com/cilgraft/cilgraft/internal/sigrewrite"
)

// Driver runs the Merge Driver's sweep against one target module.
type Driver struct {
	Target   *cilmeta.Module
	Rewriter *sigrewrite.Rewriter
	Registry *registry.Registry
}

// New builds a Driver.
func New(target *cilmeta.Module, rewriter *sigrewrite.Rewriter, reg *registry.Registry) *Driver {
	return &Driver{Target: target, Rewriter: rewriter, Registry: reg}
}

// Run sweeps every type already in the target module, rewriting every
// signature position it owns, then drops the target's references to every
// now-absorbed assembly (every assembly registered in the source module
// registry). The sweep runs before the reference table is pruned, so a
// rewrite can still observe the assembly it is re-pointing away from.
func (d *Driver) Run() error {
	for _, t := range d.Target.Types {
		if err := d.sweepType(t); err != nil {
			return errs.MergeFailed(t.FullName(), err)
		}
	}
	for _, mod := range d.Registry.List() {
		d.Target.RemoveAssemblyRef(mod.FullName())
	}
	return nil
}

func (d *Driver) sweepType(t *cilmeta.TypeDef) error {
	ctx := &sigrewrite.Context{Type: t}

	for i, iface := range t.Interfaces {
		rewritten, err := d.Rewriter.Rewrite(iface, ctx)
		if err != nil {
			return err
		}
		t.Interfaces[i] = rewritten
	}

	for _, gp := range t.GenericParams {
		for i, con := range gp.Constraints {
			rewritten, err := d.Rewriter.Rewrite(con, ctx)
			if err != nil {
				return err
			}
			gp.Constraints[i] = rewritten
		}
	}

	if err := d.sweepCustomAttributes(t.CustomAttrs, ctx); err != nil {
		return err
	}

	if t.BaseType != nil {
		rewritten, err := d.Rewriter.Rewrite(t.BaseType, ctx)
		if err != nil {
			return err
		}
		t.BaseType = rewritten
	}

	for _, f := range t.Fields {
		rewritten, err := d.Rewriter.Rewrite(f.FieldType, ctx)
		if err != nil {
			return err
		}
		f.FieldType = rewritten
		if err := d.sweepCustomAttributes(f.CustomAttrs, ctx); err != nil {
			return err
		}
	}

	for _, m := range t.Methods {
		if err := d.sweepMethod(m, t); err != nil {
			return err
		}
	}

	for _, p := range t.Properties {
		rewritten, err := d.Rewriter.Rewrite(p.PropertyType, ctx)
		if err != nil {
			return err
		}
		p.PropertyType = rewritten
		if err := d.sweepCustomAttributes(p.CustomAttrs, ctx); err != nil {
			return err
		}
	}

	for _, e := range t.Events {
		rewritten, err := d.Rewriter.Rewrite(e.EventType, ctx)
		if err != nil {
			return err
		}
		e.EventType = rewritten
		if err := d.sweepCustomAttributes(e.CustomAttrs, ctx); err != nil {
			return err
		}
	}

	for _, nested := range t.NestedTypes {
		if err := d.sweepType(nested); err != nil {
			return err
		}
	}

	return nil
}

func (d *Driver) sweepMethod(m *cilmeta.MethodDef, declaringType *cilmeta.TypeDef) error {
	ctx := &sigrewrite.Context{Type: declaringType, Method: m}

	for _, gp := range m.GenericParams {
		for i, con := range gp.Constraints {
			rewritten, err := d.Rewriter.Rewrite(con, ctx)
			if err != nil {
				return err
			}
			gp.Constraints[i] = rewritten
		}
	}

	for _, p := range m.Parameters {
		rewritten, err := d.Rewriter.Rewrite(p.Type, ctx)
		if err != nil {
			return err
		}
		p.Type = rewritten
		if err := d.sweepCustomAttributes(p.CustomAttrs, ctx); err != nil {
			return err
		}
	}

	rewrittenReturn, err := d.Rewriter.Rewrite(m.ReturnType, ctx)
	if err != nil {
		return err
	}
	m.ReturnType = rewrittenReturn

	if err := d.sweepCustomAttributes(m.CustomAttrs, ctx); err != nil {
		return err
	}

	if m.Body != nil {
		for _, l := range m.Body.Locals {
			rewritten, err := d.Rewriter.Rewrite(l.Type, ctx)
			if err != nil {
				return err
			}
			l.Type = rewritten
		}
		for _, insn := range m.Body.Instructions {
			if err := d.sweepOperand(insn, ctx); err != nil {
				return err
			}
		}
		for _, h := range m.Body.ExceptionHandlers {
			if h.Kind == cilmeta.HandlerCatch && h.CatchType != nil {
				rewritten, err := d.Rewriter.Rewrite(h.CatchType, ctx)
				if err != nil {
					return err
				}
				h.CatchType = rewritten
			}
		}
	}

	return nil
}

func (d *Driver) sweepOperand(insn *cilmeta.Instruction, ctx *sigrewrite.Context) error {
	switch op := insn.Operand.(type) {
	case *cilmeta.TypeRefOperand:
		rewritten, err := d.Rewriter.Rewrite(op.Type, ctx)
		if err != nil {
			return err
		}
		op.Type = rewritten
	case *cilmeta.MethodRefOperand:
		return d.sweepMethodRef(op.Ref, ctx)
	case *cilmeta.GenericInstanceMethodOperand:
		return d.sweepMethodReferable(op.Instance, ctx)
	case *cilmeta.FieldRefOperand:
		if ref, ok := op.Field.(*cilmeta.FieldRef); ok {
			declType, err := d.Rewriter.Rewrite(ref.DeclaringType, ctx)
			if err != nil {
				return err
			}
			ref.DeclaringType = declType

			fieldType, err := d.Rewriter.Rewrite(ref.FieldType, ctx)
			if err != nil {
				return err
			}
			ref.FieldType = fieldType
		}
	}
	return nil
}

// sweepMethodReferable rewrites every TypeRef-bearing field reachable from
// a method-referable operand, recursing into a generic instance's element
// and argument list.
func (d *Driver) sweepMethodReferable(ref cilmeta.MethodReferable, ctx *sigrewrite.Context) error {
	switch m := ref.(type) {
	case *cilmeta.MethodRef:
		return d.sweepMethodRef(m, ctx)
	case *cilmeta.GenericInstanceMethod:
		if err := d.sweepMethodReferable(m.Element, ctx); err != nil {
			return err
		}
		for i, a := range m.Arguments {
			rewritten, err := d.Rewriter.Rewrite(a, ctx)
			if err != nil {
				return err
			}
			m.Arguments[i] = rewritten
		}
	}
	return nil
}

func (d *Driver) sweepMethodRef(ref *cilmeta.MethodRef, ctx *sigrewrite.Context) error {
	declType, err := d.Rewriter.Rewrite(ref.DeclaringType, ctx)
	if err != nil {
		return err
	}
	ref.DeclaringType = declType

	returnType, err := d.Rewriter.Rewrite(ref.ReturnType, ctx)
	if err != nil {
		return err
	}
	ref.ReturnType = returnType

	for i, p := range ref.Parameters {
		rewritten, err := d.Rewriter.Rewrite(p, ctx)
		if err != nil {
			return err
		}
		ref.Parameters[i] = rewritten
	}
	return nil
}

// sweepCustomAttributes re-binds every attribute constructor's declaring
// type through the rewriter.
func (d *Driver) sweepCustomAttributes(attrs []*cilmeta.CustomAttribute, ctx *sigrewrite.Context) error {
	for _, attr := range attrs {
		if attr.Constructor == nil {
			continue
		}
		switch ctor := attr.Constructor.(type) {
		case *cilmeta.MethodRef:
			declType, err := d.Rewriter.Rewrite(ctor.DeclaringType, ctx)
			if err != nil {
				return err
			}
			ctor.DeclaringType = declType
		}
	}
	return nil
}
