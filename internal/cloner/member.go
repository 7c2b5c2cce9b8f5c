package cloner

import (
	"fmt"

	"github.com/cilgraft/cilgraft/internal/cilmeta"
	"github.com/cilgraft/cilgraft/internal/deferq"
	"github.com/cilgraft/cilgraft/internal/sigrewrite"
)

// cloneField preserves name, attributes, initial value bytes, offset,
// constant, marshal info, and custom attributes; the field type is
// rewritten.
func (c *Cloner) cloneField(source *cilmeta.FieldDef, declClone *cilmeta.TypeDef, ctx *sigrewrite.Context) error {
	clone := &cilmeta.FieldDef{
		DeclaringType: declClone,
		Name:          source.Name,
		Attributes:    source.Attributes,
		InitialValue:  append([]byte(nil), source.InitialValue...),
		Constant:      source.Constant,
		Offset:        source.Offset,
		Marshal:       cloneMarshalInfo(source.Marshal),
	}
	rewritten, err := c.rewriter.Rewrite(source.FieldType, ctx)
	if err != nil {
		return err
	}
	clone.FieldType = rewritten
	if err := c.cloneCustomAttributes(source.CustomAttrs, &clone.CustomAttrs, ctx); err != nil {
		return err
	}
	declClone.Fields = append(declClone.Fields, clone)
	return nil
}

// cloneMethod clones one method. The shell is inserted into the method
// map before anything else is cloned about it, breaking method<->type and
// method<->method cycles: a method whose body references itself or its
// own declaring type finds the shell already in the map instead of
// recursing forever.
func (c *Cloner) cloneMethod(source *cilmeta.MethodDef, declClone *cilmeta.TypeDef) error {
	identity := source.Identity()
	if _, ok := c.Maps.LookupMethod(identity); ok {
		return nil
	}

	shell := &cilmeta.MethodDef{
		DeclaringType: declClone,
		Name:          source.Name,
		Attributes:    source.Attributes,
		ImplAttrs:     source.ImplAttrs,
	}
	c.Maps.InsertMethod(identity, shell)
	declClone.Methods = append(declClone.Methods, shell)

	ctx := &sigrewrite.Context{Type: declClone, Method: shell}

	// Generic parameters: names/attrs first, then constraints rewritten
	// against the shell so a method-owned self-reference resolves.
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
				return err
			}
			constraints[j] = rewritten
		}
		shell.GenericParams[i].Constraints = constraints
	}

	// Parameters: types rewritten, marshal info and parameter custom
	// attributes copied.
	for _, p := range source.Parameters {
		rewrittenType, err := c.rewriter.Rewrite(p.Type, ctx)
		if err != nil {
			return err
		}
		clonedParam := &cilmeta.Parameter{
			Name:    p.Name,
			Type:    rewrittenType,
			Marshal: cloneMarshalInfo(p.Marshal),
		}
		if err := c.cloneCustomAttributes(p.CustomAttrs, &clonedParam.CustomAttrs, ctx); err != nil {
			return err
		}
		shell.Parameters = append(shell.Parameters, clonedParam)
	}

	// Attach to declaring type happened above (declClone.Methods append).

	// P/Invoke: find or create a module reference by name on the target.
	if source.PInvoke != nil {
		moduleName := declClone.OwningModule().FindOrAddModuleRef(source.PInvoke.ModuleName)
		shell.PInvoke = &cilmeta.PInvokeInfo{
			ModuleName: moduleName,
			EntryPoint: source.PInvoke.EntryPoint,
			Attributes: source.PInvoke.Attributes,
		}
	}

	// Return type.
	rewrittenReturn, err := c.rewriter.Rewrite(source.ReturnType, ctx)
	if err != nil {
		return err
	}
	shell.ReturnType = rewrittenReturn

	// Overrides: each is a method reference, cloned through the
	// method-reference path.
	for _, ov := range source.Overrides {
		cloned, err := c.cloneMethodReferable(ov, ctx)
		if err != nil {
			return err
		}
		shell.Overrides = append(shell.Overrides, cloned)
	}

	if err := c.cloneCustomAttributes(source.CustomAttrs, &shell.CustomAttrs, ctx); err != nil {
		return err
	}

	// Body: copy init-locals flag and local-variable types, schedule
	// CopyInstructions at priority Instructions.
	if source.Body != nil {
		shell.Body = &cilmeta.MethodBody{InitLocals: source.Body.InitLocals}
		for _, l := range source.Body.Locals {
			rewrittenType, err := c.rewriter.Rewrite(l.Type, ctx)
			if err != nil {
				return err
			}
			shell.Body.Locals = append(shell.Body.Locals, &cilmeta.LocalVariable{Name: l.Name, Type: rewrittenType})
		}
		sourceBody := source.Body
		targetBody := shell.Body
		c.Queue.Enqueue(deferq.PriorityInstructions, func() error {
			return c.cloneInstructions(sourceBody, targetBody, ctx)
		})
	}

	return nil
}

// cloneMethodReferable clones any of the three method-referable shapes
// (definition, fresh reference, generic-instance-method) uniformly. Used
// for overrides and for instruction operands that target a method.
func (c *Cloner) cloneMethodReferable(ref cilmeta.MethodReferable, ctx *sigrewrite.Context) (cilmeta.MethodReferable, error) {
	switch m := ref.(type) {
	case *cilmeta.MethodDef:
		return c.cloneMethodDefOperand(m)
	case *cilmeta.MethodRef:
		declType, err := c.rewriter.Rewrite(m.DeclaringType, ctx)
		if err != nil {
			return nil, err
		}
		returnType, err := c.rewriter.Rewrite(m.ReturnType, ctx)
		if err != nil {
			return nil, err
		}
		params := make([]cilmeta.TypeRef, len(m.Parameters))
		for i, p := range m.Parameters {
			rewritten, err := c.rewriter.Rewrite(p, ctx)
			if err != nil {
				return nil, err
			}
			params[i] = rewritten
		}
		return &cilmeta.MethodRef{DeclaringType: declType, Name: m.Name, ReturnType: returnType, Parameters: params, GenericArity: m.GenericArity}, nil
	case *cilmeta.GenericInstanceMethod:
		element, err := c.cloneMethodReferable(m.Element, ctx)
		if err != nil {
			return nil, err
		}
		args := make([]cilmeta.TypeRef, len(m.Arguments))
		for i, a := range m.Arguments {
			rewritten, err := c.rewriter.Rewrite(a, ctx)
			if err != nil {
				return nil, err
			}
			args[i] = rewritten
		}
		return &cilmeta.GenericInstanceMethod{Element: element, Arguments: args}, nil
	default:
		return nil, fmt.Errorf("cloner: unhandled method referable %T", ref)
	}
}

// cloneMethodDefOperand clones the declaring type (cloning every method on
// it along the way, per Type Cloner step 10) and returns the clone of m
// specifically, looked up by identity.
func (c *Cloner) cloneMethodDefOperand(m *cilmeta.MethodDef) (*cilmeta.MethodDef, error) {
	if _, err := c.CloneType(m.DeclaringType); err != nil {
		return nil, err
	}
	cloned, ok := c.Maps.LookupMethod(m.Identity())
	if !ok {
		return nil, fmt.Errorf("cloner: method definition %s was not cloned with its declaring type", m.Identity())
	}
	return cloned, nil
}

// cloneFieldReferable clones either shape of field referable uniformly.
func (c *Cloner) cloneFieldReferable(ref cilmeta.FieldReferable, ctx *sigrewrite.Context) (cilmeta.FieldReferable, error) {
	switch f := ref.(type) {
	case *cilmeta.FieldDef:
		if _, err := c.CloneType(f.DeclaringType); err != nil {
			return nil, err
		}
		declClone, ok := c.Maps.LookupType(f.DeclaringType.FullName())
		if !ok {
			return nil, fmt.Errorf("cloner: field %s's declaring type was not cloned", f.Name)
		}
		for _, clonedField := range declClone.Fields {
			if clonedField.Name == f.Name {
				return clonedField, nil
			}
		}
		return nil, fmt.Errorf("cloner: field %s not found on cloned type %s", f.Name, declClone.FullName())
	case *cilmeta.FieldRef:
		declType, err := c.rewriter.Rewrite(f.DeclaringType, ctx)
		if err != nil {
			return nil, err
		}
		fieldType, err := c.rewriter.Rewrite(f.FieldType, ctx)
		if err != nil {
			return nil, err
		}
		return &cilmeta.FieldRef{DeclaringType: declType, Name: f.Name, FieldType: fieldType}, nil
	default:
		return nil, fmt.Errorf("cloner: unhandled field referable %T", ref)
	}
}

// cloneProperty is the Member Cloner's property rule: clone shell with
// name/attributes/rewritten property type, resolve accessor methods
// through the method map (methods are cloned before properties in Type
// Cloner step 10, so the lookup always succeeds), copy custom attributes.
func (c *Cloner) cloneProperty(source *cilmeta.PropertyDef, declClone *cilmeta.TypeDef, ctx *sigrewrite.Context) error {
	clone := &cilmeta.PropertyDef{DeclaringType: declClone, Name: source.Name, Attributes: source.Attributes}
	rewritten, err := c.rewriter.Rewrite(source.PropertyType, ctx)
	if err != nil {
		return err
	}
	clone.PropertyType = rewritten

	if source.GetMethod != nil {
		get, err := c.lookupClonedAccessor(source.GetMethod)
		if err != nil {
			return err
		}
		clone.GetMethod = get
	}
	if source.SetMethod != nil {
		set, err := c.lookupClonedAccessor(source.SetMethod)
		if err != nil {
			return err
		}
		clone.SetMethod = set
	}

	if err := c.cloneCustomAttributes(source.CustomAttrs, &clone.CustomAttrs, ctx); err != nil {
		return err
	}
	declClone.Properties = append(declClone.Properties, clone)
	return nil
}

// cloneEvent is the Member Cloner's event rule: analogous to property,
// with add/remove (and raise, if present) accessors.
func (c *Cloner) cloneEvent(source *cilmeta.EventDef, declClone *cilmeta.TypeDef, ctx *sigrewrite.Context) error {
	clone := &cilmeta.EventDef{DeclaringType: declClone, Name: source.Name, Attributes: source.Attributes}
	rewritten, err := c.rewriter.Rewrite(source.EventType, ctx)
	if err != nil {
		return err
	}
	clone.EventType = rewritten

	add, err := c.lookupClonedAccessor(source.AddMethod)
	if err != nil {
		return err
	}
	clone.AddMethod = add

	remove, err := c.lookupClonedAccessor(source.RemoveMethod)
	if err != nil {
		return err
	}
	clone.RemoveMethod = remove

	if source.RaiseMethod != nil {
		raise, err := c.lookupClonedAccessor(source.RaiseMethod)
		if err != nil {
			return err
		}
		clone.RaiseMethod = raise
	}

	if err := c.cloneCustomAttributes(source.CustomAttrs, &clone.CustomAttrs, ctx); err != nil {
		return err
	}
	declClone.Events = append(declClone.Events, clone)
	return nil
}

func (c *Cloner) lookupClonedAccessor(m *cilmeta.MethodDef) (*cilmeta.MethodDef, error) {
	cloned, ok := c.Maps.LookupMethod(m.Identity())
	if !ok {
		return nil, fmt.Errorf("cloner: accessor method %s was not cloned before its property/event", m.Identity())
	}
	return cloned, nil
}
