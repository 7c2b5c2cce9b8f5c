package cilmeta

// TypeAttributes mirrors the subset of CLR TypeAttributes this package
// needs to reason about visibility; the rest are opaque bit flags passed
// through unchanged.
type TypeAttributes uint32

const (
	VisibilityMask   TypeAttributes = 0x7
	NotPublic        TypeAttributes = 0x0
	Public           TypeAttributes = 0x1
	NestedPublic     TypeAttributes = 0x2
	NestedPrivate    TypeAttributes = 0x3
	NestedAssembly   TypeAttributes = 0x4
	NestedFamily     TypeAttributes = 0x5
	NestedFamANDAssem TypeAttributes = 0x6
	NestedFamORAssem TypeAttributes = 0x7
)

// Visibility returns the visibility bits in isolation.
func (a TypeAttributes) Visibility() TypeAttributes { return a & VisibilityMask }

// WithVisibility returns a copy of a with its visibility bits replaced.
func (a TypeAttributes) WithVisibility(v TypeAttributes) TypeAttributes {
	return (a &^ VisibilityMask) | (v & VisibilityMask)
}

// GenericParameter is a placeholder owned by a type or a method, identified
// by its position in the owner's GenericParams list.
type GenericParameter struct {
	Name        string
	Attributes  uint32
	Constraints []TypeRef
}

// TypeDef is a type: namespace, name, attributes, generic parameters, base
// type, interfaces, nested types, members and custom attributes. Owned by
// its Module if top-level, or by DeclaringType if nested — never both.
type TypeDef struct {
	Module        *Module // non-nil only for top-level types
	DeclaringType *TypeDef // non-nil only for nested types

	Namespace  string
	Name       string
	Attributes TypeAttributes

	GenericParams []*GenericParameter
	BaseType      TypeRef
	Interfaces    []TypeRef
	NestedTypes   []*TypeDef

	Fields     []*FieldDef
	Methods    []*MethodDef
	Properties []*PropertyDef
	Events     []*EventDef

	CustomAttrs []*CustomAttribute
}

// FullName is the source-identity key used by the type clone map: the
// dotted namespace.Name for top-level types, and DeclaringType.FullName +
// "/" + Name for nested types (CLR nested-type separator).
func (t *TypeDef) FullName() string {
	if t == nil {
		return ""
	}
	if t.DeclaringType != nil {
		return t.DeclaringType.FullName() + "/" + t.Name
	}
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// IsNested reports whether this type is owned by a declaring type rather
// than listed top-level in a module.
func (t *TypeDef) IsNested() bool { return t.DeclaringType != nil }

// OwningModule walks up through declaring types to the module that
// ultimately owns this type.
func (t *TypeDef) OwningModule() *Module {
	for t.DeclaringType != nil {
		t = t.DeclaringType
	}
	return t.Module
}

// OwningAssemblyFullName is the full name of the assembly that owns this
// type, used as the resolver's "owningAssemblyFullName" argument.
func (t *TypeDef) OwningAssemblyFullName() string {
	return t.OwningModule().FullName()
}

// AddNestedType appends n as a nested type of t, enforcing the
// module-containment invariant (never both top-level and nested).
func (t *TypeDef) AddNestedType(n *TypeDef) {
	for _, existing := range t.NestedTypes {
		if existing == n {
			return
		}
	}
	t.NestedTypes = append(t.NestedTypes, n)
	n.DeclaringType = t
	n.Module = nil
}

// DowngradeVisibility forces a top-level type to NotPublic, per the
// HideImportedTypes option. Nested types are unaffected, per spec.
func (t *TypeDef) DowngradeVisibility() {
	if t.IsNested() {
		return
	}
	t.Attributes = t.Attributes.WithVisibility(NotPublic)
}
