package cilmeta

// TypeRef is the tagged variant of every shape a type can take in a
// signature: a definition, a generic parameter, a generic instance, or one
// of the wrapper shapes (by-ref, array, required-modifier, pointer), or an
// unresolved plain reference. Every concrete variant below carries an
// unexported marker method so the set is closed and the Signature
// Rewriter's type switch stays exhaustive.
type TypeRef interface {
	typeRef()
}

// Definition wraps a fully resolved type definition, owned by either the
// target module or a registered source module.
type Definition struct {
	Type *TypeDef
}

func (*Definition) typeRef() {}

// GenericOwnerKind distinguishes a type-owned from a method-owned generic
// parameter, since the two are resolved against different index spaces.
type GenericOwnerKind int

const (
	OwnerType GenericOwnerKind = iota
	OwnerMethod
)

// GenericParam is a reference to the Index-th generic parameter of its
// Owner (a type or a method), resolved positionally.
type GenericParam struct {
	Owner GenericOwnerKind
	Index int
	Name  string // informational only; resolution is by Index
}

func (*GenericParam) typeRef() {}

// GenericInstance is a type constructed by binding every generic parameter
// of Element to a concrete Arguments[i].
type GenericInstance struct {
	Element   TypeRef
	Arguments []TypeRef
}

func (*GenericInstance) typeRef() {}

// ByRef is a managed-pointer-to-Inner ("&T" in IL signatures).
type ByRef struct {
	Inner TypeRef
}

func (*ByRef) typeRef() {}

// ArrayRef is an Inner[] of the given Rank (a vector when Rank == 1;
// multi-dimensional otherwise). Bounds and sizes are not modeled.
type ArrayRef struct {
	Inner TypeRef
	Rank  int
}

func (*ArrayRef) typeRef() {}

// RequiredModifier wraps Inner with a modreq(Modifier) annotation.
type RequiredModifier struct {
	Modifier TypeRef
	Inner    TypeRef
}

func (*RequiredModifier) typeRef() {}

// Pointer is an unmanaged pointer-to-Inner ("*T" in IL signatures).
type Pointer struct {
	Inner TypeRef
}

func (*Pointer) typeRef() {}

// Reference is a plain, not-yet-resolved named reference to a type,
// possibly owned by another assembly. It is the shape instruction operands
// and signatures carry before the Signature Rewriter either clones the
// resolved definition or imports it as external.
type Reference struct {
	AssemblyFullName string
	Namespace        string
	Name             string
}

func (*Reference) typeRef() {}

// FullName is the dotted namespace.Name form used as a clone-map key.
func (r *Reference) FullName() string {
	if r.Namespace == "" {
		return r.Name
	}
	return r.Namespace + "." + r.Name
}
