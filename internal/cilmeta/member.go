package cilmeta

// CustomAttribute pairs a constructor reference with the original
// serialized argument blob. Per spec §4.8, the blob is a stable binary
// format referring to types by name only, so only the constructor
// reference is rewritten on clone — the blob itself is copied verbatim.
type CustomAttribute struct {
	Constructor MethodReferable
	Blob        []byte
}

// MarshalInfo is an opaque, copy-verbatim description of a field's or
// parameter's native marshaling (the exact encoding is the metadata
// library's concern; this schema only needs to carry it through a clone).
type MarshalInfo struct {
	NativeType uint32
	Extra      []byte
}

// FieldDef is a field: type, attributes, optional constant/initial value,
// optional marshal info, custom attributes.
type FieldDef struct {
	DeclaringType *TypeDef
	Name          string
	Attributes    uint32
	FieldType     TypeRef

	InitialValue []byte      // for RVA-initialized fields; nil if none
	Constant     interface{} // literal constant value; nil if none
	Offset       int32       // explicit layout offset; -1 if not set
	Marshal      *MarshalInfo

	CustomAttrs []*CustomAttribute
}

// FieldReferable is implemented by both FieldDef and FieldRef so an
// instruction operand can point at either a just-cloned definition or a
// freshly built reference, uniformly.
type FieldReferable interface{ fieldReferable() }

func (*FieldDef) fieldReferable() {}

// FieldRef is a fresh, non-definition reference to a field — the shape
// produced when an instruction operand points at a field owned by a type
// that is not itself being cloned (e.g. an external framework field).
type FieldRef struct {
	DeclaringType TypeRef
	Name          string
	FieldType     TypeRef
}

func (*FieldRef) fieldReferable() {}

// Parameter is a method parameter: name, type, optional marshal info and
// custom attributes.
type Parameter struct {
	Name        string
	Type        TypeRef
	Marshal     *MarshalInfo
	CustomAttrs []*CustomAttribute
}

// PInvokeInfo describes an unmanaged entry point a method is bound to.
type PInvokeInfo struct {
	ModuleName string
	EntryPoint string
	Attributes uint32
}

// MethodReferable is implemented by both MethodDef and MethodRef so
// overrides, custom-attribute constructors and instruction operands can
// point at either uniformly.
type MethodReferable interface{ methodReferable() }

func (*MethodDef) methodReferable() {}

// MethodDef is a method: attributes, generic parameters, parameters,
// return type, optional body, overrides, optional P/Invoke info, custom
// attributes.
type MethodDef struct {
	DeclaringType *TypeDef
	Name          string
	Attributes    uint32
	ImplAttrs     uint32

	GenericParams []*GenericParameter
	Parameters    []*Parameter
	ReturnType    TypeRef

	Body    *MethodBody // nil for abstract/P-Invoke methods
	PInvoke *PInvokeInfo

	Overrides []MethodReferable // explicit interface/virtual overrides

	CustomAttrs []*CustomAttribute
}

// Identity is the source-method-identity clone-map key: declaring type
// full name, method name, and a signature string distinguishing overloads.
func (m *MethodDef) Identity() string {
	return m.DeclaringType.FullName() + "::" + m.Name + signatureOf(m)
}

func signatureOf(m *MethodDef) string {
	s := "("
	for i, p := range m.Parameters {
		if i > 0 {
			s += ","
		}
		s += typeRefShape(p.Type)
	}
	return s + ")"
}

// typeRefShape renders a shallow, stable textual shape of a TypeRef for
// signature-based disambiguation. It does not need to be a full mangled
// name — only distinct enough that two distinct parameter lists produce
// distinct strings.
func typeRefShape(t TypeRef) string {
	switch v := t.(type) {
	case *Definition:
		return v.Type.FullName()
	case *GenericParam:
		if v.Owner == OwnerMethod {
			return "!!" + itoa(v.Index)
		}
		return "!" + itoa(v.Index)
	case *GenericInstance:
		s := typeRefShape(v.Element) + "<"
		for i, a := range v.Arguments {
			if i > 0 {
				s += ","
			}
			s += typeRefShape(a)
		}
		return s + ">"
	case *ByRef:
		return typeRefShape(v.Inner) + "&"
	case *ArrayRef:
		return typeRefShape(v.Inner) + "[" + itoa(v.Rank) + "]"
	case *RequiredModifier:
		return typeRefShape(v.Inner) + " modreq(" + typeRefShape(v.Modifier) + ")"
	case *Pointer:
		return typeRefShape(v.Inner) + "*"
	case *Reference:
		return v.AssemblyFullName + "!" + v.FullName()
	default:
		return "?"
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// MethodRef is a fresh, non-definition reference to a method — built for
// instruction operands and overrides that target a method not owned by
// any module being cloned.
type MethodRef struct {
	DeclaringType TypeRef
	Name          string
	ReturnType    TypeRef
	Parameters    []TypeRef
	GenericArity  int
}

func (*MethodRef) methodReferable() {}

// GenericInstanceMethod is a generic method constructed by binding every
// generic parameter of Element to a concrete Arguments[i].
type GenericInstanceMethod struct {
	Element   MethodReferable
	Arguments []TypeRef
}

func (*GenericInstanceMethod) methodReferable() {}

// PropertyDef is a property: type, accessor methods, custom attributes.
type PropertyDef struct {
	DeclaringType *TypeDef
	Name          string
	Attributes    uint32
	PropertyType  TypeRef
	GetMethod     *MethodDef
	SetMethod     *MethodDef
	CustomAttrs   []*CustomAttribute
}

// EventDef is an event: type, add/remove/raise accessor methods, custom
// attributes.
type EventDef struct {
	DeclaringType *TypeDef
	Name          string
	Attributes    uint32
	EventType     TypeRef
	AddMethod     *MethodDef
	RemoveMethod  *MethodDef
	RaiseMethod   *MethodDef // nil if absent
	CustomAttrs   []*CustomAttribute
}
