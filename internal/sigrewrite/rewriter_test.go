package sigrewrite

import (
	"testing"

	"github.com/cilgraft/cilgraft/internal/cilmeta"
)

type fakeCloner struct {
	clone func(t *cilmeta.TypeDef) (*cilmeta.TypeDef, error)
}

func (f *fakeCloner) CloneType(t *cilmeta.TypeDef) (*cilmeta.TypeDef, error) {
	return f.clone(t)
}

type fakeResolver struct {
	external bool
	module   *cilmeta.Module
	ok       bool
}

func (f *fakeResolver) IsExternal(cilmeta.TypeRef, string) bool { return f.external }
func (f *fakeResolver) ResolveModule(cilmeta.TypeRef, string) (*cilmeta.Module, bool) {
	return f.module, f.ok
}

type fakeImporter struct {
	imported cilmeta.TypeRef
}

func (f *fakeImporter) ImportType(*cilmeta.Reference, *cilmeta.Module) cilmeta.TypeRef {
	return f.imported
}

func TestRewriteDefinitionClonesThroughCloner(t *testing.T) {
	source := &cilmeta.TypeDef{Name: "Widget"}
	clone := &cilmeta.TypeDef{Name: "Widget"}
	r := New(&fakeCloner{clone: func(t *cilmeta.TypeDef) (*cilmeta.TypeDef, error) { return clone, nil }}, nil, nil, nil)

	got, err := r.Rewrite(&cilmeta.Definition{Type: source}, nil)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	def, ok := got.(*cilmeta.Definition)
	if !ok || def.Type != clone {
		t.Errorf("Rewrite(Definition) = %#v, want Definition{Type: clone}", got)
	}
}

func TestRewriteGenericParamMethodOwnedResolvesByIndex(t *testing.T) {
	method := &cilmeta.MethodDef{GenericParams: []*cilmeta.GenericParameter{{Name: "T"}, {Name: "U"}}}
	r := New(nil, nil, nil, nil)

	got, err := r.Rewrite(&cilmeta.GenericParam{Owner: cilmeta.OwnerMethod, Index: 1}, &Context{Method: method})
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	gp, ok := got.(*cilmeta.GenericParam)
	if !ok || gp.Name != "U" || gp.Index != 1 {
		t.Errorf("Rewrite(method generic param) = %#v, want Index=1 Name=U", got)
	}
}

func TestRewriteGenericParamMethodOwnedMissingContextErrors(t *testing.T) {
	r := New(nil, nil, nil, nil)
	if _, err := r.Rewrite(&cilmeta.GenericParam{Owner: cilmeta.OwnerMethod, Index: 0}, nil); err == nil {
		t.Errorf("Rewrite() error = nil, want MissingContext")
	}
}

func TestRewriteGenericParamTypeOwnedResolvesByIndex(t *testing.T) {
	owner := &cilmeta.TypeDef{GenericParams: []*cilmeta.GenericParameter{{Name: "TKey"}}}
	r := New(nil, nil, nil, nil)

	got, err := r.Rewrite(&cilmeta.GenericParam{Owner: cilmeta.OwnerType, Index: 0}, &Context{Type: owner})
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	gp := got.(*cilmeta.GenericParam)
	if gp.Name != "TKey" {
		t.Errorf("Rewrite(type generic param).Name = %q, want TKey", gp.Name)
	}
}

func TestRewriteWrappersRecurseIntoInner(t *testing.T) {
	source := &cilmeta.TypeDef{Name: "Widget"}
	clone := &cilmeta.TypeDef{Name: "Widget"}
	r := New(&fakeCloner{clone: func(*cilmeta.TypeDef) (*cilmeta.TypeDef, error) { return clone, nil }}, nil, nil, nil)

	byRef := &cilmeta.ByRef{Inner: &cilmeta.Definition{Type: source}}
	got, err := r.Rewrite(byRef, nil)
	if err != nil {
		t.Fatalf("Rewrite(ByRef) error = %v", err)
	}
	inner := got.(*cilmeta.ByRef).Inner.(*cilmeta.Definition)
	if inner.Type != clone {
		t.Errorf("Rewrite(ByRef).Inner did not get the cloned type")
	}

	arr := &cilmeta.ArrayRef{Inner: &cilmeta.Definition{Type: source}, Rank: 2}
	got, err = r.Rewrite(arr, nil)
	if err != nil {
		t.Fatalf("Rewrite(ArrayRef) error = %v", err)
	}
	gotArr := got.(*cilmeta.ArrayRef)
	if gotArr.Rank != 2 {
		t.Errorf("Rewrite(ArrayRef).Rank = %d, want 2 (preserved)", gotArr.Rank)
	}
}

func TestRewriteGenericInstanceRewritesElementAndArguments(t *testing.T) {
	elementSource := &cilmeta.TypeDef{Name: "List"}
	elementClone := &cilmeta.TypeDef{Name: "List"}
	argSource := &cilmeta.TypeDef{Name: "Widget"}
	argClone := &cilmeta.TypeDef{Name: "Widget"}

	clones := map[*cilmeta.TypeDef]*cilmeta.TypeDef{elementSource: elementClone, argSource: argClone}
	r := New(&fakeCloner{clone: func(t *cilmeta.TypeDef) (*cilmeta.TypeDef, error) { return clones[t], nil }}, nil, nil, nil)

	inst := &cilmeta.GenericInstance{
		Element:   &cilmeta.Definition{Type: elementSource},
		Arguments: []cilmeta.TypeRef{&cilmeta.Definition{Type: argSource}},
	}
	got, err := r.Rewrite(inst, nil)
	if err != nil {
		t.Fatalf("Rewrite(GenericInstance) error = %v", err)
	}
	gi := got.(*cilmeta.GenericInstance)
	if gi.Element.(*cilmeta.Definition).Type != elementClone {
		t.Errorf("Rewrite(GenericInstance).Element not rewritten to clone")
	}
	if gi.Arguments[0].(*cilmeta.Definition).Type != argClone {
		t.Errorf("Rewrite(GenericInstance).Arguments[0] not rewritten to clone")
	}
}

func TestRewriteReferenceExternalGoesThroughImporter(t *testing.T) {
	imported := &cilmeta.Definition{Type: &cilmeta.TypeDef{Name: "Imported"}}
	target := &cilmeta.Module{}
	r := New(nil, &fakeResolver{external: true}, &fakeImporter{imported: imported}, target)

	ref := &cilmeta.Reference{Namespace: "System", Name: "Object", AssemblyFullName: "mscorlib"}
	got, err := r.Rewrite(ref, nil)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != imported {
		t.Errorf("Rewrite(external Reference) = %v, want importer's result", got)
	}
}

func TestRewriteReferenceMergeableClonesResolvedDefinition(t *testing.T) {
	sourceType := &cilmeta.TypeDef{Namespace: "Acme.Core", Name: "Widget"}
	sourceModule := &cilmeta.Module{Types: []*cilmeta.TypeDef{sourceType}}
	clone := &cilmeta.TypeDef{Name: "Widget"}

	r := New(
		&fakeCloner{clone: func(*cilmeta.TypeDef) (*cilmeta.TypeDef, error) { return clone, nil }},
		&fakeResolver{external: false, module: sourceModule, ok: true},
		nil,
		nil,
	)

	ref := &cilmeta.Reference{Namespace: "Acme.Core", Name: "Widget", AssemblyFullName: "Acme.Core"}
	got, err := r.Rewrite(ref, nil)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	def := got.(*cilmeta.Definition)
	if def.Type != clone {
		t.Errorf("Rewrite(mergeable Reference) = %#v, want clone", got)
	}
}

func TestRewriteReferenceMergeableButUnresolvableModuleErrors(t *testing.T) {
	r := New(nil, &fakeResolver{external: false, ok: false}, nil, nil)
	ref := &cilmeta.Reference{Namespace: "Acme.Core", Name: "Widget", AssemblyFullName: "Acme.Core"}
	if _, err := r.Rewrite(ref, nil); err == nil {
		t.Errorf("Rewrite() error = nil, want UnresolvableReference")
	}
}

func TestRewriteReferenceMergeableButTypeNotFoundInModuleErrors(t *testing.T) {
	emptyModule := &cilmeta.Module{}
	r := New(nil, &fakeResolver{external: false, module: emptyModule, ok: true}, nil, nil)
	ref := &cilmeta.Reference{Namespace: "Acme.Core", Name: "Missing", AssemblyFullName: "Acme.Core"}
	if _, err := r.Rewrite(ref, nil); err == nil {
		t.Errorf("Rewrite() error = nil, want UnresolvableReference")
	}
}

func TestRewriteReferenceResolvesNestedType(t *testing.T) {
	outer := &cilmeta.TypeDef{Namespace: "Acme.Core", Name: "Widget"}
	inner := &cilmeta.TypeDef{Name: "Enumerator"}
	outer.AddNestedType(inner)
	sourceModule := &cilmeta.Module{Types: []*cilmeta.TypeDef{outer}}
	clone := &cilmeta.TypeDef{Name: "Enumerator"}

	r := New(
		&fakeCloner{clone: func(t *cilmeta.TypeDef) (*cilmeta.TypeDef, error) { return clone, nil }},
		&fakeResolver{external: false, module: sourceModule, ok: true},
		nil,
		nil,
	)

	ref := &cilmeta.Reference{Namespace: "Acme.Core", Name: "Widget/Enumerator", AssemblyFullName: "Acme.Core"}
	got, err := r.Rewrite(ref, nil)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got.(*cilmeta.Definition).Type != clone {
		t.Errorf("Rewrite(nested Reference) did not resolve the nested type")
	}
}
