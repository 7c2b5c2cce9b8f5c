package clonemap

import (
	"testing"

	"github.com/cilgraft/cilgraft/internal/cilmeta"
)

func TestInsertTypeIsIdempotent(t *testing.T) {
	m := New()
	first := &cilmeta.TypeDef{Name: "Widget"}
	second := &cilmeta.TypeDef{Name: "Widget"}

	m.InsertType("Acme.Widget", first)
	m.InsertType("Acme.Widget", second)

	got, ok := m.LookupType("Acme.Widget")
	if !ok {
		t.Fatalf("LookupType: not found")
	}
	if got != first {
		t.Errorf("InsertType overwrote first clone with second; clone stability (spec §3) violated")
	}
}

func TestInsertMethodIsIdempotent(t *testing.T) {
	m := New()
	first := &cilmeta.MethodDef{Name: "DoWork"}
	second := &cilmeta.MethodDef{Name: "DoWork"}

	m.InsertMethod("Acme.Widget::DoWork()", first)
	m.InsertMethod("Acme.Widget::DoWork()", second)

	got, ok := m.LookupMethod("Acme.Widget::DoWork()")
	if !ok {
		t.Fatalf("LookupMethod: not found")
	}
	if got != first {
		t.Errorf("InsertMethod overwrote first clone with second")
	}
}

func TestImportedTypesOrderAndNestedExclusion(t *testing.T) {
	m := New()
	top1 := &cilmeta.TypeDef{Name: "First"}
	top2 := &cilmeta.TypeDef{Name: "Second"}
	nested := &cilmeta.TypeDef{Name: "Nested", DeclaringType: top1}

	m.InsertType("Acme.First", top1)
	m.InsertType("Acme.First/Nested", nested)
	m.InsertType("Acme.Second", top2)

	imported := m.ImportedTypes()
	if len(imported) != 2 {
		t.Fatalf("ImportedTypes() should only list top-level types, got %d entries", len(imported))
	}
	if imported["Acme.First"] != top1 || imported["Acme.Second"] != top2 {
		t.Errorf("ImportedTypes() did not return the expected top-level clones")
	}
}

func TestTargetOwned(t *testing.T) {
	m := New()
	ty := &cilmeta.TypeDef{Name: "Widget"}
	if m.IsTargetOwned(ty) {
		t.Errorf("IsTargetOwned() = true before MarkTargetOwned")
	}
	m.MarkTargetOwned(ty)
	if !m.IsTargetOwned(ty) {
		t.Errorf("IsTargetOwned() = false after MarkTargetOwned")
	}
}
