package registry

import (
	"testing"

	"github.com/cilgraft/cilgraft/internal/cilmeta"
	"github.com/cilgraft/cilgraft/internal/pe"
)

func moduleNamed(name string) *cilmeta.Module {
	return &cilmeta.Module{Assembly: &cilmeta.Assembly{Name: cilmeta.AssemblyName{Name: name, Version: "1.0.0.0"}}}
}

func TestRegisterIsIdempotent(t *testing.T) {
	mod := moduleNamed("Acme.Core")
	r := New(nil, nil)

	first := r.Register(mod)
	second := r.Register(moduleNamed("Acme.Core"))

	if first != mod || second != mod {
		t.Errorf("Register() did not return the first-registered module on the second call")
	}
	if len(r.List()) != 1 {
		t.Errorf("List() = %d entries, want 1", len(r.List()))
	}
}

func TestRegisterSwallowsSymbolReadFailure(t *testing.T) {
	mod := moduleNamed("Acme.Core")
	fake := pe.NewInMemoryAssemblies(mod)

	r := New(fake, fake)
	if got := r.Register(mod); got != mod {
		t.Fatalf("Register() = %v, want %v", got, mod)
	}
}

func TestRegisterByAssemblyOpensLazily(t *testing.T) {
	mod := moduleNamed("Acme.Core")
	fake := pe.NewInMemoryAssemblies(mod)
	r := New(fake, fake)

	got, err := r.RegisterByAssembly(mod.FullName())
	if err != nil {
		t.Fatalf("RegisterByAssembly() error = %v", err)
	}
	if got != mod {
		t.Errorf("RegisterByAssembly() = %v, want %v", got, mod)
	}
	if !r.IsRegistered(mod.FullName()) {
		t.Errorf("IsRegistered() = false after RegisterByAssembly")
	}
}

func TestRegisterByAssemblyFailsWithNoOpener(t *testing.T) {
	r := New(nil, nil)
	if _, err := r.RegisterByAssembly("Acme.Core, Version=1.0.0.0, PublicKeyToken=null"); err == nil {
		t.Errorf("RegisterByAssembly() error = nil, want ResolutionFailed")
	}
}

func TestRegisterByAssemblyFailsWhenOpenerCannotFindIt(t *testing.T) {
	fake := pe.NewInMemoryAssemblies()
	r := New(fake, fake)
	if _, err := r.RegisterByAssembly("Missing.Assembly, Version=1.0.0.0, PublicKeyToken=null"); err == nil {
		t.Errorf("RegisterByAssembly() error = nil, want ResolutionFailed")
	}
}

func TestLocateIsRegisterByAssembly(t *testing.T) {
	mod := moduleNamed("Acme.Core")
	fake := pe.NewInMemoryAssemblies(mod)
	r := New(fake, fake)

	got, err := r.Locate(mod.FullName())
	if err != nil || got != mod {
		t.Errorf("Locate() = (%v, %v), want (%v, nil)", got, err, mod)
	}
}

func TestLookupDoesNotOpen(t *testing.T) {
	mod := moduleNamed("Acme.Core")
	fake := pe.NewInMemoryAssemblies(mod)
	r := New(fake, fake)

	if _, ok := r.Lookup(mod.FullName()); ok {
		t.Errorf("Lookup() ok = true before registration")
	}
	r.Register(mod)
	if got, ok := r.Lookup(mod.FullName()); !ok || got != mod {
		t.Errorf("Lookup() = (%v, %v) after registration, want (%v, true)", got, ok, mod)
	}
}

func TestListPreservesRegistrationOrder(t *testing.T) {
	a := moduleNamed("Acme.A")
	b := moduleNamed("Acme.B")
	r := New(nil, nil)
	r.Register(b)
	r.Register(a)

	list := r.List()
	if len(list) != 2 || list[0] != b || list[1] != a {
		t.Errorf("List() = %v, want [b, a] in registration order", list)
	}
}
