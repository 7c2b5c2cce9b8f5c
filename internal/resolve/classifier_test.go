package resolve

import (
	"errors"
	"testing"

	"github.com/cilgraft/cilgraft/internal/cilmeta"
)

type fakeLocator struct {
	modules map[string]*cilmeta.Module
}

func (f *fakeLocator) Locate(assemblyFullName string) (*cilmeta.Module, error) {
	if mod, ok := f.modules[assemblyFullName]; ok {
		return mod, nil
	}
	return nil, errors.New("not found")
}

type fakeRegistry struct {
	registered map[string]*cilmeta.Module
}

func (f *fakeRegistry) IsRegistered(assemblyFullName string) bool {
	_, ok := f.registered[assemblyFullName]
	return ok
}

func (f *fakeRegistry) Lookup(assemblyFullName string) (*cilmeta.Module, bool) {
	mod, ok := f.registered[assemblyFullName]
	return mod, ok
}

func moduleNamed(name string) *cilmeta.Module {
	return &cilmeta.Module{Assembly: &cilmeta.Assembly{Name: cilmeta.AssemblyName{Name: name, Version: "1.0.0.0"}}}
}

func TestClassifierIsExternalTargetAssemblyIsNeverExternal(t *testing.T) {
	target := moduleNamed("Acme.Target")
	c := &Classifier{
		Policy:                 NewAssemblyListPolicy(nil, &fakeLocator{}),
		Registry:               &fakeRegistry{registered: map[string]*cilmeta.Module{}},
		TargetAssemblyFullName: target.FullName(),
	}
	if c.IsExternal(nil, target.FullName()) {
		t.Errorf("IsExternal(target) = true, want false")
	}
}

func TestClassifierIsExternalMergeableByPolicyIsNotExternal(t *testing.T) {
	source := moduleNamed("Acme.Core")
	policy := NewAssemblyListPolicy([]string{source.FullName()}, &fakeLocator{modules: map[string]*cilmeta.Module{source.FullName(): source}})
	c := &Classifier{
		Policy:                 policy,
		Registry:               &fakeRegistry{registered: map[string]*cilmeta.Module{}},
		TargetAssemblyFullName: moduleNamed("Acme.Target").FullName(),
	}
	if c.IsExternal(nil, source.FullName()) {
		t.Errorf("IsExternal(mergeable source) = true, want false")
	}
}

func TestClassifierIsExternalAlreadyRegisteredIsNotExternal(t *testing.T) {
	source := moduleNamed("Acme.Core")
	c := &Classifier{
		Policy:                 NewAssemblyListPolicy(nil, &fakeLocator{}),
		Registry:               &fakeRegistry{registered: map[string]*cilmeta.Module{source.FullName(): source}},
		TargetAssemblyFullName: moduleNamed("Acme.Target").FullName(),
	}
	if c.IsExternal(nil, source.FullName()) {
		t.Errorf("IsExternal(already-registered) = true, want false")
	}
}

func TestClassifierIsExternalUnknownAssemblyIsExternal(t *testing.T) {
	c := &Classifier{
		Policy:                 NewAssemblyListPolicy(nil, &fakeLocator{}),
		Registry:               &fakeRegistry{registered: map[string]*cilmeta.Module{}},
		TargetAssemblyFullName: moduleNamed("Acme.Target").FullName(),
	}
	if !c.IsExternal(nil, moduleNamed("System.Runtime").FullName()) {
		t.Errorf("IsExternal(unknown) = false, want true")
	}
}

func TestClassifierResolveModuleFallsBackToRegistry(t *testing.T) {
	source := moduleNamed("Acme.Core")
	c := &Classifier{
		Policy:                 NewAssemblyListPolicy(nil, &fakeLocator{}),
		Registry:               &fakeRegistry{registered: map[string]*cilmeta.Module{source.FullName(): source}},
		TargetAssemblyFullName: moduleNamed("Acme.Target").FullName(),
	}
	mod, ok := c.ResolveModule(nil, source.FullName())
	if !ok || mod != source {
		t.Errorf("ResolveModule() = (%v, %v), want (%v, true)", mod, ok, source)
	}
}

func TestAssemblyListPolicyRejectsUnlistedAssembly(t *testing.T) {
	p := NewAssemblyListPolicy([]string{"Acme.Core, Version=1.0.0.0, PublicKeyToken=null"}, &fakeLocator{})
	if _, ok := p.Resolve(nil, "Other.Assembly, Version=1.0.0.0, PublicKeyToken=null"); ok {
		t.Errorf("Resolve(unlisted) ok = true, want false")
	}
}

func TestLocalReferencePolicyAcceptsPathUnderTargetDir(t *testing.T) {
	source := moduleNamed("Acme.Plugin")
	pathOf := func(name string) (string, bool) {
		if name == source.FullName() {
			return "/repo/target/bin/Acme.Plugin.dll", true
		}
		return "", false
	}
	p := NewLocalReferencePolicy("/repo/target", &fakeLocator{modules: map[string]*cilmeta.Module{source.FullName(): source}}, pathOf)

	mod, ok := p.Resolve(nil, source.FullName())
	if !ok || mod != source {
		t.Fatalf("Resolve() = (%v, %v), want (%v, true)", mod, ok, source)
	}
}

func TestLocalReferencePolicyRejectsPathOutsideTargetDirAndCachesNegative(t *testing.T) {
	name := "System.Runtime, Version=1.0.0.0, PublicKeyToken=null"
	calls := 0
	pathOf := func(string) (string, bool) {
		calls++
		return "/usr/share/dotnet/shared/System.Runtime.dll", true
	}
	p := NewLocalReferencePolicy("/repo/target", &fakeLocator{}, pathOf)

	if _, ok := p.Resolve(nil, name); ok {
		t.Errorf("Resolve(outside target dir) ok = true, want false")
	}
	if _, ok := p.Resolve(nil, name); ok {
		t.Errorf("Resolve() (second call) ok = true, want false")
	}
	if calls != 1 {
		t.Errorf("pathOf called %d times, want 1 (negative cache should skip the second lookup)", calls)
	}
}

func TestLocalReferencePolicyRejectsUnknownPath(t *testing.T) {
	p := NewLocalReferencePolicy("/repo/target", &fakeLocator{}, func(string) (string, bool) { return "", false })
	if _, ok := p.Resolve(nil, "Unknown.Assembly"); ok {
		t.Errorf("Resolve(unknown path) ok = true, want false")
	}
}
