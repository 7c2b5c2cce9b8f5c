// Package importer owns the top-level entry points of a cloning session:
// import a type, import a member by descriptor, list imported
// types/modules, and merge. Each entry point runs to completion on the
// calling goroutine, draining the deferred-action queue before
// returning; each builds (or reuses) exactly the collaborators it needs
// and hands off to the core packages.
package importer

import (
	"fmt"

	"github.com/cilgraft/cilgraft/internal/cilmeta"
	"github.com/cilgraft/cilgraft/internal/clonemap"
	"github.com/cilgraft/cilgraft/internal/cloner"
	"github.com/cilgraft/cilgraft/internal/config"
	"github.com/cilgraft/cilgraft/internal/deferq"
	"github.com/cilgraft/cilgraft/internal/descriptor"
	"github.com/cilgraft/cilgraft/internal/errs"
	"github.com/cilgraft/cilgraft/internal/merge"
	"github.com/cilgraft/cilgraft/internal/pe"
	"github.com/cilgraft/cilgraft/internal/registry"
	"github.com/cilgraft/cilgraft/internal/resolve"
)

// Session is one import session scoped to a single target module:
// source modules are opened lazily and held for the session's lifetime;
// the clone maps accumulate across every top-level call made against
// this Session.
type Session struct {
	Target   *cilmeta.Module
	Registry *registry.Registry
	Maps     *clonemap.Maps
	Cloner   *cloner.Cloner

	classifier *resolve.Classifier
}

// New builds a Session for one target module, wiring the resolver policy
// named by cfg and the clone-time options (HideImportedTypes, namespace
// decoration) it carries. opener/symbols back the source module
// registry; extImporter is the metadata library's external-reference
// importer. pathOf is consulted only by the local-reference policy; it
// reports an assembly's on-disk path, a concern the metadata library
// owns, not the core — pass nil when cfg selects the assembly-list
// policy instead.
func New(target *cilmeta.Module, cfg *config.Config, opener pe.AssemblyOpener, symbols pe.SymbolReader, extImporter pe.Importer, pathOf func(assemblyFullName string) (string, bool)) (*Session, error) {
	reg := registry.New(opener, symbols)

	policy, err := buildPolicy(cfg, reg, pathOf)
	if err != nil {
		return nil, err
	}

	classifier := &resolve.Classifier{
		Policy:                 policy,
		Registry:               reg,
		TargetAssemblyFullName: target.FullName(),
	}

	maps := clonemap.New()
	queue := deferq.New()
	clonerCfg := cloner.Config{HideImportedTypes: cfg.HideImportedTypes, NamespaceDecorator: cfg.Decorator()}
	c := cloner.New(target, maps, queue, classifier, extImporter, clonerCfg)

	return &Session{Target: target, Registry: reg, Maps: maps, Cloner: c, classifier: classifier}, nil
}

func buildPolicy(cfg *config.Config, reg *registry.Registry, pathOf func(string) (string, bool)) (resolve.Policy, error) {
	switch cfg.ResolverPolicy {
	case config.PolicyLocalReference:
		if pathOf == nil {
			return nil, fmt.Errorf("importer: local-reference resolver policy requires a path lookup")
		}
		return resolve.NewLocalReferencePolicy(cfg.TargetModule, reg, pathOf), nil
	default:
		return resolve.NewAssemblyListPolicy(cfg.AssemblyAllowList, reg), nil
	}
}

// Classifier exposes the session's external/mergeable classifier for
// read-only callers (the explore REPL) that need to answer "would this be
// cloned or left external" without performing a clone.
func (s *Session) Classifier() *resolve.Classifier { return s.classifier }

// RegisterSource registers a source module with the session's registry,
// the first step of every top-level entry point.
func (s *Session) RegisterSource(mod *cilmeta.Module) *cilmeta.Module {
	return s.Registry.Register(mod)
}

// ImportType clones source into the target module, then drains the
// deferred queue to empty before returning.
func (s *Session) ImportType(source *cilmeta.TypeDef) (*cilmeta.TypeDef, error) {
	s.RegisterSource(source.OwningModule())
	cloned, err := s.Cloner.CloneType(source)
	if err != nil {
		return nil, err
	}
	if err := s.Cloner.Queue.Drain(); err != nil {
		return nil, err
	}
	return cloned, nil
}

// ImportMember resolves the descriptor's declaring type against src,
// locates the named member, clones it, and drains the queue. A miss on
// the descriptor's own kind is checked against the type's other three
// member collections before being reported: a name that exists under a
// different kind (a property descriptor pointing at what is actually a
// field, say) is an InvalidDescriptor-class mistake, not a missing
// member, so it is reported as WrongMemberKind instead of
// MemberNotFound.
func (s *Session) ImportMember(src *cilmeta.Module, d *descriptor.Descriptor) (interface{}, error) {
	s.RegisterSource(src)
	declType := findTopLevelOrNestedType(src, d.DeclaringTypeFullName)
	if declType == nil {
		return nil, errs.MemberNotFound(d.DeclaringTypeFullName, d.MemberName)
	}

	var result interface{}
	var cloneErr error

	switch d.Kind {
	case descriptor.KindConstructor, descriptor.KindMethod:
		m := findMethod(declType, d)
		if m == nil {
			return nil, memberNotFoundOrWrongKind(declType, d)
		}
		if _, err := s.Cloner.CloneType(declType); err != nil {
			return nil, err
		}
		result, cloneErr = lookupClonedMethod(s.Maps, m)

	case descriptor.KindField:
		f := findField(declType, d.MemberName)
		if f == nil {
			return nil, memberNotFoundOrWrongKind(declType, d)
		}
		if _, err := s.Cloner.CloneType(declType); err != nil {
			return nil, err
		}
		result, cloneErr = lookupClonedField(s.Maps, declType, f)

	case descriptor.KindProperty:
		p := findProperty(declType, d.MemberName)
		if p == nil {
			return nil, memberNotFoundOrWrongKind(declType, d)
		}
		if p.GetMethod == nil && p.SetMethod == nil {
			return nil, errs.InvalidDescriptor(d.DeclaringTypeFullName+"!prop "+d.MemberName, "property has no accessors")
		}
		if _, err := s.Cloner.CloneType(declType); err != nil {
			return nil, err
		}
		result, cloneErr = lookupClonedProperty(s.Maps, declType, p)

	case descriptor.KindEvent:
		e := findEvent(declType, d.MemberName)
		if e == nil {
			return nil, memberNotFoundOrWrongKind(declType, d)
		}
		if _, err := s.Cloner.CloneType(declType); err != nil {
			return nil, err
		}
		result, cloneErr = lookupClonedEvent(s.Maps, declType, e)
	}

	if cloneErr != nil {
		return nil, cloneErr
	}
	if err := s.Cloner.Queue.Drain(); err != nil {
		return nil, err
	}
	return result, nil
}

// memberNotFoundOrWrongKind reports why a descriptor's own-kind lookup
// missed: if its member name exists under one of the type's other three
// member collections, that mismatch is the real problem, so
// d.MatchesKind surfaces it as WrongMemberKind; otherwise the name
// genuinely isn't there, so MemberNotFound stands.
func memberNotFoundOrWrongKind(t *cilmeta.TypeDef, d *descriptor.Descriptor) error {
	if kind, ok := findMemberKindAnywhere(t, d.MemberName); ok {
		if err := d.MatchesKind(kind); err != nil {
			return err
		}
	}
	return errs.MemberNotFound(d.DeclaringTypeFullName, d.MemberName)
}

// findMemberKindAnywhere reports the kind a member name is declared
// under on t, searching fields, properties, events and methods in turn.
func findMemberKindAnywhere(t *cilmeta.TypeDef, name string) (descriptor.Kind, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return descriptor.KindField, true
		}
	}
	for _, p := range t.Properties {
		if p.Name == name {
			return descriptor.KindProperty, true
		}
	}
	for _, e := range t.Events {
		if e.Name == name {
			return descriptor.KindEvent, true
		}
	}
	for _, m := range t.Methods {
		if m.Name == name {
			if name == ".ctor" {
				return descriptor.KindConstructor, true
			}
			return descriptor.KindMethod, true
		}
	}
	return 0, false
}

// ListImportedTypes is the "List imported types" entry point: mapping
// source full name -> cloned top-level type.
func (s *Session) ListImportedTypes() map[string]*cilmeta.TypeDef {
	return s.Maps.ImportedTypes()
}

// ListImportedModules is the "List imported modules" entry point.
func (s *Session) ListImportedModules() []*cilmeta.Module {
	return s.Registry.List()
}

// Merge is the "Merge" entry point: runs the Merge Driver sweep over the
// target module, then drains anything the sweep deferred.
func (s *Session) Merge() error {
	driver := merge.New(s.Target, s.Cloner.Rewriter(), s.Registry)
	if err := driver.Run(); err != nil {
		return err
	}
	return s.Cloner.Queue.Drain()
}

func findTopLevelOrNestedType(mod *cilmeta.Module, fullName string) *cilmeta.TypeDef {
	for _, t := range mod.Types {
		if found := matchTypeFullName(t, fullName); found != nil {
			return found
		}
	}
	return nil
}

func matchTypeFullName(t *cilmeta.TypeDef, fullName string) *cilmeta.TypeDef {
	if t.FullName() == fullName {
		return t
	}
	for _, nested := range t.NestedTypes {
		if found := matchTypeFullName(nested, fullName); found != nil {
			return found
		}
	}
	return nil
}

func findMethod(t *cilmeta.TypeDef, d *descriptor.Descriptor) *cilmeta.MethodDef {
	name := d.MemberName
	for _, m := range t.Methods {
		if m.Name != name {
			continue
		}
		if len(m.Parameters) != len(d.ParameterTypeNames) {
			continue
		}
		if d.Kind == descriptor.KindMethod && len(m.GenericParams) != d.GenericArity {
			continue
		}
		return m
	}
	return nil
}

func findField(t *cilmeta.TypeDef, name string) *cilmeta.FieldDef {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func findProperty(t *cilmeta.TypeDef, name string) *cilmeta.PropertyDef {
	for _, p := range t.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func findEvent(t *cilmeta.TypeDef, name string) *cilmeta.EventDef {
	for _, e := range t.Events {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// lookupClonedMethod looks up source's clone by source's own identity:
// cloneMethod (internal/cloner/member.go) keys the method map by the
// source method's Identity(), computed from its (source-side) declaring
// type, not the clone's — so the lookup key here must be the source
// identity too.
func lookupClonedMethod(maps *clonemap.Maps, source *cilmeta.MethodDef) (*cilmeta.MethodDef, error) {
	if cloned, ok := maps.LookupMethod(source.Identity()); ok {
		return cloned, nil
	}
	return nil, fmt.Errorf("importer: method %s was not cloned with its declaring type", source.Identity())
}

func lookupClonedField(maps *clonemap.Maps, source *cilmeta.TypeDef, field *cilmeta.FieldDef) (*cilmeta.FieldDef, error) {
	declClone, ok := maps.LookupType(source.FullName())
	if !ok {
		return nil, fmt.Errorf("importer: declaring type %s was not cloned", source.FullName())
	}
	for _, f := range declClone.Fields {
		if f.Name == field.Name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("importer: field %s not found on cloned type %s", field.Name, declClone.FullName())
}

func lookupClonedProperty(maps *clonemap.Maps, source *cilmeta.TypeDef, prop *cilmeta.PropertyDef) (*cilmeta.PropertyDef, error) {
	declClone, ok := maps.LookupType(source.FullName())
	if !ok {
		return nil, fmt.Errorf("importer: declaring type %s was not cloned", source.FullName())
	}
	for _, p := range declClone.Properties {
		if p.Name == prop.Name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("importer: property %s not found on cloned type %s", prop.Name, declClone.FullName())
}

func lookupClonedEvent(maps *clonemap.Maps, source *cilmeta.TypeDef, evt *cilmeta.EventDef) (*cilmeta.EventDef, error) {
	declClone, ok := maps.LookupType(source.FullName())
	if !ok {
		return nil, fmt.Errorf("importer: declaring type %s was not cloned", source.FullName())
	}
	for _, e := range declClone.Events {
		if e.Name == evt.Name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("importer: event %s not found on cloned type %s", evt.Name, declClone.FullName())
}
