// Package cloner implements the Type Cloner, Member Cloner, and
// Instruction Cloner. It is the largest component of the core: the
// graph-rewriting heart that clones a type shell and everything it owns,
// breaking mutually recursive cycles via the clone maps and the
// deferred-action queue.
package cloner

import (
	"github.com/cilgraft/cilgraft/internal/cilmeta"
	"github.com/cilgraft/cilgraft/internal/clonemap"
	"github.com/cilgraft/cilgraft/internal/deferq"
	"github.com/cilgraft/cilgraft/internal/pe"
	"github.com/cilgraft/cilgraft/internal/sigrewrite"
)

// NamespaceDecorator is applied to every cloned top-level type's
// namespace. Nested types inherit their declaring type's (already
// decorated) namespace instead of being decorated a second time.
type NamespaceDecorator func(string) string

// Config carries the import-session options that affect the Type Cloner
// directly.
type Config struct {
	HideImportedTypes  bool
	NamespaceDecorator NamespaceDecorator // nil means identity
}

// Cloner is the Type/Member/Instruction Cloner, scoped to one target
// module and one set of clone maps for the duration of a top-level entry
// call.
type Cloner struct {
	Target     *cilmeta.Module
	Maps       *clonemap.Maps
	Queue      *deferq.Queue
	Classifier sigrewrite.ExternalResolver
	Importer   pe.Importer
	Config     Config

	rewriter *sigrewrite.Rewriter
}

// New builds a Cloner wired to its own Signature Rewriter (the Cloner
// itself is the Rewriter's TypeCloner — accepting an interface lets the
// two packages refer to each other without an import cycle).
func New(target *cilmeta.Module, maps *clonemap.Maps, queue *deferq.Queue, classifier sigrewrite.ExternalResolver, importer pe.Importer, cfg Config) *Cloner {
	c := &Cloner{
		Target:     target,
		Maps:       maps,
		Queue:      queue,
		Classifier: classifier,
		Importer:   importer,
		Config:     cfg,
	}
	c.rewriter = sigrewrite.New(c, classifier, importer, target)
	return c
}

// Rewriter exposes the Cloner's Signature Rewriter for callers (the merge
// driver) that need to rewrite references without going through a clone.
func (c *Cloner) Rewriter() *sigrewrite.Rewriter { return c.rewriter }

func cloneMarshalInfo(m *cilmeta.MarshalInfo) *cilmeta.MarshalInfo {
	if m == nil {
		return nil
	}
	clone := &cilmeta.MarshalInfo{NativeType: m.NativeType, Extra: append([]byte(nil), m.Extra...)}
	return clone
}
