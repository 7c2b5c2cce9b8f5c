// Package descriptor parses the textual member-descriptor grammar used
// to name a single method, constructor, field, property or event for
// import: "DeclaringType!member(params)" or "DeclaringType!kind name".
// Identifier normalization uses golang.org/x/text/cases and
// golang.org/x/text/width so a descriptor relayed through a localized
// build host's full-width punctuation still parses.
package descriptor

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"

	"github.com/cilgraft/cilgraft/internal/errs"
)

// Kind is the member kind a descriptor names.
type Kind int

const (
	KindConstructor Kind = iota
	KindMethod
	KindField
	KindProperty
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindConstructor:
		return "constructor"
	case KindMethod:
		return "method"
	case KindField:
		return "field"
	case KindProperty:
		return "property"
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Descriptor is the parsed, extensional identification of a source
// member: its declaring type, its kind, its name, and, for
// constructors/methods, its ordered parameter type names (with generic
// placeholders resolved positionally).
type Descriptor struct {
	DeclaringTypeFullName string
	Kind                  Kind
	MemberName            string
	GenericArity          int
	ParameterTypeNames    []string
}

var fold = cases.Fold()

// normalize narrows full-width punctuation/letters to their half-width
// equivalents before parsing, so a descriptor string relayed through a
// localized environment still matches ASCII grammar tokens. Member and type
// names stay exactly as written since CLR names are case-sensitive; only the
// keyword tokens (".ctor", "field", "prop", "event") are matched
// case-insensitively, via foldedKeyword below.
func normalize(s string) string {
	return width.Narrow.String(s)
}

// foldedKeyword case-folds only for the purpose of recognizing one of the
// fixed grammar keywords, leaving the original-case text untouched.
func foldedKeyword(s string) string {
	return fold.String(s)
}

// Parse parses a descriptor string into its declaring type, kind, name
// and (for constructors/methods) parameter type names.
func Parse(text string) (*Descriptor, error) {
	norm := normalize(strings.TrimSpace(text))
	bang := strings.IndexByte(norm, '!')
	if bang < 0 {
		return nil, errs.InvalidDescriptor(text, "missing '!' separating declaring type from member")
	}
	typeFullName := norm[:bang]
	if typeFullName == "" {
		return nil, errs.InvalidDescriptor(text, "empty declaring type")
	}
	memberSpec := norm[bang+1:]

	p := &parser{text: memberSpec, original: text}
	d, err := p.parseMemberSpec()
	if err != nil {
		return nil, err
	}
	d.DeclaringTypeFullName = typeFullName
	return d, nil
}

type parser struct {
	text     string
	original string
	pos      int
}

func (p *parser) parseMemberSpec() (*Descriptor, error) {
	folded := foldedKeyword(p.text)
	switch {
	case strings.HasPrefix(folded, ".ctor"):
		p.pos = len(".ctor")
		params, err := p.parseParenParamList()
		if err != nil {
			return nil, err
		}
		return &Descriptor{Kind: KindConstructor, MemberName: ".ctor", ParameterTypeNames: params}, nil

	case strings.HasPrefix(folded, "field "):
		name := strings.TrimSpace(p.text[len("field "):])
		if name == "" {
			return nil, errs.InvalidDescriptor(p.original, "empty field name")
		}
		return &Descriptor{Kind: KindField, MemberName: name}, nil

	case strings.HasPrefix(folded, "prop "):
		name := strings.TrimSpace(p.text[len("prop "):])
		if name == "" {
			return nil, errs.InvalidDescriptor(p.original, "empty property name")
		}
		return &Descriptor{Kind: KindProperty, MemberName: name}, nil

	case strings.HasPrefix(folded, "event "):
		name := strings.TrimSpace(p.text[len("event "):])
		if name == "" {
			return nil, errs.InvalidDescriptor(p.original, "empty event name")
		}
		return &Descriptor{Kind: KindEvent, MemberName: name}, nil

	default:
		return p.parseMethodSpec()
	}
}

func (p *parser) parseMethodSpec() (*Descriptor, error) {
	open := strings.IndexByte(p.text, '(')
	if open < 0 {
		return nil, errs.InvalidDescriptor(p.original, "method descriptor missing parameter list")
	}
	head := p.text[:open]
	arity := 0
	if backtick := strings.IndexByte(head, '`'); backtick >= 0 {
		name := head[:backtick]
		n, err := parsePositiveInt(head[backtick+1:])
		if err != nil {
			return nil, errs.InvalidDescriptor(p.original, "invalid generic arity")
		}
		arity = n
		head = name
	}
	if head == "" {
		return nil, errs.InvalidDescriptor(p.original, "empty method name")
	}
	p.pos = open
	params, err := p.parseParenParamList()
	if err != nil {
		return nil, err
	}
	return &Descriptor{Kind: KindMethod, MemberName: head, GenericArity: arity, ParameterTypeNames: params}, nil
}

func (p *parser) parseParenParamList() ([]string, error) {
	rest := p.text[p.pos:]
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return nil, errs.InvalidDescriptor(p.original, "parameter list must be enclosed in parentheses")
	}
	inner := strings.TrimSpace(rest[1 : len(rest)-1])
	if inner == "" {
		return nil, nil
	}
	parts := strings.Split(inner, ",")
	params := make([]string, len(parts))
	for i, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			return nil, errs.InvalidDescriptor(p.original, "empty parameter type in parameter list")
		}
		params[i] = trimmed
	}
	return resolveGenericPlaceholders(params, p.original)
}

// resolveGenericPlaceholders keeps every parameter type name as written. A
// name shaped like a generic placeholder ("T" or "t" followed by digits)
// is recorded on first sight and reused for later occurrences of the same
// name, so repeated placeholders come out identical. No concrete type is
// bound to a placeholder, and this step never returns an error.
func resolveGenericPlaceholders(params []string, original string) ([]string, error) {
	fixed := map[string]string{}
	out := make([]string, len(params))
	for i, p := range params {
		if !looksLikePlaceholder(p) {
			out[i] = p
			continue
		}
		if existing, ok := fixed[p]; ok {
			out[i] = existing
			continue
		}
		fixed[p] = p
		out[i] = p
	}
	return out, nil
}

func looksLikePlaceholder(s string) bool {
	if len(s) < 2 {
		return false
	}
	if s[0] != 'T' && s[0] != 't' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parsePositiveInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a digit: %q", r)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// MatchesKind checks a descriptor's kind against the kind its member
// name was actually found under, returning WrongMemberKind on a
// mismatch (e.g. a property descriptor pointing at what is actually a
// field).
func (d *Descriptor) MatchesKind(expected Kind) error {
	if d.Kind != expected {
		return errs.WrongMemberKind(d.DeclaringTypeFullName+"!"+d.MemberName, expected.String(), d.Kind.String())
	}
	return nil
}
