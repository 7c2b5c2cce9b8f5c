package errs

import "fmt"

// Diagnostic is the concrete error type every public cilgraft API returns.
// It pairs a taxonomy code with a human-readable message and, where
// relevant, the source/target entity names involved.
type Diagnostic struct {
	Code    string
	Message string
	Source  string // e.g. an assembly full name, a type full name
	Target  string // e.g. the target module name; "" if not applicable
}

func (d *Diagnostic) Error() string {
	if d.Source == "" {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	if d.Target == "" {
		return fmt.Sprintf("%s: %s (%s)", d.Code, d.Message, d.Source)
	}
	return fmt.Sprintf("%s: %s (%s -> %s)", d.Code, d.Message, d.Source, d.Target)
}

// ResolutionFailed builds a RES001 diagnostic for a source module that
// could not be opened.
func ResolutionFailed(assemblyFullName, reason string) *Diagnostic {
	return &Diagnostic{Code: RES001, Message: "failed to open source module: " + reason, Source: assemblyFullName}
}

// UnresolvableReference builds a SIG002 diagnostic for a plain type
// reference that the signature rewriter could resolve to neither a
// clonable definition nor an external assembly.
func UnresolvableReference(typeFullName string) *Diagnostic {
	return &Diagnostic{Code: SIG002, Message: "reference could not be resolved or classified as external", Source: typeFullName}
}

// MissingContext builds a SIG001 diagnostic for a method-owned generic
// parameter encountered with no enclosing method context.
func MissingContext(paramIndex int) *Diagnostic {
	return &Diagnostic{Code: SIG001, Message: fmt.Sprintf("method-owned generic parameter !!%d has no method context", paramIndex)}
}

// MergeFailed builds a MRG001 diagnostic wrapping a rewrite failure hit
// during the merge sweep.
func MergeFailed(providerFullName string, cause error) *Diagnostic {
	return &Diagnostic{Code: MRG001, Message: "rewrite failed during merge sweep: " + cause.Error(), Source: providerFullName}
}

// InvalidDescriptor builds a DSC001 diagnostic for a malformed descriptor
// or one naming a property with no accessors.
func InvalidDescriptor(text, reason string) *Diagnostic {
	return &Diagnostic{Code: DSC001, Message: "invalid descriptor: " + reason, Source: text}
}

// MemberNotFound builds a DSC002 diagnostic for a descriptor naming a
// member that does not exist, or whose signature does not match.
func MemberNotFound(declaringType, member string) *Diagnostic {
	return &Diagnostic{Code: DSC002, Message: "member not found", Source: declaringType, Target: member}
}

// WrongMemberKind builds a DSC003 diagnostic for a descriptor that named
// the wrong kind of member (e.g. a method descriptor pointing at a
// property).
func WrongMemberKind(text, expectedKind, actualKind string) *Diagnostic {
	return &Diagnostic{Code: DSC003, Message: fmt.Sprintf("expected a %s descriptor but found a %s", expectedKind, actualKind), Source: text}
}
