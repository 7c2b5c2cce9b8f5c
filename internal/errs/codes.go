// Package errs centralizes the diagnostic code taxonomy for cilgraft.
// Every error surfaced from a top-level entry point carries one of these
// codes so build-host logs and CLI output stay machine-greppable.
package errs

// Error code constants organized by phase. Each constant names a specific
// failure condition raised by exactly one component.
const (
	// ============================================================================
	// Resolution Errors (RES###)
	// ============================================================================

	// RES001 indicates a source module could not be opened: unknown
	// on-disk location, or the file could not be read.
	RES001 = "RES001"

	// ============================================================================
	// Signature Rewriting Errors (SIG###)
	// ============================================================================

	// SIG001 indicates a method-owned generic parameter was encountered
	// during signature rewriting without a method context.
	SIG001 = "SIG001"

	// SIG002 indicates a plain type reference could not be resolved to a
	// definition and was not classifiable as external.
	SIG002 = "SIG002"

	// ============================================================================
	// Merge Errors (MRG###)
	// ============================================================================

	// MRG001 indicates the merge sweep encountered a provider (type,
	// member, or custom-attribute owner) that the signature rewriter
	// could not process.
	MRG001 = "MRG001"

	// ============================================================================
	// Descriptor Errors (DSC###)
	// ============================================================================

	// DSC001 indicates a descriptor was malformed, or named a property
	// that has no accessors.
	DSC001 = "DSC001"

	// DSC002 indicates a descriptor named a declaring type/member that
	// does not exist, or whose signature does not match.
	DSC002 = "DSC002"

	// DSC003 indicates a descriptor pointed at the wrong member kind (a
	// method descriptor used where a property was expected, etc).
	DSC003 = "DSC003"
)
