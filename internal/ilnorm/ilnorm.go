// Package ilnorm exposes a pure IL round-trip normalization function
// for comparing cloned output against expectations regardless of
// assembly-prefix or attribute-order differences that don't reflect a
// real mismatch. It has no package-level mutable state: every input
// the comparison depends on is a parameter.
package ilnorm

import "strings"

// coreFrameworkPrefixes are the assembly name prefixes canonicalized to
// the single "[System]" token.
var coreFrameworkPrefixes = []string{"mscorlib", "netstandard", "System."}

// Normalize canonicalizes assembly prefixes of registered source
// modules to the empty string and core-framework prefixes to
// "[System]".
func Normalize(text string, sourceAssemblies []string) string {
	out := text
	for _, full := range sourceAssemblies {
		name := assemblyShortName(full)
		if name == "" {
			continue
		}
		out = strings.ReplaceAll(out, "["+name+"]", "")
		out = strings.ReplaceAll(out, name+"::", "")
	}
	for _, prefix := range coreFrameworkPrefixes {
		out = replacePrefixedTokens(out, prefix, "[System]")
	}
	return out
}

// assemblyShortName extracts the name component of an assembly full name
// ("Acme.Core, Version=1.0.0.0, PublicKeyToken=null" -> "Acme.Core").
func assemblyShortName(full string) string {
	if i := strings.IndexByte(full, ','); i >= 0 {
		return full[:i]
	}
	return full
}

// replacePrefixedTokens replaces every bracketed or double-colon-qualified
// token beginning with prefix with replacement.
func replacePrefixedTokens(text, prefix, replacement string) string {
	var b strings.Builder
	for {
		idx := strings.Index(text, prefix)
		if idx < 0 {
			b.WriteString(text)
			break
		}
		end := idx + len(prefix)
		for end < len(text) && isIdentByte(text[end]) {
			end++
		}
		switch {
		case idx > 0 && text[idx-1] == '[' && end < len(text) && text[end] == ']':
			b.WriteString(text[:idx-1])
			b.WriteString(replacement)
			end++
		case (idx == 0 || !isIdentByte(text[idx-1])) && strings.HasPrefix(text[end:], "::"):
			b.WriteString(text[:idx])
			b.WriteString(replacement)
		default:
			b.WriteString(text[:end])
		}
		text = text[end:]
	}
	return b.String()
}

func isIdentByte(c byte) bool {
	return c == '.' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// AttributeOrderEquivalent reports whether two attribute-name sequences
// are equal up to permutation of the CompilerGenerated/DebuggerBrowsable
// pair. Any other difference in order or content is a real mismatch.
func AttributeOrderEquivalent(expected, actual []string) bool {
	if len(expected) != len(actual) {
		return false
	}
	expectedCount := map[string]int{}
	actualCount := map[string]int{}
	for _, e := range expected {
		expectedCount[e]++
	}
	for _, a := range actual {
		actualCount[a]++
	}
	if len(expectedCount) != len(actualCount) {
		return false
	}
	for k, v := range expectedCount {
		if actualCount[k] != v {
			return false
		}
	}
	return orderMatchesExceptSwappable(expected, actual)
}

var swappablePair = [2]string{"CompilerGenerated", "DebuggerBrowsable"}

func orderMatchesExceptSwappable(expected, actual []string) bool {
	if len(expected) != len(actual) {
		return false
	}
	for i := range expected {
		if expected[i] == actual[i] {
			continue
		}
		if isSwappablePair(expected[i], actual[i]) {
			continue
		}
		return false
	}
	return true
}

func isSwappablePair(a, b string) bool {
	return (a == swappablePair[0] && b == swappablePair[1]) ||
		(a == swappablePair[1] && b == swappablePair[0])
}
