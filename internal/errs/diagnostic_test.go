package errs

import (
	"errors"
	"strings"
	"testing"
)

func TestDiagnosticErrorFormattingVariesByFieldsSet(t *testing.T) {
	cases := []struct {
		name string
		d    *Diagnostic
		want []string
	}{
		{"no source", &Diagnostic{Code: "X001", Message: "boom"}, []string{"X001", "boom"}},
		{"source only", ResolutionFailed("Acme.Core", "file not found"), []string{RES001, "Acme.Core"}},
		{"source and target", MemberNotFound("Acme.Core.Widget", "DoWork"), []string{DSC002, "Acme.Core.Widget", "DoWork", "->"}},
	}
	for _, c := range cases {
		msg := c.d.Error()
		for _, want := range c.want {
			if !strings.Contains(msg, want) {
				t.Errorf("%s: Error() = %q, want it to contain %q", c.name, msg, want)
			}
		}
	}
}

func TestMergeFailedWrapsCause(t *testing.T) {
	cause := errors.New("unresolvable reference")
	d := MergeFailed("Acme.Core", cause)
	if d.Code != MRG001 {
		t.Errorf("Code = %q, want %q", d.Code, MRG001)
	}
	if !strings.Contains(d.Error(), "unresolvable reference") {
		t.Errorf("Error() = %q, want it to contain the wrapped cause", d.Error())
	}
}

func TestWrongMemberKindNamesBothKinds(t *testing.T) {
	d := WrongMemberKind("Acme.Core.Widget!prop Name", "field", "property")
	if !strings.Contains(d.Message, "field") || !strings.Contains(d.Message, "property") {
		t.Errorf("Message = %q, want it to name both the expected and actual kind", d.Message)
	}
}
