package cloner

import (
	"testing"

	"github.com/cilgraft/cilgraft/internal/cilmeta"
	"github.com/cilgraft/cilgraft/internal/clonemap"
	"github.com/cilgraft/cilgraft/internal/deferq"
	"github.com/cilgraft/cilgraft/internal/pe"
	"github.com/cilgraft/cilgraft/internal/registry"
	"github.com/cilgraft/cilgraft/internal/resolve"
	"github.com/cilgraft/cilgraft/internal/sigrewrite"
)

func newBodyTestCloner(t *testing.T, target *cilmeta.Module) *Cloner {
	t.Helper()
	reg := registry.New(pe.NewInMemoryAssemblies(), nil)
	classifier := &resolve.Classifier{
		Policy:                 resolve.NewAssemblyListPolicy(nil, reg),
		Registry:               reg,
		TargetAssemblyFullName: target.FullName(),
	}
	return New(target, clonemap.New(), deferq.New(), classifier, pe.NewInMemoryAssemblies(), Config{})
}

func TestCloneInstructionsRemapsBranchTargetsWithinBody(t *testing.T) {
	target := newTestModule("Acme.Target")
	c := newBodyTestCloner(t, target)

	ldc := &cilmeta.Instruction{Opcode: "ldc.i4.0", Operand: cilmeta.LiteralOperand{Value: int32(0)}}
	nop := &cilmeta.Instruction{Opcode: "nop", Operand: cilmeta.NoOperand{}}
	br := &cilmeta.Instruction{Opcode: "br", Operand: &cilmeta.BranchOperand{Target: nop}}
	source := &cilmeta.MethodBody{Instructions: []*cilmeta.Instruction{ldc, br, nop}}
	dst := &cilmeta.MethodBody{}

	if err := c.cloneInstructions(source, dst, &sigrewrite.Context{}); err != nil {
		t.Fatalf("cloneInstructions() error = %v", err)
	}
	if err := c.Queue.Drain(); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}

	if len(dst.Instructions) != 3 {
		t.Fatalf("dst.Instructions = %d entries, want 3", len(dst.Instructions))
	}
	brClone := dst.Instructions[1]
	op, ok := brClone.Operand.(*cilmeta.BranchOperand)
	if !ok {
		t.Fatalf("brClone.Operand = %#v, want *BranchOperand", brClone.Operand)
	}
	if op.Target != dst.Instructions[2] {
		t.Errorf("branch target = %v, want the cloned nop instruction, not the source one", op.Target)
	}
	lit, ok := dst.Instructions[0].Operand.(cilmeta.LiteralOperand)
	if !ok || lit.Value != int32(0) {
		t.Errorf("dst.Instructions[0].Operand = %#v, want LiteralOperand{0}", dst.Instructions[0].Operand)
	}
}

func TestCloneInstructionsRemapsSwitchTargets(t *testing.T) {
	target := newTestModule("Acme.Target")
	c := newBodyTestCloner(t, target)

	case0 := &cilmeta.Instruction{Opcode: "nop"}
	case1 := &cilmeta.Instruction{Opcode: "nop"}
	sw := &cilmeta.Instruction{Opcode: "switch", Operand: &cilmeta.SwitchOperand{Targets: []*cilmeta.Instruction{case0, case1}}}
	source := &cilmeta.MethodBody{Instructions: []*cilmeta.Instruction{sw, case0, case1}}
	dst := &cilmeta.MethodBody{}

	if err := c.cloneInstructions(source, dst, &sigrewrite.Context{}); err != nil {
		t.Fatalf("cloneInstructions() error = %v", err)
	}
	if err := c.Queue.Drain(); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}

	op := dst.Instructions[0].Operand.(*cilmeta.SwitchOperand)
	if len(op.Targets) != 2 || op.Targets[0] != dst.Instructions[1] || op.Targets[1] != dst.Instructions[2] {
		t.Errorf("switch targets not remapped to cloned instructions: %v", op.Targets)
	}
}

func TestCloneInstructionsRemapsExceptionHandlerAnchors(t *testing.T) {
	target := newTestModule("Acme.Target")
	c := newBodyTestCloner(t, target)

	tryStart := &cilmeta.Instruction{Opcode: "nop"}
	tryEnd := &cilmeta.Instruction{Opcode: "nop"}
	handlerStart := &cilmeta.Instruction{Opcode: "pop"}
	handlerEnd := &cilmeta.Instruction{Opcode: "leave"}
	source := &cilmeta.MethodBody{
		Instructions: []*cilmeta.Instruction{tryStart, tryEnd, handlerStart, handlerEnd},
		ExceptionHandlers: []*cilmeta.ExceptionHandler{{
			Kind:         cilmeta.HandlerFinally,
			TryStart:     tryStart,
			TryEnd:       tryEnd,
			HandlerStart: handlerStart,
			HandlerEnd:   handlerEnd,
		}},
	}
	dst := &cilmeta.MethodBody{}

	if err := c.cloneInstructions(source, dst, &sigrewrite.Context{}); err != nil {
		t.Fatalf("cloneInstructions() error = %v", err)
	}

	if len(dst.ExceptionHandlers) != 1 {
		t.Fatalf("dst.ExceptionHandlers = %d entries, want 1", len(dst.ExceptionHandlers))
	}
	h := dst.ExceptionHandlers[0]
	if h.TryStart != dst.Instructions[0] || h.TryEnd != dst.Instructions[1] ||
		h.HandlerStart != dst.Instructions[2] || h.HandlerEnd != dst.Instructions[3] {
		t.Errorf("exception handler anchors were not remapped to cloned instructions: %+v", h)
	}
}
