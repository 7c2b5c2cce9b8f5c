package cloner

import (
	"fmt"

	"github.com/cilgraft/cilgraft/internal/cilmeta"
	"github.com/cilgraft/cilgraft/internal/deferq"
	"github.com/cilgraft/cilgraft/internal/sigrewrite"
)

// cloneInstructions clones a method body's instruction list in two passes
// over the source instruction list: the first allocates a clone
// for every instruction with a placeholder operand and builds the
// source-to-clone map an operand or exception handler anchor can be
// remapped through; the second fills in every operand, deferring anything
// that can itself require a clone (methods, fields, branch targets) to the
// Operands phase of the queue so forward references within the same body
// resolve.
func (c *Cloner) cloneInstructions(source, target *cilmeta.MethodBody, ctx *sigrewrite.Context) error {
	localMap := make(map[*cilmeta.Instruction]*cilmeta.Instruction, len(source.Instructions))
	target.Instructions = make([]*cilmeta.Instruction, len(source.Instructions))
	for i, src := range source.Instructions {
		clone := &cilmeta.Instruction{Opcode: src.Opcode, Operand: cilmeta.NoOperand{}, SequencePoint: src.SequencePoint}
		target.Instructions[i] = clone
		localMap[src] = clone
	}

	for i, src := range source.Instructions {
		if err := c.scheduleOperand(src, target.Instructions[i], localMap, ctx); err != nil {
			return err
		}
	}

	for _, h := range source.ExceptionHandlers {
		clone := &cilmeta.ExceptionHandler{
			Kind:         h.Kind,
			TryStart:     localMap[h.TryStart],
			TryEnd:       localMap[h.TryEnd],
			HandlerStart: localMap[h.HandlerStart],
			HandlerEnd:   localMap[h.HandlerEnd],
		}
		if h.Kind == cilmeta.HandlerFilter {
			clone.FilterStart = localMap[h.FilterStart]
		}
		if h.Kind == cilmeta.HandlerCatch {
			rewritten, err := c.rewriter.Rewrite(h.CatchType, ctx)
			if err != nil {
				return err
			}
			clone.CatchType = rewritten
		}
		target.ExceptionHandlers = append(target.ExceptionHandlers, clone)
	}

	if source.Debug != nil {
		debug := &cilmeta.DebugScope{
			Start: localMap[source.Debug.Start],
			End:   localMap[source.Debug.End],
		}
		debug.SequencePoints = append(debug.SequencePoints, source.Debug.SequencePoints...)
		debug.Locals = append(debug.Locals, source.Debug.Locals...)
		target.Debug = debug
	}

	return nil
}

// scheduleOperand clones or defers the clone of one instruction's operand.
// Operands requiring no further resolution (no-operand, literal) or
// already resolved through context
// (type references) are cloned immediately; everything that can itself
// require cloning a method, field or sibling instruction still being
// cloned is deferred to the Operands phase.
func (c *Cloner) scheduleOperand(src, dst *cilmeta.Instruction, localMap map[*cilmeta.Instruction]*cilmeta.Instruction, ctx *sigrewrite.Context) error {
	switch op := src.Operand.(type) {
	case nil, cilmeta.NoOperand:
		dst.Operand = cilmeta.NoOperand{}

	case cilmeta.LiteralOperand:
		dst.Operand = cilmeta.LiteralOperand{Value: op.Value}

	case *cilmeta.TypeRefOperand:
		rewritten, err := c.rewriter.Rewrite(op.Type, ctx)
		if err != nil {
			return err
		}
		dst.Operand = &cilmeta.TypeRefOperand{Type: rewritten}

	case *cilmeta.MethodDefOperand:
		method := op.Method
		c.Queue.Enqueue(deferq.PriorityOperands, func() error {
			cloned, err := c.cloneMethodDefOperand(method)
			if err != nil {
				return err
			}
			dst.Operand = &cilmeta.MethodDefOperand{Method: cloned}
			return nil
		})

	case *cilmeta.GenericInstanceMethodOperand:
		instance := op.Instance
		c.Queue.Enqueue(deferq.PriorityOperands, func() error {
			cloned, err := c.cloneMethodReferable(instance, ctx)
			if err != nil {
				return err
			}
			gim, ok := cloned.(*cilmeta.GenericInstanceMethod)
			if !ok {
				return fmt.Errorf("cloner: generic instance method operand cloned to unexpected type %T", cloned)
			}
			dst.Operand = &cilmeta.GenericInstanceMethodOperand{Instance: gim}
			return nil
		})

	case *cilmeta.MethodRefOperand:
		ref := op.Ref
		c.Queue.Enqueue(deferq.PriorityOperands, func() error {
			cloned, err := c.cloneMethodReferable(ref, ctx)
			if err != nil {
				return err
			}
			dst.Operand = &cilmeta.MethodRefOperand{Ref: toMethodRef(cloned)}
			return nil
		})

	case *cilmeta.FieldRefOperand:
		field := op.Field
		c.Queue.Enqueue(deferq.PriorityOperands, func() error {
			cloned, err := c.cloneFieldReferable(field, ctx)
			if err != nil {
				return err
			}
			dst.Operand = &cilmeta.FieldRefOperand{Field: cloned}
			return nil
		})

	case *cilmeta.BranchOperand:
		target := op.Target
		c.Queue.Enqueue(deferq.PriorityOperands, func() error {
			mapped, ok := localMap[target]
			if !ok {
				return fmt.Errorf("cloner: branch target not found within cloned body")
			}
			dst.Operand = &cilmeta.BranchOperand{Target: mapped}
			return nil
		})

	case *cilmeta.SwitchOperand:
		targets := op.Targets
		c.Queue.Enqueue(deferq.PriorityOperands, func() error {
			mapped := make([]*cilmeta.Instruction, len(targets))
			for i, t := range targets {
				m, ok := localMap[t]
				if !ok {
					return fmt.Errorf("cloner: switch target not found within cloned body")
				}
				mapped[i] = m
			}
			dst.Operand = &cilmeta.SwitchOperand{Targets: mapped}
			return nil
		})

	default:
		return fmt.Errorf("cloner: unhandled operand kind %T", src.Operand)
	}
	return nil
}

// toMethodRef type-asserts a cloned MethodReferable back to a *MethodRef.
// cloneMethodReferable always returns *MethodRef for a *MethodRef input
// (see member.go), so this assertion cannot fail in practice; it is kept
// explicit rather than silently widening the operand's static shape.
func toMethodRef(ref cilmeta.MethodReferable) *cilmeta.MethodRef {
	if mr, ok := ref.(*cilmeta.MethodRef); ok {
		return mr
	}
	return nil
}
