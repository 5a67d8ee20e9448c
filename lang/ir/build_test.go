package ir

import "testing"

func TestBuilderStraightLine(t *testing.T) {
	b, fn := NewBuilder("straight", 0)
	b.SealBlock(fn.Entry)

	one := b.Emit("", ConstValue{Val: Const{Kind: ConstInt, Int: 1}})
	two := b.Emit("", ConstValue{Val: Const{Kind: ConstInt, Int: 2}})
	sum := b.Emit("", BinaryOp{Op: 0, X: one, Y: two})
	b.SetTerminator(ReturnTerm{Value: sum})
	fn.Exit = fn.Entry

	if probs := b.Verify(); len(probs) != 0 {
		t.Fatalf("unexpected problems: %v", probs)
	}
	if fn.NumBlocks() != 1 {
		t.Fatalf("expected 1 block, got %d", fn.NumBlocks())
	}
	if len(fn.Block(fn.Entry).Insts) != 3 {
		t.Fatalf("expected 3 insts, got %d", len(fn.Block(fn.Entry).Insts))
	}
}

// TestBuilderDiamond builds:
//
//	entry: branch p -> then, else
//	then:  x1 = 1; jump merge
//	else:  x2 = 2; jump merge
//	merge: x = phi(x1, x2); return x
//
// and checks that a genuine (non-trivial) phi survives construction.
func TestBuilderDiamond(t *testing.T) {
	const varX Variable = 1

	b, fn := NewBuilder("diamond", 1)
	entry := fn.Entry
	thenB := b.CreateBlock("then")
	elseB := b.CreateBlock("else")
	merge := b.CreateBlock("merge")

	b.SealBlock(entry)

	p := b.Emit("p", ReadLValue{Target: ParamLValue{Index: 0}})
	b.AddPred(thenB, entry)
	b.AddPred(elseB, entry)
	b.SetTerminator(BranchTerm{Cond: p, Then: thenB, Else: elseB})
	b.SealBlock(thenB)
	b.SealBlock(elseB)

	b.SetCurrentBlock(thenB)
	one := b.Emit("", ConstValue{Val: Const{Kind: ConstInt, Int: 1}})
	b.WriteVariable(varX, thenB, one)
	b.AddPred(merge, thenB)
	b.SetTerminator(JumpTerm{Target: merge})

	b.SetCurrentBlock(elseB)
	two := b.Emit("", ConstValue{Val: Const{Kind: ConstInt, Int: 2}})
	b.WriteVariable(varX, elseB, two)
	b.AddPred(merge, elseB)
	b.SetTerminator(JumpTerm{Target: merge})

	b.SealBlock(merge)
	b.SetCurrentBlock(merge)
	x := b.ReadVariable(varX, merge)
	b.SetTerminator(ReturnTerm{Value: x})
	fn.Exit = merge

	if probs := b.Verify(); len(probs) != 0 {
		t.Fatalf("unexpected problems: %v", probs)
	}

	mergeBlk := fn.Block(merge)
	if mergeBlk.PhiCount(fn) != 1 {
		t.Fatalf("expected merge block to have 1 phi, got %d", mergeBlk.PhiCount(fn))
	}
	phiInst := fn.Inst(mergeBlk.Insts[0])
	phi, ok := phiInst.Value.(Phi)
	if !ok {
		t.Fatalf("expected Phi, got %T", phiInst.Value)
	}
	if len(phi.Args) != 2 {
		t.Fatalf("expected 2 phi args, got %d", len(phi.Args))
	}
	if x != phiInst.ID {
		t.Fatalf("expected ReadVariable to return the phi itself, got %d vs %d", x, phiInst.ID)
	}
}

// TestBuilderTrivialPhiInLoop builds a loop where the looped variable is
// never reassigned in the body, so the phi inserted at the loop header
// must collapse to a Copy of the single incoming value once the header
// is sealed.
//
//	entry: i0 = 0; jump header
//	header: i = phi(i0, i);  branch cond -> body, exit
//	body: jump header          (i is never rewritten: phi is trivial)
//	exit: return i
func TestBuilderTrivialPhiInLoop(t *testing.T) {
	const varI Variable = 1

	b, fn := NewBuilder("loop", 0)
	entry := fn.Entry
	header := b.CreateBlock("header")
	body := b.CreateBlock("body")
	exit := b.CreateBlock("exit")

	b.SealBlock(entry)
	zero := b.Emit("", ConstValue{Val: Const{Kind: ConstInt, Int: 0}})
	b.WriteVariable(varI, entry, zero)
	b.AddPred(header, entry)
	b.SetTerminator(JumpTerm{Target: header})

	// header has two predecessors (entry, body) but body hasn't been
	// built yet: leave it unsealed until the back-edge is known.
	b.SetCurrentBlock(header)
	i := b.ReadVariable(varI, header)
	cond := b.Emit("", ConstValue{Val: Const{Kind: ConstBool, Bool: true}})
	b.AddPred(body, header)
	b.AddPred(exit, header)
	b.SetTerminator(BranchTerm{Cond: cond, Then: body, Else: exit})

	b.SetCurrentBlock(body)
	b.AddPred(header, body) // back-edge
	b.SetTerminator(JumpTerm{Target: header})
	b.SealBlock(header) // now that both preds of header are known
	b.SealBlock(body)

	b.SetCurrentBlock(exit)
	b.SealBlock(exit)
	iAtExit := b.ReadVariable(varI, exit)
	b.SetTerminator(ReturnTerm{Value: iAtExit})
	fn.Exit = exit

	if probs := b.Verify(); len(probs) != 0 {
		t.Fatalf("unexpected problems: %v", probs)
	}

	// The phi for varI at the header must have collapsed to a Copy (or
	// been rewritten away entirely), never surviving as a real Phi with
	// two distinct operands, since `i` is constant through the loop.
	headerBlk := fn.Block(header)
	for j := 0; j < headerBlk.PhiCount(fn); j++ {
		v := fn.Inst(headerBlk.Insts[j]).Value
		if _, ok := v.(Phi); ok {
			t.Fatalf("expected trivial phi to be eliminated, found real Phi at header")
		}
	}
	_ = i
}
