package ir

import "testing"

// TestLivenessDiamond builds the same diamond shape as
// TestBuilderDiamond and checks that the value read in the entry block
// (p) is not live past the branch, while the phi inputs defined in
// then/else are live out of their defining blocks but not live-in to
// them.
func TestLivenessDiamond(t *testing.T) {
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

	live := ComputeLiveness(fn)

	if _, ok := live.LiveOut(entry)[p]; ok {
		t.Fatalf("p should not be live-out of entry: it is only used by entry's own terminator")
	}
	if _, ok := live.LiveOut(thenB)[one]; !ok {
		t.Fatalf("one should be live-out of then (consumed by merge's phi)")
	}
	if _, ok := live.LiveIn(merge)[one]; ok {
		t.Fatalf("one should not be live-in to merge: phi operands are attributed to the predecessor, not the merge block")
	}
}

// TestLivenessStraightLineDeadValue checks that a value computed but
// never used anywhere is live nowhere (a precondition DCE relies on).
// Note a value consumed only within its own defining block (e.g. by
// that block's own terminator) is correctly absent from both live-in
// and live-out: cross-block liveness and "has a use" are different
// questions, see TestDCEKeepsSameBlockTerminatorOperand.
func TestLivenessStraightLineDeadValue(t *testing.T) {
	b, fn := NewBuilder("f", 0)
	b.SealBlock(fn.Entry)
	dead := b.Emit("", ConstValue{Val: Const{Kind: ConstInt, Int: 42}})
	used := b.Emit("", ConstValue{Val: Const{Kind: ConstInt, Int: 1}})
	b.SetTerminator(ReturnTerm{Value: used})

	live := ComputeLiveness(fn)
	if live.IsLive(dead) {
		t.Fatalf("dead value should not be live anywhere")
	}
	if live.IsLive(used) {
		t.Fatalf("used value is only read within its own block, so it should not appear in any live-in/live-out set")
	}
}
