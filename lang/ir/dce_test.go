package ir

import "testing"

func TestDCERemovesUnusedPureValue(t *testing.T) {
	b, fn := NewBuilder("f", 0)
	b.SealBlock(fn.Entry)
	dead := b.Emit("", ConstValue{Val: Const{Kind: ConstInt, Int: 42}})
	used := b.Emit("", ConstValue{Val: Const{Kind: ConstInt, Int: 1}})
	b.SetTerminator(ReturnTerm{Value: used})

	removed := RemoveDeadInstructions(fn)
	if removed != 1 {
		t.Fatalf("expected 1 removed instruction, got %d", removed)
	}
	blk := fn.Block(fn.Entry)
	if len(blk.Insts) != 1 || blk.Insts[0] != used {
		t.Fatalf("expected only the used instruction to remain, got %v", blk.Insts)
	}
	_ = dead
}

// TestDCEKeepsSameBlockTerminatorOperand guards against a DCE that
// mistakenly keys off cross-block liveness only: a value read solely by
// its own block's terminator must still be kept.
func TestDCEKeepsSameBlockTerminatorOperand(t *testing.T) {
	b, fn := NewBuilder("f", 0)
	b.SealBlock(fn.Entry)
	used := b.Emit("", ConstValue{Val: Const{Kind: ConstInt, Int: 7}})
	b.SetTerminator(ReturnTerm{Value: used})

	removed := RemoveDeadInstructions(fn)
	if removed != 0 {
		t.Fatalf("expected no removal, got %d", removed)
	}
}

// TestDCEKeepsSideEffectingCallEvenIfUnused checks that a Call is never
// removed purely because its result is discarded.
func TestDCEKeepsSideEffectingCallEvenIfUnused(t *testing.T) {
	b, fn := NewBuilder("f", 0)
	b.SealBlock(fn.Entry)
	fnVal := b.Emit("", ReadLValue{Target: ModuleLValue{Name: "print"}})
	arg := b.Emit("", ConstValue{Val: Const{Kind: ConstString, Str: "hi"}})
	b.Emit("", Call{Fn: fnVal, Args: []InstId{arg}})
	b.SetTerminator(ReturnTerm{Value: NoInst})

	removed := RemoveDeadInstructions(fn)
	if removed != 0 {
		t.Fatalf("expected the call (and its operands) to be kept, removed %d", removed)
	}
}

// TestDCEChainOfDeadValues checks that a chain of purely-computed dead
// values (a reads b reads c, none ultimately used) is fully removed in
// one pass, since markUsed computes reachability over the whole
// function before any sweep.
func TestDCEChainOfDeadValues(t *testing.T) {
	b, fn := NewBuilder("f", 0)
	b.SealBlock(fn.Entry)
	c := b.Emit("", ConstValue{Val: Const{Kind: ConstInt, Int: 1}})
	bb := b.Emit("", UnaryOp{Op: 0, X: c})
	a := b.Emit("", Copy{Src: bb})
	keep := b.Emit("", ConstValue{Val: Const{Kind: ConstInt, Int: 99}})
	b.SetTerminator(ReturnTerm{Value: keep})

	removed := RemoveDeadInstructions(fn)
	if removed != 3 {
		t.Fatalf("expected 3 removed (a, b, c), got %d", removed)
	}
	blk := fn.Block(fn.Entry)
	if len(blk.Insts) != 1 || blk.Insts[0] != keep {
		t.Fatalf("expected only keep to remain, got %v", blk.Insts)
	}
	_ = a
}

func TestDCEIdempotent(t *testing.T) {
	b, fn := NewBuilder("f", 0)
	b.SealBlock(fn.Entry)
	b.Emit("", ConstValue{Val: Const{Kind: ConstInt, Int: 42}})
	used := b.Emit("", ConstValue{Val: Const{Kind: ConstInt, Int: 1}})
	b.SetTerminator(ReturnTerm{Value: used})

	first := RemoveDeadInstructionsFixpoint(fn)
	if first == 0 {
		t.Fatalf("expected at least one removal on first pass")
	}
	second := RemoveDeadInstructionsFixpoint(fn)
	if second != 0 {
		t.Fatalf("expected idempotence: second pass removed %d", second)
	}
}
