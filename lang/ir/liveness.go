package ir

// Liveness holds the per-block live-in/live-out instruction sets for a
// Function, computed by the standard SSA liveness dataflow equations:
//
//	LiveIn[B]  = UpwardExposed[B] ∪ (LiveOut[B] \ Defs[B])
//	LiveOut[B] = ∪ (S ∈ succ(B)) ( PhiUses(B, S) ∪ LiveIn[S] )
//
// where PhiUses(B, S) is, for each phi at the head of S, the operand
// corresponding to the B->S edge - counted as used at the end of B
// itself rather than as live-in to S, per original_source's
// "extend_live_out" treatment of phi operands (liveness.cpp).
//
// Grounded on original_source/src/compiler/ir_passes/liveness.cpp: a
// two-pass computation (definitions, then uses-with-worklist-
// propagation-to-predecessors) that this restates as a block-level
// fixpoint, which is the SSA-equivalent formulation of the same
// algorithm once "uses" are bucketed per block instead of per
// statement.
type Liveness struct {
	fn      *Function
	liveIn  map[BlockId]map[InstId]struct{}
	liveOut map[BlockId]map[InstId]struct{}
	defBlk  map[InstId]BlockId
}

// ComputeLiveness runs the dataflow to a fixpoint.
func ComputeLiveness(fn *Function) *Liveness {
	l := &Liveness{
		fn:      fn,
		liveIn:  make(map[BlockId]map[InstId]struct{}),
		liveOut: make(map[BlockId]map[InstId]struct{}),
		defBlk:  make(map[InstId]BlockId),
	}
	ids := fn.BlockIds()
	for _, id := range ids {
		blk := fn.Block(id)
		for _, inst := range blk.Insts {
			l.defBlk[inst] = id
		}
		l.liveIn[id] = make(map[InstId]struct{})
		l.liveOut[id] = make(map[InstId]struct{})
	}

	upward := make(map[BlockId]map[InstId]struct{}, len(ids))
	for _, id := range ids {
		upward[id] = l.upwardExposed(id)
	}

	changed := true
	for changed {
		changed = false
		for i := len(ids) - 1; i >= 0; i-- {
			id := ids[i]
			blk := fn.Block(id)

			out := make(map[InstId]struct{})
			for _, succ := range blockSuccessors(blk) {
				l.addPhiUsesForEdge(out, id, succ)
				for v := range l.liveIn[succ] {
					out[v] = struct{}{}
				}
			}
			if !sameSet(out, l.liveOut[id]) {
				l.liveOut[id] = out
				changed = true
			}

			in := make(map[InstId]struct{})
			for v := range upward[id] {
				in[v] = struct{}{}
			}
			for v := range l.liveOut[id] {
				if l.defBlk[v] != id {
					in[v] = struct{}{}
				}
			}
			if !sameSet(in, l.liveIn[id]) {
				l.liveIn[id] = in
				changed = true
			}
		}
	}
	return l
}

func blockSuccessors(blk *Block) []BlockId {
	if blk.Term == nil {
		return nil
	}
	return blk.Term.Successors()
}

// upwardExposed returns the operands used within block (by any non-phi
// instruction or the terminator) whose definition lies outside the
// block; ObserveAssign-style writes are never treated as uses of their
// own value here beyond the normal operand walk, matching
// original_source's exclusion of plain assignment observation from
// liveness (an assignment's *target* object is a use; the assignment
// itself has no SSA result to be live).
func (l *Liveness) upwardExposed(id BlockId) map[InstId]struct{} {
	blk := l.fn.Block(id)
	exposed := make(map[InstId]struct{})
	phiCount := blk.PhiCount(l.fn)
	for i, instID := range blk.Insts {
		if i < phiCount {
			continue // phi operands are attributed to predecessors, not here
		}
		inst := l.fn.Inst(instID)
		for _, op := range Operands(inst.Value) {
			l.markExposed(exposed, op, id)
		}
	}
	if blk.Term != nil {
		for _, op := range terminatorOperands(blk.Term) {
			l.markExposed(exposed, op, id)
		}
	}
	return exposed
}

func (l *Liveness) markExposed(exposed map[InstId]struct{}, op InstId, block BlockId) {
	if op == NoInst {
		return
	}
	if def, ok := l.defBlk[op]; ok && def == block {
		return
	}
	exposed[op] = struct{}{}
}

func terminatorOperands(t Terminator) []InstId {
	switch t := t.(type) {
	case BranchTerm:
		return []InstId{t.Cond}
	case ReturnTerm:
		return []InstId{t.Value}
	case AssertFailTerm:
		return []InstId{t.Expr, t.Message}
	default:
		return nil
	}
}

// addPhiUsesForEdge adds, to out, the phi operand of succ that
// corresponds to the from->succ edge.
func (l *Liveness) addPhiUsesForEdge(out map[InstId]struct{}, from, succ BlockId) {
	blk := l.fn.Block(succ)
	idx := -1
	for i, p := range blk.Preds {
		if p == from {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	phiCount := blk.PhiCount(l.fn)
	for i := 0; i < phiCount; i++ {
		inst := l.fn.Inst(blk.Insts[i])
		phi, ok := inst.Value.(Phi)
		if !ok || idx >= len(phi.Args) {
			continue
		}
		if arg := phi.Args[idx]; arg != NoInst {
			out[arg] = struct{}{}
		}
	}
}

func sameSet(a, b map[InstId]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// LiveIn returns the set of instructions live at the start of block.
func (l *Liveness) LiveIn(block BlockId) map[InstId]struct{} { return l.liveIn[block] }

// LiveOut returns the set of instructions live at the end of block.
func (l *Liveness) LiveOut(block BlockId) map[InstId]struct{} { return l.liveOut[block] }

// IsLive reports whether inst is live anywhere in the function (used by
// the caller-observable "is this local worth keeping a slot for"
// query); a value with no live-out/live-in occurrence anywhere and no
// DCE-relevant side effect is eligible for removal.
func (l *Liveness) IsLive(inst InstId) bool {
	for _, set := range l.liveIn {
		if _, ok := set[inst]; ok {
			return true
		}
	}
	for _, set := range l.liveOut {
		if _, ok := set[inst]; ok {
			return true
		}
	}
	return false
}
