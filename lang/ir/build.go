package ir

import "fmt"

// Builder implements on-the-fly SSA construction without a dominator
// tree, per Braun, Buchwald, Hack, Leissa, Mallon, Zwinkau, "Simple and
// Efficient Construction of SSA Form" (CC 2013): write_variable /
// read_variable / read_variable_recursive, with seal/fill tracking and
// trivial-phi elimination via a live def-use index.
//
// Variable identifies a source-level variable being tracked during
// construction; lang/irgen uses resolver.SymbolId as its Variable.
// ComputedValue is a cache key used for per-block common-subexpression
// elimination of pure rvalues (memoize).
//
// Grounded on original_source/src/tiro/ir_gen/gen_func.hpp
// (FunctionIRGen: write_variable/read_variable/read_variable_recursive/
// add_phi_operands/seal/end, VariableMap, ValuesMap, IncompletePhiMap).
type Variable = int32

// ComputedValue is a CSE cache key: operation kind plus operand ids,
// scoped to Memoize's own call sites (see Builder.Memoize).
type ComputedValue struct {
	Kind string
	A, B InstId
	Aux  int64
}

type incompletePhi struct {
	v    Variable
	inst InstId
}

// Builder constructs a single Function's SSA body.
type Builder struct {
	fn *Function

	// currentDef[v][b] is the current reaching definition of variable v
	// at the end of block b.
	currentDef map[Variable]map[BlockId]InstId

	// incompletePhis holds, per unsealed block, the phis registered via
	// read_variable_recursive that still need operands once the block
	// is sealed.
	incompletePhis map[BlockId][]incompletePhi

	// uses indexes, for every InstId, the set of instructions that read
	// it as an operand (including phi args); used for trivial-phi
	// rewriting.
	uses map[InstId]map[InstId]struct{}

	memo map[BlockId]map[ComputedValue]InstId

	cur BlockId // block currently being appended to
}

// NewBuilder creates a Builder for a fresh function of the given name
// and parameter count, and opens its entry block (unsealed: the caller
// must call SealBlock(Entry) once all of its predecessors - normally
// none - are known).
func NewBuilder(name string, params int) (*Builder, *Function) {
	fn := NewFunction(name, params)
	b := &Builder{
		fn:             fn,
		currentDef:     make(map[Variable]map[BlockId]InstId),
		incompletePhis: make(map[BlockId][]incompletePhi),
		uses:           make(map[InstId]map[InstId]struct{}),
		memo:           make(map[BlockId]map[ComputedValue]InstId),
	}
	entry := b.CreateBlock("entry")
	fn.Entry = entry
	b.cur = entry
	return b, fn
}

// Function returns the function under construction.
func (b *Builder) Function() *Function { return b.fn }

// CurrentBlock returns the block new instructions are appended to.
func (b *Builder) CurrentBlock() BlockId { return b.cur }

// SetCurrentBlock redirects subsequent Emit/Seal/WriteVariable calls
// at the given block.
func (b *Builder) SetCurrentBlock(id BlockId) { b.cur = id }

// CreateBlock allocates a new, open, unsealed, unfilled block.
func (b *Builder) CreateBlock(label string) BlockId {
	id := BlockId(len(b.fn.blocks))
	b.fn.blocks = append(b.fn.blocks, &Block{ID: id, Label: label})
	return id
}

// AddPred records a predecessor edge target<-pred. Must be called
// before target is sealed.
func (b *Builder) AddPred(target, pred BlockId) {
	blk := b.fn.Block(target)
	if blk.Sealed() {
		panic("ir: AddPred on sealed block")
	}
	blk.Preds = append(blk.Preds, pred)
}

// emit appends a fresh instruction to the current block and returns
// its id, recording its operands in the def-use index.
func (b *Builder) emit(name string, v RValue) InstId {
	id := InstId(len(b.fn.insts))
	inst := &Inst{ID: id, Name: name, Value: v}
	b.fn.insts = append(b.fn.insts, inst)
	blk := b.fn.Block(b.cur)
	blk.Insts = append(blk.Insts, id)
	b.addUses(id, v)
	return id
}

func (b *Builder) addUses(user InstId, v RValue) {
	for _, op := range Operands(v) {
		if op == NoInst {
			continue
		}
		b.addUse(op, user)
	}
	if phi, ok := v.(Phi); ok {
		for _, op := range phi.Args {
			if op != NoInst {
				b.addUse(op, user)
			}
		}
	}
}

func (b *Builder) addUse(def, user InstId) {
	s := b.uses[def]
	if s == nil {
		s = make(map[InstId]struct{})
		b.uses[def] = s
	}
	s[user] = struct{}{}
}

func (b *Builder) removeUses(user InstId, v RValue) {
	for _, op := range Operands(v) {
		if s, ok := b.uses[op]; ok {
			delete(s, user)
		}
	}
	if phi, ok := v.(Phi); ok {
		for _, op := range phi.Args {
			if s, ok := b.uses[op]; ok {
				delete(s, user)
			}
		}
	}
}

// Emit appends an ordinary value-producing instruction (not a phi) to
// the current block.
func (b *Builder) Emit(name string, v RValue) InstId { return b.emit(name, v) }

// Memoize returns a previously emitted instruction with the same key in
// the current block if one exists (per-block CSE), otherwise computes
// and caches a new one via compute.
func (b *Builder) Memoize(key ComputedValue, compute func() InstId) InstId {
	m := b.memo[b.cur]
	if m == nil {
		m = make(map[ComputedValue]InstId)
		b.memo[b.cur] = m
	}
	if id, ok := m[key]; ok {
		return id
	}
	id := compute()
	m[key] = id
	return id
}

// SetTerminator sets the current block's terminator, marking it
// filled. Must be called exactly once per block.
func (b *Builder) SetTerminator(term Terminator) {
	blk := b.fn.Block(b.cur)
	if blk.Filled() {
		panic("ir: block already filled")
	}
	blk.Term = term
	blk.state |= stateFilled
}

// SealBlock finalizes a block's predecessor set, resolving any
// incomplete phis that were registered against it by
// read_variable_recursive while it was still open.
func (b *Builder) SealBlock(id BlockId) {
	blk := b.fn.Block(id)
	if blk.Sealed() {
		return
	}
	pending := b.incompletePhis[id]
	delete(b.incompletePhis, id)
	for _, p := range pending {
		b.addPhiOperands(p.v, id, p.inst)
	}
	blk.state |= stateSealed
}

// WriteVariable records inst as the reaching definition of v at the end
// of block.
func (b *Builder) WriteVariable(v Variable, block BlockId, inst InstId) {
	m := b.currentDef[v]
	if m == nil {
		m = make(map[BlockId]InstId)
		b.currentDef[v] = m
	}
	m[block] = inst
}

// ReadVariable returns the reaching definition of v at the end of
// block, recursing through predecessors (and inserting phis as needed)
// if there is no local definition.
func (b *Builder) ReadVariable(v Variable, block BlockId) InstId {
	if m, ok := b.currentDef[v]; ok {
		if id, ok := m[block]; ok {
			return id
		}
	}
	return b.readVariableRecursive(v, block)
}

func (b *Builder) readVariableRecursive(v Variable, block BlockId) InstId {
	blk := b.fn.Block(block)
	var val InstId
	if !blk.Sealed() {
		// Block isn't sealed yet: we don't know its full predecessor
		// set, so insert an incomplete phi placeholder to be resolved
		// once it is.
		val = b.insertPhiInst(block, Phi0{})
		b.incompletePhis[block] = append(b.incompletePhis[block], incompletePhi{v: v, inst: val})
	} else if len(blk.Preds) == 1 {
		val = b.ReadVariable(v, blk.Preds[0])
	} else {
		// Break potential cycles by creating the phi before recursing
		// into predecessors.
		val = b.insertPhiInst(block, Phi0{})
		b.WriteVariable(v, block, val)
		val = b.addPhiOperands(v, block, val)
	}
	b.WriteVariable(v, block, val)
	return val
}

// insertPhiInst prepends a phi-kind instruction to block (phis must
// precede all other instructions in a block).
func (b *Builder) insertPhiInst(block BlockId, v RValue) InstId {
	id := InstId(len(b.fn.insts))
	inst := &Inst{ID: id, Value: v}
	b.fn.insts = append(b.fn.insts, inst)
	blk := b.fn.Block(block)
	n := blk.PhiCount(b.fn)
	blk.Insts = append(blk.Insts, NoInst)
	copy(blk.Insts[n+1:], blk.Insts[n:])
	blk.Insts[n] = id
	return id
}

func (b *Builder) addPhiOperands(v Variable, block BlockId, phiInst InstId) InstId {
	blk := b.fn.Block(block)
	args := make([]InstId, len(blk.Preds))
	for i, pred := range blk.Preds {
		args[i] = b.ReadVariable(v, pred)
	}
	phi := Phi{Args: args}
	b.fn.Inst(phiInst).Value = phi
	b.addUses(phiInst, phi)
	return b.tryRemoveTrivialPhi(phiInst)
}

// tryRemoveTrivialPhi replaces a phi that (ignoring self-references)
// has exactly one distinct operand with a Copy of that operand,
// rewriting every use of the phi to that operand, and recursively
// simplifies any phi user that may have become trivial as a result.
func (b *Builder) tryRemoveTrivialPhi(phiInst InstId) InstId {
	inst := b.fn.Inst(phiInst)
	phi, ok := inst.Value.(Phi)
	if !ok {
		return phiInst
	}
	var same InstId = NoInst
	for _, op := range phi.Args {
		if op == phiInst || op == same {
			continue
		}
		if same != NoInst {
			// More than one distinct operand: not trivial.
			return phiInst
		}
		same = op
	}
	if same == NoInst {
		// Unreachable block or the phi only refers to itself: leave it
		// (it reads as undefined, matching the original's "undef"
		// treatment of dead code paths).
		return phiInst
	}

	users := make([]InstId, 0, len(b.uses[phiInst]))
	for u := range b.uses[phiInst] {
		if u != phiInst {
			users = append(users, u)
		}
	}

	b.removeUses(phiInst, phi)
	inst.Value = Copy{Src: same}
	b.addUse(same, phiInst)

	for _, u := range users {
		b.rewriteOperand(u, phiInst, same)
		if uinst := b.fn.Inst(u); uinst != nil {
			if _, isPhi := uinst.Value.(Phi); isPhi {
				b.tryRemoveTrivialPhi(u)
			}
		}
	}
	return same
}

// rewriteOperand replaces every occurrence of old with repl among
// user's operands (including phi args), updating the def-use index.
func (b *Builder) rewriteOperand(user, old, repl InstId) {
	inst := b.fn.Inst(user)
	switch v := inst.Value.(type) {
	case Phi:
		changed := false
		for i, a := range v.Args {
			if a == old {
				v.Args[i] = repl
				changed = true
			}
		}
		if changed {
			inst.Value = v
			if s := b.uses[old]; s != nil {
				delete(s, user)
			}
			b.addUse(repl, user)
		}
	default:
		nv := rewriteRValueOperand(v, old, repl)
		inst.Value = nv
		if s := b.uses[old]; s != nil {
			delete(s, user)
		}
		b.addUse(repl, user)
	}
}

// rewriteRValueOperand returns a copy of v with every operand equal to
// old replaced by repl.
func rewriteRValueOperand(v RValue, old, repl InstId) RValue {
	sub := func(id InstId) InstId {
		if id == old {
			return repl
		}
		return id
	}
	subL := func(l LValue) LValue {
		switch l := l.(type) {
		case FieldLValue:
			l.Obj = sub(l.Obj)
			return l
		case TupleFieldLValue:
			l.Obj = sub(l.Obj)
			return l
		case IndexLValue:
			l.Obj, l.Index = sub(l.Obj), sub(l.Index)
			return l
		default:
			return l
		}
	}
	switch v := v.(type) {
	case ReadLValue:
		v.Target = subL(v.Target)
		return v
	case WriteLValue:
		v.Target = subL(v.Target)
		v.Value = sub(v.Value)
		return v
	case Copy:
		v.Src = sub(v.Src)
		return v
	case UnaryOp:
		v.X = sub(v.X)
		return v
	case BinaryOp:
		v.X, v.Y = sub(v.X), sub(v.Y)
		return v
	case Call:
		v.Fn = sub(v.Fn)
		args := make([]InstId, len(v.Args))
		for i, a := range v.Args {
			args[i] = sub(a)
		}
		v.Args = args
		return v
	case MethodHandle:
		v.Instance = sub(v.Instance)
		return v
	case MethodCall:
		v.Handle = sub(v.Handle)
		args := make([]InstId, len(v.Args))
		for i, a := range v.Args {
			args[i] = sub(a)
		}
		v.Args = args
		return v
	case MakeEnvironment:
		v.Parent = sub(v.Parent)
		return v
	case MakeClosure:
		v.Env = sub(v.Env)
		return v
	case Container:
		elems := make([]InstId, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = sub(e)
		}
		v.Elems = elems
		return v
	case MapContainer:
		keys := make([]InstId, len(v.Keys))
		vals := make([]InstId, len(v.Vals))
		for i := range v.Keys {
			keys[i] = sub(v.Keys[i])
			vals[i] = sub(v.Vals[i])
		}
		v.Keys, v.Vals = keys, vals
		return v
	case RecordContainer:
		vals := make([]InstId, len(v.Vals))
		for i, e := range v.Vals {
			vals[i] = sub(e)
		}
		v.Vals = vals
		return v
	case Format:
		parts := make([]InstId, len(v.Parts))
		for i, p := range v.Parts {
			parts[i] = sub(p)
		}
		v.Parts = parts
		return v
	default:
		return v
	}
}

// SealAllRemaining seals every block that construction has not yet
// sealed; called once at the end of building a function, after which
// no Phi0 placeholder should remain (see Verify).
func (b *Builder) SealAllRemaining() {
	for i := 1; i < len(b.fn.blocks); i++ {
		b.SealBlock(BlockId(i))
	}
}

// Verify checks the SSA construction invariants: no
// remaining Phi0 placeholders, and every block has a terminator and
// has been sealed.
func (b *Builder) Verify() []string {
	var problems []string
	for i := 1; i < len(b.fn.insts); i++ {
		inst := b.fn.insts[i]
		if inst == nil {
			continue
		}
		if _, ok := inst.Value.(Phi0); ok {
			problems = append(problems, fmt.Sprintf("unresolved phi0 remains: inst %d", inst.ID))
		}
	}
	for i := 1; i < len(b.fn.blocks); i++ {
		blk := b.fn.blocks[i]
		if blk.Term == nil {
			problems = append(problems, "block has no terminator: "+blk.Label)
		}
		if !blk.Sealed() {
			problems = append(problems, "block never sealed: "+blk.Label)
		}
	}
	return problems
}
