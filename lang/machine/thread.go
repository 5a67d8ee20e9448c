package machine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/mbeckem/tiro-sub007/lang/compiler"
)

type Thread struct {
	// Name is an optional name that describes the thread, mostly for debugging.
	Name string

	// Stdout, Stderr and Stdin are the standard I/O abstractions for the thread.
	// If nil, os.Stdout, os.Stderr and os.Stdin are used, respectively.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// MaxSteps is the maximum number of "steps", a deliberately unspecified
	// measure of machine execution time, before the thread is cancelled. A value
	// <= 0 means no limit.
	MaxSteps int

	// DisableRecursion prevents recursive execution of functions when set to
	// true. It incurs a small performance cost for the runtime verification on
	// each function call but can be a useful safety check when executing
	// untrusted code. If a recursive call is detected when set to true, that
	// call fails with an error.
	DisableRecursion bool

	// MaxCallStackDepth limits the number of nested function calls. If the limit
	// is reached, the thread is cancelled. A value <= 0 means no limit.
	MaxCallStackDepth int

	// MaxCompareDepth is recorded when the thread starts, but Compare does not
	// consult it: comparisons of compound values are not depth-limited.
	MaxCompareDepth int

	// Load is an optional function value to call to load modules (called by the
	// LOAD opcode).
	Load func(*Thread, string) (Value, error)

	// Predeclared is the set of predeclared identifiers and their assigned
	// values. Predeclared identifiers are like the Universe identifiers in that
	// they are available to all modules automatically and they cannot be
	// assigned to.
	Predeclared map[string]Value

	ctx       context.Context
	ctxCancel func()
	callStack []*Frame
	cancelled atomic.Bool
	heap      Heap
	coro      *CoroutineStack
	handles   []*Handle

	steps, maxSteps uint64
	maxCompareDepth uint64

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
}

func (th *Thread) RunProgram(ctx context.Context, p *compiler.Program) (Value, error) {
	// TODO: would it be acceptable to run more than one program on a thread?
	if th.ctx != nil {
		return nil, fmt.Errorf("thread %s is already executing a program", th.Name)
	}

	ctx, cancel := context.WithCancel(ctx)
	th.ctx = ctx
	th.ctxCancel = cancel
	th.init()
	topfn := makeToplevelFunction(p)
	return Call(th, topfn, NilaryTuple)
}

// Invoke runs p's toplevel initializer for its side effects, then looks up
// the function named name among p.Functions and calls it with args in the
// toplevel's module, returning its result. This is the entry point for
// `run --invoke`: the toplevel chunk defines functions as ordinary locals,
// so there is no way to reach one from outside except by compiling it into
// the same Program and asking for it by name here.
func (th *Thread) Invoke(ctx context.Context, p *compiler.Program, name string, args *Tuple) (Value, error) {
	if th.ctx != nil {
		return nil, fmt.Errorf("thread %s is already executing a program", th.Name)
	}

	ctx, cancel := context.WithCancel(ctx)
	th.ctx = ctx
	th.ctxCancel = cancel
	th.init()

	topfn := makeToplevelFunction(p)
	if _, err := Call(th, topfn, NilaryTuple); err != nil {
		return nil, err
	}

	for _, fc := range p.Functions {
		if fc.Name == name {
			fn := &Function{Funcode: fc, Module: topfn.Module}
			return Call(th, fn, args)
		}
	}
	return nil, fmt.Errorf("no function named %q in program", name)
}

// CollectGarbage runs a mark-sweep pass over every value tracked by this
// thread's heap, using the locals and operand stack of every active call
// frame as roots. It is safe to call between opcodes (e.g. from a built-in)
// but not while a frame's space slice is being resized.
func (th *Thread) CollectGarbage() HeapStats {
	var roots []Value
	for _, fr := range th.callStack {
		roots = append(roots, fr.space...)
	}
	for _, h := range th.handles {
		roots = append(roots, h.v)
	}
	th.heap.Collect(roots)
	return th.heap.Stats()
}

// HeapStats reports the current live/freed object counts without collecting.
func (th *Thread) HeapStats() HeapStats { return th.heap.Stats() }

func (th *Thread) init() {
	// one-time initialization of thread
	if th.MaxSteps <= 0 {
		th.maxSteps-- // (MaxUint64)
	} else {
		th.maxSteps = uint64(th.MaxSteps)
	}
	if th.MaxCompareDepth <= 0 {
		th.maxCompareDepth-- // (MaxUint64)
	} else {
		th.maxCompareDepth = uint64(th.MaxCompareDepth)
	}
	if th.Stdout != nil {
		th.stdout = th.Stdout
	} else {
		th.stdout = os.Stdout
	}
	if th.Stderr != nil {
		th.stderr = th.Stderr
	} else {
		th.stderr = os.Stderr
	}
	if th.Stdin != nil {
		th.stdin = th.Stdin
	} else {
		th.stdin = os.Stdin
	}
	th.coro = NewCoroutineStack(64)
	if th.ctx == nil {
		th.ctx = context.Background()
		th.ctxCancel = func() {}
	} else {
		go func() {
			<-th.ctx.Done()
			th.cancelled.Store(true)
		}()
	}
}

func makeToplevelFunction(p *compiler.Program) *Function {
	// create the value denoted by each program constant
	constants := make([]Value, len(p.Constants))
	for i, c := range p.Constants {
		var v Value
		switch c := c.(type) {
		case int64:
			v = Int(c)
		case string:
			v = String(c)
		case float64:
			v = Float(c)
		default:
			panic(fmt.Sprintf("unexpected constant %T: %[1]v", c))
		}
		constants[i] = v
	}

	return &Function{
		Funcode: p.Toplevel,
		Module: &Module{
			Program:   p,
			Constants: constants,
		},
	}
}
