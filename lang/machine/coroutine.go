package machine

import "fmt"

// CoroutineState is the lifecycle state of a Coroutine.
//
// Grounded on hammer::vm::CoroutineState (src/hammer/vm/objects/
// coroutine.cpp): Ready, Running, Waiting and Done, with a dedicated
// to_string. Scheduling more than one Coroutine concurrently is out of
// scope (see the package doc comment in machine.go), but the state machine
// itself, and the stack it drives, are not: a Coroutine always starts
// Ready, becomes Running for the (single, synchronous) duration of Resume,
// and ends Done.
type CoroutineState uint8

const (
	CoroutineReady CoroutineState = iota
	CoroutineRunning
	CoroutineWaiting
	CoroutineDone
)

func (s CoroutineState) String() string {
	switch s {
	case CoroutineReady:
		return "ready"
	case CoroutineRunning:
		return "running"
	case CoroutineWaiting:
		return "waiting"
	case CoroutineDone:
		return "done"
	default:
		return "invalid"
	}
}

// A Coroutine is a named, resumable activation of a function with its own
// CoroutineStack, distinct from the Go call stack used to drive the
// bytecode interpreter itself.
//
// Grounded on hammer::vm::Coroutine::Data, which pairs a name and a function
// with a CoroutineStack, a result slot and a CoroutineState.
type Coroutine struct {
	hdr Header

	Name     string
	Function Value
	Stack    *CoroutineStack
	Result   Value
	State    CoroutineState
}

var (
	_ Value      = (*Coroutine)(nil)
	_ heapObject = (*Coroutine)(nil)
	_ Traceable  = (*Coroutine)(nil)
)

// NewCoroutine returns a Ready coroutine wrapping fn, with a freshly
// allocated stack.
func NewCoroutine(name string, fn Value, stackCapacity int) *Coroutine {
	return &Coroutine{
		Name:     name,
		Function: fn,
		Stack:    NewCoroutineStack(stackCapacity),
		State:    CoroutineReady,
	}
}

func (c *Coroutine) String() string { return fmt.Sprintf("coroutine(%s, %s)", c.Name, c.State) }
func (c *Coroutine) Type() string   { return "coroutine" }

func (c *Coroutine) header() *Header { return &c.hdr }

// Trace visits the coroutine's function, its pending result and every
// argument/local word still live on its stack.
func (c *Coroutine) Trace(visit func(Value)) {
	visit(c.Function)
	if c.Result != nil {
		visit(c.Result)
	}
	for _, w := range c.Stack.data[:c.Stack.top] {
		if w.kind == wordBoxed {
			visit(w.obj.v)
		}
	}
}

// Resume runs fn to completion on the coroutine's own CoroutineStack with
// the given arguments, synchronously. Concurrent/cooperative scheduling of
// multiple in-flight coroutines is out of scope; Resume always runs a
// coroutine to Done in one call, exercising the push/pop/grow machinery of
// CoroutineStack without implementing a scheduler on top of it.
func (c *Coroutine) Resume(th *Thread, args []Value) (Value, error) {
	if c.State == CoroutineDone {
		return nil, fmt.Errorf("coroutine %s already done", c.Name)
	}
	fn, ok := c.Function.(Callable)
	if !ok {
		return nil, fmt.Errorf("coroutine %s: %s is not callable", c.Name, c.Function.Type())
	}

	c.State = CoroutineRunning
	c.Stack.PushFrame(nil, args, 0)
	defer c.Stack.PopFrame()

	result, err := Call(th, fn, NewTuple(args))
	c.State = CoroutineDone
	c.Result = result
	return result, err
}
