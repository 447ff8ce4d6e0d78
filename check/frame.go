package check

// frameKind is the closed set of scopes the checker can be nested inside
// (spec.md §3 "scope stack", §4.3 "Context").
type frameKind int

const (
	framePackage frameKind = iota
	frameMessage
	frameEnum
	frameGroup
	frameService
	frameOneof
	frameExtend
)

// frame is one entry of the checker's definition stack. Name is the local
// (not fully-qualified) name the frame was entered under; FQN is its
// absolute dotted name (no leading dot). OneofIndex and Extendee are only
// meaningful for frameOneof and frameExtend respectively.
type frame struct {
	Kind       frameKind
	Name       string
	FQN        string
	OneofIndex int32
	Extendee   string
}

// ctx carries the mutable state of one file's second pass.
type ctx struct {
	stack []frame
}

func (c *ctx) push(f frame) { c.stack = append(c.stack, f) }
func (c *ctx) pop()         { c.stack = c.stack[:len(c.stack)-1] }

func (c *ctx) top() frame {
	if len(c.stack) == 0 {
		return frame{}
	}
	return c.stack[len(c.stack)-1]
}

// scope is the FQN of the innermost frame, or "" at file scope.
func (c *ctx) scope() string {
	if len(c.stack) == 0 {
		return ""
	}
	return c.top().FQN
}

// inOneof reports whether the checker is directly inside an explicit oneof
// (used by the proto2/proto3 label validation matrix, spec.md §4.3).
func (c *ctx) inOneof() bool {
	return c.top().Kind == frameOneof
}

// parentOneofIndex returns the surrounding oneof's index, if any.
func (c *ctx) parentOneofIndex() (int32, bool) {
	if c.top().Kind == frameOneof {
		return c.top().OneofIndex, true
	}
	return 0, false
}

// inExtend reports whether the checker is directly inside an extend block.
func (c *ctx) inExtend() (string, bool) {
	if c.top().Kind == frameExtend {
		return c.top().Extendee, true
	}
	return "", false
}

// enterNamed pushes a frame that introduces a new namespace segment
// (Package, Message, Enum, Group, Service): its FQN is the parent scope
// plus name.
func (c *ctx) enterNamed(kind frameKind, name string) {
	fqn := name
	if c.scope() != "" {
		fqn = c.scope() + "." + name
	}
	c.push(frame{Kind: kind, Name: name, FQN: fqn})
}

// enterOneof pushes a oneof frame. A oneof introduces no namespace segment
// of its own — its fields are named directly in the enclosing message's
// scope — so the frame inherits the current FQN unchanged.
func (c *ctx) enterOneof(index int32, name string) {
	c.push(frame{Kind: frameOneof, Name: name, FQN: c.scope(), OneofIndex: index})
}

// enterExtend pushes an extend frame, likewise without a namespace segment
// (spec.md §4.2: extension fields are scoped to where they're declared, not
// to the extendee).
func (c *ctx) enterExtend(extendee string) {
	c.push(frame{Kind: frameExtend, FQN: c.scope(), Extendee: extendee})
}

func (c *ctx) exit() { c.pop() }
