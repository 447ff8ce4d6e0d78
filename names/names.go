// Package names builds the NameMap: the first of the two compiler passes
// over a file's IR (spec.md §4.2). It resolves nothing on its own beyond
// FQN membership — Resolve answers "does this name exist, and what kind is
// it", leaving type-compatibility and number-range checks to package check.
package names

import (
	"strings"

	"github.com/protoxlang/protox/ast"
	"github.com/protoxlang/protox/ir"
	"github.com/protoxlang/protox/report"
)

// Kind is the closed set of things a name can denote.
type Kind int

const (
	KindPackage Kind = iota
	KindMessage
	KindEnum
	KindEnumValue
	KindOneof
	KindField
	KindGroup
	KindService
	KindMethod
)

// Entry is one NameMap record (spec.md §3 "NameMap").
type Entry struct {
	Kind Kind
	Span report.Span // zero for a Package entry or one loaded from a binary descriptor; a merged import entry keeps its own file's span
	File string      // non-empty iff this entry was merged in from an import
	// Public says whether this entry should be re-exported if the file
	// owning this Map is itself imported with "import public". Locally
	// defined entries are always Public: a direct importer sees everything
	// a file declares regardless of how it was imported. merge sets it to
	// importIsPublic && sourceEntry.Public on the copies it inserts, so a
	// public import of a file that privately imported something doesn't
	// leak that something any further.
	Public bool
	Number int32 // valid only for KindField and KindEnumValue
}

// Map is a flat FQN → Entry table, keyed without a leading dot.
type Map struct {
	entries map[string]Entry
}

// New returns an empty Map.
func New() *Map { return &Map{entries: make(map[string]Entry)} }

// Get looks up an exact FQN (no leading dot).
func (m *Map) Get(fqn string) (Entry, bool) {
	e, ok := m.entries[fqn]
	return e, ok
}

// Len reports the number of distinct names defined.
func (m *Map) Len() int { return len(m.entries) }

// Resolve implements spec.md §4.2's "innermost-to-outermost" scope search.
// If name starts with '.', it is looked up as an absolute FQN directly.
// Otherwise, resolution starts at context (an FQN without a leading dot)
// and walks outward one scope at a time until a match is found or the
// context is exhausted. The returned name is always absolute (leading '.').
func (m *Map) Resolve(context, name string) (absolute string, entry Entry, ok bool) {
	if rest, found := strings.CutPrefix(name, "."); found {
		if e, ok2 := m.Get(rest); ok2 {
			return "." + rest, e, true
		}
		return "", Entry{}, false
	}

	for {
		candidate := joinScope(context, name)
		if e, ok2 := m.Get(candidate); ok2 {
			return "." + candidate, e, true
		}
		if context == "" {
			return "", Entry{}, false
		}
		context = parentScope(context)
	}
}

func joinScope(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

func parentScope(scope string) string {
	if i := strings.LastIndexByte(scope, '.'); i >= 0 {
		return scope[:i]
	}
	return ""
}

// add applies the insertion rule (spec.md §4.2 "Insertion rule"): two
// Package entries for the same FQN coalesce silently; any other collision
// is a DuplicateName diagnostic naming both locations.
func (m *Map) add(fqn string, entry Entry) *report.Diagnostic {
	existing, ok := m.entries[fqn]
	if !ok {
		m.entries[fqn] = entry
		return nil
	}
	if existing.Kind == KindPackage && entry.Kind == KindPackage {
		return nil
	}
	return &report.Diagnostic{
		Kind:    report.DuplicateName,
		Span:    entry.Span,
		Message: "name `" + fqn + "` is defined twice",
		Related: []report.Label{{Span: existing.Span, Message: "first defined here"}},
	}
}

// merge folds a dependency's (already-built) Map into m under the rule in
// spec.md §4.2 step 1: only entries whose own Public flag is true are
// re-exported, and the freshly inserted entry's Public flag becomes
// (importIsPublic && sourceEntryPublic) so a public import of a private
// import still re-exports nothing further.
func (m *Map) merge(dep *Map, fromFile string, importIsPublic bool) []report.Diagnostic {
	var diags []report.Diagnostic
	for fqn, entry := range dep.entries {
		if !entry.Public {
			continue
		}
		merged := entry
		merged.File = fromFile
		merged.Public = importIsPublic && entry.Public
		if d := m.add(fqn, merged); d != nil {
			diags = append(diags, *d)
		}
	}
	return diags
}

// collector drives one file's first pass, tracking the current scope as a
// dotted string (mirroring check.frame's stack, but flattened to the name
// string NameMap actually needs).
type collector struct {
	m     *Map
	scope string
	diags []report.Diagnostic
}

// Collect builds the NameMap for file, merging in the already-built Maps of
// its dependencies (keyed by import path, matching ast.Import.Path) in
// import order. Diagnostics are DuplicateName only; nothing else can go
// wrong in this pass.
func Collect(file *ir.File, deps map[string]*Map) (*Map, []report.Diagnostic) {
	c := &collector{m: New()}

	for _, imp := range file.AST.Imports {
		dep, ok := deps[imp.Path]
		if !ok {
			continue // resolver/driver already turned a missing import into a fatal error
		}
		c.diags = append(c.diags, c.m.merge(dep, imp.Path, imp.Public)...)
	}

	for _, part := range file.AST.Package {
		c.addName(part.Value, Entry{Kind: KindPackage, Public: true})
		c.enter(part.Value)
	}

	for _, msg := range file.Messages {
		c.addMessage(msg)
	}
	for _, item := range file.AST.Items {
		switch it := item.(type) {
		case ast.FileEnum:
			c.addEnum(it.Enum)
		case ast.FileService:
			c.addService(it.Service)
		case ast.FileExtend:
			c.addExtendFields(it.Extend)
		}
	}

	for range file.AST.Package {
		c.exit()
	}

	return c.m, c.diags
}

func (c *collector) enter(name string) {
	if c.scope == "" {
		c.scope = name
		return
	}
	c.scope = c.scope + "." + name
}

func (c *collector) exit() {
	c.scope = parentScope(c.scope)
}

func (c *collector) addName(name string, entry Entry) {
	fqn := joinScope(c.scope, name)
	if d := c.m.add(fqn, entry); d != nil {
		c.diags = append(c.diags, *d)
	}
}

func (c *collector) addMessage(msg *ir.Message) {
	c.addName(msg.Name, Entry{Kind: KindMessage, Span: msg.NameSpan, Public: true})
	c.enter(msg.Name)

	for _, f := range msg.Fields {
		c.addIRField(f)
	}
	for _, o := range msg.Oneofs {
		c.addOneof(o)
	}
	for _, nested := range msg.Messages {
		c.addMessage(nested)
	}
	if body, ok := msg.Body(); ok {
		for _, item := range body.Items {
			switch v := item.(type) {
			case ast.NestedEnum:
				c.addEnum(v.Enum)
			case ast.NestedExtend:
				c.addExtendFields(v.Extend)
			}
		}
	}

	c.exit()
}

func (c *collector) addIRField(f *ir.Field) {
	switch f.SourceKind {
	case ir.FieldFromMapKey:
		c.addName("key", Entry{Kind: KindField, Span: f.MapTypeSpan, Number: 1, Public: true})
	case ir.FieldFromMapValue:
		c.addName("value", Entry{Kind: KindField, Span: f.MapTypeSpan, Number: 2, Public: true})
	default:
		name, span, number, kind := fieldIdentity(f.AsField)
		c.addName(name, Entry{Kind: kind, Span: span, Number: number, Public: true})
	}
}

// fieldIdentity extracts the NameMap identity of a normal, group or map
// field. A group's field name is the group's type name lowercased (the
// group message keeps its declared PascalCase spelling).
func fieldIdentity(field ast.MessageField) (name string, span report.Span, number int32, kind Kind) {
	switch f := field.(type) {
	case *ast.Field:
		return f.Name.Value, f.Name.Span, intLitToI32(f.Number), KindField
	case *ast.Map:
		return f.Name.Value, f.Name.Span, intLitToI32(f.Number), KindField
	case *ast.Group:
		return strings.ToLower(f.Name.Value), f.Name.Span, intLitToI32(f.Number), KindGroup
	default:
		return "", report.Span{}, 0, KindField
	}
}

func intLitToI32(lit ast.IntLit) int32 {
	n := int32(lit.Value)
	if lit.Negative {
		return -n
	}
	return n
}

// oneofDisplayName is the REDESIGN-FLAGGED synthetic-oneof name: a leading
// underscore plus the field name, matching protoc's own convention for a
// proto3 optional field's generated oneof.
func oneofDisplayName(o *ir.Oneof) (string, report.Span) {
	if o.SourceKind == ir.OneofFromOneof {
		return o.AsOneof.Name.Value, o.AsOneof.Name.Span
	}
	return "_" + o.AsField.Name.Value, o.AsField.Name.Span
}

func (c *collector) addOneof(o *ir.Oneof) {
	name, span := oneofDisplayName(o)
	c.addName(name, Entry{Kind: KindOneof, Span: span, Public: true})
}

func (c *collector) addEnum(e *ast.Enum) {
	c.addName(e.Name.Value, Entry{Kind: KindEnum, Span: e.Name.Span, Public: true})
	c.enter(e.Name.Value)
	for _, v := range e.Values {
		c.addName(v.Name.Value, Entry{Kind: KindEnumValue, Span: v.Name.Span, Number: intLitToI32(v.Value), Public: true})
	}
	c.exit()
}

func (c *collector) addService(s *ast.Service) {
	c.addName(s.Name.Value, Entry{Kind: KindService, Span: s.Name.Span, Public: true})
	c.enter(s.Name.Value)
	for _, m := range s.Methods {
		c.addName(m.Name.Value, Entry{Kind: KindMethod, Span: m.Name.Span, Public: true})
	}
	c.exit()
}

// addExtendFields names extension fields in the scope the extend block was
// declared in, not the extendee's scope — protobuf scopes an extension's
// own name to its lexical position, independent of what it extends.
func (c *collector) addExtendFields(ext *ast.Extend) {
	for _, field := range ext.Fields {
		name, span, number, kind := fieldIdentity(field)
		c.addName(name, Entry{Kind: kind, Span: span, Number: number, Public: true})
	}
}
