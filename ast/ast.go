// Package ast defines the parsed, pre-validation view of a .proto source
// file. It mirrors the protobuf grammar closely; no implicit construct
// (map entry, group message, synthetic oneof) is expanded here — that is
// the job of package ir.
package ast

import "github.com/protoxlang/protox/report"

// Syntax is the file's declared syntax version. Proto2 is the default when
// a file has no syntax statement (spec.md §4.3).
type Syntax int

const (
	Proto2 Syntax = iota
	Proto3
)

func (s Syntax) String() string {
	if s == Proto3 {
		return "proto3"
	}
	return "proto2"
}

// Ident is a single dotted-path component together with its source span.
type Ident struct {
	Value string
	Span  report.Span
}

// Import is one `import` statement.
type Import struct {
	Path    string
	Public  bool
	Weak    bool
	Span    report.Span
	PathRaw string // the raw string literal, for diagnostics
}

// File is the root of a parsed .proto file.
type File struct {
	Syntax     Syntax
	SyntaxSpan report.Span
	Package    []Ident // dotted package name components, empty if no package
	Imports    []*Import
	Options    []OptionEntry
	// Items preserves the file's top-level declaration order, mixing
	// messages, enums, services and extends exactly as spec.md §4.1 needs
	// to lower them in source order.
	Items []FileItem
}

// FileItem is a top-level declaration in a .proto file.
type FileItem interface{ isFileItem() }

type FileMessage struct{ Message *Message }
type FileEnum struct{ Enum *Enum }
type FileService struct{ Service *Service }
type FileExtend struct{ Extend *Extend }

func (FileMessage) isFileItem() {}
func (FileEnum) isFileItem()    {}
func (FileService) isFileItem() {}
func (FileExtend) isFileItem()  {}

// Message is a `message` declaration.
type Message struct {
	Name Ident
	Body MessageBody
	Span report.Span
}

// MessageBody is the `{ ... }` contents shared by message and group
// declarations.
type MessageBody struct {
	Items      []MessageItem
	Extensions []*Extensions
	Reserved   []*Reserved
	Options    []OptionEntry
}

// MessageItem is one declaration inside a message body.
type MessageItem interface{ isMessageItem() }

// FieldItem wraps the four field-shaped declarations (normal field, group,
// map field, oneof) that share label/oneof/extend validation rules in the
// checker (spec.md §4.3's "Invalid oneof/extend field kind" checks).
type FieldItem struct{ Field MessageField }
type NestedMessage struct{ Message *Message }
type NestedEnum struct{ Enum *Enum }
type NestedExtend struct{ Extend *Extend }

func (FieldItem) isMessageItem()      {}
func (NestedMessage) isMessageItem()  {}
func (NestedEnum) isMessageItem()     {}
func (NestedExtend) isMessageItem()   {}

// MessageField is one of Field, Group, Map or Oneof: the four things that
// can appear as a "field position" inside a message, oneof or extend body.
type MessageField interface {
	isMessageField()
	Span() report.Span
	KindName() string
}

// FieldLabel is an explicit `optional`/`required`/`repeated` label. A field
// with no label at all is represented by a nil *FieldLabel.
type FieldLabel int

const (
	LabelOptional FieldLabel = iota
	LabelRequired
	LabelRepeated
)

// Field is a normal (non-group, non-map) field declaration.
type Field struct {
	Name    Ident
	Number  IntLit
	Label   *FieldLabel
	Type    Ty
	Options []OptionEntry
	SpanVal report.Span
}

func (*Field) isMessageField()   {}
func (f *Field) Span() report.Span { return f.SpanVal }
func (f *Field) KindName() string  { return "normal" }

// Group is a proto2 `group` field: both a field and an implicit nested
// message (spec.md §4.1 "Group fields").
type Group struct {
	Name    Ident
	Number  IntLit
	Label   *FieldLabel
	Body    MessageBody
	Options []OptionEntry
	SpanVal report.Span
}

func (*Group) isMessageField()   {}
func (g *Group) Span() report.Span { return g.SpanVal }
func (g *Group) KindName() string  { return "group" }

// Map is a `map<K, V>` field declaration.
type Map struct {
	Name       Ident
	Number     IntLit
	KeyType    KeyType
	KeyTypeSpan report.Span
	ValueType  Ty
	Label      *FieldLabel // nil unless the source wrote a label before `map`, which the checker reports as map-field-with-label
	Options    []OptionEntry
	SpanVal    report.Span
}

func (*Map) isMessageField()   {}
func (m *Map) Span() report.Span { return m.SpanVal }
func (m *Map) KindName() string  { return "map" }

// Oneof is a `oneof` declaration. Its Fields are restricted by the checker
// to Field/Group; a Map inside triggers InvalidOneofFieldKind. A nested
// Oneof member is never produced by the parser, and ir drops one found in a
// hand-built AST without any diagnostic.
type Oneof struct {
	Name    Ident
	Fields  []MessageField
	Options []OptionEntry
	SpanVal report.Span
}

func (*Oneof) isMessageField()   {}
func (o *Oneof) Span() report.Span { return o.SpanVal }
func (o *Oneof) KindName() string  { return "oneof" }

// Extend is an `extend` block.
type Extend struct {
	Extendee TypeName
	Fields   []MessageField
	SpanVal  report.Span
}

// Extensions is an `extensions ...;` declaration inside a message.
type Extensions struct {
	Ranges  []*ReservedRange
	Options []OptionEntry
}

// ReservedKind distinguishes `reserved <ranges>;` from `reserved <names>;`.
type ReservedKind int

const (
	ReservedRanges ReservedKind = iota
	ReservedNames
)

// Reserved is a `reserved ...;` declaration.
type Reserved struct {
	Kind   ReservedKind
	Ranges []*ReservedRange
	Names  []Ident
}

// ReservedRangeEndKind distinguishes an explicit end, an implicit
// single-number range, or the `max` keyword.
type ReservedRangeEndKind int

const (
	ReservedRangeEndNone ReservedRangeEndKind = iota
	ReservedRangeEndInt
	ReservedRangeEndMax
)

// ReservedRange is one `N` or `N to M` or `N to max` entry.
type ReservedRange struct {
	Start   IntLit
	EndKind ReservedRangeEndKind
	End     IntLit // valid only when EndKind == ReservedRangeEndInt
	Span    report.Span
}

// Enum is an `enum` declaration.
type Enum struct {
	Name     Ident
	Values   []*EnumValue
	Options  []OptionEntry
	Reserved []*Reserved
	Span     report.Span
}

// EnumValue is one value inside an enum body.
type EnumValue struct {
	Name    Ident
	Value   IntLit
	Options []OptionEntry
	Span    report.Span
}

// Service is a `service` declaration.
type Service struct {
	Name    Ident
	Methods []*Method
	Options []OptionEntry
	Span    report.Span
}

// Method is an `rpc` declaration inside a service.
type Method struct {
	Name            Ident
	InputType       TypeName
	OutputType      TypeName
	ClientStreaming bool
	ServerStreaming bool
	Options         []OptionEntry
	Span            report.Span
}

// IntLit is an integer literal together with its sign and source span, kept
// as a raw magnitude so the checker (not the parser) decides range validity
// per spec.md §4.3 ("Int.to_field_number"/"to_enum_number").
type IntLit struct {
	Value    uint64
	Negative bool
	Span     report.Span
}
