// Package ir expands the raw AST into the shape descriptor emission
// actually needs: map fields become synthetic "*Entry" messages, group
// fields become synthetic nested messages, and proto3 bare `optional`
// fields get a synthetic one-member oneof. BuildFile is pure and never
// produces diagnostics (spec.md §4.1) — every AST, however malformed,
// lowers to some IR; validity is the checker's job.
package ir

import (
	"github.com/protoxlang/protox/ast"
	"github.com/protoxlang/protox/internal/casing"
	"github.com/protoxlang/protox/report"
)

// MessageSourceKind distinguishes a literal `message` declaration from the
// two kinds of message synthesized during lowering.
type MessageSourceKind int

const (
	MessageFromMessage MessageSourceKind = iota
	MessageFromGroup
	MessageFromMap
)

// File is a lowered view of an ast.File. Messages holds the file's
// top-level messages plus the group messages of top-level extend blocks;
// a message synthesized from a map or group field inside a message is
// nested in that message's own Messages.
type File struct {
	AST      *ast.File
	Messages []*Message
}

// Message is either a literal message, a group field's implicit nested
// message, or a map field's implicit "*Entry" message.
type Message struct {
	SourceKind MessageSourceKind
	AsMessage  *ast.Message // valid when SourceKind == MessageFromMessage
	AsGroup    *ast.Group   // valid when SourceKind == MessageFromGroup
	AsMap      *ast.Map     // valid when SourceKind == MessageFromMap

	Name     string
	NameSpan report.Span

	Fields   []*Field
	Messages []*Message
	Oneofs   []*Oneof
}

// FieldSourceKind distinguishes a literal field from the key/value pseudo
// fields of a synthesized map-entry message.
type FieldSourceKind int

const (
	FieldFromField FieldSourceKind = iota
	FieldFromMapKey
	FieldFromMapValue
)

// Field is a literal field, group field, or one of the two pseudo-fields
// ("key"/"value") of a synthesized map-entry message.
type Field struct {
	SourceKind FieldSourceKind

	// AsField holds the originating *ast.Field, *ast.Group or *ast.Map (as
	// ast.MessageField) when SourceKind == FieldFromField.
	AsField ast.MessageField

	// MapType/MapTypeSpan hold the key or value type when SourceKind is
	// FieldFromMapKey or FieldFromMapValue; the map-entry field names and
	// numbers ("key"=1, "value"=2) are fixed and assigned by the checker.
	MapType     ast.Ty
	MapTypeSpan report.Span

	// Oneof is the containing oneof, explicit or synthetic, or nil.
	Oneof            *Oneof
	OneofIndex       int32 // -1 when Oneof == nil
	IsSyntheticOneof bool
}

// OneofSourceKind distinguishes a literal `oneof` block from the synthetic
// single-member oneof proto3 generates for a bare `optional` field.
type OneofSourceKind int

const (
	OneofFromOneof OneofSourceKind = iota
	OneofSyntheticForField
)

// Oneof is a literal oneof or a proto3 synthetic oneof.
type Oneof struct {
	SourceKind OneofSourceKind
	AsOneof    *ast.Oneof  // valid when SourceKind == OneofFromOneof
	AsField    *ast.Field  // valid when SourceKind == OneofSyntheticForField
}

// Body returns the underlying ast.MessageBody for a literal message or group
// (ok is false for a synthesized map-entry message, which has no literal
// body: its enum/extend/extension-range/reserved/option declarations are
// all absent by construction). Callers use this to reach the parts of the
// source that ir intentionally does not lower: nested enums, nested
// extends, extensions/reserved ranges, and message-level options.
func (m *Message) Body() (ast.MessageBody, bool) {
	switch m.SourceKind {
	case MessageFromMessage:
		return m.AsMessage.Body, true
	case MessageFromGroup:
		return m.AsGroup.Body, true
	default:
		return ast.MessageBody{}, false
	}
}

// BuildFile lowers every message-shaped declaration in the file (messages
// and the field-holding parts of extend blocks; enums and services carry no
// field structure and are left to the checker to translate directly).
func BuildFile(astFile *ast.File) *File {
	f := &File{AST: astFile}
	for _, item := range astFile.Items {
		switch it := item.(type) {
		case ast.FileMessage:
			f.Messages = append(f.Messages, buildMessage(astFile.Syntax, it.Message))
		case ast.FileExtend:
			f.Messages = append(f.Messages, buildExtendGroups(astFile.Syntax, it.Extend)...)
		}
	}
	return f
}

func buildMessage(syntax ast.Syntax, m *ast.Message) *Message {
	fields, nested, oneofs := buildMessageBody(syntax, m.Body)
	return &Message{
		SourceKind: MessageFromMessage,
		AsMessage:  m,
		Name:       m.Name.Value,
		NameSpan:   m.Name.Span,
		Fields:     fields,
		Messages:   nested,
		Oneofs:     oneofs,
	}
}

// buildMessageBody lowers one `{ ... }` body shared by message, group and
// extend declarations. It returns the body's direct fields in declaration
// order (a map field appears here once; its key/value pseudo-fields stay on
// the map's own synthesized entry message), the nested
// messages (literal plus synthesized group/map messages), and the oneofs in
// final descriptor order: explicit oneofs first, then proto3 synthetic
// oneofs, each group stable in declaration order.
func buildMessageBody(syntax ast.Syntax, body ast.MessageBody) ([]*Field, []*Message, []*Oneof) {
	var fields []*Field
	var messages []*Message
	var explicitOneofs []*Oneof
	var syntheticOneofs []*Oneof

	appendOneof := func(o *Oneof) {
		if o.SourceKind == OneofFromOneof {
			explicitOneofs = append(explicitOneofs, o)
		} else {
			syntheticOneofs = append(syntheticOneofs, o)
		}
	}

	for _, item := range body.Items {
		fi, ok := item.(ast.FieldItem)
		if !ok {
			switch nested := item.(type) {
			case ast.NestedMessage:
				messages = append(messages, buildMessage(syntax, nested.Message))
			case ast.NestedExtend:
				messages = append(messages, buildExtendGroups(syntax, nested.Extend)...)
			}
			continue
		}

		switch field := fi.Field.(type) {
		case *ast.Field:
			f, oneof := buildNormalField(syntax, field, len(explicitOneofs)+len(syntheticOneofs))
			if oneof != nil {
				appendOneof(oneof)
			}
			fields = append(fields, f)

		case *ast.Group:
			nestedFields, nestedMessages, nestedOneofs := buildMessageBody(syntax, field.Body)
			messages = append(messages, &Message{
				SourceKind: MessageFromGroup,
				AsGroup:    field,
				Name:       field.Name.Value,
				NameSpan:   field.Name.Span,
				Fields:     nestedFields,
				Messages:   nestedMessages,
				Oneofs:     nestedOneofs,
			})
			fields = append(fields, &Field{SourceKind: FieldFromField, AsField: field, OneofIndex: -1})

		case *ast.Map:
			messages = append(messages, buildMapEntryMessage(field))
			fields = append(fields, &Field{SourceKind: FieldFromField, AsField: field, OneofIndex: -1})

		case *ast.Oneof:
			oneofIndex := int32(len(explicitOneofs) + len(syntheticOneofs))
			oneof := &Oneof{SourceKind: OneofFromOneof, AsOneof: field}
			for _, of := range field.Fields {
				switch ofField := of.(type) {
				case *ast.Field:
					fields = append(fields, &Field{
						SourceKind: FieldFromField, AsField: ofField,
						Oneof: oneof, OneofIndex: oneofIndex,
					})
				case *ast.Group:
					nestedFields, nestedMessages, nestedOneofs := buildMessageBody(syntax, ofField.Body)
					messages = append(messages, &Message{
						SourceKind: MessageFromGroup,
						AsGroup:    ofField,
						Name:       ofField.Name.Value,
						NameSpan:   ofField.Name.Span,
						Fields:     nestedFields,
						Messages:   nestedMessages,
						Oneofs:     nestedOneofs,
					})
					fields = append(fields, &Field{
						SourceKind: FieldFromField, AsField: ofField,
						Oneof: oneof, OneofIndex: oneofIndex,
					})
				case *ast.Map:
					// Not a legal oneof member (spec.md §4.3
					// InvalidOneofFieldKind); kept rather than dropped so
					// the checker sees it and reports instead of silently
					// losing the declaration.
					fields = append(fields, &Field{
						SourceKind: FieldFromField, AsField: ofField,
						Oneof: oneof, OneofIndex: oneofIndex,
					})
				}
			}
			appendOneof(oneof)
		}
	}

	oneofs := append(explicitOneofs, syntheticOneofs...)
	reindexOneofs(fields, oneofs)
	return fields, messages, oneofs
}

// buildNormalField lowers a plain (non-group, non-map) field, synthesizing
// a one-member oneof for a proto3 bare `optional` field per spec.md §4.1.
// The returned oneof is nil unless one was just synthesized.
func buildNormalField(syntax ast.Syntax, field *ast.Field, pendingOneofIndex int) (*Field, *Oneof) {
	if syntax != ast.Proto3 || field.Label == nil || *field.Label != ast.LabelOptional {
		return &Field{SourceKind: FieldFromField, AsField: field, OneofIndex: -1}, nil
	}
	oneof := &Oneof{SourceKind: OneofSyntheticForField, AsField: field}
	f := &Field{
		SourceKind: FieldFromField, AsField: field,
		Oneof: oneof, OneofIndex: int32(pendingOneofIndex), IsSyntheticOneof: true,
	}
	return f, oneof
}

// reindexOneofs fixes up Field.OneofIndex to the field's containing oneof's
// final position once explicit and synthetic oneofs have been concatenated;
// synthetic oneofs were provisionally numbered as if appended directly
// after however many oneofs existed at the time they were built, which is
// only correct once every explicit oneof in the body has been counted.
func reindexOneofs(fields []*Field, oneofs []*Oneof) {
	pos := make(map[*Oneof]int32, len(oneofs))
	for i, o := range oneofs {
		pos[o] = int32(i)
	}
	for _, f := range fields {
		if f.Oneof != nil {
			f.OneofIndex = pos[f.Oneof]
		}
	}
}

// buildMapEntryMessage synthesizes the implicit "*Entry" message for a map
// field, with its two pseudo-fields "key" (number 1) and "value" (number 2)
// per spec.md §4.1 "Map fields": the checker assigns the fixed name/number,
// the IR only carries the key/value types through.
func buildMapEntryMessage(field *ast.Map) *Message {
	return &Message{
		SourceKind: MessageFromMap,
		AsMap:      field,
		Name:       casing.ToPascalCase(field.Name.Value) + "Entry",
		NameSpan:   field.Name.Span,
		Fields: []*Field{
			{
				SourceKind:  FieldFromMapKey,
				MapType:     ast.Ty{Kind: ast.TyScalar, Scalar: field.KeyType.ToScalarType()},
				MapTypeSpan: field.KeyTypeSpan,
				OneofIndex:  -1,
			},
			{
				SourceKind:  FieldFromMapValue,
				MapType:     field.ValueType,
				MapTypeSpan: field.Span(),
				OneofIndex:  -1,
			},
		},
	}
}

// buildExtendGroups lowers only the group fields of an `extend` block: a
// group field inside an extend still implicitly declares a nested message,
// even though the extend block itself contributes no message of its own
// (spec.md §4.1 "Extend fields").
func buildExtendGroups(syntax ast.Syntax, extend *ast.Extend) []*Message {
	var messages []*Message
	for _, f := range extend.Fields {
		group, ok := f.(*ast.Group)
		if !ok {
			continue
		}
		nestedFields, nestedMessages, nestedOneofs := buildMessageBody(syntax, group.Body)
		messages = append(messages, &Message{
			SourceKind: MessageFromGroup,
			AsGroup:    group,
			Name:       group.Name.Value,
			NameSpan:   group.Name.Span,
			Fields:     nestedFields,
			Messages:   nestedMessages,
			Oneofs:     nestedOneofs,
		})
	}
	return messages
}
