package check

import (
	"math"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protoxlang/protox/ast"
	"github.com/protoxlang/protox/internal/casing"
	"github.com/protoxlang/protox/ir"
	"github.com/protoxlang/protox/names"
	"github.com/protoxlang/protox/report"
)

// fieldContext carries the bits of enclosing state a field descriptor needs
// that don't come from the field's own AST node: which oneof (if any) it
// belongs to, whether that oneof is an explicit one (label validation
// differs for synthetic proto3-optional oneofs), and which message it
// extends, if any.
type fieldContext struct {
	oneofIndex      *int32
	inExplicitOneof bool
	extendee        *string
}

// checkMessage emits one DescriptorProto for a literal message, a group
// field's implicit nested message, or a map field's implicit entry message.
func (c *checker) checkMessage(msg *ir.Message) *descriptorpb.DescriptorProto {
	if msg.SourceKind == ir.MessageFromMap {
		return c.checkMapEntryMessage(msg)
	}

	kind := frameMessage
	if msg.SourceKind == ir.MessageFromGroup {
		kind = frameGroup
	}
	c.ctx.enterNamed(kind, msg.Name)
	d := c.checkMessageBody(msg)
	c.ctx.exit()
	d.Name = proto.String(msg.Name)
	return d
}

func (c *checker) checkMessageBody(msg *ir.Message) *descriptorpb.DescriptorProto {
	d := &descriptorpb.DescriptorProto{}

	for _, f := range msg.Fields {
		if fd := c.checkIRField(f); fd != nil {
			d.Field = append(d.Field, fd)
		}
	}
	for _, nested := range msg.Messages {
		d.NestedType = append(d.NestedType, c.checkMessage(nested))
	}
	for _, o := range msg.Oneofs {
		d.OneofDecl = append(d.OneofDecl, c.checkOneof(o))
	}

	body, ok := msg.Body()
	if !ok {
		return d
	}
	for _, item := range body.Items {
		switch v := item.(type) {
		case ast.NestedEnum:
			d.EnumType = append(d.EnumType, c.checkEnum(v.Enum))
		case ast.NestedExtend:
			d.Extension = append(d.Extension, c.checkExtend(v.Extend)...)
		}
	}
	for _, ext := range body.Extensions {
		d.ExtensionRange = append(d.ExtensionRange, c.checkExtensionRanges(ext)...)
	}
	for _, r := range body.Reserved {
		rr, rn := c.checkReserved(r)
		d.ReservedRange = append(d.ReservedRange, rr...)
		d.ReservedName = append(d.ReservedName, rn...)
	}
	d.Options = c.messageOptions(body.Options)
	return d
}

func (c *checker) checkMapEntryMessage(msg *ir.Message) *descriptorpb.DescriptorProto {
	d := &descriptorpb.DescriptorProto{
		Name:    proto.String(msg.Name),
		Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
	}
	for _, f := range msg.Fields {
		d.Field = append(d.Field, c.checkIRField(f))
	}
	return d
}

func (c *checker) checkOneof(o *ir.Oneof) *descriptorpb.OneofDescriptorProto {
	if o.SourceKind == ir.OneofSyntheticForField {
		return &descriptorpb.OneofDescriptorProto{Name: proto.String("_" + o.AsField.Name.Value)}
	}
	return &descriptorpb.OneofDescriptorProto{
		Name:    proto.String(o.AsOneof.Name.Value),
		Options: c.oneofOptions(o.AsOneof.Options),
	}
}

// checkIRField dispatches a message-body field (never an extend field; those
// go through checkExtend directly since ir does not lower them).
func (c *checker) checkIRField(f *ir.Field) *descriptorpb.FieldDescriptorProto {
	switch f.SourceKind {
	case ir.FieldFromMapKey:
		return c.mapPseudoField("key", 1, f.MapType, f.MapTypeSpan)
	case ir.FieldFromMapValue:
		return c.mapPseudoField("value", 2, f.MapType, f.MapTypeSpan)
	}

	var fc fieldContext
	if f.Oneof != nil {
		index := f.OneofIndex
		fc.oneofIndex = &index
		fc.inExplicitOneof = !f.IsSyntheticOneof
	}

	switch field := f.AsField.(type) {
	case *ast.Field:
		return c.checkNormalField(field, fc)
	case *ast.Group:
		return c.checkGroupField(field, fc)
	case *ast.Map:
		return c.checkMapField(field, fc)
	default:
		return nil
	}
}

func (c *checker) mapPseudoField(name string, number int32, ty ast.Ty, span report.Span) *descriptorpb.FieldDescriptorProto {
	t, typeName := c.resolveFieldType(ty, span)
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     t,
		TypeName: typeName,
		JsonName: proto.String(name),
	}
}

func (c *checker) checkNormalField(field *ast.Field, fc fieldContext) *descriptorpb.FieldDescriptorProto {
	number, _ := c.fieldNumber(field.Number, field.SpanVal)
	label := fieldLabel(field.Label)
	c.checkLabel(field.Label, fc, field.SpanVal)

	ty, typeName := c.resolveFieldType(field.Type, field.SpanVal)

	opts, defaultValue := c.fieldOptions(field.Options)
	if defaultValue != nil && ty != nil && *ty == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE {
		c.errorf(report.InvalidDefault, field.SpanVal, "message field %q cannot have a default value", field.Name.Value)
	}

	var proto3Optional *bool
	if c.syntax == ast.Proto3 && field.Label != nil && *field.Label == ast.LabelOptional {
		proto3Optional = proto.Bool(true)
	}

	return &descriptorpb.FieldDescriptorProto{
		Name:           proto.String(field.Name.Value),
		Number:         number,
		Label:          label,
		Type:           ty,
		TypeName:       typeName,
		Extendee:       fc.extendee,
		DefaultValue:   defaultValue,
		OneofIndex:     fc.oneofIndex,
		JsonName:       proto.String(casing.ToJSONName(field.Name.Value)),
		Options:        opts,
		Proto3Optional: proto3Optional,
	}
}

func (c *checker) checkGroupField(group *ast.Group, fc fieldContext) *descriptorpb.FieldDescriptorProto {
	number, _ := c.fieldNumber(group.Number, group.SpanVal)
	label := fieldLabel(group.Label)

	if c.syntax == ast.Proto3 {
		c.errorf(report.Proto3GroupField, group.SpanVal, "group fields are not allowed in proto3")
	} else {
		c.checkLabel(group.Label, fc, group.SpanVal)
	}

	opts, defaultValue := c.fieldOptions(group.Options)
	if defaultValue != nil {
		c.errorf(report.InvalidDefault, group.SpanVal, "group field %q cannot have a default value", group.Name.Value)
	}

	typeName := c.resolveLocalTypeName(group.Name.Value, group.Name.Span)

	return &descriptorpb.FieldDescriptorProto{
		Name:       proto.String(strings.ToLower(group.Name.Value)),
		Number:     number,
		Label:      label,
		Type:       descriptorpb.FieldDescriptorProto_TYPE_GROUP.Enum(),
		TypeName:   typeName,
		Extendee:   fc.extendee,
		OneofIndex: fc.oneofIndex,
		JsonName:   proto.String(casing.ToJSONName(strings.ToLower(group.Name.Value))),
		Options:    opts,
	}
}

func (c *checker) checkMapField(field *ast.Map, fc fieldContext) *descriptorpb.FieldDescriptorProto {
	if fc.inExplicitOneof {
		c.errorf(report.InvalidOneofFieldKind, field.SpanVal, "map fields are not allowed inside a oneof")
		return nil
	}

	number, _ := c.fieldNumber(field.Number, field.SpanVal)
	entryName := casing.ToPascalCase(field.Name.Value) + "Entry"
	typeName := c.resolveLocalTypeName(entryName, field.Name.Span)

	opts, defaultValue := c.fieldOptions(field.Options)
	if field.Label != nil {
		c.errorf(report.MapFieldWithLabel, field.SpanVal, "map fields cannot have an explicit label")
	}
	if defaultValue != nil {
		c.errorf(report.InvalidDefault, field.SpanVal, "map field %q cannot have a default value", field.Name.Value)
	}

	return &descriptorpb.FieldDescriptorProto{
		Name:       proto.String(field.Name.Value),
		Number:     number,
		Label:      descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
		Type:       descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
		TypeName:   typeName,
		Extendee:   fc.extendee,
		OneofIndex: fc.oneofIndex,
		JsonName:   proto.String(casing.ToJSONName(field.Name.Value)),
		Options:    opts,
	}
}

// checkLabel implements the proto2/proto3 label validation matrix (spec.md
// §4.3 "Labels"). It must see the explicit-oneof flag rather than "has any
// containing oneof", since a proto3 bare `optional` field's synthetic oneof
// membership is exactly what makes that label legal.
func (c *checker) checkLabel(label *ast.FieldLabel, fc fieldContext, span report.Span) {
	switch {
	case fc.extendee != nil && label != nil && *label == ast.LabelRequired:
		c.errorf(report.RequiredExtendField, span, "extension fields cannot be required")
	case fc.inExplicitOneof && label != nil:
		c.errorf(report.OneofFieldWithLabel, span, "oneof fields cannot carry an explicit label")
	case c.syntax == ast.Proto2 && label == nil && !fc.inExplicitOneof:
		c.errorf(report.Proto2FieldMissingLabel, span, "proto2 fields require an explicit label")
	case c.syntax == ast.Proto3 && label != nil && *label == ast.LabelRequired:
		c.errorf(report.Proto3RequiredField, span, "proto3 fields cannot be required")
	}
}

func fieldLabel(label *ast.FieldLabel) *descriptorpb.FieldDescriptorProto_Label {
	l := ast.LabelOptional
	if label != nil {
		l = *label
	}
	var out descriptorpb.FieldDescriptorProto_Label
	switch l {
	case ast.LabelRequired:
		out = descriptorpb.FieldDescriptorProto_LABEL_REQUIRED
	case ast.LabelRepeated:
		out = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	default:
		out = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	}
	return &out
}

// resolveFieldType resolves a field's declared type to a descriptor type and
// (for message/enum/group types) its fully-qualified name.
func (c *checker) resolveFieldType(ty ast.Ty, span report.Span) (*descriptorpb.FieldDescriptorProto_Type, *string) {
	if ty.Kind == ast.TyScalar {
		t := scalarFieldType(ty.Scalar)
		return &t, nil
	}

	abs, entry, ok := c.resolveTypeName(ty.Name)
	if !ok {
		c.errorf(report.TypeNameNotFound, span, "type name %q not found", ty.Name.String())
		return nil, proto.String(ty.Name.String())
	}
	switch entry.Kind {
	case names.KindMessage:
		return descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(), proto.String(abs)
	case names.KindGroup:
		return descriptorpb.FieldDescriptorProto_TYPE_GROUP.Enum(), proto.String(abs)
	case names.KindEnum:
		return descriptorpb.FieldDescriptorProto_TYPE_ENUM.Enum(), proto.String(abs)
	default:
		c.errorf(report.InvalidMessageFieldTypeName, span, "%q does not name a message, enum or group", ty.Name.String())
		return nil, proto.String(abs)
	}
}

// resolveLocalTypeName resolves the name of a message ir itself synthesized
// (a map entry or group's nested message) at the current scope; it was
// already inserted into the NameMap by package names under this exact name.
func (c *checker) resolveLocalTypeName(name string, span report.Span) *string {
	abs, _, ok := c.names.Resolve(c.ctx.scope(), name)
	if !ok {
		c.errorf(report.TypeNameNotFound, span, "type name %q not found", name)
		return proto.String(name)
	}
	return proto.String(abs)
}

func scalarFieldType(s ast.ScalarType) descriptorpb.FieldDescriptorProto_Type {
	switch s {
	case ast.Double:
		return descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	case ast.Float:
		return descriptorpb.FieldDescriptorProto_TYPE_FLOAT
	case ast.Int64:
		return descriptorpb.FieldDescriptorProto_TYPE_INT64
	case ast.Uint64:
		return descriptorpb.FieldDescriptorProto_TYPE_UINT64
	case ast.Int32:
		return descriptorpb.FieldDescriptorProto_TYPE_INT32
	case ast.Fixed64:
		return descriptorpb.FieldDescriptorProto_TYPE_FIXED64
	case ast.Fixed32:
		return descriptorpb.FieldDescriptorProto_TYPE_FIXED32
	case ast.Bool:
		return descriptorpb.FieldDescriptorProto_TYPE_BOOL
	case ast.String:
		return descriptorpb.FieldDescriptorProto_TYPE_STRING
	case ast.Bytes:
		return descriptorpb.FieldDescriptorProto_TYPE_BYTES
	case ast.Uint32:
		return descriptorpb.FieldDescriptorProto_TYPE_UINT32
	case ast.Sfixed32:
		return descriptorpb.FieldDescriptorProto_TYPE_SFIXED32
	case ast.Sfixed64:
		return descriptorpb.FieldDescriptorProto_TYPE_SFIXED64
	case ast.Sint32:
		return descriptorpb.FieldDescriptorProto_TYPE_SINT32
	case ast.Sint64:
		return descriptorpb.FieldDescriptorProto_TYPE_SINT64
	default:
		return descriptorpb.FieldDescriptorProto_TYPE_STRING
	}
}

// fieldNumber validates a field/extension/reserved-range number against
// spec.md §4.3's [1, MaxFieldNumber] range.
func (c *checker) fieldNumber(lit ast.IntLit, span report.Span) (*int32, bool) {
	if lit.Negative || lit.Value < 1 || lit.Value > uint64(MaxFieldNumber) {
		c.errorf(report.InvalidMessageNumber, span, "field number must be between 1 and %d", MaxFieldNumber)
		return nil, false
	}
	return proto.Int32(int32(lit.Value)), true
}

// enumNumber validates an enum value number against the full i32 range.
func (c *checker) enumNumber(lit ast.IntLit, span report.Span) (*int32, bool) {
	v := int64(lit.Value)
	if lit.Negative {
		v = -v
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		c.errorf(report.InvalidEnumNumber, span, "enum value number out of range")
		return nil, false
	}
	return proto.Int32(int32(v)), true
}

func (c *checker) checkReservedRange(r *ast.ReservedRange) *descriptorpb.DescriptorProto_ReservedRange {
	start, ok := c.fieldNumber(r.Start, r.Span)
	if !ok {
		return &descriptorpb.DescriptorProto_ReservedRange{}
	}
	var end *int32
	switch r.EndKind {
	case ast.ReservedRangeEndNone:
		end = proto.Int32(*start + 1)
	case ast.ReservedRangeEndInt:
		if e, ok2 := c.fieldNumber(r.End, r.Span); ok2 {
			end = proto.Int32(*e + 1)
		}
	case ast.ReservedRangeEndMax:
		end = proto.Int32(MaxFieldNumber + 1)
	}
	return &descriptorpb.DescriptorProto_ReservedRange{Start: start, End: end}
}

func (c *checker) checkReserved(r *ast.Reserved) ([]*descriptorpb.DescriptorProto_ReservedRange, []string) {
	if r.Kind == ast.ReservedNames {
		names := make([]string, len(r.Names))
		for i, n := range r.Names {
			names[i] = n.Value
		}
		return nil, names
	}
	ranges := make([]*descriptorpb.DescriptorProto_ReservedRange, len(r.Ranges))
	for i, rr := range r.Ranges {
		ranges[i] = c.checkReservedRange(rr)
	}
	return ranges, nil
}

func (c *checker) checkExtensionRange(r *ast.ReservedRange, opts *descriptorpb.ExtensionRangeOptions) *descriptorpb.DescriptorProto_ExtensionRange {
	start, ok := c.fieldNumber(r.Start, r.Span)
	if !ok {
		return &descriptorpb.DescriptorProto_ExtensionRange{Options: opts}
	}
	var end *int32
	switch r.EndKind {
	case ast.ReservedRangeEndNone:
		end = proto.Int32(*start + 1)
	case ast.ReservedRangeEndInt:
		if e, ok2 := c.fieldNumber(r.End, r.Span); ok2 {
			end = proto.Int32(*e + 1)
		}
	case ast.ReservedRangeEndMax:
		end = proto.Int32(MaxFieldNumber + 1)
	}
	return &descriptorpb.DescriptorProto_ExtensionRange{Start: start, End: end, Options: opts}
}

func (c *checker) checkExtensionRanges(ext *ast.Extensions) []*descriptorpb.DescriptorProto_ExtensionRange {
	opts := c.extensionRangeOptions(ext.Options)
	out := make([]*descriptorpb.DescriptorProto_ExtensionRange, len(ext.Ranges))
	for i, r := range ext.Ranges {
		out[i] = c.checkExtensionRange(r, opts)
	}
	return out
}

func (c *checker) checkEnumReservedRange(r *ast.ReservedRange) *descriptorpb.EnumDescriptorProto_EnumReservedRange {
	start, ok := c.enumNumber(r.Start, r.Span)
	if !ok {
		return &descriptorpb.EnumDescriptorProto_EnumReservedRange{}
	}
	var end *int32
	switch r.EndKind {
	case ast.ReservedRangeEndNone:
		end = start
	case ast.ReservedRangeEndInt:
		if e, ok2 := c.enumNumber(r.End, r.Span); ok2 {
			end = e
		}
	case ast.ReservedRangeEndMax:
		end = proto.Int32(math.MaxInt32)
	}
	return &descriptorpb.EnumDescriptorProto_EnumReservedRange{Start: start, End: end}
}

func (c *checker) checkEnumReserved(r *ast.Reserved) ([]*descriptorpb.EnumDescriptorProto_EnumReservedRange, []string) {
	if r.Kind == ast.ReservedNames {
		names := make([]string, len(r.Names))
		for i, n := range r.Names {
			names[i] = n.Value
		}
		return nil, names
	}
	ranges := make([]*descriptorpb.EnumDescriptorProto_EnumReservedRange, len(r.Ranges))
	for i, rr := range r.Ranges {
		ranges[i] = c.checkEnumReservedRange(rr)
	}
	return ranges, nil
}

func (c *checker) checkEnum(e *ast.Enum) *descriptorpb.EnumDescriptorProto {
	c.ctx.enterNamed(frameEnum, e.Name.Value)
	defer c.ctx.exit()

	d := &descriptorpb.EnumDescriptorProto{Name: proto.String(e.Name.Value)}
	for _, v := range e.Values {
		d.Value = append(d.Value, c.checkEnumValue(v))
	}
	d.Options = c.enumOptions(e.Options)
	for _, r := range e.Reserved {
		rr, rn := c.checkEnumReserved(r)
		d.ReservedRange = append(d.ReservedRange, rr...)
		d.ReservedName = append(d.ReservedName, rn...)
	}
	return d
}

func (c *checker) checkEnumValue(v *ast.EnumValue) *descriptorpb.EnumValueDescriptorProto {
	number, _ := c.enumNumber(v.Value, v.Span)
	return &descriptorpb.EnumValueDescriptorProto{
		Name:    proto.String(v.Name.Value),
		Number:  number,
		Options: c.enumValueOptions(v.Options),
	}
}

func (c *checker) checkService(s *ast.Service) *descriptorpb.ServiceDescriptorProto {
	d := &descriptorpb.ServiceDescriptorProto{Name: proto.String(s.Name.Value), Options: c.serviceOptions(s.Options)}
	c.ctx.enterNamed(frameService, s.Name.Value)
	for _, m := range s.Methods {
		d.Method = append(d.Method, c.checkMethod(m))
	}
	c.ctx.exit()
	return d
}

func (c *checker) checkMethod(m *ast.Method) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:            proto.String(m.Name.Value),
		InputType:       c.resolveMethodTypeName(m.InputType, "input"),
		OutputType:      c.resolveMethodTypeName(m.OutputType, "output"),
		ClientStreaming: proto.Bool(m.ClientStreaming),
		ServerStreaming: proto.Bool(m.ServerStreaming),
		Options:         c.methodOptions(m.Options),
	}
}

func (c *checker) resolveMethodTypeName(name ast.TypeName, which string) *string {
	abs, entry, ok := c.resolveTypeName(name)
	if !ok {
		c.errorf(report.TypeNameNotFound, name.Span(), "type name %q not found", name.String())
		return proto.String(name.String())
	}
	if entry.Kind != names.KindMessage && entry.Kind != names.KindGroup {
		c.errorf(report.InvalidMethodTypeName, name.Span(), "%s type %q does not name a message or group", which, name.String())
	}
	return proto.String(abs)
}

// checkExtend emits the field descriptors an `extend` block contributes
// (spec.md §4.3 "Extend"): the extendee is resolved once, pushed as a frame
// so each field's Extendee is populated, and only Field/Group members are
// legal — Map and nested Oneof are InvalidExtendFieldKind.
func (c *checker) checkExtend(ext *ast.Extend) []*descriptorpb.FieldDescriptorProto {
	abs, entry, ok := c.resolveTypeName(ext.Extendee)
	var extendee *string
	if !ok {
		c.errorf(report.TypeNameNotFound, ext.Extendee.Span(), "type name %q not found", ext.Extendee.String())
		extendee = proto.String(ext.Extendee.String())
	} else {
		if entry.Kind != names.KindMessage && entry.Kind != names.KindGroup {
			c.errorf(report.InvalidExtendeeTypeName, ext.Extendee.Span(), "%q does not name a message or group", ext.Extendee.String())
		}
		extendee = proto.String(abs)
	}

	c.ctx.enterExtend(*extendee)
	defer c.ctx.exit()

	fc := fieldContext{extendee: extendee}
	var fields []*descriptorpb.FieldDescriptorProto
	for _, item := range ext.Fields {
		switch field := item.(type) {
		case *ast.Field:
			fields = append(fields, c.checkNormalField(field, fc))
		case *ast.Group:
			fields = append(fields, c.checkGroupField(field, fc))
		default:
			c.errorf(report.InvalidExtendFieldKind, item.Span(), "%s fields are not allowed inside extend", item.KindName())
		}
	}
	return fields
}
