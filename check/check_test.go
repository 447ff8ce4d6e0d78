package check

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protoxlang/protox/ast"
	"github.com/protoxlang/protox/ir"
	"github.com/protoxlang/protox/names"
	"github.com/protoxlang/protox/report"
)

func ident(v string) ast.Ident { return ast.Ident{Value: v} }

func scalarTy(s ast.ScalarType) ast.Ty { return ast.Ty{Kind: ast.TyScalar, Scalar: s} }

func namedTy(parts ...string) ast.Ty {
	idents := make([]ast.Ident, len(parts))
	for i, p := range parts {
		idents[i] = ident(p)
	}
	return ast.Ty{Kind: ast.TyNamed, Name: ast.TypeName{Parts: idents}}
}

func intLit(v uint64) ast.IntLit { return ast.IntLit{Value: v} }

func label(l ast.FieldLabel) *ast.FieldLabel { return &l }

func buildAndCheck(t *testing.T, file *ast.File) (*descriptorpb.FileDescriptorProto, []report.Diagnostic) {
	t.Helper()
	irFile := ir.BuildFile(file)
	nm, nameDiags := names.Collect(irFile, nil)
	require.Empty(t, nameDiags)
	fdp, diags := CheckFile(irFile, nm)
	return fdp, diags
}

func TestCheckEmptyFile(t *testing.T) {
	file := &ast.File{Syntax: ast.Proto3, Package: []ast.Ident{ident("pkg")}}
	fdp, diags := buildAndCheck(t, file)
	require.Empty(t, diags)
	require.Equal(t, "pkg", fdp.GetPackage())
	require.Equal(t, "proto3", fdp.GetSyntax())
	require.Empty(t, fdp.MessageType)
}

func TestCheckMapEntryMessage(t *testing.T) {
	field := &ast.Map{
		Name: ident("counts"), Number: intLit(1),
		KeyType: ast.KeyString, ValueType: scalarTy(ast.Int32),
	}
	msg := &ast.Message{Name: ident("Foo"), Body: ast.MessageBody{Items: []ast.MessageItem{ast.FieldItem{Field: field}}}}
	file := &ast.File{
		Syntax: ast.Proto3, Package: []ast.Ident{ident("pkg")},
		Items: []ast.FileItem{ast.FileMessage{Message: msg}},
	}

	fdp, diags := buildAndCheck(t, file)
	require.Empty(t, diags)
	require.Len(t, fdp.MessageType, 1)

	foo := fdp.MessageType[0]
	require.Len(t, foo.NestedType, 1)
	entry := foo.NestedType[0]
	require.Equal(t, "CountsEntry", entry.GetName())
	require.True(t, entry.GetOptions().GetMapEntry())
	require.Len(t, entry.Field, 2)
	require.Equal(t, "key", entry.Field[0].GetName())
	require.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_STRING, entry.Field[0].GetType())
	require.Equal(t, "value", entry.Field[1].GetName())
	require.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_INT32, entry.Field[1].GetType())

	require.Len(t, foo.Field, 1)
	countsField := foo.Field[0]
	require.Equal(t, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, countsField.GetLabel())
	require.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, countsField.GetType())
	require.Equal(t, ".pkg.Foo.CountsEntry", countsField.GetTypeName())
}

func TestCheckGroupMessage(t *testing.T) {
	group := &ast.Group{
		Name: ident("ResultGroup"), Number: intLit(2), Label: label(ast.LabelOptional),
	}
	msg := &ast.Message{Name: ident("Foo"), Body: ast.MessageBody{Items: []ast.MessageItem{ast.FieldItem{Field: group}}}}
	file := &ast.File{
		Syntax: ast.Proto2, Package: []ast.Ident{ident("pkg")},
		Items: []ast.FileItem{ast.FileMessage{Message: msg}},
	}

	fdp, diags := buildAndCheck(t, file)
	require.Empty(t, diags)

	foo := fdp.MessageType[0]
	require.Len(t, foo.NestedType, 1)
	require.Equal(t, "ResultGroup", foo.NestedType[0].GetName())

	require.Len(t, foo.Field, 1)
	gf := foo.Field[0]
	require.Equal(t, "resultgroup", gf.GetName())
	require.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_GROUP, gf.GetType())
	require.Equal(t, ".pkg.Foo.ResultGroup", gf.GetTypeName())
}

func TestCheckSyntheticOneof(t *testing.T) {
	field := &ast.Field{Name: ident("name"), Number: intLit(1), Label: label(ast.LabelOptional), Type: scalarTy(ast.String)}
	msg := &ast.Message{Name: ident("Foo"), Body: ast.MessageBody{Items: []ast.MessageItem{ast.FieldItem{Field: field}}}}
	file := &ast.File{
		Syntax: ast.Proto3, Package: []ast.Ident{ident("pkg")},
		Items: []ast.FileItem{ast.FileMessage{Message: msg}},
	}

	fdp, diags := buildAndCheck(t, file)
	require.Empty(t, diags)

	foo := fdp.MessageType[0]
	require.Len(t, foo.OneofDecl, 1)
	require.Equal(t, "_name", foo.OneofDecl[0].GetName())
	require.Len(t, foo.Field, 1)
	require.Equal(t, int32(0), foo.Field[0].GetOneofIndex())
	require.True(t, foo.Field[0].GetProto3Optional())
}

func TestCheckOneofOrdering(t *testing.T) {
	synthetic := &ast.Field{Name: ident("opt"), Number: intLit(1), Label: label(ast.LabelOptional), Type: scalarTy(ast.String)}
	explicitA := &ast.Field{Name: ident("a"), Number: intLit(2), Type: scalarTy(ast.Int32)}
	explicitOneof := &ast.Oneof{Name: ident("choice"), Fields: []ast.MessageField{explicitA}}

	msg := &ast.Message{Name: ident("Foo"), Body: ast.MessageBody{Items: []ast.MessageItem{
		ast.FieldItem{Field: synthetic},
		ast.FieldItem{Field: explicitOneof},
	}}}
	file := &ast.File{
		Syntax: ast.Proto3, Package: []ast.Ident{ident("pkg")},
		Items: []ast.FileItem{ast.FileMessage{Message: msg}},
	}

	fdp, diags := buildAndCheck(t, file)
	require.Empty(t, diags)

	foo := fdp.MessageType[0]
	require.Len(t, foo.OneofDecl, 2)
	require.Equal(t, "choice", foo.OneofDecl[0].GetName())
	require.Equal(t, "_opt", foo.OneofDecl[1].GetName())

	for _, f := range foo.Field {
		switch f.GetName() {
		case "a":
			require.Equal(t, int32(0), f.GetOneofIndex())
		case "opt":
			require.Equal(t, int32(1), f.GetOneofIndex())
		}
	}
}

func TestCheckNameResolutionForwardReference(t *testing.T) {
	barRef := &ast.Field{Name: ident("bar"), Number: intLit(1), Label: label(ast.LabelOptional), Type: namedTy("Bar")}
	foo := &ast.Message{Name: ident("Foo"), Body: ast.MessageBody{Items: []ast.MessageItem{ast.FieldItem{Field: barRef}}}}
	bar := &ast.Message{Name: ident("Bar")}
	file := &ast.File{
		Syntax: ast.Proto3, Package: []ast.Ident{ident("pkg")},
		Items: []ast.FileItem{ast.FileMessage{Message: foo}, ast.FileMessage{Message: bar}},
	}

	fdp, diags := buildAndCheck(t, file)
	require.Empty(t, diags)

	fooDesc := fdp.MessageType[0]
	require.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, fooDesc.Field[0].GetType())
	require.Equal(t, ".pkg.Bar", fooDesc.Field[0].GetTypeName())
}

func TestCheckReservedRanges(t *testing.T) {
	msg := &ast.Message{
		Name: ident("Foo"),
		Body: ast.MessageBody{
			Reserved: []*ast.Reserved{
				{Kind: ast.ReservedRanges, Ranges: []*ast.ReservedRange{
					{Start: intLit(5), EndKind: ast.ReservedRangeEndNone},
					{Start: intLit(10), EndKind: ast.ReservedRangeEndInt, End: intLit(12)},
					{Start: intLit(15), EndKind: ast.ReservedRangeEndMax},
				}},
				{Kind: ast.ReservedNames, Names: []ast.Ident{ident("old_field")}},
			},
		},
	}
	file := &ast.File{Syntax: ast.Proto3, Items: []ast.FileItem{ast.FileMessage{Message: msg}}}

	fdp, diags := buildAndCheck(t, file)
	require.Empty(t, diags)

	foo := fdp.MessageType[0]
	require.Len(t, foo.ReservedRange, 3)
	require.Equal(t, int32(5), foo.ReservedRange[0].GetStart())
	require.Equal(t, int32(6), foo.ReservedRange[0].GetEnd())
	require.Equal(t, int32(10), foo.ReservedRange[1].GetStart())
	require.Equal(t, int32(13), foo.ReservedRange[1].GetEnd())
	require.Equal(t, int32(15), foo.ReservedRange[2].GetStart())
	require.Equal(t, int32(MaxFieldNumber+1), foo.ReservedRange[2].GetEnd())
	require.Equal(t, []string{"old_field"}, foo.ReservedName)
}

func TestCheckProto2MissingLabelDiagnostic(t *testing.T) {
	field := &ast.Field{Name: ident("id"), Number: intLit(1), Type: scalarTy(ast.Int32)}
	msg := &ast.Message{Name: ident("Foo"), Body: ast.MessageBody{Items: []ast.MessageItem{ast.FieldItem{Field: field}}}}
	file := &ast.File{Syntax: ast.Proto2, Items: []ast.FileItem{ast.FileMessage{Message: msg}}}

	_, diags := buildAndCheck(t, file)
	require.Len(t, diags, 1)
	require.Equal(t, "proto2-field-missing-label", diags[0].Kind.String())
}

func TestCheckProto3RequiredFieldDiagnostic(t *testing.T) {
	field := &ast.Field{Name: ident("id"), Number: intLit(1), Label: label(ast.LabelRequired), Type: scalarTy(ast.Int32)}
	msg := &ast.Message{Name: ident("Foo"), Body: ast.MessageBody{Items: []ast.MessageItem{ast.FieldItem{Field: field}}}}
	file := &ast.File{Syntax: ast.Proto3, Items: []ast.FileItem{ast.FileMessage{Message: msg}}}

	_, diags := buildAndCheck(t, file)
	require.Len(t, diags, 1)
	require.Equal(t, "proto3-required-field", diags[0].Kind.String())
}

func TestCheckExtend(t *testing.T) {
	base := &ast.Message{
		Name: ident("Base"),
		Body: ast.MessageBody{Extensions: []*ast.Extensions{{Ranges: []*ast.ReservedRange{
			{Start: intLit(100), EndKind: ast.ReservedRangeEndMax},
		}}}},
	}
	extField := &ast.Field{Name: ident("extra"), Number: intLit(100), Label: label(ast.LabelOptional), Type: scalarTy(ast.String)}
	extend := &ast.Extend{Extendee: ast.TypeName{Parts: []ast.Ident{ident("Base")}}, Fields: []ast.MessageField{extField}}
	file := &ast.File{
		Syntax: ast.Proto2, Package: []ast.Ident{ident("pkg")},
		Items: []ast.FileItem{ast.FileMessage{Message: base}, ast.FileExtend{Extend: extend}},
	}

	fdp, diags := buildAndCheck(t, file)
	require.Empty(t, diags)
	require.Len(t, fdp.Extension, 1)
	require.Equal(t, "extra", fdp.Extension[0].GetName())
	require.Equal(t, ".pkg.Base", fdp.Extension[0].GetExtendee())
}

func TestCheckMapFieldInsideOneofIsRejected(t *testing.T) {
	mapField := &ast.Map{Name: ident("bad"), Number: intLit(1), KeyType: ast.KeyString, ValueType: scalarTy(ast.Int32)}
	oneof := &ast.Oneof{Name: ident("choice"), Fields: []ast.MessageField{mapField}}
	msg := &ast.Message{Name: ident("Foo"), Body: ast.MessageBody{Items: []ast.MessageItem{ast.FieldItem{Field: oneof}}}}
	file := &ast.File{Syntax: ast.Proto3, Items: []ast.FileItem{ast.FileMessage{Message: msg}}}

	_, diags := buildAndCheck(t, file)
	require.Len(t, diags, 1)
	require.Equal(t, "invalid-oneof-field-kind", diags[0].Kind.String())
}
