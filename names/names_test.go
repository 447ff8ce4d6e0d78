package names

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protoxlang/protox/ast"
	"github.com/protoxlang/protox/ir"
)

func ident(v string) ast.Ident { return ast.Ident{Value: v} }

func scalarTy(s ast.ScalarType) ast.Ty { return ast.Ty{Kind: ast.TyScalar, Scalar: s} }

func TestCollectMessageAndFieldNames(t *testing.T) {
	field := &ast.Field{Name: ident("id"), Number: ast.IntLit{Value: 1}, Type: scalarTy(ast.Int32)}
	msg := &ast.Message{Name: ident("Foo"), Body: ast.MessageBody{Items: []ast.MessageItem{ast.FieldItem{Field: field}}}}
	file := &ast.File{
		Syntax:  ast.Proto3,
		Package: []ast.Ident{ident("pkg")},
		Items:   []ast.FileItem{ast.FileMessage{Message: msg}},
	}

	m, diags := Collect(ir.BuildFile(file), nil)
	require.Empty(t, diags)

	_, ok := m.Get("pkg")
	require.True(t, ok)
	entry, ok := m.Get("pkg.Foo")
	require.True(t, ok)
	require.Equal(t, KindMessage, entry.Kind)
	fieldEntry, ok := m.Get("pkg.Foo.id")
	require.True(t, ok)
	require.Equal(t, KindField, fieldEntry.Kind)
	require.Equal(t, int32(1), fieldEntry.Number)
}

func TestCollectDuplicateNameDiagnostic(t *testing.T) {
	msgA := &ast.Message{Name: ident("Foo")}
	msgB := &ast.Message{Name: ident("Foo")}
	file := &ast.File{
		Syntax: ast.Proto3,
		Items:  []ast.FileItem{ast.FileMessage{Message: msgA}, ast.FileMessage{Message: msgB}},
	}

	_, diags := Collect(ir.BuildFile(file), nil)
	require.Len(t, diags, 1)
	require.Equal(t, "duplicate-name", diags[0].Kind.String())
}

func TestResolveInnermostToOutermost(t *testing.T) {
	m := New()
	m.entries["pkg.Foo"] = Entry{Kind: KindMessage}
	m.entries["pkg.Bar"] = Entry{Kind: KindMessage}

	abs, entry, ok := m.Resolve("pkg.Foo", "Bar")
	require.True(t, ok)
	require.Equal(t, ".pkg.Bar", abs)
	require.Equal(t, KindMessage, entry.Kind)

	_, _, ok = m.Resolve("pkg.Foo", "Baz")
	require.False(t, ok)

	abs, _, ok = m.Resolve("pkg.Foo", ".pkg.Bar")
	require.True(t, ok)
	require.Equal(t, ".pkg.Bar", abs)
}

func TestMergePublicImportVisibility(t *testing.T) {
	dep := New()
	dep.entries["Exported"] = Entry{Kind: KindMessage, Public: true}
	dep.entries["Hidden"] = Entry{Kind: KindMessage, Public: false}

	msg := &ast.Message{Name: ident("User")}
	file := &ast.File{
		Syntax:  ast.Proto3,
		Imports: []*ast.Import{{Path: "dep.proto", Public: true}},
		Items:   []ast.FileItem{ast.FileMessage{Message: msg}},
	}

	m, diags := Collect(ir.BuildFile(file), map[string]*Map{"dep.proto": dep})
	require.Empty(t, diags)

	_, ok := m.Get("Exported")
	require.True(t, ok)
	_, ok = m.Get("Hidden")
	require.False(t, ok)
}

func TestGroupFieldNameIsLowercased(t *testing.T) {
	group := &ast.Group{Name: ident("ResultGroup"), Number: ast.IntLit{Value: 1}}
	msg := &ast.Message{Name: ident("Foo"), Body: ast.MessageBody{Items: []ast.MessageItem{ast.FieldItem{Field: group}}}}
	file := &ast.File{Syntax: ast.Proto2, Items: []ast.FileItem{ast.FileMessage{Message: msg}}}

	m, diags := Collect(ir.BuildFile(file), nil)
	require.Empty(t, diags)

	_, ok := m.Get("Foo.ResultGroup")
	require.True(t, ok, "nested message keeps declared casing")
	_, ok = m.Get("Foo.resultgroup")
	require.True(t, ok, "field name is lowercased")
}
