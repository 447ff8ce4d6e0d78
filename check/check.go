// Package check is the second pass: using a file's IR and its already-built
// NameMap, it resolves every type reference, validates labels, numbers and
// defaults against the declared syntax, and emits a descriptorpb
// FileDescriptorProto. Diagnostics never abort the pass (spec.md §4.4):
// the checker always returns a best-effort descriptor alongside whatever it
// found wrong.
package check

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protoxlang/protox/ast"
	"github.com/protoxlang/protox/ir"
	"github.com/protoxlang/protox/names"
	"github.com/protoxlang/protox/report"
)

// MaxFieldNumber is protobuf's highest assignable field number. The
// 19000-19999 band that protoc reserves for internal use is not
// special-cased: numbers in it are accepted like any other in-range number.
const MaxFieldNumber = 536870911

// CheckFile runs the second pass over file, resolving names against nm
// (file's own merged NameMap, built by package names) and returns a
// best-effort FileDescriptorProto plus every diagnostic found. A non-empty
// diagnostic slice does not mean the descriptor is nil or unusable: callers
// that want strict semantics treat any diagnostic as a file-level failure,
// but the descriptor itself is always fully formed syntactically.
func CheckFile(file *ir.File, nm *names.Map) (*descriptorpb.FileDescriptorProto, []report.Diagnostic) {
	c := &checker{ir: file, names: nm, syntax: file.AST.Syntax}

	fdp := &descriptorpb.FileDescriptorProto{}
	if len(file.AST.Package) > 0 {
		parts := make([]string, len(file.AST.Package))
		for i, p := range file.AST.Package {
			parts[i] = p.Value
		}
		fdp.Package = proto.String(strings.Join(parts, "."))
	}
	fdp.Syntax = proto.String(file.AST.Syntax.String())

	for _, imp := range file.AST.Imports {
		idx := int32(len(fdp.Dependency))
		fdp.Dependency = append(fdp.Dependency, imp.Path)
		if imp.Public {
			fdp.PublicDependency = append(fdp.PublicDependency, idx)
		}
		if imp.Weak {
			fdp.WeakDependency = append(fdp.WeakDependency, idx)
		}
	}

	fdp.Options = c.fileOptions(file.AST.Options)

	for _, part := range file.AST.Package {
		c.ctx.enterNamed(framePackage, part.Value)
	}

	for _, msg := range file.Messages {
		fdp.MessageType = append(fdp.MessageType, c.checkMessage(msg))
	}
	for _, item := range file.AST.Items {
		switch it := item.(type) {
		case ast.FileEnum:
			fdp.EnumType = append(fdp.EnumType, c.checkEnum(it.Enum))
		case ast.FileService:
			fdp.Service = append(fdp.Service, c.checkService(it.Service))
		case ast.FileExtend:
			fdp.Extension = append(fdp.Extension, c.checkExtend(it.Extend)...)
		}
	}

	for range file.AST.Package {
		c.ctx.exit()
	}

	return fdp, c.diags
}

type checker struct {
	ir     *ir.File
	names  *names.Map
	syntax ast.Syntax
	ctx    ctx
	diags  []report.Diagnostic
}

func (c *checker) errorf(kind report.Kind, span report.Span, format string, args ...any) {
	c.diags = append(c.diags, report.Diagnostic{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)})
}

// resolveTypeName implements spec.md §4.3's resolve_type_name: absolute
// names (leading '.') are looked up directly, relative names use the
// NameMap's innermost-to-outermost frame walk from the current scope.
func (c *checker) resolveTypeName(name ast.TypeName) (absolute string, entry names.Entry, ok bool) {
	return c.names.Resolve(c.ctx.scope(), name.String())
}
