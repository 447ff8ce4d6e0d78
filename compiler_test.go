package protox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protoxlang/protox/resolver"
)

func TestCompileSingleFile(t *testing.T) {
	files := resolver.Map{
		"foo.proto": `syntax = "proto3"; package pkg; message Foo { int32 id = 1; }`,
	}
	c := NewCompiler(files, nil)

	set, diags, err := c.Compile(context.Background(), DefaultOptions(), "foo.proto")
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, set.File, 1)
	require.Equal(t, "foo.proto", set.File[0].GetName())
	require.Equal(t, "pkg", set.File[0].GetPackage())
	require.Len(t, set.File[0].MessageType, 1)
	require.Equal(t, "Foo", set.File[0].MessageType[0].GetName())
}

func TestCompileResolvesNamesAcrossDirectImport(t *testing.T) {
	files := resolver.Map{
		"dep.proto": `syntax = "proto3"; package pkg; message Bar { string name = 1; }`,
		"foo.proto": `syntax = "proto3"; package pkg; import "dep.proto";
			message Foo { Bar bar = 1; }`,
	}
	c := NewCompiler(files, nil)

	set, diags, err := c.Compile(context.Background(), DefaultOptions(), "foo.proto")
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, set.File, 2, "dependency-first order: dep.proto before foo.proto")
	require.Equal(t, "dep.proto", set.File[0].GetName())
	require.Equal(t, "foo.proto", set.File[1].GetName())

	foo := set.File[1]
	require.Len(t, foo.MessageType, 1)
	field := foo.MessageType[0].Field[0]
	require.Equal(t, ".pkg.Bar", field.GetTypeName())
}

func TestCompileIncludeImportsFalseOmitsDependencyDescriptor(t *testing.T) {
	files := resolver.Map{
		"dep.proto": `syntax = "proto3"; package pkg; message Bar {}`,
		"foo.proto": `syntax = "proto3"; package pkg; import "dep.proto";
			message Foo { Bar bar = 1; }`,
	}
	c := NewCompiler(files, nil)

	opts := DefaultOptions()
	opts.IncludeImports = false
	set, _, err := c.Compile(context.Background(), opts, "foo.proto")
	require.NoError(t, err)
	require.Len(t, set.File, 1)
	require.Equal(t, "foo.proto", set.File[0].GetName())
}

func TestCompileCheckerDiagnosticsCarryFileName(t *testing.T) {
	files := resolver.Map{
		"foo.proto": `syntax = "proto2"; message Foo { int32 id = 1; }`,
	}
	c := NewCompiler(files, nil)

	set, diags, err := c.Compile(context.Background(), DefaultOptions(), "foo.proto")
	require.NoError(t, err)
	require.NotNil(t, set)
	require.Len(t, diags, 1)
	require.Equal(t, "proto2-field-missing-label", diags[0].Kind.String())
	require.Equal(t, "foo.proto", diags[0].File)
}

func TestCompileDetectsImportCycle(t *testing.T) {
	files := resolver.Map{
		"a.proto": `syntax = "proto3"; import "b.proto"; message A {}`,
		"b.proto": `syntax = "proto3"; import "a.proto"; message B {}`,
	}
	c := NewCompiler(files, nil)

	_, _, err := c.Compile(context.Background(), DefaultOptions(), "a.proto")
	require.Error(t, err)
}

func TestCompileMissingImportIsFatal(t *testing.T) {
	files := resolver.Map{
		"foo.proto": `syntax = "proto3"; import "missing.proto"; message Foo {}`,
	}
	c := NewCompiler(files, nil)

	_, _, err := c.Compile(context.Background(), DefaultOptions(), "foo.proto")
	require.Error(t, err)
}

func TestCompileCachesAcrossCalls(t *testing.T) {
	files := resolver.Map{
		"foo.proto": `syntax = "proto3"; message Foo {}`,
	}
	c := NewCompiler(files, nil)

	_, _, err := c.Compile(context.Background(), DefaultOptions(), "foo.proto")
	require.NoError(t, err)

	// A second Compile call reuses the cached compiledFile rather than
	// resolving or parsing again; deleting the file from the backing Map
	// would make a fresh compile fail, so success here proves the cache hit.
	delete(files, "foo.proto")
	set, _, err := c.Compile(context.Background(), DefaultOptions(), "foo.proto")
	require.NoError(t, err)
	require.Len(t, set.File, 1)
}

func TestCompileUsesWellKnownResolver(t *testing.T) {
	files := resolver.Map{
		"foo.proto": `syntax = "proto3"; import "google/protobuf/timestamp.proto";
			message Foo { google.protobuf.Timestamp at = 1; }`,
	}
	c := NewCompiler(resolver.NewChain(nil, files, resolver.WellKnown()), nil)

	set, diags, err := c.Compile(context.Background(), DefaultOptions(), "foo.proto")
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, set.File, 2)
	foo := set.File[1]
	require.Equal(t, ".google.protobuf.Timestamp", foo.MessageType[0].Field[0].GetTypeName())
}

func TestCompileNoFilesIsError(t *testing.T) {
	c := NewCompiler(resolver.Map{}, nil)
	_, _, err := c.Compile(context.Background(), DefaultOptions())
	require.Error(t, err)
}
