package check

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protoxlang/protox/ir"
	"github.com/protoxlang/protox/lines"
	"github.com/protoxlang/protox/names"
	"github.com/protoxlang/protox/parser"
	"github.com/protoxlang/protox/report"
)

// compileFixture runs one testdata/*.proto file through the full front end
// the way protox's driver does for a file with no imports: parse, lower to
// IR, collect names, check. It fails the test outright on any parse or
// DuplicateName diagnostic — these fixtures are all meant to compile clean.
func compileFixture(t *testing.T, name string) (*descriptorpb.FileDescriptorProto, []report.Diagnostic) {
	t.Helper()
	source, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)

	astFile, parseDiags := parser.Parse(source, lines.New(source))
	require.Empty(t, parseDiags, "parse")

	irFile := ir.BuildFile(astFile)
	nm, nameDiags := names.Collect(irFile, nil)
	require.Empty(t, nameDiags, "name collection")

	return CheckFile(irFile, nm)
}

func diffDescriptor(t *testing.T, want, got *descriptorpb.FileDescriptorProto) {
	t.Helper()
	if diff := cmp.Diff(want, got, protocmp.Transform()); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestFixtureEmptyFile(t *testing.T) {
	got, diags := compileFixture(t, "empty_file.proto")
	require.Empty(t, diags)
	want := &descriptorpb.FileDescriptorProto{
		Syntax: proto.String("proto3"),
	}
	diffDescriptor(t, want, got)
}

func TestFixtureGenerateMapEntryMessage(t *testing.T) {
	got, diags := compileFixture(t, "generate_map_entry_message.proto")
	require.Empty(t, diags)
	want := &descriptorpb.FileDescriptorProto{
		Syntax: proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("M"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{
						Name:     proto.String("kv"),
						Number:   proto.Int32(1),
						Label:    descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
						Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
						TypeName: proto.String(".M.KvEntry"),
						JsonName: proto.String("kv"),
					},
				},
				NestedType: []*descriptorpb.DescriptorProto{
					{
						Name:    proto.String("KvEntry"),
						Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
						Field: []*descriptorpb.FieldDescriptorProto{
							{
								Name:     proto.String("key"),
								Number:   proto.Int32(1),
								Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
								Type:     descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
								JsonName: proto.String("key"),
							},
							{
								Name:     proto.String("value"),
								Number:   proto.Int32(2),
								Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
								Type:     descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum(),
								JsonName: proto.String("value"),
							},
						},
					},
				},
			},
		},
	}
	diffDescriptor(t, want, got)
}

func TestFixtureGenerateGroupMessage(t *testing.T) {
	got, diags := compileFixture(t, "generate_group_message.proto")
	require.Empty(t, diags)
	want := &descriptorpb.FileDescriptorProto{
		Syntax: proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("M"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{
						Name:     proto.String("g"),
						Number:   proto.Int32(1),
						Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
						Type:     descriptorpb.FieldDescriptorProto_TYPE_GROUP.Enum(),
						TypeName: proto.String(".M.G"),
						JsonName: proto.String("g"),
					},
				},
				NestedType: []*descriptorpb.DescriptorProto{
					{
						Name: proto.String("G"),
						Field: []*descriptorpb.FieldDescriptorProto{
							{
								Name:     proto.String("x"),
								Number:   proto.Int32(1),
								Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
								Type:     descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum(),
								JsonName: proto.String("x"),
							},
						},
					},
				},
			},
		},
	}
	diffDescriptor(t, want, got)
}

func TestFixtureGenerateSyntheticOneof(t *testing.T) {
	got, diags := compileFixture(t, "generate_synthetic_oneof.proto")
	require.Empty(t, diags)
	want := &descriptorpb.FileDescriptorProto{
		Syntax: proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("M"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{
						Name: proto.String("a"), Number: proto.Int32(1),
						Label: descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
						Type:  descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum(),
						OneofIndex: proto.Int32(0), Proto3Optional: proto.Bool(true),
						JsonName: proto.String("a"),
					},
					{
						Name: proto.String("b"), Number: proto.Int32(2),
						Label: descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
						Type:  descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum(),
						OneofIndex: proto.Int32(1), Proto3Optional: proto.Bool(true),
						JsonName: proto.String("b"),
					},
				},
				OneofDecl: []*descriptorpb.OneofDescriptorProto{
					{Name: proto.String("_a")},
					{Name: proto.String("_b")},
				},
			},
		},
	}
	diffDescriptor(t, want, got)
}

func TestFixtureNameResolution(t *testing.T) {
	got, diags := compileFixture(t, "name_resolution.proto")
	require.Empty(t, diags)

	require.Len(t, got.MessageType, 1)
	a := got.MessageType[0]
	require.Equal(t, "A", a.GetName())
	require.Len(t, a.Field, 1)
	require.Equal(t, ".A.B.C", a.Field[0].GetTypeName())
	require.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, a.Field[0].GetType())

	require.Len(t, a.NestedType, 1)
	b := a.NestedType[0]
	require.Equal(t, "B", b.GetName())
	require.Len(t, b.NestedType, 1)
	require.Equal(t, "C", b.NestedType[0].GetName())
}

func TestFixtureReservedRanges(t *testing.T) {
	got, diags := compileFixture(t, "reserved_ranges.proto")
	require.Empty(t, diags)
	want := &descriptorpb.FileDescriptorProto{
		Syntax: proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("M"),
				ReservedRange: []*descriptorpb.DescriptorProto_ReservedRange{
					{Start: proto.Int32(2), End: proto.Int32(3)},
					{Start: proto.Int32(4), End: proto.Int32(7)},
					{Start: proto.Int32(9), End: proto.Int32(MaxFieldNumber + 1)},
				},
			},
		},
	}
	diffDescriptor(t, want, got)
}
