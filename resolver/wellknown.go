package resolver

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// wellKnownFiles is a small hand-built set of google/protobuf/*.proto
// descriptors, good enough to resolve the handful of well-known types that
// show up as field types and option values in everyday schemas, without a
// .proto parse or a network fetch (spec.md §2 step 1, "a built-in resolver
// for well-known schemas"; original_source/src/file/mod.rs's
// GoogleFileResolver plays the same role). descriptor.proto, any.proto and
// struct.proto are deliberately not included: their real shape is large
// enough that hand-authoring it here risks silently drifting from the
// actual definitions (see DESIGN.md).
var wellKnownFiles = buildWellKnownFiles()

func buildWellKnownFiles() map[string]*descriptorpb.FileDescriptorProto {
	files := map[string]*descriptorpb.FileDescriptorProto{
		"google/protobuf/empty.proto": {
			Name:    proto.String("google/protobuf/empty.proto"),
			Package: proto.String("google.protobuf"),
			Syntax:  proto.String("proto3"),
			MessageType: []*descriptorpb.DescriptorProto{
				{Name: proto.String("Empty")},
			},
		},
		"google/protobuf/duration.proto": {
			Name:    proto.String("google/protobuf/duration.proto"),
			Package: proto.String("google.protobuf"),
			Syntax:  proto.String("proto3"),
			MessageType: []*descriptorpb.DescriptorProto{
				secondsNanosMessage("Duration"),
			},
		},
		"google/protobuf/timestamp.proto": {
			Name:    proto.String("google/protobuf/timestamp.proto"),
			Package: proto.String("google.protobuf"),
			Syntax:  proto.String("proto3"),
			MessageType: []*descriptorpb.DescriptorProto{
				secondsNanosMessage("Timestamp"),
			},
		},
		"google/protobuf/wrappers.proto": {
			Name:    proto.String("google/protobuf/wrappers.proto"),
			Package: proto.String("google.protobuf"),
			Syntax:  proto.String("proto3"),
			MessageType: []*descriptorpb.DescriptorProto{
				wrapperMessage("DoubleValue", descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
				wrapperMessage("FloatValue", descriptorpb.FieldDescriptorProto_TYPE_FLOAT),
				wrapperMessage("Int64Value", descriptorpb.FieldDescriptorProto_TYPE_INT64),
				wrapperMessage("UInt64Value", descriptorpb.FieldDescriptorProto_TYPE_UINT64),
				wrapperMessage("Int32Value", descriptorpb.FieldDescriptorProto_TYPE_INT32),
				wrapperMessage("UInt32Value", descriptorpb.FieldDescriptorProto_TYPE_UINT32),
				wrapperMessage("BoolValue", descriptorpb.FieldDescriptorProto_TYPE_BOOL),
				wrapperMessage("StringValue", descriptorpb.FieldDescriptorProto_TYPE_STRING),
				wrapperMessage("BytesValue", descriptorpb.FieldDescriptorProto_TYPE_BYTES),
			},
		},
	}
	return files
}

func secondsNanosMessage(name string) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name: proto.String(name),
		Field: []*descriptorpb.FieldDescriptorProto{
			scalarField("seconds", 1, descriptorpb.FieldDescriptorProto_TYPE_INT64),
			scalarField("nanos", 2, descriptorpb.FieldDescriptorProto_TYPE_INT32),
		},
	}
}

func wrapperMessage(name string, t descriptorpb.FieldDescriptorProto_Type) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name:  proto.String(name),
		Field: []*descriptorpb.FieldDescriptorProto{scalarField("value", 1, t)},
	}
}

func scalarField(name string, number int32, t descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     t.Enum(),
		JsonName: proto.String(name),
	}
}

type wellKnownResolver struct{}

// WellKnown returns the built-in resolver for the well-known types protox
// bundles (SPEC_FULL.md §7 "Well-known-types built-in resolver").
func WellKnown() Resolver { return wellKnownResolver{} }

func (wellKnownResolver) Open(_ context.Context, name string) (*File, error) {
	fd, ok := wellKnownFiles[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return &File{Path: name, Descriptor: fd}, nil
}
