package resolver

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// DescriptorSetResolver serves files out of an already-compiled
// FileDescriptorSet, the realization of the CLI's --descriptor-set-in flag
// (SPEC_FULL.md §5.3) and the Go analogue of original_source's
// compare.rs decoding a prost FileDescriptorSet for comparison.
type DescriptorSetResolver struct {
	files map[string]*descriptorpb.FileDescriptorProto
}

// NewDescriptorSetResolver decodes a serialized FileDescriptorSet and
// indexes its files by name.
func NewDescriptorSetResolver(data []byte) (*DescriptorSetResolver, error) {
	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("resolver: decode descriptor set: %w", err)
	}
	files := make(map[string]*descriptorpb.FileDescriptorProto, len(set.File))
	for _, fd := range set.File {
		files[fd.GetName()] = fd
	}
	return &DescriptorSetResolver{files: files}, nil
}

func (r *DescriptorSetResolver) Open(_ context.Context, name string) (*File, error) {
	fd, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return &File{Path: name, Descriptor: fd}, nil
}
