// Package resolver implements spec.md §2 step 1 and §6: the pluggable
// strategies a compile uses to turn an import name like "foo/bar.proto"
// into source text or an already-compiled descriptor. Grounded on
// original_source/src/file/mod.rs's FileResolver trait and File struct,
// realized here as the Resolver interface and the File struct.
package resolver

import (
	"context"
	"errors"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protoxlang/protox/lines"
)

// MaxFileSize bounds a single source file, matching
// original_source::MAX_FILE_LEN. A file larger than this is rejected
// (by IncludeResolver before being read into memory).
const MaxFileSize = 1<<31 - 1

// ErrNotFound is returned by a Resolver when name is not one it serves.
// Chain relies on errors.Is(err, ErrNotFound) to decide whether to fall
// through to its next strategy.
var ErrNotFound = errors.New("resolver: file not found")

// File is one resolved import, in one of two shapes: a resolver that owns
// raw text (IncludeResolver, Map) sets Source and Lines, leaving the
// compile driver to run it through the parser/ir/names/check pipeline; a
// resolver that already has a compiled descriptor (DescriptorSetResolver,
// WellKnown) sets Descriptor instead and the driver uses it directly,
// skipping the front end entirely for that file.
type File struct {
	Path       string
	Source     []byte
	Descriptor *descriptorpb.FileDescriptorProto
	Lines      *lines.Resolver
}

// Resolver locates and opens one import by its name exactly as written in
// an `import "name";` statement (or as an entry file name passed to the
// compiler).
type Resolver interface {
	Open(ctx context.Context, name string) (*File, error)
}
