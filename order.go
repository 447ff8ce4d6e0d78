package protox

import (
	"fmt"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protoxlang/protox/report"
)

// assembleSet walks every entry file's (already-cached) dependency list
// depth-first, the same recursion bufimagebuild's getImageFilesRec uses to
// put a buf Image's files in protoc's own dependency-first order: a file's
// imports always appear in the output before the file itself. Diagnostics
// are gathered from every file actually reached, entry or import, sorted
// for stable output.
func (c *Compiler) assembleSet(entryFiles []string, opts Options) ([]*descriptorpb.FileDescriptorProto, []report.Diagnostic, error) {
	isEntry := make(map[string]bool, len(entryFiles))
	for _, f := range entryFiles {
		isEntry[f] = true
	}

	var (
		out   []*descriptorpb.FileDescriptorProto
		diags []report.Diagnostic
		seen  = map[string]bool{}
	)
	for _, path := range entryFiles {
		var err error
		out, diags, err = c.appendOrdered(path, opts, isEntry, seen, out, diags)
		if err != nil {
			return nil, nil, err
		}
	}
	report.SortStable(diags)
	return out, diags, nil
}

func (c *Compiler) appendOrdered(
	path string,
	opts Options,
	isEntry, seen map[string]bool,
	out []*descriptorpb.FileDescriptorProto,
	diags []report.Diagnostic,
) ([]*descriptorpb.FileDescriptorProto, []report.Diagnostic, error) {
	if seen[path] {
		return out, diags, nil
	}
	seen[path] = true

	c.mu.Lock()
	cf, ok := c.cache[path]
	c.mu.Unlock()
	if !ok {
		return nil, nil, fmt.Errorf("protox: internal error: %s was never compiled", path)
	}

	for _, dep := range cf.descriptor.GetDependency() {
		var err error
		out, diags, err = c.appendOrdered(dep, opts, isEntry, seen, out, diags)
		if err != nil {
			return nil, nil, err
		}
	}

	diags = append(diags, cf.diagnostics...)

	if opts.IncludeImports || isEntry[path] {
		fdp := cf.descriptor
		if opts.IncludeSourceInfo {
			fdp = withWholeFileSourceInfo(fdp)
		} else if fdp.SourceCodeInfo != nil {
			fdp = stripSourceInfo(fdp)
		}
		out = append(out, fdp)
	}

	return out, diags, nil
}

// withWholeFileSourceInfo attaches a single root SourceCodeInfo location
// (empty path, denoting the file itself) with the fixed span [0, 0, 0]; the
// span does not cover the file's real extent. protox does not track
// per-declaration source spans through to descriptor emission (see
// SPEC_FULL.md §7, "Comment preservation is explicitly NOT supplemented"),
// so --include-source-info is best-effort: it tells callers the file was
// compiled from source, not where inside it each declaration came from.
func withWholeFileSourceInfo(fdp *descriptorpb.FileDescriptorProto) *descriptorpb.FileDescriptorProto {
	clone := cloneWithoutSourceInfo(fdp)
	clone.SourceCodeInfo = &descriptorpb.SourceCodeInfo{
		Location: []*descriptorpb.SourceCodeInfo_Location{
			{Path: []int32{}, Span: []int32{0, 0, 0}},
		},
	}
	return clone
}

func stripSourceInfo(fdp *descriptorpb.FileDescriptorProto) *descriptorpb.FileDescriptorProto {
	return cloneWithoutSourceInfo(fdp)
}

// cloneWithoutSourceInfo returns a shallow copy of fdp with SourceCodeInfo
// cleared, so setting or clearing SourceCodeInfo on the output never touches
// the Compiler's cached descriptor (the same file's cf.descriptor is reused
// across repeated Compile calls and across entry/import appearances in the
// same call). Nested messages and slices are still shared with the cache.
func cloneWithoutSourceInfo(fdp *descriptorpb.FileDescriptorProto) *descriptorpb.FileDescriptorProto {
	shallow := *fdp
	shallow.SourceCodeInfo = nil
	return &shallow
}
