// Package protox is the compiler driver: it turns a handful of entry file
// names into a FileDescriptorSet by resolving each file (and, transitively,
// everything it imports) through a resolver.Resolver and running it through
// the parse/ir/names/check pipeline, or taking its descriptor as-is when the
// resolver already has one compiled. See spec.md §2 and §5, and
// SPEC_FULL.md §§5-9.
package protox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protoxlang/protox/check"
	"github.com/protoxlang/protox/ir"
	"github.com/protoxlang/protox/names"
	"github.com/protoxlang/protox/parser"
	"github.com/protoxlang/protox/report"
	"github.com/protoxlang/protox/resolver"
)

// maxConcurrentFiles bounds how many independent entry files Compile
// compiles at once (spec.md §5: "independent files... may be compiled
// concurrently"), the errgroup analogue of buf's getBuildResults chunking
// target paths across goroutines up to thread.Parallelism().
const maxConcurrentFiles = 8

// Options shapes what Compile puts in the returned FileDescriptorSet
// (SPEC_FULL.md §7, "supplemented features").
type Options struct {
	// IncludeImports includes every transitively-imported file's descriptor
	// in the output set, not just the entry files, matching protoc's flag
	// of the same name.
	IncludeImports bool
	// IncludeSourceInfo populates FileDescriptorProto.SourceCodeInfo.
	// protox's span tracking is best-effort, so the only location emitted
	// is a single file-level one with a fixed [0, 0, 0] span; see
	// withWholeFileSourceInfo.
	IncludeSourceInfo bool
}

// DefaultOptions matches the reference compiler's common configuration:
// imports included, source info omitted.
func DefaultOptions() Options {
	return Options{IncludeImports: true}
}

// compiledFile is one file's cached result: the descriptor, the NameMap it
// exposes to dependents, and the diagnostics found compiling it.
type compiledFile struct {
	descriptor  *descriptorpb.FileDescriptorProto
	nameMap     *names.Map
	diagnostics []report.Diagnostic
}

// Compiler compiles .proto files resolved through a resolver.Resolver,
// caching each file's result so a single Compiler can be reused across many
// Compile calls without recompiling anything already seen (SPEC_FULL.md
// §7's ParsedFileMap-equivalent cache).
type Compiler struct {
	resolver resolver.Resolver
	logger   *zap.Logger

	mu    sync.Mutex
	cache map[string]*compiledFile
}

// NewCompiler builds a Compiler over r. A nil logger defaults to
// zap.NewNop(), matching resolver.NewChain's convention.
func NewCompiler(r resolver.Resolver, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{
		resolver: r,
		logger:   logger,
		cache:    make(map[string]*compiledFile),
	}
}

// Compile resolves and compiles every name in files, and transitively
// everything they import, returning the resulting FileDescriptorSet (files
// ordered dependency-first, matching protoc's own output order) and every
// checker diagnostic found along the way. A fatal error — a resolver
// failure, a parse failure, or an import cycle — aborts only the branch of
// the dependency graph it occurred in; independent files' fatal errors are
// aggregated with multierr rather than stopping at the first one.
func (c *Compiler) Compile(ctx context.Context, opts Options, files ...string) (*descriptorpb.FileDescriptorSet, []report.Diagnostic, error) {
	if len(files) == 0 {
		return nil, nil, errors.New("protox: no input files specified")
	}

	var (
		mu    sync.Mutex
		fatal error
	)
	g := &errgroup.Group{}
	g.SetLimit(maxConcurrentFiles)
	for _, path := range files {
		path := path
		g.Go(func() error {
			if _, err := c.compileFile(ctx, path, nil); err != nil {
				mu.Lock()
				fatal = multierr.Append(fatal, fmt.Errorf("%s: %w", path, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() // errors are collected into fatal above; a closure never returns one itself, so a sibling file's compile is never cancelled because another failed
	if fatal != nil {
		return nil, nil, fatal
	}

	descriptors, diags, err := c.assembleSet(files, opts)
	if err != nil {
		return nil, nil, err
	}
	return &descriptorpb.FileDescriptorSet{File: descriptors}, diags, nil
}

// compileFile returns path's cached or freshly computed compiledFile. stack
// is the chain of files currently being compiled to reach path, used to
// detect import cycles; it is never shared between goroutines, each
// recursion passing down its own copy.
func (c *Compiler) compileFile(ctx context.Context, path string, stack []string) (*compiledFile, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	for _, ancestor := range stack {
		if ancestor == path {
			return nil, fmt.Errorf("import cycle: %s -> %s", strings.Join(append(append([]string(nil), stack...), path), " -> "), path)
		}
	}

	c.mu.Lock()
	if cf, ok := c.cache[path]; ok {
		c.mu.Unlock()
		c.logger.Debug("protox: cache hit", zap.String("file", path))
		return cf, nil
	}
	c.mu.Unlock()

	start := time.Now()
	c.logger.Debug("protox: compiling", zap.String("file", path))

	rf, err := c.resolver.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	var cf *compiledFile
	if rf.Descriptor != nil {
		cf = &compiledFile{
			descriptor: rf.Descriptor,
			nameMap:    names.CollectFromDescriptor(rf.Descriptor),
		}
	} else {
		cf, err = c.compileSource(ctx, path, rf, stack)
		if err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	c.cache[path] = cf
	c.mu.Unlock()

	c.logger.Debug("protox: compiled", zap.String("file", path),
		zap.Duration("took", time.Since(start)), zap.Int("diagnostics", len(cf.diagnostics)))
	return cf, nil
}

// compileSource runs the full parse/ir/names/check pipeline over a raw
// resolver.File. A non-empty set of parse diagnostics is fatal for this
// file (spec.md §7: parse errors abort the file, unlike checker
// diagnostics, which the pipeline continues past).
func (c *Compiler) compileSource(ctx context.Context, path string, rf *resolver.File, stack []string) (*compiledFile, error) {
	astFile, parseDiags := parser.Parse(rf.Source, rf.Lines)
	if len(parseDiags) > 0 {
		for i := range parseDiags {
			parseDiags[i].File = path
		}
		return nil, &CompileError{File: path, Diagnostics: parseDiags}
	}

	childStack := append(append([]string(nil), stack...), path)
	deps := make(map[string]*names.Map, len(astFile.Imports))
	for _, imp := range astFile.Imports {
		depCF, err := c.compileFile(ctx, imp.Path, childStack)
		if err != nil {
			return nil, fmt.Errorf("import %q: %w", imp.Path, err)
		}
		deps[imp.Path] = depCF.nameMap
	}

	irFile := ir.BuildFile(astFile)
	nm, nameDiags := names.Collect(irFile, deps)
	for i := range nameDiags {
		nameDiags[i].File = path
	}

	fdp, checkDiags := check.CheckFile(irFile, nm)
	for i := range checkDiags {
		checkDiags[i].File = path
	}
	fdp.Name = proto.String(path)

	diags := append(nameDiags, checkDiags...)
	return &compiledFile{descriptor: fdp, nameMap: nm, diagnostics: diags}, nil
}

// CompileError reports a file's fatal parse diagnostics. It is what
// multierr.Errors(err) yields one of when Compile fails because a file
// failed to parse, rather than merely collecting checker diagnostics.
type CompileError struct {
	File        string
	Diagnostics []report.Diagnostic
}

func (e *CompileError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d parse error(s)", e.File, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		b.WriteString("\n  ")
		b.WriteString(d.String())
	}
	return b.String()
}
