package resolver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/protoxlang/protox/lines"
)

// IncludeResolver serves files from the filesystem, searching Roots in
// order for name (converted to a platform path with filepath.FromSlash),
// the way protoc's -I and original_source's IncludeFileResolver do.
type IncludeResolver struct {
	Roots []string
}

// NewIncludeResolver builds an IncludeResolver over the given include
// directories, searched in the order given.
func NewIncludeResolver(roots ...string) *IncludeResolver {
	return &IncludeResolver{Roots: roots}
}

func (r *IncludeResolver) Open(_ context.Context, name string) (*File, error) {
	for _, root := range r.Roots {
		path := filepath.Join(root, filepath.FromSlash(name))
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("resolver: open %s: %w", path, err)
		}
		file, err := readIncludeFile(f, name, path)
		closeErr := f.Close()
		if err != nil {
			return nil, err
		}
		if closeErr != nil {
			return nil, fmt.Errorf("resolver: close %s: %w", path, closeErr)
		}
		return file, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

func readIncludeFile(f *os.File, name, path string) (*File, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("resolver: stat %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("resolver: %s is %d bytes, exceeds the %d byte limit", path, info.Size(), int64(MaxFileSize))
	}
	source, err := io.ReadAll(io.LimitReader(f, MaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("resolver: read %s: %w", path, err)
	}
	return &File{Path: name, Source: source, Lines: lines.New(source)}, nil
}
