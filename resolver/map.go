package resolver

import (
	"context"
	"fmt"

	"github.com/protoxlang/protox/lines"
)

// Map is an in-memory Resolver keyed by import name, for tests and for
// programmatic callers that already have source text in hand. Mirrors the
// small hand-built module sets buf's bufimagebuildtesting helpers construct
// in place of real files on disk.
type Map map[string]string

func (m Map) Open(_ context.Context, name string) (*File, error) {
	source, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if len(source) > MaxFileSize {
		return nil, fmt.Errorf("resolver: %s is %d bytes, exceeds the %d byte limit", name, len(source), MaxFileSize)
	}
	b := []byte(source)
	return &File{Path: name, Source: b, Lines: lines.New(b)}, nil
}
