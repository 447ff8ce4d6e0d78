// Package lines maps byte offsets into source text to 1-based line/column
// pairs, so a report.Span can be rendered as buf's FileAnnotation renders
// a StartLine/StartColumn pair.
package lines

import "sort"

// Resolver is built once per source file and answers (line, column) queries
// for any byte offset in that file in O(log n) time.
type Resolver struct {
	// offsets[i] is the byte offset of the first character of line i+1
	// (so offsets[0] == 0 is always the start of line 1).
	offsets []uint32
}

// New scans source for line breaks and builds a Resolver over it. '\n' is
// treated as the line terminator; a trailing '\r' before it is not treated
// specially since only the offset of the following line's start matters.
func New(source []byte) *Resolver {
	offsets := []uint32{0}
	for i, b := range source {
		if b == '\n' {
			offsets = append(offsets, uint32(i+1))
		}
	}
	return &Resolver{offsets: offsets}
}

// LineColumn converts a byte offset into a 1-based (line, column) pair.
// Columns are counted in bytes from the start of the line.
func (r *Resolver) LineColumn(offset uint32) (line, column int) {
	// Find the last line-start offset <= offset.
	i := sort.Search(len(r.offsets), func(i int) bool { return r.offsets[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, int(offset-r.offsets[i]) + 1
}

// LineCount returns the number of lines recorded (always at least 1).
func (r *Resolver) LineCount() int {
	return len(r.offsets)
}
