package lines

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineColumn(t *testing.T) {
	src := []byte("abc\ndef\nghi")
	r := New(src)
	require.Equal(t, 3, r.LineCount())

	line, col := r.LineColumn(0)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)

	line, col = r.LineColumn(4) // 'd'
	require.Equal(t, 2, line)
	require.Equal(t, 1, col)

	line, col = r.LineColumn(9) // 'h'
	require.Equal(t, 3, line)
	require.Equal(t, 2, col)
}
