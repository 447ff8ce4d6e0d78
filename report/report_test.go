package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortStableOrdersByFileThenSpan(t *testing.T) {
	diagnostics := []Diagnostic{
		{Kind: DuplicateName, File: "b.proto", Span: Span{Start: 5}, Message: "z"},
		{Kind: DuplicateName, File: "a.proto", Span: Span{Start: 10}, Message: "y"},
		{Kind: DuplicateName, File: "a.proto", Span: Span{Start: 1}, Message: "x"},
	}
	SortStable(diagnostics)

	require.Equal(t, []string{"a.proto", "a.proto", "b.proto"}, []string{
		diagnostics[0].File, diagnostics[1].File, diagnostics[2].File,
	})
	require.Equal(t, uint32(1), diagnostics[0].Span.Start)
	require.Equal(t, uint32(10), diagnostics[1].Span.Start)
}

func TestDiagnosticStringIncludesRelatedLabels(t *testing.T) {
	d := Diagnostic{
		Kind:    DuplicateName,
		File:    "foo.proto",
		Span:    Span{Start: 3, End: 6},
		Message: "name 'Foo' is defined twice",
		Related: []Label{{File: "foo.proto", Span: Span{Start: 20, End: 23}, Message: "first defined here"}},
	}
	s := d.String()
	require.Contains(t, s, "foo.proto:3:")
	require.Contains(t, s, "first defined here")
}

func TestKindStringIsStable(t *testing.T) {
	require.Equal(t, "duplicate-name", DuplicateName.String())
	require.Equal(t, "proto3-group-field", Proto3GroupField.String())
}
