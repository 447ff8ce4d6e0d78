// Package casing implements the name transforms the checker needs when
// synthesizing descriptor fields that have no literal spelling in source:
// map-entry message names and a field's default json_name.
package casing

import "strings"

// ToPascalCase renders name (typically a field's lower_snake_case spelling)
// the way protoc-gen-go turns a proto identifier into an exported Go name:
// each underscore-separated segment is capitalized and the underscores are
// dropped, except a run of already-uppercase text keeps its boundary.
//
// This is the same algorithm as protoc-gen-go's CamelCase, used here for
// map-entry message names (ir.BuildFile synthesizes "FooEntry" from a field
// named "foo").
func ToPascalCase(name string) string {
	var b strings.Builder
	elems := strings.Split(name, "_")
	for i, e := range elems {
		if e == "" {
			b.WriteByte('_')
			continue
		}
		r := []rune(e)
		if r[0] >= 'a' && r[0] <= 'z' {
			r[0] = r[0] - 'a' + 'A'
			b.WriteString(string(r))
			continue
		}
		if i > 0 {
			b.WriteByte('_')
		}
		b.WriteString(e)
	}
	out := b.String()
	if strings.HasPrefix(out, "_") {
		out = "X" + out[1:]
	}
	return out
}

// ToJSONName renders name as protoc's default FieldDescriptorProto.json_name:
// lowerCamelCase, with each underscore removed and the following letter
// capitalized. Unlike ToPascalCase, the leading character is never
// uppercased.
func ToJSONName(name string) string {
	var b strings.Builder
	upperNext := false
	for _, r := range name {
		if r == '_' {
			upperNext = true
			continue
		}
		if upperNext && r >= 'a' && r <= 'z' {
			r = r - 'a' + 'A'
		}
		upperNext = false
		b.WriteRune(r)
	}
	return b.String()
}
