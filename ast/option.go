package ast

import "github.com/protoxlang/protox/report"

// OptionNamePart is one `(extension.name)` or `plain_name` component of a
// dotted option path, matching descriptorpb.UninterpretedOption_NamePart.
type OptionNamePart struct {
	Name        string
	IsExtension bool
}

// OptionValueKind is the shape of a raw, uninterpreted option value.
// Evaluating a custom (extension-typed) option's value against its
// extension definition is out of scope (spec.md §4.3, §9): the checker
// records these fields structurally into the UninterpretedOption list of
// the matching *Options message (a field's `default` pseudo-option goes to
// FieldDescriptorProto.DefaultValue instead) without resolving what a custom path or aggregate literal denotes.
type OptionValueKind int

const (
	OptionIdentifier OptionValueKind = iota
	OptionPositiveInt
	OptionNegativeInt
	OptionDouble
	OptionString
	OptionAggregate
)

// OptionValue is a raw option value, unevaluated.
type OptionValue struct {
	Kind        OptionValueKind
	Identifier  string
	PositiveInt uint64
	NegativeInt int64
	Double      float64
	String      []byte
	Aggregate   string // "<aggregate START-END>" byte-offset placeholder; the `{ ... }` text itself is not kept
}

// OptionEntry is one `option name = value;` or `[name = value]` entry.
// A bare `[default = 5]` on a field is recognized by name ("default") by
// the checker and routed to FieldDescriptorProto.DefaultValue instead of
// FieldOptions.UninterpretedOption (spec.md §4.3, "Field (normal)").
type OptionEntry struct {
	Name  []OptionNamePart
	Value OptionValue
	Span  report.Span
}

// IsSimpleName reports whether the option path is a single, non-extension
// component equal to name (used by the checker to pick out the "default"
// pseudo-option).
func (o OptionEntry) IsSimpleName(name string) bool {
	return len(o.Name) == 1 && !o.Name[0].IsExtension && o.Name[0].Name == name
}
