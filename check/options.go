package check

import (
	"strconv"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protoxlang/protox/ast"
)

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
func formatUint(u uint64) string   { return strconv.FormatUint(u, 10) }
func formatInt(i int64) string     { return strconv.FormatInt(i, 10) }

// toUninterpretedOptions converts a raw option list into descriptorpb's
// structural representation, unevaluated (spec.md §4.3 "Options"): custom
// option paths are recorded as name parts, never resolved against an
// extension definition.
func toUninterpretedOptions(entries []ast.OptionEntry) []*descriptorpb.UninterpretedOption {
	if len(entries) == 0 {
		return nil
	}
	out := make([]*descriptorpb.UninterpretedOption, len(entries))
	for i, e := range entries {
		out[i] = toUninterpretedOption(e)
	}
	return out
}

func toUninterpretedOption(e ast.OptionEntry) *descriptorpb.UninterpretedOption {
	opt := &descriptorpb.UninterpretedOption{}
	for _, part := range e.Name {
		opt.Name = append(opt.Name, &descriptorpb.UninterpretedOption_NamePart{
			NamePart:    proto.String(part.Name),
			IsExtension: proto.Bool(part.IsExtension),
		})
	}
	switch e.Value.Kind {
	case ast.OptionIdentifier:
		opt.IdentifierValue = proto.String(e.Value.Identifier)
	case ast.OptionPositiveInt:
		opt.PositiveIntValue = proto.Uint64(e.Value.PositiveInt)
	case ast.OptionNegativeInt:
		opt.NegativeIntValue = proto.Int64(e.Value.NegativeInt)
	case ast.OptionDouble:
		opt.DoubleValue = proto.Float64(e.Value.Double)
	case ast.OptionString:
		opt.StringValue = e.Value.String
	case ast.OptionAggregate:
		opt.AggregateValue = proto.String(e.Value.Aggregate)
	}
	return opt
}

// extractDefault extracts a field's `[default = ...]` pseudo-option as
// the string form FieldDescriptorProto.DefaultValue expects, stripping it
// out of the entries that go on to become UninterpretedOption.
func extractDefault(entries []ast.OptionEntry) (rest []ast.OptionEntry, defaultValue *string, hasDefault bool) {
	for _, e := range entries {
		if !e.IsSimpleName("default") {
			rest = append(rest, e)
			continue
		}
		hasDefault = true
		defaultValue = proto.String(defaultValueText(e.Value))
	}
	return rest, defaultValue, hasDefault
}

func defaultValueText(v ast.OptionValue) string {
	switch v.Kind {
	case ast.OptionIdentifier:
		return v.Identifier
	case ast.OptionString:
		return string(v.String)
	case ast.OptionAggregate:
		return v.Aggregate
	case ast.OptionDouble:
		return formatFloat(v.Double)
	case ast.OptionPositiveInt:
		return formatUint(v.PositiveInt)
	case ast.OptionNegativeInt:
		return formatInt(v.NegativeInt)
	default:
		return ""
	}
}

func (c *checker) fileOptions(entries []ast.OptionEntry) *descriptorpb.FileOptions {
	if len(entries) == 0 {
		return nil
	}
	return &descriptorpb.FileOptions{UninterpretedOption: toUninterpretedOptions(entries)}
}

func (c *checker) messageOptions(entries []ast.OptionEntry) *descriptorpb.MessageOptions {
	if len(entries) == 0 {
		return nil
	}
	return &descriptorpb.MessageOptions{UninterpretedOption: toUninterpretedOptions(entries)}
}

func (c *checker) fieldOptions(entries []ast.OptionEntry) (*descriptorpb.FieldOptions, *string) {
	rest, defaultValue, hasDefault := extractDefault(entries)
	var opts *descriptorpb.FieldOptions
	if len(rest) > 0 {
		opts = &descriptorpb.FieldOptions{UninterpretedOption: toUninterpretedOptions(rest)}
	}
	if !hasDefault {
		return opts, nil
	}
	return opts, defaultValue
}

func (c *checker) oneofOptions(entries []ast.OptionEntry) *descriptorpb.OneofOptions {
	if len(entries) == 0 {
		return nil
	}
	return &descriptorpb.OneofOptions{UninterpretedOption: toUninterpretedOptions(entries)}
}

func (c *checker) enumOptions(entries []ast.OptionEntry) *descriptorpb.EnumOptions {
	if len(entries) == 0 {
		return nil
	}
	return &descriptorpb.EnumOptions{UninterpretedOption: toUninterpretedOptions(entries)}
}

func (c *checker) enumValueOptions(entries []ast.OptionEntry) *descriptorpb.EnumValueOptions {
	if len(entries) == 0 {
		return nil
	}
	return &descriptorpb.EnumValueOptions{UninterpretedOption: toUninterpretedOptions(entries)}
}

func (c *checker) serviceOptions(entries []ast.OptionEntry) *descriptorpb.ServiceOptions {
	if len(entries) == 0 {
		return nil
	}
	return &descriptorpb.ServiceOptions{UninterpretedOption: toUninterpretedOptions(entries)}
}

func (c *checker) methodOptions(entries []ast.OptionEntry) *descriptorpb.MethodOptions {
	if len(entries) == 0 {
		return nil
	}
	return &descriptorpb.MethodOptions{UninterpretedOption: toUninterpretedOptions(entries)}
}

func (c *checker) extensionRangeOptions(entries []ast.OptionEntry) *descriptorpb.ExtensionRangeOptions {
	if len(entries) == 0 {
		return nil
	}
	return &descriptorpb.ExtensionRangeOptions{UninterpretedOption: toUninterpretedOptions(entries)}
}
