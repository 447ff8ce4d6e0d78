package ast

import (
	"strings"

	"github.com/protoxlang/protox/report"
)

// ScalarType enumerates protobuf's built-in scalar field types.
type ScalarType int

const (
	Double ScalarType = iota
	Float
	Int32
	Int64
	Uint32
	Uint64
	Sint32
	Sint64
	Fixed32
	Fixed64
	Sfixed32
	Sfixed64
	Bool
	String
	Bytes
)

// KeyType enumerates the scalar types permitted as a map key (every
// integral/bool/string scalar, but not float/double/bytes or message/enum
// types — spec.md's map key constraint, inherited unmodified from protoc).
type KeyType int

const (
	KeyInt32 KeyType = iota
	KeyInt64
	KeyUint32
	KeyUint64
	KeySint32
	KeySint64
	KeyFixed32
	KeyFixed64
	KeySfixed32
	KeySfixed64
	KeyBool
	KeyString
)

// ToScalarType maps a map key type onto the corresponding general scalar
// type, since both ultimately become the same FieldDescriptorProto_Type.
func (k KeyType) ToScalarType() ScalarType {
	switch k {
	case KeyInt32:
		return Int32
	case KeyInt64:
		return Int64
	case KeyUint32:
		return Uint32
	case KeyUint64:
		return Uint64
	case KeySint32:
		return Sint32
	case KeySint64:
		return Sint64
	case KeyFixed32:
		return Fixed32
	case KeyFixed64:
		return Fixed64
	case KeySfixed32:
		return Sfixed32
	case KeySfixed64:
		return Sfixed64
	case KeyBool:
		return Bool
	default:
		return String
	}
}

// TyKind distinguishes a built-in scalar type from a named message/enum
// reference that must be resolved by the checker.
type TyKind int

const (
	TyScalar TyKind = iota
	TyNamed
)

// Ty is a field's declared type, before name resolution.
type Ty struct {
	Kind   TyKind
	Scalar ScalarType
	Name   TypeName
}

// TypeName is a (possibly absolute) dotted type reference, e.g. `.foo.Bar`
// or `Bar`.
type TypeName struct {
	LeadingDot bool
	Parts      []Ident
}

// String renders the type name exactly as written in source (without
// re-adding a leading dot unless LeadingDot is set).
func (t TypeName) String() string {
	parts := make([]string, len(t.Parts))
	for i, p := range t.Parts {
		parts[i] = p.Value
	}
	joined := strings.Join(parts, ".")
	if t.LeadingDot {
		return "." + joined
	}
	return joined
}

// Span covers the whole dotted name.
func (t TypeName) Span() report.Span {
	if len(t.Parts) == 0 {
		return report.Span{}
	}
	return report.Span{Start: t.Parts[0].Span.Start, End: t.Parts[len(t.Parts)-1].Span.End}
}
