package report

// Kind is the closed taxonomy of diagnostics from spec.md §7. It is a
// machine-readable tag distinct from the human Message on a Diagnostic,
// mirroring buf's FileAnnotation.Type() string tag.
type Kind int

const (
	_ Kind = iota

	// Open / I/O
	FileNotFound
	OpenFailed
	FileTooLarge

	// Parse (parser-owned, bubbled up unchanged)
	UnexpectedToken
	UnterminatedLiteral
	InvalidNumber

	// Name
	DuplicateName
	TypeNameNotFound
	InvalidMessageFieldTypeName
	InvalidExtendeeTypeName
	InvalidMethodTypeName

	// Numbers & labels
	InvalidMessageNumber
	InvalidEnumNumber
	Proto2FieldMissingLabel
	Proto3RequiredField
	RequiredExtendField
	OneofFieldWithLabel
	InvalidOneofFieldKind
	InvalidExtendFieldKind
	MapFieldWithLabel
	InvalidDefault
	Proto3GroupField
)

var kindNames = map[Kind]string{
	FileNotFound:                "file-not-found",
	OpenFailed:                  "open-failed",
	FileTooLarge:                "file-too-large",
	UnexpectedToken:             "unexpected-token",
	UnterminatedLiteral:         "unterminated-literal",
	InvalidNumber:               "invalid-number",
	DuplicateName:               "duplicate-name",
	TypeNameNotFound:            "type-name-not-found",
	InvalidMessageFieldTypeName: "invalid-message-field-type-name",
	InvalidExtendeeTypeName:     "invalid-extendee-type-name",
	InvalidMethodTypeName:       "invalid-method-type-name",
	InvalidMessageNumber:        "invalid-message-number",
	InvalidEnumNumber:           "invalid-enum-number",
	Proto2FieldMissingLabel:     "proto2-field-missing-label",
	Proto3RequiredField:         "proto3-required-field",
	RequiredExtendField:         "required-extend-field",
	OneofFieldWithLabel:         "oneof-field-with-label",
	InvalidOneofFieldKind:       "invalid-oneof-field-kind",
	InvalidExtendFieldKind:      "invalid-extend-field-kind",
	MapFieldWithLabel:           "map-field-with-label",
	InvalidDefault:              "invalid-default",
	Proto3GroupField:            "proto3-group-field",
}

// String returns the machine-readable kind tag, e.g. "duplicate-name".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}
