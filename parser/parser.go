// Package parser turns protobuf source text into an ast.File. It is a thin
// collaborator (spec.md §1, §6): errors here are fatal for the file and
// never reach the checker (spec.md §7, "Resolver errors and parser errors
// are fatal for the failing file").
package parser

import (
	"fmt"

	"github.com/protoxlang/protox/ast"
	"github.com/protoxlang/protox/lexer"
	"github.com/protoxlang/protox/lines"
	"github.com/protoxlang/protox/report"
)

// Parse tokenizes and parses source, returning the resulting AST and any
// diagnostics. A non-empty diagnostic list does not necessarily mean file
// is nil: the parser recovers at statement boundaries where it can.
func Parse(source []byte, lineResolver *lines.Resolver) (*ast.File, []report.Diagnostic) {
	p := &parser{lex: lexer.New(source)}
	p.advance()
	file := p.parseFile()
	p.errs = append(p.errs, p.lex.Errors()...)
	return file, p.errs
}

type parser struct {
	lex  *lexer.Lexer
	tok  lexer.Token
	errs []report.Diagnostic
}

func (p *parser) advance() {
	p.tok = p.lex.Next()
}

func (p *parser) errorf(span report.Span, format string, args ...any) {
	p.errs = append(p.errs, report.Diagnostic{
		Kind:    report.UnexpectedToken,
		Span:    span,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *parser) atSymbol(s string) bool {
	return p.tok.Kind == lexer.Symbol && p.tok.Text == s
}

func (p *parser) atKeyword(kw string) bool {
	return p.tok.Kind == lexer.Ident && p.tok.Text == kw
}

func (p *parser) expectSymbol(s string) report.Span {
	if p.atSymbol(s) {
		span := p.tok.Span
		p.advance()
		return span
	}
	p.errorf(p.tok.Span, "expected %q, found %q", s, p.tok.Text)
	return p.tok.Span
}

func (p *parser) expectIdent() ast.Ident {
	if p.tok.Kind == lexer.Ident {
		id := ast.Ident{Value: p.tok.Text, Span: p.tok.Span}
		p.advance()
		return id
	}
	p.errorf(p.tok.Span, "expected identifier, found %q", p.tok.Text)
	id := ast.Ident{Value: "", Span: p.tok.Span}
	return id
}

// skipToRecoveryPoint consumes tokens until a statement boundary so one
// malformed declaration doesn't cascade into spurious errors for the rest
// of the file.
func (p *parser) skipToRecoveryPoint() {
	depth := 0
	for {
		switch {
		case p.tok.Kind == lexer.EOF:
			return
		case p.atSymbol("{"):
			depth++
			p.advance()
		case p.atSymbol("}"):
			if depth == 0 {
				return
			}
			depth--
			p.advance()
		case p.atSymbol(";") && depth == 0:
			p.advance()
			return
		default:
			p.advance()
		}
	}
}

func (p *parser) parseFile() *ast.File {
	file := &ast.File{Syntax: ast.Proto2}

	if p.atKeyword("syntax") {
		start := p.tok.Span
		p.advance()
		p.expectSymbol("=")
		if p.tok.Kind == lexer.StringLiteral {
			switch string(p.tok.StringValue) {
			case "proto3":
				file.Syntax = ast.Proto3
			case "proto2":
				file.Syntax = ast.Proto2
			default:
				p.errorf(p.tok.Span, "unknown syntax %q", string(p.tok.StringValue))
			}
			p.advance()
		} else {
			p.errorf(p.tok.Span, "expected syntax string literal")
		}
		end := p.expectSymbol(";")
		file.SyntaxSpan = report.Span{Start: start.Start, End: end.End}
	}

	for p.tok.Kind != lexer.EOF {
		switch {
		case p.atSymbol(";"):
			p.advance()
		case p.atKeyword("import"):
			file.Imports = append(file.Imports, p.parseImport())
		case p.atKeyword("package"):
			file.Package = p.parsePackage()
		case p.atKeyword("option"):
			file.Options = append(file.Options, p.parseOptionStatement())
		case p.atKeyword("message"):
			file.Items = append(file.Items, ast.FileMessage{Message: p.parseMessage()})
		case p.atKeyword("enum"):
			file.Items = append(file.Items, ast.FileEnum{Enum: p.parseEnum()})
		case p.atKeyword("service"):
			file.Items = append(file.Items, ast.FileService{Service: p.parseService()})
		case p.atKeyword("extend"):
			file.Items = append(file.Items, ast.FileExtend{Extend: p.parseExtend()})
		default:
			p.errorf(p.tok.Span, "unexpected token %q at file scope", p.tok.Text)
			p.skipToRecoveryPoint()
		}
	}
	return file
}

func (p *parser) parseImport() *ast.Import {
	start := p.tok.Span
	p.advance() // 'import'
	imp := &ast.Import{}
	if p.atKeyword("public") {
		imp.Public = true
		p.advance()
	} else if p.atKeyword("weak") {
		imp.Weak = true
		p.advance()
	}
	if p.tok.Kind == lexer.StringLiteral {
		imp.Path = string(p.tok.StringValue)
		imp.PathRaw = p.tok.Text
		p.advance()
	} else {
		p.errorf(p.tok.Span, "expected import path string literal")
	}
	end := p.expectSymbol(";")
	imp.Span = report.Span{Start: start.Start, End: end.End}
	return imp
}

func (p *parser) parsePackage() []ast.Ident {
	p.advance() // 'package'
	var parts []ast.Ident
	parts = append(parts, p.expectIdent())
	for p.atSymbol(".") {
		p.advance()
		parts = append(parts, p.expectIdent())
	}
	p.expectSymbol(";")
	return parts
}

func (p *parser) parseTypeName() ast.TypeName {
	var tn ast.TypeName
	if p.atSymbol(".") {
		tn.LeadingDot = true
		p.advance()
	}
	tn.Parts = append(tn.Parts, p.expectIdent())
	for p.atSymbol(".") {
		p.advance()
		tn.Parts = append(tn.Parts, p.expectIdent())
	}
	return tn
}

var scalarKeywords = map[string]ast.ScalarType{
	"double": ast.Double, "float": ast.Float,
	"int32": ast.Int32, "int64": ast.Int64,
	"uint32": ast.Uint32, "uint64": ast.Uint64,
	"sint32": ast.Sint32, "sint64": ast.Sint64,
	"fixed32": ast.Fixed32, "fixed64": ast.Fixed64,
	"sfixed32": ast.Sfixed32, "sfixed64": ast.Sfixed64,
	"bool": ast.Bool, "string": ast.String, "bytes": ast.Bytes,
}

var keyTypeKeywords = map[string]ast.KeyType{
	"int32": ast.KeyInt32, "int64": ast.KeyInt64,
	"uint32": ast.KeyUint32, "uint64": ast.KeyUint64,
	"sint32": ast.KeySint32, "sint64": ast.KeySint64,
	"fixed32": ast.KeyFixed32, "fixed64": ast.KeyFixed64,
	"sfixed32": ast.KeySfixed32, "sfixed64": ast.KeySfixed64,
	"bool": ast.KeyBool, "string": ast.KeyString,
}

func (p *parser) parseType() ast.Ty {
	if p.tok.Kind == lexer.Ident {
		if scalar, ok := scalarKeywords[p.tok.Text]; ok {
			p.advance()
			return ast.Ty{Kind: ast.TyScalar, Scalar: scalar}
		}
	}
	return ast.Ty{Kind: ast.TyNamed, Name: p.parseTypeName()}
}

func (p *parser) parseInt() ast.IntLit {
	negative := false
	start := p.tok.Span
	if p.atSymbol("-") {
		negative = true
		p.advance()
	}
	if p.tok.Kind != lexer.IntLiteral {
		p.errorf(p.tok.Span, "expected integer literal, found %q", p.tok.Text)
		return ast.IntLit{Span: p.tok.Span}
	}
	value := p.tok.IntValue
	end := p.tok.Span
	p.advance()
	return ast.IntLit{Value: value, Negative: negative, Span: report.Span{Start: start.Start, End: end.End}}
}

// tryParseFieldLabel recognizes an optional/required/repeated keyword, if
// present at the current position, without consuming a bare field type.
func (p *parser) tryParseFieldLabel() *ast.FieldLabel {
	if p.tok.Kind != lexer.Ident {
		return nil
	}
	var label ast.FieldLabel
	switch p.tok.Text {
	case "optional":
		label = ast.LabelOptional
	case "required":
		label = ast.LabelRequired
	case "repeated":
		label = ast.LabelRepeated
	default:
		return nil
	}
	p.advance()
	return &label
}

func (p *parser) parseFieldOptionsBracket() []ast.OptionEntry {
	if !p.atSymbol("[") {
		return nil
	}
	p.advance()
	var opts []ast.OptionEntry
	for !p.atSymbol("]") && p.tok.Kind != lexer.EOF {
		opts = append(opts, p.parseOptionEntry())
		if p.atSymbol(",") {
			p.advance()
		}
	}
	p.expectSymbol("]")
	return opts
}

func (p *parser) parseOptionNamePath() []ast.OptionNamePart {
	var parts []ast.OptionNamePart
	for {
		if p.atSymbol("(") {
			p.advance()
			tn := p.parseTypeName()
			p.expectSymbol(")")
			parts = append(parts, ast.OptionNamePart{Name: tn.String(), IsExtension: true})
		} else {
			id := p.expectIdent()
			parts = append(parts, ast.OptionNamePart{Name: id.Value})
		}
		if p.atSymbol(".") {
			p.advance()
			continue
		}
		break
	}
	return parts
}

func (p *parser) parseOptionEntry() ast.OptionEntry {
	start := p.tok.Span
	name := p.parseOptionNamePath()
	p.expectSymbol("=")
	value := p.parseOptionValue()
	return ast.OptionEntry{Name: name, Value: value, Span: report.Span{Start: start.Start, End: p.tok.Span.Start}}
}

func (p *parser) parseOptionValue() ast.OptionValue {
	switch {
	case p.atSymbol("{"):
		return p.parseAggregateValue()
	case p.tok.Kind == lexer.StringLiteral:
		v := ast.OptionValue{Kind: ast.OptionString, String: p.tok.StringValue}
		p.advance()
		return v
	case p.tok.Kind == lexer.FloatLiteral:
		v := ast.OptionValue{Kind: ast.OptionDouble, Double: p.tok.FloatValue}
		p.advance()
		return v
	case p.atSymbol("-"):
		p.advance()
		if p.tok.Kind == lexer.FloatLiteral {
			v := ast.OptionValue{Kind: ast.OptionDouble, Double: -p.tok.FloatValue}
			p.advance()
			return v
		}
		v := ast.OptionValue{Kind: ast.OptionNegativeInt, NegativeInt: -int64(p.tok.IntValue)}
		p.advance()
		return v
	case p.tok.Kind == lexer.IntLiteral:
		v := ast.OptionValue{Kind: ast.OptionPositiveInt, PositiveInt: p.tok.IntValue}
		p.advance()
		return v
	case p.tok.Kind == lexer.Ident:
		v := ast.OptionValue{Kind: ast.OptionIdentifier, Identifier: p.tok.Text}
		p.advance()
		return v
	default:
		p.errorf(p.tok.Span, "expected option value, found %q", p.tok.Text)
		p.advance()
		return ast.OptionValue{}
	}
}

// parseAggregateValue skips a `{ ... }` aggregate option literal, matching
// nested braces, and records it as the placeholder "<aggregate START-END>"
// built from its byte offsets. The literal's text and tokens are not kept.
func (p *parser) parseAggregateValue() ast.OptionValue {
	depth := 0
	start := p.tok.Span.Start
	for {
		if p.atSymbol("{") {
			depth++
			p.advance()
			continue
		}
		if p.atSymbol("}") {
			depth--
			end := p.tok.Span.End
			p.advance()
			if depth == 0 {
				return ast.OptionValue{Kind: ast.OptionAggregate, Aggregate: fmt.Sprintf("<aggregate %d-%d>", start, end)}
			}
			continue
		}
		if p.tok.Kind == lexer.EOF {
			return ast.OptionValue{Kind: ast.OptionAggregate}
		}
		p.advance()
	}
}

func (p *parser) parseOptionStatement() ast.OptionEntry {
	p.advance() // 'option'
	entry := p.parseOptionEntry()
	p.expectSymbol(";")
	return entry
}
