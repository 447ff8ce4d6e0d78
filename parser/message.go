package parser

import (
	"github.com/protoxlang/protox/ast"
	"github.com/protoxlang/protox/lexer"
	"github.com/protoxlang/protox/report"
)

func (p *parser) parseMessage() *ast.Message {
	start := p.tok.Span
	p.advance() // 'message'
	name := p.expectIdent()
	body := p.parseMessageBody()
	return &ast.Message{Name: name, Body: body, Span: report.Span{Start: start.Start, End: p.tok.Span.Start}}
}

func (p *parser) parseMessageBody() ast.MessageBody {
	p.expectSymbol("{")
	var body ast.MessageBody
	for !p.atSymbol("}") && p.tok.Kind != lexer.EOF {
		switch {
		case p.atSymbol(";"):
			p.advance()
		case p.atKeyword("message"):
			body.Items = append(body.Items, ast.NestedMessage{Message: p.parseMessage()})
		case p.atKeyword("enum"):
			body.Items = append(body.Items, ast.NestedEnum{Enum: p.parseEnum()})
		case p.atKeyword("extend"):
			body.Items = append(body.Items, ast.NestedExtend{Extend: p.parseExtend()})
		case p.atKeyword("oneof"):
			body.Items = append(body.Items, ast.FieldItem{Field: p.parseOneof()})
		case p.atKeyword("extensions"):
			body.Extensions = append(body.Extensions, p.parseExtensions())
		case p.atKeyword("reserved"):
			body.Reserved = append(body.Reserved, p.parseReserved())
		case p.atKeyword("option"):
			body.Options = append(body.Options, p.parseOptionStatement())
		default:
			body.Items = append(body.Items, ast.FieldItem{Field: p.parseFieldLike()})
		}
	}
	p.expectSymbol("}")
	return body
}

// parseFieldLike parses the `[label] <map|group|type> name = N [opts];`
// family shared by message, oneof and extend bodies. The label is parsed
// once up front since `optional group Foo = 1 { ... }` and
// `map<K, V> foo = 1;` both need it before the keyword that would
// otherwise dispatch on "group" or "map" is visible.
func (p *parser) parseFieldLike() ast.MessageField {
	label := p.tryParseFieldLabel()
	switch {
	case p.atKeyword("map"):
		return p.parseMap(label)
	case p.atKeyword("group"):
		return p.parseGroup(label)
	default:
		return p.parseField(label)
	}
}

func (p *parser) parseField(label *ast.FieldLabel) *ast.Field {
	start := p.tok.Span
	ty := p.parseType()
	name := p.expectIdent()
	p.expectSymbol("=")
	number := p.parseInt()
	opts := p.parseFieldOptionsBracket()
	end := p.expectSymbol(";")
	return &ast.Field{
		Name: name, Number: number, Label: label, Type: ty, Options: opts,
		SpanVal: report.Span{Start: start.Start, End: end.End},
	}
}

func (p *parser) parseGroup(label *ast.FieldLabel) *ast.Group {
	start := p.tok.Span
	p.advance() // 'group'
	name := p.expectIdent()
	p.expectSymbol("=")
	number := p.parseInt()
	body := p.parseMessageBody()
	return &ast.Group{
		Name: name, Number: number, Label: label, Body: body,
		SpanVal: report.Span{Start: start.Start, End: p.tok.Span.Start},
	}
}

func (p *parser) parseMap(label *ast.FieldLabel) *ast.Map {
	start := p.tok.Span
	p.advance() // 'map'
	p.expectSymbol("<")
	keySpan := p.tok.Span
	keyIdent := p.expectIdent()
	keyType, ok := keyTypeKeywords[keyIdent.Value]
	if !ok {
		p.errorf(keySpan, "invalid map key type %q", keyIdent.Value)
		keyType = ast.KeyString
	}
	p.expectSymbol(",")
	valueType := p.parseType()
	p.expectSymbol(">")
	name := p.expectIdent()
	p.expectSymbol("=")
	number := p.parseInt()
	opts := p.parseFieldOptionsBracket()
	end := p.expectSymbol(";")
	return &ast.Map{
		Name: name, Number: number, KeyType: keyType, KeyTypeSpan: keySpan, ValueType: valueType,
		Label: label, Options: opts, SpanVal: report.Span{Start: start.Start, End: end.End},
	}
}

func (p *parser) parseOneof() *ast.Oneof {
	start := p.tok.Span
	p.advance() // 'oneof'
	name := p.expectIdent()
	p.expectSymbol("{")
	oneof := &ast.Oneof{Name: name}
	for !p.atSymbol("}") && p.tok.Kind != lexer.EOF {
		switch {
		case p.atSymbol(";"):
			p.advance()
		case p.atKeyword("option"):
			oneof.Options = append(oneof.Options, p.parseOptionStatement())
		default:
			oneof.Fields = append(oneof.Fields, p.parseFieldLike())
		}
	}
	end := p.expectSymbol("}")
	oneof.SpanVal = report.Span{Start: start.Start, End: end.End}
	return oneof
}

func (p *parser) parseExtensions() *ast.Extensions {
	p.advance() // 'extensions'
	ext := &ast.Extensions{}
	for {
		ext.Ranges = append(ext.Ranges, p.parseReservedRange())
		if p.atSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	ext.Options = p.parseFieldOptionsBracket()
	p.expectSymbol(";")
	return ext
}

func (p *parser) parseReservedRange() *ast.ReservedRange {
	start := p.parseInt()
	rr := &ast.ReservedRange{Start: start, Span: start.Span}
	if p.atKeyword("to") {
		p.advance()
		if p.atKeyword("max") {
			rr.EndKind = ast.ReservedRangeEndMax
			rr.Span.End = p.tok.Span.End
			p.advance()
		} else {
			end := p.parseInt()
			rr.EndKind = ast.ReservedRangeEndInt
			rr.End = end
			rr.Span.End = end.Span.End
		}
	}
	return rr
}

func (p *parser) parseReserved() *ast.Reserved {
	p.advance() // 'reserved'
	if p.tok.Kind == lexer.StringLiteral {
		r := &ast.Reserved{Kind: ast.ReservedNames}
		for {
			r.Names = append(r.Names, ast.Ident{Value: string(p.tok.StringValue), Span: p.tok.Span})
			p.advance()
			if p.atSymbol(",") {
				p.advance()
				continue
			}
			break
		}
		p.expectSymbol(";")
		return r
	}
	r := &ast.Reserved{Kind: ast.ReservedRanges}
	for {
		r.Ranges = append(r.Ranges, p.parseReservedRange())
		if p.atSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectSymbol(";")
	return r
}

func (p *parser) parseExtend() *ast.Extend {
	start := p.tok.Span
	p.advance() // 'extend'
	extendee := p.parseTypeName()
	p.expectSymbol("{")
	ext := &ast.Extend{Extendee: extendee}
	for !p.atSymbol("}") && p.tok.Kind != lexer.EOF {
		switch {
		case p.atSymbol(";"):
			p.advance()
		default:
			ext.Fields = append(ext.Fields, p.parseFieldLike())
		}
	}
	end := p.expectSymbol("}")
	ext.SpanVal = report.Span{Start: start.Start, End: end.End}
	return ext
}

func (p *parser) parseEnum() *ast.Enum {
	start := p.tok.Span
	p.advance() // 'enum'
	name := p.expectIdent()
	p.expectSymbol("{")
	e := &ast.Enum{Name: name}
	for !p.atSymbol("}") && p.tok.Kind != lexer.EOF {
		switch {
		case p.atSymbol(";"):
			p.advance()
		case p.atKeyword("option"):
			e.Options = append(e.Options, p.parseOptionStatement())
		case p.atKeyword("reserved"):
			e.Reserved = append(e.Reserved, p.parseReserved())
		default:
			e.Values = append(e.Values, p.parseEnumValue())
		}
	}
	end := p.expectSymbol("}")
	e.Span = report.Span{Start: start.Start, End: end.End}
	return e
}

func (p *parser) parseEnumValue() *ast.EnumValue {
	start := p.tok.Span
	name := p.expectIdent()
	p.expectSymbol("=")
	value := p.parseInt()
	opts := p.parseFieldOptionsBracket()
	end := p.expectSymbol(";")
	return &ast.EnumValue{Name: name, Value: value, Options: opts, Span: report.Span{Start: start.Start, End: end.End}}
}

func (p *parser) parseService() *ast.Service {
	start := p.tok.Span
	p.advance() // 'service'
	name := p.expectIdent()
	p.expectSymbol("{")
	svc := &ast.Service{Name: name}
	for !p.atSymbol("}") && p.tok.Kind != lexer.EOF {
		switch {
		case p.atSymbol(";"):
			p.advance()
		case p.atKeyword("option"):
			svc.Options = append(svc.Options, p.parseOptionStatement())
		case p.atKeyword("rpc"):
			svc.Methods = append(svc.Methods, p.parseMethod())
		default:
			p.errorf(p.tok.Span, "unexpected token %q in service body", p.tok.Text)
			p.skipToRecoveryPoint()
		}
	}
	end := p.expectSymbol("}")
	svc.Span = report.Span{Start: start.Start, End: end.End}
	return svc
}

func (p *parser) parseMethod() *ast.Method {
	start := p.tok.Span
	p.advance() // 'rpc'
	name := p.expectIdent()
	p.expectSymbol("(")
	m := &ast.Method{Name: name}
	if p.atKeyword("stream") {
		m.ClientStreaming = true
		p.advance()
	}
	m.InputType = p.parseTypeName()
	p.expectSymbol(")")
	p.expectIdentKeyword("returns")
	p.expectSymbol("(")
	if p.atKeyword("stream") {
		m.ServerStreaming = true
		p.advance()
	}
	m.OutputType = p.parseTypeName()
	p.expectSymbol(")")

	if p.atSymbol("{") {
		p.advance()
		for !p.atSymbol("}") && p.tok.Kind != lexer.EOF {
			if p.atKeyword("option") {
				m.Options = append(m.Options, p.parseOptionStatement())
			} else if p.atSymbol(";") {
				p.advance()
			} else {
				p.errorf(p.tok.Span, "unexpected token %q in method body", p.tok.Text)
				p.skipToRecoveryPoint()
			}
		}
		p.expectSymbol("}")
	} else {
		p.expectSymbol(";")
	}
	m.Span = report.Span{Start: start.Start, End: p.tok.Span.Start}
	return m
}

func (p *parser) expectIdentKeyword(kw string) {
	if p.atKeyword(kw) {
		p.advance()
		return
	}
	p.errorf(p.tok.Span, "expected %q, found %q", kw, p.tok.Text)
}
