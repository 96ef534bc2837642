package idl

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError is one recoverable parse failure; Parse collects as many as
// it can before giving up on a definition and resynchronizing.
type ParseError struct {
	Position Position
	Message  string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
}

// Parser parses IDL source text into a Schema (C1), unresolved: type names
// are exactly as written, not yet scoped or alias-normalized (C2's job).
type Parser struct {
	lexer    *Lexer
	current  Token
	previous Token
	errors   []ParseError
}

// NewParser creates a parser over input.
func NewParser(filename, input string) *Parser {
	p := &Parser{lexer: NewLexer(filename, input)}
	p.advance()
	return p
}

// Parse parses the whole document: a sequence of top-level definitions.
func Parse(filename, input string) (*Schema, []ParseError) {
	p := NewParser(filename, input)
	return p.parseSchema()
}

func (p *Parser) parseSchema() (*Schema, []ParseError) {
	s := &Schema{}
	for !p.check(TokenEOF) {
		def, err := p.parseDefinition()
		if err != nil {
			p.errors = append(p.errors, *err)
			p.synchronize()
			continue
		}
		if def != nil {
			s.Definitions = append(s.Definitions, def)
		}
	}
	return s, p.errors
}

// parseDefinition parses one annotated top-level or module-nested
// declaration: module, struct, union, enum, typedef, or const.
func (p *Parser) parseDefinition() (Definition, *ParseError) {
	anns, err := p.parseAnnotations()
	if err != nil {
		return nil, err
	}

	switch p.current.Type {
	case TokenModule:
		return p.parseModule()
	case TokenStruct:
		return p.parseStruct(anns)
	case TokenUnion:
		return p.parseUnion(anns)
	case TokenEnum:
		return p.parseEnum(anns)
	case TokenTypedef:
		return p.parseTypedef()
	case TokenConst:
		return p.parseConst()
	default:
		return nil, p.errorf("expected module, struct, union, enum, typedef, or const, got %s", p.current.Type)
	}
}

// parseAnnotations parses zero or more `@name` or `@name(arg)` prefixes.
func (p *Parser) parseAnnotations() ([]Annotation, *ParseError) {
	var anns []Annotation
	for p.check(TokenAt) {
		pos := p.current.Position
		p.advance()
		// `default` lexes as a keyword but is also a valid annotation name.
		if !p.check(TokenIdent) && !p.check(TokenDefault) {
			return nil, p.errorf("expected annotation name after '@'")
		}
		name := p.current.Value
		p.advance()
		var arg string
		if p.check(TokenLParen) {
			p.advance()
			if !p.check(TokenRParen) {
				neg := ""
				if p.check(TokenMinus) {
					neg = "-"
					p.advance()
				}
				arg = neg + p.current.Value
				p.advance()
			}
			if !p.consume(TokenRParen) {
				return nil, p.errorf("expected ')' closing annotation argument")
			}
		}
		anns = append(anns, Annotation{Position: pos, Name: name, Arg: arg})
	}
	return anns, nil
}

// parseModule parses: 'module' ident '{' definition* '}' ';'?
func (p *Parser) parseModule() (*Module, *ParseError) {
	pos := p.current.Position
	p.advance() // 'module'
	if !p.check(TokenIdent) {
		return nil, p.errorf("expected module name")
	}
	name := p.current.Value
	p.advance()
	if !p.consume(TokenLBrace) {
		return nil, p.errorf("expected '{' after module name")
	}
	var defs []Definition
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		def, err := p.parseDefinition()
		if err != nil {
			p.errors = append(p.errors, *err)
			p.synchronize()
			continue
		}
		if def != nil {
			defs = append(defs, def)
		}
	}
	if !p.consume(TokenRBrace) {
		return nil, p.errorf("expected '}' closing module %q", name)
	}
	p.consume(TokenSemicolon)
	return &Module{Position: pos, Name: name, Definitions: defs}, nil
}

// parseStruct parses: 'struct' ident '{' field* '}' ';'?
func (p *Parser) parseStruct(anns []Annotation) (*Struct, *ParseError) {
	pos := p.current.Position
	p.advance() // 'struct'
	if !p.check(TokenIdent) {
		return nil, p.errorf("expected struct name")
	}
	name := p.current.Value
	p.advance()
	if !p.consume(TokenLBrace) {
		return nil, p.errorf("expected '{' after struct name")
	}
	var fields []*Field
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	if !p.consume(TokenRBrace) {
		return nil, p.errorf("expected '}' closing struct %q", name)
	}
	p.consume(TokenSemicolon)
	return &Struct{Position: pos, Name: name, Fields: fields, Annotations: anns}, nil
}

// parseField parses: annotations* type_spec ident ('[' int ']')* ';'
func (p *Parser) parseField() (*Field, *ParseError) {
	anns, err := p.parseAnnotations()
	if err != nil {
		return nil, err
	}
	pos := p.current.Position
	ts, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	if !p.check(TokenIdent) {
		return nil, p.errorf("expected field name")
	}
	name := p.current.Value
	p.advance()

	var dims []int
	for p.check(TokenLBracket) {
		p.advance()
		if !p.check(TokenInt) {
			return nil, p.errorf("expected array dimension")
		}
		n, perr := strconv.Atoi(p.current.Value)
		if perr != nil {
			return nil, p.errorf("invalid array dimension %q", p.current.Value)
		}
		p.advance()
		if !p.consume(TokenRBracket) {
			return nil, p.errorf("expected ']' after array dimension")
		}
		dims = append(dims, n)
	}

	if !p.consume(TokenSemicolon) {
		return nil, p.errorf("expected ';' after field %q", name)
	}

	return &Field{
		Position:         pos,
		Name:             name,
		Type:             ts.name,
		ArrayLengths:     dims,
		IsSequence:       ts.isSequence,
		SequenceBound:    ts.bound,
		StringUpperBound: ts.stringBound,
		Annotations:      anns,
	}, nil
}

// typeSpec is the parser's intermediate representation of a type
// occurrence; parseField/parseTypedef/parseConst/parseCase project it onto
// the AST's flatter Field/Typedef shape, which models sequence-ness and
// bounds as modifiers on the declaration site rather than as a nested type.
type typeSpec struct {
	name        string
	isSequence  bool
	bound       int // sequence_bound, 0 = unbounded
	stringBound int // string_upper_bound, 0 = unbounded
}

// parseTypeSpec parses a scoped name, `sequence<T, bound?>`, or
// `string<bound>` / `wstring<bound>`.
func (p *Parser) parseTypeSpec() (typeSpec, *ParseError) {
	switch p.current.Type {
	case TokenSequence:
		p.advance()
		if !p.consume(TokenLAngle) {
			return typeSpec{}, p.errorf("expected '<' after 'sequence'")
		}
		elem, err := p.parseTypeSpec()
		if err != nil {
			return typeSpec{}, err
		}
		if elem.isSequence {
			return typeSpec{}, p.errorf("sequence of sequence is not a supported composition")
		}
		bound := 0
		if p.check(TokenComma) {
			p.advance()
			if !p.check(TokenInt) {
				return typeSpec{}, p.errorf("expected sequence bound")
			}
			n, perr := strconv.Atoi(p.current.Value)
			if perr != nil {
				return typeSpec{}, p.errorf("invalid sequence bound %q", p.current.Value)
			}
			bound = n
			p.advance()
		}
		if !p.consume(TokenRAngle) {
			return typeSpec{}, p.errorf("expected '>' closing sequence")
		}
		return typeSpec{name: elem.name, isSequence: true, bound: bound, stringBound: elem.stringBound}, nil

	case TokenStringKw, TokenWString:
		name := "string"
		if p.current.Type == TokenWString {
			name = "wstring"
		}
		p.advance()
		bound := 0
		if p.check(TokenLAngle) {
			p.advance()
			if !p.check(TokenInt) {
				return typeSpec{}, p.errorf("expected string bound")
			}
			n, perr := strconv.Atoi(p.current.Value)
			if perr != nil {
				return typeSpec{}, p.errorf("invalid string bound %q", p.current.Value)
			}
			bound = n
			p.advance()
			if !p.consume(TokenRAngle) {
				return typeSpec{}, p.errorf("expected '>' closing %s bound", name)
			}
		}
		return typeSpec{name: name, stringBound: bound}, nil

	default:
		name, err := p.parseScopedTypeName()
		if err != nil {
			return typeSpec{}, err
		}
		return typeSpec{name: name}, nil
	}
}

// parseScopedTypeName parses a primitive keyword, a multi-word primitive
// (`unsigned long`, `long long`, ...), or a scoped identifier reference.
func (p *Parser) parseScopedTypeName() (string, *ParseError) {
	switch p.current.Type {
	case TokenUnsigned:
		p.advance()
		switch p.current.Type {
		case TokenLong:
			p.advance()
			if p.check(TokenLong) {
				p.advance()
				return "unsigned long long", nil
			}
			return "unsigned long", nil
		case TokenShort:
			p.advance()
			return "unsigned short", nil
		default:
			return "", p.errorf("expected 'long' or 'short' after 'unsigned'")
		}
	case TokenLong:
		p.advance()
		if p.check(TokenLong) {
			p.advance()
			return "long long", nil
		}
		if p.check(TokenDouble) {
			p.advance()
			return "float64", nil // long double demotes to float64; no wider float primitive exists
		}
		return "long", nil
	case TokenShort:
		p.advance()
		return "short", nil
	case TokenDouble:
		p.advance()
		return "double", nil
	case TokenFloatKw:
		p.advance()
		return "float", nil
	case TokenBoolean:
		p.advance()
		return "boolean", nil
	case TokenOctet:
		p.advance()
		return "octet", nil
	case TokenByteKw:
		p.advance()
		return "byte", nil
	case TokenChar:
		p.advance()
		return "char", nil
	case TokenWChar:
		p.advance()
		return "wchar", nil
	}

	var sb strings.Builder
	if p.check(TokenScope) {
		sb.WriteString("::")
		p.advance()
	}
	if !p.check(TokenIdent) {
		return "", p.errorf("expected type name, got %s", p.current.Type)
	}
	sb.WriteString(p.current.Value)
	p.advance()
	for p.check(TokenScope) {
		p.advance()
		if !p.check(TokenIdent) {
			return "", p.errorf("expected identifier after '::'")
		}
		sb.WriteString("::")
		sb.WriteString(p.current.Value)
		p.advance()
	}
	return sb.String(), nil
}

// parseTypedef parses: 'typedef' type_spec ident ('[' int ']')* ';'
func (p *Parser) parseTypedef() (*Typedef, *ParseError) {
	pos := p.current.Position
	p.advance() // 'typedef'
	ts, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	if !p.check(TokenIdent) {
		return nil, p.errorf("expected typedef name")
	}
	name := p.current.Value
	p.advance()

	var dims []int
	for p.check(TokenLBracket) {
		p.advance()
		if !p.check(TokenInt) {
			return nil, p.errorf("expected array dimension")
		}
		n, perr := strconv.Atoi(p.current.Value)
		if perr != nil {
			return nil, p.errorf("invalid array dimension %q", p.current.Value)
		}
		p.advance()
		if !p.consume(TokenRBracket) {
			return nil, p.errorf("expected ']' after array dimension")
		}
		dims = append(dims, n)
	}
	if !p.consume(TokenSemicolon) {
		return nil, p.errorf("expected ';' after typedef %q", name)
	}
	return &Typedef{
		Position:         pos,
		Name:             name,
		Type:             ts.name,
		ArrayLengths:     dims,
		IsSequence:       ts.isSequence,
		SequenceBound:    ts.bound,
		StringUpperBound: ts.stringBound,
	}, nil
}

// parseConst parses: 'const' type_spec ident '=' const_expr ';'
func (p *Parser) parseConst() (*Constant, *ParseError) {
	pos := p.current.Position
	p.advance() // 'const'
	ts, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	if !p.check(TokenIdent) {
		return nil, p.errorf("expected const name")
	}
	name := p.current.Value
	p.advance()
	if !p.consume(TokenEquals) {
		return nil, p.errorf("expected '=' after const name %q", name)
	}
	val, err := p.parseConstExpr()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenSemicolon) {
		return nil, p.errorf("expected ';' after const %q", name)
	}
	return &Constant{Position: pos, Name: name, Type: ts.name, Value: val}, nil
}

// parseConstExpr parses an integer, float, bool, string literal, or a
// scoped identifier (e.g. an enumerator reference, left as ConstIdent for
// the resolver).
func (p *Parser) parseConstExpr() (ConstValue, *ParseError) {
	neg := false
	if p.check(TokenMinus) {
		neg = true
		p.advance()
	}
	switch p.current.Type {
	case TokenInt:
		text := p.current.Value
		p.advance()
		n, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return ConstValue{}, p.errorf("invalid integer literal %q", text)
		}
		if neg {
			n = -n
		}
		return ConstValue{Kind: ConstInt, Int: n}, nil
	case TokenFloat:
		text := p.current.Value
		p.advance()
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return ConstValue{}, p.errorf("invalid float literal %q", text)
		}
		if neg {
			f = -f
		}
		return ConstValue{Kind: ConstFloat, Float: f}, nil
	case TokenString:
		v := p.current.Value
		p.advance()
		return ConstValue{Kind: ConstString, Str: v}, nil
	case TokenTrue:
		p.advance()
		return ConstValue{Kind: ConstBool, Bool: true}, nil
	case TokenFalse:
		p.advance()
		return ConstValue{Kind: ConstBool, Bool: false}, nil
	default:
		name, err := p.parseScopedTypeName()
		if err != nil {
			return ConstValue{}, p.errorf("expected constant value")
		}
		return ConstValue{Kind: ConstIdent, Str: name}, nil
	}
}

// parseUnion parses:
//
//	'union' ident 'switch' '(' type_spec ')' '{' case* '}' ';'?
func (p *Parser) parseUnion(anns []Annotation) (*Union, *ParseError) {
	pos := p.current.Position
	p.advance() // 'union'
	if !p.check(TokenIdent) {
		return nil, p.errorf("expected union name")
	}
	name := p.current.Value
	p.advance()
	if !p.consume(TokenSwitch) {
		return nil, p.errorf("expected 'switch' in union %q", name)
	}
	if !p.consume(TokenLParen) {
		return nil, p.errorf("expected '(' after 'switch'")
	}
	ts, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	if !p.consume(TokenRParen) {
		return nil, p.errorf("expected ')' closing switch type")
	}
	if !p.consume(TokenLBrace) {
		return nil, p.errorf("expected '{' after union switch")
	}

	u := &Union{Position: pos, Name: name, SwitchType: ts.name, Annotations: anns}
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		switch p.current.Type {
		case TokenCase:
			var preds []ConstValue
			for p.check(TokenCase) {
				p.advance()
				v, err := p.parseConstExpr()
				if err != nil {
					return nil, err
				}
				if !p.consume(TokenColon) {
					return nil, p.errorf("expected ':' after case label")
				}
				preds = append(preds, v)
			}
			field, err := p.parseField()
			if err != nil {
				return nil, err
			}
			u.Cases = append(u.Cases, &Case{Position: field.Position, Predicates: preds, Field: field})
		case TokenDefault:
			p.advance()
			if !p.consume(TokenColon) {
				return nil, p.errorf("expected ':' after 'default'")
			}
			field, err := p.parseField()
			if err != nil {
				return nil, err
			}
			u.Default = field
		default:
			return nil, p.errorf("expected 'case' or 'default' in union %q, got %s", name, p.current.Type)
		}
	}
	if !p.consume(TokenRBrace) {
		return nil, p.errorf("expected '}' closing union %q", name)
	}
	p.consume(TokenSemicolon)
	return u, nil
}

// parseEnum parses: 'enum' ident '{' enumerator (',' enumerator)* '}' ';'?
// An enumerator may carry a `@value(n)` annotation that restarts the
// implicit counter.
func (p *Parser) parseEnum(anns []Annotation) (*Enum, *ParseError) {
	pos := p.current.Position
	p.advance() // 'enum'
	if !p.check(TokenIdent) {
		return nil, p.errorf("expected enum name")
	}
	name := p.current.Value
	p.advance()
	if !p.consume(TokenLBrace) {
		return nil, p.errorf("expected '{' after enum name")
	}

	e := &Enum{Position: pos, Name: name, Annotations: anns}
	next := uint32(0)
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		eAnns, err := p.parseAnnotations()
		if err != nil {
			return nil, err
		}
		if !p.check(TokenIdent) {
			return nil, p.errorf("expected enumerator name")
		}
		epos := p.current.Position
		ename := p.current.Value
		p.advance()

		value := next
		if a, ok := FindAnnotation(eAnns, "value"); ok {
			n, perr := strconv.Atoi(a.Arg)
			if perr != nil {
				return nil, p.errorf("invalid @value(%s) on enumerator %q", a.Arg, ename)
			}
			value = uint32(n)
		}
		e.Enumerators = append(e.Enumerators, &Enumerator{Position: epos, Name: ename, Value: value})
		next = value + 1

		if p.check(TokenComma) {
			p.advance()
		} else {
			break
		}
	}
	if !p.consume(TokenRBrace) {
		return nil, p.errorf("expected '}' closing enum %q", name)
	}
	p.consume(TokenSemicolon)
	return e, nil
}

// Helper methods.

func (p *Parser) advance() {
	p.previous = p.current
	p.current = p.lexer.Next()
}

func (p *Parser) check(t TokenType) bool { return p.current.Type == t }

func (p *Parser) consume(t TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Position: p.current.Position, Message: fmt.Sprintf(format, args...)}
}

// synchronize skips tokens until a likely definition boundary, so Parse
// can keep collecting errors instead of stopping at the first one.
func (p *Parser) synchronize() {
	for !p.check(TokenEOF) {
		p.advance()
		if p.previous.Type == TokenSemicolon || p.previous.Type == TokenRBrace {
			return
		}
		switch p.current.Type {
		case TokenModule, TokenStruct, TokenUnion, TokenEnum, TokenTypedef, TokenConst:
			return
		}
	}
}
