package manifest

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser turns a token stream into a sequence of Instructions
// (spec.md §4.G grammar).
type Parser struct {
	toks []Token
	pos  int
}

func NewParser(toks []Token) *Parser { return &Parser{toks: toks} }

// Parse reads the whole manifest: a sequence of semicolon-terminated
// instructions followed by EOF.
func Parse(src string) ([]Instruction, error) {
	toks, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(toks).parseTransaction()
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) errf(format string, args ...interface{}) error {
	return fmt.Errorf("manifest:%d: %s", p.cur().Line, fmt.Sprintf(format, args...))
}

func (p *Parser) expect(kind TokenKind, what string) (Token, error) {
	if p.cur().Kind != kind {
		return Token{}, p.errf("expected %s, got %q", what, p.cur().Text)
	}
	return p.advance(), nil
}

func (p *Parser) keyword() string { return strings.ToUpper(p.cur().Text) }

func (p *Parser) parseTransaction() ([]Instruction, error) {
	var out []Instruction
	for p.cur().Kind != TokEOF {
		instr, err := p.parseInstruction()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokSemicolon, "';'"); err != nil {
			return nil, err
		}
		out = append(out, instr)
	}
	return out, nil
}

func (p *Parser) parseInstruction() (Instruction, error) {
	if p.cur().Kind != TokIdent {
		return Instruction{}, p.errf("expected instruction keyword, got %q", p.cur().Text)
	}
	line := p.cur().Line
	kw := p.keyword()
	p.advance()

	switch kw {
	case "DECLARE_TEMP_BUCKET":
		name, err := p.parseBareString()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Kind: InstrDeclareTempBucket, Name: name, Line: line}, nil

	case "DECLARE_TEMP_BUCKET_REF":
		name, err := p.parseBareString()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Kind: InstrDeclareTempBucketRef, Name: name, Line: line}, nil

	case "TAKE_FROM_CONTEXT":
		amount, err := p.parseValue()
		if err != nil {
			return Instruction{}, err
		}
		addr, err := p.parseValue()
		if err != nil {
			return Instruction{}, err
		}
		name, err := p.parseDeclaredBucketTarget(false)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Kind: InstrTakeFromContext, Amount: &amount, ResourceAddr: &addr, Name: name, Line: line}, nil

	case "BORROW_FROM_CONTEXT":
		amount, err := p.parseValue()
		if err != nil {
			return Instruction{}, err
		}
		addr, err := p.parseValue()
		if err != nil {
			return Instruction{}, err
		}
		name, err := p.parseDeclaredBucketTarget(true)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Kind: InstrBorrowFromContext, Amount: &amount, ResourceAddr: &addr, Name: name, Line: line}, nil

	case "CALL_FUNCTION":
		addr, err := p.parseValue()
		if err != nil {
			return Instruction{}, err
		}
		blueprint, err := p.parseBareString()
		if err != nil {
			return Instruction{}, err
		}
		fn, err := p.parseBareString()
		if err != nil {
			return Instruction{}, err
		}
		args, err := p.parseValueList()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Kind: InstrCallFunction, TargetAddr: &addr, Blueprint: blueprint, Method: fn, Args: args, Line: line}, nil

	case "CALL_METHOD":
		addr, err := p.parseValue()
		if err != nil {
			return Instruction{}, err
		}
		fn, err := p.parseBareString()
		if err != nil {
			return Instruction{}, err
		}
		args, err := p.parseValueList()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Kind: InstrCallMethod, TargetAddr: &addr, Method: fn, Args: args, Line: line}, nil

	case "DROP_ALL_BUCKET_REFS":
		return Instruction{Kind: InstrDropAllBucketRefs, Line: line}, nil

	case "DEPOSIT_ALL_BUCKETS":
		addr, err := p.parseValue()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Kind: InstrDepositAllBuckets, TargetAddr: &addr, Line: line}, nil

	default:
		return Instruction{}, p.errf("unknown instruction %q", kw)
	}
}

// parseValueList reads zero or more values up to the terminating ';',
// used for CALL_FUNCTION/CALL_METHOD's trailing value* argument list.
func (p *Parser) parseValueList() ([]Value, error) {
	var out []Value
	for p.cur().Kind != TokSemicolon && p.cur().Kind != TokEOF {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// parseBareString reads a quoted string literal token used for
// instruction-level names (blueprint/function names, declared bucket
// names) that are not part of the typed value grammar.
func (p *Parser) parseBareString() (string, error) {
	t, err := p.expect(TokString, "string literal")
	if err != nil {
		return "", err
	}
	return t.Text, nil
}

// parseDeclaredBucketTarget reads the `bucket`/`bucket_ref` grammar
// production of TAKE_FROM_CONTEXT/BORROW_FROM_CONTEXT: a `Bucket("name")`
// or `BucketRef("name")` constructor naming a slot previously reserved by
// DECLARE_TEMP_BUCKET[_REF] (spec.md §4.G).
func (p *Parser) parseDeclaredBucketTarget(wantRef bool) (string, error) {
	v, err := p.parseValue()
	if err != nil {
		return "", err
	}
	if wantRef {
		if v.Kind != VBucketRefName {
			return "", p.errf("expected BucketRef(\"name\")")
		}
	} else {
		if v.Kind != VBucketName {
			return "", p.errf("expected Bucket(\"name\")")
		}
	}
	return v.Str, nil
}

// parseValue parses one node of the value grammar (spec.md §4.G).
func (p *Parser) parseValue() (Value, error) {
	t := p.cur()
	switch t.Kind {
	case TokString:
		p.advance()
		return Value{Kind: VString, Str: t.Text}, nil
	case TokNumber:
		p.advance()
		n, err := strconv.ParseUint(t.Text, 10, 32)
		if err != nil {
			return Value{}, p.errf("invalid numeric literal %q", t.Text)
		}
		return Value{Kind: VU32, U32: uint32(n)}, nil
	case TokIdent:
		switch strings.ToLower(t.Text) {
		case "true", "false":
			p.advance()
			return Value{Kind: VBool, Bool: strings.ToLower(t.Text) == "true"}, nil
		}
		return p.parseConstructor()
	default:
		return Value{}, p.errf("expected value, got %q", t.Text)
	}
}

func (p *Parser) parseConstructor() (Value, error) {
	name := p.cur().Text
	p.advance()

	switch name {
	case "Decimal":
		s, err := p.parseParenString()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: VDecimal, Str: s}, nil

	case "Address":
		s, err := p.parseParenString()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: VAddress, Str: s}, nil

	case "Bucket":
		return p.parseIndexedOrNamed(VBucketIndex, VBucketName)

	case "BucketRef":
		return p.parseIndexedOrNamed(VBucketRefIndex, VBucketRefName)

	case "Struct":
		fields, err := p.parseValueList2()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: VStruct, Fields: fields}, nil

	case "Enum":
		if _, err := p.expect(TokLParen, "'('"); err != nil {
			return Value{}, err
		}
		discTok, err := p.expect(TokNumber, "enum discriminant")
		if err != nil {
			return Value{}, err
		}
		disc, err := strconv.ParseUint(discTok.Text, 10, 8)
		if err != nil {
			return Value{}, p.errf("invalid enum discriminant %q", discTok.Text)
		}
		if _, err := p.expect(TokRParen, "')'"); err != nil {
			return Value{}, err
		}
		fields, err := p.parseValueList2()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: VEnum, Disc: uint8(disc), Fields: fields}, nil

	case "Vec":
		if _, err := p.expect(TokIdent, "vec element kind"); err != nil {
			return Value{}, err
		}
		elem := p.toks[p.pos-1].Text
		fields, err := p.parseValueList2()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: VVec, Elem: elem, Fields: fields}, nil

	default:
		return Value{}, p.errf("unknown value constructor %q", name)
	}
}

func (p *Parser) parseParenString() (string, error) {
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return "", err
	}
	s, err := p.parseBareString()
	if err != nil {
		return "", err
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return "", err
	}
	return s, nil
}

// parseIndexedOrNamed parses `( u32 )` or `( string )` for Bucket/BucketRef
// constructors: a numeric literal is taken as a raw bucket (or bucket-ref)
// id; a string literal names one declared via
// DECLARE_TEMP_BUCKET[_REF] (spec.md §4.G, design note 9).
func (p *Parser) parseIndexedOrNamed(indexKind, nameKind ValueKind) (Value, error) {
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return Value{}, err
	}
	var v Value
	switch p.cur().Kind {
	case TokNumber:
		t := p.advance()
		n, err := strconv.ParseUint(t.Text, 10, 32)
		if err != nil {
			return Value{}, p.errf("invalid bucket index %q", t.Text)
		}
		v = Value{Kind: indexKind, U32: uint32(n)}
	case TokString:
		t := p.advance()
		v = Value{Kind: nameKind, Str: t.Text}
	default:
		return Value{}, p.errf("expected bucket index or name, got %q", p.cur().Text)
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return Value{}, err
	}
	return v, nil
}

// parseValueList2 parses the `values` production: '(' [ value { ',' value } ] ')'.
func (p *Parser) parseValueList2() ([]Value, error) {
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	var out []Value
	if p.cur().Kind == TokRParen {
		p.advance()
		return out, nil
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	return out, nil
}
