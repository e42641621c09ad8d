package expr

import (
	"fmt"
	"strconv"
)

type parser struct {
	tokens []token
	pos    int
}

func parse(tokens []token) (node, error) {
	p := &parser{tokens: tokens}
	n, err := p.or()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != kEOF {
		return nil, fmt.Errorf("visibility/expr: unexpected %q at %d", tok.text, tok.pos)
	}
	return n, nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != kEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(k kind) bool {
	if p.peek().kind == k {
		p.next()
		return true
	}
	return false
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.accept(kOr) {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.accept(kAnd) {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.accept(kNot) {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if p.accept(kLParen) {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if tok := p.next(); tok.kind != kRParen {
			return nil, fmt.Errorf("visibility/expr: expected ')' at %d", tok.pos)
		}
		return inner, nil
	}

	left, err := p.operand()
	if err != nil {
		return nil, err
	}
	switch op := p.peek().kind; op {
	case kEq, kNeq, kLt, kLte, kGt, kGte:
		p.next()
		right, err := p.operand()
		if err != nil {
			return nil, err
		}
		return compareNode{op: op, left: left, right: right}, nil
	case kIn:
		p.next()
		list, err := p.list()
		if err != nil {
			return nil, err
		}
		return inNode{needle: left, list: list}, nil
	}
	return truthyNode{left}, nil
}

func (p *parser) list() ([]operand, error) {
	if tok := p.next(); tok.kind != kLBracket {
		return nil, fmt.Errorf("visibility/expr: expected '[' at %d", tok.pos)
	}
	var out []operand
	if p.accept(kRBracket) {
		return out, nil
	}
	for {
		item, err := p.operand()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
		if p.accept(kRBracket) {
			return out, nil
		}
		if tok := p.next(); tok.kind != kComma {
			return nil, fmt.Errorf("visibility/expr: expected ',' or ']' at %d", tok.pos)
		}
	}
}

func (p *parser) operand() (operand, error) {
	tok := p.next()
	switch tok.kind {
	case kIdent:
		return operand{ident: tok.text}, nil
	case kString:
		return operand{value: tok.text, literal: true}, nil
	case kNumber:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return operand{}, fmt.Errorf("visibility/expr: invalid number %q at %d", tok.text, tok.pos)
		}
		return operand{value: f, literal: true}, nil
	case kTrue, kFalse:
		return operand{value: tok.kind == kTrue, literal: true}, nil
	case kNull:
		return operand{literal: true}, nil
	case kEOF:
		return operand{}, fmt.Errorf("visibility/expr: unexpected end of rule")
	default:
		return operand{}, fmt.Errorf("visibility/expr: unexpected %q at %d", tok.text, tok.pos)
	}
}
