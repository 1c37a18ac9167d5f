package condition

import (
	"fmt"
	"strconv"
)

type parser struct {
	tokens []token
	pos    int
}

func parse(src string) (node, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %s", tok.describe())
	}
	return root, nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) acceptOp(ops ...string) (string, bool) {
	tok := p.peek()
	if tok.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if tok.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("||"); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = logicalNode{and: false, l: left, r: right}
	}
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("&&"); !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = logicalNode{and: true, l: left, r: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if _, ok := p.acceptOp("!"); ok {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{x: x}, nil
	}
	return p.parseCompare()
}

func (p *parser) parseCompare() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	op, ok := p.acceptOp("==", "!=", ">=", "<=", ">", "<")
	if !ok {
		return left, nil
	}
	right, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return compareNode{op: op, l: left, r: right}, nil
}

func (p *parser) parseTerm() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokString:
		return literalNode{v: stringValue(tok.text)}, nil
	case tokNumber:
		n, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %s", tok.describe())
		}
		return literalNode{v: numberValue(n)}, nil
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("expected ) but found %s", closing.describe())
		}
		return inner, nil
	case tokIdent:
		switch tok.text {
		case "true":
			return literalNode{v: boolValue(true)}, nil
		case "false":
			return literalNode{v: boolValue(false)}, nil
		}
		if p.peek().kind == tokLParen {
			return p.parseCall(tok)
		}
		get, ok := identifiers[tok.text]
		if !ok {
			return nil, fmt.Errorf("unknown identifier %s", tok.describe())
		}
		return identNode{name: tok.text, get: get}, nil
	}
	return nil, fmt.Errorf("unexpected %s", tok.describe())
}

func (p *parser) parseCall(name token) (node, error) {
	pred, ok := predicates[name.text]
	if !ok {
		return nil, fmt.Errorf("unknown function %s", name.describe())
	}
	p.next() // (
	var args []node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if closing := p.next(); closing.kind != tokRParen {
		return nil, fmt.Errorf("expected ) but found %s", closing.describe())
	}
	if len(args) != pred.arity {
		return nil, fmt.Errorf("%s expects %d argument(s), got %d", name.text, pred.arity, len(args))
	}
	return callNode{name: name.text, pred: pred, args: args}, nil
}
