// Package expr implements the rule language used by screen, section and
// control "visible" settings.
//
// Grammar:
//
//	rule    = or
//	or      = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | primary
//	primary = "(" or ")" | operand [ cmp operand ] | operand "in" list
//	cmp     = "==" | "!=" | "<" | "<=" | ">" | ">="
//	list    = "[" [ operand { "," operand } ] "]"
//
// Identifiers resolve against the context:
//   - can.<capability> asks the principal
//   - values.<path>, or a bare path, reads the submitted or stored values
//   - object.type, object.subtype and object.id read the request scope
//   - extras.<path> reads caller supplied data
package expr

import (
	"strings"
	"sync"

	"github.com/goliatone/go-formfields/pkg/visibility"
)

// Evaluator compiles rules on first use and keeps them for later calls.
type Evaluator struct {
	cache sync.Map // rule -> node
}

var _ visibility.Evaluator = (*Evaluator)(nil)

// New returns an evaluator with an empty rule cache.
func New() *Evaluator { return &Evaluator{} }

// Eval reports whether rule holds for ctx. Blank rules always hold.
func (e *Evaluator) Eval(_ string, rule string, ctx visibility.Context) (bool, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return true, nil
	}
	n, err := e.compile(rule)
	if err != nil {
		return false, err
	}
	return n.eval(ctx)
}

// Compile parses rule without evaluating it, so callers can reject bad rules
// at registration time.
func (e *Evaluator) Compile(rule string) error {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil
	}
	_, err := e.compile(rule)
	return err
}

func (e *Evaluator) compile(rule string) (node, error) {
	if cached, ok := e.cache.Load(rule); ok {
		return cached.(node), nil
	}
	tokens, err := lex(rule)
	if err != nil {
		return nil, err
	}
	n, err := parse(tokens)
	if err != nil {
		return nil, err
	}
	e.cache.Store(rule, n)
	return n, nil
}
