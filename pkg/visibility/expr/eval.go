package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formfields/pkg/visibility"
)

type node interface {
	eval(ctx visibility.Context) (bool, error)
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(ctx)
}

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(ctx)
}

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	return !ok, err
}

// operand is either a literal (nil value means null) or an identifier.
type operand struct {
	ident   string
	value   any
	literal bool
}

func (o operand) null() bool { return o.literal && o.value == nil }

// same compares two operands. The null literal only equals a missing value.
func same(ctx visibility.Context, x, y operand) bool {
	a, b := x.resolve(ctx), y.resolve(ctx)
	if x.null() || y.null() {
		return a == nil && b == nil
	}
	return equal(a, b)
}

func (o operand) resolve(ctx visibility.Context) any {
	if o.literal {
		return o.value
	}
	value, _ := lookup(ctx, o.ident)
	return value
}

type truthyNode struct{ operand operand }

func (n truthyNode) eval(ctx visibility.Context) (bool, error) {
	return truthy(n.operand.resolve(ctx)), nil
}

type compareNode struct {
	op          kind
	left, right operand
}

func (n compareNode) eval(ctx visibility.Context) (bool, error) {
	switch n.op {
	case kEq:
		return same(ctx, n.left, n.right), nil
	case kNeq:
		return !same(ctx, n.left, n.right), nil
	}

	a, aok := toNumber(n.left.resolve(ctx))
	b, bok := toNumber(n.right.resolve(ctx))
	if !aok || !bok {
		// ordering needs two numbers; anything else fails the rule
		return false, nil
	}
	switch n.op {
	case kLt:
		return a < b, nil
	case kLte:
		return a <= b, nil
	case kGt:
		return a > b, nil
	case kGte:
		return a >= b, nil
	}
	return false, fmt.Errorf("visibility/expr: unsupported operator")
}

type inNode struct {
	needle operand
	list   []operand
}

func (n inNode) eval(ctx visibility.Context) (bool, error) {
	for _, item := range n.list {
		if same(ctx, n.needle, item) {
			return true, nil
		}
	}
	return false, nil
}

// equal compares two resolved values using the type of whichever side is a
// bool or number. A missing value reads as false, zero or "".
func equal(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	for _, pair := range [2][2]any{{a, b}, {b, a}} {
		switch want := pair[1].(type) {
		case bool:
			return toBool(pair[0]) == want
		case float64:
			got, ok := toNumber(pair[0])
			if !ok && pair[0] != nil {
				return false
			}
			return got == want
		}
	}
	return toString(a) == toString(b)
}

func lookup(ctx visibility.Context, key string) (any, bool) {
	prefix, rest, _ := strings.Cut(key, ".")
	switch strings.ToLower(prefix) {
	case "can":
		if rest == "" {
			return nil, false
		}
		return ctx.Can(rest), true
	case "extras":
		return lookupPath(ctx.Extras, rest)
	case "values":
		return lookupPath(ctx.Values, rest)
	case "object":
		switch strings.ToLower(rest) {
		case "type":
			return ctx.ObjectType, true
		case "subtype":
			return ctx.Subtype, true
		case "id":
			return ctx.ItemID, true
		}
	}
	return lookupPath(ctx.Values, key)
}

// lookupPath prefers a flat dotted key, then walks nested maps.
func lookupPath(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}
	var current any = values
	for _, part := range strings.Split(path, ".") {
		switch m := current.(type) {
		case map[string]any:
			next, ok := m[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := m[part]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	if f, ok := toNumber(value); ok {
		return f != 0
	}
	return true
}

func toBool(value any) bool {
	if s, ok := value.(string); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return parsed
		}
	}
	return truthy(value)
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	}
	return fmt.Sprint(value)
}
