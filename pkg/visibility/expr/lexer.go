package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type kind uint8

const (
	kEOF kind = iota
	kIdent
	kString
	kNumber
	kTrue
	kFalse
	kNull
	kIn
	kAnd
	kOr
	kNot
	kEq
	kNeq
	kLt
	kLte
	kGt
	kGte
	kLParen
	kRParen
	kLBracket
	kRBracket
	kComma
)

type token struct {
	kind kind
	text string
	pos  int
}

var symbols = []struct {
	text string
	kind kind
}{
	// two character operators first
	{"&&", kAnd}, {"||", kOr}, {"==", kEq}, {"!=", kNeq}, {"<=", kLte}, {">=", kGte},
	{"!", kNot}, {"<", kLt}, {">", kGt},
	{"(", kLParen}, {")", kRParen}, {"[", kLBracket}, {"]", kRBracket}, {",", kComma},
}

var keywords = map[string]kind{
	"true":  kTrue,
	"false": kFalse,
	"null":  kNull,
	"nil":   kNull,
	"in":    kIn,
}

func lex(input string) ([]token, error) {
	var out []token
	i := 0
scan:
	for i < len(input) {
		ch := rune(input[i])
		if unicode.IsSpace(ch) {
			i++
			continue
		}
		for _, sym := range symbols {
			if strings.HasPrefix(input[i:], sym.text) {
				out = append(out, token{kind: sym.kind, text: sym.text, pos: i})
				i += len(sym.text)
				continue scan
			}
		}

		switch {
		case ch == '"' || ch == '\'':
			end, value, err := readString(input, i)
			if err != nil {
				return nil, err
			}
			out = append(out, token{kind: kString, text: value, pos: i})
			i = end
		case ch == '=' || ch == '&' || ch == '|':
			return nil, fmt.Errorf("visibility/expr: unexpected %q at %d; use %q", ch, i, strings.Repeat(string(ch), 2))
		default:
			start := i
			for i < len(input) && isWordByte(input[i]) {
				i++
			}
			if start == i {
				return nil, fmt.Errorf("visibility/expr: unexpected %q at %d", ch, i)
			}
			word := input[start:i]
			if k, ok := keywords[strings.ToLower(word)]; ok {
				out = append(out, token{kind: k, text: strings.ToLower(word), pos: start})
			} else if isNumber(word) {
				out = append(out, token{kind: kNumber, text: word, pos: start})
			} else {
				out = append(out, token{kind: kIdent, text: word, pos: start})
			}
		}
	}
	return append(out, token{kind: kEOF, pos: len(input)}), nil
}

func readString(input string, start int) (int, string, error) {
	quote := input[start]
	for i := start + 1; i < len(input); i++ {
		switch input[i] {
		case '\\':
			i++
		case quote:
			raw := input[start+1 : i]
			if quote == '\'' {
				raw = strings.ReplaceAll(strings.ReplaceAll(raw, `\'`, `'`), `"`, `\"`)
			}
			value, err := strconv.Unquote(`"` + raw + `"`)
			if err != nil {
				return 0, "", fmt.Errorf("visibility/expr: invalid string literal at %d: %w", start, err)
			}
			return i + 1, value, nil
		}
	}
	return 0, "", fmt.Errorf("visibility/expr: unterminated string literal at %d", start)
}

func isWordByte(b byte) bool {
	return b == '_' || b == '.' || b == '-' || b == '+' ||
		(b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNumber(word string) bool {
	_, err := strconv.ParseFloat(word, 64)
	return err == nil
}
