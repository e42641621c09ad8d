package expr

import (
	"testing"

	"github.com/goliatone/go-formfields/pkg/visibility"
)

func TestEvaluatorBooleanComparison(t *testing.T) {
	t.Parallel()

	eval := New()

	ok, err := eval.Eval("threshold", "enabled == true", visibility.Context{
		Values: map[string]any{"enabled": true},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true")
	}

	ok, err = eval.Eval("threshold", "enabled == true", visibility.Context{
		Values: map[string]any{"enabled": "true"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for string true")
	}
}

func TestEvaluatorTruthyAndNot(t *testing.T) {
	t.Parallel()

	eval := New()

	ok, err := eval.Eval("threshold", "enabled", visibility.Context{
		Values: map[string]any{"enabled": true},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true")
	}

	ok, err = eval.Eval("threshold", "!enabled", visibility.Context{
		Values: map[string]any{"enabled": false},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for !false")
	}
}

func TestEvaluatorDotLookup(t *testing.T) {
	t.Parallel()

	eval := New()

	ok, err := eval.Eval("cta.headline", `cta.headline != ""`, visibility.Context{
		Values: map[string]any{"cta.headline": "Hello"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for flattened dotted key")
	}

	ok, err = eval.Eval("cta.headline", `cta.headline == "Hello"`, visibility.Context{
		Values: map[string]any{
			"cta": map[string]any{
				"headline": "Hello",
			},
		},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for nested map lookup")
	}
}

func TestEvaluatorNullLiteral(t *testing.T) {
	t.Parallel()

	eval := New()

	ok, err := eval.Eval("threshold", "missing == null", visibility.Context{
		Values: map[string]any{},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for missing == null")
	}

	ok, err = eval.Eval("threshold", "enabled != null", visibility.Context{
		Values: map[string]any{"enabled": false},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for present != null")
	}
}

func TestEvaluatorBooleanComposition(t *testing.T) {
	t.Parallel()

	eval := New()

	ok, err := eval.Eval("threshold", `enabled == true && role == "admin"`, visibility.Context{
		Values: map[string]any{
			"enabled": true,
			"role":    "admin",
		},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for conjunction")
	}

	ok, err = eval.Eval("threshold", `enabled == true && role == "admin"`, visibility.Context{
		Values: map[string]any{
			"enabled": true,
			"role":    "user",
		},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected false for conjunction mismatch")
	}

	ok, err = eval.Eval("threshold", `enabled == true || role == "admin"`, visibility.Context{
		Values: map[string]any{
			"enabled": false,
			"role":    "admin",
		},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true for disjunction")
	}
}

type caps map[string]bool

func (c caps) Can(capability string) bool { return c[capability] }

func TestEvaluatorCapabilities(t *testing.T) {
	t.Parallel()

	eval := New()
	ctx := visibility.Context{Capabilities: caps{"manage_options": true}}

	ok, err := eval.Eval("sec", "can.manage_options", ctx)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected granted capability to pass")
	}

	ok, err = eval.Eval("sec", "can.edit_users || can.delete_users", ctx)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected missing capabilities to deny")
	}

	ok, err = eval.Eval("sec", "can.manage_options", visibility.Context{})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected context without principal to deny")
	}
}

func TestEvaluatorScopeAndValuesPrefix(t *testing.T) {
	t.Parallel()

	eval := New()
	ctx := visibility.Context{
		ObjectType: "post",
		Subtype:    "page",
		ItemID:     "12",
		Values:     map[string]any{"layout": "wide"},
	}

	ok, err := eval.Eval("sidebar", `object.subtype == "page" && values.layout != "full"`, ctx)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected scope and values lookup to pass")
	}

	ok, err = eval.Eval("sidebar", `object.id == 12`, ctx)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected numeric comparison on item id")
	}
}

func TestEvaluatorCachesParsedRules(t *testing.T) {
	t.Parallel()

	eval := New()
	rule := `enabled == true`
	for i := 0; i < 3; i++ {
		if _, err := eval.Eval("x", rule, visibility.Context{}); err != nil {
			t.Fatalf("Eval returned error: %v", err)
		}
	}
	if _, ok := eval.cache.Load(rule); !ok {
		t.Fatalf("expected rule to be cached")
	}

	if _, err := eval.Eval("x", "a = b", visibility.Context{}); err == nil {
		t.Fatalf("expected tokenizer error")
	}
	if _, ok := eval.cache.Load("a = b"); ok {
		t.Fatalf("invalid rules must not be cached")
	}
}

func TestEvaluatorOrderingListsAndGrouping(t *testing.T) {
	t.Parallel()

	eval := New()
	ctx := visibility.Context{
		Subtype: "page",
		Values:  map[string]any{"posts_per_page": int64(25), "format": "gallery"},
	}

	cases := []struct {
		rule string
		want bool
	}{
		{`posts_per_page > 10`, true},
		{`posts_per_page <= 10`, false},
		{`values.format in ["gallery", "video"]`, true},
		{`object.subtype in ['post']`, false},
		{`!(format == "aside" || posts_per_page < 0)`, true},
		{`missing == true`, false},
		{`missing == false`, true},
		{`missing > 1`, false},
		{`format == null`, false},
	}
	for _, tc := range cases {
		got, err := eval.Eval("x", tc.rule, ctx)
		if err != nil {
			t.Fatalf("%s: %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.rule, tc.want, got)
		}
	}
}

func TestEvaluatorCompileRejectsMalformedRules(t *testing.T) {
	t.Parallel()

	eval := New()
	for _, rule := range []string{
		`a ==`,
		`(a == 1`,
		`a in "x"`,
		`a in [1 2]`,
		`"unterminated`,
		`a & b`,
		`a == 1 b`,
	} {
		if err := eval.Compile(rule); err == nil {
			t.Fatalf("expected %q to fail", rule)
		}
	}
	if err := eval.Compile("  "); err != nil {
		t.Fatalf("blank rule: %v", err)
	}
}
