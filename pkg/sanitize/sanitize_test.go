package sanitize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultRegistry_Sanitizers(t *testing.T) {
	reg := NewDefaultRegistry()
	cases := []struct {
		name  string
		input any
		want  any
	}{
		{name: Text, input: "  <b>Hello</b> world ", want: "Hello world"},
		{name: Text, input: []string{"<i>a</i>", " b "}, want: []string{"a", "b"}},
		{name: HTML, input: `<p onclick="x()">Hi <script>alert(1)</script><strong>there</strong></p>`, want: `<p>Hi <strong>there</strong></p>`},
		{name: Key, input: "My Key-01!", want: "mykey-01"},
		{name: Email, input: " Jane@Example.COM ", want: "jane@example.com"},
		{name: Email, input: "not-an-email", want: ""},
		{name: URL, input: "javascript:alert(1)", want: ""},
		{name: URL, input: " https://example.com/a?b=1 ", want: "https://example.com/a?b=1"},
		{name: URL, input: "/relative/path", want: "/relative/path"},
		{name: None, input: "<b>raw</b>", want: "<b>raw</b>"},
		{name: Text, input: 42, want: 42},
	}

	for _, tc := range cases {
		got, err := reg.Apply(tc.name, "", tc.input)
		if err != nil {
			t.Fatalf("%s: apply: %v", tc.name, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s(%v) mismatch (-want +got):\n%s", tc.name, tc.input, diff)
		}
	}
}

func TestApply_FallbackAndUnknown(t *testing.T) {
	reg := NewDefaultRegistry()

	got, err := reg.Apply("", Text, "<em>x</em>")
	if err != nil {
		t.Fatalf("apply fallback: %v", err)
	}
	if got != "x" {
		t.Fatalf("expected fallback text sanitizer, got %#v", got)
	}

	got, err = reg.Apply("", "", "<em>x</em>")
	if err != nil || got != "<em>x</em>" {
		t.Fatalf("expected passthrough without any sanitizer, got %#v (%v)", got, err)
	}

	if _, err := reg.Apply("shout", "", "x"); err == nil {
		t.Fatalf("expected unknown sanitizer error")
	}
}

func TestStringFunc_WalksAnySlices(t *testing.T) {
	fn := StringFunc(KeyName)
	got := fn([]any{"A B", 3})
	if diff := cmp.Diff([]any{"ab", 3}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
