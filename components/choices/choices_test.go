package choices

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromMap_SortsByLabel(t *testing.T) {
	got := FromMap(map[string]string{"b": "Beta", "a": "Alpha", "z": ""})
	want := Static{{Value: "a", Label: "Alpha"}, {Value: "b", Label: "Beta"}, {Value: "z", Label: "z"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_ResolveNormalizesNames(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(" Colors ", Static{{Value: "red", Label: "Red"}})

	got, err := reg.Resolve(context.Background(), "colors")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 1 || got[0].Value != "red" {
		t.Fatalf("unexpected options: %#v", got)
	}
	if diff := cmp.Diff([]string{"colors"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_ResolveUnknownAndFailingSources(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Resolve(context.Background(), "missing"); !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}

	boom := errors.New("db down")
	reg.MustRegister("users", Func(func(context.Context) ([]Option, error) { return nil, boom }))
	if _, err := reg.Resolve(context.Background(), "users"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestSearch_CaseInsensitiveContains(t *testing.T) {
	options := []Option{{Value: "paris", Label: "Europe/Paris"}, {Value: "ny", Label: "America/New_York"}}
	opts := NewConfig(WithEmptyQueryTop(false))

	results := Search(options, "eUrOpE/p", 10, opts)
	if len(results) != 1 || results[0].Value != "paris" {
		t.Fatalf("unexpected results: %#v", results)
	}
}

func TestSearch_PrefixBeforeContains(t *testing.T) {
	options := []Option{
		{Value: "1", Label: "x/a/b"},
		{Value: "2", Label: "a/b"},
		{Value: "3", Label: "a/b/c"},
		{Value: "4", Label: "c/d"},
	}
	opts := NewConfig(WithEmptyQueryTop(false))

	results := Search(options, "a/b", 10, opts)
	var labels []string
	for _, option := range results {
		labels = append(labels, option.Label)
	}
	if diff := cmp.Diff([]string{"a/b", "a/b/c", "x/a/b"}, labels); diff != "" {
		t.Fatalf("ordering mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch_MatchesValues(t *testing.T) {
	options := []Option{{Value: "42", Label: "Hello world"}}
	results := Search(options, "42", 10, NewConfig())
	if len(results) != 1 {
		t.Fatalf("expected value match, got %#v", results)
	}
}

func TestSearch_LimitApplied(t *testing.T) {
	options := []Option{{Value: "a"}, {Value: "b"}, {Value: "c"}, {Value: "d"}}
	opts := NewConfig(WithDefaultLimit(2), WithMaxLimit(3))

	if results := Search(options, "", 0, opts); len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %#v", len(results), results)
	}
	if results := Search(options, "", 10, opts); len(results) != 3 {
		t.Fatalf("expected max limit clamp to 3, got %d", len(results))
	}
}

func TestNewEndpoint_DescribesSource(t *testing.T) {
	endpoint := NewEndpoint("/admin/choices/", "Pages", WithDefaultLimit(20))
	if endpoint.URL != "/admin/choices/pages" {
		t.Fatalf("unexpected url: %q", endpoint.URL)
	}
	attrs := endpoint.Attrs()
	if attrs["data-endpoint-param-limit"] != "20" {
		t.Fatalf("expected limit param attr, got %#v", attrs)
	}
	if attrs["data-endpoint-search-param"] != "q" {
		t.Fatalf("expected search param attr, got %#v", attrs)
	}
}

func TestSourceURL_Normalizes(t *testing.T) {
	cases := map[[2]string]string{
		{"", "Colors"}:           "/colors",
		{"/", "colors"}:          "/colors",
		{"choices", " colors "}:  "/choices/colors",
		{"/a/choices/", "users"}: "/a/choices/users",
	}
	for in, want := range cases {
		if got := SourceURL(in[0], in[1]); got != want {
			t.Fatalf("SourceURL(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}
