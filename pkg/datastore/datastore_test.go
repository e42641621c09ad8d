package datastore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfields/pkg/datastore"
	"github.com/goliatone/go-formfields/pkg/datastore/memory"
)

type failingBackend struct {
	err error
}

func (f failingBackend) Get(context.Context, datastore.Key) (any, bool, error) {
	return nil, false, f.err
}

func (f failingBackend) Set(context.Context, datastore.Key, any) error { return f.err }

func (f failingBackend) Delete(context.Context, datastore.Key) error { return f.err }

func TestOptionStore_ValueFallsBackToDefault(t *testing.T) {
	backend := memory.New()
	store, err := datastore.NewOptionStore(datastore.Config{
		ID:       "posts_per_page",
		DataType: datastore.DataTypeInt,
		Default:  "10",
	}, backend)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	got, err := store.Value(context.Background(), "")
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if got != int64(10) {
		t.Fatalf("expected coerced default 10, got %#v", got)
	}

	if err := store.Save(context.Background(), "ignored", "25"); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = store.Value(context.Background(), "other")
	if err != nil {
		t.Fatalf("value after save: %v", err)
	}
	if got != int64(25) {
		t.Fatalf("expected 25, got %#v", got)
	}

	keys := backend.Keys()
	want := []datastore.Key{{ObjectType: datastore.OptionNamespace, Name: "posts_per_page"}}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("option key mismatch (-want +got):\n%s", diff)
	}
}

func TestMetaStore_RequiresItemID(t *testing.T) {
	store, err := datastore.NewMetaStore(datastore.Config{
		ID:         "subtitle",
		ObjectType: "post",
	}, memory.New())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Value(context.Background(), ""); !errors.Is(err, datastore.ErrItemRequired) {
		t.Fatalf("expected ErrItemRequired, got %v", err)
	}
	if err := store.Save(context.Background(), " ", "x"); !errors.Is(err, datastore.ErrItemRequired) {
		t.Fatalf("expected ErrItemRequired on save, got %v", err)
	}
}

func TestMetaStore_ScopesValuesPerItem(t *testing.T) {
	ctx := context.Background()
	store, err := datastore.NewMetaStore(datastore.Config{
		ID:         "subtitle",
		Name:       "_subtitle",
		ObjectType: "post",
	}, memory.New())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Save(ctx, "1", "first"); err != nil {
		t.Fatalf("save 1: %v", err)
	}
	if err := store.Save(ctx, "2", "second"); err != nil {
		t.Fatalf("save 2: %v", err)
	}

	for item, want := range map[string]string{"1": "first", "2": "second"} {
		got, err := store.Value(ctx, item)
		if err != nil {
			t.Fatalf("value %s: %v", item, err)
		}
		if got != want {
			t.Fatalf("item %s: want %q, got %#v", item, want, got)
		}
	}

	if err := store.Delete(ctx, "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := store.Value(ctx, "1")
	if err != nil {
		t.Fatalf("value after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after delete, got %#v", got)
	}
}

func TestStore_SavePropagatesBackendErrors(t *testing.T) {
	boom := errors.New("disk full")
	store, err := datastore.NewOptionStore(datastore.Config{ID: "blogname"}, failingBackend{err: boom})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Save(context.Background(), "", "x"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
	if _, err := store.Value(context.Background(), ""); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped backend error on read, got %v", err)
	}
}

func TestRegistry_BuildDispatchesOnType(t *testing.T) {
	reg := datastore.NewDefaultRegistry()

	if diff := cmp.Diff([]string{"meta", "option"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	settings, err := reg.Build(datastore.Config{ID: "blogname", ObjectType: "settings"}, memory.New())
	if err != nil {
		t.Fatalf("build settings: %v", err)
	}
	if settings.Type() != datastore.TypeOption {
		t.Fatalf("settings should default to option store, got %q", settings.Type())
	}

	meta, err := reg.Build(datastore.Config{ID: "subtitle", ObjectType: "post"}, memory.New())
	if err != nil {
		t.Fatalf("build meta: %v", err)
	}
	if meta.Type() != datastore.TypeMeta {
		t.Fatalf("post should default to meta store, got %q", meta.Type())
	}

	if _, err := reg.Build(datastore.Config{ID: "x", Type: "transient"}, memory.New()); !errors.Is(err, datastore.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestCoerce(t *testing.T) {
	cases := []struct {
		name  string
		dt    datastore.DataType
		input any
		want  any
	}{
		{name: "string from int", dt: datastore.DataTypeString, input: 42, want: "42"},
		{name: "int from padded string", dt: datastore.DataTypeInt, input: " 12 ", want: int64(12)},
		{name: "int from json float", dt: datastore.DataTypeInt, input: float64(7), want: int64(7)},
		{name: "int from empty string", dt: datastore.DataTypeInt, input: "", want: int64(0)},
		{name: "float from string", dt: datastore.DataTypeFloat, input: "1.5", want: 1.5},
		{name: "bool from string", dt: datastore.DataTypeBool, input: "true", want: true},
		{name: "bool from one", dt: datastore.DataTypeBool, input: 1, want: true},
		{name: "bool from empty", dt: datastore.DataTypeBool, input: "", want: false},
		{name: "array from strings", dt: datastore.DataTypeArray, input: []string{"a", "b"}, want: []any{"a", "b"}},
		{name: "array from scalar", dt: datastore.DataTypeArray, input: "a", want: []any{"a"}},
		{name: "array from empty", dt: datastore.DataTypeArray, input: "", want: []any{}},
		{name: "nil stays nil", dt: datastore.DataTypeInt, input: nil, want: nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := datastore.Coerce(tc.dt, tc.input)
			if err != nil {
				t.Fatalf("coerce: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("coerce mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := datastore.Coerce(datastore.DataTypeInt, "abc"); err == nil {
		t.Fatalf("expected error for non-numeric int input")
	}
}
