package fields

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfields/components/choices"
	"github.com/goliatone/go-formfields/pkg/datastore"
	"github.com/goliatone/go-formfields/pkg/datastore/memory"
	"github.com/goliatone/go-formfields/pkg/sanitize"
	"github.com/goliatone/go-formfields/pkg/validation"
)

func TestScope_Matches(t *testing.T) {
	global := NewScope("Post", "")
	cpt := NewScope("post", " CPT ")

	if cpt.Subtype != "cpt" || global.ObjectType != "post" {
		t.Fatalf("scope not normalised: %#v %#v", global, cpt)
	}
	if !global.Matches(cpt) {
		t.Fatalf("global entries must satisfy subtype queries")
	}
	if !cpt.Matches(cpt) {
		t.Fatalf("exact subtype must match")
	}
	if cpt.Matches(NewScope("post", "page")) {
		t.Fatalf("different subtype must not match")
	}
	if global.Matches(NewScope("user", "")) {
		t.Fatalf("different object type must not match")
	}
	if global.String() != "post/*" || cpt.String() != "post/cpt" {
		t.Fatalf("unexpected strings: %s %s", global, cpt)
	}
}

func TestParseKind(t *testing.T) {
	for raw, want := range map[string]Kind{"screens": KindScreen, "Section": KindSection, "field": KindField, "controls": KindControl} {
		got, err := ParseKind(raw)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseKind("widget"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestCapabilities(t *testing.T) {
	caps := NewCapabilities("edit_posts", " ")
	if !caps.Can("edit_posts") || caps.Can("manage_options") {
		t.Fatalf("unexpected capability answers")
	}
	if !caps.Can("") {
		t.Fatalf("empty capability always passes")
	}
	if !Superuser.Can("anything") {
		t.Fatalf("superuser should pass every check")
	}
	if Anonymous.Can("read") {
		t.Fatalf("anonymous holds nothing")
	}
}

func TestDecodeContainer_DefaultsAndMetadata(t *testing.T) {
	cfg, err := DecodeContainer(map[string]any{
		"title":  "General",
		"screen": "settings",
		"icon":   "gear",
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Priority != DefaultPriority {
		t.Fatalf("expected default priority, got %d", cfg.Priority)
	}
	if cfg.Parent != "settings" {
		t.Fatalf("expected screen alias to set parent, got %q", cfg.Parent)
	}
	if diff := cmp.Diff(map[string]any{"icon": "gear"}, cfg.Metadata); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}

	screen := NewContainer(KindScreen, NewScope("settings", ""), "general", cfg)
	if screen.Style() != StyleTable || screen.ParentID() != "" {
		t.Fatalf("screen defaults not applied: %#v", screen.Config())
	}
	if NewContainer(KindField, NewScope("post", ""), "x", cfg) != nil {
		t.Fatalf("non container kinds must not build containers")
	}
}

func TestDecodeField_NestedControlAndRules(t *testing.T) {
	cfg, err := DecodeField(map[string]any{
		"type":      "select",
		"dataType":  "int",
		"priority":  "5",
		"sanitizer": "text",
		"rules":     map[string]any{"required": true, "maxLength": 20},
		"control": map[string]any{
			"label":   "Size",
			"choices": map[string]any{"1": "Small", "2": "Large"},
			"attrs":   map[string]any{"data-size": "x"},
			"rows":    3,
		},
		"show_in_rest": true,
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.DataType != datastore.DataTypeInt || cfg.Priority != 5 {
		t.Fatalf("unexpected scalar decode: %#v", cfg)
	}
	if !cfg.Rules.Required || cfg.Rules.MaxLength != 20 {
		t.Fatalf("rules not decoded: %#v", cfg.Rules)
	}
	if cfg.Control == nil {
		t.Fatalf("expected embedded control")
	}
	want := []choices.Option{{Value: "2", Label: "Large"}, {Value: "1", Label: "Small"}}
	if diff := cmp.Diff(want, cfg.Control.Choices); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}
	if cfg.Control.Attrs["data-size"] != "x" {
		t.Fatalf("attrs keys must be preserved: %#v", cfg.Control.Attrs)
	}
	if cfg.Control.Options["rows"] != 3 {
		t.Fatalf("variant options should land in Options: %#v", cfg.Control.Options)
	}
	if cfg.Control.Priority != 5 {
		t.Fatalf("embedded control should inherit priority, got %d", cfg.Control.Priority)
	}
	if cfg.Metadata["show_in_rest"] != true {
		t.Fatalf("unknown keys should land in Metadata: %#v", cfg.Metadata)
	}
}

func TestDecodeControl_ChoiceListForms(t *testing.T) {
	cfg, err := DecodeControl(map[string]any{
		"choices": []any{"red", map[string]any{"value": "blue", "label": "Blue"}},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []choices.Option{{Value: "red", Label: "red"}, {Value: "blue", Label: "Blue"}}
	if diff := cmp.Diff(want, cfg.Choices); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}
}

func newTestField(t *testing.T, cfg FieldConfig, backend datastore.Backend) *Field {
	t.Helper()
	store, err := datastore.NewMetaStore(datastore.Config{
		ID:         "count",
		ObjectType: "post",
		DataType:   cfg.DataType,
		Default:    cfg.Default,
	}, backend)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	validator, err := validation.Compile("count", store.DataType(), cfg.Rules)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	field, err := NewField(NewScope("post", ""), "count", cfg, FieldDeps{
		Store:     store,
		Validator: validator,
		Sanitize:  sanitize.StringFunc(sanitize.TextField),
	})
	if err != nil {
		t.Fatalf("field: %v", err)
	}
	return field
}

func TestField_SavePipeline(t *testing.T) {
	ctx := context.Background()
	limit := 10.0
	field := newTestField(t, FieldConfig{
		DataType: datastore.DataTypeInt,
		Rules:    validation.Rules{Max: &limit},
	}, memory.New())

	issues, err := field.Save(ctx, "1", " <b>7</b> ")
	if err != nil || len(issues) != 0 {
		t.Fatalf("expected clean save, got issues=%#v err=%v", issues, err)
	}
	got, err := field.Value(ctx, "1")
	if err != nil || got != int64(7) {
		t.Fatalf("expected 7, got %#v (%v)", got, err)
	}

	issues, err = field.Save(ctx, "1", "42")
	if err != nil || len(issues) != 1 {
		t.Fatalf("expected max issue, got issues=%#v err=%v", issues, err)
	}
	issues, err = field.Save(ctx, "1", "many")
	if err != nil || len(issues) != 1 || issues[0].Field != "count" {
		t.Fatalf("expected coercion issue, got issues=%#v err=%v", issues, err)
	}

	got, _ = field.Value(ctx, "1")
	if got != int64(7) {
		t.Fatalf("rejected values must not be stored, got %#v", got)
	}
}

type brokenBackend struct{ err error }

func (b brokenBackend) Get(context.Context, datastore.Key) (any, bool, error) { return nil, false, nil }
func (b brokenBackend) Set(context.Context, datastore.Key, any) error         { return b.err }
func (b brokenBackend) Delete(context.Context, datastore.Key) error           { return b.err }

func TestField_SavePropagatesPersistenceErrors(t *testing.T) {
	boom := errors.New("write failed")
	field := newTestField(t, FieldConfig{}, brokenBackend{err: boom})

	_, err := field.Save(context.Background(), "1", "x")
	if !errors.Is(err, boom) {
		t.Fatalf("expected persistence error to propagate, got %v", err)
	}
}

func TestControl_DefaultsAndUnbound(t *testing.T) {
	control := NewControl(NewScope("post", "cpt"), "subtitle_control", ControlConfig{Section: " main "}, nil)
	if control.FieldID() != "subtitle_control" {
		t.Fatalf("field id should default to control id, got %q", control.FieldID())
	}
	if control.Section() != "main" {
		t.Fatalf("unexpected section %q", control.Section())
	}
	if _, err := control.Content(context.Background(), "1"); !errors.Is(err, ErrUnbound) {
		t.Fatalf("expected ErrUnbound, got %v", err)
	}
	if _, ok := control.Field(); ok {
		t.Fatalf("unbound control cannot resolve a field")
	}
}
