package forms_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfields/components/choices"
	"github.com/goliatone/go-formfields/pkg/datastore"
	"github.com/goliatone/go-formfields/pkg/datastore/memory"
	"github.com/goliatone/go-formfields/pkg/fields"
	"github.com/goliatone/go-formfields/pkg/forms"
	"github.com/goliatone/go-formfields/pkg/registry"
	"github.com/goliatone/go-formfields/pkg/render"
)

var settings = fields.NewScope("settings", "")

type fixture struct {
	reg     *registry.Registry
	backend *memory.Backend
}

// must accepts the (entity, error) pair of a registry Add call.
func must(t *testing.T) func(any, error) {
	return func(_ any, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
}

func newSettingsFixture(t *testing.T) fixture {
	t.Helper()
	backend := memory.New()
	reg := registry.New(registry.WithBackend(backend))

	must(t)(reg.AddScreen(settings, "general", map[string]any{"title": "General Settings"}))
	must(t)(reg.AddSection(settings, "site", map[string]any{"parent": "general", "title": "Site"}))
	must(t)(reg.AddSection(settings, "advanced", map[string]any{
		"parent":     "general",
		"title":      "Advanced",
		"capability": "manage_options",
		"priority":   20,
	}))

	must(t)(reg.AddField(settings, "blogname", map[string]any{
		"label":   "Site Title",
		"section": "site",
		"rules":   map[string]any{"required": true},
		"control": map[string]any{"type": "text"},
	}))
	must(t)(reg.AddField(settings, "posts_per_page", map[string]any{
		"data_type": "int",
		"default":   10,
		"section":   "site",
		"rules":     map[string]any{"min": 1},
		"control":   map[string]any{"label": "Posts per page"},
	}))
	must(t)(reg.AddField(settings, "comments_open", map[string]any{
		"section": "site",
		"control": map[string]any{"type": "checkbox", "label": "Allow comments"},
	}))
	must(t)(reg.AddField(settings, "moderation", map[string]any{
		"section": "site",
		"control": map[string]any{
			"type":    "checkbox",
			"visible": "values.comments_open == true",
		},
	}))
	must(t)(reg.AddField(settings, "admin_email", map[string]any{
		"section": "advanced",
		"control": map[string]any{"type": "email"},
	}))
	return fixture{reg: reg, backend: backend}
}

func controlIDs(view render.FormView) map[string][]string {
	out := make(map[string][]string)
	for _, section := range view.Sections {
		ids := []string{}
		for _, control := range section.Controls {
			ids = append(ids, control.ID)
		}
		out[section.ID] = ids
	}
	return out
}

func TestView_GatesByCapabilityAndVisibility(t *testing.T) {
	fx := newSettingsFixture(t)
	form := forms.New(fx.reg, "settings", "general")
	ctx := context.Background()

	view, err := form.View(ctx, forms.Request{})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	want := map[string][]string{"site": {"blogname", "posts_per_page", "comments_open"}}
	if diff := cmp.Diff(want, controlIDs(view)); diff != "" {
		t.Fatalf("anonymous view mismatch (-want +got):\n%s", diff)
	}
	if view.Title != "General Settings" || view.Style != fields.StyleTable {
		t.Fatalf("unexpected screen data %q %q", view.Title, view.Style)
	}
	if diff := cmp.Diff([]string{"text", "number", "checkbox"}, view.Types); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}

	comments, _ := fx.reg.Field(settings, "comments_open")
	if _, err := comments.Save(ctx, "", true); err != nil {
		t.Fatalf("save: %v", err)
	}

	view, err = form.View(ctx, forms.Request{Principal: fields.NewCapabilities("manage_options")})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	want = map[string][]string{
		"site":     {"blogname", "posts_per_page", "comments_open", "moderation"},
		"advanced": {"admin_email"},
	}
	if diff := cmp.Diff(want, controlIDs(view)); diff != "" {
		t.Fatalf("admin view mismatch (-want +got):\n%s", diff)
	}
	if view.Sections[0].ID != "site" || view.Sections[1].ID != "advanced" {
		t.Fatalf("sections must follow priority order")
	}
}

func TestView_ControlMarkupUsesStoredValues(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := context.Background()
	blogname, _ := fx.reg.Field(settings, "blogname")
	if _, err := blogname.Save(ctx, "", "My Blog"); err != nil {
		t.Fatalf("save: %v", err)
	}

	view, err := forms.New(fx.reg, "settings", "general").View(ctx, forms.Request{
		Errors: map[string][]string{
			"/values/posts_per_page": {"too small"},
			"_form":                  {"Settings are locked"},
		},
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	site := view.Sections[0]
	if !strings.Contains(site.Controls[0].HTML, `value="My Blog"`) {
		t.Fatalf("expected stored value in %s", site.Controls[0].HTML)
	}
	ppp := site.Controls[1]
	if ppp.Value != "10" || !strings.Contains(ppp.HTML, `type="number"`) {
		t.Fatalf("expected default value in a number input, got %q %s", ppp.Value, ppp.HTML)
	}
	if diff := cmp.Diff([]string{"too small"}, ppp.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Settings are locked"}, view.Errors); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if !site.Controls[0].Required {
		t.Fatalf("required rule should mark the control required")
	}
}

func TestView_SubmittedValuesOverrideStored(t *testing.T) {
	fx := newSettingsFixture(t)
	view, err := forms.New(fx.reg, "settings", "general").View(context.Background(), forms.Request{
		Submitted: url.Values{"blogname": {"Draft title"}},
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if got := view.Sections[0].Controls[0].Value; got != "Draft title" {
		t.Fatalf("expected submitted value, got %q", got)
	}
}

func TestView_ScreenNotFound(t *testing.T) {
	fx := newSettingsFixture(t)
	_, err := forms.New(fx.reg, "settings", "missing").View(context.Background(), forms.Request{})
	if !errors.Is(err, forms.ErrScreenNotFound) {
		t.Fatalf("expected ErrScreenNotFound, got %v", err)
	}
}

func TestRender_DefaultAndNamedRenderers(t *testing.T) {
	fx := newSettingsFixture(t)
	form := forms.New(fx.reg, "settings", "general")
	ctx := context.Background()

	html, err := form.Render(ctx, forms.Request{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, fragment := range []string{`<table class="form-table"`, `name="posts_per_page"`, `Save Changes`} {
		if !strings.Contains(string(html), fragment) {
			t.Fatalf("expected %q in\n%s", fragment, html)
		}
	}

	payload, err := form.Render(ctx, forms.Request{Renderer: "json"})
	if err != nil {
		t.Fatalf("render json: %v", err)
	}
	if !strings.HasPrefix(string(payload), `{"form":`) {
		t.Fatalf("expected json document, got %s", payload)
	}

	if _, err := form.Render(ctx, forms.Request{Renderer: "pdf"}); !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
}

func TestSave_StoresEachFieldOnce(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := context.Background()
	must(t)(fx.reg.AddControl(settings, "blogname_alt", map[string]any{
		"field":   "blogname",
		"section": "site",
		"type":    "text",
	}))

	form := forms.New(fx.reg, "settings", "general")
	result, err := form.Save(ctx, forms.SaveRequest{
		Values: url.Values{
			"blogname":       {"New name"},
			"posts_per_page": {"25"},
			"comments_open":  {"1"},
		},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	if diff := cmp.Diff([]string{"blogname", "posts_per_page", "comments_open"}, result.Saved); diff != "" {
		t.Fatalf("saved mismatch (-want +got):\n%s", diff)
	}

	got, _, err := fx.backend.Get(ctx, datastore.Key{ObjectType: datastore.OptionNamespace, Name: "posts_per_page"})
	if err != nil {
		t.Fatalf("backend get: %v", err)
	}
	if got != int64(25) {
		t.Fatalf("expected coerced int, got %#v", got)
	}
}

func TestSave_CollectsValidationErrors(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := context.Background()
	comments, _ := fx.reg.Field(settings, "comments_open")
	if _, err := comments.Save(ctx, "", true); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := forms.New(fx.reg, "settings", "general").Save(ctx, forms.SaveRequest{
		Values: url.Values{
			"blogname":       {""},
			"posts_per_page": {"0"},
		},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := result.Errors["blogname"]; !ok {
		t.Fatalf("expected blogname error, got %v", result.Errors)
	}
	if _, ok := result.Errors["posts_per_page"]; !ok {
		t.Fatalf("expected posts_per_page error, got %v", result.Errors)
	}
	// absent checkboxes save false
	if diff := cmp.Diff([]string{"comments_open", "moderation"}, result.Saved); diff != "" {
		t.Fatalf("saved mismatch (-want +got):\n%s", diff)
	}
	value, err := comments.Value(ctx, "")
	if err != nil || value != false {
		t.Fatalf("expected comments_open false, got %#v %v", value, err)
	}
	ppp, _ := fx.reg.Field(settings, "posts_per_page")
	if value, _ := ppp.Value(ctx, ""); fmt.Sprint(value) != "10" {
		t.Fatalf("rejected value must not be stored, got %#v", value)
	}
}

type failingBackend struct{ *memory.Backend }

func (failingBackend) Set(context.Context, datastore.Key, any) error {
	return errors.New("disk full")
}

func TestSave_PropagatesPersistenceErrors(t *testing.T) {
	reg := registry.New(registry.WithBackend(failingBackend{memory.New()}))
	must(t)(reg.AddScreen(settings, "general", nil))
	must(t)(reg.AddSection(settings, "site", map[string]any{"parent": "general"}))
	must(t)(reg.AddField(settings, "blogname", map[string]any{
		"section": "site",
		"control": map[string]any{"type": "text"},
	}))

	_, err := forms.New(reg, "settings", "general").Save(context.Background(), forms.SaveRequest{
		Values: url.Values{"blogname": {"x"}},
	})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestSave_MetaFieldsUseSubtypeAndItem(t *testing.T) {
	backend := memory.New()
	reg := registry.New(registry.WithBackend(backend))
	page := fields.NewScope("post", "page")
	global := fields.NewScope("post", "")

	must(t)(reg.AddScreen(global, "details", map[string]any{"style": "stacked"}))
	must(t)(reg.AddSection(global, "main", map[string]any{"parent": "details"}))
	must(t)(reg.AddField(global, "subtitle", map[string]any{
		"section": "main",
		"control": map[string]any{"type": "text"},
	}))
	must(t)(reg.AddField(page, "features", map[string]any{
		"section": "main",
		"control": map[string]any{
			"type":    "checkbox-group",
			"choices": []any{map[string]any{"value": "toc", "label": "Table of contents"}, "sidebar"},
		},
	}))

	form := forms.New(reg, "post", "details")
	ctx := context.Background()
	result, err := form.Save(ctx, forms.SaveRequest{
		ItemID:  "42",
		Subtype: "page",
		Values:  url.Values{"subtitle": {"Hello"}, "features[]": {"toc", "sidebar"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if diff := cmp.Diff([]string{"subtitle", "features"}, result.Saved); diff != "" {
		t.Fatalf("saved mismatch (-want +got):\n%s", diff)
	}

	view, err := form.View(ctx, forms.Request{ItemID: "42", Subtype: "page"})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Style != fields.StyleStacked {
		t.Fatalf("expected stacked style, got %q", view.Style)
	}
	group := view.Sections[0].Controls[1]
	if !strings.Contains(group.HTML, `name="features[]" value="toc" checked`) {
		t.Fatalf("expected saved choice checked:\n%s", group.HTML)
	}

	other, err := form.View(ctx, forms.Request{ItemID: "42", Subtype: "cpt"})
	if err != nil {
		t.Fatalf("view cpt: %v", err)
	}
	if diff := cmp.Diff(map[string][]string{"main": {"subtitle"}}, controlIDs(other)); diff != "" {
		t.Fatalf("page-only field leaked into cpt (-want +got):\n%s", diff)
	}

	if _, err := form.Save(ctx, forms.SaveRequest{Values: url.Values{"subtitle": {"x"}}}); !errors.Is(err, datastore.ErrItemRequired) {
		t.Fatalf("expected ErrItemRequired, got %v", err)
	}
}

func TestWithChoicesResolvesDatasources(t *testing.T) {
	fx := newSettingsFixture(t)
	must(t)(fx.reg.AddField(settings, "front_page", map[string]any{
		"section": "site",
		"control": map[string]any{"type": "select", "datasource": "pages"},
	}))
	sources := choices.NewRegistry()
	if err := sources.Register("pages", choices.Static{
		{Value: "2", Label: "About"},
		{Value: "3", Label: "Contact"},
	}); err != nil {
		t.Fatalf("register source: %v", err)
	}

	view, err := forms.New(fx.reg, "settings", "general", forms.WithChoices(sources)).View(context.Background(), forms.Request{})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	var found bool
	for _, control := range view.Sections[0].Controls {
		if control.ID == "front_page" {
			found = true
			if len(control.Choices) != 2 || control.Choices[1].Label != "Contact" {
				t.Fatalf("unexpected choices %+v", control.Choices)
			}
		}
	}
	if !found {
		t.Fatalf("front_page control missing")
	}
}

type stubSelector struct {
	selection *theme.Selection
	calls     [][2]string
}

func (s *stubSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, [2]string{name, variant})
	return s.selection, nil
}

func TestRender_ResolvesThemeSelection(t *testing.T) {
	fx := newSettingsFixture(t)
	selector := &stubSelector{selection: &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:   "acme",
			Tokens: map[string]string{"brand": "#123456"},
			Variants: map[string]theme.Variant{
				"dark": {Tokens: map[string]string{"brand": "#654321"}},
			},
		},
	}}

	form := forms.New(fx.reg, "settings", "general", forms.WithThemeSelector(selector, "acme", "light"))
	html, err := form.Render(context.Background(), forms.Request{ThemeVariant: "dark"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([][2]string{{"acme", "dark"}}, selector.calls); diff != "" {
		t.Fatalf("selector calls mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(html), "--brand: #654321;") {
		t.Fatalf("expected variant token as css var in\n%s", html)
	}
}

func TestView_GlobalControlBindsSubtypeField(t *testing.T) {
	reg := registry.New(registry.WithBackend(memory.New()))
	page := fields.NewScope("post", "page")
	global := fields.NewScope("post", "")

	must(t)(reg.AddScreen(global, "details", nil))
	must(t)(reg.AddSection(global, "main", map[string]any{"parent": "details"}))
	must(t)(reg.AddField(global, "summary", map[string]any{
		"default": "global",
		"section": "main",
		"control": map[string]any{"type": "text"},
	}))
	must(t)(reg.AddField(page, "summary", map[string]any{"default": "page"}))
	must(t)(reg.AddControl(global, "tagline", map[string]any{"section": "main", "type": "text"}))
	must(t)(reg.AddField(page, "tagline", map[string]any{"default": "page tagline"}))

	form := forms.New(reg, "post", "details")
	ctx := context.Background()

	view, err := form.View(ctx, forms.Request{ItemID: "1", Subtype: "page"})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if diff := cmp.Diff(map[string][]string{"main": {"summary", "tagline"}}, controlIDs(view)); diff != "" {
		t.Fatalf("controls mismatch (-want +got):\n%s", diff)
	}
	got := map[string]string{}
	for _, control := range view.Sections[0].Controls {
		got[control.ID] = control.Value
	}
	if diff := cmp.Diff(map[string]string{"summary": "page", "tagline": "page tagline"}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	other, err := form.View(ctx, forms.Request{ItemID: "1", Subtype: "cpt"})
	if err != nil {
		t.Fatalf("view cpt: %v", err)
	}
	if diff := cmp.Diff(map[string][]string{"main": {"summary"}}, controlIDs(other)); diff != "" {
		t.Fatalf("cpt controls mismatch (-want +got):\n%s", diff)
	}
	if value := other.Sections[0].Controls[0].Value; value != "global" {
		t.Fatalf("expected global field for cpt, got %q", value)
	}
}

func TestSave_BlankPasswordKeepsSecret(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := context.Background()
	must(t)(fx.reg.AddField(settings, "api_key", map[string]any{
		"section": "site",
		"control": map[string]any{"type": "password"},
	}))
	key, _ := fx.reg.Field(settings, "api_key")
	if _, err := key.Save(ctx, "", "s3cret"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := forms.New(fx.reg, "settings", "general").Save(ctx, forms.SaveRequest{
		Values: url.Values{"blogname": {"Name"}, "api_key": {""}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	for _, id := range result.Saved {
		if id == "api_key" {
			t.Fatalf("blank password must not be saved, saved %v", result.Saved)
		}
	}
	if value, _ := key.Value(ctx, ""); value != "s3cret" {
		t.Fatalf("expected secret kept, got %#v", value)
	}
}

func TestSave_SubsetLeavesOtherControlsAlone(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := context.Background()
	comments, _ := fx.reg.Field(settings, "comments_open")
	if _, err := comments.Save(ctx, "", true); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := forms.New(fx.reg, "settings", "general").Save(ctx, forms.SaveRequest{
		Values: url.Values{"blogname": {"Only title"}},
		Subset: render.Subset{Fields: []string{"blogname"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if diff := cmp.Diff([]string{"blogname"}, result.Saved); diff != "" {
		t.Fatalf("saved mismatch (-want +got):\n%s", diff)
	}
	if value, _ := comments.Value(ctx, ""); value != true {
		t.Fatalf("checkbox outside the subset was overwritten: %#v", value)
	}

	result, err = forms.New(fx.reg, "settings", "general").Save(ctx, forms.SaveRequest{
		Values: url.Values{"blogname": {"Whole section"}, "posts_per_page": {"12"}},
		Subset: render.Subset{Sections: []string{"SITE"}},
	})
	if err != nil {
		t.Fatalf("save section: %v", err)
	}
	if diff := cmp.Diff([]string{"blogname", "posts_per_page", "comments_open", "moderation"}, result.Saved); diff != "" {
		t.Fatalf("section subset mismatch (-want +got):\n%s", diff)
	}
}
