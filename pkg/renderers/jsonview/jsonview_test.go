package jsonview_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfields/pkg/controls"
	"github.com/goliatone/go-formfields/pkg/render"
	"github.com/goliatone/go-formfields/pkg/renderers/jsonview"
	"github.com/goliatone/go-formfields/pkg/testsupport"
	theme "github.com/goliatone/go-theme"
)

func postForm() render.FormView {
	return render.FormView{
		Screen:     "post_details",
		ObjectType: "post",
		Subtype:    "page",
		ItemID:     "7",
		Style:      "stacked",
		Sections: []render.SectionView{
			{ID: "details", Controls: []render.ControlView{
				{View: controls.View{ID: "subtitle", Field: "subtitle", Type: "text", Value: "</script>"}, HTML: "<input>"},
				{View: controls.View{ID: "gallery", Field: "gallery", Type: "repeater"}, HTML: "<div></div>"},
			}},
		},
	}
}

func TestRenderer_Contract(t *testing.T) {
	r := jsonview.New()
	if r.Name() != "json" {
		t.Fatalf("unexpected name %q", r.Name())
	}
	if r.ContentType() != jsonview.ContentType {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRenderer_Document(t *testing.T) {
	out, err := jsonview.New().Render(testsupport.Context(t), postForm(), render.RenderOptions{
		Hidden: []render.HiddenField{render.Hidden("_csrf", "abc")},
		Theme:  &theme.RendererConfig{Theme: "admin", CSSVars: map[string]string{"ff-gap": "1rem"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), "</script>") {
		t.Fatalf("expected html escaping of script terminators: %s", out)
	}

	var doc jsonview.Document
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	wantHidden := []jsonview.Hidden{
		{Name: "_csrf", Value: "abc"},
		{Name: render.ItemFieldName, Value: "7"},
		{Name: render.SubtypeFieldName, Value: "page"},
	}
	if diff := cmp.Diff(wantHidden, doc.Hidden); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}
	if doc.Method != "post" {
		t.Fatalf("expected default method post, got %q", doc.Method)
	}
	if doc.Theme == nil || doc.Theme.Name != "admin" || doc.Theme.CSSVars["ff-gap"] != "1rem" {
		t.Fatalf("unexpected theme %+v", doc.Theme)
	}
	if got := doc.Form.Sections[0].Controls[0].Value; got != "</script>" {
		t.Fatalf("expected value round trip, got %q", got)
	}
}

func TestRenderer_SubsetDoesNotMutateInput(t *testing.T) {
	form := postForm()
	out, err := jsonview.New(jsonview.WithoutHTML(), jsonview.WithIndent("  ")).Render(testsupport.Context(t), form, render.RenderOptions{
		Subset: render.Subset{Fields: []string{"gallery"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var doc jsonview.Document
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	controlsOut := doc.Form.Sections[0].Controls
	if len(controlsOut) != 1 || controlsOut[0].ID != "gallery" {
		t.Fatalf("expected only gallery, got %+v", controlsOut)
	}
	if controlsOut[0].HTML != "" {
		t.Fatalf("expected markup stripped, got %q", controlsOut[0].HTML)
	}

	if len(form.Sections[0].Controls) != 2 || form.Sections[0].Controls[1].HTML == "" {
		t.Fatalf("input form was mutated: %+v", form.Sections[0].Controls)
	}
	if !strings.Contains(string(out), "\n  ") {
		t.Fatalf("expected indented output")
	}
}
