package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfields/pkg/controls"
)

func subsetFixture() FormView {
	return FormView{
		Screen:     "general",
		ObjectType: "settings",
		Sections: []SectionView{
			{ID: "site", Controls: []ControlView{
				{View: controls.View{ID: "blogname", Field: "blogname"}},
				{View: controls.View{ID: "blogdescription", Field: "blogdescription"}},
			}},
			{ID: "Reading", Controls: []ControlView{
				{View: controls.View{ID: "posts_per_page", Field: "posts_per_page"}},
			}},
			{ID: "discussion", Controls: []ControlView{
				{View: controls.View{ID: "default_ping_status", Field: "default_ping_status"}},
			}},
		},
	}
}

func sectionLayout(form FormView) map[string][]string {
	out := make(map[string][]string)
	for _, section := range form.Sections {
		ids := []string{}
		for _, control := range section.Controls {
			ids = append(ids, control.ID)
		}
		out[section.ID] = ids
	}
	return out
}

func TestApplySubset_BySection(t *testing.T) {
	form := subsetFixture()
	ApplySubset(&form, Subset{Sections: []string{" reading "}})

	want := map[string][]string{"Reading": {"posts_per_page"}}
	if diff := cmp.Diff(want, sectionLayout(form)); diff != "" {
		t.Fatalf("subset mismatch (-want +got):\n%s", diff)
	}
}

func TestApplySubset_ByFieldDropsEmptySections(t *testing.T) {
	form := subsetFixture()
	ApplySubset(&form, Subset{Fields: []string{"blogname", "default_ping_status"}})

	want := map[string][]string{
		"site":       {"blogname"},
		"discussion": {"default_ping_status"},
	}
	if diff := cmp.Diff(want, sectionLayout(form)); diff != "" {
		t.Fatalf("subset mismatch (-want +got):\n%s", diff)
	}
	if form.Sections[0].ID != "site" || form.Sections[1].ID != "discussion" {
		t.Fatalf("expected section order preserved, got %+v", form.Sections)
	}
}

func TestApplySubset_EmptyIsNoop(t *testing.T) {
	form := subsetFixture()
	ApplySubset(&form, Subset{Sections: []string{" "}})
	if len(form.Sections) != 3 {
		t.Fatalf("expected all sections kept, got %d", len(form.Sections))
	}
	ApplySubset(nil, Subset{Fields: []string{"x"}})
}
