package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formfields/pkg/controls"
	"github.com/goliatone/go-formfields/pkg/render"
)

// Renderer implements render.Renderer for terminal-driven sessions. Instead
// of markup it prompts for every visible control and returns the collected
// values, ready to post to the save endpoint.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	prefixes          Prefixes
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       NewSurveyDriver(nil, nil, nil),
		outputFormat: OutputFormatJSON,
		prefixes:     Prefixes{Section: "== ", Error: "! "},
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts section by section and serializes the answers.
func (r *Renderer) Render(ctx context.Context, form render.FormView, opts render.RenderOptions) ([]byte, error) {
	state, err := r.Collect(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(state)
}

// Collect runs the prompts and returns the raw state.
func (r *Renderer) Collect(ctx context.Context, form render.FormView, opts render.RenderOptions) (*State, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}

	form.Sections = append([]render.SectionView(nil), form.Sections...)
	render.ApplySubset(&form, opts.Subset)

	if form.Title != "" {
		if err := r.driver.Info(ctx, r.prefixes.Section+form.Title); err != nil {
			return nil, err
		}
	}
	for _, message := range render.MergeFormErrors(form.Errors, opts.Errors...) {
		if err := r.driver.Info(ctx, r.prefixes.Error+message); err != nil {
			return nil, err
		}
	}

	state := NewState()
	for _, section := range form.Sections {
		if section.Title != "" {
			if err := r.driver.Info(ctx, r.prefixes.Section+section.Title); err != nil {
				return nil, err
			}
		}
		for _, control := range section.Controls {
			if err := r.promptControl(ctx, control.View, state); err != nil {
				return nil, fmt.Errorf("tui: control %q: %w", control.ID, err)
			}
		}
	}

	if r.submitTransformer != nil {
		values, err := r.submitTransformer(state.Form())
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
		state = stateFromForm(values, state)
	}
	return state, nil
}

func (r *Renderer) promptControl(ctx context.Context, view controls.View, state *State) error {
	for _, message := range view.Errors {
		if err := r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.prefixes.Error, view.Label, message)); err != nil {
			return err
		}
	}

	switch view.Type {
	case controls.TypeHidden:
		state.Set(view.Field, view.Label, false, view.Value)
		return nil
	case controls.TypeReadonly:
		return r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.prefixes.Info, view.Label, view.Value))
	case controls.TypeCheckbox:
		return r.promptCheckbox(ctx, view, state)
	case controls.TypeCheckboxGroup:
		return r.promptMulti(ctx, view, state)
	case controls.TypeSelect:
		if view.Multiple {
			return r.promptMulti(ctx, view, state)
		}
		return r.promptSelect(ctx, view, state)
	case controls.TypeRadio:
		return r.promptSelect(ctx, view, state)
	case controls.TypeTextarea:
		return r.promptTextArea(ctx, view, state)
	case controls.TypePassword:
		return r.promptPassword(ctx, view, state)
	case controls.TypeRepeater:
		return r.promptRepeater(ctx, view, state)
	default:
		return r.promptInput(ctx, view, state)
	}
}

func (r *Renderer) promptInput(ctx context.Context, view controls.View, state *State) error {
	resp, err := r.driver.Input(ctx, InputConfig{
		Message:     view.Label,
		Default:     view.Value,
		Help:        view.Description,
		Placeholder: view.Placeholder,
		Validator:   inputValidator(view),
	})
	if err != nil {
		return err
	}
	state.Set(view.Field, view.Label, false, strings.TrimSpace(resp))
	return nil
}

func (r *Renderer) promptPassword(ctx context.Context, view controls.View, state *State) error {
	resp, err := r.driver.Password(ctx, InputConfig{
		Message:   view.Label,
		Help:      view.Description,
		Validator: inputValidator(view),
	})
	if err != nil {
		return err
	}
	state.Set(view.Field, view.Label, false, resp)
	return nil
}

func (r *Renderer) promptTextArea(ctx context.Context, view controls.View, state *State) error {
	for {
		resp, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: view.Label,
			Default: view.Value,
			Help:    view.Description,
		})
		if err != nil {
			return err
		}
		if view.Required && strings.TrimSpace(resp) == "" {
			if err := r.driver.Info(ctx, fmt.Sprintf("%s%s is required", r.prefixes.Error, view.Label)); err != nil {
				return err
			}
			continue
		}
		state.Set(view.Field, view.Label, false, resp)
		return nil
	}
}

func (r *Renderer) promptCheckbox(ctx context.Context, view controls.View, state *State) error {
	resp, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: view.Label,
		Default: view.Checked,
		Help:    view.Description,
	})
	if err != nil {
		return err
	}
	if resp {
		state.Set(view.Field, view.Label, false, "1")
	} else {
		state.Set(view.Field, view.Label, false)
	}
	return nil
}

func (r *Renderer) promptSelect(ctx context.Context, view controls.View, state *State) error {
	if len(view.Choices) == 0 {
		return r.promptInput(ctx, view, state)
	}
	labels, defaults := choiceLabels(view.Choices)
	defaultIndex := 0
	if len(defaults) > 0 {
		defaultIndex = defaults[0]
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      view.Label,
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         view.Description,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(view.Choices) {
		return fmt.Errorf("selection %d out of range", idx)
	}
	state.Set(view.Field, view.Label, false, view.Choices[idx].Value)
	return nil
}

func (r *Renderer) promptMulti(ctx context.Context, view controls.View, state *State) error {
	labels, defaults := choiceLabels(view.Choices)
	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  view.Label,
		Options:  labels,
		Defaults: defaults,
		Help:     view.Description,
	})
	if err != nil {
		return err
	}
	sort.Ints(indices)
	values := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(view.Choices) {
			values = append(values, view.Choices[idx].Value)
		}
	}
	state.Set(view.Field, view.Label, true, values...)
	return nil
}

// promptRepeater keeps the existing rows unless the user opts to re-enter
// them, then asks for one row at a time within the min/max bounds.
func (r *Renderer) promptRepeater(ctx context.Context, view controls.View, state *State) error {
	rows, _ := view.Raw.([]any)
	if rows == nil {
		rows = []any{}
	}
	existing, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	edit, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("%s: edit %d row(s)?", view.Label, len(rows)),
		Help:    view.Description,
	})
	if err != nil {
		return err
	}
	if !edit {
		state.Set(view.Field, view.Label, false, string(existing))
		return nil
	}

	subFields := repeaterSubFields(view.Options)
	minRows := optionInt(view.Options, "min")
	maxRows := optionInt(view.Options, "max")

	collected := make([]map[string]string, 0)
	for maxRows <= 0 || len(collected) < maxRows {
		if len(collected) >= minRows {
			more, err := r.driver.Confirm(ctx, ConfirmConfig{
				Message: fmt.Sprintf("Add row %d to %s?", len(collected)+1, view.Label),
			})
			if err != nil {
				return err
			}
			if !more {
				break
			}
		}
		row := make(map[string]string, len(subFields))
		for _, sub := range subFields {
			resp, err := r.driver.Input(ctx, InputConfig{Message: sub.Label})
			if err != nil {
				return err
			}
			row[sub.ID] = resp
		}
		collected = append(collected, row)
	}

	payload, err := json.Marshal(collected)
	if err != nil {
		return err
	}
	state.Set(view.Field, view.Label, false, string(payload))
	return nil
}

func (r *Renderer) serialize(state *State) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(state.Form().Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		for _, field := range state.Fields() {
			values, _ := state.Get(field)
			label := state.labels[field]
			if label == "" {
				label = field
			}
			fmt.Fprintf(&b, "%s: %s\n", label, strings.Join(values, ", "))
		}
		return []byte(b.String()), nil
	default:
		payload, err := json.Marshal(state.Map())
		if err != nil {
			return nil, fmt.Errorf("tui: encode values: %w", err)
		}
		return payload, nil
	}
}

func choiceLabels(choices []controls.ChoiceView) ([]string, []int) {
	labels := make([]string, len(choices))
	var defaults []int
	for i, choice := range choices {
		label := choice.Label
		if label == "" {
			label = choice.Value
		}
		labels[i] = label
		if choice.Selected {
			defaults = append(defaults, i)
		}
	}
	return labels, defaults
}

// inputValidator mirrors the browser-side checks the HTML controls carry.
func inputValidator(view controls.View) func(string) error {
	minValue, hasMin := optionFloat(view.Options, "min")
	maxValue, hasMax := optionFloat(view.Options, "max")

	return func(answer string) error {
		answer = strings.TrimSpace(answer)
		if answer == "" {
			if view.Required {
				return errors.New("value is required")
			}
			return nil
		}
		switch view.Type {
		case controls.TypeNumber:
			parsed, err := strconv.ParseFloat(answer, 64)
			if err != nil {
				return errors.New("must be a number")
			}
			if hasMin && parsed < minValue {
				return fmt.Errorf("must be at least %v", minValue)
			}
			if hasMax && parsed > maxValue {
				return fmt.Errorf("must be at most %v", maxValue)
			}
		case controls.TypeEmail:
			if _, err := mail.ParseAddress(answer); err != nil {
				return errors.New("must be an email address")
			}
		case controls.TypeURL:
			parsed, err := url.Parse(answer)
			if err != nil || parsed.Scheme == "" || parsed.Host == "" {
				return errors.New("must be an absolute URL")
			}
		}
		return nil
	}
}

type subField struct {
	ID    string
	Label string
}

func repeaterSubFields(options map[string]any) []subField {
	raw, _ := options["fields"].([]any)
	out := make([]subField, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id := strings.TrimSpace(controls.Stringify(entry["id"]))
		if id == "" {
			continue
		}
		label := strings.TrimSpace(controls.Stringify(entry["label"]))
		if label == "" {
			label = controls.Humanize(id)
		}
		out = append(out, subField{ID: id, Label: label})
	}
	return out
}

func optionInt(options map[string]any, key string) int {
	value, ok := optionFloat(options, key)
	if !ok {
		return 0
	}
	return int(value)
}

func optionFloat(options map[string]any, key string) (float64, bool) {
	raw, ok := options[key]
	if !ok || raw == nil {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(controls.Stringify(raw)), 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
