package controls

import (
	"encoding/json"
	"html"
	"strconv"
	"strings"
)

// Attachment is the resolved media item a media control previews.
type Attachment struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Alt   string `json:"alt,omitempty"`
	Title string `json:"title,omitempty"`
	MIME  string `json:"mime,omitempty"`
}

// AttachmentFunc resolves an attachment id. ok is false for unknown ids.
type AttachmentFunc func(id string) (Attachment, bool)

// SubField describes one column of a repeater row.
type SubField struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

func renderMedia(view View, data RenderData) (string, error) {
	state := map[string]any{
		"id":    view.Value,
		"field": view.Field,
	}
	var attachment Attachment
	found := false
	if view.Value != "" && data.Attachments != nil {
		attachment, found = data.Attachments(view.Value)
	}
	if found {
		state["attachment"] = attachment
	}
	blob, err := json.Marshal(state)
	if err != nil {
		return "", err
	}

	selectLabel := optionString(view.Options, "button_label", "Select media")
	removeLabel := optionString(view.Options, "remove_label", "Remove")

	var b strings.Builder
	b.WriteString(`<div class="ff-media" data-control="media" data-template="tmpl-ff-media-`)
	b.WriteString(html.EscapeString(view.ID))
	b.WriteString(`">`)
	writeHiddenInput(&b, view, view.Value)
	b.WriteString(`<div class="ff-media-preview">`)
	if found {
		writeAttachmentPreview(&b, attachment)
	}
	b.WriteString(`</div>`)
	writeButton(&b, "ff-media-select", selectLabel)
	writeButton(&b, "ff-media-remove", removeLabel)
	writeDataBlob(&b, blob)
	b.WriteString(`<script type="text/template" id="tmpl-ff-media-`)
	b.WriteString(html.EscapeString(view.ID))
	b.WriteString(`">`)
	b.WriteString(`<# if ( data.attachment && data.attachment.url ) { #>`)
	b.WriteString(`<img src="{{ data.attachment.url }}" alt="{{ data.attachment.alt }}">`)
	b.WriteString(`<# } else if ( data.id ) { #><span class="ff-media-missing">{{ data.id }}</span><# } #>`)
	b.WriteString(`</script>`)
	b.WriteString(`</div>`)
	writeDescription(&b, view)
	return b.String(), nil
}

func writeAttachmentPreview(b *strings.Builder, attachment Attachment) {
	if strings.HasPrefix(attachment.MIME, "image/") || attachment.MIME == "" {
		b.WriteString(`<img src="`)
		b.WriteString(html.EscapeString(attachment.URL))
		b.WriteString(`" alt="`)
		b.WriteString(html.EscapeString(attachment.Alt))
		b.WriteString(`">`)
		return
	}
	title := attachment.Title
	if title == "" {
		title = attachment.URL
	}
	b.WriteString(`<a href="`)
	b.WriteString(html.EscapeString(attachment.URL))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(title))
	b.WriteString(`</a>`)
}

func renderRepeater(view View, _ RenderData) (string, error) {
	subFields := repeaterFields(view.Options)
	rows := repeaterRows(view.Raw)

	value, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	state := map[string]any{
		"field":  view.Field,
		"fields": subFields,
		"rows":   rows,
	}
	minRows, hasMin := optionInt(view.Options, "min")
	maxRows, hasMax := optionInt(view.Options, "max")
	if hasMin {
		state["min"] = minRows
	}
	if hasMax {
		state["max"] = maxRows
	}
	blob, err := json.Marshal(state)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(`<div class="ff-repeater" data-control="repeater" data-template="tmpl-ff-repeater-`)
	b.WriteString(html.EscapeString(view.ID))
	b.WriteByte('"')
	if hasMin {
		b.WriteString(` data-min="` + strconv.Itoa(minRows) + `"`)
	}
	if hasMax {
		b.WriteString(` data-max="` + strconv.Itoa(maxRows) + `"`)
	}
	b.WriteByte('>')
	writeHiddenInput(&b, view, string(value))
	b.WriteString(`<ol class="ff-repeater-rows"></ol>`)
	writeButton(&b, "ff-repeater-add", optionString(view.Options, "add_label", "Add row"))
	writeDataBlob(&b, blob)
	b.WriteString(`<script type="text/template" id="tmpl-ff-repeater-`)
	b.WriteString(html.EscapeString(view.ID))
	b.WriteString(`"><li class="ff-repeater-row" data-index="{{ data.index }}">`)
	for _, sub := range subFields {
		inputType := sub.Type
		if inputType == "" {
			inputType = TypeText
		}
		b.WriteString(`<label>`)
		b.WriteString(html.EscapeString(sub.Label))
		b.WriteString(` <input type="`)
		b.WriteString(html.EscapeString(inputType))
		b.WriteString(`" data-field="`)
		b.WriteString(sub.ID)
		b.WriteString(`" value="{{ data.values.`)
		b.WriteString(sub.ID)
		b.WriteString(` }}"></label>`)
	}
	b.WriteString(`<button type="button" class="button-link ff-repeater-remove">`)
	b.WriteString(html.EscapeString(optionString(view.Options, "remove_label", "Remove")))
	b.WriteString(`</button></li></script>`)
	b.WriteString(`</div>`)
	writeDescription(&b, view)
	return b.String(), nil
}

// repeaterFields reads the "fields" option. Entries with ids that are not
// plain identifiers are dropped since they are spliced into client templates.
func repeaterFields(options map[string]any) []SubField {
	raw, _ := options["fields"].([]any)
	out := make([]SubField, 0, len(raw))
	for _, entry := range raw {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		id := optionString(item, "id", "")
		if !validIdentifier(id) {
			continue
		}
		out = append(out, SubField{
			ID:    id,
			Label: optionString(item, "label", Humanize(id)),
			Type:  optionString(item, "type", TypeText),
		})
	}
	return out
}

func repeaterRows(value any) []any {
	switch typed := value.(type) {
	case []any:
		return typed
	case []map[string]any:
		out := make([]any, 0, len(typed))
		for _, row := range typed {
			out = append(out, row)
		}
		return out
	default:
		return []any{}
	}
}

func validIdentifier(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

func writeHiddenInput(b *strings.Builder, view View, value string) {
	b.WriteString(`<input type="hidden" id="`)
	b.WriteString(html.EscapeString(view.InputID))
	b.WriteString(`" name="`)
	b.WriteString(html.EscapeString(view.InputName))
	b.WriteString(`" value="`)
	b.WriteString(html.EscapeString(value))
	b.WriteByte('"')
	b.WriteString(view.AttrHTML())
	b.WriteByte('>')
}

func writeButton(b *strings.Builder, class, label string) {
	b.WriteString(`<button type="button" class="button `)
	b.WriteString(class)
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(label))
	b.WriteString(`</button>`)
}

// writeDataBlob embeds JSON state. json.Marshal escapes <, > and &, so the
// payload cannot close the script element.
func writeDataBlob(b *strings.Builder, blob []byte) {
	b.WriteString(`<script type="application/json" class="ff-control-data">`)
	b.Write(blob)
	b.WriteString(`</script>`)
}

func writeDescription(b *strings.Builder, view View) {
	if view.Description == "" {
		return
	}
	b.WriteString(`<p class="description" id="`)
	b.WriteString(html.EscapeString(view.InputID))
	b.WriteString(`-description">`)
	b.WriteString(html.EscapeString(view.Description))
	b.WriteString(`</p>`)
}
