package render

import (
	"strconv"
	"strings"
)

// formKeys hold messages that belong to the whole form.
var formKeys = map[string]bool{
	"":                 true,
	"_form":            true,
	"form":             true,
	"__all__":          true,
	"non_field_errors": true,
}

// SplitErrors sorts an error payload into per-field messages and form level
// messages. Keys may be field ids or paths ("/body/blogname",
// "fields.admin_email", "$.links[0].url"); the first path segment naming one
// of fieldIDs wins. Keys that name no field become form level messages.
func SplitErrors(fieldIDs []string, payload map[string][]string) (map[string][]string, []string) {
	known := make(map[string]bool, len(fieldIDs))
	for _, id := range fieldIDs {
		known[id] = true
	}

	var byField map[string][]string
	var form []string
	for key, messages := range payload {
		messages = cleanMessages(messages)
		if len(messages) == 0 {
			continue
		}
		id := errorTarget(strings.TrimSpace(key), known)
		if id == "" {
			form = append(form, messages...)
			continue
		}
		if byField == nil {
			byField = make(map[string][]string)
		}
		byField[id] = append(byField[id], messages...)
	}
	return byField, cleanMessages(form)
}

// MergeFormErrors appends extras to existing, trimming and dropping blanks
// and repeats.
func MergeFormErrors(existing []string, extras ...string) []string {
	return cleanMessages(append(append([]string(nil), existing...), extras...))
}

func errorTarget(key string, known map[string]bool) string {
	if formKeys[strings.ToLower(key)] {
		return ""
	}
	if known[key] {
		return key
	}
	for _, segment := range strings.FieldsFunc(key, isPathSeparator) {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		if known[segment] {
			return segment
		}
	}
	return ""
}

func isPathSeparator(r rune) bool {
	switch r {
	case '/', '.', '[', ']', '$':
		return true
	}
	return false
}

func cleanMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(messages))
	out := make([]string, 0, len(messages))
	for _, message := range messages {
		message = strings.TrimSpace(message)
		if message == "" || seen[message] {
			continue
		}
		seen[message] = true
		out = append(out, message)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
