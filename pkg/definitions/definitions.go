package definitions

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formfields/pkg/fields"
	"github.com/goliatone/go-formfields/pkg/registry"
)

// Entry is one registration: an id and the args handed to the registry.
type Entry struct {
	ID   string
	Args map[string]any
}

// Document is one parsed definition file.
type Document struct {
	Source     string
	ObjectType string
	Subtype    string
	Screens    []Entry
	Sections   []Entry
	Fields     []Entry
	Controls   []Entry
	// Datasources are named choice sources shared by every scope. The
	// registry ignores them; hosts build choices.Source values from the args.
	Datasources []Entry
}

// Scope returns the registration scope of the document.
func (d Document) Scope() fields.Scope {
	return fields.NewScope(d.ObjectType, d.Subtype)
}

func (d Document) entries(kind fields.Kind) []Entry {
	switch kind {
	case fields.KindScreen:
		return d.Screens
	case fields.KindSection:
		return d.Sections
	case fields.KindField:
		return d.Fields
	case fields.KindControl:
		return d.Controls
	}
	return nil
}

// Set is the ordered collection of documents loaded from one source.
type Set struct {
	Documents []Document
}

// Len reports the number of registry entries across all documents.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, doc := range s.Documents {
		total += len(doc.Screens) + len(doc.Sections) + len(doc.Fields) + len(doc.Controls)
	}
	return total
}

// Apply registers every entry with reg. Within a document containers go
// first, then fields, then standalone controls, each in file order.
func (s *Set) Apply(reg *registry.Registry) error {
	if s == nil {
		return nil
	}
	for _, doc := range s.Documents {
		scope := doc.Scope()
		for _, kind := range fields.Kinds() {
			for _, entry := range doc.entries(kind) {
				if _, err := reg.Add(kind, scope, entry.ID, maps.Clone(entry.Args)); err != nil {
					return fmt.Errorf("definitions: %s: %w", doc.Source, err)
				}
			}
		}
	}
	return nil
}

// Datasources returns every datasource entry in load order.
func (s *Set) Datasources() []Entry {
	if s == nil {
		return nil
	}
	var out []Entry
	for _, doc := range s.Documents {
		out = append(out, doc.Datasources...)
	}
	return out
}

// Hook adapts Apply into a registry init hook.
func (s *Set) Hook() registry.InitHook {
	return func(reg *registry.Registry) error {
		return s.Apply(reg)
	}
}

// LoadDir loads every definition file below dir.
func LoadDir(dir string) (*Set, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS walks fsys in lexical order and parses every .yaml, .yml and .json
// file. The same id registered twice for one kind and scope is rejected.
func LoadFS(fsys fs.FS) (*Set, error) {
	set := &Set{}
	if fsys == nil {
		return set, nil
	}

	seen := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(name) {
			return nil
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("definitions: read %s: %w", name, err)
		}
		doc, err := Parse(name, data)
		if err != nil {
			return err
		}

		for _, kind := range fields.Kinds() {
			for _, e := range doc.entries(kind) {
				key := string(kind) + "|" + doc.Scope().String() + "|" + e.ID
				if first, dup := seen[key]; dup {
					return fmt.Errorf("definitions: duplicate %s %q for %s (file %s, first defined in %s)",
						kind, e.ID, doc.Scope(), name, first)
				}
				seen[key] = name
			}
		}
		for _, e := range doc.Datasources {
			key := "datasource|" + e.ID
			if first, dup := seen[key]; dup {
				return fmt.Errorf("definitions: duplicate datasource %q (file %s, first defined in %s)", e.ID, name, first)
			}
			seen[key] = name
		}
		set.Documents = append(set.Documents, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

type documentFile struct {
	ObjectType string           `json:"objectType" yaml:"objectType"`
	Subtype    string           `json:"subtype" yaml:"subtype"`
	Screens    []map[string]any `json:"screens" yaml:"screens"`
	Sections   []map[string]any `json:"sections" yaml:"sections"`
	Fields     []map[string]any `json:"fields" yaml:"fields"`
	Controls   []map[string]any `json:"controls" yaml:"controls"`
	Sources    []map[string]any `json:"datasources" yaml:"datasources"`
}

// Parse decodes a single definition document. source is used in errors.
func Parse(source string, data []byte) (Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, fmt.Errorf("definitions: file %s is empty", source)
	}

	var raw documentFile
	if strings.EqualFold(path.Ext(source), ".json") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return Document{}, fmt.Errorf("definitions: parse %s: %w", source, err)
		}
	} else if err := yaml.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("definitions: parse %s: %w", source, err)
	}

	var err error
	doc := Document{
		Source:     source,
		ObjectType: strings.TrimSpace(raw.ObjectType),
		Subtype:    strings.TrimSpace(raw.Subtype),
	}
	if doc.Datasources, err = normaliseEntries(raw.Sources, "datasource", source); err != nil {
		return Document{}, err
	}
	if doc.ObjectType == "" {
		if doc.Datasources != nil && len(raw.Screens)+len(raw.Sections)+len(raw.Fields)+len(raw.Controls) == 0 {
			return doc, nil
		}
		return Document{}, fmt.Errorf("definitions: file %s: objectType is required", source)
	}

	if doc.Screens, err = normaliseEntries(raw.Screens, fields.KindScreen, source); err != nil {
		return Document{}, err
	}
	if doc.Sections, err = normaliseEntries(raw.Sections, fields.KindSection, source); err != nil {
		return Document{}, err
	}
	if doc.Fields, err = normaliseEntries(raw.Fields, fields.KindField, source); err != nil {
		return Document{}, err
	}
	if doc.Controls, err = normaliseEntries(raw.Controls, fields.KindControl, source); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func normaliseEntries(raw []map[string]any, kind fields.Kind, source string) ([]Entry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]Entry, 0, len(raw))
	for idx, item := range raw {
		id, _ := item["id"].(string)
		id = fields.NormalizeID(id)
		if id == "" {
			return nil, fmt.Errorf("definitions: file %s: %s at index %d has no id", source, kind, idx)
		}
		args := maps.Clone(item)
		delete(args, "id")
		out = append(out, Entry{ID: id, Args: args})
	}
	return out, nil
}

func isDefinitionFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
