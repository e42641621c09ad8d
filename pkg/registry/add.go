package registry

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/pkg/datastore"
	"github.com/goliatone/go-formfields/pkg/fields"
	"github.com/goliatone/go-formfields/pkg/sanitize"
	"github.com/goliatone/go-formfields/pkg/validation"
)

// Factory builds an entity of one kind from registration args. Factories are
// selected by args["type"]; the default factory of the kind handles types
// without a dedicated one.
type Factory func(r *Registry, scope fields.Scope, id string, args map[string]any) (fields.Entity, error)

// RegisterFactory associates a factory with a kind and type tag. An empty
// type replaces the kind's default factory.
func (r *Registry) RegisterFactory(kind fields.Kind, typ string, factory Factory) error {
	if !kind.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	if factory == nil {
		return fmt.Errorf("registry: factory for %s %q is nil", kind, typ)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories[kind] == nil {
		r.factories[kind] = make(map[string]Factory)
	}
	r.factories[kind][normalizeType(typ)] = factory
	return nil
}

// DefaultFactory returns the built-in factory for kind, for custom factories
// that decorate it.
func DefaultFactory(kind fields.Kind) Factory {
	switch kind {
	case fields.KindScreen, fields.KindSection:
		return containerFactory(kind)
	case fields.KindField:
		return buildField
	case fields.KindControl:
		return buildControl
	default:
		return nil
	}
}

func (r *Registry) registerDefaultFactories() {
	for _, kind := range fields.Kinds() {
		r.factories[kind] = map[string]Factory{"": DefaultFactory(kind)}
	}
}

func (r *Registry) factory(kind fields.Kind, typ string) Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byType := r.factories[kind]
	if factory, ok := byType[normalizeType(typ)]; ok {
		return factory
	}
	return byType[""]
}

// Add registers an entity built from args. When the key is already taken the
// call is a no-op that returns the first registration.
func (r *Registry) Add(kind fields.Kind, scope fields.Scope, id string, args map[string]any) (fields.Entity, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	scope = fields.NewScope(scope.ObjectType, scope.Subtype)
	if scope.ObjectType == "" {
		return nil, fmt.Errorf("registry: %s %q: object type is required", kind, id)
	}
	id = fields.NormalizeID(id)
	if id == "" {
		return nil, fmt.Errorf("registry: %s id is required", kind)
	}

	k := key{kind: kind, scope: scope, id: id}
	if existing, ok := r.lookup(k); ok {
		r.logger.Debug("duplicate registration ignored",
			zap.String("kind", string(kind)),
			zap.String("scope", scope.String()),
			zap.String("id", id),
		)
		return existing, nil
	}

	typ, _ := args["type"].(string)
	factory := r.factory(kind, typ)
	entity, err := factory(r, scope, id, args)
	if err != nil {
		return nil, err
	}
	if entity == nil || entity.Kind() != kind {
		return nil, fmt.Errorf("registry: factory for %s %q returned a different kind", kind, typ)
	}

	entity, inserted := r.insert(k, entity)
	if !inserted {
		return entity, nil
	}

	if field, ok := entity.(*fields.Field); ok {
		r.addEmbeddedControl(field)
	}
	return entity, nil
}

// AddScreen registers a screen.
func (r *Registry) AddScreen(scope fields.Scope, id string, args map[string]any) (*fields.Container, error) {
	return addTyped[*fields.Container](r, fields.KindScreen, scope, id, args)
}

// AddSection registers a section. args["parent"] (or "screen") names the
// owning screen.
func (r *Registry) AddSection(scope fields.Scope, id string, args map[string]any) (*fields.Container, error) {
	return addTyped[*fields.Container](r, fields.KindSection, scope, id, args)
}

// AddField registers a field and, when args carry a "control" map, a control
// with the same id bound to it.
func (r *Registry) AddField(scope fields.Scope, id string, args map[string]any) (*fields.Field, error) {
	return addTyped[*fields.Field](r, fields.KindField, scope, id, args)
}

// AddControl registers a control. args["field"] defaults to the control id.
func (r *Registry) AddControl(scope fields.Scope, id string, args map[string]any) (*fields.Control, error) {
	return addTyped[*fields.Control](r, fields.KindControl, scope, id, args)
}

func addTyped[T fields.Entity](r *Registry, kind fields.Kind, scope fields.Scope, id string, args map[string]any) (T, error) {
	var zero T
	entity, err := r.Add(kind, scope, id, args)
	if err != nil {
		return zero, err
	}
	typed, ok := entity.(T)
	if !ok {
		return zero, fmt.Errorf("registry: %s %q has unexpected type %T", kind, id, entity)
	}
	return typed, nil
}

func (r *Registry) lookup(k key) (fields.Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[k]
	if !ok {
		return nil, false
	}
	return e.entity, true
}

// insert stores entity unless a concurrent Add won the key first.
func (r *Registry) insert(k key, entity fields.Entity) (fields.Entity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[k]; ok {
		return existing.entity, false
	}
	r.seq++
	r.entries[k] = entry{entity: entity, order: r.seq}
	return entity, true
}

func (r *Registry) addEmbeddedControl(field *fields.Field) {
	cfg := field.Config()
	if cfg.Control == nil {
		return
	}
	control := *cfg.Control
	control.Field = field.ID()
	if control.Section == "" {
		control.Section = cfg.Section
	}
	if control.Type == "" && r.controlTypes.Has(cfg.Type) {
		control.Type = cfg.Type
	}
	if control.Label == "" {
		control.Label = cfg.Label
	}
	if control.Description == "" {
		control.Description = cfg.Description
	}
	if control.Capability == "" {
		control.Capability = cfg.Capability
	}

	k := key{kind: fields.KindControl, scope: field.Scope(), id: field.ID()}
	r.insert(k, fields.NewControl(field.Scope(), field.ID(), control, binding{r: r}))
}

func containerFactory(kind fields.Kind) Factory {
	return func(_ *Registry, scope fields.Scope, id string, args map[string]any) (fields.Entity, error) {
		cfg, err := fields.DecodeContainer(args)
		if err != nil {
			return nil, fmt.Errorf("registry: %s %q: %w", kind, id, err)
		}
		return fields.NewContainer(kind, scope, id, cfg), nil
	}
}

func buildControl(r *Registry, scope fields.Scope, id string, args map[string]any) (fields.Entity, error) {
	cfg, err := fields.DecodeControl(args)
	if err != nil {
		return nil, fmt.Errorf("registry: control %q: %w", id, err)
	}
	return fields.NewControl(scope, id, cfg, binding{r: r}), nil
}

func buildField(r *Registry, scope fields.Scope, id string, args map[string]any) (fields.Entity, error) {
	cfg, err := fields.DecodeField(args)
	if err != nil {
		return nil, fmt.Errorf("registry: field %q: %w", id, err)
	}

	dataType := r.fieldDataType(cfg)
	storeType := cfg.DataStore
	if storeType == "" {
		storeType = datastore.DefaultType(scope.ObjectType)
	}
	if !r.stores.Has(storeType) {
		return nil, fmt.Errorf("%w: field %q data store %q", ErrUnknownType, id, storeType)
	}
	store, err := r.stores.Build(datastore.Config{
		ID:         id,
		Name:       cfg.Name,
		Type:       storeType,
		ObjectType: scope.ObjectType,
		DataType:   dataType,
		Default:    cfg.Default,
	}, r.backend)
	if err != nil {
		return nil, fmt.Errorf("registry: field %q: %w", id, err)
	}

	validator, err := validation.Compile(id, dataType, cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("registry: field %q: %w", id, err)
	}

	sanitizer, err := r.fieldSanitizer(cfg.Sanitizer, dataType)
	if err != nil {
		return nil, fmt.Errorf("registry: field %q: %w", id, err)
	}

	field, err := fields.NewField(scope, id, cfg, fields.FieldDeps{
		Store:     store,
		Validator: validator,
		Sanitize:  sanitizer,
	})
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return field, nil
}

// fieldDataType picks the explicit data type, then the embedded control's
// variant default, then the field type's variant default, then string.
func (r *Registry) fieldDataType(cfg fields.FieldConfig) datastore.DataType {
	if cfg.DataType != "" {
		return cfg.DataType
	}
	if cfg.Control != nil {
		controlType := cfg.Control.Type
		if controlType == "" {
			controlType = cfg.Type
		}
		if dt := r.controlTypes.DataType(controlType, cfg.Control.Options); dt != "" {
			return dt
		}
	}
	if dt := r.controlTypes.DataType(cfg.Type, cfg.Metadata); dt != "" {
		return dt
	}
	return datastore.DataTypeString
}

// fieldSanitizer resolves the named sanitizer. Strings and string lists
// default to plain text sanitising; other data types pass through.
func (r *Registry) fieldSanitizer(name string, dt datastore.DataType) (sanitize.Func, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		switch dt {
		case datastore.DataTypeString, datastore.DataTypeArray:
			name = sanitize.Text
		default:
			return nil, nil
		}
	}
	fn, ok := r.sanitizers.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: sanitizer %q", ErrUnknownType, name)
	}
	return fn, nil
}

func normalizeType(typ string) string {
	return strings.ToLower(strings.TrimSpace(typ))
}
