// Package model implements redisco's meta-registration, index engine,
// query compiler/executor, and manager façade — the CORE described in
// spec.md §4.D-G.
package model

import (
	"sort"
	"sync"

	"github.com/iamteem/redisco/container"
	"github.com/iamteem/redisco/field"
	"github.com/redis/go-redis/v9"
)

// reverseAccessor records a reference field's reverse ("<source>_set")
// lookup: querying the source model, filtered by the reference's attname
// equal to the target instance's id.
type reverseAccessor struct {
	sourceModel string
	attName     string
}

// Schema is a record type's meta-registration: its field descriptors and
// the derived _indices/_zindices/_lists/_references sets from spec.md §3.
type Schema struct {
	name string
	db   *redis.Client
	key  container.Key

	attributes map[string]field.Descriptor
	lists      map[string]*field.ListDescriptor
	references map[string]*field.ReferenceField
	computed   map[string]func(*Instance) string

	indices  []string // equality-indexed field/list/computed names
	zindices []string // range-indexed (rangeable) field names

	reverse map[string]reverseAccessor // relatedName -> accessor

	validator func(*Instance) []field.FieldError

	mgrOnce sync.Once
	mgr     *Manager
}

var registryMu sync.RWMutex
var registry = map[string]*Schema{}

// Register creates and records a new Schema under name. Call Field,
// ListField, ReferenceField, and Computed on the result to build it up,
// then WithDB if this model overrides the process-wide default client.
func Register(name string) *Schema {
	s := &Schema{
		name:       name,
		key:        container.NewKey(name),
		attributes: map[string]field.Descriptor{},
		lists:      map[string]*field.ListDescriptor{},
		references: map[string]*field.ReferenceField{},
		computed:   map[string]func(*Instance) string{},
		reverse:    map[string]reverseAccessor{},
	}
	registryMu.Lock()
	registry[name] = s
	registryMu.Unlock()
	return s
}

// Lookup returns the Schema previously registered under name.
func Lookup(name string) (*Schema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[name]
	return s, ok
}

// Name returns the model's name, the root of its key namespace.
func (s *Schema) Name() string { return s.name }

// Key returns the schema's key namespacer, rooted at the model name.
func (s *Schema) Key() container.Key { return s.key }

// WithDB overrides the default process-wide client for this model.
func (s *Schema) WithDB(db *redis.Client) *Schema {
	s.db = db
	return s
}

// WithValidator attaches a struct-level validation hook, invoked by
// Instance.IsValid alongside per-field validation (spec.md §6
// "clean()" supplement).
func (s *Schema) WithValidator(fn func(*Instance) []field.FieldError) *Schema {
	s.validator = fn
	return s
}

// Field registers a scalar attribute descriptor.
func (s *Schema) Field(d field.Descriptor) *Schema {
	s.attributes[d.Name()] = d
	if d.Indexed() {
		s.indices = append(s.indices, d.Name())
		if d.Rangeable() {
			s.zindices = append(s.zindices, d.Name())
		}
	}
	return s
}

// ListField registers a list-valued attribute descriptor.
func (s *Schema) ListField(d *field.ListDescriptor) *Schema {
	s.lists[d.Name()] = d
	if d.Indexed() {
		s.indices = append(s.indices, d.Name())
	}
	return s
}

// ReferenceField registers a reference descriptor, auto-registering its
// attname as a plain string attribute (indexed and required exactly when
// the reference is) and the reverse "<source>_set" accessor on the target
// model (spec.md §3, §4.D). The accessor is installed only when the target
// model is already registered at this point.
func (s *Schema) ReferenceField(d *field.ReferenceField) *Schema {
	s.references[d.Name()] = d
	s.Field(field.NewStringField(d.AttName(), field.Options{Indexed: d.Indexed(), Required: d.Required()}))

	relatedName := d.RelatedName(s.name)
	registryMu.Lock()
	if target, ok := registry[d.TargetModel()]; ok {
		target.reverse[relatedName] = reverseAccessor{sourceModel: s.name, attName: d.AttName()}
	}
	registryMu.Unlock()
	return s
}

// Computed registers an extra equality index backed by a per-instance
// function rather than a stored attribute (spec.md §4.D "Meta.indices",
// e.g. Person.full_name()).
func (s *Schema) Computed(name string, fn func(*Instance) string) *Schema {
	s.computed[name] = fn
	s.indices = append(s.indices, name)
	return s
}

// Indices returns the equality-indexed field/list/computed names, sorted
// for deterministic iteration (the source treats this as an unordered
// set; a stable order makes index refresh and temp-key naming
// reproducible across runs).
func (s *Schema) Indices() []string {
	out := append([]string(nil), s.indices...)
	sort.Strings(out)
	return out
}

// ZIndices returns the range-indexed field names, sorted.
func (s *Schema) ZIndices() []string {
	out := append([]string(nil), s.zindices...)
	sort.Strings(out)
	return out
}

// Attribute returns the scalar descriptor registered under name, for
// callers (e.g. request decoders) that need to coerce raw values before
// Set.
func (s *Schema) Attribute(name string) (field.Descriptor, bool) {
	d, ok := s.attributes[name]
	return d, ok
}

func (s *Schema) client() *redis.Client {
	if s.db != nil {
		return s.db
	}
	return defaultClientFn()
}

// defaultClientFn is indirected so the model package doesn't import the
// root redisco package (which would create an import cycle); the root
// package wires this up in its init.
var defaultClientFn = func() *redis.Client {
	panic("model: no database configured; call Schema.WithDB or redisco.Connect")
}

// SetDefaultClientProvider lets the redisco root package supply the
// process-wide default client lazily.
func SetDefaultClientProvider(fn func() *redis.Client) {
	defaultClientFn = fn
}

// Objects returns the model's manager façade.
func (s *Schema) Objects() *Manager {
	s.mgrOnce.Do(func() {
		s.mgr = &Manager{schema: s}
	})
	return s.mgr
}

// RelatedSet builds the reverse-reference query for relatedName evaluated
// against targetID (e.g. word.RelatedSet("character_set", word.ID())).
func (s *Schema) RelatedSet(relatedName string, targetID string) (*Query, error) {
	ra, ok := s.reverse[relatedName]
	if !ok {
		return nil, ErrUnknownRelation
	}
	source, ok := Lookup(ra.sourceModel)
	if !ok {
		return nil, ErrUnknownRelation
	}
	return source.Objects().Filter(map[string]any{ra.attName: targetID}), nil
}
