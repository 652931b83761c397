package model

import (
	"context"

	"github.com/iamteem/redisco/field"
)

// Instance is a single record: a bag of attribute/list values bound to a
// Schema, optionally persisted under an id. New instances come from
// Schema.Objects().New() or Manager.Create; Save allocates the id on
// first persist.
type Instance struct {
	schema *Schema
	id     string
	values map[string]any
	lists  map[string][]any
}

// New builds an unsaved instance of this schema.
func (s *Schema) New() *Instance {
	return &Instance{schema: s, values: map[string]any{}, lists: map[string][]any{}}
}

// ID returns the persisted id, or "" for a new, unsaved instance.
func (i *Instance) ID() string { return i.id }

// IsNew reports whether Save has never assigned this instance an id.
func (i *Instance) IsNew() bool { return i.id == "" }

// Schema returns the instance's record type.
func (i *Instance) Schema() *Schema { return i.schema }

// Get returns the current in-memory value of a scalar attribute.
func (i *Instance) Get(name string) any { return i.values[name] }

// Set assigns a scalar attribute's in-memory value.
func (i *Instance) Set(name string, value any) *Instance {
	i.values[name] = value
	return i
}

// GetList returns the current in-memory value of a list attribute.
func (i *Instance) GetList(name string) []any { return i.lists[name] }

// SetList assigns a list attribute's in-memory value.
func (i *Instance) SetList(name string, values []any) *Instance {
	i.lists[name] = values
	return i
}

// Computed evaluates a Meta-registered computed index function against
// this instance (e.g. Person.full_name()).
func (i *Instance) Computed(name string) (string, bool) {
	fn, ok := i.schema.computed[name]
	if !ok {
		return "", false
	}
	return fn(i), true
}

// Reference dereferences a reference field, fetching the target instance
// by the id stored under its attname.
func (i *Instance) Reference(ctx context.Context, name string) (*Instance, error) {
	rf, ok := i.schema.references[name]
	if !ok {
		return nil, ErrUnknownRelation
	}
	target, ok := Lookup(rf.TargetModel())
	if !ok {
		return nil, ErrUnknownRelation
	}
	id, _ := i.values[rf.AttName()].(string)
	if id == "" {
		return nil, ErrNotFound
	}
	return target.Objects().GetByID(ctx, id)
}

// RelatedSet resolves a reverse reference accessor (e.g. "character_set")
// into a query over the source model.
func (i *Instance) RelatedSet(relatedName string) (*Query, error) {
	if i.IsNew() {
		return nil, ErrMissingID
	}
	return i.schema.RelatedSet(relatedName, i.id)
}

// IsValid runs every field's Validate plus the schema's optional
// struct-level validator, returning every failure found (spec.md §6).
func (i *Instance) IsValid() []field.FieldError {
	var errs []field.FieldError
	for name, d := range i.schema.attributes {
		errs = append(errs, d.Validate(i.values[name])...)
	}
	for name, ld := range i.schema.lists {
		errs = append(errs, ld.Validate(i.lists[name])...)
	}
	if i.schema.validator != nil {
		errs = append(errs, i.schema.validator(i)...)
	}
	return errs
}

// Save validates then persists the instance, allocating an id on first
// save and refreshing every equality and range index (spec.md §4.E).
func (i *Instance) Save(ctx context.Context) error {
	if errs := i.IsValid(); len(errs) > 0 {
		return &FieldValidationError{Model: i.schema.name, Errors: errs}
	}
	return saveInstance(ctx, i.schema.client(), i.schema, i)
}

// Delete removes the instance and every index entry referencing it
// (spec.md §4.E Invariant 4). Returns ErrMissingID for a new instance.
func (i *Instance) Delete(ctx context.Context) error {
	if i.IsNew() {
		return ErrMissingID
	}
	if err := deleteInstance(ctx, i.schema.client(), i.schema, i.id); err != nil {
		return err
	}
	i.id = ""
	return nil
}
