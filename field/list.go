package field

import "fmt"

// ListDescriptor is a list-valued field, stored as a Redis list at
// <name>:<id>:<field>. Each element is typecast via Elem.
type ListDescriptor struct {
	name     string
	elem     Descriptor
	indexed  bool
	required bool
}

// NewListField wraps elem as the element descriptor for a list field.
func NewListField(name string, elem Descriptor, opts Options) *ListDescriptor {
	return &ListDescriptor{name: name, elem: elem, indexed: opts.Indexed, required: opts.Required}
}

func (f *ListDescriptor) Name() string      { return f.name }
func (f *ListDescriptor) Indexed() bool     { return f.indexed }
func (f *ListDescriptor) Required() bool    { return f.required }
func (f *ListDescriptor) Elem() Descriptor  { return f.elem }

// TypecastElementsForStorage serializes each element of values via Elem.
func (f *ListDescriptor) TypecastElementsForStorage(values []any) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		s, err := f.elem.TypecastForStorage(v)
		if err != nil {
			return nil, fmt.Errorf("list field %s[%d]: %w", f.name, i, err)
		}
		out[i] = s
	}
	return out, nil
}

// TypecastElementsForRead parses each raw list member via Elem.
func (f *ListDescriptor) TypecastElementsForRead(raws []string) ([]any, error) {
	out := make([]any, len(raws))
	for i, r := range raws {
		v, err := f.elem.TypecastForRead(r)
		if err != nil {
			return nil, fmt.Errorf("list field %s[%d]: %w", f.name, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Validate applies the required check and per-element Elem.Validate.
func (f *ListDescriptor) Validate(values []any) []FieldError {
	var errs []FieldError
	if f.required && len(values) == 0 {
		errs = append(errs, FieldError{f.name, "required"})
	}
	for _, v := range values {
		errs = append(errs, f.elem.Validate(v)...)
	}
	return errs
}
