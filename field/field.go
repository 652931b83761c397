// Package field implements the model package's field descriptors: the
// per-field typecasting rules, storage encodings, and validation hooks
// that the model's meta-registration and index engine build on.
package field

import (
	"fmt"
	"strconv"
	"time"
)

// Kind advertises a descriptor's in-memory value type.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindDateTime
	KindDate
)

// FieldError is one (field, reason) validation failure.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Reason) }

// Descriptor is the capability set every scalar field answers: what's the
// in-memory value type, how to parse a string from storage, how to
// serialize to storage, and how to validate a candidate value.
type Descriptor interface {
	Name() string
	Indexed() bool
	Required() bool
	Kind() Kind
	// TypecastForRead parses a stored string into its in-memory value.
	TypecastForRead(raw string) (any, error)
	// TypecastForStorage serializes an in-memory value to its storage form.
	TypecastForStorage(value any) (string, error)
	// Validate checks value and returns zero or more field errors.
	Validate(value any) []FieldError
	// Rangeable reports whether this descriptor backs a zindex (range
	// index) when indexed: true for int, float, date, datetime.
	Rangeable() bool
	// Score converts value to the numeric score a zindex stores it under.
	// Only meaningful when Rangeable() is true.
	Score(value any) (float64, error)
}

// Validator is a user-supplied extra check run after the built-in rules.
type Validator func(value any) []FieldError

type base struct {
	name      string
	indexed   bool
	required  bool
	validator Validator
}

func (b base) Name() string    { return b.name }
func (b base) Indexed() bool   { return b.indexed }
func (b base) Required() bool  { return b.required }
func (b base) Rangeable() bool { return false }
func (b base) Score(any) (float64, error) {
	return 0, fmt.Errorf("field %s: not range-indexable", b.name)
}

func (b base) requiredCheck(val any, empty bool) []FieldError {
	if b.required && empty {
		return []FieldError{{Field: b.name, Reason: "required"}}
	}
	return nil
}

func (b base) runValidator(val any) []FieldError {
	if b.validator == nil {
		return nil
	}
	return b.validator(val)
}

// Options are the shared descriptor flags from spec.md §4.C.
type Options struct {
	Indexed   bool
	Required  bool
	Validator Validator
}

// DefaultOptions is Indexed=true, Required=false (the source's default).
func DefaultOptions() Options { return Options{Indexed: true} }

// StringField is a plain string-valued attribute.
type StringField struct {
	base
}

func NewStringField(name string, opts Options) *StringField {
	return &StringField{base{name: name, indexed: opts.Indexed, required: opts.Required, validator: opts.Validator}}
}

func (f *StringField) Kind() Kind { return KindString }

func (f *StringField) TypecastForRead(raw string) (any, error) { return raw, nil }

func (f *StringField) TypecastForStorage(value any) (string, error) {
	if value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %s: expected string, got %T", f.name, value)
	}
	return s, nil
}

func (f *StringField) Validate(value any) []FieldError {
	var errs []FieldError
	s, _ := value.(string)
	if value != nil {
		if _, ok := value.(string); !ok {
			errs = append(errs, FieldError{f.name, "bad type"})
		}
	}
	errs = append(errs, f.requiredCheck(value, value == nil || s == "")...)
	errs = append(errs, f.runValidator(value)...)
	return errs
}

// IntegerField is an int64-valued attribute, range-indexable.
type IntegerField struct {
	base
}

func NewIntegerField(name string, opts Options) *IntegerField {
	return &IntegerField{base{name: name, indexed: opts.Indexed, required: opts.Required, validator: opts.Validator}}
}

func (f *IntegerField) Kind() Kind     { return KindInteger }
func (f *IntegerField) Rangeable() bool { return true }

func (f *IntegerField) TypecastForRead(raw string) (any, error) {
	return strconv.ParseInt(raw, 10, 64)
}

func (f *IntegerField) TypecastForStorage(value any) (string, error) {
	if value == nil {
		return "0", nil
	}
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return "", fmt.Errorf("field %s: expected integer, got %T", f.name, value)
	}
}

func (f *IntegerField) Validate(value any) []FieldError {
	var errs []FieldError
	empty := value == nil
	if value != nil {
		switch value.(type) {
		case int64, int:
		default:
			errs = append(errs, FieldError{f.name, "bad type"})
		}
	}
	errs = append(errs, f.requiredCheck(value, empty)...)
	errs = append(errs, f.runValidator(value)...)
	return errs
}

func (f *IntegerField) Score(value any) (float64, error) {
	switch v := value.(type) {
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("field %s: expected integer, got %T", f.name, value)
	}
}

// FloatField is a float64-valued attribute, range-indexable.
type FloatField struct {
	base
}

func NewFloatField(name string, opts Options) *FloatField {
	return &FloatField{base{name: name, indexed: opts.Indexed, required: opts.Required, validator: opts.Validator}}
}

func (f *FloatField) Kind() Kind      { return KindFloat }
func (f *FloatField) Rangeable() bool { return true }

func (f *FloatField) TypecastForRead(raw string) (any, error) {
	return strconv.ParseFloat(raw, 64)
}

func (f *FloatField) TypecastForStorage(value any) (string, error) {
	if value == nil {
		return "0", nil
	}
	v, ok := value.(float64)
	if !ok {
		return "", fmt.Errorf("field %s: expected float64, got %T", f.name, value)
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

func (f *FloatField) Validate(value any) []FieldError {
	var errs []FieldError
	empty := value == nil
	if value != nil {
		if _, ok := value.(float64); !ok {
			errs = append(errs, FieldError{f.name, "bad type"})
		}
	}
	errs = append(errs, f.requiredCheck(value, empty)...)
	errs = append(errs, f.runValidator(value)...)
	return errs
}

func (f *FloatField) Score(value any) (float64, error) {
	v, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("field %s: expected float64, got %T", f.name, value)
	}
	return v, nil
}

// BooleanField stores "True"/"False" per spec.md §3.
type BooleanField struct {
	base
}

func NewBooleanField(name string, opts Options) *BooleanField {
	return &BooleanField{base{name: name, indexed: opts.Indexed, required: opts.Required, validator: opts.Validator}}
}

func (f *BooleanField) Kind() Kind { return KindBoolean }

func (f *BooleanField) TypecastForRead(raw string) (any, error) {
	switch raw {
	case "True":
		return true, nil
	case "False":
		return false, nil
	default:
		return nil, fmt.Errorf("field %s: invalid boolean storage value %q", f.name, raw)
	}
}

func (f *BooleanField) TypecastForStorage(value any) (string, error) {
	if value == nil {
		return "False", nil
	}
	b, ok := value.(bool)
	if !ok {
		return "", fmt.Errorf("field %s: expected bool, got %T", f.name, value)
	}
	if b {
		return "True", nil
	}
	return "False", nil
}

func (f *BooleanField) Validate(value any) []FieldError {
	var errs []FieldError
	if value != nil {
		if _, ok := value.(bool); !ok {
			errs = append(errs, FieldError{f.name, "bad type"})
		}
	}
	errs = append(errs, f.runValidator(value)...)
	return errs
}

// DateTimeOptions extends Options with the source's auto_now/auto_now_add
// semantics for DateTimeField (§6 Supplemented Features).
type DateTimeOptions struct {
	Options
	AutoNow    bool
	AutoNowAdd bool
}

// DateTimeField stores "<epoch-seconds>.<microseconds>", range-indexable.
type DateTimeField struct {
	base
	AutoNow    bool
	AutoNowAdd bool
}

func NewDateTimeField(name string, opts DateTimeOptions) *DateTimeField {
	return &DateTimeField{
		base:       base{name: name, indexed: opts.Indexed, required: opts.Required, validator: opts.Validator},
		AutoNow:    opts.AutoNow,
		AutoNowAdd: opts.AutoNowAdd,
	}
}

func (f *DateTimeField) Kind() Kind      { return KindDateTime }
func (f *DateTimeField) Rangeable() bool { return true }

func (f *DateTimeField) TypecastForRead(raw string) (any, error) {
	sec, micros, err := splitEpoch(raw)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", f.name, err)
	}
	return time.Unix(sec, micros*1000).UTC(), nil
}

func (f *DateTimeField) TypecastForStorage(value any) (string, error) {
	if value == nil {
		return "", nil
	}
	t, ok := value.(time.Time)
	if !ok {
		return "", fmt.Errorf("field %s: expected time.Time, got %T", f.name, value)
	}
	return fmt.Sprintf("%d.%d", t.Unix(), t.Nanosecond()/1000), nil
}

func (f *DateTimeField) Validate(value any) []FieldError {
	var errs []FieldError
	empty := value == nil
	if value != nil {
		if _, ok := value.(time.Time); !ok {
			errs = append(errs, FieldError{f.name, "bad type"})
		}
	}
	errs = append(errs, f.requiredCheck(value, empty)...)
	errs = append(errs, f.runValidator(value)...)
	return errs
}

func (f *DateTimeField) Score(value any) (float64, error) {
	t, ok := value.(time.Time)
	if !ok {
		return 0, fmt.Errorf("field %s: expected time.Time, got %T", f.name, value)
	}
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9, nil
}

// DateField stores "<epoch-seconds-as-float>" at midnight UTC, range-indexable.
type DateField struct {
	base
	AutoNow    bool
	AutoNowAdd bool
}

func NewDateField(name string, opts DateTimeOptions) *DateField {
	return &DateField{
		base:       base{name: name, indexed: opts.Indexed, required: opts.Required, validator: opts.Validator},
		AutoNow:    opts.AutoNow,
		AutoNowAdd: opts.AutoNowAdd,
	}
}

func (f *DateField) Kind() Kind      { return KindDate }
func (f *DateField) Rangeable() bool { return true }

func (f *DateField) TypecastForRead(raw string) (any, error) {
	sec, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", f.name, err)
	}
	return time.Unix(int64(sec), 0).UTC(), nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *DateField) TypecastForStorage(value any) (string, error) {
	if value == nil {
		return "", nil
	}
	t, ok := value.(time.Time)
	if !ok {
		return "", fmt.Errorf("field %s: expected time.Time, got %T", f.name, value)
	}
	return strconv.FormatFloat(float64(midnight(t).Unix()), 'f', -1, 64), nil
}

func (f *DateField) Validate(value any) []FieldError {
	var errs []FieldError
	empty := value == nil
	if value != nil {
		if _, ok := value.(time.Time); !ok {
			errs = append(errs, FieldError{f.name, "bad type"})
		}
	}
	errs = append(errs, f.requiredCheck(value, empty)...)
	errs = append(errs, f.runValidator(value)...)
	return errs
}

func (f *DateField) Score(value any) (float64, error) {
	t, ok := value.(time.Time)
	if !ok {
		return 0, fmt.Errorf("field %s: expected time.Time, got %T", f.name, value)
	}
	return float64(midnight(t).Unix()), nil
}

func splitEpoch(raw string) (sec int64, micros int64, err error) {
	dotIdx := -1
	for i, c := range raw {
		if c == '.' {
			dotIdx = i
			break
		}
	}
	if dotIdx < 0 {
		sec, err = strconv.ParseInt(raw, 10, 64)
		return sec, 0, err
	}
	sec, err = strconv.ParseInt(raw[:dotIdx], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	micros, err = strconv.ParseInt(raw[dotIdx+1:], 10, 64)
	return sec, micros, err
}
