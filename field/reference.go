package field

// ReferenceField describes a reference to another model. The stored value
// is the target's id string, held under AttName (default "<name>_id").
// Dereferencing and the reverse "<source>_set" accessor live in the model
// package, which alone knows how to look up another model's manager by
// name — see spec.md §9's guidance against dynamic attribute injection.
type ReferenceField struct {
	name        string
	targetModel string
	attName     string
	indexed     bool
	required    bool
	relatedName string
	validator   Validator
}

// ReferenceOptions configures a ReferenceField.
type ReferenceOptions struct {
	AttName     string // default: name + "_id"
	Indexed     bool
	Required    bool
	RelatedName string // default: lower(sourceModel) + "_set"
	Validator   Validator
}

// NewReferenceField describes a reference field named name pointing at
// targetModel (the target Schema's registered name).
func NewReferenceField(name, targetModel string, opts ReferenceOptions) *ReferenceField {
	attName := opts.AttName
	if attName == "" {
		attName = name + "_id"
	}
	return &ReferenceField{
		name:        name,
		targetModel: targetModel,
		attName:     attName,
		indexed:     opts.Indexed,
		required:    opts.Required,
		relatedName: opts.RelatedName,
		validator:   opts.Validator,
	}
}

func (f *ReferenceField) Name() string        { return f.name }
func (f *ReferenceField) TargetModel() string { return f.targetModel }
func (f *ReferenceField) AttName() string     { return f.attName }
func (f *ReferenceField) Indexed() bool       { return f.indexed }
func (f *ReferenceField) Required() bool      { return f.required }

// RelatedName is the reverse accessor name on the target model, e.g.
// "character_set" for a Character.word ReferenceField(Word).
func (f *ReferenceField) RelatedName(sourceModel string) string {
	if f.relatedName != "" {
		return f.relatedName
	}
	return lower(sourceModel) + "_set"
}

// Validate checks a candidate id string (empty means unset).
func (f *ReferenceField) Validate(id string) []FieldError {
	var errs []FieldError
	if f.required && id == "" {
		errs = append(errs, FieldError{f.name, "required"})
	}
	if f.validator != nil {
		errs = append(errs, f.validator(id)...)
	}
	return errs
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
