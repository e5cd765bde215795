package form

// Input is a render-ready control for one field
type Input struct {
	Name        string
	Label       string
	Type        Kind
	Value       string
	Error       string
	Focus       bool
	Required    bool
	Placeholder string
	Options     []Option
	Disabled    bool // The form is submitting
}

// Invalid reports whether the control shows an error
func (i Input) Invalid() bool { return i.Error != "" }

// Selected reports whether value is the current choice of a select
func (i Input) Selected(value string) bool { return i.Value == value }

// Fields returns the controls in declaration order
func (f *Form) Fields() []Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Input, 0, len(f.fields))
	for _, fd := range f.fields {
		out = append(out, Input{
			Name:        fd.Name,
			Label:       fd.Label,
			Type:        fd.Type,
			Value:       f.values[fd.Name],
			Error:       f.errors[fd.Name],
			Focus:       f.focus == fd.Name,
			Required:    fd.Required,
			Placeholder: fd.Placeholder,
			Options:     fd.Options,
			Disabled:    f.submitting,
		})
	}
	return out
}

// Input returns the control for name
func (f *Form) Input(name string) (Input, bool) {
	for _, in := range f.Fields() {
		if in.Name == name {
			return in, true
		}
	}
	return Input{}, false
}
