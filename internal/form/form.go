// Package form holds field values, per-field errors and submit state for the
// client forms. A Form is owned by a single request or command.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var (
	// ErrInvalid is returned by Submit when a field fails validation
	ErrInvalid = errors.New("form has invalid fields")
	// ErrSubmitting is returned by Submit while a previous submit is running
	ErrSubmitting = errors.New("form is already submitting")
	// ErrUnknownField is returned for names not declared on the form
	ErrUnknownField = errors.New("unknown form field")
)

// Kind is the HTML input type of a field
type Kind string

const (
	Text     Kind = "text"
	Email    Kind = "email"
	Password Kind = "password"
	Number   Kind = "number"
	Date     Kind = "date"
	Tel      Kind = "tel"
	Select   Kind = "select"
	TextArea Kind = "textarea"
)

// Option is one choice of a select field
type Option struct {
	Value string
	Label string
}

// Values are the raw field values keyed by field name
type Values map[string]string

// Get returns the trimmed value of name
func (v Values) Get(name string) string { return strings.TrimSpace(v[name]) }

// Field describes one input
type Field struct {
	Name        string
	Label       string
	Type        Kind
	Required    bool
	Placeholder string
	Options     []Option
	// Validate returns an error message or "". It sees every value so that
	// fields like a password confirmation can compare against others.
	Validate func(value string, values Values) string
	// Normalize rewrites the value on every change
	Normalize func(string) string
}

func (f Field) check(values Values) string {
	value := values[f.Name]
	if f.Validate != nil {
		return f.Validate(value, values)
	}
	if f.Required && strings.TrimSpace(value) == "" {
		return f.Label + " is required"
	}
	return ""
}

// Form is the mutable state of one form instance
type Form struct {
	mu         sync.Mutex
	fields     []Field
	values     Values
	errors     map[string]string
	focus      string
	submitting bool
}

// New creates an empty form over fields
func New(fields ...Field) *Form {
	return &Form{
		fields: fields,
		values: Values{},
		errors: map[string]string{},
	}
}

func (f *Form) field(name string) (Field, bool) {
	for _, fd := range f.fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return Field{}, false
}

// Change stores a normalised value and clears the field's error
func (f *Form) Change(name, value string) error {
	fd, ok := f.field(name)
	if !ok {
		return ErrUnknownField
	}
	if fd.Normalize != nil {
		value = fd.Normalize(value)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[name] = value
	delete(f.errors, name)
	return nil
}

// Fill applies Change for every declared field present in values. Unknown
// names are ignored.
func (f *Form) Fill(values map[string]string) {
	for _, fd := range f.fields {
		if v, ok := values[fd.Name]; ok {
			_ = f.Change(fd.Name, v)
		}
	}
}

// Blur validates a single field and returns its error message
func (f *Form) Blur(name string) (string, error) {
	fd, ok := f.field(name)
	if !ok {
		return "", ErrUnknownField
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := fd.check(f.values)
	f.setError(name, msg)
	return msg, nil
}

// SetError records an error for name, typically one returned by the server.
// An empty message clears it.
func (f *Form) SetError(name, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setError(name, msg)
}

func (f *Form) setError(name, msg string) {
	if msg == "" {
		delete(f.errors, name)
		return
	}
	f.errors[name] = msg
}

// Validate checks every field in declaration order and moves focus to the
// first invalid one. It reports whether the form is valid.
func (f *Form) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validate()
}

func (f *Form) validate() bool {
	f.focus = ""
	for _, fd := range f.fields {
		msg := fd.check(f.values)
		f.setError(fd.Name, msg)
		if msg != "" && f.focus == "" {
			f.focus = fd.Name
		}
	}
	return f.focus == ""
}

// Handler receives the values of a valid form
type Handler func(ctx context.Context, values Values) error

// Submit validates the form and, when valid, runs handler with a copy of the
// values. Only one submit runs at a time.
func (f *Form) Submit(ctx context.Context, handler Handler) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitting
	}
	if !f.validate() {
		f.mu.Unlock()
		return ErrInvalid
	}
	f.submitting = true
	values := f.copyValues()
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()
	return handler(ctx, values)
}

func (f *Form) copyValues() Values {
	out := make(Values, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Values returns a copy of the current values
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyValues()
}

// Errors returns a copy of the current field errors
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Focus is the field that should receive focus, or ""
func (f *Form) Focus() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focus
}

// Submitting reports whether a submit is in flight
func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Reset clears values, errors and focus
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = Values{}
	f.errors = map[string]string{}
	f.focus = ""
}
