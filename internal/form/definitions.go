package form

import (
	"finance_tracker/internal/domain"
)

// Definition is an immutable, named field list. Each use creates its own
// Form through New.
type Definition struct {
	Name   string
	Fields []Field
}

// New creates a fresh form for the definition
func (d Definition) New() *Form { return New(d.Fields...) }

func only(validate func(string) string) func(string, Values) string {
	return func(value string, _ Values) string { return validate(value) }
}

var genderOptions = func() []Option {
	opts := make([]Option, 0, len(domain.Genders))
	for _, g := range domain.Genders {
		opts = append(opts, Option{Value: g, Label: g})
	}
	return opts
}()

var (
	emailField = Field{
		Name:        "email",
		Label:       "Email",
		Type:        Email,
		Required:    true,
		Placeholder: "Enter your email",
		Validate:    only(domain.ValidateEmail),
	}
	passwordField = Field{
		Name:        "password",
		Label:       "Password",
		Type:        Password,
		Required:    true,
		Placeholder: "Enter your password",
		Validate:    only(domain.ValidatePassword),
	}
	confirmField = Field{
		Name:        "confirm_password",
		Label:       "Confirm Password",
		Type:        Password,
		Required:    true,
		Placeholder: "Re-enter your password",
		Validate: func(value string, values Values) string {
			return domain.ValidateConfirmPassword(values["password"], value)
		},
	}
	amountField = Field{
		Name:        "amount",
		Label:       "Amount",
		Type:        Number,
		Required:    true,
		Placeholder: "0.00",
		Validate:    only(domain.ValidateAmountText),
	}
	descriptionField = Field{
		Name:        "description",
		Label:       "Description",
		Type:        TextArea,
		Placeholder: "Up to 150 characters",
		Validate:    only(domain.ValidateDescription),
		Normalize:   domain.TruncateDescription,
	}
)

// Signin only checks presence; credential rules are enforced by the server.
var Signin = Definition{Name: "signin", Fields: []Field{
	{Name: "email", Label: "Email", Type: Email, Required: true, Placeholder: "Enter your email"},
	{Name: "password", Label: "Password", Type: Password, Required: true, Placeholder: "Enter your password"},
}}

var Signup = Definition{Name: "signup", Fields: []Field{
	{
		Name:        "fullname",
		Label:       "Full Name",
		Type:        Text,
		Required:    true,
		Placeholder: "Enter your full name",
		Validate:    only(domain.ValidateFullName),
	},
	emailField,
	{
		Name:     "gender",
		Label:    "Gender",
		Type:     Select,
		Required: true,
		Options:  genderOptions,
		Validate: only(domain.ValidateGender),
	},
	{
		Name:        "mobilenumber",
		Label:       "Mobile Number",
		Type:        Tel,
		Required:    true,
		Placeholder: "10-digit mobile number",
		Validate:    only(domain.ValidateMobile),
	},
	passwordField,
	confirmField,
}}

var ForgotPassword = Definition{Name: "forgot-password", Fields: []Field{emailField}}

var VerifyOTP = Definition{Name: "verify-otp", Fields: []Field{
	{
		Name:        "otp",
		Label:       "OTP",
		Type:        Text,
		Required:    true,
		Placeholder: "6-digit code",
		Validate:    only(domain.ValidateOTP),
	},
}}

var NewPassword = Definition{Name: "new-password", Fields: []Field{passwordField, confirmField}}

var Expense = Definition{Name: "expense", Fields: []Field{
	amountField,
	{
		Name:        "category",
		Label:       "Category",
		Type:        Text,
		Required:    true,
		Placeholder: "e.g. Groceries",
		Validate:    only(domain.ValidateCategory),
		Normalize:   domain.Capitalize,
	},
	descriptionField,
	{
		Name:     "date",
		Label:    "Date",
		Type:     Date,
		Required: true,
		Validate: only(domain.ValidateDateText),
	},
}}

var Income = Definition{Name: "income", Fields: []Field{
	amountField,
	{
		Name:        "source",
		Label:       "Source",
		Type:        Text,
		Required:    true,
		Placeholder: "e.g. Salary",
		Validate:    only(domain.ValidateSource),
	},
	descriptionField,
	{
		Name:     "income_date",
		Label:    "Date",
		Type:     Date,
		Required: true,
		Validate: only(domain.ValidateDateText),
	},
}}

var definitions = map[string]Definition{}

func init() {
	for _, d := range []Definition{Signin, Signup, ForgotPassword, VerifyOTP, NewPassword, Expense, Income} {
		definitions[d.Name] = d
	}
}

// Lookup returns the definition registered under name
func Lookup(name string) (Definition, bool) {
	d, ok := definitions[name]
	return d, ok
}
