package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MaxDescriptionLen is the longest description accepted for a record.
const MaxDescriptionLen = 150

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	fullNamePattern = regexp.MustCompile(`^[A-Za-z ]{3,100}$`)
	mobilePattern   = regexp.MustCompile(`^[0-9]{10}$`)
	otpPattern      = regexp.MustCompile(`^[0-9]{6}$`)
)

// The Validate functions return a user-facing message, or "" when the value
// is acceptable. Messages are shared by the API and both clients.

func ValidateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(email) {
		return "Enter a valid email"
	}
	return ""
}

func ValidatePassword(password string) string {
	if password == "" {
		return "Password is required"
	}
	if utf8.RuneCountInString(password) < 6 {
		return "Password must be at least 6 characters"
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return "Password must contain at least 1 letter and 1 number"
	}
	return ""
}

func ValidateConfirmPassword(password, confirm string) string {
	if confirm == "" {
		return "Please confirm your password"
	}
	if password != confirm {
		return "Passwords do not match"
	}
	return ""
}

func ValidateFullName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Full name is required"
	}
	if !fullNamePattern.MatchString(name) {
		return "Full name must be 3-100 letters and spaces"
	}
	return ""
}

func ValidateGender(gender string) string {
	if gender == "" {
		return "Gender is required"
	}
	for _, g := range Genders {
		if g == gender {
			return ""
		}
	}
	return "Select a valid gender"
}

func ValidateMobile(mobile string) string {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return "Mobile number is required"
	}
	if !mobilePattern.MatchString(mobile) {
		return "Enter a valid 10-digit number"
	}
	return ""
}

func ValidateOTP(otp string) string {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return "OTP is required"
	}
	if !otpPattern.MatchString(otp) {
		return "OTP must be 6 digits"
	}
	return ""
}

func ValidateAmount(amount decimal.Decimal) string {
	if !amount.IsPositive() {
		return "Amount must be > 0"
	}
	return ""
}

// ValidateAmountText validates a raw form value before it is parsed.
func ValidateAmountText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Amount is required"
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return "Amount must be a number"
	}
	return ValidateAmount(amount)
}

func ValidateCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return "Category is required"
	}
	if n := utf8.RuneCountInString(category); n < 3 || n > 15 {
		return "Category must be between 3 and 15 characters"
	}
	if r, _ := utf8.DecodeRuneInString(category); !unicode.IsUpper(r) {
		return "Category must start with a capital letter"
	}
	return ""
}

func ValidateSource(source string) string {
	if strings.TrimSpace(source) == "" {
		return "Source is required"
	}
	return ""
}

func ValidateDescription(description string) string {
	if utf8.RuneCountInString(description) > MaxDescriptionLen {
		return "Description must be 150 characters or less"
	}
	return ""
}

// ValidateDateText validates a raw "YYYY-MM-DD" form value.
func ValidateDateText(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Date is required"
	}
	if _, err := ParseDate(s); err != nil {
		return "Enter a valid date"
	}
	return ""
}

// Capitalize upper-cases the first letter, leaving the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// TruncateDescription caps s at MaxDescriptionLen characters.
func TruncateDescription(s string) string {
	if utf8.RuneCountInString(s) <= MaxDescriptionLen {
		return s
	}
	return string([]rune(s)[:MaxDescriptionLen])
}
