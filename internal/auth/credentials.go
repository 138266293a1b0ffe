package auth

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Credential rules.
const (
	MinNameLength     = 2
	MinPasswordLength = 8
	// MaxPasswordBytes is bcrypt's input limit. Longer passwords are rejected
	// during validation so the hasher never has to.
	MaxPasswordBytes = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationResult is the outcome of a credential check. A failed check is an
// ordinary value, not an error: callers decide how to surface it.
type ValidationResult struct {
	Valid   bool
	Field   string // which input failed; empty when Valid
	Message string // human-readable reason; empty when Valid
}

func valid() ValidationResult { return ValidationResult{Valid: true} }

func invalid(field, message string) ValidationResult {
	return ValidationResult{Field: field, Message: message}
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// It is idempotent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName lowercases the name and title-cases every
// whitespace-separated token, collapsing runs of whitespace:
//
//	"  jan   JANSEN " → "Jan Jansen"
func NormalizeName(name string) string {
	tokens := strings.Fields(strings.ToLower(name))
	for i, tok := range tokens {
		r, size := utf8.DecodeRuneInString(tok)
		tokens[i] = string(unicode.ToTitle(r)) + tok[size:]
	}
	return strings.Join(tokens, " ")
}

// IsValidEmail reports whether email has the local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsStrongPassword requires at least MinPasswordLength characters with an
// uppercase letter, a lowercase letter, a digit and a symbol. Letter and digit
// classes are ASCII only; any other rune, é included, counts as a symbol.
func IsStrongPassword(password string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case 'A' <= r && r <= 'Z':
			upper = true
		case 'a' <= r && r <= 'z':
			lower = true
		case '0' <= r && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// ValidateRegistration checks a registration submission. The name is checked
// after trimming; the email should already be normalized.
func ValidateRegistration(name, email, password string) ValidationResult {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < MinNameLength {
		return invalid("name", "name must be at least 2 characters")
	}
	if !IsValidEmail(email) {
		return invalid("email", "invalid email address")
	}
	if len(password) > MaxPasswordBytes {
		return invalid("password", "password must be 72 bytes or fewer")
	}
	if !IsStrongPassword(password) {
		return invalid("password",
			"password is not strong enough (min. 8 characters, an uppercase letter, a lowercase letter, a digit and a symbol)")
	}
	return valid()
}

// ValidateLogin checks the shape of a login submission. It does not look at
// password strength: accounts are only ever created through registration.
func ValidateLogin(email, password string) ValidationResult {
	if !IsValidEmail(email) {
		return invalid("email", "invalid email address")
	}
	if password == "" {
		return invalid("password", "password is required")
	}
	return valid()
}
