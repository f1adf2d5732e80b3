package validator

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const cpfLength = 11

// NormalizeCPF strips every non-digit character.
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF reports whether cpf (formatted or not) carries 11 digits, is not a
// repeated digit and has both mod-11 check digits right.
func ValidCPF(cpf string) bool {
	digits := NormalizeCPF(cpf)
	if len(digits) != cpfLength {
		return false
	}

	allEqual := true
	for i := 1; i < cpfLength; i++ {
		if digits[i] != digits[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	return checkDigit(digits, 9) == int(digits[9]-'0') &&
		checkDigit(digits, 10) == int(digits[10]-'0')
}

func checkDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	rem := (sum * 10) % 11
	if rem == 10 {
		return 0
	}
	return rem
}

// NormalizeEmail lower-cases and trims an address before lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register adds the custom tags used by request structs. Empty values pass so
// that optional fields can be combined with omitempty.
func Register(v *validator.Validate) error {
	return v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || ValidCPF(s)
	})
}
