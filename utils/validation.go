// utils/validation.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	return phonePattern.MatchString(cleaned)
}

// RegisterValidations adds the workshop-specific binding rules to v.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("ledgertype", func(fl validator.FieldLevel) bool {
		_, ok := NormalizeLedgerType(fl.Field().String())
		return ok
	}); err != nil {
		return err
	}
	return v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || ValidatePhone(value)
	})
}

// NormalizeLedgerType maps the accepted spellings of a ledger entry type onto
// the stored values "Receita" and "Despesa".
func NormalizeLedgerType(value string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "receita", "revenue":
		return "Receita", true
	case "despesa", "expense":
		return "Despesa", true
	default:
		return "", false
	}
}
