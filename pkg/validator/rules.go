package validator

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequiredString fails for empty or whitespace-only values.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{
			Field:          field,
			Message:        "field is required",
			TranslationKey: "validation.required",
		},
	}
}

// MaxLenString limits the value to max characters (runes, not bytes).
func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey: "validation.max_length",
			Params:         map[string]any{"max": max},
		},
	}
}

// ValidEmail checks the value is a bare RFC 5322 address with a dotted domain.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != strings.TrimSpace(value) {
				return false
			}
			at := strings.LastIndexByte(addr.Address, '@')
			if at <= 0 {
				return false
			}
			domain := addr.Address[at+1:]
			return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
		},
		Error: ValidationError{
			Field:          field,
			Message:        "must be a valid email address",
			TranslationKey: "validation.email",
		},
	}
}

// PositiveDecimal fails for zero and negative amounts.
func PositiveDecimal(field string, value decimal.Decimal) Rule {
	return Rule{
		Check: func() bool { return value.IsPositive() },
		Error: ValidationError{
			Field:          field,
			Message:        "must be greater than zero",
			TranslationKey: "validation.positive",
		},
	}
}

// MaxDecimalPlaces limits the number of fractional digits.
func MaxDecimalPlaces(field string, value decimal.Decimal, places int32) Rule {
	return Rule{
		Check: func() bool { return value.Equal(value.Truncate(places)) },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must have at most %d decimal places", places),
			TranslationKey: "validation.decimal_places",
			Params:         map[string]any{"places": places},
		},
	}
}

// OneOf requires value to be one of options.
func OneOf[T comparable](field string, value T, options []T) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(options, value) },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be one of %v", options),
			TranslationKey: "validation.one_of",
			Params:         map[string]any{"options": options},
		},
	}
}

// RequiredUUID fails for uuid.Nil.
func RequiredUUID(field string, value uuid.UUID) Rule {
	return Rule{
		Check: func() bool { return value != uuid.Nil },
		Error: ValidationError{
			Field:          field,
			Message:        "field is required",
			TranslationKey: "validation.required",
		},
	}
}
