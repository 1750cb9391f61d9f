package usecase

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("luhn", func(fl validator.FieldLevel) bool {
		return ValidateCardNumber(fl.Field().String())
	})
	return v
}

// validateInput runs struct tag validation and reports the first failing field as ErrInvalidInput.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domainErrors.New(domainErrors.ErrInvalidInput, "%s failed %q validation", strings.ToLower(fe.Field()), fe.Tag())
	}
	return domainErrors.New(domainErrors.ErrInvalidInput, "%s", err.Error())
}

// validateAmount requires a positive amount with at most two decimal places.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domainErrors.New(domainErrors.ErrInvalidInput, "amount must be positive")
	}
	if !amount.Equal(amount.Round(2)) {
		return domainErrors.New(domainErrors.ErrInvalidInput, "amount must have at most two decimal places")
	}
	return nil
}

// ValidateCardNumber checks card number using Luhn algorithm.
func ValidateCardNumber(number string) bool {
	if number == "" {
		return false
	}

	var sum int
	var alt bool
	for i := len(number) - 1; i >= 0; i-- {
		r := rune(number[i])
		if !unicode.IsDigit(r) {
			return false
		}
		digit := int(r - '0')
		if alt {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		alt = !alt
	}

	return sum%10 == 0
}
