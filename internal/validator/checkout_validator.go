package validator

import (
	"net/http"
	"regexp"
	"strings"

	"storefront/internal/usecase"
)

type checkoutValidator struct{}

// Usecaseは interface を依存注入
func NewCheckoutValidator() usecase.CheckoutValidator {
	return &checkoutValidator{}
}

var phoneLike = regexp.MustCompile(`^[0-9+\-() ]{7,30}$`)

// 配送先の入力を検証。不足しているフィールドをまとめて返す。
func (v *checkoutValidator) ValidateShipping(in usecase.ShippingInput) error {
	missing := []string{}

	required := []struct {
		name  string
		value string
	}{
		{"name", in.Name},
		{"phone", in.Phone},
		{"address", in.Address},
		{"city", in.City},
		{"state", in.State},
		{"postal_code", in.PostalCode},
		{"country", in.Country},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return usecase.NewHTTPErrorWithDetails(http.StatusBadRequest, usecase.CodeValidation,
			"missing shipping fields", map[string]interface{}{"fields": missing})
	}

	if !phoneLike.MatchString(strings.TrimSpace(in.Phone)) {
		return usecase.NewHTTPErrorWithDetails(http.StatusBadRequest, usecase.CodeValidation,
			"invalid phone", map[string]interface{}{"fields": []string{"phone"}})
	}

	// 国コードはISO 3166-1 alpha-2
	if len(strings.TrimSpace(in.Country)) != 2 {
		return usecase.NewHTTPErrorWithDetails(http.StatusBadRequest, usecase.CodeValidation,
			"invalid country code", map[string]interface{}{"fields": []string{"country"}})
	}

	return nil
}
