package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type validateSample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Lines []struct {
		Qty float64 `json:"qty" validate:"gt=0"`
	} `json:"lines" validate:"min=1,dive"`
}

func TestValidate(t *testing.T) {
	ok := validateSample{Name: "x", Lines: []struct {
		Qty float64 `json:"qty" validate:"gt=0"`
	}{{Qty: 1}}}
	assert.Nil(t, Validate(ok))

	bad := validateSample{Email: "not-an-email", Lines: []struct {
		Qty float64 `json:"qty" validate:"gt=0"`
	}{{Qty: 0}}}
	assert.Equal(t, map[string]string{
		"name":         "required",
		"email":        "email",
		"lines[0].qty": "gt",
	}, Validate(bad))
}
