package validation

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type menuRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"omitempty,menu_category"`
	Quantity int    `json:"quantity" binding:"min=1,max=10"`
}

func TestRegisterBindings_MenuCategory(t *testing.T) {
	require.NoError(t, RegisterBindings())

	assert.NoError(t, binding.Validator.ValidateStruct(&menuRequest{Name: "Soup", Category: "appetizer", Quantity: 1}))

	err := binding.Validator.ValidateStruct(&menuRequest{Name: "Soup", Category: "soup", Quantity: 1})
	require.Error(t, err)
	errs := FieldErrors(err)
	assert.Equal(t, "Unknown menu category.", errs["category"])
}

func TestFieldErrors_UsesJSONNames(t *testing.T) {
	require.NoError(t, RegisterBindings())

	err := binding.Validator.ValidateStruct(&menuRequest{Quantity: 11})
	require.Error(t, err)

	errs := FieldErrors(err)
	assert.Equal(t, "This field is required.", errs["name"])
	assert.Equal(t, "Must be at most 10.", errs["quantity"])
}

func TestFieldErrors_NonValidatorError(t *testing.T) {
	errs := FieldErrors(errors.New("unexpected EOF"))
	assert.Equal(t, "unexpected EOF", errs["body"])
}
