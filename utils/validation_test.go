package utils

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Name  string `validate:"required,min=2,max=10"`
	Email string `validate:"required,email"`
}

func TestValidateStructValid(t *testing.T) {
	err := ValidateStruct(sampleInput{Name: "Ada", Email: "ada@example.com"})
	assert.NoError(t, err)
}

func TestValidateStructFieldErrors(t *testing.T) {
	err := ValidateStruct(sampleInput{Name: "", Email: "not-an-email"})
	require.Error(t, err)
	require.True(t, IsValidationError(err))

	fields := GetValidationFields(err)
	assert.Equal(t, "Name is required", fields["Name"])
	assert.Equal(t, "Email must be a valid email", fields["Email"])
}

func TestValidateStructMinMax(t *testing.T) {
	err := ValidateStruct(sampleInput{Name: "a", Email: "ada@example.com"})
	require.Error(t, err)
	assert.Contains(t, GetValidationFields(err)["Name"], "at least 2")

	err = ValidateStruct(sampleInput{Name: "averyverylongname", Email: "ada@example.com"})
	require.Error(t, err)
	assert.Contains(t, GetValidationFields(err)["Name"], "at most 10")
}

func TestIsValidationError(t *testing.T) {
	assert.False(t, IsValidationError(errors.New("plain")))
	assert.Nil(t, GetValidationFields(errors.New("plain")))
}

func TestValidateUUID(t *testing.T) {
	assert.NoError(t, ValidateUUID(uuid.New().String()))
	assert.Error(t, ValidateUUID("not-a-uuid"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ada@example.com"))
	assert.Error(t, ValidateEmail("ada@"))
	assert.Error(t, ValidateEmail("not-an-email"))
}
