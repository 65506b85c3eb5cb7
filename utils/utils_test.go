package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Tom &amp; Jerry", SanitizeInput("  Tom & Jerry "))
	assert.Equal(t, "hello", SanitizeInput("hello<script>alert(1)</script>"))
	assert.Equal(t, "ab", SanitizeInput("a\x00b"))
}

func TestSanitizeEmail(t *testing.T) {
	email, err := SanitizeEmail("  Chef@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "chef@example.com", email)

	_, err = SanitizeEmail("not-an-email")
	assert.Error(t, err)
}

func TestSanitizePhone(t *testing.T) {
	phone, err := SanitizePhone("(961) 71-123-456")
	require.NoError(t, err)
	assert.Equal(t, "+96171123456", phone)

	phone, err = SanitizePhone("")
	require.NoError(t, err)
	assert.Empty(t, phone)

	_, err = SanitizePhone("12")
	assert.Error(t, err)
}

func TestSanitizeStringArray(t *testing.T) {
	assert.Equal(t, []string{"vegan", "nut &amp; gluten free"}, SanitizeStringArray([]string{" vegan ", "", "nut & gluten free"}))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestParseInt64(t *testing.T) {
	assert.Equal(t, int64(3), ParseInt64("3", 1))
	assert.Equal(t, int64(1), ParseInt64("", 1))
	assert.Equal(t, int64(20), ParseInt64("abc", 20))
	assert.Equal(t, int64(20), ParseInt64("-4", 20))
}

func TestValidationMessage(t *testing.T) {
	type signup struct {
		Email string `validate:"required,email"`
		Role  string `validate:"oneof=user host"`
	}

	err := NewCustomValidator().Validate(&signup{Role: "admin"})
	require.Error(t, err)
	assert.Equal(t, "Email is required; Role must be one of [user host]", ValidationMessage(err))
}
