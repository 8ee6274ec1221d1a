package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, Verify("correct horse battery staple", hash))
	assert.False(t, Verify("wrong password", hash))
	assert.False(t, Verify("correct horse battery staple", "not-a-bcrypt-hash"))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("samepassword")
	assert.NoError(t, err)
	second, err := Hash("samepassword")
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestHashToken(t *testing.T) {
	// deterministic, so the stored hash can be matched on lookup
	assert.Equal(t, HashToken("abc123"), HashToken("abc123"))
	assert.NotEqual(t, HashToken("abc123"), HashToken("abc124"))
	assert.Len(t, HashToken("abc123"), 64)
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("12345678"))
	assert.True(t, ValidatePassword("a much longer passphrase"))
	assert.False(t, ValidatePassword("1234567"))
	assert.False(t, ValidatePassword(""))
}
