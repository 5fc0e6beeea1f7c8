package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("1234")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("1234", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("4321", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("1234")
	require.NoError(t, err)
	second, err := HashPassword("1234")
	require.NoError(t, err)

	// a fresh salt per hash
	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordMalformed(t *testing.T) {
	_, err := VerifyPassword("1234", "not-an-encoded-hash")
	assert.Error(t, err)

	_, err = VerifyPassword("1234", "$bcrypt$v=19$m=1,t=1,p=1$a$b")
	assert.Error(t, err)
}
