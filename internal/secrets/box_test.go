package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	box, err := NewBox("a passphrase operators can remember")
	require.NoError(t, err)

	token, err := box.Seal("s3cret-catalog-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-catalog-password", token)

	plain, err := box.Open(token)
	require.NoError(t, err)
	assert.Equal(t, "s3cret-catalog-password", plain)
}

func TestOpenRejectsTamperedToken(t *testing.T) {
	box, err := NewBox("a passphrase operators can remember")
	require.NoError(t, err)

	token, err := box.Seal("password")
	require.NoError(t, err)

	tampered := []byte(token)
	tampered[len(tampered)-1] ^= 'x'

	_, err = box.Open(string(tampered))
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestOpenWithDifferentKeyFails(t *testing.T) {
	box1, err := NewBox("key one")
	require.NoError(t, err)
	box2, err := NewBox("key two")
	require.NoError(t, err)

	token, err := box1.Seal("password")
	require.NoError(t, err)

	_, err = box2.Open(token)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestGeneratedKeyIsAccepted(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	box, err := NewBox(key)
	require.NoError(t, err)

	token, err := box.Seal("password")
	require.NoError(t, err)
	plain, err := box.Open(token)
	require.NoError(t, err)
	assert.Equal(t, "password", plain)
}
