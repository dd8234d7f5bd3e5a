package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBox(t *testing.T) *Box {
	b, err := NewBox(bytes.Repeat([]byte{0x01}, 32), bytes.Repeat([]byte{0x02}, 32))
	require.NoError(t, err)
	return b
}

func TestNewBox_RejectsShortKeys(t *testing.T) {
	_, err := NewBox([]byte("short"), bytes.Repeat([]byte{0x02}, 32))
	assert.Error(t, err)

	_, err = NewBox(bytes.Repeat([]byte{0x01}, 32), []byte("short"))
	assert.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	b := testBox(t)

	ct, err := b.Encrypt("alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "alice@example.com", ct)

	pt, err := b.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", pt)
}

func TestEncrypt_EmptyStaysEmpty(t *testing.T) {
	b := testBox(t)

	ct, err := b.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, ct)

	pt, err := b.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, pt)
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	b := testBox(t)

	a, err := b.Encrypt("same input")
	require.NoError(t, err)
	c, err := b.Encrypt("same input")
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "fresh nonce per encryption")
}

func TestBlindIndex_Deterministic(t *testing.T) {
	b := testBox(t)

	assert.Equal(t, b.BlindIndex("alice@example.com"), b.BlindIndex("alice@example.com"))
	assert.NotEqual(t, b.BlindIndex("alice@example.com"), b.BlindIndex("bob@example.com"))
	assert.Empty(t, b.BlindIndex(""))
}

func TestDecrypt_RejectsGarbage(t *testing.T) {
	b := testBox(t)

	_, err := b.Decrypt("not base64!!!")
	assert.Error(t, err)

	_, err = b.Decrypt("c2hvcnQ=") // valid base64, shorter than a nonce
	assert.Error(t, err)
}
