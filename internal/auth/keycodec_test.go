package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelgate/modelgate/internal/shared"
)

func TestKeyCodecRoundTrip(t *testing.T) {
	codec, err := NewKeyCodec("unit-test-secret")
	require.NoError(t, err)

	epoch := time.Now().UnixMilli()
	token, err := codec.Encode("user-42", epoch)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, gotEpoch, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
	assert.Equal(t, epoch, gotEpoch)
}

func TestKeyCodecRejectsEmptySecret(t *testing.T) {
	_, err := NewKeyCodec("")
	require.Error(t, err)
}

func TestKeyCodecRejectsTamperedToken(t *testing.T) {
	codec, err := NewKeyCodec("unit-test-secret")
	require.NoError(t, err)

	token, err := codec.Encode("user-42", 1700000000000)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	tampered := base64.RawURLEncoding.EncodeToString(raw)

	_, _, err = codec.Decode(tampered)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestKeyCodecRejectsWrongSecret(t *testing.T) {
	codec, err := NewKeyCodec("secret-a")
	require.NoError(t, err)
	other, err := NewKeyCodec("secret-b")
	require.NoError(t, err)

	token, err := codec.Encode("user-42", 1700000000000)
	require.NoError(t, err)

	_, _, err = other.Decode(token)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestKeyCodecRejectsGarbage(t *testing.T) {
	codec, err := NewKeyCodec("unit-test-secret")
	require.NoError(t, err)

	for _, token := range []string{"", "!!!not-base64!!!", "c2hvcnQ", base64.RawURLEncoding.EncodeToString([]byte("tiny"))} {
		_, _, err := codec.Decode(token)
		assert.ErrorIs(t, err, shared.ErrInvalidToken, "token %q", token)
	}
}

func TestKeyCodecTokensAreOpaquePerCall(t *testing.T) {
	codec, err := NewKeyCodec("unit-test-secret")
	require.NoError(t, err)

	a, err := codec.Encode("user-42", 1700000000000)
	require.NoError(t, err)
	b, err := codec.Encode("user-42", 1700000000000)
	require.NoError(t, err)

	// Fresh nonce per call; identical payloads never produce equal tokens.
	assert.NotEqual(t, a, b)
}
