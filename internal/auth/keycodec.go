package auth

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/modelgate/modelgate/internal/shared"
)

// KeyCodec seals and opens API keys with ChaCha20-Poly1305. The payload
// is the user id plus the key epoch in whole milliseconds; the AEAD tag
// makes any client-side mutation detectable, so a token can neither be
// forged nor edited to claim another user or epoch.
type KeyCodec struct {
	aead cipher.AEAD
}

// NewKeyCodec derives a 32-byte key from the configured secret via
// SHA-256 and builds the AEAD.
func NewKeyCodec(secret string) (*KeyCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth: api key secret must not be empty")
	}
	sum := sha256.Sum256([]byte(secret))
	aead, err := chacha20poly1305.New(sum[:])
	if err != nil {
		return nil, fmt.Errorf("auth: create aead: %w", err)
	}
	return &KeyCodec{aead: aead}, nil
}

// Encode seals (userID, epoch) into an opaque base64url token. epoch is
// the key generation timestamp in milliseconds and round-trips exactly.
func (c *KeyCodec) Encode(userID string, epoch int64) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("auth: user id must not be empty")
	}
	plaintext := userID + "\n" + strconv.FormatInt(epoch, 10)
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("auth: generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode opens a token back into (userID, epoch). Any failure, from bad
// base64 to a flipped ciphertext bit to a malformed payload, returns
// shared.ErrInvalidToken; the caller never learns which.
func (c *KeyCodec) Decode(token string) (string, int64, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", 0, shared.ErrInvalidToken
	}
	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize {
		return "", 0, shared.ErrInvalidToken
	}
	plaintext, err := c.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", 0, shared.ErrInvalidToken
	}
	userID, rawEpoch, ok := strings.Cut(string(plaintext), "\n")
	if !ok || userID == "" {
		return "", 0, shared.ErrInvalidToken
	}
	epoch, err := strconv.ParseInt(rawEpoch, 10, 64)
	if err != nil {
		return "", 0, shared.ErrInvalidToken
	}
	return userID, epoch, nil
}
