package sessions

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

var errMalformedCookie = errors.New("malformed session cookie")

// cookieCodec seals session ids with AES-GCM under a key derived from the
// configured secret.
type cookieCodec struct {
	aead cipher.AEAD
}

func newCookieCodec(secret string) (*cookieCodec, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &cookieCodec{aead: aead}, nil
}

func (c *cookieCodec) Encode(value string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(value), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *cookieCodec) Decode(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", errMalformedCookie
	}
	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", errMalformedCookie
	}
	plain, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", errMalformedCookie
	}
	return string(plain), nil
}
