// Package cryptox holds the primitives used by the client: argon2id key
// derivation and AES-GCM sealing for values kept at rest, and the AES-ECB
// encoding the captcha service expects for verification points.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/argon2"
)

// KeySize is the AES-256 key length produced by DeriveKey.
const KeySize = 32

var (
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	ErrInvalidPadding     = errors.New("invalid padding")
)

// DeriveKey stretches a passphrase into an AES-256 key with argon2id.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// MakeVerifier returns a value that lets a caller check a derived key
// without storing the key itself.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// RandomBytes returns n bytes from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// NewAEAD builds an AES-GCM AEAD for key.
func NewAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext and returns nonce||ciphertext.
func Seal(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce, err := RandomBytes(aead.NonceSize())
	if err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func Open(aead cipher.AEAD, sealed []byte) ([]byte, error) {
	ns := aead.NonceSize()
	if len(sealed) < ns {
		return nil, ErrCiphertextTooShort
	}
	return aead.Open(nil, sealed[:ns], sealed[ns:], nil)
}

// EncryptECB encrypts plaintext with AES/ECB/PKCS7 and returns it base64
// encoded. The key is used as raw UTF-8 bytes (16, 24 or 32 long).
//
// ECB is not a sound mode for secrets; it exists only because the captcha
// backend decodes verification points this way.
func EncryptECB(plaintext, key string) (string, error) {
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return "", err
	}
	bs := block.BlockSize()
	src := pkcs7Pad([]byte(plaintext), bs)
	dst := make([]byte, len(src))
	for i := 0; i < len(src); i += bs {
		block.Encrypt(dst[i:i+bs], src[i:i+bs])
	}
	return base64.StdEncoding.EncodeToString(dst), nil
}

// DecryptECB reverses EncryptECB.
func DecryptECB(encoded, key string) (string, error) {
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return "", err
	}
	src, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	bs := block.BlockSize()
	if len(src) == 0 || len(src)%bs != 0 {
		return "", ErrCiphertextTooShort
	}
	dst := make([]byte, len(src))
	for i := 0; i < len(src); i += bs {
		block.Decrypt(dst[i:i+bs], src[i:i+bs])
	}
	out, err := pkcs7Unpad(dst, bs)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func pkcs7Pad(b []byte, bs int) []byte {
	n := bs - len(b)%bs
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, bs int) ([]byte, error) {
	if len(b) == 0 {
		return nil, ErrInvalidPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > bs || n > len(b) {
		return nil, ErrInvalidPadding
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, ErrInvalidPadding
		}
	}
	return b[:len(b)-n], nil
}
