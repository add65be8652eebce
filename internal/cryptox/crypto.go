// Package cryptox seals small JSON documents (such as a persisted session)
// with AES-GCM under a key derived from a passphrase with argon2id.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/argon2"
)

// KeySize is the length of keys returned by DeriveKey (AES-256).
const KeySize = 32

var ErrEmptyPassphrase = errors.New("empty passphrase")

// DeriveKey stretches passphrase with argon2id over salt into a KeySize key.
func DeriveKey(passphrase, salt []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize), nil
}

// SealJSON serializes v to JSON and encrypts it using AES-GCM with a fresh
// random nonce. The key must be 16, 24 or 32 bytes long.
func SealJSON(v any, key []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	return aead.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// OpenJSON decrypts ciphertext produced by SealJSON and unmarshals the
// result into v.
func OpenJSON(ciphertext, nonce, key []byte, v any) error {
	aead, err := newGCM(key)
	if err != nil {
		return err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return err
	}

	return json.Unmarshal(plaintext, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
