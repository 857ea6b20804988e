package crypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// EncryptRecord encrypts a serialized secret record with the
// ChaCha20-Poly1305 AEAD. The additionalData is authenticated but not
// encrypted; we pass the ephemeral ECDHE public key there so a tampered
// key material fails authentication.
func EncryptRecord(key, nonce, plaintext, additionalData []byte) ([]byte, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("invalid key size: must be %d bytes", chacha20poly1305.KeySize)
	}
	if len(nonce) != chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("invalid nonce size: must be %d bytes", chacha20poly1305.NonceSize)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 AEAD: %w", err)
	}

	return aead.Seal(nil, nonce, plaintext, additionalData), nil
}

// DecryptRecord reverses EncryptRecord. A failure here means a wrong
// key/nonce or a ciphertext/additionalData that has been tampered with.
func DecryptRecord(key, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("invalid key size: must be %d bytes", chacha20poly1305.KeySize)
	}
	if len(nonce) != chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("invalid nonce size: must be %d bytes", chacha20poly1305.NonceSize)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 AEAD: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt record: %w", err)
	}
	return plaintext, nil
}
