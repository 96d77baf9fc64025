package totp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	AESKeySize = 32 // Required key size for AES-256 (256 bits / 8 = 32 bytes)

	// sealInfo provides HKDF domain separation for credential secrets
	sealInfo = "authenticator-secret-v1"
)

// SealSecret encrypts a Base32 secret with AES-256-GCM under a key derived from
// masterKey and the credential ID, so a ciphertext cannot be moved to another credential.
// Returns nonce || ciphertext || tag as a base64 string.
func SealSecret(plainText string, masterKey []byte, credentialID string) (string, error) {
	aesGCM, err := newCredentialAEAD(masterKey, credentialID)
	if err != nil {
		return "", errors.Join(ErrFailedToSealSecret, err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrFailedToSealSecret, err)
	}

	cipherText := aesGCM.Seal(nonce, nonce, []byte(plainText), []byte(credentialID))
	return base64.StdEncoding.EncodeToString(cipherText), nil
}

// OpenSecret reverses SealSecret.
func OpenSecret(sealed string, masterKey []byte, credentialID string) (string, error) {
	aesGCM, err := newCredentialAEAD(masterKey, credentialID)
	if err != nil {
		return "", errors.Join(ErrFailedToOpenSecret, err)
	}

	cipherText, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errors.Join(ErrFailedToOpenSecret, err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(cipherText) < nonceSize {
		return "", errors.Join(ErrFailedToOpenSecret, ErrInvalidCipherTooShort)
	}
	nonce, cipherText := cipherText[:nonceSize], cipherText[nonceSize:]

	plainText, err := aesGCM.Open(nil, nonce, cipherText, []byte(credentialID))
	if err != nil {
		return "", errors.Join(ErrFailedToOpenSecret, err)
	}

	return string(plainText), nil
}

func newCredentialAEAD(masterKey []byte, credentialID string) (cipher.AEAD, error) {
	if len(masterKey) != AESKeySize {
		return nil, ErrInvalidEncryptionKeyLength
	}

	key := make([]byte, AESKeySize)
	defer clear(key)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, []byte(credentialID), []byte(sealInfo)), key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// GenerateEncryptionKey creates a new random 32-byte key suitable for AES-256 encryption.
func GenerateEncryptionKey() ([]byte, error) {
	key := make([]byte, AESKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrFailedToGenerateEncryptionKey, err)
	}
	return key, nil
}

// GenerateEncodedEncryptionKey returns a fresh key as base64, ready for TOTP_ENCRYPTION_KEY.
func GenerateEncodedEncryptionKey() (string, error) {
	key, err := GenerateEncryptionKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// ParseEncryptionKey decodes a base64 master key and checks its length.
func ParseEncryptionKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, ErrEncryptionKeyNotSet)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, err)
	}

	if len(key) != AESKeySize {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, ErrInvalidEncryptionKeyLength)
	}

	return key, nil
}
