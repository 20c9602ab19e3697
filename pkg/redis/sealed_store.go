package redis

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned by SealedStore.Fetch for a missing or expired key.
var ErrNotFound = errors.New("sealed value not found")

// SealedStore keeps JSON values in Redis encrypted with AES-GCM under a key prefix.
type SealedStore struct {
	prefix        string
	encryptionKey []byte
}

var (
	setSealedValue = Set
	getSealedValue = Get
	delSealedValue = Del

	marshalSealedJSON = json.Marshal
)

// NewSealedStore creates a store for keys of the form "<prefix>:<id>".
func NewSealedStore(prefix, encryptionKeyHex string) (*SealedStore, error) {
	key, err := hex.DecodeString(encryptionKeyHex)
	if err != nil {
		return nil, errors.New("invalid encryption key hex")
	}
	if len(key) != 32 {
		return nil, errors.New("encryption key must be 32 bytes (64 hex chars)")
	}
	if prefix == "" {
		return nil, errors.New("sealed store prefix is required")
	}
	return &SealedStore{prefix: prefix, encryptionKey: key}, nil
}

// Put encrypts v and stores it with the given expiration.
func (s *SealedStore) Put(ctx context.Context, id string, v any, expiration time.Duration) error {
	jsonData, err := marshalSealedJSON(v)
	if err != nil {
		return err
	}

	encryptedData, err := s.encrypt(jsonData)
	if err != nil {
		return err
	}

	return setSealedValue(ctx, s.key(id), encryptedData, expiration)
}

// Fetch decrypts the stored value into out.
func (s *SealedStore) Fetch(ctx context.Context, id string, out any) error {
	encrypted, err := getSealedValue(ctx, s.key(id))
	if err != nil {
		if IsNil(err) {
			return ErrNotFound
		}
		return err
	}

	plain, err := s.decrypt(encrypted)
	if err != nil {
		return err
	}

	return json.Unmarshal(plain, out)
}

// Remove deletes the value. Removing a missing key is not an error.
func (s *SealedStore) Remove(ctx context.Context, id string) error {
	return delSealedValue(ctx, s.key(id))
}

func (s *SealedStore) key(id string) string {
	return s.prefix + ":" + id
}

func (s *SealedStore) encrypt(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, []byte(s.prefix))
	return hex.EncodeToString(ciphertext), nil
}

func (s *SealedStore) decrypt(ciphertextHex string) ([]byte, error) {
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, []byte(s.prefix))
}
