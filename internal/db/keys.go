package db

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the size of the SQLCipher key in bytes (256 bits).
	KeySize = 32

	// keyInfo separates the database key from any other key derived from MASTER_KEY.
	keyInfo = "agreements-db:v1"
)

// DeriveDatabaseKey derives the SQLCipher key from the hex-encoded master key
// using HKDF-SHA256.
func DeriveDatabaseKey(masterKeyHex string) ([]byte, error) {
	masterKey, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decode master key: %w", err)
	}
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", KeySize, len(masterKey))
	}

	// Salt is nil; the master key is already uniformly random.
	reader := hkdf.New(sha256.New, masterKey, nil, []byte(keyInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive database key: %w", err)
	}
	return key, nil
}

// TestKey returns a fixed key for in-memory databases. Never use it for files.
func TestKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}
