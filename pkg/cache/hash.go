package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Key returns "<keyType>:<digest>" where digest covers the JSON encoding of
// parts. Parts that cannot be encoded hash the encoder's error message
// instead.
func Key(keyType string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		data = []byte(err.Error())
	}
	return keyType + ":" + Hash(data)
}

// Hash is the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
