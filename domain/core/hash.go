package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// RegistryHash fingerprints the contents of a route registry so a result can
// be traced back to the exact data it was computed from.
type RegistryHash Hash

func (h RegistryHash) String() string { return Hash(h).String() }

// ComputeRegistryHash hashes registry entries in key order.
func ComputeRegistryHash(entries map[string]interface{}) RegistryHash {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("%+v", entries[key]))
	}

	return RegistryHash(NewHash([]byte(data.String())))
}
