// Package primitives provides canonical key derivation for shared state.
package primitives

import (
	"encoding/hex"
	"slices"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// KeySize is the digest size of a CanonicalKey in bytes.
const KeySize = blake2b.Size256

// CanonicalKey identifies a field multiset independent of input order.
type CanonicalKey [KeySize]byte

// ComputeKey derives the CanonicalKey for fields.
// Canonical forms are sorted, each is written as "<len>:<form>" and the
// concatenation is hashed with BLAKE2b-256. The length prefix keeps the
// encoding injective for any text payload, so no delimiter can be forged.
// The empty field list has a valid, stable key.
func ComputeKey(fields []Scalar) CanonicalKey {
	forms := make([]string, len(fields))
	for i, f := range fields {
		forms[i] = f.Canonical()
	}
	slices.Sort(forms)

	// blake2b.New256 only fails for oversized keys; nil key cannot fail.
	h, _ := blake2b.New256(nil)
	var buf []byte
	for _, form := range forms {
		buf = strconv.AppendInt(buf[:0], int64(len(form)), 10)
		buf = append(buf, ':')
		buf = append(buf, form...)
		h.Write(buf)
	}

	var key CanonicalKey
	h.Sum(key[:0])
	return key
}

// String renders the key as lowercase hex.
func (k CanonicalKey) String() string {
	return hex.EncodeToString(k[:])
}

// Short returns the first 8 hex characters, for logs and summaries.
func (k CanonicalKey) Short() string {
	return hex.EncodeToString(k[:4])
}

// MarshalText implements encoding.TextMarshaler.
func (k CanonicalKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
