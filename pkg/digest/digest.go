// Package digest provides stable one-way identifiers for user ids exposed
// in API responses. There is no nickname system, so comment authors are
// shown as a namespaced HMAC digest of their uid. The digest is truncated:
// it is not collision-free and is not a security boundary.
package digest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Anonymizer derives short, stable pseudonyms from user ids.
// Safe for concurrent use.
type Anonymizer struct {
	key []byte
	h   func() hash.Hash
}

// New creates an Anonymizer with the provided secret key. Pinning the key
// across processes keeps digests stable across restarts; an ephemeral key
// keeps them stable only within one process.
func New(key []byte) *Anonymizer {
	return &Anonymizer{key: append([]byte(nil), key...), h: sha256.New}
}

// tokenLen is the hex length of emitted digests (8 bytes of the mac).
const tokenLen = 16

// Author returns the pseudonym for a comment author's uid.
func (a *Anonymizer) Author(uid string) string {
	return a.derive("comment-author", uid)
}

func (a *Anonymizer) derive(namespace, id string) string {
	mac := hmac.New(a.h, a.key)
	mac.Write([]byte(namespace))
	mac.Write([]byte{0})
	mac.Write([]byte(id))
	sum := mac.Sum(nil)
	return hex.EncodeToString(sum)[:tokenLen]
}
