// Package chatsession carries the signed-chat chain-of-trust token that
// rides along with a tab list entry. Verifying the Mojang session-server
// signature happens during the login handshake, which is out of scope
// here; this package only carries the already-identified key through to
// the wire.
package chatsession

import (
	"time"

	"go.minekube.com/veloxy/pkg/uuid"
)

// IdentifiedKey is a session-server cross-signed, dated public key.
type IdentifiedKey struct {
	PublicKey []byte
	Signature []byte
	Expiry    time.Time
}

// Expired reports whether the key's signature has expired.
func (k *IdentifiedKey) Expired() bool {
	return k == nil || time.Now().After(k.Expiry)
}

// ChatSession identifies the chain-of-trust token for one player's
// signed chat messages.
type ChatSession struct {
	ID  uuid.UUID
	Key *IdentifiedKey
}

// Equal reports whether two chat sessions carry the same session id and key.
func Equal(a, b *ChatSession) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.ID != b.ID {
		return false
	}
	return keyEqual(a.Key, b.Key)
}

func keyEqual(a, b *IdentifiedKey) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Expiry.Equal(b.Expiry) &&
		string(a.PublicKey) == string(b.PublicKey) &&
		string(a.Signature) == string(b.Signature)
}
