package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// inviteTokenBytes gives 256 bits of entropy per token
const inviteTokenBytes = 32

// NewInviteToken generates a cryptographically unguessable, URL-safe
// invitation token
func NewInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
