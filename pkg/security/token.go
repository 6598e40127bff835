package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// InvitationTokenBytes is the entropy of a team invitation token before hex encoding.
const InvitationTokenBytes = 32

// GenerateToken returns n random bytes hex-encoded.
func GenerateToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token length must be positive")
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateInvitationToken returns a 64 character hex token for team invitations.
func GenerateInvitationToken() (string, error) {
	return GenerateToken(InvitationTokenBytes)
}
