package pkg

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateSessionID - generates a new opaque session id.
func GenerateSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GenerateToken - generates a new session token handed out to clients.
func GenerateToken() string {
	return uuid.NewString()
}
