package session

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns a random session id: 32 lowercase hex characters,
// safe to embed in a file name.
func GenerateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
