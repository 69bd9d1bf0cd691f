package shared

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns prefix followed by 32 lowercase hex characters.
func NewID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}
