package utils

import "github.com/google/uuid"

// GenerateID returns a time-ordered UUIDv7 string.
func GenerateID() string {
	return uuid.Must(uuid.NewV7()).String()
}
