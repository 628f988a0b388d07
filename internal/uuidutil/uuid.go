package uuidutil

import (
	"github.com/google/uuid"
)

// NewString generates a random (version 4) UUID in its canonical string form.
func NewString() string {
	return uuid.NewString()
}

// IsValid checks if a string is a valid UUID format
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Normalize parses s and returns its canonical lower-case form.
func Normalize(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
