package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"golang.org/x/crypto/bcrypt"
)

const (
	oauthStateBytes = 24
	// MinPasswordLength is the shortest password CreateUser accepts.
	MinPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

// NewOAuthState returns a random URL-safe value for the OAuth state cookie and query parameter.
func NewOAuthState() (string, error) {
	b := make([]byte, oauthStateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashPassword bcrypt-hashes a new account password after checking its length.
func HashPassword(password string) (string, error) {
	switch {
	case len(strings.TrimSpace(password)) < MinPasswordLength:
		return "", fmt.Errorf("%w: password must have at least %d characters", apperrors.ErrValidation, MinPasswordLength)
	case len(password) > maxPasswordBytes:
		return "", fmt.Errorf("%w: password must have at most %d bytes", apperrors.ErrValidation, maxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether password matches hash. An empty hash never matches.
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
