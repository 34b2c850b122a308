// Package auth implements the credentials subsystem: password hashing and
// strength scoring, opaque refresh tokens, and the login/refresh flow
// layered on top of internal/shared/jwt's access-token primitive. It is an
// external collaborator to the collection index engine and background
// processing pipeline, not part of their core.
package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/collectionvault/index-engine/internal/shared"
)

const (
	bcryptCost    = 12
	minPasswordLen = 8
	maxPasswordLen = 128
)

var weakPatterns = []string{"123", "abc", "qwe", "asd", "zxc", "password", "admin", "user", "test"}

// HashPassword hashes password at the fixed cost factor after validating
// its length falls within [8, 128].
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return "", shared.NewFieldError(shared.ErrInvalidInput, "password", "password must be between 8 and 128 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ScoreStrength scores password 0-100: length and character-variety
// credits, minus penalties for repeating triples, ascending-letter
// triples, and known weak substrings.
func ScoreStrength(password string) int {
	score := 0

	length := len(password)
	switch {
	case length >= 16:
		score += 40
	case length >= 12:
		score += 30
	case length >= 8:
		score += 20
	default:
		score += length * 2
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	for _, present := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if present {
			score += 15
		}
	}

	if hasRepeatingTriple(password) {
		score -= 5
	}
	if hasAscendingLetterTriple(password) {
		score -= 5
	}

	lower := strings.ToLower(password)
	for _, pattern := range weakPatterns {
		if strings.Contains(lower, pattern) {
			score -= 10
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func hasRepeatingTriple(s string) bool {
	for i := 0; i+2 < len(s); i++ {
		if s[i] == s[i+1] && s[i+1] == s[i+2] {
			return true
		}
	}
	return false
}

func hasAscendingLetterTriple(s string) bool {
	lower := strings.ToLower(s)
	for i := 0; i+2 < len(lower); i++ {
		a, b, c := lower[i], lower[i+1], lower[i+2]
		if a < 'a' || a > 'z' || b < 'a' || b > 'z' || c < 'a' || c > 'z' {
			continue
		}
		if b == a+1 && c == b+1 {
			return true
		}
	}
	return false
}
