package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/perfumekeeper/internal/common"
)

// passwordCost is the bcrypt work factor. Tests lower it through the package
// variable to keep them fast.
var passwordCost = bcrypt.DefaultCost

// HashPassword returns a salted bcrypt digest of secret. The salt lives
// inside the digest, so nothing else has to be stored.
func HashPassword(secret string) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("%w: password cannot be empty", common.ErrValidation)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(secret), passwordCost)
	if err != nil {
		// bcrypt only refuses input it cannot hash, such as secrets over 72 bytes.
		return "", fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	return string(digest), nil
}

// PasswordMatches reports whether secret hashes to digest. Empty input and
// malformed digests yield false rather than an error.
func PasswordMatches(secret, digest string) bool {
	if secret == "" || digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
