package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for every stored digest.
const PasswordCost = bcrypt.DefaultCost

// dummyDigest is compared against when an account does not exist so that a
// miss costs the same as a wrong password.
var dummyDigest, _ = bcrypt.GenerateFromPassword([]byte("ecoreport-timing-equalizer"), PasswordCost)

// Hash returns a salted bcrypt digest of password.
func Hash(ctx context.Context, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(digest), nil
}

// Verify reports whether password produced digest. A malformed digest is a
// mismatch, never an error.
func Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// DummyVerify burns one comparison for a login against an unknown account.
func DummyVerify(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyDigest, []byte(password))
}
