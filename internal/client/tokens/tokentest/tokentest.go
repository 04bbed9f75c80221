// Package tokentest mints signed test JWTs for packages that need
// access tokens with a controlled expiry.
package tokentest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testKey = []byte("edachat-test-key")

// Issue returns an HS256 token for sub that expires at exp.
func Issue(t testing.TB, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString(testKey)
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return s
}

// Valid returns a token that stays valid for an hour.
func Valid(t testing.TB) string {
	return Issue(t, "tester", time.Now().Add(time.Hour))
}

// Expired returns a token that expired ten seconds ago.
func Expired(t testing.TB) string {
	return Issue(t, "tester", time.Now().Add(-10*time.Second))
}
