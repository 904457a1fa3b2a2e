package user

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/apperr"
)

// PasswordHasher defines minimal hashing interface.
type PasswordHasher interface {
	Hash(pw string) (stored string, err error)
	Verify(stored, pw string) bool
}

// PBKDF2 parameters. Changing any of them invalidates every stored hash.
const (
	pbkdf2Iterations = 1000
	pbkdf2KeyLen     = 64
	saltBytes        = 16
)

// Pbkdf2Hasher derives PBKDF2-SHA512 keys and stores them as "salt:key",
// both hex encoded. The hex salt text itself is the KDF salt input.
type Pbkdf2Hasher struct{}

func (Pbkdf2Hasher) Hash(pw string) (string, error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	salt := hex.EncodeToString(raw)
	key := pbkdf2.Key([]byte(pw), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
	return salt + ":" + hex.EncodeToString(key), nil
}

func (Pbkdf2Hasher) Verify(stored, pw string) bool {
	salt, keyHex, ok := strings.Cut(stored, ":")
	if !ok || salt == "" || keyHex == "" {
		return false
	}
	want, err := hex.DecodeString(keyHex)
	if err != nil || len(want) != pbkdf2KeyLen {
		return false
	}
	got := pbkdf2.Key([]byte(pw), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// passwordSymbols is the only punctuation accepted in passwords.
const passwordSymbols = "@$!%*?&"

const passwordPolicyMessage = "Password must be at least 8 characters long, include at least one uppercase letter, one lowercase letter, one number, and one special character"

// ValidatePassword applies the signup policy: at least 8 characters drawn
// from ASCII letters, digits and passwordSymbols, with one of each class.
func ValidatePassword(pw string) error {
	var lower, upper, digit, symbol bool
	for _, c := range pw {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, c):
			symbol = true
		default:
			return apperr.New(apperr.InvalidInput, "password", passwordPolicyMessage)
		}
	}
	if utf8.RuneCountInString(pw) < 8 || !lower || !upper || !digit || !symbol {
		return apperr.New(apperr.InvalidInput, "password", passwordPolicyMessage)
	}
	return nil
}
