package users

import (
	"crypto/rand"
	"errors"
	"math/big"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// GeneratedPasswordLength is the length of provisioning credentials
const GeneratedPasswordLength = 12

// passwordAlphabet excludes characters that are easy to misread when the
// credential is mailed to a user (0/O, 1/l/I).
const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const passwordSpecials = "!#%+:=?@"

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// GeneratePassword produces a random printable secret for provisioning flows
// where the account owner did not supply one. The secret is mailed once and
// never persisted in plaintext.
func GeneratePassword(length int, allowSpecials bool) (string, error) {
	if length <= 0 {
		length = GeneratedPasswordLength
	}

	alphabet := passwordAlphabet
	if allowSpecials {
		alphabet += passwordSpecials
	}

	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate credential")
		}
		buf[i] = alphabet[n.Int64()]
	}

	return string(buf), nil
}

// GenerateUUID returns a new random identifier in string form
func GenerateUUID() string {
	return uuid.NewString()
}
