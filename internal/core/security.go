// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// ErrBadPasswordHash means a stored hash could not be parsed.
var ErrBadPasswordHash = errors.New("malformed password hash")

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var currentArgon = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

const (
	saltLength         = 16
	refreshTokenLength = 32
)

func (p argonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

// HashPassword encodes an argon2id hash in the PHC string format.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	p := currentArgon
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(p.derive(password, salt)),
	), nil
}

func VerifyPassword(password, encodedHash string) (bool, error) {
	p, salt, key, err := parseHash(encodedHash)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(key, p.derive(password, salt)) == 1, nil
}

var decoyHash = sync.OnceValue(func() string {
	//nolint:errcheck // rand.Read does not fail on supported platforms
	h, _ := HashPassword("decoy password for unknown accounts")
	return h
})

// CheckPassword verifies password against encodedHash. An empty hash is
// checked against a decoy so unknown accounts cost the same as known ones,
// and always fails. When the stored hash uses outdated parameters and the
// password matches, upgraded holds a fresh hash to persist.
func CheckPassword(password, encodedHash string) (ok bool, upgraded string, err error) {
	if encodedHash == "" {
		//nolint:errcheck // result is discarded on purpose
		_, _ = VerifyPassword(password, decoyHash())
		return false, "", nil
	}

	ok, err = VerifyPassword(password, encodedHash)
	if err != nil || !ok {
		return false, "", err
	}

	if p, _, _, parseErr := parseHash(encodedHash); parseErr == nil && p != currentArgon {
		if h, hashErr := HashPassword(password); hashErr == nil {
			upgraded = h
		}
	}

	return true, upgraded, nil
}

func parseHash(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrBadPasswordHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil ||
		version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: version %q", ErrBadPasswordHash, parts[2])
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: params: %w", ErrBadPasswordHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %w", ErrBadPasswordHash, err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: key: %w", ErrBadPasswordHash, err)
	}

	//nolint:gosec // G115: argon2 keys are tens of bytes
	p.keyLen = uint32(len(key))

	return p, salt, key, nil
}

// NewRefreshToken returns an opaque URL-safe token. Only its HashToken
// digest is ever stored.
func NewRefreshToken() (string, error) {
	b := make([]byte, refreshTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
