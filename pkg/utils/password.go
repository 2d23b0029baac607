package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 255
)

var ErrMalformedHash = errors.New("malformed argon2id hash")

type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params follows the OWASP baseline for argon2id.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  4,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Argon2Hasher hashes secrets into PHC-formatted argon2id strings.
type Argon2Hasher struct {
	params Argon2Params
}

func NewArgon2Hasher(params Argon2Params) *Argon2Hasher {
	if params.SaltLength == 0 {
		params.SaltLength = DefaultArgon2Params.SaltLength
	}
	if params.KeyLength == 0 {
		params.KeyLength = DefaultArgon2Params.KeyLength
	}
	if params.Parallelism == 0 {
		params.Parallelism = 1
	}
	return &Argon2Hasher{params: params}
}

func (h *Argon2Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches the encoded hash. The parameters
// embedded in the hash are used, so hashes survive parameter changes.
func (h *Argon2Hasher) Verify(plaintext, encoded string) bool {
	params, salt, key, err := decodeArgon2Hash(encoded)
	if err != nil {
		return false
	}

	other := argon2.IDKey([]byte(plaintext), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)
	return subtle.ConstantTimeCompare(key, other) == 1
}

func decodeArgon2Hash(encoded string) (Argon2Params, []byte, []byte, error) {
	var params Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return params, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, ErrMalformedHash
	}
	if version != argon2.Version {
		return params, nil, nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedHash, version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return params, nil, nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return params, nil, nil, ErrMalformedHash
	}
	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))

	return params, salt, key, nil
}

// compromisedPasswords is a short list of the most common leaked passwords of
// acceptable length.
var compromisedPasswords = map[string]struct{}{
	"12345678":   {},
	"123456789":  {},
	"1234567890": {},
	"87654321":   {},
	"11111111":   {},
	"00000000":   {},
	"password":   {},
	"password1":  {},
	"password!":  {},
	"passw0rd":   {},
	"p@ssw0rd":   {},
	"qwerty123":  {},
	"qwertyuiop": {},
	"1q2w3e4r":   {},
	"1qaz2wsx":   {},
	"zaq12wsx":   {},
	"iloveyou":   {},
	"iloveyou1":  {},
	"sunshine":   {},
	"princess":   {},
	"football":   {},
	"baseball":   {},
	"superman":   {},
	"starwars":   {},
	"trustno1":   {},
	"whatever":   {},
	"welcome1":   {},
	"letmein1":   {},
	"abc12345":   {},
	"abcd1234":   {},
	"asdfghjkl":  {},
	"qazwsxedc":  {},
	"michelle":   {},
	"jennifer":   {},
	"computer":   {},
	"internet":   {},
	"changeme":   {},
	"admin123":   {},
}

// IsCompromisedPassword reports whether the password appears in the
// known-compromised list. Comparison is case-insensitive.
func IsCompromisedPassword(password string) bool {
	_, found := compromisedPasswords[strings.ToLower(password)]
	return found
}
