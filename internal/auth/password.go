package auth

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"
	"hash"

	"golang.org/x/crypto/pbkdf2"
)

// KDF defaults. Iterations and algorithm are configurable per deployment;
// the salt length is not.
const (
	DefaultIterations = 100000
	DefaultAlgorithm  = "sha256"
	saltLength        = 16
)

// PasswordHash is a salted, iterated PBKDF2 digest of a password. Fields are
// exported so the hash survives database snapshots; it never appears in JSON.
type PasswordHash struct {
	Hash       []byte
	Salt       []byte
	Iterations int
	Algorithm  string
}

// NewPasswordHash derives a hash for the password with a fresh random salt.
func NewPasswordHash(password string, iterations int, algorithm string) (PasswordHash, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	h, err := hashFunc(algorithm)
	if err != nil {
		return PasswordHash{}, err
	}
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return PasswordHash{}, fmt.Errorf("auth: generate salt: %w", err)
	}
	return PasswordHash{
		Hash:       pbkdf2.Key([]byte(password), salt, iterations, h().Size(), h),
		Salt:       salt,
		Iterations: iterations,
		Algorithm:  algorithm,
	}, nil
}

// Equal re-derives the key from password using the stored parameters and
// compares in constant time. This is the CPU-expensive path; callers on a
// request path should go through Hasher.Compare instead.
func (p PasswordHash) Equal(password string) bool {
	h, err := hashFunc(p.Algorithm)
	if err != nil {
		return false
	}
	derived := pbkdf2.Key([]byte(password), p.Salt, p.Iterations, len(p.Hash), h)
	return subtle.ConstantTimeCompare(derived, p.Hash) == 1
}

func hashFunc(algorithm string) (func() hash.Hash, error) {
	switch algorithm {
	case "sha1":
		return sha1.New, nil
	case "sha256":
		return sha256.New, nil
	case "sha512":
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("auth: unsupported hash algorithm %q", algorithm)
	}
}
