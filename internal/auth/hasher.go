package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported hasher names (config key auth.hasher).
const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

var (
	ErrEmptyPassword = errors.New("password is empty")
	ErrInvalidHash   = errors.New("invalid password hash")
)

// Hasher produces and checks one-way password digests.
// Digests are self-describing: algorithm, parameters and salt travel inside the string.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// NewHasher returns the hasher registered under name. Verification of either
// digest format works regardless of which hasher produced new digests.
func NewHasher(name string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", HasherBcrypt:
		return &multiHasher{primary: &BcryptHasher{Cost: bcrypt.DefaultCost}}, nil
	case HasherArgon2id:
		return &multiHasher{primary: &Argon2idHasher{}}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// multiHasher hashes with primary and verifies any known digest format,
// so switching auth.hasher does not lock out existing users.
type multiHasher struct {
	primary Hasher
}

func (m *multiHasher) Hash(password string) (string, error) {
	return m.primary.Hash(password)
}

func (m *multiHasher) Verify(password, digest string) bool {
	if strings.HasPrefix(digest, argon2idPrefix) {
		return (&Argon2idHasher{}).Verify(password, digest)
	}
	return (&BcryptHasher{}).Verify(password, digest)
}

// bcrypt ignores input past 72 bytes and x/crypto rejects it outright.
const bcryptMaxBytes = 72

// prehashPrefix marks a bcrypt digest computed over base64(sha256(password)).
const prehashPrefix = "$sha256$"

// BcryptHasher stores digests in the standard $2a$ modular crypt format.
// Passwords longer than 72 bytes are pre-hashed with SHA-256 and the digest
// carries prehashPrefix in front of the bcrypt string.
type BcryptHasher struct {
	Cost int
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	input, prefix := []byte(password), ""
	if len(input) > bcryptMaxBytes {
		input, prefix = prehash(password), prehashPrefix
	}
	hash, err := bcrypt.GenerateFromPassword(input, cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return prefix + string(hash), nil
}

// Verify never returns an error: a malformed digest simply does not match.
func (h *BcryptHasher) Verify(password, digest string) bool {
	input := []byte(password)
	if rest, ok := strings.CutPrefix(digest, prehashPrefix); ok {
		input, digest = prehash(password), rest
	} else if len(input) > bcryptMaxBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), input) == nil
}

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.RawStdEncoding.EncodedLen(len(sum)))
	base64.RawStdEncoding.Encode(out, sum[:])
	return out
}

// argon2id parameters (OWASP baseline).
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32

	argon2idPrefix = "$argon2id$"
)

// Argon2idHasher encodes digests in PHC string format:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
type Argon2idHasher struct{}

func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(password, digest string) bool {
	p, err := parseArgon2id(digest)
	if err != nil {
		return false
	}
	computed := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(computed, p.key) == 1
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parseArgon2id(digest string) (argon2Params, error) {
	var p argon2Params

	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, ErrInvalidHash
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &threads); err != nil {
		return p, ErrInvalidHash
	}
	if threads == 0 || threads > 255 {
		return p, ErrInvalidHash
	}
	p.threads = uint8(threads)

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return p, ErrInvalidHash
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) == 0 {
		return p, ErrInvalidHash
	}
	return p, nil
}
