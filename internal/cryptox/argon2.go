// Package cryptox implements one-way hashing of account passwords and stored
// service secrets.
//
// Hashes are argon2id digests encoded in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<digest>
//
// The parameters travel with each hash, so they can be raised later without
// invalidating existing rows.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithm = "argon2id"
	saltSize  = 16

	minMemoryKiB uint32 = 8 * 1024
	minKeyLength uint32 = 16
)

var (
	// ErrProcessing reports a failure of the hashing primitive itself.
	ErrProcessing = errors.New("hash processing failed")
	// ErrVerification reports a stored hash that cannot be parsed.
	ErrVerification = errors.New("malformed stored hash")
)

// Params are the argon2id cost parameters.
type Params struct {
	MemoryKiB uint32
	Time      uint32
	Threads   uint8
	KeyLength uint32
}

// DefaultParams follow the RFC 9106 second recommended option.
func DefaultParams() Params {
	return Params{MemoryKiB: 64 * 1024, Time: 3, Threads: 4, KeyLength: 32}
}

// Argon2Hasher hashes and verifies secrets. It is safe for concurrent use.
type Argon2Hasher struct {
	params Params
	rand   io.Reader
}

// NewArgon2Hasher validates p and returns a hasher using it for new hashes.
func NewArgon2Hasher(p Params) (*Argon2Hasher, error) {
	switch {
	case p.MemoryKiB < minMemoryKiB:
		return nil, fmt.Errorf("argon2 memory must be >= %d KiB", minMemoryKiB)
	case p.Time < 1:
		return nil, errors.New("argon2 time must be >= 1")
	case p.Threads < 1:
		return nil, errors.New("argon2 threads must be >= 1")
	case p.KeyLength < minKeyLength:
		return nil, fmt.Errorf("argon2 key length must be >= %d", minKeyLength)
	}
	return &Argon2Hasher{params: p, rand: rand.Reader}, nil
}

// Hash returns a salted argon2id hash of plaintext. Hashing the same input
// twice yields different strings, both of which verify.
func (h *Argon2Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProcessing, err)
	}

	p := h.params
	digest := argon2.IDKey([]byte(plaintext), salt, p.Time, p.MemoryKiB, p.Threads, p.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithm, argon2.Version, p.MemoryKiB, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify reports whether plaintext matches hashed. A mismatch is not an
// error; only a hash that cannot be parsed returns ErrVerification.
func (h *Argon2Hasher) Verify(hashed, plaintext string) (bool, error) {
	p, salt, digest, err := decode(hashed)
	if err != nil {
		return false, err
	}
	candidate := argon2.IDKey([]byte(plaintext), salt, p.Time, p.MemoryKiB, p.Threads, uint32(len(digest)))
	return subtle.ConstantTimeCompare(candidate, digest) == 1, nil
}

func decode(hashed string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(hashed, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithm {
		return p, nil, nil, fmt.Errorf("%w: unexpected format", ErrVerification)
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return p, nil, nil, fmt.Errorf("%w: unsupported version", ErrVerification)
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Time, &threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: bad parameters", ErrVerification)
	}
	if p.MemoryKiB == 0 || p.Time == 0 || threads == 0 || threads > 255 {
		return p, nil, nil, fmt.Errorf("%w: bad parameters", ErrVerification)
	}
	p.Threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, fmt.Errorf("%w: bad salt", ErrVerification)
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(digest) == 0 {
		return p, nil, nil, fmt.Errorf("%w: bad digest", ErrVerification)
	}
	p.KeyLength = uint32(len(digest))

	return p, salt, digest, nil
}
