// Package password hashes and verifies user passwords with argon2id.
package password

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
	saltLen = 16
	keyLen  = 32
)

var ErrMalformedHash = errors.New("malformed password hash")

// Hasher derives argon2id hashes with fixed cost parameters.
type Hasher struct {
	Time   uint32
	MemKiB uint32
	Par    uint8
}

// NewHasher returns a Hasher, filling zero parameters with sane defaults.
func NewHasher(time, memKiB uint32, par uint8) *Hasher {
	if time == 0 {
		time = 1
	}
	if memKiB == 0 {
		memKiB = 64 * 1024
	}
	if par == 0 {
		par = 4
	}
	return &Hasher{Time: time, MemKiB: memKiB, Par: par}
}

// Hash returns an encoded hash in the form
// $argon2id$v=19$m=<mem>,t=<time>,p=<par>$<salt>$<key>.
func (h *Hasher) Hash(raw string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(raw), salt, h.Time, h.MemKiB, h.Par, keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.MemKiB, h.Time, h.Par,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether raw matches the encoded hash. Parameters are read
// from the encoded value, so hashes made with older settings still verify.
func (h *Hasher) Verify(raw, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrMalformedHash
	}

	var mem, time uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &time, &par); err != nil {
		return false, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, ErrMalformedHash
	}

	got := argon2.IDKey([]byte(raw), salt, time, mem, par, uint32(len(want)))

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
