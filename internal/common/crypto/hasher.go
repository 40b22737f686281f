package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/AlibekovAA/chat-accounts/internal/common/constants"
)

type PasswordHasher interface {
	Hash(password string) (hash string, salt string, err error)
	Verify(password, hash, salt string) bool
}

type Argon2Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
	SaltLen   int
}

func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:      constants.DefaultArgon2Time,
		MemoryKiB: constants.DefaultArgon2Memory,
		Threads:   constants.DefaultArgon2Threads,
		KeyLen:    constants.DefaultArgon2KeyLen,
		SaltLen:   constants.Argon2SaltSize,
	}
}

// Argon2Hasher derives Argon2id keys. Hash and salt are stored as raw
// (unpadded) standard base64.
type Argon2Hasher struct {
	params Argon2Params
}

func NewArgon2Hasher(params Argon2Params) *Argon2Hasher {
	if params.SaltLen <= 0 {
		params.SaltLen = constants.Argon2SaltSize
	}
	if params.KeyLen == 0 {
		params.KeyLen = constants.DefaultArgon2KeyLen
	}
	return &Argon2Hasher{params: params}
}

func (h *Argon2Hasher) Hash(password string) (string, string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}

	key := h.derive(password, salt)
	return encode(key), encode(salt), nil
}

func (h *Argon2Hasher) Verify(password, hash, salt string) bool {
	expected, err := decode(hash)
	if err != nil || len(expected) == 0 {
		return false
	}
	rawSalt, err := decode(salt)
	if err != nil || len(rawSalt) == 0 {
		return false
	}

	actual := argon2.IDKey([]byte(password), rawSalt, h.params.Time, h.params.MemoryKiB, h.params.Threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(expected, actual) == 1
}

func (h *Argon2Hasher) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, h.params.KeyLen)
}

func encode(b []byte) string {
	return base64.RawStdEncoding.EncodeToString(b)
}

func decode(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(s)
}
