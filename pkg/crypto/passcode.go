package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/nacl/secretbox"
)

var ErrCannotOpen = errors.New("cannot open sealed data")

// HashPasscode returns the bcrypt digest of passcode.
func HashPasscode(passcode string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}

	b, err := bcrypt.GenerateFromPassword([]byte(passcode), cost)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// ComparePasscode reports whether passcode matches digest. The comparison
// runs in constant time with respect to the passcode.
func ComparePasscode(digest, passcode string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(passcode)) == nil
}

// Sealer encrypts small secrets with a key derived from a server secret.
type Sealer struct {
	key [32]byte
}

func NewSealer(secret string) *Sealer {
	return &Sealer{key: sha256.Sum256([]byte(secret))}
}

// Seal encrypts plain and returns it base64 encoded with the nonce prepended.
func (s *Sealer) Seal(plain string) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}

	sealed := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *Sealer) Open(sealed string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}

	if len(b) < 24 {
		return "", ErrCannotOpen
	}

	var nonce [24]byte
	copy(nonce[:], b[:24])
	plain, ok := secretbox.Open(nil, b[24:], &nonce, &s.key)
	if !ok {
		return "", ErrCannotOpen
	}

	return string(plain), nil
}
