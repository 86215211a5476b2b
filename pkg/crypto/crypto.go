package crypto

import (
	"crypto/rand"
	"math/big"
)

const alphanumeric = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRandomCode returns a random string of alphanumeric characters,
// excluding the ones which are easily confused when read aloud (0/O, 1/l/I).
func GenerateRandomCode(n uint) string {
	return generate(alphanumeric, n)
}

func generate(charset string, n uint) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = charset[RandIntn(len(charset))]
	}
	return string(b)
}

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}
