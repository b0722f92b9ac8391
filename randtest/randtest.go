// Package randtest provides a deterministic, seeded RNG for the seeded
// test scenarios (S1-S6) and the CLI demo. The protocol core never uses
// this package itself — per the concurrency model, randomness is always
// supplied by the caller as an opaque io.Reader, and this is simply one
// concrete caller-supplied reader.
package randtest

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

// Deterministic expands seed into a ChaCha20 keystream and returns it as an
// io.Reader, so the same seed always reproduces the same sequence of
// sampled scalars and points across runs.
func Deterministic(seed uint64) *Reader {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	var nonce [12]byte
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		// key/nonce are fixed-size local arrays; only a library bug could
		// make this fail.
		panic(err)
	}
	return &Reader{cipher: c}
}

// Reader is an io.Reader backed by a ChaCha20 keystream.
type Reader struct {
	cipher *chacha20.Cipher
}

func (r *Reader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	r.cipher.XORKeyStream(p, p)
	return len(p), nil
}
