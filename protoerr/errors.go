// Package protoerr names the three failure kinds every scheme's core can
// raise above the core's own total (zero, false) verification functions.
package protoerr

import "github.com/pkg/errors"

var (
	// ErrInvalidProof means a sigma-proof verification failed.
	ErrInvalidProof = errors.New("protoerr: invalid proof")
	// ErrInvalidPairing means a pairing-equation check failed in CHAC or
	// NTAT-Pairing.
	ErrInvalidPairing = errors.New("protoerr: invalid pairing")
	// ErrInvalidToken means a redemption proof failed its structural check
	// (sigma' != sigma * sk_s, or the scheme-specific equivalent).
	ErrInvalidToken = errors.New("protoerr: invalid token")
)

// Wrap annotates err with msg and a stack trace using pkg/errors; the
// wrapped sentinel still matches under errors.Is.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}
