package group

import (
	"bytes"
	"fmt"
	"io"

	r255 "github.com/bwesterb/go-ristretto"
)

type ristrettoGroup struct{}

// Ristretto is the L0 group oracle behind the NTAT-Ristretto variant. It is
// the reference instantiation for transcript construction (§4.1): every
// absorbed value is the point's compressed 32-byte encoding, never a
// string, matching go-ristretto's own canonical form.
var Ristretto Group = ristrettoGroup{}

func (ristrettoGroup) Name() string { return "ristretto" }

type ristrettoScalar struct {
	s r255.Scalar
}

// wideReduce reads digest as a big-endian integer and reduces it modulo
// the group order. SetReduced reads its input little-endian, so the digest
// is copied in reverse byte order; only the last 64 bytes of a longer
// digest are used.
func wideReduce(digest []byte) r255.Scalar {
	var wide [64]byte
	for i := 0; i < len(digest) && i < len(wide); i++ {
		wide[i] = digest[len(digest)-1-i]
	}
	var s r255.Scalar
	s.SetReduced(&wide)
	return s
}

func (g ristrettoGroup) RandomScalar(rng io.Reader) (Scalar, error) {
	buf := make([]byte, 64)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, err
	}
	var wide [64]byte
	copy(wide[:], buf)
	var s r255.Scalar
	s.SetReduced(&wide)
	return ristrettoScalar{s: s}, nil
}

func (g ristrettoGroup) RandomPoint(rng io.Reader) (Point, error) {
	s, err := g.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	var p r255.Point
	p.ScalarMultBase(&s.(ristrettoScalar).s)
	return ristrettoPoint{p: p}, nil
}

func (ristrettoGroup) ScalarFromDigest(digest []byte) Scalar {
	return ristrettoScalar{s: wideReduce(digest)}
}

func (s ristrettoScalar) Add(o Scalar) Scalar {
	var r r255.Scalar
	r.Add(&s.s, &o.(ristrettoScalar).s)
	return ristrettoScalar{s: r}
}

func (s ristrettoScalar) Sub(o Scalar) Scalar {
	var r r255.Scalar
	r.Sub(&s.s, &o.(ristrettoScalar).s)
	return ristrettoScalar{s: r}
}

func (s ristrettoScalar) Mul(o Scalar) Scalar {
	var r r255.Scalar
	r.Mul(&s.s, &o.(ristrettoScalar).s)
	return ristrettoScalar{s: r}
}

func (s ristrettoScalar) Neg() Scalar {
	var r r255.Scalar
	r.Neg(&s.s)
	return ristrettoScalar{s: r}
}

func (s ristrettoScalar) Inverse() (Scalar, bool) {
	if s.IsZero() {
		return nil, false
	}
	var r r255.Scalar
	r.Inverse(&s.s)
	return ristrettoScalar{s: r}, true
}

func (s ristrettoScalar) IsZero() bool {
	var zero r255.Scalar
	zero.SetZero()
	return s.s.Equals(&zero)
}

func (s ristrettoScalar) Equal(o Scalar) bool {
	os := o.(ristrettoScalar)
	return s.s.Equals(&os.s)
}

func (s ristrettoScalar) Bytes() []byte {
	b := s.s.Bytes()
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v // go-ristretto encodes little-endian; transcripts want big-endian
	}
	return out
}

func (s ristrettoScalar) String() string { return fmt.Sprintf("%x", s.s.Bytes()) }

type ristrettoPoint struct {
	p r255.Point
}

func (p ristrettoPoint) Add(o Point) Point {
	var r r255.Point
	r.Add(&p.p, &o.(ristrettoPoint).p)
	return ristrettoPoint{p: r}
}

func (p ristrettoPoint) Sub(o Point) Point {
	var r r255.Point
	r.Sub(&p.p, &o.(ristrettoPoint).p)
	return ristrettoPoint{p: r}
}

func (p ristrettoPoint) ScalarMult(s Scalar) Point {
	var r r255.Point
	r.ScalarMult(&p.p, &s.(ristrettoScalar).s)
	return ristrettoPoint{p: r}
}

func (p ristrettoPoint) Equal(o Point) bool {
	return bytes.Equal(p.Compress(), o.(ristrettoPoint).Compress())
}

func (p ristrettoPoint) Compress() []byte {
	return p.p.Bytes()
}

func (p ristrettoPoint) String() string { return fmt.Sprintf("%x", p.Compress()) }
