// Package group abstracts the elliptic-curve groups the protocol packages
// run over so that L1 sigma proofs and L2 schemes are written once against
// an interface instead of once per curve.
package group

import "io"

// Scalar is an element of a group's prime scalar field.
type Scalar interface {
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Neg() Scalar
	// Inverse returns the multiplicative inverse. ok is false iff the
	// receiver is zero.
	Inverse() (inv Scalar, ok bool)
	IsZero() bool
	Equal(Scalar) bool
	// Bytes is the fixed-width big-endian encoding of the scalar.
	Bytes() []byte
	// String is a canonical, deterministic (not necessarily decimal)
	// encoding used by the string-oriented transcript variants.
	String() string
}

// Point is an element of a group's point group (G1 for the non-pairing
// schemes and for the G1 side of the pairing schemes).
type Point interface {
	Add(Point) Point
	Sub(Point) Point
	ScalarMult(Scalar) Point
	Equal(Point) bool
	// Compress is the canonical compressed byte encoding.
	Compress() []byte
	String() string
}

// Group is a prime-order group with uniform sampling of scalars and
// points, and a way to fold a wide hash digest into a scalar for
// Fiat-Shamir challenges.
type Group interface {
	Name() string
	RandomScalar(rng io.Reader) (Scalar, error)
	RandomPoint(rng io.Reader) (Point, error)
	// ScalarFromDigest reduces an arbitrary-length hash digest modulo the
	// group order, the same operation the reference implementation calls
	// "from_be_bytes_mod_order".
	ScalarFromDigest(digest []byte) Scalar
}

// Point2 is a point in the second pairing group (G2). Only the pairing
// schemes (NTAT-Pairing, CHAC) need it.
type Point2 interface {
	Add(Point2) Point2
	Sub(Point2) Point2
	ScalarMult(Scalar) Point2
	Equal(Point2) bool
	Compress() []byte
	String() string
}

// GT is the target group of a pairing. Following the arkworks convention
// the reference source is written against, GT's group operation is
// notated additively in §4.7's equations even though the concrete
// realization (gnark-crypto's Fq12 target field) is multiplicative; Mul
// here is that group operation.
type GT interface {
	Mul(GT) GT
	Equal(GT) bool
}

// PairingGroup extends Group with a second group and a bilinear map.
type PairingGroup interface {
	Group
	RandomPoint2(rng io.Reader) (Point2, error)
	Pair(g1 Point, g2 Point2) GT
}
