package group

import (
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// secp256k1Order is the order of the secp256k1 base point (N).
var secp256k1Order, _ = new(big.Int).SetString(
	"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)

type secp256k1Group struct{}

// Secp256k1 is the L0 group oracle used by the NTAT and U-Prove schemes.
var Secp256k1 Group = secp256k1Group{}

func (secp256k1Group) Name() string { return "secp256k1" }

type secp256k1Scalar struct {
	v *big.Int
}

func newSecp256k1Scalar(v *big.Int) secp256k1Scalar {
	return secp256k1Scalar{v: new(big.Int).Mod(v, secp256k1Order)}
}

func (s secp256k1Scalar) Add(o Scalar) Scalar {
	return newSecp256k1Scalar(new(big.Int).Add(s.v, o.(secp256k1Scalar).v))
}

func (s secp256k1Scalar) Sub(o Scalar) Scalar {
	return newSecp256k1Scalar(new(big.Int).Sub(s.v, o.(secp256k1Scalar).v))
}

func (s secp256k1Scalar) Mul(o Scalar) Scalar {
	return newSecp256k1Scalar(new(big.Int).Mul(s.v, o.(secp256k1Scalar).v))
}

func (s secp256k1Scalar) Neg() Scalar {
	return newSecp256k1Scalar(new(big.Int).Neg(s.v))
}

func (s secp256k1Scalar) Inverse() (Scalar, bool) {
	if s.v.Sign() == 0 {
		return nil, false
	}
	return newSecp256k1Scalar(new(big.Int).ModInverse(s.v, secp256k1Order)), true
}

func (s secp256k1Scalar) IsZero() bool { return s.v.Sign() == 0 }

func (s secp256k1Scalar) Equal(o Scalar) bool {
	return s.v.Cmp(o.(secp256k1Scalar).v) == 0
}

func (s secp256k1Scalar) Bytes() []byte {
	var out [32]byte
	s.v.FillBytes(out[:])
	return out[:]
}

func (s secp256k1Scalar) String() string { return s.v.Text(16) }

func (secp256k1Group) modNFromBytes(b []byte) (secp256k1.ModNScalar, error) {
	var k secp256k1.ModNScalar
	var arr [32]byte
	if len(b) > 32 {
		return k, fmt.Errorf("secp256k1: scalar too long: %d bytes", len(b))
	}
	copy(arr[32-len(b):], b)
	k.SetBytes(&arr)
	return k, nil
}

func (g secp256k1Group) RandomScalar(rng io.Reader) (Scalar, error) {
	buf := make([]byte, 48) // wide sample, reduced mod N to flatten bias
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(buf)
	return newSecp256k1Scalar(v), nil
}

func (g secp256k1Group) RandomPoint(rng io.Reader) (Point, error) {
	s, err := g.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	return g.basePoint().ScalarMult(s), nil
}

func (g secp256k1Group) ScalarFromDigest(digest []byte) Scalar {
	return newSecp256k1Scalar(new(big.Int).SetBytes(digest))
}

type secp256k1Point struct {
	j secp256k1.JacobianPoint
}

func (secp256k1Group) basePoint() Point {
	var j secp256k1.JacobianPoint
	one := new(secp256k1.ModNScalar).SetInt(1)
	secp256k1.ScalarBaseMultNonConst(one, &j)
	j.ToAffine()
	return secp256k1Point{j: j}
}

func toModN(s Scalar) secp256k1.ModNScalar {
	k, err := secp256k1Group{}.modNFromBytes(s.Bytes())
	if err != nil {
		panic(err)
	}
	return k
}

func (p secp256k1Point) Add(o Point) Point {
	var r secp256k1.JacobianPoint
	op := o.(secp256k1Point).j
	secp256k1.AddNonConst(&p.j, &op, &r)
	r.ToAffine()
	return secp256k1Point{j: r}
}

func (p secp256k1Point) Sub(o Point) Point {
	op := o.(secp256k1Point).j
	var neg secp256k1.JacobianPoint
	neg.X.Set(&op.X)
	neg.Y.Set(&op.Y)
	neg.Z.Set(&op.Z)
	neg.Y.Negate(1)
	neg.Y.Normalize()
	var r secp256k1.JacobianPoint
	secp256k1.AddNonConst(&p.j, &neg, &r)
	r.ToAffine()
	return secp256k1Point{j: r}
}

func (p secp256k1Point) ScalarMult(s Scalar) Point {
	k := toModN(s)
	var r secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&k, &p.j, &r)
	r.ToAffine()
	return secp256k1Point{j: r}
}

func (p secp256k1Point) Equal(o Point) bool {
	op := o.(secp256k1Point).j
	return p.j.X.Equals(&op.X) && p.j.Y.Equals(&op.Y)
}

func (p secp256k1Point) Compress() []byte {
	pk := secp256k1.NewPublicKey(&p.j.X, &p.j.Y)
	return pk.SerializeCompressed()
}

func (p secp256k1Point) String() string {
	sum := sha256.Sum256(p.Compress())
	return fmt.Sprintf("%x", sum)
}
