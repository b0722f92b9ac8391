package group

import (
	"fmt"
	"io"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

type bls12381Group struct{}

// BLS12381 is the L0 pairing group oracle behind NTAT-Pairing and CHAC.
var BLS12381 PairingGroup = bls12381Group{}

func (bls12381Group) Name() string { return "bls12-381" }

func scalarFromWideBytes(buf []byte) fr.Element {
	bi := new(big.Int).SetBytes(buf)
	var e fr.Element
	e.SetBigInt(bi)
	return e
}

func (g bls12381Group) RandomScalar(rng io.Reader) (Scalar, error) {
	buf := make([]byte, 64)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, err
	}
	return blsScalar{e: scalarFromWideBytes(buf)}, nil
}

func (g bls12381Group) ScalarFromDigest(digest []byte) Scalar {
	return blsScalar{e: scalarFromWideBytes(digest)}
}

func g1Generator() bls12381.G1Affine {
	_, _, g1aff, _ := bls12381.Generators()
	return g1aff
}

func g2Generator() bls12381.G2Affine {
	_, _, _, g2aff := bls12381.Generators()
	return g2aff
}

func (g bls12381Group) RandomPoint(rng io.Reader) (Point, error) {
	s, err := g.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	gen := g1Generator()
	return blsG1{a: scalarMulG1(gen, s.(blsScalar))}, nil
}

func (g bls12381Group) RandomPoint2(rng io.Reader) (Point2, error) {
	s, err := g.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	gen := g2Generator()
	return blsG2{a: scalarMulG2(gen, s.(blsScalar))}, nil
}

func (bls12381Group) Pair(p1 Point, p2 Point2) GT {
	a := p1.(blsG1).a
	b := p2.(blsG2).a
	res, err := bls12381.Pair([]bls12381.G1Affine{a}, []bls12381.G2Affine{b})
	if err != nil {
		panic(err)
	}
	return blsGT{e: res}
}

type blsScalar struct {
	e fr.Element
}

func (s blsScalar) Add(o Scalar) Scalar {
	var r fr.Element
	r.Add(&s.e, &o.(blsScalar).e)
	return blsScalar{e: r}
}

func (s blsScalar) Sub(o Scalar) Scalar {
	var r fr.Element
	r.Sub(&s.e, &o.(blsScalar).e)
	return blsScalar{e: r}
}

func (s blsScalar) Mul(o Scalar) Scalar {
	var r fr.Element
	r.Mul(&s.e, &o.(blsScalar).e)
	return blsScalar{e: r}
}

func (s blsScalar) Neg() Scalar {
	var r fr.Element
	r.Neg(&s.e)
	return blsScalar{e: r}
}

func (s blsScalar) Inverse() (Scalar, bool) {
	if s.IsZero() {
		return nil, false
	}
	var r fr.Element
	r.Inverse(&s.e)
	return blsScalar{e: r}, true
}

func (s blsScalar) IsZero() bool { return s.e.IsZero() }

func (s blsScalar) Equal(o Scalar) bool { return s.e.Equal(&o.(blsScalar).e) }

func (s blsScalar) Bytes() []byte {
	b := s.e.Bytes()
	return b[:]
}

func (s blsScalar) String() string { return s.e.String() }

func (s blsScalar) bigInt() *big.Int {
	var bi big.Int
	s.e.BigInt(&bi)
	return &bi
}

type blsG1 struct {
	a bls12381.G1Affine
}

func scalarMulG1(base bls12381.G1Affine, s blsScalar) bls12381.G1Affine {
	var j bls12381.G1Jac
	j.ScalarMultiplication(&base, s.bigInt())
	var out bls12381.G1Affine
	out.FromJacobian(&j)
	return out
}

func (p blsG1) Add(o Point) Point {
	var j, oj bls12381.G1Jac
	j.FromAffine(&p.a)
	oj.FromAffine(&o.(blsG1).a)
	j.AddAssign(&oj)
	var out bls12381.G1Affine
	out.FromJacobian(&j)
	return blsG1{a: out}
}

func (p blsG1) Sub(o Point) Point {
	var j, oj bls12381.G1Jac
	j.FromAffine(&p.a)
	oj.FromAffine(&o.(blsG1).a)
	j.SubAssign(&oj)
	var out bls12381.G1Affine
	out.FromJacobian(&j)
	return blsG1{a: out}
}

func (p blsG1) ScalarMult(s Scalar) Point {
	return blsG1{a: scalarMulG1(p.a, s.(blsScalar))}
}

func (p blsG1) Equal(o Point) bool { return p.a.Equal(&o.(blsG1).a) }

func (p blsG1) Compress() []byte {
	b := p.a.Bytes()
	return b[:]
}

func (p blsG1) String() string { return fmt.Sprintf("%x", p.Compress()) }

type blsG2 struct {
	a bls12381.G2Affine
}

func scalarMulG2(base bls12381.G2Affine, s blsScalar) bls12381.G2Affine {
	var j bls12381.G2Jac
	j.ScalarMultiplication(&base, s.bigInt())
	var out bls12381.G2Affine
	out.FromJacobian(&j)
	return out
}

func (p blsG2) Add(o Point2) Point2 {
	var j, oj bls12381.G2Jac
	j.FromAffine(&p.a)
	oj.FromAffine(&o.(blsG2).a)
	j.AddAssign(&oj)
	var out bls12381.G2Affine
	out.FromJacobian(&j)
	return blsG2{a: out}
}

func (p blsG2) Sub(o Point2) Point2 {
	var j, oj bls12381.G2Jac
	j.FromAffine(&p.a)
	oj.FromAffine(&o.(blsG2).a)
	j.SubAssign(&oj)
	var out bls12381.G2Affine
	out.FromJacobian(&j)
	return blsG2{a: out}
}

func (p blsG2) ScalarMult(s Scalar) Point2 {
	return blsG2{a: scalarMulG2(p.a, s.(blsScalar))}
}

func (p blsG2) Equal(o Point2) bool { return p.a.Equal(&o.(blsG2).a) }

func (p blsG2) Compress() []byte {
	b := p.a.Bytes()
	return b[:]
}

func (p blsG2) String() string { return fmt.Sprintf("%x", p.Compress()) }

type blsGT struct {
	e bls12381.GT
}

func (g blsGT) Mul(o GT) GT {
	var r bls12381.GT
	r.Mul(&g.e, &o.(blsGT).e)
	return blsGT{e: r}
}

func (g blsGT) Equal(o GT) bool { return g.e.Equal(&o.(blsGT).e) }
