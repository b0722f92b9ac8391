package sigma

import (
	"io"

	"github.com/atsh-here/ntat/group"
	"github.com/atsh-here/ntat/transcript"
)

// DLEQProof proves Y = g2*y and T - S*s = S*y for the same y (§4.3). It is
// only used by the single-group NTAT variants (secp256k1, Ristretto); the
// pairing variant replaces it with a pairing check (§4.4), and the
// Ristretto build's "g2" is deliberately in the same group as g1 — see
// DESIGN.md's resolution of the DLEQ-base Open Question.
type DLEQProof struct {
	Ch   group.Scalar
	Resp group.Scalar
}

// DLEQParams bundles what every DLEQ call site over a given scheme needs.
// G1, G3, G4 never appear in this proof's own equations, but are still
// committed into the challenge transcript alongside G2 so the full fixed
// parameter set is bound into every proof, matching REP3Params in rep3.go.
type DLEQParams struct {
	G              group.Group
	DomainTag      string
	G1, G2, G3, G4 group.Point
	StringEncoded  bool
}

func (pp DLEQParams) transcript(y, s, inter, c1, c2 group.Point) *transcript.Transcript {
	t := transcript.New(pp.DomainTag + "/dleq")
	absorbPoint(t, pp.G1, pp.StringEncoded)
	absorbPoint(t, pp.G2, pp.StringEncoded)
	absorbPoint(t, pp.G3, pp.StringEncoded)
	absorbPoint(t, pp.G4, pp.StringEncoded)
	absorbPoint(t, y, pp.StringEncoded)
	absorbPoint(t, s, pp.StringEncoded)
	absorbPoint(t, inter, pp.StringEncoded)
	absorbPoint(t, c1, pp.StringEncoded)
	absorbPoint(t, c2, pp.StringEncoded)
	return t
}

// DLEQProve proves knowledge of y such that Y = g2*y and S = T/(y+s).
func DLEQProve(rng io.Reader, pp DLEQParams, y, s group.Point, tpoint group.Point,
	sScalar, yScalar group.Scalar) (DLEQProof, error) {

	a, err := pp.G.RandomScalar(rng)
	if err != nil {
		return DLEQProof{}, err
	}

	c1 := pp.G2.ScalarMult(a)
	c2 := s.ScalarMult(a)
	inter := tpoint.Sub(s.ScalarMult(sScalar))

	digest := pp.transcript(y, s, inter, c1, c2).Digest()
	ch := pp.G.ScalarFromDigest(digest)

	resp := a.Add(ch.Mul(yScalar))

	return DLEQProof{Ch: ch, Resp: resp}, nil
}

// DLEQVerify checks a proof produced by DLEQProve.
func DLEQVerify(pp DLEQParams, y, s group.Point, tpoint group.Point, sScalar group.Scalar, proof DLEQProof) bool {
	inter := tpoint.Sub(s.ScalarMult(sScalar))
	c1p := pp.G2.ScalarMult(proof.Resp).Sub(y.ScalarMult(proof.Ch))
	c2p := s.ScalarMult(proof.Resp).Sub(inter.ScalarMult(proof.Ch))

	digest := pp.transcript(y, s, inter, c1p, c2p).Digest()
	chPrime := pp.G.ScalarFromDigest(digest)

	return proof.Ch.Equal(chPrime)
}
