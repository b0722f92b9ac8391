// Package sigma implements the two sigma protocols shared by every
// single-group NTAT variant (secp256k1, Ristretto, and the REP3 half of
// the pairing variant): REP3, a representation-of-a-product proof in three
// witnesses, and DLEQ, a discrete-log-equality proof. Both are written
// once against the group.Group interface instead of once per curve,
// collapsing the duplication the reference implementation carries across
// its five (Client, Server, util) triples.
package sigma

import (
	"io"

	"github.com/atsh-here/ntat/group"
	"github.com/atsh-here/ntat/transcript"
)

// REP3Proof is the transcript produced by REP3Prove and checked by REP3Verify.
type REP3Proof struct {
	Ch    group.Scalar
	Resp1 group.Scalar
	Resp2 group.Scalar
	Resp3 group.Scalar
}

// pointLike covers both group.Point and group.Point2: REP3Params.G2 is a
// G2 point in the pairing variant's public parameters but an ordinary G1
// point in the single-group variants', and both satisfy this shape.
type pointLike interface {
	String() string
	Compress() []byte
}

// REP3Params bundles all four NTAT-family generators so every call site
// doesn't have to spell them out individually. All four — including G2,
// which this proof's own equations never use — are committed into the
// challenge transcript, because the public parameters are fixed for a
// deployment and every proof transcript binds the full parameter set,
// not just the generators an individual equation happens to reference.
type REP3Params struct {
	G group.Group
	// DomainTag distinguishes which scheme's transcript this is so one
	// scheme's proofs never verify against another's challenge.
	DomainTag      string
	G1, G3, G4     group.Point
	G2             pointLike
	StringEncoded  bool // true for secp256k1/BLS12-381 (String()-form transcripts), false for Ristretto (byte transcripts)
}

func absorbPoint(t *transcript.Transcript, p pointLike, strEnc bool) {
	if strEnc {
		t.AbsorbString(p.String())
	} else {
		t.Absorb(p.Compress())
	}
}

func (pp REP3Params) transcript(x, tpoint, c1, c2 group.Point) *transcript.Transcript {
	t := transcript.New(pp.DomainTag + "/rep3")
	absorbPoint(t, pp.G1, pp.StringEncoded)
	absorbPoint(t, pp.G2, pp.StringEncoded)
	absorbPoint(t, pp.G3, pp.StringEncoded)
	absorbPoint(t, pp.G4, pp.StringEncoded)
	absorbPoint(t, x, pp.StringEncoded)
	absorbPoint(t, tpoint, pp.StringEncoded)
	absorbPoint(t, c1, pp.StringEncoded)
	absorbPoint(t, c2, pp.StringEncoded)
	return t
}

// REP3Prove proves knowledge of (x, lambda, r) such that X = g1*x and
// T = lambda*(g1*x + g3*r + g4), per §4.2.
func REP3Prove(rng io.Reader, pp REP3Params, x group.Point, tpoint group.Point,
	witnessX, lambda, r group.Scalar) (REP3Proof, error) {

	a, err := pp.G.RandomScalar(rng)
	if err != nil {
		return REP3Proof{}, err
	}
	b, err := pp.G.RandomScalar(rng)
	if err != nil {
		return REP3Proof{}, err
	}
	c, err := pp.G.RandomScalar(rng)
	if err != nil {
		return REP3Proof{}, err
	}

	c1 := pp.G1.ScalarMult(a)
	c2 := pp.G1.ScalarMult(a).Add(pp.G3.ScalarMult(b)).Add(tpoint.ScalarMult(c))

	digest := pp.transcript(x, tpoint, c1, c2).Digest()
	ch := pp.G.ScalarFromDigest(digest)

	lambdaInv, ok := lambda.Inverse()
	if !ok {
		return REP3Proof{}, errLambdaZero
	}

	resp1 := a.Sub(ch.Mul(witnessX))
	resp2 := b.Sub(ch.Mul(r))
	resp3 := c.Add(ch.Mul(lambdaInv))

	return REP3Proof{Ch: ch, Resp1: resp1, Resp2: resp2, Resp3: resp3}, nil
}

// REP3Verify checks a proof produced by REP3Prove against the public
// values (X, T).
func REP3Verify(pp REP3Params, x group.Point, tpoint group.Point, proof REP3Proof) bool {
	c1p := pp.G1.ScalarMult(proof.Resp1).Add(x.ScalarMult(proof.Ch))
	c2p := pp.G1.ScalarMult(proof.Resp1).
		Add(pp.G3.ScalarMult(proof.Resp2)).
		Add(tpoint.ScalarMult(proof.Resp3)).
		Sub(pp.G4.ScalarMult(proof.Ch))

	digest := pp.transcript(x, tpoint, c1p, c2p).Digest()
	chPrime := pp.G.ScalarFromDigest(digest)

	return proof.Ch.Equal(chPrime)
}

type sigmaError string

func (e sigmaError) Error() string { return string(e) }

const errLambdaZero = sigmaError("sigma: blinding factor sampled as zero, caller must resample")
