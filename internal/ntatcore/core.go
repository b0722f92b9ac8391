// Package ntatcore is the generic, group-parameterized core shared by the
// ntat (secp256k1) and ntatristretto (Ristretto) packages: both variants
// have the identical shape over a single prime-order group, so this
// collapses that duplication into one implementation, per the reference
// source's own duplication-across-instantiations note.
package ntatcore

import (
	"io"

	"github.com/atsh-here/ntat/group"
	"github.com/atsh-here/ntat/protoerr"
	"github.com/atsh-here/ntat/sigma"
	"github.com/atsh-here/ntat/transcript"
	"github.com/rs/zerolog"
)

// PublicParams holds the four independent generators shared by every
// session of a given instantiation, plus the group/transcript convention
// that instantiation uses.
type PublicParams struct {
	G1, G2, G3, G4 group.Point
	Group          group.Group
	DomainTag      string
	StringEncoded  bool // true = String()-form transcripts (secp256k1); false = byte transcripts (Ristretto)
}

// Setup samples four independent uniform generators under g.
func Setup(rng io.Reader, g group.Group, domainTag string, stringEncoded bool) (PublicParams, error) {
	g1, err := g.RandomPoint(rng)
	if err != nil {
		return PublicParams{}, err
	}
	g2, err := g.RandomPoint(rng)
	if err != nil {
		return PublicParams{}, err
	}
	g3, err := g.RandomPoint(rng)
	if err != nil {
		return PublicParams{}, err
	}
	g4, err := g.RandomPoint(rng)
	if err != nil {
		return PublicParams{}, err
	}
	return PublicParams{G1: g1, G2: g2, G3: g3, G4: g4, Group: g, DomainTag: domainTag, StringEncoded: stringEncoded}, nil
}

func (pp PublicParams) rep3Params() sigma.REP3Params {
	return sigma.REP3Params{G: pp.Group, DomainTag: pp.DomainTag, G1: pp.G1, G2: pp.G2, G3: pp.G3, G4: pp.G4, StringEncoded: pp.StringEncoded}
}

func (pp PublicParams) dleqParams() sigma.DLEQParams {
	return sigma.DLEQParams{G: pp.Group, DomainTag: pp.DomainTag, G1: pp.G1, G2: pp.G2, G3: pp.G3, G4: pp.G4, StringEncoded: pp.StringEncoded}
}

// Query is the client's first issuance message.
type Query struct {
	T  group.Point
	Pi sigma.REP3Proof
}

// Response is the server's issuance reply.
type Response struct {
	S  group.Scalar
	SS group.Point
	Pi sigma.DLEQProof
}

// Token is the unblinded, redeemable credential.
type Token struct {
	Sigma group.Point
	R     group.Scalar
	S     group.Scalar
}

// RedemptionProof1 is the client's first redemption message.
type RedemptionProof1 struct {
	SigmaPrime group.Point
	Comm       group.Scalar
}

// RedemptionProof2 is the client's second redemption message.
type RedemptionProof2 struct {
	V0, V1, V2 group.Scalar
	Rho        group.Scalar
}

// Client and Server advance through independent step sequences: the
// client calls Query, Final, ProveRedeem1, ProveRedeem2 in order, while
// the server only ever calls Issue, VerifyRedeem1, VerifyRedeem2 (it has
// no step analogous to Final). Sharing one enum between both would make
// the server's second call fail its own sequence check.
const (
	clientStepNew = iota
	clientStepQuery
	clientStepFinal
	clientStepRedeem1
	clientStepRedeem2
)

const (
	serverStepNew = iota
	serverStepIssue
	serverStepRedeem1
	serverStepRedeem2
)

// Client holds per-session state for the token holder. Operations must be
// called in the order Query -> Final -> ProveRedeem1 -> ProveRedeem2; any
// other order panics, matching the teacher's sequenceCheck discipline.
type Client struct {
	pp   PublicParams
	pkS  group.Point
	step int
	log  zerolog.Logger

	r, lambda group.Scalar
	t         group.Point

	alpha, beta, gamma, rho group.Scalar
}

// NewClient creates a client session bound to the issuer's public key.
func NewClient(pp PublicParams, pkS group.Point, log zerolog.Logger) *Client {
	return &Client{pp: pp, pkS: pkS, step: clientStepNew, log: log}
}

func (c *Client) sequenceCheck(next int) {
	if c.step != next-1 {
		panic(c.pp.DomainTag + ": client operation called out of order")
	}
	c.step = next
}

// Query produces the blinded issuance request.
func (c *Client) Query(rng io.Reader, skC group.Scalar) (Query, error) {
	c.sequenceCheck(clientStepQuery)

	g := c.pp.Group
	x := c.pp.G1.ScalarMult(skC)
	r, err := g.RandomScalar(rng)
	if err != nil {
		return Query{}, err
	}
	lambda, err := g.RandomScalar(rng)
	if err != nil {
		return Query{}, err
	}
	if lambda.IsZero() || r.IsZero() {
		return Query{}, protoerr.Wrap(protoerr.ErrInvalidToken, c.pp.DomainTag+": sampled zero blinding factor")
	}

	t := x.Add(c.pp.G3.ScalarMult(r)).Add(c.pp.G4).ScalarMult(lambda)

	proof, err := sigma.REP3Prove(rng, c.pp.rep3Params(), x, t, skC, lambda, r)
	if err != nil {
		return Query{}, err
	}

	c.r, c.lambda, c.t = r, lambda, t
	c.log.Debug().Str("op", "query").Msg("issuance query produced")

	return Query{T: t, Pi: proof}, nil
}

// Final consumes the server's issuance response and, if the embedded DLEQ
// proof verifies, returns the unblinded token.
func (c *Client) Final(resp Response) (Token, bool) {
	c.sequenceCheck(clientStepFinal)

	ok := sigma.DLEQVerify(c.pp.dleqParams(), c.pkS, resp.SS, c.t, resp.S, resp.Pi)
	if !ok {
		c.log.Warn().Str("op", "final").Msg("DLEQ verification failed")
		return Token{}, false
	}

	lambdaInv, _ := c.lambda.Inverse() // checked non-zero in Query
	sigmaPoint := resp.SS.ScalarMult(lambdaInv)

	c.log.Debug().Str("op", "final").Msg("token extracted")
	return Token{Sigma: sigmaPoint, R: c.r, S: resp.S}, true
}

func commitment(pp PublicParams, rho group.Scalar, q group.Point) group.Scalar {
	t := transcript.New(pp.DomainTag + "/redeem-commit")
	if pp.StringEncoded {
		t.AbsorbString(rho.String())
		t.AbsorbString(q.String())
	} else {
		t.Absorb(rho.Bytes())
		t.Absorb(q.Compress())
	}
	return pp.Group.ScalarFromDigest(t.Digest())
}

// ProveRedeem1 produces the first redemption message.
func (c *Client) ProveRedeem1(rng io.Reader, token Token, skC group.Scalar) (RedemptionProof1, error) {
	c.sequenceCheck(clientStepRedeem1)

	g := c.pp.Group
	sigmaPrime := c.pp.G1.ScalarMult(skC).
		Add(c.pp.G3.ScalarMult(token.R)).
		Add(c.pp.G4).
		Sub(token.Sigma.ScalarMult(token.S))

	alpha, err := g.RandomScalar(rng)
	if err != nil {
		return RedemptionProof1{}, err
	}
	beta, err := g.RandomScalar(rng)
	if err != nil {
		return RedemptionProof1{}, err
	}
	gamma, err := g.RandomScalar(rng)
	if err != nil {
		return RedemptionProof1{}, err
	}
	rho, err := g.RandomScalar(rng)
	if err != nil {
		return RedemptionProof1{}, err
	}

	q := c.pp.G1.ScalarMult(alpha).Add(c.pp.G3.ScalarMult(beta)).Add(token.Sigma.ScalarMult(gamma))
	comm := commitment(c.pp, rho, q)

	c.alpha, c.beta, c.gamma, c.rho = alpha, beta, gamma, rho
	c.log.Debug().Str("op", "prove_redeem1").Msg("redemption round 1 produced")

	return RedemptionProof1{SigmaPrime: sigmaPrime, Comm: comm}, nil
}

// ProveRedeem2 produces the second redemption message given the server's
// round-1 challenge.
func (c *Client) ProveRedeem2(token Token, skC group.Scalar, challenge group.Scalar) RedemptionProof2 {
	c.sequenceCheck(clientStepRedeem2)

	v0 := c.alpha.Add(challenge.Mul(skC))
	v1 := c.beta.Add(challenge.Mul(token.R))
	v2 := c.gamma.Sub(challenge.Mul(token.S))

	c.log.Debug().Str("op", "prove_redeem2").Msg("redemption round 2 produced")
	return RedemptionProof2{V0: v0, V1: v1, V2: v2, Rho: c.rho}
}

// Server holds per-session state for the issuer/verifier.
type Server struct {
	pp   PublicParams
	pkC  group.Point
	step int
	log  zerolog.Logger

	sigmaPrime group.Point
	comm       group.Scalar
	challenge  group.Scalar
}

// NewServer creates a server session bound to the client's public key.
func NewServer(pp PublicParams, pkC group.Point, log zerolog.Logger) *Server {
	return &Server{pp: pp, pkC: pkC, step: serverStepNew, log: log}
}

func (s *Server) sequenceCheck(next int) {
	if s.step != next-1 {
		panic(s.pp.DomainTag + ": server operation called out of order")
	}
	s.step = next
}

// Issue verifies the client's query proof and, on success, returns a
// blinded signature over the query.
func (s *Server) Issue(rng io.Reader, skS group.Scalar, query Query) (Response, bool) {
	s.sequenceCheck(serverStepIssue)

	if !sigma.REP3Verify(s.pp.rep3Params(), s.pkC, query.T, query.Pi) {
		s.log.Warn().Str("op", "issue").Msg("REP3 verification failed")
		return Response{}, false
	}

	g := s.pp.Group
	var sVal group.Scalar
	for {
		candidate, err := g.RandomScalar(rng)
		if err != nil {
			s.log.Warn().Str("op", "issue").Err(err).Msg("RNG failure")
			return Response{}, false
		}
		if !skS.Add(candidate).IsZero() {
			sVal = candidate
			break
		}
	}

	denomInv, _ := skS.Add(sVal).Inverse()
	ss := query.T.ScalarMult(denomInv)

	y := s.pp.G2.ScalarMult(skS)
	proof, err := sigma.DLEQProve(rng, s.pp.dleqParams(), y, ss, query.T, sVal, skS)
	if err != nil {
		return Response{}, false
	}

	s.log.Debug().Str("op", "issue").Msg("token issued")
	return Response{S: sVal, SS: ss, Pi: proof}, true
}

// VerifyRedeem1 checks the structural redemption equation sigma' = sigma *
// sk_s, samples a fresh challenge, caches it in the session, and returns
// it to the caller. See DESIGN.md for why this always assigns the
// challenge into the session (the secp256k1 reference implementation
// samples it but never writes it back).
func (s *Server) VerifyRedeem1(rng io.Reader, skS group.Scalar, token Token, proof RedemptionProof1) (group.Scalar, bool) {
	s.sequenceCheck(serverStepRedeem1)

	s.comm = proof.Comm
	s.sigmaPrime = proof.SigmaPrime

	if !proof.SigmaPrime.Equal(token.Sigma.ScalarMult(skS)) {
		s.log.Warn().Str("op", "verify_redeem1").Msg("structural token check failed")
		return nil, false
	}

	c, err := s.pp.Group.RandomScalar(rng)
	if err != nil {
		return nil, false
	}
	s.challenge = c

	s.log.Debug().Str("op", "verify_redeem1").Msg("redemption round 1 verified, challenge issued")
	return c, true
}

// VerifyRedeem2 checks the second redemption message against the
// session's own cached challenge, completing the committed Schnorr proof.
// It does not take sk_s: the equation it checks never needs the server
// secret directly, only the already-verified sigma' — see DESIGN.md.
func (s *Server) VerifyRedeem2(token Token, proof RedemptionProof2) bool {
	s.sequenceCheck(serverStepRedeem2)

	qPrime := s.pp.G1.ScalarMult(proof.V0).
		Add(s.pp.G3.ScalarMult(proof.V1)).
		Add(token.Sigma.ScalarMult(proof.V2)).
		Sub(s.sigmaPrime.Sub(s.pp.G4).ScalarMult(s.challenge))

	commPrime := commitment(s.pp, proof.Rho, qPrime)

	ok := commPrime.Equal(s.comm)
	if ok {
		s.log.Debug().Str("op", "verify_redeem2").Msg("redemption verified")
	} else {
		s.log.Warn().Str("op", "verify_redeem2").Msg("redemption commitment mismatch")
	}
	return ok
}
