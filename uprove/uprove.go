// Package uprove implements a Brands-style blind signature token over
// secp256k1, followed by a single-witness committed Schnorr redemption
// proof of the holder's identity attribute. No original-source reference
// survives for this scheme (see DESIGN.md); it is designed from the
// distilled prose alone, in the same committed-Schnorr idiom as ntat's
// redemption round (§4.5) and sharing secp256k1 as its group oracle.
package uprove

import (
	"io"

	"github.com/atsh-here/ntat/group"
	"github.com/atsh-here/ntat/logging"
	"github.com/atsh-here/ntat/transcript"
)

const domainTag = "uprove"

// PublicParams holds the base generator, the attribute generator, and the
// issuer's Schnorr public key.
type PublicParams struct {
	G0, Gd group.Point
	PkS    group.Point
}

// Setup samples the two generators and a fresh issuer keypair.
func Setup(rng io.Reader) (PublicParams, group.Scalar, error) {
	g0, err := group.Secp256k1.RandomPoint(rng)
	if err != nil {
		return PublicParams{}, nil, err
	}
	gd, err := group.Secp256k1.RandomPoint(rng)
	if err != nil {
		return PublicParams{}, nil, err
	}
	skS, err := group.Secp256k1.RandomScalar(rng)
	if err != nil {
		return PublicParams{}, nil, err
	}
	pkS := g0.ScalarMult(skS)
	return PublicParams{G0: g0, Gd: gd, PkS: pkS}, skS, nil
}

// Token is the unblinded, holder-presentable credential: a committed
// attribute h = gd*attr, and a blind Schnorr signature (c', r') over it
// that the server issued without ever seeing h or c' in the clear.
type Token struct {
	H      group.Point
	CPrime group.Scalar
	RPrime group.Scalar
}

// VerifyToken checks the blind Schnorr signature embedded in a token: it
// recomputes the commitment the client hashed to derive c' purely from
// public values, then checks the hash matches.
func VerifyToken(pp PublicParams, token Token) bool {
	gammaPrime := pp.G0.ScalarMult(token.RPrime).Sub(pp.PkS.ScalarMult(token.CPrime))
	cCheck := challengeHash(pp, token.H, gammaPrime)
	return cCheck.Equal(token.CPrime)
}

func challengeHash(pp PublicParams, h group.Point, gammaPrime group.Point) group.Scalar {
	t := transcript.New(domainTag + "/issue")
	t.AbsorbString(pp.PkS.String())
	t.AbsorbString(h.String())
	t.AbsorbString(gammaPrime.String())
	return group.Secp256k1.ScalarFromDigest(t.Digest())
}

// Server and Client advance through independent step sequences: the
// server's Initiate/Sign/VerifyRedeem1/VerifyRedeem2 and the client's
// Blind/Unblind/ProveRedeem1/ProveRedeem2 interleave at the wire level but
// are two separate state machines, each starting its own count from zero.
const (
	serverStepNew = iota
	serverStepInitiated
	serverStepSigned
	serverStepVerifiedRedeem1
	serverStepVerifiedRedeem2
)

const (
	clientStepNew = iota
	clientStepBlinded
	clientStepUnblinded
	clientStepProvedRedeem1
	clientStepProvedRedeem2
)

// Server runs the two issuance steps (Initiate, Sign) and the two
// redemption steps (VerifyRedeem1, VerifyRedeem2).
type Server struct {
	pp   PublicParams
	skS  group.Scalar
	step int

	w group.Scalar

	challenge group.Scalar
	comm      group.Scalar
}

var serverLog = logging.For("uprove.server")

// NewServer creates an issuer/verifier session.
func NewServer(pp PublicParams, skS group.Scalar) *Server {
	return &Server{pp: pp, skS: skS, step: serverStepNew}
}

func (s *Server) sequenceCheck(next int) {
	if s.step != next-1 {
		panic("uprove: server operation called out of order")
	}
	s.step = next
}

// Initiate begins a blind-signature issuance round, committing to a fresh
// random w that Sign later uses.
func (s *Server) Initiate(rng io.Reader) (group.Point, error) {
	s.sequenceCheck(serverStepInitiated)

	w, err := group.Secp256k1.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	s.w = w
	gamma := s.pp.G0.ScalarMult(w)
	serverLog.Debug().Str("op", "initiate").Msg("issuance commitment produced")
	return gamma, nil
}

// Sign responds to the client's blinded challenge.
func (s *Server) Sign(challenge group.Scalar) group.Scalar {
	s.sequenceCheck(serverStepSigned)
	r := s.w.Add(challenge.Mul(s.skS))
	serverLog.Debug().Str("op", "sign").Msg("blind signature issued")
	return r
}

// Client runs the two issuance steps (Blind, Unblind) and the two
// redemption steps (ProveRedeem1, ProveRedeem2).
type Client struct {
	pp   PublicParams
	step int

	attr        group.Scalar
	h           group.Point
	alpha, beta group.Scalar
	cPrime      group.Scalar

	k, rho group.Scalar
}

var clientLog = logging.For("uprove.client")

// NewClient creates a holder session for the given identity attribute.
func NewClient(pp PublicParams) *Client {
	return &Client{pp: pp, step: clientStepNew}
}

func (c *Client) sequenceCheck(next int) {
	if c.step != next-1 {
		panic("uprove: client operation called out of order")
	}
	c.step = next
}

// Blind commits to attr, blinds the server's issuance commitment, and
// returns the blinded challenge the server should sign.
func (c *Client) Blind(rng io.Reader, attr group.Scalar, gamma group.Point) (group.Scalar, error) {
	c.sequenceCheck(clientStepBlinded)

	h := c.pp.Gd.ScalarMult(attr)

	var alpha group.Scalar
	for {
		candidate, err := group.Secp256k1.RandomScalar(rng)
		if err != nil {
			return nil, err
		}
		if !candidate.IsZero() {
			alpha = candidate
			break
		}
	}
	beta, err := group.Secp256k1.RandomScalar(rng)
	if err != nil {
		return nil, err
	}

	gammaPrime := gamma.ScalarMult(alpha).Add(c.pp.G0.ScalarMult(beta))
	cPrime := challengeHash(c.pp, h, gammaPrime)
	alphaInv, _ := alpha.Inverse()
	challenge := cPrime.Mul(alphaInv)

	c.attr, c.h, c.alpha, c.beta, c.cPrime = attr, h, alpha, beta, cPrime
	clientLog.Debug().Str("op", "blind").Msg("issuance request blinded")
	return challenge, nil
}

// Unblind produces the final token from the server's signing response.
func (c *Client) Unblind(r group.Scalar) Token {
	c.sequenceCheck(clientStepUnblinded)

	rPrime := r.Mul(c.alpha).Add(c.beta)
	clientLog.Debug().Str("op", "unblind").Msg("token unblinded")
	return Token{H: c.h, CPrime: c.cPrime, RPrime: rPrime}
}

// ProveRedeem1 commits to a fresh blinding of the attribute witness.
func (c *Client) ProveRedeem1(rng io.Reader) (group.Scalar, error) {
	c.sequenceCheck(clientStepProvedRedeem1)

	k, err := group.Secp256k1.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	rho, err := group.Secp256k1.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	d := c.pp.Gd.ScalarMult(k)
	comm := commitment(rho, d)

	c.k, c.rho = k, rho
	clientLog.Debug().Str("op", "prove_redeem1").Msg("redemption round 1 produced")
	return comm, nil
}

// ProveRedeem2 responds to the server's challenge with a proof of
// knowledge of attr consistent with the committed H.
func (c *Client) ProveRedeem2(challenge group.Scalar) (z group.Scalar, rho group.Scalar) {
	c.sequenceCheck(clientStepProvedRedeem2)

	z = c.k.Add(challenge.Mul(c.attr))
	clientLog.Debug().Str("op", "prove_redeem2").Msg("redemption round 2 produced")
	return z, c.rho
}

func commitment(rho group.Scalar, d group.Point) group.Scalar {
	t := transcript.New(domainTag + "/redeem-commit")
	t.AbsorbString(rho.String())
	t.AbsorbString(d.String())
	return group.Secp256k1.ScalarFromDigest(t.Digest())
}

// VerifyRedeem1 checks the presented token is a valid blind signature,
// then samples and caches a fresh redemption challenge.
func (s *Server) VerifyRedeem1(rng io.Reader, token Token, comm group.Scalar) (group.Scalar, bool) {
	s.sequenceCheck(serverStepVerifiedRedeem1)

	if !VerifyToken(s.pp, token) {
		serverLog.Warn().Str("op", "verify_redeem1").Msg("token failed structural check")
		return nil, false
	}
	s.comm = comm

	e, err := group.Secp256k1.RandomScalar(rng)
	if err != nil {
		return nil, false
	}
	s.challenge = e
	serverLog.Debug().Str("op", "verify_redeem1").Msg("redemption round 1 verified, challenge issued")
	return e, true
}

// VerifyRedeem2 reconstructs the commitment from the client's response
// and checks it against the one cached in round 1.
func (s *Server) VerifyRedeem2(token Token, z group.Scalar, rho group.Scalar) bool {
	s.sequenceCheck(serverStepVerifiedRedeem2)

	dPrime := s.pp.Gd.ScalarMult(z).Sub(token.H.ScalarMult(s.challenge))
	commPrime := commitment(rho, dPrime)

	ok := commPrime.Equal(s.comm)
	if ok {
		serverLog.Debug().Str("op", "verify_redeem2").Msg("redemption verified")
	} else {
		serverLog.Warn().Str("op", "verify_redeem2").Msg("redemption commitment mismatch")
	}
	return ok
}
