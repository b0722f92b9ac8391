// Package chac implements a pairing-based anonymous credential/MAC scheme
// over BLS12-381: a structure-preserving issuance signature bound to a
// per-session nonce, redeemed through an independently rerandomized proof
// that ties the holder's two public-key shares to a server-held issuer key
// without revealing which issuance round produced it. Grounded on
// _examples/original_source/src/{util_chac,client_chac,server_chac}.rs.
package chac

import (
	"crypto/sha256"
	"io"

	"github.com/atsh-here/ntat/group"
	"github.com/atsh-here/ntat/logging"
)

// hashToScalar reduces a SHA-256 digest of data modulo the group order,
// matching the reference's sha256-digest-then-reduce convention used for
// both the nonce commitment and the per-session key derivation.
func hashToScalar(data []byte) group.Scalar {
	sum := sha256.Sum256(data)
	return group.BLS12381.ScalarFromDigest(sum[:])
}

// PublicParams holds the issuer's structure-preserving key material,
// including sk and the attribute trapdoors x1, x2; the same struct is
// passed to both client and server calls. The per-session key sampled in
// Issue is not stored anywhere.
type PublicParams struct {
	G1, Y1, Sk, Pk1, Pk2 group.Point
	G2, Y2, Ipk1, Ipk2   group.Point2
	X1, X2               group.Scalar
}

// Setup samples the issuer's structure-preserving key pair and the two
// independent per-attribute issuer keys (x1, x2) behind ipk1, ipk2.
func Setup(rng io.Reader) (PublicParams, error) {
	g1, err := group.BLS12381.RandomPoint(rng)
	if err != nil {
		return PublicParams{}, err
	}
	g2, err := group.BLS12381.RandomPoint2(rng)
	if err != nil {
		return PublicParams{}, err
	}
	delta, err := group.BLS12381.RandomScalar(rng)
	if err != nil {
		return PublicParams{}, err
	}
	y1 := g1.ScalarMult(delta)
	y2 := g2.ScalarMult(delta)

	alpha, err := group.BLS12381.RandomScalar(rng)
	if err != nil {
		return PublicParams{}, err
	}
	sk := y1.ScalarMult(alpha)
	pk1 := g1
	pk2 := g1.ScalarMult(alpha)

	x1, err := group.BLS12381.RandomScalar(rng)
	if err != nil {
		return PublicParams{}, err
	}
	x2, err := group.BLS12381.RandomScalar(rng)
	if err != nil {
		return PublicParams{}, err
	}
	ipk1 := g2.ScalarMult(x1)
	ipk2 := g2.ScalarMult(x2)

	return PublicParams{
		G1: g1, Y1: y1, Sk: sk, Pk1: pk1, Pk2: pk2,
		G2: g2, Y2: y2, Ipk1: ipk1, Ipk2: ipk2,
		X1: x1, X2: x2,
	}, nil
}

// Query is the client's issuance request, bound to a per-round nonce.
type Query struct {
	Pk2 group.Point
	Sig group.Point
	S1  group.Point
	S2  group.Point2
}

// Response is the server's issuance reply.
type Response struct {
	W1 group.Point
	W2 group.Point2
	Z  group.Point
	V  group.Point2
}

// Msg is the client's rerandomized redemption presentation.
type Msg struct {
	Pkp1, Pkp2, Sigp, S1p, Zp, W1p group.Point
	S2p, W2p, Vp                  group.Point2
}

const (
	stepNew = iota
	stepQueried
	stepRedeemed
)

// Client produces issuance queries and redemption presentations. Unlike
// the NTAT variants it carries no secret witness across the two calls:
// the reference implementation is itself a pair of stateless functions.
// It fetches a logger per call rather than caching one at construction
// time.
type Client struct {
	step int
}

// NewClient creates a holder session.
func NewClient() *Client {
	return &Client{step: stepNew}
}

func (c *Client) sequenceCheck(next int) {
	if c.step != next-1 {
		panic("chac: client operation called out of order")
	}
	c.step = next
}

// Query produces the blinded issuance request bound to nonce.
func (c *Client) Query(rng io.Reader, pp PublicParams, nonce group.Scalar) (Query, error) {
	c.sequenceCheck(stepQueried)
	log := logging.For("chac.client")

	h := pp.G1.ScalarMult(hashToScalar(nonce.Bytes()))
	r, err := group.BLS12381.RandomScalar(rng)
	if err != nil {
		return Query{}, err
	}
	s1 := pp.G1.ScalarMult(r)
	s2 := pp.G2.ScalarMult(r)
	sig := pp.Sk.Add(h.ScalarMult(r))

	log.Debug().Str("op", "query").Msg("issuance query produced")
	return Query{Pk2: pp.Pk2, Sig: sig, S1: s1, S2: s2}, nil
}

// Redeem rerandomizes the server's issuance response into a one-time
// presentation that cannot be linked back to the issuance round.
func (c *Client) Redeem(rng io.Reader, pp PublicParams, nonce group.Scalar, resp Response) (Msg, error) {
	c.sequenceCheck(stepRedeemed)
	log := logging.For("chac.client")

	h := pp.G1.ScalarMult(hashToScalar(nonce.Bytes()))

	rp, err := group.BLS12381.RandomScalar(rng)
	if err != nil {
		return Msg{}, err
	}
	kdp, err := group.BLS12381.RandomScalar(rng)
	if err != nil {
		return Msg{}, err
	}
	var psi group.Scalar
	for {
		candidate, err := group.BLS12381.RandomScalar(rng)
		if err != nil {
			return Msg{}, err
		}
		if !candidate.IsZero() {
			psi = candidate
			break
		}
	}

	s1p := pp.G1.ScalarMult(kdp)
	s2p := pp.G2.ScalarMult(kdp)
	sigp := pp.Sk.ScalarMult(rp).Add(h.ScalarMult(kdp))

	pkp1 := pp.G1.ScalarMult(rp)
	pkp2 := pp.Pk2.ScalarMult(rp)
	zp := resp.Z.ScalarMult(rp.Mul(psi))

	psiInv, _ := psi.Inverse()
	w1p := resp.W1.ScalarMult(psiInv)
	w2p := resp.W2.ScalarMult(psiInv)
	vp := resp.V.ScalarMult(psiInv)

	log.Debug().Str("op", "redeem").Msg("redemption presentation produced")
	return Msg{
		Pkp1: pkp1, Pkp2: pkp2, Sigp: sigp, S1p: s1p, S2p: s2p,
		Zp: zp, W1p: w1p, W2p: w2p, Vp: vp,
	}, nil
}

// Server issues credentials over queries and verifies redemption
// presentations against the issuer key material in pp.
type Server struct {
	step int
}

// NewServer creates an issuer/verifier session.
func NewServer() *Server {
	return &Server{step: stepNew}
}

func (s *Server) sequenceCheck(next int) {
	if s.step != next-1 {
		panic("chac: server operation called out of order")
	}
	s.step = next
}

// Issue verifies the client's query and, on success, returns a
// structure-preserving signature blinded under a fresh per-session key.
func (s *Server) Issue(rng io.Reader, pp PublicParams, nonce group.Scalar, query Query) (Response, bool) {
	s.sequenceCheck(stepQueried)
	log := logging.For("chac.server")

	h := pp.G1.ScalarMult(hashToScalar(nonce.Bytes()))

	if !group.BLS12381.Pair(query.S1, pp.G2).Equal(group.BLS12381.Pair(pp.G1, query.S2)) {
		log.Warn().Str("op", "issue").Msg("query well-formedness check failed")
		return Response{}, false
	}
	lhs := group.BLS12381.Pair(query.Sig, pp.G2)
	rhs := group.BLS12381.Pair(query.Pk2, pp.Y2).Mul(group.BLS12381.Pair(h, query.S2))
	if !lhs.Equal(rhs) {
		log.Warn().Str("op", "issue").Msg("query signature check failed")
		return Response{}, false
	}

	key, err := group.BLS12381.RandomScalar(rng)
	if err != nil {
		return Response{}, false
	}
	y := hashToScalar(append(append([]byte{}, key.Bytes()...), query.Pk2.Compress()...))
	yinv, _ := y.Inverse()

	z := pp.Pk1.ScalarMult(pp.X1).Add(pp.Pk2.ScalarMult(pp.X2)).ScalarMult(y)
	w1 := pp.G1.ScalarMult(yinv)
	w2 := pp.G2.ScalarMult(yinv)

	hIpk := pp.G2.ScalarMult(hashToScalar(pp.Ipk1.Compress()))
	v := hIpk.ScalarMult(yinv)

	log.Debug().Str("op", "issue").Msg("credential issued")
	return Response{W1: w1, W2: w2, Z: z, V: v}, true
}

// Redeem verifies a client's rerandomized presentation against the
// five structural pairing equations the credential must satisfy.
func (s *Server) Redeem(pp PublicParams, nonce group.Scalar, msg Msg) bool {
	s.sequenceCheck(stepRedeemed)
	log := logging.For("chac.server")

	h := pp.G1.ScalarMult(hashToScalar(nonce.Bytes()))

	if !group.BLS12381.Pair(msg.S1p, pp.G2).Equal(group.BLS12381.Pair(pp.G1, msg.S2p)) {
		log.Warn().Str("op", "redeem").Msg("presentation well-formedness check failed")
		return false
	}
	if !group.BLS12381.Pair(msg.Sigp, pp.G2).Equal(
		group.BLS12381.Pair(msg.Pkp2, pp.Y2).Mul(group.BLS12381.Pair(h, msg.S2p))) {
		log.Warn().Str("op", "redeem").Msg("presentation signature check failed")
		return false
	}
	if !group.BLS12381.Pair(msg.Pkp1, pp.Ipk1).Mul(group.BLS12381.Pair(msg.Pkp2, pp.Ipk2)).Equal(
		group.BLS12381.Pair(msg.Zp, msg.W2p)) {
		log.Warn().Str("op", "redeem").Msg("issuer-key binding check failed")
		return false
	}
	if !group.BLS12381.Pair(msg.W1p, pp.G2).Equal(group.BLS12381.Pair(pp.G1, msg.W2p)) {
		log.Warn().Str("op", "redeem").Msg("blinding-key well-formedness check failed")
		return false
	}

	hIpk := pp.G2.ScalarMult(hashToScalar(pp.Ipk1.Compress()))
	if !group.BLS12381.Pair(msg.W1p, hIpk).Equal(group.BLS12381.Pair(pp.G1, msg.Vp)) {
		log.Warn().Str("op", "redeem").Msg("issuer-key tag check failed")
		return false
	}

	log.Debug().Str("op", "redeem").Msg("redemption verified")
	return true
}
