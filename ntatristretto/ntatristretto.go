// Package ntatristretto is the Ristretto instantiation of the
// non-interactive anonymous token scheme: identical shape to ntat, but
// over the Ristretto group with a byte-oriented, domain-separated
// transcript instead of the decimal-string transcript secp256k1 uses.
// Per §4.1 this is the reference transcript convention. Grounded on
// _examples/original_source/src/util_dalek.rs; the generic machinery
// lives in internal/ntatcore, shared with ntat.
package ntatristretto

import (
	"io"

	"github.com/atsh-here/ntat/group"
	"github.com/atsh-here/ntat/internal/ntatcore"
	"github.com/atsh-here/ntat/logging"
)

const domainTag = "ntat-ristretto"

type (
	PublicParams     = ntatcore.PublicParams
	Query            = ntatcore.Query
	Response         = ntatcore.Response
	Token            = ntatcore.Token
	RedemptionProof1 = ntatcore.RedemptionProof1
	RedemptionProof2 = ntatcore.RedemptionProof2
	Client           = ntatcore.Client
	Server           = ntatcore.Server
)

// Setup samples four independent uniform Ristretto generators.
func Setup(rng io.Reader) (PublicParams, error) {
	return ntatcore.Setup(rng, group.Ristretto, domainTag, false)
}

// NewClient creates a client session bound to the issuer's public key.
func NewClient(pp PublicParams, pkS group.Point) *Client {
	return ntatcore.NewClient(pp, pkS, logging.For("ntat-ristretto.client"))
}

// NewServer creates a server session bound to the client's public key.
func NewServer(pp PublicParams, pkC group.Point) *Server {
	return ntatcore.NewServer(pp, pkC, logging.For("ntat-ristretto.server"))
}
