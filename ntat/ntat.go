// Package ntat is the secp256k1 instantiation of the non-interactive
// anonymous token scheme: blinded issuance via REP3+DLEQ followed by a
// two-round committed Schnorr redemption proof. Grounded on
// _examples/original_source/src/{client,server,util}.rs; the generic
// machinery lives in internal/ntatcore, shared with ntatristretto.
package ntat

import (
	"io"

	"github.com/atsh-here/ntat/group"
	"github.com/atsh-here/ntat/internal/ntatcore"
	"github.com/atsh-here/ntat/logging"
)

const domainTag = "ntat"

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

// Setup samples four independent uniform secp256k1 generators.
func Setup(rng io.Reader) (PublicParams, error) {
	return ntatcore.Setup(rng, group.Secp256k1, domainTag, true)
}

// NewClient creates a client session bound to the issuer's public key.
func NewClient(pp PublicParams, pkS group.Point) *Client {
	return ntatcore.NewClient(pp, pkS, logging.For("ntat.client"))
}

// NewServer creates a server session bound to the client's public key.
func NewServer(pp PublicParams, pkC group.Point) *Server {
	return ntatcore.NewServer(pp, pkC, logging.For("ntat.server"))
}
