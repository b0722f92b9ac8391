package ntatpairing_test

import (
	"testing"

	"github.com/atsh-here/ntat/group"
	"github.com/atsh-here/ntat/ntat"
	"github.com/atsh-here/ntat/ntatpairing"
	"github.com/atsh-here/ntat/randtest"
	"github.com/stretchr/testify/require"
)

// TestTokenRelationHoldsAcrossNonPairingAndPairingVariants checks that
// the non-pairing (secp256k1) and pairing (BLS12-381) instantiations of
// the scheme enforce the same underlying algebraic relation between a
// token and its issuer's key, just checked two different ways: a direct
// scalar-multiplication equality on one curve, and a bilinear pairing
// equality on the other. The two groups are independent (there is no
// common scalar field to share secrets across them), so this runs one
// honest round per group and checks that each, on its own terms,
// satisfies sigma*(sk_s+s) == g1*sk_c + g3*r + g4.
func TestTokenRelationHoldsAcrossNonPairingAndPairingVariants(t *testing.T) {
	t.Run("secp256k1", func(t *testing.T) {
		rng := randtest.Deterministic(2001)
		pp, err := ntat.Setup(rng)
		require.NoError(t, err)

		skC, err := group.Secp256k1.RandomScalar(rng)
		require.NoError(t, err)
		skS, err := group.Secp256k1.RandomScalar(rng)
		require.NoError(t, err)

		pkC := pp.G1.ScalarMult(skC)
		pkS := pp.G2.ScalarMult(skS)

		client := ntat.NewClient(pp, pkS)
		server := ntat.NewServer(pp, pkC)

		query, err := client.Query(rng, skC)
		require.NoError(t, err)
		resp, ok := server.Issue(rng, skS, query)
		require.True(t, ok)
		token, ok := client.Final(resp)
		require.True(t, ok)

		lhs := token.Sigma.ScalarMult(skS.Add(token.S))
		rhs := pp.G1.ScalarMult(skC).Add(pp.G3.ScalarMult(token.R)).Add(pp.G4)
		require.True(t, lhs.Equal(rhs), "secp256k1 token must satisfy sigma*(sk_s+s) == g1*sk_c + g3*r + g4")
	})

	t.Run("bls12-381", func(t *testing.T) {
		rng := randtest.Deterministic(2002)
		pp, err := ntatpairing.Setup(rng)
		require.NoError(t, err)

		skC, err := group.BLS12381.RandomScalar(rng)
		require.NoError(t, err)
		skS, err := group.BLS12381.RandomScalar(rng)
		require.NoError(t, err)

		pkC := pp.G1.ScalarMult(skC)
		pkS := pp.G2.ScalarMult(skS)

		client := ntatpairing.NewClient(pp, pkS)
		server := ntatpairing.NewServer(pp, pkC)

		query, err := client.Query(rng, skC)
		require.NoError(t, err)
		resp, ok := server.Issue(rng, skS, query)
		require.True(t, ok)
		token, ok := client.Final(resp)
		require.True(t, ok)

		// Same relation, checked as a pairing equality instead of a
		// direct scalar-multiplication equality: e(sigma, pk_s+g2*s) ==
		// e(g1*sk_c+g3*r+g4, g2).
		lhs := group.BLS12381.Pair(token.Sigma, pkS.Add(pp.G2.ScalarMult(token.S)))
		rhs := group.BLS12381.Pair(pp.G1.ScalarMult(skC).Add(pp.G3.ScalarMult(token.R)).Add(pp.G4), pp.G2)
		require.True(t, lhs.Equal(rhs), "pairing token must satisfy e(sigma, pk_s+g2*s) == e(g1*sk_c+g3*r+g4, g2)")
	})
}
