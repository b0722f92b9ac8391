package ntat

import (
	"testing"

	"github.com/atsh-here/ntat/group"
	"github.com/atsh-here/ntat/randtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRound(t *testing.T, seed uint64) (PublicParams, group.Scalar, group.Scalar) {
	rng := randtest.Deterministic(seed)
	pp, err := Setup(rng)
	require.NoError(t, err)
	skC, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)
	skS, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)
	return pp, skC, skS
}

func TestHonestRoundVerifies(t *testing.T) {
	pp, skC, skS := newRound(t, 1)
	rng := randtest.Deterministic(2)
	pkC := pp.G1.ScalarMult(skC)
	pkS := pp.G2.ScalarMult(skS)

	client := NewClient(pp, pkS)
	server := NewServer(pp, pkC)

	query, err := client.Query(rng, skC)
	require.NoError(t, err)

	resp, ok := server.Issue(rng, skS, query)
	require.True(t, ok)

	token, ok := client.Final(resp)
	require.True(t, ok)

	proof1, err := client.ProveRedeem1(rng, token, skC)
	require.NoError(t, err)

	challenge, ok := server.VerifyRedeem1(rng, skS, token, proof1)
	require.True(t, ok)

	proof2 := client.ProveRedeem2(token, skC, challenge)
	assert.True(t, server.VerifyRedeem2(token, proof2))
}

func TestForgedResponseSFailsDLEQ(t *testing.T) {
	pp, skC, skS := newRound(t, 3)
	rng := randtest.Deterministic(4)
	pkC := pp.G1.ScalarMult(skC)
	pkS := pp.G2.ScalarMult(skS)

	client := NewClient(pp, pkS)
	server := NewServer(pp, pkC)

	query, err := client.Query(rng, skC)
	require.NoError(t, err)

	resp, ok := server.Issue(rng, skS, query)
	require.True(t, ok)

	forged, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)
	resp.S = forged

	_, ok = client.Final(resp)
	assert.False(t, ok)
}

func TestMismatchedClientKeyFailsRedemption(t *testing.T) {
	pp, skC, skS := newRound(t, 5)
	rng := randtest.Deterministic(6)
	pkS := pp.G2.ScalarMult(skS)

	otherSkC, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)
	pkOther := pp.G1.ScalarMult(otherSkC)

	client := NewClient(pp, pkS)
	server := NewServer(pp, pkOther)

	query, err := client.Query(rng, skC)
	require.NoError(t, err)

	resp, ok := server.Issue(rng, skS, query)
	require.True(t, ok)

	token, ok := client.Final(resp)
	require.True(t, ok)

	proof1, err := client.ProveRedeem1(rng, token, skC)
	require.NoError(t, err)

	_, ok = server.VerifyRedeem1(rng, skS, token, proof1)
	assert.False(t, ok)
}

// TestIndependentSessionsProduceUnlinkableTokens covers the blindness
// property: two sessions run with the identical (sk_c, sk_s) pair but
// independent randomness must not repeat any of sigma, r, or s.
func TestIndependentSessionsProduceUnlinkableTokens(t *testing.T) {
	runRound := func(seed uint64, pp PublicParams, skC, skS group.Scalar) Token {
		rng := randtest.Deterministic(seed)
		pkC := pp.G1.ScalarMult(skC)
		pkS := pp.G2.ScalarMult(skS)

		client := NewClient(pp, pkS)
		server := NewServer(pp, pkC)

		query, err := client.Query(rng, skC)
		require.NoError(t, err)
		resp, ok := server.Issue(rng, skS, query)
		require.True(t, ok)
		token, ok := client.Final(resp)
		require.True(t, ok)
		return token
	}

	pp, skC, skS := newRound(t, 9)

	tokenA := runRound(10, pp, skC, skS)
	tokenB := runRound(11, pp, skC, skS)

	assert.False(t, tokenA.Sigma.Equal(tokenB.Sigma), "independent sessions must not reuse sigma")
	assert.False(t, tokenA.R.Equal(tokenB.R), "independent sessions must not reuse r")
	assert.False(t, tokenA.S.Equal(tokenB.S), "independent sessions must not reuse s")
}

func TestClientOperationsOutOfOrderPanics(t *testing.T) {
	pp, skC, _ := newRound(t, 7)
	rng := randtest.Deterministic(8)
	pkS, err := group.Secp256k1.RandomPoint(rng)
	require.NoError(t, err)

	client := NewClient(pp, pkS)
	assert.Panics(t, func() {
		_, _ = client.ProveRedeem1(rng, Token{}, skC)
	})
}
