package uprove

import (
	"testing"

	"github.com/atsh-here/ntat/group"
	"github.com/atsh-here/ntat/randtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHonestRoundVerifies(t *testing.T) {
	rng := randtest.Deterministic(31)
	pp, skS, err := Setup(rng)
	require.NoError(t, err)
	attr, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)

	client := NewClient(pp)
	server := NewServer(pp, skS)

	gamma, err := server.Initiate(rng)
	require.NoError(t, err)

	challenge, err := client.Blind(rng, attr, gamma)
	require.NoError(t, err)

	r := server.Sign(challenge)
	token := client.Unblind(r)

	assert.True(t, VerifyToken(pp, token))

	comm, err := client.ProveRedeem1(rng)
	require.NoError(t, err)

	redeemChallenge, ok := server.VerifyRedeem1(rng, token, comm)
	require.True(t, ok)

	z, rho := client.ProveRedeem2(redeemChallenge)
	assert.True(t, server.VerifyRedeem2(token, z, rho))
}

func TestTamperedTokenFailsVerification(t *testing.T) {
	rng := randtest.Deterministic(32)
	pp, skS, err := Setup(rng)
	require.NoError(t, err)
	attr, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)

	client := NewClient(pp)
	server := NewServer(pp, skS)

	gamma, err := server.Initiate(rng)
	require.NoError(t, err)
	challenge, err := client.Blind(rng, attr, gamma)
	require.NoError(t, err)
	r := server.Sign(challenge)
	token := client.Unblind(r)

	forged, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)
	token.RPrime = forged

	assert.False(t, VerifyToken(pp, token))
}

func TestRedemptionWithoutMatchingAttributeFails(t *testing.T) {
	rng := randtest.Deterministic(33)
	pp, skS, err := Setup(rng)
	require.NoError(t, err)
	attr, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)

	client := NewClient(pp)
	server := NewServer(pp, skS)

	gamma, err := server.Initiate(rng)
	require.NoError(t, err)
	challenge, err := client.Blind(rng, attr, gamma)
	require.NoError(t, err)
	r := server.Sign(challenge)
	token := client.Unblind(r)

	comm, err := client.ProveRedeem1(rng)
	require.NoError(t, err)
	redeemChallenge, ok := server.VerifyRedeem1(rng, token, comm)
	require.True(t, ok)

	// tamper with the client's hidden attribute witness between rounds
	client.attr, err = group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)

	z, rho := client.ProveRedeem2(redeemChallenge)
	assert.False(t, server.VerifyRedeem2(token, z, rho))
}
