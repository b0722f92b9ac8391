package ntatristretto

import (
	"testing"

	"github.com/atsh-here/ntat/group"
	"github.com/atsh-here/ntat/randtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHonestRoundVerifies(t *testing.T) {
	rng := randtest.Deterministic(11)
	pp, err := Setup(rng)
	require.NoError(t, err)
	skC, err := group.Ristretto.RandomScalar(rng)
	require.NoError(t, err)
	skS, err := group.Ristretto.RandomScalar(rng)
	require.NoError(t, err)
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

func TestTamperedCommitmentFailsRedemption(t *testing.T) {
	rng := randtest.Deterministic(12)
	pp, err := Setup(rng)
	require.NoError(t, err)
	skC, err := group.Ristretto.RandomScalar(rng)
	require.NoError(t, err)
	skS, err := group.Ristretto.RandomScalar(rng)
	require.NoError(t, err)
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

	forged, err := group.Ristretto.RandomScalar(rng)
	require.NoError(t, err)
	proof1.Comm = forged

	challenge, ok := server.VerifyRedeem1(rng, skS, token, proof1)
	require.True(t, ok) // the structural check passes; only the commitment is wrong

	proof2 := client.ProveRedeem2(token, skC, challenge)
	assert.False(t, server.VerifyRedeem2(token, proof2))
}
