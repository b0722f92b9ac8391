package chac

import (
	"testing"

	"github.com/atsh-here/ntat/group"
	"github.com/atsh-here/ntat/randtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHonestRoundVerifies(t *testing.T) {
	rng := randtest.Deterministic(41)
	pp, err := Setup(rng)
	require.NoError(t, err)
	nonce, err := group.BLS12381.RandomScalar(rng)
	require.NoError(t, err)

	client := NewClient()
	server := NewServer()

	query, err := client.Query(rng, pp, nonce)
	require.NoError(t, err)

	resp, ok := server.Issue(rng, pp, nonce, query)
	require.True(t, ok)

	msg, err := client.Redeem(rng, pp, nonce, resp)
	require.NoError(t, err)

	assert.True(t, server.Redeem(pp, nonce, msg))
}

func TestMismatchedNonceFailsIssuance(t *testing.T) {
	rng := randtest.Deterministic(42)
	pp, err := Setup(rng)
	require.NoError(t, err)
	nonce, err := group.BLS12381.RandomScalar(rng)
	require.NoError(t, err)
	otherNonce, err := group.BLS12381.RandomScalar(rng)
	require.NoError(t, err)

	client := NewClient()
	server := NewServer()

	query, err := client.Query(rng, pp, nonce)
	require.NoError(t, err)

	_, ok := server.Issue(rng, pp, otherNonce, query)
	assert.False(t, ok)
}

func TestRerandomizedPresentationUnlinkableFromIssuanceQuery(t *testing.T) {
	rng := randtest.Deterministic(43)
	pp, err := Setup(rng)
	require.NoError(t, err)
	nonce, err := group.BLS12381.RandomScalar(rng)
	require.NoError(t, err)

	client := NewClient()
	server := NewServer()

	query, err := client.Query(rng, pp, nonce)
	require.NoError(t, err)
	resp, ok := server.Issue(rng, pp, nonce, query)
	require.True(t, ok)
	msg, err := client.Redeem(rng, pp, nonce, resp)
	require.NoError(t, err)

	assert.False(t, msg.Pkp1.Equal(query.Pk2))
	assert.True(t, server.Redeem(pp, nonce, msg))
}
