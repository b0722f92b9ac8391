package sigma

import (
	"testing"

	"github.com/atsh-here/ntat/group"
	"github.com/atsh-here/ntat/randtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rep3Fixture(t *testing.T, seed uint64) (REP3Params, group.Point, group.Point, group.Scalar, group.Scalar, group.Scalar) {
	rng := randtest.Deterministic(seed)
	g1, err := group.Secp256k1.RandomPoint(rng)
	require.NoError(t, err)
	g2, err := group.Secp256k1.RandomPoint(rng)
	require.NoError(t, err)
	g3, err := group.Secp256k1.RandomPoint(rng)
	require.NoError(t, err)
	g4, err := group.Secp256k1.RandomPoint(rng)
	require.NoError(t, err)
	pp := REP3Params{G: group.Secp256k1, DomainTag: "sigma-test", G1: g1, G2: g2, G3: g3, G4: g4, StringEncoded: true}

	witnessX, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)
	lambda, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)
	r, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)

	x := g1.ScalarMult(witnessX)
	t0 := x.Add(g3.ScalarMult(r)).Add(g4).ScalarMult(lambda)
	return pp, x, t0, witnessX, lambda, r
}

func TestREP3HonestProofVerifies(t *testing.T) {
	rng := randtest.Deterministic(900)
	pp, x, tpoint, witnessX, lambda, r := rep3Fixture(t, 901)

	proof, err := REP3Prove(rng, pp, x, tpoint, witnessX, lambda, r)
	require.NoError(t, err)
	assert.True(t, REP3Verify(pp, x, tpoint, proof))
}

func TestREP3TamperedResponseFails(t *testing.T) {
	rng := randtest.Deterministic(902)
	pp, x, tpoint, witnessX, lambda, r := rep3Fixture(t, 903)

	proof, err := REP3Prove(rng, pp, x, tpoint, witnessX, lambda, r)
	require.NoError(t, err)

	forged := proof
	forgedResp1, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)
	forged.Resp1 = forgedResp1

	assert.False(t, REP3Verify(pp, x, tpoint, forged))
}

func TestREP3TranscriptBindsAllFourGenerators(t *testing.T) {
	rng := randtest.Deterministic(904)
	pp, x, tpoint, witnessX, lambda, r := rep3Fixture(t, 905)

	proof, err := REP3Prove(rng, pp, x, tpoint, witnessX, lambda, r)
	require.NoError(t, err)
	require.True(t, REP3Verify(pp, x, tpoint, proof))

	// G2 never appears in the proof's own equations, but the deployment's
	// full parameter set must still be bound into the challenge: swapping
	// it out after the fact must invalidate the proof.
	otherG2, err := group.Secp256k1.RandomPoint(rng)
	require.NoError(t, err)
	tampered := pp
	tampered.G2 = otherG2

	assert.False(t, REP3Verify(tampered, x, tpoint, proof))
}

func dleqFixture(t *testing.T, seed uint64) (DLEQParams, group.Point, group.Point, group.Point, group.Scalar, group.Scalar) {
	rng := randtest.Deterministic(seed)
	g1, err := group.Secp256k1.RandomPoint(rng)
	require.NoError(t, err)
	g2, err := group.Secp256k1.RandomPoint(rng)
	require.NoError(t, err)
	g3, err := group.Secp256k1.RandomPoint(rng)
	require.NoError(t, err)
	g4, err := group.Secp256k1.RandomPoint(rng)
	require.NoError(t, err)
	pp := DLEQParams{G: group.Secp256k1, DomainTag: "sigma-test", G1: g1, G2: g2, G3: g3, G4: g4, StringEncoded: true}

	sScalar, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)
	yScalar, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)
	s := g3.ScalarMult(sScalar) // an arbitrary "S" base distinct from g2
	y := g2.ScalarMult(yScalar)
	tpoint := s.ScalarMult(yScalar.Add(sScalar))
	return pp, y, s, tpoint, sScalar, yScalar
}

func TestDLEQHonestProofVerifies(t *testing.T) {
	rng := randtest.Deterministic(906)
	pp, y, s, tpoint, sScalar, yScalar := dleqFixture(t, 907)

	proof, err := DLEQProve(rng, pp, y, s, tpoint, sScalar, yScalar)
	require.NoError(t, err)
	assert.True(t, DLEQVerify(pp, y, s, tpoint, sScalar, proof))
}

func TestDLEQTamperedResponseFails(t *testing.T) {
	rng := randtest.Deterministic(908)
	pp, y, s, tpoint, sScalar, yScalar := dleqFixture(t, 909)

	proof, err := DLEQProve(rng, pp, y, s, tpoint, sScalar, yScalar)
	require.NoError(t, err)

	forged := proof
	forgedResp, err := group.Secp256k1.RandomScalar(rng)
	require.NoError(t, err)
	forged.Resp = forgedResp

	assert.False(t, DLEQVerify(pp, y, s, tpoint, sScalar, forged))
}

func TestDLEQTranscriptBindsAllFourGenerators(t *testing.T) {
	rng := randtest.Deterministic(910)
	pp, y, s, tpoint, sScalar, yScalar := dleqFixture(t, 911)

	proof, err := DLEQProve(rng, pp, y, s, tpoint, sScalar, yScalar)
	require.NoError(t, err)
	require.True(t, DLEQVerify(pp, y, s, tpoint, sScalar, proof))

	// G1, G3, G4 never appear in this proof's own equations, but must
	// still be bound into the challenge alongside G2.
	otherG1, err := group.Secp256k1.RandomPoint(rng)
	require.NoError(t, err)
	tampered := pp
	tampered.G1 = otherG1

	assert.False(t, DLEQVerify(tampered, y, s, tpoint, sScalar, proof))
}
