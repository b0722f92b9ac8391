// Command notary is a demonstration and comparison harness for the five
// anonymous-token schemes: it runs a full issue-then-redeem round for a
// chosen scheme and reports whether redemption verified, dispatching to
// one subcommand per scheme and recording each live run in a
// sessionregistry for the duration of the round.
package main

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"github.com/atsh-here/ntat/chac"
	"github.com/atsh-here/ntat/group"
	"github.com/atsh-here/ntat/logging"
	"github.com/atsh-here/ntat/ntat"
	"github.com/atsh-here/ntat/ntatpairing"
	"github.com/atsh-here/ntat/ntatristretto"
	"github.com/atsh-here/ntat/randtest"
	"github.com/atsh-here/ntat/sessionregistry"
	"github.com/atsh-here/ntat/uprove"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var registry = sessionregistry.New(1200, 2400)

func rngFor(c *cli.Context) io.Reader {
	if c.IsSet("seed") {
		return randtest.Deterministic(c.Uint64("seed"))
	}
	return rand.Reader
}

func runNtat(c *cli.Context) error {
	rng := rngFor(c)
	pp, err := ntat.Setup(rng)
	if err != nil {
		return err
	}
	skC, err := group.Secp256k1.RandomScalar(rng)
	if err != nil {
		return err
	}
	skS, err := group.Secp256k1.RandomScalar(rng)
	if err != nil {
		return err
	}
	pkC := pp.G1.ScalarMult(skC)
	pkS := pp.G2.ScalarMult(skS)

	client := ntat.NewClient(pp, pkS)
	server := ntat.NewServer(pp, pkC)
	registry.Put(c.String("session"), "ntat", client)

	query, err := client.Query(rng, skC)
	if err != nil {
		return err
	}
	resp, ok := server.Issue(rng, skS, query)
	if !ok {
		return fmt.Errorf("ntat: issuance rejected")
	}
	token, ok := client.Final(resp)
	if !ok {
		return fmt.Errorf("ntat: DLEQ verification failed")
	}
	proof1, err := client.ProveRedeem1(rng, token, skC)
	if err != nil {
		return err
	}
	challenge, ok := server.VerifyRedeem1(rng, skS, token, proof1)
	if !ok {
		return fmt.Errorf("ntat: redemption round 1 rejected")
	}
	proof2 := client.ProveRedeem2(token, skC, challenge)
	if !server.VerifyRedeem2(token, proof2) {
		return fmt.Errorf("ntat: redemption round 2 rejected")
	}
	registry.Destroy(c.String("session"))
	fmt.Println("ntat: redemption verified")
	return nil
}

func runNtatRistretto(c *cli.Context) error {
	rng := rngFor(c)
	pp, err := ntatristretto.Setup(rng)
	if err != nil {
		return err
	}
	skC, err := group.Ristretto.RandomScalar(rng)
	if err != nil {
		return err
	}
	skS, err := group.Ristretto.RandomScalar(rng)
	if err != nil {
		return err
	}
	pkC := pp.G1.ScalarMult(skC)
	pkS := pp.G2.ScalarMult(skS)

	client := ntatristretto.NewClient(pp, pkS)
	server := ntatristretto.NewServer(pp, pkC)
	registry.Put(c.String("session"), "ntat-ristretto", client)

	query, err := client.Query(rng, skC)
	if err != nil {
		return err
	}
	resp, ok := server.Issue(rng, skS, query)
	if !ok {
		return fmt.Errorf("ntat-ristretto: issuance rejected")
	}
	token, ok := client.Final(resp)
	if !ok {
		return fmt.Errorf("ntat-ristretto: DLEQ verification failed")
	}
	proof1, err := client.ProveRedeem1(rng, token, skC)
	if err != nil {
		return err
	}
	challenge, ok := server.VerifyRedeem1(rng, skS, token, proof1)
	if !ok {
		return fmt.Errorf("ntat-ristretto: redemption round 1 rejected")
	}
	proof2 := client.ProveRedeem2(token, skC, challenge)
	if !server.VerifyRedeem2(token, proof2) {
		return fmt.Errorf("ntat-ristretto: redemption round 2 rejected")
	}
	registry.Destroy(c.String("session"))
	fmt.Println("ntat-ristretto: redemption verified")
	return nil
}

func runNtatPairing(c *cli.Context) error {
	rng := rngFor(c)
	pp, err := ntatpairing.Setup(rng)
	if err != nil {
		return err
	}
	skC, err := group.BLS12381.RandomScalar(rng)
	if err != nil {
		return err
	}
	skS, err := group.BLS12381.RandomScalar(rng)
	if err != nil {
		return err
	}
	pkC := pp.G1.ScalarMult(skC)
	pkS := pp.G2.ScalarMult(skS)

	client := ntatpairing.NewClient(pp, pkS)
	server := ntatpairing.NewServer(pp, pkC)
	registry.Put(c.String("session"), "ntat-pairing", client)

	query, err := client.Query(rng, skC)
	if err != nil {
		return err
	}
	resp, ok := server.Issue(rng, skS, query)
	if !ok {
		return fmt.Errorf("ntat-pairing: issuance rejected")
	}
	token, ok := client.Final(resp)
	if !ok {
		return fmt.Errorf("ntat-pairing: pairing verification failed")
	}
	proof1, err := client.ProveRedeem1(rng, token, skC)
	if err != nil {
		return err
	}
	challenge, ok := server.VerifyRedeem1(rng, pkS, token, proof1)
	if !ok {
		return fmt.Errorf("ntat-pairing: redemption round 1 rejected")
	}
	proof2 := client.ProveRedeem2(token, skC, challenge)
	if !server.VerifyRedeem2(token, proof2) {
		return fmt.Errorf("ntat-pairing: redemption round 2 rejected")
	}
	registry.Destroy(c.String("session"))
	fmt.Println("ntat-pairing: redemption verified")
	return nil
}

func runUprove(c *cli.Context) error {
	rng := rngFor(c)
	pp, skS, err := uprove.Setup(rng)
	if err != nil {
		return err
	}
	attr, err := group.Secp256k1.RandomScalar(rng)
	if err != nil {
		return err
	}

	client := uprove.NewClient(pp)
	server := uprove.NewServer(pp, skS)
	registry.Put(c.String("session"), "uprove", client)

	gamma, err := server.Initiate(rng)
	if err != nil {
		return err
	}
	challenge, err := client.Blind(rng, attr, gamma)
	if err != nil {
		return err
	}
	r := server.Sign(challenge)
	token := client.Unblind(r)

	comm, err := client.ProveRedeem1(rng)
	if err != nil {
		return err
	}
	redeemChallenge, ok := server.VerifyRedeem1(rng, token, comm)
	if !ok {
		return fmt.Errorf("uprove: token rejected at redemption")
	}
	z, rho := client.ProveRedeem2(redeemChallenge)
	if !server.VerifyRedeem2(token, z, rho) {
		return fmt.Errorf("uprove: redemption proof rejected")
	}
	registry.Destroy(c.String("session"))
	fmt.Println("uprove: redemption verified")
	return nil
}

func runChac(c *cli.Context) error {
	rng := rngFor(c)
	pp, err := chac.Setup(rng)
	if err != nil {
		return err
	}
	nonce, err := group.BLS12381.RandomScalar(rng)
	if err != nil {
		return err
	}

	client := chac.NewClient()
	server := chac.NewServer()
	registry.Put(c.String("session"), "chac", client)

	query, err := client.Query(rng, pp, nonce)
	if err != nil {
		return err
	}
	resp, ok := server.Issue(rng, pp, nonce, query)
	if !ok {
		return fmt.Errorf("chac: issuance rejected")
	}
	msg, err := client.Redeem(rng, pp, nonce, resp)
	if err != nil {
		return err
	}
	if !server.Redeem(pp, nonce, msg) {
		return fmt.Errorf("chac: redemption rejected")
	}
	registry.Destroy(c.String("session"))
	fmt.Println("chac: redemption verified")
	return nil
}

func schemeCommand(name, usage string, action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "session", Value: "demo", Usage: "session id to register in the registry"},
			&cli.Uint64Flag{Name: "seed", Usage: "use a deterministic RNG seeded with this value instead of crypto/rand"},
		},
		Action: action,
	}
}

func main() {
	app := &cli.App{
		Name:  "notary",
		Usage: "run one round of a token scheme end to end and report whether redemption verified",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "trace, debug, info, warn, error, or disabled"},
		},
		Before: func(c *cli.Context) error {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			logging.Configure(os.Stderr, level)
			return nil
		},
		Commands: []*cli.Command{
			schemeCommand("ntat", "issue and redeem one NTAT token over secp256k1", runNtat),
			schemeCommand("ntat-ristretto", "issue and redeem one NTAT token over Ristretto", runNtatRistretto),
			schemeCommand("ntat-pairing", "issue and redeem one NTAT token over BLS12-381", runNtatPairing),
			schemeCommand("uprove", "issue and redeem one U-Prove token over secp256k1", runUprove),
			schemeCommand("chac", "issue and redeem one CHAC credential over BLS12-381", runChac),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logging.For("notary").Fatal().Err(err).Msg("run failed")
	}
}
