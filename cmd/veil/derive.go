package main

import (
	"encoding/hex"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/veilpay/veild/pkg/poolkeys"
)

var derive = cli.Command{
	Name:  "derive",
	Usage: "Derive the secret triple of one deposit index",
	Description: "Computes the (nullifier, secret, precommitment) triple a " +
		"deposit at the given index uses, out of the wallet signature and the " +
		"configured pool scope. The precommitment is the only public part.",
	Action: deriveAction,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "signature",
			Usage:    "hex encoded wallet signature the master keys derive from",
			Required: true,
		},
		&cli.Uint64Flag{
			Name:  "index",
			Usage: "deposit index to derive",
		},
	},
}

func deriveAction(ctx *cli.Context) error {
	signature, err := hex.DecodeString(ctx.String("signature"))
	if err != nil {
		return errors.New("signature must be a hex encoded string")
	}

	scope, err := getScopeFromState()
	if err != nil {
		return err
	}

	keys, err := poolkeys.MasterKeyMaterialFromSignature(signature)
	if err != nil {
		return err
	}
	derived, err := keys.Derive(poolkeys.DeriveOpts{
		Scope: scope,
		Index: ctx.Uint64("index"),
	})
	if err != nil {
		return err
	}

	printRespJSON(map[string]interface{}{
		"index":          derived.Index,
		"nullifier":      derived.Nullifier.String(),
		"secret":         derived.Secret.String(),
		"precommitment":  derived.Precommitment.String(),
		"commitment_key": derived.CommitmentKey(),
	})
	return nil
}
