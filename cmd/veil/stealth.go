package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/ioutil"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/urfave/cli/v2"

	"github.com/veilpay/veild/pkg/stealth"
)

var stealthCmd = cli.Command{
	Name:   "stealth",
	Usage:  "Manage stealth meta-addresses and payments",
	Action: func(ctx *cli.Context) error { return cli.ShowCommandHelp(ctx, "stealth") },
	Subcommands: []*cli.Command{
		{
			Name:   "genkey",
			Usage:  "generate a fresh meta-address with its private keys",
			Action: stealthGenKeyAction,
		},
		{
			Name:   "pay",
			Usage:  "compute a one-time payment address for a meta-address",
			Action: stealthPayAction,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "meta_address",
					Usage:    "recipient meta-address in vp: form",
					Required: true,
				},
			},
		},
		{
			Name:   "scan",
			Usage:  "filter announcements down to the ones addressed to you",
			Action: stealthScanAction,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "spend_key",
					Usage:    "hex encoded spending private key",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "view_key",
					Usage:    "hex encoded viewing private key",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "announcements",
					Usage:    "path to a JSON file with the announcement feed",
					Required: true,
				},
			},
		},
	},
}

type announcementJSON struct {
	Address      string `json:"address"`
	EphemeralPub string `json:"ephemeralPub"`
	ViewTag      uint8  `json:"viewTag"`
}

func stealthGenKeyAction(ctx *cli.Context) error {
	meta, keys, err := stealth.GenerateMetaAddress()
	if err != nil {
		return err
	}

	printRespJSON(map[string]interface{}{
		"meta_address": meta.Encode(),
		"spend_key":    hex.EncodeToString(keys.SpendPriv.Serialize()),
		"view_key":     hex.EncodeToString(keys.ViewPriv.Serialize()),
	})
	return nil
}

func stealthPayAction(ctx *cli.Context) error {
	meta, err := stealth.DecodeMetaAddress(ctx.String("meta_address"))
	if err != nil {
		return err
	}

	payment, err := stealth.NewPayment(meta)
	if err != nil {
		return err
	}

	printRespJSON(map[string]interface{}{
		"address":       payment.Address,
		"ephemeral_pub": hex.EncodeToString(payment.EphemeralPub),
		"view_tag":      payment.ViewTag,
	})
	return nil
}

func stealthScanAction(ctx *cli.Context) error {
	keys, err := recipientKeysFromFlags(ctx)
	if err != nil {
		return err
	}

	file, err := ioutil.ReadFile(ctx.String("announcements"))
	if err != nil {
		return err
	}
	var rows []announcementJSON
	if err := json.Unmarshal(file, &rows); err != nil {
		return err
	}

	announcements := make([]stealth.Announcement, 0, len(rows))
	for _, row := range rows {
		ephemeralPub, err := hex.DecodeString(row.EphemeralPub)
		if err != nil {
			return errors.New("ephemeral pubkey must be a hex encoded string")
		}
		announcements = append(announcements, stealth.Announcement{
			Address:      row.Address,
			EphemeralPub: ephemeralPub,
			ViewTag:      row.ViewTag,
		})
	}

	matches, err := stealth.Scan(keys, announcements)
	if err != nil {
		return err
	}

	out := make([]map[string]interface{}, 0, len(matches))
	for _, m := range matches {
		out = append(out, map[string]interface{}{
			"address":       m.Announcement.Address,
			"one_time_key":  hex.EncodeToString(m.OneTimePriv.Serialize()),
			"ephemeral_pub": hex.EncodeToString(m.Announcement.EphemeralPub),
		})
	}
	printRespJSON(out)
	return nil
}

func recipientKeysFromFlags(ctx *cli.Context) (*stealth.RecipientKeys, error) {
	spendKey, err := hex.DecodeString(ctx.String("spend_key"))
	if err != nil {
		return nil, errors.New("spend key must be a hex encoded string")
	}
	viewKey, err := hex.DecodeString(ctx.String("view_key"))
	if err != nil {
		return nil, errors.New("view key must be a hex encoded string")
	}

	spendPriv, _ := btcec.PrivKeyFromBytes(spendKey)
	viewPriv, _ := btcec.PrivKeyFromBytes(viewKey)
	return &stealth.RecipientKeys{
		SpendPriv: spendPriv,
		ViewPriv:  viewPriv,
	}, nil
}
