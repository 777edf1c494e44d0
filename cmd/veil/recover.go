package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/ioutil"
	"math/big"

	"github.com/urfave/cli/v2"

	"github.com/veilpay/veild/internal/core/application"
	"github.com/veilpay/veild/pkg/indexer/subgraph"
	"github.com/veilpay/veild/pkg/poolkeys"
	"github.com/veilpay/veild/pkg/recovery"
)

var recoverDeposits = cli.Command{
	Name:  "recover",
	Usage: "Rebuild all private deposits from a wallet signature",
	Description: "Derives the master key material from the given wallet " +
		"signature and scans the public deposit feed with it. The feed is " +
		"fetched from the configured indexer, or read from a local JSON file " +
		"when --events is given.",
	Action: recoverAction,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "signature",
			Usage:    "hex encoded wallet signature the master keys derive from",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "events",
			Usage: "path to a JSON file with the deposit event feed, for offline recovery",
		},
		&cli.IntFlag{
			Name:  "max_misses",
			Usage: "miss-streak bound of the scan",
			Value: recovery.DefaultMaxConsecutiveMisses,
		},
	},
}

type depositEventJSON struct {
	Precommitment string `json:"precommitment"`
	Value         string `json:"value"`
	Label         uint64 `json:"label"`
	BlockNumber   uint64 `json:"blockNumber"`
	TxHash        string `json:"transactionHash"`
}

type recoveredDepositJSON struct {
	Index         uint64 `json:"index"`
	Nullifier     string `json:"nullifier"`
	Secret        string `json:"secret"`
	Precommitment string `json:"precommitment"`
	Value         string `json:"value"`
	BlockNumber   uint64 `json:"blockNumber"`
	TxHash        string `json:"transactionHash"`
}

func recoverAction(ctx *cli.Context) error {
	signature, err := hex.DecodeString(ctx.String("signature"))
	if err != nil {
		return errors.New("signature must be a hex encoded string")
	}

	scope, err := getScopeFromState()
	if err != nil {
		return err
	}

	var result *recovery.Result
	if eventsPath := ctx.String("events"); len(eventsPath) > 0 {
		result, err = recoverFromFile(
			signature, scope, eventsPath, ctx.Int("max_misses"),
		)
	} else {
		result, err = recoverFromIndexer(
			ctx, signature, scope, ctx.Int("max_misses"),
		)
	}
	if err != nil {
		return err
	}

	deposits := make([]recoveredDepositJSON, 0, len(result.Deposits))
	for _, d := range result.Deposits {
		deposits = append(deposits, recoveredDepositJSON{
			Index:         d.Index,
			Nullifier:     d.Nullifier.String(),
			Secret:        d.Secret.String(),
			Precommitment: d.Precommitment,
			Value:         d.Value.String(),
			BlockNumber:   d.BlockNumber,
			TxHash:        d.TxHash,
		})
	}
	printRespJSON(map[string]interface{}{
		"deposits":    deposits,
		"next_index":  result.NextIndex,
		"derivations": result.Derivations,
	})
	return nil
}

func recoverFromIndexer(
	ctx *cli.Context, signature []byte, scope *big.Int, maxMisses int,
) (*recovery.Result, error) {
	endpoint, err := getIndexerFromState()
	if err != nil {
		return nil, err
	}
	indexerSvc, err := subgraph.NewService(subgraph.Opts{Endpoint: endpoint})
	if err != nil {
		return nil, err
	}

	svc, err := application.NewRecoveryService(application.RecoveryOpts{
		IndexerSvc:           indexerSvc,
		Scope:                scope,
		MaxConsecutiveMisses: maxMisses,
	})
	if err != nil {
		return nil, err
	}
	return svc.RecoverDeposits(ctx.Context, signature)
}

func recoverFromFile(
	signature []byte, scope *big.Int, eventsPath string, maxMisses int,
) (*recovery.Result, error) {
	file, err := ioutil.ReadFile(eventsPath)
	if err != nil {
		return nil, err
	}
	var rows []depositEventJSON
	if err := json.Unmarshal(file, &rows); err != nil {
		return nil, err
	}

	events := make([]recovery.DepositEvent, 0, len(rows))
	for _, row := range rows {
		value, ok := new(big.Int).SetString(row.Value, 10)
		if !ok {
			return nil, errors.New("event value is not a valid decimal integer")
		}
		events = append(events, recovery.DepositEvent{
			Precommitment: row.Precommitment,
			Value:         value,
			Label:         row.Label,
			BlockNumber:   row.BlockNumber,
			TxHash:        row.TxHash,
		})
	}

	keys, err := poolkeys.MasterKeyMaterialFromSignature(signature)
	if err != nil {
		return nil, err
	}
	eventIndex, err := recovery.NewEventIndex(events)
	if err != nil {
		return nil, err
	}
	scanner, err := recovery.NewScanner(recovery.ScannerOpts{
		Scope:                scope,
		MaxConsecutiveMisses: maxMisses,
	})
	if err != nil {
		return nil, err
	}
	return scanner.Scan(keys, eventIndex)
}
