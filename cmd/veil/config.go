package main

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/urfave/cli/v2"
)

var (
	indexerFlag = cli.StringFlag{
		Name:  "indexer",
		Usage: "subgraph endpoint URL the CLI queries for chain events",
		Value: "http://localhost:8000/subgraphs/name/veil",
	}

	scopeFlag = cli.StringFlag{
		Name:  "scope",
		Usage: "decimal pool scope identifier deposits are bound to",
		Value: "",
	}

	chainFlag = cli.StringFlag{
		Name:  "chain_id",
		Usage: "chain id used for payments without an explicit one",
		Value: "1",
	}
)

var config = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the veil CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:   "set",
			Usage:  "set a <key> <value> in the local state",
			Action: configSetAction,
		},
		{
			Name:   "init",
			Usage:  "initialize the local state with flags",
			Action: configInitAction,
			Flags: []cli.Flag{
				&indexerFlag,
				&scopeFlag,
				&chainFlag,
			},
		},
	},
}

func configAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	for key, value := range state {
		fmt.Println(key + ": " + value)
	}

	return nil
}

func configInitAction(c *cli.Context) error {
	return setState(map[string]string{
		"indexer":  c.String("indexer"),
		"scope":    c.String("scope"),
		"chain_id": c.String("chain_id"),
	})
}

func configSetAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("key and value are missing")
	}

	key := c.Args().Get(0)
	value := c.Args().Get(1)

	if err := setState(map[string]string{key: value}); err != nil {
		return err
	}

	fmt.Printf("%s %s has been set\n", key, value)

	return nil
}

func getScopeFromState() (*big.Int, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	raw, ok := state["scope"]
	if !ok || len(raw) <= 0 {
		return nil, errors.New("set pool scope with `config set scope`")
	}
	scope, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, errors.New("pool scope in state is not a valid decimal integer")
	}
	return scope, nil
}

func getIndexerFromState() (string, error) {
	state, err := getState()
	if err != nil {
		return "", err
	}
	endpoint, ok := state["indexer"]
	if !ok || len(endpoint) <= 0 {
		return "", errors.New("set indexer endpoint with `config set indexer`")
	}
	return endpoint, nil
}
