package subgraph

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/veilpay/veild/pkg/indexer"
	"github.com/veilpay/veild/pkg/recovery"
)

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type depositRow struct {
	Precommitment string `json:"precommitment"`
	Value         string `json:"value"`
	Label         uint64 `json:"label,string"`
	BlockNumber   uint64 `json:"blockNumber,string"`
	TxHash        string `json:"transactionHash"`
}

func (r depositRow) toDepositEvent() (recovery.DepositEvent, error) {
	value, ok := new(big.Int).SetString(r.Value, 10)
	if !ok {
		return recovery.DepositEvent{}, fmt.Errorf(
			"%w: invalid deposit value %q", indexer.ErrMalformedResponse, r.Value,
		)
	}
	return recovery.DepositEvent{
		Precommitment: r.Precommitment,
		Value:         value,
		Label:         r.Label,
		BlockNumber:   r.BlockNumber,
		TxHash:        r.TxHash,
	}, nil
}

type confirmationRow struct {
	TxHash      string `json:"transactionHash"`
	BlockNumber uint64 `json:"blockNumber,string"`
}

func (r confirmationRow) toConfirmation() *indexer.Confirmation {
	return &indexer.Confirmation{
		TxHash:      r.TxHash,
		BlockNumber: r.BlockNumber,
	}
}
