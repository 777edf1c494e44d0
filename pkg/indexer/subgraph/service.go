package subgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"

	"github.com/veilpay/veild/pkg/circuitbreaker"
	"github.com/veilpay/veild/pkg/httputil"
	"github.com/veilpay/veild/pkg/indexer"
	"github.com/veilpay/veild/pkg/recovery"
)

const (
	depositsPageSize = 1000

	metaQuery = `query { _meta { block { number } } }`

	depositsQuery = `query Deposits($scope: String!, $skip: Int!, $first: Int!) {
  deposits(where: { scope: $scope }, orderBy: blockNumber, skip: $skip, first: $first) {
    precommitment value label blockNumber transactionHash
  }
}`

	portRegistrationQuery = `query PortRegistration($id: ID!) {
  portRegistration(id: $id) { transactionHash blockNumber }
}`

	transactionQuery = `query Transaction($hash: String!, $chainId: String!) {
  transactions(where: { hash: $hash, chainId: $chainId }, first: 1) {
    transactionHash blockNumber
  }
}`
)

type service struct {
	endpoint    string
	cb          *gobreaker.CircuitBreaker
	rateLimiter ratelimit.Limiter
}

// Opts defines the parameters needed for creating a subgraph indexer service
// with the NewService method.
type Opts struct {
	Endpoint string
	// RequestsPerSecond bounds outgoing queries; defaults to 10.
	RequestsPerSecond int
}

func (o Opts) requestsPerSecond() int {
	if o.RequestsPerSecond > 0 {
		return o.RequestsPerSecond
	}
	return 10
}

// NewService returns a Graph-style indexer client as an indexer.Service
// interface, failing fast if the endpoint does not answer a meta query.
func NewService(opts Opts) (indexer.Service, error) {
	svc := &service{
		endpoint:    opts.Endpoint,
		cb:          circuitbreaker.NewCircuitBreaker("indexer"),
		rateLimiter: ratelimit.New(opts.requestsPerSecond()),
	}

	if err := svc.healthCheck(); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return svc, nil
}

func (s *service) healthCheck() error {
	_, err := s.query(context.Background(), metaQuery, nil)
	return err
}

func (s *service) GetDepositEvents(
	ctx context.Context, scope *big.Int,
) ([]recovery.DepositEvent, error) {
	events := make([]recovery.DepositEvent, 0)

	for skip := 0; ; skip += depositsPageSize {
		data, err := s.query(ctx, depositsQuery, map[string]interface{}{
			"scope": scope.String(),
			"skip":  skip,
			"first": depositsPageSize,
		})
		if err != nil {
			return nil, err
		}

		var payload struct {
			Deposits []depositRow `json:"deposits"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("%w: %s", indexer.ErrMalformedResponse, err)
		}

		for _, row := range payload.Deposits {
			event, err := row.toDepositEvent()
			if err != nil {
				return nil, err
			}
			events = append(events, event)
		}

		if len(payload.Deposits) < depositsPageSize {
			break
		}
	}

	return events, nil
}

func (s *service) GetPortRegistration(
	ctx context.Context, linkID string,
) (*indexer.Confirmation, error) {
	data, err := s.query(ctx, portRegistrationQuery, map[string]interface{}{
		"id": linkID,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		PortRegistration *confirmationRow `json:"portRegistration"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s", indexer.ErrMalformedResponse, err)
	}
	if payload.PortRegistration == nil {
		return nil, indexer.ErrNotFound
	}
	return payload.PortRegistration.toConfirmation(), nil
}

func (s *service) GetTransactionStatus(
	ctx context.Context, txHash string, chainID uint64,
) (*indexer.Confirmation, error) {
	data, err := s.query(ctx, transactionQuery, map[string]interface{}{
		"hash":    txHash,
		"chainId": fmt.Sprintf("%d", chainID),
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Transactions []confirmationRow `json:"transactions"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s", indexer.ErrMalformedResponse, err)
	}
	if len(payload.Transactions) <= 0 {
		return nil, indexer.ErrNotFound
	}
	return payload.Transactions[0].toConfirmation(), nil
}

func (s *service) query(
	ctx context.Context, query string, variables map[string]interface{},
) (json.RawMessage, error) {
	s.rateLimiter.Take()

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, err
	}

	raw, err := s.cb.Execute(func() (interface{}, error) {
		status, resp, err := httputil.NewHTTPRequest(
			ctx, http.MethodPost, s.endpoint, string(body),
			map[string]string{"Content-Type": "application/json"},
		)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("indexer answered with status %d: %s", status, resp)
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	var parsed graphqlResponse
	if err := json.Unmarshal([]byte(raw.(string)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %s", indexer.ErrMalformedResponse, err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("indexer query error: %s", parsed.Errors[0].Message)
	}
	return parsed.Data, nil
}
