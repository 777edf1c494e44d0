package webhookpubsub

import (
	"encoding/json"
	"net/url"

	"github.com/google/uuid"
	"github.com/thanhpk/randstr"
)

const secretLength = 30

// Webhook is one registered notification endpoint.
type Webhook struct {
	ID         string        `json:"id"`
	ActionType WebhookAction `json:"action_type"`
	Endpoint   string        `json:"endpoint"`
	Secret     string        `json:"secret"`
}

// NewWebhook returns a webhook with a new id for the given action and
// endpoint. When no secret is provided a random one is generated, so every
// delivery can be signed.
func NewWebhook(actionType WebhookAction, endpoint, secret string) (*Webhook, error) {
	if actionType < PortConfirmed || actionType > AllActions {
		return nil, ErrInvalidTopic
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, ErrInvalidEndpoint
	}
	if len(secret) <= 0 {
		secret = randstr.Hex(secretLength)
	}
	return &Webhook{
		ID:         uuid.New().String(),
		ActionType: actionType,
		Endpoint:   endpoint,
		Secret:     secret,
	}, nil
}

// IsSecured returns whether deliveries to the webhook get signed.
func (h *Webhook) IsSecured() bool {
	return len(h.Secret) > 0
}

// Serialize returns the webhook in JSON format.
func (h *Webhook) Serialize() []byte {
	b, _ := json.Marshal(*h)
	return b
}
