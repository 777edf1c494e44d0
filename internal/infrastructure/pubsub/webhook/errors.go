package webhookpubsub

import "errors"

var (
	// ErrInvalidTopic ...
	ErrInvalidTopic = errors.New("topic is of unknown type")
	// ErrInvalidEndpoint ...
	ErrInvalidEndpoint = errors.New("webhook endpoint must be a valid URI")
	// ErrWebhookNotFound ...
	ErrWebhookNotFound = errors.New("webhook not found")
)
