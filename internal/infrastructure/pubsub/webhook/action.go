package webhookpubsub

import "github.com/veilpay/veild/internal/core/application"

// WebhookAction is the type of events a webhook can be subscribed for.
type WebhookAction int

const (
	PortConfirmed WebhookAction = iota
	PortFailed
	PaymentConfirmed
	PaymentFailed
	AllActions
)

var (
	actionToString = map[WebhookAction]string{
		PortConfirmed:    application.TopicPortConfirmed,
		PortFailed:       application.TopicPortFailed,
		PaymentConfirmed: application.TopicPaymentConfirmed,
		PaymentFailed:    application.TopicPaymentFailed,
		AllActions:       "all",
	}
	stringToAction = map[string]WebhookAction{
		application.TopicPortConfirmed:    PortConfirmed,
		application.TopicPortFailed:       PortFailed,
		application.TopicPaymentConfirmed: PaymentConfirmed,
		application.TopicPaymentFailed:    PaymentFailed,
		"all":                             AllActions,
	}
)

func (a WebhookAction) String() string {
	s, ok := actionToString[a]
	if !ok {
		return "unknown"
	}
	return s
}

// WebhookActionFromString returns the action matching the given label.
func WebhookActionFromString(label string) (WebhookAction, bool) {
	action, ok := stringToAction[label]
	return action, ok
}
