package webhookpubsub

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/veilpay/veild/pkg/circuitbreaker"
	"github.com/veilpay/veild/pkg/httputil"
)

// Service notifies registered webhook endpoints about record transitions.
// It implements application.Publisher.
type Service struct {
	store *webhookStore
	cb    *gobreaker.CircuitBreaker
}

// NewWebhookPubSubService returns a webhook notification service.
func NewWebhookPubSubService() *Service {
	return &Service{
		store: newWebhookStore(),
		cb:    circuitbreaker.NewCircuitBreaker("webhook"),
	}
}

// Subscribe registers an endpoint for the given topic and returns the id of
// the new webhook. A random secret is generated when none is provided.
func (ws *Service) Subscribe(topic, endpoint, secret string) (string, error) {
	actionType, ok := stringToAction[topic]
	if !ok {
		return "", ErrInvalidTopic
	}

	hook, err := NewWebhook(actionType, endpoint, secret)
	if err != nil {
		return "", err
	}
	ws.store.add(hook)
	return hook.ID, nil
}

// Unsubscribe removes the webhook with the given id.
func (ws *Service) Unsubscribe(id string) error {
	return ws.store.remove(id)
}

// ListSubscriptionsForTopic returns the webhooks registered for a topic,
// including those subscribed for all actions.
func (ws *Service) ListSubscriptionsForTopic(topic string) []*Webhook {
	actionType, ok := WebhookActionFromString(topic)
	if !ok {
		return nil
	}
	return ws.store.listForAction(actionType)
}

// Publish makes a POST request to every webhook endpoint registered for the
// given topic. A circuit breaker approach maximizes the chances that every
// webhook gets invoked without errors.
func (ws *Service) Publish(topic string, message string) error {
	actionType, ok := WebhookActionFromString(topic)
	if !ok {
		return ErrInvalidTopic
	}

	hooks := ws.store.listForAction(actionType)

	eg := &errgroup.Group{}
	for i := range hooks {
		hook := hooks[i]
		eg.Go(func() error { return ws.doRequest(hook, message) })
	}
	return eg.Wait()
}

func (ws *Service) doRequest(hook *Webhook, payload string) error {
	_, err := ws.cb.Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if hook.IsSecured() {
			token := jwt.New(jwt.SigningMethodHS256)
			tokenString, _ := token.SignedString([]byte(hook.Secret))
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		status, resp, err := httputil.NewHTTPRequest(
			context.Background(), http.MethodPost, hook.Endpoint, payload, headers,
		)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("webhook answered with status %d: %s", status, resp)
		}
		return nil, nil
	})

	return err
}
