package webhookpubsub

import "sync"

// webhookStore keeps the registered webhooks in memory, indexed by id and by
// action.
type webhookStore struct {
	webhooks map[string]*Webhook
	lock     *sync.RWMutex
}

func newWebhookStore() *webhookStore {
	return &webhookStore{
		webhooks: map[string]*Webhook{},
		lock:     &sync.RWMutex{},
	}
}

func (s *webhookStore) add(hook *Webhook) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.webhooks[hook.ID] = hook
}

func (s *webhookStore) remove(id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.webhooks[id]; !ok {
		return ErrWebhookNotFound
	}
	delete(s.webhooks, id)
	return nil
}

func (s *webhookStore) listForAction(action WebhookAction) []*Webhook {
	s.lock.RLock()
	defer s.lock.RUnlock()

	list := make([]*Webhook, 0)
	for _, hook := range s.webhooks {
		if hook.ActionType == action || hook.ActionType == AllActions {
			list = append(list, hook)
		}
	}
	return list
}
