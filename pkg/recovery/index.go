package recovery

import "strings"

// EventIndex is an append-only arena of deposit events plus a commitment
// keyed index over it. Events are stored once in observation order and never
// mutated; lookups resolve a commitment to its arena position.
type EventIndex struct {
	arena     []DepositEvent
	positions map[string]int
}

// NewEventIndex builds the lookup structure for one scan out of the full
// event feed. Two different events sharing a commitment make the whole feed
// invalid (ErrDuplicateCommitment); exact redeliveries of the same event are
// collapsed, since indexers routinely replay logs.
func NewEventIndex(events []DepositEvent) (*EventIndex, error) {
	index := &EventIndex{
		arena:     make([]DepositEvent, 0, len(events)),
		positions: make(map[string]int, len(events)),
	}

	for _, event := range events {
		key := normalizeKey(event.Precommitment)
		if pos, ok := index.positions[key]; ok {
			if sameEvent(index.arena[pos], event) {
				continue
			}
			return nil, ErrDuplicateCommitment
		}
		index.positions[key] = len(index.arena)
		index.arena = append(index.arena, event)
	}

	return index, nil
}

// Lookup returns the event bound to the given commitment key, if any.
func (i *EventIndex) Lookup(commitmentKey string) (DepositEvent, bool) {
	pos, ok := i.positions[normalizeKey(commitmentKey)]
	if !ok {
		return DepositEvent{}, false
	}
	return i.arena[pos], true
}

// Size returns the number of distinct events held by the index.
func (i *EventIndex) Size() int {
	return len(i.arena)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimPrefix(key, "0x"))
}

func sameEvent(a, b DepositEvent) bool {
	if normalizeKey(a.TxHash) != normalizeKey(b.TxHash) {
		return false
	}
	if a.BlockNumber != b.BlockNumber || a.Label != b.Label {
		return false
	}
	if (a.Value == nil) != (b.Value == nil) {
		return false
	}
	if a.Value != nil && a.Value.Cmp(b.Value) != 0 {
		return false
	}
	return true
}
