package application

// RecordKind selects which family of pending records a reconciliation cycle
// works on. Records of different kinds are reconciled independently.
type RecordKind string

const (
	KindPortRegistration RecordKind = "port_registration"
	KindSentPayment      RecordKind = "sent_payment"
	KindPaymentReceipt   RecordKind = "payment_receipt"
)

// RecordKinds lists every kind the reconciler knows about.
func RecordKinds() []RecordKind {
	return []RecordKind{KindPortRegistration, KindSentPayment, KindPaymentReceipt}
}

// Topics published towards subscribers when records reach a terminal status.
const (
	TopicPortConfirmed    = "port_confirmed"
	TopicPortFailed       = "port_failed"
	TopicPaymentConfirmed = "payment_confirmed"
	TopicPaymentFailed    = "payment_failed"
)

// Publisher is the minimal pubsub surface the reconciler notifies through.
type Publisher interface {
	Publish(topic string, message string) error
}

// ReconcileSummary recaps one reconciliation cycle.
type ReconcileSummary struct {
	Kind      RecordKind
	Processed int
	Confirmed int
	Failed    int
	Retried   int
	// Skipped counts records left untouched because the indexer errored
	// transiently; they did not consume a verification attempt.
	Skipped int
}
