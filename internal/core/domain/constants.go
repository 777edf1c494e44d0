package domain

// Status represents the reconciliation state of a chain-backed record.
// Pending records are the only ones the reconciler touches; Confirmed and
// Failed are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// PortType classifies a payment port by its intended lifetime.
type PortType string

const (
	PortTypePermanent PortType = "permanent"
	PortTypeRecurring PortType = "recurring"
	PortTypeOneTime   PortType = "one-time"
	PortTypeBurner    PortType = "burner"
)

// PaymentSource tells which balance a sent payment was funded from.
type PaymentSource string

const (
	SourceWallet PaymentSource = "wallet"
	SourcePort   PaymentSource = "port"
	SourcePool   PaymentSource = "pool"
)

// PaymentType discriminates how a payment receipt was paid.
type PaymentType string

const (
	PaymentTypeRegular     PaymentType = "regular"
	PaymentTypeStealthPay  PaymentType = "stealth_pay"
	PaymentTypePrivateSend PaymentType = "private_send"
)

// MaxAttemptsMessage is the human-readable error persisted on a record that
// ran out of verification attempts.
const MaxAttemptsMessage = "exceeded max verification attempts"
