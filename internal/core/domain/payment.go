package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentKey identifies a payment uniquely across chains. The (txHash,
// chainId) pair is what keeps re-reconciliation idempotent: the same
// on-chain transfer can never be tracked twice.
type PaymentKey struct {
	TxHash  string
	ChainID uint64
}

func (k PaymentKey) String() string {
	return fmt.Sprintf("%s:%d", k.TxHash, k.ChainID)
}

// SentPayment is an outgoing payment the daemon tracks until its transaction
// confirms on-chain.
type SentPayment struct {
	ID                   string
	UserID               string
	TxHash               string
	ChainID              uint64
	RecipientAddress     string
	RecipientPortName    string
	Amount               string
	Currency             string
	TokenAddress         string
	Source               PaymentSource
	Memo                 string
	// ParentPaymentID links a payment funded by another payment of the same
	// kind (a hop chain). Ancestry is resolved by lookup on this id, never
	// by embedding the parent record.
	ParentPaymentID      string
	Status               Status
	BlockNumber          uint64
	VerificationAttempts int
	VerificationError    string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewSentPaymentOpts is the struct given to the NewSentPayment factory.
type NewSentPaymentOpts struct {
	UserID            string
	TxHash            string
	ChainID           uint64
	RecipientAddress  string
	RecipientPortName string
	Amount            string
	Currency          string
	TokenAddress      string
	Source            PaymentSource
	Memo              string
	ParentPaymentID   string
}

func (o NewSentPaymentOpts) validate() error {
	if len(o.TxHash) <= 0 {
		return ErrPaymentNullTxHash
	}
	switch o.Source {
	case SourceWallet, SourcePort, SourcePool:
	default:
		return ErrPaymentInvalidSource
	}
	amount, err := decimal.NewFromString(o.Amount)
	if err != nil || amount.Sign() <= 0 {
		return ErrPaymentInvalidAmount
	}
	return nil
}

// NewSentPayment returns a pending sent payment with a new id.
func NewSentPayment(opts NewSentPaymentOpts) (*SentPayment, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &SentPayment{
		ID:                uuid.New().String(),
		UserID:            opts.UserID,
		TxHash:            opts.TxHash,
		ChainID:           opts.ChainID,
		RecipientAddress:  opts.RecipientAddress,
		RecipientPortName: opts.RecipientPortName,
		Amount:            opts.Amount,
		Currency:          opts.Currency,
		TokenAddress:      opts.TokenAddress,
		Source:            opts.Source,
		Memo:              opts.Memo,
		ParentPaymentID:   opts.ParentPaymentID,
		Status:            StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Key returns the unique (txHash, chainId) key of the payment.
func (p *SentPayment) Key() PaymentKey {
	return PaymentKey{TxHash: p.TxHash, ChainID: p.ChainID}
}

// IsPending returns whether the payment still awaits confirmation.
func (p *SentPayment) IsPending() bool { return p.Status == StatusPending }

// IsTerminal returns whether the payment reached a final status.
func (p *SentPayment) IsTerminal() bool { return p.Status != StatusPending }

// Confirm brings a pending payment to confirmed. No-op on terminal records.
func (p *SentPayment) Confirm(blockNumber uint64) bool {
	if p.IsTerminal() {
		return false
	}
	p.Status = StatusConfirmed
	p.BlockNumber = blockNumber
	p.VerificationError = ""
	p.UpdatedAt = time.Now()
	return true
}

// RecordVerificationMiss counts one unconfirmed reconciliation cycle, with
// the same ceiling semantics as Port.RecordVerificationMiss.
func (p *SentPayment) RecordVerificationMiss(maxAttempts int) (changed, failed bool) {
	if p.IsTerminal() {
		return false, false
	}
	p.VerificationAttempts++
	p.UpdatedAt = time.Now()
	if p.VerificationAttempts > maxAttempts {
		p.Status = StatusFailed
		p.VerificationError = MaxAttemptsMessage
		return true, true
	}
	return true, false
}

// PaymentReceipt is an incoming payment observed for one of the user's
// ports or stealth addresses, tracked until its transaction confirms.
type PaymentReceipt struct {
	ID                   string
	UserID               string
	PortID               string
	TxHash               string
	ChainID              uint64
	SenderAddress        string
	Amount               string
	Currency             string
	TokenAddress         string
	PaymentType          PaymentType
	Memo                 string
	Status               Status
	BlockNumber          uint64
	VerificationAttempts int
	VerificationError    string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewPaymentReceiptOpts is the struct given to the NewPaymentReceipt factory.
type NewPaymentReceiptOpts struct {
	UserID        string
	PortID        string
	TxHash        string
	ChainID       uint64
	SenderAddress string
	Amount        string
	Currency      string
	TokenAddress  string
	PaymentType   PaymentType
	Memo          string
}

func (o NewPaymentReceiptOpts) validate() error {
	if len(o.TxHash) <= 0 {
		return ErrPaymentNullTxHash
	}
	switch o.PaymentType {
	case PaymentTypeRegular, PaymentTypeStealthPay, PaymentTypePrivateSend:
	default:
		return ErrPaymentInvalidType
	}
	amount, err := decimal.NewFromString(o.Amount)
	if err != nil || amount.Sign() <= 0 {
		return ErrPaymentInvalidAmount
	}
	return nil
}

// NewPaymentReceipt returns a pending receipt with a new id.
func NewPaymentReceipt(opts NewPaymentReceiptOpts) (*PaymentReceipt, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &PaymentReceipt{
		ID:            uuid.New().String(),
		UserID:        opts.UserID,
		PortID:        opts.PortID,
		TxHash:        opts.TxHash,
		ChainID:       opts.ChainID,
		SenderAddress: opts.SenderAddress,
		Amount:        opts.Amount,
		Currency:      opts.Currency,
		TokenAddress:  opts.TokenAddress,
		PaymentType:   opts.PaymentType,
		Memo:          opts.Memo,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Key returns the unique (txHash, chainId) key of the receipt.
func (r *PaymentReceipt) Key() PaymentKey {
	return PaymentKey{TxHash: r.TxHash, ChainID: r.ChainID}
}

// IsPending returns whether the receipt still awaits confirmation.
func (r *PaymentReceipt) IsPending() bool { return r.Status == StatusPending }

// IsTerminal returns whether the receipt reached a final status.
func (r *PaymentReceipt) IsTerminal() bool { return r.Status != StatusPending }

// Confirm brings a pending receipt to confirmed. No-op on terminal records.
func (r *PaymentReceipt) Confirm(blockNumber uint64) bool {
	if r.IsTerminal() {
		return false
	}
	r.Status = StatusConfirmed
	r.BlockNumber = blockNumber
	r.VerificationError = ""
	r.UpdatedAt = time.Now()
	return true
}

// RecordVerificationMiss counts one unconfirmed reconciliation cycle, with
// the same ceiling semantics as Port.RecordVerificationMiss.
func (r *PaymentReceipt) RecordVerificationMiss(maxAttempts int) (changed, failed bool) {
	if r.IsTerminal() {
		return false, false
	}
	r.VerificationAttempts++
	r.UpdatedAt = time.Now()
	if r.VerificationAttempts > maxAttempts {
		r.Status = StatusFailed
		r.VerificationError = MaxAttemptsMessage
		return true, true
	}
	return true, false
}
