package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Port is a stealth payment endpoint a user registers on-chain. It is
// created pending and advanced to confirmed or failed by the reconciler
// once the registration shows up (or repeatedly fails to show up) in the
// indexer. Ports are never deleted, only archived.
type Port struct {
	ID                   string
	UserID               string
	IndexerLinkID        string
	Name                 string
	Type                 PortType
	StealthMetaAddress   string
	ViewingKeyEncrypted  string
	ChainID              uint64
	Status               Status
	TxHash               string
	BlockNumber          uint64
	VerificationAttempts int
	VerificationError    string
	Active               bool
	Archived             bool
	TotalReceived        decimal.Decimal
	TotalCollected       decimal.Decimal
	PaymentCount         int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewPortOpts is the struct given to the NewPort factory.
type NewPortOpts struct {
	UserID        string
	Name          string
	Type          PortType
	ChainID       uint64
	IndexerLinkID string
	// Stealth key material may be deferred to a second registration step.
	StealthMetaAddress  string
	ViewingKeyEncrypted string
}

func (o NewPortOpts) validate() error {
	if len(o.Name) <= 0 {
		return ErrPortNullName
	}
	switch o.Type {
	case PortTypePermanent, PortTypeRecurring, PortTypeOneTime, PortTypeBurner:
	default:
		return ErrPortInvalidType
	}
	return nil
}

// NewPort returns a pending port with a new id.
func NewPort(opts NewPortOpts) (*Port, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Port{
		ID:                  uuid.New().String(),
		UserID:              opts.UserID,
		IndexerLinkID:       opts.IndexerLinkID,
		Name:                opts.Name,
		Type:                opts.Type,
		StealthMetaAddress:  opts.StealthMetaAddress,
		ViewingKeyEncrypted: opts.ViewingKeyEncrypted,
		ChainID:             opts.ChainID,
		Status:              StatusPending,
		Active:              true,
		TotalReceived:       decimal.Zero,
		TotalCollected:      decimal.Zero,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// IsPending returns whether the port still awaits on-chain confirmation.
func (p *Port) IsPending() bool { return p.Status == StatusPending }

// IsConfirmed returns whether the port registration was confirmed on-chain.
func (p *Port) IsConfirmed() bool { return p.Status == StatusConfirmed }

// IsTerminal returns whether the port reached a final status.
func (p *Port) IsTerminal() bool { return p.Status != StatusPending }

// Confirm brings a pending port to the confirmed status, recording the
// confirmation evidence. Confirming a port already in a terminal status is
// a no-op, so late or duplicated indexer responses are harmless.
func (p *Port) Confirm(txHash string, blockNumber uint64) bool {
	if p.IsTerminal() {
		return false
	}
	p.Status = StatusConfirmed
	p.TxHash = txHash
	p.BlockNumber = blockNumber
	p.VerificationError = ""
	p.UpdatedAt = time.Now()
	return true
}

// RecordVerificationMiss counts one reconciliation cycle that found no
// confirmation evidence. The attempt counter only ever grows; once the new
// count exceeds maxAttempts the port fails for good. With maxAttempts=5 the
// port survives misses 1..5 and fails on the sixth. Returns whether the
// record changed and whether it just failed.
func (p *Port) RecordVerificationMiss(maxAttempts int) (changed, failed bool) {
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

// AttachStealthKeys completes a two-step registration by setting the stealth
// meta-address and the encrypted viewing key.
func (p *Port) AttachStealthKeys(metaAddress, viewingKeyEncrypted string) error {
	if p.Archived {
		return ErrPortArchived
	}
	if len(p.StealthMetaAddress) > 0 {
		return ErrPortStealthKeysAlreadySet
	}
	p.StealthMetaAddress = metaAddress
	p.ViewingKeyEncrypted = viewingKeyEncrypted
	p.UpdatedAt = time.Now()
	return nil
}

// RegisterPayment accounts one incoming payment on the port totals.
func (p *Port) RegisterPayment(amount decimal.Decimal) {
	p.TotalReceived = p.TotalReceived.Add(amount)
	p.PaymentCount++
	p.UpdatedAt = time.Now()
}

// RegisterCollection accounts funds the owner swept out of the port.
func (p *Port) RegisterCollection(amount decimal.Decimal) {
	p.TotalCollected = p.TotalCollected.Add(amount)
	p.UpdatedAt = time.Now()
}

// Archive retires the port. Archived ports keep their history but accept no
// further mutation.
func (p *Port) Archive() {
	p.Active = false
	p.Archived = true
	p.UpdatedAt = time.Now()
}
