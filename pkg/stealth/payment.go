package stealth

import (
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
)

// Payment is the sender-side output of a stealth payment: the one-time
// address funds go to and the announcement data published alongside it.
type Payment struct {
	Address      string
	EphemeralPub []byte
	ViewTag      byte
}

// NewPayment computes a fresh one-time address for the recipient behind the
// given meta-address. A new ephemeral key is drawn per payment, so paying
// the same recipient twice yields unrelated addresses.
func NewPayment(meta *MetaAddress) (*Payment, error) {
	if meta == nil {
		return nil, ErrNullMetaAddress
	}

	ephemeralPriv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return newPaymentWithEphemeral(meta, ephemeralPriv)
}

func newPaymentWithEphemeral(
	meta *MetaAddress, ephemeralPriv *btcec.PrivateKey,
) (*Payment, error) {
	curve := btcec.S256()

	sharedX, sharedY := curve.ScalarMult(
		meta.viewPub.X(), meta.viewPub.Y(), ephemeralPriv.Serialize(),
	)
	tweak, viewTag := sharedTweak(sharedX, sharedY)

	oneTimeX, oneTimeY := oneTimePoint(meta, tweak)

	return &Payment{
		Address:      ethAddress(oneTimeX, oneTimeY),
		EphemeralPub: ephemeralPriv.PubKey().SerializeCompressed(),
		ViewTag:      viewTag,
	}, nil
}

// oneTimePoint computes spendPub + tweak*G.
func oneTimePoint(meta *MetaAddress, tweak *big.Int) (*big.Int, *big.Int) {
	curve := btcec.S256()
	tweakX, tweakY := curve.ScalarBaseMult(tweak.Bytes())
	return curve.Add(meta.spendPub.X(), meta.spendPub.Y(), tweakX, tweakY)
}
