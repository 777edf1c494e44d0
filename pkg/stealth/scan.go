package stealth

import (
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
)

// Announcement is the public record a sender publishes with a stealth
// payment: where the funds went and the hints a recipient needs to claim
// them.
type Announcement struct {
	Address      string
	EphemeralPub []byte
	ViewTag      byte
}

// Match is an announcement the scanning recipient owns, together with the
// recovered one-time private key able to spend at its address.
type Match struct {
	Announcement Announcement
	OneTimePriv  *btcec.PrivateKey
}

// Scan filters announcements down to the ones addressed to the recipient.
// The view tag rejects the bulk of foreign announcements on a single byte
// comparison before any point multiplication on the spend side happens.
func Scan(keys *RecipientKeys, announcements []Announcement) ([]Match, error) {
	if keys == nil || keys.ViewPriv == nil || keys.SpendPriv == nil {
		return nil, ErrNullViewKey
	}

	meta := MetaAddressFromKeys(keys)
	matches := make([]Match, 0)
	for _, ann := range announcements {
		match, err := tryMatch(keys, meta, ann)
		if err != nil {
			if err == ErrNoMatch {
				continue
			}
			return nil, err
		}
		matches = append(matches, *match)
	}
	return matches, nil
}

func tryMatch(
	keys *RecipientKeys, meta *MetaAddress, ann Announcement,
) (*Match, error) {
	ephemeralPub, err := btcec.ParsePubKey(ann.EphemeralPub)
	if err != nil {
		return nil, ErrNoMatch
	}

	curve := btcec.S256()
	sharedX, sharedY := curve.ScalarMult(
		ephemeralPub.X(), ephemeralPub.Y(), keys.ViewPriv.Serialize(),
	)
	tweak, viewTag := sharedTweak(sharedX, sharedY)
	if viewTag != ann.ViewTag {
		return nil, ErrNoMatch
	}

	oneTimeX, oneTimeY := oneTimePoint(meta, tweak)
	if !strings.EqualFold(ethAddress(oneTimeX, oneTimeY), ann.Address) {
		return nil, ErrNoMatch
	}

	return &Match{
		Announcement: ann,
		OneTimePriv:  oneTimePriv(keys.SpendPriv, tweak),
	}, nil
}

// oneTimePriv computes spendPriv + tweak mod N, the key able to spend at the
// one-time address.
func oneTimePriv(spendPriv *btcec.PrivateKey, tweak *big.Int) *btcec.PrivateKey {
	n := btcec.S256().Params().N
	scalar := new(big.Int).SetBytes(spendPriv.Serialize())
	scalar.Add(scalar, tweak)
	scalar.Mod(scalar, n)

	buf := make([]byte, 32)
	scalar.FillBytes(buf)
	priv, _ := btcec.PrivKeyFromBytes(buf)
	return priv
}
