package stealth

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/sha3"
)

const metaAddressHRP = "vp:"

// MetaAddress is the key material bundle a recipient publishes so that
// senders can compute one-time payment addresses unlinkable to the
// recipient's main address.
type MetaAddress struct {
	spendPub *btcec.PublicKey
	viewPub  *btcec.PublicKey
}

// RecipientKeys holds the private counterpart of a meta-address. The view
// key alone is enough to detect incoming payments (and is what gets shared
// with a scanning service); spending needs both.
type RecipientKeys struct {
	SpendPriv *btcec.PrivateKey
	ViewPriv  *btcec.PrivateKey
}

// GenerateMetaAddress creates a fresh stealth key pair bundle.
func GenerateMetaAddress() (*MetaAddress, *RecipientKeys, error) {
	spendPriv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, nil, err
	}
	viewPriv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, nil, err
	}

	meta := &MetaAddress{
		spendPub: spendPriv.PubKey(),
		viewPub:  viewPriv.PubKey(),
	}
	return meta, &RecipientKeys{SpendPriv: spendPriv, ViewPriv: viewPriv}, nil
}

// MetaAddressFromKeys rebuilds the publishable meta-address from recipient keys.
func MetaAddressFromKeys(keys *RecipientKeys) *MetaAddress {
	return &MetaAddress{
		spendPub: keys.SpendPriv.PubKey(),
		viewPub:  keys.ViewPriv.PubKey(),
	}
}

// Encode returns the canonical string form: the vp: prefix followed by the
// hex of both compressed public keys, spend first.
func (m *MetaAddress) Encode() string {
	return metaAddressHRP +
		hex.EncodeToString(m.spendPub.SerializeCompressed()) +
		hex.EncodeToString(m.viewPub.SerializeCompressed())
}

// DecodeMetaAddress parses the canonical string form of a meta-address.
func DecodeMetaAddress(encoded string) (*MetaAddress, error) {
	if !strings.HasPrefix(encoded, metaAddressHRP) {
		return nil, ErrInvalidMetaAddress
	}
	payload, err := hex.DecodeString(strings.TrimPrefix(encoded, metaAddressHRP))
	if err != nil {
		return nil, ErrInvalidMetaAddress
	}
	if len(payload) != 66 {
		return nil, ErrInvalidMetaAddress
	}

	spendPub, err := btcec.ParsePubKey(payload[:33])
	if err != nil {
		return nil, ErrInvalidMetaAddress
	}
	viewPub, err := btcec.ParsePubKey(payload[33:])
	if err != nil {
		return nil, ErrInvalidMetaAddress
	}
	return &MetaAddress{spendPub: spendPub, viewPub: viewPub}, nil
}

// SpendPub returns the spending public key.
func (m *MetaAddress) SpendPub() *btcec.PublicKey { return m.spendPub }

// ViewPub returns the viewing public key.
func (m *MetaAddress) ViewPub() *btcec.PublicKey { return m.viewPub }

func keccak256(chunks ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	return h.Sum(nil)
}

// sharedTweak hashes a shared curve point down to the (tweak scalar, view
// tag) pair both sides of a stealth payment agree on.
func sharedTweak(x, y *big.Int) (*big.Int, byte) {
	digest := keccak256(compressPoint(x, y))
	tweak := new(big.Int).SetBytes(digest)
	tweak.Mod(tweak, btcec.S256().Params().N)
	return tweak, digest[0]
}

func compressPoint(x, y *big.Int) []byte {
	buf := make([]byte, 33)
	if y.Bit(0) == 0 {
		buf[0] = 0x02
	} else {
		buf[0] = 0x03
	}
	x.FillBytes(buf[1:])
	return buf
}

// ethAddress derives the 0x address bound to an uncompressed curve point,
// the form the payment contracts deal in.
func ethAddress(x, y *big.Int) string {
	raw := make([]byte, 64)
	x.FillBytes(raw[:32])
	y.FillBytes(raw[32:])
	return "0x" + hex.EncodeToString(keccak256(raw)[12:])
}
