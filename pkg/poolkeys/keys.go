package poolkeys

import (
	"math/big"

	"github.com/iden3/go-iden3-crypto/constants"
	"golang.org/x/crypto/sha3"
)

var (
	masterNullifierTag = []byte("veil/master-nullifier/v1")
	masterSecretTag    = []byte("veil/master-secret/v1")
)

// MasterKeyMaterial is the pair of field scalars every per-deposit secret of
// a wallet is derived from. It is held by the recovering party only and is
// never persisted.
type MasterKeyMaterial struct {
	masterNullifier *big.Int
	masterSecret    *big.Int
}

// NewMasterKeyMaterial returns key material for the provided scalars after
// validating both are canonical field elements.
func NewMasterKeyMaterial(masterNullifier, masterSecret *big.Int) (*MasterKeyMaterial, error) {
	if masterNullifier == nil || masterSecret == nil {
		return nil, ErrNullMasterKey
	}
	if !inField(masterNullifier) || !inField(masterSecret) {
		return nil, ErrOutOfFieldScalar
	}
	return &MasterKeyMaterial{
		masterNullifier: new(big.Int).Set(masterNullifier),
		masterSecret:    new(big.Int).Set(masterSecret),
	}, nil
}

// MasterKeyMaterialFromSignature derives the master key pair from a wallet
// signature. The signature acts as the only secret a user must be able to
// reproduce: signing the same fixed message again yields the same master
// keys, which in turn makes every deposit secret recoverable from chain data
// alone.
func MasterKeyMaterialFromSignature(sig []byte) (*MasterKeyMaterial, error) {
	if len(sig) < 64 {
		return nil, ErrInvalidSignature
	}

	return &MasterKeyMaterial{
		masterNullifier: hashToField(masterNullifierTag, sig),
		masterSecret:    hashToField(masterSecretTag, sig),
	}, nil
}

// MasterNullifier returns a copy of the master nullifier scalar.
func (m *MasterKeyMaterial) MasterNullifier() *big.Int {
	return new(big.Int).Set(m.masterNullifier)
}

// MasterSecret returns a copy of the master secret scalar.
func (m *MasterKeyMaterial) MasterSecret() *big.Int {
	return new(big.Int).Set(m.masterSecret)
}

func hashToField(tag, msg []byte) *big.Int {
	h := sha3.NewLegacyKeccak256()
	h.Write(tag)
	h.Write(msg)
	v := new(big.Int).SetBytes(h.Sum(nil))
	return v.Mod(v, constants.Q)
}

func inField(v *big.Int) bool {
	return v.Sign() >= 0 && v.Cmp(constants.Q) < 0
}
