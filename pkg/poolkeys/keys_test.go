package poolkeys_test

import (
	"math/big"
	"testing"

	"github.com/iden3/go-iden3-crypto/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veilpay/veild/pkg/poolkeys"
)

func TestMasterKeyMaterialFromSignature(t *testing.T) {
	first, err := poolkeys.MasterKeyMaterialFromSignature(testSignature)
	require.NoError(t, err)
	second, err := poolkeys.MasterKeyMaterialFromSignature(testSignature)
	require.NoError(t, err)

	assert.Zero(t, first.MasterNullifier().Cmp(second.MasterNullifier()))
	assert.Zero(t, first.MasterSecret().Cmp(second.MasterSecret()))
	assert.NotZero(t, first.MasterNullifier().Cmp(first.MasterSecret()))
}

func TestMasterKeyMaterialFromShortSignature(t *testing.T) {
	keys, err := poolkeys.MasterKeyMaterialFromSignature([]byte("too short"))
	assert.Nil(t, keys)
	assert.EqualError(t, err, poolkeys.ErrInvalidSignature.Error())
}

func TestNewMasterKeyMaterial(t *testing.T) {
	keys, err := poolkeys.NewMasterKeyMaterial(big.NewInt(11), big.NewInt(22))
	require.NoError(t, err)
	assert.Equal(t, int64(11), keys.MasterNullifier().Int64())
	assert.Equal(t, int64(22), keys.MasterSecret().Int64())

	_, err = poolkeys.NewMasterKeyMaterial(nil, big.NewInt(22))
	assert.EqualError(t, err, poolkeys.ErrNullMasterKey.Error())

	_, err = poolkeys.NewMasterKeyMaterial(big.NewInt(11), new(big.Int).Set(constants.Q))
	assert.EqualError(t, err, poolkeys.ErrOutOfFieldScalar.Error())
}

func TestAccessorsReturnCopies(t *testing.T) {
	keys, err := poolkeys.NewMasterKeyMaterial(big.NewInt(11), big.NewInt(22))
	require.NoError(t, err)

	leaked := keys.MasterNullifier()
	leaked.SetInt64(999)
	assert.Equal(t, int64(11), keys.MasterNullifier().Int64())
}
