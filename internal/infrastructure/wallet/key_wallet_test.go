package wallet

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "blip.dashboard/internal/domain/errors"
)

func TestKeyWallet_ConnectSignRecover(t *testing.T) {
	ctx := context.Background()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	w := NewKeyWalletFromKey(key)

	assert.False(t, w.Connected())
	assert.Empty(t, w.Address())
	_, err = w.SignMessage(ctx, []byte("hello"))
	assert.ErrorIs(t, err, domainerrors.ErrWalletNotConnected)

	addr, err := w.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), addr)
	assert.Equal(t, addr, w.Address())

	msg := []byte("Link wallet " + addr + " to Blip account ana@blip.money")
	sig, err := w.SignMessage(ctx, msg)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	recovered, err := RecoverAddress(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, addr, recovered.Hex())

	other, err := RecoverAddress([]byte("tampered"), sig)
	require.NoError(t, err)
	assert.NotEqual(t, addr, other.Hex())

	require.NoError(t, w.Disconnect(ctx))
	assert.False(t, w.Connected())
}

func TestNewKeyWallet(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := hexutil.Encode(crypto.FromECDSA(key))

	w, err := NewKeyWallet(hexKey)
	require.NoError(t, err)
	addr, err := w.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), addr)

	_, err = NewKeyWallet("not-a-key")
	assert.Equal(t, domainerrors.KindValidation, domainerrors.KindOf(err))
}

func TestRecoverAddress_BadLength(t *testing.T) {
	_, err := RecoverAddress([]byte("m"), []byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDisabled(t *testing.T) {
	var d Disabled
	_, err := d.Connect(context.Background())
	assert.Error(t, err)
	assert.False(t, d.Connected())
}
