package provider_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minterra/walletlink/internal/provider"
	"github.com/minterra/walletlink/internal/provider/providertest"
	walleterr "github.com/minterra/walletlink/pkg/errors"
)

const testAddr = "0x1111111111111111111111111111111111111111"

func newAdapter(connector provider.Connector) *provider.Adapter {
	return provider.New(connector, zerolog.Nop())
}

func transferTxn() provider.SignerTransaction {
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	txn := types.NewTx(&types.LegacyTx{To: &to, Value: big.NewInt(1), Gas: 21000, GasPrice: big.NewInt(0)})
	return provider.SignerTransaction{Txn: txn, Signers: []string{testAddr}}
}

func TestAdapter_Available(t *testing.T) {
	t.Parallel()

	t.Run("nil adapter and nil connector are unavailable", func(t *testing.T) {
		t.Parallel()
		var a *provider.Adapter
		assert.False(t, a.Available())
		assert.False(t, newAdapter(nil).Available())
	})

	t.Run("tracks connector presence", func(t *testing.T) {
		t.Parallel()
		connector := providertest.New(testAddr)
		a := newAdapter(connector)
		assert.True(t, a.Available())

		connector.SetAvailable(false)
		assert.False(t, a.Available())
	})
}

func TestAdapter_Connect(t *testing.T) {
	t.Parallel()

	t.Run("returns approved addresses", func(t *testing.T) {
		t.Parallel()
		a := newAdapter(providertest.New(testAddr))

		addresses, err := a.Connect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{testAddr}, addresses)
	})

	t.Run("unavailable", func(t *testing.T) {
		t.Parallel()
		connector := providertest.New(testAddr)
		connector.SetAvailable(false)

		_, err := newAdapter(connector).Connect(context.Background())
		require.ErrorIs(t, err, walleterr.ErrProviderUnavailable)
	})

	t.Run("classifies pending conflict", func(t *testing.T) {
		t.Parallel()
		connector := providertest.New(testAddr)
		connector.FailConnect(provider.ErrRequestPending)

		_, err := newAdapter(connector).Connect(context.Background())
		require.ErrorIs(t, err, walleterr.ErrPendingRequest)
	})

	t.Run("classifies user rejection as signing failure", func(t *testing.T) {
		t.Parallel()
		connector := providertest.New(testAddr)
		connector.FailConnect(provider.ErrUserRejected)

		_, err := newAdapter(connector).Connect(context.Background())
		require.ErrorIs(t, err, walleterr.ErrSigningFailed)
	})

	t.Run("wraps unknown provider errors", func(t *testing.T) {
		t.Parallel()
		connector := providertest.New(testAddr)
		connector.FailConnect(errors.New("bridge crashed"))

		_, err := newAdapter(connector).Connect(context.Background())
		require.Error(t, err)
		assert.Equal(t, "GENERAL_ERROR", walleterr.Code(err))
		assert.Contains(t, err.Error(), "bridge crashed")
	})
}

func TestAdapter_ReconnectSession(t *testing.T) {
	t.Parallel()

	t.Run("no prior session", func(t *testing.T) {
		t.Parallel()
		a := newAdapter(providertest.New(testAddr))

		_, err := a.ReconnectSession(context.Background())
		require.ErrorIs(t, err, walleterr.ErrNoSession)
	})

	t.Run("resumes session", func(t *testing.T) {
		t.Parallel()
		connector := providertest.New(testAddr)
		connector.SetSession(true)

		addresses, err := newAdapter(connector).ReconnectSession(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{testAddr}, addresses)
	})
}

func TestAdapter_DisconnectSwallowsErrors(t *testing.T) {
	t.Parallel()
	connector := providertest.New(testAddr)
	connector.SetSession(true)
	connector.FailDisconnect(errors.New("session already gone"))

	a := newAdapter(connector)
	a.Disconnect(context.Background()) // must not panic or surface the error
	assert.Equal(t, 1, connector.DisconnectCalls())
}

func TestAdapter_SignTransaction(t *testing.T) {
	t.Parallel()

	t.Run("signs a group", func(t *testing.T) {
		t.Parallel()
		a := newAdapter(providertest.New(testAddr))

		signed, err := a.SignTransaction(context.Background(), [][]provider.SignerTransaction{{transferTxn()}})
		require.NoError(t, err)
		require.Len(t, signed, 1)
		assert.NotEmpty(t, signed[0])
	})

	t.Run("classifies pending conflict", func(t *testing.T) {
		t.Parallel()
		connector := providertest.New(testAddr)
		connector.FailSign(provider.ErrRequestPending)

		_, err := newAdapter(connector).SignTransaction(context.Background(), [][]provider.SignerTransaction{{transferTxn()}})
		require.ErrorIs(t, err, walleterr.ErrPendingRequest)
	})
}

func TestDefault_ConstructOnce(t *testing.T) {
	first := provider.Default(providertest.New(testAddr), zerolog.Nop())
	second := provider.Default(providertest.New("0x3333333333333333333333333333333333333333"), zerolog.Nop())
	assert.Same(t, first, second)
}
