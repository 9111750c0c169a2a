// Package signing converts opaque base64-encoded transaction blobs into
// signed blobs through the connected wallet. It knows nothing about what
// the transactions pay for; callers own the payload semantics.
package signing

import (
	"context"
	"encoding/base64"
	"strconv"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/minterra/walletlink/internal/provider"
	"github.com/minterra/walletlink/internal/session"
	walleterr "github.com/minterra/walletlink/pkg/errors"
)

// Coordinator signs batches of encoded transactions with the connected
// account. Batches are atomic: one failed transaction fails the whole
// call with no partial result.
type Coordinator struct {
	adapter *provider.Adapter
	store   *session.Store
	log     zerolog.Logger
}

// New creates a signing coordinator.
func New(adapter *provider.Adapter, store *session.Store, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		adapter: adapter,
		store:   store,
		log:     log.With().Str("component", "signing").Logger(),
	}
}

// SignTransactions decodes each base64 blob into its native transaction,
// attaches the connected account as signer, and submits the whole batch
// for one interactive approval. The result preserves input order:
// signed[i] corresponds to blobs[i].
func (c *Coordinator) SignTransactions(ctx context.Context, blobs []string) ([]string, error) {
	state := c.store.GetState()
	if !state.IsConnected || state.Account == nil {
		return nil, walleterr.ErrNotConnected
	}
	signer := state.Account.Address

	group := make([]provider.SignerTransaction, 0, len(blobs))
	for i, blob := range blobs {
		txn, err := decodeTransaction(blob)
		if err != nil {
			return nil, walleterr.WithDetails(err, map[string]string{"index": strconv.Itoa(i)})
		}
		group = append(group, provider.SignerTransaction{
			Txn:     txn,
			Signers: []string{signer},
		})
	}

	signed, err := c.adapter.SignTransaction(ctx, [][]provider.SignerTransaction{group})
	if err != nil {
		c.store.SetError(err.Error())
		c.log.Warn().Err(err).Int("count", len(blobs)).Msg("signing failed")
		return nil, err
	}
	if len(signed) != len(blobs) {
		err := walleterr.WithDetails(walleterr.ErrSigningFailed, map[string]string{
			"want": strconv.Itoa(len(blobs)),
			"got":  strconv.Itoa(len(signed)),
		})
		c.store.SetError(err.Error())
		return nil, err
	}

	out := make([]string, len(signed))
	for i, bytes := range signed {
		out[i] = base64.StdEncoding.EncodeToString(bytes)
	}

	c.store.ClearError()
	c.log.Debug().Int("count", len(out)).Msg("signed transaction batch")
	return out, nil
}

// SignTransaction is the single-transaction convenience form of
// SignTransactions, with identical error semantics.
func (c *Coordinator) SignTransaction(ctx context.Context, blob string) (string, error) {
	signed, err := c.SignTransactions(ctx, []string{blob})
	if err != nil {
		return "", err
	}
	return signed[0], nil
}

// decodeTransaction parses one base64 blob into the provider's native
// transaction representation.
func decodeTransaction(blob string) (*types.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.ErrInvalidTransaction, "decoding base64")
	}

	txn := new(types.Transaction)
	if err := txn.UnmarshalBinary(raw); err != nil {
		return nil, walleterr.Wrap(walleterr.ErrInvalidTransaction, "decoding transaction")
	}
	return txn, nil
}

// EncodeTransaction renders a native transaction into the base64 blob
// convention consumers pass to SignTransactions. Exposed for the order
// and payment flows that build transfers locally.
func EncodeTransaction(txn *types.Transaction) (string, error) {
	raw, err := txn.MarshalBinary()
	if err != nil {
		return "", walleterr.Wrap(err, "encoding transaction")
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
