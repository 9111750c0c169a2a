package provider

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// EIP-1193 provider error codes, plus the JSON-RPC code wallets use for a
// prompt that is already open.
const (
	codeUserRejected   = 4001
	codeUnauthorized   = 4100
	codeDisconnected   = 4900
	codeRequestPending = -32002
)

// RPCConnector is a Connector backed by a wallet bridge speaking JSON-RPC:
// eth_requestAccounts, eth_accounts, eth_getBalance, wallet_signTransactions
// and wallet_revokePermissions. The bridge owns the interactive prompts; RPC
// calls block until the user answers them.
type RPCConnector struct {
	mu       sync.Mutex
	endpoint string
	client   *rpc.Client
	dialed   bool
	dialErr  error
	handlers []func()
}

// NewRPCConnector creates a connector for the bridge at endpoint. The
// connection is dialed lazily; an empty endpoint yields a connector that
// reports unavailable.
func NewRPCConnector(endpoint string) *RPCConnector {
	return &RPCConnector{endpoint: endpoint}
}

// NewRPCConnectorClient creates a connector over an already established RPC
// client. Used by embedders and in-process tests.
func NewRPCConnectorClient(client *rpc.Client) *RPCConnector {
	return &RPCConnector{client: client, dialed: true}
}

// Available implements Connector. It reports whether the bridge endpoint can
// be dialed; the result of the first dial is cached.
func (c *RPCConnector) Available() bool {
	_, err := c.rpcClient()
	return err == nil
}

// Connect implements Connector via eth_requestAccounts.
func (c *RPCConnector) Connect(ctx context.Context) ([]string, error) {
	var addresses []string
	if err := c.call(ctx, &addresses, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return addresses, nil
}

// ReconnectSession implements Connector via eth_accounts, which returns the
// approved accounts without prompting, or an empty list when this client was
// never approved.
func (c *RPCConnector) ReconnectSession(ctx context.Context) ([]string, error) {
	var addresses []string
	if err := c.call(ctx, &addresses, "eth_accounts"); err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, ErrNoPriorSession
	}
	return addresses, nil
}

// Disconnect implements Connector via wallet_revokePermissions.
func (c *RPCConnector) Disconnect(ctx context.Context) error {
	return c.call(ctx, nil, "wallet_revokePermissions", map[string]any{
		"eth_accounts": map[string]any{},
	})
}

// SignTransaction implements Connector. Groups are flattened in order for
// the wire; the bridge signs the whole batch under one approval and returns
// the signed payloads in the same order.
func (c *RPCConnector) SignTransaction(ctx context.Context, groups [][]SignerTransaction) ([][]byte, error) {
	var raw []hexutil.Bytes
	for _, group := range groups {
		for _, txn := range group {
			encoded, err := txn.Txn.MarshalBinary()
			if err != nil {
				return nil, fmt.Errorf("encoding transaction: %w", err)
			}
			raw = append(raw, encoded)
		}
	}

	var signed []hexutil.Bytes
	if err := c.call(ctx, &signed, "wallet_signTransactions", raw); err != nil {
		return nil, err
	}
	if len(signed) != len(raw) {
		return nil, fmt.Errorf("bridge returned %d signed payloads for %d transactions", len(signed), len(raw))
	}

	out := make([][]byte, len(signed))
	for i, bytes := range signed {
		out[i] = bytes
	}
	return out, nil
}

// Balance implements Connector via eth_getBalance, converting wei into
// whole native tokens. Transport failures are marked retryable; balance
// reads carry no interactive prompt.
func (c *RPCConnector) Balance(ctx context.Context, address string) (float64, error) {
	var wei hexutil.Big
	if err := c.call(ctx, &wei, "eth_getBalance", common.HexToAddress(address), "latest"); err != nil {
		if isProviderDecision(err) {
			return 0, err
		}
		return 0, WrapRetryable(err)
	}

	tokens, _ := new(big.Float).Quo(new(big.Float).SetInt(wei.ToInt()), weiPerToken).Float64()
	return tokens, nil
}

// OnDisconnect implements Connector. Handlers fire when the bridge answers
// any call with the disconnected code.
func (c *RPCConnector) OnDisconnect(handler func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Close tears down the underlying RPC client.
func (c *RPCConnector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		c.client.Close()
		c.client = nil
		c.dialed = false
	}
}

func (c *RPCConnector) rpcClient() (*rpc.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialed {
		if c.dialErr != nil {
			return nil, c.dialErr
		}
		return c.client, nil
	}
	if c.endpoint == "" {
		return nil, fmt.Errorf("no wallet bridge endpoint configured")
	}

	client, err := rpc.Dial(c.endpoint)
	c.dialed = true
	if err != nil {
		c.dialErr = fmt.Errorf("dialing wallet bridge: %w", err)
		return nil, c.dialErr
	}
	c.client = client
	return client, nil
}

// call runs one RPC method and translates wallet error codes into the
// connector sentinels.
func (c *RPCConnector) call(ctx context.Context, result any, method string, args ...any) error {
	client, err := c.rpcClient()
	if err != nil {
		return err
	}

	err = client.CallContext(ctx, result, method, args...)
	if err == nil {
		return nil
	}

	code, ok := providerCode(err)
	if !ok {
		return err
	}
	switch code {
	case codeUserRejected:
		return fmt.Errorf("%w: %s", ErrUserRejected, method)
	case codeRequestPending:
		return fmt.Errorf("%w: %s", ErrRequestPending, method)
	case codeUnauthorized:
		return fmt.Errorf("%w: %s", ErrNoPriorSession, method)
	case codeDisconnected:
		c.fireDisconnect()
		return fmt.Errorf("%w: %s", ErrNoPriorSession, method)
	default:
		return err
	}
}

func (c *RPCConnector) fireDisconnect() {
	c.mu.Lock()
	handlers := c.handlers
	c.handlers = nil
	c.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}
}

// isProviderDecision reports whether the error carries a deliberate wallet
// answer (a mapped sentinel or a coded JSON-RPC error) rather than a
// transport failure. Deliberate answers are never retried.
func isProviderDecision(err error) bool {
	if errors.Is(err, ErrUserRejected) || errors.Is(err, ErrRequestPending) || errors.Is(err, ErrNoPriorSession) {
		return true
	}
	_, coded := providerCode(err)
	return coded
}

// providerCode extracts the wallet error code when the bridge returned a
// structured JSON-RPC error.
func providerCode(err error) (int, bool) {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode(), true
	}
	return 0, false
}

// weiPerToken converts eth_getBalance results into whole native tokens.
var weiPerToken = new(big.Float).SetInt(big.NewInt(1_000_000_000_000_000_000))

var _ Connector = (*RPCConnector)(nil)
