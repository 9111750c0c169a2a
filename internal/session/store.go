package session

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/minterra/walletlink/internal/cache"
	"github.com/minterra/walletlink/internal/provider"
	walleterr "github.com/minterra/walletlink/pkg/errors"
)

// Listener receives a state snapshot synchronously on every mutation.
type Listener func(State)

// Default probe throttling: focus events can fire in bursts, but a probe
// is a full provider round-trip.
const (
	defaultProbeRate  = rate.Limit(1)
	defaultProbeBurst = 3
)

// gasLimitTransfer is the fixed gas limit attached to plain transfers.
const gasLimitTransfer = 21000

// weiPerToken converts display units to the smallest on-chain unit.
var weiPerToken = new(big.Float).SetFloat64(1e18)

// Config wires a Store's collaborators.
type Config struct {
	// Adapter talks to the external wallet provider. Required.
	Adapter *provider.Adapter

	// Storage is the primary durable area; session markers are written
	// here and the watcher observes it. Required.
	Storage Storage

	// Extra lists additional storage areas included in the disconnect
	// purge (the provider SDK may write markers of its own elsewhere).
	Extra []Storage

	// Currency is the display currency for balances and transfers.
	Currency string

	// ProbeRate / ProbeBurst throttle reconnect probes. Zero values take
	// the defaults.
	ProbeRate  rate.Limit
	ProbeBurst int

	Logger zerolog.Logger
}

// Store is the single writer of wallet session state. All reads go through
// GetState or Subscribe; all mutations go through the public operations
// below. It is safe for concurrent use.
type Store struct {
	mu           sync.Mutex
	state        State
	listeners    map[uint64]Listener
	nextListener uint64

	adapter  *provider.Adapter
	primary  Storage
	storages []Storage
	balances *cache.BalanceCache
	probes   *rate.Limiter
	currency string
	clientID string
	log      zerolog.Logger

	// teardownArmed is true while handleProviderDisconnect is registered
	// with the connector. Connectors drop their handlers when they fire,
	// so the flag resets there; an explicit Disconnect leaves the handler
	// in place and the flag set.
	teardownArmed bool

	feed  event.Feed
	scope event.SubscriptionScope
}

// New creates a session store. It does not touch the provider; call
// CheckConnection (or Start) to attempt a silent reconnect.
func New(cfg Config) *Store {
	if cfg.Currency == "" {
		cfg.Currency = "ETH"
	}
	if cfg.ProbeRate == 0 {
		cfg.ProbeRate = defaultProbeRate
	}
	if cfg.ProbeBurst == 0 {
		cfg.ProbeBurst = defaultProbeBurst
	}

	s := &Store{
		state:     disconnectedState(),
		listeners: make(map[uint64]Listener),
		adapter:   cfg.Adapter,
		primary:   cfg.Storage,
		storages:  append([]Storage{cfg.Storage}, cfg.Extra...),
		balances:  cache.New(),
		probes:    rate.NewLimiter(cfg.ProbeRate, cfg.ProbeBurst),
		currency:  cfg.Currency,
		log:       cfg.Logger.With().Str("component", "session").Logger(),
	}

	// The client id survives restarts so the provider can correlate
	// sessions from the same install.
	if id, ok := s.primary.Get(KeyClientID); ok && id != "" {
		s.clientID = id
	} else {
		s.clientID = uuid.NewString()
	}

	return s
}

var (
	defaultStoreMu sync.Mutex
	defaultStore   *Store
)

// Default returns the process-wide store, constructing it on first call
// and eagerly attempting a silent reconnect. Later calls ignore their
// config and return the original instance.
func Default(cfg Config) *Store {
	defaultStoreMu.Lock()
	defer defaultStoreMu.Unlock()

	if defaultStore == nil {
		defaultStore = New(cfg)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		defaultStore.CheckConnection(ctx)
	}
	return defaultStore
}

// ClientID returns this install's stable client identifier.
func (s *Store) ClientID() string {
	return s.clientID
}

// GetState returns a snapshot of the current session state.
func (s *Store) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers a listener invoked synchronously with the new state
// snapshot on every mutation. The returned function unsubscribes it; other
// listeners are unaffected.
func (s *Store) Subscribe(listener Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = listener
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Connect opens the interactive wallet connection prompt and, on approval,
// transitions to connected state, persists the session markers, and
// notifies listeners and event subscribers.
//
// A second Connect while one is in flight fails fast with
// ErrConnectionInProgress rather than queueing; the in-flight attempt is
// not disturbed.
func (s *Store) Connect(ctx context.Context) (Account, error) {
	if !s.adapter.Available() {
		return Account{}, walleterr.ErrProviderUnavailable
	}

	s.mu.Lock()
	if s.state.IsConnecting {
		s.mu.Unlock()
		return Account{}, walleterr.ErrConnectionInProgress
	}
	s.state.IsConnecting = true
	s.state.Error = ""
	snap := s.state.clone()
	s.mu.Unlock()
	s.notify(snap)

	addresses, err := s.adapter.Connect(ctx)
	if err != nil {
		s.mu.Lock()
		s.state.IsConnecting = false
		s.state.Error = err.Error()
		snap = s.state.clone()
		s.mu.Unlock()
		s.notify(snap)

		s.log.Warn().Err(err).Msg("wallet connect failed")
		return Account{}, err
	}

	account := s.completeConnect(ctx, addresses[0])
	return account, nil
}

// Disconnect tears the session down: provider-side disconnect is best
// effort, local state is reset to the disconnected defaults, and every
// storage key matching the wallet vocabulary is purged. It never fails
// from the caller's perspective and is idempotent.
func (s *Store) Disconnect(ctx context.Context) {
	s.adapter.Disconnect(ctx)

	s.mu.Lock()
	s.state = disconnectedState()
	snap := s.state.clone()
	s.mu.Unlock()

	purged := 0
	for _, storage := range s.storages {
		purged += PurgeMatching(storage)
	}
	s.balances.Clear()

	// Notification goes out after state is cleared and storage purged.
	s.notify(snap)
	s.feed.Send(Event{Type: EventDisconnected})

	s.log.Info().Int("purged_keys", purged).Msg("wallet disconnected")
}

// CheckConnection probes the provider for a resumable session. On success
// it rehydrates state exactly like Connect. On failure it reports false
// and changes nothing: a transient probe failure must not regress a
// healthy connected state, so no listener is notified either.
//
// Probes are rate limited; a throttled call reports the current connection
// state without touching the provider.
func (s *Store) CheckConnection(ctx context.Context) bool {
	s.mu.Lock()
	connected := s.state.IsConnected
	s.mu.Unlock()

	if !s.probes.Allow() {
		return connected
	}

	addresses, err := s.adapter.ReconnectSession(ctx)
	if err != nil || len(addresses) == 0 {
		s.log.Debug().Err(err).Msg("reconnect probe found no session")
		return false
	}

	s.completeConnect(ctx, addresses[0])
	return true
}

// SendTransaction appends a pending transfer record synchronously, then
// performs the transfer through the provider and replaces the record in
// place (same id) with its confirmed or failed outcome.
func (s *Store) SendTransaction(ctx context.Context, to string, amount float64, currency string) (TransactionRecord, error) {
	s.mu.Lock()
	if !s.state.IsConnected || s.state.Account == nil {
		s.mu.Unlock()
		return TransactionRecord{}, walleterr.ErrNotConnected
	}
	from := s.state.Account.Address
	s.mu.Unlock()

	if !common.IsHexAddress(to) {
		return TransactionRecord{}, walleterr.WithDetails(walleterr.ErrInvalidAddress, map[string]string{"to": to})
	}
	if amount <= 0 {
		return TransactionRecord{}, walleterr.WithDetails(walleterr.ErrInvalidAmount, map[string]string{"amount": formatAmount(amount)})
	}
	if currency == "" {
		currency = s.currency
	}

	now := time.Now()
	record := TransactionRecord{
		ID:        newRecordID(now),
		Type:      TxSend,
		Amount:    amount,
		Currency:  currency,
		From:      from,
		To:        to,
		Status:    TxPending,
		Timestamp: now,
	}

	// Pending record is visible to listeners before the provider round-trip.
	s.mu.Lock()
	s.state.Transactions = append([]TransactionRecord{record}, s.state.Transactions...)
	snap := s.state.clone()
	s.mu.Unlock()
	s.notify(snap)

	hash, err := s.submitTransfer(ctx, from, to, amount)
	if err != nil {
		s.resolveRecord(record.ID, TxFailed, "", err.Error())
		s.log.Warn().Err(err).Str("tx", record.ID).Msg("transfer failed")

		if walleterr.Code(err) != "GENERAL_ERROR" {
			return s.recordByID(record.ID), err
		}
		return s.recordByID(record.ID), walleterr.Wrap(walleterr.ErrTransactionFailed, "%v", err)
	}

	s.resolveRecord(record.ID, TxConfirmed, hash, "")
	return s.recordByID(record.ID), nil
}

// SetError records an operation failure for passive observers. Components
// like the signing coordinator report through here rather than assigning
// into state; the store stays the single writer.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	s.state.Error = msg
	snap := s.state.clone()
	s.mu.Unlock()
	s.notify(snap)
}

// ClearError clears the last recorded failure. No-op (and no
// notification) when there is nothing to clear.
func (s *Store) ClearError() {
	s.mu.Lock()
	if s.state.Error == "" {
		s.mu.Unlock()
		return
	}
	s.state.Error = ""
	snap := s.state.clone()
	s.mu.Unlock()
	s.notify(snap)
}

// Close tears down event subscriptions. The store itself has no other
// resources; it lives for the process lifetime.
func (s *Store) Close() {
	s.closeEventScope()
}

// completeConnect is the shared success path for Connect and
// CheckConnection: register the provider disconnect handler, fetch the
// balance, transition state, persist markers, and fan out notifications.
func (s *Store) completeConnect(ctx context.Context, address string) Account {
	s.mu.Lock()
	armed := s.teardownArmed
	s.teardownArmed = true
	s.mu.Unlock()
	if !armed {
		s.adapter.OnDisconnect(s.handleProviderDisconnect)
	}

	balance := s.fetchBalance(ctx, address)

	s.mu.Lock()
	s.state.IsConnecting = false
	s.state.IsConnected = true
	s.state.Account = &Account{Address: address, Balance: balance, IsConnected: true}
	s.state.Balance = balance
	s.state.Error = ""
	account := *s.state.Account
	snap := s.state.clone()
	s.mu.Unlock()

	s.persistMarkers(address)
	s.notify(snap)
	s.feed.Send(Event{Type: EventConnected, Address: address, Balance: balance})

	s.log.Info().Str("address", address).Msg("wallet connected")
	return account
}

// handleProviderDisconnect routes provider-initiated disconnects through
// the same teardown as an explicit Disconnect call.
func (s *Store) handleProviderDisconnect() {
	s.log.Info().Msg("provider ended the session")

	s.mu.Lock()
	s.teardownArmed = false
	s.mu.Unlock()

	s.Disconnect(context.Background())
}

// fetchBalance asks the provider for the address balance, retrying
// transient failures and falling back to the last cached value when the
// provider stays unreachable.
func (s *Store) fetchBalance(ctx context.Context, address string) float64 {
	balance, err := provider.Retry(ctx, func() (float64, error) {
		return s.adapter.Balance(ctx, address)
	})
	if err != nil {
		if entry, ok, age := s.balances.Get(address); ok && !s.balances.IsStale(address) {
			s.log.Debug().Err(err).Dur("age", age).Msg("balance fetch failed, using cached value")
			return entry.Balance
		}
		s.log.Warn().Err(err).Msg("balance fetch failed with no fresh cached value")
		return 0
	}

	s.balances.Set(address, balance, s.currency)
	return balance
}

// persistMarkers mirrors the session into durable storage. Markers are
// advisory; failures are logged, never propagated.
func (s *Store) persistMarkers(address string) {
	markers := map[string]string{
		KeyConnected: "true",
		KeyAddress:   address,
		KeyClientID:  s.clientID,
	}
	for key, value := range markers {
		if err := s.primary.Set(key, value); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("persisting session marker failed")
		}
	}
}

// submitTransfer builds a native transfer transaction and has the provider
// sign it interactively. Broadcast is outside this core; a signed transfer
// counts as confirmed here.
func (s *Store) submitTransfer(ctx context.Context, from, to string, amount float64) (string, error) {
	toAddr := common.HexToAddress(to)
	value, _ := new(big.Float).Mul(new(big.Float).SetFloat64(amount), weiPerToken).Int(nil)

	txn := types.NewTx(&types.LegacyTx{
		To:       &toAddr,
		Value:    value,
		Gas:      gasLimitTransfer,
		GasPrice: big.NewInt(0),
	})

	signed, err := s.adapter.SignTransaction(ctx, [][]provider.SignerTransaction{
		{{Txn: txn, Signers: []string{from}}},
	})
	if err != nil {
		return "", err
	}
	if len(signed) == 0 {
		return "", walleterr.Wrap(walleterr.ErrSigningFailed, "provider returned no signed bytes")
	}

	return crypto.Keccak256Hash(signed[0]).Hex(), nil
}

// resolveRecord replaces the record with the given id in place, keeping
// its identity stable across the pending -> confirmed/failed transition.
func (s *Store) resolveRecord(id string, status TxStatus, hash, errMsg string) {
	s.mu.Lock()
	for i := range s.state.Transactions {
		if s.state.Transactions[i].ID == id {
			s.state.Transactions[i].Status = status
			s.state.Transactions[i].Hash = hash
			s.state.Transactions[i].Error = errMsg
			break
		}
	}
	if errMsg != "" {
		s.state.Error = errMsg
	}
	snap := s.state.clone()
	s.mu.Unlock()
	s.notify(snap)
}

// recordByID returns a copy of the record with the given id.
func (s *Store) recordByID(id string) TransactionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.state.Transactions {
		if record.ID == id {
			return record
		}
	}
	return TransactionRecord{}
}

// notify invokes every registered listener with the snapshot. Listeners
// run outside the store lock so they may call back into the store.
func (s *Store) notify(snap State) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, listener := range s.listeners {
		listeners = append(listeners, listener)
	}
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(snap)
	}
}

func formatAmount(amount float64) string {
	return new(big.Float).SetFloat64(amount).Text('f', -1)
}
