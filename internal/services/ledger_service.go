package services

import (
	"context"
	"sync"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/events"
	"budgetbuddy/internal/ledger"
	"budgetbuddy/internal/log"

	"golang.org/x/sync/singleflight"
)

// LedgerAPI is the slice of the remote client the ledger service needs.
type LedgerAPI interface {
	ListTransactions(ctx context.Context, token string) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, token string, draft core.TransactionDraft) error
	DeleteTransaction(ctx context.Context, token, id string) error
	FetchSummary(ctx context.Context, token string) (core.Summary, error)
}

// LedgerService keeps the last fetched transaction collection and its
// derived totals. Mutations follow a strict two-step protocol: the create
// or delete call completes first, then the collection is re-listed, so the
// cache only ever reflects server state. The service never invents ids or
// inserts optimistic records.
type LedgerService struct {
	api       LedgerAPI
	sessions  *SessionService
	publisher *events.Publisher
	logger    *log.Logger

	// Joins a duplicate mutation fired while the first is still in flight.
	// Keys derive from the mutation payload so distinct drafts never join.
	group singleflight.Group

	mu           sync.RWMutex
	transactions []core.Transaction
	totals       ledger.Totals
}

func NewLedgerService(api LedgerAPI, sessions *SessionService, publisher *events.Publisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &LedgerService{
		api:       api,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
		totals:    ledger.Aggregate(nil),
	}
}

// Refresh re-fetches the collection and recomputes the totals. It also
// reads the advisory server summary; that response is logged and discarded,
// the displayed aggregates always come from the local recomputation.
func (s *LedgerService) Refresh(ctx context.Context) error {
	token := s.sessions.Token()

	txs, err := s.api.ListTransactions(ctx, token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.transactions = txs
	s.totals = ledger.Aggregate(txs)
	s.mu.Unlock()

	if token != "" {
		if summary, err := s.api.FetchSummary(ctx, token); err != nil {
			s.logger.DebugContext(ctx, "Advisory summary fetch failed",
				log.FieldOperation, log.OpSummary,
				log.FieldError, err)
		} else {
			s.logger.DebugContext(ctx, "Advisory summary received",
				log.FieldOperation, log.OpSummary,
				"server_balance", summary.Balance)
		}
	}

	return nil
}

// Add validates the draft, submits it, and re-lists. Validation failures
// surface before any request is made. A duplicate Add while this one is
// outstanding joins it instead of creating a second entry.
func (s *LedgerService) Add(ctx context.Context, draft core.TransactionDraft) error {
	if err := draft.Validate(); err != nil {
		return err
	}

	key := submissionKey("create", string(draft.Type), draft.Amount.String(), draft.Category, draft.Note)
	_, err, _ := s.group.Do(key, func() (any, error) {
		if err := s.api.CreateTransaction(ctx, s.sessions.Token(), draft); err != nil {
			return nil, err
		}
		s.publishEvent(ctx, events.NewCreatedEvent(string(draft.Type), draft.Amount.String(), draft.Category))
		// Only after the mutation response: re-list to pick up the
		// server-assigned record.
		return nil, s.Refresh(ctx)
	})
	return err
}

// Remove deletes by id and re-lists. Whether the id still exists is the
// server's call; on failure the cached collection stays as it was.
func (s *LedgerService) Remove(ctx context.Context, id string) error {
	_, err, _ := s.group.Do(submissionKey("delete", id), func() (any, error) {
		if err := s.api.DeleteTransaction(ctx, s.sessions.Token(), id); err != nil {
			return nil, err
		}
		s.publishEvent(ctx, events.NewDeletedEvent(id))
		return nil, s.Refresh(ctx)
	})
	return err
}

// Transactions returns the cached collection in server order.
func (s *LedgerService) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Totals returns the aggregates derived from the cached collection.
func (s *LedgerService) Totals() ledger.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals
}

func (s *LedgerService) publishEvent(ctx context.Context, event *events.MutationEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		// Events are a side channel; the mutation already succeeded.
		s.logger.WarnContext(ctx, "Failed to publish mutation event",
			log.FieldOperation, log.OpPublish,
			log.FieldError, err)
	}
}
