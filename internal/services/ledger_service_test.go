package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"budgetbuddy/internal/core"

	"github.com/shopspring/decimal"
)

type fakeLedgerAPI struct {
	mu           sync.Mutex
	transactions []core.Transaction
	calls        []string

	createErr  error
	deleteErr  error
	summaryErr error

	createEntered chan struct{}
	createRelease chan struct{}
}

func (f *fakeLedgerAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeLedgerAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeLedgerAPI) ListTransactions(ctx context.Context, token string) ([]core.Transaction, error) {
	f.record("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Transaction, len(f.transactions))
	copy(out, f.transactions)
	return out, nil
}

func (f *fakeLedgerAPI) CreateTransaction(ctx context.Context, token string, draft core.TransactionDraft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	f.record("create")
	if f.createEntered != nil {
		f.createEntered <- struct{}{}
		<-f.createRelease
	}
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	f.transactions = append(f.transactions, core.Transaction{
		ID:       "server-id",
		Type:     draft.Type,
		Amount:   draft.Amount,
		Category: draft.Category,
		Note:     draft.Note,
	})
	f.mu.Unlock()
	return nil
}

func (f *fakeLedgerAPI) DeleteTransaction(ctx context.Context, token, id string) error {
	f.record("delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.transactions[:0]
	for _, tx := range f.transactions {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	f.transactions = kept
	return nil
}

func (f *fakeLedgerAPI) FetchSummary(ctx context.Context, token string) (core.Summary, error) {
	f.record("summary")
	return core.Summary{}, f.summaryErr
}

func authenticatedSessions(t *testing.T) *SessionService {
	t.Helper()
	svc := NewSessionService(&fakeStore{}, &fakeGateway{loginSession: core.Session{Token: "tok"}}, nil)
	if _, err := svc.Login(context.Background(), "a", "b"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	return svc
}

func TestLedgerService_RefreshComputesTotals(t *testing.T) {
	api := &fakeLedgerAPI{transactions: []core.Transaction{
		{ID: "1", Type: core.Income, Amount: decimal.NewFromInt(500)},
		{ID: "2", Type: core.Expense, Amount: decimal.NewFromInt(120)},
		{ID: "3", Type: core.Expense, Amount: decimal.NewFromInt(30)},
	}}
	svc := NewLedgerService(api, authenticatedSessions(t), nil, nil)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	totals := svc.Totals()
	if !totals.Income.Equal(decimal.NewFromInt(500)) {
		t.Errorf("income = %s, want 500", totals.Income)
	}
	if !totals.Expense.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expense = %s, want 150", totals.Expense)
	}
	if !totals.Balance.Equal(decimal.NewFromInt(350)) {
		t.Errorf("balance = %s, want 350", totals.Balance)
	}

	// Server order is preserved untouched.
	txs := svc.Transactions()
	if len(txs) != 3 || txs[0].ID != "1" || txs[2].ID != "3" {
		t.Errorf("transactions = %+v", txs)
	}
}

func TestLedgerService_RefreshAnonymousSkipsSummary(t *testing.T) {
	api := &fakeLedgerAPI{}
	sessions := NewSessionService(&fakeStore{}, &fakeGateway{}, nil)
	sessions.Restore(context.Background())
	svc := NewLedgerService(api, sessions, nil, nil)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	for _, call := range api.Calls() {
		if call == "summary" {
			t.Error("anonymous refresh fetched the summary")
		}
	}
}

func TestLedgerService_AddSequencesMutationBeforeList(t *testing.T) {
	api := &fakeLedgerAPI{}
	svc := NewLedgerService(api, authenticatedSessions(t), nil, nil)

	draft := core.TransactionDraft{Type: core.Income, Amount: decimal.NewFromInt(500)}
	if err := svc.Add(context.Background(), draft); err != nil {
		t.Fatalf("Add: %v", err)
	}

	calls := api.Calls()
	if len(calls) < 2 || calls[0] != "create" || calls[1] != "list" {
		t.Errorf("call order = %v, want create before list", calls)
	}

	txs := svc.Transactions()
	if len(txs) != 1 || txs[0].ID != "server-id" {
		t.Errorf("cache = %+v, must hold the server-assigned record", txs)
	}
}

func TestLedgerService_AddRejectsInvalidAmountBeforeNetwork(t *testing.T) {
	api := &fakeLedgerAPI{}
	svc := NewLedgerService(api, authenticatedSessions(t), nil, nil)

	for _, amount := range []int64{0, -10} {
		draft := core.TransactionDraft{Type: core.Expense, Amount: decimal.NewFromInt(amount)}
		err := svc.Add(context.Background(), draft)
		var validation *core.ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("amount %d: err = %v, want ValidationError", amount, err)
		}
	}
	if calls := api.Calls(); len(calls) != 0 {
		t.Errorf("remote observed calls %v, want none", calls)
	}
}

func TestLedgerService_RemoveFailureLeavesCacheUnchanged(t *testing.T) {
	api := &fakeLedgerAPI{transactions: []core.Transaction{
		{ID: "1", Type: core.Income, Amount: decimal.NewFromInt(500)},
	}}
	svc := NewLedgerService(api, authenticatedSessions(t), nil, nil)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	before := svc.Totals()

	api.deleteErr = &core.RemoteError{Op: "delete", Status: 404, Message: "Not found"}
	err := svc.Remove(context.Background(), "missing-id")
	var remote *core.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("err = %v, want RemoteError (a failure signal, not a panic)", err)
	}

	after := svc.Totals()
	if !before.Balance.Equal(after.Balance) {
		t.Errorf("balance changed from %s to %s after failed delete", before.Balance, after.Balance)
	}
	if len(svc.Transactions()) != 1 {
		t.Error("cached collection changed after failed delete")
	}
}

func TestLedgerService_RemoveThenListObservesDeletion(t *testing.T) {
	api := &fakeLedgerAPI{transactions: []core.Transaction{
		{ID: "1", Type: core.Income, Amount: decimal.NewFromInt(500)},
		{ID: "2", Type: core.Expense, Amount: decimal.NewFromInt(120)},
	}}
	svc := NewLedgerService(api, authenticatedSessions(t), nil, nil)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := svc.Remove(context.Background(), "2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	txs := svc.Transactions()
	if len(txs) != 1 || txs[0].ID != "1" {
		t.Errorf("cache = %+v", txs)
	}
	if !svc.Totals().Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("balance = %s, want 500", svc.Totals().Balance)
	}
}

func TestLedgerService_DuplicateAddJoinsInFlightRequest(t *testing.T) {
	api := &fakeLedgerAPI{
		createEntered: make(chan struct{}, 2),
		createRelease: make(chan struct{}),
	}
	svc := NewLedgerService(api, authenticatedSessions(t), nil, nil)

	draft := core.TransactionDraft{Type: core.Expense, Amount: decimal.NewFromInt(10)}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := svc.Add(context.Background(), draft); err != nil {
			t.Errorf("first Add: %v", err)
		}
	}()

	// Wait for the first create to be in flight, then fire the duplicate.
	<-api.createEntered
	go func() {
		defer wg.Done()
		if err := svc.Add(context.Background(), draft); err != nil {
			t.Errorf("second Add: %v", err)
		}
	}()
	time.Sleep(50 * time.Millisecond)
	close(api.createRelease)
	wg.Wait()

	creates := 0
	for _, call := range api.Calls() {
		if call == "create" {
			creates++
		}
	}
	if creates != 1 {
		t.Errorf("remote observed %d creates, want 1 (duplicate must join)", creates)
	}
}

func TestLedgerService_DistinctAddsAreNotCollapsed(t *testing.T) {
	api := &fakeLedgerAPI{
		createEntered: make(chan struct{}, 2),
		createRelease: make(chan struct{}),
	}
	svc := NewLedgerService(api, authenticatedSessions(t), nil, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		draft := core.TransactionDraft{Type: core.Expense, Amount: decimal.NewFromInt(10)}
		if err := svc.Add(context.Background(), draft); err != nil {
			t.Errorf("first Add: %v", err)
		}
	}()
	<-api.createEntered

	// A different draft while the first create is in flight is its own
	// submission and must be sent, not silently folded into the first.
	go func() {
		defer wg.Done()
		draft := core.TransactionDraft{Type: core.Income, Amount: decimal.NewFromInt(500), Category: "salary"}
		if err := svc.Add(context.Background(), draft); err != nil {
			t.Errorf("second Add: %v", err)
		}
	}()
	joined := false
	select {
	case <-api.createEntered:
	case <-time.After(time.Second):
		joined = true
	}
	close(api.createRelease)
	wg.Wait()

	if joined {
		t.Fatal("second create never reached the remote, distinct drafts were collapsed")
	}
	creates := 0
	for _, call := range api.Calls() {
		if call == "create" {
			creates++
		}
	}
	if creates != 2 {
		t.Errorf("remote observed %d creates, want 2", creates)
	}
}
