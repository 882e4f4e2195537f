package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Transaction is one ledger entry as returned by the remote service.
	// IDs are server-assigned; the client never fabricates one.
	Transaction struct {
		ID       string          `json:"id"`
		Type     TransactionType `json:"type"`
		Amount   decimal.Decimal `json:"amount"`
		Category string          `json:"category,omitempty"`
		Note     string          `json:"note,omitempty"`
	}

	// TransactionDraft is the client-side input for a create call.
	TransactionDraft struct {
		Type     TransactionType
		Amount   decimal.Decimal
		Category string
		Note     string
	}

	// UserProfile is the display identity attached to a session. The
	// remote service calls the avatar field "image".
	UserProfile struct {
		Name      string `json:"name"`
		AvatarURL string `json:"image"`
	}

	// Session holds the bearer token and the (possibly cached) profile.
	// The token is opaque and never parsed client-side.
	Session struct {
		Token string
		User  *UserProfile
	}

	// Summary is the advisory server-side aggregate. The client recomputes
	// totals locally from the full transaction list regardless.
	Summary struct {
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
		Balance decimal.Decimal `json:"balance"`
	}
)

var (
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrInvalidType      = errors.New("transaction type must be income or expense")
	ErrNotAuthenticated = errors.New("not authenticated")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Validate checks the client-side preconditions for a create call. It must
// pass before any request is issued.
func (d TransactionDraft) Validate() error {
	if !d.Type.Valid() {
		return &ValidationError{Err: ErrInvalidType}
	}
	if !d.Amount.IsPositive() {
		return &ValidationError{Err: ErrInvalidAmount}
	}
	return nil
}

func (s Session) IsZero() bool {
	return s.Token == ""
}

// DisplayName falls back to a guest identity when no profile is cached yet.
func (p *UserProfile) DisplayName() string {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return "Guest User"
	}
	return p.Name
}
