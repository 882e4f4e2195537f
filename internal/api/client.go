// Package api is the HTTP client for the remote Budget Buddy ledger
// service. It owns no state: every method is a single round trip with no
// retry, and failures come back as typed errors from internal/core.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"budgetbuddy/internal/core"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Login exchanges credentials for a session. The identifier may be an email
// or a username; the service disambiguates.
func (c *Client) Login(ctx context.Context, identifier, password string) (core.Session, error) {
	payload := loginRequest{Identifier: identifier, Password: password}
	var resp authResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/login", "", payload, &resp); err != nil {
		return core.Session{}, err
	}
	return resp.session(), nil
}

// Signup registers a new account and returns its first session.
func (c *Client) Signup(ctx context.Context, name, email, password string) (core.Session, error) {
	payload := signupRequest{Name: name, Email: email, Password: password}
	var resp authResponse
	if err := c.do(ctx, "signup", http.MethodPost, "/api/signup", "", payload, &resp); err != nil {
		return core.Session{}, err
	}
	return resp.session(), nil
}

// ListTransactions fetches the full ledger in server order. The token is
// optional; anonymous access yields whatever the service decides.
func (c *Client) ListTransactions(ctx context.Context, token string) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := c.do(ctx, "list", http.MethodGet, "/api/transactions", token, nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// CreateTransaction submits a new ledger entry. The service assigns the id
// and returns nothing useful; callers re-list to observe the new entry.
func (c *Client) CreateTransaction(ctx context.Context, token string, draft core.TransactionDraft) error {
	if err := draft.Validate(); err != nil {
		return err
	}

	endpoint := "/api/expense"
	if draft.Type == core.Income {
		endpoint = "/api/income"
	}
	payload := createRequest{
		Amount:   json.Number(draft.Amount.String()),
		Category: draft.Category,
		Note:     draft.Note,
	}
	return c.do(ctx, "create", http.MethodPost, endpoint, token, payload, nil)
}

// DeleteTransaction removes an entry by server-assigned id. Whether the id
// still exists is the service's concern; a not-found comes back as a
// RemoteError like any other.
func (c *Client) DeleteTransaction(ctx context.Context, token, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, "/api/transactions/"+id, token, nil, nil)
}

// FetchSummary reads the advisory server-side totals.
func (c *Client) FetchSummary(ctx context.Context, token string) (core.Summary, error) {
	var s core.Summary
	if err := c.do(ctx, "summary", http.MethodGet, "/api/summary", token, nil, &s); err != nil {
		return core.Summary{}, err
	}
	return s, nil
}

// FetchUser reads the authoritative profile for the current session.
func (c *Client) FetchUser(ctx context.Context, token string) (core.UserProfile, error) {
	var p core.UserProfile
	if err := c.do(ctx, "profile", http.MethodGet, "/api/user", token, nil, &p); err != nil {
		return core.UserProfile{}, err
	}
	return p, nil
}

// SaveUser pushes a profile update.
func (c *Client) SaveUser(ctx context.Context, token string, profile core.UserProfile) error {
	return c.do(ctx, "profile", http.MethodPut, "/api/user", token, profile, nil)
}

func (c *Client) do(ctx context.Context, op, method, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &core.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &core.TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &core.RemoteError{Op: op, Status: resp.StatusCode, Message: remoteMessage(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}

// remoteMessage pulls the service's error field out of a failure body, so
// it can be surfaced to the user verbatim.
func remoteMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.Error
}
