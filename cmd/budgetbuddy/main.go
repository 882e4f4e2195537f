package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/api"
	"budgetbuddy/internal/cli"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/ledger"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/sheets"
)

const usage = `budgetbuddy <command> [args]

Commands:
  signup <name> <email> <password>   create an account and sign in
  login <identifier> <password>      sign in (email or username)
  logout                             sign out and clear the saved session
  whoami                             show the current profile
  list                               show transactions and totals
  add income|expense <amount> [category] [note]
  delete <id>                        delete a transaction by id
  profile <name> <avatar-url>        update the profile
  export                             append the ledger to Google Sheets
`

type app struct {
	logger   *log.Logger
	sessions *services.SessionService
	ledger   *services.LedgerService
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command, args := os.Args[1], os.Args[2:]

	ctx := context.Background()

	sessionStore := cli.InitStore(logger, cfg.StateDBPath)
	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	publisher := cli.InitPublisher(logger, cfg)
	defer publisher.Close()

	sessions := services.NewSessionService(sessionStore, client, logger)
	sessions.Restore(ctx)

	a := &app{
		logger:   logger,
		sessions: sessions,
		ledger:   services.NewLedgerService(client, sessions, publisher, logger),
	}

	var err error
	switch command {
	case "signup":
		err = a.signup(ctx, args)
	case "login":
		err = a.login(ctx, args)
	case "logout":
		a.sessions.Logout(ctx)
		fmt.Println("Signed out.")
	case "whoami":
		err = a.whoami(ctx)
	case "list":
		err = a.list(ctx)
	case "add":
		err = a.add(ctx, args)
	case "delete":
		err = a.delete(ctx, args)
	case "profile":
		err = a.profile(ctx, args)
	case "export":
		err = a.export(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

func (a *app) signup(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: budgetbuddy signup <name> <email> <password>")
	}
	session, err := a.sessions.Signup(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Printf("Welcome, %s!\n", session.User.DisplayName())
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: budgetbuddy login <identifier> <password>")
	}
	if strings.TrimSpace(args[0]) == "" {
		return &core.ValidationError{Err: errors.New("identifier must not be empty")}
	}
	session, err := a.sessions.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Welcome back, %s!\n", session.User.DisplayName())
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	session, ok := a.sessions.Current()
	if !ok {
		fmt.Println("Not signed in.")
		return nil
	}

	// Cached copy first, never blocking on the network.
	fmt.Printf("%s\n", session.User.DisplayName())

	a.sessions.RefreshProfile(ctx)
	if fresh, _ := a.sessions.Current(); fresh.User.DisplayName() != session.User.DisplayName() {
		fmt.Printf("(updated: %s)\n", fresh.User.DisplayName())
	}
	return nil
}

func (a *app) list(ctx context.Context) error {
	if err := a.ledger.Refresh(ctx); err != nil {
		return err
	}

	txs := a.ledger.Transactions()
	if len(txs) == 0 {
		fmt.Println("No transactions yet. Start by adding an expense.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tAMOUNT\tCATEGORY\tNOTE")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			tx.ID, tx.Type, ledger.FormatAmount(tx.Amount), tx.Category, tx.Note)
	}
	w.Flush()

	totals := a.ledger.Totals()
	fmt.Printf("\nIncome:  %s\nExpense: %s\nBalance: %s\n",
		ledger.FormatAmount(totals.Income),
		ledger.FormatAmount(totals.Expense),
		ledger.FormatAmount(totals.Balance))
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: budgetbuddy add income|expense <amount> [category] [note]")
	}

	txType := core.TransactionType(args[0])
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return &core.ValidationError{Err: fmt.Errorf("invalid amount %q", args[1])}
	}

	draft := core.TransactionDraft{Type: txType, Amount: amount}
	if len(args) > 2 {
		draft.Category = args[2]
	}
	if len(args) > 3 {
		draft.Note = strings.Join(args[3:], " ")
	}

	if err := a.ledger.Add(ctx, draft); err != nil {
		return err
	}
	fmt.Printf("Saved. Balance: %s\n", ledger.FormatAmount(a.ledger.Totals().Balance))
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: budgetbuddy delete <id>")
	}
	if err := a.ledger.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted. Balance: %s\n", ledger.FormatAmount(a.ledger.Totals().Balance))
	return nil
}

func (a *app) profile(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: budgetbuddy profile <name> <avatar-url>")
	}
	profile := core.UserProfile{Name: args[0], AvatarURL: args[1]}
	if err := a.sessions.UpdateProfile(ctx, profile); err != nil {
		var validation *core.ValidationError
		if errors.As(err, &validation) {
			return err
		}
		// Profile saves are auxiliary: log and move on, the next fetch
		// will show whatever the service kept.
		a.logger.Warn("Failed to save profile", log.FieldError, err)
		fmt.Println("Profile could not be saved right now.")
		return nil
	}
	fmt.Println("Profile saved.")
	return nil
}

func (a *app) export(ctx context.Context, spreadsheetID, sheetName string) error {
	if err := a.ledger.Refresh(ctx); err != nil {
		return err
	}

	exporter, err := sheets.NewExporter(ctx, spreadsheetID, sheetName)
	if err != nil {
		return err
	}
	if err := exporter.Export(ctx, a.ledger.Transactions(), a.ledger.Totals()); err != nil {
		return err
	}
	fmt.Println("Exported.")
	return nil
}

// renderError maps the error taxonomy onto user-facing messages: remote
// auth failures verbatim, mutation failures as a retry prompt, validation
// as-is.
func renderError(err error) string {
	var validation *core.ValidationError
	if errors.As(err, &validation) {
		return "Invalid input: " + validation.Error()
	}

	var remote *core.RemoteError
	if errors.As(err, &remote) {
		switch remote.Op {
		case "login":
			return authFailure("Login", remote.Message, remote.Status)
		case "signup":
			return authFailure("Signup", remote.Message, remote.Status)
		default:
			return "Request failed. Please try again."
		}
	}

	var transport *core.TransportError
	if errors.As(err, &transport) {
		switch transport.Op {
		case "login":
			return fmt.Sprintf("Login failed: %v", transport.Err)
		case "signup":
			return fmt.Sprintf("Signup failed: %v", transport.Err)
		default:
			return "Request failed. Please check your connection and try again."
		}
	}

	return err.Error()
}

func authFailure(action, message string, status int) string {
	if message != "" {
		return fmt.Sprintf("%s failed: %s", action, message)
	}
	return fmt.Sprintf("%s failed (status %d)", action, status)
}
