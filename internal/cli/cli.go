package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"shopterm/internal/assistant"
	"shopterm/internal/checkout"
	"shopterm/internal/config"
	"shopterm/internal/session"
	"shopterm/internal/shop"

	"go.uber.org/zap"
)

const usageText = `Usage: shopterm <command> [flags]

Commands:
  login      Log in and save the session
  logout     Clear the saved session
  sell       Open the register (barcode scanner + cart)
  products   List products (filter by name or category)
  stock      Stock summary and low-stock report
  dashboard  Shop summary, sales analysis and top products
  profit     Product-wise profit report
  purchases  List or record supplier purchases
  categories List or manage product categories
  staff      List or manage staff accounts (admin)
  expenses   List or record business expenses
  suggest    Show or generate AI business suggestions
  assist     Ask the assistant about sales, stock and profit
  export     Export the barcode list as CSV
`

// Runner wires the commands to the API client, session store and finalizer.
type Runner struct {
	cfg       config.Config
	logger    *zap.Logger
	api       *shop.Client
	sessions  *session.Store
	finalizer *checkout.Finalizer
	agent     *assistant.Agent
}

func NewRunner(cfg config.Config, logger *zap.Logger, api *shop.Client, sessions *session.Store, finalizer *checkout.Finalizer, agent *assistant.Agent) *Runner {
	return &Runner{
		cfg:       cfg,
		logger:    logger.Named("cli"),
		api:       api,
		sessions:  sessions,
		finalizer: finalizer,
		agent:     agent,
	}
}

func (r *Runner) Execute() error {
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usageText)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	command, rest := args[0], args[1:]
	switch command {
	case "login":
		return r.runLogin(ctx, rest)
	case "logout":
		return r.sessions.Clear()
	case "sell":
		return r.runSell(ctx, rest)
	case "products":
		return r.runProducts(ctx, rest)
	case "stock":
		return r.runStock(ctx, rest)
	case "dashboard":
		return r.runDashboard(ctx, rest)
	case "profit":
		return r.runProfit(ctx, rest)
	case "purchases":
		return r.runPurchases(ctx, rest)
	case "categories":
		return r.runCategories(ctx, rest)
	case "staff":
		return r.runStaff(ctx, rest)
	case "expenses":
		return r.runExpenses(ctx, rest)
	case "suggest":
		return r.runSuggest(ctx, rest)
	case "assist":
		return r.runAssist(ctx, rest)
	case "export":
		return r.runExport(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stderr, usageText)
		return nil
	default:
		fmt.Fprint(os.Stderr, usageText)
		return fmt.Errorf("unknown command: %s", command)
	}
}

// requireSession loads saved credentials and installs the bearer token.
// Every command except login goes through here.
func (r *Runner) requireSession() (session.Credentials, error) {
	creds, err := r.sessions.Load()
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			return session.Credentials{}, errors.New("not logged in: run 'shopterm login' first")
		}
		return session.Credentials{}, err
	}
	r.api.SetToken(creds.AccessToken)
	return creds, nil
}

// apiError converts a failed call into an operator-facing error. A 401 tears
// the session down so the next command forces a fresh login; a 403 keeps the
// session, the role just lacks the permission.
func (r *Runner) apiError(err error) error {
	if errors.Is(err, shop.ErrUnauthorized) {
		if clearErr := r.sessions.Clear(); clearErr != nil {
			r.logger.Warn("session teardown failed", zap.Error(clearErr))
		}
		return errors.New("session expired: run 'shopterm login' again")
	}
	if errors.Is(err, shop.ErrForbidden) {
		return fmt.Errorf("not permitted for this account: %w", err)
	}
	return err
}

func (r *Runner) runLogin(ctx context.Context, args []string) error {
	var username, password string

	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&username, "username", "", "Operator username")
	fs.StringVar(&password, "password", "", "Operator password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reader := newStdinReader()
	if strings.TrimSpace(username) == "" {
		fmt.Fprint(os.Stdout, "Username: ")
		line, err := reader.ReadLine()
		if err != nil {
			return err
		}
		username = strings.TrimSpace(line)
	}
	if strings.TrimSpace(password) == "" {
		fmt.Fprint(os.Stdout, "Password: ")
		line, err := reader.ReadLine()
		if err != nil {
			return err
		}
		password = strings.TrimSpace(line)
	}

	resp, err := r.api.Login(ctx, username, password)
	if err != nil {
		return err
	}

	creds := session.Credentials{
		AccessToken: resp.AccessToken,
		Role:        resp.Role,
		Username:    resp.Username,
	}
	if err := r.sessions.Save(creds); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Logged in as %s (%s)\n", creds.Username, creds.Role)
	return nil
}
