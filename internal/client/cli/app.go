package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/perfumekeeper/internal/client/client"
	"github.com/dmitrijs2005/perfumekeeper/internal/client/config"
	"github.com/dmitrijs2005/perfumekeeper/internal/client/repositories/session"
	"github.com/dmitrijs2005/perfumekeeper/internal/client/services"
	"github.com/dmitrijs2005/perfumekeeper/internal/logging"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config   *config.Config
	auth     *services.AuthService
	perfumes *services.PerfumeService
	health   pinger
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	closers  []io.Closer
}

// NewApp opens the session file and builds the API and health clients.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	db, err := client.InitDatabase(ctx, c.StateFile)
	if err != nil {
		logger.Error(ctx, "session store init failed", "file", c.StateFile, "error", err)
		return nil, err
	}

	hc, err := client.NewHealthChecker(c.GRPCAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	app := newApp(client.NewAPIClient(c.ServerURL, c.RequestTimeout), session.NewSQLiteRepository(db), hc, os.Stdin, os.Stdout, logger)
	app.config = c
	app.closers = []io.Closer{hc, db}
	return app, nil
}

func newApp(api client.Client, sessions session.Repository, health pinger, in io.Reader, out io.Writer, l logging.Logger) *App {
	auth := services.NewAuthService(api, sessions)
	return &App{
		auth:     auth,
		perfumes: services.NewPerfumeService(api, auth),
		health:   health,
		logger:   l.With("module", "cli"),
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run serves commands until exit, EOF or ctx cancellation.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()
	a.println("Welcome to perfumekeeper (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader, a.out)
	return nil
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	_, err := a.auth.Token(ctx)
	return err == nil
}

func (a *App) status(ctx context.Context) string {
	email, err := a.auth.CurrentEmail(ctx)
	if err != nil || email == "" {
		return ""
	}
	return "(" + email + ")"
}
