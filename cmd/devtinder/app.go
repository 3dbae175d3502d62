package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/devtinder/devtinder/internal/api"
	"github.com/devtinder/devtinder/internal/auth"
	"github.com/devtinder/devtinder/internal/config"
	"github.com/devtinder/devtinder/internal/connect"
	"github.com/devtinder/devtinder/internal/logging"
	"github.com/devtinder/devtinder/internal/profile"
	"github.com/devtinder/devtinder/internal/session"
)

// app bundles the wired client stack for one command invocation.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	cache  *session.Cache
	store  *session.Store
	client *api.Client

	auth        *auth.Service
	profile     *profile.Service
	feed        *connect.Controller
	requests    *connect.Controller
	connections *connect.Controller
}

// newApp loads config and wires the full stack. nav receives 401/403
// redirects; CLI commands pass api.NopNavigator, the TUI passes its own.
// tuiMode diverts log output to a file so zap never writes to the screen.
func newApp(nav api.Navigator, tuiMode bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.API.BaseURL = serverURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := config.EnsureStateDir(cfg.State.Dir); err != nil {
		return nil, err
	}

	logCfg := logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}
	if tuiMode && logCfg.File == "" {
		logCfg.File = filepath.Join(cfg.State.Dir, "devtinder.log")
		logCfg.Format = "json"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	cache := session.NewCache(cfg.State.Dir)
	store := session.NewStore(cache, logger)

	client, err := api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout.Duration(),
		Tokens:    cache,
		Session:   cache,
		Navigator: nav,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:         cfg,
		logger:      logger,
		cache:       cache,
		store:       store,
		client:      client,
		auth:        auth.NewService(client, store, nav, logger),
		profile:     profile.NewService(client, store, logger),
		feed:        connect.NewController(client, connect.Feed, logger),
		requests:    connect.NewController(client, connect.Requests, logger),
		connections: connect.NewController(client, connect.Connections, logger),
	}, nil
}

// reconciler builds the bootstrap reconciler over the wired stack.
func (a *app) reconciler() *session.Reconciler {
	return session.NewReconciler(a.client, a.store, a.logger)
}

// requestCtx bounds one CLI operation.
func (a *app) requestCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.cfg.API.Timeout.Duration())
}

// bootstrap restores the cached session and reconciles it with the server.
// CLI commands that need an authenticated session call this first.
func (a *app) bootstrap() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.reconciler().Run(ctx); err != nil {
		return fmt.Errorf("session bootstrap: %w", err)
	}
	return nil
}

func (a *app) close() {
	_ = logging.Sync(a.logger)
}

// printUser writes one user, honoring --json.
func printUser(u session.User) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(u)
	}
	fmt.Println(formatUser(u))
	return nil
}

// printUsers writes a list, honoring --json.
func printUsers(users []session.User) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(users)
	}
	if len(users) == 0 {
		fmt.Println("(empty)")
		return nil
	}
	for _, u := range users {
		fmt.Println(formatUser(u))
	}
	return nil
}

func formatUser(u session.User) string {
	line := fmt.Sprintf("%-26s %s", u.ID, u.FullName())
	if u.Age > 0 {
		line += fmt.Sprintf("  (%d, %s)", u.Age, u.Gender)
	}
	if u.About != "" {
		line += "\n  " + u.About
	}
	return line
}
