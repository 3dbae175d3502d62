// Package auth implements login, logout, and registration against the
// DevTinder API, keeping the session store and durable cache in step.
package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/devtinder/devtinder/internal/api"
	"github.com/devtinder/devtinder/internal/session"
)

// Service performs the auth operations. It is one of the three sanctioned
// writers of the session store.
type Service struct {
	client *api.Client
	store  *session.Store
	nav    api.Navigator
	logger *zap.Logger
}

// NewService creates the auth service.
func NewService(client *api.Client, store *session.Store, nav api.Navigator, logger *zap.Logger) *Service {
	if nav == nil {
		nav = api.NopNavigator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, store: store, nav: nav, logger: logger}
}

type loginRequest struct {
	EmailID  string `json:"emailId"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  session.User `json:"user"`
	Token string       `json:"token,omitempty"`
}

// Login authenticates and, on success, writes the user to the session store
// (which persists the cache entry) and stores the bearer token when the
// server issues one. On failure nothing is committed.
func (s *Service) Login(ctx context.Context, email, password string) (*session.User, error) {
	var resp loginResponse
	if err := s.client.Post(ctx, api.PathLogin, loginRequest{EmailID: email, Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if err := s.store.Set(&resp.User); err != nil {
		s.logger.Warn("logged in but session cache not persisted", zap.Error(err))
	}
	if resp.Token != "" {
		if err := s.store.Cache().SaveToken(resp.Token); err != nil {
			s.logger.Warn("failed to persist bearer token", zap.Error(err))
		}
	}

	s.logger.Info("logged in", zap.String("user_id", resp.User.ID))
	return &resp.User, nil
}

// Logout invalidates the server session, then clears local state. The local
// cleanup runs even when the network call fails: a dead server must not trap
// the client in a logged-in state.
func (s *Service) Logout(ctx context.Context) error {
	err := s.client.Get(ctx, api.PathLogout, nil, nil)
	if err != nil {
		s.logger.Warn("logout request failed, clearing local session anyway", zap.Error(err))
	}

	if clearErr := s.store.Clear(); clearErr != nil {
		s.logger.Warn("failed to clear session", zap.Error(clearErr))
	}
	if tokenErr := s.store.Cache().EvictToken(); tokenErr != nil {
		s.logger.Warn("failed to evict bearer token", zap.Error(tokenErr))
	}
	s.nav.ToLogin()

	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}

// RegisterRequest carries the signup fields.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	EmailID   string `json:"emailId"`
	Password  string `json:"password"`
}

// Register creates an account. The server answers with the new user and logs
// the client in, so the session store is populated like a login.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*session.User, error) {
	var created session.User
	if err := s.client.Post(ctx, api.PathRegister, req, &created); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	if err := s.store.Set(&created); err != nil {
		s.logger.Warn("registered but session cache not persisted", zap.Error(err))
	}

	s.logger.Info("registered", zap.String("user_id", created.ID))
	return &created, nil
}
