package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/devtinder/devtinder/internal/api"
)

// Reconciler converges the session store to server truth on boot.
//
// It first applies the cached session, if any, so the UI gets a fast
// (possibly stale) initial state, then asks the server who the user actually
// is. The server's answer always wins; an unauthorized answer downgrades to
// logged out. Any other failure is treated as transient and leaves the
// optimistic hydration in place.
type Reconciler struct {
	client *api.Client
	store  *Store
	logger *zap.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(client *api.Client, store *Store, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{client: client, store: store, logger: logger}
}

// Run executes one hydrate-then-reconcile cycle. The hydration is observable
// through the store before the server call resolves. The store phase becomes
// PhaseReconciled on every terminal outcome.
//
// Run returns an error only for transient failures; an unauthorized answer
// is a converged logged-out state, not an error.
func (r *Reconciler) Run(ctx context.Context) error {
	cached, err := r.store.cache.Load()
	switch {
	case err != nil:
		r.logger.Warn("ignoring unreadable session cache", zap.Error(err))
	case cached != nil:
		r.store.hydrate(cached)
		r.logger.Debug("hydrated session from cache", zap.String("user_id", cached.ID))
	}

	var me User
	err = r.client.Get(ctx, api.PathMe, nil, &me)
	switch {
	case err == nil:
		if setErr := r.store.Set(&me); setErr != nil {
			r.logger.Warn("reconciled session not persisted", zap.Error(setErr))
		}
		r.logger.Info("session reconciled", zap.String("user_id", me.ID))
	case api.IsAuthFailure(err):
		// Definitive: whatever we hydrated is no longer valid.
		if clearErr := r.store.Clear(); clearErr != nil {
			r.logger.Warn("failed to clear stale session", zap.Error(clearErr))
		}
		r.logger.Info("session rejected by server, logged out")
		err = nil
	default:
		// Transient failure; keep the optimistic hydration.
		r.logger.Warn("session reconciliation failed, keeping cached session", zap.Error(err))
	}

	r.store.markReconciled()
	return err
}
