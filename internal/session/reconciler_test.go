package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtinder/devtinder/internal/api"
)

func reconcilerFixture(t *testing.T, handler http.HandlerFunc) (*Store, *Reconciler) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := NewStore(NewCache(t.TempDir()), nil)
	client, err := api.New(api.Options{
		BaseURL: srv.URL,
		Tokens:  store.Cache(),
		Session: store.Cache(),
	})
	require.NoError(t, err)

	return store, NewReconciler(client, store, nil)
}

func TestReconciler_EmptyCacheServerAuthenticated(t *testing.T) {
	store, r := reconcilerFixture(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"_id":"u1","firstName":"Ada"}`))
	})

	require.NoError(t, r.Run(context.Background()))

	got, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, PhaseReconciled, store.Phase())

	// Server answer lands in the durable cache too.
	cached, err := store.Cache().Load()
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "u1", cached.ID)
}

func TestReconciler_ServerOverridesStaleCache(t *testing.T) {
	store, r := reconcilerFixture(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"_id":"u1","firstName":"Fresh"}`))
	})
	require.NoError(t, store.Cache().Save(&User{ID: "u1", FirstName: "Stale"}))

	require.NoError(t, r.Run(context.Background()))

	got, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "Fresh", got.FirstName)
}

func TestReconciler_UnauthorizedDowngradesToLoggedOut(t *testing.T) {
	store, r := reconcilerFixture(t, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
	require.NoError(t, store.Cache().Save(&User{ID: "u1", FirstName: "Stale"}))

	// A converged logged-out state is not an error.
	require.NoError(t, r.Run(context.Background()))

	_, ok := store.Current()
	assert.False(t, ok, "store must end absent even though it started populated")
	assert.Equal(t, PhaseReconciled, store.Phase())

	cached, err := store.Cache().Load()
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestReconciler_TransientFailureKeepsHydration(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close() // connection refused

	store := NewStore(NewCache(t.TempDir()), nil)
	client, err := api.New(api.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	r := NewReconciler(client, store, nil)

	require.NoError(t, store.Cache().Save(&User{ID: "u1", FirstName: "Cached"}))

	err = r.Run(context.Background())
	require.Error(t, err, "transient failures surface to the caller")

	got, ok := store.Current()
	require.True(t, ok, "optimistic hydration survives transient failures")
	assert.Equal(t, "Cached", got.FirstName)
	assert.Equal(t, PhaseReconciled, store.Phase())
}

func TestReconciler_HydrationObservableBeforeServerAnswer(t *testing.T) {
	release := make(chan struct{})
	var hydratedDuringCall bool

	store := NewStore(NewCache(t.TempDir()), nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, hydratedDuringCall = store.Current()
		<-release
		w.Write([]byte(`{"_id":"u1"}`))
	}))
	t.Cleanup(srv.Close)

	client, err := api.New(api.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	r := NewReconciler(client, store, nil)

	require.NoError(t, store.Cache().Save(&User{ID: "u1"}))

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()
	close(release)
	require.NoError(t, <-done)

	assert.True(t, hydratedDuringCall, "cached session must be visible while the server call is in flight")
}
