package mockapi

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devtinder/devtinder/internal/api"
	"github.com/devtinder/devtinder/internal/auth"
	"github.com/devtinder/devtinder/internal/connect"
	"github.com/devtinder/devtinder/internal/profile"
	"github.com/devtinder/devtinder/internal/session"
)

// fixture wires the full client stack against an in-process mock server.
type fixture struct {
	baseURL  string
	store    *session.Store
	client   *api.Client
	auth     *auth.Service
	profiles *profile.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv, err := NewServer(zap.NewNop(), nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	store := session.NewStore(session.NewCache(t.TempDir()), nil)
	client, err := api.New(api.Options{
		BaseURL: ts.URL,
		Tokens:  store.Cache(),
		Session: store.Cache(),
	})
	require.NoError(t, err)

	return &fixture{
		baseURL:  ts.URL,
		store:    store,
		client:   client,
		auth:     auth.NewService(client, store, nil, nil),
		profiles: profile.NewService(client, store, nil),
	}
}

func (f *fixture) login(t *testing.T) *session.User {
	t.Helper()
	user, err := f.auth.Login(context.Background(), "ada@example.com", "devtinder")
	require.NoError(t, err)
	return user
}

func TestIntegration_LoginFeedInterestedFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.login(t)
	assert.Equal(t, "u-ada", user.ID)

	// Token was issued and persisted for the outbound hook.
	_, ok := f.store.Cache().Token()
	assert.True(t, ok)

	feed := connect.NewController(f.client, connect.Feed, nil)
	items, err := feed.Fetch(ctx)
	require.NoError(t, err)
	// Ada's feed: everyone except herself, her connection Grace, and Linus
	// (who already has a pending request to her).
	require.Len(t, items, 1)
	assert.Equal(t, "u-ken", items[0].ID)

	require.NoError(t, feed.Act(ctx, connect.StatusInterested, "u-ken"))
	assert.Zero(t, feed.Len())

	// Refetching does not resurrect acted-upon items.
	items, err = feed.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestIntegration_ReviewRequestCreatesConnection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	requests := connect.NewController(f.client, connect.Requests, nil)
	items, err := requests.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "u-linus", items[0].ID)

	require.NoError(t, requests.Act(ctx, connect.StatusAccepted, "u-linus"))
	assert.Zero(t, requests.Len())

	connections := connect.NewController(f.client, connect.Connections, nil)
	items, err = connections.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "u-grace", items[0].ID)
	assert.Equal(t, "u-linus", items[1].ID)
}

func TestIntegration_EmptyRequestsRendersEmptyNotLoading(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	requests := connect.NewController(f.client, connect.Requests, nil)
	_, err := requests.Fetch(ctx)
	require.NoError(t, err)

	require.NoError(t, requests.Act(ctx, connect.StatusRejected, "u-linus"))

	items, err := requests.Fetch(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items, "settled fetch yields an empty list, not an unsettled state")
	assert.Empty(t, items)
}

func TestIntegration_ProfileEditPropagates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	updated, err := f.profiles.Edit(ctx, profile.EditRequest{About: "Rewired for terminals.", Skills: []string{"go", "tui"}})
	require.NoError(t, err)
	assert.Equal(t, "Rewired for terminals.", updated.About)

	current, ok := f.store.Current()
	require.True(t, ok)
	assert.Equal(t, "Rewired for terminals.", current.About)
	assert.Equal(t, []string{"go", "tui"}, current.Skills)

	// The server kept the edit.
	viewed, err := f.profiles.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rewired for terminals.", viewed.About)
}

func TestIntegration_ReconcilerAgainstServer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	// A fresh store over the same durable files simulates a restart.
	restarted := session.NewStore(session.NewCache(f.store.Cache().Dir()), nil)
	r := session.NewReconciler(f.client, restarted, nil)
	require.NoError(t, r.Run(ctx))

	current, ok := restarted.Current()
	require.True(t, ok)
	assert.Equal(t, "u-ada", current.ID)
	assert.Equal(t, session.PhaseReconciled, restarted.Phase())
}

func TestIntegration_UnauthenticatedIsRejected(t *testing.T) {
	f := newFixture(t)

	feed := connect.NewController(f.client, connect.Feed, nil)
	_, err := feed.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestIntegration_BearerTokenAloneAuthenticates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	// A second client shares the durable token file but has a fresh cookie
	// jar, so only the bearer token can authenticate it.
	other, err := api.New(api.Options{BaseURL: f.baseURL, Tokens: f.store.Cache()})
	require.NoError(t, err)

	var me session.User
	require.NoError(t, other.Get(ctx, api.PathMe, nil, &me))
	assert.Equal(t, "u-ada", me.ID)
}

func TestIntegration_LogoutThenMeFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	require.NoError(t, f.auth.Logout(ctx))

	_, ok := f.store.Current()
	assert.False(t, ok)

	var me session.User
	err := f.client.Get(ctx, api.PathMe, nil, &me)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}
