package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtinder/devtinder/internal/api"
	"github.com/devtinder/devtinder/internal/session"
)

type recordingNav struct {
	logins int
}

func (n *recordingNav) ToLogin() { n.logins++ }
func (n *recordingNav) ToHome()  {}

func authFixture(t *testing.T, handler http.Handler) (*session.Store, *Service, *recordingNav) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewStore(session.NewCache(t.TempDir()), nil)
	client, err := api.New(api.Options{
		BaseURL: srv.URL,
		Tokens:  store.Cache(),
		Session: store.Cache(),
	})
	require.NoError(t, err)

	nav := &recordingNav{}
	return store, NewService(client, store, nav, nil), nav
}

func TestLogin_SuccessRoundTrip(t *testing.T) {
	var gotBody map[string]string
	store, svc, _ := authFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"user":{"id":"u1","firstName":"A"},"token":"tok-1"}`))
	}))

	user, err := svc.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", gotBody["emailId"])
	assert.Equal(t, "secret", gotBody["password"])
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "A", user.FirstName)

	current, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", current.ID)

	cached, err := store.Cache().Load()
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "u1", cached.ID)
	assert.Equal(t, "A", cached.FirstName)

	token, ok := store.Cache().Token()
	require.True(t, ok)
	assert.Equal(t, "tok-1", token)
}

func TestLogin_FailureCommitsNothing(t *testing.T) {
	store, svc, _ := authFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusBadRequest)
	}))

	_, err := svc.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.True(t, api.IsStatus(err, http.StatusBadRequest))

	_, ok := store.Current()
	assert.False(t, ok, "failed login must not mutate the store")

	cached, loadErr := store.Cache().Load()
	require.NoError(t, loadErr)
	assert.Nil(t, cached, "failed login must not write the cache")

	_, ok = store.Cache().Token()
	assert.False(t, ok)
}

func TestLogout_ClearsEverythingAndNavigates(t *testing.T) {
	store, svc, nav := authFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/logout", r.URL.Path)
		w.Write([]byte(`{}`))
	}))
	require.NoError(t, store.Set(&session.User{ID: "u1"}))
	require.NoError(t, store.Cache().SaveToken("tok-1"))

	require.NoError(t, svc.Logout(context.Background()))

	_, ok := store.Current()
	assert.False(t, ok)
	cached, err := store.Cache().Load()
	require.NoError(t, err)
	assert.Nil(t, cached)
	_, ok = store.Cache().Token()
	assert.False(t, ok)
	assert.Equal(t, 1, nav.logins)
}

func TestLogout_ServerDownStillCleansUpLocally(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close() // connection refused

	store := session.NewStore(session.NewCache(t.TempDir()), nil)
	client, err := api.New(api.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	nav := &recordingNav{}
	svc := NewService(client, store, nav, nil)

	require.NoError(t, store.Set(&session.User{ID: "u1"}))
	require.NoError(t, store.Cache().SaveToken("tok-1"))

	err = svc.Logout(context.Background())
	require.Error(t, err, "the network failure still surfaces")

	_, ok := store.Current()
	assert.False(t, ok, "local cleanup is best-effort and must run")
	cached, loadErr := store.Cache().Load()
	require.NoError(t, loadErr)
	assert.Nil(t, cached)
	_, ok = store.Cache().Token()
	assert.False(t, ok)
	assert.Equal(t, 1, nav.logins)
}

func TestRegister_PopulatesSession(t *testing.T) {
	store, svc, _ := authFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		w.Write([]byte(`{"_id":"u2","firstName":"New","emailId":"new@b.com"}`))
	}))

	user, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "New", EmailID: "new@b.com", Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "u2", user.ID)

	current, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "u2", current.ID)
}
