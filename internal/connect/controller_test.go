package connect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtinder/devtinder/internal/api"
)

func controllerFixture(t *testing.T, ep Endpoint, handler http.Handler) *Controller {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.New(api.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return NewController(client, ep, nil)
}

func TestFetch_PopulatesFromNamedField(t *testing.T) {
	c := controllerFixture(t, Feed, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feed", r.URL.Path)
		w.Write([]byte(`{"users":[{"_id":"1","firstName":"A"},{"_id":"2","firstName":"B"}]}`))
	}))

	items, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "2", items[1].ID)
}

func TestFetch_MissingFieldYieldsEmptyList(t *testing.T) {
	c := controllerFixture(t, Requests, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	}))

	items, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, c.Len())
}

func TestAct_RemovesExactlyTheActedItem(t *testing.T) {
	var actionPath string
	c := controllerFixture(t, Feed, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			actionPath = r.URL.Path
		}
		w.Write([]byte(`{"users":[{"_id":"1"},{"_id":"2"},{"_id":"3"}]}`))
	}))

	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Act(context.Background(), StatusInterested, "2"))

	assert.Equal(t, "/request/send/interested/2", actionPath)
	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID, "order of the remainder is preserved")
	assert.Equal(t, "3", items[1].ID)

	// Acting again on the removed item is a server call plus a local no-op.
	require.NoError(t, c.Act(context.Background(), StatusIgnored, "2"))
	assert.Equal(t, 2, c.Len())
}

func TestAct_SpecScenarioFeedInterested(t *testing.T) {
	c := controllerFixture(t, Feed, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users":[{"_id":"1"},{"_id":"2"}]}`))
	}))

	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Act(context.Background(), StatusInterested, "1"))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID)
}

func TestAct_FailureLeavesListUnchanged(t *testing.T) {
	c := controllerFixture(t, Requests, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"connectionRequests":[{"_id":"r1"},{"_id":"r2"}]}`))
	}))

	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	err = c.Act(context.Background(), StatusAccepted, "r1")
	require.Error(t, err)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "r1", items[0].ID)
	assert.Equal(t, "r2", items[1].ID)
}

func TestAct_RejectsUnsupportedStatus(t *testing.T) {
	c := controllerFixture(t, Feed, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be made for an unsupported status")
	}))

	err := c.Act(context.Background(), StatusAccepted, "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestAct_ReadOnlyEndpoint(t *testing.T) {
	c := controllerFixture(t, Connections, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"filteredConnections":[{"_id":"1"}]}`))
	}))

	err := c.Act(context.Background(), StatusAccepted, "1")
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestFetch_SupersededResultDiscarded(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(firstStarted)
			<-releaseFirst
			w.Write([]byte(`{"users":[{"_id":"old"}]}`))
			return
		}
		w.Write([]byte(`{"users":[{"_id":"new"}]}`))
	}))
	t.Cleanup(srv.Close)

	client, err := api.New(api.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	c := NewController(client, Feed, nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := c.Fetch(context.Background())
		firstDone <- err
	}()
	<-firstStarted

	// Second fetch supersedes the first and resolves immediately.
	items, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].ID)

	close(releaseFirst)
	assert.ErrorIs(t, <-firstDone, ErrSuperseded)

	// The stale response never overwrote the newer result.
	got := c.Items()
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestAct_RacingActionsRemoveTheirOwnItems(t *testing.T) {
	c := controllerFixture(t, Feed, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users":[{"_id":"1"},{"_id":"2"},{"_id":"3"}]}`))
	}))

	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range []string{"1", "3"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, c.Act(context.Background(), StatusIgnored, id))
		}(id)
	}
	wg.Wait()

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID)
}
