// Package connect implements the shared behavior of the list screens: feed,
// received requests, and connections. Each screen fetches an ordered list
// once, lets the user act on individual items, and removes an acted-upon
// item from local state without refetching the whole list.
package connect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/devtinder/devtinder/internal/api"
	"github.com/devtinder/devtinder/internal/session"
)

// Status is a terminal action on a list item.
type Status string

const (
	StatusInterested Status = "interested"
	StatusIgnored    Status = "ignored"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
)

// Errors returned by the controller.
var (
	// ErrSuperseded means a newer Fetch started before this one resolved;
	// the result was discarded and the list left alone.
	ErrSuperseded = errors.New("list fetch superseded")
	// ErrReadOnly means the endpoint has no item actions.
	ErrReadOnly = errors.New("list is read-only")
)

// Endpoint describes one list screen's slice of the API.
type Endpoint struct {
	Name       string
	ListPath   string
	ItemsField string
	// ActionPath builds the per-item action path. Nil for read-only lists.
	ActionPath func(status Status, itemID string) string
	// Statuses are the actions the endpoint accepts.
	Statuses []Status
}

// The three list screens.
var (
	Feed = Endpoint{
		Name:       "feed",
		ListPath:   api.PathFeed,
		ItemsField: "users",
		ActionPath: func(s Status, id string) string { return api.SendPath(string(s), id) },
		Statuses:   []Status{StatusInterested, StatusIgnored},
	}

	Requests = Endpoint{
		Name:       "requests",
		ListPath:   api.PathRequestsReceived,
		ItemsField: "connectionRequests",
		ActionPath: func(s Status, id string) string { return api.ReviewPath(string(s), id) },
		Statuses:   []Status{StatusAccepted, StatusRejected},
	}

	Connections = Endpoint{
		Name:       "connections",
		ListPath:   api.PathConnections,
		ItemsField: "filteredConnections",
	}
)

func (e Endpoint) allows(status Status) bool {
	for _, s := range e.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Controller holds one screen's list. Safe for concurrent use: two in-flight
// actions against different items each remove their own item by identity,
// and a fetch superseded by a newer one never overwrites the newer result.
type Controller struct {
	mu     sync.Mutex
	client *api.Client
	ep     Endpoint
	items  []session.User
	gen    uint64
	logger *zap.Logger
}

// NewController creates a controller for one endpoint.
func NewController(client *api.Client, ep Endpoint, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{client: client, ep: ep, logger: logger}
}

// Endpoint returns the endpoint this controller serves.
func (c *Controller) Endpoint() Endpoint { return c.ep }

// Fetch loads the list from the server and replaces local state. A missing
// items field in the response yields an empty list, not an error. If another
// Fetch starts before this one resolves, the stale result is discarded and
// ErrSuperseded returned.
func (c *Controller) Fetch(ctx context.Context) ([]session.User, error) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	var envelope map[string]json.RawMessage
	if err := c.client.Get(ctx, c.ep.ListPath, nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", c.ep.Name, err)
	}

	items := []session.User{}
	if raw, ok := envelope[c.ep.ItemsField]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("malformed %s response: %w", c.ep.Name, err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.logger.Debug("discarding superseded fetch", zap.String("list", c.ep.Name))
		return nil, ErrSuperseded
	}
	c.items = items
	return c.snapshotLocked(), nil
}

// Items returns a copy of the current list, order preserved.
func (c *Controller) Items() []session.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Len returns the current list length.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Act performs a terminal action on one item. On success the item is removed
// from the local list exactly once, order of the remainder preserved, with
// no refetch. On failure the list is left untouched and the error surfaces
// to the caller.
func (c *Controller) Act(ctx context.Context, status Status, itemID string) error {
	if c.ep.ActionPath == nil {
		return ErrReadOnly
	}
	if !c.ep.allows(status) {
		return fmt.Errorf("status %q not supported by %s", status, c.ep.Name)
	}

	path := c.ep.ActionPath(status, itemID)
	if err := c.client.Post(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("%s action failed: %w", status, err)
	}

	c.removeByID(itemID)
	c.logger.Debug("item acted on and removed",
		zap.String("list", c.ep.Name),
		zap.String("status", string(status)),
		zap.String("item_id", itemID))
	return nil
}

func (c *Controller) removeByID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if item.ID == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *Controller) snapshotLocked() []session.User {
	out := make([]session.User, len(c.items))
	copy(out, c.items)
	return out
}
