// Package tui is the interactive terminal client. The root model owns the
// active screen, the bootstrap handshake with the session store, and the
// redirects the API client issues on auth failures.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/devtinder/devtinder/internal/auth"
	"github.com/devtinder/devtinder/internal/connect"
	"github.com/devtinder/devtinder/internal/profile"
	"github.com/devtinder/devtinder/internal/session"
)

// screen identifies one of the app's views.
type screen int

const (
	screenLogin screen = iota
	screenFeed
	screenRequests
	screenConnections
	screenProfile
)

func (s screen) String() string {
	switch s {
	case screenLogin:
		return "login"
	case screenFeed:
		return "feed"
	case screenRequests:
		return "requests"
	case screenConnections:
		return "connections"
	case screenProfile:
		return "profile"
	default:
		return "unknown"
	}
}

// Deps are the collaborators the root model drives.
type Deps struct {
	Store       *session.Store
	Reconciler  *session.Reconciler
	Auth        *auth.Service
	Profile     *profile.Service
	Feed        *connect.Controller
	Requests    *connect.Controller
	Connections *connect.Controller
	Logger      *zap.Logger
	// Timeout bounds each request issued from the UI. Zero means 10s.
	Timeout time.Duration
}

// Model is the root bubbletea model.
type Model struct {
	deps   Deps
	logger *zap.Logger

	active  screen
	booting bool
	bootErr error

	login       loginModel
	feed        listModel
	requests    listModel
	connections listModel
	profile     profileModel

	width  int
	height int
}

// New builds the root model. The program is not running yet; attach the
// Navigator after tea.NewProgram.
func New(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Timeout <= 0 {
		deps.Timeout = 10 * time.Second
	}
	timeout := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), deps.Timeout)
	}

	return Model{
		deps:    deps,
		logger:  deps.Logger,
		active:  screenLogin,
		booting: true,
		login:   newLoginModel(deps.Auth, timeout),
		feed: newListModel(screenFeed, "Feed", "No one new right now. Check back later.",
			deps.Feed, []actionKey{
				{key: "i", status: connect.StatusInterested, label: "interested"},
				{key: "x", status: connect.StatusIgnored, label: "ignore"},
			}, timeout),
		requests: newListModel(screenRequests, "Requests", "No pending requests.",
			deps.Requests, []actionKey{
				{key: "a", status: connect.StatusAccepted, label: "accept"},
				{key: "r", status: connect.StatusRejected, label: "reject"},
			}, timeout),
		connections: newListModel(screenConnections, "Connections", "No connections yet.",
			deps.Connections, nil, timeout),
		profile: newProfileModel(deps.Profile, timeout),
	}
}

// Init kicks off the bootstrap reconciliation.
func (m Model) Init() tea.Cmd {
	rec, logger := m.deps.Reconciler, m.logger
	boot := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := rec.Run(ctx)
		if err != nil {
			logger.Warn("bootstrap reconciliation failed", zap.Error(err))
		}
		return bootDoneMsg{err: err}
	}
	return tea.Batch(boot, m.watchStore())
}

// watchStore relays store changes into the update loop.
func (m Model) watchStore() tea.Cmd {
	ch := m.deps.Store.Subscribe()
	return func() tea.Msg {
		<-ch
		return sessionChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case bootDoneMsg:
		m.booting = false
		m.bootErr = msg.err
		if _, ok := m.deps.Store.Current(); ok {
			return m.switchTo(screenFeed)
		}
		return m.switchTo(screenLogin)

	case sessionChangedMsg:
		// Keep the relay alive; screens re-read the store on demand.
		if _, ok := m.deps.Store.Current(); !ok && m.active != screenLogin && !m.booting {
			next, cmd := m.switchTo(screenLogin)
			return next, tea.Batch(cmd, m.watchStore())
		}
		return m, m.watchStore()

	case navMsg:
		if m.active == msg.target {
			return m, nil
		}
		return m.switchTo(msg.target)

	case loginDoneMsg:
		var cmd tea.Cmd
		m.login, cmd = m.login.update(msg)
		if msg.err == nil {
			next, enterCmd := m.switchTo(screenFeed)
			return next, tea.Batch(cmd, enterCmd)
		}
		return m, cmd

	case logoutDoneMsg:
		// Local cleanup already happened; the Navigator lands us on login.
		if msg.err != nil {
			m.logger.Warn("logout request failed", zap.Error(msg.err))
		}
		return m.switchTo(screenLogin)

	case tea.KeyMsg:
		if handled, next, cmd := m.globalKey(msg); handled {
			return next, cmd
		}
	}

	return m.route(msg)
}

// globalKey handles keys that work on every screen.
func (m Model) globalKey(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	// The login form owns all printable keys.
	typing := m.active == screenLogin

	switch msg.String() {
	case "ctrl+c":
		return true, m, tea.Quit
	case "q":
		if typing {
			return false, m, nil
		}
		return true, m, tea.Quit
	case "1":
		if !typing {
			next, cmd := m.switchTo(screenFeed)
			return true, next, cmd
		}
	case "2":
		if !typing {
			next, cmd := m.switchTo(screenRequests)
			return true, next, cmd
		}
	case "3":
		if !typing {
			next, cmd := m.switchTo(screenConnections)
			return true, next, cmd
		}
	case "4":
		if !typing {
			next, cmd := m.switchTo(screenProfile)
			return true, next, cmd
		}
	case "L":
		if !typing {
			return true, m, m.logoutCmd()
		}
	}
	return false, m, nil
}

func (m Model) logoutCmd() tea.Cmd {
	svc := m.deps.Auth
	timeout := m.deps.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return logoutDoneMsg{err: svc.Logout(ctx)}
	}
}

// switchTo activates a screen and runs its entry command.
func (m Model) switchTo(target screen) (Model, tea.Cmd) {
	m.active = target
	switch target {
	case screenLogin:
		return m, m.login.enter()
	case screenFeed:
		return m, m.feed.enter()
	case screenRequests:
		return m, m.requests.enter()
	case screenConnections:
		return m, m.connections.enter()
	case screenProfile:
		return m, m.profile.enter()
	}
	return m, nil
}

// route forwards a message to the active screen. List results are routed by
// target so a stale screen's message never mutates another screen.
func (m Model) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch target := messageTarget(msg, m.active); target {
	case screenLogin:
		m.login, cmd = m.login.update(msg)
	case screenFeed:
		m.feed, cmd = m.feed.update(msg)
	case screenRequests:
		m.requests, cmd = m.requests.update(msg)
	case screenConnections:
		m.connections, cmd = m.connections.update(msg)
	case screenProfile:
		m.profile, cmd = m.profile.update(msg)
	}
	return m, cmd
}

// messageTarget picks the screen a message belongs to. Targeted messages go
// to their own screen even when it is not active.
func messageTarget(msg tea.Msg, active screen) screen {
	switch msg := msg.(type) {
	case itemsMsg:
		return msg.target
	case actedMsg:
		return msg.target
	case profileMsg:
		return screenProfile
	default:
		return active
	}
}

func (m Model) View() string {
	if m.booting {
		return containerStyle.Render(headerStyle.Render(" DevTinder ") + "\n\n" +
			dimStyle.Render("Restoring session..."))
	}

	var body string
	switch m.active {
	case screenLogin:
		body = m.login.view()
	case screenFeed:
		body = m.feed.view()
	case screenRequests:
		body = m.requests.view()
	case screenConnections:
		body = m.connections.view()
	case screenProfile:
		body = m.profile.view()
	}

	if m.active == screenLogin {
		return containerStyle.Render(body)
	}
	return containerStyle.Render(m.tabBar() + "\n\n" + body + "\n\n" + m.footer())
}

func (m Model) tabBar() string {
	tabs := []struct {
		s     screen
		label string
	}{
		{screenFeed, "1 Feed"},
		{screenRequests, "2 Requests"},
		{screenConnections, "3 Connections"},
		{screenProfile, "4 Profile"},
	}
	out := headerStyle.Render(" DevTinder ")
	for _, t := range tabs {
		if t.s == m.active {
			out += activeTabStyle.Render(t.label)
		} else {
			out += tabStyle.Render(t.label)
		}
	}
	return out
}

func (m Model) footer() string {
	return footerKeyStyle.Render("[1-4]") + footerStyle.Render(" screens  ") +
		footerKeyStyle.Render("[↑/↓]") + footerStyle.Render(" move  ") +
		footerKeyStyle.Render("[R]") + footerStyle.Render(" refresh  ") +
		footerKeyStyle.Render("[L]") + footerStyle.Render(" logout  ") +
		footerKeyStyle.Render("[q]") + footerStyle.Render(" quit")
}
