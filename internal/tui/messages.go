package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/devtinder/devtinder/internal/connect"
	"github.com/devtinder/devtinder/internal/session"
)

// Message types routed through the root model.
type (
	// bootDoneMsg signals the bootstrap reconciler finished.
	bootDoneMsg struct{ err error }

	// sessionChangedMsg signals the session store changed; screens re-read it.
	sessionChangedMsg struct{}

	// navMsg switches the active screen (401/403 redirects land here too).
	navMsg struct{ target screen }

	// loginDoneMsg carries a login attempt's outcome.
	loginDoneMsg struct {
		user *session.User
		err  error
	}

	// logoutDoneMsg carries a logout attempt's outcome.
	logoutDoneMsg struct{ err error }

	// itemsMsg carries a fetched list for one screen.
	itemsMsg struct {
		target screen
		items  []session.User
		err    error
	}

	// actedMsg carries the outcome of a terminal action on one item.
	actedMsg struct {
		target screen
		status connect.Status
		item   session.User
		err    error
	}

	// profileMsg carries a profile view/edit outcome.
	profileMsg struct {
		user *session.User
		err  error
	}
)

// Navigator funnels the api client's 401/403 redirects into the running
// program. The program is attached after construction because the client is
// built first.
type Navigator struct {
	mu sync.Mutex
	p  *tea.Program
}

// Attach connects the running program.
func (n *Navigator) Attach(p *tea.Program) {
	n.mu.Lock()
	n.p = p
	n.mu.Unlock()
}

// ToLogin switches to the login screen.
func (n *Navigator) ToLogin() { n.send(navMsg{target: screenLogin}) }

// ToHome switches to the feed, the TUI's home screen.
func (n *Navigator) ToHome() { n.send(navMsg{target: screenFeed}) }

func (n *Navigator) send(msg tea.Msg) {
	n.mu.Lock()
	p := n.p
	n.mu.Unlock()
	if p != nil {
		// Send blocks when the program is busy; don't stall the HTTP path.
		go p.Send(msg)
	}
}
