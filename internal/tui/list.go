package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/devtinder/devtinder/internal/connect"
	"github.com/devtinder/devtinder/internal/session"
)

// actionKey maps a keypress to a terminal action on the selected item.
type actionKey struct {
	key    string
	status connect.Status
	label  string
}

// listModel is the shared screen for feed, requests, and connections: fetch
// once on entry, render cards, act on the selected item, remove it locally.
type listModel struct {
	target  screen
	title   string
	empty   string
	ctrl    *connect.Controller
	actions []actionKey
	timeout timeoutFunc

	spinner   spinner.Model
	loading   bool
	loaded    bool
	err       error
	items     []session.User
	cursor    int
	notice    string
	noticeErr bool
}

// timeoutFunc yields a request context; injected so tests can shorten it.
type timeoutFunc func() (context.Context, context.CancelFunc)

func newListModel(target screen, title, empty string, ctrl *connect.Controller, actions []actionKey, timeout timeoutFunc) listModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return listModel{
		target:  target,
		title:   title,
		empty:   empty,
		ctrl:    ctrl,
		actions: actions,
		timeout: timeout,
		spinner: sp,
	}
}

// enter starts the screen: a fetch plus the spinner tick.
func (m *listModel) enter() tea.Cmd {
	m.loading = true
	m.loaded = false
	m.err = nil
	m.notice = ""
	return tea.Batch(m.fetchCmd(), m.spinner.Tick)
}

func (m *listModel) fetchCmd() tea.Cmd {
	ctrl, target, timeout := m.ctrl, m.target, m.timeout
	return func() tea.Msg {
		ctx, cancel := timeout()
		defer cancel()
		items, err := ctrl.Fetch(ctx)
		if errors.Is(err, connect.ErrSuperseded) {
			// A newer fetch owns the screen; drop this result silently.
			return nil
		}
		return itemsMsg{target: target, items: items, err: err}
	}
}

func (m *listModel) actCmd(status connect.Status, item session.User) tea.Cmd {
	ctrl, target, timeout := m.ctrl, m.target, m.timeout
	return func() tea.Msg {
		ctx, cancel := timeout()
		defer cancel()
		err := ctrl.Act(ctx, status, item.ID)
		return actedMsg{target: target, status: status, item: item, err: err}
	}
}

func (m listModel) update(msg tea.Msg) (listModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case itemsMsg:
		if msg.target != m.target {
			return m, nil
		}
		m.loading = false
		m.loaded = true
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.items = msg.items
		if m.cursor >= len(m.items) {
			m.cursor = max(0, len(m.items)-1)
		}
		return m, nil

	case actedMsg:
		if msg.target != m.target {
			return m, nil
		}
		if msg.err != nil {
			// Failure leaves the list untouched; just tell the user.
			m.notice = fmt.Sprintf("Failed to mark %s as %s", msg.item.FullName(), msg.status)
			m.noticeErr = true
			return m, nil
		}
		m.items = m.ctrl.Items()
		if m.cursor >= len(m.items) {
			m.cursor = max(0, len(m.items)-1)
		}
		m.notice = fmt.Sprintf("%s: %s", capitalize(string(msg.status)), msg.item.FullName())
		m.noticeErr = false
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "R":
			return m, m.enter()
		default:
			if len(m.items) == 0 {
				return m, nil
			}
			for _, a := range m.actions {
				if msg.String() == a.key {
					return m, m.actCmd(a.status, m.items[m.cursor])
				}
			}
		}
	}
	return m, nil
}

func (m listModel) view() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(" "+m.title+" ") + "\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + dimStyle.Render(" Loading "+strings.ToLower(m.title)+"...") + "\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render("Failed to load "+strings.ToLower(m.title)) + "\n")
		b.WriteString(dimStyle.Render(m.err.Error()) + "\n")
		b.WriteString(dimStyle.Render("Press R to retry.") + "\n")
	case len(m.items) == 0:
		b.WriteString(dimStyle.Render(m.empty) + "\n")
	default:
		for i, item := range m.items {
			b.WriteString(m.renderCard(item, i == m.cursor) + "\n")
		}
	}

	if m.notice != "" {
		b.WriteString("\n")
		if m.noticeErr {
			b.WriteString(errorStyle.Render(m.notice) + "\n")
		} else {
			b.WriteString(noticeStyle.Render(m.notice) + "\n")
		}
	}

	if len(m.actions) > 0 && len(m.items) > 0 {
		var keys []string
		for _, a := range m.actions {
			keys = append(keys, footerKeyStyle.Render("["+a.key+"]")+footerStyle.Render(" "+a.label))
		}
		b.WriteString("\n" + strings.Join(keys, "  "))
	}

	return b.String()
}

func (m listModel) renderCard(u session.User, selected bool) string {
	var lines []string
	head := nameStyle.Render(u.FullName())
	if u.Age > 0 {
		head += dimStyle.Render(fmt.Sprintf("  %d, %s", u.Age, u.Gender))
	}
	lines = append(lines, head)
	if u.About != "" {
		lines = append(lines, u.About)
	}
	if len(u.Skills) > 0 {
		lines = append(lines, dimStyle.Render(strings.Join(u.Skills, " · ")))
	}

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
