package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/devtinder/devtinder/internal/auth"
)

// loginModel is the credential form.
type loginModel struct {
	svc     *auth.Service
	timeout timeoutFunc

	email    textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	errText  string
}

func newLoginModel(svc *auth.Service, timeout timeoutFunc) loginModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginModel{svc: svc, timeout: timeout, email: email, password: password}
}

func (m *loginModel) enter() tea.Cmd {
	m.busy = false
	m.errText = ""
	m.focus = 0
	m.email.Focus()
	m.password.Blur()
	return textinput.Blink
}

func (m loginModel) submitCmd() tea.Cmd {
	svc, timeout := m.svc, m.timeout
	email, password := m.email.Value(), m.password.Value()
	return func() tea.Msg {
		ctx, cancel := timeout()
		defer cancel()
		user, err := svc.Login(ctx, email, password)
		return loginDoneMsg{user: user, err: err}
	}
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = "Login failed. Check your credentials."
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab":
			m.focus = (m.focus + 1) % 2
			if m.focus == 0 {
				m.email.Focus()
				m.password.Blur()
			} else {
				m.password.Focus()
				m.email.Blur()
			}
			return m, textinput.Blink
		case "enter":
			if m.focus == 0 {
				m.focus = 1
				m.email.Blur()
				m.password.Focus()
				return m, textinput.Blink
			}
			if m.email.Value() == "" || m.password.Value() == "" {
				m.errText = "Email and password are required."
				return m, nil
			}
			m.busy = true
			m.errText = ""
			return m, m.submitCmd()
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) view() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(" Sign in ") + "\n\n")
	b.WriteString(m.email.View() + "\n")
	b.WriteString(m.password.View() + "\n")

	switch {
	case m.busy:
		b.WriteString("\n" + dimStyle.Render("Signing in...") + "\n")
	case m.errText != "":
		b.WriteString("\n" + errorStyle.Render(m.errText) + "\n")
	}

	b.WriteString("\n" + footerKeyStyle.Render("[enter]") + footerStyle.Render(" sign in  ") +
		footerKeyStyle.Render("[tab]") + footerStyle.Render(" switch field"))
	return b.String()
}
