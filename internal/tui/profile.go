package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/devtinder/devtinder/internal/profile"
	"github.com/devtinder/devtinder/internal/session"
)

// profileModel shows the signed-in user's own profile.
type profileModel struct {
	svc     *profile.Service
	timeout timeoutFunc

	user    session.User
	loaded  bool
	errText string
}

func newProfileModel(svc *profile.Service, timeout timeoutFunc) profileModel {
	return profileModel{svc: svc, timeout: timeout}
}

func (m *profileModel) enter() tea.Cmd {
	m.errText = ""
	return m.fetchCmd()
}

func (m profileModel) fetchCmd() tea.Cmd {
	svc, timeout := m.svc, m.timeout
	return func() tea.Msg {
		ctx, cancel := timeout()
		defer cancel()
		user, err := svc.View(ctx)
		return profileMsg{user: user, err: err}
	}
}

func (m profileModel) update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case profileMsg:
		if msg.err != nil || msg.user == nil {
			m.errText = "Could not load profile."
			return m, nil
		}
		m.user = *msg.user
		m.loaded = true
		m.errText = ""
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "R" {
			m.errText = ""
			return m, m.fetchCmd()
		}
	}
	return m, nil
}

func (m profileModel) view() string {
	if m.errText != "" {
		return errorStyle.Render(m.errText) + "\n" + dimStyle.Render("Press R to retry.")
	}
	if !m.loaded {
		return dimStyle.Render("Loading profile...")
	}

	u := m.user
	var b strings.Builder
	b.WriteString(nameStyle.Render(u.FullName()) + "\n")
	if u.Age > 0 || u.Gender != "" {
		b.WriteString(dimStyle.Render(strings.TrimSpace(fmt.Sprintf("%d %s", u.Age, u.Gender))) + "\n")
	}
	if u.EmailID != "" {
		b.WriteString(u.EmailID + "\n")
	}
	if u.About != "" {
		b.WriteString("\n" + u.About + "\n")
	}
	if len(u.Skills) > 0 {
		b.WriteString("\n" + dimStyle.Render("Skills: "+strings.Join(u.Skills, ", ")) + "\n")
	}
	if u.PhotoURL != "" {
		b.WriteString(dimStyle.Render("Photo: "+u.PhotoURL) + "\n")
	}
	return cardStyle.Render(strings.TrimRight(b.String(), "\n"))
}
