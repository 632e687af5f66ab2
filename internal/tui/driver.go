package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/noah-isme/attendance-tracker/internal/controller"
	"github.com/noah-isme/attendance-tracker/internal/page"
)

// Driver is what the model triggers on the page.
type Driver interface {
	HandleSubmit() error
	SubmitUpdate() error
	HandleClick(t controller.Target) bool
	HandleClear()
	HandleSearchKey(key string)
	HandleSearchClick()
	ShowAll()
	Delete(row page.Row) error
}

type sessionDriver struct {
	*controller.Controller
	session *page.Session
}

func (d sessionDriver) Delete(row page.Row) error {
	return d.session.Delete(row)
}

// FromSession drives an open page session.
func FromSession(s *page.Session) Driver {
	return sessionDriver{Controller: s.Ctrl, session: s}
}

// RefreshMsg tells the model the document changed behind its back.
type RefreshMsg struct{}

// Notifier forwards page changes to a running program. It may be handed to
// the page before the program exists; notifications before Bind are dropped.
type Notifier struct {
	program atomic.Pointer[tea.Program]
}

// Bind attaches the program that receives RefreshMsg.
func (n *Notifier) Bind(p *tea.Program) {
	n.program.Store(p)
}

// Notify sends a RefreshMsg. Send blocks until the program reads it, so it
// runs on its own goroutine.
func (n *Notifier) Notify() {
	if p := n.program.Load(); p != nil {
		go p.Send(RefreshMsg{})
	}
}
