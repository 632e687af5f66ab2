package controller

import (
	"errors"
	"strings"
)

// Field is a single text input on the page.
type Field interface {
	Value() string
	SetValue(v string)
}

// Control is a button whose visibility the controller toggles.
type Control interface {
	SetVisible(visible bool)
}

// Form is the record form. Submit performs a full page navigation; its
// result is handled by whatever hosts the page.
type Form interface {
	Reset()
	Action() string
	SetAction(action string)
	OffsetTop() int
	Submit() error
}

// Region receives a server-rendered fragment verbatim.
type Region interface {
	SetContent(markup string)
}

// ScrollBehavior tells a viewport how to move.
type ScrollBehavior string

// ScrollSmooth animates the scroll. The controller only ever scrolls this way.
const ScrollSmooth ScrollBehavior = "smooth"

// Viewport scrolls the visible part of the page.
type Viewport interface {
	ScrollTo(top int, behavior ScrollBehavior)
}

// Target is the element a click landed on.
type Target interface {
	HasClass(name string) bool
	Attr(name string) (string, bool)
}

// Elements binds the controller to the page. Every member is required.
type Elements struct {
	Form         Form
	RecordID     Field
	StudentID    Field
	Name         Field
	Class        Field
	Date         Field
	SubmitButton Control
	UpdateButton Control
	SearchInput  Field
	Records      Region
	Viewport     Viewport
}

func (e Elements) validate() error {
	missing := make([]string, 0)
	check := func(name string, ok bool) {
		if !ok {
			missing = append(missing, name)
		}
	}
	check("form", e.Form != nil)
	check("record id", e.RecordID != nil)
	check("student id", e.StudentID != nil)
	check("name", e.Name != nil)
	check("class", e.Class != nil)
	check("date", e.Date != nil)
	check("submit button", e.SubmitButton != nil)
	check("update button", e.UpdateButton != nil)
	check("search input", e.SearchInput != nil)
	check("records", e.Records != nil)
	check("viewport", e.Viewport != nil)
	if len(missing) > 0 {
		return errors.New("controller: missing elements: " + strings.Join(missing, ", "))
	}
	return nil
}

const (
	// EditClass marks the per-row edit action in the records fragment.
	EditClass = "edit-btn"
	// RecordAttr carries the record identifier on an edit action.
	RecordAttr = "data-id"
)

// RecordIDFromTarget returns the record identifier carried by an edit action.
// Anything else, including an edit action with an empty id, yields false.
func RecordIDFromTarget(t Target) (string, bool) {
	if t == nil || !t.HasClass(EditClass) {
		return "", false
	}
	id, ok := t.Attr(RecordAttr)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

var errNoAPI = errors.New("controller: record API is required")
