package page

import (
	"errors"
	"net/url"
	"sync"

	"github.com/noah-isme/attendance-tracker/internal/controller"
)

// Element ids of the attendance page.
const (
	FieldRecordID  = "recordId"
	FieldStudentID = "student_id"
	FieldName      = "name"
	FieldClass     = "class"
	FieldDate      = "date"
	FieldSearch    = "searchInput"

	ControlSubmit = "submitBtn"
	ControlUpdate = "updateBtn"
)

// DefaultFormOffset is where the form sits below the top of the page.
const DefaultFormOffset = 240

// ErrNoNavigator is returned by Submit when nothing handles navigations.
var ErrNoNavigator = errors.New("page: no navigator attached")

// formFields are posted on submission, in page order.
var formFields = []string{FieldStudentID, FieldName, FieldClass, FieldDate}

// Submission is a form post about to leave the page.
type Submission struct {
	Action string
	Values url.Values
}

// Flash is the one-shot message rendered above the form after a reload.
type Flash struct {
	Category string
	Message  string
}

// Document is an in-memory attendance page. It satisfies every surface the
// controller writes to and is safe for concurrent use.
type Document struct {
	mu             sync.RWMutex
	values         map[string]string
	visible        map[string]bool
	action         string
	offsetTop      int
	scrollTop      int
	scrollBehavior controller.ScrollBehavior
	content        string
	table          Table
	parseErr       error
	flash          *Flash
	onSubmit       func(Submission)
}

// NewDocument returns a blank page with the form at offsetTop.
func NewDocument(offsetTop int) *Document {
	return &Document{
		values:    map[string]string{},
		visible:   map[string]bool{ControlSubmit: true},
		action:    controller.AddPath,
		offsetTop: offsetTop,
	}
}

// OnSubmit installs the navigation hook. It is called synchronously from
// Submit and must not call back into the controller.
func (d *Document) OnSubmit(fn func(Submission)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onSubmit = fn
}

// Elements wires the document into a controller.
func (d *Document) Elements() controller.Elements {
	return controller.Elements{
		Form:         d,
		RecordID:     d.Field(FieldRecordID),
		StudentID:    d.Field(FieldStudentID),
		Name:         d.Field(FieldName),
		Class:        d.Field(FieldClass),
		Date:         d.Field(FieldDate),
		SubmitButton: d.Control(ControlSubmit),
		UpdateButton: d.Control(ControlUpdate),
		SearchInput:  d.Field(FieldSearch),
		Records:      d,
		Viewport:     d,
	}
}

type field struct {
	doc *Document
	id  string
}

func (f field) Value() string { return f.doc.Value(f.id) }

func (f field) SetValue(v string) { f.doc.SetValue(f.id, v) }

// Field returns the input with the given id.
func (d *Document) Field(id string) controller.Field {
	return field{doc: d, id: id}
}

type control struct {
	doc *Document
	id  string
}

func (c control) SetVisible(v bool) {
	c.doc.mu.Lock()
	defer c.doc.mu.Unlock()
	c.doc.visible[c.id] = v
}

// Control returns the button with the given id.
func (d *Document) Control(id string) controller.Control {
	return control{doc: d, id: id}
}

// Value reads an input.
func (d *Document) Value(id string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.values[id]
}

// SetValue writes an input, as typing would.
func (d *Document) SetValue(id, v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[id] = v
}

// Visible reports whether a button is shown.
func (d *Document) Visible(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.visible[id]
}

// Reset restores the form inputs to their blank defaults. The search box is
// outside the form and keeps its value.
func (d *Document) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range formFields {
		delete(d.values, id)
	}
}

// Action returns where the form posts.
func (d *Document) Action() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.action
}

// SetAction changes where the form posts.
func (d *Document) SetAction(action string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.action = action
}

// OffsetTop is the form's distance from the top of the page.
func (d *Document) OffsetTop() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.offsetTop
}

// Submit hands the current form to the navigation hook.
func (d *Document) Submit() error {
	d.mu.RLock()
	hook := d.onSubmit
	sub := Submission{Action: d.action, Values: url.Values{}}
	for _, id := range formFields {
		sub.Values.Set(id, d.values[id])
	}
	d.mu.RUnlock()

	if hook == nil {
		return ErrNoNavigator
	}
	hook(sub)
	return nil
}

// SetContent replaces the records region. The markup is kept verbatim; the
// parsed table is rebuilt from it so edit targets always match what is shown.
func (d *Document) SetContent(markup string) {
	table, err := ParseRecords(markup)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = markup
	d.table = table
	d.parseErr = err
}

// Content returns the records region as last set.
func (d *Document) Content() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content
}

// Table returns the records parsed from the region and any parse error.
func (d *Document) Table() (Table, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.table, d.parseErr
}

// ScrollTo moves the viewport. Negative positions clamp to the top.
func (d *Document) ScrollTo(top int, behavior controller.ScrollBehavior) {
	if top < 0 {
		top = 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scrollTop = top
	d.scrollBehavior = behavior
}

// ScrollTop returns the last scroll position and how it was reached.
func (d *Document) ScrollTop() (int, controller.ScrollBehavior) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.scrollTop, d.scrollBehavior
}

// SetFlash shows msg; nil clears it.
func (d *Document) SetFlash(msg *Flash) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flash = msg
}

// Flash returns the current message, if any.
func (d *Document) Flash() *Flash {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.flash == nil {
		return nil
	}
	f := *d.flash
	return &f
}
