package controller

import (
	"errors"
	"sync"
)

type fakeField struct {
	mu sync.Mutex
	v  string
}

func (f *fakeField) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.v
}

func (f *fakeField) SetValue(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.v = v
}

type fakeControl struct {
	mu      sync.Mutex
	visible bool
}

func (c *fakeControl) SetVisible(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = v
}

func (c *fakeControl) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

type fakeForm struct {
	mu        sync.Mutex
	action    string
	offsetTop int
	fields    []*fakeField
	submitted []string
	submitErr error
}

func (f *fakeForm) Reset() {
	for _, field := range f.fields {
		field.SetValue("")
	}
}

func (f *fakeForm) Action() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.action
}

func (f *fakeForm) SetAction(a string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.action = a
}

func (f *fakeForm) OffsetTop() int { return f.offsetTop }

func (f *fakeForm) Submit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, f.action)
	return nil
}

func (f *fakeForm) Submissions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.submitted...)
}

type fakeRegion struct {
	mu      sync.Mutex
	content string
}

func (r *fakeRegion) SetContent(m string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = m
}

func (r *fakeRegion) Content() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content
}

type fakeViewport struct {
	mu       sync.Mutex
	top      int
	behavior ScrollBehavior
	scrolls  int
}

func (v *fakeViewport) ScrollTo(top int, b ScrollBehavior) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.top = top
	v.behavior = b
	v.scrolls++
}

type fakePage struct {
	form                                   *fakeForm
	recordID, studentID, name, class, date *fakeField
	search                                 *fakeField
	submit, update                         *fakeControl
	records                                *fakeRegion
	viewport                               *fakeViewport
}

func newFakePage() *fakePage {
	p := &fakePage{
		recordID:  &fakeField{},
		studentID: &fakeField{},
		name:      &fakeField{},
		class:     &fakeField{},
		date:      &fakeField{},
		search:    &fakeField{},
		submit:    &fakeControl{visible: true},
		update:    &fakeControl{},
		records:   &fakeRegion{},
		viewport:  &fakeViewport{},
	}
	p.form = &fakeForm{
		offsetTop: 420,
		fields:    []*fakeField{p.studentID, p.name, p.class, p.date},
	}
	return p
}

func (p *fakePage) elements() Elements {
	return Elements{
		Form:         p.form,
		RecordID:     p.recordID,
		StudentID:    p.studentID,
		Name:         p.name,
		Class:        p.class,
		Date:         p.date,
		SubmitButton: p.submit,
		UpdateButton: p.update,
		SearchInput:  p.search,
		Records:      p.records,
		Viewport:     p.viewport,
	}
}

type pageState struct {
	RecordID      string
	StudentID     string
	Name          string
	Class         string
	Date          string
	Search        string
	Action        string
	Records       string
	SubmitVisible bool
	UpdateVisible bool
	Scrolls       int
}

func (p *fakePage) state() pageState {
	p.viewport.mu.Lock()
	scrolls := p.viewport.scrolls
	p.viewport.mu.Unlock()
	return pageState{
		RecordID:      p.recordID.Value(),
		StudentID:     p.studentID.Value(),
		Name:          p.name.Value(),
		Class:         p.class.Value(),
		Date:          p.date.Value(),
		Search:        p.search.Value(),
		Action:        p.form.Action(),
		Records:       p.records.Content(),
		SubmitVisible: p.submit.Visible(),
		UpdateVisible: p.update.Visible(),
		Scrolls:       scrolls,
	}
}

type fakeTarget struct {
	classes []string
	attrs   map[string]string
}

func (t fakeTarget) HasClass(name string) bool {
	for _, c := range t.classes {
		if c == name {
			return true
		}
	}
	return false
}

func (t fakeTarget) Attr(name string) (string, bool) {
	v, ok := t.attrs[name]
	return v, ok
}

var errNavigation = errors.New("navigation failed")
