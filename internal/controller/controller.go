package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DateLayout is the wire format of the date field.
const DateLayout = "2006-01-02"

const defaultScrollOffset = 100

type recordAPI interface {
	FetchRecord(ctx context.Context, id string) (Record, error)
	Search(ctx context.Context, term string) (string, error)
}

// Options tunes a Controller. The zero value applies responses in the order
// they arrive.
type Options struct {
	Logger *zap.Logger
	// Now supplies the default date for new records.
	Now func() time.Time
	// DiscardStale drops a response when a later request of the same kind
	// has already been applied. Off, the last response to arrive wins.
	DiscardStale bool
	// ScrollOffset is the gap kept above the form when scrolling to it.
	// Nil means 100.
	ScrollOffset *int
	// Notify is called after a network continuation changed the page.
	Notify func()
}

// lane numbers the requests of one kind so stale responses can be spotted.
type lane struct {
	issued  uint64
	applied uint64
}

// Controller drives the attendance form and the search box. Handlers return
// right after dispatching; network continuations run on their own goroutines
// and take the same lock as handlers, so page writes never interleave.
type Controller struct {
	el           Elements
	api          recordAPI
	logger       *zap.Logger
	now          func() time.Time
	discardStale bool
	scrollOffset int
	notify       func()

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	fetches  lane
	searches lane
}

// New binds a controller to the page elements.
func New(el Elements, api recordAPI, opts Options) (*Controller, error) {
	if err := el.validate(); err != nil {
		return nil, err
	}
	if api == nil {
		return nil, errNoAPI
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	offset := defaultScrollOffset
	if opts.ScrollOffset != nil {
		offset = *opts.ScrollOffset
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		el:           el,
		api:          api,
		logger:       logger,
		now:          now,
		discardStale: opts.DiscardStale,
		scrollOffset: offset,
		notify:       opts.Notify,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

// Init puts a freshly loaded page into Create mode.
func (c *Controller) Init() {
	c.ResetToCreateMode()
}

// ResetToCreateMode clears the form and shows the create control. Calling it
// twice leaves the same state as calling it once.
func (c *Controller) ResetToCreateMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// HandleClear is the clear control.
func (c *Controller) HandleClear() {
	c.ResetToCreateMode()
}

func (c *Controller) resetLocked() {
	c.el.Form.Reset()
	for _, f := range []Field{c.el.RecordID, c.el.StudentID, c.el.Name, c.el.Class} {
		f.SetValue("")
	}
	c.el.SubmitButton.SetVisible(true)
	c.el.UpdateButton.SetVisible(false)
	c.el.Form.SetAction(AddPath)
	c.el.Date.SetValue(c.now().Format(DateLayout))
}

// HandleClick routes a click on the page. It reports whether the target was
// an edit action.
func (c *Controller) HandleClick(t Target) bool {
	id, ok := RecordIDFromTarget(t)
	if !ok {
		return false
	}
	c.BeginEdit(id)
	return true
}

// BeginEdit loads record id into the form and switches to Edit mode once the
// record arrives. A failed load leaves the form untouched.
func (c *Controller) BeginEdit(id string) {
	if id == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	dispatch(c, &c.fetches, "fetch record",
		func(ctx context.Context) (Record, error) { return c.api.FetchRecord(ctx, id) },
		c.applyRecordLocked,
		zap.String("record_id", id),
	)
}

func (c *Controller) applyRecordLocked(rec Record) {
	c.el.RecordID.SetValue(rec.ID)
	c.el.StudentID.SetValue(rec.StudentID)
	c.el.Name.SetValue(rec.Name)
	c.el.Class.SetValue(rec.ClassName)
	c.el.Date.SetValue(rec.Date)

	c.el.SubmitButton.SetVisible(false)
	c.el.UpdateButton.SetVisible(true)
	c.el.Form.SetAction(UpdatePath(rec.ID))

	c.el.Viewport.ScrollTo(c.el.Form.OffsetTop()-c.scrollOffset, ScrollSmooth)
}

// SubmitUpdate posts the form to the update endpoint of the stored record.
// Without a stored record it does nothing.
func (c *Controller) SubmitUpdate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.el.RecordID.Value()
	if id == "" {
		return nil
	}
	c.el.Form.SetAction(UpdatePath(id))
	return c.submitLocked()
}

// HandleSubmit is the create control: a plain form submission to the current
// action. In Edit mode it behaves as SubmitUpdate.
func (c *Controller) HandleSubmit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id := c.el.RecordID.Value(); id != "" {
		c.el.Form.SetAction(UpdatePath(id))
	}
	return c.submitLocked()
}

func (c *Controller) submitLocked() error {
	if err := c.el.Form.Submit(); err != nil {
		c.logger.Error("form submission failed", zap.String("action", c.el.Form.Action()), zap.Error(err))
		return err
	}
	return nil
}

// RunSearch replaces the records region with the fragment for term.
func (c *Controller) RunSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchLocked(term)
}

// ShowAll empties the search box and loads every record.
func (c *Controller) ShowAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.el.SearchInput.SetValue("")
	c.searchLocked("")
}

// HandleSearchClick is the search control: it searches for the trimmed
// contents of the search box.
func (c *Controller) HandleSearchClick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchLocked(strings.TrimSpace(c.el.SearchInput.Value()))
}

// HandleSearchKey activates the search control on Enter.
func (c *Controller) HandleSearchKey(key string) {
	if key == "Enter" {
		c.HandleSearchClick()
	}
}

func (c *Controller) searchLocked(term string) {
	dispatch(c, &c.searches, "search records",
		func(ctx context.Context) (string, error) { return c.api.Search(ctx, term) },
		c.el.Records.SetContent,
		zap.String("term", term),
	)
}

// Wait blocks until every dispatched request has settled. It must not race
// with new dispatches.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Abandon drops every in-flight request without closing the controller.
// Their continuations settle without touching the page. A closed controller
// stays closed.
func (c *Controller) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx.Err() != nil {
		return
	}
	c.cancel()
	c.ctx, c.cancel = context.WithCancel(context.Background())
}

// Close abandons in-flight requests and waits for their goroutines.
// Continuations that settle after Close do not touch the page.
func (c *Controller) Close() {
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()
	c.wg.Wait()
}

// dispatch runs call on its own goroutine and applies the result under the
// controller lock. The caller holds c.mu.
func dispatch[T any](c *Controller, l *lane, op string, call func(context.Context) (T, error), apply func(T), fields ...zap.Field) {
	ctx := c.ctx
	if ctx.Err() != nil {
		return
	}
	l.issued++
	seq := l.issued

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		v, err := call(ctx)

		c.mu.Lock()
		changed := false
		switch {
		case ctx.Err() != nil:
		case err != nil:
			c.logger.Error(op+" failed", append(fields, zap.Uint64("seq", seq), zap.Error(err))...)
		case c.discardStale && seq < l.applied:
			c.logger.Debug(op+" response discarded as stale", append(fields, zap.Uint64("seq", seq), zap.Uint64("applied", l.applied))...)
		default:
			l.applied = seq
			apply(v)
			changed = true
		}
		c.mu.Unlock()

		if changed && c.notify != nil {
			c.notify()
		}
	}()
}
