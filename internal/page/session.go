package page

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-tracker/internal/controller"
)

// Session hosts one attendance page: the document, the controller driving it
// and the navigator that carries its form posts and links.
type Session struct {
	Doc  *Document
	Ctrl *controller.Controller
	nav  *Navigator

	logger *zap.Logger
	notify func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Open loads the page at baseURL and binds a controller to it.
func Open(ctx context.Context, baseURL string, opts controller.Options) (*Session, error) {
	nav, err := NewNavigator(baseURL)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	doc := NewDocument(DefaultFormOffset)
	ctrl, err := controller.New(doc.Elements(), controller.NewClient(baseURL, nav.HTTP), opts)
	if err != nil {
		return nil, err
	}

	sessionCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		Doc:    doc,
		Ctrl:   ctrl,
		nav:    nav,
		logger: logger,
		notify: opts.Notify,
		ctx:    sessionCtx,
		cancel: cancel,
	}
	doc.OnSubmit(s.navigate)

	loaded, err := nav.Load(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("load page: %w", err)
	}
	s.reload(loaded)
	return s, nil
}

// navigate runs a form post off the controller's lock.
func (s *Session) navigate(sub Submission) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		loaded, err := s.nav.Submit(s.ctx, sub)
		if err != nil {
			s.fail("form submission", sub.Action, err)
			return
		}
		s.reload(loaded)
	}()
}

// Delete follows a row's delete link.
func (s *Session) Delete(row Row) error {
	href, ok := row.DeleteHref()
	if !ok {
		return fmt.Errorf("row has no delete action")
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		loaded, err := s.nav.Follow(s.ctx, href)
		if err != nil {
			s.fail("delete", href, err)
			return
		}
		s.reload(loaded)
	}()
	return nil
}

// reload shows a freshly loaded page, which always starts in Create mode.
// Requests issued against the previous page are dropped first.
func (s *Session) reload(loaded Loaded) {
	s.Ctrl.Abandon()
	s.Doc.SetFlash(loaded.Flash)
	s.Doc.SetContent(loaded.Records)
	s.Doc.SetValue(FieldSearch, "")
	s.Ctrl.Init()
	s.changed()
}

func (s *Session) fail(op, target string, err error) {
	if s.ctx.Err() != nil {
		return
	}
	s.logger.Error(op+" failed", zap.String("target", target), zap.Error(err))
	s.Doc.SetFlash(&Flash{Category: "danger", Message: "Request failed: " + err.Error()})
	s.changed()
}

func (s *Session) changed() {
	if s.notify != nil {
		s.notify()
	}
}

// Wait blocks until every request started so far has settled.
func (s *Session) Wait() {
	s.wg.Wait()
	s.Ctrl.Wait()
}

// Close abandons in-flight navigations and requests.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
	s.Ctrl.Close()
}
