package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-tracker/internal/models"
	"github.com/noah-isme/attendance-tracker/internal/service"
	appErrors "github.com/noah-isme/attendance-tracker/pkg/errors"
	"github.com/noah-isme/attendance-tracker/pkg/export"
	"github.com/noah-isme/attendance-tracker/web"
)

type fakeAttendanceSrv struct {
	mu      sync.Mutex
	records []models.AttendanceRecord
	nextID  int64
	listErr error
	filters []models.AttendanceFilter
}

func newFakeAttendanceSrv(records ...models.AttendanceRecord) *fakeAttendanceSrv {
	return &fakeAttendanceSrv{records: records, nextID: int64(len(records) + 1)}
}

func (f *fakeAttendanceSrv) List(_ context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.AttendanceRecord, 0, len(f.records))
	for i := len(f.records) - 1; i >= 0; i-- {
		rec := f.records[i]
		if filter.Search == "" || strings.Contains(rec.Name, filter.Search) || strings.Contains(rec.StudentID, filter.Search) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeAttendanceSrv) Get(_ context.Context, id int64) (*models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ID == id {
			copied := rec
			return &copied, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
}

func complete(req service.AttendanceRequest) bool {
	return req.StudentID != "" && req.Name != "" && req.ClassName != "" && req.Date != ""
}

func (f *fakeAttendanceSrv) Create(_ context.Context, req service.AttendanceRequest) (*models.AttendanceRecord, error) {
	if !complete(req) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "all fields are required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := models.AttendanceRecord{ID: f.nextID, StudentID: req.StudentID, Name: req.Name, ClassName: req.ClassName, Date: req.Date}
	f.nextID++
	f.records = append(f.records, rec)
	return &rec, nil
}

func (f *fakeAttendanceSrv) Update(ctx context.Context, id int64, req service.AttendanceRequest) (*models.AttendanceRecord, error) {
	if _, err := f.Get(ctx, id); err != nil {
		return nil, err
	}
	if !complete(req) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "all fields are required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i] = models.AttendanceRecord{ID: id, StudentID: req.StudentID, Name: req.Name, ClassName: req.ClassName, Date: req.Date}
			return &f.records[i], nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (f *fakeAttendanceSrv) Delete(ctx context.Context, id int64) error {
	if _, err := f.Get(ctx, id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0]
	for _, rec := range f.records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	f.records = kept
	return nil
}

type fakeExportSrv struct {
	format export.Format
	filter models.AttendanceFilter
	err    error
}

func (f *fakeExportSrv) Export(_ context.Context, filter models.AttendanceFilter, format export.Format) (*service.ExportFile, error) {
	f.format = format
	f.filter = filter
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportFile{Filename: "attendance-20240301." + string(format), ContentType: "text/csv", Body: []byte("ID,Name\n")}, nil
}

func seedRecords() []models.AttendanceRecord {
	return []models.AttendanceRecord{
		{ID: 1, StudentID: "S-1", Name: "Ali", ClassName: "Class 1", Date: "2024-03-01"},
		{ID: 2, StudentID: "S-2", Name: "Budi", ClassName: "Class 2", Date: "2024-03-02"},
	}
}

func newTestRouter(t *testing.T, records *fakeAttendanceSrv, exports exportService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tmpl, err := web.Templates()
	require.NoError(t, err)

	h := NewAttendanceHandler(records, exports, nil)
	h.now = func() time.Time { return time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC) }
	return NewRouter(RouterDeps{
		Attendance: h,
		Metrics:    NewMetricsHandler(nil, nil),
		Templates:  tmpl,
	})
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validForm() url.Values {
	return url.Values{"student_id": {"S-3"}, "name": {"Citra"}, "class": {"Class 3"}, "date": {"2024-03-03"}}
}

// followFlash replays the flash cookie set by a redirect onto the index page.
func followFlash(t *testing.T, r http.Handler, redirect *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusFound, redirect.Code)
	assert.Equal(t, "/", redirect.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range redirect.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := serve(r, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestIndexRendersCreateMode(t *testing.T) {
	r := newTestRouter(t, newFakeAttendanceSrv(seedRecords()...), nil)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="attendanceForm" method="POST" action="/add"`)
	assert.Contains(t, body, `value="2024-04-02"`)
	assert.Contains(t, body, `id="recordsContainer"`)
	assert.Less(t, strings.Index(body, "Budi"), strings.Index(body, "Ali"))
	assert.Contains(t, body, `class="btn btn-sm btn-warning edit-btn" data-id="1"`)
	assert.NotContains(t, body, "alert-")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestIndexEditModePrefillsForm(t *testing.T) {
	r := newTestRouter(t, newFakeAttendanceSrv(seedRecords()...), nil)

	body := serve(r, httptest.NewRequest(http.MethodGet, "/?edit=2", nil)).Body.String()

	assert.Contains(t, body, `action="/update/2"`)
	assert.Contains(t, body, `id="recordId" name="id" value="2"`)
	assert.Contains(t, body, `value="Budi"`)
	assert.Contains(t, body, `<option value="Class 2" selected>`)
	assert.Contains(t, body, `id="submitBtn" class="btn btn-primary" style="display: none;"`)
}

func TestIndexUnknownEditFallsBackToCreate(t *testing.T) {
	r := newTestRouter(t, newFakeAttendanceSrv(seedRecords()...), nil)

	for _, target := range []string{"/?edit=99", "/?edit=abc"} {
		body := serve(r, httptest.NewRequest(http.MethodGet, target, nil)).Body.String()
		assert.Contains(t, body, `action="/add"`, target)
	}
}

func TestIndexListFailure(t *testing.T) {
	srv := newFakeAttendanceSrv()
	srv.listErr = errors.New("db down")
	r := newTestRouter(t, srv, nil)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCreateRedirectsWithFlash(t *testing.T) {
	srv := newFakeAttendanceSrv(seedRecords()...)
	r := newTestRouter(t, srv, nil)

	body := followFlash(t, r, serve(r, postForm("/add", validForm())))

	assert.Contains(t, body, `alert alert-success`)
	assert.Contains(t, body, "Record added successfully!")
	assert.Contains(t, body, "Citra")
	assert.Len(t, srv.records, 3)
}

func TestCreateMissingFieldFlashesDanger(t *testing.T) {
	srv := newFakeAttendanceSrv(seedRecords()...)
	r := newTestRouter(t, srv, nil)

	form := validForm()
	form.Set("name", "")
	body := followFlash(t, r, serve(r, postForm("/add", form)))

	assert.Contains(t, body, `alert alert-danger`)
	assert.Contains(t, body, "All fields are required!")
	assert.Len(t, srv.records, 2)
}

func TestFlashIsShownOnce(t *testing.T) {
	r := newTestRouter(t, newFakeAttendanceSrv(), nil)
	redirect := serve(r, postForm("/add", validForm()))
	followFlash(t, r, redirect)

	var cleared bool
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range redirect.Result().Cookies() {
		req.AddCookie(c)
	}
	for _, c := range serve(r, req).Result().Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestUpdateFlows(t *testing.T) {
	srv := newFakeAttendanceSrv(seedRecords()...)
	r := newTestRouter(t, srv, nil)

	body := followFlash(t, r, serve(r, postForm("/update/1", validForm())))
	assert.Contains(t, body, "Record updated successfully!")
	rec, err := srv.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Citra", rec.Name)

	form := validForm()
	form.Del("date")
	body = followFlash(t, r, serve(r, postForm("/update/1", form)))
	assert.Contains(t, body, "All fields are required!")

	assert.Equal(t, http.StatusNotFound, serve(r, postForm("/update/99", validForm())).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, postForm("/update/x", validForm())).Code)
}

func TestDeleteRedirects(t *testing.T) {
	srv := newFakeAttendanceSrv(seedRecords()...)
	r := newTestRouter(t, srv, nil)

	body := followFlash(t, r, serve(r, httptest.NewRequest(http.MethodGet, "/delete/1", nil)))

	assert.Contains(t, body, "Record deleted successfully!")
	assert.Len(t, srv.records, 1)
	assert.Equal(t, http.StatusNotFound, serve(r, httptest.NewRequest(http.MethodGet, "/delete/1", nil)).Code)
}

func TestSearchRendersFragment(t *testing.T) {
	srv := newFakeAttendanceSrv(seedRecords()...)
	r := newTestRouter(t, srv, nil)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/search?search=Bu", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<table"))
	assert.Contains(t, body, "Budi")
	assert.NotContains(t, body, "Ali")
	assert.NotContains(t, body, "<html")
	assert.Equal(t, "Bu", srv.filters[len(srv.filters)-1].Search)

	body = serve(r, httptest.NewRequest(http.MethodGet, "/search?search=zzz", nil)).Body.String()
	assert.Contains(t, body, "No records found.")
}

func TestRecordReturnsFlatJSON(t *testing.T) {
	r := newTestRouter(t, newFakeAttendanceSrv(seedRecords()...), nil)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/record/2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, float64(2), payload["id"])
	assert.Equal(t, "S-2", payload["student_id"])
	assert.Equal(t, "Budi", payload["name"])
	assert.Equal(t, "Class 2", payload["class_name"])
	assert.Equal(t, "2024-03-02", payload["date"])

	missing := serve(r, httptest.NewRequest(http.MethodGet, "/api/record/42", nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Contains(t, missing.Body.String(), "NOT_FOUND")
}

func TestExport(t *testing.T) {
	exports := &fakeExportSrv{}
	r := newTestRouter(t, newFakeAttendanceSrv(), exports)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/export?format=pdf&search=Ali", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.FormatPDF, exports.format)
	assert.Equal(t, "Ali", exports.filter.Search)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="attendance-20240301.pdf"`)

	assert.Equal(t, http.StatusBadRequest, serve(r, httptest.NewRequest(http.MethodGet, "/export?format=xml", nil)).Code)
}

func TestExportUnavailable(t *testing.T) {
	r := newTestRouter(t, newFakeAttendanceSrv(), nil)

	assert.Equal(t, http.StatusNotFound, serve(r, httptest.NewRequest(http.MethodGet, "/export", nil)).Code)
}
