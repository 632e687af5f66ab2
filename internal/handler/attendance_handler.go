package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-tracker/internal/models"
	"github.com/noah-isme/attendance-tracker/internal/service"
	appErrors "github.com/noah-isme/attendance-tracker/pkg/errors"
	"github.com/noah-isme/attendance-tracker/pkg/export"
	"github.com/noah-isme/attendance-tracker/pkg/response"
)

const (
	msgRequired = "All fields are required!"
	msgAdded    = "Record added successfully!"
	msgUpdated  = "Record updated successfully!"
	msgDeleted  = "Record deleted successfully!"
)

type attendanceService interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	Get(ctx context.Context, id int64) (*models.AttendanceRecord, error)
	Create(ctx context.Context, req service.AttendanceRequest) (*models.AttendanceRecord, error)
	Update(ctx context.Context, id int64, req service.AttendanceRequest) (*models.AttendanceRecord, error)
	Delete(ctx context.Context, id int64) error
}

type exportService interface {
	Export(ctx context.Context, filter models.AttendanceFilter, format export.Format) (*service.ExportFile, error)
}

// AttendanceHandler serves the attendance page, its form posts, the search
// fragment and the record API.
type AttendanceHandler struct {
	records attendanceService
	exports exportService
	logger  *zap.Logger
	now     func() time.Time
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(records attendanceService, exports exportService, logger *zap.Logger) *AttendanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceHandler{records: records, exports: exports, logger: logger, now: time.Now}
}

type formView struct {
	ID        string
	StudentID string
	Name      string
	ClassName string
	Date      string
}

type pageView struct {
	Flash   *flashMessage
	Form    formView
	Editing bool
	Action  string
	Search  string
	Classes []string
	Records []models.AttendanceRecord
}

// Index renders the page. ?edit={id} opens the form in Edit mode and
// ?search= narrows the table, so the page works without a script.
func (h *AttendanceHandler) Index(c *gin.Context) {
	view := pageView{
		Flash:   popFlash(c),
		Action:  "/add",
		Search:  c.Query("search"),
		Classes: models.ClassOptions,
		Form:    formView{Date: h.now().Format("2006-01-02")},
	}

	records, err := h.records.List(c.Request.Context(), models.AttendanceFilter{Search: view.Search})
	if err != nil {
		response.Error(c, err)
		return
	}
	view.Records = records

	if raw := c.Query("edit"); raw != "" {
		if id, ok := parseID(raw); ok {
			if record, err := h.records.Get(c.Request.Context(), id); err == nil {
				view.Editing = true
				view.Action = "/update/" + record.IDString()
				view.Form = formView{
					ID:        record.IDString(),
					StudentID: record.StudentID,
					Name:      record.Name,
					ClassName: record.ClassName,
					Date:      record.Date,
				}
			}
		}
	}

	response.HTML(c, http.StatusOK, "index.html", view)
}

// Create godoc
// @Summary Add an attendance record
// @Tags Attendance
// @Accept x-www-form-urlencoded
// @Param student_id formData string true "Student ID"
// @Param name formData string true "Student name"
// @Param class formData string true "Class"
// @Param date formData string true "Date (YYYY-MM-DD)"
// @Success 302
// @Router /add [post]
func (h *AttendanceHandler) Create(c *gin.Context) {
	var req service.AttendanceRequest
	if err := c.ShouldBind(&req); err != nil {
		h.redirect(c, flashDanger, msgRequired)
		return
	}

	if _, err := h.records.Create(c.Request.Context(), req); err != nil {
		if appErrors.Is(err, appErrors.ErrValidation) {
			h.redirect(c, flashDanger, msgRequired)
			return
		}
		response.Error(c, err)
		return
	}
	h.redirect(c, flashSuccess, msgAdded)
}

// Update godoc
// @Summary Update an attendance record
// @Tags Attendance
// @Accept x-www-form-urlencoded
// @Param id path int true "Record ID"
// @Param student_id formData string true "Student ID"
// @Param name formData string true "Student name"
// @Param class formData string true "Class"
// @Param date formData string true "Date (YYYY-MM-DD)"
// @Success 302
// @Failure 404 {object} response.Envelope
// @Router /update/{id} [post]
func (h *AttendanceHandler) Update(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found"))
		return
	}

	var req service.AttendanceRequest
	if err := c.ShouldBind(&req); err != nil {
		h.redirect(c, flashDanger, msgRequired)
		return
	}

	if _, err := h.records.Update(c.Request.Context(), id, req); err != nil {
		if appErrors.Is(err, appErrors.ErrValidation) {
			h.redirect(c, flashDanger, msgRequired)
			return
		}
		response.Error(c, err)
		return
	}
	h.redirect(c, flashSuccess, msgUpdated)
}

// Delete godoc
// @Summary Delete an attendance record
// @Tags Attendance
// @Param id path int true "Record ID"
// @Success 302
// @Failure 404 {object} response.Envelope
// @Router /delete/{id} [get]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found"))
		return
	}
	if err := h.records.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	h.redirect(c, flashSuccess, msgDeleted)
}

// Search godoc
// @Summary Records table fragment
// @Tags Attendance
// @Produce html
// @Param search query string false "Substring of name, student ID or date"
// @Success 200 {string} string "HTML fragment"
// @Router /search [get]
func (h *AttendanceHandler) Search(c *gin.Context) {
	records, err := h.records.List(c.Request.Context(), models.AttendanceFilter{Search: c.Query("search")})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.HTML(c, http.StatusOK, "records.html", pageView{Records: records})
}

// Record godoc
// @Summary Get one attendance record
// @Tags Attendance
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} models.AttendanceRecord
// @Failure 404 {object} response.Envelope
// @Router /api/record/{id} [get]
func (h *AttendanceHandler) Record(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found"))
		return
	}
	record, err := h.records.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Export godoc
// @Summary Download records
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param search query string false "Substring of name, student ID or date"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export is not available"))
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	file, err := h.exports.Export(c.Request.Context(), models.AttendanceFilter{Search: c.Query("search")}, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func (h *AttendanceHandler) redirect(c *gin.Context, category, message string) {
	setFlash(c, category, message)
	c.Redirect(http.StatusFound, "/")
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
