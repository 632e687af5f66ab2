package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-tracker/internal/models"
	appErrors "github.com/noah-isme/attendance-tracker/pkg/errors"
	"github.com/noah-isme/attendance-tracker/pkg/export"
)

var exportHeaders = []string{"ID", "Student ID", "Name", "Class", "Date"}

type recordLister interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the record list as CSV or PDF.
type ExportService struct {
	records recordLister
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(records recordLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{records: records, logger: logger, now: time.Now}
}

// Export renders the records matching filter in format.
func (s *ExportService) Export(ctx context.Context, filter models.AttendanceFilter, format export.Format) (*ExportFile, error) {
	records, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	exporter := export.For(format)
	body, err := exporter.Render(buildDataset(records), "Attendance Records")
	if err != nil {
		s.logger.Error("render export", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("attendance-%s.%s", s.now().Format("20060102"), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}

func buildDataset(records []models.AttendanceRecord) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]string{
			"ID":         r.IDString(),
			"Student ID": r.StudentID,
			"Name":       r.Name,
			"Class":      r.ClassName,
			"Date":       r.Date,
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}
