package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-tracker/internal/models"
	"github.com/noah-isme/attendance-tracker/pkg/cache"
	appErrors "github.com/noah-isme/attendance-tracker/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	FindByID(ctx context.Context, id int64) (*models.AttendanceRecord, error)
	Create(ctx context.Context, record *models.AttendanceRecord) error
	Update(ctx context.Context, record *models.AttendanceRecord) error
	Delete(ctx context.Context, id int64) error
}

type recordCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// AttendanceRequest is the record form as posted.
type AttendanceRequest struct {
	StudentID string `form:"student_id" json:"student_id" validate:"required"`
	Name      string `form:"name" json:"name" validate:"required"`
	ClassName string `form:"class" json:"class_name" validate:"required"`
	Date      string `form:"date" json:"date" validate:"required"`
}

// AttendanceService handles attendance record use-cases.
type AttendanceService struct {
	repo      attendanceRepository
	cache     recordCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service. cache and metrics
// may be nil.
func NewAttendanceService(repo attendanceRepository, searchCache recordCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, cache: searchCache, metrics: metrics, validator: validate, logger: logger}
}

// List returns records newest first, filtered by the search term.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	key := cache.Key("search", filter.Search)
	if s.cache != nil {
		var cached []models.AttendanceRecord
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	start := time.Now()
	records, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("attendance_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance records")
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, records, 0)
	}
	return records, nil
}

// Get returns one record.
func (s *AttendanceService) Get(ctx context.Context, id int64) (*models.AttendanceRecord, error) {
	start := time.Now()
	record, err := s.repo.FindByID(ctx, id)
	s.metrics.ObserveDBQuery("attendance_get", time.Since(start))
	if err != nil {
		return nil, s.storageError(err, "failed to load attendance record")
	}
	return record, nil
}

// Create validates and stores a new record.
func (s *AttendanceService) Create(ctx context.Context, req AttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "all fields are required")
	}

	record := &models.AttendanceRecord{StudentID: req.StudentID, Name: req.Name, ClassName: req.ClassName, Date: req.Date}
	start := time.Now()
	err := s.repo.Create(ctx, record)
	s.metrics.ObserveDBQuery("attendance_create", time.Since(start))
	s.metrics.ObserveRecordWrite("create", err)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attendance record")
	}

	s.invalidate(ctx)
	s.logger.Info("attendance record created", zap.Int64("id", record.ID), zap.String("student_id", record.StudentID))
	return record, nil
}

// Update overwrites an existing record. A missing record is reported before
// the request is validated.
func (s *AttendanceService) Update(ctx context.Context, id int64, req AttendanceRequest) (*models.AttendanceRecord, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "all fields are required")
	}

	record := &models.AttendanceRecord{ID: id, StudentID: req.StudentID, Name: req.Name, ClassName: req.ClassName, Date: req.Date}
	start := time.Now()
	err := s.repo.Update(ctx, record)
	s.metrics.ObserveDBQuery("attendance_update", time.Since(start))
	s.metrics.ObserveRecordWrite("update", err)
	if err != nil {
		return nil, s.storageError(err, "failed to update attendance record")
	}

	s.invalidate(ctx)
	s.logger.Info("attendance record updated", zap.Int64("id", id))
	return record, nil
}

// Delete removes a record.
func (s *AttendanceService) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.repo.Delete(ctx, id)
	s.metrics.ObserveDBQuery("attendance_delete", time.Since(start))
	s.metrics.ObserveRecordWrite("delete", err)
	if err != nil {
		return s.storageError(err, "failed to delete attendance record")
	}

	s.invalidate(ctx)
	s.logger.Info("attendance record deleted", zap.Int64("id", id))
	return nil
}

func (s *AttendanceService) storageError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *AttendanceService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.Pattern()); err != nil {
		s.logger.Warn("search cache not invalidated", zap.Error(err))
	}
}
