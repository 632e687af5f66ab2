package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-tracker/internal/models"
)

const attendanceSchema = `CREATE TABLE IF NOT EXISTS attendance_records (
    id SERIAL PRIMARY KEY,
    student_id VARCHAR(50) NOT NULL,
    name VARCHAR(100) NOT NULL,
    class_name VARCHAR(50) NOT NULL,
    date VARCHAR(20) NOT NULL
)`

const attendanceColumns = "id, student_id, name, class_name, date"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// AttendanceRepository manages persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// EnsureSchema creates the records table when it is missing.
func (r *AttendanceRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, attendanceSchema); err != nil {
		return fmt.Errorf("ensure attendance schema: %w", err)
	}
	return nil
}

// List returns records newest first. A search term matches name, student id
// or date by substring.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	query := "SELECT " + attendanceColumns + " FROM attendance_records"
	var args []interface{}
	if filter.Search != "" {
		query += " WHERE name LIKE $1 OR student_id LIKE $1 OR date LIKE $1"
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
	}
	query += " ORDER BY id DESC"

	records := make([]models.AttendanceRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return records, nil
}

// FindByID fetches a record. It returns sql.ErrNoRows when absent.
func (r *AttendanceRepository) FindByID(ctx context.Context, id int64) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	query := "SELECT " + attendanceColumns + " FROM attendance_records WHERE id = $1"
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance record: %w", err)
	}
	return &record, nil
}

// Create inserts a record and stores the generated id on it.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.AttendanceRecord) error {
	query := `INSERT INTO attendance_records (student_id, name, class_name, date) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, record.StudentID, record.Name, record.ClassName, record.Date).Scan(&record.ID); err != nil {
		return fmt.Errorf("create attendance record: %w", err)
	}
	return nil
}

// Update overwrites every field of an existing record.
func (r *AttendanceRepository) Update(ctx context.Context, record *models.AttendanceRecord) error {
	query := `UPDATE attendance_records SET student_id = $1, name = $2, class_name = $3, date = $4 WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, record.StudentID, record.Name, record.ClassName, record.Date, record.ID)
	if err != nil {
		return fmt.Errorf("update attendance record: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a record.
func (r *AttendanceRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete attendance record: %w", err)
	}
	return expectAffected(res)
}

// Ping reports whether the database is reachable.
func (r *AttendanceRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
