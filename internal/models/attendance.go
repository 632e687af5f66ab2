package models

import "strconv"

// AttendanceRecord is one attendance entry as stored and served.
type AttendanceRecord struct {
	ID        int64  `db:"id" json:"id"`
	StudentID string `db:"student_id" json:"student_id"`
	Name      string `db:"name" json:"name"`
	ClassName string `db:"class_name" json:"class_name"`
	Date      string `db:"date" json:"date"`
}

// IDString renders the identifier the way it appears in URLs.
func (r AttendanceRecord) IDString() string {
	return strconv.FormatInt(r.ID, 10)
}

// AttendanceFilter narrows the record list. An empty Search lists everything.
type AttendanceFilter struct {
	Search string
}

// ClassOptions are the classes offered by the record form.
var ClassOptions = []string{"Class 1", "Class 2", "Class 3", "Class 4", "Class 5"}
