package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repository persists attendance data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const studentColumns = `
	s.id, s.id_number, s.first_name, s.last_name, s.phone_number,
	s.school_id, sc.name, s.classroom_id, c.name,
	s.parent_first_name, s.parent_last_name, s.parent_phone_number,
	s.is_active, s.created_at`

// FindActiveStudent looks up an active student by national identifier.
// Returns nil when no matching active student exists.
func (r *Repository) FindActiveStudent(ctx context.Context, idNumber string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+studentColumns+`
		FROM students s
		JOIN schools sc ON sc.id = s.school_id
		JOIN classrooms c ON c.id = s.classroom_id
		WHERE s.id_number = $1 AND s.is_active = TRUE
	`, idNumber)
	var st Student
	if err := row.Scan(
		&st.ID, &st.IDNumber, &st.FirstName, &st.LastName, &st.PhoneNumber,
		&st.SchoolID, &st.SchoolName, &st.ClassroomID, &st.ClassroomName,
		&st.ParentFirstName, &st.ParentLastName, &st.ParentPhoneNumber,
		&st.IsActive, &st.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// LastRecord returns the most recent record for a student, newest first by
// recorded_at. Returns nil when the student has no records.
func (r *Repository) LastRecord(ctx context.Context, studentID string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, student_id, entry_type, recorded_at, record_date
		FROM attendance_records
		WHERE student_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`, studentID)
	var rec Record
	if err := row.Scan(&rec.ID, &rec.StudentID, &rec.EntryType, &rec.RecordedAt, &rec.Date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// InsertRecord writes a new attendance record.
func (r *Repository) InsertRecord(ctx context.Context, rec Record) (Record, error) {
	// record_date goes over the wire as a plain date string; sending a
	// time.Time would let the session timezone shift the derived date.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, student_id, entry_type, recorded_at, record_date)
		VALUES ($1, $2, $3, $4, $5::date)
	`, rec.ID, rec.StudentID, rec.EntryType, rec.RecordedAt, rec.Date.Format("2006-01-02"))
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// RecordsForDate returns a student's records for one calendar date, newest first.
func (r *Repository) RecordsForDate(ctx context.Context, studentID string, date time.Time) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, entry_type, recorded_at, record_date
		FROM attendance_records
		WHERE student_id = $1 AND record_date = $2::date
		ORDER BY recorded_at DESC
	`, studentID, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.EntryType, &rec.RecordedAt, &rec.Date); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
