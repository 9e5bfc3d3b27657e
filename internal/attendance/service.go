package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrStudentNotFound is returned when no active student matches an identifier.
var ErrStudentNotFound = errors.New("active student not found")

// Store is the persistence surface the service needs. *Repository satisfies
// it; tests substitute a fake.
type Store interface {
	FindActiveStudent(ctx context.Context, idNumber string) (*Student, error)
	LastRecord(ctx context.Context, studentID string) (*Record, error)
	InsertRecord(ctx context.Context, rec Record) (Record, error)
	RecordsForDate(ctx context.Context, studentID string, date time.Time) ([]Record, error)
}

// Service implements the entry/exit toggle and status queries.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Lookup finds an active student by identifier, or ErrStudentNotFound.
func (s *Service) Lookup(ctx context.Context, idNumber string) (*Student, error) {
	st, err := s.store.FindActiveStudent(ctx, idNumber)
	if err != nil {
		return nil, fmt.Errorf("student lookup: %w", err)
	}
	if st == nil {
		return nil, ErrStudentNotFound
	}
	return st, nil
}

// Toggle flips the student's state for today and appends the new record.
//
// The new record is an entry unless the most recent record exists, is from
// today, and is itself an entry. A record from a previous day never carries
// over: the first toggle of a day is always an entry.
//
// There is a window between reading the last record and inserting the new
// one; two simultaneous toggles for the same student can both observe the
// same last record. The store does not serialize this.
func (s *Service) Toggle(ctx context.Context, student *Student) (Record, error) {
	last, err := s.store.LastRecord(ctx, student.ID)
	if err != nil {
		return Record{}, fmt.Errorf("last record: %w", err)
	}

	now := s.now()
	today := dateOnly(now)

	entryType := EntryTypeEntry
	if last != nil && sameDate(last.Date, today) && last.EntryType == EntryTypeEntry {
		entryType = EntryTypeExit
	}

	rec := Record{
		ID:         uuid.NewString(),
		StudentID:  student.ID,
		EntryType:  entryType,
		RecordedAt: now,
		Date:       today,
	}
	inserted, err := s.store.InsertRecord(ctx, rec)
	if err != nil {
		return Record{}, fmt.Errorf("insert record: %w", err)
	}
	return inserted, nil
}

// Status describes a student's current presence.
type Status struct {
	CurrentStatus string
	LastAction    string
	LastTime      *time.Time
	Today         []Record
}

// Status derives the student's presence from the most recent record and
// collects today's history, newest first.
func (s *Service) Status(ctx context.Context, student *Student) (Status, error) {
	last, err := s.store.LastRecord(ctx, student.ID)
	if err != nil {
		return Status{}, fmt.Errorf("last record: %w", err)
	}

	st := Status{CurrentStatus: StatusOutside, LastAction: "Henüz giriş yapılmamış"}
	if last != nil {
		if last.EntryType == EntryTypeEntry {
			st.CurrentStatus = StatusInside
		}
		st.LastAction = last.EntryType.Display()
		t := last.RecordedAt
		st.LastTime = &t
	}

	today, err := s.store.RecordsForDate(ctx, student.ID, dateOnly(s.now()))
	if err != nil {
		return Status{}, fmt.Errorf("today's records: %w", err)
	}
	st.Today = today
	return st, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
