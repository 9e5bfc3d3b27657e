package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	students map[string]*Student
	records  []Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{students: make(map[string]*Student)}
}

func (f *fakeStore) FindActiveStudent(_ context.Context, idNumber string) (*Student, error) {
	st, ok := f.students[idNumber]
	if !ok || !st.IsActive {
		return nil, nil
	}
	return st, nil
}

func (f *fakeStore) LastRecord(_ context.Context, studentID string) (*Record, error) {
	var last *Record
	for i := range f.records {
		rec := f.records[i]
		if rec.StudentID != studentID {
			continue
		}
		if last == nil || rec.RecordedAt.After(last.RecordedAt) {
			last = &rec
		}
	}
	return last, nil
}

func (f *fakeStore) InsertRecord(_ context.Context, rec Record) (Record, error) {
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeStore) RecordsForDate(_ context.Context, studentID string, date time.Time) ([]Record, error) {
	var res []Record
	for i := len(f.records) - 1; i >= 0; i-- {
		rec := f.records[i]
		if rec.StudentID == studentID && sameDate(rec.Date, date) {
			res = append(res, rec)
		}
	}
	return res, nil
}

func testStudent() *Student {
	return &Student{
		ID:                "5f7a3d1c-0000-0000-0000-000000000001",
		IDNumber:          "25666680908",
		FirstName:         "Ayşe",
		LastName:          "Yılmaz",
		SchoolName:        "Atatürk İlkokulu",
		ClassroomName:     "3-A",
		ParentFirstName:   "Fatma",
		ParentLastName:    "Yılmaz",
		ParentPhoneNumber: "05551234567",
		IsActive:          true,
	}
}

func TestToggleFirstRecordIsEntry(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	student := testStudent()

	rec, err := svc.Toggle(context.Background(), student)
	require.NoError(t, err)
	assert.Equal(t, EntryTypeEntry, rec.EntryType)
	assert.Equal(t, student.ID, rec.StudentID)
	assert.NotEmpty(t, rec.ID)
}

func TestToggleAlternatesWithinDay(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	student := testStudent()

	base := time.Date(2025, 3, 10, 8, 30, 0, 0, time.Local)
	step := 0
	svc.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	want := []EntryType{EntryTypeEntry, EntryTypeExit, EntryTypeEntry, EntryTypeExit}
	for i, w := range want {
		rec, err := svc.Toggle(context.Background(), student)
		require.NoError(t, err)
		assert.Equalf(t, w, rec.EntryType, "toggle %d", i+1)
	}
}

func TestToggleIgnoresPreviousDay(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	student := testStudent()

	yesterday := time.Date(2025, 3, 9, 16, 0, 0, 0, time.Local)
	store.records = append(store.records, Record{
		ID:         "old",
		StudentID:  student.ID,
		EntryType:  EntryTypeEntry,
		RecordedAt: yesterday,
		Date:       dateOnly(yesterday),
	})

	svc.now = func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local) }

	rec, err := svc.Toggle(context.Background(), student)
	require.NoError(t, err)
	assert.Equal(t, EntryTypeEntry, rec.EntryType, "yesterday's open entry must not produce an exit")
}

func TestToggleAfterExitSameDay(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	student := testStudent()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	store.records = append(store.records, Record{
		ID:         "r1",
		StudentID:  student.ID,
		EntryType:  EntryTypeExit,
		RecordedAt: now.Add(-time.Hour),
		Date:       dateOnly(now),
	})
	svc.now = func() time.Time { return now }

	rec, err := svc.Toggle(context.Background(), student)
	require.NoError(t, err)
	assert.Equal(t, EntryTypeEntry, rec.EntryType)
}

func TestStatusNoRecords(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	st, err := svc.Status(context.Background(), testStudent())
	require.NoError(t, err)
	assert.Equal(t, StatusOutside, st.CurrentStatus)
	assert.Equal(t, "Henüz giriş yapılmamış", st.LastAction)
	assert.Nil(t, st.LastTime)
	assert.Empty(t, st.Today)
}

func TestStatusAfterEntry(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	student := testStudent()

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	_, err := svc.Toggle(context.Background(), student)
	require.NoError(t, err)

	st, err := svc.Status(context.Background(), student)
	require.NoError(t, err)
	assert.Equal(t, StatusInside, st.CurrentStatus)
	assert.Equal(t, "Giriş", st.LastAction)
	require.NotNil(t, st.LastTime)
	assert.Len(t, st.Today, 1)
}

func TestStatusOrdersTodayNewestFirst(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	student := testStudent()

	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local)
	step := 0
	svc.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	for i := 0; i < 3; i++ {
		_, err := svc.Toggle(context.Background(), student)
		require.NoError(t, err)
	}

	st, err := svc.Status(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, st.Today, 3)
	for i := 1; i < len(st.Today); i++ {
		assert.True(t, !st.Today[i-1].RecordedAt.Before(st.Today[i].RecordedAt), "records must be newest first")
	}
}

func TestLookupNotFound(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	_, err := svc.Lookup(context.Background(), "25666680908")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestLookupInactiveStudent(t *testing.T) {
	store := newFakeStore()
	student := testStudent()
	student.IsActive = false
	store.students[student.IDNumber] = student
	svc := NewService(store)

	_, err := svc.Lookup(context.Background(), student.IDNumber)
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestValidIDNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"25666680908", true},
		{"00000000000", true},
		{"abc12345678", false},
		{"123", false},
		{"", false},
		{"256666809081", false},
		{"2566668090 ", false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, ValidIDNumber(tt.in), "ValidIDNumber(%q)", tt.in)
	}
}

func TestEntryTypeLabels(t *testing.T) {
	assert.Equal(t, "Giriş", EntryTypeEntry.Display())
	assert.Equal(t, "Çıkış", EntryTypeExit.Display())
	assert.Equal(t, "GİRİŞ", EntryTypeEntry.Action())
	assert.Equal(t, "ÇIKIŞ", EntryTypeExit.Action())
}
