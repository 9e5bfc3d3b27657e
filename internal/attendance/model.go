package attendance

import "time"

// EntryType is the direction of an attendance record.
type EntryType string

const (
	EntryTypeEntry EntryType = "entry"
	EntryTypeExit  EntryType = "exit"
)

// Display returns the Turkish label shown to users.
func (t EntryType) Display() string {
	if t == EntryTypeEntry {
		return "Giriş"
	}
	return "Çıkış"
}

// Action returns the uppercase label used in SMS notifications.
func (t EntryType) Action() string {
	if t == EntryTypeEntry {
		return "GİRİŞ"
	}
	return "ÇIKIŞ"
}

// Presence labels derived from the most recent record.
const (
	StatusInside  = "içeride"
	StatusOutside = "dışarıda"
)

// Student is an active person tracked by the system, joined with its
// school and classroom names for display.
type Student struct {
	ID                string
	IDNumber          string
	FirstName         string
	LastName          string
	PhoneNumber       string
	SchoolID          string
	SchoolName        string
	ClassroomID       string
	ClassroomName     string
	ParentFirstName   string
	ParentLastName    string
	ParentPhoneNumber string
	IsActive          bool
	CreatedAt         time.Time
}

// FullName returns "First Last".
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// ParentFullName returns the guardian's "First Last".
func (s Student) ParentFullName() string {
	return s.ParentFirstName + " " + s.ParentLastName
}

// ClassroomDisplay returns the "School - Classroom" label used in payloads.
func (s Student) ClassroomDisplay() string {
	return s.SchoolName + " - " + s.ClassroomName
}

// Record is a single immutable entry/exit event. Toggling appends a new
// record; existing records are never updated or deleted.
type Record struct {
	ID         string
	StudentID  string
	EntryType  EntryType
	RecordedAt time.Time
	Date       time.Time
}

// ValidIDNumber reports whether s is an 11-digit national identifier.
func ValidIDNumber(s string) bool {
	if len(s) != 11 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
