// Package notify turns attendance records into guardian-facing SMS messages.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"yoklama/internal/attendance"
	"yoklama/internal/netgsm"
)

// orgHeader is the first line of every message. The template is fixed; it is
// not runtime configuration.
const orgHeader = "Başkent Psikoloji"

// Gateway delivers a message to a phone number. *netgsm.Client satisfies it.
type Gateway interface {
	Send(ctx context.Context, phone, message string) netgsm.Result
}

// Notifier formats and dispatches attendance notifications.
type Notifier struct {
	gw  Gateway
	log *slog.Logger
	now func() time.Time
}

// New creates a notifier on top of a gateway.
func New(gw Gateway, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{gw: gw, log: logger.With("component", "notify"), now: time.Now}
}

// AttendanceChanged notifies the student's guardian about a new record.
// When no guardian phone number is on file the gateway is not called at all.
// The gateway's result is propagated unchanged.
func (n *Notifier) AttendanceChanged(ctx context.Context, student *attendance.Student, rec attendance.Record) netgsm.Result {
	if student.ParentPhoneNumber == "" {
		n.log.Warn("no guardian phone on file", "student", student.FullName())
		return netgsm.Failure(netgsm.CategoryNoContact, "Veli telefon numarası bulunamadı")
	}

	result := n.gw.Send(ctx, student.ParentPhoneNumber, Message(student, rec))
	if result.OK {
		n.log.Info("attendance sms sent", "student", student.FullName(), "type", rec.EntryType)
	} else {
		n.log.Error("attendance sms failed", "student", student.FullName(), "reason", result.Reason)
	}
	return result
}

// Message renders the fixed notification template:
// organization header, student name, action with local date and time,
// school and classroom names.
func Message(student *attendance.Student, rec attendance.Record) string {
	return fmt.Sprintf("%s\n%s\n%s: %s %s\n%s\n%s",
		orgHeader,
		student.FullName(),
		rec.EntryType.Action(),
		rec.RecordedAt.Format("02.01.2006"),
		rec.RecordedAt.Format("15:04"),
		student.SchoolName,
		student.ClassroomName,
	)
}

// SendTest delivers a diagnostic message so operators can verify provider
// credentials end to end.
func (n *Notifier) SendTest(ctx context.Context, phone string) netgsm.Result {
	message := fmt.Sprintf("%s Test SMS\nTarih: %s\nSMS sistemi aktif!",
		orgHeader, n.now().Format("02.01.2006 15:04"))
	return n.gw.Send(ctx, phone, message)
}
