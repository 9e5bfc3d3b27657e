// Package api exposes the attendance HTTP surface.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"yoklama/internal/attendance"
	"yoklama/internal/netgsm"
)

// AttendanceService is the slice of the attendance service the handlers use.
type AttendanceService interface {
	Lookup(ctx context.Context, idNumber string) (*attendance.Student, error)
	Toggle(ctx context.Context, student *attendance.Student) (attendance.Record, error)
	Status(ctx context.Context, student *attendance.Student) (attendance.Status, error)
}

// Notifier dispatches guardian and diagnostic SMS messages.
type Notifier interface {
	AttendanceChanged(ctx context.Context, student *attendance.Student, rec attendance.Record) netgsm.Result
	SendTest(ctx context.Context, phone string) netgsm.Result
}

// BalanceQuerier reads the SMS provider account balance.
type BalanceQuerier interface {
	QueryBalance(ctx context.Context) (netgsm.Balance, error)
}

// Server holds handler dependencies. Everything is injected so tests can
// substitute fakes.
type Server struct {
	att        AttendanceService
	notifier   Notifier
	balance    BalanceQuerier
	smsEnabled bool
	log        *slog.Logger
}

// NewServer wires the handler set.
func NewServer(att AttendanceService, notifier Notifier, balance BalanceQuerier, smsEnabled bool, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		att:        att,
		notifier:   notifier,
		balance:    balance,
		smsEnabled: smsEnabled,
		log:        logger.With("component", "api"),
	}
}

// Register attaches all routes to the router.
func (s *Server) Register(r gin.IRouter) {
	r.POST("/attendance-toggle", s.handleToggle)
	r.GET("/student-status/:id_number", s.handleStatus)
	r.POST("/test-sms", s.handleTestSMS)
	r.GET("/sms-balance", s.handleBalance)
}

func errorJSON(message string) gin.H {
	return gin.H{"status": "error", "message": message}
}

// studentJSON is the student summary embedded in responses.
func studentJSON(st *attendance.Student) gin.H {
	return gin.H{
		"id_number": st.IDNumber,
		"full_name": st.FullName(),
		"school":    st.SchoolName,
		"classroom": st.ClassroomDisplay(),
	}
}

// smsJSON reports the delivery sub-status. Delivery problems never change
// the HTTP outcome of the toggle; they only show up here.
type smsJSON struct {
	Attempted bool   `json:"attempted"`
	Delivered bool   `json:"delivered"`
	MessageID string `json:"message_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func (s *Server) handleToggle(c *gin.Context) {
	var req struct {
		IDNumber string `json:"id_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorJSON("Geçersiz JSON formatı"))
		return
	}
	if req.IDNumber == "" {
		c.JSON(http.StatusBadRequest, errorJSON("TC kimlik numarası gerekli"))
		return
	}
	if !attendance.ValidIDNumber(req.IDNumber) {
		c.JSON(http.StatusBadRequest, errorJSON("Geçersiz TC kimlik numarası formatı"))
		return
	}

	ctx := c.Request.Context()
	student, err := s.att.Lookup(ctx, req.IDNumber)
	if err != nil {
		if errors.Is(err, attendance.ErrStudentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":    "error",
				"message":   "Bu TC kimlik numarasına ait aktif öğrenci bulunamadı",
				"id_number": req.IDNumber,
			})
			return
		}
		s.log.Error("student lookup failed", "err", err)
		c.JSON(http.StatusInternalServerError, errorJSON("Sunucu hatası"))
		return
	}

	rec, err := s.att.Toggle(ctx, student)
	if err != nil {
		s.log.Error("toggle failed", "id_number", req.IDNumber, "err", err)
		c.JSON(http.StatusInternalServerError, errorJSON("Sunucu hatası"))
		return
	}
	toggleTotal.WithLabelValues(string(rec.EntryType)).Inc()

	currentStatus := attendance.StatusOutside
	if rec.EntryType == attendance.EntryTypeEntry {
		currentStatus = attendance.StatusInside
	}

	sms := smsJSON{}
	if s.smsEnabled {
		sms.Attempted = true
		result := s.notifier.AttendanceChanged(ctx, student, rec)
		if result.OK {
			sms.Delivered = true
			sms.MessageID = result.MessageID
			smsTotal.WithLabelValues("delivered").Inc()
		} else {
			sms.Detail = result.Reason
			smsTotal.WithLabelValues(string(result.Category)).Inc()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "İşlem başarılı! " + rec.EntryType.Display() + " kaydedildi.",
		"student": studentJSON(student),
		"attendance": gin.H{
			"entry_type":         rec.EntryType,
			"entry_type_display": rec.EntryType.Display(),
			"timestamp":          rec.RecordedAt.Format(time.RFC3339),
			"date":               rec.Date.Format("2006-01-02"),
			"current_status":     currentStatus,
		},
		"sms":          sms,
		"processed_at": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	idNumber := c.Param("id_number")
	if !attendance.ValidIDNumber(idNumber) {
		c.JSON(http.StatusBadRequest, errorJSON("Geçersiz TC kimlik numarası formatı"))
		return
	}

	ctx := c.Request.Context()
	student, err := s.att.Lookup(ctx, idNumber)
	if err != nil {
		if errors.Is(err, attendance.ErrStudentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":    "error",
				"message":   "Öğrenci bulunamadı",
				"id_number": idNumber,
			})
			return
		}
		s.log.Error("student lookup failed", "err", err)
		c.JSON(http.StatusInternalServerError, errorJSON("Sunucu hatası"))
		return
	}

	status, err := s.att.Status(ctx, student)
	if err != nil {
		s.log.Error("status query failed", "id_number", idNumber, "err", err)
		c.JSON(http.StatusInternalServerError, errorJSON("Sunucu hatası"))
		return
	}

	entries := make([]gin.H, 0, len(status.Today))
	for _, rec := range status.Today {
		entries = append(entries, gin.H{
			"entry_type":         rec.EntryType,
			"entry_type_display": rec.EntryType.Display(),
			"timestamp":          rec.RecordedAt.Format(time.RFC3339),
		})
	}

	var lastTime any
	if status.LastTime != nil {
		lastTime = status.LastTime.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":              "success",
		"student":             studentJSON(student),
		"current_status":      status.CurrentStatus,
		"last_action":         status.LastAction,
		"last_time":           lastTime,
		"entries_today":       entries,
		"entries_count_today": len(entries),
	})
}

func (s *Server) handleTestSMS(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorJSON("Geçersiz JSON formatı"))
		return
	}
	if req.PhoneNumber == "" {
		c.JSON(http.StatusBadRequest, errorJSON("Telefon numarası gerekli"))
		return
	}

	result := s.notifier.SendTest(c.Request.Context(), req.PhoneNumber)
	if !result.OK {
		c.JSON(http.StatusOK, gin.H{
			"status":  "error",
			"message": result.Reason,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"message":    "Test SMS gönderildi",
		"message_id": result.MessageID,
	})
}

func (s *Server) handleBalance(c *gin.Context) {
	bal, err := s.balance.QueryBalance(c.Request.Context())
	if err != nil {
		s.log.Error("balance query failed", "err", err)
		c.JSON(http.StatusInternalServerError, errorJSON("Bakiye sorgulanamadı"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"balance":  bal.Amount,
		"currency": bal.Currency,
	})
}
