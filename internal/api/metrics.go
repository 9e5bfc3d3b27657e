package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toggleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yoklama_toggles_total",
		Help: "Attendance toggles recorded, by resulting entry type.",
	}, []string{"entry_type"})

	smsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yoklama_sms_sends_total",
		Help: "SMS delivery attempts, by outcome.",
	}, []string{"result"})
)
