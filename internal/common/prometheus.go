package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	PartyLockTotal             = "party_lock_total"
	MailSentTotal              = "mail_sent_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"route", "status_code"}),
		PartyLockTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: PartyLockTotal,
			Help: "Count of lock transitions by result",
		}, []string{"result"}),
		MailSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MailSentTotal,
			Help: "Count of mails handed to the delivery infrastructure",
		}, []string{"kind", "result"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"route", "status_code"}),
	}
)

func IncLockCounter(result string) {
	PromCounters[PartyLockTotal].WithLabelValues(result).Inc()
}

func IncMailCounter(kind, result string) {
	PromCounters[MailSentTotal].WithLabelValues(kind, result).Inc()
}
