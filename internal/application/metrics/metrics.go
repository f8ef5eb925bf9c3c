package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for application submission.
type Metrics struct {
	Submissions        *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram
	AttachmentFailures *prometheus.CounterVec
}

// New registers the submission metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dladmin_application_submissions_total",
			Help: "Application submissions by type and result",
		}, []string{"type", "result"}), // result: "created", "rejected"
		SubmissionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "dladmin_application_submission_duration_seconds",
			Help:    "Time from submission start to backend response",
			Buckets: prometheus.DefBuckets,
		}),
		AttachmentFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dladmin_application_attachment_failures_total",
			Help: "Post-submission attachment uploads that failed",
		}, []string{"kind"}),
	}
}

func (m *Metrics) IncSubmission(appType, result string) {
	if m != nil {
		m.Submissions.WithLabelValues(appType, result).Inc()
	}
}

func (m *Metrics) ObserveSubmissionDuration(seconds float64) {
	if m != nil {
		m.SubmissionDuration.Observe(seconds)
	}
}

func (m *Metrics) IncAttachmentFailure(kind string) {
	if m != nil {
		m.AttachmentFailures.WithLabelValues(kind).Inc()
	}
}
