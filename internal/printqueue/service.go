package printqueue

import (
	"cmp"
	"context"
	"slices"
	"time"

	id "dladmin/pkg/domain"
	dErrors "dladmin/pkg/domain-errors"
)

// Source lists print jobs from the backend.
type Source interface {
	ListPrintJobs(ctx context.Context, location id.LocationID) ([]Job, error)
}

// StatusCount is the number of jobs in one state.
type StatusCount struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
}

// Summary aggregates the queue. Counts follow queue order.
type Summary struct {
	Total  int           `json:"total"`
	Counts []StatusCount `json:"counts"`
	// OldestQueuedAge is how long the oldest queued job has waited.
	OldestQueuedAge time.Duration `json:"oldest_queued_age_ns"`
	OldestQueuedAt  *time.Time    `json:"oldest_queued_at,omitempty"`
}

// Queue is the ordered job list with its summary.
type Queue struct {
	Jobs    []Job   `json:"jobs"`
	Summary Summary `json:"summary"`
}

type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// Queue fetches the jobs for location (all locations when nil) and orders
// them by state, then by queue time.
func (s *Service) Queue(ctx context.Context, location id.LocationID, now time.Time) (Queue, error) {
	jobs, err := s.source.ListPrintJobs(ctx, location)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			err = dErrors.Wrap(err, dErrors.CodeUnavailable, "print queue unavailable")
		}
		return Queue{}, err
	}
	jobs = slices.Clone(jobs)
	slices.SortStableFunc(jobs, func(a, b Job) int {
		return cmp.Or(
			cmp.Compare(rank(a.Status), rank(b.Status)),
			a.QueuedAt.Compare(b.QueuedAt),
		)
	})
	if jobs == nil {
		jobs = []Job{}
	}
	return Queue{Jobs: jobs, Summary: Summarize(jobs, now)}, nil
}

// Summarize counts jobs per status and finds the oldest queued job.
func Summarize(jobs []Job, now time.Time) Summary {
	sum := Summary{Total: len(jobs), Counts: make([]StatusCount, len(Statuses))}
	for i, st := range Statuses {
		sum.Counts[i].Status = st
	}
	for _, j := range jobs {
		if r := rank(j.Status); r < len(Statuses) {
			sum.Counts[r].Count++
		}
		if j.Status != StatusQueued || j.QueuedAt.IsZero() {
			continue
		}
		if sum.OldestQueuedAt == nil || j.QueuedAt.Before(*sum.OldestQueuedAt) {
			at := j.QueuedAt
			sum.OldestQueuedAt = &at
		}
	}
	if sum.OldestQueuedAt != nil {
		sum.OldestQueuedAge = max(now.Sub(*sum.OldestQueuedAt), 0)
	}
	return sum
}

// rank orders statuses; unknown ones sort last.
func rank(s Status) int {
	if i := slices.Index(Statuses, s); i >= 0 {
		return i
	}
	return len(Statuses)
}
