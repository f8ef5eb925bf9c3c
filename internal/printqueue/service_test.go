package printqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "dladmin/pkg/domain"
	dErrors "dladmin/pkg/domain-errors"
)

var now = time.Date(2026, time.October, 1, 12, 0, 0, 0, time.UTC)

type source struct {
	jobs []Job
	err  error
	got  id.LocationID
}

func (s *source) ListPrintJobs(_ context.Context, location id.LocationID) ([]Job, error) {
	s.got = location
	return s.jobs, s.err
}

func TestQueueOrdersByStatusThenAge(t *testing.T) {
	src := &source{jobs: []Job{
		{ID: "printed", Status: StatusPrinted, QueuedAt: now.Add(-5 * time.Hour)},
		{ID: "new", Status: StatusQueued, QueuedAt: now.Add(-time.Hour)},
		{ID: "failed", Status: StatusFailed, QueuedAt: now.Add(-3 * time.Hour)},
		{ID: "old", Status: StatusQueued, QueuedAt: now.Add(-2 * time.Hour)},
		{ID: "printing", Status: StatusPrinting, QueuedAt: now.Add(-4 * time.Hour)},
		{ID: "odd", Status: Status("lost"), QueuedAt: now.Add(-6 * time.Hour)},
	}}

	q, err := NewService(src).Queue(context.Background(), id.LocationID{}, now)
	require.NoError(t, err)

	var order []string
	for _, j := range q.Jobs {
		order = append(order, j.ID)
	}
	assert.Equal(t, []string{"old", "new", "printing", "printed", "failed", "odd"}, order)

	assert.Equal(t, 6, q.Summary.Total)
	assert.Equal(t, []StatusCount{
		{StatusQueued, 2}, {StatusPrinting, 1}, {StatusPrinted, 1}, {StatusFailed, 1},
	}, q.Summary.Counts)
	assert.Equal(t, 2*time.Hour, q.Summary.OldestQueuedAge)
}

func TestQueueEmpty(t *testing.T) {
	q, err := NewService(&source{}).Queue(context.Background(), id.LocationID{}, now)
	require.NoError(t, err)
	assert.NotNil(t, q.Jobs)
	assert.Zero(t, q.Summary.OldestQueuedAge)
	assert.Nil(t, q.Summary.OldestQueuedAt)
	assert.Len(t, q.Summary.Counts, len(Statuses))
}

func TestQueueSourceFailure(t *testing.T) {
	_, err := NewService(&source{err: errors.New("refused")}).Queue(context.Background(), id.LocationID{}, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}
