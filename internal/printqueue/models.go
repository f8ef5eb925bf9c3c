package printqueue

import "time"

// Status is a print job state.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusPrinting Status = "printing"
	StatusPrinted  Status = "printed"
	StatusFailed   Status = "failed"
)

// Statuses lists job states in queue order.
var Statuses = []Status{StatusQueued, StatusPrinting, StatusPrinted, StatusFailed}

// Job is a licence card print job.
type Job struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	PersonName    string    `json:"person_name"`
	Category      string    `json:"category"`
	LocationID    string    `json:"location_id"`
	Status        Status    `json:"status"`
	QueuedAt      time.Time `json:"queued_at"`
	Error         string    `json:"error,omitempty"`
}
