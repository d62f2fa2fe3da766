package downloader

// EventType identifies a coordinator event
type EventType int

const (
	EventJobStarted EventType = iota
	EventProgress
	EventJobSucceeded
	EventJobFailed
)

// String returns the string representation of EventType
func (t EventType) String() string {
	switch t {
	case EventJobStarted:
		return "job_started"
	case EventProgress:
		return "progress"
	case EventJobSucceeded:
		return "job_succeeded"
	case EventJobFailed:
		return "job_failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the event ends a job
func (t EventType) IsTerminal() bool {
	return t == EventJobSucceeded || t == EventJobFailed
}

// Event is emitted to subscribers on the event loop. JobID is zero for a job the transport never created.
type Event struct {
	Type            EventType
	JobID           int64
	FileName        string
	Percent         int
	BytesDownloaded int64
	TotalBytes      int64
	Reason          string
}

// Subscriber receives coordinator events
type Subscriber func(Event)
