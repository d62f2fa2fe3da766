package downloader

import (
	"context"
	"log/slog"
	"time"

	"webhost/pkg/models"
)

// DefaultPollInterval is the spacing between two status reads of the same job
const DefaultPollInterval = 200 * time.Millisecond

// Sample is the outcome of one status read
type Sample struct {
	Status *models.TransferStatus
	Err    error
}

// Poller samples the transport status of one job at a fixed interval
type Poller struct {
	transport Transport
	dispatch  Dispatcher
	interval  time.Duration
	logger    *slog.Logger
}

// NewPoller creates a poller that delivers samples through dispatch
func NewPoller(transport Transport, dispatch Dispatcher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		transport: transport,
		dispatch:  dispatch,
		interval:  interval,
		logger:    slog.Default(),
	}
}

// Start begins sampling jobID on a background goroutine. Every sample is handed to deliver on the
// dispatcher. Sampling ends after a terminal status has been read or once stop is called; a sample
// already posted but not yet run when stop is called is dropped.
func (p *Poller) Start(jobID int64, deliver func(Sample)) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	go p.run(ctx, jobID, deliver)
	return cancel
}

func (p *Poller) run(ctx context.Context, jobID int64, deliver func(Sample)) {
	// The first read happens immediately; later reads are scheduled only after the previous one returned
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Progress polling stopped", "job_id", jobID)
			return
		case <-timer.C:
		}

		status, err := p.transport.QueryStatus(ctx, jobID)
		if ctx.Err() != nil {
			return
		}

		sample := Sample{Status: status, Err: err}
		p.dispatch.Post(func() {
			if ctx.Err() != nil {
				return
			}
			deliver(sample)
		})

		if err == nil && status != nil && status.State.IsTerminal() {
			p.logger.Debug("Progress polling finished", "job_id", jobID, "state", status.State)
			return
		}

		timer.Reset(p.interval)
	}
}
