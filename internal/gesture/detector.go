// Package gesture detects the hidden rapid-press gesture on the Home button
package gesture

import "time"

// Defaults for the settings gesture
const (
	DefaultThreshold = 10
	DefaultInterval  = 500 * time.Millisecond
)

// Detector counts presses that arrive less than interval apart and fires when the run reaches
// threshold. It is not safe for concurrent use.
type Detector struct {
	threshold int
	interval  time.Duration

	count int
	last  time.Time
}

// NewDetector creates a detector. Non-positive arguments select the defaults.
func NewDetector(threshold int, interval time.Duration) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Detector{threshold: threshold, interval: interval}
}

// Record registers a press at now and reports whether it completes the gesture
func (d *Detector) Record(now time.Time) bool {
	if d.count > 0 && now.Sub(d.last) < d.interval {
		d.count++
	} else {
		d.count = 1
	}
	d.last = now

	if d.count >= d.threshold {
		d.count = 0
		return true
	}
	return false
}

// Reset forgets the current run
func (d *Detector) Reset() {
	d.count = 0
	d.last = time.Time{}
}
