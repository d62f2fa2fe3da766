// Package overlay computes the state of the download progress overlay from coordinator events.
//
// The machine is rendering-agnostic: it publishes a View on every change and expects the renderer
// to report when enter and exit animations finish. Animations also complete on their own after
// their configured duration, so the overlay always reaches Hidden even without a renderer.
// A Machine is confined to the event loop.
package overlay

import (
	"fmt"
	"log/slog"
	"time"

	"webhost/internal/downloader"

	"github.com/dustin/go-humanize"
)

// State of the overlay
type State int

const (
	Hidden State = iota
	Entering
	Visible
	Exiting
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Entering:
		return "entering"
	case Visible:
		return "visible"
	case Exiting:
		return "exiting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ParseState is the inverse of String
func ParseState(s string) (State, bool) {
	for _, state := range []State{Hidden, Entering, Visible, Exiting} {
		if state.String() == s {
			return state, true
		}
	}
	return Hidden, false
}

// Display messages
const (
	MessagePreparing = "Preparing download..."
	MessageComplete  = "Download complete"
	MessageFailed    = "Download failed"
)

// Default timings
const (
	DefaultHold          = 2 * time.Second
	DefaultEnterDuration = 300 * time.Millisecond
	DefaultExitDuration  = 200 * time.Millisecond
)

// View is everything a renderer needs to draw the overlay
type View struct {
	State      State  `json:"-"`
	StateName  string `json:"state"`
	JobID      int64  `json:"job_id"`
	FileName   string `json:"file_name"`
	Percent    int    `json:"percent"`
	Downloaded string `json:"downloaded"`
	Total      string `json:"total"`
	Message    string `json:"message"`
	Terminal   bool   `json:"terminal"`
	Succeeded  bool   `json:"succeeded"`
}

// Scheduler runs fn on the event loop after d. The returned function cancels it if it has not
// fired yet.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func())
}

// Dispatcher posts work onto the event loop
type Dispatcher interface {
	Post(fn func())
}

type dispatchScheduler struct {
	dispatch Dispatcher
}

// NewScheduler returns a Scheduler whose callbacks are posted to dispatch
func NewScheduler(dispatch Dispatcher) Scheduler {
	return dispatchScheduler{dispatch: dispatch}
}

func (s dispatchScheduler) AfterFunc(d time.Duration, fn func()) func() {
	timer := time.AfterFunc(d, func() { s.dispatch.Post(fn) })
	return func() { timer.Stop() }
}

// Timings configures the hold and animation durations
type Timings struct {
	Hold  time.Duration
	Enter time.Duration
	Exit  time.Duration
}

// DefaultTimings returns the standard overlay timings
func DefaultTimings() Timings {
	return Timings{Hold: DefaultHold, Enter: DefaultEnterDuration, Exit: DefaultExitDuration}
}

// Machine is the overlay state machine
type Machine struct {
	scheduler Scheduler
	timings   Timings
	logger    *slog.Logger
	listeners []func(View)

	view View

	// Work that arrived while a transition was in progress
	pendingStart     *downloader.Event
	deferredTerminal *downloader.Event
	deferredDismiss  bool

	holdToken uint64
	stopHold  func()
	animToken uint64
	stopAnim  func()
}

// NewMachine creates a hidden overlay
func NewMachine(scheduler Scheduler, timings Timings) *Machine {
	m := &Machine{
		scheduler: scheduler,
		timings:   timings,
		logger:    slog.Default(),
	}
	m.view = hiddenView()
	return m
}

func hiddenView() View {
	return View{State: Hidden, StateName: Hidden.String()}
}

// OnChange registers fn to receive every published view
func (m *Machine) OnChange(fn func(View)) {
	m.listeners = append(m.listeners, fn)
}

// State returns the current state
func (m *Machine) State() State {
	return m.view.State
}

// View returns the current view
func (m *Machine) View() View {
	return m.view
}

// Handle applies a coordinator event. It has the downloader.Subscriber signature.
func (m *Machine) Handle(e downloader.Event) {
	switch e.Type {
	case downloader.EventJobStarted:
		m.handleStart(e)
	case downloader.EventProgress:
		m.handleProgress(e)
	case downloader.EventJobSucceeded, downloader.EventJobFailed:
		m.handleTerminal(e)
	}
}

// AnimationComplete reports that the animation for phase finished. Signals for a phase the
// machine is no longer in are ignored.
func (m *Machine) AnimationComplete(phase State) {
	if phase != m.view.State {
		m.logger.Debug("Ignoring animation signal", "phase", phase, "state", m.view.State)
		return
	}

	switch phase {
	case Entering:
		m.cancelAnimation()
		m.setState(Visible)

		if t := m.deferredTerminal; t != nil && t.JobID == m.view.JobID {
			m.deferredTerminal = nil
			m.applyTerminal(*t)
		}
		if m.deferredDismiss {
			m.startExit()
		}

	case Exiting:
		m.cancelAnimation()
		m.view = hiddenView()
		m.publish()

		if start := m.pendingStart; start != nil {
			m.pendingStart = nil
			m.enter(*start)
		}
	}
}

// Dismiss is an explicit user request to close the overlay. While Entering it takes effect
// once the overlay is visible.
func (m *Machine) Dismiss() {
	switch m.view.State {
	case Entering:
		m.deferredDismiss = true
	case Visible:
		m.startExit()
	}
}

func (m *Machine) handleStart(e downloader.Event) {
	if m.view.State == Hidden {
		m.enter(e)
		return
	}

	// The previous job's overlay has to leave before the new one can enter
	m.pendingStart = &e
	switch m.view.State {
	case Visible:
		m.startExit()
	case Entering:
		m.deferredDismiss = true
	}
}

func (m *Machine) handleProgress(e downloader.Event) {
	if m.view.State != Visible || m.view.Terminal || e.JobID != m.view.JobID {
		return
	}

	m.view.Percent = max(m.view.Percent, min(100, max(0, e.Percent)))
	m.setBytes(e.BytesDownloaded, e.TotalBytes)
	m.view.Message = fmt.Sprintf("%d%%  %s / %s", m.view.Percent, m.view.Downloaded, m.view.Total)
	m.publish()
}

func (m *Machine) handleTerminal(e downloader.Event) {
	if start := m.pendingStart; start != nil && start.JobID == e.JobID {
		m.deferredTerminal = &e
		return
	}

	switch m.view.State {
	case Entering:
		if e.JobID == m.view.JobID {
			m.deferredTerminal = &e
		}
	case Visible:
		if e.JobID == m.view.JobID && !m.view.Terminal {
			m.applyTerminal(e)
		}
	}
}

func (m *Machine) enter(e downloader.Event) {
	if t := m.deferredTerminal; t != nil && t.JobID != e.JobID {
		m.deferredTerminal = nil
	}
	m.deferredDismiss = false

	m.view = View{
		State:     Entering,
		StateName: Entering.String(),
		JobID:     e.JobID,
		FileName:  e.FileName,
		Message:   MessagePreparing,
	}
	m.publish()
	m.scheduleAnimation(m.timings.Enter, Entering)
}

func (m *Machine) applyTerminal(e downloader.Event) {
	m.view.Terminal = true
	m.view.Succeeded = e.Type == downloader.EventJobSucceeded
	m.view.Percent = 100
	if e.TotalBytes > 0 {
		m.setBytes(e.BytesDownloaded, e.TotalBytes)
	}
	if m.view.Succeeded {
		m.view.Message = MessageComplete
	} else {
		m.view.Message = MessageFailed
	}
	m.publish()

	m.cancelHold()
	token := m.holdToken
	m.stopHold = m.scheduler.AfterFunc(m.timings.Hold, func() {
		if token == m.holdToken && m.view.State == Visible {
			m.startExit()
		}
	})
}

func (m *Machine) startExit() {
	m.cancelHold()
	m.deferredDismiss = false
	m.setState(Exiting)
	m.scheduleAnimation(m.timings.Exit, Exiting)
}

func (m *Machine) scheduleAnimation(d time.Duration, phase State) {
	m.cancelAnimation()
	token := m.animToken
	m.stopAnim = m.scheduler.AfterFunc(d, func() {
		if token == m.animToken {
			m.AnimationComplete(phase)
		}
	})
}

func (m *Machine) cancelAnimation() {
	m.animToken++
	if m.stopAnim != nil {
		m.stopAnim()
		m.stopAnim = nil
	}
}

func (m *Machine) cancelHold() {
	m.holdToken++
	if m.stopHold != nil {
		m.stopHold()
		m.stopHold = nil
	}
}

func (m *Machine) setBytes(done, total int64) {
	m.view.Downloaded = formatBytes(done)
	m.view.Total = formatBytes(total)
}

// formatBytes scales by 1024 and labels the result B, KB, MB or GB with one decimal
func formatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", max(0, n))
	}

	value := float64(n) / 1024
	for _, unit := range []string{"KB", "MB"} {
		if value < 1024 {
			return humanize.FormatFloat("#,###.#", value) + " " + unit
		}
		value /= 1024
	}
	return humanize.FormatFloat("#,###.#", value) + " GB"
}

func (m *Machine) setState(state State) {
	m.view.State = state
	m.view.StateName = state.String()
	m.publish()
}

func (m *Machine) publish() {
	m.logger.Debug("Overlay changed", "state", m.view.State, "job_id", m.view.JobID, "percent", m.view.Percent)
	for _, fn := range m.listeners {
		fn(m.view)
	}
}
