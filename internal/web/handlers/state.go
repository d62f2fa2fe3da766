package handlers

import (
	"sync"
	"time"

	"webhost/internal/bridge"
	"webhost/internal/host"
	"webhost/internal/overlay"
)

// maxNotices bounds the notices kept for a shell that is not polling
const maxNotices = 10

// maxHistory bounds the back stack
const maxHistory = 100

// Notice is a transient message for the shell
type Notice struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Picker is an open file-chooser request
type Picker struct {
	ID     string `json:"id"`
	Accept string `json:"accept"`
}

// Snapshot is the UI state the shell renders
type Snapshot struct {
	URL string `json:"url"`
	// Navigation increases every time the host asks the shell to load URL
	Navigation       int64                `json:"navigation"`
	CanGoBack        bool                 `json:"can_go_back"`
	Overlay          overlay.View         `json:"overlay"`
	Dialog           *bridge.Dialog       `json:"dialog,omitempty"`
	Picker           *Picker              `json:"picker,omitempty"`
	Settings         *host.SettingsDialog `json:"settings,omitempty"`
	Fullscreen       string               `json:"fullscreen,omitempty"`
	FullscreenHidden string               `json:"fullscreen_hidden,omitempty"`
	Notices          []Notice             `json:"notices"`
}

// UIState is the rendering side of the host. The host writes it from the event loop and HTTP
// handlers read it, so every method locks.
type UIState struct {
	mu  sync.Mutex
	now func() time.Time

	history    []string
	navigation int64
	overlay    overlay.View
	dialog     *bridge.Dialog
	picker     *Picker
	settings   *host.SettingsDialog
	fullscreen string
	hidden     string
	notices    []Notice
}

var _ host.UI = (*UIState)(nil)

// NewUIState creates an empty UI with a hidden overlay
func NewUIState() *UIState {
	return &UIState{
		now:     time.Now,
		overlay: overlay.View{State: overlay.Hidden, StateName: overlay.Hidden.String()},
	}
}

// Snapshot copies the current state without consuming notices
func (s *UIState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Navigation:       s.navigation,
		CanGoBack:        len(s.history) > 1,
		Overlay:          s.overlay,
		Fullscreen:       s.fullscreen,
		FullscreenHidden: s.hidden,
		Notices:          append([]Notice{}, s.notices...),
	}
	if n := len(s.history); n > 0 {
		snap.URL = s.history[n-1]
	}
	if s.dialog != nil {
		dialog := *s.dialog
		snap.Dialog = &dialog
	}
	if s.picker != nil {
		picker := *s.picker
		snap.Picker = &picker
	}
	if s.settings != nil {
		settings := *s.settings
		snap.Settings = &settings
	}
	return snap
}

// TakeNotices returns and clears the queued notices
func (s *UIState) TakeNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	notices := s.notices
	s.notices = nil
	return notices
}

// Navigated records a navigation the engine committed on its own
func (s *UIState) Navigated(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.push(url)
}

// push appends url unless it is already current, dropping the oldest entries past maxHistory
func (s *UIState) push(url string) {
	if n := len(s.history); n > 0 && s.history[n-1] == url {
		return
	}
	s.history = append(s.history, url)
	if len(s.history) > maxHistory {
		s.history = append([]string(nil), s.history[len(s.history)-maxHistory:]...)
	}
}

// MarkFullscreenHidden records that the session for view ended
func (s *UIState) MarkFullscreenHidden(view string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden = view
}

// LoadURL asks the shell to load url in the primary surface
func (s *UIState) LoadURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.navigation++
	s.push(url)
}

// CanGoBack reports whether there is history to go back to
func (s *UIState) CanGoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history) > 1
}

// GoBack pops the current entry and asks the shell to load the previous one
func (s *UIState) GoBack() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) < 2 {
		return
	}
	s.history = s.history[:len(s.history)-1]
	s.navigation++
}

// Notify queues a notice
func (s *UIState) Notify(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notices = append(s.notices, Notice{Message: message, CreatedAt: s.now()})
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
}

// ShowSettings opens the settings dialog
func (s *UIState) ShowSettings(dialog host.SettingsDialog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &dialog
}

// HideSettings closes the settings dialog with id
func (s *UIState) HideSettings(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings != nil && s.settings.ID == id {
		s.settings = nil
	}
}

// RenderOverlay stores the latest overlay view
func (s *UIState) RenderOverlay(view overlay.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = view
}

// PresentDialog shows a JavaScript dialog
func (s *UIState) PresentDialog(dialog bridge.Dialog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialog = &dialog
}

// DismissDialog removes the dialog with id
func (s *UIState) DismissDialog(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dialog != nil && s.dialog.ID == id {
		s.dialog = nil
	}
}

// OpenPicker shows the file picker
func (s *UIState) OpenPicker(id, accept string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picker = &Picker{ID: id, Accept: accept}
}

// ClosePicker removes the picker with id
func (s *UIState) ClosePicker(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.picker != nil && s.picker.ID == id {
		s.picker = nil
	}
}

// AttachFullscreen shows view over the primary surface
func (s *UIState) AttachFullscreen(view string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fullscreen = view
	s.hidden = ""
}

// DetachFullscreen removes view
func (s *UIState) DetachFullscreen(view string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fullscreen == view {
		s.fullscreen = ""
	}
}
