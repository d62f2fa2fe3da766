// Package host owns every bridge component on a single event loop and routes browser events
// and native button presses to them. Its exported methods are safe for concurrent use.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"webhost/internal/bridge"
	"webhost/internal/config"
	"webhost/internal/downloader"
	"webhost/internal/eventloop"
	"webhost/internal/gesture"
	"webhost/internal/overlay"
	"webhost/internal/settings"
	"webhost/pkg/models"

	"github.com/google/uuid"
)

// Notices
const (
	NoticeBusy          = "A download is already in progress"
	NoticeStartFailed   = "Download could not be started"
	NoticeHomeSaved     = "Home page saved"
	NoticeHomeRestored  = "Home page restored to default"
	NoticeHomeNotSaved  = "Home page not saved"
	noticeDownloadStart = "Downloading %s"
)

// HomeAction is what a Home press did
type HomeAction string

const (
	HomeNavigated      HomeAction = "navigated"
	HomeSettingsOpened HomeAction = "settings_opened"
	HomeIgnored        HomeAction = "ignored"
)

// BackAction is what a Back press did
type BackAction string

const (
	BackExitedFullscreen BackAction = "exited_fullscreen"
	BackNavigated        BackAction = "navigated"
	BackUnhandled        BackAction = "unhandled"
)

// Settings dialog actions
const (
	SettingsSave    = "save"
	SettingsCancel  = "cancel"
	SettingsRestore = "restore"
)

// SettingsDialog is the hidden configuration dialog
type SettingsDialog struct {
	ID         string `json:"id"`
	CurrentURL string `json:"current_url"`
	DefaultURL string `json:"default_url"`
}

// SettingsResult is the user's answer to the settings dialog
type SettingsResult struct {
	Action string `json:"action"`
	URL    string `json:"url"`
}

// Options tunes the components
type Options struct {
	PollInterval     time.Duration
	Overlay          overlay.Timings
	GestureThreshold int
	GestureInterval  time.Duration
	PopupPolicy      bridge.PopupPolicy
	GrantPermissions bool
	Clock            func() time.Time
	// Observers receive every download event after the overlay has seen it
	Observers []downloader.Subscriber
}

// OptionsFromConfig maps application configuration onto host options
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	policy, err := bridge.ParsePopupPolicy(cfg.PopupPolicy)
	if err != nil {
		return Options{}, err
	}

	return Options{
		PollInterval: cfg.PollInterval,
		Overlay: overlay.Timings{
			Hold:  cfg.OverlayHold,
			Enter: cfg.OverlayEnterDuration,
			Exit:  cfg.OverlayExitDuration,
		},
		GestureThreshold: cfg.GestureThreshold,
		GestureInterval:  cfg.GestureInterval,
		PopupPolicy:      policy,
		GrantPermissions: cfg.GrantPermissions,
	}, nil
}

// Host routes events to the components it owns
type Host struct {
	loop   *eventloop.Loop
	ui     UI
	home   *settings.Home
	clock  func() time.Time
	logger *slog.Logger

	coordinator *downloader.Coordinator
	overlay     *overlay.Machine
	dialogs     *bridge.DialogMediator
	files       *bridge.FileChooserBridge
	fullscreen  *bridge.FullscreenController
	popups      *bridge.PopupBridge
	permissions *bridge.PermissionPolicy
	gesture     *gesture.Detector

	settingsID string
}

// New wires the components. The loop must be running for the exported methods to make progress.
func New(loop *eventloop.Loop, transport downloader.Transport, home *settings.Home, ui UI, opts Options) *Host {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	h := &Host{
		loop:        loop,
		ui:          ui,
		home:        home,
		clock:       clock,
		logger:      slog.Default(),
		coordinator: downloader.NewCoordinator(transport, downloader.NewPoller(transport, loop, opts.PollInterval)),
		overlay:     overlay.NewMachine(overlay.NewScheduler(loop), opts.Overlay),
		dialogs:     bridge.NewDialogMediator(ui),
		files:       bridge.NewFileChooserBridge(ui),
		fullscreen:  bridge.NewFullscreenController(ui),
		popups:      bridge.NewPopupBridge(opts.PopupPolicy, ui),
		permissions: bridge.NewPermissionPolicy(opts.GrantPermissions),
		gesture:     gesture.NewDetector(opts.GestureThreshold, opts.GestureInterval),
	}

	h.coordinator.Subscribe(h.overlay.Handle)
	for _, observe := range opts.Observers {
		h.coordinator.Subscribe(observe)
	}
	h.overlay.OnChange(ui.RenderOverlay)
	return h
}

// Close stops download polling
func (h *Host) Close(ctx context.Context) error {
	return h.loop.Call(ctx, h.coordinator.Shutdown)
}

// Download submits a browser download request
func (h *Host) Download(ctx context.Context, req models.DownloadRequest) (models.DownloadJob, error) {
	var job models.DownloadJob
	var submitErr error

	err := h.loop.Call(ctx, func() {
		job, submitErr = h.coordinator.Submit(ctx, req)
		switch {
		case submitErr == nil:
			h.ui.Notify(fmt.Sprintf(noticeDownloadStart, job.FileName))
		case errors.Is(submitErr, downloader.ErrBusy):
			h.ui.Notify(NoticeBusy)
		default:
			h.ui.Notify(NoticeStartFailed)
		}
	})
	if err != nil {
		return models.DownloadJob{}, err
	}
	return job, submitErr
}

// CancelDownload aborts the in-flight download
func (h *Host) CancelDownload(ctx context.Context) (bool, error) {
	var cancelled bool
	err := h.loop.Call(ctx, func() { cancelled = h.coordinator.Cancel() })
	return cancelled, err
}

// CurrentJob returns the most recent download
func (h *Host) CurrentJob(ctx context.Context) (models.DownloadJob, bool, error) {
	var job models.DownloadJob
	var ok bool
	err := h.loop.Call(ctx, func() { job, ok = h.coordinator.CurrentJob() })
	return job, ok, err
}

// OverlayAnimationComplete forwards the renderer's animation signal
func (h *Host) OverlayAnimationComplete(ctx context.Context, phase overlay.State) error {
	return h.loop.Call(ctx, func() { h.overlay.AnimationComplete(phase) })
}

// DismissOverlay is the user tapping the overlay
func (h *Host) DismissOverlay(ctx context.Context) error {
	return h.loop.Call(ctx, h.overlay.Dismiss)
}

// Overlay returns the current overlay view
func (h *Host) Overlay(ctx context.Context) (overlay.View, error) {
	var view overlay.View
	err := h.loop.Call(ctx, func() { view = h.overlay.View() })
	return view, err
}

// Dialog presents a JavaScript dialog and waits for the answer. If ctx ends first the dialog is
// withdrawn and its safe default is returned together with the context error.
func (h *Host) Dialog(ctx context.Context, kind bridge.DialogKind, message, defaultValue string) (bridge.DialogResult, error) {
	results := make(chan bridge.DialogResult, 1)
	var id string

	err := h.loop.Call(ctx, func() {
		id = h.dialogs.Present(kind, message, defaultValue, func(r bridge.DialogResult) { results <- r })
	})
	if err == nil {
		select {
		case result := <-results:
			return result, nil
		case <-ctx.Done():
			err = ctx.Err()
		}
	}

	// The dialog may have been presented even if Call gave up waiting
	h.loop.Post(func() {
		if id != "" {
			h.dialogs.Cancel(id)
		}
	})
	return bridge.SafeDefault(kind), err
}

// ResolveDialog answers a presented dialog
func (h *Host) ResolveDialog(ctx context.Context, id string, result bridge.DialogResult) (bool, error) {
	var ok bool
	err := h.loop.Call(ctx, func() { ok = h.dialogs.Resolve(id, result) })
	return ok, err
}

// ChooseFile opens the file picker and waits for the selection; nil means no selection
func (h *Host) ChooseFile(ctx context.Context) ([]string, error) {
	results := make(chan []string, 1)
	var id string

	err := h.loop.Call(ctx, func() {
		id = h.files.Request(func(uris []string) { results <- uris })
	})
	if err == nil {
		select {
		case uris := <-results:
			return uris, nil
		case <-ctx.Done():
			err = ctx.Err()
		}
	}

	h.loop.Post(func() {
		if id != "" {
			h.files.Deliver(id, nil)
		}
	})
	return nil, err
}

// DeliverFiles completes a file-chooser request
func (h *Host) DeliverFiles(ctx context.Context, id string, uris []string) (bool, error) {
	var ok bool
	err := h.loop.Call(ctx, func() { ok = h.files.Deliver(id, uris) })
	return ok, err
}

// EnterFullscreen starts a media takeover; hide runs once when it ends
func (h *Host) EnterFullscreen(ctx context.Context, view string, hide func()) (bool, error) {
	var ok bool
	err := h.loop.Call(ctx, func() { ok = h.fullscreen.Enter(view, hide) })
	return ok, err
}

// ExitFullscreen ends the media takeover
func (h *Host) ExitFullscreen(ctx context.Context) (bool, error) {
	var ok bool
	err := h.loop.Call(ctx, func() { ok = h.fullscreen.Exit() })
	return ok, err
}

// Popup decides on a new browsing context
func (h *Host) Popup(ctx context.Context, targetURL string) (bridge.PopupDecision, error) {
	var decision bridge.PopupDecision
	err := h.loop.Call(ctx, func() { decision = h.popups.Request(targetURL) })
	return decision, err
}

// ForwardPopup reports the first navigation of a forwarding surface
func (h *Host) ForwardPopup(ctx context.Context, surfaceID, url string) (bool, error) {
	var ok bool
	err := h.loop.Call(ctx, func() { ok = h.popups.Forward(surfaceID, url) })
	return ok, err
}

// Permission answers a geolocation or media request
func (h *Host) Permission(ctx context.Context, req bridge.PermissionRequest) (bridge.PermissionDecision, error) {
	var decision bridge.PermissionDecision
	err := h.loop.Call(ctx, func() { decision = h.permissions.Decide(req) })
	return decision, err
}

// PressHome handles the native Home button
func (h *Host) PressHome(ctx context.Context) (HomeAction, error) {
	var action HomeAction
	err := h.loop.Call(ctx, func() { action = h.pressHome() })
	return action, err
}

func (h *Host) pressHome() HomeAction {
	if h.settingsID != "" {
		return HomeIgnored
	}

	if h.gesture.Record(h.clock()) {
		h.settingsID = uuid.NewString()
		h.logger.Info("Opening settings dialog")
		h.ui.ShowSettings(SettingsDialog{
			ID:         h.settingsID,
			CurrentURL: h.home.URL(),
			DefaultURL: h.home.DefaultURL(),
		})
		return HomeSettingsOpened
	}

	h.ui.LoadURL(h.home.URL())
	return HomeNavigated
}

// PressBack handles the native Back button. Fullscreen exit takes priority over history.
func (h *Host) PressBack(ctx context.Context) (BackAction, error) {
	var action BackAction
	err := h.loop.Call(ctx, func() {
		switch {
		case h.fullscreen.HandleBack():
			action = BackExitedFullscreen
		case h.ui.CanGoBack():
			h.ui.GoBack()
			action = BackNavigated
		default:
			action = BackUnhandled
		}
	})
	return action, err
}

// ResolveSettings applies the answer to the settings dialog with id
func (h *Host) ResolveSettings(ctx context.Context, id string, result SettingsResult) (bool, error) {
	var ok bool
	var applyErr error
	err := h.loop.Call(ctx, func() { ok, applyErr = h.resolveSettings(id, result) })
	if err != nil {
		return false, err
	}
	return ok, applyErr
}

func (h *Host) resolveSettings(id string, result SettingsResult) (bool, error) {
	if id == "" || id != h.settingsID {
		return false, nil
	}

	h.settingsID = ""
	h.ui.HideSettings(id)

	switch result.Action {
	case SettingsSave:
		saved, err := h.home.Save(result.URL)
		if errors.Is(err, settings.ErrEmptyURL) {
			return true, nil
		}
		if err != nil {
			h.ui.Notify(NoticeHomeNotSaved)
			return true, err
		}
		h.ui.LoadURL(saved)
		h.ui.Notify(NoticeHomeSaved)

	case SettingsRestore:
		if err := h.home.Reset(); err != nil {
			h.ui.Notify(NoticeHomeNotSaved)
			return true, err
		}
		h.ui.LoadURL(h.home.URL())
		h.ui.Notify(NoticeHomeRestored)

	case SettingsCancel:

	default:
		return true, fmt.Errorf("unknown settings action %q", result.Action)
	}

	return true, nil
}

// LoadHome navigates to the home page, as on startup
func (h *Host) LoadHome(ctx context.Context) error {
	return h.loop.Call(ctx, func() { h.ui.LoadURL(h.home.URL()) })
}
