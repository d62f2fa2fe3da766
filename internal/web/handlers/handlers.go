// Package handlers provides HTTP handlers for the browser shell and the engine bridge
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"webhost/internal/bridge"
	"webhost/internal/database"
	"webhost/internal/downloader"
	"webhost/internal/eventloop"
	"webhost/internal/host"
	"webhost/internal/overlay"
	"webhost/internal/settings"
	"webhost/internal/web/templates"
	"webhost/pkg/models"

	"github.com/a-h/templ"
)

// Handlers contains all HTTP handlers and their dependencies
type Handlers struct {
	host   *host.Host
	ui     *UIState
	home   *settings.Home
	db     *database.DB
	logger *slog.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(h *host.Host, ui *UIState, home *settings.Home, db *database.DB) *Handlers {
	return &Handlers{
		host:   h,
		ui:     ui,
		home:   home,
		db:     db,
		logger: slog.Default(),
	}
}

// Shell serves the browser shell page
func (h *Handlers) Shell(w http.ResponseWriter, r *http.Request) {
	snap := h.ui.Snapshot()
	url := snap.URL
	if url == "" {
		url = h.home.URL()
	}
	h.render(w, r, templates.Base("Web Host", templates.Shell(url, snap.Navigation)))
}

// OverlayFragment renders the download overlay
func (h *Handlers) OverlayFragment(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, templates.Overlay(h.ui.Snapshot().Overlay))
}

// DialogFragment renders the pending JavaScript dialog
func (h *Handlers) DialogFragment(w http.ResponseWriter, r *http.Request) {
	dialog := h.ui.Snapshot().Dialog
	if dialog != nil && alreadyShown(r, dialog.ID) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.render(w, r, templates.Dialog(dialog))
}

// SettingsFragment renders the settings dialog
func (h *Handlers) SettingsFragment(w http.ResponseWriter, r *http.Request) {
	dialog := h.ui.Snapshot().Settings
	if dialog != nil && alreadyShown(r, dialog.ID) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.render(w, r, templates.Settings(dialog))
}

// alreadyShown reports whether the shell is displaying id. htmx does not swap on 204, so the
// user's input survives the poll.
func alreadyShown(r *http.Request, id string) bool {
	return r.URL.Query().Get("shown") == id
}

// NoticeFragment renders and consumes queued notices
func (h *Handlers) NoticeFragment(w http.ResponseWriter, r *http.Request) {
	notices := h.ui.TakeNotices()
	messages := make([]string, 0, len(notices))
	for _, notice := range notices {
		messages = append(messages, notice.Message)
	}
	h.render(w, r, templates.Notices(messages))
}

// State returns the full UI state as JSON
func (h *Handlers) State(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.ui.Snapshot())
}

// OverlayAnimation reports that an overlay animation finished
func (h *Handlers) OverlayAnimation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phase string `json:"phase"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	phase, ok := overlay.ParseState(req.Phase)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "Unknown animation phase")
		return
	}

	if err := h.host.OverlayAnimationComplete(r.Context(), phase); err != nil {
		h.hostError(w, "Failed to deliver animation signal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OverlayDismiss is the user tapping the overlay
func (h *Handlers) OverlayDismiss(w http.ResponseWriter, r *http.Request) {
	if err := h.host.DismissOverlay(r.Context()); err != nil {
		h.hostError(w, "Failed to dismiss overlay", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelDownload aborts the in-flight download
func (h *Handlers) CancelDownload(w http.ResponseWriter, r *http.Request) {
	cancelled, err := h.host.CancelDownload(r.Context())
	if err != nil {
		h.hostError(w, "Failed to cancel download", err)
		return
	}
	if !cancelled {
		h.writeError(w, http.StatusConflict, "No download in progress")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResolveDialog answers a presented JavaScript dialog
func (h *Handlers) ResolveDialog(w http.ResponseWriter, r *http.Request) {
	var result bridge.DialogResult
	if !h.decode(w, r, &result) {
		return
	}

	ok, err := h.host.ResolveDialog(r.Context(), r.PathValue("id"), result)
	if err != nil {
		h.hostError(w, "Failed to resolve dialog", err)
		return
	}
	if !ok {
		h.writeError(w, http.StatusNotFound, "Dialog not pending")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeliverFiles completes a file-chooser request
func (h *Handlers) DeliverFiles(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URI  string   `json:"uri"`
		URIs []string `json:"uris"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	uris := req.URIs
	if req.URI != "" {
		uris = append(uris, req.URI)
	}

	ok, err := h.host.DeliverFiles(r.Context(), r.PathValue("id"), uris)
	if err != nil {
		h.hostError(w, "Failed to deliver file selection", err)
		return
	}
	if !ok {
		h.writeError(w, http.StatusNotFound, "File chooser not pending")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResolveSettings applies the answer to the settings dialog
func (h *Handlers) ResolveSettings(w http.ResponseWriter, r *http.Request) {
	var result host.SettingsResult
	if !h.decode(w, r, &result) {
		return
	}

	switch result.Action {
	case host.SettingsSave, host.SettingsCancel, host.SettingsRestore:
	default:
		h.writeError(w, http.StatusBadRequest, "Unknown settings action")
		return
	}

	ok, err := h.host.ResolveSettings(r.Context(), r.PathValue("id"), result)
	if err != nil {
		h.hostError(w, "Failed to apply settings", err)
		return
	}
	if !ok {
		h.writeError(w, http.StatusNotFound, "Settings dialog not open")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PressHome handles the native Home button
func (h *Handlers) PressHome(w http.ResponseWriter, r *http.Request) {
	action, err := h.host.PressHome(r.Context())
	if err != nil {
		h.hostError(w, "Failed to handle home press", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"action": action})
}

// PressBack handles the native Back button
func (h *Handlers) PressBack(w http.ResponseWriter, r *http.Request) {
	action, err := h.host.PressBack(r.Context())
	if err != nil {
		h.hostError(w, "Failed to handle back press", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"action": action})
}

// EngineDownload is the engine turning a navigation into a download
func (h *Handlers) EngineDownload(w http.ResponseWriter, r *http.Request) {
	var req models.DownloadRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.URL == "" {
		h.writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	job, err := h.host.Download(r.Context(), req)
	switch {
	case errors.Is(err, downloader.ErrBusy):
		h.writeError(w, http.StatusConflict, "A download is already in progress")
	case errors.Is(err, downloader.ErrTransportCreation):
		h.logger.Warn("Download rejected by transport", "url", req.URL, "error", err)
		h.writeError(w, http.StatusBadRequest, "Download could not be started")
	case err != nil:
		h.hostError(w, "Failed to submit download", err)
	default:
		h.writeJSON(w, http.StatusAccepted, job)
	}
}

// EngineDialog presents a JavaScript dialog and answers once the user has. A client that goes
// away gets the safe default.
func (h *Handlers) EngineDialog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind         string `json:"kind"`
		Message      string `json:"message"`
		DefaultValue string `json:"default_value"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	kind, err := bridge.ParseDialogKind(req.Kind)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Unknown dialog kind")
		return
	}

	result, err := h.host.Dialog(r.Context(), kind, req.Message, req.DefaultValue)
	if err != nil {
		h.logger.Debug("Dialog abandoned", "kind", kind, "error", err)
	}
	h.writeJSON(w, http.StatusOK, result)
}

// EngineFileChooser opens the file picker and answers with the selection
func (h *Handlers) EngineFileChooser(w http.ResponseWriter, r *http.Request) {
	uris, err := h.host.ChooseFile(r.Context())
	if err != nil {
		h.logger.Debug("File chooser abandoned", "error", err)
	}
	if uris == nil {
		uris = []string{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"uris": uris})
}

// EngineFullscreenEnter starts a media takeover
func (h *Handlers) EngineFullscreenEnter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View string `json:"view"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.View == "" {
		h.writeError(w, http.StatusBadRequest, "View is required")
		return
	}

	view := req.View
	entered, err := h.host.EnterFullscreen(r.Context(), view, func() { h.ui.MarkFullscreenHidden(view) })
	if err != nil {
		h.hostError(w, "Failed to enter fullscreen", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"entered": entered})
}

// EngineFullscreenExit ends the media takeover
func (h *Handlers) EngineFullscreenExit(w http.ResponseWriter, r *http.Request) {
	exited, err := h.host.ExitFullscreen(r.Context())
	if err != nil {
		h.hostError(w, "Failed to exit fullscreen", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"exited": exited})
}

// EnginePopup answers a request for a new browsing context
func (h *Handlers) EnginePopup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	decision, err := h.host.Popup(r.Context(), req.URL)
	if err != nil {
		h.hostError(w, "Failed to decide popup", err)
		return
	}
	h.writeJSON(w, http.StatusOK, decision)
}

// EnginePopupNavigated reports the first navigation of a forwarding surface
func (h *Handlers) EnginePopupNavigated(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	ok, err := h.host.ForwardPopup(r.Context(), r.PathValue("id"), req.URL)
	if err != nil {
		h.hostError(w, "Failed to forward popup", err)
		return
	}
	if !ok {
		h.writeError(w, http.StatusNotFound, "Unknown popup surface")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EnginePermission answers a geolocation or media request
func (h *Handlers) EnginePermission(w http.ResponseWriter, r *http.Request) {
	var req bridge.PermissionRequest
	if !h.decode(w, r, &req) {
		return
	}

	decision, err := h.host.Permission(r.Context(), req)
	if err != nil {
		h.hostError(w, "Failed to decide permission", err)
		return
	}
	h.writeJSON(w, http.StatusOK, decision)
}

// EngineNavigated records a navigation the engine committed
func (h *Handlers) EngineNavigated(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.URL == "" {
		h.writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	h.ui.Navigated(req.URL)
	w.WriteHeader(http.StatusNoContent)
}

type homeSettingsResponse struct {
	URL        string `json:"url"`
	DefaultURL string `json:"default_url"`
	Custom     bool   `json:"custom"`
}

// GetHomeSettings returns the home page setting
func (h *Handlers) GetHomeSettings(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, homeSettingsResponse{
		URL:        h.home.URL(),
		DefaultURL: h.home.DefaultURL(),
		Custom:     h.home.IsCustom(),
	})
}

// SaveHomeSettings stores a new home page
func (h *Handlers) SaveHomeSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if _, err := h.home.Save(req.URL); err != nil {
		if errors.Is(err, settings.ErrEmptyURL) {
			h.writeError(w, http.StatusBadRequest, "URL is required")
			return
		}
		h.logger.Error("Failed to save home url", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to save home url")
		return
	}

	h.GetHomeSettings(w, r)
}

// ListTransfers returns recent transport records
func (h *Handlers) ListTransfers(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, 500)
	}

	transfers, err := h.db.ListTransfers(limit, 0)
	if err != nil {
		h.logger.Error("Failed to list transfers", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if transfers == nil {
		transfers = []*models.Transfer{}
	}
	h.writeJSON(w, http.StatusOK, transfers)
}

// GetTransferStats returns transfer counts by state
func (h *Handlers) GetTransferStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetTransferStats()
	if err != nil {
		h.logger.Error("Failed to get transfer stats", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		h.logger.Error("Failed to render template", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// hostError maps a failed host call. A caller that gave up or a stopped loop is 503.
func (h *Handlers) hostError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, eventloop.ErrStopped) {
		h.logger.Debug(message, "error", err)
		h.writeError(w, http.StatusServiceUnavailable, message)
		return
	}
	h.logger.Error(message, "error", err)
	h.writeError(w, http.StatusInternalServerError, message)
}
