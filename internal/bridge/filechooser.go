package bridge

import (
	"log/slog"

	"github.com/google/uuid"
)

// AcceptAll is the content filter used for every picker
const AcceptAll = "*/*"

type pendingChoice struct {
	id        string
	responder *Responder[[]string]
}

// FileChooserBridge correlates one outstanding file-selection request with its result.
// A newer request supersedes the outstanding one, which is answered with no selection.
type FileChooserBridge struct {
	picker  Picker
	logger  *slog.Logger
	pending *pendingChoice
}

// NewFileChooserBridge creates a bridge that opens picker for each request
func NewFileChooserBridge(picker Picker) *FileChooserBridge {
	return &FileChooserBridge{
		picker: picker,
		logger: slog.Default(),
	}
}

// Request opens the picker. respond receives the selected URIs, or nil for no selection.
func (b *FileChooserBridge) Request(respond func(uris []string)) string {
	if stale := b.pending; stale != nil {
		b.logger.Warn("File chooser requested while another is pending; cancelling the earlier one",
			"pending_id", stale.id)
		b.pending = nil
		stale.responder.Resolve(nil)
		b.picker.ClosePicker(stale.id)
	}

	id := uuid.NewString()
	b.pending = &pendingChoice{id: id, responder: NewResponder(respond)}
	b.picker.OpenPicker(id, AcceptAll)
	return id
}

// Deliver completes the request with id. Results for superseded requests are dropped.
func (b *FileChooserBridge) Deliver(id string, uris []string) bool {
	pending := b.pending
	if pending == nil || pending.id != id {
		b.logger.Debug("Dropping file selection for a superseded request", "request_id", id)
		return false
	}

	if len(uris) == 0 {
		uris = nil
	}

	b.pending = nil
	b.picker.ClosePicker(id)
	return pending.responder.Resolve(uris)
}

// Pending returns the id of the outstanding request
func (b *FileChooserBridge) Pending() (string, bool) {
	if b.pending == nil {
		return "", false
	}
	return b.pending.id, true
}
