package bridge

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// DialogKind identifies the JavaScript dialog being shown
type DialogKind int

const (
	Alert DialogKind = iota
	Confirm
	Prompt
	BeforeUnload
)

func (k DialogKind) String() string {
	switch k {
	case Alert:
		return "alert"
	case Confirm:
		return "confirm"
	case Prompt:
		return "prompt"
	case BeforeUnload:
		return "beforeunload"
	default:
		return fmt.Sprintf("DialogKind(%d)", int(k))
	}
}

// ParseDialogKind is the inverse of String
func ParseDialogKind(s string) (DialogKind, error) {
	for _, kind := range []DialogKind{Alert, Confirm, Prompt, BeforeUnload} {
		if kind.String() == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown dialog kind %q", s)
}

// Dialog is what the UI renders
type Dialog struct {
	ID           string     `json:"id"`
	Kind         DialogKind `json:"-"`
	KindName     string     `json:"kind"`
	Message      string     `json:"message"`
	DefaultValue string     `json:"default_value,omitempty"`
}

// DialogResult is the answer returned to the page
type DialogResult struct {
	Confirmed bool   `json:"confirmed"`
	Value     string `json:"value,omitempty"`
}

// SafeDefault is the answer used when a dialog is answered without the user
func SafeDefault(kind DialogKind) DialogResult {
	return DialogResult{Confirmed: kind == BeforeUnload}
}

type pendingDialog struct {
	dialog    Dialog
	responder *Responder[DialogResult]
}

// DialogMediator answers JavaScript dialogs through a single pending slot.
// It is confined to the event loop.
type DialogMediator struct {
	presenter Presenter
	logger    *slog.Logger
	pending   *pendingDialog
}

// NewDialogMediator creates a mediator that shows dialogs through presenter
func NewDialogMediator(presenter Presenter) *DialogMediator {
	return &DialogMediator{
		presenter: presenter,
		logger:    slog.Default(),
	}
}

// Present shows a dialog and arranges for respond to be called exactly once with the answer.
// BeforeUnload is confirmed immediately without showing anything; the returned id is then empty.
func (m *DialogMediator) Present(kind DialogKind, message, defaultValue string, respond func(DialogResult)) string {
	responder := NewResponder(respond)

	if kind == BeforeUnload {
		m.logger.Debug("Auto-confirming beforeunload dialog")
		responder.Resolve(SafeDefault(BeforeUnload))
		return ""
	}

	if stale := m.pending; stale != nil {
		m.logger.Warn("Dialog presented while another is pending; cancelling the earlier one",
			"pending_id", stale.dialog.ID,
			"pending_kind", stale.dialog.Kind,
			"new_kind", kind)
		m.pending = nil
		stale.responder.Resolve(SafeDefault(stale.dialog.Kind))
		m.presenter.DismissDialog(stale.dialog.ID)
	}

	dialog := Dialog{
		ID:       uuid.NewString(),
		Kind:     kind,
		KindName: kind.String(),
		Message:  message,
	}
	if kind == Prompt {
		dialog.DefaultValue = defaultValue
	}

	m.pending = &pendingDialog{dialog: dialog, responder: responder}
	m.presenter.PresentDialog(dialog)
	return dialog.ID
}

// Resolve answers the pending dialog with id. It returns false if id is not pending.
func (m *DialogMediator) Resolve(id string, result DialogResult) bool {
	pending := m.pending
	if pending == nil || pending.dialog.ID != id {
		m.logger.Debug("Ignoring answer for a dialog that is not pending", "dialog_id", id)
		return false
	}

	if pending.dialog.Kind != Prompt {
		result.Value = ""
	}

	m.pending = nil
	m.presenter.DismissDialog(id)
	return pending.responder.Resolve(result)
}

// Cancel answers the pending dialog with id using its safe default
func (m *DialogMediator) Cancel(id string) bool {
	pending := m.pending
	if pending == nil || pending.dialog.ID != id {
		return false
	}
	return m.Resolve(id, SafeDefault(pending.dialog.Kind))
}

// Pending returns the dialog currently waiting for an answer
func (m *DialogMediator) Pending() (Dialog, bool) {
	if m.pending == nil {
		return Dialog{}, false
	}
	return m.pending.dialog, true
}
