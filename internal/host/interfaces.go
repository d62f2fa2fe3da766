package host

import (
	"webhost/internal/bridge"
	"webhost/internal/overlay"
)

// Navigator drives the primary browser surface
type Navigator interface {
	bridge.Navigator
	CanGoBack() bool
	GoBack()
}

// Notifier shows short transient messages
type Notifier interface {
	Notify(message string)
}

// SettingsPresenter shows the hidden settings dialog
type SettingsPresenter interface {
	ShowSettings(dialog SettingsDialog)
	HideSettings(id string)
}

// OverlayRenderer draws the download overlay
type OverlayRenderer interface {
	RenderOverlay(view overlay.View)
}

// UI is everything the host drives on the rendering side
type UI interface {
	Navigator
	Notifier
	SettingsPresenter
	OverlayRenderer
	bridge.Presenter
	bridge.Picker
	bridge.ViewHost
}
