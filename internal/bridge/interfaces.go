package bridge

// Presenter shows and withdraws JavaScript dialogs in the UI
//
//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks
type Presenter interface {
	PresentDialog(dialog Dialog)
	DismissDialog(id string)
}

// Picker opens and closes the native file picker
type Picker interface {
	OpenPicker(id string, accept string)
	ClosePicker(id string)
}

// ViewHost attaches a fullscreen media view over the main surface and removes it again
type ViewHost interface {
	AttachFullscreen(view string)
	DetachFullscreen(view string)
}

// Navigator loads a URL into the primary browser surface
type Navigator interface {
	LoadURL(url string)
}
