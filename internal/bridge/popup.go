package bridge

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
)

// maxForwardingSurfaces bounds the surfaces waiting for their first navigation; the oldest is
// dropped when a page opens more blank windows than that without navigating them
const maxForwardingSurfaces = 16

// PopupPolicy decides what happens to new browsing contexts
type PopupPolicy string

const (
	// PopupRedirect loads popups into the primary surface
	PopupRedirect PopupPolicy = "redirect"
	// PopupAllow lets the engine open a secondary surface
	PopupAllow PopupPolicy = "allow"
)

// ParsePopupPolicy validates a configured policy name
func ParsePopupPolicy(s string) (PopupPolicy, error) {
	switch p := PopupPolicy(s); p {
	case PopupRedirect, PopupAllow:
		return p, nil
	default:
		return "", fmt.Errorf("unknown popup policy %q", s)
	}
}

// Popup actions
const (
	PopupActionRedirected = "redirected"
	PopupActionForward    = "forward"
	PopupActionAllow      = "allow"
)

// PopupDecision tells the engine how to handle a popup
type PopupDecision struct {
	Action string `json:"action"`
	URL    string `json:"url,omitempty"`
	// SurfaceID names the forwarding surface whose first navigation must be reported back
	SurfaceID string `json:"surface_id,omitempty"`
}

// PopupBridge applies the popup policy
type PopupBridge struct {
	policy    PopupPolicy
	navigator Navigator
	logger    *slog.Logger
	surfaces  map[string]struct{}
	order     []string
}

// NewPopupBridge creates a bridge that redirects through navigator under PopupRedirect
func NewPopupBridge(policy PopupPolicy, navigator Navigator) *PopupBridge {
	return &PopupBridge{
		policy:    policy,
		navigator: navigator,
		logger:    slog.Default(),
		surfaces:  make(map[string]struct{}),
	}
}

// Request decides on a popup for targetURL, which may be empty when the page opens a blank
// window and navigates it later
func (b *PopupBridge) Request(targetURL string) PopupDecision {
	if b.policy == PopupAllow {
		return PopupDecision{Action: PopupActionAllow, URL: targetURL}
	}

	if targetURL != "" {
		b.logger.Info("Redirecting popup into primary surface", "url", targetURL)
		b.navigator.LoadURL(targetURL)
		return PopupDecision{Action: PopupActionRedirected, URL: targetURL}
	}

	if len(b.order) >= maxForwardingSurfaces {
		oldest := b.order[0]
		b.order = b.order[1:]
		delete(b.surfaces, oldest)
		b.logger.Warn("Dropping forwarding surface that never navigated", "surface_id", oldest)
	}

	id := uuid.NewString()
	b.surfaces[id] = struct{}{}
	b.order = append(b.order, id)
	b.logger.Debug("Created forwarding surface for popup", "surface_id", id)
	return PopupDecision{Action: PopupActionForward, SurfaceID: id}
}

// Pending reports how many forwarding surfaces are waiting for their first navigation
func (b *PopupBridge) Pending() int {
	return len(b.surfaces)
}

// Forward loads the first navigation of a forwarding surface into the primary surface.
// Each surface forwards once.
func (b *PopupBridge) Forward(surfaceID, url string) bool {
	if _, ok := b.surfaces[surfaceID]; !ok || url == "" {
		return false
	}

	delete(b.surfaces, surfaceID)
	b.order = slices.DeleteFunc(b.order, func(id string) bool { return id == surfaceID })
	b.logger.Info("Forwarding popup navigation into primary surface", "surface_id", surfaceID, "url", url)
	b.navigator.LoadURL(url)
	return true
}
