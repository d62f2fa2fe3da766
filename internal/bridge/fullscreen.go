package bridge

import "log/slog"

type fullscreenSession struct {
	view string
	hide *Responder[struct{}]
}

// FullscreenController tracks the single fullscreen media takeover
type FullscreenController struct {
	host    ViewHost
	logger  *slog.Logger
	session *fullscreenSession
}

// NewFullscreenController creates a controller that attaches views through host
func NewFullscreenController(host ViewHost) *FullscreenController {
	return &FullscreenController{
		host:   host,
		logger: slog.Default(),
	}
}

// Enter starts a session for view. hide is called exactly once when the session ends.
// It returns false, leaving the active session untouched, if one already exists.
func (c *FullscreenController) Enter(view string, hide func()) bool {
	if c.session != nil {
		c.logger.Warn("Fullscreen requested while a session is active", "active_view", c.session.view, "view", view)
		return false
	}

	c.session = &fullscreenSession{
		view: view,
		hide: NewResponder(func(struct{}) {
			if hide != nil {
				hide()
			}
		}),
	}
	c.host.AttachFullscreen(view)
	c.logger.Info("Entered fullscreen", "view", view)
	return true
}

// Exit ends the active session. It is a no-op without one.
func (c *FullscreenController) Exit() bool {
	session := c.session
	if session == nil {
		return false
	}

	c.session = nil
	c.host.DetachFullscreen(session.view)
	session.hide.Resolve(struct{}{})
	c.logger.Info("Exited fullscreen", "view", session.view)
	return true
}

// HandleBack exits fullscreen and reports whether the back press was consumed
func (c *FullscreenController) HandleBack() bool {
	return c.Exit()
}

// Active returns the view of the active session
func (c *FullscreenController) Active() (string, bool) {
	if c.session == nil {
		return "", false
	}
	return c.session.view, true
}
