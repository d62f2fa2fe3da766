package bridge

import "log/slog"

// PermissionRequest is a page asking for geolocation or media capture
type PermissionRequest struct {
	Origin    string   `json:"origin"`
	Resources []string `json:"resources"`
}

// PermissionDecision lists which of the requested resources are granted
type PermissionDecision struct {
	Granted []string `json:"granted"`
	Denied  []string `json:"denied"`
}

// PermissionPolicy grants or denies every request
type PermissionPolicy struct {
	grant  bool
	logger *slog.Logger
}

// NewPermissionPolicy creates a grant-all policy when grant is true and deny-all otherwise
func NewPermissionPolicy(grant bool) *PermissionPolicy {
	return &PermissionPolicy{grant: grant, logger: slog.Default()}
}

// Decide answers req
func (p *PermissionPolicy) Decide(req PermissionRequest) PermissionDecision {
	decision := PermissionDecision{Granted: []string{}, Denied: []string{}}
	if p.grant {
		decision.Granted = append(decision.Granted, req.Resources...)
	} else {
		decision.Denied = append(decision.Denied, req.Resources...)
	}

	p.logger.Info("Permission request answered",
		"origin", req.Origin,
		"resources", req.Resources,
		"granted", p.grant)
	return decision
}
