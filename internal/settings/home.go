// Package settings stores the user-configurable home page
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"webhost/internal/database"
)

// HomeURLKey is the settings key of the home page
const HomeURLKey = "home_url"

// ErrEmptyURL is returned when saving a blank home page
var ErrEmptyURL = errors.New("home url is empty")

// Store is the persistence the home page needs
type Store interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

// Home reads and writes the home page, falling back to a configured default
type Home struct {
	store      Store
	defaultURL string
	logger     *slog.Logger
}

// NewHome creates a home page setting backed by store
func NewHome(store Store, defaultURL string) *Home {
	return &Home{
		store:      store,
		defaultURL: defaultURL,
		logger:     slog.Default(),
	}
}

// DefaultURL returns the configured fallback
func (h *Home) DefaultURL() string {
	return h.defaultURL
}

// URL returns the saved home page or the default when none is saved or it cannot be read
func (h *Home) URL() string {
	value, err := h.store.GetSetting(HomeURLKey)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			h.logger.Warn("Failed to read home url, using default", "error", err)
		}
		return h.defaultURL
	}
	return value
}

// IsCustom reports whether a home page other than the default is saved
func (h *Home) IsCustom() bool {
	_, err := h.store.GetSetting(HomeURLKey)
	return err == nil
}

// Save normalizes raw and stores it, returning the stored value
func (h *Home) Save(raw string) (string, error) {
	value, err := NormalizeURL(raw)
	if err != nil {
		return "", err
	}

	if err := h.store.SetSetting(HomeURLKey, value); err != nil {
		return "", fmt.Errorf("failed to save home url: %w", err)
	}

	h.logger.Info("Home url saved", "url", value)
	return value, nil
}

// Reset removes the saved home page so the default applies again
func (h *Home) Reset() error {
	if err := h.store.DeleteSetting(HomeURLKey); err != nil {
		return fmt.Errorf("failed to reset home url: %w", err)
	}

	h.logger.Info("Home url reset to default", "url", h.defaultURL)
	return nil
}

// NormalizeURL trims raw and adds https:// when it has no http or https scheme
func NormalizeURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", ErrEmptyURL
	}

	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		value = "https://" + value
	}
	return value, nil
}
