package settings

import (
	"errors"
	"testing"

	"webhost/internal/database"

	"github.com/stretchr/testify/require"
)

func newTestHome(t *testing.T) (*Home, *database.DB) {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewHome(db, "https://default.example"), db
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "bare host", raw: "example.com", want: "https://example.com"},
		{name: "trims whitespace", raw: "  example.com/path  ", want: "https://example.com/path"},
		{name: "keeps https", raw: "https://example.com", want: "https://example.com"},
		{name: "keeps http", raw: "http://intranet.local", want: "http://intranet.local"},
		{name: "scheme case insensitive", raw: "HTTPS://Example.com", want: "HTTPS://Example.com"},
		{name: "other scheme is prefixed", raw: "ftp://example.com", want: "https://ftp://example.com"},
		{name: "empty", raw: "", wantErr: ErrEmptyURL},
		{name: "blank", raw: " \t ", wantErr: ErrEmptyURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestHome_DefaultWhenUnset(t *testing.T) {
	home, _ := newTestHome(t)
	require.Equal(t, "https://default.example", home.URL())
	require.Equal(t, "https://default.example", home.DefaultURL())
	require.False(t, home.IsCustom())
}

func TestHome_SaveAndReset(t *testing.T) {
	home, db := newTestHome(t)

	saved, err := home.Save(" news.example.org ")
	require.NoError(t, err)
	require.Equal(t, "https://news.example.org", saved)
	require.Equal(t, "https://news.example.org", home.URL())
	require.True(t, home.IsCustom())

	stored, err := db.GetSetting(HomeURLKey)
	require.NoError(t, err)
	require.Equal(t, saved, stored)

	require.NoError(t, home.Reset())
	require.Equal(t, "https://default.example", home.URL())
	require.False(t, home.IsCustom())

	// Resetting twice is fine
	require.NoError(t, home.Reset())
}

func TestHome_SaveEmptyKeepsPrevious(t *testing.T) {
	home, _ := newTestHome(t)

	_, err := home.Save("first.example")
	require.NoError(t, err)

	_, err = home.Save("   ")
	require.ErrorIs(t, err, ErrEmptyURL)
	require.Equal(t, "https://first.example", home.URL())
}

type failingStore struct{}

func (failingStore) GetSetting(string) (string, error) { return "", errors.New("disk on fire") }
func (failingStore) SetSetting(string, string) error   { return errors.New("disk on fire") }
func (failingStore) DeleteSetting(string) error        { return errors.New("disk on fire") }

func TestHome_StoreFailures(t *testing.T) {
	home := NewHome(failingStore{}, "https://default.example")

	require.Equal(t, "https://default.example", home.URL())

	_, err := home.Save("example.com")
	require.ErrorContains(t, err, "failed to save home url")

	require.ErrorContains(t, home.Reset(), "failed to reset home url")
}
