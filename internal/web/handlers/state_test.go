package handlers

import (
	"fmt"
	"testing"

	"webhost/internal/bridge"
	"webhost/internal/host"
	"webhost/internal/overlay"

	"github.com/stretchr/testify/require"
)

func TestUIState_History(t *testing.T) {
	ui := NewUIState()
	require.False(t, ui.CanGoBack())

	ui.LoadURL("https://a.example")
	ui.LoadURL("https://a.example")
	ui.Navigated("https://b.example")
	ui.Navigated("https://b.example")

	snap := ui.Snapshot()
	require.Equal(t, "https://b.example", snap.URL)
	require.Equal(t, int64(2), snap.Navigation)
	require.True(t, snap.CanGoBack)

	ui.GoBack()
	snap = ui.Snapshot()
	require.Equal(t, "https://a.example", snap.URL)
	require.Equal(t, int64(3), snap.Navigation)
	require.False(t, snap.CanGoBack)

	// Nothing to go back to
	ui.GoBack()
	require.Equal(t, int64(3), ui.Snapshot().Navigation)
}

func TestUIState_HistoryIsBounded(t *testing.T) {
	ui := NewUIState()

	for i := 0; i < maxHistory+25; i++ {
		ui.LoadURL(fmt.Sprintf("https://example.com/%d", i))
	}
	require.Len(t, ui.history, maxHistory)
	require.Equal(t, fmt.Sprintf("https://example.com/%d", maxHistory+24), ui.Snapshot().URL)

	for ui.CanGoBack() {
		ui.GoBack()
	}
	require.Equal(t, "https://example.com/25", ui.Snapshot().URL)
}

func TestUIState_DismissOnlyMatchingIDs(t *testing.T) {
	ui := NewUIState()

	ui.PresentDialog(bridge.Dialog{ID: "d1", Kind: bridge.Alert})
	ui.DismissDialog("other")
	require.NotNil(t, ui.Snapshot().Dialog)
	ui.DismissDialog("d1")
	require.Nil(t, ui.Snapshot().Dialog)

	ui.OpenPicker("p1", bridge.AcceptAll)
	ui.ClosePicker("other")
	require.NotNil(t, ui.Snapshot().Picker)
	ui.ClosePicker("p1")
	require.Nil(t, ui.Snapshot().Picker)

	ui.ShowSettings(host.SettingsDialog{ID: "s1"})
	ui.HideSettings("other")
	require.NotNil(t, ui.Snapshot().Settings)
	ui.HideSettings("s1")
	require.Nil(t, ui.Snapshot().Settings)
}

func TestUIState_Fullscreen(t *testing.T) {
	ui := NewUIState()

	ui.AttachFullscreen("video")
	ui.DetachFullscreen("other")
	require.Equal(t, "video", ui.Snapshot().Fullscreen)

	ui.DetachFullscreen("video")
	ui.MarkFullscreenHidden("video")
	snap := ui.Snapshot()
	require.Empty(t, snap.Fullscreen)
	require.Equal(t, "video", snap.FullscreenHidden)

	ui.AttachFullscreen("next")
	require.Empty(t, ui.Snapshot().FullscreenHidden)
}

func TestUIState_NoticesAreBounded(t *testing.T) {
	ui := NewUIState()
	for i := 0; i < maxNotices+3; i++ {
		ui.Notify(fmt.Sprintf("notice %d", i))
	}

	notices := ui.TakeNotices()
	require.Len(t, notices, maxNotices)
	require.Equal(t, "notice 3", notices[0].Message)
	require.Empty(t, ui.TakeNotices())
}

func TestUIState_SnapshotIsACopy(t *testing.T) {
	ui := NewUIState()
	require.Equal(t, overlay.Hidden, ui.Snapshot().Overlay.State)

	ui.PresentDialog(bridge.Dialog{ID: "d1", Message: "hi"})
	snap := ui.Snapshot()
	snap.Dialog.Message = "changed"
	require.Equal(t, "hi", ui.Snapshot().Dialog.Message)

	ui.RenderOverlay(overlay.View{State: overlay.Visible, Percent: 40})
	require.Equal(t, 40, ui.Snapshot().Overlay.Percent)
}
