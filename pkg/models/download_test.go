package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJobState_Constants(t *testing.T) {
	require.Equal(t, JobState("pending"), JobPending)
	require.Equal(t, JobState("running"), JobRunning)
	require.Equal(t, JobState("succeeded"), JobSucceeded)
	require.Equal(t, JobState("failed"), JobFailed)
}

func TestJobState_IsActive(t *testing.T) {
	tests := []struct {
		state    JobState
		active   bool
		terminal bool
	}{
		{JobPending, true, false},
		{JobRunning, true, false},
		{JobSucceeded, false, true},
		{JobFailed, false, true},
		{JobState(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			require.Equal(t, tt.active, tt.state.IsActive())
			require.Equal(t, tt.terminal, tt.state.IsTerminal())
		})
	}
}

func TestTransfer_Snapshot(t *testing.T) {
	transfer := &Transfer{
		ID:              7,
		Filename:        "report.pdf",
		Status:          JobFailed,
		BytesDownloaded: 50,
		TotalBytes:      200,
		ErrorMessage:    "server returned status 404",
	}

	snapshot := transfer.Snapshot()
	require.Equal(t, JobFailed, snapshot.State)
	require.Equal(t, int64(50), snapshot.BytesDownloaded)
	require.Equal(t, int64(200), snapshot.TotalBytes)
	require.Equal(t, "server returned status 404", snapshot.Reason)
}

func TestTransfer_TempFilename(t *testing.T) {
	transfer := &Transfer{ID: 42, Filename: "video.mp4"}
	require.Equal(t, "video.mp4.42.tmp", transfer.TempFilename())
}

func TestDownloadRequest_JSONFields(t *testing.T) {
	raw := `{"url":"https://example.com/a.zip","user_agent":"UA","content_disposition":"attachment","mime_type":"application/zip","cookie_header":"a=b"}`

	var req DownloadRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	require.Equal(t, "https://example.com/a.zip", req.URL)
	require.Equal(t, "UA", req.UserAgent)
	require.Equal(t, "attachment", req.ContentDisposition)
	require.Equal(t, "application/zip", req.MimeType)
	require.Equal(t, "a=b", req.CookieHeader)
}
