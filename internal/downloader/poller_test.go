package downloader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"webhost/internal/downloader/mocks"
	"webhost/internal/eventloop"
	"webhost/pkg/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func startLoop(t *testing.T) *eventloop.Loop {
	t.Helper()
	loop := eventloop.New(64)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(cancel)
	return loop
}

type sampleRecorder struct {
	mu      sync.Mutex
	samples []Sample
}

func (r *sampleRecorder) deliver(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
}

func (r *sampleRecorder) get() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sample(nil), r.samples...)
}

func TestNewPoller_DefaultInterval(t *testing.T) {
	poller := NewPoller(nil, nil, 0)
	require.Equal(t, DefaultPollInterval, poller.interval)
	require.NotNil(t, poller.logger)
}

func TestPoller_StopsAfterTerminalStatus(t *testing.T) {
	loop := startLoop(t)
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)

	gomock.InOrder(
		transport.EXPECT().QueryStatus(gomock.Any(), int64(3)).
			Return(&models.TransferStatus{State: models.JobPending}, nil),
		transport.EXPECT().QueryStatus(gomock.Any(), int64(3)).
			Return(&models.TransferStatus{State: models.JobRunning, BytesDownloaded: 50, TotalBytes: 200}, nil),
		transport.EXPECT().QueryStatus(gomock.Any(), int64(3)).
			Return(&models.TransferStatus{State: models.JobSucceeded, BytesDownloaded: 200, TotalBytes: 200}, nil),
	)

	recorder := &sampleRecorder{}
	poller := NewPoller(transport, loop, 5*time.Millisecond)
	poller.Start(3, recorder.deliver)

	require.Eventually(t, func() bool { return len(recorder.get()) == 3 }, time.Second, 5*time.Millisecond)

	// No further reads are scheduled after the terminal sample
	time.Sleep(30 * time.Millisecond)
	samples := recorder.get()
	require.Len(t, samples, 3)
	require.Equal(t, models.JobSucceeded, samples[2].Status.State)
}

func TestPoller_TransientFailuresAreRescheduled(t *testing.T) {
	loop := startLoop(t)
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)

	gomock.InOrder(
		transport.EXPECT().QueryStatus(gomock.Any(), int64(1)).Return(nil, errors.New("no row yet")),
		transport.EXPECT().QueryStatus(gomock.Any(), int64(1)).Return(nil, nil),
		transport.EXPECT().QueryStatus(gomock.Any(), int64(1)).
			Return(&models.TransferStatus{State: models.JobFailed, Reason: "disk full"}, nil),
	)

	recorder := &sampleRecorder{}
	NewPoller(transport, loop, 5*time.Millisecond).Start(1, recorder.deliver)

	require.Eventually(t, func() bool { return len(recorder.get()) == 3 }, time.Second, 5*time.Millisecond)
	samples := recorder.get()
	require.Error(t, samples[0].Err)
	require.Nil(t, samples[1].Status)
	require.Equal(t, "disk full", samples[2].Status.Reason)
}

func TestPoller_StopDropsQueuedSample(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	dispatch := mocks.NewMockDispatcher(ctrl)

	transport.EXPECT().QueryStatus(gomock.Any(), int64(9)).
		Return(&models.TransferStatus{State: models.JobRunning, BytesDownloaded: 1, TotalBytes: 2}, nil).
		AnyTimes()

	posted := make(chan func(), 16)
	dispatch.EXPECT().Post(gomock.Any()).Do(func(fn func()) { posted <- fn }).MinTimes(1)

	delivered := 0
	stop := NewPoller(transport, dispatch, time.Hour).Start(9, func(Sample) { delivered++ })

	var queued func()
	select {
	case queued = <-posted:
	case <-time.After(time.Second):
		t.Fatal("no sample was posted")
	}

	// The sample was posted before stop but runs after it
	stop()
	queued()
	require.Equal(t, 0, delivered)
}

func TestPoller_ReadsAreSequential(t *testing.T) {
	loop := startLoop(t)
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)

	var mu sync.Mutex
	inFlight, maxInFlight, reads := 0, 0, 0

	transport.EXPECT().QueryStatus(gomock.Any(), int64(5)).DoAndReturn(
		func(ctx context.Context, id int64) (*models.TransferStatus, error) {
			mu.Lock()
			inFlight++
			reads++
			maxInFlight = max(maxInFlight, inFlight)
			done := reads >= 5
			mu.Unlock()

			// Slower than the interval: a fire-and-forget scheduler would overlap here
			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()

			if done {
				return &models.TransferStatus{State: models.JobSucceeded}, nil
			}
			return &models.TransferStatus{State: models.JobRunning}, nil
		}).Times(5)

	recorder := &sampleRecorder{}
	NewPoller(transport, loop, time.Millisecond).Start(5, recorder.deliver)

	require.Eventually(t, func() bool { return len(recorder.get()) == 5 }, 2*time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, maxInFlight)
}
