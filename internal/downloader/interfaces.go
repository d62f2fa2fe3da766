package downloader

import (
	"context"

	"webhost/pkg/models"
)

// Transport is the platform download service the coordinator drives
//
//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks
type Transport interface {
	// Enqueue opens a transport job and returns its handle
	Enqueue(ctx context.Context, req models.TransferRequest) (int64, error)

	// QueryStatus reads the current status of a job. It may block and is never called on the event loop.
	QueryStatus(ctx context.Context, id int64) (*models.TransferStatus, error)

	// Cancel aborts a job
	Cancel(id int64) error
}

// Dispatcher marshals a closure onto the host event loop
type Dispatcher interface {
	Post(fn func())
}
