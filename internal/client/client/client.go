package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/syncapi"
)

type Client interface {
	Ping(ctx context.Context) error
	Pull(ctx context.Context, since *time.Time) (*syncapi.PullResponse, error)
	Push(ctx context.Context, req *syncapi.PushRequest) (*syncapi.PushResponse, error)
	Usage(ctx context.Context, action string) (*syncapi.QuotaResponse, error)
	Export(ctx context.Context) (*syncapi.ExportResponse, error)
}
