package async

import (
	"context"
	"errors"
	"time"

	"github.com/DanielDi/agent-tech-mining/internal/entity"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document of a batch. Index is its position in batch order.
type Job struct {
	Index       int
	Document    entity.SourceDocument
	SubmittedAt time.Time
	TraceID     string
}

// Result carries what a worker produced for a Job.
type Result struct {
	Job     Job
	Record  entity.Record
	Err     error
	Elapsed time.Duration
}

// Processor turns one job into a raw record.
type Processor interface {
	Process(ctx context.Context, job Job) (entity.Record, error)
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc func(ctx context.Context, job Job) (entity.Record, error)

func (f ProcessorFunc) Process(ctx context.Context, job Job) (entity.Record, error) {
	return f(ctx, job)
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Results() <-chan Result
	Shutdown(ctx context.Context)
}
