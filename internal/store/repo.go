package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a single-event lookup matches nothing.
var ErrNotFound = errors.New("event not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // completion events only
	BatchID string    // completion events only
}

// LLMRequestEventData captures the data for a single completion call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	BatchID      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a recorded completion call.
type LLMRequestEvent struct {
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates completion calls under one key (purpose or model).
type LLMUsage struct {
	Key          string
	Calls        int
	Failures     int
	InputTokens  int64
	OutputTokens int64
	AvgLatencyMs float64
}

// BatchEventData summarizes one generation batch.
type BatchEventData struct {
	BatchID        string
	Source         string // cli, web, tui
	Grade          string
	Topic          string
	Subtopic       string
	Difficulty     string
	Strategy       string
	Requested      int
	OKCount        int
	MalformedCount int
	FailedCount    int
	DurationMs     int64
}

// BatchEvent is a recorded generation batch.
type BatchEvent struct {
	Sequence  int64
	Timestamp time.Time
	BatchEventData
}

// EventRepo provides append and query access to the audit log.
type EventRepo interface {
	// AppendLLMRequest records a completion call.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns completion calls, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns a single completion call by sequence.
	GetLLMEvent(ctx context.Context, sequence int64) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates completion calls per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates completion calls per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// AppendBatchEvent records a finished generation batch.
	AppendBatchEvent(ctx context.Context, data BatchEventData) error

	// QueryBatchEvents returns generation batches, newest first.
	QueryBatchEvents(ctx context.Context, opts QueryOpts) ([]BatchEvent, error)
}
