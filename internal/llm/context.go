package llm

import "context"

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	batchKey   contextKey = "llm_batch"
)

// Purposes recorded with each completion call.
const (
	PurposeProblem  = "problem-gen"
	PurposePlan     = "theme-plan"
	PurposeFollowUp = "follow-up"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithBatch tags calls made on behalf of a generation batch.
func WithBatch(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchKey, batchID)
}

// BatchFrom returns the batch ID attached to ctx, or "".
func BatchFrom(ctx context.Context) string {
	if v, ok := ctx.Value(batchKey).(string); ok {
		return v
	}
	return ""
}
