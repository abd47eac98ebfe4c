package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	llmEventsTable   = "llm_request_events"
	batchEventsTable = "batch_events"
	sequenceTable    = "global_sequence"
)

var (
	// LLMRequestEventsColumns holds the columns for the "llm_request_events" table.
	LLMRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "batch_id", Type: field.TypeString, Default: ""},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LLMRequestEventsTable holds the schema information for the "llm_request_events" table.
	LLMRequestEventsTable = &schema.Table{
		Name:       llmEventsTable,
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{LLMRequestEventsColumns[2]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LLMRequestEventsColumns[5]}},
			{Name: "llmrequestevent_batch_id", Columns: []*schema.Column{LLMRequestEventsColumns[6]}},
		},
	}

	// BatchEventsColumns holds the columns for the "batch_events" table.
	BatchEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "batch_id", Type: field.TypeString, Unique: true},
		{Name: "source", Type: field.TypeString},
		{Name: "grade", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "subtopic", Type: field.TypeString, Default: ""},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "strategy", Type: field.TypeString},
		{Name: "requested", Type: field.TypeInt},
		{Name: "ok_count", Type: field.TypeInt, Default: 0},
		{Name: "malformed_count", Type: field.TypeInt, Default: 0},
		{Name: "failed_count", Type: field.TypeInt, Default: 0},
		{Name: "duration_ms", Type: field.TypeInt64, Default: 0},
	}
	// BatchEventsTable holds the schema information for the "batch_events" table.
	BatchEventsTable = &schema.Table{
		Name:       batchEventsTable,
		Columns:    BatchEventsColumns,
		PrimaryKey: []*schema.Column{BatchEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "batchevent_timestamp", Columns: []*schema.Column{BatchEventsColumns[2]}},
		},
	}

	// GlobalSequenceColumns holds the single-row counter shared by every event table.
	GlobalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	GlobalSequenceTable = &schema.Table{
		Name:       sequenceTable,
		Columns:    GlobalSequenceColumns,
		PrimaryKey: []*schema.Column{GlobalSequenceColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		LLMRequestEventsTable,
		BatchEventsTable,
		GlobalSequenceTable,
	}
)
