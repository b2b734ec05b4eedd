package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableSubmissions = "submissions"
	tableLLMEvents   = "llm_request_events"
	tableAlertEvents = "alert_events"
	tableSequence    = "global_sequence"
)

func str(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString, Default: ""}
}

func integer(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeInt, Default: 0}
}

func boolean(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeBool, Default: false}
}

func timestamp(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeTime}
}

// eventTable returns a table with the columns every append-only event
// shares: an autoincrement id, the global sequence and a timestamp.
func eventTable(name string) *schema.Table {
	return schema.NewTable(name).
		AddPrimary(&schema.Column{Name: "id", Type: field.TypeInt, Increment: true}).
		AddColumn(&schema.Column{Name: "sequence", Type: field.TypeInt64, Unique: true}).
		AddColumn(timestamp("timestamp"))
}

func tables() []*schema.Table {
	submissions := schema.NewTable(tableSubmissions).
		AddPrimary(&schema.Column{Name: "id", Type: field.TypeString, Size: 36}).
		AddColumn(str("student_id")).
		AddColumn(str("mood_text")).
		AddColumn(str("mood_color")).
		AddColumn(integer("color_r")).
		AddColumn(integer("color_g")).
		AddColumn(integer("color_b")).
		AddColumn(str("status")).
		AddColumn(str("truthfulness")).
		AddColumn(str("reasoning")).
		AddColumn(str("recommendation")).
		AddColumn(boolean("alert_caretaker")).
		AddColumn(boolean("alerted")).
		AddColumn(str("summary")).
		AddColumn(str("answers")).
		AddColumn(str("failure")).
		AddColumn(timestamp("submitted_at")).
		AddColumn(timestamp("updated_at"))
	submissions.AddIndex("submission_student_id", false, []string{"student_id"})
	submissions.AddIndex("submission_status", false, []string{"status"})
	submissions.AddIndex("submission_submitted_at", false, []string{"submitted_at"})

	llmEvents := eventTable(tableLLMEvents).
		AddColumn(str("provider")).
		AddColumn(str("model")).
		AddColumn(str("purpose")).
		AddColumn(integer("input_tokens")).
		AddColumn(integer("output_tokens")).
		AddColumn(&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0}).
		AddColumn(boolean("success")).
		AddColumn(str("error_message")).
		AddColumn(str("request_body")).
		AddColumn(str("response_body"))
	llmEvents.AddIndex("llmrequestevent_purpose", false, []string{"purpose"})
	llmEvents.AddIndex("llmrequestevent_model", false, []string{"model"})

	alertEvents := eventTable(tableAlertEvents).
		AddColumn(str("student")).
		AddColumn(str("recipient")).
		AddColumn(str("body")).
		AddColumn(str("outcome")).
		AddColumn(str("message_id")).
		AddColumn(str("error_message"))
	alertEvents.AddIndex("alertevent_outcome", false, []string{"outcome"})

	sequence := schema.NewTable(tableSequence).
		AddPrimary(&schema.Column{Name: "id", Type: field.TypeInt}).
		AddColumn(&schema.Column{Name: "next_val", Type: field.TypeInt64, Default: 1})

	return []*schema.Table{submissions, llmEvents, alertEvents, sequence}
}
