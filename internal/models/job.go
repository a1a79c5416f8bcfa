package models

import "fmt"

// JobPosting represents one open position from the careers catalog.
// Fields holds the source record as-is (including "id"); only ID is interpreted.
type JobPosting struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// NewJobPosting builds a posting from a decoded record.
// ID stays empty when the record has no string "id".
func NewJobPosting(fields map[string]any) *JobPosting {
	job := &JobPosting{Fields: fields}
	if id, ok := fields["id"].(string); ok {
		job.ID = id
	}
	return job
}

// Field returns the named source attribute or nil
func (j *JobPosting) Field(name string) any {
	if j == nil || j.Fields == nil {
		return nil
	}
	return j.Fields[name]
}

// FieldString returns the named attribute formatted as text, "" when absent
func (j *JobPosting) FieldString(name string) string {
	v := j.Field(name)
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// Title is a shortcut for FieldString("title")
func (j *JobPosting) Title() string {
	return j.FieldString("title")
}
