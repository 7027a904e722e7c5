//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// AuditEntry records one field change made by a workflow step.
type AuditEntry struct {
	ID        int64     `json:"id"                  db:"id"`
	JobID     string    `json:"job_id"              db:"job_id"`
	Field     string    `json:"field"               db:"field"`
	OldValue  *string   `json:"old_value,omitempty" db:"old_value"`
	NewValue  *string   `json:"new_value,omitempty" db:"new_value"`
	Actor     string    `json:"actor"               db:"actor"`
	CreatedAt time.Time `json:"created_at"          db:"created_at"`
}
