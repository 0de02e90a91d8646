package models

import "time"

// Department groups agents and scopes macros and auto-replies.
type Department struct {
	ID        int       `db:"dept_id" json:"dept_id"`
	Name      string    `db:"dept_name" json:"dept_name"`
	IsActive  bool      `db:"dept_is_active" json:"dept_is_active"`
	CreatedAt time.Time `db:"dept_created_at" json:"created_at"`
	UpdatedAt time.Time `db:"dept_updated_at" json:"updated_at"`
}
