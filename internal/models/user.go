package models

import "time"

// Role identifiers seeded by the migrations.
const (
	RoleAdmin  = 1
	RoleClient = 2
	RoleAgent  = 3
)

// SystemUser is an internal account: admin or agent.
type SystemUser struct {
	ID           int       `db:"sys_user_id" json:"sys_user_id"`
	Email        string    `db:"sys_user_email" json:"sys_user_email"`
	PasswordHash string    `db:"sys_user_password" json:"-"`
	IsActive     bool      `db:"sys_user_is_active" json:"sys_user_is_active"`
	RoleID       int       `db:"role_id" json:"role_id"`
	ProfID       *int      `db:"prof_id" json:"prof_id,omitempty"`
	CreatedAt    time.Time `db:"sys_user_created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"sys_user_updated_at" json:"updated_at"`
}

// AgentSummary is an agent row with its department names for the management
// console.
type AgentSummary struct {
	ID          int      `json:"id"`
	Email       string   `json:"email"`
	Active      bool     `json:"active"`
	Departments []string `json:"departments"`
}
