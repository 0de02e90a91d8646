package models

import "time"

// CannedMessage is a predefined reply template ("macro"). RoleID scopes it to
// either the agent console or the client app; DeptID nil means all
// departments.
type CannedMessage struct {
	ID        int       `db:"canned_id" json:"canned_id"`
	Message   string    `db:"canned_message" json:"canned_message"`
	IsActive  bool      `db:"canned_is_active" json:"canned_is_active"`
	DeptID    *int      `db:"dept_id" json:"dept_id,omitempty"`
	RoleID    int       `db:"role_id" json:"role_id"`
	CreatedAt time.Time `db:"canned_created_at" json:"created_at"`
	UpdatedAt time.Time `db:"canned_updated_at" json:"updated_at"`
}

// MacroWithDepartment is a canned message joined with its department name.
type MacroWithDepartment struct {
	CannedMessage
	DeptName *string `db:"dept_name" json:"dept_name,omitempty"`
}

// AutoReply is an automatic response configured per department.
type AutoReply struct {
	ID        int       `db:"auto_reply_id" json:"auto_reply_id"`
	Message   string    `db:"auto_reply_message" json:"auto_reply_message"`
	IsActive  bool      `db:"auto_reply_is_active" json:"auto_reply_is_active"`
	DeptID    *int      `db:"dept_id" json:"dept_id,omitempty"`
	CreatedAt time.Time `db:"auto_reply_created_at" json:"created_at"`
	UpdatedAt time.Time `db:"auto_reply_updated_at" json:"updated_at"`
}
