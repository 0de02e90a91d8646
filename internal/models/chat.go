package models

import "time"

// ChatGroup is a single conversation thread between one client and the
// department/agent assigned to it. Department and agent start out unassigned.
type ChatGroup struct {
	ID        int       `db:"chat_group_id" json:"chat_group_id"`
	ClientID  *int      `db:"client_id" json:"client_id,omitempty"`
	DeptID    *int      `db:"dept_id" json:"dept_id,omitempty"`
	SysUserID *int      `db:"sys_user_id" json:"sys_user_id,omitempty"`
	CreatedAt time.Time `db:"chat_group_created_at" json:"created_at"`
}

// ChatMessage is one immutable chat row. At most one of SysUserID/ClientID is
// set: an agent-authored message carries SysUserID, a client-authored message
// carries ClientID, and a system notice (department assignment) carries
// neither.
type ChatMessage struct {
	ID          int       `db:"chat_id" json:"chat_id"`
	ChatGroupID int       `db:"chat_group_id" json:"chat_group_id"`
	SysUserID   *int      `db:"sys_user_id" json:"sys_user_id,omitempty"`
	ClientID    *int      `db:"client_id" json:"client_id,omitempty"`
	Body        string    `db:"chat_body" json:"chat_body"`
	CreatedAt   time.Time `db:"chat_created_at" json:"chat_created_at"`
}

// Sender reports display attribution: "user" for agent-authored rows,
// "system" otherwise.
func (m ChatMessage) Sender() string {
	if m.SysUserID != nil {
		return "user"
	}
	return "system"
}

// GroupCustomer is the customer block inside a chat-group listing entry.
type GroupCustomer struct {
	ID          int     `json:"id"`
	ChatGroupID int     `json:"chat_group_id"`
	Name        string  `json:"name"`
	Number      string  `json:"number"`
	Profile     *string `json:"profile"`
}

// GroupSummary is the agent-console view of a chat group: group, department
// name, and the client with their resolved profile image.
type GroupSummary struct {
	ChatGroupID   int           `json:"chat_group_id"`
	ChatGroupName string        `json:"chat_group_name"`
	Department    string        `json:"department"`
	Customer      GroupCustomer `json:"customer"`
}

// GroupClientRow is the raw join row behind GroupSummary, before image
// resolution.
type GroupClientRow struct {
	ChatGroupID int     `db:"chat_group_id"`
	DeptName    *string `db:"dept_name"`
	ClientID    int     `db:"client_id"`
	Number      string  `db:"client_number"`
	ProfID      *int    `db:"prof_id"`
	FirstName   *string `db:"prof_firstname"`
	LastName    *string `db:"prof_lastname"`
}
