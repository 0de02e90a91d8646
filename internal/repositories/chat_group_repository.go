package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ServanaApplication/servana-backend/internal/models"
)

var ErrChatGroupNotFound = errors.New("chat group not found")

// ErrDepartmentNotFound is returned when assigning a nonexistent department.
var ErrDepartmentNotFound = errors.New("department not found")

// ChatGroupRepository defines interactions for conversation threads.
type ChatGroupRepository interface {
	GetByID(ctx context.Context, id int) (models.ChatGroup, error)
	CreateOrGetForClient(ctx context.Context, clientID int) (models.ChatGroup, error)
	IDsForClient(ctx context.Context, clientID int) ([]int, error)
	ListWithClients(ctx context.Context) ([]models.GroupClientRow, error)
	ListUnassigned(ctx context.Context) ([]models.GroupClientRow, error)
	AssignDepartment(ctx context.Context, chatGroupID, deptID int) (models.ChatMessage, error)
}

// ChatGroupRepo is a sqlx-backed implementation.
type ChatGroupRepo struct {
	db *sqlx.DB
}

// NewChatGroupRepo constructs a ChatGroupRepo.
func NewChatGroupRepo(db *sqlx.DB) *ChatGroupRepo {
	return &ChatGroupRepo{db: db}
}

const groupColumns = `chat_group_id, client_id, dept_id, sys_user_id, chat_group_created_at`

// GetByID resolves a chat group.
func (r *ChatGroupRepo) GetByID(ctx context.Context, id int) (models.ChatGroup, error) {
	var g models.ChatGroup
	err := r.db.GetContext(ctx, &g,
		`SELECT `+groupColumns+` FROM chat_group WHERE chat_group_id=$1`, id)
	if isNoRows(err) {
		return models.ChatGroup{}, ErrChatGroupNotFound
	}
	return g, err
}

// CreateOrGetForClient returns the client's conversation thread, creating it
// on first login. Concurrent logins race on the insert; the unique client_id
// constraint makes the loser fall through to the select.
func (r *ChatGroupRepo) CreateOrGetForClient(ctx context.Context, clientID int) (models.ChatGroup, error) {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_group (client_id) VALUES ($1)
         ON CONFLICT (client_id) DO NOTHING`,
		clientID); err != nil {
		return models.ChatGroup{}, err
	}
	var g models.ChatGroup
	err := r.db.GetContext(ctx, &g,
		`SELECT `+groupColumns+` FROM chat_group WHERE client_id=$1`, clientID)
	if isNoRows(err) {
		return models.ChatGroup{}, ErrChatGroupNotFound
	}
	return g, err
}

// IDsForClient lists the chat group IDs a client belongs to.
func (r *ChatGroupRepo) IDsForClient(ctx context.Context, clientID int) ([]int, error) {
	ids := make([]int, 0, 1)
	err := r.db.SelectContext(ctx, &ids,
		`SELECT chat_group_id FROM chat_group WHERE client_id=$1`, clientID)
	return ids, err
}

const groupClientJoin = `SELECT cg.chat_group_id, d.dept_name, c.client_id, c.client_number,
        c.prof_id, p.prof_firstname, p.prof_lastname
    FROM chat_group cg
    JOIN client c ON c.client_id = cg.client_id
    LEFT JOIN department d ON d.dept_id = cg.dept_id
    LEFT JOIN profile p ON p.prof_id = c.prof_id`

// ListWithClients returns every client conversation joined with department
// and profile data, newest first.
func (r *ChatGroupRepo) ListWithClients(ctx context.Context) ([]models.GroupClientRow, error) {
	rows := make([]models.GroupClientRow, 0)
	err := r.db.SelectContext(ctx, &rows,
		groupClientJoin+` ORDER BY cg.chat_group_created_at DESC`)
	return rows, err
}

// ListUnassigned returns conversations still waiting for an agent.
func (r *ChatGroupRepo) ListUnassigned(ctx context.Context) ([]models.GroupClientRow, error) {
	rows := make([]models.GroupClientRow, 0)
	err := r.db.SelectContext(ctx, &rows,
		groupClientJoin+` WHERE cg.sys_user_id IS NULL ORDER BY cg.chat_group_created_at DESC`)
	return rows, err
}

// AssignDepartment routes a conversation to a department and records a system
// notice carrying the department name, atomically. The notice row is returned
// for relay to the room.
func (r *ChatGroupRepo) AssignDepartment(ctx context.Context, chatGroupID, deptID int) (models.ChatMessage, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.ChatMessage{}, err
	}
	defer tx.Rollback()

	var deptName string
	err = tx.GetContext(ctx, &deptName,
		`SELECT dept_name FROM department WHERE dept_id=$1`, deptID)
	if isNoRows(err) {
		return models.ChatMessage{}, ErrDepartmentNotFound
	}
	if err != nil {
		return models.ChatMessage{}, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE chat_group SET dept_id=$1 WHERE chat_group_id=$2`,
		deptID, chatGroupID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ChatMessage{}, ErrChatGroupNotFound
	}

	var notice models.ChatMessage
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO chat (chat_group_id, chat_body)
         VALUES ($1, $2)
         RETURNING chat_id, chat_group_id, sys_user_id, client_id, chat_body, chat_created_at`,
		chatGroupID, deptName).
		StructScan(&notice)
	if err != nil {
		return models.ChatMessage{}, err
	}
	return notice, tx.Commit()
}
