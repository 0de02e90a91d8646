package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ServanaApplication/servana-backend/internal/models"
)

// SenderRef attributes a chat row to its author. Both fields nil produces a
// system notice.
type SenderRef struct {
	SysUserID *int
	ClientID  *int
}

// AgentSender builds a SenderRef for an agent-authored row.
func AgentSender(sysUserID int) SenderRef {
	return SenderRef{SysUserID: &sysUserID}
}

// ClientSender builds a SenderRef for a client-authored row.
func ClientSender(clientID int) SenderRef {
	return SenderRef{ClientID: &clientID}
}

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, chatGroupID int, sender SenderRef, body string) (models.ChatMessage, error)
	ListByGroup(ctx context.Context, chatGroupID int, before *time.Time, limit int) ([]models.ChatMessage, error)
	ListAscending(ctx context.Context, chatGroupID int) ([]models.ChatMessage, error)
	LatestAgentProfile(ctx context.Context, chatGroupID int) (*models.Profile, error)
}

// MessageRepo is a sqlx-backed implementation.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create persists a chat row and returns it with ID and timestamp populated.
func (r *MessageRepo) Create(ctx context.Context, chatGroupID int, sender SenderRef, body string) (models.ChatMessage, error) {
	var msg models.ChatMessage
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO chat (chat_group_id, sys_user_id, client_id, chat_body)
         VALUES ($1, $2, $3, $4)
         RETURNING chat_id, chat_group_id, sys_user_id, client_id, chat_body, chat_created_at`,
		chatGroupID, sender.SysUserID, sender.ClientID, body).
		StructScan(&msg)
	return msg, err
}

// ListByGroup returns messages newest first, at most limit rows, optionally
// bounded to rows strictly older than before. Callers reverse for display.
func (r *MessageRepo) ListByGroup(ctx context.Context, chatGroupID int, before *time.Time, limit int) ([]models.ChatMessage, error) {
	msgs := make([]models.ChatMessage, 0, limit)
	var err error
	if before != nil {
		err = r.db.SelectContext(ctx, &msgs,
			`SELECT chat_id, chat_group_id, sys_user_id, client_id, chat_body, chat_created_at
             FROM chat
             WHERE chat_group_id=$1 AND chat_created_at < $2
             ORDER BY chat_created_at DESC
             LIMIT $3`,
			chatGroupID, *before, limit)
	} else {
		err = r.db.SelectContext(ctx, &msgs,
			`SELECT chat_id, chat_group_id, sys_user_id, client_id, chat_body, chat_created_at
             FROM chat
             WHERE chat_group_id=$1
             ORDER BY chat_created_at DESC
             LIMIT $2`,
			chatGroupID, limit)
	}
	return msgs, err
}

// ListAscending returns a group's full history oldest first.
func (r *MessageRepo) ListAscending(ctx context.Context, chatGroupID int) ([]models.ChatMessage, error) {
	msgs := make([]models.ChatMessage, 0)
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT chat_id, chat_group_id, sys_user_id, client_id, chat_body, chat_created_at
         FROM chat
         WHERE chat_group_id=$1
         ORDER BY chat_created_at ASC`,
		chatGroupID)
	return msgs, err
}

// LatestAgentProfile returns the profile of the agent who most recently wrote
// in the group, or nil when no agent has responded yet.
func (r *MessageRepo) LatestAgentProfile(ctx context.Context, chatGroupID int) (*models.Profile, error) {
	var prof models.Profile
	err := r.db.GetContext(ctx, &prof,
		`SELECT p.prof_id, p.prof_firstname, p.prof_middlename, p.prof_lastname,
                p.prof_address, p.prof_date_of_birth, p.prof_created_at, p.prof_updated_at
         FROM chat c
         JOIN system_user su ON su.sys_user_id = c.sys_user_id
         JOIN profile p ON p.prof_id = su.prof_id
         WHERE c.chat_group_id=$1 AND c.sys_user_id IS NOT NULL
         ORDER BY c.chat_created_at DESC
         LIMIT 1`,
		chatGroupID)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prof, nil
}
