package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ServanaApplication/servana-backend/internal/models"
)

var ErrAutoReplyNotFound = errors.New("auto reply not found")

// AutoReplyRepository defines interactions for automatic responses.
type AutoReplyRepository interface {
	List(ctx context.Context) ([]models.AutoReply, error)
	Create(ctx context.Context, message string, deptID *int) (models.AutoReply, error)
	Update(ctx context.Context, id int, message string, deptID *int) error
	SetActive(ctx context.Context, id int, active bool) error
}

// AutoReplyRepo is a sqlx-backed implementation.
type AutoReplyRepo struct {
	db *sqlx.DB
}

// NewAutoReplyRepo constructs an AutoReplyRepo.
func NewAutoReplyRepo(db *sqlx.DB) *AutoReplyRepo {
	return &AutoReplyRepo{db: db}
}

const autoReplyColumns = `auto_reply_id, auto_reply_message, auto_reply_is_active, dept_id,
    auto_reply_created_at, auto_reply_updated_at`

// List returns all auto replies.
func (r *AutoReplyRepo) List(ctx context.Context) ([]models.AutoReply, error) {
	replies := make([]models.AutoReply, 0)
	err := r.db.SelectContext(ctx, &replies,
		`SELECT `+autoReplyColumns+` FROM auto_reply ORDER BY auto_reply_id`)
	return replies, err
}

// Create inserts an auto reply.
func (r *AutoReplyRepo) Create(ctx context.Context, message string, deptID *int) (models.AutoReply, error) {
	var a models.AutoReply
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO auto_reply (auto_reply_message, dept_id)
         VALUES ($1, $2)
         RETURNING `+autoReplyColumns,
		message, deptID).
		StructScan(&a)
	return a, err
}

// Update rewrites an auto reply's text and department scope.
func (r *AutoReplyRepo) Update(ctx context.Context, id int, message string, deptID *int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE auto_reply SET auto_reply_message=$1, dept_id=$2, auto_reply_updated_at=NOW()
         WHERE auto_reply_id=$3`,
		message, deptID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAutoReplyNotFound
	}
	return nil
}

// SetActive toggles an auto reply.
func (r *AutoReplyRepo) SetActive(ctx context.Context, id int, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE auto_reply SET auto_reply_is_active=$1, auto_reply_updated_at=NOW()
         WHERE auto_reply_id=$2`,
		active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAutoReplyNotFound
	}
	return nil
}
