package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ServanaApplication/servana-backend/internal/models"
)

var ErrMacroNotFound = errors.New("macro not found")

// MacroRepository defines interactions for canned messages.
type MacroRepository interface {
	ListByRole(ctx context.Context, roleID int) ([]models.MacroWithDepartment, error)
	Create(ctx context.Context, message string, deptID *int, roleID int) (models.CannedMessage, error)
	Update(ctx context.Context, id int, message string, deptID *int) error
	SetActive(ctx context.Context, id int, active bool) error
}

// MacroRepo is a sqlx-backed implementation.
type MacroRepo struct {
	db *sqlx.DB
}

// NewMacroRepo constructs a MacroRepo.
func NewMacroRepo(db *sqlx.DB) *MacroRepo {
	return &MacroRepo{db: db}
}

const macroColumns = `canned_id, canned_message, canned_is_active, dept_id, role_id,
    canned_created_at, canned_updated_at`

// ListByRole returns the canned messages scoped to one role, joined with
// department names.
func (r *MacroRepo) ListByRole(ctx context.Context, roleID int) ([]models.MacroWithDepartment, error) {
	macros := make([]models.MacroWithDepartment, 0)
	err := r.db.SelectContext(ctx, &macros,
		`SELECT cm.canned_id, cm.canned_message, cm.canned_is_active, cm.dept_id, cm.role_id,
                cm.canned_created_at, cm.canned_updated_at, d.dept_name
         FROM canned_message cm
         LEFT JOIN department d ON d.dept_id = cm.dept_id
         WHERE cm.role_id=$1
         ORDER BY cm.canned_id`,
		roleID)
	return macros, err
}

// Create inserts a canned message. A nil deptID makes it global.
func (r *MacroRepo) Create(ctx context.Context, message string, deptID *int, roleID int) (models.CannedMessage, error) {
	var m models.CannedMessage
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO canned_message (canned_message, dept_id, role_id)
         VALUES ($1, $2, $3)
         RETURNING `+macroColumns,
		message, deptID, roleID).
		StructScan(&m)
	return m, err
}

// Update rewrites a canned message's text and department scope.
func (r *MacroRepo) Update(ctx context.Context, id int, message string, deptID *int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE canned_message SET canned_message=$1, dept_id=$2, canned_updated_at=NOW()
         WHERE canned_id=$3`,
		message, deptID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMacroNotFound
	}
	return nil
}

// SetActive toggles a canned message.
func (r *MacroRepo) SetActive(ctx context.Context, id int, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE canned_message SET canned_is_active=$1, canned_updated_at=NOW()
         WHERE canned_id=$2`,
		active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMacroNotFound
	}
	return nil
}
