package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ServanaApplication/servana-backend/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken reports a unique violation on sys_user_email.
var ErrEmailTaken = errors.New("email already in use")

// UserRepository defines interactions for system users (admins and agents).
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (models.SystemUser, error)
	GetByID(ctx context.Context, id int) (models.SystemUser, error)
	CreateAdmin(ctx context.Context, email, passwordHash string) (models.SystemUser, error)
	UpdateAdmin(ctx context.Context, id int, email string, passwordHash *string) error
	SetActive(ctx context.Context, id int, active bool) error
	ListAdmins(ctx context.Context) ([]models.SystemUser, error)
	ListAgentsWithDepartments(ctx context.Context) ([]models.AgentSummary, error)
	CreateAgent(ctx context.Context, email, passwordHash string, deptIDs []int) (int, error)
	UpdateAgent(ctx context.Context, id int, email string, passwordHash *string, active bool, deptIDs []int) error
	ChangeRole(ctx context.Context, id int, roleID int) error
	UpdateEmail(ctx context.Context, id int, email string) error
}

// UserRepo is a sqlx-backed implementation.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `sys_user_id, sys_user_email, sys_user_password, sys_user_is_active,
    role_id, prof_id, sys_user_created_at, sys_user_updated_at`

// GetByEmail resolves a system user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (models.SystemUser, error) {
	var u models.SystemUser
	err := r.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM system_user WHERE sys_user_email=$1`, email)
	if isNoRows(err) {
		return models.SystemUser{}, ErrUserNotFound
	}
	return u, err
}

// GetByID resolves a system user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int) (models.SystemUser, error) {
	var u models.SystemUser
	err := r.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM system_user WHERE sys_user_id=$1`, id)
	if isNoRows(err) {
		return models.SystemUser{}, ErrUserNotFound
	}
	return u, err
}

// CreateAdmin inserts an admin account.
func (r *UserRepo) CreateAdmin(ctx context.Context, email, passwordHash string) (models.SystemUser, error) {
	var u models.SystemUser
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO system_user (sys_user_email, sys_user_password, role_id)
         VALUES ($1, $2, $3)
         RETURNING `+userColumns,
		email, passwordHash, models.RoleAdmin).
		StructScan(&u)
	if isUniqueViolation(err) {
		return models.SystemUser{}, ErrEmailTaken
	}
	return u, err
}

// UpdateAdmin updates an admin's email and, when provided, password hash.
func (r *UserRepo) UpdateAdmin(ctx context.Context, id int, email string, passwordHash *string) error {
	var err error
	if passwordHash != nil {
		_, err = r.db.ExecContext(ctx,
			`UPDATE system_user SET sys_user_email=$1, sys_user_password=$2, sys_user_updated_at=NOW()
             WHERE sys_user_id=$3`,
			email, *passwordHash, id)
	} else {
		_, err = r.db.ExecContext(ctx,
			`UPDATE system_user SET sys_user_email=$1, sys_user_updated_at=NOW()
             WHERE sys_user_id=$2`,
			email, id)
	}
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// SetActive toggles an account without touching credentials.
func (r *UserRepo) SetActive(ctx context.Context, id int, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE system_user SET sys_user_is_active=$1, sys_user_updated_at=NOW()
         WHERE sys_user_id=$2`,
		active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListAdmins returns all admin accounts.
func (r *UserRepo) ListAdmins(ctx context.Context) ([]models.SystemUser, error) {
	users := make([]models.SystemUser, 0)
	err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM system_user WHERE role_id=$1 ORDER BY sys_user_id`,
		models.RoleAdmin)
	return users, err
}

// ListAgentsWithDepartments returns every agent with its department names.
func (r *UserRepo) ListAgentsWithDepartments(ctx context.Context) ([]models.AgentSummary, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT su.sys_user_id, su.sys_user_email, su.sys_user_is_active,
                COALESCE(array_agg(d.dept_name) FILTER (WHERE d.dept_name IS NOT NULL), '{}')
         FROM system_user su
         LEFT JOIN sys_user_department sud ON sud.sys_user_id = su.sys_user_id
         LEFT JOIN department d ON d.dept_id = sud.dept_id
         WHERE su.role_id=$1
         GROUP BY su.sys_user_id
         ORDER BY su.sys_user_id`,
		models.RoleAgent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := make([]models.AgentSummary, 0)
	for rows.Next() {
		var a models.AgentSummary
		var depts pq.StringArray
		if err := rows.Scan(&a.ID, &a.Email, &a.Active, &depts); err != nil {
			return nil, err
		}
		a.Departments = []string(depts)
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// CreateAgent inserts an agent account and its department assignments in one
// transaction.
func (r *UserRepo) CreateAgent(ctx context.Context, email, passwordHash string, deptIDs []int) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO system_user (sys_user_email, sys_user_password, role_id)
         VALUES ($1, $2, $3)
         RETURNING sys_user_id`,
		email, passwordHash, models.RoleAgent).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrEmailTaken
	}
	if err != nil {
		return 0, err
	}
	for _, deptID := range deptIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sys_user_department (sys_user_id, dept_id) VALUES ($1, $2)`,
			id, deptID); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit()
}

// UpdateAgent rewrites an agent's account fields and replaces its department
// assignments in one transaction.
func (r *UserRepo) UpdateAgent(ctx context.Context, id int, email string, passwordHash *string, active bool, deptIDs []int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if passwordHash != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE system_user SET sys_user_email=$1, sys_user_password=$2, sys_user_is_active=$3, sys_user_updated_at=NOW()
             WHERE sys_user_id=$4`,
			email, *passwordHash, active, id)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE system_user SET sys_user_email=$1, sys_user_is_active=$2, sys_user_updated_at=NOW()
             WHERE sys_user_id=$3`,
			email, active, id)
	}
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sys_user_department WHERE sys_user_id=$1`, id); err != nil {
		return err
	}
	for _, deptID := range deptIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sys_user_department (sys_user_id, dept_id) VALUES ($1, $2)`,
			id, deptID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ChangeRole moves a system user between the admin and agent roles.
func (r *UserRepo) ChangeRole(ctx context.Context, id int, roleID int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE system_user SET role_id=$1, sys_user_updated_at=NOW() WHERE sys_user_id=$2`,
		roleID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateEmail changes the login email only.
func (r *UserRepo) UpdateEmail(ctx context.Context, id int, email string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE system_user SET sys_user_email=$1, sys_user_updated_at=NOW() WHERE sys_user_id=$2`,
		email, id)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
