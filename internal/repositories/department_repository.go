package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ServanaApplication/servana-backend/internal/models"
)

// DepartmentRepository defines interactions for departments.
type DepartmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	GetByName(ctx context.Context, name string) (models.Department, error)
	Create(ctx context.Context, name string) (models.Department, error)
	Update(ctx context.Context, id int, name string) error
	SetActive(ctx context.Context, id int, active bool) error
}

// DepartmentRepo is a sqlx-backed implementation.
type DepartmentRepo struct {
	db *sqlx.DB
}

// NewDepartmentRepo constructs a DepartmentRepo.
func NewDepartmentRepo(db *sqlx.DB) *DepartmentRepo {
	return &DepartmentRepo{db: db}
}

const deptColumns = `dept_id, dept_name, dept_is_active, dept_created_at, dept_updated_at`

// List returns all departments ordered by name.
func (r *DepartmentRepo) List(ctx context.Context) ([]models.Department, error) {
	depts := make([]models.Department, 0)
	err := r.db.SelectContext(ctx, &depts,
		`SELECT `+deptColumns+` FROM department ORDER BY dept_name`)
	return depts, err
}

// GetByName resolves a department by its exact name.
func (r *DepartmentRepo) GetByName(ctx context.Context, name string) (models.Department, error) {
	var d models.Department
	err := r.db.GetContext(ctx, &d,
		`SELECT `+deptColumns+` FROM department WHERE dept_name=$1`, name)
	if isNoRows(err) {
		return models.Department{}, ErrDepartmentNotFound
	}
	return d, err
}

// Create inserts a department.
func (r *DepartmentRepo) Create(ctx context.Context, name string) (models.Department, error) {
	var d models.Department
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO department (dept_name) VALUES ($1) RETURNING `+deptColumns, name).
		StructScan(&d)
	return d, err
}

// Update renames a department.
func (r *DepartmentRepo) Update(ctx context.Context, id int, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE department SET dept_name=$1, dept_updated_at=NOW() WHERE dept_id=$2`,
		name, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

// SetActive toggles a department.
func (r *DepartmentRepo) SetActive(ctx context.Context, id int, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE department SET dept_is_active=$1, dept_updated_at=NOW() WHERE dept_id=$2`,
		active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}
