package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ServanaApplication/servana-backend/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository defines interactions for profiles and profile images.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, sysUserID int) (models.Profile, error)
	UpsertForUser(ctx context.Context, sysUserID int, p models.Profile) (models.Profile, error)
	EnsureForUser(ctx context.Context, sysUserID int) (int, error)
	CurrentOrLatestImage(ctx context.Context, profID int) (*models.Image, error)
	ListCurrentImages(ctx context.Context, profIDs []int) (map[int]string, error)
	ListLatestImages(ctx context.Context, profIDs []int) (map[int]string, error)
	SetCurrentImage(ctx context.Context, profID int, location string) (models.Image, error)
}

// ProfileRepo is a sqlx-backed implementation.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

const profileColumns = `prof_id, prof_firstname, prof_middlename, prof_lastname,
    prof_address, prof_date_of_birth, prof_created_at, prof_updated_at`

// GetByUserID returns the profile linked to a system user.
func (r *ProfileRepo) GetByUserID(ctx context.Context, sysUserID int) (models.Profile, error) {
	var p models.Profile
	err := r.db.GetContext(ctx, &p,
		`SELECT p.prof_id, p.prof_firstname, p.prof_middlename, p.prof_lastname,
                p.prof_address, p.prof_date_of_birth, p.prof_created_at, p.prof_updated_at
         FROM profile p
         JOIN system_user su ON su.prof_id = p.prof_id
         WHERE su.sys_user_id=$1`,
		sysUserID)
	if isNoRows(err) {
		return models.Profile{}, ErrProfileNotFound
	}
	return p, err
}

// UpsertForUser writes a system user's profile fields, creating and linking
// the profile row on first save.
func (r *ProfileRepo) UpsertForUser(ctx context.Context, sysUserID int, p models.Profile) (models.Profile, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Profile{}, err
	}
	defer tx.Rollback()

	profID, err := ensureProfileTx(ctx, tx, sysUserID)
	if err != nil {
		return models.Profile{}, err
	}

	var out models.Profile
	err = tx.QueryRowxContext(ctx,
		`UPDATE profile
         SET prof_firstname=$1, prof_middlename=$2, prof_lastname=$3,
             prof_address=$4, prof_date_of_birth=$5, prof_updated_at=NOW()
         WHERE prof_id=$6
         RETURNING `+profileColumns,
		p.FirstName, p.MiddleName, p.LastName, p.Address, p.DateOfBirth, profID).
		StructScan(&out)
	if err != nil {
		return models.Profile{}, err
	}
	return out, tx.Commit()
}

// EnsureForUser returns the user's profile ID, creating an empty profile row
// when none is linked yet.
func (r *ProfileRepo) EnsureForUser(ctx context.Context, sysUserID int) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	profID, err := ensureProfileTx(ctx, tx, sysUserID)
	if err != nil {
		return 0, err
	}
	return profID, tx.Commit()
}

func ensureProfileTx(ctx context.Context, tx *sqlx.Tx, sysUserID int) (int, error) {
	var profID *int
	err := tx.GetContext(ctx, &profID,
		`SELECT prof_id FROM system_user WHERE sys_user_id=$1`, sysUserID)
	if isNoRows(err) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}
	if profID != nil {
		return *profID, nil
	}
	var id int
	if err := tx.QueryRowxContext(ctx,
		`INSERT INTO profile DEFAULT VALUES RETURNING prof_id`).Scan(&id); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE system_user SET prof_id=$1, sys_user_updated_at=NOW() WHERE sys_user_id=$2`,
		id, sysUserID); err != nil {
		return 0, err
	}
	return id, nil
}

// CurrentOrLatestImage resolves the image shown for a profile: the row marked
// current, else the most recent upload, else nil.
func (r *ProfileRepo) CurrentOrLatestImage(ctx context.Context, profID int) (*models.Image, error) {
	var img models.Image
	err := r.db.GetContext(ctx, &img,
		`SELECT img_id, prof_id, img_location, img_is_current, img_created_at
         FROM image
         WHERE prof_id=$1
         ORDER BY img_is_current DESC, img_created_at DESC
         LIMIT 1`,
		profID)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// ListCurrentImages maps each profile to its image marked current.
func (r *ProfileRepo) ListCurrentImages(ctx context.Context, profIDs []int) (map[int]string, error) {
	return r.imageMap(ctx,
		`SELECT prof_id, img_location FROM image
         WHERE img_is_current = TRUE AND prof_id = ANY($1)`,
		profIDs)
}

// ListLatestImages maps each profile to its most recent upload.
func (r *ProfileRepo) ListLatestImages(ctx context.Context, profIDs []int) (map[int]string, error) {
	return r.imageMap(ctx,
		`SELECT DISTINCT ON (prof_id) prof_id, img_location FROM image
         WHERE prof_id = ANY($1)
         ORDER BY prof_id, img_created_at DESC`,
		profIDs)
}

func (r *ProfileRepo) imageMap(ctx context.Context, query string, profIDs []int) (map[int]string, error) {
	out := make(map[int]string, len(profIDs))
	if len(profIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryxContext(ctx, query, pq.Array(profIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var profID int
		var location string
		if err := rows.Scan(&profID, &location); err != nil {
			return nil, err
		}
		out[profID] = location
	}
	return out, rows.Err()
}

// SetCurrentImage records a new upload as the profile's current image,
// clearing the flag on older rows in the same transaction.
func (r *ProfileRepo) SetCurrentImage(ctx context.Context, profID int, location string) (models.Image, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Image{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE image SET img_is_current = FALSE WHERE prof_id=$1 AND img_is_current = TRUE`,
		profID); err != nil {
		return models.Image{}, err
	}
	var img models.Image
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO image (prof_id, img_location, img_is_current)
         VALUES ($1, $2, TRUE)
         RETURNING img_id, prof_id, img_location, img_is_current, img_created_at`,
		profID, location).
		StructScan(&img)
	if err != nil {
		return models.Image{}, err
	}
	return img, tx.Commit()
}
