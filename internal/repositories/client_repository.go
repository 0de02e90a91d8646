package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ServanaApplication/servana-backend/internal/models"
)

var ErrClientNotFound = errors.New("client not found")

// ErrNumberTaken reports a registration against an existing phone number.
var ErrNumberTaken = errors.New("number already registered")

// ClientRepository defines interactions for end-customer accounts.
type ClientRepository interface {
	GetByNumber(ctx context.Context, countryCode, number string) (models.Client, error)
	GetByID(ctx context.Context, id int) (models.Client, error)
	Create(ctx context.Context, countryCode, number, passwordHash string) (models.Client, error)
}

// ClientRepo is a sqlx-backed implementation.
type ClientRepo struct {
	db *sqlx.DB
}

// NewClientRepo constructs a ClientRepo.
func NewClientRepo(db *sqlx.DB) *ClientRepo {
	return &ClientRepo{db: db}
}

const clientColumns = `client_id, client_country_code, client_number, client_password, prof_id, client_created_at`

// GetByNumber resolves a client by country code and phone number.
func (r *ClientRepo) GetByNumber(ctx context.Context, countryCode, number string) (models.Client, error) {
	var c models.Client
	err := r.db.GetContext(ctx, &c,
		`SELECT `+clientColumns+` FROM client WHERE client_country_code=$1 AND client_number=$2`,
		countryCode, number)
	if isNoRows(err) {
		return models.Client{}, ErrClientNotFound
	}
	return c, err
}

// GetByID resolves a client by ID.
func (r *ClientRepo) GetByID(ctx context.Context, id int) (models.Client, error) {
	var c models.Client
	err := r.db.GetContext(ctx, &c,
		`SELECT `+clientColumns+` FROM client WHERE client_id=$1`, id)
	if isNoRows(err) {
		return models.Client{}, ErrClientNotFound
	}
	return c, err
}

// Create registers a client account.
func (r *ClientRepo) Create(ctx context.Context, countryCode, number, passwordHash string) (models.Client, error) {
	var c models.Client
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO client (client_country_code, client_number, client_password)
         VALUES ($1, $2, $3)
         RETURNING `+clientColumns,
		countryCode, number, passwordHash).
		StructScan(&c)
	if isUniqueViolation(err) {
		return models.Client{}, ErrNumberTaken
	}
	return c, err
}
