package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
)

const userColumns = `id, email, password_hash, full_name, COALESCE(avatar_url,''), role,
	COALESCE(google_access_token,''), created_at, updated_at`

// Repository handles user persistence, including the stored Google Calendar
// credential used by the sync adapter.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) scanUser(ctx context.Context, q string, args ...any) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, q, args...).Scan(&u.ID, &u.Email, &u.Password, &u.FullName,
		&u.AvatarURL, &u.Role, &u.GoogleAccessToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, email, passwordHash, fullName, avatarURL string, role models.Role) (*models.User, error) {
	const q = `INSERT INTO users (email, password_hash, full_name, avatar_url, role)
		VALUES ($1, $2, $3, NULLIF($4,''), $5)
		RETURNING ` + userColumns
	return r.scanUser(ctx, q, email, passwordHash, fullName, avatarURL, string(role))
}

// List returns all users, public projection.
func (r *Repository) List(ctx context.Context) ([]models.UserPublic, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.UserPublic
	for rows.Next() {
		var u models.User
		err := rows.Scan(&u.ID, &u.Email, &u.Password, &u.FullName,
			&u.AvatarURL, &u.Role, &u.GoogleAccessToken, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, u.ToPublic())
	}
	return list, rows.Err()
}

// UpdateGoogleToken stores (or clears, when token is empty) the user's
// Google Calendar credential.
func (r *Repository) UpdateGoogleToken(ctx context.Context, id uuid.UUID, token string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET google_access_token = NULLIF($2,''), updated_at = NOW() WHERE id = $1`, id, token)
	return err
}

// GoogleToken returns the user's stored calendar credential, empty when not
// connected. Implements the ad service's CredentialSource.
func (r *Repository) GoogleToken(ctx context.Context, userID uuid.UUID) (string, error) {
	var token string
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(google_access_token,'') FROM users WHERE id = $1`, userID).Scan(&token)
	if err != nil {
		return "", err
	}
	return token, nil
}
