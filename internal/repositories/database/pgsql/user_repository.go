package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard/internal/core/ports/repositories"
	"github.com/SscSPs/finance_dashboard/internal/models"
	"github.com/SscSPs/finance_dashboard/internal/utils"
	"github.com/SscSPs/finance_dashboard/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `user_id, email, phone, password_hash, metadata, created_at`

// PgxUserRepository keeps local accounts and serves as the auth provider of the postgres driver.
type PgxUserRepository struct {
	db *pgxpool.Pool
}

func newPgxUserRepository(db *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{db: db}
}

// Ensure PgxUserRepository implements portsrepo.AuthProvider
var _ portsrepo.AuthProvider = (*PgxUserRepository)(nil)

// CreateUser stores a new account with a bcrypt hash of password.
func (r *PgxUserRepository) CreateUser(ctx context.Context, email, phone, password string, metadata map[string]any) (*domain.Principal, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	m := models.User{
		UserID:       uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Metadata:     metadata,
		CreatedAt:    time.Now(),
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		m.Phone = &phone
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6);`
	_, err = r.db.Exec(ctx, query, m.UserID, m.Email, m.Phone, m.PasswordHash, m.Metadata, m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	p := mapping.ToPrincipal(m)
	return &p, nil
}

// FindUserByEmail returns the account with the given email.
func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1;`
	rows, err := r.db.Query(ctx, query, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &m, nil
}

// SignInWithPassword checks the bcrypt hash. Unknown emails and wrong passwords look the same to the caller.
// Local sessions carry no provider token.
func (r *PgxUserRepository) SignInWithPassword(ctx context.Context, email, password string) (*domain.Credentials, error) {
	user, err := r.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}
	return &domain.Credentials{Principal: mapping.ToPrincipal(*user)}, nil
}

// SignOut has nothing to revoke locally.
func (r *PgxUserRepository) SignOut(ctx context.Context, accessToken string) error {
	return nil
}

// GetUser is never reached for local sessions since they carry no provider token.
func (r *PgxUserRepository) GetUser(ctx context.Context, accessToken string) (*domain.Principal, error) {
	return nil, apperrors.ErrUnauthorized
}
