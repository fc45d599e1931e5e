package identity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"congregate/internal/models"
)

// Provider is the identity-provider contract the onboarding flow depends on.
// The hosted deployment talks to the auth vendor's API; this repo ships a
// Postgres-backed implementation with the same semantics.
type Provider interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.AuthUser, error)
	GetUserByEmail(ctx context.Context, email string) (*models.AuthUser, error)
	CreateUser(ctx context.Context, email, password string, metadata models.UserMetadata) (*models.AuthUser, error)
	// UpdateUserMetadata merges the given fields into the user's metadata bag.
	UpdateUserMetadata(ctx context.Context, userID uuid.UUID, metadata models.UserMetadata) error
	SetPassword(ctx context.Context, userID uuid.UUID, password string) error
	VerifyPassword(ctx context.Context, email, password string) (*models.AuthUser, error)
}

type database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgProvider struct {
	db database
}

func NewPgProvider(db database) Provider {
	return &pgProvider{db: db}
}

func (p *pgProvider) GetUser(ctx context.Context, userID uuid.UUID) (*models.AuthUser, error) {
	return p.getUser(ctx, `
		SELECT id, email, password_hash, metadata, status, created_at, updated_at
		FROM auth_users
		WHERE id = $1
	`, userID)
}

func (p *pgProvider) GetUserByEmail(ctx context.Context, email string) (*models.AuthUser, error) {
	return p.getUser(ctx, `
		SELECT id, email, password_hash, metadata, status, created_at, updated_at
		FROM auth_users
		WHERE email = $1
	`, email)
}

func (p *pgProvider) getUser(ctx context.Context, query string, arg any) (*models.AuthUser, error) {
	user := &models.AuthUser{}
	var metadata []byte
	err := p.db.QueryRow(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &metadata, &user.Status, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &user.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode user metadata: %w", err)
		}
	}
	return user, nil
}

func (p *pgProvider) CreateUser(ctx context.Context, email, password string, metadata models.UserMetadata) (*models.AuthUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.AuthUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Metadata:     metadata,
		Status:       "active",
	}

	encoded, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user metadata: %w", err)
	}

	query := `
		INSERT INTO auth_users (id, email, password_hash, metadata, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	if _, err := p.db.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, encoded, user.Status); err != nil {
		return nil, err
	}
	return user, nil
}

func (p *pgProvider) UpdateUserMetadata(ctx context.Context, userID uuid.UUID, metadata models.UserMetadata) error {
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode user metadata: %w", err)
	}

	query := `
		UPDATE auth_users
		SET metadata = metadata || $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err = p.db.Exec(ctx, query, encoded, userID)
	return err
}

func (p *pgProvider) SetPassword(ctx context.Context, userID uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		UPDATE auth_users
		SET password_hash = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err = p.db.Exec(ctx, query, string(hash), userID)
	return err
}

func (p *pgProvider) VerifyPassword(ctx context.Context, email, password string) (*models.AuthUser, error) {
	user, err := p.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, fmt.Errorf("account has no password credential")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid password")
	}
	return user, nil
}
