package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"randevulu/internal/models"
	"randevulu/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateAccount inserts the account and its profile, plus a free-tier
// tenant owned by the account when TenantName is set.
func (s *Store) CreateAccount(ctx context.Context, input store.CreateAccountInput) (models.Account, models.Profile, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Account{}, models.Profile{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	createdAt := s.now()
	var account models.Account
	err = tx.QueryRow(ctx, `
		INSERT INTO accounts (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, created_at
	`, uuid.NewString(), strings.ToLower(input.Email), input.PasswordHash, createdAt).Scan(&account.AccountID, &account.Email, &account.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == uniqueViolation {
			return models.Account{}, models.Profile{}, store.ErrAccountExists
		}
		return models.Account{}, models.Profile{}, err
	}

	var tenantID interface{}
	if input.TenantName != "" {
		settings, err := jsonBytes(models.TenantSettings{WorkingHours: models.DefaultWorkingHours()})
		if err != nil {
			return models.Account{}, models.Profile{}, err
		}
		id := uuid.NewString()
		if _, err := tx.Exec(ctx, `
			INSERT INTO tenants (id, name, subscription_tier, settings, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, id, input.TenantName, models.TierFree, settings, createdAt); err != nil {
			return models.Account{}, models.Profile{}, err
		}
		tenantID = id
	}

	profile, err := scanProfile(tx.QueryRow(ctx, `
		INSERT INTO profiles (id, full_name, role, tenant_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+profileColumns,
		account.AccountID, input.FullName, input.Role, tenantID, createdAt))
	if err != nil {
		return models.Account{}, models.Profile{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Account{}, models.Profile{}, err
	}
	return account, profile, nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (models.Account, string, error) {
	var (
		account models.Account
		hash    string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM accounts
		WHERE lower(email) = lower($1)
	`, email).Scan(&account.AccountID, &account.Email, &hash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, "", store.ErrAccountNotFound
		}
		return models.Account{}, "", err
	}
	return account, hash, nil
}

func (s *Store) GetPasswordHash(ctx context.Context, accountID string) (string, error) {
	var hash string
	if err := s.pool.QueryRow(ctx, `SELECT password_hash FROM accounts WHERE id = $1`, accountID).Scan(&hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", store.ErrAccountNotFound
		}
		return "", err
	}
	return hash, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, accountID, hash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE accounts SET password_hash = $2 WHERE id = $1`, accountID, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrAccountNotFound
	}
	return nil
}

func (s *Store) CreateSession(ctx context.Context, accountID string, expiresAt time.Time) (models.Session, error) {
	var session models.Session
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sessions (session_id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING session_id, user_id, expires_at
	`, uuid.NewString(), accountID, expiresAt, s.now()).Scan(&session.SessionID, &session.UserID, &session.ExpiresAt)
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return models.Session{}, store.ErrAccountNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}

// GetSession returns only unexpired sessions.
func (s *Store) GetSession(ctx context.Context, sessionID string) (models.Session, error) {
	var session models.Session
	err := s.pool.QueryRow(ctx, `
		SELECT session_id, user_id, expires_at
		FROM sessions
		WHERE session_id = $1 AND expires_at > $2
	`, sessionID, s.now()).Scan(&session.SessionID, &session.UserID, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, store.ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}

func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID)
	return err
}
