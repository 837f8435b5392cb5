// Package identity owns accounts, password hashes and sessions, and turns a
// session id into the Actor the other services authorize against.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"randevulu/internal/models"
	"randevulu/internal/store"
	"randevulu/internal/validate"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const DefaultSessionTTL = 8 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("session is missing or expired")
)

type Store interface {
	store.AccountStore
	GetProfile(ctx context.Context, profileID string) (models.Profile, error)
}

type Options struct {
	SessionTTL time.Duration
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
	Now      func() time.Time
}

type Service struct {
	store      Store
	logger     *zap.Logger
	sessionTTL time.Duration
	hashCost   int
	now        func() time.Time
}

func NewService(st Store, logger *zap.Logger, options Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.SessionTTL <= 0 {
		options.SessionTTL = DefaultSessionTTL
	}
	if options.HashCost == 0 {
		options.HashCost = bcrypt.DefaultCost
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	return &Service{store: st, logger: logger, sessionTTL: options.SessionTTL, hashCost: options.HashCost, now: options.Now}
}

type RegisterInput struct {
	FullName    string
	Email       string
	Password    string
	AccountType string
	// BusinessName names the tenant of a business account; FullName is used
	// when empty.
	BusinessName string
}

// Register creates the account and its profile. Business accounts also get a
// free-tier tenant with the new profile as owner.
func (s *Service) Register(ctx context.Context, input RegisterInput) (models.Account, models.Profile, error) {
	in, err := validate.Registration(validate.RegistrationInput{
		FullName:    input.FullName,
		Email:       input.Email,
		Password:    input.Password,
		AccountType: input.AccountType,
	})
	if err != nil {
		return models.Account{}, models.Profile{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return models.Account{}, models.Profile{}, err
	}

	create := store.CreateAccountInput{
		Email:        in.Email,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		Role:         models.RoleCustomer,
	}
	if in.AccountType == validate.AccountBusiness {
		create.Role = models.RoleOwner
		create.TenantName = strings.TrimSpace(input.BusinessName)
		if create.TenantName == "" {
			create.TenantName = in.FullName
		}
	}

	account, profile, err := s.store.CreateAccount(ctx, create)
	if err != nil {
		return models.Account{}, models.Profile{}, err
	}
	s.logger.Info("account registered",
		zap.String("account_id", account.AccountID),
		zap.String("role", profile.Role))
	return account, profile, nil
}

type LoginResult struct {
	Account models.Account `json:"account"`
	Profile models.Profile `json:"profile"`
	Session models.Session `json:"session"`
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	in, err := validate.Login(validate.LoginInput{Email: email, Password: password})
	if err != nil {
		return LoginResult{}, err
	}
	account, hash, err := s.store.GetAccountByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(in.Password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	profile, err := s.store.GetProfile(ctx, account.AccountID)
	if err != nil {
		return LoginResult{}, err
	}
	session, err := s.store.CreateSession(ctx, account.AccountID, s.now().UTC().Add(s.sessionTTL))
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Account: account, Profile: profile, Session: session}, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, sessionID)
}

// UpdatePassword requires the current password and applies the registration
// strength rules to the new one.
func (s *Service) UpdatePassword(ctx context.Context, actor models.Actor, current, next string) error {
	if actor.IsAnonymous() {
		return ErrUnauthenticated
	}
	if err := validate.PasswordReset(next); err != nil {
		return err
	}
	hash, err := s.store.GetPasswordHash(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	updated, err := bcrypt.GenerateFromPassword([]byte(next), s.hashCost)
	if err != nil {
		return err
	}
	return s.store.UpdatePasswordHash(ctx, actor.UserID, string(updated))
}

// Resolve loads the actor behind an unexpired session.
func (s *Service) Resolve(ctx context.Context, sessionID string) (models.Actor, error) {
	if _, err := validate.UUID("session_id", sessionID); err != nil {
		return models.Actor{}, ErrUnauthenticated
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return models.Actor{}, ErrUnauthenticated
		}
		return models.Actor{}, err
	}
	profile, err := s.store.GetProfile(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return models.Actor{}, ErrUnauthenticated
		}
		return models.Actor{}, err
	}
	actor := models.Actor{UserID: profile.ProfileID, Role: profile.Role}
	if profile.TenantID != nil {
		actor.TenantID = *profile.TenantID
	}
	return actor, nil
}
