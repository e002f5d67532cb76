package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"catalogapi/internal/apperror"
	"catalogapi/internal/model"
	"catalogapi/internal/repository"
)

// TokenIssuer mints, validates and revokes token pairs.
type TokenIssuer interface {
	Issue(accountID int64) (model.TokenPair, error)
	Validate(ctx context.Context, raw string) (int64, error)
	Revoke(ctx context.Context, raw string) error
}

// AuthService is the credential lifecycle: register, login, logout and
// password change.
type AuthService interface {
	// Register creates an account and returns a token pair as if the new
	// account had logged in.
	Register(ctx context.Context, in model.Registration) (*model.TokenPair, error)

	// Login issues a new token pair. Earlier pairs stay valid.
	Login(ctx context.Context, in model.Credentials) (*model.TokenPair, error)

	// Logout revokes the given access token. A token can be logged out once.
	Logout(ctx context.Context, access string) error

	// ChangePassword replaces the password of the token's account. Existing
	// tokens stay valid.
	ChangePassword(ctx context.Context, access string, in model.PasswordChange) error

	// Authenticate returns the account bound to a valid access token.
	Authenticate(ctx context.Context, access string) (int64, error)
}

type authService struct {
	accounts repository.AccountRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	log      *slog.Logger

	dummyMu sync.Mutex
	dummy   string
}

// NewAuthService constructs an AuthService.
func NewAuthService(accounts repository.AccountRepository, hasher PasswordHasher, tokens TokenIssuer, log *slog.Logger) AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &authService{accounts: accounts, hasher: hasher, tokens: tokens, log: log}
}

func (s *authService) Register(ctx context.Context, in model.Registration) (*model.TokenPair, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	acc, err := s.accounts.Create(ctx, &model.Account{
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.log.InfoContext(ctx, "auth_register_duplicate", slog.String("username", in.Username))
			return nil, fmt.Errorf("%w: %s", apperror.ErrDuplicateAccount, in.Username)
		}
		return nil, apperror.Unavailable(err)
	}

	pair, err := s.issue(acc.ID)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "auth_register", slog.Int64("account_id", acc.ID), slog.String("username", acc.Username))
	return pair, nil
}

func (s *authService) Login(ctx context.Context, in model.Credentials) (*model.TokenPair, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	acc, err := s.accounts.FindByUsername(ctx, in.Username)
	if err != nil {
		if isNoRows(err) {
			// Unknown usernames pay for one comparison like known ones do.
			_, _ = s.hasher.Verify(ctx, in.Password, s.dummyHash(ctx))
			s.log.InfoContext(ctx, "auth_login_failed", slog.String("username", in.Username))
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Unavailable(err)
	}

	ok, err := s.hasher.Verify(ctx, in.Password, acc.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.InfoContext(ctx, "auth_login_failed", slog.String("username", in.Username))
		return nil, apperror.ErrInvalidCredentials
	}

	pair, err := s.issue(acc.ID)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "auth_login", slog.Int64("account_id", acc.ID))
	return pair, nil
}

// dummyHash returns the hash checked when the username is unknown. It is
// computed on first use and retried until hashing succeeds.
func (s *authService) dummyHash(ctx context.Context) string {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()
	if s.dummy == "" {
		if h, err := s.hasher.Hash(ctx, "catalogapi-unknown-account"); err == nil {
			s.dummy = h
		}
	}
	return s.dummy
}

func (s *authService) Logout(ctx context.Context, access string) error {
	accountID, err := s.tokens.Validate(ctx, access)
	if err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, access); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "auth_logout", slog.Int64("account_id", accountID))
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, access string, in model.PasswordChange) error {
	accountID, err := s.tokens.Validate(ctx, access)
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}

	acc, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("%w: account no longer exists", apperror.ErrUnauthenticated)
		}
		return apperror.Unavailable(err)
	}

	ok, err := s.hasher.Verify(ctx, in.OldPassword, acc.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		s.log.InfoContext(ctx, "auth_change_password_failed", slog.Int64("account_id", accountID))
		return apperror.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(ctx, in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePasswordHash(ctx, accountID, hash); err != nil {
		if isNoRows(err) {
			return fmt.Errorf("%w: account no longer exists", apperror.ErrUnauthenticated)
		}
		return apperror.Unavailable(err)
	}
	s.log.InfoContext(ctx, "auth_change_password", slog.Int64("account_id", accountID))
	return nil
}

func (s *authService) Authenticate(ctx context.Context, access string) (int64, error) {
	return s.tokens.Validate(ctx, access)
}

func (s *authService) issue(accountID int64) (*model.TokenPair, error) {
	pair, err := s.tokens.Issue(accountID)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &pair, nil
}
