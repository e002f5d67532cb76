// Package token mints and validates signed access/refresh tokens and keeps
// the set of access tokens revoked before their natural expiry.
package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"catalogapi/internal/apperror"
	"catalogapi/internal/model"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrAlreadyRevoked is returned by a RevocationStore when the id is already recorded.
var ErrAlreadyRevoked = errors.New("token already revoked")

// RevocationStore records revoked token ids until their natural expiry.
// Revoke must be an atomic insert-if-absent.
type RevocationStore interface {
	Revoke(ctx context.Context, id string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// Claims is the signed payload of both token types.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// AccountID parses the subject claim.
func (c *Claims) AccountID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Config holds signing settings and token lifetimes.
type Config struct {
	SigningKey []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issuer mints HS256 token pairs. It is safe for concurrent use.
type Issuer struct {
	cfg         Config
	revocations RevocationStore
	now         func() time.Time
}

// NewIssuer validates cfg and returns an Issuer backed by revocations.
func NewIssuer(cfg Config, revocations RevocationStore) (*Issuer, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("token signing key is required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	if revocations == nil {
		return nil, errors.New("revocation store is required")
	}
	return &Issuer{cfg: cfg, revocations: revocations, now: time.Now}, nil
}

// Issue mints a fresh access/refresh pair bound to accountID.
func (i *Issuer) Issue(accountID int64) (model.TokenPair, error) {
	now := i.now().UTC()
	subject := strconv.FormatInt(accountID, 10)

	access, accessExp, err := i.sign(subject, TypeAccess, now, i.cfg.AccessTTL)
	if err != nil {
		return model.TokenPair{}, err
	}
	refresh, refreshExp, err := i.sign(subject, TypeRefresh, now, i.cfg.RefreshTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccountID:        accountID,
		IssuedAt:         now,
		ExpiresAt:        accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (i *Issuer) sign(subject, tokenType string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := &Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.cfg.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.SigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, exp, nil
}

// Validate checks signature, expiry, type and revocation of an access token
// and returns the account it is bound to.
func (i *Issuer) Validate(ctx context.Context, raw string) (int64, error) {
	claims, err := i.access(ctx, raw)
	if err != nil {
		return 0, err
	}
	return claims.AccountID()
}

// Revoke adds a currently valid access token to the revocation set. Revoking
// an already revoked token fails with apperror.ErrUnauthenticated.
func (i *Issuer) Revoke(ctx context.Context, raw string) error {
	claims, err := i.access(ctx, raw)
	if err != nil {
		return err
	}
	if err := i.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		if errors.Is(err, ErrAlreadyRevoked) {
			return fmt.Errorf("%w: token revoked", apperror.ErrUnauthenticated)
		}
		return apperror.Unavailable(err)
	}
	return nil
}

func (i *Issuer) access(ctx context.Context, raw string) (*Claims, error) {
	claims, err := i.parse(raw)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TypeAccess {
		return nil, fmt.Errorf("%w: not an access token", apperror.ErrUnauthenticated)
	}
	revoked, err := i.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperror.Unavailable(err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", apperror.ErrUnauthenticated)
	}
	return claims, nil
}

func (i *Issuer) parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: missing token", apperror.ErrUnauthenticated)
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return i.cfg.SigningKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", apperror.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%w: malformed token", apperror.ErrUnauthenticated)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, fmt.Errorf("%w: malformed token", apperror.ErrUnauthenticated)
	}
	if _, err := claims.AccountID(); err != nil {
		return nil, fmt.Errorf("%w: malformed subject", apperror.ErrUnauthenticated)
	}
	return claims, nil
}
