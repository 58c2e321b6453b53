package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pankajredekar/shopadmin/internal/models"
	"gorm.io/gorm"
)

// TokenName labels tokens created by the login endpoint
const TokenName = "authToken"

var ErrInvalidToken = errors.New("invalid access token")

// Claims identify the token row and its owner
type Claims struct {
	jwt.RegisteredClaims
}

// IssuedToken is returned to the client after login
type IssuedToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenService issues signed bearer tokens backed by revocable rows
type TokenService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service signing with secret
func NewTokenService(db *gorm.DB, secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		db:     db,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue stores a new token row for user and returns its signed form
func (s *TokenService) Issue(ctx context.Context, user *models.User) (*IssuedToken, error) {
	now := s.now().UTC()
	record := models.AccessToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      TokenName,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to store access token: %w", err)
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        record.ID,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &IssuedToken{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   record.ExpiresAt,
	}, nil
}

// Authenticate resolves a bearer token to its live user
func (s *TokenService) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	var record models.AccessToken
	err = s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", claims.ID, uint(userID)).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up access token: %w", err)
	}

	var user models.User
	err = s.db.WithContext(ctx).First(&user, record.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user gone", ErrInvalidToken)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up token owner: %w", err)
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).Model(&record).Update("last_used_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to touch access token: %w", err)
	}

	return &user, nil
}

// RevokeAll deletes every token of userID in a single statement
func (s *TokenService) RevokeAll(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AccessToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to revoke access tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// WithDB returns a copy bound to another handle, typically a transaction
func (s *TokenService) WithDB(db *gorm.DB) *TokenService {
	clone := *s
	clone.db = db
	return &clone
}
