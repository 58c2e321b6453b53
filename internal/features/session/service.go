package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/pankajredekar/shopadmin/internal/auth"
	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/permission"
	"github.com/pankajredekar/shopadmin/internal/servererrors"
	"github.com/pankajredekar/shopadmin/internal/validate"
	"gorm.io/gorm"
)

type Storer interface {
	countUsers(ctx context.Context) (int64, error)
	emailExists(ctx context.Context, email string) (bool, error)
	createUser(ctx context.Context, user *models.User) error
	findByEmail(ctx context.Context, email string) (*models.User, error)
}

type tokenManager interface {
	Issue(ctx context.Context, user *models.User) (*auth.IssuedToken, error)
	RevokeAll(ctx context.Context, userID uint) (int64, error)
}

type Service struct {
	store  Storer
	tokens tokenManager
}

func NewService(store Storer, tokens tokenManager) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
	}
}

// Register creates the bootstrap admin. It is refused once any user exists.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	fields, err := validate.Collect(req)
	if err != nil {
		return nil, err
	}
	if !fields.Has("email") {
		taken, err := s.store.emailExists(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			fields.Add("email", validate.Taken("email"))
		}
	}
	if len(fields) > 0 {
		return nil, servererrors.BadRequest(servererrors.ErrValidationFailed.Error(), fields)
	}

	count, err := s.store.countUsers(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, servererrors.Wrap(http.StatusBadRequest, servererrors.ErrAdminExists, nil)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:             req.Name,
		Email:            req.Email,
		Password:         hash,
		Role:             permission.SuperAdmin,
		IsBootstrapAdmin: true,
	}
	if err := s.store.createUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, servererrors.Conflict(servererrors.ErrAdminExists)
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*auth.IssuedToken, error) {
	req.Email = strings.TrimSpace(req.Email)

	if err := validate.StructFields(req); err != nil {
		var fields validate.FieldErrors
		if errors.As(err, &fields) {
			return nil, servererrors.BadRequest(servererrors.ErrValidationFailed.Error(), fields)
		}
		return nil, err
	}

	user, err := s.store.findByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.Password, req.Password) {
		return nil, servererrors.Wrap(http.StatusBadRequest, servererrors.ErrInvalidCredentials, nil)
	}

	return s.tokens.Issue(ctx, user)
}

// Logout revokes every token of userID
func (s *Service) Logout(ctx context.Context, userID uint) error {
	_, err := s.tokens.RevokeAll(ctx, userID)
	return err
}
