package user

import (
	"context"
	"errors"
	"strings"

	"github.com/pankajredekar/shopadmin/internal/auth"
	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/permission"
	"github.com/pankajredekar/shopadmin/internal/servererrors"
	"github.com/pankajredekar/shopadmin/internal/validate"
	"gorm.io/gorm"
)

type Storer interface {
	findAll(ctx context.Context) ([]models.User, error)
	findByID(ctx context.Context, id uint) (*models.User, error)
	emailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	create(ctx context.Context, user *models.User) error
	save(ctx context.Context, user *models.User, columns []string) error
	delete(ctx context.Context, user *models.User) error
}

type Service struct {
	store Storer
}

func NewService(store Storer) *Service {
	return &Service{
		store: store,
	}
}

// List returns every user with the permissions of its role
func (s *Service) List(ctx context.Context) ([]UserDTO, error) {
	users, err := s.store.findAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = toDTO(u)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*UserDTO, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	fields, err := validate.Collect(req)
	if err != nil {
		return nil, err
	}
	if !fields.Has("email") {
		if err := s.checkEmail(ctx, fields, req.Email, 0); err != nil {
			return nil, err
		}
	}
	checkRole(fields, req.Role)
	if len(fields) > 0 {
		return nil, servererrors.Validation(fields)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
	}
	if req.Role != nil {
		user.Role = permission.Role(*req.Role)
	}

	if err := s.store.create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, servererrors.Validation(validate.FieldErrors{"email": {validate.Taken("email")}})
		}
		return nil, err
	}

	dto := toDTO(*user)
	return &dto, nil
}

// Update applies the fields present in req. A present role replaces the
// current one.
func (s *Service) Update(ctx context.Context, id uint, req *UpdateUserRequest) (*UserDTO, error) {
	user, err := s.store.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, servererrors.NotFound("User")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		req.Email = &email
	}

	fields, err := validate.Collect(req)
	if err != nil {
		return nil, err
	}
	if req.Email != nil && !fields.Has("email") {
		if err := s.checkEmail(ctx, fields, *req.Email, id); err != nil {
			return nil, err
		}
	}
	checkRole(fields, req.Role)
	if len(fields) > 0 {
		return nil, servererrors.Validation(fields)
	}

	var columns []string
	if req.Name != nil {
		user.Name = *req.Name
		columns = append(columns, "name")
	}
	if req.Email != nil {
		user.Email = *req.Email
		columns = append(columns, "email")
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
		columns = append(columns, "password")
	}
	if req.Role != nil {
		user.Role = permission.Role(*req.Role)
		columns = append(columns, "role")
	}

	if err := s.store.save(ctx, user, columns); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, servererrors.Validation(validate.FieldErrors{"email": {validate.Taken("email")}})
		}
		return nil, err
	}

	dto := toDTO(*user)
	return &dto, nil
}

// Delete removes user id on behalf of actorID, who may not delete themself
func (s *Service) Delete(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return servererrors.Conflict(servererrors.ErrSelfDelete)
	}

	user, err := s.store.findByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return servererrors.NotFound("User")
	}

	return s.store.delete(ctx, user)
}

func (s *Service) checkEmail(ctx context.Context, fields validate.FieldErrors, email string, excludeID uint) error {
	taken, err := s.store.emailTaken(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		fields.Add("email", validate.Taken("email"))
	}
	return nil
}

func checkRole(fields validate.FieldErrors, role *string) {
	if role != nil && !permission.Valid(permission.Role(*role)) {
		fields.Add("role", validate.Invalid("role"))
	}
}
