package user

import (
	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/permission"
)

// Requests

type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8"`
	Role     *string `json:"role"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitnil,filled,max=255"`
	Email    *string `json:"email" validate:"omitnil,filled,email,max=255"`
	Password *string `json:"password" validate:"omitnil,filled,min=8"`
	Role     *string `json:"role"`
}

// Responses

type UserDTO struct {
	models.User
	Permissions []permission.Permission `json:"permissions"`
}

func toDTO(u models.User) UserDTO {
	perms := permission.For(u.Role).List()
	if perms == nil {
		perms = []permission.Permission{}
	}
	return UserDTO{
		User:        u,
		Permissions: perms,
	}
}
