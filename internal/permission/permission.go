// Package permission maps staff roles to the fixed set of permissions they grant.
package permission

import (
	"errors"
)

type Permission string

const (
	ViewDashboard    Permission = "view_dashboard"
	ViewProducts     Permission = "view_products"
	CreateProducts   Permission = "create_products"
	EditProducts     Permission = "edit_products"
	DeleteProducts   Permission = "delete_products"
	ViewCategories   Permission = "view_categories"
	CreateCategories Permission = "create_categories"
	EditCategories   Permission = "edit_categories"
	DeleteCategories Permission = "delete_categories"
	ViewUsers        Permission = "view_users"
	CreateUsers      Permission = "create_users"
	EditUsers        Permission = "edit_users"
	DeleteUsers      Permission = "delete_users"
)

type Role string

const (
	SuperAdmin     Role = "super_admin"
	ProductManager Role = "product_manager"
	UserManager    Role = "user_manager"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// All lists every permission in display order
var All = []Permission{
	ViewDashboard,
	ViewProducts, CreateProducts, EditProducts, DeleteProducts,
	ViewCategories, CreateCategories, EditCategories, DeleteCategories,
	ViewUsers, CreateUsers, EditUsers, DeleteUsers,
}

// Set is an immutable collection of permissions
type Set struct {
	perms map[Permission]struct{}
}

func newSet(perms ...Permission) Set {
	s := Set{perms: make(map[Permission]struct{}, len(perms))}
	for _, p := range perms {
		s.perms[p] = struct{}{}
	}
	return s
}

// Has reports whether the set contains p
func (s Set) Has(p Permission) bool {
	_, ok := s.perms[p]
	return ok
}

// Len returns the number of permissions in the set
func (s Set) Len() int {
	return len(s.perms)
}

// List returns the permissions in display order
func (s Set) List() []Permission {
	list := make([]Permission, 0, len(s.perms))
	for _, p := range All {
		if s.Has(p) {
			list = append(list, p)
		}
	}
	return list
}

var roles = map[Role]Set{
	SuperAdmin: newSet(All...),
	ProductManager: newSet(
		ViewDashboard,
		ViewProducts, CreateProducts, EditProducts, DeleteProducts,
		ViewCategories, CreateCategories, EditCategories, DeleteCategories,
	),
	UserManager: newSet(
		ViewDashboard,
		ViewUsers, CreateUsers, EditUsers, DeleteUsers,
	),
}

var roleOrder = []Role{SuperAdmin, ProductManager, UserManager}

// Roles returns every known role
func Roles() []Role {
	return append([]Role(nil), roleOrder...)
}

// Valid reports whether role is one of the known roles
func Valid(role Role) bool {
	_, ok := roles[role]
	return ok
}

// For returns the permissions granted by role. Unknown and empty roles grant nothing.
func For(role Role) Set {
	if s, ok := roles[role]; ok {
		return s
	}
	return Set{}
}

// Authorize returns ErrForbidden unless role grants p
func Authorize(role Role, p Permission) error {
	if !For(role).Has(p) {
		return ErrForbidden
	}
	return nil
}

// RolesWithAny returns the roles granting at least one of perms
func RolesWithAny(perms ...Permission) []Role {
	var matched []Role
	for _, r := range roleOrder {
		set := roles[r]
		for _, p := range perms {
			if set.Has(p) {
				matched = append(matched, r)
				break
			}
		}
	}
	return matched
}
