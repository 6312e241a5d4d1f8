package users

import (
	"time"

	"terraprime/internal/pagination"
)

// RoleVendor is the role name of sales vendors.
const RoleVendor = "VENDOR"

// View is one node of the dashboard menu tree.
type View struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Path     string `json:"path,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Children []View `json:"children,omitempty" validate:"dive"`
}

type Role struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	ViewIDs     []string `json:"viewIds"`
	IsActive    bool     `json:"isActive"`
}

type User struct {
	ID        string    `json:"id" validate:"required"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email" validate:"omitempty,email"`
	Document  string    `json:"document,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      *Role     `json:"role,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserInput creates or updates a user. Password is forwarded as-is; the
// backend hashes it.
type UserInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Document  string `json:"document"`
	Phone     string `json:"phone"`
	Password  string `json:"password,omitempty" binding:"omitempty,min=8"`
	RoleID    string `json:"roleId" binding:"required"`
	IsActive  *bool  `json:"isActive,omitempty"`
}

type RoleInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// ViewGrant sets the views a role may open.
type ViewGrant struct {
	ViewIDs []string `json:"viewIds" binding:"required"`
}

type Filter struct {
	Search string
	Role   string
	Page   pagination.Params
}

type (
	UserList = pagination.Page[User]
	RoleList = pagination.Page[Role]
)

// Flatten returns the ids of every node in views.
func Flatten(views []View) map[string]bool {
	ids := make(map[string]bool)
	var walk func([]View)
	walk = func(vs []View) {
		for _, v := range vs {
			ids[v.ID] = true
			walk(v.Children)
		}
	}
	walk(views)
	return ids
}

// Prune keeps the nodes of views that are granted or lead to a granted node.
func Prune(views []View, granted map[string]bool) []View {
	out := []View{}
	for _, v := range views {
		children := Prune(v.Children, granted)
		if !granted[v.ID] && len(children) == 0 {
			continue
		}
		v.Children = children
		out = append(out, v)
	}
	return out
}
