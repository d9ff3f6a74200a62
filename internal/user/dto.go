// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type CreateUserRequest struct {
	Email           string `json:"email"            validate:"required,email,max=255"`
	Password        string `json:"password"         validate:"required,min=8,max=128"`
	FullName        string `json:"full_name"        validate:"required,min=1,max=150"`
	Phone           string `json:"phone"            validate:"omitempty,min=7,max=20"`
	Role            string `json:"role"             validate:"omitempty,oneof=SUPER_ADMIN NATIONAL_ADMIN STATE_AMEER STATE_SECRETARY MCLO_AMEER MEMBER"`
	StateCode       string `json:"state_code"       validate:"required,notblank,max=32"`
	DeploymentState string `json:"deployment_state" validate:"omitempty,max=64"`
	ServiceYear     int    `json:"service_year"     validate:"omitempty,gte=1973,lte=2100"`
}

// UpdateProfileRequest is what members may change about themselves.
type UpdateProfileRequest struct {
	FullName        *string `json:"full_name,omitempty"        validate:"omitempty,min=1,max=150"`
	Phone           *string `json:"phone,omitempty"            validate:"omitempty,min=7,max=20"`
	DeploymentState *string `json:"deployment_state,omitempty" validate:"omitempty,max=64"`
	ServiceYear     *int    `json:"service_year,omitempty"     validate:"omitempty,gte=1973,lte=2100"`
}

type UpdateUserRequest struct {
	UpdateProfileRequest
	StateCode *string `json:"state_code,omitempty" validate:"omitempty,notblank,max=32"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=SUPER_ADMIN NATIONAL_ADMIN STATE_AMEER STATE_SECRETARY MCLO_AMEER MEMBER"`
}

type UserResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	Phone           string    `json:"phone,omitempty"`
	Role            string    `json:"role"`
	StateCode       string    `json:"state_code"`
	DeploymentState string    `json:"deployment_state,omitempty"`
	ServiceYear     int       `json:"service_year,omitempty"`
	IsActive        bool      `json:"is_active"`
	EmailVerified   bool      `json:"email_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ListUsersParams struct {
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	Search    string `json:"search"`
	Role      string `json:"role"`
	StateCode string `json:"state_code"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		FullName:        u.FullName,
		Phone:           u.Phone,
		Role:            u.Role,
		StateCode:       u.StateCode,
		DeploymentState: u.DeploymentState,
		ServiceYear:     u.ServiceYear,
		IsActive:        u.IsActive,
		EmailVerified:   u.EmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
