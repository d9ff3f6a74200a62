// AngelaMos | 2026
// entity.go

package property

import (
	"time"
)

const (
	CategoryLand      = "land"
	CategoryBuilding  = "building"
	CategoryVehicle   = "vehicle"
	CategoryEquipment = "equipment"
	CategoryOther     = "other"
)

// Property is an asset the association holds in some state.
type Property struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Category    string    `db:"category"`
	Address     string    `db:"address"`
	StateCode   string    `db:"state_code"`
	Description string    `db:"description"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type CreatePropertyRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=200"`
	Category    string `json:"category"    validate:"required,oneof=land building vehicle equipment other"`
	Address     string `json:"address"     validate:"omitempty,max=500"`
	StateCode   string `json:"state_code"  validate:"required,max=32"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

type UpdatePropertyRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1,max=200"`
	Category    *string `json:"category,omitempty"    validate:"omitempty,oneof=land building vehicle equipment other"`
	Address     *string `json:"address,omitempty"     validate:"omitempty,max=500"`
	StateCode   *string `json:"state_code,omitempty"  validate:"omitempty,min=1,max=32"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

type ListParams struct {
	Page      int
	PageSize  int
	StateCode string
	Category  string
}

func (p *ListParams) Normalize() {
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

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type PropertyResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Address     string    `json:"address,omitempty"`
	StateCode   string    `json:"state_code"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToPropertyResponse(p *Property) PropertyResponse {
	return PropertyResponse(*p)
}

func ToPropertyResponseList(props []Property) []PropertyResponse {
	out := make([]PropertyResponse, 0, len(props))
	for i := range props {
		out = append(out, ToPropertyResponse(&props[i]))
	}
	return out
}
