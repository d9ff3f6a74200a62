// AngelaMos | 2026
// entity.go

package eid

import (
	"time"
)

// Card is the one identity card a user may hold.
type Card struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ShortID   string    `db:"short_id"`
	SVG       string    `db:"svg"`
	Version   string    `db:"version"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Verification is the public view returned when a card's QR code is scanned.
type Verification struct {
	CardNumber string    `db:"short_id"   json:"card_number"`
	FullName   string    `db:"full_name"  json:"full_name"`
	StateCode  string    `db:"state_code" json:"state_code"`
	Role       string    `db:"role"       json:"role"`
	Active     bool      `db:"is_active"  json:"active"`
	IssuedAt   time.Time `db:"created_at" json:"issued_at"`
}

type CardResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CardNumber string    `json:"card_number"`
	SVG        string    `json:"svg"`
	Version    string    `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ToCardResponse(c *Card) CardResponse {
	return CardResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		CardNumber: c.ShortID,
		SVG:        c.SVG,
		Version:    c.Version,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
