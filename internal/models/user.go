package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a platform account. Credits gate non-premium playback;
// the premium pair gates premium playback and the higher upload limit.
type User struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	Password         string     `json:"-"`
	FullName         string     `json:"full_name"`
	Credits          int        `json:"credits"`
	IsPremium        bool       `json:"is_premium"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PremiumActive reports whether the account's premium tier is live at now.
// Always evaluated against the caller's clock, never cached.
func (u *User) PremiumActive(now time.Time) bool {
	return u.IsPremium && u.PremiumExpiresAt != nil && u.PremiumExpiresAt.After(now)
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Credits   int       `json:"credits"`
	IsPremium bool      `json:"is_premium"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Credits:   u.Credits,
		IsPremium: u.IsPremium,
		CreatedAt: u.CreatedAt,
	}
}
