package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the central registrant record. The id is issued once at creation
// and is the sole lookup key for check-in and the QR payload.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID         string    `bun:"id,pk" json:"id"`
	Name       string    `bun:"name" json:"name"`
	Email      string    `bun:"email,unique,notnull" json:"email"`
	OTP        string    `bun:"otp,nullzero" json:"-"`
	OTPExpires time.Time `bun:"otp_expires,nullzero" json:"-"`
	Registered bool      `bun:"registered" json:"registered"`
	Present    bool      `bun:"present" json:"present"`
	WantsFood  bool      `bun:"wants_food" json:"wantsFood"`
	// Mobile holds the contact number submitted on attendance
	// confirmation. Kept separate from the OTP column so "pending
	// verification" and "confirmed with phone" stay distinguishable.
	Mobile    string    `bun:"mobile,nullzero" json:"mobile,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"-"`
}

// PublicUser is the projection returned by the lookup endpoint. OTP and its
// expiry never leave the service.
type PublicUser struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
	Mobile    string `json:"mobile,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		Name:      u.Name,
		Email:     u.Email,
		Confirmed: u.WantsFood,
		Mobile:    u.Mobile,
	}
}
