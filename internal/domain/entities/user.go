package entities

import (
	"github.com/volatiletech/null/v8"
)

// UserRole represents user roles
type UserRole string

const (
	UserRoleUser     UserRole = "USER"
	UserRoleAdmin    UserRole = "ADMIN"
	UserRoleMerchant UserRole = "MERCHANT"
)

// User is the client-side copy of the account record. The backend owns the
// authoritative version; the session store owns this one. ID is opaque: the
// backend is free to hand out non-UUID identifiers.
type User struct {
	ID               string      `json:"id"`
	Email            string      `json:"email"`
	Phone            null.String `json:"phone"`
	WalletAddress    null.String `json:"wallet_address"`
	Role             UserRole    `json:"role"`
	EmailVerified    bool        `json:"email_verified"`
	WalletLinked     bool        `json:"wallet_linked"`
	TwoFactorEnabled bool        `json:"two_factor_enabled"`
	TotalBlipPoints  int64       `json:"total_blip_points"`
	ReferralCode     null.String `json:"referral_code"`
}

// HasWallet reports whether the account already has a bound wallet.
func (u *User) HasWallet() bool {
	return u.WalletLinked || (u.WalletAddress.Valid && u.WalletAddress.String != "")
}

// UserPatch is a partial user as returned by mutating endpoints. Nil fields
// were absent from the response and must not overwrite the current value.
type UserPatch struct {
	ID               *string   `json:"id,omitempty"`
	Email            *string   `json:"email,omitempty"`
	Phone            *string   `json:"phone,omitempty"`
	WalletAddress    *string   `json:"wallet_address,omitempty"`
	Role             *UserRole `json:"role,omitempty"`
	EmailVerified    *bool     `json:"email_verified,omitempty"`
	WalletLinked     *bool     `json:"wallet_linked,omitempty"`
	TwoFactorEnabled *bool     `json:"two_factor_enabled,omitempty"`
	TotalBlipPoints  *int64    `json:"total_blip_points,omitempty"`
	ReferralCode     *string   `json:"referral_code,omitempty"`
}

// Apply returns a copy of u with the fields present in p overwritten.
func (u User) Apply(p UserPatch) User {
	if p.ID != nil {
		u.ID = *p.ID
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = null.StringFrom(*p.Phone)
	}
	if p.WalletAddress != nil {
		u.WalletAddress = null.StringFrom(*p.WalletAddress)
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.EmailVerified != nil {
		u.EmailVerified = *p.EmailVerified
	}
	if p.WalletLinked != nil {
		u.WalletLinked = *p.WalletLinked
	}
	if p.TwoFactorEnabled != nil {
		u.TwoFactorEnabled = *p.TwoFactorEnabled
	}
	if p.TotalBlipPoints != nil {
		u.TotalBlipPoints = *p.TotalBlipPoints
	}
	if p.ReferralCode != nil {
		u.ReferralCode = null.StringFrom(*p.ReferralCode)
	}
	return u
}

// LoginInput represents input for user login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterInput represents input for account registration
type RegisterInput struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	Phone        string `json:"phone,omitempty"`
	ReferralCode string `json:"referral_code,omitempty"`
	Role         string `json:"role,omitempty"`
}

// ResetPasswordInput completes a provider password-reset action.
type ResetPasswordInput struct {
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}
