// Package models contains data structures for the application's domain models.
package models

import "time"

// User is an account. Accounts start unverified and flip IsVerified once the
// emailed verification token is redeemed.
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Username   string     `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email      string     `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Password   string     `gorm:"not null" json:"-"`
	IsVerified bool       `gorm:"not null;default:false" json:"is_verified"`
	IsActive   bool       `gorm:"not null;default:true" json:"is_active"`
	IsAdmin    bool       `gorm:"not null;default:false" json:"is_admin"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}
