package models

import "time"

// Profile holds the public, owner-editable part of a user.
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// FollowersCount is not persisted; computed at query time
	FollowersCount int `gorm:"->;-:migration" json:"followers_count"`
	// FollowingCount is not persisted; computed at query time
	FollowingCount int `gorm:"->;-:migration" json:"following_count"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// GetUserID returns the profile owner.
func (p *Profile) GetUserID() uint { return p.UserID }
