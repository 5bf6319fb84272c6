package models

import "time"

// UserFollowing is a directed follower -> following edge.
type UserFollowing struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_user_following_pair" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_user_following_pair;index" json:"following_id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Follower  User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Following User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (UserFollowing) TableName() string {
	return "user_followings"
}
