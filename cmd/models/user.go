package models

import "time"

// User mirrors an account in the external identity directory. Profile data
// (username, names, avatar) lives in the directory; the local row only anchors
// the follow graph and post ownership. Rows are created lazily on first
// authenticated visit and never hard-deleted in-app.
type User struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Follow is one edge of the social graph. The unique pair index gives follow
// set semantics: re-following is a no-op at the data level.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID string    `gorm:"column:follower_id;size:64;not null;index;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowedID string    `gorm:"column:followed_id;size:64;not null;index;uniqueIndex:idx_follows_pair" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}
