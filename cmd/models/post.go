package models

import "time"

const (
	MediaKindImage = "IMAGE"
	MediaKindVideo = "VIDEO"
)

type Post struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AuthorID  string    `gorm:"column:author_id;size:64;not null;index" json:"author_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Media     []PostMedia `gorm:"foreignKey:PostID" json:"media,omitempty"`
	Edits     []PostEdit  `gorm:"foreignKey:PostID" json:"edits,omitempty"`
	Likes     []PostLike  `gorm:"foreignKey:PostID" json:"likes,omitempty"`
}

// PostMedia is immutable after the post is created.
type PostMedia struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	PostID   string `gorm:"column:post_id;size:36;not null;index" json:"post_id"`
	Key      string `gorm:"column:key;size:512;not null" json:"key"`
	URL      string `gorm:"column:url;size:1024;not null" json:"url"`
	Kind     string `gorm:"column:kind;size:16;not null" json:"kind"`
	Format   string `gorm:"column:format;size:64" json:"format"`
	Position int    `gorm:"column:position;default:0" json:"position"`
}

// PostEdit archives the content a post had before an edit, newest last.
type PostEdit struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PostID   string    `gorm:"column:post_id;size:36;not null;index" json:"post_id"`
	Content  string    `gorm:"column:content;type:text;not null" json:"content"`
	EditedAt time.Time `gorm:"column:edited_at;not null" json:"edited_at"`
}

type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    string    `gorm:"column:post_id;size:36;not null;uniqueIndex:idx_post_likes_post_user" json:"post_id"`
	UserID    string    `gorm:"column:user_id;size:64;not null;uniqueIndex:idx_post_likes_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
