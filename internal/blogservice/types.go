package blogservice

import (
	"context"
	"database/sql"
	"time"

	"github.com/postify/postify/internal/common"
)

// Notifier records that an actor liked or commented on a blog. The concrete
// implementation lives in notificationservice; blogservice only emits.
type Notifier interface {
	Notify(ctx context.Context, recipient, actor, blogID int, kind string) error
}

const (
	NotifyLike    = "like"
	NotifyComment = "comment"
)

type BlogService struct {
	m        *BlogModel
	c        *common.Cache
	notifier Notifier
}

type BlogModel struct {
	db *sql.DB
}

// Author is the resolved identity attached to blogs and comments.
type Author struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

type Comment struct {
	ID        int       `json:"id"`
	User      Author    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Blog struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	// Content is stored as sanitized rich HTML.
	Content    string    `json:"content"`
	Category   string    `json:"category"`
	Tags       []string  `json:"tags"`
	Cover      *string   `json:"cover"`
	Author     Author    `json:"author"`
	Likes      []int64   `json:"likes"`
	LikesCount int       `json:"likesCount"`
	Comments   []Comment `json:"comments,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateBlogRequest struct {
	Title    string
	Content  string
	Category string
	Tags     []string
	Cover    *string
	UserID   int
}

// UpdateBlogRequest mirrors the product's update form: title, content and
// category always overwrite, while nil Tags and nil Cover keep stored values.
type UpdateBlogRequest struct {
	ID       int
	UserID   int
	Title    string
	Content  string
	Category string
	Tags     []string
	Cover    *string
}
