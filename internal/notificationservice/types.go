package notificationservice

import (
	"database/sql"
	"time"

	"github.com/postify/postify/internal/common"
)

type NotificationService struct {
	m  *DBModel
	mb common.MessageProducer
}

type DBModel struct {
	db *sql.DB
}

// Actor is the resolved identity of the user who triggered the notification.
type Actor struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

// BlogRef is the minimal blog reference shown in the feed.
type BlogRef struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user"`
	From      Actor     `json:"fromUser"`
	Kind      string    `json:"type"`
	Blog      BlogRef   `json:"blog"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// activityDetails carries everything the activity email needs.
type activityDetails struct {
	RecipientEmail string
	RecipientName  string
	ActorName      string
	BlogTitle      string
}
