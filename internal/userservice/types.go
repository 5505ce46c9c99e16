package userservice

import (
	"database/sql"
	"time"

	"github.com/postify/postify/internal/common"
)

type UserService struct {
	m      *DBModel
	mb     common.MessageProducer
	tokens *TokenService
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	Bio       string    `json:"bio"`
	Avatar    *string   `json:"avatar"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// UpdateProfileRequest carries the mutable profile fields. A nil pointer means
// the field was not supplied and keeps its stored value.
type UpdateProfileRequest struct {
	UserID int
	Name   *string
	Bio    *string
	Avatar *string
}
