package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/postify/postify/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("invalid credentials")
)

func NewUserService(db *sql.DB, mb common.MessageProducer, tokens *TokenService) *UserService {
	return &UserService{
		m:      newUserModel(db),
		mb:     mb,
		tokens: tokens,
	}
}

// Register creates a new user account, issues a bearer token and publishes a
// user.registered event for the welcome email.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*User, string, error) {
	v := common.NewValidator()
	validateName(v, name)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, "", v.ValidationError()
	}

	u := User{
		Name:  name,
		Email: email,
	}

	err := u.Password.set(password)
	if err != nil {
		return nil, "", err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Sign(&u)
	if err != nil {
		return nil, "", err
	}

	data := struct {
		Email string
		Name  string
	}{
		Email: u.Email,
		Name:  u.Name,
	}

	emailData, err := json.Marshal(data)
	if err != nil {
		return nil, "", err
	}

	err = s.mb.Publish(ctx, emailData, common.UserRegisteredKey, common.NotificationExchange)
	if err != nil {
		return nil, "", err
	}

	return &u, token, nil
}

// Login verifies the credentials and issues a fresh bearer token. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*User, string, error) {
	v := common.NewValidator()
	v.Check(email != "", "email", "must be provided")
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, "", v.ValidationError()
	}

	user, err := s.m.getUserByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, "", ErrAuthenticationFailure
		default:
			return nil, "", err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrAuthenticationFailure
	}

	token, err := s.tokens.Sign(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// VerifyToken resolves a bearer token to the caller's user id.
func (s *UserService) VerifyToken(token string) (int, error) {
	return s.tokens.Verify(token)
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (*User, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getUserByID(ctx, id)
}

// UpdateProfile changes name, bio and avatar. Fields left nil keep their
// stored values; a supplied name must not be empty.
func (s *UserService) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*User, error) {
	v := common.NewValidator()
	validateInt(v, req.UserID, "user_id")
	if req.Name != nil {
		validateName(v, *req.Name)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.updateProfile(ctx, req)
}
