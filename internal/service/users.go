// internal/service/users.go
//
// Admin sign-in: bcrypt password check and HS256 token issuance. A
// missing account and a wrong password produce the same error so the
// endpoint does not leak which emails exist.

package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/verba-game/go-server/internal/store"
	"github.com/verba-game/go-server/internal/verr"
)

// UserStore is the slice of storage the login flow needs.
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (store.User, error)
}

// LoginResponse carries the issued token back to the admin UI.
type LoginResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Users authenticates admin accounts.
type Users struct {
	Store       UserStore
	Secret      []byte
	ExpiresDays int
	Now         func() time.Time
}

// NewUsers builds the service with the real clock.
func NewUsers(st UserStore, secret []byte, expiresDays int) *Users {
	return &Users{Store: st, Secret: secret, ExpiresDays: expiresDays, Now: time.Now}
}

func invalidLogin() error {
	return verr.New(verr.CodeInvalidLoginOrPassword, "Invalid login or password")
}

// Login verifies the credentials and signs a token.
func (s *Users) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	u, err := s.Store.UserByEmail(ctx, email)
	if verr.Is(err, verr.CodeNotFound) {
		return LoginResponse{}, invalidLogin()
	}
	if err != nil {
		return LoginResponse{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return LoginResponse{}, invalidLogin()
	}

	now := s.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": u.Email,
		"iat": now.Unix(),
		"exp": now.Add(time.Duration(s.ExpiresDays) * 24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return LoginResponse{}, verr.Infra(err)
	}
	return LoginResponse{Email: u.Email, Token: signed}, nil
}

// HashPassword produces the stored form of an admin password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}
