package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/playperu/cluehunt/internal/game"
)

var (
	ErrNoSession  = errors.New("no valid session")
	ErrEmailTaken = errors.New("email already registered")
)

// User roles.
const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

type User struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// CreateUser inserts the user and its empty profile in one transaction.
func (s *Store) CreateUser(ctx context.Context, email, name, passwordHash, role string) (User, error) {
	u := User{ID: newID(), Email: email, Name: name, Role: role}
	err := s.withImmediate(ctx, func(q querier) error {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO users (id, email, name, password_hash, role)
			VALUES (?, ?, ?, ?, ?)
		`, u.ID, email, name, passwordHash, role); err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return ErrEmailTaken
			}
			return err
		}
		_, err := q.ExecContext(ctx, `INSERT INTO profiles (id) VALUES (?)`, u.ID)
		return err
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Credentials returns the user id and password hash for an email.
func (s *Store) Credentials(ctx context.Context, email string) (userID, passwordHash string, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email = ?`, email,
	).Scan(&userID, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", game.ErrNotFound
	}
	return userID, passwordHash, err
}

func (s *Store) CreateSession(ctx context.Context, userID string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sessions (user_id) VALUES (?) RETURNING id
	`, userID).Scan(&token)
	return token, err
}

// UserFromToken resolves a session token to its user.
func (s *Store) UserFromToken(ctx context.Context, token string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.name, u.role
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = ?
	`, token).Scan(&u.ID, &u.Email, &u.Name, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNoSession
	}
	return u, err
}

// ProfileView is the façade's display read: profile joined with the user.
type ProfileView struct {
	game.Profile
	Name  string
	Email string
}

func (s *Store) ProfileView(ctx context.Context, userID string) (ProfileView, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}
	v := ProfileView{Profile: p}
	err = s.db.QueryRowContext(ctx,
		`SELECT name, email FROM users WHERE id = ?`, userID,
	).Scan(&v.Name, &v.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return ProfileView{}, game.ErrNotFound
	}
	return v, err
}
