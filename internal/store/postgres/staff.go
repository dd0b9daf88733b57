package postgres

import (
	"context"
	"errors"
	"time"

	"clinicflow/visit-service/internal/models"
	"clinicflow/visit-service/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 8 * time.Hour

func (s *Store) Login(ctx context.Context, email, password string) (store.LoginResult, error) {
	var user models.Staff
	var passwordHash string
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, name, email, password_hash, created_at
		FROM profiles
		WHERE lower(email) = lower($1) AND active = TRUE
	`, email)
	if err := row.Scan(&user.UserID, &user.Name, &user.Email, &passwordHash, &user.Created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.LoginResult{}, store.ErrInvalidCredentials
		}
		return store.LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return store.LoginResult{}, store.ErrInvalidCredentials
	}

	roles, err := s.rolesForUser(ctx, user.UserID)
	if err != nil {
		return store.LoginResult{}, err
	}
	user.Roles = roles

	expiresAt := time.Now().UTC().Add(sessionTTL)
	sessionID := uuid.NewString()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions (session_id, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, sessionID, user.UserID, expiresAt)
	if err != nil {
		return store.LoginResult{}, err
	}

	return store.LoginResult{
		User: user,
		Session: store.Session{
			SessionID: sessionID,
			UserID:    user.UserID,
			Name:      user.Name,
			Roles:     roles,
			ExpiresAt: expiresAt,
		},
	}, nil
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (store.Session, error) {
	var session store.Session
	row := s.pool.QueryRow(ctx, `
		SELECT s.session_id, s.user_id, s.expires_at, p.name
		FROM sessions s
		JOIN profiles p ON p.user_id = s.user_id
		WHERE s.session_id = $1 AND s.expires_at > NOW() AND p.active = TRUE
	`, sessionID)
	if err := row.Scan(&session.SessionID, &session.UserID, &session.ExpiresAt, &session.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Session{}, store.ErrSessionNotFound
		}
		return store.Session{}, err
	}

	roles, err := s.rolesForUser(ctx, session.UserID)
	if err != nil {
		return store.Session{}, err
	}
	session.Roles = roles
	return session, nil
}

func (s *Store) rolesForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT role
		FROM user_roles
		WHERE user_id = $1
		ORDER BY role ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}
