package storage

import (
	"context"
	"time"

	"fintrack/internal/core"
)

const createUser = `-- name: CreateUser :execlastid
INSERT INTO users (email, password_hash, created_at)
VALUES (?, ?, ?)
`

type CreateUserParams struct {
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CreateUser inserts a user. A duplicate email yields core.ErrEmailTaken.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (core.User, error) {
	res, err := q.db.ExecContext(ctx, createUser, arg.Email, arg.PasswordHash, arg.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return core.User{}, core.ErrEmailTaken
	}
	if err != nil {
		return core.User{}, wrap("create user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, wrap("create user", err)
	}
	return core.User{ID: id, Email: arg.Email, PasswordHash: arg.PasswordHash, CreatedAt: arg.CreatedAt.UTC()}, nil
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT id, email, password_hash, created_at FROM users
WHERE email = ?
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, wrap("get user by email", err)
}

const getUserByID = `-- name: GetUserByID :one
SELECT id, email, password_hash, created_at FROM users
WHERE id = ?
`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, wrap("get user", err)
}

const createSession = `-- name: CreateSession :exec
INSERT INTO sessions (token_hash, user_id, remember, expires_at, created_at)
VALUES (?, ?, ?, ?, ?)
`

func (q *Queries) CreateSession(ctx context.Context, arg core.Session) error {
	_, err := q.db.ExecContext(ctx, createSession,
		arg.TokenHash, arg.UserID, arg.Remember, arg.ExpiresAt.UTC(), arg.CreatedAt.UTC())
	return wrap("create session", err)
}

const getSession = `-- name: GetSession :one
SELECT token_hash, user_id, remember, expires_at, created_at FROM sessions
WHERE token_hash = ?
`

func (q *Queries) GetSession(ctx context.Context, tokenHash string) (core.Session, error) {
	row := q.db.QueryRowContext(ctx, getSession, tokenHash)
	var s core.Session
	err := row.Scan(&s.TokenHash, &s.UserID, &s.Remember, &s.ExpiresAt, &s.CreatedAt)
	return s, wrap("get session", err)
}

const deleteSession = `-- name: DeleteSession :exec
DELETE FROM sessions WHERE token_hash = ?
`

func (q *Queries) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := q.db.ExecContext(ctx, deleteSession, tokenHash)
	return wrap("delete session", err)
}

const deleteExpiredSessions = `-- name: DeleteExpiredSessions :execrows
DELETE FROM sessions WHERE expires_at <= ?
`

func (q *Queries) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredSessions, now.UTC())
	if err != nil {
		return 0, wrap("delete expired sessions", err)
	}
	return res.RowsAffected()
}
