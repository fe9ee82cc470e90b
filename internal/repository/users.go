package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_inventory/internal/domain"
)

func (r *Repository) GetUser(ctx context.Context, username string) (*domain.User, error) {
	u := &domain.User{}
	err := r.q.QueryRowContext(ctx,
		`SELECT username, password, account_type, email FROM users WHERE username = $1`, username).
		Scan(&u.Username, &u.PasswordHash, &u.AccountType, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (r *Repository) CreateUser(ctx context.Context, u *domain.User) error {
	var exists int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = $1`, u.Username).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if exists > 0 {
		return ErrDuplicateKey
	}

	_, insertErr := r.q.ExecContext(ctx,
		`INSERT INTO users (username, password, account_type, email) VALUES ($1, $2, $3, $4)`,
		u.Username, u.PasswordHash, u.AccountType, u.Email)
	if insertErr != nil {
		if isDuplicateKey(insertErr) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", insertErr)
	}
	return nil
}

func (r *Repository) EnsureUser(ctx context.Context, u *domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (username, password, account_type, email) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (username) DO NOTHING`,
		u.Username, u.PasswordHash, u.AccountType, u.Email)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func (r *Repository) UpdatePassword(ctx context.Context, username, email, hash string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET password = $1 WHERE username = $2 AND email = $3`, hash, username, email)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return affectedOne(res, ErrUserNotFound)
}

func (r *Repository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT username, password, account_type, email FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.AccountType, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return users, nil
}
