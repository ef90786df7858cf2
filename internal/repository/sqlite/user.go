package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
)

// UserRepository is the SQLite-backed directory.
type UserRepository interface {
	user.DirectoryRepository
	user.DirectoryWriter
}

type userRepositoryImpl struct {
	db *database.SQLiteDB
}

func NewUserRepository(db *database.SQLiteDB) UserRepository {
	return &userRepositoryImpl{db: db}
}

// GetByID implements user.DirectoryRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, email, role, manager_id, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	u, err := scanUser(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetRole implements user.DirectoryRepository.
func (r *userRepositoryImpl) GetRole(ctx context.Context, userID string) (user.Role, error) {
	q := GetQuerier(ctx, r.db)

	var role string
	if err := q.QueryRowContext(ctx, `SELECT role FROM users WHERE id = ?`, userID).Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", user.ErrUserNotFound
		}
		return "", fmt.Errorf("get user role: %w", err)
	}
	return user.Role(role), nil
}

// IsDirectManagerOf implements user.DirectoryRepository.
func (r *userRepositoryImpl) IsDirectManagerOf(ctx context.Context, managerID, userID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = ? AND manager_id = ?)`,
		userID, managerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check reporting line: %w", err)
	}
	return exists, nil
}

// ListDirectReports implements user.DirectoryRepository.
func (r *userRepositoryImpl) ListDirectReports(ctx context.Context, managerID string) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, email, role, manager_id, created_at, updated_at
		FROM users
		WHERE manager_id = ?
		ORDER BY name
	`

	rows, err := q.QueryContext(ctx, query, managerID)
	if err != nil {
		return nil, fmt.Errorf("list direct reports: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Upsert implements user.DirectoryWriter.
func (r *userRepositoryImpl) Upsert(ctx context.Context, u user.User) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (id, name, email, role, manager_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name, email = excluded.email, role = excluded.role,
			manager_id = excluded.manager_id, updated_at = excluded.updated_at
	`

	ts := formatTime(u.CreatedAt)
	if _, err := q.ExecContext(ctx, query, u.ID, u.Name, u.Email, string(u.Role), u.ManagerID, ts, ts); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (user.User, error) {
	var (
		u                    user.User
		role                 string
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.ManagerID, &createdAt, &updatedAt); err != nil {
		return user.User{}, err
	}
	u.Role = user.Role(role)

	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return user.User{}, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return user.User{}, err
	}
	return u, nil
}
